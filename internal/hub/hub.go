// Package hub implements the single-owner session multiplexer described
// in spec.md §4.5, grounded on internal/controller.go's pattern of one
// goroutine owning every shared resource and internal/frontend.go's
// per-connection accept/read loop.
package hub

import (
	"encoding/json"
	"fmt"
	"net"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/kestrelworks/lobbyhub"
	"github.com/kestrelworks/lobbyhub/internal/catalog"
	"github.com/kestrelworks/lobbyhub/internal/codec"
	"github.com/kestrelworks/lobbyhub/internal/core"
	"github.com/kestrelworks/lobbyhub/internal/protocol"
	"github.com/kestrelworks/lobbyhub/internal/room"
	"github.com/kestrelworks/lobbyhub/internal/session"
	"github.com/kestrelworks/lobbyhub/internal/transfer"
)

type eventKind int

const (
	eventConnect eventKind = iota
	eventFrame
	eventDisconnect
)

// event is the single message shape that flows through the hub's inbox.
// Every per-connection goroutine and the idle-session reaper funnel
// through here, so the owner goroutine is the only mutator of shared
// state, per spec.md §5.
type event struct {
	kind    eventKind
	session *session.Session
	payload []byte
}

// Hub owns the Catalog, Room registry, and session table, and is the only
// goroutine allowed to mutate any of them.
type Hub struct {
	cfg     *core.Config
	catalog *catalog.Catalog
	rooms   *room.Registry
	tbl     *session.Table
	grants  *transfer.Grants

	inbox chan event
	idle  *gocache.Cache
}

// New constructs a Hub. Run must be called to start its owner goroutine.
func New(cfg *core.Config, cat *catalog.Catalog) *Hub {
	h := &Hub{
		cfg:     cfg,
		catalog: cat,
		rooms:   room.NewRegistry(),
		tbl:     session.NewTable(),
		grants:  transfer.NewGrants(),
		inbox:   make(chan event, 256),
	}

	if cfg.IdleSessionTTL > 0 {
		h.idle = gocache.New(cfg.IdleSessionTTL, time.Minute)
		h.idle.OnEvicted(func(key string, value interface{}) {
			sess, ok := value.(*session.Session)
			if !ok {
				return
			}
			h.inbox <- event{kind: eventDisconnect, session: sess}
		})
	}

	return h
}

// Run is the owner loop. It must run on its own goroutine and must be the
// only goroutine reading from h.inbox.
func (h *Hub) Run() {
	for ev := range h.inbox {
		switch ev.kind {
		case eventConnect:
			h.handleConnect(ev.session)
		case eventFrame:
			h.handleFrame(ev.session, ev.payload)
		case eventDisconnect:
			h.handleDisconnect(ev.session)
		}
	}
}

// Stop closes the inbox, causing Run to return once drained.
func (h *Hub) Stop() {
	close(h.inbox)
}

func (h *Hub) handleConnect(sess *session.Session) {
	lobbyhub.Log.WithField("remote", sess.Conn.RemoteAddr()).Info("client connected")
	h.touchIdle(sess)
}

func (h *Hub) handleDisconnect(sess *session.Session) {
	if _, ok := h.tbl.Get(sess.ID); !ok {
		return
	}
	if sess.State == session.StateInRoom {
		h.leaveRoomAndBroadcast(sess)
	}
	if h.idle != nil {
		h.idle.Delete(fmt.Sprint(sess.ID))
	}
	h.tbl.Remove(sess.ID)
	_ = sess.Conn.Close()
	lobbyhub.Log.WithField("remote", sess.Conn.RemoteAddr()).Info("client disconnected")
}

func (h *Hub) handleFrame(sess *session.Session, payload []byte) {
	var req protocol.Request
	if err := json.Unmarshal(payload, &req); err != nil {
		lobbyhub.Log.WithError(err).Debug("dropping malformed frame")
		return
	}

	lobbyhub.Log.WithField("username", sess.Username).WithField("action", req.Action).Debug("request")

	handler, ok := dispatchTable[req.Action]
	if !ok {
		lobbyhub.Log.WithField("action", req.Action).Debug("dropping unknown action")
		return
	}
	handler(h, sess, payload)
	h.touchIdle(sess)
}

func (h *Hub) touchIdle(sess *session.Session) {
	if h.idle == nil {
		return
	}
	h.idle.Set(fmt.Sprint(sess.ID), sess, gocache.DefaultExpiration)
}

// reply writes a single frame back to sess. Errors are logged, not
// returned: a write failure here means the connection's read goroutine
// will report the disconnect on its next read, per spec.md §7's "Peer
// loss" kind.
func (h *Hub) reply(sess *session.Session, v interface{}) {
	data, err := json.Marshal(v)
	if err != nil {
		lobbyhub.Log.WithError(err).Error("marshaling reply")
		return
	}
	if err := codec.WriteFrame(sess.Conn, data); err != nil {
		lobbyhub.Log.WithError(err).WithField("remote", sess.Conn.RemoteAddr()).
			Warn("write failed, peer will be reaped on next read")
	}
}

// Serve runs the accept loop: one goroutine per connection, each decoding
// frames and submitting them to the owner goroutine. It blocks until ln
// is closed.
func (h *Hub) Serve(ln *net.TCPListener) error {
	for {
		conn, err := ln.Accept()
		if err != nil {
			return fmt.Errorf("hub: accept: %w", err)
		}
		go h.acceptConn(conn)
	}
}

func (h *Hub) acceptConn(conn net.Conn) {
	sess := h.tbl.Register(conn)
	h.inbox <- event{kind: eventConnect, session: sess}

	for {
		payload, err := codec.ReadFrame(conn)
		if err != nil {
			h.inbox <- event{kind: eventDisconnect, session: sess}
			return
		}
		h.inbox <- event{kind: eventFrame, session: sess, payload: payload}
	}
}
