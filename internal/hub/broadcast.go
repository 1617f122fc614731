package hub

import (
	"github.com/kestrelworks/lobbyhub/internal/protocol"
	"github.com/kestrelworks/lobbyhub/internal/room"
	"github.com/kestrelworks/lobbyhub/internal/session"
)

// broadcastToRoom sends v to every session currently seated in roomID,
// except excludeID (pass 0 to exclude nobody). Sends happen one at a time
// on the owner goroutine, so every peer observes events in the order they
// were applied, per spec.md §5's ordering guarantee.
func (h *Hub) broadcastToRoom(roomID int, excludeID uint64, v interface{}) {
	for _, member := range h.tbl.InRoom(roomID) {
		if member.ID == excludeID {
			continue
		}
		h.reply(member, v)
	}
}

// leaveRoomAndBroadcast is the common routine spec.md §4.5.2 describes,
// shared by explicit leave_room and disconnect handling. The caller is
// responsible for sess's own reply, if any; this never replies to sess.
func (h *Hub) leaveRoomAndBroadcast(sess *session.Session) {
	roomID := sess.RoomID
	result := h.rooms.Leave(roomID, sess.Username)

	switch result {
	case room.HostDissolved:
		for _, member := range h.tbl.InRoom(roomID) {
			if member.ID == sess.ID {
				continue
			}
			h.reply(member, protocol.RoomDisbandedBroadcast{Action: protocol.BroadcastRoomDisbanded})
			member.ResetToLoggedIn()
		}
	case room.Left:
		info, ok := h.rooms.Info(roomID)
		if ok {
			h.broadcastToRoom(roomID, sess.ID, protocol.PlayerLeftBroadcast{
				Action:   protocol.BroadcastPlayerLeft,
				Username: sess.Username,
				Data:     toProtocolRoomInfo(info),
			})
		}
	case room.NotFound:
		// Nothing to broadcast; the room or membership was already gone.
	}

	sess.ResetToLoggedIn()
}
