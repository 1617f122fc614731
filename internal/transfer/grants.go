package transfer

import (
	"fmt"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/kestrelworks/lobbyhub"
)

// grantTTL is kept slightly above the worker's own accept timeout so an
// abandoned grant is observed here after the worker itself has already
// given up, not before.
const grantTTL = acceptTimeout + 5*time.Second

// grant describes one outstanding transfer, tracked purely for
// server-side observability (spec.md §9 does not require this; it does
// not change client-observable behavior).
type grant struct {
	Kind Kind
	Path string
	Size int64
}

// Grants tracks outstanding upload/download workers by the ephemeral
// port they were handed, grounded on
// internal/character/cache.go's go-cache wrapper. A grant that expires
// on its own (OnEvicted fires without a prior Complete) means the worker
// never reported back, so it is logged as abandoned.
type Grants struct {
	cache *gocache.Cache
}

// NewGrants returns an empty Grants registry.
func NewGrants() *Grants {
	c := gocache.New(grantTTL, time.Minute)
	g := &Grants{cache: c}
	c.OnEvicted(func(key string, value interface{}) {
		gr, ok := value.(grant)
		if !ok {
			return
		}
		lobbyhub.Log.WithFields(map[string]interface{}{
			"port": key,
			"kind": gr.Kind,
			"path": gr.Path,
		}).Warn("transfer grant expired without completion")
	})
	return g
}

// Open records a new outstanding grant for port.
func (g *Grants) Open(port int, kind Kind, path string, size int64) {
	g.cache.Set(fmt.Sprint(port), grant{Kind: kind, Path: path, Size: size}, gocache.DefaultExpiration)
}

// completedGrant replaces a grant just before Complete deletes it, so the
// OnEvicted callback (which go-cache also fires on Delete) does not log it.
type completedGrant struct{}

// Complete removes port's grant before it can expire and be logged as
// abandoned.
func (g *Grants) Complete(port int) {
	key := fmt.Sprint(port)
	g.cache.Set(key, completedGrant{}, gocache.NoExpiration)
	g.cache.Delete(key)
}
