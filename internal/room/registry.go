// Package room implements the in-memory room registry and its finite
// state machine described in spec.md §4.3, grounded directly on
// original_source/server/room.hpp's RoomManager.
package room

import "sync"

// Status is a room's place in its finite state machine.
type Status string

const (
	StatusIdle    Status = "idle"
	StatusPlaying Status = "playing"
)

// LeaveResult enumerates the outcomes of Leave, matching room.hpp's
// leave_room return codes exactly.
type LeaveResult int

const (
	// NotFound means the room id did not exist or user was not a member.
	NotFound LeaveResult = -1
	// Left means the user left and the room still has members.
	Left LeaveResult = 0
	// HostDissolved means the departing user was the host (or was the
	// last remaining member), and the room was deleted.
	HostDissolved LeaveResult = 1
)

// Room is one matchmaking slot for a game title.
type Room struct {
	ID         int
	Name       string
	Host       string
	Game       string
	Status     Status
	GamePort   int
	MaxPlayers int
	Players    []string
}

// Info is the full, client-facing view of a room.
type Info struct {
	ID         int      `json:"id"`
	Name       string   `json:"name"`
	Host       string   `json:"host"`
	Game       string   `json:"game"`
	Status     Status   `json:"status"`
	Players    []string `json:"players"`
	MaxPlayers int      `json:"max_players"`
	GamePort   int      `json:"game_port"`
}

// Summary is the condensed view returned by a room listing.
type Summary struct {
	ID         int    `json:"id"`
	Name       string `json:"name"`
	Game       string `json:"game"`
	Status     Status `json:"status"`
	Players    int    `json:"players"`
	MaxPlayers int    `json:"max_players"`
}

// Registry holds every active room, keyed by id, with ids reused after
// deletion (smallest-positive-free-id allocation, matching room.hpp).
type Registry struct {
	mu    sync.Mutex
	rooms map[int]*Room
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{rooms: make(map[int]*Room)}
}

// Create allocates the smallest positive unused id, seats host as the sole
// (and first) member, and returns the new room's id.
func (r *Registry) Create(name, host, gameName string, maxPlayers int) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := 1
	for {
		if _, exists := r.rooms[id]; !exists {
			break
		}
		id++
	}

	r.rooms[id] = &Room{
		ID:         id,
		Name:       name,
		Host:       host,
		Game:       gameName,
		Status:     StatusIdle,
		MaxPlayers: maxPlayers,
		Players:    []string{host},
	}
	return id
}

// Join adds user to room id, returning false if the room is missing, not
// idle, full, or user is already a member.
func (r *Registry) Join(id int, user string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	room, ok := r.rooms[id]
	if !ok || room.Status != StatusIdle {
		return false
	}
	if len(room.Players) >= room.MaxPlayers {
		return false
	}
	for _, p := range room.Players {
		if p == user {
			return false
		}
	}
	room.Players = append(room.Players, user)
	return true
}

// Leave removes user from room id. If user is the host, or the room
// becomes empty as a result, the room is deleted and HostDissolved is
// returned; otherwise the (non-empty) result is Left.
func (r *Registry) Leave(id int, user string) LeaveResult {
	r.mu.Lock()
	defer r.mu.Unlock()

	room, ok := r.rooms[id]
	if !ok {
		return NotFound
	}

	if room.Host == user {
		delete(r.rooms, id)
		return HostDissolved
	}

	idx := -1
	for i, p := range room.Players {
		if p == user {
			idx = i
			break
		}
	}
	if idx == -1 {
		return NotFound
	}

	room.Players = append(room.Players[:idx], room.Players[idx+1:]...)
	if len(room.Players) == 0 {
		delete(r.rooms, id)
		return HostDissolved
	}
	return Left
}

// IsFull reports whether room id has reached its max_players cap.
func (r *Registry) IsFull(id int) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	room, ok := r.rooms[id]
	if !ok {
		return false
	}
	return len(room.Players) >= room.MaxPlayers
}

// Info returns the full view of room id, or ok=false if it does not exist.
func (r *Registry) Info(id int) (Info, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	room, ok := r.rooms[id]
	if !ok {
		return Info{}, false
	}
	return toInfo(room), true
}

func toInfo(room *Room) Info {
	players := make([]string, len(room.Players))
	copy(players, room.Players)
	return Info{
		ID:         room.ID,
		Name:       room.Name,
		Host:       room.Host,
		Game:       room.Game,
		Status:     room.Status,
		Players:    players,
		MaxPlayers: room.MaxPlayers,
		GamePort:   room.GamePort,
	}
}

// List returns the condensed summary view of every active room.
func (r *Registry) List() []Summary {
	r.mu.Lock()
	defer r.mu.Unlock()

	summaries := make([]Summary, 0, len(r.rooms))
	for _, room := range r.rooms {
		summaries = append(summaries, Summary{
			ID:         room.ID,
			Name:       room.Name,
			Game:       room.Game,
			Status:     room.Status,
			Players:    len(room.Players),
			MaxPlayers: room.MaxPlayers,
		})
	}
	return summaries
}

// StartGame transitions room id to playing with the given port.
func (r *Registry) StartGame(id, port int) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	room, ok := r.rooms[id]
	if !ok {
		return false
	}
	room.Status = StatusPlaying
	room.GamePort = port
	return true
}

// FinishGame transitions room id back to idle and clears its port.
func (r *Registry) FinishGame(id int) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	room, ok := r.rooms[id]
	if !ok {
		return false
	}
	room.Status = StatusIdle
	room.GamePort = 0
	return true
}

// IsGameActive reports whether any room, regardless of status, references
// gameName.
func (r *Registry) IsGameActive(gameName string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, room := range r.rooms {
		if room.Game == gameName {
			return true
		}
	}
	return false
}
