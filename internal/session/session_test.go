package session

import (
	"net"
	"testing"
)

func pipeConn(t *testing.T) net.Conn {
	t.Helper()
	c1, c2 := net.Pipe()
	t.Cleanup(func() { c1.Close(); c2.Close() })
	return c1
}

func TestRegister_AssignsIncreasingIDsAndConnectedState(t *testing.T) {
	tbl := NewTable()
	s1 := tbl.Register(pipeConn(t))
	s2 := tbl.Register(pipeConn(t))

	if s1.ID == s2.ID {
		t.Fatalf("Register() produced duplicate ids")
	}
	if s1.State != StateConnected || s1.RoomID != -1 {
		t.Errorf("new session = %+v, want state Connected, room -1", s1)
	}
}

func TestRemove_DropsSession(t *testing.T) {
	tbl := NewTable()
	s := tbl.Register(pipeConn(t))
	tbl.Remove(s.ID)

	if _, ok := tbl.Get(s.ID); ok {
		t.Errorf("Get() found session after Remove()")
	}
}

func TestFindByUsername_IgnoresConnectedState(t *testing.T) {
	tbl := NewTable()
	s := tbl.Register(pipeConn(t))
	s.Username = "alice"

	if _, found := tbl.FindByUsername("alice"); found {
		t.Errorf("FindByUsername() matched a session still in Connected state")
	}

	s.State = StateLoggedIn
	if _, found := tbl.FindByUsername("alice"); !found {
		t.Errorf("FindByUsername() missed a logged-in session")
	}
}

func TestInRoom_FiltersByRoomIDAndState(t *testing.T) {
	tbl := NewTable()
	s1 := tbl.Register(pipeConn(t))
	s2 := tbl.Register(pipeConn(t))
	s3 := tbl.Register(pipeConn(t))

	s1.State, s1.RoomID = StateInRoom, 1
	s2.State, s2.RoomID = StateInRoom, 1
	s3.State, s3.RoomID = StateLoggedIn, -1

	members := tbl.InRoom(1)
	if len(members) != 2 {
		t.Fatalf("InRoom(1) len = %d, want 2", len(members))
	}
}

func TestPlayers_OnlyListsPlayerRoleWithUsername(t *testing.T) {
	tbl := NewTable()
	s1 := tbl.Register(pipeConn(t))
	s2 := tbl.Register(pipeConn(t))

	s1.Role, s1.Username = RolePlayer, "alice"
	s2.Role, s2.Username = RoleDeveloper, "dev1"

	players := tbl.Players()
	if len(players) != 1 || players[0] != "alice" {
		t.Errorf("Players() = %v, want [alice]", players)
	}
}

func TestResetHelpers(t *testing.T) {
	tbl := NewTable()
	s := tbl.Register(pipeConn(t))
	s.State, s.Username, s.Role, s.RoomID = StateInRoom, "bob", RolePlayer, 3

	s.ResetToLoggedIn()
	if s.State != StateLoggedIn || s.RoomID != -1 || s.Username != "bob" {
		t.Errorf("ResetToLoggedIn() = %+v, want LoggedIn, room -1, username kept", s)
	}

	s.ResetToConnected()
	if s.State != StateConnected || s.Username != "" || s.Role != "" || s.RoomID != -1 {
		t.Errorf("ResetToConnected() = %+v, want fully cleared", s)
	}
}
