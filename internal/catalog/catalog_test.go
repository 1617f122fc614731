package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/go-test/deep"
	"github.com/google/go-cmp/cmp"
)

func newTestCatalog(t *testing.T) *Catalog {
	t.Helper()
	path := filepath.Join(t.TempDir(), "database.json")
	c, err := Open(path)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	return c
}

func TestRegisterUser_DuplicateRejected(t *testing.T) {
	c := newTestCatalog(t)

	ok, err := c.RegisterUser("alice", "pw", RolePlayer)
	if err != nil || !ok {
		t.Fatalf("first RegisterUser() = (%v, %v), want (true, nil)", ok, err)
	}

	ok, err = c.RegisterUser("alice", "pw", RolePlayer)
	if err != nil {
		t.Fatalf("second RegisterUser() error = %v", err)
	}
	if ok {
		t.Errorf("second RegisterUser() = true, want false (duplicate)")
	}
}

func TestLoginUser(t *testing.T) {
	c := newTestCatalog(t)
	if _, err := c.RegisterUser("bob", "secret", RoleDeveloper); err != nil {
		t.Fatalf("RegisterUser() error = %v", err)
	}

	tests := []struct {
		name     string
		username string
		password string
		want     LoginResult
	}{
		{"correct credentials", "bob", "secret", LoginResult{OK: true, Role: RoleDeveloper}},
		{"wrong password", "bob", "nope", LoginResult{OK: false}},
		{"unknown user", "ghost", "secret", LoginResult{OK: false}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.LoginUser(tt.username, tt.password)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("LoginUser() mismatch; diff:\n%s", diff)
			}
		})
	}
}

func TestUpsertGame_InsertThenUpdate(t *testing.T) {
	c := newTestCatalog(t)

	if err := c.UpsertGame("dev1", "tic", "a tic-tac-toe clone", "tic.py", "1.0", GameTypeCLI, 2); err != nil {
		t.Fatalf("UpsertGame() error = %v", err)
	}

	games := c.GetGames()
	if len(games) != 1 {
		t.Fatalf("GetGames() len = %d, want 1", len(games))
	}
	if games[0].AvgRating != 0 || games[0].Downloads != 0 || games[0].CommentCount != 0 {
		t.Errorf("fresh game derived fields = %+v, want all zero", games[0])
	}

	if err := c.UpsertGame("dev1", "tic", "updated description", "tic2.py", "1.1", GameTypeCLI, 4); err != nil {
		t.Fatalf("UpsertGame() update error = %v", err)
	}

	games = c.GetGames()
	if len(games) != 1 {
		t.Fatalf("GetGames() after update len = %d, want 1 (update, not insert)", len(games))
	}
	if games[0].Version != "1.1" || games[0].MaxPlayers != 4 {
		t.Errorf("updated game = %+v, want version 1.1 and max_players 4", games[0])
	}
}

func TestDeleteGame_OwnershipEnforced(t *testing.T) {
	c := newTestCatalog(t)
	if err := c.UpsertGame("dev1", "tic", "", "tic.py", "1.0", GameTypeCLI, 2); err != nil {
		t.Fatalf("UpsertGame() error = %v", err)
	}

	filename, err := c.DeleteGame("dev2", "tic")
	if err != nil {
		t.Fatalf("DeleteGame() error = %v", err)
	}
	if filename != "" {
		t.Errorf("DeleteGame() by non-owner returned filename %q, want empty", filename)
	}

	filename, err = c.DeleteGame("dev1", "tic")
	if err != nil {
		t.Fatalf("DeleteGame() error = %v", err)
	}
	if filename != "tic.py" {
		t.Errorf("DeleteGame() by owner returned filename %q, want tic.py", filename)
	}

	if len(c.GetGames()) != 0 {
		t.Errorf("GetGames() after delete is non-empty")
	}
}

func TestRecordDownload_Idempotent(t *testing.T) {
	c := newTestCatalog(t)
	if err := c.UpsertGame("dev1", "tic", "", "tic.py", "1.0", GameTypeCLI, 2); err != nil {
		t.Fatalf("UpsertGame() error = %v", err)
	}

	for i := 0; i < 3; i++ {
		if err := c.RecordDownload("tic", "bob"); err != nil {
			t.Fatalf("RecordDownload() error = %v", err)
		}
	}

	games := c.GetGames()
	if games[0].Downloads != 1 {
		t.Errorf("Downloads = %d, want 1 after 3 identical downloads", games[0].Downloads)
	}
}

func TestAddComment_RequiresPlayThenRejectsDuplicate(t *testing.T) {
	c := newTestCatalog(t)
	if err := c.UpsertGame("dev1", "tic", "", "tic.py", "1.0", GameTypeCLI, 2); err != nil {
		t.Fatalf("UpsertGame() error = %v", err)
	}
	if _, err := c.RegisterUser("bob", "pw", RolePlayer); err != nil {
		t.Fatalf("RegisterUser() error = %v", err)
	}

	if c.HasPlayed("bob", "tic") {
		t.Fatalf("HasPlayed() = true before any play history recorded")
	}

	if err := c.RecordPlayHistory("bob", "tic"); err != nil {
		t.Fatalf("RecordPlayHistory() error = %v", err)
	}
	if !c.HasPlayed("bob", "tic") {
		t.Fatalf("HasPlayed() = false after recording play history")
	}

	res, err := c.AddComment("tic", "bob", 5, "good game")
	if err != nil {
		t.Fatalf("AddComment() error = %v", err)
	}
	if res != CommentOK {
		t.Fatalf("AddComment() result = %v, want CommentOK", res)
	}

	res, err = c.AddComment("tic", "bob", 4, "again")
	if err != nil {
		t.Fatalf("AddComment() error = %v", err)
	}
	if res != CommentDuplicate {
		t.Errorf("second AddComment() result = %v, want CommentDuplicate", res)
	}

	games := c.GetGames()
	if games[0].AvgRating != 5 || games[0].CommentCount != 1 {
		t.Errorf("derived fields = %+v, want avg_rating 5 and comment_count 1", games[0])
	}
}

func TestOpen_MissingFileStartsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "does-not-exist.json")
	c, err := Open(path)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if len(c.GetGames()) != 0 {
		t.Errorf("GetGames() on fresh catalog is non-empty")
	}
}

func TestOpen_CorruptFileStartsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "database.json")
	if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	c, err := Open(path)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if len(c.GetGames()) != 0 {
		t.Errorf("GetGames() on corrupt-recovered catalog is non-empty")
	}
}

func TestSave_WholeDocumentRewrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "database.json")
	c, err := Open(path)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if _, err := c.RegisterUser("alice", "pw", RolePlayer); err != nil {
		t.Fatalf("RegisterUser() error = %v", err)
	}

	reopened, err := Open(path)
	if err != nil {
		t.Fatalf("re-Open() error = %v", err)
	}
	got := reopened.LoginUser("alice", "pw")
	want := LoginResult{OK: true, Role: RolePlayer}
	if diffs := deep.Equal(got, want); len(diffs) > 0 {
		t.Errorf("LoginUser() after reload mismatch: %v", diffs)
	}
}
