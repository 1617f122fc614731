// Package catalog implements the persistent store of users, games, and
// histories described in spec.md §4.2. It is grounded directly on
// original_source/server/db.hpp's Database class: a single JSON document,
// rewritten in full on every mutation, guarded by one mutex so any
// goroutine may call it safely.
package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
)

// Catalog is a mutex-serialized, file-backed store of users and games. All
// operations are total: they return a result value, never an error that
// crosses the component boundary as an exception.
type Catalog struct {
	path string

	mu  sync.Mutex
	doc document
}

// Open loads the catalog document from path, initializing an empty
// document if the file does not yet exist (matching db.hpp's load(), which
// tolerates a missing or corrupt file by starting fresh).
func Open(path string) (*Catalog, error) {
	c := &Catalog{path: path}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			c.doc = document{Users: []user{}, Games: []game{}}
			return c, nil
		}
		return nil, fmt.Errorf("catalog: reading %s: %w", path, err)
	}

	if len(data) == 0 {
		c.doc = document{Users: []user{}, Games: []game{}}
		return c, nil
	}

	if err := json.Unmarshal(data, &c.doc); err != nil {
		// A corrupted file is discarded and the catalog starts fresh
		// rather than failing startup; nothing is logged.
		c.doc = document{Users: []user{}, Games: []game{}}
		return c, nil
	}

	if c.doc.Users == nil {
		c.doc.Users = []user{}
	}
	if c.doc.Games == nil {
		c.doc.Games = []game{}
	}
	return c, nil
}

// save performs a whole-document rewrite. Callers must hold mu.
func (c *Catalog) save() error {
	data, err := json.MarshalIndent(c.doc, "", "    ")
	if err != nil {
		return fmt.Errorf("catalog: marshaling document: %w", err)
	}
	if err := os.WriteFile(c.path, data, 0644); err != nil {
		return fmt.Errorf("catalog: writing %s: %w", c.path, err)
	}
	return nil
}

func (c *Catalog) findUser(username string) *user {
	for i := range c.doc.Users {
		if c.doc.Users[i].Username == username {
			return &c.doc.Users[i]
		}
	}
	return nil
}

func (c *Catalog) findGame(name string) *game {
	for i := range c.doc.Games {
		if c.doc.Games[i].Name == name {
			return &c.doc.Games[i]
		}
	}
	return nil
}

// RegisterUser creates a new account. Returns false if the username is
// already taken.
func (c *Catalog) RegisterUser(username, password string, role Role) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.findUser(username) != nil {
		return false, nil
	}
	c.doc.Users = append(c.doc.Users, user{
		Username: username,
		Password: password,
		Role:     role,
	})
	return true, c.save()
}

// LoginUser checks credentials and returns the account's role on success.
func (c *Catalog) LoginUser(username, password string) LoginResult {
	c.mu.Lock()
	defer c.mu.Unlock()

	u := c.findUser(username)
	if u == nil || u.Password != password {
		return LoginResult{OK: false}
	}
	return LoginResult{OK: true, Role: u.Role}
}

func calculateRating(comments []comment) float64 {
	if len(comments) == 0 {
		return 0
	}
	sum := 0
	for _, c := range comments {
		sum += c.Score
	}
	return float64(sum) / float64(len(comments))
}

// GetGames returns every game with its derived listing fields computed,
// scrubbing downloaded_by from the returned view per spec.md §4.2.
func (c *Catalog) GetGames() []GameView {
	c.mu.Lock()
	defer c.mu.Unlock()

	views := make([]GameView, 0, len(c.doc.Games))
	for _, g := range c.doc.Games {
		view := GameView{
			Name:         g.Name,
			Dev:          g.Dev,
			Description:  g.Description,
			Filename:     g.Filename,
			Version:      g.Version,
			GameType:     g.GameType,
			MaxPlayers:   g.MaxPlayers,
			AvgRating:    calculateRating(g.Comments),
			CommentCount: len(g.Comments),
			Downloads:    len(g.DownloadedBy),
		}
		for _, cm := range g.Comments {
			view.Comments = append(view.Comments, Comment(cm))
		}
		views = append(views, view)
	}
	return views
}

// GetGameFilename returns the on-disk basename for name, or "" if unknown.
func (c *Catalog) GetGameFilename(name string) string {
	c.mu.Lock()
	defer c.mu.Unlock()

	if g := c.findGame(name); g != nil {
		return g.Filename
	}
	return ""
}

// GetGameOwner returns the developer username who owns name, or "" if
// unknown.
func (c *Catalog) GetGameOwner(name string) string {
	c.mu.Lock()
	defer c.mu.Unlock()

	if g := c.findGame(name); g != nil {
		return g.Dev
	}
	return ""
}

// GetGameMaxPlayers returns the configured player cap for name, defaulting
// to 2 -- a domain default -- when the game is unknown.
func (c *Catalog) GetGameMaxPlayers(name string) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	if g := c.findGame(name); g != nil {
		return g.MaxPlayers
	}
	return 2
}

// UpsertGame inserts or updates a game keyed by (name, dev). The caller is
// responsible for having pre-validated ownership when updating.
func (c *Catalog) UpsertGame(dev, name, desc, filename, version string, gameType GameType, maxPlayers int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i := range c.doc.Games {
		g := &c.doc.Games[i]
		if g.Name == name && g.Dev == dev {
			g.Description = desc
			g.Filename = filename
			g.Version = version
			g.GameType = gameType
			g.MaxPlayers = maxPlayers
			return c.save()
		}
	}

	c.doc.Games = append(c.doc.Games, game{
		Name:        name,
		Dev:         dev,
		Description: desc,
		Filename:    filename,
		Version:     version,
		GameType:    gameType,
		MaxPlayers:  maxPlayers,
	})
	return c.save()
}

// DeleteGame removes name if owned by dev, returning its filename for disk
// cleanup (or "" if it was not owned by dev or did not exist).
func (c *Catalog) DeleteGame(dev, name string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i := range c.doc.Games {
		g := &c.doc.Games[i]
		if g.Name == name && g.Dev == dev {
			filename := g.Filename
			c.doc.Games = append(c.doc.Games[:i], c.doc.Games[i+1:]...)
			if err := c.save(); err != nil {
				return "", err
			}
			return filename, nil
		}
	}
	return "", nil
}

// RecordDownload idempotently records that user has downloaded game.
func (c *Catalog) RecordDownload(gameName, username string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	g := c.findGame(gameName)
	if g == nil {
		return nil
	}
	for _, u := range g.DownloadedBy {
		if u == username {
			return nil
		}
	}
	g.DownloadedBy = append(g.DownloadedBy, username)
	return c.save()
}

// RecordPlayHistory idempotently records that username has played
// gameName.
func (c *Catalog) RecordPlayHistory(username, gameName string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	u := c.findUser(username)
	if u == nil {
		return nil
	}
	for _, g := range u.PlayHistory {
		if g == gameName {
			return nil
		}
	}
	u.PlayHistory = append(u.PlayHistory, gameName)
	return c.save()
}

// HasPlayed reports whether username has gameName in their play history.
func (c *Catalog) HasPlayed(username, gameName string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	u := c.findUser(username)
	if u == nil {
		return false
	}
	for _, g := range u.PlayHistory {
		if g == gameName {
			return true
		}
	}
	return false
}

// AddComment records user's rating of gameName. Refuses a second comment
// from the same user on the same game.
func (c *Catalog) AddComment(gameName, username string, score int, content string) (AddCommentResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	g := c.findGame(gameName)
	if g == nil {
		return CommentGameMissing, nil
	}
	for _, cm := range g.Comments {
		if cm.User == username {
			return CommentDuplicate, nil
		}
	}
	g.Comments = append(g.Comments, comment{User: username, Score: score, Content: content})
	return CommentOK, c.save()
}
