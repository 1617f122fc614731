package catalog

// Role is a user's account type, gating which actions the hub permits.
type Role string

const (
	RolePlayer    Role = "player"
	RoleDeveloper Role = "developer"
)

// GameType distinguishes how a launched game binary expects to talk to its
// players.
type GameType string

const (
	GameTypeCLI GameType = "CLI"
	GameTypeGUI GameType = "GUI"
)

// user is the persisted record for a registered account.
type user struct {
	Username    string   `json:"username"`
	Password    string   `json:"password"`
	Role        Role     `json:"role"`
	PlayHistory []string `json:"play_history,omitempty"`
}

// comment is one player's rating/review of a game.
type comment struct {
	User    string `json:"user"`
	Score   int    `json:"score"`
	Content string `json:"content"`
}

// game is the persisted record for an uploaded artifact.
type game struct {
	Name          string    `json:"name"`
	Dev           string    `json:"dev"`
	Version       string    `json:"version"`
	Description   string    `json:"description"`
	Filename      string    `json:"filename"`
	GameType      GameType  `json:"game_type"`
	MaxPlayers    int       `json:"max_players"`
	DownloadedBy  []string  `json:"downloaded_by,omitempty"`
	Comments      []comment `json:"comments,omitempty"`
}

// document is the whole-file JSON shape written to the catalog path.
type document struct {
	Users []user `json:"users"`
	Games []game `json:"games"`
}

// GameView is the derived, read-only listing shape returned to clients.
// downloaded_by is intentionally absent, per spec.md §4.2.
type GameView struct {
	Name         string    `json:"name"`
	Dev          string    `json:"dev"`
	Description  string    `json:"description"`
	Filename     string    `json:"filename"`
	Version      string    `json:"version"`
	GameType     GameType  `json:"game_type"`
	MaxPlayers   int       `json:"max_players"`
	AvgRating    float64   `json:"avg_rating"`
	CommentCount int       `json:"comment_count"`
	Downloads    int       `json:"downloads"`
	Comments     []Comment `json:"comments,omitempty"`
}

// Comment is the client-facing shape of a game comment.
type Comment struct {
	User    string `json:"user"`
	Score   int    `json:"score"`
	Content string `json:"content"`
}

// LoginResult is the outcome of a login attempt.
type LoginResult struct {
	OK   bool
	Role Role
}

// AddCommentResult enumerates the outcomes of AddComment.
type AddCommentResult int

const (
	CommentOK AddCommentResult = iota
	CommentDuplicate
	CommentGameMissing
)
