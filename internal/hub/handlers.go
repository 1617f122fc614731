package hub

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/kestrelworks/lobbyhub"
	"github.com/kestrelworks/lobbyhub/internal/catalog"
	"github.com/kestrelworks/lobbyhub/internal/protocol"
	"github.com/kestrelworks/lobbyhub/internal/room"
	"github.com/kestrelworks/lobbyhub/internal/session"
	"github.com/kestrelworks/lobbyhub/internal/transfer"
)

type handlerFunc func(h *Hub, sess *session.Session, payload []byte)

// dispatchTable is the request variant spec.md §9 asks for: one handler
// per action instead of a long string-keyed branch.
var dispatchTable = map[string]handlerFunc{
	"register":         handleRegister,
	"login":            handleLogin,
	"logout":           handleLogout,
	"list_games":       handleListGames,
	"list_rooms":       handleListRooms,
	"list_players":     handleListPlayers,
	"upload_request":   handleUploadRequest,
	"download_request": handleDownloadRequest,
	"delete_game":      handleDeleteGame,
	"create_room":      handleCreateRoom,
	"join_room":        handleJoinRoom,
	"leave_room":       handleLeaveRoom,
	"start_game":       handleStartGame,
	"finish_game":      handleFinishGame,
	"add_comment":      handleAddComment,
}

func handleRegister(h *Hub, sess *session.Session, payload []byte) {
	var req protocol.RegisterRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		return
	}
	role := catalog.RolePlayer
	if req.Role == string(catalog.RoleDeveloper) {
		role = catalog.RoleDeveloper
	}

	ok, err := h.catalog.RegisterUser(req.Username, req.Password, role)
	if err != nil {
		lobbyhub.Log.WithError(err).Error("RegisterUser")
	}
	if ok {
		h.reply(sess, protocol.Reply{Status: protocol.StatusOK, Message: "Registration successful"})
	} else {
		h.reply(sess, protocol.Error("Username already exists"))
	}
}

func handleLogin(h *Hub, sess *session.Session, payload []byte) {
	var req protocol.LoginRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		return
	}

	if _, already := h.tbl.FindByUsername(req.Username); already {
		h.reply(sess, protocol.LoginReply{Status: protocol.StatusError, Message: "User is already logged in."})
		return
	}

	result := h.catalog.LoginUser(req.Username, req.Password)
	if !result.OK {
		h.reply(sess, protocol.LoginReply{Status: protocol.StatusError, Message: "Invalid username or password"})
		return
	}

	sess.State = session.StateLoggedIn
	sess.Username = req.Username
	sess.Role = session.Role(result.Role)
	h.reply(sess, protocol.LoginReply{Status: protocol.StatusOK, Role: string(result.Role)})
}

func handleLogout(h *Hub, sess *session.Session, _ []byte) {
	if sess.State != session.StateLoggedIn && sess.State != session.StateInRoom {
		return
	}
	if sess.State == session.StateInRoom {
		h.leaveRoomAndBroadcast(sess)
	}
	sess.ResetToConnected()
	h.reply(sess, protocol.OK())
}

func handleListGames(h *Hub, sess *session.Session, _ []byte) {
	views := h.catalog.GetGames()
	data := make([]protocol.GameSummary, 0, len(views))
	for _, v := range views {
		gs := protocol.GameSummary{
			Name:         v.Name,
			Dev:          v.Dev,
			Description:  v.Description,
			Filename:     v.Filename,
			Version:      v.Version,
			GameType:     string(v.GameType),
			MaxPlayers:   v.MaxPlayers,
			AvgRating:    v.AvgRating,
			CommentCount: v.CommentCount,
			Downloads:    v.Downloads,
		}
		for _, c := range v.Comments {
			gs.Comments = append(gs.Comments, protocol.Comment(c))
		}
		data = append(data, gs)
	}
	h.reply(sess, protocol.ListGamesReply{Status: protocol.StatusOK, Data: data})
}

func handleListRooms(h *Hub, sess *session.Session, _ []byte) {
	summaries := h.rooms.List()
	data := make([]protocol.RoomSummary, len(summaries))
	for i, s := range summaries {
		data[i] = protocol.RoomSummary{
			ID:         s.ID,
			Name:       s.Name,
			Game:       s.Game,
			Status:     string(s.Status),
			Players:    s.Players,
			MaxPlayers: s.MaxPlayers,
		}
	}
	h.reply(sess, protocol.ListRoomsReply{Status: protocol.StatusOK, Data: data})
}

func handleListPlayers(h *Hub, sess *session.Session, _ []byte) {
	h.reply(sess, protocol.ListPlayersReply{Status: protocol.StatusOK, Data: h.tbl.Players()})
}

func handleUploadRequest(h *Hub, sess *session.Session, payload []byte) {
	if sess.State != session.StateLoggedIn {
		h.reply(sess, protocol.Error("Must be logged in"))
		return
	}
	if sess.Role != session.RoleDeveloper {
		h.reply(sess, protocol.Error("Permission denied: developer account required"))
		return
	}

	var req protocol.UploadRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		return
	}

	owner := h.catalog.GetGameOwner(req.GameName)
	if req.IsNewGame {
		if owner != "" {
			var msg string
			if owner == sess.Username {
				msg = fmt.Sprintf("Failed: You already have a game named '%s'. Please use 'Update Game'.", req.GameName)
			} else {
				msg = fmt.Sprintf("Failed: Game name '%s' is already taken by another developer.", req.GameName)
			}
			h.reply(sess, protocol.Error(msg))
			return
		}
	} else {
		if owner == "" {
			h.reply(sess, protocol.Error(fmt.Sprintf("Failed: Game '%s' does not exist.", req.GameName)))
			return
		}
		if owner != sess.Username {
			h.reply(sess, protocol.Error("Failed: Permission Denied. You do not own this game."))
			return
		}
	}

	version := req.Version
	if version == "" {
		version = "1.0"
	}
	gameType := req.GameType
	if gameType == "" {
		gameType = "CLI"
	}
	maxPlayers := req.MaxPlayers
	if maxPlayers == 0 {
		maxPlayers = 2
	}

	ln, port, err := transfer.Listen(h.cfg.Hostname)
	if err != nil {
		lobbyhub.Log.WithError(err).Error("opening upload transfer listener")
		h.reply(sess, protocol.Error("Failed: could not open transfer port"))
		return
	}

	path := filepath.Join(h.cfg.Catalog.ArtifactDir, req.Filename)

	// Metadata is committed before the transfer completes -- the open
	// question in spec.md §9 is resolved this way deliberately: a failed
	// upload leaves the catalog pointing at a missing/partial file rather
	// than blocking the uploader's reply on the transfer. A missing file is
	// reported to a later downloader as "File missing on server"; a
	// partial file is served as it is.
	if err := h.catalog.UpsertGame(sess.Username, req.GameName, req.Description, req.Filename,
		version, catalog.GameType(gameType), maxPlayers); err != nil {
		lobbyhub.Log.WithError(err).Error("UpsertGame")
	}

	h.grants.Open(port, transfer.KindUpload, path, req.Filesize)
	transfer.Spawn(transfer.KindUpload, ln, path, req.Filesize, h.grants, port)

	h.reply(sess, protocol.TransferReply{Status: protocol.StatusOK, Port: port})
}

func handleDownloadRequest(h *Hub, sess *session.Session, payload []byte) {
	if sess.State != session.StateLoggedIn {
		h.reply(sess, protocol.Error("Must be logged in"))
		return
	}

	var req protocol.DownloadRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		return
	}

	filename := h.catalog.GetGameFilename(req.GameName)
	if filename == "" {
		h.reply(sess, protocol.TransferReply{Status: protocol.StatusError, Message: "Game not found in DB"})
		return
	}

	path := filepath.Join(h.cfg.Catalog.ArtifactDir, filename)
	info, err := os.Stat(path)
	if err != nil {
		h.reply(sess, protocol.TransferReply{Status: protocol.StatusError, Message: "File missing on server"})
		return
	}

	if err := h.catalog.RecordDownload(req.GameName, sess.Username); err != nil {
		lobbyhub.Log.WithError(err).Error("RecordDownload")
	}

	ln, port, err := transfer.Listen(h.cfg.Hostname)
	if err != nil {
		lobbyhub.Log.WithError(err).Error("opening download transfer listener")
		h.reply(sess, protocol.TransferReply{Status: protocol.StatusError, Message: "Failed: could not open transfer port"})
		return
	}

	h.grants.Open(port, transfer.KindDownload, path, info.Size())
	transfer.Spawn(transfer.KindDownload, ln, path, info.Size(), h.grants, port)

	h.reply(sess, protocol.TransferReply{Status: protocol.StatusOK, Port: port, Filesize: info.Size(), Filename: filename})
}

func handleDeleteGame(h *Hub, sess *session.Session, payload []byte) {
	if sess.State != session.StateLoggedIn {
		h.reply(sess, protocol.Error("Must be logged in"))
		return
	}
	if sess.Role != session.RoleDeveloper {
		h.reply(sess, protocol.Error("Permission denied: developer account required"))
		return
	}

	var req protocol.DeleteGameRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		return
	}

	if h.rooms.IsGameActive(req.GameName) {
		h.reply(sess, protocol.Error("Failed: Game is currently active in a room. Please wait for matches to finish."))
		return
	}

	filename, err := h.catalog.DeleteGame(sess.Username, req.GameName)
	if err != nil {
		lobbyhub.Log.WithError(err).Error("DeleteGame")
	}
	if filename == "" {
		h.reply(sess, protocol.Error("Permission Denied: You do not own this game or it does not exist."))
		return
	}

	path := filepath.Join(h.cfg.Catalog.ArtifactDir, filename)
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		lobbyhub.Log.WithError(err).WithField("path", path).Warn("failed to unlink deleted game artifact")
	}
	h.reply(sess, protocol.Reply{Status: protocol.StatusOK, Message: "Game deleted successfully"})
}

func handleCreateRoom(h *Hub, sess *session.Session, payload []byte) {
	if sess.State != session.StateLoggedIn {
		h.reply(sess, protocol.Error("Must be logged in"))
		return
	}
	if sess.Role != session.RolePlayer {
		h.reply(sess, protocol.Error("Permission denied: player account required"))
		return
	}

	var req protocol.CreateRoomRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		return
	}

	if h.catalog.GetGameFilename(req.GameName) == "" {
		h.reply(sess, protocol.CreateRoomReply{Status: protocol.StatusError, Message: "Game not found"})
		return
	}

	maxPlayers := h.catalog.GetGameMaxPlayers(req.GameName)
	roomID := h.rooms.Create(req.RoomName, sess.Username, req.GameName, maxPlayers)

	sess.State = session.StateInRoom
	sess.RoomID = roomID

	info, _ := h.rooms.Info(roomID)
	h.reply(sess, protocol.CreateRoomReply{
		Status: protocol.StatusOK,
		RoomID: roomID,
		Data:   toProtocolRoomInfo(info),
	})
}

func handleJoinRoom(h *Hub, sess *session.Session, payload []byte) {
	if sess.State != session.StateLoggedIn {
		h.reply(sess, protocol.Error("Must be logged in"))
		return
	}
	if sess.Role != session.RolePlayer {
		h.reply(sess, protocol.Error("Permission denied: player account required"))
		return
	}

	var req protocol.JoinRoomRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		return
	}

	if !h.rooms.Join(req.RoomID, sess.Username) {
		h.reply(sess, protocol.JoinRoomReply{Status: protocol.StatusError, Message: "Cannot join (Room full or playing)"})
		return
	}

	sess.State = session.StateInRoom
	sess.RoomID = req.RoomID

	info, _ := h.rooms.Info(req.RoomID)
	roomInfo := toProtocolRoomInfo(info)

	h.reply(sess, protocol.JoinRoomReply{Status: protocol.StatusOK, Message: "Joined", Data: &roomInfo})

	h.broadcastToRoom(req.RoomID, sess.ID, protocol.PlayerJoinedBroadcast{
		Action:   protocol.BroadcastPlayerJoined,
		Username: sess.Username,
		Data:     roomInfo,
	})
}

func handleLeaveRoom(h *Hub, sess *session.Session, _ []byte) {
	if sess.State != session.StateInRoom {
		h.reply(sess, protocol.OK())
		return
	}
	h.leaveRoomAndBroadcast(sess)
	h.reply(sess, protocol.OK())
}

func handleStartGame(h *Hub, sess *session.Session, _ []byte) {
	if sess.State != session.StateInRoom {
		return
	}
	info, ok := h.rooms.Info(sess.RoomID)
	if !ok || info.Host != sess.Username {
		return
	}
	if !h.rooms.IsFull(sess.RoomID) {
		h.reply(sess, protocol.Error("Cannot start: Room is not full yet."))
		return
	}

	filename := h.catalog.GetGameFilename(info.Game)
	gamePort := h.cfg.GamePortBase + sess.RoomID

	launchGame(filepath.Join(h.cfg.Catalog.ArtifactDir, filename), gamePort)
	h.rooms.StartGame(sess.RoomID, gamePort)

	h.broadcastToRoom(sess.RoomID, 0, protocol.GameStartBroadcast{
		Action:   protocol.BroadcastGameStart,
		GamePort: gamePort,
		Filename: filename,
	})
}

func handleFinishGame(h *Hub, sess *session.Session, _ []byte) {
	if sess.State != session.StateInRoom {
		return
	}
	info, ok := h.rooms.Info(sess.RoomID)
	if !ok || info.Host != sess.Username {
		return
	}

	h.rooms.FinishGame(sess.RoomID)
	for _, player := range info.Players {
		if err := h.catalog.RecordPlayHistory(player, info.Game); err != nil {
			lobbyhub.Log.WithError(err).Error("RecordPlayHistory")
		}
	}

	updated, _ := h.rooms.Info(sess.RoomID)
	h.broadcastToRoom(sess.RoomID, 0, protocol.RoomResetBroadcast{
		Action: protocol.BroadcastRoomReset,
		Data:   toProtocolRoomInfo(updated),
	})
}

func handleAddComment(h *Hub, sess *session.Session, payload []byte) {
	if sess.State != session.StateLoggedIn {
		h.reply(sess, protocol.Error("Must be logged in"))
		return
	}
	if sess.Role != session.RolePlayer {
		h.reply(sess, protocol.Error("Permission denied: player account required"))
		return
	}

	var req protocol.AddCommentRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		return
	}

	if !h.catalog.HasPlayed(sess.Username, req.GameName) {
		h.reply(sess, protocol.Error("You must play this game before rating it!"))
		return
	}

	result, err := h.catalog.AddComment(req.GameName, sess.Username, req.Score, req.Content)
	if err != nil {
		lobbyhub.Log.WithError(err).Error("AddComment")
	}
	if result == catalog.CommentOK {
		h.reply(sess, protocol.Reply{Status: protocol.StatusOK, Message: "Comment added successfully"})
	} else {
		h.reply(sess, protocol.Error("You have already rated this game or game not found."))
	}
}

func toProtocolRoomInfo(info room.Info) protocol.RoomInfo {
	return protocol.RoomInfo{
		ID:         info.ID,
		Name:       info.Name,
		Host:       info.Host,
		Game:       info.Game,
		Status:     string(info.Status),
		Players:    info.Players,
		MaxPlayers: info.MaxPlayers,
		GamePort:   info.GamePort,
	}
}
