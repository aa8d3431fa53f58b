package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/gamehall/backend/auth"
	"github.com/gamehall/backend/lobby"
	"github.com/gamehall/backend/models"
)

type createLobbyRequest struct {
	Name       string `json:"name"`
	HostName   string `json:"hostName"`
	GameType   string `json:"gameType"`
	MaxPlayers int    `json:"maxPlayers"`
}

type lobbyResponse struct {
	Lobby  lobby.Info `json:"lobby"`
	Ticket string     `json:"ticket,omitempty"`
}

// CreateLobby opens a new waiting room and seats the host. The response
// carries a ticket the host presents on the websocket for lobby actions.
func (h *Handlers) CreateLobby(w http.ResponseWriter, r *http.Request) {
	var req createLobbyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	req.HostName = strings.TrimSpace(req.HostName)
	if req.HostName == "" {
		writeError(w, http.StatusBadRequest, "hostName is required")
		return
	}
	if !models.KnownGameType(req.GameType) {
		writeError(w, http.StatusBadRequest, "Unknown gameType")
		return
	}
	if req.Name == "" {
		req.Name = req.HostName + "'s room"
	}
	maxPlayers := req.MaxPlayers
	if maxPlayers <= 0 {
		maxPlayers = models.DefaultMaxPlayers(req.GameType)
	}
	if maxPlayers < models.MinPlayersFor(req.GameType) {
		writeError(w, http.StatusBadRequest, "maxPlayers below the game minimum")
		return
	}

	l := h.Lobbies.CreateLobby(req.Name, req.HostName, req.GameType, maxPlayers)

	ticket, err := auth.GenerateTicket(l.ID, req.HostName)
	if err != nil {
		log.Printf("[API] Failed to sign ticket for lobby %s: %v", l.ID, err)
		writeError(w, http.StatusInternalServerError, "Failed to issue ticket")
		return
	}

	writeJSON(w, http.StatusCreated, lobbyResponse{Lobby: l.Snapshot(), Ticket: ticket})
}

// ListLobbies returns joinable lobbies, optionally filtered by gameType.
func (h *Handlers) ListLobbies(w http.ResponseWriter, r *http.Request) {
	gameType := r.URL.Query().Get("gameType")
	if gameType != "" && !models.KnownGameType(gameType) {
		writeError(w, http.StatusBadRequest, "Unknown gameType")
		return
	}

	lobbies := h.Lobbies.ListLobbies(gameType)
	infos := make([]lobby.Info, 0, len(lobbies))
	for _, l := range lobbies {
		infos = append(infos, l.Snapshot())
	}
	writeJSON(w, http.StatusOK, infos)
}

func (h *Handlers) GetLobby(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["lobbyID"]
	l, ok := h.Lobbies.GetLobby(id)
	if !ok {
		writeError(w, http.StatusNotFound, "Lobby not found")
		return
	}
	writeJSON(w, http.StatusOK, l.Snapshot())
}

type joinLobbyRequest struct {
	PlayerName string `json:"playerName"`
}

type joinLobbyResponse struct {
	Status string     `json:"status"`
	Lobby  lobby.Info `json:"lobby,omitempty"`
	Ticket string     `json:"ticket,omitempty"`
}

// JoinLobby seats a player in an existing lobby. Failures map to HTTP
// statuses but the body always names the precise outcome.
func (h *Handlers) JoinLobby(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["lobbyID"]

	var req joinLobbyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	req.PlayerName = strings.TrimSpace(req.PlayerName)
	if req.PlayerName == "" {
		writeError(w, http.StatusBadRequest, "playerName is required")
		return
	}

	result := h.Lobbies.JoinLobby(id, req.PlayerName)
	if result != lobby.JoinSuccess {
		writeJSON(w, joinStatusCode(result), joinLobbyResponse{Status: result.String()})
		return
	}

	l, _ := h.Lobbies.GetLobby(id)
	ticket, err := auth.GenerateTicket(id, req.PlayerName)
	if err != nil {
		log.Printf("[API] Failed to sign ticket for lobby %s: %v", id, err)
		writeError(w, http.StatusInternalServerError, "Failed to issue ticket")
		return
	}

	writeJSON(w, http.StatusOK, joinLobbyResponse{
		Status: result.String(),
		Lobby:  l.Snapshot(),
		Ticket: ticket,
	})
}

func joinStatusCode(r lobby.JoinResult) int {
	switch r {
	case lobby.JoinLobbyNotFound:
		return http.StatusNotFound
	case lobby.JoinGameAlreadyStarted, lobby.JoinLobbyFull:
		return http.StatusConflict
	case lobby.JoinNameAlreadyTaken:
		return http.StatusConflict
	default:
		return http.StatusBadRequest
	}
}

func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
