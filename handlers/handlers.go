package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gamehall/backend/history"
	"github.com/gamehall/backend/lobby"
)

// Handlers carries the dependencies of the lobby HTTP API.
type Handlers struct {
	Lobbies *lobby.Registry
	History *history.Service
}

func New(lobbies *lobby.Registry, hist *history.Service) *Handlers {
	return &Handlers{Lobbies: lobbies, History: hist}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
