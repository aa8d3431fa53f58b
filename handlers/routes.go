package handlers

import (
	"github.com/gorilla/mux"
)

// NewRouter wires the REST surface of the hall. The websocket endpoint is
// registered by the caller so this package stays free of connection state.
func (h *Handlers) NewRouter() *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/api/lobbies", h.CreateLobby).Methods("POST")
	r.HandleFunc("/api/lobbies", h.ListLobbies).Methods("GET")
	r.HandleFunc("/api/lobbies/{lobbyID}", h.GetLobby).Methods("GET")
	r.HandleFunc("/api/lobbies/{lobbyID}/join", h.JoinLobby).Methods("POST")

	r.HandleFunc("/api/history", h.AllHistories).Methods("GET")
	r.HandleFunc("/api/history/{lobbyID}", h.GetHistory).Methods("GET")

	r.HandleFunc("/api/health", h.Health).Methods("GET")

	return r
}
