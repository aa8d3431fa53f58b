package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
)

// AllHistories dumps every recorded game, newest first.
func (h *Handlers) AllHistories(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.History.AllHistories())
}

// GetHistory returns the action log of a single game by lobby id.
func (h *Handlers) GetHistory(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["lobbyID"]
	hist, ok := h.History.History(id)
	if !ok {
		writeError(w, http.StatusNotFound, "No history for this lobby")
		return
	}
	writeJSON(w, http.StatusOK, hist)
}
