// Package hubs wires client actions to the lobby registry, the session
// managers and the game engines, and emits the resulting broadcasts.
// It only talks to the transport through the Broadcaster interface.
package hubs

import (
	"sync"
	"time"

	"github.com/gamehall/backend/lobby"
	"github.com/gamehall/backend/models"
	"github.com/gamehall/backend/server"
)

// Broadcaster is what the hubs need from the real-time transport. All
// sends are fire-and-forget: a send failure is the transport's problem,
// never a game-state error.
type Broadcaster interface {
	AddToGroup(connID, groupID string)
	RemoveFromGroup(connID, groupID string)
	SendToConn(connID, event string, data any)
	SendToGroup(groupID, event string, data any)
}

// Recorder is what the hubs need from the history recorder. All calls
// are fire-and-forget.
type Recorder interface {
	StartGame(lobbyID, lobbyName, gameType string, players []string)
	LogAction(lobbyID, gameType, playerName, actionType, details string, payload any)
	EndGame(lobbyID, winner string, isTie bool)
}

// SystemActor names the engine itself in recorded actions.
const SystemActor = "SYSTEM"

// presenceEntry remembers which lobby and player a connection
// identified as when it joined a lobby group.
type presenceEntry struct {
	LobbyID    string
	PlayerName string
}

type Hubs struct {
	Lobbies   *lobby.Registry
	ConnFour  *server.Manager
	Grid      *server.Manager
	Broadcast Broadcaster
	Recorder  Recorder

	// RedirectDelay is the cosmetic pause between the rematch-accepted
	// and redirect broadcasts; LingerDelay keeps a finished quick-match
	// session around long enough for clients to render the outcome.
	RedirectDelay time.Duration
	LingerDelay   time.Duration

	mu       sync.Mutex
	presence map[string]presenceEntry // connID -> (lobby, player)
}

func New(lobbies *lobby.Registry, connFour, grid *server.Manager, b Broadcaster, r Recorder, redirectDelay, lingerDelay time.Duration) *Hubs {
	return &Hubs{
		Lobbies:       lobbies,
		ConnFour:      connFour,
		Grid:          grid,
		Broadcast:     b,
		Recorder:      r,
		RedirectDelay: redirectDelay,
		LingerDelay:   lingerDelay,
		presence:      make(map[string]presenceEntry),
	}
}

// managerFor maps a lobby game type to its session manager; nil for the
// race game, whose state lives on the lobby itself.
func (h *Hubs) managerFor(gameType string) *server.Manager {
	switch gameType {
	case models.GameTypePuissance4:
		return h.ConnFour
	case models.GameTypeMorpion:
		return h.Grid
	}
	return nil
}

func (h *Hubs) rememberPresence(connID, lobbyID, playerName string) {
	h.mu.Lock()
	h.presence[connID] = presenceEntry{LobbyID: lobbyID, PlayerName: playerName}
	h.mu.Unlock()
}

func (h *Hubs) forgetPresence(connID string) (presenceEntry, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	entry, ok := h.presence[connID]
	delete(h.presence, connID)
	return entry, ok
}

func (h *Hubs) sendError(connID, message string) {
	h.Broadcast.SendToConn(connID, models.EvtError, message)
}
