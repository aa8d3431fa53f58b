package hubs

import (
	"log"

	"github.com/gamehall/backend/models"
	"github.com/gamehall/backend/server"
)

// HandleDisconnect reconciles all state a lost connection was part of.
// A game cannot continue without its player: the opponent is notified,
// the session is torn down best-effort, and the lobby is removed (no
// partial-game resumption is supported).
func (h *Hubs) HandleDisconnect(connID string) {
	h.dropFromBoardGames(connID)

	entry, ok := h.forgetPresence(connID)
	if !ok {
		return
	}

	l, exists := h.Lobbies.GetLobby(entry.LobbyID)
	if !exists || !l.Started() || l.GameOver() {
		// nothing running that this player can abandon
		return
	}

	log.Printf("[DISCONNECT] %s left running lobby %s", entry.PlayerName, entry.LobbyID)

	h.Recorder.LogAction(entry.LobbyID, l.GameType, entry.PlayerName, "Disconnect",
		entry.PlayerName+" left the game", nil)
	h.Recorder.EndGame(entry.LobbyID, "", false)

	h.Broadcast.SendToGroup(entry.LobbyID, models.EvtPlayerLeft, map[string]any{
		"playerName": entry.PlayerName,
		"message":    entry.PlayerName + " left the game.",
	})

	// the session may already be gone
	if m := h.managerFor(l.GameType); m != nil {
		m.RemoveSessionIfExists(entry.LobbyID)
	}
	h.Lobbies.RemoveLobby(entry.LobbyID)
}

// dropFromBoardGames ends any board session the connection was seated
// in and clears queue or pending entries otherwise.
func (h *Hubs) dropFromBoardGames(connID string) {
	for _, m := range []*server.Manager{h.ConnFour, h.Grid} {
		sess, self, opponent, ok := m.SessionForConn(connID)
		if !ok {
			m.DropConn(connID)
			continue
		}

		if sess.IsFinished() {
			// the game already ended; the lobby may still be running
			// its rematch protocol, so a leaver must not tear it down.
			// Only a lingering quick-match session (no lobby behind the
			// id) gets dropped early.
			if l, exists := h.Lobbies.GetLobby(sess.ID); exists && l.GameOver() {
				continue
			}
			m.RemoveSessionIfExists(sess.ID)
			continue
		}

		h.Recorder.LogAction(sess.ID, m.Family(), self.Name, "Disconnect",
			self.Name+" left the game", nil)
		h.Recorder.EndGame(sess.ID, opponent.Name, false)
		h.Broadcast.SendToGroup(sess.ID, opponentLeftEventFor(m.Family()), self.Name+" left the game")

		m.RemoveSessionIfExists(sess.ID)

		// lobby-keyed sessions share their lobby's id; drop the lobby too
		h.Lobbies.RemoveLobby(sess.ID)
	}
}

func opponentLeftEventFor(family string) string {
	if family == models.GameTypeMorpion {
		return models.EvtGridOpponentLeft
	}
	return models.EvtOpponentLeft
}
