package hubs

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/gamehall/backend/game"
	"github.com/gamehall/backend/models"
)

// JoinBoardGame seats a lobby player at their started board game. The
// session is keyed by the lobby id and created when the second player
// arrives; a player rejoining under the same name is reseated and
// resynced instead.
func (h *Hubs) JoinBoardGame(connID, lobbyID, username string) {
	l, ok := h.Lobbies.GetLobby(lobbyID)
	if !ok {
		h.sendError(connID, "Lobby not found")
		return
	}

	m := h.managerFor(l.GameType)
	if m == nil {
		h.sendError(connID, l.GameType+" has no board")
		return
	}

	if sess, exists := m.SessionByID(lobbyID); exists {
		if sess.PlayerByName(username) == nil {
			h.sendError(connID, "Game already in progress")
			return
		}

		if _, _, err := m.Reseat(lobbyID, username, connID); err != nil {
			log.Printf("[GAME] %s reseat failed in %s: %v", username, lobbyID, err)
			h.sendError(connID, "Could not rejoin the game")
			return
		}
		h.Broadcast.AddToGroup(connID, lobbyID)
		h.Broadcast.SendToConn(connID, startEventFor(l.GameType), sessionSnapshot(sess))
		return
	}

	p := m.CreatePlayer(username, connID)
	sess := m.PairForSession(lobbyID, p)
	if sess == nil {
		h.Broadcast.AddToGroup(connID, lobbyID)
		h.Broadcast.SendToConn(connID, waitingEventFor(l.GameType), nil)
		return
	}

	h.Broadcast.AddToGroup(connID, lobbyID)

	names := []string{sess.Player1.Name, sess.Player2.Name}
	h.Recorder.StartGame(lobbyID, l.Name, l.GameType, names)
	h.Recorder.LogAction(lobbyID, l.GameType, SystemActor, "GameStart",
		fmt.Sprintf("Game started: %s (%s) vs %s (%s)",
			sess.Player1.Name, sess.Player1.Marker, sess.Player2.Name, sess.Player2.Marker), nil)

	h.Broadcast.SendToGroup(lobbyID, startEventFor(l.GameType), sessionSnapshot(sess))
}

// PlaceMark plays one Grid-3 move at (row, col).
func (h *Hubs) PlaceMark(connID string, row, col int) {
	sess, self, _, ok := h.Grid.SessionForConn(connID)
	if !ok {
		h.Broadcast.SendToConn(connID, models.EvtGridNotYourTurn, nil)
		return
	}

	res, err := sess.ApplyMove(self, game.Move{Row: row, Col: col})
	if err != nil {
		switch {
		case errors.Is(err, game.ErrNotPlayersTurn):
			h.Broadcast.SendToConn(connID, models.EvtGridNotYourTurn, nil)
		default:
			h.Broadcast.SendToConn(connID, models.EvtGridInvalidMove, nil)
		}
		return
	}

	h.Recorder.LogAction(sess.ID, models.GameTypeMorpion, self.Name, "PlacePiece",
		fmt.Sprintf("Piece %s placed at (%d, %d)", self.Marker, row, col),
		map[string]any{"row": row, "col": col, "piece": self.Marker})

	h.Broadcast.SendToGroup(sess.ID, models.EvtGridActionLogged, map[string]any{
		"timestamp":   time.Now().Format("15:04:05"),
		"playerName":  self.Name,
		"actionType":  "PlacePiece",
		"description": fmt.Sprintf("Cell (%d, %d)", row+1, col+1),
		"piece":       self.Marker,
	})

	h.Broadcast.SendToGroup(sess.ID, models.EvtGridPiecePlaced, map[string]any{
		"row":   row,
		"col":   col,
		"piece": self.Marker,
	})

	if !res.Over {
		h.Broadcast.SendToGroup(sess.ID, models.EvtGridUpdateTurn, map[string]any{
			"currentPlayer": res.Next.Name,
			"currentPiece":  res.Next.Marker,
		})
		return
	}

	if res.Tie {
		h.Recorder.EndGame(sess.ID, "", true)
		h.Broadcast.SendToGroup(sess.ID, models.EvtGridTie, nil)
	} else {
		h.Recorder.EndGame(sess.ID, res.Winner.Name, false)
		h.Broadcast.SendToGroup(sess.ID, models.EvtGridWinner, res.Winner.Name)
	}

	if l, exists := h.Lobbies.GetLobby(sess.ID); exists {
		l.SetGameOver()
	}

	// explicit cleanup right after the terminal broadcast; the session
	// must still exist on this path
	if err := h.Grid.RemoveSession(sess.ID); err != nil {
		log.Printf("[GAME] cleanup of finished session %s failed: %v", sess.ID, err)
	}
}

func startEventFor(gameType string) string {
	if gameType == models.GameTypeMorpion {
		return models.EvtGridStart
	}
	return models.EvtGameStart
}

func waitingEventFor(gameType string) string {
	if gameType == models.GameTypeMorpion {
		return models.EvtGridWaiting
	}
	return models.EvtWaitingForOpponent
}
