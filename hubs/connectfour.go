package hubs

import (
	"errors"
	"fmt"
	"time"

	"github.com/gamehall/backend/game"
	"github.com/gamehall/backend/models"
	"github.com/gamehall/backend/server"
)

// FindGame is the quick-match entry for Four-in-a-Row: pair with the
// longest-waiting opponent or wait in the FIFO pool.
func (h *Hubs) FindGame(connID, username string) {
	p, err := h.ConnFour.RegisterPlayer(username, connID)
	if err != nil {
		h.Broadcast.SendToConn(connID, models.EvtUsernameTaken, nil)
		return
	}
	h.Broadcast.SendToConn(connID, models.EvtPlayerJoined, map[string]any{
		"name": p.Name,
	})

	sess := h.ConnFour.MatchOrQueue(p)
	if sess == nil {
		h.Broadcast.SendToConn(connID, models.EvtWaitingForOpponent, nil)
		return
	}

	h.Broadcast.AddToGroup(sess.Player1.ConnID, sess.ID)
	h.Broadcast.AddToGroup(sess.Player2.ConnID, sess.ID)

	h.Recorder.StartGame(sess.ID, "", models.GameTypePuissance4, []string{sess.Player1.Name, sess.Player2.Name})
	h.Broadcast.SendToGroup(sess.ID, models.EvtGameStart, sessionSnapshot(sess))
}

// PlacePiece plays one quick-match or lobby-keyed Four-in-a-Row move.
func (h *Hubs) PlacePiece(connID string, column int) {
	sess, self, _, ok := h.ConnFour.SessionForConn(connID)
	if !ok {
		h.sendError(connID, "Game not found")
		return
	}

	res, err := sess.ApplyMove(self, game.Move{Col: column})
	if err != nil {
		switch {
		case errors.Is(err, game.ErrNotPlayersTurn):
			h.Broadcast.SendToConn(connID, models.EvtNotYourTurn, "It is not your turn")
		case errors.Is(err, game.ErrInvalidMove):
			h.Broadcast.SendToConn(connID, models.EvtInvalidMove, "Invalid move (column full)")
		default:
			h.sendError(connID, "Could not place the piece")
		}
		return
	}

	h.Recorder.LogAction(sess.ID, models.GameTypePuissance4, self.Name, "PlacePiece",
		fmt.Sprintf("Piece %s dropped in column %d", self.Marker, column),
		map[string]any{"row": res.Placement.Row, "column": column, "color": self.Marker})

	h.Broadcast.SendToGroup(sess.ID, models.EvtPiecePlaced, map[string]any{
		"row":    res.Placement.Row,
		"column": res.Placement.Col,
		"color":  self.Marker,
		"player": self.Name,
	})

	if !res.Over {
		h.Broadcast.SendToGroup(sess.ID, models.EvtUpdateTurn, map[string]any{
			"currentPlayer": res.Next.Name,
			"currentColor":  res.Next.Marker,
		})
		return
	}

	if res.Tie {
		h.Recorder.EndGame(sess.ID, "", true)
		h.Broadcast.SendToGroup(sess.ID, models.EvtGameOver, map[string]any{
			"isTie":   true,
			"message": "Tie game!",
		})
	} else {
		h.Recorder.EndGame(sess.ID, res.Winner.Name, false)
		h.Broadcast.SendToGroup(sess.ID, models.EvtGameOver, map[string]any{
			"isTie":       false,
			"winner":      res.Winner.Name,
			"winnerColor": res.Winner.Marker,
			"message":     res.Winner.Name + " wins!",
		})
	}

	if l, exists := h.Lobbies.GetLobby(sess.ID); exists {
		l.SetGameOver()
	}

	// leave the finished session readable while clients render the
	// outcome, then drop it; a disconnect may beat the timer, hence
	// the if-exists variant
	id := sess.ID
	time.AfterFunc(h.LingerDelay, func() {
		h.ConnFour.RemoveSessionIfExists(id)
	})
}

// sessionSnapshot is the full-session payload sent on game start.
func sessionSnapshot(sess *server.GameSession) map[string]any {
	return map[string]any{
		"gameId": sess.ID,
		"player1": map[string]any{
			"name":   sess.Player1.Name,
			"color":  sess.Player1.Marker,
			"marker": sess.Player1.Marker,
		},
		"player2": map[string]any{
			"name":   sess.Player2.Name,
			"color":  sess.Player2.Marker,
			"marker": sess.Player2.Marker,
		},
		"board":         sess.Board(),
		"currentPlayer": sess.WhoseTurn().Name,
	}
}
