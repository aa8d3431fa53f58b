package hubs

import (
	"fmt"

	"github.com/gamehall/backend/lobby"
	"github.com/gamehall/backend/models"
)

// UpdateProgress stores a racer's latest completion percentage and
// fans it out to the lobby. Last write wins: the engine does not force
// monotonic progress, a client may resend a lower value after a
// correction.
func (h *Hubs) UpdateProgress(connID, lobbyID, playerName string, progress int) {
	l, ok := h.Lobbies.GetLobby(lobbyID)
	if !ok {
		h.sendError(connID, "Lobby not found")
		return
	}

	if !l.HasPlayer(playerName) {
		h.sendError(connID, "Player is not in this lobby")
		return
	}

	applied := false
	stored := 0
	l.WithGame(func(gs lobby.GameState) {
		race, isRace := gs.(lobby.RaceState)
		if !isRace {
			return
		}
		stored = race.SetProgress(playerName, progress)
		applied = true
	})
	if !applied {
		// lobby exists but carries no race state: inconsistency,
		// reported generically to the caller
		h.sendError(connID, "Invalid game state")
		return
	}

	// everything downstream sees the stored value, never the raw
	// client one, so the live broadcast agrees with a later resync
	if stored%25 == 0 || stored >= 100 {
		h.Recorder.LogAction(lobbyID, models.GameTypeSpeedTyping, playerName, "Progress",
			fmt.Sprintf("Progress: %d%%", stored),
			map[string]any{"progress": stored})
	}

	h.Broadcast.SendToGroup(lobbyID, models.EvtPlayerProgress, map[string]any{
		"playerName": playerName,
		"progress":   stored,
	})
}

// FinishRace ranks the racers, announces the podium and seals the
// lobby's game. Ties keep join order; an empty roster has no winner.
func (h *Hubs) FinishRace(connID, lobbyID string) {
	l, ok := h.Lobbies.GetLobby(lobbyID)
	if !ok {
		h.sendError(connID, "Lobby not found")
		return
	}

	var podium any
	var winner string
	finalized := false
	l.WithGame(func(gs lobby.GameState) {
		race, isRace := gs.(lobby.RaceState)
		if !isRace {
			return
		}
		podium, winner = race.Finalize()
		finalized = true
	})
	if !finalized {
		h.sendError(connID, "Invalid game state")
		return
	}

	l.SetGameOver()

	h.Broadcast.SendToGroup(lobbyID, models.EvtRaceEnd, map[string]any{
		"podium": podium,
		"winner": winner,
	})

	h.Recorder.LogAction(lobbyID, models.GameTypeSpeedTyping, SystemActor, "GameEnd",
		fmt.Sprintf("Race finished. Winner: %s", winnerOrNone(winner)),
		map[string]any{"podium": podium})
	h.Recorder.EndGame(lobbyID, winner, false)
}

func winnerOrNone(winner string) string {
	if winner == "" {
		return "none"
	}
	return winner
}
