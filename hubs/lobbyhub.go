package hubs

import (
	"fmt"
	"log"
	"time"

	"github.com/gamehall/backend/game/typerace"
	"github.com/gamehall/backend/lobby"
	"github.com/gamehall/backend/models"
)

// JoinLobbyGroup admits a connection into a lobby's broadcast group and
// records who it is. A late joiner of a running race is resynced with
// the current progress.
func (h *Hubs) JoinLobbyGroup(connID, lobbyID, playerName string) {
	h.Broadcast.AddToGroup(connID, lobbyID)

	if playerName != "" {
		h.rememberPresence(connID, lobbyID, playerName)
	}

	l, ok := h.Lobbies.GetLobby(lobbyID)
	if !ok || !l.Started() {
		return
	}

	l.WithGame(func(gs lobby.GameState) {
		race, isRace := gs.(lobby.RaceState)
		if !isRace {
			return
		}
		h.Broadcast.SendToConn(connID, models.EvtGameStarted, map[string]any{
			"gameType": l.GameType,
			"players":  race.Players,
			"text":     race.Text,
		})
		for name, pct := range race.Progress {
			h.Broadcast.SendToConn(connID, models.EvtPlayerProgress, map[string]any{
				"playerName": name,
				"progress":   pct,
			})
		}
	})
}

func (h *Hubs) LeaveLobbyGroup(connID, lobbyID string) {
	h.Broadcast.RemoveFromGroup(connID, lobbyID)
	h.forgetPresence(connID)
}

// StartLobbyGame starts the lobby's configured game. For the race it
// builds and starts the race state in place; for a board game it marks
// the lobby started and lets the game hub seat the players as they
// arrive on the game page.
func (h *Hubs) StartLobbyGame(connID, lobbyID string) {
	l, ok := h.Lobbies.GetLobby(lobbyID)
	if !ok {
		h.sendError(connID, "Lobby not found")
		return
	}
	if l.Started() {
		// a duplicate start must not rebuild the state under a running
		// game and wipe everyone's progress
		h.sendError(connID, "Game already started")
		return
	}

	switch l.GameType {
	case models.GameTypeSpeedTyping:
		h.startRace(connID, l)

	case models.GameTypePuissance4, models.GameTypeMorpion:
		if l.PlayerCount() < models.MinPlayersFor(l.GameType) {
			h.sendError(connID, fmt.Sprintf("%s needs %d players", l.GameType, models.MinPlayersFor(l.GameType)))
			return
		}
		l.Begin(lobby.SessionHandle{SessionID: l.ID, Family: l.GameType})
		h.Broadcast.SendToGroup(l.ID, models.EvtGameStarted, map[string]any{
			"gameType": l.GameType,
		})

	default:
		h.sendError(connID, "Unknown game type")
	}
}

func (h *Hubs) startRace(connID string, l *lobby.Lobby) {
	race := typerace.New(l.HostName)
	for _, p := range l.Players() {
		race.AddPlayer(p)
	}

	if err := race.Start(); err != nil {
		// precondition failure: report to the caller, state unchanged
		h.sendError(connID, err.Error())
		return
	}

	l.Begin(lobby.RaceState{Game: race})

	players := l.Players()
	h.Recorder.StartGame(l.ID, l.Name, l.GameType, players)
	h.Recorder.LogAction(l.ID, l.GameType, SystemActor, "GameStart",
		fmt.Sprintf("Race started with %d players", len(players)), nil)

	h.Broadcast.SendToGroup(l.ID, models.EvtGameStarted, map[string]any{
		"gameType": l.GameType,
		"players":  players,
		"text":     race.Text,
	})
}

// RequestRematch records a yes-vote. Voting twice is a no-op. When the
// whole roster has voted the rematch starts.
func (h *Hubs) RequestRematch(lobbyID, playerName string) {
	l, ok := h.Lobbies.GetLobby(lobbyID)
	if !ok {
		return
	}

	votes, total, all := l.Vote(playerName)
	h.Broadcast.SendToGroup(lobbyID, models.EvtRematchVoteReceived, map[string]any{
		"playerName":   playerName,
		"votesCount":   len(votes),
		"totalPlayers": total,
		"votes":        votes,
	})

	if all {
		h.startRematch(l)
	}
}

// DeclineRematch records a refusal. When too few players remain
// willing, the still-attached session is torn down and everyone is sent
// back to the lobby.
func (h *Hubs) DeclineRematch(lobbyID, playerName string) {
	l, ok := h.Lobbies.GetLobby(lobbyID)
	if !ok {
		return
	}

	remaining := l.Decline(playerName)
	h.Broadcast.SendToGroup(lobbyID, models.EvtRematchDeclined, map[string]any{
		"playerName": playerName,
		"message":    playerName + " declined the rematch.",
	})

	if remaining < models.MinPlayersFor(l.GameType) {
		h.cleanupFamilySession(l)
		h.Broadcast.SendToGroup(lobbyID, models.EvtReturnToLobby, map[string]any{
			"reason":  "not_enough_players",
			"message": "Not enough players for a rematch. Back to the lobby.",
		})
	}
}

// ReturnAllToLobby is the manual path: tear down any session and reset
// the lobby in place, same id.
func (h *Hubs) ReturnAllToLobby(lobbyID string) {
	l, ok := h.Lobbies.GetLobby(lobbyID)
	if !ok {
		return
	}

	h.cleanupFamilySession(l)
	l.ResetForRematch()

	h.Broadcast.SendToGroup(lobbyID, models.EvtReturnToLobby, map[string]any{
		"reason":  "manual",
		"message": "Back to the lobby.",
	})
}

// startRematch moves the yes-voters into a brand-new lobby. A new id is
// minted on purpose: the per-family session state is keyed by the old
// lobby id and must not leak into the next game. The first yes-voter
// hosts, falling back to the original host.
func (h *Hubs) startRematch(l *lobby.Lobby) {
	survivors := l.Votes()
	newHost := l.HostName
	if len(survivors) > 0 {
		newHost = survivors[0]
	}

	h.cleanupFamilySession(l)
	h.Lobbies.RemoveLobby(l.ID)

	fresh := h.Lobbies.CreateLobby(l.Name, newHost, l.GameType, l.MaxPlayers)
	for _, name := range survivors {
		if name == newHost {
			continue
		}
		if res := h.Lobbies.JoinLobby(fresh.ID, name); res != lobby.JoinSuccess {
			log.Printf("[REMATCH] Could not carry %s into lobby %s: %s", name, fresh.ID, res)
		}
	}

	log.Printf("[REMATCH] Lobby %s rematched into %s with %d players", l.ID, fresh.ID, len(survivors))
	h.Recorder.LogAction(l.ID, l.GameType, SystemActor, "Rematch",
		fmt.Sprintf("All players accepted, continuing in lobby %s", fresh.ID), nil)

	h.Broadcast.SendToGroup(l.ID, models.EvtRematchStarting, map[string]any{
		"message": "All players accepted! Starting the rematch...",
	})

	// cosmetic pause so clients can show the acceptance before the redirect
	time.Sleep(h.RedirectDelay)
	h.Broadcast.SendToGroup(l.ID, models.EvtGoToRoom, fresh.ID)
}

// cleanupFamilySession best-effort-removes the per-family session keyed
// by the lobby id. The session may already be gone; that is fine.
func (h *Hubs) cleanupFamilySession(l *lobby.Lobby) {
	if m := h.managerFor(l.GameType); m != nil {
		m.RemoveSessionIfExists(l.ID)
	}
}
