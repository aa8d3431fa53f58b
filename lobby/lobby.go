// Package lobby implements the pre-game waiting rooms and their
// concurrent registry.
package lobby

import (
	"strings"
	"sync"
	"time"

	"github.com/gamehall/backend/game/typerace"
)

// GameState is the active game attached to a started lobby. It is a
// closed set: a board-game lobby holds a SessionHandle naming its
// per-family session, a race lobby holds the race state itself.
// Inspect with a type switch over both variants.
type GameState interface {
	gameState()
}

// SessionHandle points at a board-game session owned by a session
// manager. Family is the lobby's game-type tag.
type SessionHandle struct {
	SessionID string
	Family    string
}

func (SessionHandle) gameState() {}

// RaceState is the race game's own state, owned by the lobby.
type RaceState struct {
	*typerace.Game
}

func (RaceState) gameState() {}

// JoinResult is the outcome of trying to join a lobby. The checks run
// in a fixed order so the most specific applicable error wins.
type JoinResult int

const (
	JoinSuccess JoinResult = iota
	JoinLobbyNotFound
	JoinGameAlreadyStarted
	JoinLobbyFull
	JoinNameAlreadyTaken
)

func (r JoinResult) String() string {
	switch r {
	case JoinSuccess:
		return "success"
	case JoinLobbyNotFound:
		return "lobby_not_found"
	case JoinGameAlreadyStarted:
		return "game_already_started"
	case JoinLobbyFull:
		return "lobby_full"
	case JoinNameAlreadyTaken:
		return "name_already_taken"
	}
	return "unknown"
}

// Lobby is one waiting room. All compound read-then-write operations on
// a lobby go through its methods, which hold the lobby's own mutex; the
// registry's lock only protects the id map.
type Lobby struct {
	ID         string
	Name       string
	HostName   string
	GameType   string
	MaxPlayers int
	CreatedAt  time.Time

	mu       sync.Mutex
	players  []string // insertion order = join order
	started  bool
	gameOver bool
	gs       GameState
	votes    []string // rematch yes-votes, in vote order
	declines map[string]bool
}

// Join appends playerName if the lobby is joinable. Name uniqueness is
// case-insensitive.
func (l *Lobby) Join(playerName string) JoinResult {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.started {
		return JoinGameAlreadyStarted
	}
	if len(l.players) >= l.MaxPlayers {
		return JoinLobbyFull
	}
	for _, p := range l.players {
		if strings.EqualFold(p, playerName) {
			return JoinNameAlreadyTaken
		}
	}

	l.players = append(l.players, playerName)
	return JoinSuccess
}

// RemovePlayer drops a player from the roster. Reports whether the
// player was present and how many players remain.
func (l *Lobby) RemovePlayer(playerName string) (removed bool, remaining int) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for i, p := range l.players {
		if p == playerName {
			l.players = append(l.players[:i], l.players[i+1:]...)
			return true, len(l.players)
		}
	}
	return false, len(l.players)
}

func (l *Lobby) HasPlayer(playerName string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	for _, p := range l.players {
		if p == playerName {
			return true
		}
	}
	return false
}

// Players returns a copy of the roster in join order.
func (l *Lobby) Players() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]string, len(l.players))
	copy(out, l.players)
	return out
}

func (l *Lobby) PlayerCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.players)
}

func (l *Lobby) Started() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.started
}

func (l *Lobby) GameOver() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.gameOver
}

func (l *Lobby) SetGameOver() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.gameOver = true
}

// Begin attaches the game state and marks the lobby started in one
// step, so no observer can see a lobby with a game but no started flag.
func (l *Lobby) Begin(gs GameState) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.gs = gs
	l.started = true
}

func (l *Lobby) Game() GameState {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.gs
}

// WithGame runs fn with the lobby lock held, giving it exclusive access
// to the game state. Used for race-game mutations, which live on the
// lobby itself.
func (l *Lobby) WithGame(fn func(gs GameState)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fn(l.gs)
}

// ResetForRematch returns the lobby to its pre-game state in place.
func (l *Lobby) ResetForRematch() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.started = false
	l.gameOver = false
	l.gs = nil
	l.votes = nil
	l.declines = nil
}

// Vote records a rematch yes-vote. Re-voting is a no-op. The returned
// flag reports whether every rostered player has now voted; the caller
// must trigger the rematch exactly when it flips to true.
func (l *Lobby) Vote(playerName string) (votes []string, total int, all bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	voted := false
	for _, v := range l.votes {
		if v == playerName {
			voted = true
			break
		}
	}
	if !voted {
		l.votes = append(l.votes, playerName)
		all = len(l.votes) == len(l.players)
	}

	votes = make([]string, len(l.votes))
	copy(votes, l.votes)
	return votes, len(l.players), all
}

// Votes returns the yes-voters in vote order.
func (l *Lobby) Votes() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]string, len(l.votes))
	copy(out, l.votes)
	return out
}

// Decline records a rematch refusal and reports how many rostered
// players have not declined.
func (l *Lobby) Decline(playerName string) (remaining int) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.declines == nil {
		l.declines = make(map[string]bool)
	}
	l.declines[playerName] = true
	return len(l.players) - len(l.declines)
}

// Info is the JSON shape of a lobby for listings and snapshots.
type Info struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	HostName   string   `json:"hostName"`
	GameType   string   `json:"gameType"`
	Players    []string `json:"players"`
	MaxPlayers int      `json:"maxPlayers"`
	Started    bool     `json:"started"`
	GameOver   bool     `json:"gameOver"`
}

func (l *Lobby) Snapshot() Info {
	l.mu.Lock()
	defer l.mu.Unlock()

	players := make([]string, len(l.players))
	copy(players, l.players)
	return Info{
		ID:         l.ID,
		Name:       l.Name,
		HostName:   l.HostName,
		GameType:   l.GameType,
		Players:    players,
		MaxPlayers: l.MaxPlayers,
		Started:    l.started,
		GameOver:   l.gameOver,
	}
}
