// Package history records every game action so finished matches can be
// reviewed or contested. Recording is fire-and-forget: a failing store
// never fails a game.
package history

import (
	"encoding/json"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/gamehall/backend/db"
)

// SystemActor names the engine itself in action logs.
const SystemActor = "SYSTEM"

type Action struct {
	ID         string    `json:"id"`
	Timestamp  time.Time `json:"timestamp"`
	LobbyID    string    `json:"lobbyId"`
	GameType   string    `json:"gameType"`
	PlayerName string    `json:"playerName"`
	ActionType string    `json:"actionType"`
	Details    string    `json:"details"`
	Payload    *string   `json:"payload,omitempty"`
}

type GameHistory struct {
	LobbyID   string     `json:"lobbyId"`
	LobbyName string     `json:"lobbyName"`
	GameType  string     `json:"gameType"`
	CreatedAt time.Time  `json:"createdAt"`
	EndedAt   *time.Time `json:"endedAt,omitempty"`
	Players   []string   `json:"players"`
	Winner    *string    `json:"winner,omitempty"`
	IsTie     bool       `json:"isTie"`
	Actions   []Action   `json:"actions"`
}

// Service is the in-memory recorder with best-effort postgres
// persistence and a redis snapshot of finished games.
type Service struct {
	mu        sync.Mutex
	histories map[string]*GameHistory
}

func NewService() *Service {
	return &Service{
		histories: make(map[string]*GameHistory),
	}
}

// StartGame opens a fresh history for a lobby, replacing any previous
// one (a rematch under the same id starts over).
func (s *Service) StartGame(lobbyID, lobbyName, gameType string, players []string) {
	h := &GameHistory{
		LobbyID:   lobbyID,
		LobbyName: lobbyName,
		GameType:  gameType,
		CreatedAt: time.Now().UTC(),
		Players:   append([]string(nil), players...),
	}

	s.mu.Lock()
	s.histories[lobbyID] = h
	s.mu.Unlock()

	s.LogAction(lobbyID, gameType, SystemActor, "GAME_START", "Game started with players: "+joinNames(players), nil)

	if err := db.InsertHistory(lobbyID, lobbyName, gameType, players, h.CreatedAt); err != nil {
		log.Printf("[HISTORY] persist start failed for %s: %v", lobbyID, err)
	}
}

// LogAction appends one action. A missing history is created on the
// fly so late events are never dropped.
func (s *Service) LogAction(lobbyID, gameType, playerName, actionType, details string, payload any) {
	var encoded *string
	if payload != nil {
		if data, err := json.Marshal(payload); err == nil {
			str := string(data)
			encoded = &str
		} else {
			log.Printf("[HISTORY] payload encode failed for %s: %v", lobbyID, err)
		}
	}

	action := Action{
		ID:         uuid.NewString(),
		Timestamp:  time.Now().UTC(),
		LobbyID:    lobbyID,
		GameType:   gameType,
		PlayerName: playerName,
		ActionType: actionType,
		Details:    details,
		Payload:    encoded,
	}

	s.mu.Lock()
	h, ok := s.histories[lobbyID]
	if !ok {
		h = &GameHistory{
			LobbyID:   lobbyID,
			GameType:  gameType,
			CreatedAt: time.Now().UTC(),
		}
		s.histories[lobbyID] = h
	}
	h.Actions = append(h.Actions, action)
	s.mu.Unlock()

	if err := db.InsertAction(action.ID, lobbyID, gameType, playerName, actionType, details, encoded, action.Timestamp); err != nil {
		log.Printf("[HISTORY] persist action failed for %s: %v", lobbyID, err)
	}
}

// EndGame seals a history with the outcome. An empty winner with
// isTie=false means the game ended without a result (e.g. abandoned).
func (s *Service) EndGame(lobbyID, winner string, isTie bool) {
	now := time.Now().UTC()
	var winnerPtr *string
	if winner != "" {
		winnerPtr = &winner
	}

	s.mu.Lock()
	h, ok := s.histories[lobbyID]
	if ok {
		h.EndedAt = &now
		h.Winner = winnerPtr
		h.IsTie = isTie
	}
	s.mu.Unlock()

	if !ok {
		return
	}

	result := "Victory: " + winner
	if isTie {
		result = "Tie game"
	} else if winner == "" {
		result = "No result"
	}
	s.LogAction(lobbyID, h.GameType, SystemActor, "GAME_END", result, nil)

	if err := db.FinishHistory(lobbyID, winnerPtr, isTie, now); err != nil {
		log.Printf("[HISTORY] persist end failed for %s: %v", lobbyID, err)
	}

	if data, err := json.Marshal(s.snapshot(lobbyID)); err == nil {
		if err := db.SnapshotHistory(lobbyID, data, 24*time.Hour); err != nil {
			log.Printf("[HISTORY] redis snapshot failed for %s: %v", lobbyID, err)
		}
	}
}

// History returns a copy of one lobby's history.
func (s *Service) History(lobbyID string) (GameHistory, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	h, ok := s.histories[lobbyID]
	if !ok {
		return GameHistory{}, false
	}
	return copyHistory(h), true
}

// AllHistories returns every recorded game, newest first.
func (s *Service) AllHistories() []GameHistory {
	s.mu.Lock()
	out := make([]GameHistory, 0, len(s.histories))
	for _, h := range s.histories {
		out = append(out, copyHistory(h))
	}
	s.mu.Unlock()

	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

func (s *Service) snapshot(lobbyID string) GameHistory {
	s.mu.Lock()
	defer s.mu.Unlock()
	if h, ok := s.histories[lobbyID]; ok {
		return copyHistory(h)
	}
	return GameHistory{LobbyID: lobbyID}
}

func copyHistory(h *GameHistory) GameHistory {
	out := *h
	out.Players = append([]string(nil), h.Players...)
	out.Actions = append([]Action(nil), h.Actions...)
	return out
}

func joinNames(players []string) string {
	out := ""
	for i, p := range players {
		if i > 0 {
			out += ", "
		}
		out += p
	}
	return out
}
