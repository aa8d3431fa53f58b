package lobby

import (
	"log"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Registry is the concurrent store of all lobbies, keyed by id. The
// registry mutex only guards the map itself; anything that reads and
// mutates one lobby goes through that lobby's own lock.
type Registry struct {
	mu      sync.RWMutex
	lobbies map[string]*Lobby
}

func NewRegistry() *Registry {
	return &Registry{
		lobbies: make(map[string]*Lobby),
	}
}

// CreateLobby allocates a fresh lobby with the host as its sole member.
// It never fails.
func (r *Registry) CreateLobby(name, hostName, gameType string, maxPlayers int) *Lobby {
	l := &Lobby{
		ID:         uuid.NewString(),
		Name:       name,
		HostName:   hostName,
		GameType:   gameType,
		MaxPlayers: maxPlayers,
		CreatedAt:  time.Now(),
		players:    []string{hostName},
	}

	r.mu.Lock()
	r.lobbies[l.ID] = l
	r.mu.Unlock()

	log.Printf("[LOBBY] Created lobby %s (%q, %s, host=%s, max=%d)", l.ID, name, gameType, hostName, maxPlayers)
	return l
}

// GetLobby looks a lobby up. Absence is a normal outcome, not an error.
func (r *Registry) GetLobby(id string) (*Lobby, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	l, ok := r.lobbies[id]
	return l, ok
}

// ListLobbies returns the not-yet-started lobbies, oldest first. An
// empty gameType matches every game type.
func (r *Registry) ListLobbies(gameType string) []*Lobby {
	r.mu.RLock()
	out := make([]*Lobby, 0)
	for _, l := range r.lobbies {
		if gameType != "" && l.GameType != gameType {
			continue
		}
		if !l.Started() {
			out = append(out, l)
		}
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

// JoinLobby adds a player to a lobby. The membership check and the
// append are atomic per lobby, so concurrent joins can neither exceed
// capacity nor both claim the same name.
func (r *Registry) JoinLobby(id, playerName string) JoinResult {
	l, ok := r.GetLobby(id)
	if !ok {
		return JoinLobbyNotFound
	}
	return l.Join(playerName)
}

func (r *Registry) RemoveLobby(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.lobbies[id]; ok {
		delete(r.lobbies, id)
		log.Printf("[LOBBY] Removed lobby %s", id)
	}
}

// ResetLobby puts a lobby back in its pre-game state, same id.
func (r *Registry) ResetLobby(id string) {
	if l, ok := r.GetLobby(id); ok {
		l.ResetForRematch()
	}
}

// StartGame flips the started flag. False if the lobby is absent.
func (r *Registry) StartGame(id string) bool {
	l, ok := r.GetLobby(id)
	if !ok {
		return false
	}
	l.mu.Lock()
	l.started = true
	l.mu.Unlock()
	return true
}

// SweepFinished removes lobbies whose game ended longer ago than maxAge
// and were never rematched or cleaned up. Returns how many were
// removed.
func (r *Registry) SweepFinished(maxAge time.Duration) int {
	cutoff := time.Now().Add(-maxAge)

	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	for id, l := range r.lobbies {
		if l.GameOver() && l.CreatedAt.Before(cutoff) {
			delete(r.lobbies, id)
			removed++
		}
	}
	return removed
}
