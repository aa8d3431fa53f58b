package server

import (
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/gamehall/backend/game"
)

// Manager owns the live sessions of one game family plus the indexes
// needed for O(1) connection lookups and the FIFO matchmaking queue.
// One instance exists per family; connection ids are unique within it.
type Manager struct {
	family    string
	markers   [2]string
	newEngine func() game.Engine

	mu         sync.Mutex
	sessions   map[string]*GameSession // sessionID -> session
	players    map[string]*Player      // connID -> player
	connToGame map[string]string       // connID -> sessionID
	waiting    []*Player               // FIFO
	pending    map[string]*Player      // sessionID -> first arrival, for lobby-keyed games
}

func NewManager(family string, markers [2]string, newEngine func() game.Engine) *Manager {
	return &Manager{
		family:     family,
		markers:    markers,
		newEngine:  newEngine,
		sessions:   make(map[string]*GameSession),
		players:    make(map[string]*Player),
		connToGame: make(map[string]string),
		pending:    make(map[string]*Player),
	}
}

func (m *Manager) Family() string {
	return m.family
}

// CreatePlayer registers a connection as a named player.
func (m *Manager) CreatePlayer(name, connID string) *Player {
	m.mu.Lock()
	defer m.mu.Unlock()

	p := &Player{Name: name, ConnID: connID}
	m.players[connID] = p
	return p
}

// RegisterPlayer registers a connection under a name that no other
// registered player uses, case-insensitively. The check and the insert
// happen under one lock so two racing registrations cannot both claim
// the same name.
func (m *Manager) RegisterPlayer(name, connID string) (*Player, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, p := range m.players {
		if strings.EqualFold(p.Name, name) {
			return nil, fmt.Errorf("name %s is already taken", name)
		}
	}

	p := &Player{Name: name, ConnID: connID}
	m.players[connID] = p
	return p, nil
}

// MatchOrQueue pairs the player with the longest-waiting opponent and
// starts a session, or enqueues them and returns nil. The first-matched
// (dequeued) player takes seat 1 and the first marker.
func (m *Manager) MatchOrQueue(p *Player) *GameSession {
	m.mu.Lock()
	defer m.mu.Unlock()

	for len(m.waiting) > 0 {
		opponent := m.waiting[0]
		m.waiting = m.waiting[1:]

		// a queued player may have disconnected while waiting
		if _, still := m.players[opponent.ConnID]; !still {
			continue
		}

		return m.createSessionLocked("", opponent, p)
	}

	m.waiting = append(m.waiting, p)
	return nil
}

// CreateSession seats two players in a new session under the given id.
// An empty id gets a generated one; lobby-driven families key sessions
// by their lobby id instead.
func (m *Manager) CreateSession(id string, p1, p2 *Player) *GameSession {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.createSessionLocked(id, p1, p2)
}

func (m *Manager) createSessionLocked(id string, p1, p2 *Player) *GameSession {
	if id == "" {
		id = uuid.NewString()
	}

	p1.Seat, p1.Marker, p1.GameID = game.Seat1, m.markers[0], id
	p2.Seat, p2.Marker, p2.GameID = game.Seat2, m.markers[1], id

	gs := &GameSession{
		ID:        id,
		Player1:   p1,
		Player2:   p2,
		CreatedAt: time.Now(),
		engine:    m.newEngine(),
	}

	m.sessions[id] = gs
	m.players[p1.ConnID] = p1
	m.players[p2.ConnID] = p2
	m.connToGame[p1.ConnID] = id
	m.connToGame[p2.ConnID] = id

	log.Printf("[SESSION] %s: created session %s: %s (%s) vs %s (%s)",
		m.family, id, p1.Name, p1.Marker, p2.Name, p2.Marker)
	return gs
}

// PairForSession queues p for the session keyed by id (a lobby id) and
// creates the session once the second player arrives. The first arrival
// takes seat 1.
func (m *Manager) PairForSession(id string, p *Player) *GameSession {
	m.mu.Lock()
	defer m.mu.Unlock()

	if first, ok := m.pending[id]; ok && first.ConnID != p.ConnID {
		delete(m.pending, id)
		return m.createSessionLocked(id, first, p)
	}

	m.pending[id] = p
	return nil
}

// PlayerByConn resolves a connection to its registered player.
func (m *Manager) PlayerByConn(connID string) (*Player, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.players[connID]
	return p, ok
}

// SessionForConn resolves a connection to its session, the player
// behind the connection and the opponent.
func (m *Manager) SessionForConn(connID string) (gs *GameSession, self, opponent *Player, ok bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id, found := m.connToGame[connID]
	if !found {
		return nil, nil, nil, false
	}
	gs, found = m.sessions[id]
	if !found {
		return nil, nil, nil, false
	}

	self = m.players[connID]
	return gs, self, gs.Opponent(self), true
}

func (m *Manager) SessionByID(id string) (*GameSession, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	gs, ok := m.sessions[id]
	return gs, ok
}

// RemoveSession detaches both players and drops the session. Callers
// doing explicit cleanup use this variant and treat an unknown id as a
// bug.
func (m *Manager) RemoveSession(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.pending, id)
	gs, ok := m.sessions[id]
	if !ok {
		return fmt.Errorf("session %s not found", id)
	}
	m.removeLocked(gs)
	return nil
}

// RemoveSessionIfExists is the best-effort variant: removing an
// already-removed session is a no-op.
func (m *Manager) RemoveSessionIfExists(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.pending, id)
	if gs, ok := m.sessions[id]; ok {
		m.removeLocked(gs)
	}
}

func (m *Manager) removeLocked(gs *GameSession) {
	delete(m.sessions, gs.ID)
	for _, p := range []*Player{gs.Player1, gs.Player2} {
		delete(m.players, p.ConnID)
		delete(m.connToGame, p.ConnID)
	}
	log.Printf("[SESSION] %s: removed session %s", m.family, gs.ID)
}

// Reseat re-attaches a returning player to their seat under a new
// connection id. Used by lobby-keyed games where a player may rejoin by
// name.
func (m *Manager) Reseat(sessionID, name, connID string) (*GameSession, *Player, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	gs, ok := m.sessions[sessionID]
	if !ok {
		return nil, nil, fmt.Errorf("session %s not found", sessionID)
	}

	p := gs.PlayerByName(name)
	if p == nil {
		return nil, nil, fmt.Errorf("player %s is not seated in session %s", name, sessionID)
	}

	delete(m.players, p.ConnID)
	delete(m.connToGame, p.ConnID)
	p.ConnID = connID
	m.players[connID] = p
	m.connToGame[connID] = sessionID

	log.Printf("[SESSION] %s: reseated %s in session %s", m.family, name, sessionID)
	return gs, p, nil
}

// DropConn forgets an unseated connection and removes it from the
// waiting queue. Seated players are handled by session removal.
func (m *Manager) DropConn(connID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, inGame := m.connToGame[connID]; inGame {
		return
	}
	delete(m.players, connID)
	for i, w := range m.waiting {
		if w.ConnID == connID {
			m.waiting = append(m.waiting[:i], m.waiting[i+1:]...)
			break
		}
	}
	for id, p := range m.pending {
		if p.ConnID == connID {
			delete(m.pending, id)
		}
	}
}
