package server

import (
	"sync"
	"time"

	"github.com/gamehall/backend/game"
)

// Player is a connection registered with a session manager, optionally
// seated in a game.
type Player struct {
	Name   string
	ConnID string
	GameID string
	Seat   game.Seat
	Marker string
}

// GameSession is one started board game with two seated players. All
// move handling is serialized by the session's own mutex.
type GameSession struct {
	ID         string
	Player1    *Player
	Player2    *Player
	CreatedAt  time.Time
	FinishedAt time.Time

	mu     sync.Mutex
	engine game.Engine
}

// MoveResult describes the effect of one accepted move.
type MoveResult struct {
	Placement game.Placement
	Marker    string
	Mover     *Player
	Next      *Player // nil on a terminal move
	Over      bool
	Tie       bool
	Winner    *Player // nil unless decisive
	Board     [][]string
}

func (gs *GameSession) Opponent(p *Player) *Player {
	if p == gs.Player1 {
		return gs.Player2
	}
	return gs.Player1
}

func (gs *GameSession) PlayerBySeat(seat game.Seat) *Player {
	if seat == game.Seat1 {
		return gs.Player1
	}
	if seat == game.Seat2 {
		return gs.Player2
	}
	return nil
}

func (gs *GameSession) PlayerByName(name string) *Player {
	if gs.Player1.Name == name {
		return gs.Player1
	}
	if gs.Player2.Name == name {
		return gs.Player2
	}
	return nil
}

// WhoseTurn returns the player whose move it is.
func (gs *GameSession) WhoseTurn() *Player {
	gs.mu.Lock()
	defer gs.mu.Unlock()
	return gs.PlayerBySeat(gs.engine.Turn())
}

func (gs *GameSession) IsFinished() bool {
	gs.mu.Lock()
	defer gs.mu.Unlock()
	return gs.engine.Status() != game.StatusActive
}

// Board returns the current cells as marker strings.
func (gs *GameSession) Board() [][]string {
	gs.mu.Lock()
	defer gs.mu.Unlock()
	return gs.engine.Cells()
}

// ApplyMove validates and plays one move for p. Turn and structural
// checks happen inside the engine under the session lock, so the
// validate-then-apply sequence is atomic. A rejected move leaves the
// session untouched.
func (gs *GameSession) ApplyMove(p *Player, mv game.Move) (MoveResult, error) {
	gs.mu.Lock()
	defer gs.mu.Unlock()

	placement, err := gs.engine.Apply(p.Seat, mv)
	if err != nil {
		return MoveResult{}, err
	}

	res := MoveResult{
		Placement: placement,
		Marker:    p.Marker,
		Mover:     p,
		Board:     gs.engine.Cells(),
	}

	switch gs.engine.Status() {
	case game.StatusWon:
		gs.FinishedAt = time.Now()
		res.Over = true
		res.Winner = gs.PlayerBySeat(gs.engine.WinnerSeat())
	case game.StatusDraw:
		gs.FinishedAt = time.Now()
		res.Over = true
		res.Tie = true
	default:
		res.Next = gs.PlayerBySeat(gs.engine.Turn())
	}

	return res, nil
}
