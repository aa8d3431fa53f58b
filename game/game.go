// Package game holds the types shared by the board-game rules engines.
package game

// Seat identifies one of the two seated players of a board game.
// Seat 1 always belongs to the first matched player.
type Seat int

const (
	NoSeat Seat = 0
	Seat1  Seat = 1
	Seat2  Seat = 2
)

// Opponent returns the other seat.
func (s Seat) Opponent() Seat {
	if s == Seat1 {
		return Seat2
	}
	return Seat1
}

// Move is a requested placement. Four-in-a-Row only looks at Col,
// Grid-3 uses both coordinates.
type Move struct {
	Row int
	Col int
}

// Placement is where a move actually landed on the board.
type Placement struct {
	Row int
	Col int
}

type Status string

const (
	StatusActive Status = "active"
	StatusWon    Status = "won"
	StatusDraw   Status = "draw"
)

// Engine is the contract both board-game rules engines satisfy.
// Implementations are not safe for concurrent use; the owning session
// serializes access.
type Engine interface {
	// Apply validates and plays a move for the given seat. The engine
	// evaluates terminal conditions (win before draw) and flips the turn
	// only on a legal, non-terminal move.
	Apply(seat Seat, mv Move) (Placement, error)
	// Turn reports whose turn it is.
	Turn() Seat
	Status() Status
	// WinnerSeat is NoSeat until Status is StatusWon.
	WinnerSeat() Seat
	// Cells is the board rendered as marker strings, row 0 on top.
	// Empty cells render as "".
	Cells() [][]string
}

// basic errors the engines can return
type Error string

func (e Error) Error() string {
	return string(e)
}

const (
	ErrInvalidMove    Error = "invalid move"
	ErrNotPlayersTurn Error = "not your turn"
	ErrGameOver       Error = "game is over"
)
