// Package gridgame implements the 3x3 grid rules engine. The grid size
// and run length are fixed constants but everything below is written
// against them, not against the literal 3.
package gridgame

import "github.com/gamehall/backend/game"

const (
	Size      = 3
	RunLength = 3
)

// MarkerX and MarkerO are assigned positionally: first player plays X.
const (
	MarkerX = "X"
	MarkerO = "O"
)

var Markers = [2]string{MarkerX, MarkerO}

type Game struct {
	Board     [][]game.Seat
	current   game.Seat
	status    game.Status
	winner    game.Seat
	MoveCount int
}

func New() *Game {
	board := make([][]game.Seat, Size)
	for i := range board {
		board[i] = make([]game.Seat, Size)
	}
	return &Game{
		Board:   board,
		current: game.Seat1,
		status:  game.StatusActive,
		winner:  game.NoSeat,
	}
}

// Apply places a marker at (mv.Row, mv.Col).
func (g *Game) Apply(seat game.Seat, mv game.Move) (game.Placement, error) {
	if g.status != game.StatusActive {
		return game.Placement{}, game.ErrGameOver
	}

	if seat != g.current {
		return game.Placement{}, game.ErrNotPlayersTurn
	}

	if mv.Row < 0 || mv.Row >= Size || mv.Col < 0 || mv.Col >= Size {
		return game.Placement{}, game.ErrInvalidMove
	}

	if g.Board[mv.Row][mv.Col] != game.NoSeat {
		return game.Placement{}, game.ErrInvalidMove
	}

	g.Board[mv.Row][mv.Col] = seat
	g.MoveCount++

	if g.checkWin(seat) {
		g.status = game.StatusWon
		g.winner = seat
		return game.Placement{Row: mv.Row, Col: mv.Col}, nil
	}

	if g.MoveCount == Size*Size {
		g.status = game.StatusDraw
		return game.Placement{Row: mv.Row, Col: mv.Col}, nil
	}

	g.current = g.current.Opponent()
	return game.Placement{Row: mv.Row, Col: mv.Col}, nil
}

// checkWin scans every row, column and both diagonals for a completed
// run. The grid is small enough that a full scan is the simplest
// correct check.
func (g *Game) checkWin(seat game.Seat) bool {
	for r := 0; r < Size; r++ {
		if g.countRun(r, 0, 0, 1, seat) >= RunLength {
			return true
		}
	}

	for c := 0; c < Size; c++ {
		if g.countRun(0, c, 1, 0, seat) >= RunLength {
			return true
		}
	}

	if g.countRun(0, 0, 1, 1, seat) >= RunLength {
		return true
	}
	if g.countRun(0, Size-1, 1, -1, seat) >= RunLength {
		return true
	}

	return false
}

// countRun walks a line from (row, col) and returns the longest
// consecutive run of the seat's markers on it.
func (g *Game) countRun(row, col, deltaRow, deltaCol int, seat game.Seat) int {
	best, count := 0, 0
	r, c := row, col
	for r >= 0 && r < Size && c >= 0 && c < Size {
		if g.Board[r][c] == seat {
			count++
			if count > best {
				best = count
			}
		} else {
			count = 0
		}
		r += deltaRow
		c += deltaCol
	}
	return best
}

func (g *Game) Turn() game.Seat {
	return g.current
}

func (g *Game) Status() game.Status {
	return g.status
}

func (g *Game) WinnerSeat() game.Seat {
	return g.winner
}

func (g *Game) Cells() [][]string {
	cells := make([][]string, Size)
	for r := 0; r < Size; r++ {
		cells[r] = make([]string, Size)
		for c := 0; c < Size; c++ {
			switch g.Board[r][c] {
			case game.Seat1:
				cells[r][c] = Markers[0]
			case game.Seat2:
				cells[r][c] = Markers[1]
			}
		}
	}
	return cells
}

func (g *Game) IsFinished() bool {
	return g.status == game.StatusWon || g.status == game.StatusDraw
}
