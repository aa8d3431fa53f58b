// Package connectfour implements the Four-in-a-Row rules engine on a
// 6 row by 7 column board.
package connectfour

import "github.com/gamehall/backend/game"

// MarkerRed and MarkerYellow are the wire names of the two disc colors.
const (
	MarkerRed    = "Rouge"
	MarkerYellow = "Jaune"
)

// Markers is the deterministic marker assignment: first-matched player
// plays Rouge.
var Markers = [2]string{MarkerRed, MarkerYellow}

type Game struct {
	Board     [][]game.Seat
	current   game.Seat
	status    game.Status
	winner    game.Seat
	MoveCount int
}

func New() *Game {
	return &Game{
		Board:   NewBoard(),
		current: game.Seat1,
		status:  game.StatusActive,
		winner:  game.NoSeat,
	}
}

// Apply drops a disc in mv.Col for the given seat. mv.Row is ignored;
// the disc lands in the lowest empty row.
func (g *Game) Apply(seat game.Seat, mv game.Move) (game.Placement, error) {
	if g.status != game.StatusActive {
		return game.Placement{}, game.ErrGameOver
	}

	if seat != g.current {
		return game.Placement{}, game.ErrNotPlayersTurn
	}

	if !IsValidMove(g.Board, mv.Col) {
		return game.Placement{}, game.ErrInvalidMove
	}

	row, err := DropDisc(g.Board, mv.Col, seat)
	if err != nil {
		return game.Placement{}, err
	}

	g.MoveCount++

	// win is evaluated before the board-full draw: a filling move that
	// completes a line is a win, never a tie
	if CheckWin(g.Board, row, mv.Col, seat) {
		g.status = game.StatusWon
		g.winner = seat
		return game.Placement{Row: row, Col: mv.Col}, nil
	}

	if IsBoardFull(g.Board) {
		g.status = game.StatusDraw
		return game.Placement{Row: row, Col: mv.Col}, nil
	}

	g.current = g.current.Opponent()
	return game.Placement{Row: row, Col: mv.Col}, nil
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
	cells := make([][]string, Rows)
	for r := 0; r < Rows; r++ {
		cells[r] = make([]string, Columns)
		for c := 0; c < Columns; c++ {
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
