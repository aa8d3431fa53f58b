package connectfour

import "github.com/gamehall/backend/game"

const (
	Rows    = 6
	Columns = 7
	ToWin   = 4
)

func NewBoard() [][]game.Seat {
	board := make([][]game.Seat, Rows)
	for i := range board {
		board[i] = make([]game.Seat, Columns)
	}
	return board
}

func IsValidMove(board [][]game.Seat, column int) bool {
	if column < 0 || column >= Columns {
		return false
	}

	// board[0] is the top row; a column is playable while its top cell is empty
	return board[0][column] == game.NoSeat
}

// DropDisc places a disc in the lowest empty row of the column.
// Columns fill bottom-up.
func DropDisc(board [][]game.Seat, column int, seat game.Seat) (int, error) {
	for row := Rows - 1; row >= 0; row-- {
		if board[row][column] == game.NoSeat {
			board[row][column] = seat
			return row, nil
		}
	}

	return -1, game.ErrInvalidMove
}

func IsBoardFull(board [][]game.Seat) bool {
	for c := 0; c < Columns; c++ {
		if board[0][c] == game.NoSeat {
			return false
		}
	}

	return true
}

// CountInDirection counts same-seat discs extending outward from (row, col),
// not counting the cell itself.
func CountInDirection(board [][]game.Seat, row, col, deltaRow, deltaCol int, seat game.Seat) int {
	count := 0
	r, c := row+deltaRow, col+deltaCol
	for r >= 0 && r < Rows && c >= 0 && c < Columns && board[r][c] == seat {
		count++
		r += deltaRow
		c += deltaCol
	}
	return count
}

// CheckWin only examines the four lines passing through the just-placed
// disc, which is enough after every single placement and avoids a full
// board scan.
func CheckWin(board [][]game.Seat, row, col int, seat game.Seat) bool {
	if CountInDirection(board, row, col, 0, 1, seat)+CountInDirection(board, row, col, 0, -1, seat) >= ToWin-1 {
		return true
	}
	if CountInDirection(board, row, col, 1, 0, seat)+CountInDirection(board, row, col, -1, 0, seat) >= ToWin-1 {
		return true
	}
	if CountInDirection(board, row, col, 1, 1, seat)+CountInDirection(board, row, col, -1, -1, seat) >= ToWin-1 {
		return true
	}
	if CountInDirection(board, row, col, 1, -1, seat)+CountInDirection(board, row, col, -1, 1, seat) >= ToWin-1 {
		return true
	}

	return false
}
