package model

import "fmt"

// GameState is one board plus the colour to move. The turn flips only after a
// successful move.
type GameState struct {
	Board *Board
	Turn  PlayerColor
}

// NewGameState returns the standard initial position with White to move.
func NewGameState() *GameState {
	return &GameState{Board: NewBoard(), Turn: PlayerColorWhite}
}

// SubmitMove checks that claimed is the colour to move, then delegates to the
// board. The turn is not the board's concern and ownership of the moved piece
// is not the turn check's: both are verified.
func (s *GameState) SubmitMove(claimed PlayerColor, from, to Position) (BoardSnapshot, error) {
	if claimed != s.Turn {
		return BoardSnapshot{}, &MoveError{Kind: NotYourTurn, Reason: fmt.Sprintf("%s to move", s.Turn)}
	}
	if err := s.Board.AttemptMove(claimed, from, to); err != nil {
		return BoardSnapshot{}, err
	}
	s.Turn = s.Turn.Opponent()
	return s.Snapshot(), nil
}

// InCheck reports whether the side to move is in check.
func (s *GameState) InCheck() bool {
	return s.Board.IsInCheck(s.Turn)
}
