package model

import (
	"errors"
	"fmt"
)

type MoveErrorKind string

const (
	IllegalMove   MoveErrorKind = "illegalMove"
	KingIsInCheck MoveErrorKind = "kingIsInCheck"
	NotYourTurn   MoveErrorKind = "notYourTurn"
)

// MoveError is returned when a move is rejected. The board is unchanged
// whenever a MoveError is returned.
type MoveError struct {
	Kind   MoveErrorKind `json:"kind"`
	Reason string        `json:"reason"`
}

func (e *MoveError) Error() string {
	if e.Reason == "" {
		return string(e.Kind)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Reason)
}

// Is matches any MoveError of the same kind, so errors.Is(err, ErrIllegalMove)
// works regardless of the reason text.
func (e *MoveError) Is(target error) bool {
	t, ok := target.(*MoveError)
	return ok && t.Kind == e.Kind
}

var (
	ErrIllegalMove = &MoveError{Kind: IllegalMove}
	ErrKingInCheck = &MoveError{Kind: KingIsInCheck}
	ErrNotYourTurn = &MoveError{Kind: NotYourTurn}
)

func illegalMove(format string, args ...any) error {
	return &MoveError{Kind: IllegalMove, Reason: fmt.Sprintf(format, args...)}
}

// Session errors.
var (
	ErrGameFull      = errors.New("game is full")
	ErrGameOver      = errors.New("game is over")
	ErrUnknownPlayer = errors.New("player not in game")
	ErrAlreadySeated = errors.New("player already seated")
)
