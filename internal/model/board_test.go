package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sq converts 1-based coordinates to a Position.
func sq(file, rank int) Position {
	return Position{X: file - 1, Y: rank - 1}
}

func placed(t PieceType, c PlayerColor, file, rank int) PieceSnapshot {
	return PieceSnapshot{Type: t, Color: c, Position: &Square{file, rank}}
}

func restore(t *testing.T, turn PlayerColor, pieces ...PieceSnapshot) *GameState {
	t.Helper()
	s, err := RestoreGameState(BoardSnapshot{Pieces: pieces, Turn: turn})
	require.NoError(t, err)
	return s
}

func encoded(t *testing.T, s *GameState) string {
	t.Helper()
	b, err := json.Marshal(s.Snapshot())
	require.NoError(t, err)
	return string(b)
}

// assertConsistent checks the registry/index invariant and that no two live
// pieces share a square.
func assertConsistent(t *testing.T, b *Board) {
	t.Helper()
	require.NoError(t, b.Validate())
	seen := map[Position]int{}
	for i, p := range b.pieces {
		if !p.Live() {
			continue
		}
		if other, ok := seen[*p.Position]; ok {
			t.Fatalf("pieces %d and %d share %v", other, i, *p.Position)
		}
		seen[*p.Position] = i
		id, ok := b.PieceAt(*p.Position)
		require.True(t, ok)
		assert.Equal(t, i, id)
	}
}

func TestNewBoard(t *testing.T) {
	b := NewBoard()
	assertConsistent(t, b)
	require.Len(t, b.pieces, 32)

	counts := map[PlayerColor]map[PieceType]int{PlayerColorWhite: {}, PlayerColorBlack: {}}
	for _, p := range b.pieces {
		require.True(t, p.Live())
		assert.False(t, p.HasMoved)
		counts[p.Color][p.Type]++
		switch {
		case p.Color == PlayerColorWhite:
			assert.Contains(t, []int{0, 1}, p.Position.Y)
		default:
			assert.Contains(t, []int{6, 7}, p.Position.Y)
		}
	}
	want := map[PieceType]int{Pawn: 8, Rook: 2, Knight: 2, Bishop: 2, Queen: 1, King: 1}
	assert.Equal(t, want, counts[PlayerColorWhite])
	assert.Equal(t, want, counts[PlayerColorBlack])

	for c, pos := range map[PlayerColor]Position{PlayerColorWhite: sq(5, 1), PlayerColorBlack: sq(5, 8)} {
		id, ok := b.PieceAt(pos)
		require.True(t, ok)
		assert.Equal(t, King, b.pieces[id].Type)
		assert.Equal(t, c, b.pieces[id].Color)
	}
	assert.False(t, b.IsInCheck(PlayerColorWhite))
	assert.False(t, b.IsInCheck(PlayerColorBlack))
}

func TestAttemptMoveRejectsWithoutMutation(t *testing.T) {
	tests := []struct {
		name  string
		mover PlayerColor
		from  Position
		to    Position
		kind  error
	}{
		{"empty source", PlayerColorWhite, sq(5, 4), sq(5, 5), ErrIllegalMove},
		{"opponent's piece", PlayerColorWhite, sq(5, 7), sq(5, 5), ErrIllegalMove},
		{"onto own piece", PlayerColorWhite, sq(5, 1), sq(5, 2), ErrIllegalMove},
		{"rook blocked", PlayerColorWhite, sq(1, 1), sq(1, 3), ErrIllegalMove},
		{"bishop blocked", PlayerColorWhite, sq(3, 1), sq(5, 3), ErrIllegalMove},
		{"queen blocked", PlayerColorWhite, sq(4, 1), sq(4, 3), ErrIllegalMove},
		{"knight wrong shape", PlayerColorWhite, sq(2, 1), sq(2, 3), ErrIllegalMove},
		{"pawn three squares", PlayerColorWhite, sq(1, 2), sq(1, 5), ErrIllegalMove},
		{"pawn sideways", PlayerColorWhite, sq(1, 2), sq(2, 2), ErrIllegalMove},
		{"pawn diagonal onto empty", PlayerColorWhite, sq(1, 2), sq(2, 3), ErrIllegalMove},
		{"black pawn backwards", PlayerColorBlack, sq(1, 7), sq(1, 8), ErrIllegalMove},
		{"off the board", PlayerColorWhite, sq(8, 1), Position{X: 8, Y: 0}, ErrIllegalMove},
		{"same square", PlayerColorWhite, sq(2, 1), sq(2, 1), ErrIllegalMove},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewGameState()
			before := encoded(t, s)
			clone := s.Board.Clone()

			err := s.Board.AttemptMove(tt.mover, tt.from, tt.to)
			require.ErrorIs(t, err, tt.kind)
			assert.Equal(t, before, encoded(t, s))
			assert.Equal(t, clone, s.Board)
		})
	}
}

func TestAttemptMoveCapture(t *testing.T) {
	s := restore(t, PlayerColorWhite,
		placed(King, PlayerColorWhite, 5, 1),
		placed(Rook, PlayerColorWhite, 1, 1),
		placed(King, PlayerColorBlack, 5, 8),
		placed(Knight, PlayerColorBlack, 1, 6),
	)

	require.NoError(t, s.Board.AttemptMove(PlayerColorWhite, sq(1, 1), sq(1, 6)))
	assertConsistent(t, s.Board)

	rook := s.Board.Piece(1)
	knight := s.Board.Piece(3)
	assert.Equal(t, sq(1, 6), *rook.Position)
	assert.True(t, rook.HasMoved)
	assert.False(t, knight.Live())

	id, ok := s.Board.PieceAt(sq(1, 6))
	require.True(t, ok)
	assert.Equal(t, 1, id)
	_, ok = s.Board.PieceAt(sq(1, 1))
	assert.False(t, ok)
}

func TestCapturedPieceNeverMoves(t *testing.T) {
	s := restore(t, PlayerColorBlack,
		placed(King, PlayerColorWhite, 5, 1),
		placed(King, PlayerColorBlack, 5, 8),
		PieceSnapshot{Type: Queen, Color: PlayerColorBlack},
	)
	assert.False(t, s.Board.CanMove(2, sq(4, 4)))
	assert.False(t, s.Board.CanMove(99, sq(4, 4)))
}

func TestPawnRules(t *testing.T) {
	t.Run("double step from start", func(t *testing.T) {
		s := NewGameState()
		assert.True(t, s.Board.CanMove(mustAt(t, s.Board, sq(1, 2)), sq(1, 4)))
		assert.True(t, s.Board.CanMove(mustAt(t, s.Board, sq(1, 7)), sq(1, 5)))
	})

	t.Run("double step blocked by piece in between", func(t *testing.T) {
		s := NewGameState()
		require.NoError(t, s.Board.AttemptMove(PlayerColorWhite, sq(2, 1), sq(3, 3)))
		err := s.Board.AttemptMove(PlayerColorWhite, sq(3, 2), sq(3, 4))
		assert.ErrorIs(t, err, ErrIllegalMove)
	})

	t.Run("moved pawn on start rank loses double step", func(t *testing.T) {
		s := restore(t, PlayerColorWhite,
			placed(King, PlayerColorWhite, 5, 1),
			PieceSnapshot{Type: Pawn, Color: PlayerColorWhite, Position: &Square{1, 2}, HasMoved: true},
			placed(King, PlayerColorBlack, 5, 8),
		)
		assert.False(t, s.Board.CanMove(1, sq(1, 4)))
		assert.True(t, s.Board.CanMove(1, sq(1, 3)))
	})

	t.Run("no forward capture", func(t *testing.T) {
		s := restore(t, PlayerColorWhite,
			placed(King, PlayerColorWhite, 5, 1),
			placed(Pawn, PlayerColorWhite, 5, 4),
			placed(King, PlayerColorBlack, 5, 8),
			placed(Pawn, PlayerColorBlack, 5, 5),
			placed(Pawn, PlayerColorBlack, 4, 5),
		)
		assert.False(t, s.Board.CanMove(1, sq(5, 5)))
		assert.True(t, s.Board.CanMove(1, sq(4, 5)))
		assert.False(t, s.Board.CanMove(1, sq(6, 5)))
		assert.False(t, s.Board.CanMove(1, sq(5, 3)))
	})

	t.Run("black captures downward", func(t *testing.T) {
		s := restore(t, PlayerColorBlack,
			placed(King, PlayerColorWhite, 5, 1),
			placed(Knight, PlayerColorWhite, 3, 5),
			placed(King, PlayerColorBlack, 5, 8),
			placed(Pawn, PlayerColorBlack, 4, 6),
		)
		assert.True(t, s.Board.CanMove(3, sq(3, 5)))
		assert.False(t, s.Board.CanMove(3, sq(5, 7)))
	})
}

func TestSlidingPiecesAndJumps(t *testing.T) {
	s := restore(t, PlayerColorWhite,
		placed(King, PlayerColorWhite, 8, 1),
		placed(Queen, PlayerColorWhite, 4, 4),
		placed(Pawn, PlayerColorWhite, 4, 6),
		placed(Knight, PlayerColorWhite, 2, 1),
		placed(King, PlayerColorBlack, 8, 8),
		placed(Bishop, PlayerColorBlack, 6, 6),
	)
	const queen, knight = 1, 3

	assert.True(t, s.Board.CanMove(queen, sq(4, 5)))
	assert.False(t, s.Board.CanMove(queen, sq(4, 6)), "own piece")
	assert.False(t, s.Board.CanMove(queen, sq(4, 7)), "blocked by own pawn")
	assert.True(t, s.Board.CanMove(queen, sq(6, 6)), "capture on diagonal")
	assert.False(t, s.Board.CanMove(queen, sq(7, 7)), "blocked by bishop")
	assert.True(t, s.Board.CanMove(queen, sq(1, 4)))
	assert.True(t, s.Board.CanMove(queen, sq(1, 1)))
	assert.False(t, s.Board.CanMove(queen, sq(5, 6)), "not a line")

	// Knights ignore pieces in between.
	assert.True(t, s.Board.CanMove(knight, sq(3, 3)))
	assert.True(t, s.Board.CanMove(knight, sq(1, 3)))
	assert.True(t, s.Board.CanMove(knight, sq(4, 2)))
	assert.False(t, s.Board.CanMove(knight, sq(3, 2)))
}

func TestKingMoves(t *testing.T) {
	s := restore(t, PlayerColorWhite,
		placed(King, PlayerColorWhite, 4, 4),
		placed(King, PlayerColorBlack, 8, 8),
	)
	for dx := -2; dx <= 2; dx++ {
		for dy := -2; dy <= 2; dy++ {
			to := sq(4+dx, 4+dy)
			want := abs(dx) <= 1 && abs(dy) <= 1 && (dx != 0 || dy != 0)
			assert.Equal(t, want, s.Board.CanMove(0, to), "delta (%d,%d)", dx, dy)
		}
	}
}

func TestIsInCheck(t *testing.T) {
	t.Run("king found by scan, not by index", func(t *testing.T) {
		s := restore(t, PlayerColorWhite,
			placed(Rook, PlayerColorBlack, 5, 8),
			placed(King, PlayerColorBlack, 1, 8),
			placed(King, PlayerColorWhite, 5, 1),
		)
		assert.True(t, s.Board.IsInCheck(PlayerColorWhite))
		assert.False(t, s.Board.IsInCheck(PlayerColorBlack))
	})

	t.Run("blocked attack is not check", func(t *testing.T) {
		s := restore(t, PlayerColorWhite,
			placed(King, PlayerColorWhite, 5, 1),
			placed(Bishop, PlayerColorWhite, 5, 3),
			placed(Rook, PlayerColorBlack, 5, 8),
			placed(King, PlayerColorBlack, 1, 8),
		)
		assert.False(t, s.Board.IsInCheck(PlayerColorWhite))
	})

	t.Run("pawn attacks diagonally only", func(t *testing.T) {
		s := restore(t, PlayerColorWhite,
			placed(King, PlayerColorWhite, 5, 1),
			placed(Pawn, PlayerColorBlack, 4, 2),
			placed(King, PlayerColorBlack, 5, 8),
		)
		assert.True(t, s.Board.IsInCheck(PlayerColorWhite))

		s = restore(t, PlayerColorWhite,
			placed(King, PlayerColorWhite, 5, 1),
			placed(Pawn, PlayerColorBlack, 5, 2),
			placed(King, PlayerColorBlack, 5, 8),
		)
		assert.False(t, s.Board.IsInCheck(PlayerColorWhite))
	})

	t.Run("no king means no check", func(t *testing.T) {
		s := restore(t, PlayerColorWhite,
			placed(Queen, PlayerColorBlack, 5, 8),
		)
		assert.False(t, s.Board.IsInCheck(PlayerColorWhite))
	})

	t.Run("does not mutate", func(t *testing.T) {
		s := NewGameState()
		clone := s.Board.Clone()
		s.Board.IsInCheck(PlayerColorWhite)
		assert.Equal(t, clone, s.Board)
	})
}

// A king stepping along the line of the attacking rook must not be shielded
// by its own former square.
func TestKingCannotRetreatAlongAttackLine(t *testing.T) {
	s := restore(t, PlayerColorWhite,
		placed(King, PlayerColorWhite, 5, 2),
		placed(Rook, PlayerColorBlack, 5, 8),
		placed(King, PlayerColorBlack, 1, 8),
	)
	before := encoded(t, s)

	_, err := s.SubmitMove(PlayerColorWhite, sq(5, 2), sq(5, 1))
	require.ErrorIs(t, err, ErrKingInCheck)
	assert.Equal(t, before, encoded(t, s))

	_, err = s.SubmitMove(PlayerColorWhite, sq(5, 2), sq(4, 1))
	require.NoError(t, err)
}

func TestKingCannotCaptureProtectedPiece(t *testing.T) {
	s := restore(t, PlayerColorWhite,
		placed(King, PlayerColorWhite, 5, 1),
		placed(Pawn, PlayerColorBlack, 4, 2),
		placed(Knight, PlayerColorBlack, 3, 4),
		placed(King, PlayerColorBlack, 5, 8),
	)
	_, err := s.SubmitMove(PlayerColorWhite, sq(5, 1), sq(4, 2))
	require.ErrorIs(t, err, ErrKingInCheck)
	assertConsistent(t, s.Board)
	assert.True(t, s.Board.Piece(1).Live())
}

func TestPinnedPieceCannotMove(t *testing.T) {
	s := restore(t, PlayerColorWhite,
		placed(King, PlayerColorWhite, 5, 1),
		placed(Knight, PlayerColorWhite, 5, 3),
		placed(Queen, PlayerColorBlack, 5, 7),
		placed(King, PlayerColorBlack, 1, 8),
	)
	clone := s.Board.Clone()
	err := s.Board.AttemptMove(PlayerColorWhite, sq(5, 3), sq(6, 5))
	require.ErrorIs(t, err, ErrKingInCheck)
	assert.Equal(t, clone, s.Board)
}

func mustAt(t *testing.T, b *Board, pos Position) int {
	t.Helper()
	id, ok := b.PieceAt(pos)
	require.True(t, ok, "no piece at %v", pos)
	return id
}

func TestSquareConversion(t *testing.T) {
	pos, err := Square{1, 1}.Position()
	require.NoError(t, err)
	assert.Equal(t, Position{X: 0, Y: 0}, pos)

	pos, err = Square{8, 8}.Position()
	require.NoError(t, err)
	assert.Equal(t, Position{X: 7, Y: 7}, pos)
	assert.Equal(t, Square{8, 8}, pos.Square())

	for _, s := range []Square{{0, 1}, {1, 0}, {9, 1}, {1, 9}, {-1, -1}} {
		_, err := s.Position()
		assert.Error(t, err, "%v", s)
	}
}
