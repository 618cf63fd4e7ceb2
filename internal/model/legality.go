package model

// CanMove reports whether the piece with registry id may move to to by its
// own movement rule and the current occupancy. Check is not considered here.
func (b *Board) CanMove(id int, to Position) bool {
	if id < 0 || id >= len(b.pieces) {
		return false
	}
	piece := b.pieces[id]
	if !piece.Live() || !to.InBounds() {
		return false
	}
	from := *piece.Position
	if from == to {
		return false
	}
	if target, ok := b.PieceAt(to); ok && b.pieces[target].Color == piece.Color {
		return false
	}

	switch piece.Type {
	case Pawn:
		return b.pawnCanMove(piece, from, to)
	case Rook:
		return b.rookCanMove(from, to)
	case Knight:
		return knightCanMove(from, to)
	case Bishop:
		return b.bishopCanMove(from, to)
	case Queen:
		return b.queenCanMove(from, to)
	case King:
		return kingCanMove(from, to)
	}
	return false
}

// pawnDirection is the rank step toward the opponent's side.
func pawnDirection(c PlayerColor) int {
	if c == PlayerColorWhite {
		return 1
	}
	return -1
}

func pawnStartRank(c PlayerColor) int {
	if c == PlayerColorWhite {
		return 1
	}
	return 6
}

func (b *Board) pawnCanMove(piece Piece, from, to Position) bool {
	dir := pawnDirection(piece.Color)
	dx := to.X - from.X
	dy := to.Y - from.Y
	_, occupied := b.PieceAt(to)

	switch {
	case dx == 0 && dy == dir:
		return !occupied
	case dx == 0 && dy == 2*dir:
		if piece.HasMoved || from.Y != pawnStartRank(piece.Color) || occupied {
			return false
		}
		_, blocked := b.PieceAt(Position{X: from.X, Y: from.Y + dir})
		return !blocked
	case abs(dx) == 1 && dy == dir:
		// Same-colour targets were filtered by CanMove.
		return occupied
	}
	return false
}

func (b *Board) rookCanMove(from, to Position) bool {
	if from.X != to.X && from.Y != to.Y {
		return false
	}
	return b.pathClear(from, to)
}

func knightCanMove(from, to Position) bool {
	dx, dy := abs(to.X-from.X), abs(to.Y-from.Y)
	return (dx == 1 && dy == 2) || (dx == 2 && dy == 1)
}

func (b *Board) bishopCanMove(from, to Position) bool {
	if abs(to.X-from.X) != abs(to.Y-from.Y) {
		return false
	}
	return b.pathClear(from, to)
}

func (b *Board) queenCanMove(from, to Position) bool {
	return b.rookCanMove(from, to) || b.bishopCanMove(from, to)
}

func kingCanMove(from, to Position) bool {
	return abs(to.X-from.X) <= 1 && abs(to.Y-from.Y) <= 1
}

// pathClear reports whether every square strictly between from and to is
// empty. from and to must share a file, rank or diagonal.
func (b *Board) pathClear(from, to Position) bool {
	stepX, stepY := sign(to.X-from.X), sign(to.Y-from.Y)
	pos := Position{X: from.X + stepX, Y: from.Y + stepY}
	for pos != to {
		if _, ok := b.PieceAt(pos); ok {
			return false
		}
		pos = Position{X: pos.X + stepX, Y: pos.Y + stepY}
	}
	return true
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

func sign(x int) int {
	switch {
	case x > 0:
		return 1
	case x < 0:
		return -1
	}
	return 0
}
