package model

import "fmt"

type PieceType string

const (
	King   PieceType = "king"
	Queen  PieceType = "queen"
	Rook   PieceType = "rook"
	Bishop PieceType = "bishop"
	Knight PieceType = "knight"
	Pawn   PieceType = "pawn"
)

func (p PieceType) valid() bool {
	switch p {
	case King, Queen, Rook, Bishop, Knight, Pawn:
		return true
	}
	return false
}

// Position is a 0-based square. X is the file (0 = a-file) and Y the rank
// (0 = White's back rank).
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

func (p Position) InBounds() bool {
	return p.X >= 0 && p.X < 8 && p.Y >= 0 && p.Y < 8
}

// Square converts to the 1-based wire form.
func (p Position) Square() Square {
	return Square{p.X + 1, p.Y + 1}
}

func (p Position) String() string {
	return fmt.Sprintf("(%d,%d)", p.X+1, p.Y+1)
}

// Square is the 1-based [file, rank] pair exchanged with clients.
type Square [2]int

// Position validates the square and converts it to the internal form.
func (s Square) Position() (Position, error) {
	if s[0] < 1 || s[0] > 8 || s[1] < 1 || s[1] > 8 {
		return Position{}, fmt.Errorf("square %v out of range", [2]int(s))
	}
	return Position{X: s[0] - 1, Y: s[1] - 1}, nil
}

// Piece is live while Position is non-nil. A captured piece keeps its slot in
// the registry but never returns to play.
type Piece struct {
	Type     PieceType   `json:"type"`
	Color    PlayerColor `json:"color"`
	Position *Position   `json:"position"`
	HasMoved bool        `json:"hasMoved"`
}

func (p Piece) Live() bool {
	return p.Position != nil
}

const empty = -1

// Board owns the piece registry and the square index. pieces never changes
// length after construction; index[x][y] holds the registry id of the piece
// on that square or empty.
type Board struct {
	pieces []Piece
	index  [8][8]int
}

var backRank = [8]PieceType{Rook, Knight, Bishop, Queen, King, Bishop, Knight, Rook}

// NewBoard returns the standard initial position with White on ranks 1-2.
func NewBoard() *Board {
	pieces := make([]Piece, 0, 32)
	add := func(t PieceType, c PlayerColor, x, y int) {
		pieces = append(pieces, Piece{Type: t, Color: c, Position: &Position{X: x, Y: y}})
	}
	for x := 0; x < 8; x++ {
		add(Pawn, PlayerColorWhite, x, 1)
	}
	for x := 0; x < 8; x++ {
		add(Pawn, PlayerColorBlack, x, 6)
	}
	for x, t := range backRank {
		add(t, PlayerColorWhite, x, 0)
	}
	for x, t := range backRank {
		add(t, PlayerColorBlack, x, 7)
	}

	b, err := newBoardFromPieces(pieces)
	if err != nil {
		panic(err)
	}
	return b
}

// newBoardFromPieces takes ownership of pieces and builds the index.
func newBoardFromPieces(pieces []Piece) (*Board, error) {
	b := &Board{pieces: pieces}
	b.clearIndex()
	for i, p := range b.pieces {
		if !p.Type.valid() {
			return nil, fmt.Errorf("piece %d: unknown type %q", i, p.Type)
		}
		if !p.Color.Valid() {
			return nil, fmt.Errorf("piece %d: unknown color %q", i, p.Color)
		}
		if !p.Live() {
			continue
		}
		pos := *p.Position
		if !pos.InBounds() {
			return nil, fmt.Errorf("piece %d: position %v off the board", i, pos)
		}
		if other := b.index[pos.X][pos.Y]; other != empty {
			return nil, fmt.Errorf("pieces %d and %d share square %v", other, i, pos)
		}
		b.index[pos.X][pos.Y] = i
	}
	return b, nil
}

func (b *Board) clearIndex() {
	for x := range b.index {
		for y := range b.index[x] {
			b.index[x][y] = empty
		}
	}
}

// Clone returns a deep copy. Positions are copied so the clone shares no
// memory with b.
func (b *Board) Clone() *Board {
	c := &Board{pieces: make([]Piece, len(b.pieces)), index: b.index}
	for i, p := range b.pieces {
		if p.Position != nil {
			pos := *p.Position
			p.Position = &pos
		}
		c.pieces[i] = p
	}
	return c
}

// restore overwrites b with the contents of snap. snap must not be used
// afterwards.
func (b *Board) restore(snap *Board) {
	b.pieces = snap.pieces
	b.index = snap.index
}

// PieceAt returns the registry id of the piece on pos, or false when the
// square is empty or off the board.
func (b *Board) PieceAt(pos Position) (int, bool) {
	if !pos.InBounds() {
		return 0, false
	}
	id := b.index[pos.X][pos.Y]
	return id, id != empty
}

// Piece returns a copy of the registry entry for id.
func (b *Board) Piece(id int) Piece {
	p := b.pieces[id]
	if p.Position != nil {
		pos := *p.Position
		p.Position = &pos
	}
	return p
}

// Pieces returns a copy of the registry in id order.
func (b *Board) Pieces() []Piece {
	out := make([]Piece, len(b.pieces))
	for i := range b.pieces {
		out[i] = b.Piece(i)
	}
	return out
}

// Validate checks that the index and the registry agree.
func (b *Board) Validate() error {
	seen := 0
	for x := 0; x < 8; x++ {
		for y := 0; y < 8; y++ {
			id := b.index[x][y]
			if id == empty {
				continue
			}
			if id < 0 || id >= len(b.pieces) {
				return fmt.Errorf("square (%d,%d) maps to unknown piece %d", x+1, y+1, id)
			}
			p := b.pieces[id].Position
			if p == nil || p.X != x || p.Y != y {
				return fmt.Errorf("square (%d,%d) maps to piece %d which is not there", x+1, y+1, id)
			}
			seen++
		}
	}
	live := 0
	for _, p := range b.pieces {
		if p.Live() {
			live++
		}
	}
	if live != seen {
		return fmt.Errorf("%d live pieces but %d indexed squares", live, seen)
	}
	return nil
}

// AttemptMove moves the mover's piece on from to to. On any error the board
// is left exactly as it was.
func (b *Board) AttemptMove(mover PlayerColor, from, to Position) error {
	snap := b.Clone()

	id, ok := b.PieceAt(from)
	if !ok {
		return illegalMove("no piece at %v", from)
	}
	piece := &b.pieces[id]
	if piece.Color != mover {
		return illegalMove("piece at %v belongs to %s", from, piece.Color)
	}
	if !b.CanMove(id, to) {
		return illegalMove("%s cannot move from %v to %v", piece.Type, from, to)
	}

	// CanMove already rejected same-colour targets.
	if target, occupied := b.PieceAt(to); occupied {
		b.pieces[target].Position = nil
	}

	b.index[to.X][to.Y] = id
	b.index[from.X][from.Y] = empty
	piece.Position = &Position{X: to.X, Y: to.Y}
	piece.HasMoved = true

	if b.IsInCheck(mover) {
		b.restore(snap)
		return &MoveError{Kind: KingIsInCheck, Reason: fmt.Sprintf("moving %v to %v leaves the %s king in check", from, to, mover)}
	}
	return nil
}
