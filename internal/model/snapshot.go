package model

import "fmt"

// PieceSnapshot is the wire form of a registry entry. Position is nil for a
// captured piece.
type PieceSnapshot struct {
	Type     PieceType   `json:"type"`
	Color    PlayerColor `json:"color"`
	Position *Square     `json:"position"`
	HasMoved bool        `json:"hasMoved"`
}

// BoardSnapshot is an immutable copy of a game state, in registry order. The
// square index is derivable from the piece positions.
type BoardSnapshot struct {
	Pieces []PieceSnapshot `json:"pieces"`
	Turn   PlayerColor     `json:"turn"`
	Check  bool            `json:"check"`
}

func (s *GameState) Snapshot() BoardSnapshot {
	snap := BoardSnapshot{
		Pieces: make([]PieceSnapshot, len(s.Board.pieces)),
		Turn:   s.Turn,
		Check:  s.InCheck(),
	}
	for i, p := range s.Board.pieces {
		ps := PieceSnapshot{Type: p.Type, Color: p.Color, HasMoved: p.HasMoved}
		if p.Position != nil {
			sq := p.Position.Square()
			ps.Position = &sq
		}
		snap.Pieces[i] = ps
	}
	return snap
}

// At returns the live piece on sq, if any.
func (s BoardSnapshot) At(sq Square) (PieceSnapshot, bool) {
	for _, p := range s.Pieces {
		if p.Position != nil && *p.Position == sq {
			return p, true
		}
	}
	return PieceSnapshot{}, false
}

// RestoreGameState rebuilds a game state from a snapshot. Check is derived,
// not trusted.
func RestoreGameState(snap BoardSnapshot) (*GameState, error) {
	if !snap.Turn.Valid() {
		return nil, fmt.Errorf("restore: unknown turn %q", snap.Turn)
	}
	pieces := make([]Piece, len(snap.Pieces))
	for i, ps := range snap.Pieces {
		p := Piece{Type: ps.Type, Color: ps.Color, HasMoved: ps.HasMoved}
		if ps.Position != nil {
			pos, err := ps.Position.Position()
			if err != nil {
				return nil, fmt.Errorf("restore: piece %d: %w", i, err)
			}
			p.Position = &pos
		}
		pieces[i] = p
	}
	board, err := newBoardFromPieces(pieces)
	if err != nil {
		return nil, fmt.Errorf("restore: %w", err)
	}
	return &GameState{Board: board, Turn: snap.Turn}, nil
}
