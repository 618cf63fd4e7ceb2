package model

// kingOf returns the registry id of color's live king.
func (b *Board) kingOf(color PlayerColor) (int, bool) {
	for i, p := range b.pieces {
		if p.Type == King && p.Color == color && p.Live() {
			return i, true
		}
	}
	return 0, false
}

// IsInCheck reports whether any live piece of the opposing colour could move
// onto color's king square under its movement rule. A colour without a live
// king is never in check.
func (b *Board) IsInCheck(color PlayerColor) bool {
	king, ok := b.kingOf(color)
	if !ok {
		return false
	}
	target := *b.pieces[king].Position
	enemy := color.Opponent()
	for i, p := range b.pieces {
		if p.Color != enemy || !p.Live() {
			continue
		}
		if b.CanMove(i, target) {
			return true
		}
	}
	return false
}
