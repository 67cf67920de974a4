package board

// Direction tables for the 0x88 board.
var (
	knightOffsets = [8]Square{33, 31, 18, 14, -14, -18, -31, -33}
	kingOffsets   = [8]Square{North, South, East, West, NorthEast, NorthWest, SouthEast, SouthWest}
	rookDirs      = [4]Square{North, South, East, West}
	bishopDirs    = [4]Square{NorthEast, NorthWest, SouthEast, SouthWest}
)

// IsAttacked reports whether sq is attacked by the opponent of side.
// Checks run knights, kings, orthogonal sliders, diagonal sliders, then pawns,
// and stop at the first attacker found.
func (p *Position) IsAttacked(side Side, sq Square) bool {
	them := side.Other()

	for _, d := range knightOffsets {
		t := sq + d
		if t.Valid() && p.pieces[t] == Knight && p.sides[t] == them {
			return true
		}
	}

	for _, d := range kingOffsets {
		t := sq + d
		if t.Valid() && p.pieces[t] == King && p.sides[t] == them {
			return true
		}
	}

	if p.slidingAttack(sq, them, rookDirs, Rook) {
		return true
	}
	if p.slidingAttack(sq, them, bishopDirs, Bishop) {
		return true
	}

	// Enemy pawns attack towards us, so look one rank behind from their view.
	var left, right Square
	if side == White {
		left, right = sq+NorthWest, sq+NorthEast
	} else {
		left, right = sq+SouthWest, sq+SouthEast
	}
	if left.Valid() && p.pieces[left] == Pawn && p.sides[left] == them {
		return true
	}
	if right.Valid() && p.pieces[right] == Pawn && p.sides[right] == them {
		return true
	}

	return false
}

// slidingAttack walks each ray from sq until it leaves the board or hits a
// piece, and reports whether that piece is an enemy slider (kind or queen).
func (p *Position) slidingAttack(sq Square, them Side, dirs [4]Square, kind PieceKind) bool {
	for _, d := range dirs {
		for t := sq + d; t.Valid(); t += d {
			k := p.pieces[t]
			if k == None {
				continue
			}
			if p.sides[t] == them && (k == kind || k == Queen) {
				return true
			}
			break
		}
	}
	return false
}

// IsKingAttacked reports whether side's king is attacked.
// It panics if side has no king on the board.
func (p *Position) IsKingAttacked(side Side) bool {
	ksq := p.kings[side]
	if ksq == NoSquare || p.pieces[ksq] != King || p.sides[ksq] != side {
		panic("board: no " + side.String() + " king on the board")
	}
	return p.IsAttacked(side, ksq)
}
