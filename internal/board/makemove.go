package board

// castleRookSquares returns the rook's origin and destination for a castle
// whose king lands on kingTo.
func castleRookSquares(kingTo Square) (from, to Square) {
	switch kingTo {
	case G1:
		return H1, F1
	case C1:
		return A1, D1
	case G8:
		return H8, F8
	case C8:
		return A8, D8
	}
	panic("board: castle move with king landing on " + kingTo.String())
}

// epVictim returns the square of the pawn removed by an en passant capture
// landing on to, made by side us.
func epVictim(to Square, us Side) Square {
	if us == White {
		return to + South
	}
	return to + North
}

// ApplyMove plays m on the position. m must have been built from this
// position (by the generator or ParseMove); its Undo snapshot is what
// RetractMove restores.
func (p *Position) ApplyMove(m Move) {
	us := p.sideToMove

	if !p.IsEmpty(m.To) {
		p.ClearSquare(m.To)
	}
	p.ClearSquare(m.From)
	p.SetSquare(m.To, m.Result, us)

	p.castling &= castleMask[m.From] & castleMask[m.To]

	if m.IsCastle() {
		rookFrom, rookTo := castleRookSquares(m.To)
		p.ClearSquare(rookFrom)
		p.SetSquare(rookTo, Rook, us)
	}

	if m.Has(FlagDoublePush) {
		p.enPassant = Square((int(m.From) + int(m.To)) / 2)
	} else {
		p.enPassant = NoSquare
	}

	if m.IsEnPassant() {
		p.ClearSquare(epVictim(m.To, us))
	}

	p.ply++
	if m.Piece == Pawn || m.IsCapture() {
		p.halfMoveClock = 0
	} else {
		p.halfMoveClock++
	}

	p.sideToMove = us.Other()
}

// RetractMove undoes m, which must be the last move applied.
func (p *Position) RetractMove(m Move) {
	us := p.sideToMove.Other()

	p.ClearSquare(m.To)
	p.SetSquare(m.From, m.Piece, us)
	if m.Captured != None {
		p.SetSquare(m.To, m.Captured, us.Other())
	}

	if m.IsCastle() {
		rookFrom, rookTo := castleRookSquares(m.To)
		p.ClearSquare(rookTo)
		p.SetSquare(rookFrom, Rook, us)
	}

	if m.IsEnPassant() {
		p.SetSquare(epVictim(m.To, us), Pawn, us.Other())
	}

	p.enPassant = m.Undo.EnPassant
	p.castling = m.Undo.Castling
	p.ply = m.Undo.Ply
	p.halfMoveClock = m.Undo.HalfMoveClock
	p.sideToMove = us
}
