package board

import (
	"cmp"
	"slices"
)

// Move ordering bonuses.
const (
	PromotionBonus = 50
	CheckBonus     = 25
)

// mvvLva scores a capture by victim (row) and attacker (column), both
// indexed by PieceKind. Higher victims always outrank cheaper attackers.
var mvvLva = [7][7]int{
	// None, P, N, B, R, Q, K
	{0, 0, 0, 0, 0, 0, 0},       // None
	{0, 15, 14, 13, 12, 11, 10}, // Pawn
	{0, 21, 20, 19, 18, 17, 16}, // Knight
	{0, 27, 26, 25, 24, 23, 22}, // Bishop
	{0, 33, 32, 31, 30, 29, 28}, // Rook
	{0, 39, 38, 37, 36, 35, 34}, // Queen
	{0, 45, 44, 43, 42, 41, 40}, // King
}

var promotionKinds = [4]PieceKind{Queen, Rook, Bishop, Knight}

// Generate returns every legal move for the side to move, each scored for
// move ordering and tagged with FlagCheck when it attacks the enemy king.
// The list is unsorted; see SortMoves.
func (p *Position) Generate() *MoveList {
	ml := NewMoveList()
	p.generateCastling(ml)
	p.generatePseudoLegal(ml)
	p.filterLegal(ml)
	return ml
}

// generateCastling adds castles whose right is still held, whose path is
// empty and whose king squares (home, transit, landing) are not attacked.
// The queenside rook's neighbour (b-file) only needs to be empty.
func (p *Position) generateCastling(ml *MoveList) {
	us := p.sideToMove
	home := E1
	if us == Black {
		home = E8
	}
	if p.pieces[home] != King || p.sides[home] != us {
		return
	}
	if !p.castling.CanCastle(us, true) && !p.castling.CanCastle(us, false) {
		return
	}
	if p.IsAttacked(us, home) {
		return
	}

	if p.castling.CanCastle(us, true) {
		f, g, h := home+East, home+2*East, home+3*East
		if p.pieces[h] == Rook && p.sides[h] == us &&
			p.IsEmpty(f) && p.IsEmpty(g) &&
			!p.IsAttacked(us, f) && !p.IsAttacked(us, g) {
			ml.Add(newMove(p, home, g, King, FlagCastle))
		}
	}
	if p.castling.CanCastle(us, false) {
		d, c, b, a := home+West, home+2*West, home+3*West, home+4*West
		if p.pieces[a] == Rook && p.sides[a] == us &&
			p.IsEmpty(d) && p.IsEmpty(c) && p.IsEmpty(b) &&
			!p.IsAttacked(us, d) && !p.IsAttacked(us, c) {
			ml.Add(newMove(p, home, c, King, FlagCastle))
		}
	}
}

// generatePseudoLegal adds every move that obeys piece movement rules,
// ignoring whether it leaves the mover's king attacked.
func (p *Position) generatePseudoLegal(ml *MoveList) {
	us := p.sideToMove
	for sq := A1; sq <= H8; sq++ {
		if !sq.Valid() || p.sides[sq] != us {
			continue
		}
		switch p.pieces[sq] {
		case Pawn:
			p.generatePawnMoves(ml, sq)
		case Knight:
			p.generateSteps(ml, sq, knightOffsets[:])
		case King:
			p.generateSteps(ml, sq, kingOffsets[:])
		case Bishop:
			p.generateSlides(ml, sq, bishopDirs[:])
		case Rook:
			p.generateSlides(ml, sq, rookDirs[:])
		case Queen:
			p.generateSlides(ml, sq, bishopDirs[:])
			p.generateSlides(ml, sq, rookDirs[:])
		}
	}
}

func (p *Position) generateSteps(ml *MoveList, from Square, offsets []Square) {
	us := p.sideToMove
	kind := p.pieces[from]
	for _, d := range offsets {
		to := from + d
		if !to.Valid() || p.sides[to] == us {
			continue
		}
		ml.Add(newMove(p, from, to, kind, 0))
	}
}

func (p *Position) generateSlides(ml *MoveList, from Square, dirs []Square) {
	us := p.sideToMove
	kind := p.pieces[from]
	for _, d := range dirs {
		for to := from + d; to.Valid(); to += d {
			if p.sides[to] == us {
				break
			}
			ml.Add(newMove(p, from, to, kind, 0))
			if p.pieces[to] != None {
				break
			}
		}
	}
}

func (p *Position) generatePawnMoves(ml *MoveList, from Square) {
	us := p.sideToMove
	forward, startRank, lastRank := Square(North), 1, 7
	if us == Black {
		forward, startRank, lastRank = South, 6, 0
	}

	// Pushes
	one := from + forward
	if one.Valid() && p.IsEmpty(one) {
		addPawnMove(ml, p, from, one, lastRank, 0)
		two := one + forward
		if from.Rank() == startRank && p.IsEmpty(two) {
			ml.Add(newMove(p, from, two, Pawn, FlagDoublePush))
		}
	}

	// Captures
	for _, side := range [2]Square{East, West} {
		to := from + forward + side
		if !to.Valid() {
			continue
		}
		if to == p.enPassant {
			ml.Add(newMove(p, from, to, Pawn, FlagEnPassant))
			continue
		}
		if p.sides[to] == us.Other() {
			addPawnMove(ml, p, from, to, lastRank, 0)
		}
	}
}

// addPawnMove adds a pawn move, expanding it into the four promotions when
// it lands on the last rank.
func addPawnMove(ml *MoveList, p *Position, from, to Square, lastRank int, flags MoveFlag) {
	if to.Rank() != lastRank {
		ml.Add(newMove(p, from, to, Pawn, flags))
		return
	}
	for _, k := range promotionKinds {
		ml.Add(newMove(p, from, to, k, flags|FlagPromotion))
	}
}

// filterLegal removes moves that leave the mover's king attacked, tags
// checking moves and scores the survivors. The list is compacted in place.
func (p *Position) filterLegal(ml *MoveList) {
	us := p.sideToMove
	them := us.Other()
	n := 0
	for i := 0; i < ml.count; i++ {
		m := ml.moves[i]
		p.ApplyMove(m)
		if p.IsKingAttacked(us) {
			p.RetractMove(m)
			continue
		}
		if p.IsKingAttacked(them) {
			m.Flags |= FlagCheck
		}
		p.RetractMove(m)

		m.Score = ScoreMove(m)
		ml.moves[n] = m
		n++
	}
	ml.count = n
}

// ScoreMove returns the ordering score of a move: MVV-LVA for captures,
// plus bonuses for promotion and check.
func ScoreMove(m Move) int {
	score := 0
	switch {
	case m.IsEnPassant():
		score += mvvLva[Pawn][Pawn]
	case m.Captured != None:
		score += mvvLva[m.Captured][m.Piece]
	}
	if m.IsPromotion() {
		score += PromotionBonus + m.Result.Value()/10
	}
	if m.GivesCheck() {
		score += CheckBonus
	}
	return score
}

// SortMoves orders the list by descending score. Equal scores keep their
// generation order.
func SortMoves(ml *MoveList) {
	slices.SortStableFunc(ml.Slice(), func(a, b Move) int {
		return cmp.Compare(b.Score, a.Score)
	})
}

// HasLegalMoves returns true if the side to move has any legal moves.
func (p *Position) HasLegalMoves() bool {
	return p.Generate().Len() > 0
}

// IsCheckmate returns true if the side to move is checkmated.
func (p *Position) IsCheckmate() bool {
	return p.InCheck() && !p.HasLegalMoves()
}

// IsStalemate returns true if the side to move has no legal moves but is not in check.
func (p *Position) IsStalemate() bool {
	return !p.InCheck() && !p.HasLegalMoves()
}
