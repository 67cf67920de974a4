package board

import (
	"github.com/pkg/errors"
)

// MoveFlag is a bitmask describing what kind of transition a Move is.
type MoveFlag uint8

// Move flags
const (
	FlagCapture MoveFlag = 1 << iota
	FlagDoublePush
	FlagEnPassant
	FlagCastle
	FlagPromotion
	FlagCheck
)

// Undo is the part of a Position that a move overwrites and cannot
// reconstruct on its own. It is captured before the move is applied.
type Undo struct {
	EnPassant     Square
	Castling      CastlingRights
	Ply           int
	HalfMoveClock int
}

// Move is a single transition between two positions.
//
// A Move carries everything needed to undo it: the captured kind and the
// pre-move snapshot. It is only meaningful for the position it was built
// from, or that position's successor when retracting.
type Move struct {
	From     Square
	To       Square
	Piece    PieceKind // kind that moves
	Result   PieceKind // kind that lands on To (differs only for promotions)
	Captured PieceKind // None for quiet moves and en passant
	Flags    MoveFlag
	Score    int
	Undo     Undo
}

// NoMove is the zero-value sentinel for "no move".
var NoMove = Move{From: NoSquare, To: NoSquare}

// newMove builds a move from pos, snapshotting the fields ApplyMove overwrites.
func newMove(pos *Position, from, to Square, result PieceKind, flags MoveFlag) Move {
	m := Move{
		From:     from,
		To:       to,
		Piece:    pos.pieces[from],
		Result:   result,
		Captured: pos.pieces[to],
		Flags:    flags,
		Undo: Undo{
			EnPassant:     pos.enPassant,
			Castling:      pos.castling,
			Ply:           pos.ply,
			HalfMoveClock: pos.halfMoveClock,
		},
	}
	if m.Captured != None {
		m.Flags |= FlagCapture
	}
	return m
}

// Has reports whether every bit in f is set.
func (m Move) Has(f MoveFlag) bool {
	return m.Flags&f == f
}

// IsCapture returns true if this move removes an enemy piece, en passant included.
func (m Move) IsCapture() bool {
	return m.Flags&(FlagCapture|FlagEnPassant) != 0
}

// IsPromotion returns true if this is a promotion move.
func (m Move) IsPromotion() bool {
	return m.Flags&FlagPromotion != 0
}

// IsCastle returns true if this is a castling move.
func (m Move) IsCastle() bool {
	return m.Flags&FlagCastle != 0
}

// IsEnPassant returns true if this is an en passant capture.
func (m Move) IsEnPassant() bool {
	return m.Flags&FlagEnPassant != 0
}

// GivesCheck returns true if the move was tagged as checking by the generator.
func (m Move) GivesCheck() bool {
	return m.Flags&FlagCheck != 0
}

// IsQuiet returns true if this is not a capture or promotion.
func (m Move) IsQuiet() bool {
	return !m.IsCapture() && !m.IsPromotion()
}

// IsNone reports whether m is the NoMove sentinel.
func (m Move) IsNone() bool {
	return m.From == NoSquare
}

// String returns the coordinate form of the move (e.g., "e2e4", "e7e8q").
func (m Move) String() string {
	if m.IsNone() {
		return "0000"
	}

	s := m.From.String() + m.To.String()
	if m.IsPromotion() {
		s += string(m.Result.Char())
	}
	return s
}

// ParseMove parses coordinate notation ("e2e4", "e7e8q") against pos.
// Capture, double push, en passant and castling flags are deduced from the
// position. The result is not checked for legality.
func ParseMove(s string, pos *Position) (Move, error) {
	if len(s) != 4 && len(s) != 5 {
		return NoMove, errors.Errorf("invalid move string: %q", s)
	}

	from, err := ParseSquare(s[0:2])
	if err != nil {
		return NoMove, errors.Wrapf(err, "move %q", s)
	}
	to, err := ParseSquare(s[2:4])
	if err != nil {
		return NoMove, errors.Wrapf(err, "move %q", s)
	}

	piece, side := pos.PieceAt(from)
	if piece == None {
		return NoMove, errors.Errorf("move %q: no piece at %s", s, from)
	}
	if side != pos.sideToMove {
		return NoMove, errors.Errorf("move %q: piece at %s belongs to %s", s, from, side)
	}
	if pos.sides[to] == side {
		return NoMove, errors.Errorf("move %q: %s is occupied by own piece", s, to)
	}

	result := piece
	var flags MoveFlag

	if len(s) == 5 {
		promo := KindFromChar(s[4])
		if s[4] < 'a' || promo < Knight || promo > Queen {
			return NoMove, errors.Errorf("move %q: invalid promotion piece %c", s, s[4])
		}
		if piece != Pawn || (to.Rank() != 7 && to.Rank() != 0) {
			return NoMove, errors.Errorf("move %q: promotion must be a pawn reaching the last rank", s)
		}
		result = promo
		flags |= FlagPromotion
	}

	switch piece {
	case King:
		if abs(int(to)-int(from)) == 2 {
			flags |= FlagCastle
		}
	case Pawn:
		if abs(int(to)-int(from)) == 2*North {
			flags |= FlagDoublePush
		}
		if to == pos.enPassant && from.File() != to.File() && pos.IsEmpty(to) {
			flags |= FlagEnPassant
		}
	}

	return newMove(pos, from, to, result, flags), nil
}

// ParseLegalMove parses coordinate notation and returns the matching legal
// move of pos, with its generator flags and score.
func ParseLegalMove(s string, pos *Position) (Move, error) {
	parsed, err := ParseMove(s, pos)
	if err != nil {
		return NoMove, err
	}
	promo := None
	if parsed.IsPromotion() {
		promo = parsed.Result
	}
	m, ok := pos.Generate().Find(parsed.From, parsed.To, promo)
	if !ok {
		return NoMove, errors.Errorf("illegal move %s in %s", s, pos.FEN())
	}
	return m, nil
}

// MoveList is a fixed-size list of moves to avoid allocations.
type MoveList struct {
	moves [256]Move
	count int
}

// NewMoveList creates an empty move list.
func NewMoveList() *MoveList {
	return &MoveList{}
}

// Add adds a move to the list.
func (ml *MoveList) Add(m Move) {
	ml.moves[ml.count] = m
	ml.count++
}

// Len returns the number of moves in the list.
func (ml *MoveList) Len() int {
	return ml.count
}

// Get returns a copy of the move at index i.
func (ml *MoveList) Get(i int) Move {
	return ml.moves[i]
}

// At returns a pointer to the move at index i so its score can be updated.
func (ml *MoveList) At(i int) *Move {
	return &ml.moves[i]
}

// Find returns the move matching from, to and promotion kind.
// Pass None as promo for non-promotions.
func (ml *MoveList) Find(from, to Square, promo PieceKind) (Move, bool) {
	for i := 0; i < ml.count; i++ {
		m := ml.moves[i]
		if m.From != from || m.To != to {
			continue
		}
		if m.IsPromotion() && m.Result != promo {
			continue
		}
		if !m.IsPromotion() && promo != None {
			continue
		}
		return m, true
	}
	return NoMove, false
}

// Slice returns the moves as a slice backed by the list.
func (ml *MoveList) Slice() []Move {
	return ml.moves[:ml.count]
}
