package board

import (
	"fmt"
	"strings"
)

// CastlingRights represents the available castling options.
type CastlingRights uint8

const (
	WhiteKingSideCastle  CastlingRights = 1 << iota // K
	WhiteQueenSideCastle                            // Q
	BlackKingSideCastle                             // k
	BlackQueenSideCastle                            // q
	NoCastling           CastlingRights = 0
	AllCastling          CastlingRights = WhiteKingSideCastle | WhiteQueenSideCastle | BlackKingSideCastle | BlackQueenSideCastle
)

// String returns the FEN castling rights string.
func (cr CastlingRights) String() string {
	if cr == NoCastling {
		return "-"
	}
	s := ""
	if cr&WhiteKingSideCastle != 0 {
		s += "K"
	}
	if cr&WhiteQueenSideCastle != 0 {
		s += "Q"
	}
	if cr&BlackKingSideCastle != 0 {
		s += "k"
	}
	if cr&BlackQueenSideCastle != 0 {
		s += "q"
	}
	return s
}

// CanCastle returns true if the given side can castle in the given direction.
func (cr CastlingRights) CanCastle(s Side, kingSide bool) bool {
	if s == White {
		if kingSide {
			return cr&WhiteKingSideCastle != 0
		}
		return cr&WhiteQueenSideCastle != 0
	}
	if kingSide {
		return cr&BlackKingSideCastle != 0
	}
	return cr&BlackQueenSideCastle != 0
}

// castleMask holds, per square, the rights that survive a move touching it.
// Only the two king home squares and the four rook corners clear anything.
var castleMask [128]CastlingRights

func init() {
	for i := range castleMask {
		castleMask[i] = AllCastling
	}
	castleMask[E1] &^= WhiteKingSideCastle | WhiteQueenSideCastle
	castleMask[E8] &^= BlackKingSideCastle | BlackQueenSideCastle
	castleMask[H1] &^= WhiteKingSideCastle
	castleMask[A1] &^= WhiteQueenSideCastle
	castleMask[H8] &^= BlackKingSideCastle
	castleMask[A8] &^= BlackQueenSideCastle
}

// Position represents a complete chess position.
//
// Pieces and sides are kept in parallel arrays indexed by Square. The arrays
// are only written through SetSquare and ClearSquare, which keep each square
// either fully empty (None/NoSide) or fully occupied.
type Position struct {
	pieces [128]PieceKind
	sides  [128]Side

	sideToMove    Side
	castling      CastlingRights
	enPassant     Square // target square for en passant, NoSquare if none
	halfMoveClock int    // plies since the last pawn move or capture
	ply           int    // total plies played

	// King squares indexed by Side (cached for check detection)
	kings [2]Square
}

// NewEmptyPosition returns a position with no pieces, White to move.
func NewEmptyPosition() *Position {
	p := &Position{}
	p.Clear()
	return p
}

// NewPosition creates the starting position.
func NewPosition() *Position {
	pos, err := ParseFEN(StartFEN)
	if err != nil {
		panic(err)
	}
	return pos
}

// Clear resets the position to an empty board.
func (p *Position) Clear() {
	for sq := range p.pieces {
		p.pieces[sq] = None
		p.sides[sq] = NoSide
	}
	p.sideToMove = White
	p.castling = NoCastling
	p.enPassant = NoSquare
	p.halfMoveClock = 0
	p.ply = 0
	p.kings = [2]Square{NoSquare, NoSquare}
}

// Copy creates a deep copy of the position.
func (p *Position) Copy() *Position {
	newPos := *p
	return &newPos
}

// SetSquare places a piece of the given kind and side on sq.
// Placing a king refreshes that side's king cache.
func (p *Position) SetSquare(sq Square, kind PieceKind, side Side) {
	if kind == None || side == NoSide {
		panic(fmt.Sprintf("board: SetSquare(%v) with kind %v side %v", sq, kind, side))
	}
	p.pieces[sq] = kind
	p.sides[sq] = side
	if kind == King {
		p.kings[side] = sq
	}
}

// ClearSquare empties sq.
func (p *Position) ClearSquare(sq Square) {
	p.pieces[sq] = None
	p.sides[sq] = NoSide
}

// PieceAt returns the kind and side on sq (None, NoSide if empty).
func (p *Position) PieceAt(sq Square) (PieceKind, Side) {
	return p.pieces[sq], p.sides[sq]
}

// Kind returns the kind of the piece on sq.
func (p *Position) Kind(sq Square) PieceKind {
	return p.pieces[sq]
}

// SideAt returns the side of the piece on sq.
func (p *Position) SideAt(sq Square) Side {
	return p.sides[sq]
}

// IsEmpty returns true if the square is empty.
func (p *Position) IsEmpty(sq Square) bool {
	return p.pieces[sq] == None
}

// SideToMove returns the side whose turn it is.
func (p *Position) SideToMove() Side {
	return p.sideToMove
}

// Castling returns the current castling rights.
func (p *Position) Castling() CastlingRights {
	return p.castling
}

// EnPassant returns the en passant target square, or NoSquare.
func (p *Position) EnPassant() Square {
	return p.enPassant
}

// HalfMoveClock returns the number of plies since the last capture or pawn move.
func (p *Position) HalfMoveClock() int {
	return p.halfMoveClock
}

// Ply returns the number of plies played.
func (p *Position) Ply() int {
	return p.ply
}

// FullMoveNumber returns the FEN full-move number derived from the ply counter.
func (p *Position) FullMoveNumber() int {
	return p.ply/2 + 1
}

// KingSquare returns the cached king square for a side.
func (p *Position) KingSquare(s Side) Square {
	return p.kings[s]
}

// IsFiftyMoveDraw reports whether the fifty-move rule can be claimed.
func (p *Position) IsFiftyMoveDraw() bool {
	return p.halfMoveClock >= 100
}

// InCheck returns true if the side to move is in check.
func (p *Position) InCheck() bool {
	return p.IsKingAttacked(p.sideToMove)
}

// Material returns the material balance (positive favors White), kings excluded.
func (p *Position) Material() int {
	score := 0
	for sq := A1; sq <= H8; sq++ {
		if !sq.Valid() || p.pieces[sq] == None || p.pieces[sq] == King {
			continue
		}
		if p.sides[sq] == White {
			score += p.pieces[sq].Value()
		} else {
			score -= p.pieces[sq].Value()
		}
	}
	return score
}

// String returns a visual representation of the position.
func (p *Position) String() string {
	var sb strings.Builder
	sb.WriteString("\n")
	for rank := 7; rank >= 0; rank-- {
		fmt.Fprintf(&sb, "%d  ", rank+1)
		for file := 0; file < 8; file++ {
			sq := NewSquare(file, rank)
			if p.pieces[sq] == None {
				sb.WriteString(". ")
				continue
			}
			sb.WriteByte(pieceChar(p.pieces[sq], p.sides[sq]))
			sb.WriteByte(' ')
		}
		sb.WriteString("\n")
	}
	sb.WriteString("\n   a b c d e f g h\n\n")
	fmt.Fprintf(&sb, "Side to move: %s\n", p.sideToMove)
	fmt.Fprintf(&sb, "White king: %s\n", p.kings[White])
	fmt.Fprintf(&sb, "Black king: %s\n", p.kings[Black])
	fmt.Fprintf(&sb, "Castling: %s\n", p.castling)
	fmt.Fprintf(&sb, "En passant: %s\n", p.enPassant)
	fmt.Fprintf(&sb, "Half-move clock: %d\n", p.halfMoveClock)
	fmt.Fprintf(&sb, "Full move: %d\n", p.FullMoveNumber())
	return sb.String()
}
