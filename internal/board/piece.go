package board

// Side represents the colour of a piece or player.
// NoSide marks the colour of an empty square and is never the side to move.
type Side uint8

const (
	Black Side = iota
	White
	NoSide
)

// Other returns the opposing side.
func (s Side) Other() Side {
	return s ^ 1
}

// String returns the side name.
func (s Side) String() string {
	switch s {
	case White:
		return "White"
	case Black:
		return "Black"
	default:
		return "NoSide"
	}
}

// PieceKind represents the type of a chess piece.
type PieceKind uint8

const (
	None PieceKind = iota
	Pawn
	Knight
	Bishop
	Rook
	Queen
	King
)

// String returns the piece kind name.
func (k PieceKind) String() string {
	switch k {
	case Pawn:
		return "Pawn"
	case Knight:
		return "Knight"
	case Bishop:
		return "Bishop"
	case Rook:
		return "Rook"
	case Queen:
		return "Queen"
	case King:
		return "King"
	default:
		return "None"
	}
}

const kindChars = " pnbrqk"

// Char returns the lowercase FEN letter for the kind, or ' ' for None.
func (k PieceKind) Char() byte {
	if k > King {
		return ' '
	}
	return kindChars[k]
}

// KindFromChar converts a FEN letter (either case) to a PieceKind.
func KindFromChar(c byte) PieceKind {
	switch c | 0x20 {
	case 'p':
		return Pawn
	case 'n':
		return Knight
	case 'b':
		return Bishop
	case 'r':
		return Rook
	case 'q':
		return Queen
	case 'k':
		return King
	default:
		return None
	}
}

// PieceValue is the material value of each kind in centipawns, indexed by PieceKind.
var PieceValue = [7]int{0, 100, 300, 300, 500, 900, 30000}

// Value returns the material value of the kind in centipawns.
func (k PieceKind) Value() int {
	return PieceValue[k]
}

// pieceChar returns the FEN character for a piece: uppercase for White.
func pieceChar(k PieceKind, s Side) byte {
	c := k.Char()
	if s == White {
		c -= 'a' - 'A'
	}
	return c
}
