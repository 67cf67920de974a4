// Package board implements a 0x88 chess board with reversible move application,
// attack detection and legal move generation.
package board

import (
	"github.com/pkg/errors"
	"golang.org/x/exp/constraints"
)

// Square is an index into the padded 16x8 board (0-127).
// Rank r and file f map to r*16 + f, so A1=0x00, H1=0x07, A8=0x70, H8=0x77.
// Squares with either 0x08 or 0x80 set are off the board.
type Square int

// NoSquare marks the absence of a square (e.g. no en passant target).
const NoSquare Square = -1

// Square constants for the 64 playable squares.
const (
	A1, B1, C1, D1, E1, F1, G1, H1 Square = 16*iota + 0, 16*iota + 1, 16*iota + 2, 16*iota + 3,
		16*iota + 4, 16*iota + 5, 16*iota + 6, 16*iota + 7
	A2, B2, C2, D2, E2, F2, G2, H2
	A3, B3, C3, D3, E3, F3, G3, H3
	A4, B4, C4, D4, E4, F4, G4, H4
	A5, B5, C5, D5, E5, F5, G5, H5
	A6, B6, C6, D6, E6, F6, G6, H6
	A7, B7, C7, D7, E7, F7, G7, H7
	A8, B8, C8, D8, E8, F8, G8, H8
)

// Direction offsets on the 0x88 board.
const (
	North = 16
	East  = 1
	South = -16
	West  = -1

	NorthEast = North + East
	NorthWest = North + West
	SouthEast = South + East
	SouthWest = South + West
)

// Valid reports whether the square lies on the board.
func (sq Square) Valid() bool {
	return sq&0x88 == 0
}

// File returns the file (column) of the square (0-7, where 0=a, 7=h).
func (sq Square) File() int {
	return int(sq) & 7
}

// Rank returns the rank of the square (0-7, where 0 is the 1st rank).
func (sq Square) Rank() int {
	return int(sq) >> 4
}

// Row returns the 1-based rank of the square (1-8).
func (sq Square) Row() int {
	return (int(sq) >> 4) + 1
}

// String returns the algebraic notation for the square (e.g., "e4").
func (sq Square) String() string {
	if !sq.Valid() {
		return "-"
	}
	return string([]byte{byte('a' + sq.File()), byte('1' + sq.Rank())})
}

// NewSquare creates a square from file and rank (0-indexed).
func NewSquare(file, rank int) Square {
	return Square(rank<<4 | file)
}

// ParseSquare parses algebraic notation (e.g., "e4") into a Square.
func ParseSquare(s string) (Square, error) {
	if len(s) != 2 {
		return NoSquare, errors.Errorf("invalid square: %q", s)
	}

	file := int(s[0]) - 'a'
	rank := int(s[1]) - '1'

	if file < 0 || file > 7 || rank < 0 || rank > 7 {
		return NoSquare, errors.Errorf("invalid square: %q", s)
	}

	return NewSquare(file, rank), nil
}

// Mirror returns the square reflected across the board's horizontal midline.
func (sq Square) Mirror() Square {
	return sq ^ 0x70
}

// Index64 maps a valid square to the dense 0-63 index (A1=0, H8=63).
func (sq Square) Index64() int {
	return sq.Rank()*8 + sq.File()
}

func abs[T constraints.Signed](x T) T {
	if x < 0 {
		return -x
	}
	return x
}
