// Package engine implements iterative-deepening alpha-beta search over a
// board.Position, plus the perft move-generation oracle.
package engine

import (
	"github.com/hailam/chess88/internal/board"
)

// EvalFunc scores a position in centipawns, positive when White is better.
type EvalFunc func(pos *board.Position) int

// Piece-Square Tables (PST) for positional evaluation.
// Values are from White's perspective, written rank 8 first; mirrored for Black.

// Pawn PST - rewards advancement and the centre, keeps d/e pawns moving
var pawnPST = [64]int{
	0, 0, 0, 0, 0, 0, 0, 0,
	40, 40, 40, 40, 40, 40, 40, 40,
	30, 30, 30, 30, 30, 30, 30, 30,
	0, 0, 15, 20, 20, 15, 0, 0,
	0, 0, 0, 15, 10, 0, 0, 0,
	0, 0, 0, 0, 0, 0, 0, 0,
	10, 10, 10, -20, -20, 10, 10, 10,
	0, 0, 0, 0, 0, 0, 0, 0,
}

// Knight PST - encourages central positioning
var knightPST = [64]int{
	-40, -30, -20, -20, -20, -20, -30, -40,
	-30, -20, 0, 0, 0, 0, 0, -30,
	-20, 0, 0, 10, 10, 0, 0, -20,
	-20, 0, 10, 20, 20, 10, 0, -20,
	-20, 0, 10, 20, 20, 10, 0, -20,
	-20, 0, 0, 10, 10, 0, 0, -20,
	-30, -20, 0, 0, 0, 0, -20, -30,
	-40, -30, -20, -20, -20, -20, -30, -40,
}

var bishopPST = [64]int{
	-30, -20, -20, -20, -20, -20, -20, -30,
	-20, 0, 0, 0, 0, 0, 0, -20,
	-20, 0, 0, 10, 10, 0, 0, -20,
	-20, 0, 10, 10, 10, 10, 0, -20,
	-20, 0, 10, 10, 10, 10, 0, -20,
	-20, 0, 10, 10, 10, 10, 0, -20,
	-20, 0, 0, 0, 0, 0, 0, -20,
	-30, -20, -20, -20, -20, -20, -20, -30,
}

// Rook PST - seventh rank and central files
var rookPST = [64]int{
	0, 0, 0, 0, 0, 0, 0, 0,
	0, 10, 10, 10, 10, 10, 10, 0,
	-10, 0, 0, 0, 0, 0, 0, -10,
	-10, 0, 0, 0, 0, 0, 0, -10,
	-10, 0, 0, 0, 0, 0, 0, -10,
	-10, 0, 0, 0, 0, 0, 0, -10,
	-10, 0, 0, 0, 0, 0, 0, -10,
	-10, 0, 0, 10, 10, 0, 0, -10,
}

var queenPST = [64]int{
	0, 0, 0, 0, 0, 0, 0, 0,
	0, 10, 10, 10, 10, 10, 10, 0,
	-10, 0, 0, 10, 10, 0, 0, -10,
	-10, 0, 10, 10, 10, 10, 0, -10,
	-10, 0, 10, 10, 10, 10, 0, -10,
	-10, 0, 10, 10, 10, 10, 0, -10,
	-10, 0, 0, 0, 0, 0, 0, -10,
	-10, 0, 0, 10, 10, 0, 0, -10,
}

// psts is indexed by PieceKind; the king has no table.
var psts = [...]*[64]int{
	board.Pawn:   &pawnPST,
	board.Knight: &knightPST,
	board.Bishop: &bishopPST,
	board.Rook:   &rookPST,
	board.Queen:  &queenPST,
	board.King:   nil,
}

// pstIndex maps a square to its table entry for side s.
func pstIndex(sq board.Square, s board.Side) int {
	if s == board.White {
		return sq.Mirror().Index64()
	}
	return sq.Index64()
}

// Evaluate returns the static evaluation of the position from White's
// perspective: material plus piece-square bonuses.
func Evaluate(pos *board.Position) int {
	score := 0
	for sq := board.A1; sq <= board.H8; sq++ {
		if !sq.Valid() {
			continue
		}
		kind, side := pos.PieceAt(sq)
		if kind == board.None {
			continue
		}

		v := kind.Value()
		if t := psts[kind]; t != nil {
			v += t[pstIndex(sq, side)]
		}
		if side == board.White {
			score += v
		} else {
			score -= v
		}
	}
	return score
}

// EvaluateMaterial returns only the material balance.
func EvaluateMaterial(pos *board.Position) int {
	return pos.Material()
}

// Evaluators names the available evaluation functions.
var Evaluators = map[string]EvalFunc{
	"pst":      Evaluate,
	"material": EvaluateMaterial,
}
