package board

import (
	"strings"

	"github.com/pkg/errors"
)

const sanPieceLetters = " PNBRQK"

// SAN converts a legal move of this position to Standard Algebraic Notation.
func (p *Position) SAN(m Move) string {
	if m.IsNone() {
		return "-"
	}

	var sb strings.Builder

	switch {
	case m.IsCastle() && m.To > m.From:
		sb.WriteString("O-O")
	case m.IsCastle():
		sb.WriteString("O-O-O")
	default:
		if m.Piece != Pawn {
			sb.WriteByte(sanPieceLetters[m.Piece])
			sb.WriteString(p.disambiguation(m))
		}
		if m.IsCapture() {
			if m.Piece == Pawn {
				sb.WriteByte('a' + byte(m.From.File()))
			}
			sb.WriteByte('x')
		}
		sb.WriteString(m.To.String())
		if m.IsPromotion() {
			sb.WriteByte('=')
			sb.WriteByte(sanPieceLetters[m.Result])
		}
	}

	p.ApplyMove(m)
	switch {
	case p.IsCheckmate():
		sb.WriteByte('#')
	case p.InCheck():
		sb.WriteByte('+')
	}
	p.RetractMove(m)

	return sb.String()
}

// disambiguation returns the origin file, rank or square needed to tell m
// apart from other moves of the same kind to the same square.
func (p *Position) disambiguation(m Move) string {
	sameFile, sameRank, ambiguous := false, false, false

	moves := p.Generate()
	for i := 0; i < moves.Len(); i++ {
		other := moves.At(i)
		if other.To != m.To || other.From == m.From || other.Piece != m.Piece {
			continue
		}
		ambiguous = true
		if other.From.File() == m.From.File() {
			sameFile = true
		}
		if other.From.Rank() == m.From.Rank() {
			sameRank = true
		}
	}

	switch {
	case !ambiguous:
		return ""
	case !sameFile:
		return string(rune('a' + m.From.File()))
	case !sameRank:
		return string(rune('1' + m.From.Rank()))
	default:
		return m.From.String()
	}
}

// ParseSAN finds the legal move whose SAN matches s. Check and mate markers
// are optional and "0-0" is accepted for castling.
func ParseSAN(s string, pos *Position) (Move, error) {
	want := normalizeSAN(s)
	if want == "" {
		return NoMove, errors.Errorf("empty SAN move")
	}

	moves := pos.Generate()
	for i := 0; i < moves.Len(); i++ {
		m := moves.Get(i)
		if normalizeSAN(pos.SAN(m)) == want {
			return m, nil
		}
	}
	return NoMove, errors.Errorf("no legal move matches SAN %q", s)
}

func normalizeSAN(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimRight(s, "+#!?")
	return strings.ReplaceAll(s, "0", "O")
}
