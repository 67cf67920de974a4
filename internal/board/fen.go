package board

import (
	"strconv"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
)

// StartFEN is the FEN string for the starting position.
const StartFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

// ParseFEN parses a FEN string and returns a Position.
// The half-move clock and full-move number are optional.
//
// Syntax errors are reported immediately. A syntactically valid FEN that
// describes an impossible position is rejected with every problem found.
func ParseFEN(fen string) (*Position, error) {
	parts := strings.Fields(fen)
	if len(parts) < 4 || len(parts) > 6 {
		return nil, errors.Errorf("invalid FEN: need 4 to 6 fields, got %d", len(parts))
	}

	pos := NewEmptyPosition()

	kings, err := parsePiecePlacement(pos, parts[0])
	if err != nil {
		return nil, errors.Wrap(err, "invalid FEN")
	}

	switch parts[1] {
	case "w":
		pos.sideToMove = White
	case "b":
		pos.sideToMove = Black
	default:
		return nil, errors.Errorf("invalid FEN: side to move %q", parts[1])
	}

	if pos.castling, err = parseCastlingRights(parts[2]); err != nil {
		return nil, errors.Wrap(err, "invalid FEN")
	}

	if parts[3] != "-" {
		sq, err := ParseSquare(parts[3])
		if err != nil {
			return nil, errors.Wrap(err, "invalid FEN: en passant")
		}
		pos.enPassant = sq
	}

	if len(parts) > 4 {
		hmc, err := strconv.Atoi(parts[4])
		if err != nil || hmc < 0 {
			return nil, errors.Errorf("invalid FEN: half-move clock %q", parts[4])
		}
		pos.halfMoveClock = hmc
	}

	fullMove := 1
	if len(parts) > 5 {
		fmn, err := strconv.Atoi(parts[5])
		if err != nil || fmn < 1 {
			return nil, errors.Errorf("invalid FEN: full-move number %q", parts[5])
		}
		fullMove = fmn
	}
	pos.ply = (fullMove - 1) * 2
	if pos.sideToMove == Black {
		pos.ply++
	}

	if err := pos.validate(kings); err != nil {
		return nil, errors.Wrapf(err, "invalid FEN %q", fen)
	}
	return pos, nil
}

// parsePiecePlacement fills pos from the first FEN field and returns the
// number of kings found per side.
func parsePiecePlacement(pos *Position, placement string) ([2]int, error) {
	var kings [2]int

	ranks := strings.Split(placement, "/")
	if len(ranks) != 8 {
		return kings, errors.Errorf("piece placement: need 8 ranks, got %d", len(ranks))
	}

	for i, rankStr := range ranks {
		rank := 7 - i // FEN starts from rank 8
		file := 0

		for j := 0; j < len(rankStr); j++ {
			c := rankStr[j]
			if file > 7 {
				return kings, errors.Errorf("too many squares in rank %d", rank+1)
			}

			if c >= '1' && c <= '8' {
				file += int(c - '0')
				continue
			}

			kind := KindFromChar(c)
			if kind == None {
				return kings, errors.Errorf("invalid piece character: %c", c)
			}
			side := Black
			if c >= 'A' && c <= 'Z' {
				side = White
			}
			pos.SetSquare(NewSquare(file, rank), kind, side)
			if kind == King {
				kings[side]++
			}
			file++
		}

		if file != 8 {
			return kings, errors.Errorf("invalid number of squares in rank %d: got %d", rank+1, file)
		}
	}

	return kings, nil
}

func parseCastlingRights(castling string) (CastlingRights, error) {
	cr := NoCastling
	if castling == "-" {
		return cr, nil
	}

	for i := 0; i < len(castling); i++ {
		var bit CastlingRights
		switch castling[i] {
		case 'K':
			bit = WhiteKingSideCastle
		case 'Q':
			bit = WhiteQueenSideCastle
		case 'k':
			bit = BlackKingSideCastle
		case 'q':
			bit = BlackQueenSideCastle
		default:
			return cr, errors.Errorf("invalid castling character: %c", castling[i])
		}
		if cr&bit != 0 {
			return cr, errors.Errorf("duplicate castling character: %c", castling[i])
		}
		cr |= bit
	}
	return cr, nil
}

// validate checks the position-level rules a FEN can violate and returns
// all violations together.
func (p *Position) validate(kings [2]int) error {
	var result *multierror.Error

	for _, s := range [2]Side{White, Black} {
		if kings[s] != 1 {
			result = multierror.Append(result, errors.Errorf("%s has %d kings", s, kings[s]))
		}
	}

	for file := 0; file < 8; file++ {
		for _, rank := range [2]int{0, 7} {
			sq := NewSquare(file, rank)
			if p.pieces[sq] == Pawn {
				result = multierror.Append(result, errors.Errorf("pawn on %s", sq))
			}
		}
	}

	type castleReq struct {
		right      CastlingRights
		king, rook Square
		side       Side
	}
	for _, req := range [4]castleReq{
		{WhiteKingSideCastle, E1, H1, White},
		{WhiteQueenSideCastle, E1, A1, White},
		{BlackKingSideCastle, E8, H8, Black},
		{BlackQueenSideCastle, E8, A8, Black},
	} {
		if p.castling&req.right == 0 {
			continue
		}
		if p.pieces[req.king] != King || p.sides[req.king] != req.side ||
			p.pieces[req.rook] != Rook || p.sides[req.rook] != req.side {
			result = multierror.Append(result, errors.Errorf("castling right %s without king on %s and rook on %s", req.right, req.king, req.rook))
		}
	}

	if p.enPassant != NoSquare {
		wantRank, victim := 5, p.enPassant+South
		if p.sideToMove == Black {
			wantRank, victim = 2, p.enPassant+North
		}
		if p.enPassant.Rank() != wantRank {
			result = multierror.Append(result, errors.Errorf("en passant square %s on wrong rank for %s to move", p.enPassant, p.sideToMove))
		} else if p.pieces[victim] != Pawn || p.sides[victim] != p.sideToMove.Other() {
			result = multierror.Append(result, errors.Errorf("en passant square %s without a pawn on %s", p.enPassant, victim))
		}
	}

	// Only meaningful once each side has exactly one king.
	if kings[White] == 1 && kings[Black] == 1 {
		them := p.sideToMove.Other()
		if p.IsAttacked(them, p.kings[them]) {
			result = multierror.Append(result, errors.Errorf("%s is in check but it is %s to move", them, p.sideToMove))
		}
	}

	return result.ErrorOrNil()
}

// FEN returns the FEN representation of the position.
func (p *Position) FEN() string {
	var sb strings.Builder

	for rank := 7; rank >= 0; rank-- {
		empty := 0
		for file := 0; file < 8; file++ {
			sq := NewSquare(file, rank)
			if p.pieces[sq] == None {
				empty++
				continue
			}
			if empty > 0 {
				sb.WriteString(strconv.Itoa(empty))
				empty = 0
			}
			sb.WriteByte(pieceChar(p.pieces[sq], p.sides[sq]))
		}
		if empty > 0 {
			sb.WriteString(strconv.Itoa(empty))
		}
		if rank > 0 {
			sb.WriteByte('/')
		}
	}

	sb.WriteByte(' ')
	if p.sideToMove == White {
		sb.WriteByte('w')
	} else {
		sb.WriteByte('b')
	}

	sb.WriteByte(' ')
	sb.WriteString(p.castling.String())
	sb.WriteByte(' ')
	sb.WriteString(p.enPassant.String())
	sb.WriteByte(' ')
	sb.WriteString(strconv.Itoa(p.halfMoveClock))
	sb.WriteByte(' ')
	sb.WriteString(strconv.Itoa(p.FullMoveNumber()))

	return sb.String()
}
