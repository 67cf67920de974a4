package board

import (
	"testing"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFENRoundTrip(t *testing.T) {
	for _, fen := range []string{
		StartFEN,
		"r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1",
		"rnbq1k1r/pp1Pbppp/2p5/8/2B5/8/PPP1NnPP/RNBQK2R w KQ - 1 8",
		"k7/8/8/3pP3/8/8/8/7K w - d6 0 2",
		"rnbqkbnr/pppp1ppp/8/8/3Pp3/8/PPP1PPPP/RNBQKBNR b KQkq d3 0 2",
	} {
		pos, err := ParseFEN(fen)
		require.NoError(t, err, fen)
		assert.Equal(t, fen, pos.FEN())
	}
}

func TestParseFENFields(t *testing.T) {
	pos, err := ParseFEN("rnbqkbnr/pppp1ppp/8/8/3Pp3/8/PPP1PPPP/RNBQKBNR b KQkq d3 4 12")
	require.NoError(t, err)

	assert.Equal(t, Black, pos.SideToMove())
	assert.Equal(t, AllCastling, pos.Castling())
	assert.Equal(t, D3, pos.EnPassant())
	assert.Equal(t, 4, pos.HalfMoveClock())
	assert.Equal(t, 23, pos.Ply())
	assert.Equal(t, 12, pos.FullMoveNumber())
	assert.Equal(t, E1, pos.KingSquare(White))
	assert.Equal(t, E8, pos.KingSquare(Black))
}

func TestParseFENOptionalCounters(t *testing.T) {
	pos, err := ParseFEN("4k3/8/8/8/8/8/8/4K3 b - -")
	require.NoError(t, err)
	assert.Equal(t, 0, pos.HalfMoveClock())
	assert.Equal(t, 1, pos.Ply())
	assert.Equal(t, "4k3/8/8/8/8/8/8/4K3 b - - 0 1", pos.FEN())
}

func TestParseFENSyntaxErrors(t *testing.T) {
	for _, fen := range []string{
		"",
		"8/8/8 w - -",
		"4k3/8/8/8/8/8/8/4K3 x - - 0 1",
		"4k3/8/8/8/8/8/8/4K3 w X - 0 1",
		"4k3/8/8/8/8/8/8/4K3 w KK - 0 1",
		"4k3/8/8/8/8/8/8/4K3 w - z9 0 1",
		"4k3/8/8/8/8/8/8/4K3 w - - -1 1",
		"4k3/8/8/8/8/8/8/4K3 w - - 0 0",
		"4k3/8/8/8/8/8/8/4K3 w - - 0 1 extra",
		"4k3/8/8/8/8/8/8/4K2X w - - 0 1",
		"4k3/9/8/8/8/8/8/4K3 w - - 0 1",
		"4k3/8/8/8/8/8/8/4K4 w - - 0 1",
	} {
		_, err := ParseFEN(fen)
		assert.Error(t, err, "%q should not parse", fen)
	}
}

func TestParseFENValidation(t *testing.T) {
	cases := []struct {
		name     string
		fen      string
		problems int
	}{
		{"no white king", "4k3/8/8/8/8/8/8/8 w - - 0 1", 1},
		{"two black kings", "3kk3/8/8/8/8/8/8/4K3 w - - 0 1", 1},
		{"pawn on back rank", "P3k3/8/8/8/8/8/8/4K2p w - - 0 1", 2},
		{"castling without rook", "4k3/8/8/8/8/8/8/4K3 w K - 0 1", 1},
		{"castling with moved king", "r3k2r/8/8/8/8/8/8/R2K3R w Qk - 0 1", 1},
		{"ep on wrong rank", "4k3/8/8/8/3pP3/8/8/4K3 w - d3 0 1", 1},
		{"ep without pawn", "4k3/8/8/8/8/8/8/4K3 w - d6 0 1", 1},
		{"side to move in check", "4k3/8/8/8/8/8/8/4R1K1 b - - 0 1", 0},
		{"side not to move in check", "4k3/8/8/8/8/8/8/4R1K1 w - - 0 1", 1},
		{"everything wrong", "4k3/8/8/8/8/8/8/7p w KQ e3 0 1", 5},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseFEN(tc.fen)
			if tc.problems == 0 {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)

			var merr *multierror.Error
			require.True(t, errors.As(err, &merr), "want multierror, got %T", err)
			assert.Len(t, merr.Errors, tc.problems, merr.Error())
		})
	}
}
