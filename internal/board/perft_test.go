package board

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// perft counts the number of leaf nodes at the given depth.
// Every apply/retract pair is checked to restore the position exactly.
func perft(t testing.TB, p *Position, depth int) int64 {
	if depth == 0 {
		return 1
	}

	moves := p.Generate()
	if depth == 1 {
		return int64(moves.Len())
	}

	var nodes int64
	for i := 0; i < moves.Len(); i++ {
		m := moves.Get(i)
		before := *p
		p.ApplyMove(m)
		nodes += perft(t, p, depth-1)
		p.RetractMove(m)
		if *p != before {
			t.Fatalf("position not restored after %s\nbefore:%s\nafter:%s", m, before.String(), p.String())
		}
	}
	return nodes
}

type perftCase struct {
	name  string
	fen   string
	nodes []int64 // indexed by depth-1
}

var perftCases = []perftCase{
	{"startpos", StartFEN, []int64{20, 400, 8902, 197281}},
	{"kiwipete", "r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1", []int64{48, 2039, 97862}},
	{"position3", "8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - - 0 1", []int64{14, 191, 2812, 43238}},
	{"position4", "r3k2r/Pppp1ppp/1b3nbN/nP6/BBP1P3/q4N2/Pp1P2PP/R2Q1RK1 w kq - 0 1", []int64{6, 264, 9467}},
	{"position5", "rnbq1k1r/pp1Pbppp/2p5/8/2B5/8/PPP1NnPP/RNBQK2R w KQ - 1 8", []int64{44, 1486, 62379}},
	{"en passant", "k7/8/8/3pP3/8/8/8/7K w - d6 0 2", []int64{5, 19}},
	{"promotion", "1n5k/P7/8/8/8/8/8/7K w - - 0 1", []int64{11}},
}

func TestPerft(t *testing.T) {
	for _, tc := range perftCases {
		t.Run(tc.name, func(t *testing.T) {
			pos, err := ParseFEN(tc.fen)
			require.NoError(t, err)

			for i, want := range tc.nodes {
				depth := i + 1
				if testing.Short() && want > 100000 {
					t.Skipf("skipping depth %d in short mode", depth)
				}
				require.Equal(t, want, perft(t, pos, depth), "perft(%d)", depth)
			}
			require.Equal(t, tc.fen, pos.FEN())
		})
	}
}

// TestPerftStartingPositionDeep runs depth 5 from the starting position.
func TestPerftStartingPositionDeep(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping depth 5 perft in short mode")
	}
	pos := NewPosition()
	require.Equal(t, int64(4865609), perft(t, pos, 5))
}

func BenchmarkPerftStartpos(b *testing.B) {
	pos := NewPosition()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		perft(b, pos, 3)
	}
}

func BenchmarkPerftKiwipete(b *testing.B) {
	pos, err := ParseFEN("r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1")
	require.NoError(b, err)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		perft(b, pos, 2)
	}
}

func BenchmarkGenerate(b *testing.B) {
	pos, err := ParseFEN("r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1")
	require.NoError(b, err)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		pos.Generate()
	}
}
