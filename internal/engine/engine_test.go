package engine

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hailam/chess88/internal/board"
)

func mustParse(t testing.TB, fen string) *board.Position {
	t.Helper()
	pos, err := board.ParseFEN(fen)
	require.NoError(t, err)
	return pos
}

func newEngineAt(t testing.TB, fen string) *Engine {
	t.Helper()
	eng := New(DefaultConfig())
	require.NoError(t, eng.SetPosition(mustParse(t, fen)))
	return eng
}

func isLegal(pos *board.Position, m board.Move) bool {
	promo := board.None
	if m.IsPromotion() {
		promo = m.Result
	}
	_, ok := pos.Generate().Find(m.From, m.To, promo)
	return ok
}

// minimax is a plain full-width search using the same move order and
// reduction rule as AlphaBeta, without pruning.
func minimax(pos *board.Position, depth, ply int, lmr bool) int {
	moves := pos.Generate()
	if moves.Len() == 0 {
		if pos.InCheck() {
			return mateScore(pos.SideToMove(), ply)
		}
		return 0
	}
	if depth == 0 {
		return Evaluate(pos)
	}
	board.SortMoves(moves)

	maximizing := pos.SideToMove() == board.White
	best := MateValue + 1
	if maximizing {
		best = -MateValue - 1
	}
	for i := 0; i < moves.Len(); i++ {
		m := moves.Get(i)
		next := depth - 1
		if lmr && i+1 > 3 && depth >= 2 && m.IsQuiet() && !m.GivesCheck() {
			next--
		}
		pos.ApplyMove(m)
		score := minimax(pos, next, ply+1, lmr)
		pos.RetractMove(m)
		if (maximizing && score > best) || (!maximizing && score < best) {
			best = score
		}
	}
	return best
}

func TestAlphaBetaEqualsMinimax(t *testing.T) {
	fens := []string{
		board.StartFEN,
		"r1bqkbnr/pppp1ppp/2n5/4p3/2B1P3/5N2/PPPP1PPP/RNBQK2R b KQkq - 3 3",
		"8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - - 0 1",
		"6k1/5ppp/8/8/8/8/5PPP/3R2K1 w - - 0 1",
		"3r2k1/5ppp/8/8/8/8/5PPP/6K1 b - - 0 1",
	}

	for _, lmr := range []bool{false, true} {
		cfg := DefaultConfig()
		cfg.LateMoveReduction = lmr
		for _, fen := range fens {
			for depth := 1; depth <= 3; depth++ {
				pos := mustParse(t, fen)
				s := NewSearcher(pos, cfg)

				want := minimax(pos, depth, 0, lmr)
				got := s.AlphaBeta(-MateValue, MateValue, depth, 0, pos.SideToMove() == board.White)

				assert.Equal(t, want, got, "lmr=%v depth=%d fen=%s", lmr, depth, fen)
				assert.Equal(t, fen, pos.FEN(), "position not restored")
			}
		}
	}
}

func TestTerminalScores(t *testing.T) {
	cfg := DefaultConfig()

	// Black is mated.
	pos := mustParse(t, "R6k/6pp/8/8/8/8/8/K7 b - - 0 1")
	s := NewSearcher(pos, cfg)
	assert.Equal(t, MateValue-3, s.AlphaBeta(-MateValue, MateValue, 2, 3, false))
	assert.Equal(t, MateValue-1, s.AlphaBeta(-MateValue, MateValue, 2, 1, false))

	// White is mated.
	pos = mustParse(t, "k7/8/8/8/8/8/5PPP/r5K1 w - - 0 1")
	s = NewSearcher(pos, cfg)
	assert.Equal(t, -MateValue+2, s.AlphaBeta(-MateValue, MateValue, 2, 2, true))

	// Stalemate.
	pos = mustParse(t, "7k/5Q2/6K1/8/8/8/8/8 b - - 0 1")
	s = NewSearcher(pos, cfg)
	assert.Equal(t, 0, s.AlphaBeta(-MateValue, MateValue, 3, 1, false))

	// Terminal nodes are not counted as evaluated leaves.
	assert.Zero(t, s.Nodes())

	// Faster mates are strictly better for the mating side.
	assert.Greater(t, mateScore(board.Black, 1), mateScore(board.Black, 3))
	assert.Less(t, mateScore(board.White, 1), mateScore(board.White, 3))
}

func TestMateInOne(t *testing.T) {
	cases := []struct {
		fen    string
		move   string
		score  int
		mateIn int
	}{
		{"6k1/5ppp/8/8/8/8/5PPP/3R2K1 w - - 0 1", "d1d8", MateValue - 1, 1},
		{"3r2k1/5ppp/8/8/8/8/5PPP/6K1 b - - 0 1", "d8d1", -MateValue + 1, -1},
	}

	for _, tc := range cases {
		eng := newEngineAt(t, tc.fen)
		res, err := eng.Search(SearchLimits{Depth: 3})
		require.NoError(t, err)

		assert.Equal(t, tc.move, res.BestMove.String())
		assert.Equal(t, tc.score, res.Score)
		assert.True(t, IsMateScore(res.Score))
		assert.Equal(t, tc.mateIn, MateIn(res.Score))
		assert.Equal(t, 1, res.Depth, "mate found at depth 1 ends the search")
	}
}

func TestSearchBasic(t *testing.T) {
	eng := New(DefaultConfig())
	require.NoError(t, eng.SetDifficulty(Easy))

	var infos []SearchInfo
	eng.OnInfo = func(info SearchInfo) { infos = append(infos, info) }

	res, err := eng.Search(SearchLimits{})
	require.NoError(t, err)

	pos, err := eng.Position()
	require.NoError(t, err)
	assert.True(t, isLegal(pos, res.BestMove), res.BestMove.String())
	assert.Equal(t, board.StartFEN, pos.FEN())
	assert.Equal(t, DifficultySettings[Easy], res.Depth)

	require.Len(t, infos, DifficultySettings[Easy])
	for i, info := range infos {
		assert.Equal(t, i+1, info.Depth)
		assert.NotZero(t, info.Nodes)
		require.Len(t, info.PV, 1)
	}
	assert.Equal(t, res.BestMove, infos[len(infos)-1].PV[0])
	t.Logf("Best move: %s", res.BestMove)
}

func TestSearchApplyBest(t *testing.T) {
	eng := New(DefaultConfig())
	res, err := eng.Search(SearchLimits{Depth: 2, ApplyBest: true})
	require.NoError(t, err)

	pos, err := eng.Position()
	require.NoError(t, err)
	assert.Equal(t, board.Black, pos.SideToMove())
	assert.True(t, pos.IsEmpty(res.BestMove.From))

	root, err := eng.SearchRoot(1, true)
	require.NoError(t, err)
	assert.True(t, root.Completed)
	pos, err = eng.Position()
	require.NoError(t, err)
	assert.Equal(t, board.White, pos.SideToMove())
}

func TestSearchNoLegalMoves(t *testing.T) {
	eng := newEngineAt(t, "R6k/6pp/8/8/8/8/8/K7 b - - 0 1")
	res, err := eng.Search(SearchLimits{Depth: 3})
	require.NoError(t, err)
	assert.True(t, res.BestMove.IsNone())
	assert.Equal(t, MateValue, res.Score)

	eng = newEngineAt(t, "7k/5Q2/6K1/8/8/8/8/8 b - - 0 1")
	res, err = eng.Search(SearchLimits{Depth: 3})
	require.NoError(t, err)
	assert.True(t, res.BestMove.IsNone())
	assert.Zero(t, res.Score)
}

func TestStopEndsInfiniteSearch(t *testing.T) {
	eng := New(DefaultConfig())
	require.NoError(t, eng.Go(SearchLimits{Infinite: true}))

	time.Sleep(50 * time.Millisecond)
	eng.Stop()

	done := make(chan SearchResult)
	go func() { done <- eng.Wait() }()

	select {
	case res := <-done:
		pos, err := eng.Position()
		require.NoError(t, err)
		assert.True(t, isLegal(pos, res.BestMove))
		assert.Equal(t, board.StartFEN, pos.FEN())
	case <-time.After(30 * time.Second):
		t.Fatal("search did not stop")
	}
	assert.False(t, eng.Busy())
}

func TestBusyWhileSearching(t *testing.T) {
	eng := New(DefaultConfig())
	require.NoError(t, eng.Go(SearchLimits{Infinite: true}))
	assert.True(t, eng.Busy())

	assert.True(t, errors.Is(eng.Go(SearchLimits{Depth: 1}), ErrBusy))
	assert.True(t, errors.Is(eng.SetPosition(board.NewPosition()), ErrBusy))
	_, err := eng.ApplyMove("e2e4")
	assert.True(t, errors.Is(err, ErrBusy))
	_, err = eng.Position()
	assert.True(t, errors.Is(err, ErrBusy))
	_, err = eng.Evaluate()
	assert.True(t, errors.Is(err, ErrBusy))
	_, err = eng.Perft(context.Background(), 1)
	assert.True(t, errors.Is(err, ErrBusy))
	_, err = eng.SearchRoot(1, false)
	assert.True(t, errors.Is(err, ErrBusy))
	assert.True(t, errors.Is(eng.SetDifficulty(Hard), ErrBusy))

	eng.Stop()
	eng.Wait()

	assert.NoError(t, eng.SetPosition(board.NewPosition()))
	_, err = eng.ApplyMove("e2e4")
	assert.NoError(t, err)
}

func TestEngineApplyMove(t *testing.T) {
	eng := New(DefaultConfig())

	m, err := eng.ApplyMove("e2e4")
	require.NoError(t, err)
	assert.True(t, m.Has(board.FlagDoublePush))

	_, err = eng.ApplyMove("e2e4")
	assert.Error(t, err, "no piece on e2 any more")
	_, err = eng.ApplyMove("e8e6")
	assert.Error(t, err, "king cannot jump")
	_, err = eng.ApplyMove("xx")
	assert.Error(t, err)

	pos, err := eng.Position()
	require.NoError(t, err)
	assert.Equal(t, "rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b KQkq e3 0 1", pos.FEN())
}

func TestPerft(t *testing.T) {
	eng := New(DefaultConfig())
	n, err := eng.Perft(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, uint64(8902), n)

	pos := board.NewPosition()
	assert.Equal(t, uint64(197281), Perft(pos, 4))

	entries, err := PerftDivide(context.Background(), pos, 3, 1)
	require.NoError(t, err)
	require.Len(t, entries, 20)
	assert.Equal(t, uint64(8902), SumDivide(entries))
	for _, e := range entries {
		if e.Move.String() == "e2e4" {
			assert.Equal(t, uint64(600), e.Nodes)
		}
	}
	assert.Equal(t, board.StartFEN, pos.FEN())
}

func TestPerftDivideKiwipete(t *testing.T) {
	pos := mustParse(t, "r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1")
	entries, err := PerftDivide(context.Background(), pos, 3, 4)
	require.NoError(t, err)
	assert.Len(t, entries, 48)
	assert.Equal(t, uint64(97862), SumDivide(entries))
}

func TestPerftDivideCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := PerftDivide(ctx, board.NewPosition(), 3, 2)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestEvaluate(t *testing.T) {
	assert.Zero(t, Evaluate(board.NewPosition()))

	advanced := mustParse(t, "4k3/4P3/8/8/8/8/8/4K3 w - - 0 1")
	home := mustParse(t, "4k3/8/8/8/8/8/4P3/4K3 w - - 0 1")
	assert.Equal(t, 140, Evaluate(advanced))
	assert.Equal(t, 80, Evaluate(home))

	knightRim := mustParse(t, "4k3/8/8/8/8/8/8/N3K3 w - - 0 1")
	knightCentre := mustParse(t, "4k3/8/8/8/3N4/8/8/4K3 w - - 0 1")
	assert.Greater(t, Evaluate(knightCentre), Evaluate(knightRim))
}

func TestMaterialEvaluator(t *testing.T) {
	eval, ok := Evaluators["material"]
	require.True(t, ok)

	pos := mustParse(t, "4k3/4P3/8/8/8/8/8/4K3 w - - 0 1")
	assert.Equal(t, 100, eval(pos))
	assert.Equal(t, 140, Evaluators["pst"](pos))

	cfg := DefaultConfig()
	cfg.Eval = eval
	eng := New(cfg)
	require.NoError(t, eng.SetPosition(pos))
	score, err := eng.Evaluate()
	require.NoError(t, err)
	assert.Equal(t, 100, score)
}

func TestSearchRootDepthRange(t *testing.T) {
	eng := New(DefaultConfig())
	_, err := eng.SearchRoot(0, false)
	assert.Error(t, err)
	_, err = eng.SearchRoot(MaxDepth+1, false)
	assert.Error(t, err)
}

// mirrorFEN flips the board vertically and swaps colours.
func mirrorFEN(fen string) string {
	parts := strings.Fields(fen)
	ranks := strings.Split(parts[0], "/")
	for i, j := 0, len(ranks)-1; i < j; i, j = i+1, j-1 {
		ranks[i], ranks[j] = ranks[j], ranks[i]
	}
	swap := func(s string) string {
		return strings.Map(func(r rune) rune {
			switch {
			case r >= 'a' && r <= 'z':
				return r - 'a' + 'A'
			case r >= 'A' && r <= 'Z':
				return r - 'A' + 'a'
			}
			return r
		}, s)
	}
	side := "b"
	if parts[1] == "b" {
		side = "w"
	}
	return swap(strings.Join(ranks, "/")) + " " + side + " " + swap(parts[2]) + " - 0 1"
}

func TestEvaluateSymmetry(t *testing.T) {
	for _, fen := range []string{
		"r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1",
		"r1bqkbnr/pppp1ppp/2n5/4p3/2B1P3/5N2/PPPP1PPP/RNBQK2R b KQkq - 3 3",
		"8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - - 0 1",
	} {
		pos := mustParse(t, fen)
		mirrored := mustParse(t, mirrorFEN(fen))
		assert.Equal(t, Evaluate(pos), -Evaluate(mirrored), fen)
	}
}

func TestScoreToString(t *testing.T) {
	assert.Equal(t, "0.00", ScoreToString(0))
	assert.Equal(t, "1.05", ScoreToString(105))
	assert.Equal(t, "-2.50", ScoreToString(-250))
	assert.Equal(t, "White mates in 1", ScoreToString(MateValue-1))
	assert.Equal(t, "Black mates in 2", ScoreToString(-MateValue+3))
}

func BenchmarkSearchDepth4(b *testing.B) {
	for i := 0; i < b.N; i++ {
		eng := New(DefaultConfig())
		if _, err := eng.Search(SearchLimits{Depth: 4}); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkEvaluate(b *testing.B) {
	pos := board.NewPosition()
	for i := 0; i < b.N; i++ {
		Evaluate(pos)
	}
}
