package engine

import (
	"context"
	"runtime"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/hailam/chess88/internal/board"
)

// ErrBusy is returned by calls that need the position while a search owns it.
var ErrBusy = errors.New("engine: search in progress")

// Config holds engine settings.
type Config struct {
	MaxDepth          int      // Depth used when a search gives no limit
	LateMoveReduction bool     // Reduce late quiet moves by one ply
	Eval              EvalFunc // Leaf evaluation, Evaluate if nil
	PerftWorkers      int      // Parallel perft goroutines, 0 = GOMAXPROCS
}

// DefaultConfig returns the standard engine configuration.
func DefaultConfig() Config {
	return Config{
		MaxDepth:          DifficultySettings[Medium],
		LateMoveReduction: true,
		Eval:              Evaluate,
		PerftWorkers:      runtime.GOMAXPROCS(0),
	}
}

// Difficulty represents the AI difficulty level.
type Difficulty int

const (
	Easy   Difficulty = iota // 2 ply
	Medium                   // 4 ply
	Hard                     // 6 ply
)

// DifficultySettings maps difficulty to search depth.
var DifficultySettings = map[Difficulty]int{
	Easy:   2,
	Medium: 4,
	Hard:   6,
}

// SearchInfo is reported after every completed iteration.
type SearchInfo struct {
	Depth int
	Score int // White-positive
	Nodes uint64
	Time  time.Duration
	PV    []board.Move
}

// SearchLimits specifies constraints on the search.
type SearchLimits struct {
	Depth     int  // Maximum depth (0 = Config.MaxDepth)
	Infinite  bool // Search until stopped
	ApplyBest bool // Play the best move on the engine's position when done
}

// SearchResult is the outcome of a search.
type SearchResult struct {
	BestMove board.Move
	Score    int // White-positive
	Depth    int // Last completed depth
	Nodes    uint64
}

// Engine owns a position and runs at most one search on it at a time.
//
// The mutex is held by whoever is mutating the position: a controller call
// for its duration, or the search goroutine from Go until it finishes.
// Controller calls never wait for a search; they fail with ErrBusy.
type Engine struct {
	mu       sync.Mutex
	pos      *board.Position
	cfg      Config
	searcher *Searcher

	stateMu sync.Mutex // guards done and result
	done    chan struct{}
	result  SearchResult

	// OnInfo, if set, is called from the search goroutine after each depth.
	OnInfo func(SearchInfo)
}

// New creates an engine set to the starting position.
func New(cfg Config) *Engine {
	if cfg.MaxDepth <= 0 {
		cfg.MaxDepth = DifficultySettings[Medium]
	}
	if cfg.Eval == nil {
		cfg.Eval = Evaluate
	}
	if cfg.PerftWorkers <= 0 {
		cfg.PerftWorkers = runtime.GOMAXPROCS(0)
	}
	pos := board.NewPosition()
	return &Engine{
		pos:      pos,
		cfg:      cfg,
		searcher: NewSearcher(pos, cfg),
	}
}

// Config returns the engine configuration.
func (e *Engine) Config() Config {
	return e.cfg
}

// SetDifficulty sets the default search depth from a difficulty level.
func (e *Engine) SetDifficulty(d Difficulty) error {
	depth, ok := DifficultySettings[d]
	if !ok {
		return errors.Errorf("engine: unknown difficulty %d", d)
	}
	if !e.mu.TryLock() {
		return ErrBusy
	}
	defer e.mu.Unlock()
	e.cfg.MaxDepth = depth
	return nil
}

// Busy reports whether a search currently owns the position.
func (e *Engine) Busy() bool {
	if !e.mu.TryLock() {
		return true
	}
	e.mu.Unlock()
	return false
}

// SetPosition replaces the engine's position with a copy of pos.
func (e *Engine) SetPosition(pos *board.Position) error {
	if !e.mu.TryLock() {
		return ErrBusy
	}
	defer e.mu.Unlock()
	e.pos = pos.Copy()
	e.searcher.SetPosition(e.pos)
	return nil
}

// ApplyMove plays a move given in coordinate notation. The move must be legal.
func (e *Engine) ApplyMove(s string) (board.Move, error) {
	if !e.mu.TryLock() {
		return board.NoMove, ErrBusy
	}
	defer e.mu.Unlock()

	m, err := board.ParseLegalMove(s, e.pos)
	if err != nil {
		return board.NoMove, err
	}
	e.pos.ApplyMove(m)
	return m, nil
}

// Position returns a copy of the engine's position.
func (e *Engine) Position() (*board.Position, error) {
	if !e.mu.TryLock() {
		return nil, ErrBusy
	}
	defer e.mu.Unlock()
	return e.pos.Copy(), nil
}

// Evaluate returns the static evaluation of the engine's position.
func (e *Engine) Evaluate() (int, error) {
	if !e.mu.TryLock() {
		return 0, ErrBusy
	}
	defer e.mu.Unlock()
	return e.cfg.Eval(e.pos), nil
}

// Go starts a search on a new goroutine and returns immediately.
// Use Stop to end it early and Wait for the result.
func (e *Engine) Go(limits SearchLimits) error {
	if !e.mu.TryLock() {
		return ErrBusy
	}

	done := make(chan struct{})
	e.stateMu.Lock()
	e.done = done
	e.stateMu.Unlock()

	e.searcher.Reset()
	go func() {
		res := e.iterate(limits)

		e.stateMu.Lock()
		e.result = res
		e.stateMu.Unlock()

		e.mu.Unlock()
		close(done)
	}()
	return nil
}

// Stop asks a running search to finish. Safe to call from any goroutine and
// a no-op when nothing is searching.
func (e *Engine) Stop() {
	e.searcher.Stop()
}

// Wait blocks until the most recently started search finishes and returns
// its result.
func (e *Engine) Wait() SearchResult {
	e.stateMu.Lock()
	done := e.done
	e.stateMu.Unlock()

	if done != nil {
		<-done
	}

	e.stateMu.Lock()
	defer e.stateMu.Unlock()
	return e.result
}

// Search runs a search to completion on the caller's goroutine.
func (e *Engine) Search(limits SearchLimits) (SearchResult, error) {
	if err := e.Go(limits); err != nil {
		return SearchResult{}, err
	}
	return e.Wait(), nil
}

// SearchRoot searches the engine's position to exactly depth and optionally
// plays the best move.
func (e *Engine) SearchRoot(depth int, applyBest bool) (RootResult, error) {
	if depth < 1 || depth > MaxDepth {
		return RootResult{}, errors.Errorf("engine: depth %d out of range 1..%d", depth, MaxDepth)
	}
	if !e.mu.TryLock() {
		return RootResult{}, ErrBusy
	}
	defer e.mu.Unlock()

	e.searcher.Reset()
	res := e.searcher.SearchRoot(depth)
	if applyBest && !res.Move.IsNone() {
		e.pos.ApplyMove(res.Move)
	}
	return res, nil
}

// iterate runs iterative deepening. The caller holds e.mu.
func (e *Engine) iterate(limits SearchLimits) SearchResult {
	maxDepth := e.cfg.MaxDepth
	if limits.Depth > 0 {
		maxDepth = limits.Depth
	}
	if limits.Infinite {
		maxDepth = MaxDepth
	}

	start := time.Now()
	result := SearchResult{BestMove: board.NoMove}

	for depth := 1; depth <= maxDepth; depth++ {
		res := e.searcher.SearchRoot(depth)
		result.Nodes += res.Nodes
		if !res.Completed {
			break
		}

		result.BestMove = res.Move
		result.Score = res.Score
		result.Depth = depth

		if e.OnInfo != nil {
			var pv []board.Move
			if !res.Move.IsNone() {
				pv = []board.Move{res.Move}
			}
			e.OnInfo(SearchInfo{
				Depth: depth,
				Score: res.Score,
				Nodes: res.Nodes,
				Time:  time.Since(start),
				PV:    pv,
			})
		}

		if res.Move.IsNone() || e.searcher.IsStopped() {
			break
		}
		// A forced mate will not change with more depth.
		if !limits.Infinite && IsMateScore(res.Score) {
			break
		}
	}

	// Stopped before depth 1 completed: fall back to the best ordered move.
	if result.BestMove.IsNone() {
		moves := e.pos.Generate()
		if moves.Len() > 0 {
			board.SortMoves(moves)
			result.BestMove = moves.Get(0)
		}
	}

	if limits.ApplyBest && !result.BestMove.IsNone() {
		e.pos.ApplyMove(result.BestMove)
	}
	return result
}

// Perft counts leaf nodes to depth from the engine's position, spreading
// root moves over Config.PerftWorkers goroutines.
func (e *Engine) Perft(ctx context.Context, depth int) (uint64, error) {
	entries, err := e.PerftDivide(ctx, depth)
	if err != nil {
		return 0, err
	}
	return SumDivide(entries), nil
}

// PerftDivide returns per-root-move leaf counts from the engine's position.
func (e *Engine) PerftDivide(ctx context.Context, depth int) ([]DivideEntry, error) {
	if !e.mu.TryLock() {
		return nil, ErrBusy
	}
	defer e.mu.Unlock()
	return PerftDivide(ctx, e.pos, depth, e.cfg.PerftWorkers)
}

// ScoreToString converts a White-positive score to a human-readable string.
func ScoreToString(score int) string {
	if IsMateScore(score) {
		n := MateIn(score)
		if n > 0 {
			return "White mates in " + itoa(n)
		}
		return "Black mates in " + itoa(-n)
	}

	sign := ""
	if score < 0 {
		sign = "-"
		score = -score
	}
	pawns := score / 100
	centipawns := score % 100
	pad := ""
	if centipawns < 10 {
		pad = "0"
	}
	return sign + itoa(pawns) + "." + pad + itoa(centipawns)
}

// Simple integer to string (avoid fmt import)
func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	if n < 0 {
		return "-" + itoa(-n)
	}
	s := ""
	for n > 0 {
		s = string(rune('0'+n%10)) + s
		n /= 10
	}
	return s
}
