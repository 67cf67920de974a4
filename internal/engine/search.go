package engine

import (
	"sync/atomic"

	"github.com/hailam/chess88/internal/board"
)

// Search constants
const (
	// MateValue is the score of being checkmated at the root, before the ply
	// bias is applied. It also bounds the root window.
	MateValue = 99999
	// MateThreshold separates mate scores from ordinary evaluations.
	MateThreshold = 50000
	// MaxDepth caps iterative deepening for infinite searches.
	MaxDepth = 64
)

// Late move reduction thresholds
const (
	lmrMinDepth   = 2
	lmrMinMoveNum = 3 // reduce from the fourth move on
)

// RootResult is the outcome of one SearchRoot call.
type RootResult struct {
	Depth     int
	Move      board.Move
	Score     int // White-positive
	Nodes     uint64
	Completed bool // false if the stop flag cut the iteration short
}

// Searcher runs alpha-beta over a single position, mutating it in place with
// apply/retract. It is not safe for concurrent use; the owner of the
// position (Engine) guarantees exclusive access.
type Searcher struct {
	pos      *board.Position
	eval     EvalFunc
	lmr      bool
	nodes    uint64
	stopFlag atomic.Bool
}

// NewSearcher creates a searcher over pos.
func NewSearcher(pos *board.Position, cfg Config) *Searcher {
	eval := cfg.Eval
	if eval == nil {
		eval = Evaluate
	}
	return &Searcher{pos: pos, eval: eval, lmr: cfg.LateMoveReduction}
}

// SetPosition points the searcher at a different position.
func (s *Searcher) SetPosition(pos *board.Position) {
	s.pos = pos
}

// Stop signals the search to stop. Safe to call from any goroutine.
func (s *Searcher) Stop() {
	s.stopFlag.Store(true)
}

// Reset clears the stop flag and node counter for a new search.
func (s *Searcher) Reset() {
	s.stopFlag.Store(false)
	s.nodes = 0
}

// IsStopped returns true if the search has been stopped.
func (s *Searcher) IsStopped() bool {
	return s.stopFlag.Load()
}

// Nodes returns the number of leaf positions evaluated since the last reset.
func (s *Searcher) Nodes() uint64 {
	return s.nodes
}

// mateScore returns the score of the side to move being mated at ply.
func mateScore(side board.Side, ply int) int {
	if side == board.White {
		return -MateValue + ply
	}
	return MateValue - ply
}

// reduces reports whether the moveNum-th move (1-based) is searched one ply
// shallower.
func (s *Searcher) reduces(m board.Move, moveNum, depth int) bool {
	return s.lmr &&
		moveNum > lmrMinMoveNum &&
		depth >= lmrMinDepth &&
		!m.IsCapture() && !m.IsPromotion() && !m.GivesCheck()
}

// AlphaBeta returns the fail-hard minimax value of the position to depth.
// Scores are White-positive: White maximizes, Black minimizes.
func (s *Searcher) AlphaBeta(alpha, beta, depth, ply int, maximizing bool) int {
	moves := s.pos.Generate()

	if moves.Len() == 0 {
		if s.pos.InCheck() {
			return mateScore(s.pos.SideToMove(), ply)
		}
		return 0
	}

	if depth == 0 || s.stopFlag.Load() {
		s.nodes++
		return s.eval(s.pos)
	}

	board.SortMoves(moves)

	for i := 0; i < moves.Len(); i++ {
		m := moves.Get(i)

		next := depth - 1
		if s.reduces(m, i+1, depth) {
			next--
		}

		s.pos.ApplyMove(m)
		score := s.AlphaBeta(alpha, beta, next, ply+1, !maximizing)
		s.pos.RetractMove(m)

		if maximizing {
			if score >= beta {
				return beta
			}
			if score > alpha {
				alpha = score
			}
		} else {
			if score <= alpha {
				return alpha
			}
			if score < beta {
				beta = score
			}
		}
	}

	if maximizing {
		return alpha
	}
	return beta
}

// SearchRoot searches every root move to depth and returns the best one for
// the side to move. A root move only replaces the current best on strict
// improvement, so ties keep the earlier (better ordered) move.
func (s *Searcher) SearchRoot(depth int) RootResult {
	s.nodes = 0
	res := RootResult{Depth: depth, Move: board.NoMove}

	us := s.pos.SideToMove()
	moves := s.pos.Generate()
	if moves.Len() == 0 {
		if s.pos.InCheck() {
			res.Score = mateScore(us, 0)
		}
		res.Completed = !s.stopFlag.Load()
		return res
	}
	board.SortMoves(moves)

	best := MateValue
	if us == board.White {
		best = -MateValue
	}

	for i := 0; i < moves.Len(); i++ {
		m := moves.Get(i)

		s.pos.ApplyMove(m)
		score := s.AlphaBeta(-MateValue, MateValue, depth-1, 1, s.pos.SideToMove() == board.White)
		s.pos.RetractMove(m)

		if (us == board.White && score > best) || (us == board.Black && score < best) {
			best = score
			res.Move = m
		}

		if s.stopFlag.Load() {
			res.Nodes = s.nodes
			return res
		}
	}

	if res.Move.IsNone() {
		res.Move = moves.Get(0)
	}
	res.Score = best
	res.Nodes = s.nodes
	res.Completed = true
	return res
}

// IsMateScore reports whether score encodes a forced mate.
func IsMateScore(score int) bool {
	return score >= MateThreshold || score <= -MateThreshold
}

// MateIn converts a mate score into full moves until mate: positive when
// White mates, negative when Black mates.
func MateIn(score int) int {
	if score > 0 {
		return (MateValue-score)/2 + 1
	}
	return -((MateValue+score)/2 + 1)
}
