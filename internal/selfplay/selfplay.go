// Package selfplay plays the engine against itself and records the game as
// PGN. Every move is replayed in an independent rules implementation and
// the game stops with an error if the two disagree.
package selfplay

import (
	"context"
	"strings"
	"time"

	"github.com/notnil/chess"
	"github.com/pkg/errors"

	"github.com/hailam/chess88/internal/board"
	"github.com/hailam/chess88/internal/engine"
)

// Result strings
const (
	WhiteWins  = "1-0"
	BlackWins  = "0-1"
	Draw       = "1/2-1/2"
	Unfinished = "*"
)

// Config controls a self-play game.
type Config struct {
	FEN      string // Start position, StartFEN if empty
	Depth    int    // Search depth per move
	MaxPlies int    // Stop after this many half-moves, 0 for no limit
	Event    string // PGN Event tag
}

// Game is a finished or interrupted self-play game.
type Game struct {
	Moves  []board.Move
	SAN    []string
	Result string
	Reason string
	Final  *board.Position

	record *chess.Game
}

// PGN returns the game in PGN.
func (g *Game) PGN() string {
	return g.record.String()
}

// repetitions counts how often key occurs in history.
func repetitions(history []uint64, key uint64) int {
	n := 0
	for _, k := range history {
		if k == key {
			n++
		}
	}
	return n
}

// Play runs a game on eng from cfg.FEN. eng's position is replaced.
func Play(ctx context.Context, eng *engine.Engine, cfg Config) (*Game, error) {
	fen := cfg.FEN
	if fen == "" {
		fen = board.StartFEN
	}
	pos, err := board.ParseFEN(fen)
	if err != nil {
		return nil, err
	}
	if err := eng.SetPosition(pos); err != nil {
		return nil, err
	}

	record, err := newRecord(fen, cfg.Event)
	if err != nil {
		return nil, err
	}

	depth := cfg.Depth
	if depth < 1 {
		depth = eng.Config().MaxDepth
	}

	g := &Game{record: record, Result: Unfinished}
	history := []uint64{pos.Key()}

	for ply := 0; cfg.MaxPlies == 0 || ply < cfg.MaxPlies; ply++ {
		if err := ctx.Err(); err != nil {
			g.Reason = "interrupted"
			break
		}

		legal := pos.Generate()
		if want := len(record.ValidMoves()); legal.Len() != want {
			return g, errors.Errorf("move count mismatch at %s: %d, reference %d", pos.FEN(), legal.Len(), want)
		}

		if legal.Len() == 0 {
			g.finishNoMoves(pos)
			break
		}

		res, err := eng.SearchRoot(depth, true)
		if err != nil {
			return g, err
		}
		m := res.Move
		if m.IsNone() {
			return g, errors.Errorf("no move found at %s", pos.FEN())
		}
		san := pos.SAN(m)

		if err := record.MoveStr(m.String()); err != nil {
			return g, errors.Wrapf(err, "reference rejected %s at %s", m, pos.FEN())
		}
		g.SAN = append(g.SAN, san)
		pos.ApplyMove(m)
		g.Moves = append(g.Moves, m)

		if got, want := placement(pos.FEN()), placement(record.Position().String()); got != want {
			return g, errors.Errorf("position mismatch after %s: %s, reference %s", m, got, want)
		}

		key := pos.Key()
		history = append(history, key)

		if repetitions(history, key) >= 3 {
			if err := g.finishDraw(chess.ThreefoldRepetition, "threefold repetition"); err != nil {
				return g, err
			}
			break
		}
		if pos.IsFiftyMoveDraw() && pos.HasLegalMoves() {
			if err := g.finishDraw(chess.FiftyMoveRule, "fifty-move rule"); err != nil {
				return g, err
			}
			break
		}
	}

	if g.Reason == "" {
		if pos.HasLegalMoves() {
			g.Reason = "ply limit"
		} else {
			g.finishNoMoves(pos)
		}
	}

	g.Final = pos
	record.AddTagPair("Result", g.Result)
	record.AddTagPair("Termination", g.Reason)
	return g, nil
}

func newRecord(fen, event string) (*chess.Game, error) {
	opts := []func(*chess.Game){chess.UseNotation(chess.UCINotation{})}
	if fen != board.StartFEN {
		opt, err := chess.FEN(fen)
		if err != nil {
			return nil, errors.Wrap(err, "reference rejected start position")
		}
		opts = append(opts, opt)
	}

	record := chess.NewGame(opts...)
	if event == "" {
		event = "chess88 self-play"
	}
	record.AddTagPair("Event", event)
	record.AddTagPair("Date", time.Now().Format("2006.01.02"))
	record.AddTagPair("White", "chess88")
	record.AddTagPair("Black", "chess88")
	if fen != board.StartFEN {
		record.AddTagPair("SetUp", "1")
		record.AddTagPair("FEN", fen)
	}
	return record, nil
}

func (g *Game) finishNoMoves(pos *board.Position) {
	switch {
	case pos.IsStalemate():
		g.Result, g.Reason = Draw, "stalemate"
	case pos.IsCheckmate() && pos.SideToMove() == board.White:
		g.Result, g.Reason = BlackWins, "checkmate"
	case pos.IsCheckmate():
		g.Result, g.Reason = WhiteWins, "checkmate"
	}
}

// finishDraw claims a draw in the reference game and records it. A claim the
// reference rejects leaves the game unfinished.
func (g *Game) finishDraw(method chess.Method, reason string) error {
	if err := g.record.Draw(method); err != nil {
		return errors.Wrapf(err, "reference rejected %s claim", reason)
	}
	g.Result, g.Reason = Draw, reason
	return nil
}

// placement returns the board, side and castling fields of a FEN.
func placement(fen string) string {
	fields := strings.Fields(fen)
	if len(fields) > 3 {
		fields = fields[:3]
	}
	return strings.Join(fields, " ")
}
