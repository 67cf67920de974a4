// Package uci implements a line-oriented command loop over an engine,
// following the Universal Chess Interface conventions.
package uci

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/hailam/chess88/internal/board"
	"github.com/hailam/chess88/internal/diagram"
	"github.com/hailam/chess88/internal/engine"
)

// defaultPerftDepth is used when perft is given no depth.
const defaultPerftDepth = 5

// lockedWriter serialises output from the command loop and the search
// goroutine.
type lockedWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (lw *lockedWriter) printf(format string, args ...any) {
	lw.mu.Lock()
	defer lw.mu.Unlock()
	fmt.Fprintf(lw.w, format, args...)
}

func (lw *lockedWriter) println(s string) {
	lw.mu.Lock()
	defer lw.mu.Unlock()
	io.WriteString(lw.w, s+"\n")
}

// UCI implements the command loop.
type UCI struct {
	engine *engine.Engine
	in     io.Reader
	out    *lockedWriter

	// Side to move of the searched position, for score orientation.
	searchSide     board.Side
	searchInfinite bool
	searchDone     chan struct{}
}

// New creates a command loop reading commands from r and writing responses
// to w.
func New(eng *engine.Engine, r io.Reader, w io.Writer) *UCI {
	u := &UCI{
		engine: eng,
		in:     r,
		out:    &lockedWriter{w: w},
	}
	eng.OnInfo = u.sendInfo
	return u
}

// Run processes commands until quit or end of input. At end of input a
// running depth-limited search is allowed to finish and an infinite one is
// stopped; quit stops either.
func (u *UCI) Run() error {
	scanner := bufio.NewScanner(u.in)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		parts := strings.Fields(line)
		cmd := parts[0]
		args := parts[1:]

		switch cmd {
		case "uci":
			u.handleUCI()
		case "isready":
			u.out.println("readyok")
		case "ucinewgame":
			u.handleNewGame()
		case "position":
			u.handlePosition(args)
		case "go":
			u.handleGo(args)
		case "stop":
			u.handleStop()
		case "quit":
			u.handleStop()
			return nil
		case "setoption":
			u.handleSetOption(args)
		case "play":
			if u.handlePlay(args, scanner) {
				u.handleStop()
				return nil
			}
		case "perft":
			u.handlePerft(args)
		case "d", "show":
			u.handleShow()
		case "eval":
			u.handleEval()
		case "diagram":
			u.handleDiagram(args)
		default:
			u.infoString("Unknown command: %s", cmd)
		}
	}

	// Nothing can send stop after end of input.
	if u.searchInfinite {
		u.engine.Stop()
	}
	u.waitSearch()
	return errors.Wrap(scanner.Err(), "read commands")
}

func (u *UCI) infoString(format string, args ...any) {
	u.out.printf("info string "+format+"\n", args...)
}

// handleUCI responds to the "uci" command.
func (u *UCI) handleUCI() {
	u.out.println("id name chess88")
	u.out.println("id author chess88 authors")
	u.out.println("")
	u.out.println("option name Difficulty type combo default medium var easy var medium var hard")
	u.out.println("uciok")
}

// handleNewGame resets the engine to the starting position.
func (u *UCI) handleNewGame() {
	if err := u.engine.SetPosition(board.NewPosition()); err != nil {
		u.infoString("%v", err)
	}
}

// handlePosition parses and sets up a position.
// Formats:
//   - position startpos
//   - position startpos moves e2e4 e7e5
//   - position fen <fen>
//   - position fen <fen> moves e2e4
func (u *UCI) handlePosition(args []string) {
	if err := u.setPosition(args); err != nil {
		u.infoString("%v", err)
	}
}

func (u *UCI) setPosition(args []string) error {
	if len(args) == 0 {
		return errors.New("position: missing startpos or fen")
	}

	movesAt := len(args)
	for i, arg := range args {
		if arg == "moves" {
			movesAt = i
			break
		}
	}

	var pos *board.Position
	switch args[0] {
	case "startpos":
		pos = board.NewPosition()
	case "fen":
		var err error
		pos, err = board.ParseFEN(strings.Join(args[1:movesAt], " "))
		if err != nil {
			return errors.Wrap(err, "invalid FEN")
		}
	default:
		return errors.Errorf("position: unknown keyword %q", args[0])
	}

	if movesAt < len(args) {
		for _, s := range args[movesAt+1:] {
			m, err := board.ParseLegalMove(s, pos)
			if err != nil {
				return errors.Wrapf(err, "invalid move %s", s)
			}
			pos.ApplyMove(m)
		}
	}
	return u.engine.SetPosition(pos)
}

// handleSetOption processes "setoption name <name> value <value>".
func (u *UCI) handleSetOption(args []string) {
	var name, value []string
	var target *[]string
	for _, arg := range args {
		switch arg {
		case "name":
			target = &name
		case "value":
			target = &value
		default:
			if target != nil {
				*target = append(*target, arg)
			}
		}
	}

	switch strings.ToLower(strings.Join(name, " ")) {
	case "difficulty":
		d, ok := difficulties[strings.ToLower(strings.Join(value, " "))]
		if !ok {
			u.infoString("unknown difficulty %q", strings.Join(value, " "))
			return
		}
		if err := u.engine.SetDifficulty(d); err != nil {
			u.infoString("%v", err)
		}
	default:
		u.infoString("unknown option %q", strings.Join(name, " "))
	}
}

var difficulties = map[string]engine.Difficulty{
	"easy":   engine.Easy,
	"medium": engine.Medium,
	"hard":   engine.Hard,
}

// GoOptions holds parsed "go" command options.
type GoOptions struct {
	Depth    int
	Infinite bool
	Perft    int
}

// parseGoOptions parses "go" command arguments. Clock parameters are
// accepted and ignored.
func parseGoOptions(args []string) (GoOptions, error) {
	opts := GoOptions{}

	intArg := func(i int) (int, error) {
		if i+1 >= len(args) {
			return 0, errors.Errorf("go: %s needs a value", args[i])
		}
		n, err := strconv.Atoi(args[i+1])
		if err != nil {
			return 0, errors.Wrapf(err, "go: bad %s", args[i])
		}
		return n, nil
	}

	for i := 0; i < len(args); i++ {
		var err error
		switch args[i] {
		case "depth":
			opts.Depth, err = intArg(i)
			i++
		case "perft":
			opts.Perft, err = intArg(i)
			if err == nil && opts.Perft < 1 {
				err = errors.Errorf("go: perft depth must be at least 1, got %d", opts.Perft)
			}
			i++
		case "infinite":
			opts.Infinite = true
		case "wtime", "btime", "winc", "binc", "movestogo", "movetime", "nodes":
			i++
		}
		if err != nil {
			return opts, err
		}
	}

	if opts.Depth > engine.MaxDepth {
		opts.Depth = engine.MaxDepth
	}
	return opts, nil
}

// handleGo starts a search with the given parameters.
func (u *UCI) handleGo(args []string) {
	opts, err := parseGoOptions(args)
	if err != nil {
		u.infoString("%v", err)
		return
	}
	if opts.Perft > 0 {
		u.runPerft(opts.Perft)
		return
	}

	pos, err := u.engine.Position()
	if err != nil {
		u.infoString("%v", err)
		return
	}
	u.searchSide = pos.SideToMove()
	u.searchInfinite = opts.Infinite

	limits := engine.SearchLimits{Depth: opts.Depth, Infinite: opts.Infinite}
	if err := u.engine.Go(limits); err != nil {
		u.infoString("%v", err)
		return
	}

	done := make(chan struct{})
	u.searchDone = done
	go func() {
		defer close(done)
		res := u.engine.Wait()
		u.out.printf("bestmove %s\n", res.BestMove)
	}()
}

// uciScore formats a White-positive score from the searched side's view.
func (u *UCI) uciScore(score int) string {
	if engine.IsMateScore(score) {
		n := engine.MateIn(score)
		if u.searchSide == board.Black {
			n = -n
		}
		return fmt.Sprintf("mate %d", n)
	}
	if u.searchSide == board.Black {
		score = -score
	}
	return fmt.Sprintf("cp %d", score)
}

// sendInfo outputs search info in UCI format.
func (u *UCI) sendInfo(info engine.SearchInfo) {
	var parts []string

	parts = append(parts, fmt.Sprintf("depth %d", info.Depth))
	parts = append(parts, "score "+u.uciScore(info.Score))
	parts = append(parts, fmt.Sprintf("nodes %d", info.Nodes))
	parts = append(parts, fmt.Sprintf("time %d", info.Time.Milliseconds()))

	if info.Time > 0 {
		nps := uint64(float64(info.Nodes) / info.Time.Seconds())
		parts = append(parts, fmt.Sprintf("nps %d", nps))
	}

	if len(info.PV) > 0 {
		pv := make([]string, len(info.PV))
		for i, m := range info.PV {
			pv[i] = m.String()
		}
		parts = append(parts, "pv "+strings.Join(pv, " "))
	}

	u.out.printf("info %s\n", strings.Join(parts, " "))
}

// handleStop stops the current search and waits for its bestmove.
func (u *UCI) handleStop() {
	u.engine.Stop()
	u.waitSearch()
}

func (u *UCI) waitSearch() {
	if u.searchDone != nil {
		<-u.searchDone
		u.searchDone = nil
	}
	u.searchInfinite = false
}

// handlePlay alternates engine moves with replies read from the input:
//
//	play [depth]
//
// Replies are coordinate moves or SAN. "stop" leaves play mode; "quit"
// leaves play mode and reports that the loop should end.
func (u *UCI) handlePlay(args []string, scanner *bufio.Scanner) (quit bool) {
	depth := u.engine.Config().MaxDepth
	if len(args) > 0 {
		n, err := strconv.Atoi(args[0])
		if err != nil || n < 1 || n > engine.MaxDepth {
			u.infoString("play: bad depth %q", args[0])
			return false
		}
		depth = n
	}

	for {
		pos, err := u.engine.Position()
		if err != nil {
			u.infoString("%v", err)
			return false
		}
		if u.gameOver(pos) {
			return false
		}
		u.searchSide = pos.SideToMove()

		res, err := u.engine.Search(engine.SearchLimits{Depth: depth, ApplyBest: true})
		if err != nil {
			u.infoString("%v", err)
			return false
		}
		u.out.printf("bestmove %s\n", res.BestMove)

		if pos, err = u.engine.Position(); err != nil {
			u.infoString("%v", err)
			return false
		}
		u.out.println(pos.String())
		if u.gameOver(pos) {
			return false
		}

		for {
			if !scanner.Scan() {
				return false
			}
			reply := strings.TrimSpace(scanner.Text())
			switch reply {
			case "":
				continue
			case "stop":
				return false
			case "quit":
				return true
			}

			m, err := board.ParseLegalMove(reply, pos)
			if err != nil {
				if m, err = board.ParseSAN(reply, pos); err != nil {
					u.infoString("illegal reply %s", reply)
					continue
				}
			}
			if _, err := u.engine.ApplyMove(m.String()); err != nil {
				u.infoString("%v", err)
				continue
			}
			break
		}
	}
}

// gameOver reports a finished game.
func (u *UCI) gameOver(pos *board.Position) bool {
	switch {
	case pos.IsCheckmate():
		u.infoString("game over: %s is checkmated", pos.SideToMove())
	case pos.IsStalemate():
		u.infoString("game over: stalemate")
	case pos.IsFiftyMoveDraw():
		u.infoString("game over: fifty-move rule")
	default:
		return false
	}
	return true
}

// handlePerft runs a perft divide.
func (u *UCI) handlePerft(args []string) {
	depth := defaultPerftDepth
	if len(args) > 0 {
		n, err := strconv.Atoi(args[0])
		if err != nil || n < 1 {
			u.infoString("perft: bad depth %q", args[0])
			return
		}
		depth = n
	}
	u.runPerft(depth)
}

func (u *UCI) runPerft(depth int) {
	start := time.Now()
	entries, err := u.engine.PerftDivide(context.Background(), depth)
	if err != nil {
		u.infoString("%v", err)
		return
	}
	elapsed := time.Since(start)

	for _, e := range entries {
		u.out.printf("%s: %d\n", e.Move, e.Nodes)
	}
	nodes := engine.SumDivide(entries)
	u.out.println("")
	u.out.printf("Nodes: %d\n", nodes)
	u.out.printf("Time: %v\n", elapsed)
	if elapsed > 0 {
		u.out.printf("NPS: %.0f\n", float64(nodes)/elapsed.Seconds())
	}
}

// handleShow prints the board.
func (u *UCI) handleShow() {
	pos, err := u.engine.Position()
	if err != nil {
		u.infoString("%v", err)
		return
	}
	u.out.println(pos.String())
	u.out.printf("Fen: %s\n", pos.FEN())
	u.out.printf("Key: %016X\n", pos.Key())
}

// handleEval prints the static evaluation.
func (u *UCI) handleEval() {
	score, err := u.engine.Evaluate()
	if err != nil {
		u.infoString("%v", err)
		return
	}
	u.out.printf("Evaluation: %s (%d cp, White's view)\n", engine.ScoreToString(score), score)
}

// handleDiagram writes a PNG of the current position.
func (u *UCI) handleDiagram(args []string) {
	if len(args) != 1 {
		u.infoString("usage: diagram <file.png>")
		return
	}
	pos, err := u.engine.Position()
	if err != nil {
		u.infoString("%v", err)
		return
	}

	opts := diagram.DefaultOptions()
	opts.Flip = pos.SideToMove() == board.Black
	if err := diagram.SaveFile(args[0], pos, opts); err != nil {
		u.infoString("diagram: %v", err)
		return
	}
	u.infoString("diagram written to %s", args[0])
}
