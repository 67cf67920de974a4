package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"

	"github.com/hailam/chess88/internal/board"
	"github.com/hailam/chess88/internal/engine"
	"github.com/hailam/chess88/internal/selfplay"
)

var (
	fen   = flag.String("fen", board.StartFEN, "start position")
	plies = flag.Int("plies", 200, "maximum half-moves (0 = play to the end)")
	depth = flag.Int("depth", engine.DifficultySettings[engine.Easy], "search depth per move")
	out   = flag.String("out", "", "write PGN to file instead of stdout")
	event = flag.String("event", "", "PGN Event tag")
)

func main() {
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	eng := engine.New(engine.DefaultConfig())
	game, err := selfplay.Play(ctx, eng, selfplay.Config{
		FEN:      *fen,
		Depth:    *depth,
		MaxPlies: *plies,
		Event:    *event,
	})
	if err != nil {
		log.Fatal(err)
	}
	log.Printf("%d plies, %s (%s)", len(game.Moves), game.Result, game.Reason)

	if *out == "" {
		fmt.Println(game.PGN())
		return
	}
	if err := os.WriteFile(*out, []byte(game.PGN()+"\n"), 0o644); err != nil {
		log.Fatal(err)
	}
	log.Printf("PGN written to %s", *out)
}
