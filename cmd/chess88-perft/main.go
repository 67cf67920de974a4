package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"runtime"
	"time"

	"github.com/hailam/chess88/internal/board"
	"github.com/hailam/chess88/internal/engine"
)

var (
	fen     = flag.String("fen", board.StartFEN, "position to count from")
	depth   = flag.Int("depth", 5, "perft depth")
	workers = flag.Int("workers", runtime.GOMAXPROCS(0), "parallel root moves")
	divide  = flag.Bool("divide", true, "print per-move counts")
)

func main() {
	flag.Parse()

	if *depth < 1 {
		log.Fatalf("depth must be at least 1, got %d", *depth)
	}

	pos, err := board.ParseFEN(*fen)
	if err != nil {
		log.Fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	start := time.Now()
	entries, err := engine.PerftDivide(ctx, pos, *depth, *workers)
	if err != nil {
		log.Fatalf("perft interrupted: %v", err)
	}
	elapsed := time.Since(start)

	if *divide {
		for _, e := range entries {
			fmt.Printf("%s: %d\n", e.Move, e.Nodes)
		}
		fmt.Println()
	}

	nodes := engine.SumDivide(entries)
	fmt.Printf("Nodes: %d\n", nodes)
	fmt.Printf("Time: %v\n", elapsed)
	if elapsed > 0 {
		fmt.Printf("NPS: %.0f\n", float64(nodes)/elapsed.Seconds())
	}
}
