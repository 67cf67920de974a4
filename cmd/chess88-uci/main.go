package main

import (
	"flag"
	"log"
	"os"
	"runtime/pprof"

	"github.com/hailam/chess88/internal/engine"
	"github.com/hailam/chess88/internal/uci"
)

var (
	cpuprofile = flag.String("cpuprofile", "", "write cpu profile to file")
	depth      = flag.Int("depth", engine.DifficultySettings[engine.Medium], "default search depth")
	workers    = flag.Int("workers", 0, "perft goroutines (0 = GOMAXPROCS)")
	noLMR      = flag.Bool("no-lmr", false, "disable late move reduction")
	evalName   = flag.String("eval", "pst", "leaf evaluation: pst or material")
)

func main() {
	flag.Parse()

	// Start CPU profiling if requested (via flag or environment variable)
	profilePath := *cpuprofile
	if profilePath == "" {
		profilePath = os.Getenv("CPUPROFILE")
	}
	if profilePath != "" {
		f, err := os.Create(profilePath)
		if err != nil {
			log.Fatal("could not create CPU profile: ", err)
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			log.Fatal("could not start CPU profile: ", err)
		}
		defer pprof.StopCPUProfile()
		log.Printf("CPU profiling enabled, writing to %s", profilePath)
	}

	cfg := engine.DefaultConfig()
	cfg.MaxDepth = *depth
	cfg.PerftWorkers = *workers
	cfg.LateMoveReduction = !*noLMR
	eval, ok := engine.Evaluators[*evalName]
	if !ok {
		log.Fatalf("unknown evaluation %q", *evalName)
	}
	cfg.Eval = eval
	eng := engine.New(cfg)

	protocol := uci.New(eng, os.Stdin, os.Stdout)
	if err := protocol.Run(); err != nil {
		log.Printf("uci: %v", err)
	}
}
