package engine

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/hailam/chess88/internal/board"
)

// DivideEntry is the leaf count below one root move.
type DivideEntry struct {
	Move  board.Move
	Nodes uint64
}

// Perft counts the leaf nodes of the legal move tree to depth.
func Perft(pos *board.Position, depth int) uint64 {
	if depth == 0 {
		return 1
	}

	moves := pos.Generate()
	if depth == 1 {
		return uint64(moves.Len())
	}

	var nodes uint64
	for i := 0; i < moves.Len(); i++ {
		m := moves.Get(i)
		pos.ApplyMove(m)
		nodes += Perft(pos, depth-1)
		pos.RetractMove(m)
	}
	return nodes
}

// PerftDivide counts leaves below each root move using up to workers
// goroutines. Each root move is searched on its own copy of pos, so pos
// itself is never mutated. Entries are returned in generation order.
func PerftDivide(ctx context.Context, pos *board.Position, depth, workers int) ([]DivideEntry, error) {
	if depth < 1 {
		return nil, nil
	}

	moves := pos.Generate()
	entries := make([]DivideEntry, moves.Len())

	g, ctx := errgroup.WithContext(ctx)
	if workers > 0 {
		g.SetLimit(workers)
	}

	for i := 0; i < moves.Len(); i++ {
		i := i
		m := moves.Get(i)
		child := pos.Copy()
		child.ApplyMove(m)

		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			entries[i] = DivideEntry{Move: m, Nodes: Perft(child, depth-1)}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return entries, nil
}

// SumDivide totals the leaf counts of a divide.
func SumDivide(entries []DivideEntry) uint64 {
	var total uint64
	for _, e := range entries {
		total += e.Nodes
	}
	return total
}
