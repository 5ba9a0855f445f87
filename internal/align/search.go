// Package align recovers the integer pixel displacement between two
// roughly registered intensity grids. Two strategies are exposed: an
// exhaustive search over a bounded shift window, and a coarse-to-fine
// pyramid search built on the exhaustive search per level.
package align

import (
	"fmt"
	"runtime"
	"sync"

	"plate-restorer/pkg/grid"
)

// Options configures an exhaustive search.
type Options struct {
	Radius   int     // Half-width of the square search window, candidates in [-Radius, Radius]²
	Metric   Metric  // Similarity measure
	EdgeCrop float64 // Fraction of each axis trimmed from scoring (capped at 1/4 per side)
	Workers  int     // Parallel scoring goroutines; 0 means runtime.NumCPU()
	Debug    bool    // Enable progress output
}

// DefaultOptions returns the search configuration used by the CLI.
func DefaultOptions() Options {
	return Options{
		Radius:   15,
		Metric:   NCC,
		EdgeCrop: 0.10,
	}
}

// Result holds the recovered displacement and its score. Applying the
// displacement (DX columns right, DY rows down) to the target best
// aligns it onto the reference under the chosen metric.
type Result struct {
	DX, DY int
	Score  float64
}

func (r Result) String() string {
	return fmt.Sprintf("(dx=%d, dy=%d, score=%.4f)", r.DX, r.DY, r.Score)
}

// candidate pairs a score with its canonical enumeration index so the
// parallel reduction keeps the same tie-break as the sequential loop:
// equal scores resolve to the first candidate in (dy outer, dx inner)
// order starting at (-R, -R).
type candidate struct {
	score float64
	index int
}

// Search exhaustively scores every integer shift in [-R, R]² and
// returns the best one. The result is globally optimal over the window
// under the chosen metric; the only approximations are the edge crop
// and the wrap-around shift model.
func Search(ref, tgt grid.Grid, opts Options) (Result, error) {
	if err := checkPair(ref, tgt); err != nil {
		return Result{}, err
	}
	if opts.Radius < 0 {
		return Result{}, fmt.Errorf("%w: %d", ErrBadRadius, opts.Radius)
	}

	mx, my := ref.CropMargin(opts.EdgeCrop)
	refCrop := ref.Crop(mx, my)

	side := 2*opts.Radius + 1
	total := side * side

	score := func(i int) candidate {
		dy := -opts.Radius + i/side
		dx := -opts.Radius + i%side
		shifted := tgt.Shift(dx, dy, grid.Wrap).Crop(mx, my)
		return candidate{score: opts.Metric.score(refCrop, shifted), index: i}
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > total {
		workers = total
	}

	var best candidate
	if workers <= 1 {
		best = candidate{score: opts.Metric.worst(), index: 0}
		for i := 0; i < total; i++ {
			c := score(i)
			if opts.Metric.Better(c.score, best.score) {
				best = c
			}
		}
	} else {
		best = searchParallel(score, total, workers, opts.Metric)
	}

	res := Result{
		DX:    -opts.Radius + best.index%side,
		DY:    -opts.Radius + best.index/side,
		Score: best.score,
	}
	if opts.Debug {
		fmt.Printf("Search: radius=%d metric=%s crop=(%d,%d) -> %s\n",
			opts.Radius, opts.Metric, mx, my, res)
	}
	return res, nil
}

// searchParallel fans candidate scoring out over contiguous index
// chunks and reduces to the best (score, index) pair. Ties on score go
// to the lower index, so the outcome is bit-identical to the
// sequential scan.
func searchParallel(score func(int) candidate, total, workers int, metric Metric) candidate {
	chunk := (total + workers - 1) / workers

	var mu sync.Mutex
	best := candidate{score: metric.worst(), index: total}

	var wg sync.WaitGroup
	sem := make(chan struct{}, workers)

	for lo := 0; lo < total; lo += chunk {
		hi := lo + chunk
		if hi > total {
			hi = total
		}

		wg.Add(1)
		sem <- struct{}{}

		go func(lo, hi int) {
			defer wg.Done()
			defer func() { <-sem }()

			local := candidate{score: metric.worst(), index: total}
			for i := lo; i < hi; i++ {
				c := score(i)
				if metric.Better(c.score, local.score) {
					local = c
				}
			}

			mu.Lock()
			if metric.Better(local.score, best.score) ||
				(local.score == best.score && local.index < best.index) {
				best = local
			}
			mu.Unlock()
		}(lo, hi)
	}

	wg.Wait()
	return best
}

// checkPair rejects grids the search cannot compare.
func checkPair(ref, tgt grid.Grid) error {
	if ref.Empty() || tgt.Empty() {
		return ErrEmptyGrid
	}
	if !ref.SameShape(tgt) {
		return fmt.Errorf("%w: reference %dx%d, target %dx%d",
			ErrShapeMismatch, ref.W(), ref.H(), tgt.W(), tgt.H())
	}
	return nil
}
