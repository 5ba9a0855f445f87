package align

import (
	"fmt"

	"plate-restorer/pkg/grid"
)

// PyramidOptions configures a coarse-to-fine pyramid search.
type PyramidOptions struct {
	Levels       int     // Pyramid depth; level 0 is full resolution
	BaseSearch   int     // Search radius at the full-resolution level
	RefineSearch int     // Search radius at every coarser level
	Metric       Metric  // Similarity measure
	EdgeCrop     float64 // Per-level edge-crop fraction
	Workers      int     // Parallel scoring goroutines; 0 means runtime.NumCPU()
	Debug        bool    // Enable per-level progress output
}

// DefaultPyramidOptions returns the pyramid configuration used by the CLI.
func DefaultPyramidOptions() PyramidOptions {
	return PyramidOptions{
		Levels:       5,
		BaseSearch:   4,
		RefineSearch: 2,
		Metric:       NCC,
		EdgeCrop:     0.10,
	}
}

// SearchPyramid recovers a displacement by searching a decimation
// pyramid from coarsest to finest level. At each level the accumulated
// estimate is re-applied to the target and refined with an exhaustive
// search, then doubled before descending, since one pixel at a halved
// resolution is two pixels at the next finer one. Small per-level radii
// therefore reach offsets far beyond what they could cover at native
// resolution, and coarse-level error is corrected rather than
// compounded.
func SearchPyramid(ref, tgt grid.Grid, opts PyramidOptions) (Result, error) {
	if err := checkPair(ref, tgt); err != nil {
		return Result{}, err
	}
	if opts.Levels < 1 {
		return Result{}, fmt.Errorf("%w: %d", ErrBadLevels, opts.Levels)
	}
	if opts.BaseSearch < 0 || opts.RefineSearch < 0 {
		return Result{}, fmt.Errorf("%w: base=%d refine=%d",
			ErrBadRadius, opts.BaseSearch, opts.RefineSearch)
	}

	// Pyramids are built independently for reference and target and
	// live only for this call.
	refs := buildPyramid(ref, opts.Levels)
	tgts := buildPyramid(tgt, opts.Levels)

	var dxTotal, dyTotal int
	var last Result

	for lvl := len(refs) - 1; lvl >= 0; lvl-- {
		est := tgts[lvl].Shift(dxTotal, dyTotal, grid.Wrap)

		radius := opts.RefineSearch
		if lvl == 0 {
			radius = opts.BaseSearch
		}

		res, err := Search(refs[lvl], est, Options{
			Radius:   radius,
			Metric:   opts.Metric,
			EdgeCrop: opts.EdgeCrop,
			Workers:  opts.Workers,
		})
		if err != nil {
			return Result{}, fmt.Errorf("pyramid level %d: %w", lvl, err)
		}

		dxTotal += res.DX
		dyTotal += res.DY
		last = res

		if opts.Debug {
			fmt.Printf("Pyramid level %d (%dx%d): step=(%d,%d) total=(%d,%d)\n",
				lvl, refs[lvl].W(), refs[lvl].H(), res.DX, res.DY, dxTotal, dyTotal)
		}

		if lvl != 0 {
			dxTotal *= 2
			dyTotal *= 2
		}
	}

	return Result{DX: dxTotal, DY: dyTotal, Score: last.Score}, nil
}

// buildPyramid returns levels of repeated 2x decimation, index 0 being
// the original grid.
func buildPyramid(g grid.Grid, levels int) []grid.Grid {
	out := make([]grid.Grid, 1, levels)
	out[0] = g
	for i := 1; i < levels; i++ {
		out = append(out, out[i-1].Downsample())
	}
	return out
}
