package align

import (
	"fmt"
	"math"
	"strings"

	"gonum.org/v1/gonum/floats"

	"plate-restorer/pkg/grid"
)

// epsStd guards the NCC normalization against zero-variance grids, so a
// solid-color input still produces a finite score.
const epsStd = 1e-8

// Metric selects the similarity measure used to score candidate shifts.
type Metric int

const (
	// NCC is normalized cross-correlation. Higher scores are better.
	NCC Metric = iota
	// SSD is the sum of squared differences. Lower scores are better,
	// and the score is sensitive to absolute intensity scale.
	SSD
)

func (m Metric) String() string {
	switch m {
	case NCC:
		return "ncc"
	case SSD:
		return "ssd"
	default:
		return "unknown"
	}
}

// ParseMetric maps a metric name to a Metric. Names are matched
// case-insensitively; anything outside {ssd, ncc} is rejected.
func ParseMetric(name string) (Metric, error) {
	switch strings.ToLower(name) {
	case "ncc":
		return NCC, nil
	case "ssd":
		return SSD, nil
	default:
		return NCC, fmt.Errorf("%w: %q", ErrUnknownMetric, name)
	}
}

// Better reports whether score a beats score b under this metric's
// comparison direction. Equal scores do not count as better, which
// keeps the first-seen candidate on ties.
func (m Metric) Better(a, b float64) bool {
	if m == SSD {
		return a < b
	}
	return a > b
}

// worst returns the seed value any real score improves on.
func (m Metric) worst() float64 {
	if m == SSD {
		return math.Inf(1)
	}
	return math.Inf(-1)
}

// score evaluates two equally-shaped grids. Shape agreement is the
// caller's responsibility; Search establishes it before the loop.
func (m Metric) score(a, b grid.Grid) float64 {
	if m == SSD {
		return ssdScore(a, b)
	}
	return nccScore(a, b)
}

// ssdScore computes the elementwise sum of squared differences.
func ssdScore(a, b grid.Grid) float64 {
	var sum float64
	for y := 0; y < a.H(); y++ {
		for x := 0; x < a.W(); x++ {
			d := a.At(x, y) - b.At(x, y)
			sum += d * d
		}
	}
	return sum
}

// nccScore z-scores both grids and returns the elementwise product sum.
// A perfectly correlated pair scores the sample count of the grid.
func nccScore(a, b grid.Grid) float64 {
	meanA, stdA := a.MeanStd()
	meanB, stdB := b.MeanStd()
	invA := 1.0 / (stdA + epsStd)
	invB := 1.0 / (stdB + epsStd)

	n := a.W() * a.H()
	za := make([]float64, n)
	zb := make([]float64, n)
	i := 0
	for y := 0; y < a.H(); y++ {
		for x := 0; x < a.W(); x++ {
			za[i] = (a.At(x, y) - meanA) * invA
			zb[i] = (b.At(x, y) - meanB) * invB
			i++
		}
	}
	return floats.Dot(za, zb)
}
