package align_test

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"plate-restorer/internal/align"
	"plate-restorer/pkg/grid"
)

// textured builds a deterministic, non-periodic test image: a mix of
// incommensurate sinusoids over a gentle diagonal gradient, so no two
// wrap-around shifts of it look alike.
func textured(t *testing.T, w, h int) grid.Grid {
	t.Helper()
	pix := make([]float64, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			fx, fy := float64(x), float64(y)
			pix[y*w+x] = 40*math.Sin(fx*0.31) +
				25*math.Cos(fy*0.47) +
				15*math.Sin((fx+2*fy)*0.13) +
				0.5*fx + 0.3*fy + 128
		}
	}
	g, err := grid.New(w, h, pix)
	require.NoError(t, err)
	return g
}

// displaced returns a copy whose content needs (dx, dy) applied to
// re-align with the source, using the wrap model the search assumes.
func displaced(g grid.Grid, dx, dy int) grid.Grid {
	return g.Shift(-dx, -dy, grid.Wrap)
}

func TestSearchIdentity(t *testing.T) {
	g := textured(t, 48, 40)
	for _, m := range []align.Metric{align.NCC, align.SSD} {
		t.Run(m.String(), func(t *testing.T) {
			opts := align.DefaultOptions()
			opts.Radius = 6
			opts.Metric = m
			res, err := align.Search(g, g, opts)
			require.NoError(t, err)
			require.Equal(t, 0, res.DX)
			require.Equal(t, 0, res.DY)
		})
	}
}

func TestSearchRecoversShift(t *testing.T) {
	g := textured(t, 64, 56)
	shifts := [][2]int{{3, -2}, {-7, 5}, {0, 8}, {-8, 0}, {1, 1}}

	for _, m := range []align.Metric{align.NCC, align.SSD} {
		for _, s := range shifts {
			res, err := align.Search(g, displaced(g, s[0], s[1]), align.Options{
				Radius:   8,
				Metric:   m,
				EdgeCrop: 0.10,
			})
			require.NoError(t, err)
			require.Equal(t, s[0], res.DX, "metric=%s shift=%v", m, s)
			require.Equal(t, s[1], res.DY, "metric=%s shift=%v", m, s)
		}
	}
}

func TestSearchSelfScores(t *testing.T) {
	g := textured(t, 50, 50)

	opts := align.DefaultOptions()
	opts.Radius = 0
	opts.Metric = align.SSD
	res, err := align.Search(g, g, opts)
	require.NoError(t, err)
	require.Equal(t, 0.0, res.Score)

	// NCC of a grid against itself scores the cropped sample count:
	// 10% margins on 50x50 leave a 40x40 window.
	opts.Metric = align.NCC
	res, err = align.Search(g, g, opts)
	require.NoError(t, err)
	require.InDelta(t, 1600.0, res.Score, 1e-3)
}

// TestSearchTieBreak drives the search with a constant grid, where every
// candidate scores identically, and expects the first candidate in
// (dy outer, dx inner) order starting at (-R, -R).
func TestSearchTieBreak(t *testing.T) {
	pix := make([]float64, 30*30)
	for i := range pix {
		pix[i] = 77
	}
	g, err := grid.New(30, 30, pix)
	require.NoError(t, err)

	for _, m := range []align.Metric{align.NCC, align.SSD} {
		for _, workers := range []int{1, 8} {
			res, err := align.Search(g, g, align.Options{
				Radius:   2,
				Metric:   m,
				EdgeCrop: 0.10,
				Workers:  workers,
			})
			require.NoError(t, err)
			require.Equal(t, -2, res.DX, "metric=%s workers=%d", m, workers)
			require.Equal(t, -2, res.DY, "metric=%s workers=%d", m, workers)
		}
	}
}

func TestSearchParallelMatchesSerial(t *testing.T) {
	g := textured(t, 60, 44)
	tgt := displaced(g, -4, 3)

	for _, m := range []align.Metric{align.NCC, align.SSD} {
		serial, err := align.Search(g, tgt, align.Options{Radius: 6, Metric: m, EdgeCrop: 0.10, Workers: 1})
		require.NoError(t, err)
		parallel, err := align.Search(g, tgt, align.Options{Radius: 6, Metric: m, EdgeCrop: 0.10, Workers: 8})
		require.NoError(t, err)
		require.Equal(t, serial, parallel, "metric=%s", m)
	}
}

func TestSearchErrors(t *testing.T) {
	a := textured(t, 20, 20)
	b := textured(t, 20, 24)

	_, err := align.Search(a, b, align.DefaultOptions())
	require.True(t, errors.Is(err, align.ErrShapeMismatch), "got %v", err)

	_, err = align.Search(grid.Grid{}, grid.Grid{}, align.DefaultOptions())
	require.True(t, errors.Is(err, align.ErrEmptyGrid), "got %v", err)

	opts := align.DefaultOptions()
	opts.Radius = -1
	_, err = align.Search(a, a, opts)
	require.True(t, errors.Is(err, align.ErrBadRadius), "got %v", err)
}

// TestSearchGradientScenario is the 100x100 diagonal-gradient case: the
// plate is displaced by (3, -2) and a radius-15 NCC search must recover
// it with a score matching the self-NCC of the cropped window.
func TestSearchGradientScenario(t *testing.T) {
	g := textured(t, 100, 100)
	res, err := align.Search(g, displaced(g, 3, -2), align.Options{
		Radius:   15,
		Metric:   align.NCC,
		EdgeCrop: 0.10,
	})
	require.NoError(t, err)
	require.Equal(t, 3, res.DX)
	require.Equal(t, -2, res.DY)
	require.InDelta(t, 6400.0, res.Score, 1e-3) // 80x80 crop window
}
