// Package grid provides the 2D intensity raster type shared by the
// alignment engine and the plate pipeline.
package grid

import (
	"fmt"
	"image"
	"image/color"

	"gonum.org/v1/gonum/stat"
)

// Grid is an immutable 2D raster of float64 intensity samples.
// All operations return new grids; the backing slice is never shared
// with a caller-visible mutable value.
type Grid struct {
	w, h int
	pix  []float64
}

// New creates a Grid from a row-major pixel slice. The slice is copied.
func New(w, h int, pix []float64) (Grid, error) {
	if w <= 0 || h <= 0 {
		return Grid{}, fmt.Errorf("grid: invalid dimensions %dx%d", w, h)
	}
	if len(pix) != w*h {
		return Grid{}, fmt.Errorf("grid: pixel count %d does not match %dx%d", len(pix), w, h)
	}
	p := make([]float64, len(pix))
	copy(p, pix)
	return Grid{w: w, h: h, pix: p}, nil
}

// FromGray creates a Grid from a grayscale image.
func FromGray(img *image.Gray) Grid {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	pix := make([]float64, w*h)
	for y := 0; y < h; y++ {
		row := img.Pix[(y+b.Min.Y-img.Rect.Min.Y)*img.Stride:]
		for x := 0; x < w; x++ {
			pix[y*w+x] = float64(row[x+b.Min.X-img.Rect.Min.X])
		}
	}
	return Grid{w: w, h: h, pix: pix}
}

// FromImage creates a Grid from any image, converting to 8-bit luma.
func FromImage(img image.Image) Grid {
	if g, ok := img.(*image.Gray); ok {
		return FromGray(g)
	}
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	pix := make([]float64, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := color.GrayModel.Convert(img.At(b.Min.X+x, b.Min.Y+y)).(color.Gray)
			pix[y*w+x] = float64(c.Y)
		}
	}
	return Grid{w: w, h: h, pix: pix}
}

// W returns the grid width in samples.
func (g Grid) W() int { return g.w }

// H returns the grid height in samples.
func (g Grid) H() int { return g.h }

// Empty reports whether the grid holds no samples.
func (g Grid) Empty() bool { return g.w == 0 || g.h == 0 }

// At returns the sample at column x, row y.
func (g Grid) At(x, y int) float64 { return g.pix[y*g.w+x] }

// SameShape reports whether two grids have identical dimensions.
func (g Grid) SameShape(o Grid) bool { return g.w == o.w && g.h == o.h }

// Pix returns a copy of the row-major sample slice.
func (g Grid) Pix() []float64 {
	p := make([]float64, len(g.pix))
	copy(p, g.pix)
	return p
}

// Shift returns a copy translated dx columns right and dy rows down,
// filling the vacated region according to the boundary mode.
func (g Grid) Shift(dx, dy int, mode BoundaryMode) Grid {
	if g.Empty() || (dx == 0 && dy == 0) {
		return g
	}
	out := make([]float64, len(g.pix))
	for y := 0; y < g.h; y++ {
		srcY, okY := resolve(y-dy, g.h, mode)
		for x := 0; x < g.w; x++ {
			srcX, okX := resolve(x-dx, g.w, mode)
			if okY && okX {
				out[y*g.w+x] = g.pix[srcY*g.w+srcX]
			}
		}
	}
	return Grid{w: g.w, h: g.h, pix: out}
}

// Crop trims mx columns from the left and right edges and my rows from
// the top and bottom edges. Margins that would consume the whole axis
// are clamped to leave at least one sample.
func (g Grid) Crop(mx, my int) Grid {
	if mx < 0 {
		mx = 0
	}
	if my < 0 {
		my = 0
	}
	w := g.w - 2*mx
	h := g.h - 2*my
	if w < 1 || h < 1 {
		return g
	}
	out := make([]float64, w*h)
	for y := 0; y < h; y++ {
		copy(out[y*w:(y+1)*w], g.pix[(y+my)*g.w+mx:(y+my)*g.w+mx+w])
	}
	return Grid{w: w, h: h, pix: out}
}

// CropMargin computes the per-axis margins for an edge-crop fraction:
// round down, never more than a quarter of the axis.
func (g Grid) CropMargin(frac float64) (mx, my int) {
	if frac < 0 {
		frac = 0
	}
	mx = int(float64(g.w) * frac)
	my = int(float64(g.h) * frac)
	if mx > g.w/4 {
		mx = g.w / 4
	}
	if my > g.h/4 {
		my = g.h / 4
	}
	return mx, my
}

// Downsample returns a half-resolution copy by taking every second row
// and column. No anti-alias filtering is applied.
func (g Grid) Downsample() Grid {
	w := (g.w + 1) / 2
	h := (g.h + 1) / 2
	out := make([]float64, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			out[y*w+x] = g.pix[(y*2)*g.w+x*2]
		}
	}
	return Grid{w: w, h: h, pix: out}
}

// MeanStd returns the mean and population standard deviation of the samples.
func (g Grid) MeanStd() (mean, std float64) {
	return stat.PopMeanStdDev(g.pix, nil)
}

// ToGray renders the grid as an 8-bit grayscale image with min-max
// normalization to the full [0,255] range.
func (g Grid) ToGray() *image.Gray {
	out := image.NewGray(image.Rect(0, 0, g.w, g.h))
	if g.Empty() {
		return out
	}
	lo, hi := g.pix[0], g.pix[0]
	for _, v := range g.pix {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	scale := 255.0 / (hi - lo + 1e-8)
	for y := 0; y < g.h; y++ {
		for x := 0; x < g.w; x++ {
			out.SetGray(x, y, color.Gray{Y: uint8((g.pix[y*g.w+x] - lo) * scale)})
		}
	}
	return out
}
