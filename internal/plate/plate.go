// Package plate handles the stacked glass-plate scans: loading, the
// top-to-bottom blue/green/red split, shift application, and the final
// color composition.
package plate

import (
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"

	_ "golang.org/x/image/tiff"

	"plate-restorer/pkg/grid"
)

var (
	// ErrTooSmall indicates a stacked scan too short to hold three plates.
	ErrTooSmall = errors.New("plate: stacked image is too small to split into three plates")
	// ErrShapeMismatch indicates plates of differing size at composition.
	ErrShapeMismatch = errors.New("plate: plates must have the same shape")
)

// Channel identifies one of the three stacked monochrome exposures.
type Channel int

const (
	Blue Channel = iota // Top third of the stacked scan
	Green
	Red
)

func (c Channel) String() string {
	switch c {
	case Blue:
		return "blue"
	case Green:
		return "green"
	case Red:
		return "red"
	default:
		return "unknown"
	}
}

// Load reads a stacked scan from disk as a grayscale grid. JPEG, PNG
// and TIFF are recognized.
func Load(path string) (grid.Grid, error) {
	file, err := os.Open(path)
	if err != nil {
		return grid.Grid{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer file.Close()

	img, _, err := image.Decode(file)
	if err != nil {
		return grid.Grid{}, fmt.Errorf("decode %s: %w", path, err)
	}
	return grid.FromImage(img), nil
}

// Split divides a stacked scan into its blue, green and red plates,
// stacked top to bottom in that order. Any remainder rows beyond three
// equal bands are discarded.
func Split(stacked grid.Grid) (b, g, r grid.Grid, err error) {
	h3 := stacked.H() / 3
	if h3 < 1 || stacked.W() < 1 {
		return grid.Grid{}, grid.Grid{}, grid.Grid{},
			fmt.Errorf("%w: %dx%d", ErrTooSmall, stacked.W(), stacked.H())
	}

	band := func(idx int) grid.Grid {
		pix := make([]float64, stacked.W()*h3)
		for y := 0; y < h3; y++ {
			for x := 0; x < stacked.W(); x++ {
				pix[y*stacked.W()+x] = stacked.At(x, idx*h3+y)
			}
		}
		out, _ := grid.New(stacked.W(), h3, pix)
		return out
	}

	return band(0), band(1), band(2), nil
}

// Apply shifts a plate by an integer displacement using the same
// wrap-around model the alignment search assumes. Using any other
// boundary mode here would visibly misalign the reconstruction.
func Apply(g grid.Grid, dx, dy int) grid.Grid {
	return g.Shift(dx, dy, grid.Wrap)
}

// Compose normalizes each plate to the full 8-bit range and stacks the
// three into an RGB image.
func Compose(b, g, r grid.Grid) (*image.RGBA, error) {
	if !b.SameShape(g) || !b.SameShape(r) {
		return nil, fmt.Errorf("%w: b=%dx%d g=%dx%d r=%dx%d",
			ErrShapeMismatch, b.W(), b.H(), g.W(), g.H(), r.W(), r.H())
	}

	bn := b.ToGray()
	gn := g.ToGray()
	rn := r.ToGray()

	out := image.NewRGBA(image.Rect(0, 0, b.W(), b.H()))
	for y := 0; y < b.H(); y++ {
		for x := 0; x < b.W(); x++ {
			i := out.PixOffset(x, y)
			out.Pix[i+0] = rn.GrayAt(x, y).Y
			out.Pix[i+1] = gn.GrayAt(x, y).Y
			out.Pix[i+2] = bn.GrayAt(x, y).Y
			out.Pix[i+3] = 0xff
		}
	}
	return out, nil
}
