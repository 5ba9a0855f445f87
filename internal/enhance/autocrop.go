package enhance

import "image"

// CropBox records the inclusive row/column bounds kept by AutoCrop.
type CropBox struct {
	Top, Bottom, Left, Right int
}

// cropPad pulls the detected edges in by a couple of pixels so
// anti-aliased border remnants don't survive the crop.
const cropPad = 2

// AutoCrop scans inward from each edge until the mean luminance of a
// row or column rises above thresh, then trims the dark border. At most
// maxCrop pixels are removed per edge, and the scan never crosses a
// third of the axis. If the detected box collapses, the input is
// returned uncropped.
func AutoCrop(img *image.RGBA, thresh float64, maxCrop int) (*image.RGBA, CropBox) {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	full := CropBox{Top: 0, Bottom: h - 1, Left: 0, Right: w - 1}
	if w == 0 || h == 0 {
		return img, full
	}

	luma := func(x, y int) float64 {
		c := img.RGBAAt(b.Min.X+x, b.Min.Y+y)
		return 0.299*float64(c.R) + 0.587*float64(c.G) + 0.114*float64(c.B)
	}
	rowMean := func(y int) float64 {
		var s float64
		for x := 0; x < w; x++ {
			s += luma(x, y)
		}
		return s / float64(w)
	}
	colMean := func(x int) float64 {
		var s float64
		for y := 0; y < h; y++ {
			s += luma(x, y)
		}
		return s / float64(h)
	}

	top := 0
	for i := 0; i < minInt(maxCrop, h/3); i++ {
		if rowMean(i) > thresh {
			top = i
			break
		}
	}
	bottom := h - 1
	for i := h - 1; i > maxInt(h-1-maxCrop, h*2/3); i-- {
		if rowMean(i) > thresh {
			bottom = i
			break
		}
	}
	left := 0
	for j := 0; j < minInt(maxCrop, w/3); j++ {
		if colMean(j) > thresh {
			left = j
			break
		}
	}
	right := w - 1
	for j := w - 1; j > maxInt(w-1-maxCrop, w*2/3); j-- {
		if colMean(j) > thresh {
			right = j
			break
		}
	}

	top = minInt(top+cropPad, h-1)
	left = minInt(left+cropPad, w-1)
	bottom = maxInt(bottom-cropPad, 0)
	right = maxInt(right-cropPad, 0)

	if bottom <= top || right <= left {
		return img, full
	}

	cw := right - left + 1
	ch := bottom - top + 1
	out := image.NewRGBA(image.Rect(0, 0, cw, ch))
	for y := 0; y < ch; y++ {
		for x := 0; x < cw; x++ {
			out.SetRGBA(x, y, img.RGBAAt(b.Min.X+left+x, b.Min.Y+top+y))
		}
	}
	return out, CropBox{Top: top, Bottom: bottom, Left: left, Right: right}
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
