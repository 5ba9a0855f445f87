// Package enhance provides the post-composition adjustments: luma
// histogram equalization, gamma correction, and unsharp masking.
package enhance

import (
	"image"
	"image/color"
	"math"
)

// Enhance applies the full adjustment chain: histogram equalization of
// luminance, then gamma, then an optional unsharp mask.
func Enhance(img *image.RGBA, gamma float64, doUnsharp bool) *image.RGBA {
	out := EqualizeLuma(img)
	out = Gamma(out, gamma)
	if doUnsharp {
		out = Unsharp(out, 0.6, 1.2)
	}
	return out
}

// EqualizeLuma equalizes the luminance histogram while leaving the
// chroma components untouched, boosting contrast without shifting hue.
func EqualizeLuma(img *image.RGBA) *image.RGBA {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	n := w * h
	if n == 0 {
		return img
	}

	ys := make([]uint8, n)
	cbs := make([]uint8, n)
	crs := make([]uint8, n)

	var hist [256]int
	i := 0
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := img.RGBAAt(x, y)
			ys[i], cbs[i], crs[i] = color.RGBToYCbCr(c.R, c.G, c.B)
			hist[ys[i]]++
			i++
		}
	}

	// Standard CDF equalization over the luma channel.
	var lut [256]uint8
	cdf := 0
	cdfMin := -1
	for v := 0; v < 256; v++ {
		cdf += hist[v]
		if cdfMin < 0 && hist[v] > 0 {
			cdfMin = cdf
		}
		if cdfMin >= 0 && n > cdfMin {
			lut[v] = uint8(math.Round(255 * float64(cdf-cdfMin) / float64(n-cdfMin)))
		} else {
			lut[v] = uint8(v)
		}
	}

	out := image.NewRGBA(image.Rect(0, 0, w, h))
	i = 0
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			r, g, bl := color.YCbCrToRGB(lut[ys[i]], cbs[i], crs[i])
			out.SetRGBA(x, y, color.RGBA{R: r, G: g, B: bl, A: 0xff})
			i++
		}
	}
	return out
}

// Gamma applies a gamma curve through a 256-entry lookup table.
// Values above 1 brighten the midtones.
func Gamma(img *image.RGBA, gamma float64) *image.RGBA {
	if gamma < 1e-6 {
		gamma = 1e-6
	}
	inv := 1.0 / gamma

	var lut [256]uint8
	for v := 0; v < 256; v++ {
		lut[v] = clamp8(math.Pow(float64(v)/255.0, inv) * 255.0)
	}

	b := img.Bounds()
	out := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			c := img.RGBAAt(b.Min.X+x, b.Min.Y+y)
			out.SetRGBA(x, y, color.RGBA{R: lut[c.R], G: lut[c.G], B: lut[c.B], A: c.A})
		}
	}
	return out
}

// Unsharp sharpens by subtracting a Gaussian blur:
// out = (1+amount)*img - amount*blur(img, radius).
func Unsharp(img *image.RGBA, amount, radius float64) *image.RGBA {
	blur := gaussianBlur(img, radius)

	b := img.Bounds()
	out := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			c := img.RGBAAt(b.Min.X+x, b.Min.Y+y)
			d := blur.RGBAAt(x, y)
			out.SetRGBA(x, y, color.RGBA{
				R: clamp8((1+amount)*float64(c.R) - amount*float64(d.R)),
				G: clamp8((1+amount)*float64(c.G) - amount*float64(d.G)),
				B: clamp8((1+amount)*float64(c.B) - amount*float64(d.B)),
				A: c.A,
			})
		}
	}
	return out
}

// gaussianBlur applies a separable Gaussian with the given sigma,
// clamping reads at the image edges.
func gaussianBlur(img *image.RGBA, sigma float64) *image.RGBA {
	if sigma <= 0 {
		sigma = 0.5
	}
	radius := int(math.Ceil(3 * sigma))
	kernel := make([]float64, 2*radius+1)
	var sum float64
	for i := range kernel {
		d := float64(i - radius)
		kernel[i] = math.Exp(-d * d / (2 * sigma * sigma))
		sum += kernel[i]
	}
	for i := range kernel {
		kernel[i] /= sum
	}

	b := img.Bounds()
	w, h := b.Dx(), b.Dy()

	// Horizontal pass into a float buffer, then vertical pass.
	tmp := make([]float64, w*h*3)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			var r, g, bl float64
			for k := -radius; k <= radius; k++ {
				sx := clampInt(x+k, 0, w-1)
				c := img.RGBAAt(b.Min.X+sx, b.Min.Y+y)
				kw := kernel[k+radius]
				r += kw * float64(c.R)
				g += kw * float64(c.G)
				bl += kw * float64(c.B)
			}
			i := (y*w + x) * 3
			tmp[i], tmp[i+1], tmp[i+2] = r, g, bl
		}
	}

	out := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			var r, g, bl float64
			for k := -radius; k <= radius; k++ {
				sy := clampInt(y+k, 0, h-1)
				i := (sy*w + x) * 3
				kw := kernel[k+radius]
				r += kw * tmp[i]
				g += kw * tmp[i+1]
				bl += kw * tmp[i+2]
			}
			out.SetRGBA(x, y, color.RGBA{R: clamp8(r), G: clamp8(g), B: clamp8(bl), A: 0xff})
		}
	}
	return out
}

func clamp8(v float64) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(math.Round(v))
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
