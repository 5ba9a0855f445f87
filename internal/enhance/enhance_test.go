package enhance

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/require"
)

func uniformRGBA(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

func TestGammaIdentity(t *testing.T) {
	img := uniformRGBA(4, 4, color.RGBA{R: 10, G: 120, B: 250, A: 255})
	out := Gamma(img, 1.0)
	require.Equal(t, img.RGBAAt(0, 0), out.RGBAAt(0, 0))
}

func TestGammaEndpointsAndDirection(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 3, 1))
	img.SetRGBA(0, 0, color.RGBA{A: 255})                         // black
	img.SetRGBA(1, 0, color.RGBA{R: 128, G: 128, B: 128, A: 255}) // mid gray
	img.SetRGBA(2, 0, color.RGBA{R: 255, G: 255, B: 255, A: 255}) // white

	out := Gamma(img, 1.5)
	require.Equal(t, uint8(0), out.RGBAAt(0, 0).R)
	require.Equal(t, uint8(255), out.RGBAAt(2, 0).R)
	// Gamma above 1 brightens midtones.
	require.Greater(t, out.RGBAAt(1, 0).R, uint8(128))
}

func TestEqualizeLumaSingleLevelUnchanged(t *testing.T) {
	img := uniformRGBA(6, 6, color.RGBA{R: 90, G: 90, B: 90, A: 255})
	out := EqualizeLuma(img)
	c := out.RGBAAt(3, 3)
	require.Equal(t, uint8(90), c.R)
	require.Equal(t, uint8(90), c.G)
	require.Equal(t, uint8(90), c.B)
	require.Equal(t, uint8(255), c.A)
}

func TestEqualizeLumaSpreadsContrast(t *testing.T) {
	// Left half slightly dark, right half slightly bright; equalization
	// should push them toward the histogram extremes.
	img := image.NewRGBA(image.Rect(0, 0, 8, 4))
	for y := 0; y < 4; y++ {
		for x := 0; x < 8; x++ {
			v := uint8(110)
			if x >= 4 {
				v = 140
			}
			img.SetRGBA(x, y, color.RGBA{R: v, G: v, B: v, A: 255})
		}
	}
	out := EqualizeLuma(img)
	require.Less(t, out.RGBAAt(0, 0).R, uint8(110))
	require.Greater(t, out.RGBAAt(7, 0).R, uint8(140))
}

func TestUnsharpFlatImageUnchanged(t *testing.T) {
	img := uniformRGBA(12, 12, color.RGBA{R: 77, G: 77, B: 77, A: 255})
	out := Unsharp(img, 0.6, 1.2)
	for _, p := range [][2]int{{0, 0}, {6, 6}, {11, 11}} {
		require.Equal(t, uint8(77), out.RGBAAt(p[0], p[1]).R, "at %v", p)
	}
}

func TestUnsharpIncreasesEdgeContrast(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 16, 8))
	for y := 0; y < 8; y++ {
		for x := 0; x < 16; x++ {
			v := uint8(60)
			if x >= 8 {
				v = 180
			}
			img.SetRGBA(x, y, color.RGBA{R: v, G: v, B: v, A: 255})
		}
	}
	out := Unsharp(img, 0.6, 1.2)
	// Just inside the dark side of the edge gets darker, the bright side brighter.
	require.Less(t, out.RGBAAt(7, 4).R, uint8(60))
	require.Greater(t, out.RGBAAt(8, 4).R, uint8(180))
}

func TestAutoCropDarkBorder(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 60, 60))
	for y := 0; y < 60; y++ {
		for x := 0; x < 60; x++ {
			v := uint8(0)
			if x >= 5 && x < 55 && y >= 5 && y < 55 {
				v = 200
			}
			img.SetRGBA(x, y, color.RGBA{R: v, G: v, B: v, A: 255})
		}
	}
	out, box := AutoCrop(img, 12, 120)
	require.Equal(t, CropBox{Top: 7, Bottom: 52, Left: 7, Right: 52}, box)
	require.Equal(t, 46, out.Bounds().Dx())
	require.Equal(t, 46, out.Bounds().Dy())
	require.Equal(t, uint8(200), out.RGBAAt(0, 0).R)
}

func TestAutoCropAllDarkKeepsPadOnly(t *testing.T) {
	img := uniformRGBA(30, 30, color.RGBA{A: 255})
	out, box := AutoCrop(img, 12, 120)
	require.Equal(t, CropBox{Top: 2, Bottom: 27, Left: 2, Right: 27}, box)
	require.Equal(t, 26, out.Bounds().Dx())
}

func TestAutoCropDegenerateReturnsInput(t *testing.T) {
	img := uniformRGBA(3, 3, color.RGBA{A: 255})
	out, box := AutoCrop(img, 12, 120)
	require.Equal(t, img, out)
	require.Equal(t, CropBox{Top: 0, Bottom: 2, Left: 0, Right: 2}, box)
}
