// Package restore orchestrates the full reconstruction pipeline for
// one stacked scan: split, align, shift, compose, enhance, crop, save.
package restore

import (
	"fmt"
	"image"
	"image/jpeg"
	"os"
	"path/filepath"
	"strings"
	"time"

	"plate-restorer/internal/align"
	"plate-restorer/internal/enhance"
	"plate-restorer/internal/plate"
	"plate-restorer/pkg/grid"
)

// Options configures one reconstruction run.
type Options struct {
	Metric     string // "ncc" or "ssd"; anything else falls back to ncc with a warning
	UsePyramid bool   // Coarse-to-fine search instead of single-resolution

	// Exhaustive search
	Radius int

	// Pyramid search
	Levels       int
	BaseSearch   int
	RefineSearch int

	EdgeCrop float64

	// Enhancement
	GammaValue float64
	Unsharp    bool
	CropThresh float64
	MaxCrop    int

	Debug bool
}

// DefaultOptions returns the pipeline defaults.
func DefaultOptions() Options {
	return Options{
		Metric:       "ncc",
		Radius:       15,
		Levels:       5,
		BaseSearch:   4,
		RefineSearch: 2,
		EdgeCrop:     0.10,
		GammaValue:   1.08,
		Unsharp:      true,
		CropThresh:   12,
		MaxCrop:      120,
	}
}

// Summary reports the outcome of processing one scan.
type Summary struct {
	Image      string
	GreenShift align.Result
	RedShift   align.Result
	CropBox    enhance.CropBox
	Elapsed    time.Duration
}

// NormalizeMetric resolves a metric name at the pipeline boundary.
// Unknown names produce a warning and fall back to NCC; the search
// engine itself stays strict.
func NormalizeMetric(name string) align.Metric {
	m, err := align.ParseMetric(name)
	if err != nil {
		fmt.Fprintf(os.Stderr, "[warn] unknown metric %q, using ncc\n", name)
		return align.NCC
	}
	return m
}

// Process reconstructs a color image from one stacked scan and writes
// the unaligned, aligned and enhanced results to outputDir.
func Process(inputPath, outputDir string, opts Options) (Summary, error) {
	start := time.Now()

	stacked, err := plate.Load(inputPath)
	if err != nil {
		return Summary{}, fmt.Errorf("load: %w", err)
	}

	b, g, r, err := plate.Split(stacked)
	if err != nil {
		return Summary{}, fmt.Errorf("split: %w", err)
	}
	if opts.Debug {
		fmt.Printf("Split plates: %dx%d\n", b.W(), b.H())
	}

	metric := NormalizeMetric(opts.Metric)

	gRes, err := alignPlate(b, g, metric, opts)
	if err != nil {
		return Summary{}, fmt.Errorf("align green: %w", err)
	}
	rRes, err := alignPlate(b, r, metric, opts)
	if err != nil {
		return Summary{}, fmt.Errorf("align red: %w", err)
	}
	if opts.Debug {
		fmt.Printf("Green shift: %s\n", gRes)
		fmt.Printf("Red   shift: %s\n", rRes)
	}

	gAligned := plate.Apply(g, gRes.DX, gRes.DY)
	rAligned := plate.Apply(r, rRes.DX, rRes.DY)

	unaligned, err := plate.Compose(b, g, r)
	if err != nil {
		return Summary{}, fmt.Errorf("compose unaligned: %w", err)
	}
	aligned, err := plate.Compose(b, gAligned, rAligned)
	if err != nil {
		return Summary{}, fmt.Errorf("compose aligned: %w", err)
	}

	enhanced := enhance.Enhance(aligned, opts.GammaValue, opts.Unsharp)
	cropped, box := enhance.AutoCrop(enhanced, opts.CropThresh, opts.MaxCrop)

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return Summary{}, fmt.Errorf("create output dir: %w", err)
	}

	stem := strings.TrimSuffix(filepath.Base(inputPath), filepath.Ext(inputPath))
	outputs := []struct {
		suffix string
		img    image.Image
	}{
		{"_unaligned.jpg", unaligned},
		{"_aligned.jpg", aligned},
		{"_enhanced.jpg", cropped},
	}
	for _, o := range outputs {
		if err := saveJPEG(filepath.Join(outputDir, stem+o.suffix), o.img); err != nil {
			return Summary{}, err
		}
	}

	return Summary{
		Image:      stem,
		GreenShift: gRes,
		RedShift:   rRes,
		CropBox:    box,
		Elapsed:    time.Since(start),
	}, nil
}

// alignPlate runs the configured search strategy for one plate pair.
func alignPlate(ref, tgt grid.Grid, metric align.Metric, opts Options) (align.Result, error) {
	if opts.UsePyramid {
		return align.SearchPyramid(ref, tgt, align.PyramidOptions{
			Levels:       opts.Levels,
			BaseSearch:   opts.BaseSearch,
			RefineSearch: opts.RefineSearch,
			Metric:       metric,
			EdgeCrop:     opts.EdgeCrop,
			Debug:        opts.Debug,
		})
	}
	return align.Search(ref, tgt, align.Options{
		Radius:   opts.Radius,
		Metric:   metric,
		EdgeCrop: opts.EdgeCrop,
		Debug:    opts.Debug,
	})
}

func saveJPEG(path string, img image.Image) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer file.Close()

	if err := jpeg.Encode(file, img, &jpeg.Options{Quality: 95}); err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return nil
}
