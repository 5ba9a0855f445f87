// Command aligneval runs the alignment search on one stacked scan and
// prints the recovered displacements, scores, and timing. Useful for
// comparing metrics and strategies without writing any output images.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"plate-restorer/internal/align"
	"plate-restorer/internal/plate"
	"plate-restorer/internal/restore"
	"plate-restorer/pkg/grid"
)

func main() {
	input := flag.String("i", "", "Path to stacked scan")
	metric := flag.String("metric", "ncc", "Similarity metric: ncc or ssd")
	radius := flag.Int("radius", 15, "Search radius (exhaustive)")
	pyramid := flag.Bool("pyramid", false, "Use pyramid search")
	levels := flag.Int("levels", 5, "Pyramid levels")
	base := flag.Int("base", 4, "Pyramid search radius at full resolution")
	refine := flag.Int("refine", 2, "Pyramid search radius at coarser levels")
	edgeCrop := flag.Float64("crop", 0.10, "Edge-crop fraction for scoring")
	debug := flag.Bool("debug", false, "Enable per-level debug output")
	flag.Parse()

	if *input == "" {
		fmt.Println("Usage: aligneval -i <stacked-scan> [-metric ncc|ssd] [-radius N] [-pyramid]")
		os.Exit(1)
	}

	stacked, err := plate.Load(*input)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load: %v\n", err)
		os.Exit(1)
	}

	b, g, r, err := plate.Split(stacked)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to split: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Plates: %dx%d, metric=%s\n", b.W(), b.H(), *metric)

	m := restore.NormalizeMetric(*metric)

	for _, pair := range []struct {
		name string
		tgt  grid.Grid
	}{
		{plate.Green.String(), g},
		{plate.Red.String(), r},
	} {
		start := time.Now()
		var res align.Result
		if *pyramid {
			res, err = align.SearchPyramid(b, pair.tgt, align.PyramidOptions{
				Levels:       *levels,
				BaseSearch:   *base,
				RefineSearch: *refine,
				Metric:       m,
				EdgeCrop:     *edgeCrop,
				Debug:        *debug,
			})
		} else {
			res, err = align.Search(b, pair.tgt, align.Options{
				Radius:   *radius,
				Metric:   m,
				EdgeCrop: *edgeCrop,
				Debug:    *debug,
			})
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "Alignment failed for %s: %v\n", pair.name, err)
			os.Exit(1)
		}
		fmt.Printf("%-6s %s  in %.3fs\n", pair.name, res, time.Since(start).Seconds())
	}
}
