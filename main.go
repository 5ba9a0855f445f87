// Command plate-restorer reconstructs color images from stacked
// blue/green/red glass-plate scans, aligning the green and red plates
// against blue before composition.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"plate-restorer/internal/restore"
)

func main() {
	input := flag.String("input", "", "Stacked scan file or a directory of scans")
	output := flag.String("output", "results", "Output directory")
	metric := flag.String("metric", "ncc", "Similarity metric: ncc or ssd")
	pyramid := flag.Bool("pyramid", false, "Use coarse-to-fine pyramid alignment")
	radius := flag.Int("radius", 15, "Search radius for exhaustive alignment")
	debug := flag.Bool("debug", false, "Enable debug output")
	flag.Parse()

	if *input == "" {
		fmt.Println("Usage: plate-restorer -input <file-or-dir> [-output <dir>] [-metric ncc|ssd] [-pyramid] [-radius N]")
		os.Exit(1)
	}

	files, err := collectInputs(*input)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	opts := restore.DefaultOptions()
	opts.Metric = *metric
	opts.UsePyramid = *pyramid
	opts.Radius = *radius
	opts.Debug = *debug

	var summaries []restore.Summary
	for _, f := range files {
		fmt.Printf("\n=== Processing: %s ===\n", f)
		s, err := restore.Process(f, *output, opts)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to process %s: %v\n", f, err)
			continue
		}
		fmt.Printf("  Green shift: dx=%d, dy=%d\n", s.GreenShift.DX, s.GreenShift.DY)
		fmt.Printf("  Red   shift: dx=%d, dy=%d\n", s.RedShift.DX, s.RedShift.DY)
		fmt.Printf("  Done in %.2fs | crop=(%d,%d)-(%d,%d)\n",
			s.Elapsed.Seconds(), s.CropBox.Left, s.CropBox.Top, s.CropBox.Right, s.CropBox.Bottom)
		summaries = append(summaries, s)
	}

	if len(summaries) == 0 {
		fmt.Fprintln(os.Stderr, "No scans processed successfully")
		os.Exit(1)
	}

	fmt.Printf("\n=== Summary ===\n")
	fmt.Printf("%-20s %-15s %-15s %-10s\n", "Image", "G Shift", "R Shift", "Time (s)")
	for _, s := range summaries {
		fmt.Printf("%-20s %-15s %-15s %-10.2f\n",
			s.Image,
			fmt.Sprintf("(%d, %d)", s.GreenShift.DX, s.GreenShift.DY),
			fmt.Sprintf("(%d, %d)", s.RedShift.DX, s.RedShift.DY),
			s.Elapsed.Seconds())
	}
}

// collectInputs expands a file or directory argument into a sorted list
// of scan paths.
func collectInputs(input string) ([]string, error) {
	info, err := os.Stat(input)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", input, err)
	}
	if !info.IsDir() {
		return []string{input}, nil
	}

	entries, err := os.ReadDir(input)
	if err != nil {
		return nil, fmt.Errorf("read dir %s: %w", input, err)
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".jpg", ".jpeg", ".tif", ".tiff", ".png":
			files = append(files, filepath.Join(input, e.Name()))
		}
	}
	sort.Strings(files)

	if len(files) == 0 {
		return nil, fmt.Errorf("no scan images found under %s", input)
	}
	return files, nil
}
