package grid

// BoundaryMode selects how Shift fills samples that fall outside the
// source raster.
type BoundaryMode int

const (
	// Wrap treats the raster as a torus: content shifted off one edge
	// re-enters on the opposite edge.
	Wrap BoundaryMode = iota
	// Replicate clamps reads to the nearest edge sample.
	Replicate
	// ZeroFill leaves vacated samples at zero.
	ZeroFill
)

func (m BoundaryMode) String() string {
	switch m {
	case Wrap:
		return "Wrap"
	case Replicate:
		return "Replicate"
	case ZeroFill:
		return "ZeroFill"
	default:
		return "Unknown"
	}
}

// resolve maps a possibly out-of-range coordinate to a source index.
// The second result is false when the sample should be left as zero.
func resolve(i, n int, mode BoundaryMode) (int, bool) {
	if i >= 0 && i < n {
		return i, true
	}
	switch mode {
	case Wrap:
		i %= n
		if i < 0 {
			i += n
		}
		return i, true
	case Replicate:
		if i < 0 {
			return 0, true
		}
		return n - 1, true
	default:
		return 0, false
	}
}
