package align

import "errors"

var (
	// ErrShapeMismatch indicates the reference and target grids differ in size.
	ErrShapeMismatch = errors.New("align: reference and target grids must have the same shape")
	// ErrEmptyGrid indicates an input grid with no samples.
	ErrEmptyGrid = errors.New("align: input grid is empty")
	// ErrBadRadius indicates a negative search radius.
	ErrBadRadius = errors.New("align: search radius must be >= 0")
	// ErrBadLevels indicates a pyramid depth below one.
	ErrBadLevels = errors.New("align: pyramid must have at least one level")
	// ErrUnknownMetric indicates a metric name outside {ssd, ncc}.
	ErrUnknownMetric = errors.New("align: unknown metric")
)
