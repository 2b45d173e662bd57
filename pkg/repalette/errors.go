package repalette

import (
	"errors"
	"fmt"
)

var (
	// ErrFitting is returned when the clustering model cannot be fitted: the
	// cluster count is out of range, the sample is too small, or the model is
	// degenerate.
	ErrFitting = errors.New("fitting error")

	// ErrShape is returned when an image or palette does not have the expected
	// dimensions. An image with fewer pixels than the sample size matches both
	// ErrShape and ErrFitting.
	ErrShape = errors.New("shape error")
)

// RangeWarning reports values outside their meaningful range. It never stops
// an operation.
type RangeWarning struct {
	// Operation is "reduce" or "substitute".
	Operation string
	Spread    float64
	// SpreadOutOfRange is set when Spread lies outside [0, 1].
	SpreadOutOfRange bool
	// OutOfRange counts channel values outside [0, 255] before post-processing.
	OutOfRange int
}

func (w RangeWarning) String() string {
	msg := fmt.Sprintf("%s: ", w.Operation)
	if w.SpreadOutOfRange {
		msg += fmt.Sprintf("spread %g outside [0, 1]", w.Spread)
		if w.OutOfRange > 0 {
			msg += ", "
		}
	}
	if w.OutOfRange > 0 {
		msg += fmt.Sprintf("%d channel values outside [%g, %g]", w.OutOfRange, ChannelMin, ChannelMax)
	}
	return msg
}
