package repalette

import "math"

// finish applies policy to img in place and reports range problems for op.
func (e *Extractor) finish(op string, img *Image, spread float64, policy OutputPolicy) {
	w := RangeWarning{
		Operation:        op,
		Spread:           spread,
		SpreadOutOfRange: spread < 0 || spread > 1 || math.IsNaN(spread),
	}

	for i, v := range img.Pix {
		for _, c := range v {
			if c < ChannelMin || c > ChannelMax || math.IsNaN(c) {
				w.OutOfRange++
			}
		}
		switch policy {
		case OutputClamp:
			img.Pix[i] = v.Clamp(ChannelMin, ChannelMax)
		case OutputClampTruncate:
			img.Pix[i] = v.Clamp(ChannelMin, ChannelMax).Trunc()
		}
	}

	if w.SpreadOutOfRange || w.OutOfRange > 0 {
		e.warn(w)
	}
}

// warn delivers w to the configured handler or the logger.
func (e *Extractor) warn(w RangeWarning) {
	if e.config.OnWarning != nil {
		e.config.OnWarning(w)
		return
	}
	e.logger.Warn("values outside expected range", "operation", w.Operation, "spread", w.Spread,
		"spread_out_of_range", w.SpreadOutOfRange, "channels_out_of_range", w.OutOfRange)
}
