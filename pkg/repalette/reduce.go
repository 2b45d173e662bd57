package repalette

// Reduce collapses the colours of img onto its k cluster centres.
//
// Every pixel p with centre c becomes spread*p + (1-spread)*c. A spread of 0
// gives pure quantisation and 1 leaves the image unchanged. Spreads outside
// [0, 1] extrapolate and are reported as a RangeWarning, not rejected. The
// result is post-processed with Config.ReduceOutput, which by default clamps to
// [0, 255] and truncates toward zero. Clamping maps NaN channels, as produced
// by a NaN spread, to 0.
func (e *Extractor) Reduce(img *Image, k int, spread float64) (*Image, error) {
	palette, labels, err := e.Extract(img, k)
	if err != nil {
		return nil, err
	}

	out := NewImage(img.Width, img.Height)
	for i, p := range img.Pix {
		out.Pix[i] = p.Blend(palette.Colours[labels.Labels[i]], spread)
	}

	e.finish("reduce", out, spread, e.config.ReduceOutput)
	return out, nil
}

// Reduce runs Extractor.Reduce with DefaultConfig.
func Reduce(img *Image, k int, spread float64) (*Image, error) {
	e, err := NewExtractor(DefaultConfig())
	if err != nil {
		return nil, err
	}
	return e.Reduce(img, k, spread)
}
