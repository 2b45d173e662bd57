package repalette

import "fmt"

// Substitute replaces the colour clusters of img with the colours of palette.
//
// The image is clustered into exactly palette.Len() colours. Every pixel p in
// cluster l with centre c becomes spread*(p - c) + palette[l], so a spread of 1
// keeps each pixel's offset from its centre and 0 flattens the image onto the
// new palette. Clusters are matched to palette entries by index only. The
// result is post-processed with Config.SubstituteOutput, which by default leaves
// values real-valued and unclamped.
func (e *Extractor) Substitute(img *Image, palette *Palette, spread float64) (*Image, error) {
	k, err := e.paletteSize(palette)
	if err != nil {
		return nil, err
	}

	old, labels, err := e.Extract(img, k)
	if err != nil {
		return nil, err
	}

	out := NewImage(img.Width, img.Height)
	for i, p := range img.Pix {
		l := labels.Labels[i]
		out.Pix[i] = p.Sub(old.Colours[l]).Scale(spread).Add(palette.Colours[l])
	}

	e.finish("substitute", out, spread, e.config.SubstituteOutput)
	return out, nil
}

// paletteSize validates a replacement palette and returns its cluster count.
func (e *Extractor) paletteSize(palette *Palette) (int, error) {
	if palette == nil || palette.Len() == 0 {
		return 0, fmt.Errorf("%w: replacement palette has no colours", ErrShape)
	}
	if err := e.validateClusterCount(palette.Len()); err != nil {
		return 0, fmt.Errorf("replacement palette: %w", err)
	}
	return palette.Len(), nil
}

// Substitute runs Extractor.Substitute with DefaultConfig.
func Substitute(img *Image, palette *Palette, spread float64) (*Image, error) {
	e, err := NewExtractor(DefaultConfig())
	if err != nil {
		return nil, err
	}
	return e.Substitute(img, palette, spread)
}
