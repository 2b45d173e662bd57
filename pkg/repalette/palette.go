package repalette

import (
	"encoding/json"
	"fmt"

	"github.com/lucasb-eyer/go-colorful"
)

// Palette is an ordered set of cluster centres in RGB space.
// Indices are stable cluster identifiers for the extraction that produced them.
type Palette struct {
	Colours []Vector
	// Weights holds the fraction of the sample owned by each colour, if known.
	Weights []float64
}

// NewPalette creates a new Palette with the given colours.
func NewPalette(colours []Vector) *Palette {
	return &Palette{
		Colours: colours,
	}
}

// NewPaletteWithWeights creates a new Palette with colours and their weights.
func NewPaletteWithWeights(colours []Vector, weights []float64) *Palette {
	return &Palette{
		Colours: colours,
		Weights: weights,
	}
}

// PaletteFromRows builds a palette from a K x 3 array.
func PaletteFromRows(rows [][]float64) (*Palette, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: palette has no colours", ErrShape)
	}

	colours := make([]Vector, len(rows))
	for i, row := range rows {
		if len(row) != 3 {
			return nil, fmt.Errorf("%w: palette row %d has %d channels, expected 3", ErrShape, i, len(row))
		}
		colours[i] = Vector{row[0], row[1], row[2]}
	}
	return NewPalette(colours), nil
}

// PaletteFromHex builds a palette from hex colour codes such as "#1a2b3c" or "#abc".
func PaletteFromHex(codes []string) (*Palette, error) {
	if len(codes) == 0 {
		return nil, fmt.Errorf("%w: palette has no colours", ErrShape)
	}

	colours := make([]Vector, len(codes))
	for i, code := range codes {
		c, err := colorful.Hex(code)
		if err != nil {
			return nil, fmt.Errorf("invalid colour %q at index %d: %w", code, i, err)
		}
		r, g, b := c.RGB255()
		colours[i] = Vector{float64(r), float64(g), float64(b)}
	}
	return NewPalette(colours), nil
}

// Len returns the number of colours in the palette.
func (p *Palette) Len() int {
	return len(p.Colours)
}

// Get returns the colour at the specified index.
func (p *Palette) Get(index int) (Vector, error) {
	if index < 0 || index >= len(p.Colours) {
		return Vector{}, fmt.Errorf("index out of bounds: %d (palette has %d colours)", index, len(p.Colours))
	}
	return p.Colours[index], nil
}

// All returns an iterator over all colours in the palette.
func (p *Palette) All() func(func(int, Vector) bool) {
	return func(yield func(int, Vector) bool) {
		for i, c := range p.Colours {
			if !yield(i, c) {
				return
			}
		}
	}
}

// Rows returns the palette as a K x 3 array.
func (p *Palette) Rows() [][]float64 {
	rows := make([][]float64, len(p.Colours))
	for i, c := range p.Colours {
		rows[i] = []float64{c[0], c[1], c[2]}
	}
	return rows
}

// ToHex converts the palette colours to hex strings, clamping out-of-range channels.
func (p *Palette) ToHex() []string {
	hex := make([]string, len(p.Colours))
	for i, c := range p.Colours {
		hex[i] = c.Color().Clamped().Hex()
	}
	return hex
}

// ColourJSON represents a colour in JSON output format.
type ColourJSON struct {
	Hex    string     `json:"hex"`
	RGB    [3]float64 `json:"rgb"`
	Weight *float64   `json:"weight,omitempty"`
}

// PaletteJSON represents the palette in JSON format.
type PaletteJSON struct {
	Count   int          `json:"count"`
	Colours []ColourJSON `json:"colours"`
}

// ToJSON converts the palette to JSON format.
func (p *Palette) ToJSON() ([]byte, error) {
	hex := p.ToHex()
	colours := make([]ColourJSON, len(p.Colours))
	for i, c := range p.Colours {
		colours[i] = ColourJSON{
			Hex: hex[i],
			RGB: c,
		}
		if i < len(p.Weights) {
			w := p.Weights[i]
			colours[i].Weight = &w
		}
	}

	return json.MarshalIndent(PaletteJSON{
		Count:   len(p.Colours),
		Colours: colours,
	}, "", "  ")
}

// String returns a human-readable string representation of the palette.
func (p *Palette) String() string {
	if len(p.Colours) == 0 {
		return "Empty palette"
	}

	hex := p.ToHex()
	result := fmt.Sprintf("Palette with %d colours:\n", len(p.Colours))
	for i, c := range p.Colours {
		result += fmt.Sprintf("  %2d: %s (%.1f, %.1f, %.1f)", i+1, hex[i], c[0], c[1], c[2])
		if i < len(p.Weights) {
			result += fmt.Sprintf(" %5.1f%%", p.Weights[i]*100)
		}
		result += "\n"
	}
	return result
}
