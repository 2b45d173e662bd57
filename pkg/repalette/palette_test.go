package repalette

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPalette(t *testing.T) {
	palette := NewPalette([]Vector{
		{255, 0, 0},
		{0, 255, 0},
		{0, 0, 255},
	})

	require.NotNil(t, palette)
	assert.Equal(t, 3, palette.Len())
	assert.Nil(t, palette.Weights)
}

func TestPaletteFromRows(t *testing.T) {
	tests := []struct {
		name    string
		rows    [][]float64
		want    int
		wantErr bool
	}{
		{name: "empty palette", rows: nil, wantErr: true},
		{name: "single colour", rows: [][]float64{{255, 0, 0}}, want: 1},
		{name: "multiple colours", rows: [][]float64{{255, 0, 0}, {0, 255, 0}, {0, 0, 255}}, want: 3},
		{name: "short row", rows: [][]float64{{255, 0, 0}, {0, 255}}, wantErr: true},
		{name: "long row", rows: [][]float64{{255, 0, 0, 1}}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			palette, err := PaletteFromRows(tt.rows)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrShape)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, palette.Len())
			assert.Equal(t, tt.rows, palette.Rows())
		})
	}
}

func TestPaletteFromHex(t *testing.T) {
	palette, err := PaletteFromHex([]string{"#ff0000", "#00ff00", "#abc"})
	require.NoError(t, err)

	assert.Equal(t, []Vector{{255, 0, 0}, {0, 255, 0}, {170, 187, 204}}, palette.Colours)

	_, err = PaletteFromHex([]string{"#ff0000", "not-a-colour"})
	assert.Error(t, err)

	_, err = PaletteFromHex(nil)
	assert.ErrorIs(t, err, ErrShape)
}

func TestPaletteToHex(t *testing.T) {
	tests := []struct {
		name   string
		colour Vector
		want   string
	}{
		{name: "red", colour: Vector{255, 0, 0}, want: "#ff0000"},
		{name: "white", colour: Vector{255, 255, 255}, want: "#ffffff"},
		{name: "black", colour: Vector{0, 0, 0}, want: "#000000"},
		{name: "fractional", colour: Vector{26.2, 43, 59.9}, want: "#1a2b3c"},
		{name: "out of range is clamped", colour: Vector{-20, 300, 128}, want: "#00ff80"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NewPalette([]Vector{tt.colour}).ToHex()
			assert.Equal(t, []string{tt.want}, got)
		})
	}
}

func TestPaletteToJSON(t *testing.T) {
	palette := NewPaletteWithWeights([]Vector{{255, 0, 0}, {0, 0, 255}}, []float64{0.75, 0.25})

	data, err := palette.ToJSON()
	require.NoError(t, err)

	var decoded PaletteJSON
	require.NoError(t, json.Unmarshal(data, &decoded))

	assert.Equal(t, 2, decoded.Count)
	require.Len(t, decoded.Colours, 2)
	assert.Equal(t, "#ff0000", decoded.Colours[0].Hex)
	assert.Equal(t, [3]float64{0, 0, 255}, decoded.Colours[1].RGB)
	require.NotNil(t, decoded.Colours[1].Weight)
	assert.InDelta(t, 0.25, *decoded.Colours[1].Weight, 1e-12)

	data, err = NewPalette([]Vector{{1, 2, 3}}).ToJSON()
	require.NoError(t, err)
	assert.NotContains(t, string(data), "weight")
}

func TestPaletteString(t *testing.T) {
	assert.Equal(t, "Empty palette", NewPalette(nil).String())

	s := NewPaletteWithWeights([]Vector{{255, 0, 0}}, []float64{1}).String()
	assert.True(t, strings.HasPrefix(s, "Palette with 1 colours:"))
	assert.Contains(t, s, "#ff0000")
	assert.Contains(t, s, "100.0%")
}

func TestPaletteGet(t *testing.T) {
	palette := NewPalette([]Vector{{255, 0, 0}, {0, 255, 0}})

	got, err := palette.Get(1)
	require.NoError(t, err)
	assert.Equal(t, Vector{0, 255, 0}, got)

	_, err = palette.Get(-1)
	assert.Error(t, err)
	_, err = palette.Get(2)
	assert.Error(t, err)
}

func TestPaletteAll(t *testing.T) {
	palette := NewPalette(quadrantColours)

	var seen []int
	for i, c := range palette.All() {
		assert.Equal(t, quadrantColours[i], c)
		seen = append(seen, i)
		if i == 2 {
			break
		}
	}
	assert.Equal(t, []int{0, 1, 2}, seen)
}
