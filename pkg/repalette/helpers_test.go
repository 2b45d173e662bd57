package repalette

import (
	"math/rand/v2"
	"testing"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/require"
)

var quadrantColours = []Vector{
	{200, 30, 30},
	{30, 180, 60},
	{40, 50, 220},
	{230, 220, 40},
}

// quadrants returns a w x h image split into four solid blocks of quadrantColours.
func quadrants(w, h int) *Image {
	img := NewImage(w, h)
	for y := range h {
		for x := range w {
			q := 0
			if x >= w/2 {
				q++
			}
			if y >= h/2 {
				q += 2
			}
			img.SetPixel(x, y, quadrantColours[q])
		}
	}
	return img
}

// noise returns a w x h image of uniformly random integer colours.
func noise(w, h int, s uint64) *Image {
	r := rand.New(rand.NewPCG(s, s))
	img := NewImage(w, h)
	for i := range img.Pix {
		img.Pix[i] = Vector{float64(r.IntN(256)), float64(r.IntN(256)), float64(r.IntN(256))}
	}
	return img
}

// seeded returns an extractor whose every call uses the same manual seed.
func seeded(t *testing.T, value int64, modify ...func(*Config)) *Extractor {
	t.Helper()
	config := DefaultConfig()
	config.Seed = ManualSeed(value)
	config.Logger = hclog.NewNullLogger()
	for _, m := range modify {
		m(&config)
	}
	e, err := NewExtractor(config)
	require.NoError(t, err)
	return e
}

func distinctColours(img *Image) int {
	seen := make(map[Vector]struct{})
	for _, v := range img.Pix {
		seen[v] = struct{}{}
	}
	return len(seen)
}
