package repalette

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReduceFullQuantisation(t *testing.T) {
	img := noise(50, 40, 11)
	e := seeded(t, 21)

	palette, labels, err := e.Extract(img, 4)
	require.NoError(t, err)

	out, err := e.Reduce(img, 4, 0)
	require.NoError(t, err)
	require.Equal(t, img.Width, out.Width)
	require.Equal(t, img.Height, out.Height)

	for i, v := range out.Pix {
		want := palette.Colours[labels.Labels[i]].Clamp(ChannelMin, ChannelMax).Trunc()
		require.Equal(t, want, v, "pixel %d", i)
	}
	assert.LessOrEqual(t, distinctColours(out), 4)
}

func TestReduceIdentity(t *testing.T) {
	img := noise(50, 40, 12)

	out, err := seeded(t, 22).Reduce(img, 4, 1)
	require.NoError(t, err)
	assert.Equal(t, img.Pix, out.Pix)
}

func TestReduceBlend(t *testing.T) {
	img := noise(40, 40, 13)
	e := seeded(t, 23, func(c *Config) { c.ReduceOutput = OutputRaw })

	palette, labels, err := e.Extract(img, 3)
	require.NoError(t, err)

	out, err := e.Reduce(img, 3, 0.25)
	require.NoError(t, err)

	for i, p := range img.Pix {
		c := palette.Colours[labels.Labels[i]]
		for ch := range 3 {
			require.InDelta(t, 0.25*p[ch]+0.75*c[ch], out.Pix[i][ch], 1e-9)
		}
	}
}

func TestReduceIdempotent(t *testing.T) {
	e := seeded(t, 24)

	once, err := e.Reduce(noise(50, 40, 14), 5, 0)
	require.NoError(t, err)
	twice, err := e.Reduce(once, 5, 0)
	require.NoError(t, err)

	assert.LessOrEqual(t, distinctColours(once), 5)
	assert.LessOrEqual(t, distinctColours(twice), 5)
}

func TestReduceOutputIsClampedIntegers(t *testing.T) {
	var warnings []RangeWarning
	e := seeded(t, 25, func(c *Config) {
		c.OnWarning = func(w RangeWarning) { warnings = append(warnings, w) }
	})

	out, err := e.Reduce(noise(50, 40, 15), 3, 3)
	require.NoError(t, err)

	for _, v := range out.Pix {
		require.True(t, v.InRange(ChannelMin, ChannelMax))
		require.Equal(t, v.Trunc(), v)
	}

	require.Len(t, warnings, 1)
	assert.Equal(t, "reduce", warnings[0].Operation)
	assert.True(t, warnings[0].SpreadOutOfRange)
	assert.Positive(t, warnings[0].OutOfRange)
}

func TestReduceNaNSpread(t *testing.T) {
	img := noise(50, 40, 16)
	var warnings []RangeWarning
	e := seeded(t, 29, func(c *Config) {
		c.OnWarning = func(w RangeWarning) { warnings = append(warnings, w) }
	})

	out, err := e.Reduce(img, 4, math.NaN())
	require.NoError(t, err)
	for i, v := range out.Pix {
		require.Equal(t, Vector{}, v, "pixel %d", i)
	}

	require.Len(t, warnings, 1)
	assert.True(t, warnings[0].SpreadOutOfRange)
	assert.Equal(t, 3*img.Len(), warnings[0].OutOfRange)
}

func TestReduceNoWarningInRange(t *testing.T) {
	called := false
	e := seeded(t, 26, func(c *Config) {
		c.OnWarning = func(RangeWarning) { called = true }
	})

	_, err := e.Reduce(quadrants(40, 40), 4, 0.5)
	require.NoError(t, err)
	assert.False(t, called)
}

func TestReduceDoesNotModifyInput(t *testing.T) {
	img := quadrants(40, 40)
	before := img.Clone()

	out, err := seeded(t, 27).Reduce(img, 2, 0)
	require.NoError(t, err)
	assert.Equal(t, before, img)
	assert.NotSame(t, img, out)
}

func TestReduceErrors(t *testing.T) {
	e := seeded(t, 28)

	_, err := e.Reduce(quadrants(20, 20), 4, 0)
	assert.ErrorIs(t, err, ErrFitting)
	assert.ErrorIs(t, err, ErrShape)

	_, err = e.Reduce(quadrants(40, 40), 0, 0)
	assert.ErrorIs(t, err, ErrFitting)

	_, err = Reduce(nil, 4, 0)
	assert.ErrorIs(t, err, ErrShape)
}
