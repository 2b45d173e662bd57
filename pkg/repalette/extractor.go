// Package repalette reduces and remaps the colour palette of an image by
// clustering its pixel colours in RGB space.
//
// Extract fits a Gaussian mixture to a fixed-size random sample of pixels and
// labels every pixel with its most probable component. Reduce pulls every pixel
// toward its cluster centre, and Substitute swaps the image's cluster centres
// for a caller-supplied palette while keeping each pixel's offset from its centre.
package repalette

import (
	"errors"
	"fmt"
	"math/rand/v2"

	"github.com/hashicorp/go-hclog"
	"gonum.org/v1/gonum/mat"

	"github.com/jmylchreest/repalette/internal/mixture"
	"github.com/jmylchreest/repalette/internal/sample"
	"github.com/jmylchreest/repalette/internal/seed"
)

// Extractor runs palette extraction and the transforms built on it.
//
// With SeedModeManual or SeedModeContent every call is reproducible and calls on
// the same image agree on cluster labels. An Extractor built with Config.Source
// shares that source between calls and must not be used concurrently.
type Extractor struct {
	config Config
	logger hclog.Logger
	rand   *rand.Rand
}

// NewExtractor creates an Extractor from a validated configuration.
func NewExtractor(config Config) (*Extractor, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	e := &Extractor{
		config: config,
		logger: config.Logger,
	}
	if e.logger == nil {
		e.logger = hclog.NewNullLogger()
	}
	if config.Source != nil {
		e.rand = rand.New(config.Source)
	}
	return e, nil
}

// Config returns the extractor configuration.
func (e *Extractor) Config() Config {
	return e.config
}

// Extract finds the k dominant colours of img and labels every pixel with the
// index of its most probable colour.
//
// The model is fitted on Config.SampleSize pixels drawn without replacement, so
// img must have at least that many pixels and k may not exceed it. The palette
// and label map are always produced together.
func (e *Extractor) Extract(img *Image, k int) (*Palette, *LabelMap, error) {
	if err := img.validate(); err != nil {
		return nil, nil, err
	}
	if err := e.validateClusterCount(k); err != nil {
		return nil, nil, err
	}
	if n := img.Len(); n < e.config.SampleSize {
		return nil, nil, fmt.Errorf("%w: %w: image has %d pixels, sampling needs at least %d",
			ErrShape, ErrFitting, n, e.config.SampleSize)
	}

	r, err := e.randFor(img)
	if err != nil {
		return nil, nil, err
	}

	pixels := img.matrix()
	idx, err := sample.WithoutReplacement(r, img.Len(), e.config.SampleSize)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", ErrFitting, err)
	}
	samples := mat.NewDense(len(idx), 3, nil)
	for i, row := range idx {
		samples.SetRow(i, pixels.RawRowView(row))
	}

	model, err := e.fit(samples, k, r)
	if err != nil {
		return nil, nil, err
	}

	means := model.Means()
	colours := make([]Vector, len(means))
	for i, m := range means {
		colours[i] = Vector{m[0], m[1], m[2]}
	}
	palette := NewPaletteWithWeights(colours, model.Weights())

	labels := &LabelMap{
		Labels: mixture.PredictAll(model, pixels),
		Width:  img.Width,
		Height: img.Height,
	}

	e.logger.Debug("palette extracted", "k", k, "width", img.Width, "height", img.Height,
		"algorithm", e.config.Algorithm, "iterations", model.Iterations(), "converged", model.Converged())
	return palette, labels, nil
}

// validateClusterCount checks k against the sample size.
func (e *Extractor) validateClusterCount(k int) error {
	if k < 1 {
		return fmt.Errorf("%w: cluster count must be at least 1, got %d", ErrFitting, k)
	}
	if k > e.config.SampleSize {
		return fmt.Errorf("%w: cluster count %d exceeds sample size %d", ErrFitting, k, e.config.SampleSize)
	}
	return nil
}

// randFor returns the random source for one call on img.
func (e *Extractor) randFor(img *Image) (*rand.Rand, error) {
	if e.rand != nil {
		return e.rand, nil
	}

	s, err := seed.Calculate(img, seed.Config{
		Mode:  seed.Mode(e.config.Seed.Mode),
		Value: e.config.Seed.Value,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to calculate seed: %w", err)
	}
	e.logger.Trace("seeded extraction", "mode", e.config.Seed.Mode, "seed", s)
	return seed.NewRand(s), nil
}

// fit runs the configured clustering algorithm on the samples.
func (e *Extractor) fit(samples *mat.Dense, k int, r *rand.Rand) (mixture.Model, error) {
	opts := mixture.Options{
		MaxIterations:    e.config.MaxIterations,
		Tolerance:        e.config.Tolerance,
		RegCovar:         e.config.RegCovar,
		KMeansIterations: mixture.DefaultOptions().KMeansIterations,
		Rand:             r,
		Logger:           e.logger.Named("mixture"),
	}

	var (
		model mixture.Model
		err   error
	)
	switch e.config.Algorithm {
	case AlgorithmGMM:
		model, err = mixture.FitGaussian(samples, k, opts)
	case AlgorithmKMeans:
		model, err = mixture.FitKMeans(samples, k, opts)
	default:
		return nil, fmt.Errorf("unknown algorithm: %s (valid algorithms: %v)", e.config.Algorithm, ValidAlgorithms())
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFitting, err)
	}

	if e.config.RequireConvergence && !model.Converged() {
		return nil, fmt.Errorf("%w: %s did not converge within %d iterations",
			ErrFitting, e.config.Algorithm, model.Iterations())
	}
	return model, nil
}

// Extract runs Extractor.Extract with DefaultConfig.
func Extract(img *Image, k int) (*Palette, *LabelMap, error) {
	e, err := NewExtractor(DefaultConfig())
	if err != nil {
		return nil, nil, err
	}
	return e.Extract(img, k)
}

// IsFittingError reports whether err stems from model fitting.
func IsFittingError(err error) bool {
	return errors.Is(err, ErrFitting)
}

// IsShapeError reports whether err stems from malformed input dimensions.
func IsShapeError(err error) bool {
	return errors.Is(err, ErrShape)
}
