// Package mixture fits clustering models to small sets of colour samples and
// classifies points against them.
//
// Two models are provided: a Gaussian mixture with full covariance matrices,
// fitted by expectation-maximisation and initialised from a k-means partition,
// and the plain k-means partition itself.
package mixture

import (
	"errors"
	"fmt"
	"math/rand/v2"

	"github.com/hashicorp/go-hclog"
	"gonum.org/v1/gonum/mat"
)

var (
	// ErrInvalidK is returned when the component count is not in [1, samples].
	ErrInvalidK = errors.New("invalid component count")
	// ErrEmpty is returned when there are no samples to fit.
	ErrEmpty = errors.New("no samples")
	// ErrSingular is returned when a component covariance is not positive definite.
	ErrSingular = errors.New("covariance is not positive definite")
)

// Model is a fitted clustering model.
type Model interface {
	// Means returns one centre per component.
	Means() [][]float64
	// Weights returns the fraction of the training samples owned by each component.
	Weights() []float64
	// Predict returns the index of the most probable component for x.
	Predict(x []float64) int
	// Converged reports whether fitting stopped before its iteration limit.
	Converged() bool
	// Iterations returns the number of iterations run while fitting.
	Iterations() int
}

// Options controls model fitting.
type Options struct {
	// MaxIterations bounds the expectation-maximisation loop.
	MaxIterations int
	// Tolerance is the change in mean log-likelihood below which EM stops.
	Tolerance float64
	// RegCovar is added to every covariance diagonal.
	RegCovar float64
	// KMeansIterations bounds the Lloyd loop used for k-means and initialisation.
	KMeansIterations int
	// Rand drives k-means++ seeding and empty-cluster recovery.
	Rand *rand.Rand
	Logger hclog.Logger
}

// DefaultOptions returns the default fitting options.
func DefaultOptions() Options {
	return Options{
		MaxIterations:    100,
		Tolerance:        1e-3,
		RegCovar:         1e-6,
		KMeansIterations: 300,
	}
}

func (o Options) withDefaults() Options {
	def := DefaultOptions()
	if o.MaxIterations <= 0 {
		o.MaxIterations = def.MaxIterations
	}
	if o.Tolerance <= 0 {
		o.Tolerance = def.Tolerance
	}
	if o.RegCovar < 0 {
		o.RegCovar = def.RegCovar
	}
	if o.KMeansIterations <= 0 {
		o.KMeansIterations = def.KMeansIterations
	}
	if o.Rand == nil {
		// #nosec G404 -- clustering does not need a cryptographic source
		o.Rand = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	if o.Logger == nil {
		o.Logger = hclog.NewNullLogger()
	}
	return o
}

// PredictAll classifies every row of x.
func PredictAll(m Model, x mat.Matrix) []int {
	n, d := x.Dims()
	labels := make([]int, n)
	row := make([]float64, d)
	for i := range n {
		mat.Row(row, i, x)
		labels[i] = m.Predict(row)
	}
	return labels
}

// rows validates x against k and copies it into a slice of points.
func rows(x mat.Matrix, k int) ([][]float64, error) {
	if x == nil {
		return nil, ErrEmpty
	}
	n, d := x.Dims()
	if n == 0 || d == 0 {
		return nil, ErrEmpty
	}
	if k < 1 || k > n {
		return nil, fmt.Errorf("%w: %d components for %d samples", ErrInvalidK, k, n)
	}

	points := make([][]float64, n)
	for i := range n {
		points[i] = mat.Row(nil, i, x)
	}
	return points, nil
}
