package mixture

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distmv"
)

// eps keeps empty components from dividing by zero.
const eps = 10 * 2.220446049250313e-16

// Gaussian is a mixture of multivariate normal components with full covariance.
type Gaussian struct {
	weights    []float64
	logWeights []float64
	means      [][]float64
	components []*distmv.Normal

	iterations int
	converged  bool
	lowerBound float64
}

var _ Model = (*Gaussian)(nil)

// FitGaussian fits a k-component Gaussian mixture to the rows of x.
//
// Responsibilities start from a hard k-means partition. Each EM iteration
// evaluates the mean per-sample log-likelihood under the current parameters and
// then re-estimates them; the loop stops once that value changes by less than
// opts.Tolerance or after opts.MaxIterations.
func FitGaussian(x mat.Matrix, k int, opts Options) (*Gaussian, error) {
	opts = opts.withDefaults()
	points, err := rows(x, k)
	if err != nil {
		return nil, err
	}
	n := len(points)

	km := partition(points, k, opts)
	resp := mat.NewDense(n, k, nil)
	for i, c := range km.assignments(points) {
		resp.Set(i, c, 1)
	}

	g := &Gaussian{lowerBound: math.Inf(-1)}
	if err := g.maximise(points, resp, opts.RegCovar); err != nil {
		return nil, err
	}

	for iter := 1; iter <= opts.MaxIterations; iter++ {
		prev := g.lowerBound
		g.lowerBound = g.expect(points, resp)
		if err := g.maximise(points, resp, opts.RegCovar); err != nil {
			return nil, fmt.Errorf("iteration %d: %w", iter, err)
		}
		g.iterations = iter

		change := g.lowerBound - prev
		opts.Logger.Trace("em iteration", "iteration", iter, "lower_bound", g.lowerBound, "change", change)
		if math.Abs(change) < opts.Tolerance {
			g.converged = true
			break
		}
	}

	if g.converged {
		opts.Logger.Debug("gaussian mixture converged", "k", k, "samples", n,
			"iterations", g.iterations, "lower_bound", g.lowerBound)
	} else {
		opts.Logger.Warn("gaussian mixture did not converge", "k", k, "samples", n,
			"iterations", g.iterations, "tolerance", opts.Tolerance)
	}

	return g, nil
}

// Means returns a copy of the component means.
func (g *Gaussian) Means() [][]float64 {
	out := make([][]float64, len(g.means))
	for i, m := range g.means {
		out[i] = clone(m)
	}
	return out
}

// Weights returns the mixing weights.
func (g *Gaussian) Weights() []float64 {
	return clone(g.weights)
}

// Predict returns the component with the highest weighted log-density at x.
func (g *Gaussian) Predict(x []float64) int {
	best, bestLP := 0, math.Inf(-1)
	for j, c := range g.components {
		if lp := g.logWeights[j] + c.LogProb(x); lp > bestLP {
			best, bestLP = j, lp
		}
	}
	return best
}

// Converged reports whether EM reached the tolerance.
func (g *Gaussian) Converged() bool { return g.converged }

// Iterations returns the number of EM iterations run.
func (g *Gaussian) Iterations() int { return g.iterations }

// LowerBound returns the mean log-likelihood of the last E-step.
func (g *Gaussian) LowerBound() float64 { return g.lowerBound }

// expect fills resp with the posterior component probabilities of every point
// and returns the mean log-likelihood.
func (g *Gaussian) expect(points [][]float64, resp *mat.Dense) float64 {
	k := len(g.components)
	wlp := make([]float64, k)
	total := 0.0

	for i, p := range points {
		for j, c := range g.components {
			wlp[j] = g.logWeights[j] + c.LogProb(p)
		}
		lse := floats.LogSumExp(wlp)
		total += lse

		row := resp.RawRowView(i)
		for j := range row {
			row[j] = math.Exp(wlp[j] - lse)
		}
	}

	return total / float64(len(points))
}

// maximise re-estimates weights, means and covariances from resp.
func (g *Gaussian) maximise(points [][]float64, resp *mat.Dense, reg float64) error {
	n, k := resp.Dims()
	d := len(points[0])
	x := mat.NewDense(n, d, nil)
	for i, p := range points {
		x.SetRow(i, p)
	}

	nk := make([]float64, k)
	col := make([]float64, n)
	for j := range k {
		mat.Col(col, j, resp)
		nk[j] = floats.Sum(col) + eps
	}

	var means mat.Dense
	means.Mul(resp.T(), x)

	g.weights = make([]float64, k)
	g.logWeights = make([]float64, k)
	g.means = make([][]float64, k)
	g.components = make([]*distmv.Normal, k)

	centred := mat.NewDense(d, n, nil)
	for j := range k {
		mu := means.RawRowView(j)
		floats.Scale(1/nk[j], mu)
		g.means[j] = clone(mu)

		mat.Col(col, j, resp)
		for i, p := range points {
			w := math.Sqrt(col[i])
			for c := range d {
				centred.Set(c, i, (p[c]-mu[c])*w)
			}
		}

		var cov mat.SymDense
		cov.SymOuterK(1/nk[j], centred)
		for c := range d {
			cov.SetSym(c, c, cov.At(c, c)+reg)
		}

		normal, ok := distmv.NewNormal(g.means[j], &cov, nil)
		if !ok {
			return fmt.Errorf("%w: component %d", ErrSingular, j)
		}
		g.components[j] = normal

		g.weights[j] = nk[j] / float64(n)
		g.logWeights[j] = math.Log(g.weights[j])
	}

	return nil
}
