package mixture

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// kmeansTolerance is the mean centroid movement below which Lloyd's loop stops.
const kmeansTolerance = 1e-4

// KMeans is a hard partition of the samples around k centroids.
type KMeans struct {
	centroids  [][]float64
	weights    []float64
	iterations int
	converged  bool
}

var _ Model = (*KMeans)(nil)

// FitKMeans partitions the rows of x into k clusters.
// Centroids are seeded with k-means++ and refined with Lloyd iterations.
func FitKMeans(x mat.Matrix, k int, opts Options) (*KMeans, error) {
	opts = opts.withDefaults()
	points, err := rows(x, k)
	if err != nil {
		return nil, err
	}

	km := partition(points, k, opts)
	opts.Logger.Debug("k-means partition complete", "k", k, "samples", len(points),
		"iterations", km.iterations, "converged", km.converged)
	return km, nil
}

// Means returns a copy of the centroids.
func (km *KMeans) Means() [][]float64 {
	out := make([][]float64, len(km.centroids))
	for i, c := range km.centroids {
		out[i] = append([]float64(nil), c...)
	}
	return out
}

// Weights returns the relative cluster sizes.
func (km *KMeans) Weights() []float64 {
	return append([]float64(nil), km.weights...)
}

// Predict returns the index of the nearest centroid.
func (km *KMeans) Predict(x []float64) int {
	return nearest(x, km.centroids)
}

// Converged reports whether assignments settled before the iteration limit.
func (km *KMeans) Converged() bool { return km.converged }

// Iterations returns the number of Lloyd iterations run.
func (km *KMeans) Iterations() int { return km.iterations }

// assignments returns the cluster index of every point.
func (km *KMeans) assignments(points [][]float64) []int {
	labels := make([]int, len(points))
	for i, p := range points {
		labels[i] = nearest(p, km.centroids)
	}
	return labels
}

// partition runs k-means over points.
func partition(points [][]float64, k int, opts Options) *KMeans {
	centroids := initializeCentroidsKMeansPlusPlus(points, k, opts)
	assignments := make([]int, len(points))
	for i := range assignments {
		assignments[i] = -1
	}

	km := &KMeans{}
	for iter := 0; iter < opts.KMeansIterations; iter++ {
		km.iterations = iter + 1

		changed := 0
		for i, point := range points {
			n := nearest(point, centroids)
			if assignments[i] != n {
				assignments[i] = n
				changed++
			}
		}
		if changed == 0 {
			km.converged = true
			break
		}

		newCentroids := recalculateCentroids(points, assignments, k, opts)

		totalMovement := 0.0
		for i := range centroids {
			totalMovement += floats.Distance(centroids[i], newCentroids[i], 2)
		}
		centroids = newCentroids

		if totalMovement/float64(k) < kmeansTolerance {
			km.converged = true
			break
		}
	}

	km.centroids = centroids
	km.weights = make([]float64, k)
	for _, c := range km.assignments(points) {
		km.weights[c]++
	}
	floats.Scale(1/float64(len(points)), km.weights)

	return km
}

// initializeCentroidsKMeansPlusPlus picks each new centroid with probability
// proportional to its squared distance from the nearest existing one.
func initializeCentroidsKMeansPlusPlus(points [][]float64, k int, opts Options) [][]float64 {
	centroids := make([][]float64, 0, k)
	centroids = append(centroids, clone(points[opts.Rand.IntN(len(points))]))

	distances := make([]float64, len(points))
	for len(centroids) < k {
		totalDistance := 0.0
		for i, point := range points {
			d := floats.Distance(point, centroids[nearest(point, centroids)], 2)
			distances[i] = d * d
			totalDistance += distances[i]
		}

		if totalDistance == 0 {
			// Every point already coincides with a centroid; nudge a copy of the
			// last one so the clusters stay distinct.
			next := clone(centroids[len(centroids)-1])
			floats.AddConst(0.1, next)
			centroids = append(centroids, next)
			continue
		}

		target := opts.Rand.Float64() * totalDistance
		cumulative := 0.0
		picked := len(points) - 1
		for i, dist := range distances {
			cumulative += dist
			if cumulative >= target && dist > 0 {
				picked = i
				break
			}
		}
		centroids = append(centroids, clone(points[picked]))
	}

	return centroids
}

// recalculateCentroids moves each centroid to the mean of its points.
// Empty clusters are re-seeded from a random point.
func recalculateCentroids(points [][]float64, assignments []int, k int, opts Options) [][]float64 {
	dims := len(points[0])
	sums := make([][]float64, k)
	for i := range sums {
		sums[i] = make([]float64, dims)
	}
	counts := make([]int, k)

	for i, point := range points {
		floats.Add(sums[assignments[i]], point)
		counts[assignments[i]]++
	}

	for i := range k {
		if counts[i] > 0 {
			floats.Scale(1/float64(counts[i]), sums[i])
		} else {
			sums[i] = clone(points[opts.Rand.IntN(len(points))])
		}
	}

	return sums
}

// nearest returns the index of the centroid closest to point.
func nearest(point []float64, centroids [][]float64) int {
	minDist := math.MaxFloat64
	idx := 0
	for i, c := range centroids {
		if d := floats.Distance(point, c, 2); d < minDist {
			minDist = d
			idx = i
		}
	}
	return idx
}

func clone(v []float64) []float64 {
	return append([]float64(nil), v...)
}
