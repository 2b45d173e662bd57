// Package sample draws uniform random subsets of row indices.
package sample

import (
	"errors"
	"fmt"
	"math/rand/v2"
)

// ErrPopulationTooSmall is returned when more indices are requested than exist.
var ErrPopulationTooSmall = errors.New("sample larger than population")

// WithoutReplacement returns size distinct indices drawn uniformly from [0, n).
// It runs a partial Fisher-Yates shuffle, so only the first size positions of
// the permutation are ever generated.
func WithoutReplacement(r *rand.Rand, n, size int) ([]int, error) {
	if r == nil {
		return nil, fmt.Errorf("random source cannot be nil")
	}
	if size < 0 {
		return nil, fmt.Errorf("sample size must be non-negative, got %d", size)
	}
	if size > n {
		return nil, fmt.Errorf("%w: cannot draw %d of %d without replacement", ErrPopulationTooSmall, size, n)
	}

	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	for i := range size {
		j := i + r.IntN(n-i)
		idx[i], idx[j] = idx[j], idx[i]
	}

	return idx[:size], nil
}
