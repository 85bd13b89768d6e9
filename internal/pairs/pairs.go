// internal/pairs/pairs.go
package pairs

import (
	"errors"
	"fmt"
)

// ErrPathwayNotFound is returned when a named pathway is absent from a
// genotype's pathway list.
var ErrPathwayNotFound = errors.New("pathway not found")

// Pair is an unordered pair of zero-based pathway indices selected for
// an interaction test.
type Pair struct {
	I, J int
}

// Token renders the pair as the single argv token understood by the
// external tool, e.g. "-e 0 2". Both indices travel in one token; this
// is the only place the encoding lives.
func (p Pair) Token() string {
	return fmt.Sprintf("-e %d %d", p.I, p.J)
}

// Combinations returns every pair (i, j) with 0 <= i < j < n in
// lexicographic order. n < 2 yields no pairs.
func Combinations(n int) []Pair {
	if n < 2 {
		return nil
	}
	out := make([]Pair, 0, n*(n-1)/2)
	for i := 0; i < n-1; i++ {
		for j := i + 1; j < n; j++ {
			out = append(out, Pair{I: i, J: j})
		}
	}
	return out
}

// Named returns the indices of first and second within pathways, in
// that order. Index order follows name order, so I > J is possible.
func Named(pathways []string, first, second string) (Pair, error) {
	i, err := indexOf(pathways, first)
	if err != nil {
		return Pair{}, err
	}
	j, err := indexOf(pathways, second)
	if err != nil {
		return Pair{}, err
	}
	return Pair{I: i, J: j}, nil
}

func indexOf(pathways []string, name string) (int, error) {
	for i, p := range pathways {
		if p == name {
			return i, nil
		}
	}
	return 0, fmt.Errorf("%q: %w", name, ErrPathwayNotFound)
}
