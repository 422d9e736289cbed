// Copyright © 2025 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package distance implements the Robinson-Foulds
// topological distance between two trees,
// after reconciling them
// into their shared taxon set.
package distance

import (
	"errors"
	"math"

	"github.com/js-arias/contree/forest"
	"github.com/js-arias/contree/tree"
)

var (
	// ErrInsufficientTaxa is the error produced
	// when asking for the maximum distance
	// of less than three taxa.
	ErrInsufficientTaxa = errors.New("insufficient taxa")

	// ErrDegenerateTaxa is the error produced
	// when asking for a normalized distance
	// over less than four shared taxa,
	// for which every tree is a star
	// and the maximum distance is not positive.
	ErrDegenerateTaxa = errors.New("degenerate taxon set")
)

// MaxRF returns the theoretical maximum
// Robinson-Foulds distance
// for two fully resolved unrooted trees
// of n shared taxa,
// that is 2*(n-3).
func MaxRF(n int) (int, error) {
	if n < 3 {
		return 0, ErrInsufficientTaxa
	}
	return 2 * (n - 3), nil
}

// A Comparison is the result of a pairwise
// Robinson-Foulds comparison.
type Comparison struct {
	// Taxa shared by the two trees.
	Taxa []string

	// Taxa of one tree absent from the other.
	MissingInA []string
	MissingInB []string

	// RF is the raw Robinson-Foulds distance,
	// the size of the symmetric difference
	// of the bipartition sets of the two trees.
	RF int

	// Max is the theoretical maximum distance
	// for the shared taxa,
	// or zero if there are less than three.
	Max int

	// Normalized is RF divided by Max,
	// or NaN if the shared taxon set
	// is too small to normalize.
	Normalized float64
}

// RF returns the Robinson-Foulds comparison
// of two trees:
// the trees are reconciled
// into their shared taxon set,
// unrooted,
// and their bipartition sets compared.
// The comparison is symmetric on its arguments.
func RF(a, b *tree.Tree) (Comparison, error) {
	p, err := forest.ReconcilePair(a, b)
	if err != nil {
		return Comparison{}, err
	}

	sa := p.A.Unroot().Splits(p.Taxa)
	sb := p.B.Unroot().Splits(p.Taxa)

	d := 0
	for k := range sa {
		if _, ok := sb[k]; !ok {
			d++
		}
	}
	for k := range sb {
		if _, ok := sa[k]; !ok {
			d++
		}
	}

	c := Comparison{
		Taxa:       p.Taxa,
		MissingInA: p.MissingInA,
		MissingInB: p.MissingInB,
		RF:         d,
		Normalized: math.NaN(),
	}
	if max, err := MaxRF(len(p.Taxa)); err == nil {
		c.Max = max
		if max > 0 {
			c.Normalized = float64(d) / float64(max)
		}
	}
	return c, nil
}

// Normalized returns the normalized Robinson-Foulds
// distance between two trees,
// in the range [0, 1].
// It returns ErrDegenerateTaxa
// if the trees share less than four taxa.
func Normalized(a, b *tree.Tree) (float64, error) {
	c, err := RF(a, b)
	if err != nil {
		return 0, err
	}
	if len(c.Taxa) < 4 {
		return 0, ErrDegenerateTaxa
	}
	return c.Normalized, nil
}
