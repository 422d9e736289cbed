// Copyright © 2025 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package distance_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/js-arias/contree/distance"
	"github.com/js-arias/contree/forest"
	"github.com/js-arias/contree/tree"
)

func newickTree(t testing.TB, s string) *tree.Tree {
	t.Helper()

	tr, err := tree.Newick(strings.NewReader(s))
	if err != nil {
		t.Fatalf("unable to read tree %q: %v", s, err)
	}
	return tr
}

func rf(t testing.TB, a, b *tree.Tree) distance.Comparison {
	t.Helper()

	c, err := distance.RF(a, b)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return c
}

func TestMaxRF(t *testing.T) {
	tests := []struct {
		n    int
		want int
	}{
		{3, 0},
		{4, 2},
		{10, 14},
	}
	for _, test := range tests {
		got, err := distance.MaxRF(test.n)
		if err != nil {
			t.Errorf("n=%d: unexpected error: %v", test.n, err)
			continue
		}
		if got != test.want {
			t.Errorf("n=%d: got %d, want %d", test.n, got, test.want)
		}
	}

	if _, err := distance.MaxRF(2); !errors.Is(err, distance.ErrInsufficientTaxa) {
		t.Errorf("got error %q, want %q", err, distance.ErrInsufficientTaxa)
	}
}

func TestRFIdentical(t *testing.T) {
	a := newickTree(t, "((A,B),((C,D),E));")
	b := newickTree(t, "((A,B),((C,D),E));")

	c := rf(t, a, b)
	if c.RF != 0 {
		t.Errorf("got distance %d, want 0", c.RF)
	}
	if c.Normalized != 0 {
		t.Errorf("got normalized distance %.3f, want 0", c.Normalized)
	}
}

func TestRFDiscordant(t *testing.T) {
	a := newickTree(t, "(A,(B,(C,D)));")
	b := newickTree(t, "(A,(C,(B,D)));")

	c := rf(t, a, b)
	if c.RF != 2 {
		t.Errorf("got distance %d, want 2", c.RF)
	}
	if c.Max != 2 {
		t.Errorf("got maximum distance %d, want 2", c.Max)
	}
	if c.Normalized != 1 {
		t.Errorf("got normalized distance %.3f, want 1", c.Normalized)
	}
}

func TestRFSymmetry(t *testing.T) {
	trees := []string{
		"((A,B),((C,D),E));",
		"((A,C),((B,D),E));",
		"((A,E),((B,C),D));",
		"(A,B,C,D,E);",
	}
	for i, sa := range trees {
		for _, sb := range trees[i:] {
			a := newickTree(t, sa)
			b := newickTree(t, sb)
			ab := rf(t, a, b)
			ba := rf(t, b, a)
			if ab.RF != ba.RF {
				t.Errorf("trees %q %q: distance %d != %d", sa, sb, ab.RF, ba.RF)
			}
		}
	}
}

func TestRFMetric(t *testing.T) {
	trees := []string{
		"((A,B),((C,D),E));",
		"((A,C),((B,D),E));",
		"((A,E),((B,C),D));",
	}
	for _, sa := range trees {
		for _, sb := range trees {
			for _, sc := range trees {
				ab := rf(t, newickTree(t, sa), newickTree(t, sb)).RF
				bc := rf(t, newickTree(t, sb), newickTree(t, sc)).RF
				ac := rf(t, newickTree(t, sa), newickTree(t, sc)).RF
				if ab+bc < ac {
					t.Errorf("triangle inequality: d(%q,%q)+d(%q,%q) = %d < %d", sa, sb, sb, sc, ab+bc, ac)
				}
			}
		}
	}
}

func TestRFNormalizedRange(t *testing.T) {
	trees := []string{
		"((A,B),((C,D),E));",
		"((A,C),((B,D),E));",
		"(A,B,(C,(D,E)));",
	}
	for _, sa := range trees {
		for _, sb := range trees {
			n, err := distance.Normalized(newickTree(t, sa), newickTree(t, sb))
			if err != nil {
				t.Errorf("trees %q %q: unexpected error: %v", sa, sb, err)
				continue
			}
			if n < 0 || n > 1 {
				t.Errorf("trees %q %q: normalized distance %.3f outside [0,1]", sa, sb, n)
			}
		}
	}
}

func TestRFMissingTaxa(t *testing.T) {
	a := newickTree(t, "((A,B),((C,D),E));")
	b := newickTree(t, "((A,C),(B,(D,F)));")

	c := rf(t, a, b)
	if want := []string{"A", "B", "C", "D"}; !equalStrings(c.Taxa, want) {
		t.Errorf("shared taxa: got %v, want %v", c.Taxa, want)
	}
	if want := []string{"F"}; !equalStrings(c.MissingInA, want) {
		t.Errorf("missing in A: got %v, want %v", c.MissingInA, want)
	}
	if want := []string{"E"}; !equalStrings(c.MissingInB, want) {
		t.Errorf("missing in B: got %v, want %v", c.MissingInB, want)
	}
}

func TestRFDegenerate(t *testing.T) {
	a := newickTree(t, "(A,(B,C));")
	b := newickTree(t, "((A,B),C);")

	// raw distance can still be reported
	c := rf(t, a, b)
	if c.RF != 0 {
		t.Errorf("got distance %d, want 0", c.RF)
	}

	if _, err := distance.Normalized(a, b); !errors.Is(err, distance.ErrDegenerateTaxa) {
		t.Errorf("got error %q, want %q", err, distance.ErrDegenerateTaxa)
	}

	x := newickTree(t, "(X,(Y,Z));")
	if _, err := distance.RF(a, x); !errors.Is(err, forest.ErrNoCommonTaxa) {
		t.Errorf("got error %q, want %q", err, forest.ErrNoCommonTaxa)
	}
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i, v := range a {
		if v != b[i] {
			return false
		}
	}
	return true
}
