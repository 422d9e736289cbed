// Copyright © 2025 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package consensus_test

import (
	"math"
	"reflect"
	"slices"
	"strings"
	"testing"

	"github.com/js-arias/contree/consensus"
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

// cladeKeys returns the clade sets of a tree
// as sorted strings,
// used to compare rooted topologies.
func cladeKeys(t testing.TB, tr *tree.Tree) []string {
	t.Helper()

	var ks []string
	for _, b := range tr.Clades(tr.Taxa()) {
		ks = append(ks, b.String())
	}
	slices.Sort(ks)
	return ks
}

func TestMajority(t *testing.T) {
	f := forest.New(
		newickTree(t, "(A,(B,C));"),
		newickTree(t, "(A,(B,C));"),
		newickTree(t, "((A,B),C);"),
	)

	c, err := consensus.Majority(f, 0.5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := newickTree(t, "(A,(B,C));")
	if got := cladeKeys(t, c); !reflect.DeepEqual(got, cladeKeys(t, want)) {
		t.Errorf("topology: got clades %v, want %v", got, cladeKeys(t, want))
	}

	for id := 0; id < c.Len(); id++ {
		if c.IsTerm(id) {
			continue
		}
		s := c.Support(id)
		if c.IsRoot(id) {
			if s != 1 {
				t.Errorf("root support: got %.3f, want 1.000", s)
			}
			continue
		}
		if math.Abs(s-0.667) > 0.0001 {
			t.Errorf("node %d: got support %.3f, want 0.667", id, s)
		}
	}
}

func TestMajorityIdentical(t *testing.T) {
	f := forest.New(
		newickTree(t, "((A,B),(C,D));"),
		newickTree(t, "((A,B),(C,D));"),
		newickTree(t, "((A,B),(C,D));"),
	)

	c, err := consensus.Majority(f, 1.0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := newickTree(t, "((A,B),(C,D));")
	if got := cladeKeys(t, c); !reflect.DeepEqual(got, cladeKeys(t, want)) {
		t.Errorf("topology: got clades %v, want %v", got, cladeKeys(t, want))
	}
	for id := 0; id < c.Len(); id++ {
		if c.IsTerm(id) {
			continue
		}
		if s := c.Support(id); s != 1 {
			t.Errorf("node %d: got support %.3f, want 1.000", id, s)
		}
	}
}

func TestMajorityStar(t *testing.T) {
	// no group is shared by two trees
	f := forest.New(
		newickTree(t, "((A,B),C,D,E);"),
		newickTree(t, "((A,C),B,D,E);"),
		newickTree(t, "((A,D),B,C,E);"),
	)

	c, err := consensus.Majority(f, 0.5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := c.NumInternal(); got != 1 {
		t.Errorf("internal nodes: got %d, want 1 (a star tree)", got)
	}
	if got := len(c.Children(c.Root())); got != 5 {
		t.Errorf("root children: got %d, want 5", got)
	}
}

func TestGreedy(t *testing.T) {
	f := forest.New(
		newickTree(t, "((A,B),C,D,E);"),
		newickTree(t, "((A,C),B,D,E);"),
		newickTree(t, "((A,D),B,C,E);"),
	)

	m, err := consensus.Majority(f, 0.5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	g, err := consensus.Greedy(f)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if g.NumInternal() < m.NumInternal() {
		t.Errorf("greedy consensus with %d internal nodes, majority has %d", g.NumInternal(), m.NumInternal())
	}

	// only the first group is compatible
	// with the already accepted groups
	if got := g.NumInternal(); got != 2 {
		t.Errorf("internal nodes: got %d, want 2", got)
	}
}

func TestExtendedMajority(t *testing.T) {
	f := forest.New(
		newickTree(t, "(((A,B),C),D,E);"),
		newickTree(t, "(((A,B),C),D,E);"),
		newickTree(t, "((A,B),(D,E),C);"),
	)

	m, err := consensus.Majority(f, 0.5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	e, err := consensus.ExtendedMajority(f, 0.5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if e.NumInternal() < m.NumInternal() {
		t.Errorf("extended consensus with %d internal nodes, majority has %d", e.NumInternal(), m.NumInternal())
	}
	// the minority group (D,E) resolves the polytomy
	if got := e.NumInternal(); got != m.NumInternal()+1 {
		t.Errorf("internal nodes: got %d, want %d", got, m.NumInternal()+1)
	}
}
