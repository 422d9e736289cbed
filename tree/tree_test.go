// Copyright © 2025 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package tree_test

import (
	"bytes"
	"reflect"
	"slices"
	"strings"
	"testing"

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

func newickString(t testing.TB, tr *tree.Tree) string {
	t.Helper()

	var buf bytes.Buffer
	if err := tr.Newick(&buf); err != nil {
		t.Fatalf("unable to write tree: %v", err)
	}
	return strings.TrimSpace(buf.String())
}

func TestTree(t *testing.T) {
	tr := newickTree(t, "((A,B),(C,(D,E)));")

	if got := tr.Len(); got != 9 {
		t.Errorf("len: got %d nodes, want %d", got, 9)
	}
	if got := tr.NumInternal(); got != 4 {
		t.Errorf("internal nodes: got %d, want %d", got, 4)
	}
	if !tr.Rooted() {
		t.Errorf("tree should be rooted")
	}
	want := []string{"A", "B", "C", "D", "E"}
	if got := tr.Taxa(); !reflect.DeepEqual(got, want) {
		t.Errorf("taxa: got %v, want %v", got, want)
	}

	for _, tx := range want {
		id, ok := tr.TaxonNode(tx)
		if !ok {
			t.Errorf("taxon %q: not found", tx)
			continue
		}
		if !tr.IsTerm(id) {
			t.Errorf("taxon %q: node %d should be a terminal", tx, id)
		}
		if got := tr.Taxon(id); got != tx {
			t.Errorf("taxon node %d: got %q, want %q", id, got, tx)
		}
	}

	// children-parent consistency
	for id := 0; id < tr.Len(); id++ {
		for _, c := range tr.Children(id) {
			if p := tr.Parent(c); p != id {
				t.Errorf("node %d: got parent %d, want %d", c, p, id)
			}
		}
	}
	if p := tr.Parent(tr.Root()); p != -1 {
		t.Errorf("root parent: got %d, want -1", p)
	}
}

func TestPrune(t *testing.T) {
	tests := map[string]struct {
		in   string
		keep []string
		out  string
	}{
		"collapse degree two": {
			in:   "((A,B),(C,(D,E)));",
			keep: []string{"A", "C", "D"},
			out:  "(A,(C,D));",
		},
		"root collapse": {
			in:   "((A,B),C);",
			keep: []string{"A", "B"},
			out:  "(A,B);",
		},
		"ignore unknown taxa": {
			in:   "((A,B),(C,D));",
			keep: []string{"A", "B", "C", "D", "X"},
			out:  "((A,B),(C,D));",
		},
	}

	for name, test := range tests {
		tr := newickTree(t, test.in)
		p, err := tr.Prune(test.keep)
		if err != nil {
			t.Errorf("%s: unexpected error: %v", name, err)
			continue
		}
		if got := newickString(t, p); got != test.out {
			t.Errorf("%s: got %q, want %q", name, got, test.out)
		}
	}

	tr := newickTree(t, "(A,(B,C));")
	if _, err := tr.Prune([]string{"X", "Y"}); err == nil {
		t.Errorf("prune: expecting error when no taxa are shared")
	}
}

func TestPruneLengths(t *testing.T) {
	tr := newickTree(t, "((A:1,B:1):1,(C:1,(D:2,E:2):3):1);")
	p, err := tr.Prune([]string{"A", "C", "D"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// the branch of D keeps the length
	// of its collapsed parent
	id, ok := p.TaxonNode("D")
	if !ok {
		t.Fatalf("taxon D not found")
	}
	if got := p.Length(id); got != 5 {
		t.Errorf("taxon D: got branch length %.1f, want %.1f", got, 5.0)
	}
}

func TestUnroot(t *testing.T) {
	tr := newickTree(t, "((A,B),(C,D));")
	u := tr.Unroot()

	if u.Rooted() {
		t.Errorf("unroot: tree should not be rooted")
	}
	if got := u.NumInternal(); got != 2 {
		t.Errorf("unroot: got %d internal nodes, want %d", got, 2)
	}
	if got := newickString(t, u); got != "(A,B,(C,D));" {
		t.Errorf("unroot: got %q, want %q", got, "(A,B,(C,D));")
	}

	// an already unrooted tree is just copied
	b := newickTree(t, "(A,B,(C,D));")
	if got := newickString(t, b.Unroot()); got != "(A,B,(C,D));" {
		t.Errorf("unroot: got %q, want %q", got, "(A,B,(C,D));")
	}
}

func TestSplits(t *testing.T) {
	taxa := []string{"A", "B", "C", "D", "E"}

	tr := newickTree(t, "((A,B),(C,(D,E)));")
	sp := tr.Unroot().Splits(taxa)
	if len(sp) != 2 {
		t.Errorf("splits: got %d, want %d", len(sp), 2)
	}

	// the same splits from a different rooting
	other := newickTree(t, "(C,(D,E),(A,B));")
	so := other.Splits(taxa)
	if !reflect.DeepEqual(keys(sp), keys(so)) {
		t.Errorf("splits: got %v, want %v", keys(so), keys(sp))
	}

	// a star tree has no splits
	star := newickTree(t, "(A,B,C,D,E);")
	if sp := star.Splits(taxa); len(sp) != 0 {
		t.Errorf("star splits: got %d, want 0", len(sp))
	}
}

func keys[T any](m map[string]T) []string {
	var ks []string
	for k := range m {
		ks = append(ks, k)
	}
	slices.Sort(ks)
	return ks
}
