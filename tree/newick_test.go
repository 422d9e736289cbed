// Copyright © 2025 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package tree_test

import (
	"bytes"
	"errors"
	"math"
	"reflect"
	"strings"
	"testing"

	"github.com/js-arias/contree/tree"
)

func TestNewick(t *testing.T) {
	tests := map[string]struct {
		in   string
		taxa []string
		out  string
	}{
		"simple": {
			in:   "(A,(B,C));",
			taxa: []string{"A", "B", "C"},
			out:  "(A,(B,C));\n",
		},
		"support and lengths": {
			in:   "(A:1.5,(B:1,C:2)0.667:0.5);",
			taxa: []string{"A", "B", "C"},
			out:  "(A:1.5,(B:1,C:2)0.667:0.5);\n",
		},
		"quoted names": {
			in:   "('Homo sapiens',(B,C));",
			taxa: []string{"B", "C", "Homo sapiens"},
			out:  "('Homo sapiens',(B,C));\n",
		},
		"integer support": {
			in:   "((A,B)95,C,D);",
			taxa: []string{"A", "B", "C", "D"},
			out:  "((A,B)95.000,C,D);\n",
		},
		"support inside a label": {
			in:   "((A,B)'q1=0.850;q2=0.10',C,D);",
			taxa: []string{"A", "B", "C", "D"},
			out:  "((A,B)0.850,C,D);\n",
		},
		"spaces": {
			in:   "( A , ( B , C ) ) ;",
			taxa: []string{"A", "B", "C"},
			out:  "(A,(B,C));\n",
		},
	}

	for name, test := range tests {
		tr, err := tree.Newick(strings.NewReader(test.in))
		if err != nil {
			t.Errorf("%s: unexpected error: %v", name, err)
			continue
		}
		if taxa := tr.Taxa(); !reflect.DeepEqual(taxa, test.taxa) {
			t.Errorf("%s: got taxa %v, want %v", name, taxa, test.taxa)
		}

		var buf bytes.Buffer
		if err := tr.Newick(&buf); err != nil {
			t.Errorf("%s: unexpected error when writing: %v", name, err)
			continue
		}
		if got := buf.String(); got != test.out {
			t.Errorf("%s: got output %q, want %q", name, got, test.out)
		}
	}
}

func TestNewickSupport(t *testing.T) {
	tr, err := tree.Newick(strings.NewReader("(A,(B,C)0.667);"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var found bool
	for id := 0; id < tr.Len(); id++ {
		if tr.IsTerm(id) || tr.IsRoot(id) {
			continue
		}
		found = true
		if s := tr.Support(id); math.Abs(s-0.667) > 0.0001 {
			t.Errorf("node %d: got support %.3f, want 0.667", id, s)
		}
	}
	if !found {
		t.Errorf("expecting an internal node with support")
	}
	if s := tr.Support(tr.Root()); !math.IsNaN(s) {
		t.Errorf("root: got support %.3f, want NaN", s)
	}
}

func TestNewickMalformed(t *testing.T) {
	tests := map[string]string{
		"unbalanced":       "((A,B),C",
		"unexpected close": "(A,B));",
		"duplicated taxon": "(A,(B,A));",
		"empty group":      "();",
		"single child":     "((A));",
		"bad length":       "(A:xx,B);",
		"no name":          "(,B);",
	}
	for name, in := range tests {
		_, err := tree.Newick(strings.NewReader(in))
		if err == nil {
			t.Errorf("%s: expecting error on %q", name, in)
			continue
		}
		if !errors.Is(err, tree.ErrMalformed) {
			t.Errorf("%s: got error %q, want %q", name, err, tree.ErrMalformed)
		}
	}
}
