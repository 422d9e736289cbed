// Copyright © 2025 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package forest implements an ordered collection
// of gene family trees,
// and its reconciliation
// into a common set of taxa.
package forest

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/js-arias/contree/tree"
)

var (
	// ErrNoCommonTaxa is the error produced
	// when the trees of a forest
	// do not share any taxon.
	ErrNoCommonTaxa = errors.New("no common taxa")

	// ErrEmptyForest is the error produced
	// when no tree of a forest
	// spans a required taxon set.
	ErrEmptyForest = errors.New("empty reconciled forest")
)

// A Forest is an ordered collection of trees.
// The order of the trees is the order
// in which they were read,
// and is kept only for reproducibility.
type Forest struct {
	trees    []*tree.Tree
	warnings []string
}

// New creates a forest from a set of trees.
func New(trees ...*tree.Tree) *Forest {
	return &Forest{trees: slices.Clone(trees)}
}

// Read reads a forest from a reader
// with one tree,
// in newick notation,
// per line.
// Blank lines are skipped
// and not counted as trees.
// Unreadable trees are dropped from the forest
// and reported as warnings.
// It is an error if no tree can be read.
func Read(r io.Reader) (*Forest, error) {
	f := &Forest{}
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 1024*1024), 64*1024*1024)
	for ln := 1; sc.Scan(); ln++ {
		s := strings.TrimSpace(sc.Text())
		if s == "" {
			continue
		}
		t, err := tree.Newick(strings.NewReader(s))
		if err != nil {
			f.warnings = append(f.warnings, fmt.Sprintf("tree at line %d dropped: %v", ln, err))
			continue
		}
		f.trees = append(f.trees, t)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if len(f.trees) == 0 {
		return nil, errors.New("forest: no trees found")
	}
	return f, nil
}

// Len returns the number of trees of the forest.
func (f *Forest) Len() int {
	return len(f.trees)
}

// Tree returns the i-th tree of the forest.
func (f *Forest) Tree(i int) *tree.Tree {
	return f.trees[i]
}

// Trees returns the trees of the forest
// in reading order.
func (f *Forest) Trees() []*tree.Tree {
	return slices.Clone(f.trees)
}

// Warnings returns the reading warnings,
// one per dropped tree.
func (f *Forest) Warnings() []string {
	return slices.Clone(f.warnings)
}

// CommonTaxa returns the taxa shared
// by all trees of the forest,
// sorted alphabetically.
func (f *Forest) CommonTaxa() ([]string, error) {
	if len(f.trees) == 0 {
		return nil, ErrEmptyForest
	}

	count := make(map[string]int)
	for _, t := range f.trees {
		for _, tx := range t.Taxa() {
			count[tx]++
		}
	}
	var common []string
	for tx, c := range count {
		if c == len(f.trees) {
			common = append(common, tx)
		}
	}
	if len(common) == 0 {
		return nil, ErrNoCommonTaxa
	}
	slices.Sort(common)
	return common, nil
}

// Reconcile returns the common taxa of the forest
// and a new forest
// in which every tree is pruned down
// to that common set.
func (f *Forest) Reconcile() ([]string, *Forest, error) {
	common, err := f.CommonTaxa()
	if err != nil {
		return nil, nil, err
	}

	nf := &Forest{}
	for i, t := range f.trees {
		p, err := t.Prune(common)
		if err != nil {
			return nil, nil, fmt.Errorf("forest: tree %d: %v", i, err)
		}
		nf.trees = append(nf.trees, p)
	}
	return common, nf, nil
}

// ReconcileOn returns a new forest
// restricted to a target taxon set:
// any tree that does not span the full target set
// is dropped,
// and the retained trees are pruned down to it.
func (f *Forest) ReconcileOn(taxa []string) (*Forest, error) {
	nf := &Forest{}
	for _, t := range f.trees {
		if !spans(t, taxa) {
			continue
		}
		p, err := t.Prune(taxa)
		if err != nil {
			return nil, err
		}
		nf.trees = append(nf.trees, p)
	}
	if len(nf.trees) == 0 {
		return nil, ErrEmptyForest
	}
	return nf, nil
}

func spans(t *tree.Tree, taxa []string) bool {
	for _, tx := range taxa {
		if _, ok := t.TaxonNode(tx); !ok {
			return false
		}
	}
	return true
}

// A Pair is the result of reconciling two trees
// into their shared taxon set.
type Pair struct {
	// Taxa shared by the two trees,
	// sorted alphabetically.
	Taxa []string

	// The two trees pruned down to the shared taxa.
	A, B *tree.Tree

	// Taxa of one tree absent from the other,
	// sorted alphabetically.
	MissingInA []string
	MissingInB []string
}

// ReconcilePair reconciles two trees
// into their shared taxon set,
// reporting the taxa missing from each side.
// It returns ErrNoCommonTaxa
// if the trees do not share any taxon.
func ReconcilePair(a, b *tree.Tree) (*Pair, error) {
	taxaA := a.Taxa()
	taxaB := b.Taxa()

	var common, missA, missB []string
	for _, tx := range taxaA {
		if _, ok := b.TaxonNode(tx); ok {
			common = append(common, tx)
		} else {
			missB = append(missB, tx)
		}
	}
	for _, tx := range taxaB {
		if _, ok := a.TaxonNode(tx); !ok {
			missA = append(missA, tx)
		}
	}
	if len(common) == 0 {
		return nil, ErrNoCommonTaxa
	}

	pa, err := a.Prune(common)
	if err != nil {
		return nil, err
	}
	pb, err := b.Prune(common)
	if err != nil {
		return nil, err
	}
	return &Pair{
		Taxa:       common,
		A:          pa,
		B:          pb,
		MissingInA: missA,
		MissingInB: missB,
	}, nil
}
