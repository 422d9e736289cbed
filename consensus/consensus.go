// Copyright © 2025 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package consensus implements consensus trees
// over a forest of gene family trees:
// majority rule,
// greedy,
// and extended majority rule consensus.
//
// All consensus variants use the same procedure:
// group frequencies are counted
// over the reconciled forest,
// and groups are accreted
// in decreasing frequency order,
// keeping a group only if it is compatible
// (i.e. nested or disjoint)
// with every group already kept.
package consensus

import (
	"cmp"
	"fmt"
	"math"
	"slices"

	"github.com/bits-and-blooms/bitset"
	"github.com/js-arias/contree/forest"
	"github.com/js-arias/contree/tree"
)

// A group is a taxon set found
// in one or more trees of a forest.
type group struct {
	b     *bitset.BitSet
	count int

	// first-seen position,
	// used as a stable tie break
	// for equal frequencies
	order int

	freq float64
}

// Majority returns the majority rule consensus tree
// of a forest,
// keeping the groups found in a fraction of the trees
// equal to or greater than the indicated threshold.
// Regions without a majority group
// are left as polytomies.
// Each internal node of the returned tree
// is annotated with the frequency of its group,
// rounded to three decimal places.
func Majority(f *forest.Forest, threshold float64) (*tree.Tree, error) {
	taxa, groups, err := countGroups(f)
	if err != nil {
		return nil, err
	}

	var kept []*group
	for _, g := range groups {
		if g.freq < threshold {
			break
		}
		if isCompatible(kept, g.b) {
			kept = append(kept, g)
		}
	}
	return build(taxa, kept)
}

// Greedy returns the greedy consensus tree of a forest,
// accreting every compatible group
// in decreasing frequency order,
// regardless of its frequency.
// The result is never less resolved
// than the majority rule consensus
// of the same forest.
func Greedy(f *forest.Forest) (*tree.Tree, error) {
	taxa, groups, err := countGroups(f)
	if err != nil {
		return nil, err
	}

	var kept []*group
	for _, g := range groups {
		if isCompatible(kept, g.b) {
			kept = append(kept, g)
		}
	}
	return build(taxa, kept)
}

// ExtendedMajority returns the extended majority rule
// consensus tree of a forest:
// the majority rule skeleton
// at the indicated threshold,
// with its remaining polytomies resolved
// by compatible minority groups
// in decreasing frequency order.
func ExtendedMajority(f *forest.Forest, threshold float64) (*tree.Tree, error) {
	taxa, groups, err := countGroups(f)
	if err != nil {
		return nil, err
	}

	var kept []*group
	var minority []*group
	for _, g := range groups {
		if g.freq < threshold {
			minority = append(minority, g)
			continue
		}
		if isCompatible(kept, g.b) {
			kept = append(kept, g)
		}
	}
	for _, g := range minority {
		if isCompatible(kept, g.b) {
			kept = append(kept, g)
		}
	}
	return build(taxa, kept)
}

// countGroups reconciles a forest
// and counts the frequency of every taxon group
// found on it,
// returning the groups
// sorted by decreasing frequency.
func countGroups(f *forest.Forest) ([]string, []*group, error) {
	taxa, rf, err := f.Reconcile()
	if err != nil {
		return nil, nil, err
	}

	seen := make(map[string]*group)
	var groups []*group
	for _, t := range rf.Trees() {
		for _, b := range t.Clades(taxa) {
			k := b.String()
			if g, ok := seen[k]; ok {
				g.count++
				continue
			}
			g := &group{
				b:     b,
				count: 1,
				order: len(groups),
			}
			seen[k] = g
			groups = append(groups, g)
		}
	}
	for _, g := range groups {
		g.freq = float64(g.count) / float64(rf.Len())
	}

	slices.SortStableFunc(groups, func(a, b *group) int {
		if c := cmp.Compare(b.count, a.count); c != 0 {
			return c
		}
		return cmp.Compare(a.order, b.order)
	})
	return taxa, groups, nil
}

// isCompatible returns true if a group
// is nested in,
// contains,
// or is disjoint with,
// every group of a kept set.
func isCompatible(kept []*group, b *bitset.BitSet) bool {
	for _, g := range kept {
		if g.b.IsSuperSet(b) || b.IsSuperSet(g.b) {
			continue
		}
		if g.b.IntersectionCardinality(b) == 0 {
			continue
		}
		return false
	}
	return true
}

// build makes a consensus tree
// from a compatible set of groups.
// The root spans the whole taxon set
// and is annotated with a support of 1.0.
func build(taxa []string, kept []*group) (*tree.Tree, error) {
	// from the largest to the smallest group,
	// so the parent of any group
	// is always already in the tree
	slices.SortStableFunc(kept, func(a, b *group) int {
		return cmp.Compare(b.b.Count(), a.b.Count())
	})

	t := tree.New()
	root, err := t.Add(-1, "")
	if err != nil {
		return nil, err
	}
	if err := t.SetSupport(root, 1); err != nil {
		return nil, err
	}

	nodes := make([]int, len(kept))
	for i, g := range kept {
		// the last containing group is the smallest one,
		// as compatible groups that share taxa are nested
		parent := root
		for j := i - 1; j >= 0; j-- {
			if kept[j].b.IsSuperSet(g.b) {
				parent = nodes[j]
				break
			}
		}
		id, err := t.Add(parent, "")
		if err != nil {
			return nil, err
		}
		nodes[i] = id

		s := math.Round(g.freq*1000) / 1000
		if math.IsNaN(g.freq) {
			// keep the "no data" sentinel
			s = math.NaN()
		}
		if err := t.SetSupport(id, s); err != nil {
			return nil, err
		}
	}

	for ti, tx := range taxa {
		parent := root
		for j := len(kept) - 1; j >= 0; j-- {
			if kept[j].b.Test(uint(ti)) {
				parent = nodes[j]
				break
			}
		}
		if _, err := t.Add(parent, tx); err != nil {
			return nil, err
		}
	}

	if t.NumInternal() != len(kept)+1 {
		return nil, fmt.Errorf("consensus: internal inconsistency: %d support values for %d internal nodes", len(kept)+1, t.NumInternal())
	}
	return t, nil
}
