// Copyright © 2025 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package tree implements leaf-labeled phylogenetic trees
// stored as an arena of indexed nodes.
//
// Trees are built once
// and treated as immutable afterwards:
// operations such as pruning or unrooting
// return newly constructed trees.
package tree

import (
	"errors"
	"fmt"
	"math"
	"slices"

	"github.com/bits-and-blooms/bitset"
	"github.com/js-arias/timetree"
)

// ErrMalformed is the error produced
// when reading an invalid tree,
// either with an unbalanced topology
// or with duplicate taxon names.
var ErrMalformed = errors.New("malformed topology")

// A node is a node of a tree.
// Terminal nodes have a taxon name
// and no children.
type node struct {
	parent   int
	children []int
	taxon    string

	// support for the split of the node,
	// NaN means no data
	support float64

	// length of the branch to the parent,
	// NaN means no length assigned
	length float64
}

// A Tree is a rooted leaf-labeled tree.
// Node identifiers are assigned in preorder,
// so the root is always node 0.
type Tree struct {
	nodes []node
	taxa  map[string]int
}

// New creates a new empty tree.
func New() *Tree {
	return &Tree{
		taxa: make(map[string]int),
	}
}

// Add adds a new node as a child of the indicated node
// and returns the identifier of the added node.
// The first added node must use -1 as its parent
// and will be the root of the tree.
// If taxon is non-empty the node will be a terminal.
// It is an error to add a child to a terminal node
// or to repeat a taxon name inside the tree.
func (t *Tree) Add(parent int, taxon string) (int, error) {
	if parent < 0 {
		if len(t.nodes) > 0 {
			return 0, errors.New("tree: root already defined")
		}
	} else {
		if parent >= len(t.nodes) {
			return 0, fmt.Errorf("tree: invalid parent node %d", parent)
		}
		if t.nodes[parent].taxon != "" {
			return 0, fmt.Errorf("tree: parent node %d is a terminal", parent)
		}
	}
	if taxon != "" {
		if _, dup := t.taxa[taxon]; dup {
			return 0, fmt.Errorf("tree: %w: repeated taxon %q", ErrMalformed, taxon)
		}
	}

	id := len(t.nodes)
	t.nodes = append(t.nodes, node{
		parent:  parent,
		taxon:   taxon,
		support: math.NaN(),
		length:  math.NaN(),
	})
	if parent >= 0 {
		t.nodes[parent].children = append(t.nodes[parent].children, id)
	}
	if taxon != "" {
		t.taxa[taxon] = id
	}
	return id, nil
}

// Children returns the identifiers of the children
// of the indicated node.
func (t *Tree) Children(id int) []int {
	if id < 0 || id >= len(t.nodes) {
		return nil
	}
	return slices.Clone(t.nodes[id].children)
}

// IsRoot returns true if the indicated node
// is the root of the tree.
func (t *Tree) IsRoot(id int) bool {
	return id == 0 && len(t.nodes) > 0
}

// IsTerm returns true if the indicated node
// is a terminal of the tree.
func (t *Tree) IsTerm(id int) bool {
	if id < 0 || id >= len(t.nodes) {
		return false
	}
	return len(t.nodes[id].children) == 0
}

// Len returns the number of nodes of the tree.
func (t *Tree) Len() int {
	return len(t.nodes)
}

// Length returns the length of the branch
// between the indicated node and its parent.
// It returns NaN if the branch has no defined length.
func (t *Tree) Length(id int) float64 {
	if id < 0 || id >= len(t.nodes) {
		return math.NaN()
	}
	return t.nodes[id].length
}

// SetLength sets the length of the branch
// between the indicated node and its parent.
func (t *Tree) SetLength(id int, v float64) error {
	if id < 0 || id >= len(t.nodes) {
		return fmt.Errorf("tree: invalid node %d", id)
	}
	if v < 0 {
		return fmt.Errorf("tree: node %d: negative branch length", id)
	}
	t.nodes[id].length = v
	return nil
}

// NumInternal returns the number of internal
// (i.e. non terminal) nodes of the tree.
func (t *Tree) NumInternal() int {
	n := 0
	for _, nd := range t.nodes {
		if len(nd.children) > 0 {
			n++
		}
	}
	return n
}

// Parent returns the identifier of the parent
// of the indicated node,
// or -1 for the root.
func (t *Tree) Parent(id int) int {
	if id < 0 || id >= len(t.nodes) {
		return -1
	}
	return t.nodes[id].parent
}

// Root returns the identifier of the root node.
func (t *Tree) Root() int {
	return 0
}

// Rooted returns true if the tree root is resolved,
// that is,
// it has exactly two children.
func (t *Tree) Rooted() bool {
	if len(t.nodes) == 0 {
		return false
	}
	return len(t.nodes[0].children) == 2
}

// Support returns the support value stored
// for the indicated node.
// It returns NaN if the node has no support data.
func (t *Tree) Support(id int) float64 {
	if id < 0 || id >= len(t.nodes) {
		return math.NaN()
	}
	return t.nodes[id].support
}

// SetSupport sets the support value
// of an internal node.
func (t *Tree) SetSupport(id int, v float64) error {
	if id < 0 || id >= len(t.nodes) {
		return fmt.Errorf("tree: invalid node %d", id)
	}
	if t.IsTerm(id) {
		return fmt.Errorf("tree: node %d: support on a terminal", id)
	}
	t.nodes[id].support = v
	return nil
}

// Taxa returns the taxon names of the tree terminals
// sorted alphabetically.
func (t *Tree) Taxa() []string {
	taxa := make([]string, 0, len(t.taxa))
	for tx := range t.taxa {
		taxa = append(taxa, tx)
	}
	slices.Sort(taxa)
	return taxa
}

// Taxon returns the taxon name of a terminal node,
// or an empty string for internal nodes.
func (t *Tree) Taxon(id int) string {
	if id < 0 || id >= len(t.nodes) {
		return ""
	}
	return t.nodes[id].taxon
}

// TaxonNode returns the identifier of the terminal
// with the indicated taxon name.
func (t *Tree) TaxonNode(taxon string) (int, bool) {
	id, ok := t.taxa[taxon]
	return id, ok
}

// A pNode is a detached node used when rebuilding a tree,
// for example while pruning or unrooting.
type pNode struct {
	taxon    string
	support  float64
	length   float64
	children []*pNode
}

// detach makes a pNode copy of the subtree
// of the indicated node.
func (t *Tree) detach(id int) *pNode {
	n := &pNode{
		taxon:   t.nodes[id].taxon,
		support: t.nodes[id].support,
		length:  t.nodes[id].length,
	}
	for _, c := range t.nodes[id].children {
		n.children = append(n.children, t.detach(c))
	}
	return n
}

// attach copies a pNode and its descendants
// into the arena of a tree.
func (t *Tree) attach(parent int, n *pNode) error {
	id, err := t.Add(parent, n.taxon)
	if err != nil {
		return err
	}
	t.nodes[id].support = n.support
	t.nodes[id].length = n.length
	for _, c := range n.children {
		if err := t.attach(id, c); err != nil {
			return err
		}
	}
	return nil
}

// addLength adds two branch lengths
// taking a NaN value as "no length".
func addLength(a, b float64) float64 {
	if math.IsNaN(a) {
		return b
	}
	if math.IsNaN(b) {
		return a
	}
	return a + b
}

// Prune returns the induced subtree
// that keeps only the indicated taxa,
// collapsing any internal node
// left with a single descendant.
// Taxa not present in the tree are ignored.
// It returns an error if no taxon is shared
// between the tree and the given set.
func (t *Tree) Prune(taxa []string) (*Tree, error) {
	keep := make(map[string]bool, len(taxa))
	shared := 0
	for _, tx := range taxa {
		keep[tx] = true
		if _, ok := t.taxa[tx]; ok {
			shared++
		}
	}
	if shared == 0 {
		return nil, errors.New("tree: prune: no taxa to keep")
	}

	p := t.pruneNode(0, keep)
	nt := New()
	if err := nt.attach(-1, p); err != nil {
		return nil, err
	}
	nt.nodes[0].length = math.NaN()
	return nt, nil
}

// pruneNode returns the pruned copy of a subtree,
// or nil if the subtree has no kept taxa.
func (t *Tree) pruneNode(id int, keep map[string]bool) *pNode {
	nd := t.nodes[id]
	if len(nd.children) == 0 {
		if !keep[nd.taxon] {
			return nil
		}
		return &pNode{
			taxon:   nd.taxon,
			support: nd.support,
			length:  nd.length,
		}
	}

	var children []*pNode
	for _, c := range nd.children {
		if p := t.pruneNode(c, keep); p != nil {
			children = append(children, p)
		}
	}
	if len(children) == 0 {
		return nil
	}
	if len(children) == 1 {
		// collapse a degree two node
		c := children[0]
		c.length = addLength(c.length, nd.length)
		return c
	}
	return &pNode{
		support:  nd.support,
		length:   nd.length,
		children: children,
	}
}

// Unroot returns an unrooted copy of the tree:
// if the root has exactly two children,
// it is collapsed into a basal polytomy,
// joining the lengths of the two root branches.
// Trees with a basal polytomy are returned
// as simple copies.
func (t *Tree) Unroot() *Tree {
	nt := New()
	if len(t.nodes) == 0 {
		return nt
	}

	r := t.detach(0)
	if len(r.children) == 2 {
		in := -1
		for i, c := range r.children {
			if c.taxon == "" {
				in = i
				break
			}
		}
		if in >= 0 {
			c := r.children[in]
			other := r.children[1-in]
			other.length = addLength(other.length, c.length)
			r = &pNode{
				support:  math.NaN(),
				length:   math.NaN(),
				children: append(c.children, other),
			}
		}
	}
	if err := nt.attach(-1, r); err != nil {
		// detached copies of a valid tree always re-attach
		panic(err)
	}
	return nt
}

// taxaBits returns the set of taxa
// descending from the indicated node,
// as a bitset over the indices of the taxa slice.
// Taxa outside the slice are ignored.
func (t *Tree) taxaBits(id int, index map[string]uint, n uint) *bitset.BitSet {
	b := bitset.New(n)
	t.fillBits(id, index, b)
	return b
}

func (t *Tree) fillBits(id int, index map[string]uint, b *bitset.BitSet) {
	nd := t.nodes[id]
	if len(nd.children) == 0 {
		if i, ok := index[nd.taxon]; ok {
			b.Set(i)
		}
		return
	}
	for _, c := range nd.children {
		t.fillBits(c, index, b)
	}
}

// TaxaIndex returns a map from taxon name
// to its index in the given sorted taxa slice.
func TaxaIndex(taxa []string) map[string]uint {
	index := make(map[string]uint, len(taxa))
	for i, tx := range taxa {
		index[tx] = uint(i)
	}
	return index
}

// Clades returns the taxon set of every internal,
// non root node of the tree,
// as bitsets over the indices of the taxa slice.
// Empty sets
// (nodes whose taxa are all outside the slice)
// are not reported.
func (t *Tree) Clades(taxa []string) []*bitset.BitSet {
	index := TaxaIndex(taxa)
	n := uint(len(taxa))

	var clades []*bitset.BitSet
	for id, nd := range t.nodes {
		if id == 0 || len(nd.children) == 0 {
			continue
		}
		b := t.taxaBits(id, index, n)
		if b.Count() == 0 {
			continue
		}
		clades = append(clades, b)
	}
	return clades
}

// Splits returns the set of nontrivial bipartitions
// induced by the internal branches of the tree,
// over the indices of the taxa slice.
// Each bipartition is stored in canonical form,
// that is,
// the side that does not contain the first taxon,
// and keyed by its string representation.
func (t *Tree) Splits(taxa []string) map[string]*bitset.BitSet {
	index := TaxaIndex(taxa)
	n := uint(len(taxa))

	splits := make(map[string]*bitset.BitSet)
	if n < 4 {
		// too few taxa for a nontrivial bipartition
		return splits
	}
	for id, nd := range t.nodes {
		if id == 0 || len(nd.children) == 0 {
			continue
		}
		b := t.taxaBits(id, index, n)
		c := b.Count()
		if c < 2 || c > n-2 {
			// a trivial bipartition
			continue
		}
		if b.Test(0) {
			b = b.Complement()
		}
		splits[b.String()] = b
	}
	return splits
}

// FromTimetree returns a copy of a time calibrated tree,
// with branch lengths,
// in million years,
// taken from the age difference
// between each node and its parent.
func FromTimetree(src *timetree.Tree) (*Tree, error) {
	nt := New()
	if err := copyTimetree(nt, src, src.Root(), -1); err != nil {
		return nil, err
	}
	return nt, nil
}

const millionYears = 1_000_000

func copyTimetree(nt *Tree, src *timetree.Tree, id, parent int) error {
	tax := ""
	if src.IsTerm(id) {
		tax = src.Taxon(id)
	}
	nid, err := nt.Add(parent, tax)
	if err != nil {
		return err
	}
	if !src.IsRoot(id) {
		brLen := float64(src.Age(src.Parent(id))-src.Age(id)) / millionYears
		nt.nodes[nid].length = brLen
	}
	for _, c := range src.Children(id) {
		if err := copyTimetree(nt, src, c, nid); err != nil {
			return err
		}
	}
	return nil
}
