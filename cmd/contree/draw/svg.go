// Copyright © 2025 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package draw

import (
	"fmt"
	"io"
	"math"

	"github.com/js-arias/contree/tree"
)

// An svgNode is a node of a tree drawing.
type svgNode struct {
	x, y     float64
	label    string
	support  string
	children []*svgNode
}

// An svgTree is a tree prepared for drawing
// as a rectangular cladogram.
type svgTree struct {
	root   *svgNode
	width  float64
	height float64
	stepY  float64
}

const stepX = 40

// copyTree makes a drawable copy of a tree.
// If forestSize is greater than zero,
// node supports are rescaled
// to a count of gene trees.
func copyTree(t *tree.Tree, stepY float64, forestSize int) svgTree {
	st := svgTree{stepY: stepY}
	if t.Len() == 0 {
		return st
	}

	nextY := stepY
	var copyNode func(id int, depth int) *svgNode
	copyNode = func(id int, depth int) *svgNode {
		n := &svgNode{x: float64(depth+1) * stepX}
		if t.IsTerm(id) {
			n.label = t.Taxon(id)
			n.y = nextY
			nextY += stepY
			return n
		}

		sum := 0.0
		for _, c := range t.Children(id) {
			nc := copyNode(c, depth+1)
			n.children = append(n.children, nc)
			sum += nc.y
		}
		n.y = sum / float64(len(n.children))
		if s := t.Support(id); !math.IsNaN(s) && forestSize > 0 {
			n.support = fmt.Sprintf("%d", int(math.Round(s*float64(forestSize))))
		}
		return n
	}
	st.root = copyNode(t.Root(), 0)

	maxDepth := 0
	var walk func(n *svgNode, d int)
	walk = func(n *svgNode, d int) {
		if d > maxDepth {
			maxDepth = d
		}
		for _, c := range n.children {
			walk(c, d+1)
		}
	}
	walk(st.root, 0)

	st.width = float64(maxDepth+2)*stepX + 200
	st.height = nextY + stepY
	return st
}

// draw writes the tree as an SVG document.
func (st svgTree) draw(w io.Writer) error {
	if _, err := fmt.Fprintf(w, "%s", xmlHead); err != nil {
		return err
	}
	fmt.Fprintf(w, "<svg height=\"%.0f\" width=\"%.0f\" xmlns=\"http://www.w3.org/2000/svg\">\n", st.height, st.width)
	fmt.Fprintf(w, "<g stroke-linecap=\"round\" stroke-width=\"2\" stroke=\"black\" fill=\"none\">\n")
	if st.root != nil {
		st.drawNode(w, st.root)
	}
	fmt.Fprintf(w, "</g>\n")

	fmt.Fprintf(w, "<g font-family=\"Verdana\" font-size=\"10\">\n")
	if st.root != nil {
		st.drawLabels(w, st.root)
	}
	fmt.Fprintf(w, "</g>\n")
	_, err := fmt.Fprintf(w, "</svg>\n")
	return err
}

const xmlHead = "<?xml version=\"1.0\"?>\n<!DOCTYPE svg PUBLIC \"-//W3C//DTD SVG 1.1//EN\" \"http://www.w3.org/Graphics/SVG/1.1/DTD/svg11.dtd\">\n"

func (st svgTree) drawNode(w io.Writer, n *svgNode) {
	if len(n.children) == 0 {
		return
	}

	top := math.Inf(1)
	bottom := math.Inf(-1)
	for _, c := range n.children {
		if c.y < top {
			top = c.y
		}
		if c.y > bottom {
			bottom = c.y
		}
		fmt.Fprintf(w, "<line x1=\"%.1f\" y1=\"%.1f\" x2=\"%.1f\" y2=\"%.1f\"/>\n", n.x, c.y, c.x, c.y)
		st.drawNode(w, c)
	}
	fmt.Fprintf(w, "<line x1=\"%.1f\" y1=\"%.1f\" x2=\"%.1f\" y2=\"%.1f\"/>\n", n.x, top, n.x, bottom)
}

func (st svgTree) drawLabels(w io.Writer, n *svgNode) {
	if len(n.children) == 0 {
		fmt.Fprintf(w, "<text x=\"%.1f\" y=\"%.1f\">%s</text>\n", n.x+5, n.y+3, n.label)
		return
	}
	if n.support != "" {
		fmt.Fprintf(w, "<text x=\"%.1f\" y=\"%.1f\">%s</text>\n", n.x+3, n.y-3, n.support)
	}
	for _, c := range n.children {
		st.drawLabels(w, c)
	}
}
