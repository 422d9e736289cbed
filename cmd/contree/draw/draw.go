// Copyright © 2025 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package draw implements a command to draw
// the trees of a Contree project as SVG files.
package draw

import (
	"bufio"
	"fmt"
	"os"

	"github.com/js-arias/command"
	"github.com/js-arias/contree/project"
	"github.com/js-arias/contree/tree"
)

var Command = &command.Command{
	Usage: `draw [--tree <dataset>]
	[--step <value>]
	[--nosupport]
	[-o|--output <out-prefix>]
	<project-file>`,
	Short: "draw project trees as SVG files",
	Long: `
Command draw reads a Contree project and draws its tree artifacts into
SVG-encoded files.

The argument of the command is the name of the project file.

By default, all the tree artifacts defined in the project will be drawn, each
one into a file named after its dataset. If the flag --tree is set, only the
indicated dataset will be drawn.

By default, 10 pixel units will be used to separate the terminals; use the
flag --step to define a different value.

Consensus and supertree nodes keep their support as the fraction of the gene
trees that contain the node group; the drawing prints each support rescaled
to a count of gene trees, i.e. round(fraction * number-of-trees), using the
reconciled forest size. If the project does not define the gene trees, or the
flag --nosupport is given, supports are not drawn.

By default, the names of the datasets will be used as the output file names.
Use the flag -o, or --output, to define a prefix for the resulting files.
	`,
	SetFlags: setFlags,
	Run:      run,
}

var noSupport bool
var stepY float64
var treeName string
var outPrefix string

func setFlags(c *command.Command) {
	c.Flags().BoolVar(&noSupport, "nosupport", false, "")
	c.Flags().Float64Var(&stepY, "step", 10, "")
	c.Flags().StringVar(&outPrefix, "output", "", "")
	c.Flags().StringVar(&outPrefix, "o", "", "")
	c.Flags().StringVar(&treeName, "tree", "", "")
}

var treeSets = []project.Dataset{
	project.Reference,
	project.Supertree,
	project.Consensus,
	project.Greedy,
	project.TimeTree,
}

func run(c *command.Command, args []string) error {
	if len(args) < 1 {
		return c.UsageError("expecting project file")
	}

	p, err := project.Read(args[0])
	if err != nil {
		return err
	}

	forestSize := 0
	if !noSupport {
		forestSize = reconciledSize(c, p)
	}

	sets := treeSets
	if treeName != "" {
		sets = []project.Dataset{project.Dataset(treeName)}
	}

	for _, set := range sets {
		if p.Path(set) == "" {
			continue
		}
		t, err := readTree(p, set)
		if err != nil {
			return err
		}
		if err := writeSVG(string(set), copyTree(t, stepY, forestSize)); err != nil {
			return err
		}
	}
	return nil
}

// reconciledSize returns the size
// of the reconciled gene tree forest,
// the denominator used to rescale
// support fractions into tree counts.
func reconciledSize(c *command.Command, p *project.Project) int {
	if p.Path(project.GeneTrees) == "" {
		return 0
	}
	f, err := p.GeneTrees()
	if err != nil {
		fmt.Fprintf(c.Stderr(), "notice: %v\n", err)
		return 0
	}
	_, rf, err := f.Reconcile()
	if err != nil {
		fmt.Fprintf(c.Stderr(), "notice: %v\n", err)
		return 0
	}
	return rf.Len()
}

func readTree(p *project.Project, set project.Dataset) (*tree.Tree, error) {
	if set == project.TimeTree {
		return p.TimeTree()
	}
	return p.Tree(set)
}

func writeSVG(name string, t svgTree) (err error) {
	if outPrefix != "" {
		name = fmt.Sprintf("%s-%s.svg", outPrefix, name)
	} else {
		name += ".svg"
	}

	f, err := os.Create(name)
	if err != nil {
		return err
	}
	defer func() {
		e := f.Close()
		if e != nil && err == nil {
			err = e
		}
	}()

	bw := bufio.NewWriter(f)
	if err := t.draw(bw); err != nil {
		return fmt.Errorf("while writing file %q: %v", name, err)
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("while writing file %q: %v", name, err)
	}
	return nil
}
