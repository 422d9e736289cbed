// Copyright © 2025 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package conscmd implements a command to build
// a consensus tree
// from the gene trees of a Contree project.
package conscmd

import (
	"fmt"
	"os"

	"github.com/js-arias/command"
	"github.com/js-arias/contree/consensus"
	"github.com/js-arias/contree/forest"
	"github.com/js-arias/contree/project"
	"github.com/js-arias/contree/tree"
)

var Command = &command.Command{
	Usage: `consensus [--method <method>]
	[--threshold <value>]
	[-o|--output <file>]
	<project-file>`,
	Short: "build a consensus tree from the project gene trees",
	Long: `
Command consensus reads the gene family trees of a Contree project, prunes
them down to their shared taxa, and builds a consensus tree.

The argument of the command is the name of the project file.

By default a majority rule consensus is built. Use the flag --method to
select the consensus type:

	majority	majority rule consensus (default)
	extended	majority rule consensus with its polytomies
			resolved by compatible minority groups
	greedy		greedy consensus over all compatible groups

By default the consensus keeps the groups present in half or more of the
trees; use the flag --threshold to change the frequency threshold. The
threshold is ignored by the greedy method.

Each internal node of the output tree is labeled with the fraction of the
gene trees that contain its group, rounded to three decimal places.

The flag --output, or -o, defines the name of the output file; the resulting
tree is also registered in the project. If no output file is given, the tree
will be printed to the standard output and the project will not be modified.
	`,
	SetFlags: setFlags,
	Run:      run,
}

var method string
var threshold float64
var output string

func setFlags(c *command.Command) {
	c.Flags().StringVar(&method, "method", "majority", "")
	c.Flags().Float64Var(&threshold, "threshold", 0.5, "")
	c.Flags().StringVar(&output, "output", "", "")
	c.Flags().StringVar(&output, "o", "", "")
}

func run(c *command.Command, args []string) error {
	if len(args) < 1 {
		return c.UsageError("expecting project file")
	}
	if threshold < 0 || threshold > 1 {
		return c.UsageError("invalid --threshold value")
	}

	p, err := project.Read(args[0])
	if err != nil {
		return err
	}
	f, err := p.GeneTrees()
	if err != nil {
		return err
	}
	for _, w := range f.Warnings() {
		fmt.Fprintf(c.Stderr(), "warning: %s\n", w)
	}

	t, set, err := buildConsensus(f)
	if err != nil {
		return err
	}

	if output == "" {
		return t.Newick(c.Stdout())
	}
	if err := writeTree(t, output); err != nil {
		return err
	}
	p.Add(set, output)
	return p.Write()
}

func buildConsensus(f *forest.Forest) (*tree.Tree, project.Dataset, error) {
	switch method {
	case "majority":
		t, err := consensus.Majority(f, threshold)
		return t, project.Consensus, err
	case "extended":
		t, err := consensus.ExtendedMajority(f, threshold)
		return t, project.Consensus, err
	case "greedy":
		t, err := consensus.Greedy(f)
		return t, project.Greedy, err
	}
	return nil, "", fmt.Errorf("unknown consensus method %q", method)
}

func writeTree(t *tree.Tree, name string) (err error) {
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

	if err := t.Newick(f); err != nil {
		return fmt.Errorf("while writing file %q: %v", name, err)
	}
	return nil
}
