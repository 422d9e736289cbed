// Copyright © 2025 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package list implements a command to print
// the tree artifacts of a Contree project.
package list

import (
	"fmt"

	"github.com/js-arias/command"
	"github.com/js-arias/contree/project"
)

var Command = &command.Command{
	Usage: "list [--taxa <dataset>] <project-file>",
	Short: "print the tree artifacts of a project",
	Long: `
Command list reads a Contree project and prints its defined datasets, with
their file paths, in the standard output.

The argument of the command is the name of the project file.

If the flag --taxa is set with a dataset name, the taxa of the indicated tree
will be printed instead, one taxon per line, in alphabetical order.
	`,
	SetFlags: setFlags,
	Run:      run,
}

var taxaFlag string

func setFlags(c *command.Command) {
	c.Flags().StringVar(&taxaFlag, "taxa", "", "")
}

func run(c *command.Command, args []string) error {
	if len(args) < 1 {
		return c.UsageError("expecting project file")
	}

	p, err := project.Read(args[0])
	if err != nil {
		return err
	}

	if taxaFlag != "" {
		return listTaxa(c, p, project.Dataset(taxaFlag))
	}

	for _, s := range p.Sets() {
		fmt.Fprintf(c.Stdout(), "%s\t%s\n", s, p.Path(s))
	}
	return nil
}

func listTaxa(c *command.Command, p *project.Project, set project.Dataset) error {
	var taxa []string
	switch set {
	case project.GeneTrees:
		f, err := p.GeneTrees()
		if err != nil {
			return err
		}
		common, err := f.CommonTaxa()
		if err != nil {
			return err
		}
		taxa = common
	case project.TimeTree:
		t, err := p.TimeTree()
		if err != nil {
			return err
		}
		taxa = t.Taxa()
	default:
		t, err := p.Tree(set)
		if err != nil {
			return err
		}
		taxa = t.Taxa()
	}

	for _, tx := range taxa {
		fmt.Fprintf(c.Stdout(), "%s\n", tx)
	}
	return nil
}
