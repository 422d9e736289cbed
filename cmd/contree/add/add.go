// Copyright © 2025 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package add implements a command to add tree artifacts
// to a Contree project.
package add

import (
	"errors"
	"fmt"
	"os"

	"github.com/js-arias/command"
	"github.com/js-arias/contree/project"
)

var Command = &command.Command{
	Usage: `add --type <dataset>
	<project-file> <tree-file>`,
	Short: "add tree files to a Contree project",
	Long: `
Command add registers a tree file into a Contree project, validating that the
file can be read.

The first argument of the command is the name of the project file. If no
project file exists, a new project will be created. The second argument is the
name of the file to be added.

The flag --type is required and indicates the kind of the added file. Valid
types are:

	genetrees	the forest of gene family trees,
			one newick tree per line
	reference	the trusted reference topology
	supertree	a supertree built by an external solver
	consensus	a majority rule consensus tree
	greedy		a greedy consensus tree
	timetree	an independent time calibrated tree,
			in newick notation or as a timetree TSV file

Malformed trees inside the gene tree forest are reported as warnings, and
will be ignored by any command that uses the forest; the file is rejected
only if it does not contain any readable tree.
	`,
	SetFlags: setFlags,
	Run:      run,
}

var typeFlag string

func setFlags(c *command.Command) {
	c.Flags().StringVar(&typeFlag, "type", "", "")
}

func run(c *command.Command, args []string) error {
	if len(args) < 2 {
		return c.UsageError("expecting project and tree file")
	}
	if typeFlag == "" {
		return c.UsageError("flag --type undefined")
	}

	pFile := args[0]
	p, err := openProject(pFile)
	if err != nil {
		return err
	}

	name := args[1]
	set := project.Dataset(typeFlag)
	if err := validate(c, p, set, name); err != nil {
		return err
	}

	p.Add(set, name)
	if err := p.Write(); err != nil {
		return err
	}
	return nil
}

func openProject(name string) (*project.Project, error) {
	p, err := project.Read(name)
	if errors.Is(err, os.ErrNotExist) {
		p := project.New()
		p.SetName(name)
		return p, nil
	}
	if err != nil {
		return nil, fmt.Errorf("unable to open project %q: %v", name, err)
	}
	return p, nil
}

// validate checks that an added file
// can be read as its dataset type.
func validate(c *command.Command, p *project.Project, set project.Dataset, name string) error {
	np := project.New()
	np.Add(set, name)

	switch set {
	case project.GeneTrees:
		f, err := np.GeneTrees()
		if err != nil {
			return err
		}
		for _, w := range f.Warnings() {
			fmt.Fprintf(c.Stderr(), "warning: %s: %s\n", name, w)
		}
	case project.Reference, project.Supertree, project.Consensus, project.Greedy:
		if _, err := np.Tree(set); err != nil {
			return err
		}
	case project.TimeTree:
		if _, err := np.TimeTree(); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unknown dataset type %q", set)
	}
	return nil
}
