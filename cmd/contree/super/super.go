// Copyright © 2025 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package super implements a command to build a supertree
// from the gene trees of a Contree project,
// using an external solver.
package super

import (
	"fmt"
	"os"
	"time"

	"github.com/js-arias/command"
	"github.com/js-arias/contree/project"
	"github.com/js-arias/contree/supertree"
	"github.com/js-arias/contree/tree"
)

var Command = &command.Command{
	Usage: `super [--solver <command>] [--jar <file>]
	[--java <command>] [--heap <size>]
	[--timeout <duration>]
	[-o|--output <file>]
	<project-file>`,
	Short: "build a supertree with an external solver",
	Long: `
Command super reads the gene family trees of a Contree project, prunes them
down to their shared taxa, and runs an external ASTRAL-like solver to build a
supertree.

The argument of the command is the name of the project file.

By default the command runs an executable called "astral" found in the
executable path; use the flag --solver to give a different executable, or the
flag --jar with the path of a solver jar file, to be run with the java
virtual machine. With a jar file, the flag --java defines the java executable
(by default "java"), and the flag --heap the maximum heap size of the virtual
machine, for example "8g".

The flag --timeout defines the maximum running time of the solver, using the
Go duration syntax, for example "30m". By default the command waits without
bounds.

The flag --output, or -o, defines the name of the output file; the resulting
tree is also registered in the project. If no output file is given, the tree
will be printed to the standard output and the project will not be modified.

The solver output is never modified: if the solver fails, times out, or
returns an unreadable tree, the command fails reporting the solver
diagnostics.
	`,
	SetFlags: setFlags,
	Run:      run,
}

var solverFlag string
var jarFlag string
var javaFlag string
var heapFlag string
var timeoutFlag string
var output string

func setFlags(c *command.Command) {
	c.Flags().StringVar(&solverFlag, "solver", "", "")
	c.Flags().StringVar(&jarFlag, "jar", "", "")
	c.Flags().StringVar(&javaFlag, "java", "", "")
	c.Flags().StringVar(&heapFlag, "heap", "", "")
	c.Flags().StringVar(&timeoutFlag, "timeout", "", "")
	c.Flags().StringVar(&output, "output", "", "")
	c.Flags().StringVar(&output, "o", "", "")
}

func run(c *command.Command, args []string) error {
	if len(args) < 1 {
		return c.UsageError("expecting project file")
	}

	var timeout time.Duration
	if timeoutFlag != "" {
		var err error
		timeout, err = time.ParseDuration(timeoutFlag)
		if err != nil {
			return c.UsageError(fmt.Sprintf("invalid --timeout value %q", timeoutFlag))
		}
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
	_, rf, err := f.Reconcile()
	if err != nil {
		return err
	}

	s := supertree.Solver{
		Command: solverFlag,
		Jar:     jarFlag,
		Java:    javaFlag,
		Heap:    heapFlag,
		Timeout: timeout,
	}
	t, err := s.Build(rf)
	if err != nil {
		return err
	}

	if output == "" {
		return t.Newick(c.Stdout())
	}
	if err := writeTree(t, output); err != nil {
		return err
	}
	p.Add(project.Supertree, output)
	return p.Write()
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
