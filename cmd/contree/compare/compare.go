// Copyright © 2025 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package compare implements a command to validate
// the candidate species trees of a Contree project
// against the reference topology
// and an independent time calibrated tree.
package compare

import (
	"fmt"
	"os"

	"github.com/js-arias/command"
	"github.com/js-arias/contree/project"
	"github.com/js-arias/contree/report"
	"github.com/js-arias/contree/tree"
)

var Command = &command.Command{
	Usage: `compare [-o|--output <file>]
	[--plot <file>]
	<project-file>`,
	Short: "compare candidate trees against the reference",
	Long: `
Command compare reads the tree artifacts of a Contree project and reports the
Robinson-Foulds distance of each candidate species tree (the supertree, the
majority rule consensus, and the greedy consensus) against the reference
topology and against an independent time calibrated tree.

The argument of the command is the name of the project file.

For each pair of trees, the taxa are reconciled independently, and the report
includes the number of shared taxa, the taxa missing from each side, the raw
distance, the theoretical maximum distance, and the normalized distance. A
candidate not defined in the project skips only its own comparisons, which
are listed at the end of the report with the reason of the skip.

The reference topology is required; any other artifact is optional.

The flag --output, or -o, defines the name of the output file for the report.
If no file is given, the report is printed to the standard output.

If the flag --plot is given, a bar plot of the normalized distances will be
saved to the indicated file; the image format is taken from the file
extension (for example .png or .svg).
	`,
	SetFlags: setFlags,
	Run:      run,
}

var output string
var plotFile string

func setFlags(c *command.Command) {
	c.Flags().StringVar(&output, "output", "", "")
	c.Flags().StringVar(&output, "o", "", "")
	c.Flags().StringVar(&plotFile, "plot", "", "")
}

func run(c *command.Command, args []string) error {
	if len(args) < 1 {
		return c.UsageError("expecting project file")
	}

	p, err := project.Read(args[0])
	if err != nil {
		return err
	}

	ref, err := p.Tree(project.Reference)
	if err != nil {
		return err
	}

	r := report.Run(
		report.Candidate{Name: "reference", Tree: ref},
		optional(c, "timetree", func() (*tree.Tree, error) { return p.TimeTree() }),
		optional(c, "supertree", func() (*tree.Tree, error) { return p.Tree(project.Supertree) }),
		optional(c, "consensus", func() (*tree.Tree, error) { return p.Tree(project.Consensus) }),
		optional(c, "greedy", func() (*tree.Tree, error) { return p.Tree(project.Greedy) }),
	)

	if err := writeReport(c, r); err != nil {
		return err
	}
	if plotFile != "" {
		if err := plotReport(r, plotFile); err != nil {
			return err
		}
	}
	return nil
}

// optional reads an optional tree artifact;
// a missing or unreadable artifact
// is reported as a notice
// and returned as an empty candidate,
// so only its own comparisons will be skipped.
func optional(c *command.Command, name string, read func() (*tree.Tree, error)) report.Candidate {
	t, err := read()
	if err != nil {
		fmt.Fprintf(c.Stderr(), "notice: %s: %v\n", name, err)
		return report.Candidate{Name: name}
	}
	return report.Candidate{Name: name, Tree: t}
}

func writeReport(c *command.Command, r *report.Report) (err error) {
	if output == "" {
		return r.Write(c.Stdout())
	}

	f, err := os.Create(output)
	if err != nil {
		return err
	}
	defer func() {
		e := f.Close()
		if e != nil && err == nil {
			err = e
		}
	}()

	if err := r.Write(f); err != nil {
		return fmt.Errorf("while writing file %q: %v", output, err)
	}
	return nil
}
