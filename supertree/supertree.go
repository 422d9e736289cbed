// Copyright © 2025 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package supertree implements the boundary
// with an external supertree solver
// in the style of ASTRAL:
// the forest is written as a list of newick trees,
// the solver runs as a subprocess,
// and its single output tree is read back.
//
// The solver is treated as a black box:
// its output is never repaired
// or reinterpreted.
package supertree

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"time"

	"github.com/js-arias/contree/forest"
	"github.com/js-arias/contree/tree"
)

// ErrSolverFailed is the error produced
// when the solver subprocess fails,
// times out,
// or returns an unreadable tree.
var ErrSolverFailed = errors.New("supertree solver failed")

// A Solver describes an external supertree solver.
// The zero value runs an "astral" binary
// found in the executable path.
type Solver struct {
	// Command is the solver executable.
	// It is ignored if Jar is defined.
	Command string

	// Jar is the path of a solver jar file,
	// to be run with the java virtual machine.
	Jar string

	// Java is the java executable
	// used to run a jar file.
	Java string

	// Heap is the maximum heap size
	// given to the java virtual machine,
	// for example "8g".
	Heap string

	// Timeout is the maximum running time
	// of the solver.
	// A zero timeout waits without bounds.
	Timeout time.Duration
}

// Build runs the solver over a forest
// and returns the resulting supertree.
// The forest is expected to be already reconciled.
func (s Solver) Build(f *forest.Forest) (*tree.Tree, error) {
	in, err := writeInput(f)
	if err != nil {
		return nil, err
	}
	defer os.Remove(in)

	out, err := os.CreateTemp("", "contree-*.nwk")
	if err != nil {
		return nil, err
	}
	out.Close()
	defer os.Remove(out.Name())

	stdout, stderr, err := s.run(in, out.Name())
	if err != nil {
		return nil, fmt.Errorf("%w: %v: %s", ErrSolverFailed, err, bytes.TrimSpace(stderr))
	}

	t, err := readOutput(out.Name(), stdout)
	if err != nil {
		return nil, fmt.Errorf("%w: %v: %s", ErrSolverFailed, err, bytes.TrimSpace(stderr))
	}
	return t, nil
}

// writeInput writes the trees of a forest,
// one newick tree per line,
// into a temporary file,
// and returns the file name.
func writeInput(f *forest.Forest) (string, error) {
	tmp, err := os.CreateTemp("", "contree-*.trees")
	if err != nil {
		return "", err
	}
	for _, t := range f.Trees() {
		if err := t.Newick(tmp); err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
			return "", err
		}
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", err
	}
	return tmp.Name(), nil
}

// run executes the solver subprocess,
// blocking until it finishes
// or the timeout elapses.
func (s Solver) run(in, out string) (stdout, stderr []byte, err error) {
	ctx := context.Background()
	if s.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.Timeout)
		defer cancel()
	}

	var cmd *exec.Cmd
	if s.Jar != "" {
		java := s.Java
		if java == "" {
			java = "java"
		}
		args := []string{}
		if s.Heap != "" {
			args = append(args, "-Xmx"+s.Heap)
		}
		args = append(args, "-jar", s.Jar, "-i", in, "-t", "2", "-o", out)
		cmd = exec.CommandContext(ctx, java, args...)
	} else {
		command := s.Command
		if command == "" {
			command = "astral"
		}
		cmd = exec.CommandContext(ctx, command, "-i", in, "-t", "2", "-o", out)
	}

	var outBuf, errBuf bytes.Buffer
	cmd.Stdout = &outBuf
	cmd.Stderr = &errBuf

	if err := cmd.Run(); err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return nil, errBuf.Bytes(), fmt.Errorf("timeout after %v", s.Timeout)
		}
		return nil, errBuf.Bytes(), err
	}
	return outBuf.Bytes(), errBuf.Bytes(), nil
}

// readOutput reads the single output tree,
// from the named output file if non empty,
// or from the standard output of the solver.
func readOutput(name string, stdout []byte) (*tree.Tree, error) {
	data, err := os.ReadFile(name)
	if err != nil {
		return nil, err
	}
	if len(bytes.TrimSpace(data)) == 0 {
		data = stdout
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, errors.New("no output tree")
	}

	t, err := tree.Newick(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	return t, nil
}
