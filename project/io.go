// Copyright © 2025 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package project

import (
	"bytes"
	"fmt"
	"os"

	"github.com/js-arias/contree/forest"
	"github.com/js-arias/contree/tree"
	"github.com/js-arias/timetree"
)

// GeneTrees reads the forest of gene family trees
// as defined in a project.
func (p *Project) GeneTrees() (*forest.Forest, error) {
	name := p.Path(GeneTrees)
	if name == "" {
		return nil, fmt.Errorf("gene trees not defined in project %q", p.name)
	}

	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	ff, err := forest.Read(f)
	if err != nil {
		return nil, fmt.Errorf("when reading file %q: %v", name, err)
	}
	return ff, nil
}

// Tree reads a single tree artifact
// as defined in a project.
func (p *Project) Tree(set Dataset) (*tree.Tree, error) {
	name := p.Path(set)
	if name == "" {
		return nil, fmt.Errorf("%s tree not defined in project %q", set, p.name)
	}

	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	t, err := tree.Newick(f)
	if err != nil {
		return nil, fmt.Errorf("when reading file %q: %v", name, err)
	}
	return t, nil
}

// TimeTree reads the time calibrated tree
// as defined in a project.
// The file can be a newick tree,
// or a timetree TSV file,
// in which case the first tree
// of the collection is used.
func (p *Project) TimeTree() (*tree.Tree, error) {
	name := p.Path(TimeTree)
	if name == "" {
		return nil, fmt.Errorf("time tree not defined in project %q", p.name)
	}

	data, err := os.ReadFile(name)
	if err != nil {
		return nil, err
	}
	if isNewick(data) {
		t, err := tree.Newick(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("when reading file %q: %v", name, err)
		}
		return t, nil
	}

	c, err := timetree.ReadTSV(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("when reading file %q: %v", name, err)
	}
	ls := c.Names()
	if len(ls) == 0 {
		return nil, fmt.Errorf("on file %q: no trees found", name)
	}
	t, err := tree.FromTimetree(c.Tree(ls[0]))
	if err != nil {
		return nil, fmt.Errorf("on file %q: %v", name, err)
	}
	return t, nil
}

// isNewick returns true if a file content
// looks like a parenthetical tree
// instead of a TSV table.
func isNewick(data []byte) bool {
	for _, ln := range bytes.Split(data, []byte{'\n'}) {
		s := bytes.TrimSpace(ln)
		if len(s) == 0 || s[0] == '#' {
			continue
		}
		return s[0] == '('
	}
	return false
}
