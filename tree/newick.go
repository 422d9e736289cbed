// Copyright © 2025 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package tree

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Newick reads a tree in parenthetical
// (i.e. newick)
// notation.
//
// Internal node labels are scanned for a support value:
// the first numeric substring of the form "<digits>.<digits>",
// or the whole label if it is an integer.
// Any other label content is discarded.
func Newick(r io.Reader) (*Tree, error) {
	p := &parser{
		r: bufio.NewReader(r),
		t: New(),
	}
	if err := p.parse(); err != nil {
		return nil, err
	}
	return p.t, nil
}

type parser struct {
	r *bufio.Reader
	t *Tree
}

func (p *parser) parse() error {
	if err := p.node(-1); err != nil {
		return err
	}

	r, err := p.next()
	if err == io.EOF {
		return nil
	}
	if err != nil {
		return err
	}
	if r != ';' {
		return fmt.Errorf("tree: newick: %w: expecting %q, got %q", ErrMalformed, ';', r)
	}
	return nil
}

// node reads a subtree,
// either a parenthesized group of nodes
// or a single terminal.
func (p *parser) node(parent int) error {
	r, err := p.next()
	if err != nil {
		return p.unexpectedEnd(err)
	}

	if r != '(' {
		p.r.UnreadRune()
		name, err := p.name()
		if err != nil {
			return err
		}
		if name == "" {
			return fmt.Errorf("tree: newick: %w: expecting taxon name", ErrMalformed)
		}
		id, err := p.t.Add(parent, name)
		if err != nil {
			return err
		}
		return p.length(id)
	}

	id, err := p.t.Add(parent, "")
	if err != nil {
		return err
	}
	terms := 0
	for {
		if err := p.node(id); err != nil {
			return err
		}
		terms++

		r, err := p.next()
		if err != nil {
			return p.unexpectedEnd(err)
		}
		if r == ',' {
			continue
		}
		if r == ')' {
			break
		}
		return fmt.Errorf("tree: newick: %w: unexpected %q", ErrMalformed, r)
	}
	if terms < 2 {
		return fmt.Errorf("tree: newick: %w: internal node with a single child", ErrMalformed)
	}

	// an optional label with the node support
	label, err := p.name()
	if err != nil {
		return err
	}
	if s, ok := labelSupport(label); ok {
		p.t.nodes[id].support = s
	}
	return p.length(id)
}

// length reads an optional branch length
// preceded by a colon.
func (p *parser) length(id int) error {
	r, err := p.next()
	if err == io.EOF {
		return nil
	}
	if err != nil {
		return err
	}
	if r != ':' {
		p.r.UnreadRune()
		return nil
	}

	tok, err := p.token()
	if err != nil {
		return err
	}
	v, err := strconv.ParseFloat(tok, 64)
	if err != nil {
		return fmt.Errorf("tree: newick: %w: invalid branch length %q", ErrMalformed, tok)
	}
	p.t.nodes[id].length = v
	return nil
}

// name reads a node label,
// either quoted or unquoted.
// An empty label is valid.
func (p *parser) name() (string, error) {
	r, err := p.next()
	if err == io.EOF {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	if r != '\'' {
		p.r.UnreadRune()
		return p.token()
	}

	var b strings.Builder
	for {
		r, _, err := p.r.ReadRune()
		if err != nil {
			return "", p.unexpectedEnd(err)
		}
		if r == '\'' {
			break
		}
		b.WriteRune(r)
	}
	return b.String(), nil
}

// token reads an unquoted string
// up to any newick delimiter.
func (p *parser) token() (string, error) {
	var b strings.Builder
	for {
		r, _, err := p.r.ReadRune()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", err
		}
		if strings.ContainsRune("():,;[]' \t\n\r", r) {
			p.r.UnreadRune()
			break
		}
		b.WriteRune(r)
	}
	return b.String(), nil
}

// next returns the next meaningful rune,
// skipping spaces and bracketed comments.
func (p *parser) next() (rune, error) {
	inComment := false
	for {
		r, _, err := p.r.ReadRune()
		if err != nil {
			return 0, err
		}
		if inComment {
			if r == ']' {
				inComment = false
			}
			continue
		}
		if r == '[' {
			inComment = true
			continue
		}
		if r == ' ' || r == '\t' || r == '\n' || r == '\r' {
			continue
		}
		return r, nil
	}
}

func (p *parser) unexpectedEnd(err error) error {
	if err == io.EOF {
		return fmt.Errorf("tree: newick: %w: unexpected end of input", ErrMalformed)
	}
	return err
}

var supportRx = regexp.MustCompile(`[0-9]+\.[0-9]+`)

// labelSupport extracts a support value
// from an internal node label.
func labelSupport(label string) (float64, bool) {
	if label == "" {
		return 0, false
	}
	if s := supportRx.FindString(label); s != "" {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		return v, true
	}
	if v, err := strconv.Atoi(label); err == nil {
		return float64(v), true
	}
	return 0, false
}

// Newick writes the tree in parenthetical notation,
// with support values printed as internal labels
// rounded to three decimal places,
// and branch lengths,
// if defined,
// after a colon.
func (t *Tree) Newick(w io.Writer) error {
	bw := bufio.NewWriter(w)
	if len(t.nodes) > 0 {
		t.writeNode(bw, 0)
	}
	bw.WriteString(";\n")
	return bw.Flush()
}

func (t *Tree) writeNode(w *bufio.Writer, id int) {
	nd := t.nodes[id]
	if len(nd.children) == 0 {
		w.WriteString(quoteName(nd.taxon))
	} else {
		w.WriteByte('(')
		for i, c := range nd.children {
			if i > 0 {
				w.WriteByte(',')
			}
			t.writeNode(w, c)
		}
		w.WriteByte(')')
		if !math.IsNaN(nd.support) {
			w.WriteString(strconv.FormatFloat(nd.support, 'f', 3, 64))
		}
	}
	if !math.IsNaN(nd.length) {
		w.WriteByte(':')
		w.WriteString(strconv.FormatFloat(nd.length, 'g', -1, 64))
	}
}

// quoteName quotes a taxon name
// if it contains newick delimiters.
func quoteName(name string) string {
	if strings.ContainsAny(name, "():,;[]' \t") {
		return "'" + strings.ReplaceAll(name, "'", "") + "'"
	}
	return name
}
