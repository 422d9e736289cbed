// Copyright © 2025 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package report implements the validation report
// of a set of candidate species trees:
// every candidate is compared
// against a reference topology
// and against an independent time calibrated tree,
// using Robinson-Foulds distances.
//
// Failed comparisons are reported as skipped,
// with their reasons,
// and never abort the remaining comparisons.
package report

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/js-arias/contree/distance"
	"github.com/js-arias/contree/tree"
	"gonum.org/v1/gonum/stat"
)

// A Candidate is a named tree
// to be used in a comparison.
// A nil tree marks an artifact
// that was not produced,
// and only skips its own comparisons.
type Candidate struct {
	Name string
	Tree *tree.Tree
}

// A Pair is a finished pairwise comparison.
type Pair struct {
	A, B string
	Cmp  distance.Comparison
}

// A Skip is a comparison that was not made,
// with the reason to skip it.
type Skip struct {
	A, B   string
	Reason string
}

// A Report is the result of a comparison run.
type Report struct {
	Pairs   []Pair
	Skipped []Skip
}

// Run compares every candidate tree
// against the reference topology
// and against the time calibrated tree.
// Each pair reconciles its taxa independently;
// a failed or impossible comparison
// is recorded as skipped.
func Run(reference, timeTree Candidate, candidates ...Candidate) *Report {
	r := &Report{}
	for _, c := range candidates {
		r.compare(reference, c)
		r.compare(c, timeTree)
	}
	return r
}

func (r *Report) compare(a, b Candidate) {
	if a.Tree == nil {
		r.Skipped = append(r.Skipped, Skip{a.Name, b.Name, fmt.Sprintf("%s tree not available", a.Name)})
		return
	}
	if b.Tree == nil {
		r.Skipped = append(r.Skipped, Skip{a.Name, b.Name, fmt.Sprintf("%s tree not available", b.Name)})
		return
	}

	cmp, err := distance.RF(a.Tree, b.Tree)
	if err != nil {
		r.Skipped = append(r.Skipped, Skip{a.Name, b.Name, err.Error()})
		return
	}
	r.Pairs = append(r.Pairs, Pair{a.Name, b.Name, cmp})
}

// Write writes the report,
// one metric per line,
// with a final summary that includes
// every skipped comparison
// and its reason.
func (r *Report) Write(w io.Writer) error {
	bw := bufio.NewWriter(w)

	for _, p := range r.Pairs {
		fmt.Fprintf(bw, "# %s vs %s\n", p.A, p.B)
		fmt.Fprintf(bw, "shared taxa: %d\n", len(p.Cmp.Taxa))
		fmt.Fprintf(bw, "missing in %s: %s\n", p.A, taxaList(p.Cmp.MissingInA))
		fmt.Fprintf(bw, "missing in %s: %s\n", p.B, taxaList(p.Cmp.MissingInB))
		fmt.Fprintf(bw, "RF distance: %d\n", p.Cmp.RF)
		fmt.Fprintf(bw, "maximum RF distance: %d\n", p.Cmp.Max)
		fmt.Fprintf(bw, "normalized RF distance: %s\n", formatNum(p.Cmp.Normalized))
		fmt.Fprintln(bw)
	}

	fmt.Fprintf(bw, "# summary\n")
	fmt.Fprintf(bw, "comparisons: %d\n", len(r.Pairs))
	mean, std := r.normalizedStats()
	fmt.Fprintf(bw, "mean normalized RF: %s (stddev %s)\n", formatNum(mean), formatNum(std))
	for _, s := range r.Skipped {
		fmt.Fprintf(bw, "skipped: %s vs %s: %s\n", s.A, s.B, s.Reason)
	}
	return bw.Flush()
}

// normalizedStats returns the mean
// and standard deviation
// of the normalized distances
// of the finished comparisons.
func (r *Report) normalizedStats() (mean, std float64) {
	var vals []float64
	for _, p := range r.Pairs {
		if math.IsNaN(p.Cmp.Normalized) {
			continue
		}
		vals = append(vals, p.Cmp.Normalized)
	}
	if len(vals) == 0 {
		return math.NaN(), math.NaN()
	}
	return stat.MeanStdDev(vals, nil)
}

func taxaList(taxa []string) string {
	if len(taxa) == 0 {
		return "none"
	}
	return strings.Join(taxa, ", ")
}

func formatNum(v float64) string {
	if math.IsNaN(v) {
		return "NA"
	}
	return fmt.Sprintf("%.3f", v)
}
