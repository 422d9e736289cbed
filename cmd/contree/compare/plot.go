// Copyright © 2025 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package compare

import (
	"errors"
	"fmt"
	"math"

	"github.com/js-arias/blind"
	"github.com/js-arias/contree/report"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// plotReport saves a bar plot
// with the normalized distance
// of every finished comparison.
func plotReport(r *report.Report, name string) error {
	var vals plotter.Values
	var labels []string
	for _, pr := range r.Pairs {
		if math.IsNaN(pr.Cmp.Normalized) {
			continue
		}
		vals = append(vals, pr.Cmp.Normalized)
		labels = append(labels, fmt.Sprintf("%s vs %s", pr.A, pr.B))
	}
	if len(vals) == 0 {
		return errors.New("nothing to plot: no normalized distances")
	}

	p := plot.New()
	p.Title.Text = "normalized Robinson-Foulds distances"
	p.Y.Label.Text = "normalized RF"
	p.Y.Min = 0
	p.Y.Max = 1

	b, err := plotter.NewBarChart(vals, vg.Points(25))
	if err != nil {
		return err
	}
	b.Color = blind.Sequential(blind.Iridescent, 0.35)
	p.Add(b)
	p.NominalX(labels...)

	if err := p.Save(16*vg.Centimeter, 10*vg.Centimeter, name); err != nil {
		return fmt.Errorf("while writing file %q: %v", name, err)
	}
	return nil
}
