// Copyright © 2025 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Contree is a tool to consolidate a forest
// of gene family trees
// into consensus and supertree estimates,
// and to validate them
// against a reference topology.
package main

import (
	"github.com/js-arias/command"
	"github.com/js-arias/contree/cmd/contree/add"
	"github.com/js-arias/contree/cmd/contree/compare"
	"github.com/js-arias/contree/cmd/contree/conscmd"
	"github.com/js-arias/contree/cmd/contree/draw"
	"github.com/js-arias/contree/cmd/contree/list"
	"github.com/js-arias/contree/cmd/contree/super"
)

var app = &command.Command{
	Usage: "contree <command> [<argument>...]",
	Short: "a tool for species tree consensus and validation",
}

func init() {
	app.Add(add.Command)
	app.Add(conscmd.Command)
	app.Add(super.Command)
	app.Add(compare.Command)
	app.Add(draw.Command)
	app.Add(list.Command)
}

func main() {
	app.Main()
}
