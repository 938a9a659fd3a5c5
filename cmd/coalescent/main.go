// Copyright © 2022 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Coalescent is a tool to simulate, store, and inspect coalescent-with-
// recombination ancestral recombination graphs.
package main

import (
	"github.com/js-arias/command"

	"github.com/sawyerx/coalescent/cmd/coalescent/convert"
	"github.com/sawyerx/coalescent/cmd/coalescent/mutate"
	"github.com/sawyerx/coalescent/cmd/coalescent/newick"
	"github.com/sawyerx/coalescent/cmd/coalescent/sim"
)

var app = &command.Command{
	Usage: "coalescent <command> [<argument>...]",
	Short: "a tool to simulate and inspect ancestral recombination graphs",
}

func init() {
	app.Add(sim.Command)
	app.Add(mutate.Command)
	app.Add(newick.Command)
	app.Add(convert.Command)
}

func main() {
	app.Main()
}
