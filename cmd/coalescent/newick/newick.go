// Copyright © 2022 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package newick implements a command to export the marginal trees of a
// stored tree sequence in ms-style interval-annotated Newick format.
package newick

import (
	"fmt"
	"os"

	"github.com/js-arias/command"

	"github.com/sawyerx/coalescent/treeseq"
)

var Command = &command.Command{
	Usage: "newick -i|--input <file> [-o|--output <file>]",
	Short: "export marginal trees in Newick format",
	Long: `
Command newick reads an archive written by "coalescent sim" (or the legacy
flat file written by "coalescent convert") and prints every marginal tree
along the genome, each preceded by an ms-style "[length]" interval marker
giving the number of loci it spans.

The flag --input, or -i, is required. By default the Newick text is printed
to the standard output; use --output, or -o, to write it to a file.
	`,
	SetFlags: setFlags,
	Run:      run,
}

var (
	input  string
	output string
)

func setFlags(c *command.Command) {
	c.Flags().StringVar(&input, "input", "", "")
	c.Flags().StringVar(&input, "i", "", "")
	c.Flags().StringVar(&output, "output", "", "")
	c.Flags().StringVar(&output, "o", "", "")
}

func run(c *command.Command, args []string) (err error) {
	if input == "" {
		return c.UsageError("flag --input must be defined")
	}

	ts, err := load(input)
	if err != nil {
		return fmt.Errorf("while reading %q: %v", input, err)
	}

	w := c.Stdout()
	if output != "" {
		f, err := os.Create(output)
		if err != nil {
			return fmt.Errorf("while creating %q: %v", output, err)
		}
		defer func() {
			if e := f.Close(); e != nil && err == nil {
				err = e
			}
		}()
		w = f
	}

	if err := treeseq.WriteNewick(ts, w); err != nil {
		return fmt.Errorf("while writing Newick trees: %v", err)
	}
	return nil
}

// load reads ts from either container format, trying the numeric archive
// first and falling back to the legacy flat file.
func load(path string) (*treeseq.TreeSequence, error) {
	if arc, err := treeseq.Load(path); err == nil {
		return arc.TreeSequence, nil
	}
	ts, _, _, err := treeseq.LoadLegacy(path)
	if err != nil {
		return nil, fmt.Errorf("not a recognized archive or legacy file: %v", err)
	}
	return ts, nil
}
