// Copyright © 2022 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package mutate implements a command to drop infinite-sites mutations
// onto a stored tree sequence and print the resulting haplotype matrix.
package mutate

import (
	"fmt"
	"io"
	"os"
	"time"

	"golang.org/x/exp/rand"

	"github.com/js-arias/command"

	"github.com/sawyerx/coalescent/haplotype"
	"github.com/sawyerx/coalescent/treeseq"
)

var Command = &command.Command{
	Usage: `mutate -i|--input <file> --rate <mu>
	[--seed <number>] [-o|--output <file>]`,
	Short: "drop mutations and print the haplotype matrix",
	Long: `
Command mutate reads an archive written by "coalescent sim", Poisson-drops
infinite-sites mutations over its branches at the scaled rate given by
--rate, and prints the resulting n-by-S segregating-site matrix: one line
per sample, one character per site, "1" for the derived allele and "0" for
the ancestral one.

The flag --input, or -i, is required. The flag --rate is required. Use
--seed to fix the random stream; by default the current time is used. By
default the matrix is printed to the standard output; use --output, or
-o, to write it to a file instead.
	`,
	SetFlags: setFlags,
	Run:      run,
}

var (
	input  string
	rate   float64
	seed   int64
	output string
)

func setFlags(c *command.Command) {
	c.Flags().StringVar(&input, "input", "", "")
	c.Flags().StringVar(&input, "i", "", "")
	c.Flags().Float64Var(&rate, "rate", 0, "")
	c.Flags().Int64Var(&seed, "seed", 0, "")
	c.Flags().StringVar(&output, "output", "", "")
	c.Flags().StringVar(&output, "o", "", "")
}

func run(c *command.Command, args []string) (err error) {
	if input == "" {
		return c.UsageError("flag --input must be defined")
	}
	if rate <= 0 {
		return c.UsageError("flag --rate must be positive")
	}

	arc, err := treeseq.Load(input)
	if err != nil {
		return fmt.Errorf("while reading %q: %v", input, err)
	}
	ts := arc.TreeSequence

	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(uint64(seed)))
	muts, err := ts.GenerateMutations(rate, rng)
	if err != nil {
		return fmt.Errorf("while dropping mutations: %v", err)
	}

	m, err := haplotype.Generate(ts)
	if err != nil {
		return fmt.Errorf("while building the haplotype matrix: %v", err)
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
	if err := writeMatrix(w, m); err != nil {
		return fmt.Errorf("while writing the haplotype matrix: %v", err)
	}

	fmt.Fprintf(c.Stdout(), "dropped %d mutations over %d samples\n", len(muts), m.NumSamples())
	return nil
}

func writeMatrix(w io.Writer, m *haplotype.Matrix) error {
	row := make([]byte, m.NumSites())
	for s := 1; s <= m.NumSamples(); s++ {
		for site := 0; site < m.NumSites(); site++ {
			if m.Get(s, site) {
				row[site] = '1'
			} else {
				row[site] = '0'
			}
		}
		if _, err := fmt.Fprintf(w, "%d\t%s\n", s, row); err != nil {
			return err
		}
	}
	return nil
}
