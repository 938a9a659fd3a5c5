// Copyright © 2022 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package sim implements a command to run a coalescent-with-recombination
// simulation and store its tree sequence.
package sim

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/js-arias/command"

	"github.com/sawyerx/coalescent"
	"github.com/sawyerx/coalescent/treeseq"
)

var Command = &command.Command{
	Usage: `sim -n|--samples <number> -m|--loci <number>
	[--seed <number>] [--recombination <rate>]
	[--pop <epoch>[,<epoch>...]] [--max-memory <bytes>]
	[--legacy] [-o|--output <file>]`,
	Short: "simulate a coalescent-with-recombination ancestral recombination graph",
	Long: `
Command sim runs the coalescent-with-recombination event loop over a sample
of --samples haplotypes along --loci discrete loci, and stores the resulting
tree sequence in a numeric archive.

The flags --samples (or -n) and --loci (or -m) are required. The flag
--recombination sets the scaled recombination rate between adjacent loci;
it defaults to 0, a sample with no recombination. The flag --seed sets the
random seed; by default, the current time is used.

By default, the population has a single constant-size epoch. Use --pop to
give a comma-separated list of epochs, each of the form
"<start-time>:<constant|exponential>:<param>", sorted by non-decreasing
start time. For a constant epoch, param is the population size; for an
exponential epoch, param is the exponential growth rate.

By default, the tree sequence is stored in the numeric archive format. Use
--legacy to store it in the deprecated flat-file format instead.

By default, the result is written to "out.carg" (or "out.trees" with
--legacy). Use --output, or -o, to set a different path.
	`,
	SetFlags: setFlags,
	Run:      run,
}

var (
	samples   int
	loci      int
	seed      int64
	recomb    float64
	popFlag   string
	maxMemory int64
	compress  bool
	legacy    bool
	output    string
)

func setFlags(c *command.Command) {
	c.Flags().IntVar(&samples, "samples", 0, "")
	c.Flags().IntVar(&samples, "n", 0, "")
	c.Flags().IntVar(&loci, "loci", 0, "")
	c.Flags().IntVar(&loci, "m", 0, "")
	c.Flags().Int64Var(&seed, "seed", 0, "")
	c.Flags().Float64Var(&recomb, "recombination", 0, "")
	c.Flags().StringVar(&popFlag, "pop", "", "")
	c.Flags().Int64Var(&maxMemory, "max-memory", 0, "")
	c.Flags().BoolVar(&compress, "compress", false, "")
	c.Flags().BoolVar(&legacy, "legacy", false, "")
	c.Flags().StringVar(&output, "output", "", "")
	c.Flags().StringVar(&output, "o", "", "")
}

func run(c *command.Command, args []string) (err error) {
	if samples < 2 {
		return c.UsageError("flag --samples must be at least 2")
	}
	if loci < 1 {
		return c.UsageError("flag --loci must be at least 1")
	}

	models, err := parsePopModels(popFlag)
	if err != nil {
		return c.UsageError(err.Error())
	}
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	cfg := coalescent.Config{
		SampleSize:        uint32(samples),
		NumLoci:           uint32(loci),
		RandomSeed:        uint64(seed),
		RecombinationRate: recomb,
		PopulationModels:  models,
		MaxMemory:         uint64(maxMemory),
	}

	s, err := coalescent.New(cfg)
	if err != nil {
		return fmt.Errorf("while configuring the simulation: %v", err)
	}
	if err := s.Run(context.Background(), coalescent.RunOptions{}); err != nil {
		return fmt.Errorf("while running the simulation: %v", err)
	}

	ts, err := treeseq.New(s.Records(), cfg.SampleSize, cfg.NumLoci)
	if err != nil {
		return fmt.Errorf("while building the tree sequence: %v", err)
	}

	parameters := fmt.Sprintf(`{"samples":%d,"loci":%d,"seed":%d,"recombination":%g}`,
		samples, loci, seed, recomb)

	if legacy {
		if output == "" {
			output = "out.trees"
		}
		flags := treeseq.LegacyComplete | treeseq.LegacySorted
		if err := treeseq.DumpLegacy(ts, output, flags, parameters); err != nil {
			return fmt.Errorf("while writing %q: %v", output, err)
		}
		fmt.Fprintf(c.Stdout(), "wrote %d records to %q\n", ts.NumRecords(), output)
		return nil
	}

	if output == "" {
		output = "out.carg"
	}
	dumpFlags := treeseq.FlagNone
	if compress {
		dumpFlags = treeseq.FlagCompress
	}
	env := treeseq.NewEnvironment()
	if err := treeseq.Dump(ts, output, env, parameters, dumpFlags); err != nil {
		return fmt.Errorf("while writing %q: %v", output, err)
	}
	fmt.Fprintf(c.Stdout(), "wrote %d records to %q (run %s)\n", ts.NumRecords(), output, env.RunID)
	return nil
}

// parsePopModels parses a comma-separated list of
// "<start-time>:<constant|exponential>:<param>" epochs, in the style of
// the "--bd <rate,rate>" mini-grammar this driver's teacher command uses.
func parsePopModels(s string) ([]coalescent.PopulationModel, error) {
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	models := make([]coalescent.PopulationModel, 0, len(parts))
	for _, p := range parts {
		fields := strings.Split(p, ":")
		if len(fields) != 3 {
			return nil, fmt.Errorf("flag --pop: expecting '<start-time>:<kind>:<param>', got %q", p)
		}
		start, err := strconv.ParseFloat(fields[0], 64)
		if err != nil {
			return nil, fmt.Errorf("flag --pop: invalid start time in %q: %v", p, err)
		}
		var kind coalescent.ModelKind
		switch fields[1] {
		case "constant":
			kind = coalescent.Constant
		case "exponential":
			kind = coalescent.Exponential
		default:
			return nil, fmt.Errorf("flag --pop: unknown epoch kind %q", fields[1])
		}
		param, err := strconv.ParseFloat(fields[2], 64)
		if err != nil {
			return nil, fmt.Errorf("flag --pop: invalid parameter in %q: %v", p, err)
		}
		models = append(models, coalescent.PopulationModel{StartTime: start, Kind: kind, Param: param})
	}
	if err := coalescent.ValidatePopulationModels(models); err != nil {
		return nil, err
	}
	return models, nil
}
