// Copyright © 2022 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package convert implements a command to translate a tree sequence
// between the numeric archive format and the deprecated legacy flat file.
package convert

import (
	"fmt"

	"github.com/js-arias/command"

	"github.com/sawyerx/coalescent/treeseq"
)

var Command = &command.Command{
	Usage: `convert -i|--input <file> -o|--output <file>
	[--to-legacy | --to-archive] [--compress]`,
	Short: "convert between the archive and legacy flat file",
	Long: `
Command convert reads a tree sequence in one container format and rewrites
it in the other.

The flags --input (-i) and --output (-o) are required. By default, the
input is read as a numeric archive and written as a legacy flat file; use
--to-archive to go the other way. Use --compress to enable byte-shuffle +
deflate compression when writing an archive.

Round-tripping through the legacy format is lossy: §9 of the format notes
that its stored f32 time loses precision against the archive's f64, so a
legacy-to-archive-to-legacy round trip is advisory, not exact.
	`,
	SetFlags: setFlags,
	Run:      run,
}

var (
	input     string
	output    string
	toLegacy  bool
	toArchive bool
	compress  bool
)

func setFlags(c *command.Command) {
	c.Flags().StringVar(&input, "input", "", "")
	c.Flags().StringVar(&input, "i", "", "")
	c.Flags().StringVar(&output, "output", "", "")
	c.Flags().StringVar(&output, "o", "", "")
	c.Flags().BoolVar(&toLegacy, "to-legacy", false, "")
	c.Flags().BoolVar(&toArchive, "to-archive", false, "")
	c.Flags().BoolVar(&compress, "compress", false, "")
}

func run(c *command.Command, args []string) (err error) {
	if input == "" {
		return c.UsageError("flag --input must be defined")
	}
	if output == "" {
		return c.UsageError("flag --output must be defined")
	}
	if toLegacy && toArchive {
		return c.UsageError("flags --to-legacy and --to-archive are mutually exclusive")
	}
	if !toArchive {
		toLegacy = true
	}

	if toLegacy {
		arc, err := treeseq.Load(input)
		if err != nil {
			return fmt.Errorf("while reading archive %q: %v", input, err)
		}
		flags := treeseq.LegacyComplete | treeseq.LegacySorted
		if err := treeseq.DumpLegacy(arc.TreeSequence, output, flags, arc.Parameters); err != nil {
			return fmt.Errorf("while writing legacy file %q: %v", output, err)
		}
		fmt.Fprintf(c.Stdout(), "converted %d records from archive %q to legacy file %q\n",
			arc.TreeSequence.NumRecords(), input, output)
		return nil
	}

	ts, metadata, _, err := treeseq.LoadLegacy(input)
	if err != nil {
		return fmt.Errorf("while reading legacy file %q: %v", input, err)
	}
	dumpFlags := treeseq.FlagNone
	if compress {
		dumpFlags = treeseq.FlagCompress
	}
	env := treeseq.NewEnvironment()
	if err := treeseq.Dump(ts, output, env, metadata, dumpFlags); err != nil {
		return fmt.Errorf("while writing archive %q: %v", output, err)
	}
	fmt.Fprintf(c.Stdout(), "converted %d records from legacy file %q to archive %q\n",
		ts.NumRecords(), input, output)
	return nil
}
