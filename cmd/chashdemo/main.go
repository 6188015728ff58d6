// Command chashdemo builds a weighted consistent-hash lookup table from a
// real list, optionally samples and hot-reloads it, and prints a
// fragmentation report.
package main

import (
	"os"

	"github.com/dl/chash/internal/cli"
	"github.com/spf13/cobra"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg := cli.Config{}
	var colorFlag string
	exitCode := 0

	root := &cobra.Command{
		Use:           "chashdemo [paths...]",
		Short:         "Build and report on a weighted consistent-hash lookup table",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg.Paths = args
			switch colorFlag {
			case "always":
				cfg.Color = cli.ColorAlways
			case "never":
				cfg.Color = cli.ColorNever
			default:
				cfg.Color = cli.ColorAuto
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			exitCode = cli.Run(cfg)
			return nil
		},
	}

	flags := root.Flags()
	flags.BoolVarP(&cfg.Recursive, "recursive", "r", false, "treat paths as directories of real-list shard files")
	flags.BoolVar(&cfg.Hidden, "hidden", false, "include dotfiles and dot-directories when walking recursively")
	flags.BoolVar(&cfg.NoExclude, "no-exclude", false, "don't apply .chashignore/.gitignore while walking recursively")
	flags.StringSliceVar(&cfg.Globs, "glob", nil, "include/exclude glob for shard file names (prefix ! to exclude)")

	flags.StringSliceVarP(&cfg.NamePatterns, "name", "n", nil, "only include reals whose name matches this pattern (repeatable)")
	flags.BoolVarP(&cfg.NameFixed, "fixed-strings", "F", false, "treat --name patterns as literal strings")
	flags.BoolVarP(&cfg.NamePCRE, "pcre", "P", false, "treat --name patterns as PCRE2 regular expressions")
	flags.BoolVarP(&cfg.NameIgnoreCase, "ignore-case", "i", false, "case-insensitive --name matching")
	flags.BoolVarP(&cfg.NameInvert, "invert", "v", false, "keep reals that do NOT match --name")

	flags.IntVar(&cfg.SegmentsPerWeight, "segments-per-weight", 0, "head positions granted per weight unit (0 = default)")
	flags.IntVar(&cfg.PoolSize, "pool-size", 0, "unweighted rings in the round-robin pool (0 = default)")
	flags.Float64Var(&cfg.DeviationTolerance, "deviation-tolerance", 0, "Adjust's target window (0 = default)")
	flags.Int64Var(&cfg.Seed, "seed", 0, "deterministic RNG seed (0 = default)")
	flags.BoolVar(&cfg.Adjust, "adjust", false, "run the deviation-bounded adjustment pass after InitLookup")

	flags.IntVar(&cfg.SampleCount, "sample", 0, "fire this many synthetic requests and report sampled shares instead of raw cell counts")
	flags.IntVar(&cfg.Workers, "workers", 0, "sampler worker count (0 = NumCPU*2)")

	flags.StringVar(&cfg.WeightsFile, "weights-file", "", "watch this file and hot-reload weight changes into the live table")

	flags.BoolVar(&cfg.JSONOutput, "json", false, "print the report as JSON lines instead of text")
	flags.StringVar(&colorFlag, "color", "auto", "colorize text report: auto, always, never")

	if configArgs := cli.LoadConfigArgs(); len(configArgs) > 0 {
		root.SetArgs(append(configArgs, os.Args[1:]...))
	}

	if err := root.Execute(); err != nil {
		os.Stderr.WriteString("chashdemo: " + err.Error() + "\n")
		return 2
	}
	return exitCode
}
