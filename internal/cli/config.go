package cli

import "fmt"

// ColorMode controls when the text report is colored.
type ColorMode int

const (
	ColorAuto   ColorMode = iota // color when stdout is a terminal
	ColorAlways                  // always use color
	ColorNever                   // never use color
)

// Config holds all configuration for one chashdemo run: building a lookup
// table from a real list, optionally sampling it and reloading weights,
// and printing a report.
type Config struct {
	// Paths are real-list files, or directories of shard files when
	// Recursive is set.
	Paths     []string
	Recursive bool
	Hidden    bool
	NoExclude bool
	Globs     []string

	// Name filtering, applied to each real's name before it reaches New.
	NamePatterns   []string
	NameFixed      bool
	NamePCRE       bool
	NameIgnoreCase bool
	NameInvert     bool

	// Lookup table construction.
	SegmentsPerWeight  int
	PoolSize           int
	DeviationTolerance float64
	Seed               int64
	Adjust             bool

	// Concurrent read-side sampling, in place of reporting raw cell
	// counts straight off the painted array.
	SampleCount int
	Workers     int

	// Hot weight reload: watch WeightsFile and repaint on every change.
	WeightsFile string

	JSONOutput bool
	Color      ColorMode
}

// Validate checks that the config is internally consistent.
func (c *Config) Validate() error {
	if len(c.Paths) == 0 {
		return fmt.Errorf("no real-list path specified")
	}
	if c.NameFixed && c.NamePCRE {
		return fmt.Errorf("cannot use -F (fixed) and -P (pcre) name filters together")
	}
	if c.SegmentsPerWeight < 0 {
		return fmt.Errorf("invalid segments-per-weight: %d", c.SegmentsPerWeight)
	}
	if c.PoolSize < 0 {
		return fmt.Errorf("invalid pool-size: %d", c.PoolSize)
	}
	if c.DeviationTolerance < 0 {
		return fmt.Errorf("invalid deviation-tolerance: %f", c.DeviationTolerance)
	}
	if c.SampleCount < 0 {
		return fmt.Errorf("invalid sample-count: %d", c.SampleCount)
	}
	if c.Workers < 0 {
		return fmt.Errorf("invalid workers: %d", c.Workers)
	}
	return nil
}
