package cli

import (
	"fmt"
	"os"
	"os/signal"

	"github.com/charmbracelet/log"
	"github.com/dl/chash"
	"github.com/dl/chash/internal/chashlog"
	"github.com/dl/chash/internal/discover"
	"github.com/dl/chash/internal/ingest"
	"github.com/dl/chash/internal/namefilter"
	"github.com/dl/chash/internal/reload"
	"github.com/dl/chash/internal/report"
	"github.com/dl/chash/internal/sampler"
)

// logWarn writes a warning to stderr.
func logWarn(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "chashdemo: "+format+"\n", args...)
}

// shardBatchThreshold is the number of discovered shard files above which
// LoadShards uses its io_uring batch path instead of opening them one by
// one.
const shardBatchThreshold = 4

// Run builds a lookup table from cfg's real list, optionally samples and
// hot-reloads it, and prints a fragmentation report. Returns a process
// exit code: 0 on success, 2 on error.
func Run(cfg Config) int {
	logger := chashlog.New(log.InfoLevel)

	reals, err := loadReals(cfg)
	if err != nil {
		logWarn("loading real list: %v", err)
		return 2
	}
	reals, err = filterReals(reals, cfg)
	if err != nil {
		logWarn("invalid name filter: %v", err)
		return 2
	}
	if len(reals) == 0 {
		logWarn("no reals matched after filtering")
		return 2
	}

	chashReals, ids, weights := ingest.Split(reals)
	names := make(map[uint32]string, len(reals))
	for _, r := range reals {
		names[r.ID] = r.Name
	}

	u, err := chash.New[uint32](chashReals, ids, weights, chash.Config{
		SegmentsPerWeight:  cfg.SegmentsPerWeight,
		PoolSize:           cfg.PoolSize,
		DeviationTolerance: cfg.DeviationTolerance,
		Seed:               cfg.Seed,
		Progress:           logger.Progress,
	})
	if err != nil {
		logWarn("building lookup table: %v", err)
		return 2
	}

	lookup := make([]uint32, u.LookupSize())
	u.InitLookup(lookup)
	if cfg.Adjust {
		u.Adjust(lookup)
	}

	formatter := reportFormatter(cfg)
	w := report.NewWriter()
	printReport(u, lookup, names, cfg, formatter, w)

	if cfg.WeightsFile != "" {
		return runReload(u, lookup, names, cfg, formatter, w, logger)
	}
	return 0
}

func loadReals(cfg Config) ([]ingest.Real, error) {
	if len(cfg.Paths) == 1 && cfg.Paths[0] == "-" {
		return ingest.ReadStdin()
	}

	if cfg.Recursive {
		return loadRecursive(cfg)
	}
	return loadFiles(cfg.Paths)
}

func loadFiles(paths []string) ([]ingest.Real, error) {
	if len(paths) > shardBatchThreshold {
		return ingest.LoadShards(paths)
	}

	var reals []ingest.Real
	for _, path := range paths {
		parsed, err := ingest.ReadReal(path)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}
		reals = append(reals, parsed...)
	}
	return reals, nil
}

func loadRecursive(cfg Config) ([]ingest.Real, error) {
	shardCh, errCh := discover.Walk(cfg.Paths, discover.Options{
		Recursive: true,
		NoExclude: cfg.NoExclude,
		Hidden:    cfg.Hidden,
		Globs:     cfg.Globs,
	})

	go func() {
		for err := range errCh {
			logWarn("discover: %v", err)
		}
	}()

	var shardPaths []string
	for entry := range shardCh {
		shardPaths = append(shardPaths, entry.Path)
	}
	return loadFiles(shardPaths)
}

func filterReals(reals []ingest.Real, cfg Config) ([]ingest.Real, error) {
	if len(cfg.NamePatterns) == 0 {
		return reals, nil
	}

	filter, err := namefilter.New(cfg.NamePatterns, namefilter.Options{
		Fixed:      cfg.NameFixed,
		PCRE:       cfg.NamePCRE,
		IgnoreCase: cfg.NameIgnoreCase,
		Invert:     cfg.NameInvert,
	})
	if err != nil {
		return nil, err
	}

	filtered := make([]ingest.Real, 0, len(reals))
	for _, r := range reals {
		if filter.Match(r.Bytes()) {
			filtered = append(filtered, r)
		}
	}
	return filtered, nil
}

func reportFormatter(cfg Config) report.Formatter {
	if cfg.JSONOutput {
		return report.NewJSONFormatter()
	}

	useColor := false
	switch cfg.Color {
	case ColorAlways:
		useColor = true
	case ColorNever:
		useColor = false
	case ColorAuto:
		useColor = report.StdoutIsTerminal()
	}

	styles := report.NoStyles()
	if useColor {
		styles = report.NewStyles()
	}
	return report.NewTextFormatter(styles, useColor)
}

func printReport(u *chash.Updater[uint32], lookup []uint32, names map[uint32]string, cfg Config, f report.Formatter, w *report.Writer) {
	var snap report.Snapshot
	if cfg.SampleCount > 0 {
		tally := sampler.New(cfg.Workers, lookup).Sample(cfg.SampleCount)
		snap = report.BuildFromTally(u, tally, names)
	} else {
		snap = report.Build(u, lookup, names)
	}
	if err := w.WriteSnapshot(f, snap); err != nil {
		logWarn("writing report: %v", err)
	}
}

func runReload(u *chash.Updater[uint32], lookup []uint32, names map[uint32]string, cfg Config, f report.Formatter, w *report.Writer, logger *chashlog.Logger) int {
	r, err := reload.NewReloader(cfg.WeightsFile, u, lookup)
	if err != nil {
		logWarn("watching %s: %v", cfg.WeightsFile, err)
		return 2
	}

	r.OnReload = func(lines []reload.WeightLine) {
		logger.Info("weights reloaded", "count", len(lines))
		printReport(u, lookup, names, cfg, f, w)
	}
	r.OnError = func(err error) {
		logWarn("reload: %v", err)
	}

	if err := r.LoadInitial(); err != nil {
		logWarn("initial weights load %s: %v", cfg.WeightsFile, err)
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt)
	done := make(chan struct{})
	go func() {
		<-sig
		close(done)
	}()

	r.Run(done)
	return 0
}
