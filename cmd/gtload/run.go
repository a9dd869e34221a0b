package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/inodb/gtload/internal/config"
	"github.com/inodb/gtload/internal/genetrap"
	"github.com/inodb/gtload/internal/hitcount"
	"github.com/inodb/gtload/internal/input"
	"github.com/inodb/gtload/internal/load"
	"github.com/inodb/gtload/internal/logging"
	"github.com/inodb/gtload/internal/metrics"
	"github.com/inodb/gtload/internal/output"
	"github.com/inodb/gtload/internal/store"
)

func newRunCmd(v *viper.Viper) *cobra.Command {
	var noColor bool

	cmd := &cobra.Command{
		Use:   "run [flags] <input>...",
		Short: "Load GenBank gene trap records",
		Long: `Load GenBank gene trap sequence records. Inputs are processed in order; each
may be a local file, '-' for stdin, an http(s) URL or an s3://bucket/key URL,
optionally gzip-compressed.

Side-channel files (repeats, processed sequence keys, merge/split commands) and
the curation log are written to the output directory.`,
		Example: `  gtload run gbgss1.seq.gz gbgss2.seq.gz
  gtload run --best-hits best.tsv --single-hits single.txt gss.gb
  gtload run --mode bulk --workers 8 s3://genbank/gss/gbgss1.seq.gz`,
		Args: usageArgs(cobra.MinimumNArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(v)
			if err != nil {
				return usageError{err}
			}
			return runLoad(cmd, cfg, args, noColor)
		},
	}

	f := cmd.Flags()
	f.String("mode", "", "load mode: transactional or bulk")
	f.Int("workers", 0, "parse workers (default: number of CPUs)")
	f.String("best-hits", "", "best-hits alignment file")
	f.String("single-hits", "", "single-hit sequence ID file")
	f.StringP("output-dir", "o", "", "directory for side-channel files and the curation log")
	f.String("metrics-textfile", "", "write prometheus metrics to this file")
	f.BoolVar(&noColor, "no-color", false, "disable colored summary")
	bindFlags(v, f, map[string]string{
		config.KeyMode:            "mode",
		config.KeyWorkers:         "workers",
		config.KeyBestHits:        "best-hits",
		config.KeySingleHits:      "single-hits",
		config.KeyOutputDir:       "output-dir",
		config.KeyMetricsTextfile: "metrics-textfile",
	})
	return cmd
}

func runLoad(cmd *cobra.Command, cfg config.Config, inputs []string, noColor bool) error {
	ctx := cmd.Context()

	logs, err := logging.New(logging.Options{
		Verbose:      cfg.Verbose,
		DebugPath:    cfg.DebugLog,
		CurationPath: cfg.CurationLog,
	})
	if err != nil {
		return err
	}
	defer logs.Sync()
	logger := logs.Debug

	s, err := store.Open(cfg.StoreDriver, cfg.StoreDSN)
	if err != nil {
		return err
	}
	defer s.Close()
	if err := s.SetBulk(cfg.Mode == config.ModeBulk); err != nil {
		return err
	}

	inOpts := input.Options{S3: cfg.S3}
	hits, prints, err := hitcount.Load(ctx, cfg.BestHits, cfg.SingleHits, inOpts)
	if err != nil {
		return err
	}
	for _, fp := range prints {
		logger.Info("hit counts loaded",
			zap.String("path", fp.Path),
			zap.Int64("size", fp.Size),
			zap.Time("modTime", fp.ModTime),
			zap.Int("entries", fp.Entries))
	}

	ip, err := genetrap.NewInterpreter(cfg.GeneTrap, hits)
	if err != nil {
		return err
	}

	files, err := output.Create(cfg.OutputDir, config.RepeatsFile, config.ProcessedFile, config.MergeSplitFile)
	if err != nil {
		return err
	}
	defer files.Close()

	m := metrics.New()
	loader, err := load.New(ctx, s, ip, files, load.Options{
		Workers:   cfg.Workers,
		CreatedBy: cfg.CreatedBy,
		Input:     inOpts,
		Debug:     logger,
		Curation:  logs.Curation,
		Metrics:   m,
	})
	if err != nil {
		return err
	}

	logger.Info("load started",
		zap.Strings("inputs", inputs),
		zap.String("driver", cfg.StoreDriver),
		zap.String("mode", cfg.Mode))
	if err := loader.Run(ctx, inputs); err != nil {
		logger.Error("load failed", zap.Error(err))
		return err
	}
	if err := files.Close(); err != nil {
		return fmt.Errorf("close output files: %w", err)
	}

	sum := loader.Summary()
	logger.Info("load finished",
		zap.Int("records", sum.Records),
		zap.Int("skipped", sum.Skipped()),
		zap.Int("repeats", files.Repeats),
		zap.Duration("elapsed", sum.Elapsed))

	if cfg.MetricsTextfile != "" {
		if err := m.WriteTextfile(cfg.MetricsTextfile); err != nil {
			return fmt.Errorf("write metrics: %w", err)
		}
	}
	return sum.WriteSummary(cmd.OutOrStdout(), !noColor && !color.NoColor)
}
