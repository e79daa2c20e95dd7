package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/inodb/vibe-amr/internal/amr"
	"github.com/inodb/vibe-amr/internal/catalog"
	"github.com/inodb/vibe-amr/internal/detect"
	"github.com/inodb/vibe-amr/internal/duckdb"
	"github.com/inodb/vibe-amr/internal/metrics"
	"github.com/inodb/vibe-amr/internal/output"
	"github.com/inodb/vibe-amr/internal/pileup"
	"github.com/inodb/vibe-amr/internal/source"
)

func newDetectCmd() *cobra.Command {
	var outputFile string

	cmd := &cobra.Command{
		Use:   "detect [flags] <catalog> <pileup>",
		Short: "Classify catalog variants against a pileup",
		Long: `Classify every resistance variant in a catalog against samtools mpileup
evidence. Inputs may be local files, gzip-compressed, '-' for stdin or
s3://bucket/key URIs.`,
		Example: `  vibe-amr detect card_snps.tsv sample.pileup
  vibe-amr detect -o report.tsv --db results.duckdb card_snps.tsv sample.pileup.gz
  samtools mpileup ... | vibe-amr detect card_snps.tsv -`,
		Args: usageArgs(cobra.ExactArgs(2)),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDetect(cmd, args[0], args[1], outputFile)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&outputFile, "output", "o", "", "Output file (default: stdout)")
	f.Int("workers", 0, "Parallel classification workers (default: number of CPUs)")
	f.Int("progress-every", detect.DefaultProgressEvery, "Log progress every N variants (0 disables)")
	f.String("error-log", catalog.DefaultErrorLog, "File collecting rejected catalog rows (empty disables)")
	f.String("db", "", "DuckDB database to record the run in")
	f.String("metrics-file", "", "Write Prometheus metrics in textfile format")
	f.String("pileup-cache", "", "Directory for parsed pileup cache files")
	f.String("s3-region", "", "AWS region for s3:// inputs")
	f.String("s3-endpoint", "", "Custom S3 endpoint")
	f.Bool("s3-path-style", false, "Use path-style S3 addressing")

	for key, flag := range map[string]string{
		"detect.workers":        "workers",
		"detect.progress_every": "progress-every",
		"detect.error_log":      "error-log",
		"detect.db":             "db",
		"detect.metrics_file":   "metrics-file",
		"detect.pileup_cache":   "pileup-cache",
		"s3.region":             "s3-region",
		"s3.endpoint":           "s3-endpoint",
		"s3.path_style":         "s3-path-style",
	} {
		_ = viper.BindPFlag(key, f.Lookup(flag))
	}

	return cmd
}

func s3Config() source.S3Config {
	return source.S3Config{
		Region:    viper.GetString("s3.region"),
		Endpoint:  viper.GetString("s3.endpoint"),
		PathStyle: viper.GetBool("s3.path_style"),
	}
}

func runDetect(cmd *cobra.Command, catalogPath, pileupPath, outputFile string) error {
	ctx := cmd.Context()
	opener := source.NewOpener(s3Config())
	opener.SetStdin(cmd.InOrStdin())

	m := metrics.New()

	recs, err := loadPileup(ctx, opener, pileupPath, viper.GetString("detect.pileup_cache"))
	if err != nil {
		return err
	}
	idx := pileup.NewIndex(recs)

	variants, err := loadCatalog(ctx, opener, catalogPath, viper.GetString("detect.error_log"), m)
	if err != nil {
		return err
	}

	out, err := createOutput(cmd, outputFile)
	if err != nil {
		return err
	}
	defer out.Close()

	writers := []detect.RowWriter{output.NewTabWriter(out)}

	if dbPath := viper.GetString("detect.db"); dbPath != "" {
		store, err := duckdb.Open(dbPath)
		if err != nil {
			return err
		}
		defer store.Close()

		run, err := store.BeginRun(ctx, fingerprint(pileupPath), catalogPath)
		if err != nil {
			return err
		}
		logger.Info("recording run", zap.String("db", dbPath), zap.String("run_id", run.ID))
		writers = append(writers, duckdb.NewResultWriter(store, run.ID))
	}

	det := detect.NewDetector(idx)
	det.SetLogger(logger)
	det.SetMetrics(m)
	det.SetWorkers(viper.GetInt("detect.workers"))
	det.SetProgressEvery(viper.GetInt("detect.progress_every"))

	detectErr := det.DetectAll(ctx, variants, output.NewMultiWriter(writers...))
	logger.Info("detection finished", zap.Int64("variants", det.Processed()))

	if path := viper.GetString("detect.metrics_file"); path != "" {
		if err := m.WriteTextfile(path); err != nil {
			return errors.Join(detectErr, err)
		}
	}
	return detectErr
}

func isLocal(path string) bool {
	return path != source.Stdin && !strings.HasPrefix(path, "s3://")
}

func fingerprint(path string) duckdb.FileFingerprint {
	if isLocal(path) {
		if fp, err := duckdb.StatFile(path); err == nil {
			return fp
		}
	}
	return duckdb.FileFingerprint{Path: path}
}

// loadPileup parses the pileup, going through the gob cache for local
// files when cacheDir is set.
func loadPileup(ctx context.Context, opener *source.Opener, path, cacheDir string) ([]*pileup.Record, error) {
	var cache *duckdb.PileupCache
	fp := fingerprint(path)
	if cacheDir != "" && fp.Local() {
		cache = duckdb.NewPileupCache(cacheDir, path)
		if cache.Valid(fp) {
			recs, err := cache.Load()
			if err == nil {
				logger.Info("loaded pileup from cache", zap.String("path", path), zap.Int("records", len(recs)))
				return recs, nil
			}
			logger.Warn("pileup cache unreadable, reparsing", zap.Error(err))
		}
	}

	rc, err := opener.Open(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("open pileup: %w", err)
	}
	defer rc.Close()

	recs, skipped, err := pileup.ReadAll(pileup.NewParser(rc))
	if err != nil {
		return nil, err
	}
	for _, s := range skipped {
		logger.Debug("skipping pileup line", zap.Error(s))
	}
	if len(skipped) > 0 {
		logger.Warn("pileup lines skipped", zap.Int("skipped", len(skipped)))
	}
	logger.Info("loaded pileup", zap.String("path", path), zap.Int("records", len(recs)))

	if cache != nil {
		if err := cache.Write(recs, fp); err != nil {
			logger.Warn("could not write pileup cache", zap.Error(err))
		}
	}
	return recs, nil
}

func loadCatalog(ctx context.Context, opener *source.Opener, path, errorLog string, m *metrics.Metrics) ([]*amr.Variant, error) {
	rc, err := opener.Open(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	defer rc.Close()

	var sink catalog.ErrorSink
	if errorLog != "" {
		fs, err := catalog.OpenFileSink(errorLog)
		if err != nil {
			return nil, err
		}
		defer fs.Close()
		sink = fs
	}

	loader := catalog.NewLoader(sink)
	loader.SetLogger(logger)
	loader.SetMetrics(m)
	variants, err := loader.Load(rc)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	return variants, nil
}
