package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/inodb/vibe-amr/internal/detect"
	"github.com/inodb/vibe-amr/internal/evaluate"
	"github.com/inodb/vibe-amr/internal/fasta"
	"github.com/inodb/vibe-amr/internal/source"
)

func newAccuracyCmd() *cobra.Command {
	var outputFile, confusionFile string

	cmd := &cobra.Command{
		Use:   "accuracy [flags] <report> <synthetic-fasta>",
		Short: "Score a detection report against synthetic truth",
		Long: `Compare the verdicts of a detection report produced from synthetic reads
with the truth labels in the synthetic FASTA headers, and write sensitivity,
specificity and related metrics.`,
		Example: `  vibe-amr accuracy report.tsv synthetic_protein.fasta
  vibe-amr accuracy --confusion confusion.tsv -o metrics.tsv report.tsv synthetic.fasta`,
		Args: usageArgs(cobra.ExactArgs(2)),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAccuracy(cmd, args[0], args[1], outputFile, confusionFile)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&outputFile, "output", "o", "", "Metrics output file (default: stdout)")
	f.StringVar(&confusionFile, "confusion", "", "Also write the confusion matrix to this file")

	return cmd
}

func runAccuracy(cmd *cobra.Command, reportPath, fastaPath, outputFile, confusionFile string) error {
	opener := source.NewOpener(s3Config())
	opener.SetStdin(cmd.InOrStdin())

	var (
		rows []*detect.Row
		recs []fasta.Record
	)
	g, ctx := errgroup.WithContext(cmd.Context())
	g.Go(func() error {
		return readWith(ctx, opener, reportPath, func(r io.Reader) (err error) {
			rows, err = evaluate.ReadReport(r)
			return err
		})
	})
	g.Go(func() error {
		return readWith(ctx, opener, fastaPath, func(r io.Reader) (err error) {
			recs, err = fasta.ReadAll(r)
			return err
		})
	})
	if err := g.Wait(); err != nil {
		return err
	}

	headers := make([]string, len(recs))
	for i, r := range recs {
		headers[i] = r.Header
	}
	c, err := evaluate.CheckAccuracy(rows, headers)
	if err != nil {
		return err
	}
	logger.Info("scored report",
		zap.Int("references", c.References),
		zap.Int("unmatched", c.Unmatched),
		zap.Int("rows", len(rows)))

	out, err := createOutput(cmd, outputFile)
	if err != nil {
		return err
	}
	defer out.Close()
	if err := evaluate.WriteMetrics(out, c.Metrics()); err != nil {
		return fmt.Errorf("write metrics: %w", err)
	}
	if err := out.Close(); err != nil {
		return err
	}

	if confusionFile != "" {
		cf, err := createOutput(cmd, confusionFile)
		if err != nil {
			return err
		}
		defer cf.Close()
		if err := evaluate.WriteConfusionMatrix(cf, c); err != nil {
			return fmt.Errorf("write confusion matrix: %w", err)
		}
		return cf.Close()
	}
	return nil
}

func readWith(ctx context.Context, opener *source.Opener, path string, fn func(io.Reader) error) error {
	rc, err := opener.Open(ctx, path)
	if err != nil {
		return err
	}
	defer rc.Close()
	if err := fn(rc); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}
