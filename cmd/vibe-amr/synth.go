package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/inodb/vibe-amr/internal/amr"
	"github.com/inodb/vibe-amr/internal/fasta"
	"github.com/inodb/vibe-amr/internal/source"
	"github.com/inodb/vibe-amr/internal/synthetic"
)

func newSynthCmd() *cobra.Command {
	var (
		outputFile string
		mode       string
		opts       synthetic.Options
		width      int
	)

	cmd := &cobra.Command{
		Use:   "synth [flags] <catalog>...",
		Short: "Generate synthetic FASTA with known resistance states",
		Long: `Generate wild-type, mutant and other sequences from catalog variants.
Each FASTA header records the ARO, mode, truth label, mutation type and the
residue placed at every expected position, for use with 'vibe-amr accuracy'.`,
		Example: `  vibe-amr synth -o synthetic_protein.fasta card_snps.tsv
  vibe-amr synth --mode rna -n 20 --seed 7 card_snps.tsv`,
		Args: usageArgs(cobra.MinimumNArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			switch synthetic.Mode(mode) {
			case synthetic.Protein, synthetic.RNA:
				opts.Mode = synthetic.Mode(mode)
			default:
				return usageError{fmt.Errorf("unknown mode %q (want protein or rna)", mode)}
			}
			return runSynth(cmd, args, outputFile, width, opts)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&outputFile, "output", "o", "", "Output FASTA file (default: stdout)")
	f.StringVar(&mode, "mode", string(synthetic.Protein), "Sequence mode: protein or rna")
	f.IntVarP(&opts.N, "per-label", "n", synthetic.DefaultN, "AROs per truth label")
	f.Uint64Var(&opts.Seed, "seed", synthetic.DefaultSeed, "Random seed")
	f.IntSliceVar(&opts.Exclude, "exclude", synthetic.DefaultExclude, "AROs never used")
	f.IntVar(&width, "width", 0, "Wrap sequences at this width (0 disables)")

	return cmd
}

func runSynth(cmd *cobra.Command, catalogs []string, outputFile string, width int, opts synthetic.Options) error {
	opener := source.NewOpener(s3Config())
	opener.SetStdin(cmd.InOrStdin())

	loaded := make([][]*amr.Variant, len(catalogs))
	g, ctx := errgroup.WithContext(cmd.Context())
	for i, path := range catalogs {
		g.Go(func() error {
			variants, err := loadCatalog(ctx, opener, path, "", nil)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			loaded[i] = variants
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	var variants []*amr.Variant
	for _, vs := range loaded {
		variants = append(variants, vs...)
	}

	res := synthetic.Generate(variants, opts)
	for _, err := range res.Skipped {
		logger.Warn("variant not usable for synthetic data", zap.Error(err))
	}

	out, err := createOutput(cmd, outputFile)
	if err != nil {
		return err
	}
	defer out.Close()

	if err := fasta.WriteAll(out, res.Records, width); err != nil {
		return fmt.Errorf("write fasta: %w", err)
	}
	logger.Info("wrote synthetic sequences",
		zap.String("mode", string(opts.Mode)),
		zap.Int("records", len(res.Records)),
		zap.Int("skipped", len(res.Skipped)))
	return out.Close()
}
