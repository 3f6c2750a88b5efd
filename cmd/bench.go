package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/paul-stiebitz/entity-extract/internal/bench"
	"github.com/paul-stiebitz/entity-extract/internal/ingest"
)

var (
	benchEntities string
	benchLevels   []int
	benchFormat   string
	benchOutput   string
	benchNoSave   bool
)

var benchCmd = &cobra.Command{
	Use:   "bench <file>",
	Short: "Compare streaming and batch extraction times across concurrency levels",
	Long:  "Runs every document window sequentially in streaming mode, then concurrently in batch mode, once per concurrency level, and writes a timing report.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		docs, err := ingest.LoadFile(args[0])
		if err != nil {
			return err
		}

		set, err := resolveEntitySet(benchEntities)
		if err != nil {
			return err
		}

		levels := benchLevels
		if len(levels) == 0 {
			levels = cfg.Bench.ConcurrencyLevels
		}

		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		metrics, err := env.Runner.Sweep(ctx, docs, set, levels)
		if err != nil {
			return err
		}

		if !benchNoSave {
			for _, m := range metrics {
				if run, err := env.Store.SaveRun(ctx, m, nil); err != nil {
					zap.L().Warn("failed to save run", zap.Error(err))
				} else {
					zap.L().Info("run saved",
						zap.String("run_id", run.ID),
						zap.String("mode", string(m.Mode)),
						zap.Int("concurrency", m.Concurrency))
				}
			}
		}

		output := benchOutput
		if output == "" {
			output = cfg.Bench.OutputFile
		}
		if output != "" && output != "-" {
			f, err := os.Create(output)
			if err != nil {
				return eris.Wrapf(err, "create %s", output)
			}
			defer f.Close()
			if err := bench.WriteReport(f, metrics, benchFormat); err != nil {
				return err
			}
			zap.L().Info("report written", zap.String("path", output))
		}

		return bench.WriteReport(cmd.OutOrStdout(), metrics, benchFormat)
	},
}

func init() {
	benchCmd.Flags().StringVar(&benchEntities, "entities", "", "comma-separated entity types (default: full catalog)")
	benchCmd.Flags().IntSliceVar(&benchLevels, "levels", nil, "concurrency levels to sweep (default: config)")
	benchCmd.Flags().StringVar(&benchFormat, "format", bench.FormatText, "report format: text or yaml")
	benchCmd.Flags().StringVar(&benchOutput, "output", "", "report file path (default: config, '-' for stdout only)")
	benchCmd.Flags().BoolVar(&benchNoSave, "no-save", false, "skip recording runs in the store")
	rootCmd.AddCommand(benchCmd)
}
