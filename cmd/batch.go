package main

import (
	"encoding/json"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/paul-stiebitz/entity-extract/internal/ingest"
)

var (
	batchEntities    string
	batchConcurrency int
	batchOutput      string
	batchNoSave      bool
)

var batchCmd = &cobra.Command{
	Use:   "batch <file>",
	Short: "Extract entities from a batch file with bounded parallelism",
	Long:  "Splits the file on '---' delimiter lines and extracts every document concurrently, emitting one JSON result per document in input order.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		docs, err := ingest.LoadFile(args[0])
		if err != nil {
			return err
		}

		set, err := resolveEntitySet(batchEntities)
		if err != nil {
			return err
		}

		concurrency := batchConcurrency
		if concurrency <= 0 {
			concurrency = cfg.Batch.Concurrency
		}

		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		start := time.Now()
		results, err := env.Dispatcher.Run(ctx, docs, set, concurrency)
		if err != nil {
			return err
		}
		wall := time.Since(start)

		if !batchNoSave {
			metrics := summarize(results, concurrency, wall)
			if run, err := env.Store.SaveRun(ctx, metrics, results); err != nil {
				zap.L().Warn("failed to save run", zap.Error(err))
			} else {
				zap.L().Info("run saved", zap.String("run_id", run.ID))
			}
		}

		out := cmd.OutOrStdout()
		if batchOutput != "" && batchOutput != "-" {
			f, err := os.Create(batchOutput)
			if err != nil {
				return eris.Wrapf(err, "create %s", batchOutput)
			}
			defer f.Close()
			out = f
		}

		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return eris.Wrap(enc.Encode(results), "encode results")
	},
}

func init() {
	batchCmd.Flags().StringVar(&batchEntities, "entities", "", "comma-separated entity types (default: full catalog)")
	batchCmd.Flags().IntVar(&batchConcurrency, "concurrency", 0, "max documents in flight (default: config)")
	batchCmd.Flags().StringVar(&batchOutput, "output", "", "write results to a file instead of stdout")
	batchCmd.Flags().BoolVar(&batchNoSave, "no-save", false, "skip recording the run in the store")
	rootCmd.AddCommand(batchCmd)
}
