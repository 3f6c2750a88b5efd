package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/paul-stiebitz/entity-extract/internal/model"
)

var runsLimit int

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List recorded extraction runs",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		runs, err := env.Store.ListRuns(ctx, runsLimit)
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tMODE\tCONC\tDOCS\tOK\tFAILED\tWALL\tCREATED")
		for _, r := range runs {
			fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%d\t%d\t%s\t%s\n",
				r.ID, r.Mode, r.Concurrency, r.DocCount, r.Succeeded, r.Failed,
				model.FormatSeconds(r.WallClock), r.CreatedAt.Format("2006-01-02 15:04:05"))
		}
		return eris.Wrap(w.Flush(), "flush table")
	},
}

var runsShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Print a run's per-document results",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		results, err := env.Store.GetRunResults(ctx, args[0])
		if err != nil {
			return err
		}

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return eris.Wrap(enc.Encode(results), "encode results")
	},
}

func init() {
	runsCmd.Flags().IntVar(&runsLimit, "limit", 20, "max runs to list")
	runsCmd.AddCommand(runsShowCmd)
	rootCmd.AddCommand(runsCmd)
}
