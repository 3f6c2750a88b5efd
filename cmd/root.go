package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/paul-stiebitz/entity-extract/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "entity-extract",
	Short: "Entity extraction over a local Ollama backend",
	Long:  "Extracts structured entities (people, organizations, dates, money) from email text via a local Ollama model, with streaming and bounded-concurrency batch dispatch.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
