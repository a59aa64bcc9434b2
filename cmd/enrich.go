package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/grantley-gardens/tribunal-cli/internal/enrich"
)

var (
	enrichLimit       int
	enrichConcurrency int
)

var enrichCmd = &cobra.Command{
	Use:   "enrich",
	Short: "Fetch decision text from the GOV.UK content API",
	Long:  "Fetches full text and attachment lists for every decision that has none yet. Progress is checkpointed, so an interrupted run resumes where it left off.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		datasets := newDatasetStore(cfg)
		db, _, err := datasets.Load()
		if err != nil {
			return err
		}

		concurrency := enrichConcurrency
		if concurrency == 0 {
			concurrency = cfg.Pipeline.Concurrency
		}

		enricher := &enrich.Enricher{
			Content:     newContentClient(cfg),
			Store:       datasets,
			Concurrency: concurrency,
			SaveEvery:   cfg.Pipeline.SaveEveryText,
			LogEvery:    cfg.Pipeline.LogEveryText,
			Limit:       enrichLimit,
		}
		_, err = enricher.Run(ctx, db)
		return err
	},
}

func init() {
	enrichCmd.Flags().IntVar(&enrichLimit, "limit", 0, "max decisions to fetch this run (0 = all)")
	enrichCmd.Flags().IntVar(&enrichConcurrency, "concurrency", 0, "worker count (default from config)")
	rootCmd.AddCommand(enrichCmd)
}
