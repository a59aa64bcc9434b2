package main

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/grantley-gardens/tribunal-cli/internal/enrich"
)

var extractOverwrite bool

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Derive structured fields from decision text",
	Long:  "Repairs scraped metadata (future-dated decisions, invalid region codes), runs the field extractors over every decision that holds text, and drops garbage values. Offline and idempotent.",
	RunE: func(cmd *cobra.Command, args []string) error {
		datasets := newDatasetStore(cfg)
		db, resumed, err := datasets.Load()
		if err != nil {
			return err
		}
		if !resumed {
			// Without a prior enrich run there is no text to extract from,
			// but the repair passes still apply to the scraped index.
			cmd.Println("note: no enriched dataset found, running against the scrape index")
		}

		enrich.RunFieldExtraction(db, extractOverwrite, time.Now())

		return datasets.Save(db)
	},
}

func init() {
	extractCmd.Flags().BoolVar(&extractOverwrite, "overwrite", false, "recompute applicant and respondent instead of filling only absent ones")
	rootCmd.AddCommand(extractCmd)
}
