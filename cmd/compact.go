package main

import (
	"github.com/spf13/cobra"

	"github.com/grantley-gardens/tribunal-cli/internal/sitedata"
)

var compactOutput string

var compactCmd = &cobra.Command{
	Use:   "compact",
	Short: "Build the slim site dataset",
	Long:  "Strips bulky fields from the enriched dataset, precomputes filter stats, and attaches a per-decision search keyword index. The output is the JSON payload the static site loads.",
	RunE: func(cmd *cobra.Command, args []string) error {
		datasets := newDatasetStore(cfg)
		db, _, err := datasets.Load()
		if err != nil {
			return err
		}

		out := compactOutput
		if out == "" {
			out = cfg.Data.SitePath
		}
		return sitedata.Save(out, sitedata.Build(db))
	},
}

func init() {
	compactCmd.Flags().StringVar(&compactOutput, "output", "", "output path (default from config)")
	rootCmd.AddCommand(compactCmd)
}
