package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/grantley-gardens/tribunal-cli/internal/model"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show enrichment progress for the working set",
	Long:  "Summarizes how much of the dataset holds text, where the text came from, and how many records still need work.",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, resumed, err := newDatasetStore(cfg).Load()
		if err != nil {
			return err
		}

		manifest, err := newManifestStore(cfg).Load()
		if err != nil {
			return err
		}

		formatStatus(os.Stdout, db, manifest)

		if resumed {
			fmt.Println("\nworking from checkpoint:", cfg.Data.OutputPath)
		} else {
			fmt.Println("\nno checkpoint yet; next enrich run starts from:", cfg.Data.InputPath)
		}
		if complete, ok := db.Metadata["enrichment_complete"].(bool); ok && complete {
			fmt.Println("last enrichment run completed at:", db.Metadata["enriched_at"])
		}
		return nil
	},
}

// formatStatus writes a tabular summary of the working set to w.
func formatStatus(out io.Writer, db *model.Database, manifest *model.Manifest) {
	total := len(db.Decisions)
	var fromAPI, fromPDF, pending, pdfPending, errored int
	for _, d := range db.Decisions {
		switch {
		case d.Text() != "" && d.TextSource == "pdf":
			fromPDF++
		case d.Text() != "":
			fromAPI++
		}
		if d.NeedsEnrichment() {
			pending++
		}
		if d.NeedsPDFText() {
			pdfPending++
		}
		if d.EnrichmentError {
			errored++
		}
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "METRIC\tCOUNT")
	_, _ = fmt.Fprintln(w, "------\t-----")
	_, _ = fmt.Fprintf(w, "decisions\t%d\n", total)
	_, _ = fmt.Fprintf(w, "with text (content api)\t%d\n", fromAPI)
	_, _ = fmt.Fprintf(w, "with text (pdf)\t%d\n", fromPDF)
	_, _ = fmt.Fprintf(w, "pending enrichment\t%d\n", pending)
	_, _ = fmt.Fprintf(w, "pending pdf text\t%d\n", pdfPending)
	_, _ = fmt.Fprintf(w, "enrichment errors\t%d\n", errored)
	_, _ = fmt.Fprintf(w, "manifest entries\t%d\n", len(manifest.PDFs))
	_ = w.Flush()
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
