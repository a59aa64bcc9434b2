package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/grantley-gardens/tribunal-cli/internal/enrich"
	"github.com/grantley-gardens/tribunal-cli/internal/pdftext"
)

var (
	pdfsAll   bool
	pdfsLimit int
)

var pdfsCmd = &cobra.Command{
	Use:   "pdfs",
	Short: "Download attachment PDFs and extract their text",
	Long:  "Downloads each decision's attachment PDFs, extracts text, and backfills full_text for decisions the content API left empty. The manifest tracks downloads so reruns skip completed work.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		datasets := newDatasetStore(cfg)
		db, _, err := datasets.Load()
		if err != nil {
			return err
		}

		manifests := newManifestStore(cfg)
		manifest, err := manifests.Load()
		if err != nil {
			return err
		}

		fetcher := &enrich.PDFFetcher{
			Client:       newAttachmentClient(cfg),
			Extractor:    pdftext.NewPdfToText(cfg.PDF.PdfToTextPath),
			Dataset:      datasets,
			Manifest:     manifests,
			PDFDir:       cfg.Data.PDFDir,
			OCRThreshold: cfg.PDF.OCRThreshold,
			Concurrency:  cfg.Pipeline.Concurrency,
			SaveEvery:    cfg.Pipeline.SaveEveryPDF,
			LogEvery:     cfg.Pipeline.LogEveryPDF,
			All:          pdfsAll,
			Limit:        pdfsLimit,
		}
		_, err = fetcher.Run(ctx, db, manifest)
		return err
	},
}

func init() {
	pdfsCmd.Flags().BoolVar(&pdfsAll, "all", false, "process every decision with attachments, not just textless ones")
	pdfsCmd.Flags().IntVar(&pdfsLimit, "limit", 0, "max decisions to process this run (0 = all)")
	rootCmd.AddCommand(pdfsCmd)
}
