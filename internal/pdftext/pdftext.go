// Package pdftext turns downloaded PDF attachments into plain text plus a
// page count. It is a sealed boundary: extraction failures surface as empty
// text and zero pages, never as errors, so one corrupt PDF cannot abort a
// pipeline run.
package pdftext

import (
	"context"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"go.uber.org/zap"
)

// Extractor extracts text content from PDF files.
type Extractor interface {
	ExtractText(ctx context.Context, pdfPath string) (string, error)
}

// Result holds everything the manifest needs about one extracted PDF.
type Result struct {
	Text        string
	PageCount   int
	CharCount   int
	OCRRequired bool
}

// Extract runs the extractor on pdfPath and counts pages. ocrThreshold is
// the character count below which the PDF is flagged as needing OCR (an
// image-only scan).
func Extract(ctx context.Context, ex Extractor, pdfPath string, ocrThreshold int) Result {
	text, err := ex.ExtractText(ctx, pdfPath)
	if err != nil {
		zap.L().Debug("pdf text extraction failed",
			zap.String("path", pdfPath),
			zap.Error(err),
		)
		return Result{OCRRequired: true}
	}

	pages := pageCount(pdfPath)

	return Result{
		Text:        text,
		PageCount:   pages,
		CharCount:   len(text),
		OCRRequired: len(strings.TrimSpace(text)) < ocrThreshold,
	}
}

// pageCount returns the PDF's page count, or 0 if the file is unreadable.
func pageCount(pdfPath string) int {
	n, err := api.PageCountFile(pdfPath)
	if err != nil {
		zap.L().Debug("pdf page count failed",
			zap.String("path", pdfPath),
			zap.Error(err),
		)
		return 0
	}
	return n
}
