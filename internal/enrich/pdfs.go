package enrich

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/grantley-gardens/tribunal-cli/internal/fetcher"
	"github.com/grantley-gardens/tribunal-cli/internal/model"
	"github.com/grantley-gardens/tribunal-cli/internal/pdftext"
	"github.com/grantley-gardens/tribunal-cli/internal/resilience"
	"github.com/grantley-gardens/tribunal-cli/internal/store"
)

// AttachmentDownloader is the binary fetch surface the PDF stage consumes.
type AttachmentDownloader interface {
	Download(ctx context.Context, url, dest string) error
}

// PDFFetcher runs the attachment stage: download each decision's PDFs, pull
// text out of them, and backfill full_text for records the content API left
// empty. The manifest is the stage's own checkpoint; a URL already present
// with its file on disk is never fetched again.
type PDFFetcher struct {
	Client       AttachmentDownloader
	Extractor    pdftext.Extractor
	Dataset      *store.DatasetStore
	Manifest     *store.ManifestStore
	PDFDir       string
	OCRThreshold int
	Concurrency  int
	SaveEvery    int
	LogEvery     int
	All          bool // process every record with attachments, not just textless ones
	Limit        int
}

// Run executes the PDF stage against db and manifest. Decisions are processed
// concurrently; the PDFs within one decision sequentially, in listed order.
func (p *PDFFetcher) Run(ctx context.Context, db *model.Database, manifest *model.Manifest) (Stats, error) {
	var targets []int
	for i, d := range db.Decisions {
		if len(d.PDFURLs) == 0 {
			continue
		}
		if p.All || d.Text() == "" {
			targets = append(targets, i)
		}
	}
	if p.Limit > 0 && len(targets) > p.Limit {
		targets = targets[:p.Limit]
	}

	tracker := NewTracker()
	total := int64(len(targets))
	zap.L().Info("starting pdf fetch",
		zap.Int64("pending", total),
		zap.Int("manifest_entries", len(manifest.PDFs)),
		zap.Bool("all", p.All),
	)
	if total == 0 {
		return tracker.Snapshot(), nil
	}

	var mu sync.Mutex // guards manifest entries, record commits, and checkpoints
	index := manifest.Index()

	concurrency := p.Concurrency
	if concurrency <= 0 {
		concurrency = 4
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for _, idx := range targets {
		idx := idx
		g.Go(func() error {
			rec := db.Decisions[idx]
			texts, err := p.processDecision(gctx, rec, manifest, index, &mu, tracker)
			if err != nil {
				return err
			}

			if combined := strings.Join(texts, "\n\n"); combined != "" && rec.Text() == "" {
				updated := *rec
				updated.SetFullText(combined, "pdf")
				mu.Lock()
				db.Decisions[idx] = &updated
				mu.Unlock()
			}

			done := tracker.Complete()
			if p.LogEvery > 0 && done%int64(p.LogEvery) == 0 {
				tracker.LogProgress("pdfs", done, total)
			}
			if p.SaveEvery > 0 && done%int64(p.SaveEvery) == 0 {
				if err := p.checkpoint(&mu, manifest, done); err != nil {
					return err
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return tracker.Snapshot(), err
	}

	stats := tracker.Snapshot()
	mu.Lock()
	meta := ensureMap(&manifest.Metadata)
	meta["last_run"] = time.Now().UTC().Format(time.RFC3339)
	meta["total_pdfs"] = len(manifest.PDFs)
	mode := "missing_text"
	if p.All {
		mode = "all"
	}
	meta["mode"] = mode
	err := p.Manifest.Save(manifest)
	mu.Unlock()
	if err != nil {
		return stats, err
	}
	if err := p.Dataset.Save(db); err != nil {
		return stats, err
	}

	zap.L().Info("pdf fetch complete",
		zap.Int64("downloaded", stats.Downloaded),
		zap.Int64("extracted", stats.Extracted),
		zap.Int64("ocr_required", stats.OCRRequired),
		zap.Int64("skipped", stats.Skipped),
		zap.Int64("errors", stats.Errors),
		zap.Duration("elapsed", stats.Elapsed.Round(time.Second)),
	)
	return stats, nil
}

// processDecision handles one record's attachment list and returns the text
// of every PDF that yielded any, in attachment order.
func (p *PDFFetcher) processDecision(
	ctx context.Context,
	rec *model.DecisionRecord,
	manifest *model.Manifest,
	index map[string]*model.ManifestEntry,
	mu *sync.Mutex,
	tracker *Tracker,
) ([]string, error) {
	var texts []string
	for _, url := range rec.PDFURLs {
		// Copy under the lock: recordEntry rewrites a retried failure's
		// entry in place, and decisions can share a URL.
		mu.Lock()
		var cached model.ManifestEntry
		prior, seen := index[url]
		if seen {
			cached = *prior
		}
		mu.Unlock()
		if seen && !cached.Error && fileOnDisk(cached.LocalPath) {
			if cached.Text != "" {
				texts = append(texts, cached.Text)
			}
			tracker.Skipped()
			continue
		}

		filename := fetcher.FilenameFromURL(url)
		dest := filepath.Join(p.PDFDir, filename)
		err := p.Client.Download(ctx, url, dest)
		switch {
		case err != nil && ctx.Err() != nil:
			return nil, ctx.Err()
		case resilience.IsNotFound(err):
			tracker.Skipped()
			zap.L().Debug("attachment no longer published",
				zap.String("case", rec.CaseReference),
				zap.String("url", url),
			)
			continue
		case err != nil:
			tracker.Errored()
			zap.L().Warn("attachment download failed",
				zap.String("case", rec.CaseReference),
				zap.String("url", url),
				zap.Error(err),
			)
			p.recordEntry(manifest, index, mu, &model.ManifestEntry{
				URL:           url,
				LocalPath:     dest,
				Filename:      filename,
				CaseReference: rec.CaseReference,
				GovUKPath:     rec.GovUKPath,
				Error:         true,
			})
			continue
		}
		tracker.Downloaded()

		res := pdftext.Extract(ctx, p.Extractor, dest, p.OCRThreshold)
		if res.OCRRequired {
			tracker.OCRRequired()
		}
		entry := &model.ManifestEntry{
			URL:           url,
			LocalPath:     dest,
			Filename:      filename,
			CaseReference: rec.CaseReference,
			GovUKPath:     rec.GovUKPath,
			PageCount:     res.PageCount,
			CharCount:     res.CharCount,
			OCRRequired:   res.OCRRequired,
			DownloadedAt:  time.Now().UTC().Format(time.RFC3339),
		}
		if strings.TrimSpace(res.Text) != "" {
			entry.Text = res.Text
			texts = append(texts, res.Text)
			tracker.Extracted()
		}
		p.recordEntry(manifest, index, mu, entry)
	}
	return texts, nil
}

// recordEntry appends an entry unless the URL landed in the manifest first.
func (p *PDFFetcher) recordEntry(
	manifest *model.Manifest,
	index map[string]*model.ManifestEntry,
	mu *sync.Mutex,
	entry *model.ManifestEntry,
) {
	mu.Lock()
	defer mu.Unlock()
	if existing, ok := index[entry.URL]; ok && !existing.Error {
		return
	}
	if existing, ok := index[entry.URL]; ok && existing.Error {
		// Retry of a previously failed URL replaces the failure record.
		*existing = *entry
		index[entry.URL] = existing
		return
	}
	manifest.PDFs = append(manifest.PDFs, entry)
	index[entry.URL] = entry
}

// checkpoint persists the manifest mid-run.
func (p *PDFFetcher) checkpoint(mu *sync.Mutex, manifest *model.Manifest, done int64) error {
	mu.Lock()
	defer mu.Unlock()
	ensureMap(&manifest.Metadata)["last_save"] = time.Now().UTC().Format(time.RFC3339)
	if err := p.Manifest.Save(manifest); err != nil {
		return err
	}
	zap.L().Info("manifest checkpoint saved",
		zap.Int64("done", done),
		zap.Int("entries", len(manifest.PDFs)),
	)
	return nil
}

func ensureMap(m *map[string]any) map[string]any {
	if *m == nil {
		*m = make(map[string]any)
	}
	return *m
}

func fileOnDisk(path string) bool {
	if path == "" {
		return false
	}
	_, err := os.Stat(path)
	return err == nil
}
