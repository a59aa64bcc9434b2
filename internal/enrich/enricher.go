// Package enrich orchestrates the resumable enrichment pipeline: fetching
// decision text from the content API, mining attachment PDFs, and deriving
// structured fields. Work fans out over a bounded worker pool; completed
// records are committed and checkpointed under one lock so a saved file never
// contains a half-written record.
package enrich

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/grantley-gardens/tribunal-cli/internal/extract"
	"github.com/grantley-gardens/tribunal-cli/internal/fetcher"
	"github.com/grantley-gardens/tribunal-cli/internal/model"
	"github.com/grantley-gardens/tribunal-cli/internal/resilience"
	"github.com/grantley-gardens/tribunal-cli/internal/store"
)

// ContentFetcher is the content API surface the enricher consumes.
type ContentFetcher interface {
	FetchDecision(ctx context.Context, govUKPath string) (*fetcher.ContentDocument, error)
}

// Enricher runs the text enrichment stage: every decision with a GOV.UK path
// and no text yet gets one content API fetch. Records that already hold text
// are never touched, which is what makes an interrupted run resumable.
type Enricher struct {
	Content     ContentFetcher
	Store       *store.DatasetStore
	Concurrency int
	SaveEvery   int
	LogEvery    int
	Limit       int // cap on records processed this run; 0 means all
}

// Run executes the stage against db, checkpointing every SaveEvery
// completions. A checkpoint write failure aborts the run; individual fetch
// failures only mark the affected record.
func (e *Enricher) Run(ctx context.Context, db *model.Database) (Stats, error) {
	var targets []int
	for i, d := range db.Decisions {
		if d.NeedsEnrichment() {
			targets = append(targets, i)
		}
	}
	if e.Limit > 0 && len(targets) > e.Limit {
		targets = targets[:e.Limit]
	}

	tracker := NewTracker()
	total := int64(len(targets))
	zap.L().Info("starting enrichment",
		zap.Int64("pending", total),
		zap.Int("already_enriched", db.CountWithText()),
		zap.Int("concurrency", e.Concurrency),
	)
	if total == 0 {
		return tracker.Snapshot(), nil
	}

	var mu sync.Mutex // guards record commits, metadata, and checkpoints
	db.EnsureMetadata()["enrichment_run_id"] = uuid.NewString()

	concurrency := e.Concurrency
	if concurrency <= 0 {
		concurrency = 4
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for _, idx := range targets {
		idx := idx
		g.Go(func() error {
			rec := db.Decisions[idx]
			doc, err := e.Content.FetchDecision(gctx, rec.GovUKPath)

			switch {
			case err != nil && gctx.Err() != nil:
				return gctx.Err()
			case resilience.IsNotFound(err):
				// Gone from GOV.UK. Not an error: leave the record
				// untouched so nothing is persisted for it.
				tracker.Skipped()
				zap.L().Debug("decision no longer published",
					zap.String("case", rec.CaseReference),
					zap.String("path", rec.GovUKPath),
				)
			case err != nil:
				updated := *rec
				updated.EnrichmentError = true
				tracker.Errored()
				zap.L().Warn("enrichment failed",
					zap.String("case", rec.CaseReference),
					zap.Error(err),
				)
				mu.Lock()
				db.Decisions[idx] = &updated
				mu.Unlock()
			default:
				updated := enrichedRecord(rec, doc)
				tracker.Fetched()
				mu.Lock()
				db.Decisions[idx] = &updated
				mu.Unlock()
			}

			done := tracker.Complete()
			if e.LogEvery > 0 && done%int64(e.LogEvery) == 0 {
				tracker.LogProgress("enrich", done, total)
			}
			if e.SaveEvery > 0 && done%int64(e.SaveEvery) == 0 {
				if err := e.checkpoint(&mu, db, done); err != nil {
					return err
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return tracker.Snapshot(), err
	}

	mu.Lock()
	meta := db.EnsureMetadata()
	meta["enriched_at"] = time.Now().UTC().Format(time.RFC3339)
	meta["enrichment_complete"] = true
	delete(meta, "last_enrichment_save")
	delete(meta, "enrichment_progress")
	err := e.Store.Save(db)
	mu.Unlock()
	if err != nil {
		return tracker.Snapshot(), err
	}

	stats := tracker.Snapshot()
	zap.L().Info("enrichment complete",
		zap.Int64("fetched", stats.Fetched),
		zap.Int64("skipped", stats.Skipped),
		zap.Int64("errors", stats.Errors),
		zap.Duration("elapsed", stats.Elapsed.Round(time.Second)),
	)
	return stats, nil
}

// checkpoint persists the working set mid-run with in-flight progress markers.
func (e *Enricher) checkpoint(mu *sync.Mutex, db *model.Database, done int64) error {
	mu.Lock()
	defer mu.Unlock()
	meta := db.EnsureMetadata()
	meta["last_enrichment_save"] = time.Now().UTC().Format(time.RFC3339)
	meta["enrichment_progress"] = done
	if err := e.Store.Save(db); err != nil {
		return err
	}
	zap.L().Info("checkpoint saved", zap.Int64("done", done))
	return nil
}

// enrichedRecord builds the post-fetch copy of rec. The original is never
// mutated so a concurrent checkpoint only ever marshals complete records.
func enrichedRecord(rec *model.DecisionRecord, doc *fetcher.ContentDocument) model.DecisionRecord {
	updated := *rec
	updated.EnrichmentError = false
	if doc.ContentID != "" {
		updated.ContentID = doc.ContentID
	}
	updated.Attachments = doc.Attachments()
	updated.PDFURLs = doc.PDFURLs()

	text := doc.FullText()
	if strings.TrimSpace(text) != "" {
		updated.SetFullText(text, "content_api")
		normalized := extract.Normalize(text)
		if updated.Applicant == nil {
			if v := extract.Applicant(normalized); v != "" {
				updated.Applicant = model.StrPtr(v)
			}
		}
		if updated.Respondent == nil {
			if v := extract.Respondent(normalized); v != "" {
				updated.Respondent = model.StrPtr(v)
			}
		}
		if updated.ApplicationType == nil {
			if v := extract.ApplicationType(normalized); v != "" {
				updated.ApplicationType = model.StrPtr(v)
			}
		}
	}
	return updated
}
