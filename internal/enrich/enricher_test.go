package enrich

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grantley-gardens/tribunal-cli/internal/fetcher"
	"github.com/grantley-gardens/tribunal-cli/internal/model"
	"github.com/grantley-gardens/tribunal-cli/internal/resilience"
	"github.com/grantley-gardens/tribunal-cli/internal/store"
)

const fakeDecisionText = `Case Reference: LON/00AY/LSC/2024/0123
Applicant: Jane Smith
Respondent: Acme Property Management Ltd
` + "padding so the text clears the minimum length threshold for extraction padding padding"

type fakeContent struct {
	calls atomic.Int64
	fetch func(path string) (*fetcher.ContentDocument, error)
}

func (f *fakeContent) FetchDecision(_ context.Context, path string) (*fetcher.ContentDocument, error) {
	f.calls.Add(1)
	return f.fetch(path)
}

func contentDoc(text string, pdfURLs ...string) *fetcher.ContentDocument {
	doc := &fetcher.ContentDocument{ContentID: "cid-1"}
	doc.Details.Metadata.HiddenIndexableContent = text
	for _, u := range pdfURLs {
		doc.Details.Attachments = append(doc.Details.Attachments, fetcher.ContentAttachment{
			Title: "Decision", URL: u, ContentType: "application/pdf",
		})
	}
	return doc
}

func testStores(t *testing.T) *store.DatasetStore {
	t.Helper()
	dir := t.TempDir()
	return store.NewDatasetStore(filepath.Join(dir, "in.json"), filepath.Join(dir, "out.json"))
}

func TestEnricher_FetchesAndCommits(t *testing.T) {
	content := &fakeContent{fetch: func(path string) (*fetcher.ContentDocument, error) {
		return contentDoc(fakeDecisionText, "https://assets.example/9/d.pdf"), nil
	}}
	db := &model.Database{Decisions: []*model.DecisionRecord{
		{CaseReference: "LON/1", GovUKPath: "/decisions/one"},
		{CaseReference: "LON/2", GovUKPath: "/decisions/two", FullText: model.StrPtr("already enriched text")},
	}}

	datasets := testStores(t)
	e := &Enricher{Content: content, Store: datasets, Concurrency: 2}
	stats, err := e.Run(context.Background(), db)
	require.NoError(t, err)

	assert.Equal(t, int64(1), stats.Fetched)
	assert.Equal(t, int64(1), content.calls.Load(), "enriched records must not be re-fetched")

	got := db.Decisions[0]
	assert.Equal(t, fakeDecisionText, got.Text())
	assert.Equal(t, "content_api", got.TextSource)
	assert.Equal(t, "cid-1", got.ContentID)
	assert.Equal(t, []string{"https://assets.example/9/d.pdf"}, got.PDFURLs)
	assert.Equal(t, "Jane Smith", model.Deref(got.Applicant))
	assert.Equal(t, "Acme Property Management Ltd", model.Deref(got.Respondent))

	assert.Equal(t, true, db.Metadata["enrichment_complete"])
	assert.NotEmpty(t, db.Metadata["enriched_at"])
	assert.NotContains(t, db.Metadata, "last_enrichment_save")

	// The final checkpoint must be on disk and resumable.
	loaded, resumed, err := datasets.Load()
	require.NoError(t, err)
	assert.True(t, resumed)
	assert.Equal(t, fakeDecisionText, loaded.Decisions[0].Text())
}

func TestEnricher_NotFoundLeavesRecordUntouched(t *testing.T) {
	content := &fakeContent{fetch: func(path string) (*fetcher.ContentDocument, error) {
		return nil, &resilience.NotFoundError{URL: path}
	}}
	db := &model.Database{Decisions: []*model.DecisionRecord{
		{CaseReference: "LON/1", GovUKPath: "/decisions/gone"},
	}}

	e := &Enricher{Content: content, Store: testStores(t)}
	stats, err := e.Run(context.Background(), db)
	require.NoError(t, err)

	assert.Equal(t, int64(1), stats.Skipped)
	assert.Equal(t, int64(0), stats.Errors)
	got := db.Decisions[0]
	assert.Nil(t, got.FullText)
	assert.False(t, got.EnrichmentError)
}

func TestEnricher_FailureMarksRecord(t *testing.T) {
	content := &fakeContent{fetch: func(path string) (*fetcher.ContentDocument, error) {
		return nil, errors.New("retry budget exhausted")
	}}
	db := &model.Database{Decisions: []*model.DecisionRecord{
		{CaseReference: "LON/1", GovUKPath: "/decisions/flaky"},
	}}

	e := &Enricher{Content: content, Store: testStores(t)}
	stats, err := e.Run(context.Background(), db)
	require.NoError(t, err, "individual fetch failures must not abort the run")

	assert.Equal(t, int64(1), stats.Errors)
	assert.True(t, db.Decisions[0].EnrichmentError)
}

func TestEnricher_ErrorFlagClearedOnLaterSuccess(t *testing.T) {
	content := &fakeContent{fetch: func(path string) (*fetcher.ContentDocument, error) {
		return contentDoc(fakeDecisionText), nil
	}}
	db := &model.Database{Decisions: []*model.DecisionRecord{
		{CaseReference: "LON/1", GovUKPath: "/decisions/one", EnrichmentError: true},
	}}

	e := &Enricher{Content: content, Store: testStores(t)}
	_, err := e.Run(context.Background(), db)
	require.NoError(t, err)

	assert.False(t, db.Decisions[0].EnrichmentError)
}

func TestEnricher_LimitCapsWork(t *testing.T) {
	content := &fakeContent{fetch: func(path string) (*fetcher.ContentDocument, error) {
		return contentDoc(fakeDecisionText), nil
	}}
	db := &model.Database{Decisions: []*model.DecisionRecord{
		{CaseReference: "LON/1", GovUKPath: "/d/1"},
		{CaseReference: "LON/2", GovUKPath: "/d/2"},
		{CaseReference: "LON/3", GovUKPath: "/d/3"},
	}}

	e := &Enricher{Content: content, Store: testStores(t), Limit: 2}
	stats, err := e.Run(context.Background(), db)
	require.NoError(t, err)

	assert.Equal(t, int64(2), stats.Fetched)
	assert.Equal(t, int64(2), content.calls.Load())
}

func TestEnricher_PeriodicCheckpoint(t *testing.T) {
	content := &fakeContent{fetch: func(path string) (*fetcher.ContentDocument, error) {
		return contentDoc(fakeDecisionText), nil
	}}
	var decisions []*model.DecisionRecord
	for i := 0; i < 5; i++ {
		decisions = append(decisions, &model.DecisionRecord{
			CaseReference: "LON/" + string(rune('1'+i)),
			GovUKPath:     "/d/" + string(rune('1'+i)),
		})
	}
	db := &model.Database{Decisions: decisions}

	datasets := testStores(t)
	e := &Enricher{Content: content, Store: datasets, Concurrency: 1, SaveEvery: 2}
	_, err := e.Run(context.Background(), db)
	require.NoError(t, err)

	// After the final save the in-flight markers are gone again.
	loaded, _, err := datasets.Load()
	require.NoError(t, err)
	assert.NotContains(t, loaded.Metadata, "enrichment_progress")
	assert.Equal(t, true, loaded.Metadata["enrichment_complete"])
}

func TestRunFieldExtraction_EndToEnd(t *testing.T) {
	text := fakeDecisionText + strings.Repeat(" filler", 10) + "\nThe tribunal determines that £500 and £75,000,000 are claimed. "
	db := &model.Database{Decisions: []*model.DecisionRecord{
		{
			CaseReference: "LON/00AB/LSC/2024/0001",
			DecisionDate:  "2925-03-10",
			PublishedAt:   "2024-03-20T00:00:00Z",
			FullText:      &text,
		},
		{RegionCode: "LO", CaseReference: "no token"},
	}}

	stats := RunFieldExtraction(db, false, extractionClock)

	assert.Equal(t, 1, stats.DatesFixed)
	assert.Equal(t, "2024-03-10", db.Decisions[0].DecisionDate)
	assert.Equal(t, "LON", db.Decisions[0].RegionCode)
	assert.Equal(t, "LON", db.Decisions[1].RegionCode)
	assert.Equal(t, 1, stats.Processed)
	assert.Equal(t, "Jane Smith", model.Deref(db.Decisions[0].Applicant))
	assert.Equal(t, []float64{500}, db.Decisions[0].FinancialAmounts)
	assert.Equal(t, 1, stats.BadAmounts)
}

func TestRunFieldExtraction_OverwriteRecomputesParties(t *testing.T) {
	text := fakeDecisionText + strings.Repeat(" filler", 10)
	db := &model.Database{Decisions: []*model.DecisionRecord{
		{
			CaseReference: "LON/00AB/LSC/2024/0001",
			FullText:      &text,
			Applicant:     model.StrPtr("Stale Name"),
		},
	}}

	RunFieldExtraction(db, true, extractionClock)
	assert.Equal(t, "Jane Smith", model.Deref(db.Decisions[0].Applicant))
}

var extractionClock = time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
