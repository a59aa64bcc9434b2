package model

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNeedsEnrichment(t *testing.T) {
	assert.True(t, (&DecisionRecord{GovUKPath: "/d/1"}).NeedsEnrichment())
	assert.False(t, (&DecisionRecord{}).NeedsEnrichment(), "no path means unfetchable")
	assert.False(t, (&DecisionRecord{GovUKPath: "/d/1", FullText: StrPtr("text")}).NeedsEnrichment(),
		"any text means done")
}

func TestHasFullText_Threshold(t *testing.T) {
	short := &DecisionRecord{FullText: StrPtr("too short")}
	long := &DecisionRecord{FullText: StrPtr(strings.Repeat("x", MinFullTextChars))}
	assert.False(t, short.HasFullText())
	assert.True(t, long.HasFullText())
}

func TestNeedsPDFText(t *testing.T) {
	assert.True(t, (&DecisionRecord{PDFURLs: []string{"u"}}).NeedsPDFText())
	assert.False(t, (&DecisionRecord{PDFURLs: []string{"u"}, FullText: StrPtr("t")}).NeedsPDFText())
	assert.False(t, (&DecisionRecord{}).NeedsPDFText())
}

func TestSetAndClearFullText(t *testing.T) {
	d := &DecisionRecord{}
	d.SetFullText("body", "content_api")
	assert.Equal(t, "body", d.Text())
	assert.Equal(t, "content_api", d.TextSource)

	d.ClearFullText()
	assert.Empty(t, d.Text())
}

func TestDecisionRecord_JSONShape(t *testing.T) {
	d := &DecisionRecord{CaseReference: "LON/1"}
	raw, err := json.Marshal(d)
	require.NoError(t, err)

	// Absent optional fields stay out of the persisted checkpoint.
	payload := string(raw)
	assert.Contains(t, payload, `"case_reference":"LON/1"`)
	assert.NotContains(t, payload, "full_text")
	assert.NotContains(t, payload, "applicant")
	assert.NotContains(t, payload, "_enrichment_error")

	d.EnrichmentError = true
	raw, err = json.Marshal(d)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"_enrichment_error":true`)
}

func TestManifestIndex_FirstEntryWins(t *testing.T) {
	m := &Manifest{PDFs: []*ManifestEntry{
		{URL: "u1", Text: "first"},
		{URL: "u1", Text: "second"},
		{URL: "u2"},
	}}
	idx := m.Index()
	require.Len(t, idx, 2)
	assert.Equal(t, "first", idx["u1"].Text)
}

func TestDatabase_CountWithText(t *testing.T) {
	db := &Database{Decisions: []*DecisionRecord{
		{FullText: StrPtr("text")},
		{},
	}}
	assert.Equal(t, 1, db.CountWithText())
	assert.NotNil(t, db.EnsureMetadata())
}

func TestIsGarbageShort(t *testing.T) {
	assert.True(t, IsGarbageShort("  Mr "))
	assert.False(t, IsGarbageShort("Jane"))
}
