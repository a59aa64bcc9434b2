// Package model defines the tribunal decision dataset types shared across
// the fetch, extraction, and repair stages.
package model

import (
	"strings"
	"unicode/utf8"
)

// ValidRegionCodes is the fixed set of region codes a repaired record may
// carry. Anything else is treated as invalid and subject to repair.
var ValidRegionCodes = map[string]bool{
	"LON": true, "CHI": true, "MAN": true, "BIR": true, "CAM": true,
	"HAV": true, "NS": true, "TR": true, "NT": true, "VG": true,
	"NAT": true, "GB": true, "RC": true, "WAL": true,
}

// MinFullTextChars is the threshold below which full_text is considered
// unusable for extraction and treated as absent.
const MinFullTextChars = 100

// MaxFinancialAmount is the ceiling above which extracted amounts are
// considered parsing garbage and dropped during cleanup.
const MaxFinancialAmount = 50_000_000

// Attachment describes one document attached to a decision on GOV.UK.
type Attachment struct {
	Title       string `json:"title"`
	URL         string `json:"url"`
	ContentType string `json:"content_type"`
	ContentID   string `json:"content_id"`
}

// DecisionRecord is one tribunal case: scraped metadata, optional raw text
// fetched from the content API or PDFs, and the structured fields derived
// from that text. Derived fields are pointers (or nil-able slices) so that
// "absent" and "set" are distinguishable and absent fields stay out of the
// persisted JSON.
type DecisionRecord struct {
	CaseReference    string       `json:"case_reference"`
	PropertyAddress  string       `json:"property_address"`
	RegionCode       string       `json:"region_code"`
	Description      string       `json:"description,omitempty"`
	Category         string       `json:"category"`
	CategoryLabel    string       `json:"category_label"`
	SubCategory      string       `json:"sub_category"`
	SubCategoryLabel string       `json:"sub_category_label"`
	DecisionDate     string       `json:"decision_date"`
	PublishedAt      string       `json:"published_at"`
	URL              string       `json:"url"`
	GovUKPath        string       `json:"gov_uk_path"`
	ContentID        string       `json:"content_id,omitempty"`
	FullText         *string      `json:"full_text,omitempty"`
	TextSource       string       `json:"text_source,omitempty"`
	Attachments      []Attachment `json:"attachments,omitempty"`
	PDFURLs          []string     `json:"pdf_urls,omitempty"`

	Applicant        *string   `json:"applicant,omitempty"`
	Respondent       *string   `json:"respondent,omitempty"`
	ApplicationType  *string   `json:"application_type,omitempty"`
	TribunalMembers  []string  `json:"tribunal_members,omitempty"`
	PresidingJudge   *string   `json:"presiding_judge,omitempty"`
	DecisionOutcome  *string   `json:"decision_outcome,omitempty"`
	FinancialAmounts []float64 `json:"financial_amounts,omitempty"`
	HearingDate      *string   `json:"hearing_date,omitempty"`
	LegalActsCited   []string  `json:"legal_acts_cited,omitempty"`

	EnrichmentError bool `json:"_enrichment_error,omitempty"`
}

// Text returns the raw decision text, or "" when absent.
func (d *DecisionRecord) Text() string {
	if d.FullText == nil {
		return ""
	}
	return *d.FullText
}

// HasFullText reports whether the record carries usable raw text. Text
// shorter than MinFullTextChars does not count: it is near-empty boilerplate
// that extraction must not run on.
func (d *DecisionRecord) HasFullText() bool {
	return utf8.RuneCountInString(d.Text()) >= MinFullTextChars
}

// NeedsEnrichment reports whether the record still needs a content-API fetch.
// Records without a GOV.UK path can never be fetched; records already holding
// any text are done (the resumability predicate).
func (d *DecisionRecord) NeedsEnrichment() bool {
	return d.GovUKPath != "" && d.Text() == ""
}

// NeedsPDFText reports whether the record has attachments to mine but no
// text yet: the selection predicate of the PDF fetch stage.
func (d *DecisionRecord) NeedsPDFText() bool {
	return len(d.PDFURLs) > 0 && d.Text() == ""
}

// SetFullText records raw text and its provenance.
func (d *DecisionRecord) SetFullText(text, source string) {
	d.FullText = &text
	d.TextSource = source
}

// ClearFullText nulls out the raw text, e.g. when it is too short to be a
// valid extraction source.
func (d *DecisionRecord) ClearFullText() {
	d.FullText = nil
}

// Database is the full working set: every decision plus run metadata carried
// between pipeline stages.
type Database struct {
	Metadata  map[string]any    `json:"metadata"`
	Decisions []*DecisionRecord `json:"decisions"`
}

// EnsureMetadata returns the metadata map, allocating it if the loaded file
// had none.
func (db *Database) EnsureMetadata() map[string]any {
	if db.Metadata == nil {
		db.Metadata = make(map[string]any)
	}
	return db.Metadata
}

// CountWithText returns how many decisions currently hold raw text.
func (db *Database) CountWithText() int {
	n := 0
	for _, d := range db.Decisions {
		if d.Text() != "" {
			n++
		}
	}
	return n
}

// String pointer helpers used by extraction and repair.

// StrPtr returns a pointer to s.
func StrPtr(s string) *string { return &s }

// Deref returns the pointed-to string, or "" for nil.
func Deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// IsGarbageShort reports whether a derived string value is too short to be a
// real name (three characters or fewer after trimming).
func IsGarbageShort(s string) bool {
	return len(strings.TrimSpace(s)) <= 3
}
