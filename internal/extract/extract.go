// Package extract derives structured fields from tribunal decision text.
//
// Every extractor is a pure function over the text: no state, no I/O, no
// clock. Pattern tables are compiled once at process start and never mutated,
// so repeated runs over the same text produce identical results.
package extract

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"

	"github.com/grantley-gardens/tribunal-cli/internal/model"
)

// Fields is the result of running every extractor over one decision's text.
// Empty string / nil slice means the extractor had no opinion.
type Fields struct {
	Applicant        string
	Respondent       string
	ApplicationType  string
	TribunalMembers  []string
	PresidingJudge   string
	DecisionOutcome  string
	FinancialAmounts []float64
	HearingDate      string
	LegalActsCited   []string
}

// All runs every extractor over the decision text.
func All(text string) Fields {
	text = Normalize(text)

	f := Fields{
		Applicant:        Applicant(text),
		Respondent:       Respondent(text),
		ApplicationType:  ApplicationType(text),
		TribunalMembers:  TribunalMembers(text),
		DecisionOutcome:  truncateOutcome(DecisionOutcome(text)),
		FinancialAmounts: FinancialAmounts(text),
		HearingDate:      HearingDate(text),
		LegalActsCited:   LegalActs(text),
	}
	f.PresidingJudge = PresidingJudge(f.TribunalMembers)
	return f
}

// Apply writes the extracted fields onto the record. Applicant, respondent,
// and application type are fill-if-absent: a value already on the record
// (from the scrape or a previous run) is never overwritten. The remaining
// derived fields are recomputed from text on every extraction pass.
func (f Fields) Apply(rec *model.DecisionRecord) {
	if f.Applicant != "" && model.Deref(rec.Applicant) == "" {
		rec.Applicant = model.StrPtr(f.Applicant)
	}
	if f.Respondent != "" && model.Deref(rec.Respondent) == "" {
		rec.Respondent = model.StrPtr(f.Respondent)
	}
	if f.ApplicationType != "" && model.Deref(rec.ApplicationType) == "" {
		rec.ApplicationType = model.StrPtr(f.ApplicationType)
	}
	if len(f.TribunalMembers) > 0 {
		rec.TribunalMembers = f.TribunalMembers
		if f.PresidingJudge != "" {
			rec.PresidingJudge = model.StrPtr(f.PresidingJudge)
		}
	}
	if f.DecisionOutcome != "" {
		rec.DecisionOutcome = model.StrPtr(f.DecisionOutcome)
	}
	if len(f.FinancialAmounts) > 0 {
		rec.FinancialAmounts = f.FinancialAmounts
	}
	if f.HearingDate != "" {
		rec.HearingDate = model.StrPtr(f.HearingDate)
	}
	if len(f.LegalActsCited) > 0 {
		rec.LegalActsCited = f.LegalActsCited
	}
}

// Normalize applies NFKC folding so that ligatures and fullwidth forms from
// PDF text extraction don't defeat the pattern tables.
func Normalize(text string) string {
	return norm.NFKC.String(text)
}

var whitespaceRe = regexp.MustCompile(`\s+`)

// collapse folds runs of whitespace into single spaces and trims the ends.
func collapse(s string) string {
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(s, " "))
}

// alphaCount returns the number of letters in s.
func alphaCount(s string) int {
	n := 0
	for _, r := range s {
		if unicode.IsLetter(r) {
			n++
		}
	}
	return n
}
