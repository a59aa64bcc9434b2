package repair

import (
	"unicode/utf8"

	"github.com/grantley-gardens/tribunal-cli/internal/model"
)

// CleanShortFullText nulls out full_text entries too short to extract
// anything meaningful from, so later extraction passes treat them as absent
// and the next fetch run retries them. Returns the number nulled.
func CleanShortFullText(decisions []*model.DecisionRecord) int {
	cleaned := 0
	for _, d := range decisions {
		text := d.Text()
		if text != "" && utf8.RuneCountInString(text) < model.MinFullTextChars {
			d.ClearFullText()
			cleaned++
		}
	}
	return cleaned
}

// CleanExtractedFields drops garbage derived values: party names of three or
// fewer characters, and financial amounts beyond the sanity ceiling. A list
// that loses all its amounts becomes empty, not absent. Returns counts of
// (applicants nulled, respondents nulled, amounts dropped).
func CleanExtractedFields(decisions []*model.DecisionRecord) (badApplicant, badRespondent, badAmounts int) {
	for _, d := range decisions {
		if d.Applicant != nil && model.IsGarbageShort(*d.Applicant) {
			d.Applicant = nil
			badApplicant++
		}
		if d.Respondent != nil && model.IsGarbageShort(*d.Respondent) {
			d.Respondent = nil
			badRespondent++
		}

		if len(d.FinancialAmounts) > 0 {
			filtered := d.FinancialAmounts[:0]
			for _, a := range d.FinancialAmounts {
				if a <= model.MaxFinancialAmount {
					filtered = append(filtered, a)
				}
			}
			badAmounts += len(d.FinancialAmounts) - len(filtered)
			d.FinancialAmounts = filtered
		}
	}
	return badApplicant, badRespondent, badAmounts
}
