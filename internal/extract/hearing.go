package extract

import (
	"regexp"
	"strings"
)

// Hearing date label patterns, tried in order. Captures a short fragment
// after the label; the fragment is then parsed as an actual date.
var hearingLabelPatterns = []*regexp.Regexp{
	regexp.MustCompile(`Date\s+of\s+(?:Video\s+|Paper\s+|Oral\s+)?Hearing\s*[\t :]+\s*(.{5,60})`),
	regexp.MustCompile(`Date\s+and\s+[Vv]enue\s+of\s+(?:Hearing|hearing)\s*[\t :]+\s*(.{5,60})`),
	regexp.MustCompile(`Hearing\s+[Dd]ate\s*[\t :]+\s*(.{5,60})`),
	regexp.MustCompile(`Heard?\s+on\s*[\t :]+\s*(.{5,60})`),
	regexp.MustCompile(`Date\s+of\s+[Dd]etermination\s*[\t :]+\s*(.{5,60})`),
}

var (
	// "14th March 2023" with optional ordinal suffix.
	writtenDateRe = regexp.MustCompile(`(?i)^(\d{1,2}\s*(?:st|nd|rd|th)?\s*(?:January|February|March|April|May|June|July|August|September|October|November|December)\s+\d{4})`)
	// "14/03/2023" or "14.3.23".
	numericDateRe   = regexp.MustCompile(`^(\d{1,2}[/.]\d{1,2}[/.]\d{2,4})`)
	ordinalSuffixRe = regexp.MustCompile(`(\d)(st|nd|rd|th)`)
)

// HearingDate extracts the hearing (or determination) date. The first label
// pattern that matches AND yields a parseable date wins; written-out dates
// are normalised by stripping ordinal suffixes, numeric dates are kept as
// found.
func HearingDate(text string) string {
	for _, pat := range hearingLabelPatterns {
		m := pat.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		raw := strings.TrimSpace(m[1])

		if dm := writtenDateRe.FindStringSubmatch(raw); dm != nil {
			return normaliseDate(dm[1])
		}
		if dm := numericDateRe.FindStringSubmatch(raw); dm != nil {
			return dm[1]
		}
	}
	return ""
}

// normaliseDate strips ordinal suffixes ("14th" -> "14").
func normaliseDate(raw string) string {
	return strings.TrimSpace(ordinalSuffixRe.ReplaceAllString(raw, "$1"))
}
