package extract

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// Party label patterns, tried in priority order. The capture runs up to the
// next label or line break; decision headers put each party on its own line
// or separate labels with tabs.
var applicantPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?is)Applicants?\s*(?:/\s*(?:Tenant|Lessee)s?)?\s*[\t :]+\s*(.+?)(?:\n|Respondent|Representative|Landlord|Freeholder)`),
	regexp.MustCompile(`(?is)Applicants?\s*[\t :]+\s*(.+?)(?:\n|Respondent|Representative|Landlord|Freeholder)`),
	regexp.MustCompile(`(?is)Tenants?\s*[\t :]+\s*(.+?)(?:\n|Landlord|Representative|Address|Type of|Date|Tribunal)`),
	regexp.MustCompile(`(?is)Lessees?\s*[\t :]+\s*(.+?)(?:\n|Landlord|Freeholder|Representative|Type of|Date|Tribunal)`),
}

var respondentPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?is)Respondents?\s*(?:/\s*(?:Landlord|Freeholder)s?)?\s*[\t :]+\s*(.+?)(?:\n|Representative|Solicitor|Type of|Date|Tribunal|Venue)`),
	regexp.MustCompile(`(?is)Respondents?\s*[\t :]+\s*(.+?)(?:\n|Representative|Solicitor|Type of|Date|Tribunal|Venue)`),
	regexp.MustCompile(`(?is)Landlords?\s*[\t :]+\s*(.+?)(?:\n|Tenant|Representative|Address|Type of|Date|Tribunal)`),
	regexp.MustCompile(`(?is)Freeholders?\s*[\t :]+\s*(.+?)(?:\n|Tenant|Lessee|Representative|Type of|Date|Tribunal)`),
}

var applicationTypeRe = regexp.MustCompile(`(?i)Type of (?:Application|application)\s*:?\s*(.+?)(?:\n|Tribunal|Date)`)

// noiseValues are placeholder strings that look like extracted names but
// carry no information.
var noiseValues = map[string]bool{
	"n/a":            true,
	"not applicable": true,
	"none":           true,
	"unknown":        true,
	"the tribunal":   true,
	"see below":      true,
	"as above":       true,
	"various":        true,
}

// Applicant extracts the applicant name, trying label patterns in priority
// order: qualified "Applicant/Tenant" first, then plain Applicant, Tenant,
// Lessee. The first pattern whose candidate survives validation wins.
func Applicant(text string) string {
	return extractParty(text, applicantPatterns)
}

// Respondent extracts the respondent name; labels mirror Applicant with
// Landlord/Freeholder fallbacks.
func Respondent(text string) string {
	return extractParty(text, respondentPatterns)
}

func extractParty(text string, patterns []*regexp.Regexp) string {
	for _, pat := range patterns {
		m := pat.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		val := strings.Trim(collapse(m[1]), " \t:")
		n := utf8.RuneCountInString(val)
		if n > 3 && n < 300 && !isNoise(val) {
			return val
		}
	}
	return ""
}

// isNoise rejects placeholder values and candidates that are mostly digits
// or punctuation.
func isNoise(val string) bool {
	if noiseValues[strings.ToLower(strings.TrimSpace(val))] {
		return true
	}
	return alphaCount(val) < 3
}

// ApplicationType extracts the "Type of Application" label value.
func ApplicationType(text string) string {
	m := applicationTypeRe.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	val := collapse(m[1])
	if val == "" || utf8.RuneCountInString(val) >= 200 {
		return ""
	}
	return val
}
