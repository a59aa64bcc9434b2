package extract

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// Member block patterns, tried in order. Each captures the text between the
// member label and the next section boundary (Venue/Date/Hearing/DECISION or
// a blank-line gap).
var memberBlockPatterns = []*regexp.Regexp{
	// "Tribunal member(s):" block.
	regexp.MustCompile(`(?s)Tribunal\s+[Mm]embers?\s*[\t :]+\s*(.+?)(?:Venue|Date of|Date and|Hearing|\n\s*\n\s*\n|DECISION)`),
	// "Tribunal:" followed directly by a Judge or Deputy title.
	regexp.MustCompile(`(?s)Tribunal\s*[\t :]+\s*((?:(?:Tribunal\s+)?Judge|Deputy).+?)(?:Venue|Date of|Date and|Hearing|\n\s*\n\s*\n|DECISION)`),
	// Fair-rent style prose: "The Tribunal members were ...".
	regexp.MustCompile(`(?s)(?:The Tribunal members were|Tribunal members were)\s*(.+?)(?:Landlord|Tenant|\z)`),
}

// Standalone "Chairman : Name" line.
var chairmanRe = regexp.MustCompile(`Chairman\s*[\t :]+\s*([A-Z][^\n]{5,100})`)

var (
	sectionBoundaryRe = regexp.MustCompile(`(?i)^(?:Venue|Date|Hearing|DECISION|Application|Property|Case)`)
	trailingDateRe    = regexp.MustCompile(`\s+Date[:\s].*$`)
	trailingDatedRe   = regexp.MustCompile(`\s+Dated[:\s].*$`)
	chairAnnotationRe = regexp.MustCompile(`(?i)\s*\((?:Chair(?:man)?|Presiding)\)\s*`)
	nameStartRe       = regexp.MustCompile(`^(?:Mr|Ms|Mrs|Miss|Dr|Prof|Judge|Deputy|Tribunal|Regional|Sir|Dame|[A-Z])`)
	sectionHeaderRe   = regexp.MustCompile(`(?i)^(?:Venue|Date|Type|Case|Property|Hearing|Application|Representative|DECISION)`)

	memberNoiseRe = regexp.MustCompile(`(?i)^(?:Landlords?|Tenants?|Applicants?|Respondents?|Lessees?|Freeholders?|` +
		`None|N/?A|Not applicable|Unknown|` +
		`FHSJA|AISMA|ARLA|RICS|BSc|BA|MA|LLB|MRICS|FRICS|` +
		`See above|As above|Various)$`)
	postcodeRe      = regexp.MustCompile(`(?i)[A-Z]{1,2}\d[A-Z\d]?\s*\d[A-Z]{2}`)
	tabbedPartyRe   = regexp.MustCompile(`(?i)\t\s*(?:Applicant|Respondent|Landlord|Tenant)`)
	soloTitleWordRe = regexp.MustCompile(`(?i)^(?:Judge|Deputy|Chairman|Dr|Prof|Sir|Dame)`)
)

// maxTribunalMembers caps the parsed panel size; anything longer means the
// block parser ran into non-member text.
const maxTribunalMembers = 5

// TribunalMembers extracts the tribunal panel from the decision text,
// most senior first as the documents list them. Returns at most five
// members after noise filtering.
func TribunalMembers(text string) []string {
	members := rawTribunalMembers(text)
	return filterMembers(members)
}

func rawTribunalMembers(text string) []string {
	for _, pat := range memberBlockPatterns {
		m := pat.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		if members := parseMemberBlock(m[1]); len(members) > 0 {
			return members
		}
	}

	if m := chairmanRe.FindStringSubmatch(text); m != nil {
		if name := cleanMemberName(strings.TrimSpace(m[1])); name != "" {
			return []string{name}
		}
	}

	return nil
}

// parseMemberBlock splits a captured block into one member per line,
// stopping at the first section-boundary line.
func parseMemberBlock(block string) []string {
	var members []string
	for _, line := range strings.Split(block, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if sectionBoundaryRe.MatchString(line) {
			break
		}
		if name := cleanMemberName(line); name != "" {
			members = append(members, name)
		}
	}
	return members
}

// cleanMemberName strips annotations from a raw member line and validates
// that what remains looks like a name. Returns "" for rejects.
func cleanMemberName(raw string) string {
	val := strings.Trim(raw, " \t:,")
	val = trailingDateRe.ReplaceAllString(val, "")
	val = trailingDatedRe.ReplaceAllString(val, "")
	val = chairAnnotationRe.ReplaceAllString(val, " ")
	val = strings.TrimSpace(val)

	if !nameStartRe.MatchString(val) {
		return ""
	}
	n := utf8.RuneCountInString(val)
	if n < 4 || n > 150 {
		return ""
	}
	if sectionHeaderRe.MatchString(val) {
		return ""
	}
	return val
}

// filterMembers removes party labels, qualification acronyms, address lines,
// and bare surnames that slipped through block parsing, then truncates to
// the panel-size cap.
func filterMembers(members []string) []string {
	var filtered []string
	for _, member := range members {
		stripped := strings.TrimSpace(member)
		if memberNoiseRe.MatchString(stripped) {
			continue
		}
		if postcodeRe.MatchString(member) {
			continue
		}
		if strings.Contains(member, "\t") && tabbedPartyRe.MatchString(member) {
			continue
		}
		words := strings.Fields(stripped)
		if len(words) == 1 && !soloTitleWordRe.MatchString(words[0]) {
			continue
		}
		filtered = append(filtered, member)
	}
	if len(filtered) > maxTribunalMembers {
		filtered = filtered[:maxTribunalMembers]
	}
	return filtered
}

var judgeRe = regexp.MustCompile(`(?i)Judge|Chairman|Chairm`)

// PresidingJudge picks the presiding judge from the member list: the first
// member carrying a judge or chairman title, else the first member.
func PresidingJudge(members []string) string {
	if len(members) == 0 {
		return ""
	}
	for _, m := range members {
		if judgeRe.MatchString(m) {
			return m
		}
	}
	return members[0]
}
