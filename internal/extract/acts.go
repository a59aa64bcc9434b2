package extract

import (
	"fmt"
	"regexp"
)

// legalActs is the fixed citation table: pattern plus canonical title
// template. Scanned in table order, so the result order reflects the table,
// not the text.
var legalActs = []struct {
	re    *regexp.Regexp
	title string
}{
	{regexp.MustCompile(`(?i)Landlord and Tenant Act\s+(\d{4})`), "Landlord and Tenant Act %s"},
	{regexp.MustCompile(`(?i)Leasehold Reform[,\s]+Housing and Urban Development Act\s+(\d{4})`), "Leasehold Reform, Housing and Urban Development Act %s"},
	{regexp.MustCompile(`(?i)Leasehold Reform Act\s+(\d{4})`), "Leasehold Reform Act %s"},
	{regexp.MustCompile(`(?i)Housing Act\s+(\d{4})`), "Housing Act %s"},
	{regexp.MustCompile(`(?i)Housing and Planning Act\s+(\d{4})`), "Housing and Planning Act %s"},
	{regexp.MustCompile(`(?i)Commonhold and Leasehold Reform Act\s+(\d{4})`), "Commonhold and Leasehold Reform Act %s"},
	{regexp.MustCompile(`(?i)Rent Act\s+(\d{4})`), "Rent Act %s"},
	{regexp.MustCompile(`(?i)Building Safety Act\s+(\d{4})`), "Building Safety Act %s"},
	{regexp.MustCompile(`(?i)Equality Act\s+(\d{4})`), "Equality Act %s"},
	{regexp.MustCompile(`(?i)Protection from Eviction Act\s+(\d{4})`), "Protection from Eviction Act %s"},
	{regexp.MustCompile(`(?i)Tribunal Procedure[^.]{0,50}Rules\s+(\d{4})`), "Tribunal Procedure Rules %s"},
}

// LegalActs extracts every statute cited in the text as "<Act Name> <year>",
// deduplicated by formatted title, ordered by the citation table.
func LegalActs(text string) []string {
	seen := make(map[string]bool)
	var acts []string
	for _, entry := range legalActs {
		for _, m := range entry.re.FindAllStringSubmatch(text, -1) {
			act := fmt.Sprintf(entry.title, m[1])
			if seen[act] {
				continue
			}
			seen[act] = true
			acts = append(acts, act)
		}
	}
	return acts
}
