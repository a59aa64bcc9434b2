package repair

import (
	"regexp"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/grantley-gardens/tribunal-cli/internal/model"
)

// fuzzyRegionMap recovers a valid code from the first two letters of a
// mangled one.
var fuzzyRegionMap = map[string]string{
	"BI": "BIR",
	"LO": "LON",
	"MA": "MAN",
	"CH": "CHI",
	"CA": "CAM",
	"HA": "HAV",
}

var (
	regionPrefixRe = regexp.MustCompile(`\b(` + regionAlternation() + `)/`)
	caseRefTokenRe = regexp.MustCompile(`(` + regionAlternation() + `)/\S+`)
)

// regionAlternation renders the valid code set as a regex alternation,
// longest codes first so prefixes ("NS") can't shadow longer codes ("NAT").
func regionAlternation() string {
	codes := make([]string, 0, len(model.ValidRegionCodes))
	for code := range model.ValidRegionCodes {
		codes = append(codes, code)
	}
	sort.Slice(codes, func(i, j int) bool {
		if len(codes[i]) != len(codes[j]) {
			return len(codes[i]) > len(codes[j])
		}
		return codes[i] < codes[j]
	})
	return strings.Join(codes, "|")
}

// textWindow is how far into full_text the region search looks; codes appear
// in the case-reference header at the top of the document.
const textWindow = 500

// FixRegionCodes repairs missing and invalid region codes by searching the
// case reference, property address, and the head of the full text for a
// "<CODE>/" token. Returns (invalid codes fixed, missing codes filled).
func FixRegionCodes(decisions []*model.DecisionRecord) (fixedInvalid, fixedMissing int) {
	for _, d := range decisions {
		if d.RegionCode != "" && model.ValidRegionCodes[d.RegionCode] {
			continue
		}

		text := d.Text()
		if len(text) > textWindow {
			text = text[:textWindow]
		}

		if d.RegionCode != "" {
			// Invalid code: recover from the case reference, else fuzzy-match
			// the first two letters.
			found := ""
			if m := regionPrefixRe.FindStringSubmatch(d.CaseReference); m != nil {
				found = strings.ToUpper(m[1])
			} else if len(d.RegionCode) >= 2 {
				found = fuzzyRegionMap[strings.ToUpper(d.RegionCode[:2])]
			}
			if found != "" {
				zap.L().Debug("fixed invalid region code",
					zap.String("case_reference", d.CaseReference),
					zap.String("old", d.RegionCode),
					zap.String("new", found),
				)
				d.RegionCode = found
				fixedInvalid++
				continue
			}
		}

		// Missing (or unrecoverable invalid) code: first match across the
		// reference, address, and text head wins.
		found := ""
		for _, source := range []string{d.CaseReference, d.PropertyAddress, text} {
			if source == "" {
				continue
			}
			if m := regionPrefixRe.FindStringSubmatch(source); m != nil {
				found = strings.ToUpper(m[1])
				break
			}
		}
		if found == "" {
			continue
		}

		d.RegionCode = found
		if d.CaseReference == "" && text != "" {
			// A discovered "<CODE>/..." token doubles as the missing reference.
			if m := caseRefTokenRe.FindString(text); m != "" {
				d.CaseReference = m
			}
		}
		fixedMissing++
	}

	return fixedInvalid, fixedMissing
}
