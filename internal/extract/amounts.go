package extract

import (
	"regexp"
	"strconv"
	"strings"
)

// Pound amounts with optional thousands separators and optional pence.
var amountRe = regexp.MustCompile(`£([\d,]+(?:\.\d{2})?)`)

// FinancialAmounts extracts every £ amount in the text, in first-occurrence
// order, deduplicated by value. Zero and negative parses are discarded; the
// upper sanity bound is enforced by the post-extraction cleanup pass.
func FinancialAmounts(text string) []float64 {
	matches := amountRe.FindAllStringSubmatch(text, -1)
	if matches == nil {
		return nil
	}

	seen := make(map[float64]bool)
	var amounts []float64
	for _, m := range matches {
		raw := strings.ReplaceAll(m[1], ",", "")
		val, err := strconv.ParseFloat(raw, 64)
		if err != nil || val <= 0 {
			continue
		}
		if seen[val] {
			continue
		}
		seen[val] = true
		amounts = append(amounts, val)
	}
	return amounts
}
