// Package repair applies whole-set corrective passes over the working
// dataset: decision-date year typos, missing or invalid region codes, and
// garbage values left behind by scraping and extraction.
package repair

import (
	"fmt"
	"regexp"
	"time"

	"go.uber.org/zap"

	"github.com/grantley-gardens/tribunal-cli/internal/model"
)

var (
	isoDateRe   = regexp.MustCompile(`^(\d{4})-(\d{2})-(\d{2})$`)
	isoPrefixRe = regexp.MustCompile(`^(\d{4})-(\d{2})-(\d{2})`)
)

// minDecisionYear is the earliest plausible decision year in the dataset;
// the tribunal's online archive starts in 2001.
const minDecisionYear = 2001

// maxPublishLagDays is how far a decision date may trail behind its publish
// date before the year is assumed to be a typo.
const maxPublishLagDays = 90

// FixDecisionDates corrects records whose decision year is an obvious typo
// (e.g. 2925, 3034), using published_at as the reliable reference. Returns
// the number of records fixed. Malformed dates are left untouched.
func FixDecisionDates(decisions []*model.DecisionRecord, now time.Time) int {
	maxYear := now.Year() + 1
	fixed := 0

	for _, d := range decisions {
		if d.DecisionDate == "" || d.PublishedAt == "" {
			continue
		}

		m := isoDateRe.FindStringSubmatch(d.DecisionDate)
		if m == nil {
			continue
		}
		// Parse rejects calendar-invalid dates (a February 30th) that the
		// digit pattern accepts.
		decDate, err := time.Parse("2006-01-02", d.DecisionDate)
		if err != nil {
			continue
		}

		pm := isoPrefixRe.FindStringSubmatch(d.PublishedAt)
		if pm == nil {
			continue
		}
		pubDate, err := time.Parse("2006-01-02", pm[0])
		if err != nil {
			continue
		}

		year := decDate.Year()
		needsFix := year < minDecisionYear || year > maxYear
		if !needsFix && decDate.Sub(pubDate) > maxPublishLagDays*24*time.Hour {
			needsFix = true
		}
		if !needsFix {
			continue
		}

		// Take the publish year; if that would still place the decision after
		// publication (a December decision published in January), step back one.
		correctedYear := pubDate.Year()
		if afterDate(correctedYear, int(decDate.Month()), decDate.Day(),
			pubDate.Year(), int(pubDate.Month()), pubDate.Day()) {
			correctedYear = pubDate.Year() - 1
		}

		newDate := fmt.Sprintf("%04d-%s-%s", correctedYear, m[2], m[3])
		zap.L().Info("fixed decision date",
			zap.String("case_reference", d.CaseReference),
			zap.String("old", d.DecisionDate),
			zap.String("new", newDate),
		)
		d.DecisionDate = newDate
		fixed++
	}

	return fixed
}

func afterDate(y1, m1, d1, y2, m2, d2 int) bool {
	if y1 != y2 {
		return y1 > y2
	}
	if m1 != m2 {
		return m1 > m2
	}
	return d1 > d2
}
