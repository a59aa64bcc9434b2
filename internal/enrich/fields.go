package enrich

import (
	"time"

	"go.uber.org/zap"

	"github.com/grantley-gardens/tribunal-cli/internal/extract"
	"github.com/grantley-gardens/tribunal-cli/internal/model"
	"github.com/grantley-gardens/tribunal-cli/internal/repair"
)

// FieldStats summarizes one extraction pass.
type FieldStats struct {
	Processed      int
	DatesFixed     int
	RegionsFixed   int
	RegionsFilled  int
	ShortTextCut   int
	BadApplicants  int
	BadRespondents int
	BadAmounts     int
}

// RunFieldExtraction is the offline derivation stage: repair the scraped
// metadata, run every extractor over each decision that holds text, then
// drop garbage values. Overwrite clears previously derived party names so
// they are recomputed instead of filled-if-absent.
//
// The stage is deterministic and idempotent: running it twice over the same
// working set produces the same records.
func RunFieldExtraction(db *model.Database, overwrite bool, now time.Time) FieldStats {
	var stats FieldStats
	decisions := db.Decisions

	stats.DatesFixed = repair.FixDecisionDates(decisions, now)
	stats.RegionsFixed, stats.RegionsFilled = repair.FixRegionCodes(decisions)
	stats.ShortTextCut = repair.CleanShortFullText(decisions)

	for _, d := range decisions {
		if d.Text() == "" {
			continue
		}
		if overwrite {
			d.Applicant = nil
			d.Respondent = nil
		}
		extract.All(d.Text()).Apply(d)
		stats.Processed++
	}

	stats.BadApplicants, stats.BadRespondents, stats.BadAmounts = repair.CleanExtractedFields(decisions)

	zap.L().Info("field extraction complete",
		zap.Int("processed", stats.Processed),
		zap.Int("dates_fixed", stats.DatesFixed),
		zap.Int("regions_fixed", stats.RegionsFixed),
		zap.Int("regions_filled", stats.RegionsFilled),
		zap.Int("short_text_cleared", stats.ShortTextCut),
		zap.Int("bad_applicants", stats.BadApplicants),
		zap.Int("bad_respondents", stats.BadRespondents),
		zap.Int("bad_amounts", stats.BadAmounts),
	)
	logCoverage(db)
	return stats
}

// logCoverage reports how many decisions carry each derived field.
func logCoverage(db *model.Database) {
	total := len(db.Decisions)
	if total == 0 {
		return
	}
	counts := map[string]int{}
	for _, d := range db.Decisions {
		if d.Applicant != nil {
			counts["applicant"]++
		}
		if d.Respondent != nil {
			counts["respondent"]++
		}
		if d.ApplicationType != nil {
			counts["application_type"]++
		}
		if len(d.TribunalMembers) > 0 {
			counts["tribunal_members"]++
		}
		if d.PresidingJudge != nil {
			counts["presiding_judge"]++
		}
		if d.DecisionOutcome != nil {
			counts["decision_outcome"]++
		}
		if len(d.FinancialAmounts) > 0 {
			counts["financial_amounts"]++
		}
		if d.HearingDate != nil {
			counts["hearing_date"]++
		}
		if len(d.LegalActsCited) > 0 {
			counts["legal_acts_cited"]++
		}
	}
	fields := []string{
		"applicant", "respondent", "application_type", "tribunal_members",
		"presiding_judge", "decision_outcome", "financial_amounts",
		"hearing_date", "legal_acts_cited",
	}
	for _, f := range fields {
		n := counts[f]
		zap.L().Info("coverage",
			zap.String("field", f),
			zap.Int("count", n),
			zap.Float64("pct", 100*float64(n)/float64(total)),
		)
	}
}
