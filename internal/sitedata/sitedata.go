// Package sitedata compacts the enriched working set into a slim JSON file
// for client-side use: bulky fields are stripped, aggregate stats are
// precomputed, and each decision gains a keyword index of its distinctive
// words so the frontend can search without the full text.
package sitedata

import (
	"encoding/json"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/grantley-gardens/tribunal-cli/internal/model"
)

// commonWordThreshold is the document frequency above which a word is too
// common to be a useful search keyword.
const commonWordThreshold = 0.05

var wordRe = regexp.MustCompile(`[a-zA-Z]{3,}`)

// SlimDecision is a DecisionRecord with the bulky fields stripped and the
// search keywords attached.
type SlimDecision struct {
	CaseReference    string   `json:"case_reference"`
	PropertyAddress  string   `json:"property_address"`
	RegionCode       string   `json:"region_code"`
	Description      string   `json:"description,omitempty"`
	Category         string   `json:"category"`
	CategoryLabel    string   `json:"category_label"`
	SubCategory      string   `json:"sub_category"`
	SubCategoryLabel string   `json:"sub_category_label"`
	DecisionDate     string   `json:"decision_date"`
	PublishedAt      string   `json:"published_at"`
	URL              string   `json:"url"`
	GovUKPath        string   `json:"gov_uk_path"`
	PDFURLs          []string `json:"pdf_urls,omitempty"`

	Applicant        *string   `json:"applicant,omitempty"`
	Respondent       *string   `json:"respondent,omitempty"`
	ApplicationType  *string   `json:"application_type,omitempty"`
	TribunalMembers  []string  `json:"tribunal_members,omitempty"`
	PresidingJudge   *string   `json:"presiding_judge,omitempty"`
	DecisionOutcome  *string   `json:"decision_outcome,omitempty"`
	FinancialAmounts []float64 `json:"financial_amounts,omitempty"`
	HearingDate      *string   `json:"hearing_date,omitempty"`
	LegalActsCited   []string  `json:"legal_acts_cited,omitempty"`

	SearchKeywords string `json:"search_keywords,omitempty"`
}

// DateRange is the span of decision dates in the set.
type DateRange struct {
	Earliest string `json:"earliest"`
	Latest   string `json:"latest"`
}

// Stats precomputes the aggregates the frontend's filters and charts need.
type Stats struct {
	Total             int                 `json:"total"`
	Categories        map[string]int      `json:"categories"`
	SubCategories     map[string]int      `json:"sub_categories"`
	Regions           map[string]int      `json:"regions"`
	Years             map[string]int      `json:"years"`
	CategoryHierarchy map[string][]string `json:"category_hierarchy"`
	DateRange         DateRange           `json:"date_range"`
	FieldCoverage     map[string]int      `json:"field_coverage"`
	LegalActs         map[string]int      `json:"legal_acts"`
}

// SiteData is the full compacted payload.
type SiteData struct {
	Stats     Stats           `json:"stats"`
	Decisions []*SlimDecision `json:"decisions"`
}

// Build compacts db into site data.
func Build(db *model.Database) *SiteData {
	decisions := db.Decisions
	data := &SiteData{
		Stats:     buildStats(decisions),
		Decisions: make([]*SlimDecision, 0, len(decisions)),
	}

	docWords, common := indexWords(decisions)
	for i, d := range decisions {
		slim := slimRecord(d)
		slim.SearchKeywords = distinctiveKeywords(docWords[i], common)
		data.Decisions = append(data.Decisions, slim)
	}
	return data
}

// Save writes the site data compactly (no indentation) via a temp-and-rename.
func Save(path string, data *SiteData) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return eris.Wrap(err, "sitedata: marshal")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return eris.Wrapf(err, "sitedata: create dir %s", dir)
		}
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return eris.Wrapf(err, "sitedata: write %s", tmp)
	}
	if err := os.Rename(tmp, path); err != nil {
		return eris.Wrapf(err, "sitedata: rename %s", path)
	}
	zap.L().Info("site data written",
		zap.String("path", path),
		zap.Int("decisions", len(data.Decisions)),
		zap.Int("bytes", len(raw)),
	)
	return nil
}

func buildStats(decisions []*model.DecisionRecord) Stats {
	stats := Stats{
		Total:             len(decisions),
		Categories:        map[string]int{},
		SubCategories:     map[string]int{},
		Regions:           map[string]int{},
		Years:             map[string]int{},
		CategoryHierarchy: map[string][]string{},
		FieldCoverage:     map[string]int{},
	}

	catToSub := map[string]map[string]bool{}
	actCounts := map[string]int{}
	for _, d := range decisions {
		if d.CategoryLabel != "" {
			stats.Categories[d.CategoryLabel]++
		}
		if d.SubCategoryLabel != "" {
			stats.SubCategories[d.SubCategoryLabel]++
		}
		region := d.RegionCode
		if region == "" {
			region = "Unknown"
		}
		stats.Regions[region]++
		if len(d.DecisionDate) >= 4 {
			stats.Years[d.DecisionDate[:4]]++
		}
		if d.CategoryLabel != "" && d.SubCategoryLabel != "" {
			if catToSub[d.CategoryLabel] == nil {
				catToSub[d.CategoryLabel] = map[string]bool{}
			}
			catToSub[d.CategoryLabel][d.SubCategoryLabel] = true
		}

		if d.DecisionDate != "" {
			if stats.DateRange.Earliest == "" || d.DecisionDate < stats.DateRange.Earliest {
				stats.DateRange.Earliest = d.DecisionDate
			}
			if d.DecisionDate > stats.DateRange.Latest {
				stats.DateRange.Latest = d.DecisionDate
			}
		}

		countCoverage(stats.FieldCoverage, d)
		for _, act := range d.LegalActsCited {
			actCounts[act]++
		}
	}

	for cat, subs := range catToSub {
		list := make([]string, 0, len(subs))
		for s := range subs {
			list = append(list, s)
		}
		sort.Strings(list)
		stats.CategoryHierarchy[cat] = list
	}
	stats.LegalActs = topN(actCounts, 20)
	return stats
}

func countCoverage(coverage map[string]int, d *model.DecisionRecord) {
	if model.Deref(d.Applicant) != "" {
		coverage["applicant"]++
	}
	if model.Deref(d.Respondent) != "" {
		coverage["respondent"]++
	}
	if len(d.TribunalMembers) > 0 {
		coverage["tribunal_members"]++
	}
	if model.Deref(d.PresidingJudge) != "" {
		coverage["presiding_judge"]++
	}
	if model.Deref(d.DecisionOutcome) != "" {
		coverage["decision_outcome"]++
	}
	if len(d.FinancialAmounts) > 0 {
		coverage["financial_amounts"]++
	}
	if model.Deref(d.HearingDate) != "" {
		coverage["hearing_date"]++
	}
	if len(d.LegalActsCited) > 0 {
		coverage["legal_acts_cited"]++
	}
}

// topN keeps the n highest counts. Ties break alphabetically so the output
// is stable across runs.
func topN(counts map[string]int, n int) map[string]int {
	type kv struct {
		key   string
		count int
	}
	pairs := make([]kv, 0, len(counts))
	for k, c := range counts {
		pairs = append(pairs, kv{k, c})
	}
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].count != pairs[j].count {
			return pairs[i].count > pairs[j].count
		}
		return pairs[i].key < pairs[j].key
	})
	if len(pairs) > n {
		pairs = pairs[:n]
	}
	out := make(map[string]int, len(pairs))
	for _, p := range pairs {
		out[p.key] = p.count
	}
	return out
}

// indexWords tokenizes every decision's text and returns the per-document
// word sets plus the set of words too common to be distinctive.
func indexWords(decisions []*model.DecisionRecord) ([]map[string]bool, map[string]bool) {
	docWords := make([]map[string]bool, len(decisions))
	docFreq := map[string]int{}
	for i, d := range decisions {
		text := d.Text()
		if text == "" {
			continue
		}
		words := map[string]bool{}
		for _, w := range wordRe.FindAllString(strings.ToLower(text), -1) {
			words[w] = true
		}
		docWords[i] = words
		for w := range words {
			docFreq[w]++
		}
	}

	maxFreq := float64(len(decisions)) * commonWordThreshold
	common := map[string]bool{}
	for w, c := range docFreq {
		if float64(c) > maxFreq {
			common[w] = true
		}
	}
	zap.L().Debug("search vocabulary built",
		zap.Int("words", len(docFreq)),
		zap.Int("common_dropped", len(common)),
	)
	return docWords, common
}

// distinctiveKeywords returns the document's uncommon words, sorted and
// space-joined.
func distinctiveKeywords(words, common map[string]bool) string {
	if len(words) == 0 {
		return ""
	}
	var keep []string
	for w := range words {
		if !common[w] {
			keep = append(keep, w)
		}
	}
	if len(keep) == 0 {
		return ""
	}
	sort.Strings(keep)
	return strings.Join(keep, " ")
}

func slimRecord(d *model.DecisionRecord) *SlimDecision {
	return &SlimDecision{
		CaseReference:    d.CaseReference,
		PropertyAddress:  d.PropertyAddress,
		RegionCode:       d.RegionCode,
		Description:      d.Description,
		Category:         d.Category,
		CategoryLabel:    d.CategoryLabel,
		SubCategory:      d.SubCategory,
		SubCategoryLabel: d.SubCategoryLabel,
		DecisionDate:     d.DecisionDate,
		PublishedAt:      d.PublishedAt,
		URL:              d.URL,
		GovUKPath:        d.GovUKPath,
		PDFURLs:          d.PDFURLs,
		Applicant:        d.Applicant,
		Respondent:       d.Respondent,
		ApplicationType:  d.ApplicationType,
		TribunalMembers:  d.TribunalMembers,
		PresidingJudge:   d.PresidingJudge,
		DecisionOutcome:  d.DecisionOutcome,
		FinancialAmounts: d.FinancialAmounts,
		HearingDate:      d.HearingDate,
		LegalActsCited:   d.LegalActsCited,
	}
}
