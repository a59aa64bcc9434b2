package sitedata

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grantley-gardens/tribunal-cli/internal/model"
)

func sampleDatabase() *model.Database {
	textA := "rare distinctive leasehold words " + strings.Repeat("common shared filler ", 5)
	textB := strings.Repeat("common shared filler ", 5)
	return &model.Database{
		Decisions: []*model.DecisionRecord{
			{
				CaseReference:    "LON/00AB/LSC/2024/0001",
				RegionCode:       "LON",
				CategoryLabel:    "Leasehold disputes",
				SubCategoryLabel: "Service charges",
				DecisionDate:     "2024-03-10",
				FullText:         &textA,
				ContentID:        "cid-1",
				Applicant:        model.StrPtr("Jane Smith"),
				LegalActsCited:   []string{"Landlord and Tenant Act 1985"},
				FinancialAmounts: []float64{500},
			},
			{
				CaseReference:    "MAN/00BR/HMF/2023/0042",
				RegionCode:       "",
				CategoryLabel:    "Leasehold disputes",
				SubCategoryLabel: "Lease variations",
				DecisionDate:     "2023-07-01",
				FullText:         &textB,
				LegalActsCited:   []string{"Landlord and Tenant Act 1985", "Housing Act 2004"},
			},
		},
	}
}

func TestBuild_Stats(t *testing.T) {
	data := Build(sampleDatabase())
	stats := data.Stats

	assert.Equal(t, 2, stats.Total)
	assert.Equal(t, 2, stats.Categories["Leasehold disputes"])
	assert.Equal(t, 1, stats.SubCategories["Service charges"])
	assert.Equal(t, 1, stats.Regions["LON"])
	assert.Equal(t, 1, stats.Regions["Unknown"])
	assert.Equal(t, 1, stats.Years["2024"])
	assert.Equal(t, 1, stats.Years["2023"])
	assert.Equal(t, "2023-07-01", stats.DateRange.Earliest)
	assert.Equal(t, "2024-03-10", stats.DateRange.Latest)
	assert.Equal(t,
		[]string{"Lease variations", "Service charges"},
		stats.CategoryHierarchy["Leasehold disputes"],
	)
	assert.Equal(t, 1, stats.FieldCoverage["applicant"])
	assert.Equal(t, 2, stats.FieldCoverage["legal_acts_cited"])
	assert.Equal(t, 2, stats.LegalActs["Landlord and Tenant Act 1985"])
	assert.Equal(t, 1, stats.LegalActs["Housing Act 2004"])
}

func TestBuild_StripsBulkFields(t *testing.T) {
	data := Build(sampleDatabase())
	raw, err := json.Marshal(data.Decisions[0])
	require.NoError(t, err)

	payload := string(raw)
	assert.NotContains(t, payload, "full_text")
	assert.NotContains(t, payload, "content_id")
	assert.NotContains(t, payload, "text_source")
	assert.Contains(t, payload, "case_reference")
	assert.Contains(t, payload, "Jane Smith")
}

func TestBuild_SearchKeywords(t *testing.T) {
	// Words in more than 5% of documents are too common to keep; words unique
	// to one document survive.
	special := "rare distinctive leasehold argument plus common shared filler"
	boilerplate := "common shared filler"
	db := &model.Database{}
	db.Decisions = append(db.Decisions, &model.DecisionRecord{
		CaseReference: "LON/1", FullText: &special,
	})
	for i := 0; i < 24; i++ {
		db.Decisions = append(db.Decisions, &model.DecisionRecord{FullText: &boilerplate})
	}

	data := Build(db)
	first := data.Decisions[0].SearchKeywords
	assert.Contains(t, first, "distinctive")
	assert.Contains(t, first, "leasehold")
	assert.NotContains(t, first, "shared")
	assert.NotContains(t, first, "filler")

	assert.Empty(t, data.Decisions[1].SearchKeywords)
}

func TestTopN(t *testing.T) {
	counts := map[string]int{"a": 5, "b": 3, "c": 3, "d": 1}
	top := topN(counts, 2)
	assert.Equal(t, map[string]int{"a": 5, "b": 3}, top)
}

func TestSave_CompactAtomicWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "site", "decisions.json")
	require.NoError(t, Save(path, Build(sampleDatabase())))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "\n  ", "site payload must be compact")

	var loaded SiteData
	require.NoError(t, json.Unmarshal(raw, &loaded))
	assert.Equal(t, 2, loaded.Stats.Total)
	require.Len(t, loaded.Decisions, 2)

	_, err = os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err))
}
