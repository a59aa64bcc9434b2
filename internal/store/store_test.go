package store

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grantley-gardens/tribunal-cli/internal/model"
)

func writeDataset(t *testing.T, path string, db *model.Database) {
	t.Helper()
	raw, err := json.Marshal(db)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, raw, 0o644))
}

func TestDatasetStore_LoadPrefersCheckpoint(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "input.json")
	output := filepath.Join(dir, "output.json")

	writeDataset(t, input, &model.Database{
		Decisions: []*model.DecisionRecord{{CaseReference: "LON/1"}},
	})
	writeDataset(t, output, &model.Database{
		Decisions: []*model.DecisionRecord{
			{CaseReference: "LON/1", FullText: model.StrPtr("enriched")},
			{CaseReference: "LON/2"},
		},
	})

	db, resumed, err := NewDatasetStore(input, output).Load()
	require.NoError(t, err)
	assert.True(t, resumed)
	require.Len(t, db.Decisions, 2)
	assert.Equal(t, "enriched", db.Decisions[0].Text())
}

func TestDatasetStore_LoadFallsBackToInput(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "input.json")
	writeDataset(t, input, &model.Database{
		Decisions: []*model.DecisionRecord{{CaseReference: "MAN/1"}},
	})

	db, resumed, err := NewDatasetStore(input, filepath.Join(dir, "missing.json")).Load()
	require.NoError(t, err)
	assert.False(t, resumed)
	require.Len(t, db.Decisions, 1)
}

func TestDatasetStore_SaveRoundTrip(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "input.json")
	output := filepath.Join(dir, "nested", "output.json")
	writeDataset(t, input, &model.Database{})

	s := NewDatasetStore(input, output)
	db := &model.Database{
		Metadata: map[string]any{"run": "test"},
		Decisions: []*model.DecisionRecord{
			{CaseReference: "CHI/1", FullText: model.StrPtr("some text"), TextSource: "content_api"},
		},
	}
	require.NoError(t, s.Save(db))

	loaded, resumed, err := s.Load()
	require.NoError(t, err)
	assert.True(t, resumed)
	require.Len(t, loaded.Decisions, 1)
	assert.Equal(t, "some text", loaded.Decisions[0].Text())
	assert.Equal(t, "content_api", loaded.Decisions[0].TextSource)
	assert.Equal(t, "test", loaded.Metadata["run"])
}

func TestDatasetStore_SaveLeavesNoTempFile(t *testing.T) {
	dir := t.TempDir()
	output := filepath.Join(dir, "output.json")
	s := NewDatasetStore(filepath.Join(dir, "input.json"), output)

	require.NoError(t, s.Save(&model.Database{}))

	_, err := os.Stat(output + ".tmp")
	assert.True(t, os.IsNotExist(err))
}

func TestDatasetStore_StaleTempFileIgnored(t *testing.T) {
	// A crash between temp write and rename leaves a .tmp sibling; the next
	// load must see only the last committed checkpoint.
	dir := t.TempDir()
	output := filepath.Join(dir, "output.json")
	s := NewDatasetStore(filepath.Join(dir, "input.json"), output)

	require.NoError(t, s.Save(&model.Database{
		Decisions: []*model.DecisionRecord{{CaseReference: "LON/1"}},
	}))
	require.NoError(t, os.WriteFile(output+".tmp", []byte("{truncated"), 0o644))

	db, _, err := s.Load()
	require.NoError(t, err)
	require.Len(t, db.Decisions, 1)
	assert.Equal(t, "LON/1", db.Decisions[0].CaseReference)
}

func TestManifestStore_LoadMissingReturnsEmpty(t *testing.T) {
	s := NewManifestStore(filepath.Join(t.TempDir(), "manifest.json"))
	m, err := s.Load()
	require.NoError(t, err)
	assert.Empty(t, m.PDFs)
	assert.NotNil(t, m.Metadata)
}

func TestManifestStore_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "manifest.json")
	s := NewManifestStore(path)

	m := &model.Manifest{
		PDFs: []*model.ManifestEntry{
			{URL: "https://assets.example/1/a.pdf", LocalPath: "/tmp/1_a.pdf", PageCount: 3},
		},
		Metadata: map[string]any{"mode": "missing_text"},
	}
	require.NoError(t, s.Save(m))

	loaded, err := s.Load()
	require.NoError(t, err)
	require.Len(t, loaded.PDFs, 1)
	assert.Equal(t, 3, loaded.PDFs[0].PageCount)
	assert.Equal(t, "missing_text", loaded.Metadata["mode"])
}
