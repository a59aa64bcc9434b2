package store

import (
	"sync"

	"go.uber.org/zap"

	"github.com/grantley-gardens/tribunal-cli/internal/model"
)

// ManifestStore checkpoints the attachment manifest with the same atomic
// write contract as the dataset store. Entries already present at load time
// (by URL) short-circuit re-download.
type ManifestStore struct {
	mu   sync.Mutex
	path string
}

// NewManifestStore creates a ManifestStore at path.
func NewManifestStore(path string) *ManifestStore {
	return &ManifestStore{path: path}
}

// Load reads the manifest, or returns an empty one if no checkpoint exists.
func (s *ManifestStore) Load() (*model.Manifest, error) {
	m := &model.Manifest{Metadata: make(map[string]any)}
	if !fileExists(s.path) {
		return m, nil
	}
	if err := loadJSON(s.path, m); err != nil {
		return nil, err
	}
	if m.Metadata == nil {
		m.Metadata = make(map[string]any)
	}
	zap.L().Info("loaded attachment manifest",
		zap.String("path", s.path),
		zap.Int("pdfs", len(m.PDFs)),
	)
	return m, nil
}

// Save atomically checkpoints the manifest.
func (s *ManifestStore) Save(m *model.Manifest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return saveJSON(s.path, m)
}
