package store

import (
	"sync"

	"go.uber.org/zap"

	"github.com/grantley-gardens/tribunal-cli/internal/model"
)

// DatasetStore checkpoints the decision working set. The presence of the
// output file is the resume signal: Load prefers it over the original input,
// so a rerun picks up exactly where the last committed save left off.
type DatasetStore struct {
	mu         sync.Mutex
	inputPath  string
	outputPath string
}

// NewDatasetStore creates a DatasetStore reading from inputPath on first run
// and checkpointing to outputPath.
func NewDatasetStore(inputPath, outputPath string) *DatasetStore {
	return &DatasetStore{inputPath: inputPath, outputPath: outputPath}
}

// Load reconstructs the working set. Returns the database and whether it was
// resumed from a previous run's output.
func (s *DatasetStore) Load() (*model.Database, bool, error) {
	path := s.inputPath
	resumed := false
	if fileExists(s.outputPath) {
		path = s.outputPath
		resumed = true
	}

	var db model.Database
	if err := loadJSON(path, &db); err != nil {
		return nil, false, err
	}

	zap.L().Info("loaded working set",
		zap.String("path", path),
		zap.Bool("resumed", resumed),
		zap.Int("decisions", len(db.Decisions)),
	)
	return &db, resumed, nil
}

// Save atomically checkpoints the full working set. Saves are serialized;
// callers must ensure no record slot is being written while a save is in
// flight (the orchestrator commits completed records and saves under one
// lock for exactly this reason).
func (s *DatasetStore) Save(db *model.Database) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return saveJSON(s.outputPath, db)
}

// OutputPath returns the checkpoint path.
func (s *DatasetStore) OutputPath() string {
	return s.outputPath
}
