package store

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"chess-trainer-bot/internal/domain"
	"chess-trainer-bot/internal/logger"
)

// FileStore keeps the dataset in a flat JSON document, written as
// human-readable UTF-8 without HTML escaping.
type FileStore struct {
	path string
}

// NewFileStore returns a store backed by the JSON document at path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Load reads the dataset document. A missing file yields a fresh dataset.
func (s *FileStore) Load() (*domain.Dataset, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		logger.Store.Info("dataset file absent, starting empty",
			slog.String("event", "store.load"),
			slog.String("path", s.path),
		)
		return domain.NewDataset(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read dataset %s: %w", s.path, err)
	}

	ds := domain.NewDataset()
	if err := json.Unmarshal(data, ds); err != nil {
		return nil, fmt.Errorf("parse dataset %s: %w: %v", s.path, ErrCorrupt, err)
	}
	if ds.Parents == nil {
		ds.Parents = map[string]string{}
	}
	logger.Store.Info("dataset loaded",
		slog.String("event", "store.load"),
		slog.String("path", s.path),
		slog.Int("students", len(ds.Students)),
		slog.Int("parents", len(ds.Parents)),
	)
	return ds, nil
}

// Save writes the full dataset via a temp file and rename so a concurrent
// Load never observes a partial write.
func (s *FileStore) Save(ds *domain.Dataset) error {
	buf := &bytes.Buffer{}
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(ds); err != nil {
		return fmt.Errorf("encode dataset: %w", err)
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp dataset file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(buf.Bytes()); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("write dataset: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("close dataset file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("replace dataset %s: %w", s.path, err)
	}
	return nil
}
