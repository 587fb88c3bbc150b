package engine

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/celerix-dev/cadastro/pkg/schema"
)

// Persistence handles the disk I/O for the MemStore.
type Persistence struct {
	DataDir string
	log     zerolog.Logger
	mu      sync.Mutex // Protects concurrent writes to the filesystem
}

// NewPersistence initializes a persistence handler rooted at dir.
func NewPersistence(dir string, log zerolog.Logger) (*Persistence, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	return &Persistence{DataDir: dir, log: log}, nil
}

// WriteFileAtomic writes data to a temporary file next to path and renames
// it into place, so readers see either the old file or the new one.
func WriteFileAtomic(path string, data []byte) error {
	tempPath := path + ".tmp"
	if err := os.WriteFile(tempPath, data, 0644); err != nil {
		return err
	}
	if err := os.Rename(tempPath, path); err != nil {
		os.Remove(tempPath)
		return err
	}
	return nil
}

func (p *Persistence) path(id string) string {
	return filepath.Join(p.DataDir, id+".json")
}

// SaveBatch writes a batch to <id>.json atomically.
func (p *Persistence) SaveBatch(b schema.Batch) error {
	if b.ID == "" || strings.ContainsAny(b.ID, `/\`) {
		return fmt.Errorf("invalid batch id %q", b.ID)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	bytes, err := json.MarshalIndent(b, "", "  ")
	if err != nil {
		return err
	}
	return WriteFileAtomic(p.path(b.ID), bytes)
}

// RemoveBatch deletes a batch file. A missing file is not an error.
func (p *Persistence) RemoveBatch(id string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	err := os.Remove(p.path(id))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

// LoadAll returns every batch found in the data directory, keyed by ID.
// Unreadable files are logged and skipped.
func (p *Persistence) LoadAll() (map[string]schema.Batch, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	all := make(map[string]schema.Batch)

	files, err := os.ReadDir(p.DataDir)
	if err != nil {
		return nil, err
	}

	for _, file := range files {
		if file.IsDir() || filepath.Ext(file.Name()) != ".json" {
			continue
		}
		content, err := os.ReadFile(filepath.Join(p.DataDir, file.Name()))
		if err != nil {
			p.log.Warn().Err(err).Str("file", file.Name()).Msg("could not read batch file")
			continue
		}

		var b schema.Batch
		if err := json.Unmarshal(content, &b); err != nil {
			p.log.Warn().Err(err).Str("file", file.Name()).Msg("could not decode batch file")
			continue
		}
		if b.ID == "" {
			b.ID = strings.TrimSuffix(file.Name(), ".json")
		}
		all[b.ID] = b
	}
	return all, nil
}
