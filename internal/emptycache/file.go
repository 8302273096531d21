package emptycache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/google/renameio/v2"
)

// FileStore keeps the empty-course set as a JSON integer array
type FileStore struct {
	path string
}

// NewFileStore creates a file-backed store
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Load returns the persisted ids, or an empty slice if the file does not exist
func (s *FileStore) Load(ctx context.Context) ([]int, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return []int{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read empty courses: %w", err)
	}

	ids := []int{}
	if err := json.Unmarshal(data, &ids); err != nil {
		return nil, fmt.Errorf("decode empty courses %s: %w", s.path, err)
	}
	return ids, nil
}

// Replace overwrites the persisted set
func (s *FileStore) Replace(ctx context.Context, ids []int) error {
	if ids == nil {
		ids = []int{}
	}

	data, err := json.Marshal(ids)
	if err != nil {
		return fmt.Errorf("encode empty courses: %w", err)
	}

	if err := renameio.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("write empty courses: %w", err)
	}
	return nil
}
