package feedback

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
)

// FileStore persists feedback as JSON lines in a local file. Each line is
// the record plus an "_id". Safe for concurrent use within one process.
type FileStore struct {
	mu   sync.Mutex
	path string
}

// NewFileStore creates a FileStore that appends to path. The file and its
// parent directory are created on first write.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Name implements Store.
func (s *FileStore) Name() string { return "file" }

type fileLine struct {
	ID string `json:"_id"`
	Record
}

// Insert appends rec with a fresh UUID.
func (s *FileStore) Insert(_ context.Context, rec Record) (string, error) {
	id := uuid.NewString()

	data, err := json.Marshal(fileLine{ID: id, Record: rec})
	if err != nil {
		return "", fmt.Errorf("%w: marshal: %v", ErrWrite, err)
	}
	data = append(data, '\n')

	s.mu.Lock()
	defer s.mu.Unlock()

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
	}

	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		if errors.Is(err, fs.ErrPermission) || errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		return "", fmt.Errorf("%w: open: %v", ErrWrite, err)
	}
	defer f.Close()

	if _, err := f.Write(data); err != nil {
		return "", fmt.Errorf("%w: %v", ErrWrite, err)
	}
	return id, nil
}
