package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync"
)

var (
	// ErrCorrupt is returned when the subscriber file exists but cannot be decoded.
	ErrCorrupt = errors.New("subscriber file is corrupt")
)

// subscriberFile is the on-disk layout: {"uid": [ids...]}.
type subscriberFile struct {
	UID []int64 `json:"uid"`
}

// FileStore keeps subscribers in a JSON file. Every mutation rewrites the whole
// file through a temp file and rename, so readers see the old or the new set.
type FileStore struct {
	path string
	mu   sync.Mutex // serializes mutations
}

// NewFileStore creates a FileStore at path. The file is created on first Add.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// List returns subscribers in insertion order.
func (s *FileStore) List(_ context.Context) ([]int64, error) {
	return s.read()
}

// Add appends id unless present.
func (s *FileStore) Add(_ context.Context, id int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids, err := s.read()
	if err != nil {
		return false, err
	}
	if slices.Contains(ids, id) {
		return false, nil
	}

	if err := s.write(append(ids, id)); err != nil {
		return false, err
	}
	return true, nil
}

// Remove deletes id if present.
func (s *FileStore) Remove(_ context.Context, id int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids, err := s.read()
	if err != nil {
		return false, err
	}
	i := slices.Index(ids, id)
	if i < 0 {
		return false, nil
	}

	if err := s.write(slices.Delete(ids, i, i+1)); err != nil {
		return false, err
	}
	return true, nil
}

func (s *FileStore) read() ([]int64, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return []int64{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read subscribers: %w", err)
	}

	var f subscriberFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCorrupt, s.path, err)
	}

	// Files edited by hand may carry duplicates; keep the first occurrence.
	ids := make([]int64, 0, len(f.UID))
	for _, id := range f.UID {
		if !slices.Contains(ids, id) {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func (s *FileStore) write(ids []int64) error {
	if ids == nil {
		ids = []int64{}
	}
	data, err := json.MarshalIndent(subscriberFile{UID: ids}, "", "    ")
	if err != nil {
		return fmt.Errorf("encode subscribers: %w", err)
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			os.Remove(tmpName) //nolint:errcheck // best-effort cleanup
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("replace subscriber file: %w", err)
	}
	committed = true

	if err := syncDir(dir); err != nil {
		return fmt.Errorf("sync subscriber dir: %w", err)
	}
	return nil
}

// syncDir flushes dir so a completed rename survives a crash.
var syncDir = func(dir string) error {
	d, err := os.Open(dir)
	if err != nil {
		return err
	}
	defer d.Close()
	return d.Sync()
}
