package store

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStore_OnDiskFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chat_ids.json")
	s := NewFileStore(path)
	ctx := context.Background()

	_, err := s.Add(ctx, 100)
	require.NoError(t, err)
	_, err = s.Add(ctx, 200)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var raw map[string][]int64
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Equal(t, map[string][]int64{"uid": {100, 200}}, raw)
}

func TestFileStore_ReadsExistingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chat_ids.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"uid": [3, 1, 3, 2]}`), 0o644))

	ids, err := NewFileStore(path).List(context.Background())

	require.NoError(t, err)
	assert.Equal(t, []int64{3, 1, 2}, ids)
}

func TestFileStore_MissingKeyIsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chat_ids.json")
	require.NoError(t, os.WriteFile(path, []byte(`{}`), 0o644))

	ids, err := NewFileStore(path).List(context.Background())

	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestFileStore_RemoveLastLeavesEmptyList(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chat_ids.json")
	s := NewFileStore(path)
	ctx := context.Background()

	_, err := s.Add(ctx, 5)
	require.NoError(t, err)
	_, err = s.Remove(ctx, 5)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, `{"uid": []}`, string(data))
}

func TestFileStore_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chat_ids.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"uid": [1, 2`), 0o644))
	s := NewFileStore(path)
	ctx := context.Background()

	_, err := s.List(ctx)
	assert.ErrorIs(t, err, ErrCorrupt)

	_, err = s.Add(ctx, 3)
	assert.ErrorIs(t, err, ErrCorrupt)

	_, err = s.Remove(ctx, 1)
	assert.ErrorIs(t, err, ErrCorrupt)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, `{"uid": [1, 2`, string(data), "corrupt file must not be overwritten")
}

func TestFileStore_WriteFailureSurfaces(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing-dir", "chat_ids.json")
	s := NewFileStore(path)

	_, err := s.Add(context.Background(), 1)

	assert.Error(t, err)
}

func TestFileStore_NoTempFilesLeft(t *testing.T) {
	dir := t.TempDir()
	s := NewFileStore(filepath.Join(dir, "chat_ids.json"))
	ctx := context.Background()

	for i := int64(0); i < 5; i++ {
		_, err := s.Add(ctx, i)
		require.NoError(t, err)
	}

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "chat_ids.json", entries[0].Name())
}

func TestFileStore_ConcurrentMutations(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chat_ids.json")
	s := NewFileStore(path)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := int64(0); i < 50; i++ {
		wg.Add(2)
		go func(id int64) {
			defer wg.Done()
			_, err := s.Add(ctx, id)
			assert.NoError(t, err)
		}(i)
		go func(id int64) {
			defer wg.Done()
			_, err := s.Add(ctx, id%10)
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	ids, err := NewFileStore(path).List(ctx)
	require.NoError(t, err)
	assert.Len(t, ids, 50)
	for i := int64(0); i < 50; i++ {
		assert.Contains(t, ids, i)
	}
}

func TestFileStore_SyncsDirectoryAfterRename(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "chat_ids.json")
	s := NewFileStore(path)

	var synced []string
	orig := syncDir
	syncDir = func(d string) error {
		_, err := os.Stat(path)
		require.NoError(t, err, "directory synced before the file was in place")
		synced = append(synced, d)
		return orig(d)
	}
	t.Cleanup(func() { syncDir = orig })

	_, err := s.Add(context.Background(), 1)
	require.NoError(t, err)
	_, err = s.Remove(context.Background(), 1)
	require.NoError(t, err)

	assert.Equal(t, []string{dir, dir}, synced)
}

func TestFileStore_DirectorySyncFailureSurfaces(t *testing.T) {
	s := NewFileStore(filepath.Join(t.TempDir(), "chat_ids.json"))

	orig := syncDir
	syncDir = func(string) error { return os.ErrPermission }
	t.Cleanup(func() { syncDir = orig })

	_, err := s.Add(context.Background(), 1)

	assert.ErrorIs(t, err, os.ErrPermission)
}

func TestSyncDir(t *testing.T) {
	assert.NoError(t, syncDir(t.TempDir()))
	assert.Error(t, syncDir(filepath.Join(t.TempDir(), "missing")))
}
