package repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/ovaphlow/pitchfork/console-hotel-assets-go/internal/session/entity"
)

// FileRepo keeps the snapshot as JSON in a 0600 file.
type FileRepo struct {
	path string
}

func NewFileRepo(path string) *FileRepo { return &FileRepo{path: path} }

func (r *FileRepo) Load(ctx context.Context) (entity.Snapshot, error) {
	var s entity.Snapshot
	b, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return s, nil
		}
		return s, fmt.Errorf("read session file: %w", err)
	}
	if err := json.Unmarshal(b, &s); err != nil {
		return entity.Snapshot{}, fmt.Errorf("decode session file: %w", err)
	}
	return s, nil
}

func (r *FileRepo) Save(ctx context.Context, s entity.Snapshot) error {
	b, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}
	return writeAtomic(r.path, b, 0o600)
}

func (r *FileRepo) Clear(ctx context.Context) error {
	if err := os.Remove(r.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove session file: %w", err)
	}
	return nil
}

// writeAtomic writes to a temp file in the same dir, fsyncs, then renames
// over path so readers never see a half-written snapshot.
func writeAtomic(path string, data []byte, perm fs.FileMode) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("mkdir %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, ".session-*")
	if err != nil {
		return fmt.Errorf("create temp: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
	}()

	if _, err := tmp.Write(data); err != nil {
		return fmt.Errorf("write temp: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("fsync temp: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp: %w", err)
	}
	_ = os.Chmod(tmpPath, perm)

	if err := os.Rename(tmpPath, path); err != nil {
		// windows refuses to rename over an existing file
		_ = os.Remove(path)
		if err2 := os.Rename(tmpPath, path); err2 != nil {
			return fmt.Errorf("rename: %v (after remove: %v)", err, err2)
		}
	}
	return nil
}
