// Package filestore keeps downloaded files in the temporary files directory.
package filestore

import (
	"context"
	"errors"
	"fmt"
	"path"
	"path/filepath"
	"time"

	"github.com/spf13/afero"
)

var ErrInvalidName = errors.New("invalid file name")

// Store writes files into a single flat directory of an afero filesystem.
type Store struct {
	fs        afero.Fs
	dir       string
	urlPrefix string
	now       func() time.Time
}

// New creates dir if needed. Saved files are reported as urlPrefix/<name>.
func New(fs afero.Fs, dir, urlPrefix string) (*Store, error) {
	if err := fs.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create %s: %w", dir, err)
	}
	return &Store{fs: fs, dir: dir, urlPrefix: urlPrefix, now: time.Now}, nil
}

// Save writes data to a temporary file and renames it into place, so a
// reader never sees a partial file.
func (s *Store) Save(ctx context.Context, name string, data []byte) (string, error) {
	if name == "" || name == "." || name == ".." || filepath.Base(name) != name {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	tmp, err := afero.TempFile(s.fs, s.dir, "."+name+"-*.part")
	if err != nil {
		return "", err
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = s.fs.Remove(tmp.Name())
		return "", err
	}
	if err := tmp.Close(); err != nil {
		_ = s.fs.Remove(tmp.Name())
		return "", err
	}
	if err := s.fs.Rename(tmp.Name(), filepath.Join(s.dir, name)); err != nil {
		_ = s.fs.Remove(tmp.Name())
		return "", err
	}
	return path.Join(s.urlPrefix, name), nil
}

// CleanOlderThan removes the regular files last modified more than maxAge
// ago and returns their names. Removal continues past individual failures.
func (s *Store) CleanOlderThan(ctx context.Context, maxAge time.Duration) ([]string, error) {
	entries, err := afero.ReadDir(s.fs, s.dir)
	if err != nil {
		return nil, err
	}

	cutoff := s.now().Add(-maxAge)
	var removed []string
	var errs []error
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		if !entry.Mode().IsRegular() || !entry.ModTime().Before(cutoff) {
			continue
		}
		if err := s.fs.Remove(filepath.Join(s.dir, entry.Name())); err != nil {
			errs = append(errs, err)
			continue
		}
		removed = append(removed, entry.Name())
	}
	return removed, errors.Join(errs...)
}
