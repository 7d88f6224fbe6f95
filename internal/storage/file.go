package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"go.uber.org/zap"
)

const (
	fileSuffix   = ".json"
	tmpSuffix    = ".tmp"
	backupSuffix = ".backup"
	filePerm     = 0644
)

var safeKey = regexp.MustCompile(`^[A-Za-z0-9._-]+$`)

// FileStore writes one JSON file per key under a directory.
// Saves go through a tmp file and a rename; the previous file is kept
// as <key>.json.backup.
type FileStore struct {
	dir string
	log *zap.Logger
}

// NewFileStore creates dir if needed.
func NewFileStore(dir string, log *zap.Logger) (*FileStore, error) {
	if dir == "" {
		return nil, errors.New("data dir is required")
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &FileStore{dir: dir, log: log}, nil
}

func (s *FileStore) path(key string) (string, error) {
	if !safeKey.MatchString(key) {
		return "", fmt.Errorf("invalid key %q", key)
	}
	return filepath.Join(s.dir, key+fileSuffix), nil
}

// Load reads <key>.json, falling back to the backup when the live file
// is missing.
func (s *FileStore) Load(_ context.Context, key string) ([]byte, error) {
	p, err := s.path(key)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(p)
	if err == nil {
		return data, nil
	}
	if !os.IsNotExist(err) {
		return nil, fmt.Errorf("read %s: %w", p, err)
	}

	data, err = os.ReadFile(p + backupSuffix)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("read %s: %w", p+backupSuffix, err)
	}
	s.log.Warn("live file missing, loaded backup", zap.String("path", p))
	return data, nil
}

func (s *FileStore) Save(_ context.Context, key string, value []byte) error {
	p, err := s.path(key)
	if err != nil {
		return err
	}

	tmp := p + tmpSuffix
	if err := os.WriteFile(tmp, value, filePerm); err != nil {
		return fmt.Errorf("write %s: %w", tmp, err)
	}

	// The live file stays in place until the rename below replaces it.
	if prev, err := os.ReadFile(p); err == nil {
		if err := os.WriteFile(p+backupSuffix, prev, filePerm); err != nil {
			s.log.Warn("failed to create backup", zap.String("path", p), zap.Error(err))
		}
	}

	if err := os.Rename(tmp, p); err != nil {
		return fmt.Errorf("rename %s: %w", tmp, err)
	}
	return nil
}

func (s *FileStore) Close() error { return nil }
