package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/vsa-campus/vsa-site/internal/config"
)

func TestMemoryStore_LoadMissingKey(t *testing.T) {
	s := NewMemoryStore()
	if _, err := s.Load(context.Background(), "nope"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Load on empty store: got %v, want ErrNotFound", err)
	}
}

func TestMemoryStore_SaveCopiesValue(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	value := []byte(`{"a":1}`)
	if err := s.Save(ctx, "k", value); err != nil {
		t.Fatalf("Save: %v", err)
	}
	value[0] = 'X'

	got, err := s.Load(ctx, "k")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if string(got) != `{"a":1}` {
		t.Fatalf("stored value aliased caller slice: %q", got)
	}
}

func TestFileStore_SaveLoadAndBackup(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	s, err := NewFileStore(dir, nil)
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}

	if _, err := s.Load(ctx, "vsa-events"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Load before save: got %v, want ErrNotFound", err)
	}

	if err := s.Save(ctx, "vsa-events", []byte("first")); err != nil {
		t.Fatalf("Save first: %v", err)
	}
	if err := s.Save(ctx, "vsa-events", []byte("second")); err != nil {
		t.Fatalf("Save second: %v", err)
	}

	got, err := s.Load(ctx, "vsa-events")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if string(got) != "second" {
		t.Errorf("Load = %q, want %q", got, "second")
	}

	backup, err := os.ReadFile(filepath.Join(dir, "vsa-events.json.backup"))
	if err != nil {
		t.Fatalf("read backup: %v", err)
	}
	if string(backup) != "first" {
		t.Errorf("backup = %q, want %q", backup, "first")
	}

	if _, err := os.Stat(filepath.Join(dir, "vsa-events.json.tmp")); !os.IsNotExist(err) {
		t.Errorf("tmp file should not remain after save, stat err = %v", err)
	}
}

func TestFileStore_LoadFallsBackToBackup(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	s, err := NewFileStore(dir, nil)
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "vsa-events.json.backup"), []byte("saved"), 0644); err != nil {
		t.Fatalf("write backup: %v", err)
	}

	got, err := s.Load(ctx, "vsa-events")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if string(got) != "saved" {
		t.Errorf("Load = %q, want the backup contents", got)
	}
}

func TestFileStore_RejectsPathKeys(t *testing.T) {
	s, err := NewFileStore(t.TempDir(), nil)
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	for _, key := range []string{"../escape", "a/b", ""} {
		if err := s.Save(context.Background(), key, []byte("x")); err == nil {
			t.Errorf("Save(%q) should fail", key)
		}
	}
}

func TestOpen_SelectsBackend(t *testing.T) {
	ctx := context.Background()

	mem, err := Open(ctx, config.StorageConfig{Backend: config.BackendMemory}, nil)
	if err != nil {
		t.Fatalf("Open memory: %v", err)
	}
	if _, ok := mem.(*MemoryStore); !ok {
		t.Errorf("memory backend returned %T", mem)
	}

	file, err := Open(ctx, config.StorageConfig{Backend: config.BackendFile, DataDir: t.TempDir()}, nil)
	if err != nil {
		t.Fatalf("Open file: %v", err)
	}
	if _, ok := file.(*FileStore); !ok {
		t.Errorf("file backend returned %T", file)
	}

	if _, err := Open(ctx, config.StorageConfig{Backend: "floppy"}, nil); err == nil {
		t.Error("unknown backend should fail")
	}

	bad, err := Open(ctx, config.StorageConfig{Backend: config.BackendFile}, nil)
	if err == nil || bad != nil {
		t.Errorf("file backend without dir: store=%v err=%v, want nil store and error", bad, err)
	}
}

func TestS3Store_ObjectKey(t *testing.T) {
	s, err := OpenS3Store(config.S3Config{Region: "us-east-1", Bucket: "vsa", Prefix: "catalog/", Endpoint: "http://localhost:9000"})
	if err != nil {
		t.Fatalf("OpenS3Store: %v", err)
	}
	if got := s.objectKey("vsa-events"); got != "catalog/vsa-events.json" {
		t.Errorf("objectKey = %q", got)
	}
}

func TestRedisStore_PrefixesKeys(t *testing.T) {
	s := NewRedisStore(nil, "vsa:")
	if got := s.key("vsa-events"); got != "vsa:vsa-events" {
		t.Errorf("key = %q", got)
	}
}
