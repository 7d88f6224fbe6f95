// Package storage provides the key-value persistence backends the event
// catalog writes its serialized collection through.
package storage

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/vsa-campus/vsa-site/internal/config"
	"go.uber.org/zap"
)

// ErrNotFound is returned by Load when the key has never been saved.
var ErrNotFound = errors.New("key not found")

// Store is a blob store keyed by string.
type Store interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, value []byte) error
	Close() error
}

// Open builds the backend selected by cfg.Backend.
func Open(ctx context.Context, cfg config.StorageConfig, log *zap.Logger) (Store, error) {
	var (
		store Store
		err   error
	)
	switch cfg.Backend {
	case config.BackendMemory:
		store = NewMemoryStore()
	case config.BackendFile, "":
		store, err = fromConcrete(NewFileStore(cfg.DataDir, log))
	case config.BackendPostgres:
		store, err = fromConcrete(OpenPostgresStore(ctx, cfg.Postgres))
	case config.BackendRedis:
		store, err = fromConcrete(OpenRedisStore(ctx, cfg.Redis))
	case config.BackendMongo:
		store, err = fromConcrete(OpenMongoStore(ctx, cfg.Mongo))
	case config.BackendS3:
		store, err = fromConcrete(OpenS3Store(cfg.S3))
	default:
		err = fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", cfg.Backend, err)
	}
	return store, nil
}

// fromConcrete keeps a typed nil pointer out of the Store interface.
func fromConcrete[S Store](s S, err error) (Store, error) {
	if err != nil {
		return nil, err
	}
	return s, nil
}

// MemoryStore keeps values in process memory.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string][]byte)}
}

func (s *MemoryStore) Load(_ context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.data[key]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), v...), nil
}

func (s *MemoryStore) Save(_ context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = append([]byte(nil), value...)
	return nil
}

func (s *MemoryStore) Close() error { return nil }
