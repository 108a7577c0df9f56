package instances

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"llmlauncher/internal/common/fsutil"
)

// Persister stores and retrieves store snapshots. Load returns an empty
// snapshot and no error when nothing has been saved yet.
type Persister interface {
	Load(ctx context.Context) (Snapshot, error)
	Save(ctx context.Context, snap Snapshot) error
}

// Open builds a store restored from p and mirrors every later mutation back
// to p. Save failures are logged, not returned: the in-memory store stays
// authoritative for the running process.
func Open(ctx context.Context, p Persister, log zerolog.Logger) (*Store, error) {
	s := NewStore()
	snap, err := p.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}
	if err := s.Restore(snap); err != nil {
		return nil, fmt.Errorf("restore snapshot: %w", err)
	}
	log.Debug().Int("instances", len(snap.Instances)).Msg("instance store restored")
	s.OnChange(func(snap Snapshot) {
		if err := p.Save(context.Background(), snap); err != nil {
			log.Error().Err(err).Msg("persist instance store")
		}
	})
	return s, nil
}

// FilePersister keeps the snapshot as a JSON file.
type FilePersister struct {
	Path string
	mu   sync.Mutex
}

// NewFilePersister returns a persister writing to path ('~' expanded).
func NewFilePersister(path string) (*FilePersister, error) {
	p, err := fsutil.ExpandHome(path)
	if err != nil {
		return nil, err
	}
	return &FilePersister{Path: p}, nil
}

func (f *FilePersister) Load(_ context.Context) (Snapshot, error) {
	var snap Snapshot
	b, err := os.ReadFile(f.Path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return snap, nil
		}
		return snap, err
	}
	if err := json.Unmarshal(b, &snap); err != nil {
		return snap, fmt.Errorf("decode %s: %w", f.Path, err)
	}
	return snap, nil
}

func (f *FilePersister) Save(_ context.Context, snap Snapshot) error {
	b, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	// the snapshot carries API keys
	return fsutil.WriteFileAtomic(f.Path, b, 0o600)
}

// RedisPersister keeps the snapshot as one JSON value under Key.
type RedisPersister struct {
	client *redis.Client
	key    string
}

// NewRedisPersister returns a persister using client and key.
func NewRedisPersister(client *redis.Client, key string) *RedisPersister {
	if key == "" {
		key = "llmlauncher/instances"
	}
	return &RedisPersister{client: client, key: key}
}

func (r *RedisPersister) Load(ctx context.Context) (Snapshot, error) {
	var snap Snapshot
	data, err := r.client.Get(ctx, r.key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return snap, nil
		}
		return snap, fmt.Errorf("redis get %s: %w", r.key, err)
	}
	if err := json.Unmarshal(data, &snap); err != nil {
		return snap, fmt.Errorf("decode %s: %w", r.key, err)
	}
	return snap, nil
}

func (r *RedisPersister) Save(ctx context.Context, snap Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	if err := r.client.Set(ctx, r.key, data, 0).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", r.key, err)
	}
	return nil
}

// MemoryPersister keeps the latest snapshot in memory.
type MemoryPersister struct {
	mu    sync.Mutex
	snap  Snapshot
	saves int
}

func NewMemoryPersister(initial Snapshot) *MemoryPersister {
	return &MemoryPersister{snap: initial}
}

func (m *MemoryPersister) Load(_ context.Context) (Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snap, nil
}

func (m *MemoryPersister) Save(_ context.Context, snap Snapshot) error {
	m.mu.Lock()
	m.snap = snap
	m.saves++
	m.mu.Unlock()
	return nil
}

// Saves returns how many times Save was called.
func (m *MemoryPersister) Saves() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}
