// Package sync keeps the similarity index consistent with the HR database:
// checkpoint persistence, stale-id detection, and the synchronization engine
// that rebuilds documents.
package sync

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/redis/go-redis/v9"
)

// CheckpointStore persists the single "fully synchronized up to" timestamp.
// Load returns (zero, false, nil) when no checkpoint has ever been saved —
// that absence is the signal for full reingestion. The stored value is
// monotonically non-decreasing: the engine only saves after completed work.
type CheckpointStore interface {
	Load(ctx context.Context) (time.Time, bool, error)
	Save(ctx context.Context, t time.Time) error
}

// checkpointState is the JSON file format, shared with earlier deployments.
type checkpointState struct {
	LastSyncTime string `json:"last_sync_time"`
}

// FileCheckpointStore persists the checkpoint as a small JSON file. Writes
// go to a temp file in the same directory followed by a rename, so a crash
// never leaves a torn checkpoint.
type FileCheckpointStore struct {
	path string
}

var _ CheckpointStore = (*FileCheckpointStore)(nil)

// NewFileCheckpointStore creates a file-backed checkpoint store at path.
func NewFileCheckpointStore(path string) *FileCheckpointStore {
	return &FileCheckpointStore{path: path}
}

// Load reads the checkpoint. A missing file means no checkpoint.
func (s *FileCheckpointStore) Load(_ context.Context) (time.Time, bool, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return time.Time{}, false, nil
		}
		return time.Time{}, false, fmt.Errorf("read checkpoint %s: %w", s.path, err)
	}

	var state checkpointState
	if err := json.Unmarshal(data, &state); err != nil {
		return time.Time{}, false, fmt.Errorf("parse checkpoint %s: %w", s.path, err)
	}
	if state.LastSyncTime == "" {
		return time.Time{}, false, nil
	}

	t, err := time.Parse(time.RFC3339, state.LastSyncTime)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("parse checkpoint timestamp %q: %w", state.LastSyncTime, err)
	}
	return t, true, nil
}

// Save writes the checkpoint atomically.
func (s *FileCheckpointStore) Save(_ context.Context, t time.Time) error {
	data, err := json.MarshalIndent(checkpointState{
		LastSyncTime: t.UTC().Format(time.RFC3339),
	}, "", "    ")
	if err != nil {
		return fmt.Errorf("marshal checkpoint: %w", err)
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, ".sync_state-*")
	if err != nil {
		return fmt.Errorf("create checkpoint temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write checkpoint: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close checkpoint temp file: %w", err)
	}

	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace checkpoint %s: %w", s.path, err)
	}
	return nil
}

// RedisCheckpointStore persists the checkpoint under a single Redis key for
// deployments where the service has no stable local disk.
type RedisCheckpointStore struct {
	client *redis.Client
	key    string
}

var _ CheckpointStore = (*RedisCheckpointStore)(nil)

const defaultCheckpointKey = "staffsense:sync:last_sync_time"

// NewRedisCheckpointStore creates a Redis-backed checkpoint store. An empty
// key selects the default.
func NewRedisCheckpointStore(client *redis.Client, key string) *RedisCheckpointStore {
	if key == "" {
		key = defaultCheckpointKey
	}
	return &RedisCheckpointStore{client: client, key: key}
}

// Load reads the checkpoint. A missing key means no checkpoint.
func (s *RedisCheckpointStore) Load(ctx context.Context) (time.Time, bool, error) {
	value, err := s.client.Get(ctx, s.key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return time.Time{}, false, nil
		}
		return time.Time{}, false, fmt.Errorf("read checkpoint from redis: %w", err)
	}

	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("parse checkpoint timestamp %q: %w", value, err)
	}
	return t, true, nil
}

// Save writes the checkpoint. Redis SET is atomic on its own.
func (s *RedisCheckpointStore) Save(ctx context.Context, t time.Time) error {
	if err := s.client.Set(ctx, s.key, t.UTC().Format(time.RFC3339), 0).Err(); err != nil {
		return fmt.Errorf("write checkpoint to redis: %w", err)
	}
	return nil
}
