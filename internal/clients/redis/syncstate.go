package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/planboard-backend/internal/logger"
)

// SyncStateStore records the outcome of the most recent external feed sync
// per (user, feed). It is best-effort cache state only; the engine runs fine
// without redis and the importer treats a nil store as a no-op.
type SyncStateStore interface {
	RecordSync(ctx context.Context, userID uuid.UUID, feed string, status SyncStatus) error
	LastSync(ctx context.Context, userID uuid.UUID, feed string) (*SyncStatus, error)
	Close() error
}

type SyncStatus struct {
	Feed     string    `json:"feed"`
	At       time.Time `json:"at"`
	Imported int       `json:"imported"`
	Updated  int       `json:"updated"`
	Skipped  int       `json:"skipped"`
}

type syncStateStore struct {
	log *logger.Logger
	rdb *goredis.Client
	ttl time.Duration
}

func NewSyncStateStore(log *logger.Logger) (SyncStateStore, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}

	addr := strings.TrimSpace(os.Getenv("REDIS_ADDR"))
	if addr == "" {
		return nil, fmt.Errorf("missing REDIS_ADDR")
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &syncStateStore{
		log: log.With("client", "SyncStateStore"),
		rdb: rdb,
		ttl: 30 * 24 * time.Hour,
	}, nil
}

func (s *syncStateStore) RecordSync(ctx context.Context, userID uuid.UUID, feed string, status SyncStatus) error {
	if s == nil || s.rdb == nil {
		return nil
	}
	raw, err := json.Marshal(status)
	if err != nil {
		return fmt.Errorf("marshal sync status: %w", err)
	}
	return s.rdb.Set(ctx, syncKey(userID, feed), raw, s.ttl).Err()
}

func (s *syncStateStore) LastSync(ctx context.Context, userID uuid.UUID, feed string) (*SyncStatus, error) {
	if s == nil || s.rdb == nil {
		return nil, nil
	}
	raw, err := s.rdb.Get(ctx, syncKey(userID, feed)).Bytes()
	if err == goredis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var status SyncStatus
	if err := json.Unmarshal(raw, &status); err != nil {
		return nil, fmt.Errorf("unmarshal sync status: %w", err)
	}
	return &status, nil
}

func (s *syncStateStore) Close() error {
	if s == nil || s.rdb == nil {
		return nil
	}
	return s.rdb.Close()
}

func syncKey(userID uuid.UUID, feed string) string {
	return fmt.Sprintf("feedsync:%s:%s", userID, feed)
}
