// Package storage is the durable local key/value store the storefront keeps
// its session and cart snapshots in.
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var ErrNotFound = errors.New("storage: key not found")

// KV is a flat key/value store. Get returns ErrNotFound for absent keys and
// Delete of an absent key is not an error.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Open picks a backend from the URL scheme: redis:// and rediss:// use Redis,
// postgres:// and postgresql:// use Postgres, anything else is a sqlite path
// (an optional sqlite:// prefix is stripped).
func Open(ctx context.Context, rawURL string) (KV, error) {
	switch {
	case strings.HasPrefix(rawURL, "redis://"), strings.HasPrefix(rawURL, "rediss://"):
		return OpenRedis(ctx, rawURL)
	case strings.HasPrefix(rawURL, "postgres://"), strings.HasPrefix(rawURL, "postgresql://"):
		return OpenPostgres(ctx, rawURL)
	case rawURL == "":
		return nil, fmt.Errorf("storage: empty url")
	default:
		return OpenSQLite(ctx, strings.TrimPrefix(rawURL, "sqlite://"))
	}
}

func GetJSON(ctx context.Context, kv KV, key string, dst any) error {
	raw, err := kv.Get(ctx, key)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("decode %s: %w", key, err)
	}
	return nil
}

func SetJSON(ctx context.Context, kv KV, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return kv.Set(ctx, key, raw)
}

var (
	_ KV = (*GormKV)(nil)
	_ KV = (*RedisKV)(nil)
)
