package kv

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"shoplist/internal/shop"
)

const (
	defaultKeyPrefix = "shoplist"
	fieldValue       = "value"
	fieldVersion     = "version"
)

// RedisOptions configures a RedisBackend.
type RedisOptions struct {
	Addr     string
	Password string
	DB       int
	// KeyPrefix namespaces every key; defaults to "shoplist".
	KeyPrefix string
}

// RedisBackend stores each key as a hash with "value" and "version" fields.
// Put uses WATCH/MULTI so a concurrent writer from any process aborts the
// transaction and surfaces as shop.ErrVersionConflict.
type RedisBackend struct {
	client *redis.Client
	prefix string
}

// NewRedisBackend connects to redis and verifies the connection.
func NewRedisBackend(ctx context.Context, opts RedisOptions) (*RedisBackend, error) {
	if opts.Addr == "" {
		return nil, errors.New("redis address is required")
	}
	prefix := opts.KeyPrefix
	if prefix == "" {
		prefix = defaultKeyPrefix
	}

	client := redis.NewClient(&redis.Options{
		Addr:        opts.Addr,
		Password:    opts.Password,
		DB:          opts.DB,
		DialTimeout: 5 * time.Second,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return &RedisBackend{client: client, prefix: prefix}, nil
}

func (b *RedisBackend) buildKey(key string) string {
	return strings.Join([]string{b.prefix, key}, ":")
}

func (b *RedisBackend) Get(key string) ([]byte, int64, error) {
	ctx := context.Background()
	fields, err := b.client.HGetAll(ctx, b.buildKey(key)).Result()
	if err != nil {
		return nil, 0, fmt.Errorf("reading %s: %w", key, err)
	}
	return decodeHash(key, fields)
}

func (b *RedisBackend) Put(key string, value []byte, ifVersion int64) (int64, error) {
	ctx := context.Background()
	rkey := b.buildKey(key)

	var next int64
	err := b.client.Watch(ctx, func(tx *redis.Tx) error {
		fields, err := tx.HGetAll(ctx, rkey).Result()
		if err != nil {
			return err
		}
		_, current, err := decodeHash(key, fields)
		if err != nil {
			return err
		}
		if ifVersion != shop.AnyVersion && ifVersion != current {
			return shop.ErrVersionConflict
		}

		next = current + 1
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HSet(ctx, rkey, fieldValue, value, fieldVersion, next)
			return nil
		})
		return err
	}, rkey)

	switch {
	case err == nil:
		return next, nil
	case errors.Is(err, redis.TxFailedErr), errors.Is(err, shop.ErrVersionConflict):
		return 0, shop.ErrVersionConflict
	default:
		return 0, fmt.Errorf("writing %s: %w", key, err)
	}
}

func (b *RedisBackend) Delete(key string) error {
	if err := b.client.Del(context.Background(), b.buildKey(key)).Err(); err != nil {
		return fmt.Errorf("deleting %s: %w", key, err)
	}
	return nil
}

func (b *RedisBackend) Close() error {
	return b.client.Close()
}

// decodeHash turns an HGETALL reply into a value and version. An empty reply
// is a missing key.
func decodeHash(key string, fields map[string]string) ([]byte, int64, error) {
	if len(fields) == 0 {
		return nil, 0, nil
	}
	var version int64
	if _, err := fmt.Sscan(fields[fieldVersion], &version); err != nil {
		return nil, 0, fmt.Errorf("parsing version of %s: %w", key, err)
	}
	return []byte(fields[fieldValue]), version, nil
}

// Compile-time check that RedisBackend implements shop.Backend
var _ shop.Backend = (*RedisBackend)(nil)
