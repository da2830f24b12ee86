package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const redisScanBatch = 500

// RedisStore KVStore on Redis, one string key per entry under a namespace.
type RedisStore struct {
	client *redis.Client
	logger *zap.Logger
	prefix string
	ttl    time.Duration
}

// NewRedisStore connects to redisURL and pings it. ttl 0 means keys never expire.
func NewRedisStore(redisURL, namespace string, ttl time.Duration, logger *zap.Logger) (*RedisStore, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := client.Ping(ctx).Result(); err != nil {
		client.Close()
		return nil, fmt.Errorf("connect redis: %w", err)
	}

	return &RedisStore{
		client: client,
		logger: logger,
		prefix: namespace,
		ttl:    ttl,
	}, nil
}

func (rs *RedisStore) Get(ctx context.Context, key string) (json.RawMessage, bool, error) {
	val, err := rs.client.Get(ctx, rs.prefix+key).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		rs.logger.Error("Redis get failed", zap.Error(err), zap.String("key", key))
		return nil, false, err
	}

	rs.logger.Debug("Redis hit", zap.String("key", key))
	return json.RawMessage(val), true, nil
}

func (rs *RedisStore) Set(ctx context.Context, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}
	return rs.setRaw(ctx, key, data)
}

func (rs *RedisStore) setRaw(ctx context.Context, key string, data []byte) error {
	if err := rs.client.Set(ctx, rs.prefix+key, data, rs.ttl).Err(); err != nil {
		rs.logger.Error("Redis set failed", zap.Error(err), zap.String("key", key))
		return err
	}
	rs.logger.Debug("Stored in Redis", zap.String("key", key))
	return nil
}

func (rs *RedisStore) Delete(ctx context.Context, key string) error {
	if err := rs.client.Del(ctx, rs.prefix+key).Err(); err != nil {
		rs.logger.Error("Redis delete failed", zap.Error(err), zap.String("key", key))
		return err
	}
	return nil
}

// ListByPrefix walks matching keys with SCAN and fetches them with MGET.
func (rs *RedisStore) ListByPrefix(ctx context.Context, prefix string) ([]Entry, error) {
	keys, err := rs.scanKeys(ctx, rs.prefix+prefix)
	if err != nil {
		return nil, err
	}
	sort.Strings(keys)

	entries := make([]Entry, 0, len(keys))
	for start := 0; start < len(keys); start += redisScanBatch {
		end := start + redisScanBatch
		if end > len(keys) {
			end = len(keys)
		}
		batch := keys[start:end]

		values, err := rs.client.MGet(ctx, batch...).Result()
		if err != nil {
			return nil, fmt.Errorf("redis mget: %w", err)
		}
		for i, v := range values {
			s, ok := v.(string)
			if !ok {
				continue // expired or deleted between SCAN and MGET
			}
			entries = append(entries, Entry{
				Key:   strings.TrimPrefix(batch[i], rs.prefix),
				Value: json.RawMessage(s),
			})
		}
	}
	return validEntries(entries, rs.logger), nil
}

func (rs *RedisStore) scanKeys(ctx context.Context, fullPrefix string) ([]string, error) {
	var (
		keys   []string
		cursor uint64
	)
	pattern := escapeGlob(fullPrefix) + "*"
	for {
		batch, next, err := rs.client.Scan(ctx, cursor, pattern, redisScanBatch).Result()
		if err != nil {
			return nil, fmt.Errorf("redis scan %s: %w", pattern, err)
		}
		keys = append(keys, batch...)
		cursor = next
		if cursor == 0 {
			break
		}
	}
	return dedupStrings(keys), nil
}

func (rs *RedisStore) Clear(ctx context.Context) error {
	keys, err := rs.scanKeys(ctx, rs.prefix)
	if err != nil {
		return err
	}
	if len(keys) > 0 {
		if err := rs.client.Del(ctx, keys...).Err(); err != nil {
			return fmt.Errorf("redis del: %w", err)
		}
	}
	rs.logger.Info("Cleared Redis namespace", zap.String("namespace", rs.prefix), zap.Int("keys_deleted", len(keys)))
	return nil
}

func (rs *RedisStore) Close() error {
	return rs.client.Close()
}

// escapeGlob quotes the characters SCAN MATCH treats as wildcards.
func escapeGlob(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch r {
		case '*', '?', '[', ']', '\\':
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}

// SCAN may return a key more than once.
func dedupStrings(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := in[:0]
	for _, s := range in {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
