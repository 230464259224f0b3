package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	redis "github.com/redis/go-redis/v9"

	"lexiclaire/gateway/pkg/results"
)

// RedisConfig contains configuration for the Redis storage backend.
type RedisConfig struct {
	// Address is host:port.
	// Default: 127.0.0.1:6379
	Address string

	Username string
	Password string
	DB       int

	// KeyPrefix namespaces every key.
	// Default: "lexiclaire:results:"
	KeyPrefix string

	// TTL expires record keys; zero keeps them until pruned.
	TTL time.Duration

	// DialTimeout bounds connection establishment.
	// Default: 3 seconds
	DialTimeout time.Duration
}

// RedisStorage implements results.Store on Redis. Each record is stored as
// JSON under "<prefix>record:<id>" and indexed in the sorted set
// "<prefix>index" scored by creation time in milliseconds.
type RedisStorage struct {
	client *redis.Client
	config *RedisConfig
	logger *slog.Logger
}

// NewRedisStorage creates a Redis backend. An unreachable server is logged,
// not fatal: results are best-effort and the connection is retried per call.
func NewRedisStorage(config *RedisConfig) (*RedisStorage, error) {
	if config == nil {
		config = &RedisConfig{}
	}
	if config.Address == "" {
		config.Address = "127.0.0.1:6379"
	}
	if config.KeyPrefix == "" {
		config.KeyPrefix = "lexiclaire:results:"
	}
	if config.DialTimeout <= 0 {
		config.DialTimeout = 3 * time.Second
	}

	logger := slog.Default().With("component", "results.storage.redis")

	client := redis.NewClient(&redis.Options{
		Addr:        config.Address,
		Username:    config.Username,
		Password:    config.Password,
		DB:          config.DB,
		DialTimeout: config.DialTimeout,
	})

	s := &RedisStorage{client: client, config: config, logger: logger}

	ctx, cancel := context.WithTimeout(context.Background(), config.DialTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn("redis not reachable at startup", "address", config.Address, "error", err)
	} else {
		logger.Info("Redis storage initialized", "address", config.Address, "db", config.DB)
	}

	return s, nil
}

func (s *RedisStorage) recordKey(id string) string {
	return s.config.KeyPrefix + "record:" + id
}

func (s *RedisStorage) indexKey() string {
	return s.config.KeyPrefix + "index"
}

// Store writes the record and its index entry in one transaction.
func (s *RedisStorage) Store(ctx context.Context, record *results.Record) error {
	data, err := json.Marshal(record)
	if err != nil {
		return results.NewStorageError(BackendRedis, "store", err)
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, s.recordKey(record.ID), data, s.config.TTL)
		pipe.ZAdd(ctx, s.indexKey(), redis.Z{
			Score:  float64(record.CreatedAt.UnixMilli()),
			Member: record.ID,
		})
		return nil
	})
	if err != nil {
		return results.NewStorageError(BackendRedis, "store", err)
	}
	return nil
}

// Query returns matching records.
func (s *RedisStorage) Query(ctx context.Context, query *results.Query) ([]*results.Record, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}
	matched, err := s.match(ctx, query, "query")
	if err != nil {
		return nil, err
	}
	return page(sortRecords(matched, query), query), nil
}

// Count returns the number of matching records.
func (s *RedisStorage) Count(ctx context.Context, query *results.Query) (int64, error) {
	matched, err := s.match(ctx, query, "count")
	if err != nil {
		return 0, err
	}
	return int64(len(matched)), nil
}

// Delete removes matching records and their index entries.
func (s *RedisStorage) Delete(ctx context.Context, query *results.Query) (int64, error) {
	matched, err := s.match(ctx, query, "delete")
	if err != nil {
		return 0, err
	}
	ids := make([]string, len(matched))
	for i, r := range matched {
		ids[i] = r.ID
	}
	if err := s.remove(ctx, ids); err != nil {
		return 0, results.NewStorageError(BackendRedis, "delete", err)
	}
	return int64(len(ids)), nil
}

// DeleteOldest removes all but the newest keep records.
func (s *RedisStorage) DeleteOldest(ctx context.Context, keep int64) (int64, error) {
	total, err := s.client.ZCard(ctx, s.indexKey()).Result()
	if err != nil {
		return 0, results.NewStorageError(BackendRedis, "delete_oldest", err)
	}
	excess := total - keep
	if excess <= 0 {
		return 0, nil
	}
	ids, err := s.client.ZRange(ctx, s.indexKey(), 0, excess-1).Result()
	if err != nil {
		return 0, results.NewStorageError(BackendRedis, "delete_oldest", err)
	}
	if err := s.remove(ctx, ids); err != nil {
		return 0, results.NewStorageError(BackendRedis, "delete_oldest", err)
	}
	return int64(len(ids)), nil
}

// Ping checks the connection.
func (s *RedisStorage) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return results.NewStorageError(BackendRedis, "ping", err)
	}
	return nil
}

// Close closes the client.
func (s *RedisStorage) Close() error {
	if err := s.client.Close(); err != nil {
		return results.NewStorageError(BackendRedis, "close", err)
	}
	s.logger.Info("Redis storage closed")
	return nil
}

// match loads every record in the query's time window and applies the
// remaining filters in memory. Index entries whose key expired are pruned.
func (s *RedisStorage) match(ctx context.Context, query *results.Query, op string) ([]*results.Record, error) {
	rng := &redis.ZRangeBy{Min: "-inf", Max: "+inf"}
	if query != nil && query.StartTime != nil {
		rng.Min = strconv.FormatInt(query.StartTime.UnixMilli(), 10)
	}
	if query != nil && query.EndTime != nil {
		rng.Max = strconv.FormatInt(query.EndTime.UnixMilli(), 10)
	}

	ids, err := s.client.ZRangeByScore(ctx, s.indexKey(), rng).Result()
	if err != nil {
		return nil, results.NewStorageError(BackendRedis, op, err)
	}
	if len(ids) == 0 {
		return nil, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = s.recordKey(id)
	}
	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, results.NewStorageError(BackendRedis, op, err)
	}

	var out []*results.Record
	var expired []interface{}
	for i, v := range values {
		raw, ok := v.(string)
		if !ok {
			expired = append(expired, ids[i])
			continue
		}
		var r results.Record
		if err := json.Unmarshal([]byte(raw), &r); err != nil {
			return nil, results.NewStorageError(BackendRedis, op, fmt.Errorf("decode record %s: %w", ids[i], err))
		}
		if query.Matches(&r) {
			out = append(out, &r)
		}
	}

	if len(expired) > 0 {
		if err := s.client.ZRem(ctx, s.indexKey(), expired...).Err(); err != nil && !errors.Is(err, redis.Nil) {
			s.logger.Debug("failed to prune expired index entries", "error", err)
		}
	}

	return out, nil
}

func (s *RedisStorage) remove(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	keys := make([]string, len(ids))
	members := make([]interface{}, len(ids))
	for i, id := range ids {
		keys[i] = s.recordKey(id)
		members[i] = id
	}
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, keys...)
		pipe.ZRem(ctx, s.indexKey(), members...)
		return nil
	})
	return err
}
