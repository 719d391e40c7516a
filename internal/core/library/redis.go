package library

import (
	"context"
	"errors"
	"fmt"

	"parfum-formulator/internal/infrastructure/config"

	"github.com/go-redis/redis/v8"
)

// RedisStore 每個命名空間對應一個 Redis hash
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore 連線 Redis 並確認可用
func NewRedisStore(ctx context.Context, cfg config.StorageConfig) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	// 測試連接
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisStore{client: client, prefix: cfg.KeyPrefix}, nil
}

func (s *RedisStore) key(namespace string) string {
	if s.prefix == "" {
		return namespace
	}
	return s.prefix + ":" + namespace
}

// Get 讀取項目
func (s *RedisStore) Get(ctx context.Context, namespace, id string) ([]byte, error) {
	data, err := s.client.HGet(ctx, s.key(namespace), id).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis hget %s: %w", namespace, err)
	}
	return data, nil
}

// Put 寫入或覆寫項目
func (s *RedisStore) Put(ctx context.Context, namespace, id string, data []byte) error {
	if err := s.client.HSet(ctx, s.key(namespace), id, data).Err(); err != nil {
		return fmt.Errorf("redis hset %s: %w", namespace, err)
	}
	return nil
}

// PutIfAbsent 使用 HSETNX，只在欄位不存在時寫入
func (s *RedisStore) PutIfAbsent(ctx context.Context, namespace, id string, data []byte) (bool, error) {
	ok, err := s.client.HSetNX(ctx, s.key(namespace), id, data).Result()
	if err != nil {
		return false, fmt.Errorf("redis hsetnx %s: %w", namespace, err)
	}
	return ok, nil
}

// Delete 刪除項目，不存在時回傳 ErrNotFound
func (s *RedisStore) Delete(ctx context.Context, namespace, id string) error {
	n, err := s.client.HDel(ctx, s.key(namespace), id).Result()
	if err != nil {
		return fmt.Errorf("redis hdel %s: %w", namespace, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// List 列出命名空間內所有項目
func (s *RedisStore) List(ctx context.Context, namespace string) (map[string][]byte, error) {
	all, err := s.client.HGetAll(ctx, s.key(namespace)).Result()
	if err != nil {
		return nil, fmt.Errorf("redis hgetall %s: %w", namespace, err)
	}
	out := make(map[string][]byte, len(all))
	for id, v := range all {
		out[id] = []byte(v)
	}
	return out, nil
}

// Ping 檢查連線
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close 關閉連線
func (s *RedisStore) Close() error {
	return s.client.Close()
}

// NewStore 依設定建立儲存
func NewStore(ctx context.Context, cfg config.StorageConfig) (Store, error) {
	switch cfg.Driver {
	case config.DriverRedis:
		return NewRedisStore(ctx, cfg)
	case config.DriverMemory, "":
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}
