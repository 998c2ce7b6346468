package repository

import (
	"context"
	"errors"
	"sync"

	"github.com/redis/go-redis/v9"
)

// ErrKeyNotFound はキーがストアに存在しないことを示す。
var ErrKeyNotFound = errors.New("key not found")

// RedisKV はgo-redisクライアントをKeyValueとしてラップする。
type RedisKV struct {
	client *redis.Client
}

// NewRedisKV はRedisKVを生成する。
func NewRedisKV(client *redis.Client) *RedisKV {
	return &RedisKV{client: client}
}

// Get は指定キーの値を取得する。
func (r *RedisKV) Get(ctx context.Context, key string) (string, error) {
	v, err := r.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrKeyNotFound
	}
	return v, err
}

// Set は指定キーに値を書き込む。TTLは設定しない。
func (r *RedisKV) Set(ctx context.Context, key, value string) error {
	return r.client.Set(ctx, key, value, 0).Err()
}

// Ping はストアへの疎通を確認する。ヘルスチェックで使用する。
func (r *RedisKV) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// MemoryKV はテスト用のインメモリKeyValue実装。
type MemoryKV struct {
	mu    sync.RWMutex
	items map[string]string
}

// NewMemoryKV はMemoryKVを生成する。
func NewMemoryKV() *MemoryKV {
	return &MemoryKV{items: make(map[string]string)}
}

// Get は指定キーの値を取得する。
func (m *MemoryKV) Get(ctx context.Context, key string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.items[key]
	if !ok {
		return "", ErrKeyNotFound
	}
	return v, nil
}

// Set は指定キーに値を書き込む。
func (m *MemoryKV) Set(ctx context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[key] = value
	return nil
}

// Ping は常に成功する。RedisKVとインターフェースを揃えるために持つ。
func (m *MemoryKV) Ping(ctx context.Context) error {
	return nil
}
