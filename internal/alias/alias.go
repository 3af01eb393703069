// Package alias implements a lookup from short published tile-matrix-set/
// layer aliases to their canonical identifiers, backed by Redis so
// multiple rok4d processes share one alias table.
package alias

import (
	"context"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"
)

// Manager resolves aliases to canonical names.
type Manager interface {
	Resolve(ctx context.Context, alias string) (canonical string, ok bool, err error)
	Put(ctx context.Context, alias, canonical string) error
}

// RedisAliasManager is the production Manager, storing aliases as plain
// string keys under a prefix ("rok4:alias:" by default). Every client call
// and the local negative-lookup cache are serialized by one mutex per
// manager.
type RedisAliasManager struct {
	client *redis.Client
	prefix string

	mu    sync.Mutex
	miss  map[string]struct{} // negative-lookup cache, cleared on Put
}

// NewRedisAliasManager connects to addr (host:port) using the given
// database index and password (empty for no authentication).
func NewRedisAliasManager(addr, password string, db int, prefix string) *RedisAliasManager {
	if prefix == "" {
		prefix = "rok4:alias:"
	}
	return &RedisAliasManager{
		client: redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db}),
		prefix: prefix,
		miss:   map[string]struct{}{},
	}
}

func (m *RedisAliasManager) key(alias string) string { return m.prefix + alias }

func (m *RedisAliasManager) Resolve(ctx context.Context, aliasName string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, known := m.miss[aliasName]; known {
		return "", false, nil
	}

	v, err := m.client.Get(ctx, m.key(aliasName)).Result()
	if err == redis.Nil {
		m.miss[aliasName] = struct{}{}
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("alias: resolving %q: %w", aliasName, err)
	}
	return v, true, nil
}

func (m *RedisAliasManager) Put(ctx context.Context, aliasName, canonical string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.client.Set(ctx, m.key(aliasName), canonical, 0).Err(); err != nil {
		return fmt.Errorf("alias: storing %q: %w", aliasName, err)
	}
	delete(m.miss, aliasName)
	return nil
}

// StaticManager is an in-memory Manager used by tests and single-process
// deployments that do not need Redis.
type StaticManager struct {
	mu    sync.RWMutex
	table map[string]string
}

func NewStaticManager() *StaticManager {
	return &StaticManager{table: map[string]string{}}
}

func (m *StaticManager) Resolve(_ context.Context, aliasName string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.table[aliasName]
	return v, ok, nil
}

func (m *StaticManager) Put(_ context.Context, aliasName, canonical string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.table[aliasName] = canonical
	return nil
}
