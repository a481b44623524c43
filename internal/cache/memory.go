package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// Memory LRU-кэш с истечением записей; значения хранятся в JSON,
// чтобы вызывающий код не получал общих указателей
type Memory struct {
	lru   *expirable.LRU[string, []byte]
	stats *Stats
}

func NewMemory(size int, ttl time.Duration) *Memory {
	if size <= 0 {
		size = 1024
	}
	return &Memory{
		lru:   expirable.NewLRU[string, []byte](size, nil, ttl),
		stats: &Stats{},
	}
}

func (c *Memory) Get(ctx context.Context, key string, dest any) (bool, error) {
	data, ok := c.lru.Get(key)
	if !ok {
		c.stats.miss()
		return false, nil
	}

	if err := json.Unmarshal(data, dest); err != nil {
		c.stats.fail()
		return false, fmt.Errorf("cache unmarshal error: %w", err)
	}

	c.stats.hit()
	return true, nil
}

func (c *Memory) Set(ctx context.Context, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		c.stats.fail()
		return fmt.Errorf("cache marshal error: %w", err)
	}

	c.lru.Add(key, data)
	c.stats.set()
	return nil
}

func (c *Memory) DeletePrefix(ctx context.Context, prefix string) error {
	deleted := 0
	for _, key := range c.lru.Keys() {
		if strings.HasPrefix(key, prefix) && c.lru.Remove(key) {
			deleted++
		}
	}
	c.stats.deleted(deleted)
	return nil
}

func (c *Memory) Ping(ctx context.Context) error {
	return nil
}

// Close очищает кэш; после Close им можно продолжать пользоваться
func (c *Memory) Close() error {
	c.lru.Purge()
	return nil
}

func (c *Memory) Len() int {
	return c.lru.Len()
}

func (c *Memory) GetStats() StatsSnapshot {
	return c.stats.Snapshot()
}
