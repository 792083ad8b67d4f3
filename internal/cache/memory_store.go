package cache

import (
	"context"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// MemoryStore 是进程内的 LRU Store，每个实例各自持有一份缓存。
// 过期时间在构造时统一指定，SetValueWithExpiry 的 ttl 只能更短地生效（由条目内的时间戳保证）。
type MemoryStore struct {
	lru *expirable.LRU[string, string]
}

// NewMemoryStore 创建指定容量与过期时间的 MemoryStore。
func NewMemoryStore(size int, ttl time.Duration) *MemoryStore {
	return &MemoryStore{lru: expirable.NewLRU[string, string](size, nil, ttl)}
}

func (s *MemoryStore) GetValue(_ context.Context, key string) (string, bool, error) {
	v, ok := s.lru.Get(key)
	return v, ok, nil
}

func (s *MemoryStore) SetValueWithExpiry(_ context.Context, key, value string, _ time.Duration) error {
	s.lru.Add(key, value)
	return nil
}

func (s *MemoryStore) DeletePrefix(_ context.Context, prefix string) error {
	for _, k := range s.lru.Keys() {
		if strings.HasPrefix(k, prefix) {
			s.lru.Remove(k)
		}
	}
	return nil
}

// Len 返回当前条目数。
func (s *MemoryStore) Len() int {
	return s.lru.Len()
}
