// Package cache 实现列表接口的旁路缓存（cache-aside）。
//
// 缓存只是优化层：读失败按未命中处理，写失败只记录日志，
// 任何缓存错误都不会出现在调用方的返回值中。
package cache

import (
	"context"
	"fmt"
	"time"
)

// Store 是列表缓存依赖的键值存储。
type Store interface {
	// GetValue 返回键对应的值；键不存在时 ok 为 false 且 err 为 nil。
	GetValue(ctx context.Context, key string) (value string, ok bool, err error)
	// SetValueWithExpiry 写入值并设置过期时间。
	SetValueWithExpiry(ctx context.Context, key, value string, ttl time.Duration) error
	// DeletePrefix 删除所有以 prefix 开头的键。
	DeletePrefix(ctx context.Context, prefix string) error
}

// Key 定位一条缓存的列表结果。
type Key struct {
	// Namespace 标识资源与查询形态，例如直播间历史消息列表
	Namespace string
	// Scope 是分区标识，例如直播间 id
	Scope string
	// Variant 是同一 Scope 下不同过滤、排序与分页组合的指纹
	Variant uint64
}

// Keyspace 为所有缓存键加上统一前缀。
type Keyspace string

// Key 返回完整的缓存键：<prefix>:<namespace>:<scope>:<variant>。
func (ks Keyspace) Key(k Key) string {
	return fmt.Sprintf("%s%016x", ks.ScopePrefix(k.Namespace, k.Scope), k.Variant)
}

// ScopePrefix 返回某个 Scope 下所有缓存键的公共前缀，末尾的冒号避免 1 匹配到 10。
func (ks Keyspace) ScopePrefix(namespace, scope string) string {
	if ks == "" {
		return fmt.Sprintf("%s:%s:", namespace, scope)
	}
	return fmt.Sprintf("%s:%s:%s:", string(ks), namespace, scope)
}
