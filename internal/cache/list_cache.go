package cache

import (
	"context"
	"fmt"
	"liveroom-go/pkg/log"
	"sync"
	"time"

	"github.com/bytedance/sonic"
)

// Options 控制 ListCache 的行为。
type Options struct {
	// TTL 缓存条目的存活时间
	TTL time.Duration
	// AsyncWrite 为 true 时回填缓存不阻塞调用方
	AsyncWrite bool
	// WriteTimeout 单次回填的超时时间，0 表示不设超时
	WriteTimeout time.Duration
	Keyspace     Keyspace
	// Now 用于测试注入时钟，默认为 time.Now
	Now func() time.Time
}

// entry 是写入 Store 的缓存包装，createdAt 与 ttl 均为毫秒。
type entry[T any] struct {
	Value     T     `json:"value"`
	CreatedAt int64 `json:"createdAt"`
	TTL       int64 `json:"ttl"`
}

// ListCache 是某一类列表结果的旁路缓存。
// Read 只返回 (值, 是否命中)，Write 与 Invalidate 不返回错误，缓存故障不会传播到调用方。
type ListCache[T any] struct {
	store Store
	opts  Options
	wg    sync.WaitGroup
}

// NewListCache 创建 ListCache。store 为 nil 时缓存被禁用，所有读取都视为未命中。
func NewListCache[T any](store Store, opts Options) *ListCache[T] {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &ListCache[T]{store: store, opts: opts}
}

// Read 读取缓存。存储出错、数据损坏或条目已超过 TTL 时都按未命中处理。
func (c *ListCache[T]) Read(ctx context.Context, k Key) (value T, ok bool) {
	if c == nil || c.store == nil {
		return value, false
	}
	key := c.opts.Keyspace.Key(k)
	defer func() {
		if r := recover(); r != nil {
			c.fail(k.Namespace, "read", key, fmt.Errorf("panic: %v", r))
			var zero T
			value, ok = zero, false
		}
	}()

	raw, found, err := c.store.GetValue(ctx, key)
	if err != nil {
		c.fail(k.Namespace, "read", key, err)
		return value, false
	}
	if !found {
		cacheMissesTotal.WithLabelValues(k.Namespace).Inc()
		return value, false
	}

	var e entry[T]
	if err := sonic.UnmarshalString(raw, &e); err != nil {
		c.fail(k.Namespace, "decode", key, err)
		return value, false
	}
	if e.CreatedAt == 0 || e.TTL <= 0 {
		c.fail(k.Namespace, "decode", key, fmt.Errorf("缓存条目缺少 createdAt 或 ttl"))
		return value, false
	}
	// 存储层的过期可能不精确（例如进程内 LRU 使用统一的过期时间），这里再按写入时间校验一次
	if age := c.opts.Now().UnixMilli() - e.CreatedAt; age >= e.TTL {
		cacheMissesTotal.WithLabelValues(k.Namespace).Inc()
		return value, false
	}

	cacheHitsTotal.WithLabelValues(k.Namespace).Inc()
	return e.Value, true
}

// Write 回填缓存。AsyncWrite 打开时在后台完成，且不受请求 ctx 取消的影响。
func (c *ListCache[T]) Write(ctx context.Context, k Key, value T) {
	if c == nil || c.store == nil {
		return
	}
	if !c.opts.AsyncWrite {
		c.write(ctx, k, value)
		return
	}
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		c.write(context.WithoutCancel(ctx), k, value)
	}()
}

func (c *ListCache[T]) write(ctx context.Context, k Key, value T) {
	key := c.opts.Keyspace.Key(k)
	defer func() {
		if r := recover(); r != nil {
			c.fail(k.Namespace, "write", key, fmt.Errorf("panic: %v", r))
		}
	}()

	if c.opts.WriteTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.opts.WriteTimeout)
		defer cancel()
	}

	payload, err := sonic.MarshalString(entry[T]{
		Value:     value,
		CreatedAt: c.opts.Now().UnixMilli(),
		TTL:       c.opts.TTL.Milliseconds(),
	})
	if err != nil {
		c.fail(k.Namespace, "encode", key, err)
		return
	}
	if err := c.store.SetValueWithExpiry(ctx, key, payload, c.opts.TTL); err != nil {
		c.fail(k.Namespace, "write", key, err)
	}
}

// Invalidate 删除某个 Scope 下的全部缓存条目。
func (c *ListCache[T]) Invalidate(ctx context.Context, namespace, scope string) {
	if c == nil || c.store == nil {
		return
	}
	prefix := c.opts.Keyspace.ScopePrefix(namespace, scope)
	if err := c.store.DeletePrefix(ctx, prefix); err != nil {
		c.fail(namespace, "invalidate", prefix, err)
	}
}

// Wait 等待所有后台回填结束，用于优雅退出和测试。
func (c *ListCache[T]) Wait() {
	if c == nil {
		return
	}
	c.wg.Wait()
}

func (c *ListCache[T]) fail(namespace, op, key string, err error) {
	cacheErrorsTotal.WithLabelValues(namespace, op).Inc()
	if op == "read" || op == "decode" {
		cacheMissesTotal.WithLabelValues(namespace).Inc()
	}
	log.Warnw("列表缓存操作失败，已降级", "op", op, "key", key, "error", err)
}
