package cache

import (
	"context"
	"liveroom-go/pkg/log"
)

// Invalidator 在写操作成功后通知缓存某个 Scope 已变化。
// 实现必须吞掉自身的错误，写操作的结果不受缓存失效是否成功影响。
type Invalidator interface {
	Invalidate(ctx context.Context, namespace, scope string)
	// Active 为 false 时表示完全依赖 TTL 过期
	Active() bool
}

type nopInvalidator struct{}

// NopInvalidator 返回不做任何事情的 Invalidator，对应纯 TTL 策略。
func NopInvalidator() Invalidator { return nopInvalidator{} }

func (nopInvalidator) Invalidate(context.Context, string, string) {}
func (nopInvalidator) Active() bool                               { return false }

// StoreInvalidator 直接删除 Store 中对应 Scope 前缀的键。
type StoreInvalidator struct {
	store    Store
	keyspace Keyspace
}

// NewStoreInvalidator 创建 StoreInvalidator。
func NewStoreInvalidator(store Store, keyspace Keyspace) *StoreInvalidator {
	return &StoreInvalidator{store: store, keyspace: keyspace}
}

func (i *StoreInvalidator) Invalidate(ctx context.Context, namespace, scope string) {
	prefix := i.keyspace.ScopePrefix(namespace, scope)
	if err := i.store.DeletePrefix(ctx, prefix); err != nil {
		cacheErrorsTotal.WithLabelValues(namespace, "invalidate").Inc()
		log.Warnw("列表缓存失效失败", "prefix", prefix, "error", err)
		return
	}
	log.Debugw("列表缓存已失效", "prefix", prefix)
}

func (i *StoreInvalidator) Active() bool { return true }
