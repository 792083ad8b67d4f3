// Package database 初始化 MySQL 与 Redis 连接。
package database

import (
	"context"
	"liveroom-go/internal/config"
	"liveroom-go/pkg/log"

	"github.com/go-redis/redis/v8"
)

var RDB *redis.Client

// InitRedis 初始化 Redis 客户端连接。
// Redis 只承载列表缓存，启动时连不上只记录警告，请求会直接查询数据库。
func InitRedis(cfg config.RedisConfig) {
	RDB = redis.NewClient(&redis.Options{
		Addr:        cfg.Addr,
		Password:    cfg.Password,
		DB:          cfg.DB,
		DialTimeout: cfg.DialTimeout,
		ReadTimeout: cfg.ReadTimeout,
	})

	ctx, cancel := context.WithTimeout(context.Background(), cfg.DialTimeout+cfg.ReadTimeout)
	defer cancel()
	if err := RDB.Ping(ctx).Err(); err != nil {
		log.Warnw("failed to connect to redis, list cache degraded", "addr", cfg.Addr, "error", err)
		return
	}

	log.Info("Redis client connected successfully")
}
