// Package main 是应用程序的入口点。
package main

import (
	"context"
	"flag"
	"fmt"
	"liveroom-go/internal/cache"
	"liveroom-go/internal/config"
	"liveroom-go/internal/handler"
	"liveroom-go/internal/middleware"
	"liveroom-go/internal/model"
	"liveroom-go/internal/realtime"
	"liveroom-go/internal/repository"
	"liveroom-go/internal/service"
	"liveroom-go/pkg/database"
	"liveroom-go/pkg/kafka"
	"liveroom-go/pkg/log"
	"liveroom-go/pkg/storage"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
)

func main() {
	configPath := flag.String("config", "./configs/config.yaml", "配置文件路径")
	flag.Parse()

	// 1. 初始化配置
	config.Init(*configPath)
	cfg := config.Conf

	// 2. 初始化日志记录器
	log.Init(cfg.Log.Level, cfg.Log.Format, cfg.Log.OutputPath)
	defer log.Sync()
	log.Info("日志记录器初始化成功")

	// 3. 初始化数据库与缓存存储
	database.InitMySQL(cfg.Database.MySQL)
	store := newCacheStore(cfg)
	keyspace := cache.Keyspace(cfg.Cache.KeyPrefix)
	cacheOpts := cache.Options{
		TTL:          cfg.Cache.TTL,
		AsyncWrite:   cfg.Cache.AsyncWrite,
		WriteTimeout: cfg.Cache.WriteTimeout,
		Keyspace:     keyspace,
	}
	messageCache := cache.NewListCache[model.PageResult[model.WsMessage]](store, cacheOpts)
	fileCache := cache.NewListCache[model.PageResult[model.FileRecord]](store, cacheOpts)

	// 4. 缓存失效策略
	bgCtx, cancelBg := context.WithCancel(context.Background())
	defer cancelBg()
	invalidator, publisher := newInvalidator(bgCtx, cfg, store, keyspace)

	// 5. 对象存储（可选）
	var signer service.URLSigner
	if cfg.MinIO.Enabled {
		s, err := storage.NewMinIO(bgCtx, cfg.MinIO)
		if err != nil {
			log.Fatal("初始化 MinIO 失败", err)
		}
		signer = s
	}

	// 6. 初始化 Repository、Service 与 Handler
	hub := realtime.NewHub()
	messageService := service.NewWsMessageService(
		repository.NewWsMessageRepository(database.DB),
		messageCache,
		invalidator,
		hub,
		cfg.Message.MaxLength,
	)
	fileService := service.NewFileRecordService(
		repository.NewFileRecordRepository(database.DB),
		fileCache,
		invalidator,
		signer,
		cfg.MinIO.PresignExpiry,
	)

	// 7. 设置 Gin 模式并创建路由引擎
	gin.SetMode(cfg.Server.Mode)
	r := gin.New()
	r.Use(middleware.RequestLogger("/metrics", "/healthz"), middleware.Metrics(), gin.Recovery())
	handler.RegisterRoutes(r,
		handler.NewWsMessageHandler(messageService),
		handler.NewFileRecordHandler(fileService),
		handler.NewLiveRoomHandler(hub),
	)

	// 启动 HTTP 服务器并实现优雅停机
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: r,
	}

	go func() {
		log.Infof("服务启动于 %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("HTTP 服务监听失败: %s\n", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("接收到停机信号，正在关闭服务...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Errorf("HTTP 服务器关闭失败: %v", err)
	}
	hub.Close()

	// 等待后台缓存回填结束，再停止 Kafka 消费者
	messageCache.Wait()
	fileCache.Wait()
	cancelBg()
	if publisher != nil {
		if err := publisher.Close(); err != nil {
			log.Errorf("关闭 Kafka 生产者失败: %v", err)
		}
	}
	if database.RDB != nil {
		_ = database.RDB.Close()
	}
	log.Info("服务已优雅关闭")
}

// newCacheStore 根据配置选择 Redis 或进程内 LRU 作为列表缓存存储。
func newCacheStore(cfg config.Config) cache.Store {
	switch cfg.Cache.Backend {
	case config.CacheBackendMemory:
		log.Infof("列表缓存使用进程内 LRU，容量 %d", cfg.Cache.MemorySize)
		return cache.NewMemoryStore(cfg.Cache.MemorySize, cfg.Cache.TTL)
	default:
		database.InitRedis(cfg.Database.Redis)
		return cache.NewRedisStore(database.RDB)
	}
}

// newInvalidator 根据 cache.invalidation 构造失效策略。kafka 策略同时启动本实例的消费者。
func newInvalidator(ctx context.Context, cfg config.Config, store cache.Store, keyspace cache.Keyspace) (cache.Invalidator, *kafka.Publisher) {
	switch cfg.Cache.Invalidation {
	case config.InvalidationDirect:
		log.Info("列表缓存失效策略: direct")
		return cache.NewStoreInvalidator(store, keyspace), nil
	case config.InvalidationKafka:
		log.Info("列表缓存失效策略: kafka")
		publisher := kafka.NewPublisher(cfg.Kafka)
		go kafka.StartConsumer(ctx, cfg.Kafka, cache.NewStoreInvalidator(store, keyspace))
		return publisher, publisher
	default:
		log.Infof("列表缓存失效策略: ttl (%s)", cfg.Cache.TTL)
		return cache.NopInvalidator(), nil
	}
}
