// Package config 负责加载和管理应用程序的配置。
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// 全局配置变量，存储从配置文件加载的所有设置。
var Conf Config

// Config 是整个应用程序的配置结构体，与 config.yaml 文件结构对应。
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Log      LogConfig      `mapstructure:"log"`
	Cache    CacheConfig    `mapstructure:"cache"`
	Message  MessageConfig  `mapstructure:"message"`
	Kafka    KafkaConfig    `mapstructure:"kafka"`
	MinIO    MinIOConfig    `mapstructure:"minio"`
}

// ServerConfig 存储服务器相关的配置。
type ServerConfig struct {
	Port string `mapstructure:"port"`
	Mode string `mapstructure:"mode"`
}

// DatabaseConfig 存储所有数据库连接的配置。
type DatabaseConfig struct {
	MySQL MySQLConfig `mapstructure:"mysql"`
	Redis RedisConfig `mapstructure:"redis"`
}

// MySQLConfig 存储 MySQL 数据库的配置。
type MySQLConfig struct {
	DSN             string        `mapstructure:"dsn"`
	AutoMigrate     bool          `mapstructure:"auto_migrate"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// RedisConfig 存储 Redis 的配置。
type RedisConfig struct {
	Addr        string        `mapstructure:"addr"`
	Password    string        `mapstructure:"password"`
	DB          int           `mapstructure:"db"`
	DialTimeout time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout time.Duration `mapstructure:"read_timeout"`
}

// LogConfig 存储日志相关的配置。
type LogConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	OutputPath string `mapstructure:"output_path"`
}

// 缓存后端
const (
	CacheBackendRedis  = "redis"
	CacheBackendMemory = "memory"
)

// 列表缓存的失效策略
const (
	InvalidationTTL    = "ttl"
	InvalidationDirect = "direct"
	InvalidationKafka  = "kafka"
)

// CacheConfig 存储列表缓存相关的配置。
type CacheConfig struct {
	// Backend 取值 redis 或 memory
	Backend string `mapstructure:"backend"`
	// TTL 列表缓存的存活时间，刻意保持在秒级
	TTL          time.Duration `mapstructure:"ttl"`
	AsyncWrite   bool          `mapstructure:"async_write"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	KeyPrefix    string        `mapstructure:"key_prefix"`
	MemorySize   int           `mapstructure:"memory_size"`
	// Invalidation 取值 ttl、direct 或 kafka
	Invalidation string `mapstructure:"invalidation"`
}

// MessageConfig 存储聊天消息相关的配置。
type MessageConfig struct {
	MaxLength int `mapstructure:"max_length"`
}

// KafkaConfig 存储 Kafka 相关的配置。
type KafkaConfig struct {
	Brokers    string `mapstructure:"brokers"`
	Topic      string `mapstructure:"topic"`
	GroupID    string `mapstructure:"group_id"`
	InstanceID string `mapstructure:"instance_id"` // 区分各实例的消费组，留空时使用主机名
}

// BrokerList 将逗号分隔的 broker 地址拆分为列表。
func (c KafkaConfig) BrokerList() []string {
	var brokers []string
	for _, b := range strings.Split(c.Brokers, ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}

// MinIOConfig 存储 MinIO 对象存储的配置。
type MinIOConfig struct {
	Enabled         bool          `mapstructure:"enabled"`
	Endpoint        string        `mapstructure:"endpoint"`
	AccessKeyID     string        `mapstructure:"access_key_id"`
	SecretAccessKey string        `mapstructure:"secret_access_key"`
	UseSSL          bool          `mapstructure:"use_ssl"`
	BucketName      string        `mapstructure:"bucket_name"`
	PresignExpiry   time.Duration `mapstructure:"presign_expiry"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "4300")
	v.SetDefault("server.mode", "release")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("database.mysql.auto_migrate", false)
	v.SetDefault("database.mysql.max_idle_conns", 10)
	v.SetDefault("database.mysql.max_open_conns", 100)
	v.SetDefault("database.mysql.conn_max_lifetime", time.Hour)
	v.SetDefault("database.redis.addr", "127.0.0.1:6379")
	v.SetDefault("database.redis.dial_timeout", time.Second)
	v.SetDefault("database.redis.read_timeout", 500*time.Millisecond)
	v.SetDefault("cache.backend", CacheBackendRedis)
	v.SetDefault("cache.ttl", 3*time.Second)
	v.SetDefault("cache.async_write", true)
	v.SetDefault("cache.write_timeout", time.Second)
	v.SetDefault("cache.key_prefix", "liveroom")
	v.SetDefault("cache.memory_size", 10000)
	v.SetDefault("cache.invalidation", InvalidationTTL)
	v.SetDefault("message.max_length", 200)
	v.SetDefault("kafka.topic", "liveroom-cache-invalidation")
	v.SetDefault("kafka.group_id", "liveroom-go")
	v.SetDefault("minio.presign_expiry", time.Hour)
}

// Load 从指定路径读取 YAML 配置，环境变量（LIVEROOM_ 前缀）可以覆盖文件中的值。
func Load(configPath string) (Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")
	v.SetEnvPrefix("LIVEROOM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.ReadInConfig(); err != nil {
		return cfg, fmt.Errorf("读取配置文件失败: %w", err)
	}
	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("无法将配置解析到结构体中: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	switch c.Cache.Backend {
	case CacheBackendRedis, CacheBackendMemory:
	default:
		return fmt.Errorf("不支持的缓存后端: %q", c.Cache.Backend)
	}
	switch c.Cache.Invalidation {
	case InvalidationTTL, InvalidationDirect, InvalidationKafka:
	default:
		return fmt.Errorf("不支持的缓存失效策略: %q", c.Cache.Invalidation)
	}
	if c.Cache.TTL <= 0 {
		return fmt.Errorf("cache.ttl 必须大于 0")
	}
	if c.Message.MaxLength <= 0 {
		return fmt.Errorf("message.max_length 必须大于 0")
	}
	if c.Cache.Invalidation == InvalidationKafka && len(c.Kafka.BrokerList()) == 0 {
		return fmt.Errorf("cache.invalidation=kafka 需要配置 kafka.brokers")
	}
	return nil
}

// Init 初始化配置加载，解析结果写入全局 Conf 变量，失败时直接 panic。
func Init(configPath string) {
	cfg, err := Load(configPath)
	if err != nil {
		panic(err)
	}
	Conf = cfg
}
