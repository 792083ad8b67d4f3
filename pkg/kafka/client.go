// Package kafka 通过 Kafka 在多个实例之间广播列表缓存失效事件。
package kafka

import (
	"context"
	"errors"
	"fmt"
	"liveroom-go/internal/config"
	"liveroom-go/pkg/log"
	"os"
	"time"

	"github.com/bytedance/sonic"
	"github.com/segmentio/kafka-go"
)

const (
	publishTimeout = 2 * time.Second
	batchTimeout   = 5 * time.Millisecond // 失效事件是单条写入，不等待攒批
)

// InvalidationEvent 表示某个缓存 Scope 下的数据已经变化。
type InvalidationEvent struct {
	Namespace string `json:"namespace"`
	Scope     string `json:"scope"`
	// At 事件产生时间，unix 毫秒
	At int64 `json:"at"`
}

// ScopeInvalidator 在本实例内删除某个 Scope 的缓存，cache.StoreInvalidator 满足该接口。
type ScopeInvalidator interface {
	Invalidate(ctx context.Context, namespace, scope string)
}

// Publisher 把失效事件写入 Kafka，实现 cache.Invalidator。
type Publisher struct {
	writer *kafka.Writer
}

// NewPublisher 初始化 Kafka 生产者。
func NewPublisher(cfg config.KafkaConfig) *Publisher {
	w := &kafka.Writer{
		Addr:                   kafka.TCP(cfg.BrokerList()...),
		Topic:                  cfg.Topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireOne,
		BatchSize:              1,
		BatchTimeout:           batchTimeout,
		AllowAutoTopicCreation: true,
	}
	log.Info("Kafka 生产者初始化成功")
	return &Publisher{writer: w}
}

func encodeEvent(namespace, scope string, at time.Time) (kafka.Message, error) {
	payload, err := sonic.Marshal(InvalidationEvent{Namespace: namespace, Scope: scope, At: at.UnixMilli()})
	if err != nil {
		return kafka.Message{}, err
	}
	// 同一个 Scope 的事件落在同一分区，保持顺序
	return kafka.Message{Key: []byte(namespace + ":" + scope), Value: payload}, nil
}

// Invalidate 发布失效事件。发布失败只记录日志，写操作本身已经成功。
func (p *Publisher) Invalidate(ctx context.Context, namespace, scope string) {
	msg, err := encodeEvent(namespace, scope, time.Now())
	if err != nil {
		log.Warnw("编码缓存失效事件失败", "namespace", namespace, "scope", scope, "error", err)
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		log.Warnw("发布缓存失效事件失败", "namespace", namespace, "scope", scope, "error", err)
	}
}

func (p *Publisher) Active() bool { return true }

// Close 关闭生产者。
func (p *Publisher) Close() error {
	return p.writer.Close()
}

// handleMessage 解析一条失效事件并在本实例执行删除。
func handleMessage(ctx context.Context, value []byte, target ScopeInvalidator) error {
	var ev InvalidationEvent
	if err := sonic.Unmarshal(value, &ev); err != nil {
		return fmt.Errorf("无法解析 Kafka 消息: %w", err)
	}
	if ev.Namespace == "" || ev.Scope == "" {
		return fmt.Errorf("缓存失效事件缺少 namespace 或 scope: %s", string(value))
	}
	target.Invalidate(ctx, ev.Namespace, ev.Scope)
	return nil
}

// instanceGroupID 每个实例使用独立的消费组，保证每个实例都能收到全部事件。
// 优先使用配置的 instance_id，否则退回主机名；两者在重启后保持不变，不会在 broker 上遗留消费组。
func instanceGroupID(cfg config.KafkaConfig) string {
	id := cfg.InstanceID
	if id == "" {
		host, err := os.Hostname()
		if err != nil || host == "" {
			host = "unknown"
		}
		id = host
	}
	return fmt.Sprintf("%s-%s", cfg.GroupID, id)
}

// StartConsumer 启动一个 Kafka 消费者处理缓存失效事件，ctx 取消后返回。
func StartConsumer(ctx context.Context, cfg config.KafkaConfig, target ScopeInvalidator) {
	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers:     cfg.BrokerList(),
		Topic:       cfg.Topic,
		GroupID:     instanceGroupID(cfg),
		StartOffset: kafka.LastOffset,
		MinBytes:    1,
		MaxBytes:    10e6, // 10MB
		MaxWait:     500 * time.Millisecond,
	})
	defer func() {
		if err := r.Close(); err != nil {
			log.Errorf("关闭 Kafka 消费者失败: %v", err)
		}
	}()

	log.Infof("Kafka 消费者已启动，正在监听主题 '%s'", cfg.Topic)

	for {
		m, err := r.FetchMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				log.Info("Kafka 消费者已停止")
				return
			}
			log.Error("从 Kafka 读取消息失败", err)
			select {
			case <-ctx.Done():
				return
			case <-time.After(time.Second):
			}
			continue
		}

		if err := handleMessage(ctx, m.Value, target); err != nil {
			// 消息格式错误，直接提交，避免阻塞队列
			log.Errorf("%v, offset %d", err, m.Offset)
		}
		if err := r.CommitMessages(ctx, m); err != nil {
			log.Errorf("提交 Kafka 消息 offset 失败: %v", err)
		}
	}
}
