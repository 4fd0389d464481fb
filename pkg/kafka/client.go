// Package kafka 提供了与 Kafka 消息队列交互的功能。
package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"carbon-chat-go/internal/config"
	"carbon-chat-go/pkg/log"
	"carbon-chat-go/pkg/tasks"

	"github.com/go-redis/redis/v8"
	"github.com/segmentio/kafka-go"
)

// maxAttempts 单条消息处理失败达到该次数后提交 offset，不再重试。
const maxAttempts = 3

// EventProcessor 定义了处理足迹事件的接口，使消费者与具体的处理流程解耦。
type EventProcessor interface {
	Process(ctx context.Context, event tasks.FootprintEvent) error
}

// Publisher 负责将足迹事件写入 Kafka。
type Publisher struct {
	writer *kafka.Writer
}

// NewPublisher 初始化 Kafka 生产者。
func NewPublisher(cfg config.KafkaConfig) *Publisher {
	log.Info("Kafka 生产者初始化成功")
	return &Publisher{writer: &kafka.Writer{
		Addr:     kafka.TCP(cfg.Brokers),
		Topic:    cfg.Topic,
		Balancer: &kafka.Hash{},
	}}
}

// PublishFootprintEvent 发送一条足迹事件，以会话 ID 作为消息 key 保证同一会话内有序。
func (p *Publisher) PublishFootprintEvent(ctx context.Context, event tasks.FootprintEvent) error {
	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal footprint event: %w", err)
	}
	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.SessionID),
		Value: value,
	})
}

// Close 关闭生产者并刷新未发送的消息。
func (p *Publisher) Close() error {
	return p.writer.Close()
}

// messageReader 是消费者依赖的 kafka.Reader 子集。
type messageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
}

// Consumer 逐条处理足迹事件。失败的事件在原地重试，
// 直到成功或累计失败 maxAttempts 次后才提交 offset，因此不会被后续消息越过。
// 失败次数同时记在 Redis 中，进程重启后继续累计。
type Consumer struct {
	reader    messageReader
	rdb       *redis.Client
	processor EventProcessor
	backoff   time.Duration
}

// StartConsumer 启动 Kafka 消费者处理足迹事件，ctx 取消时退出。
func StartConsumer(ctx context.Context, cfg config.KafkaConfig, rdb *redis.Client, processor EventProcessor) {
	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  []string{cfg.Brokers},
		Topic:    cfg.Topic,
		GroupID:  cfg.GroupID,
		MinBytes: 1,
		MaxBytes: 10e6, // 10MB
	})
	defer func() {
		if err := r.Close(); err != nil {
			log.Errorf("关闭 Kafka 消费者失败: %v", err)
		}
	}()

	log.Infof("Kafka 消费者已启动，正在监听主题 '%s'", cfg.Topic)
	c := &Consumer{reader: r, rdb: rdb, processor: processor, backoff: 500 * time.Millisecond}
	c.Run(ctx)
}

// Run 循环拉取消息直到 ctx 取消。拉取失败只记录日志并等待后重试。
func (c *Consumer) Run(ctx context.Context) {
	for {
		m, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, context.Canceled) {
				log.Info("Kafka 消费者已停止")
				return
			}
			log.Errorf("从 Kafka 读取消息失败: %v", err)
			if !sleep(ctx, c.backoff) {
				log.Info("Kafka 消费者已停止")
				return
			}
			continue
		}
		c.handle(ctx, m)
	}
}

func (c *Consumer) handle(ctx context.Context, m kafka.Message) {
	var event tasks.FootprintEvent
	if err := json.Unmarshal(m.Value, &event); err != nil {
		log.Errorf("无法解析 Kafka 消息: %v, value: %s", err, string(m.Value))
		// 消息格式错误，直接提交，避免阻塞队列
		c.commit(ctx, m)
		return
	}

	attemptsKey := fmt.Sprintf("kafka:attempts:%s", event.EventID)
	for local := int64(1); ; local++ {
		err := c.processor.Process(ctx, event)
		if err == nil {
			_ = c.rdb.Del(ctx, attemptsKey).Err()
			c.commit(ctx, m)
			return
		}
		log.Errorf("处理足迹事件失败: EventID=%s, Error: %v", event.EventID, err)

		attempts, incErr := c.rdb.Incr(ctx, attemptsKey).Result()
		if incErr != nil || attempts < local {
			// Redis 不可用时按本地计数
			attempts = local
		} else {
			_ = c.rdb.Expire(ctx, attemptsKey, 24*time.Hour).Err()
		}
		if attempts >= maxAttempts {
			log.Errorf("足迹事件多次失败(>=%d)，提交 offset 终止重试: EventID=%s", maxAttempts, event.EventID)
			_ = c.rdb.Del(ctx, attemptsKey).Err()
			c.commit(ctx, m)
			return
		}
		if !sleep(ctx, c.backoff*time.Duration(attempts)) {
			// 未提交，重启后从该消息继续
			return
		}
	}
}

func (c *Consumer) commit(ctx context.Context, m kafka.Message) {
	if err := c.reader.CommitMessages(ctx, m); err != nil {
		log.Errorf("提交 Kafka 消息 offset 失败: %v", err)
	}
}

// sleep 等待 d，ctx 先结束时返回 false。
func sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
