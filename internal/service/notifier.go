package service

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/metronlab/metron/internal/pkg/config"
	"github.com/segmentio/kafka-go"
)

// CompletionMessage 批次完成通知
type CompletionMessage struct {
	Day         string    `json:"day"`
	UsersTotal  int       `json:"users_total"`
	UsersFailed int       `json:"users_failed"`
	FinishedAt  time.Time `json:"finished_at"`
}

// Notifier 向 Kafka 发布批次完成事件，下游报表/告警消费。
// 发布是尽力而为：broker 不可达只记日志，不影响分析结果落库。
type Notifier struct {
	writer *kafka.Writer
}

// NewNotifier 创建通知器；未启用时返回空实现
func NewNotifier(cfg config.KafkaConfig) *Notifier {
	if !cfg.Enabled || len(cfg.Brokers) == 0 {
		return &Notifier{}
	}
	return &Notifier{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(cfg.Brokers...),
			Topic:        cfg.Topic,
			Balancer:     &kafka.LeastBytes{},
			RequiredAcks: kafka.RequireOne,
			BatchTimeout: 100 * time.Millisecond,
		},
	}
}

// AnalysisCompleted 发布一条批次完成消息，按日期分区
func (n *Notifier) AnalysisCompleted(ctx context.Context, msg CompletionMessage) {
	if n == nil || n.writer == nil {
		return
	}
	payload, err := json.Marshal(msg)
	if err != nil {
		slog.Error("序列化完成通知失败", "error", err)
		return
	}
	err = n.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(msg.Day),
		Value: payload,
	})
	if err != nil {
		slog.Error("发布完成通知失败", "day", msg.Day, "error", err)
		return
	}
	slog.Info("完成通知已发布", "day", msg.Day, "topic", n.writer.Topic)
}

// Close 关闭底层连接
func (n *Notifier) Close() error {
	if n == nil || n.writer == nil {
		return nil
	}
	return n.writer.Close()
}
