// Package messaging 提供执行事件的 Kafka 发布实现
package messaging

import (
	"context"
	"fmt"

	"github.com/wyfcoding/mt5bridge/internal/bridge/domain"
	"github.com/wyfcoding/mt5bridge/pkg/logger"
	"github.com/wyfcoding/mt5bridge/pkg/mq"
)

// KafkaEventPublisher 基于 Kafka 的事件发布者
type KafkaEventPublisher struct {
	producer *mq.KafkaProducer
	topic    string
}

// NewKafkaEventPublisher 创建 Kafka 事件发布者
func NewKafkaEventPublisher(producer *mq.KafkaProducer, topic string) *KafkaEventPublisher {
	return &KafkaEventPublisher{
		producer: producer,
		topic:    topic,
	}
}

// PublishTradeExecuted 实现 domain.EventPublisher.PublishTradeExecuted
func (p *KafkaEventPublisher) PublishTradeExecuted(ctx context.Context, event *domain.TradeExecutedEvent) error {
	if err := p.producer.SendMessage(ctx, p.topic, event.Symbol, event); err != nil {
		return fmt.Errorf("failed to publish trade executed event: %w", err)
	}
	logger.Debug(ctx, "Trade executed event published",
		"event_id", event.EventID,
		"symbol", event.Symbol,
		"order", event.Order,
	)
	return nil
}

// PublishPositionClosed 实现 domain.EventPublisher.PublishPositionClosed
func (p *KafkaEventPublisher) PublishPositionClosed(ctx context.Context, event *domain.PositionClosedEvent) error {
	if err := p.producer.SendMessage(ctx, p.topic, event.Symbol, event); err != nil {
		return fmt.Errorf("failed to publish position closed event: %w", err)
	}
	logger.Debug(ctx, "Position closed event published",
		"event_id", event.EventID,
		"ticket", event.Ticket,
	)
	return nil
}

// NoopEventPublisher 事件发布者的空实现，Kafka 未配置时降级使用
type NoopEventPublisher struct{}

// NewNoopEventPublisher 创建空事件发布者
func NewNoopEventPublisher() NoopEventPublisher {
	return NoopEventPublisher{}
}

// PublishTradeExecuted 实现 domain.EventPublisher.PublishTradeExecuted
func (NoopEventPublisher) PublishTradeExecuted(ctx context.Context, event *domain.TradeExecutedEvent) error {
	return nil
}

// PublishPositionClosed 实现 domain.EventPublisher.PublishPositionClosed
func (NoopEventPublisher) PublishPositionClosed(ctx context.Context, event *domain.PositionClosedEvent) error {
	return nil
}
