package domain

import (
	"context"
	"time"
)

// TradeExecutedEvent 开仓成功事件
type TradeExecutedEvent struct {
	EventID      string    `json:"event_id"`
	Symbol       string    `json:"symbol"`
	Side         OrderSide `json:"side"`
	Volume       string    `json:"volume"`
	Price        string    `json:"price"`
	Order        int64     `json:"order"`
	Deal         int64     `json:"deal"`
	FillModeUsed FillMode  `json:"filling_mode_used"`
	ExecutedAt   time.Time `json:"executed_at"`
}

// PositionClosedEvent 平仓成功事件
type PositionClosedEvent struct {
	EventID      string    `json:"event_id"`
	Ticket       int64     `json:"ticket"`
	Symbol       string    `json:"symbol"`
	Volume       string    `json:"volume"`
	Price        string    `json:"price"`
	Deal         int64     `json:"deal"`
	FillModeUsed FillMode  `json:"filling_mode_used"`
	ClosedAt     time.Time `json:"closed_at"`
}

// EventPublisher 执行事件发布接口
type EventPublisher interface {
	// 发布开仓事件
	PublishTradeExecuted(ctx context.Context, event *TradeExecutedEvent) error
	// 发布平仓事件
	PublishPositionClosed(ctx context.Context, event *PositionClosedEvent) error
}
