package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Quote 实时报价
type Quote struct {
	// 交易品种
	Symbol string
	// 买价
	Bid decimal.Decimal
	// 卖价
	Ask decimal.Decimal
	// 报价时间
	Time time.Time
	// tick 成交量
	Volume int64
}

// Spread 买卖价差
func (q *Quote) Spread() decimal.Decimal {
	return q.Ask.Sub(q.Bid)
}

// PriceFor 返回指定方向的提交价格：BUY 用 ask，SELL 用 bid
func (q *Quote) PriceFor(side OrderSide) decimal.Decimal {
	if side == OrderSideBuy {
		return q.Ask
	}
	return q.Bid
}

// Timeframe K 线时间周期
type Timeframe string

const (
	TimeframeM1  Timeframe = "1m"
	TimeframeM5  Timeframe = "5m"
	TimeframeM15 Timeframe = "15m"
	TimeframeM30 Timeframe = "30m"
	TimeframeH1  Timeframe = "1h"
	TimeframeH4  Timeframe = "4h"
	TimeframeD1  Timeframe = "1d"
)

// ParseTimeframe 解析时间周期，空串回落到 5m
func ParseTimeframe(s string) (Timeframe, error) {
	if s == "" {
		return TimeframeM5, nil
	}
	switch Timeframe(s) {
	case TimeframeM1, TimeframeM5, TimeframeM15, TimeframeM30, TimeframeH1, TimeframeH4, TimeframeD1:
		return Timeframe(s), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidTimeframe, s)
	}
}

// Candle 单根 K 线
type Candle struct {
	// 开盘时间
	Time time.Time
	// 开盘价
	Open decimal.Decimal
	// 最高价
	High decimal.Decimal
	// 最低价
	Low decimal.Decimal
	// 收盘价
	Close decimal.Decimal
	// tick 成交量
	TickVolume int64
}

// SymbolInfo 品种元数据
type SymbolInfo struct {
	// 品种名称
	Name string
	// 描述
	Description string
	// 是否在行情列表中可见
	Visible bool
	// 是否可交易
	Tradable bool
	// 买价
	Bid decimal.Decimal
	// 卖价
	Ask decimal.Decimal
	// 点差（价格步长数）
	Spread int
	// 报价小数位
	Digits int
	// 最小价格步长
	Point decimal.Decimal
	// 最小手数
	VolumeMin decimal.Decimal
	// 最大手数
	VolumeMax decimal.Decimal
	// 手数步长
	VolumeStep decimal.Decimal
}
