// Package domain 包含桥接服务的领域模型
package domain

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// OrderSide 买卖方向
type OrderSide string

const (
	OrderSideBuy  OrderSide = "BUY"
	OrderSideSell OrderSide = "SELL"
)

// ParseOrderSide 解析买卖方向，大小写不敏感
func ParseOrderSide(s string) (OrderSide, error) {
	switch strings.ToUpper(s) {
	case string(OrderSideBuy):
		return OrderSideBuy, nil
	case string(OrderSideSell):
		return OrderSideSell, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidSide, s)
	}
}

// Opposite 返回相反方向，平仓时使用
func (s OrderSide) Opposite() OrderSide {
	if s == OrderSideBuy {
		return OrderSideSell
	}
	return OrderSideBuy
}

// FillMode 成交模式，决定交易所端如何处理部分成交
type FillMode string

const (
	// FillModeReturn 兼容性最广，优先尝试
	FillModeReturn FillMode = "RETURN"
	// FillModeIOC Immediate Or Cancel
	FillModeIOC FillMode = "IOC"
	// FillModeFOK Fill Or Kill
	FillModeFOK FillMode = "FOK"
)

// DefaultFillModes 返回固定优先级的成交模式尝试顺序
// RETURN 接受面最广，IOC 与 FOK 更严格、更容易被拒
func DefaultFillModes() []FillMode {
	return []FillMode{FillModeReturn, FillModeIOC, FillModeFOK}
}

// ParseFillMode 解析成交模式
func ParseFillMode(s string) (FillMode, error) {
	switch strings.ToUpper(s) {
	case string(FillModeReturn):
		return FillModeReturn, nil
	case string(FillModeIOC):
		return FillModeIOC, nil
	case string(FillModeFOK):
		return FillModeFOK, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidFillMode, s)
	}
}

// ParseFillModes 解析配置提供的成交模式顺序，空列表返回默认顺序
func ParseFillModes(values []string) ([]FillMode, error) {
	if len(values) == 0 {
		return DefaultFillModes(), nil
	}
	modes := make([]FillMode, 0, len(values))
	for _, v := range values {
		mode, err := ParseFillMode(v)
		if err != nil {
			return nil, err
		}
		modes = append(modes, mode)
	}
	return modes, nil
}

// TradeRequest 一次开仓请求
// 每次 API 调用构造一个，消费后即丢弃，不保留状态
type TradeRequest struct {
	// 交易品种
	Symbol string
	// 买卖方向
	Side OrderSide
	// 手数
	Volume decimal.Decimal
	// 止损价，零值表示未设置
	StopLoss decimal.Decimal
	// 止盈价，零值表示未设置
	TakeProfit decimal.Decimal
	// 订单备注
	Comment string
	// 策略标识（magic number）
	Magic int64
}

// Validate 校验前置条件，不满足时调用方不得触达交易终端
func (r *TradeRequest) Validate() error {
	if strings.TrimSpace(r.Symbol) == "" {
		return ErrSymbolRequired
	}
	if r.Side != OrderSideBuy && r.Side != OrderSideSell {
		return fmt.Errorf("%w: %q", ErrInvalidSide, r.Side)
	}
	if !r.Volume.IsPositive() {
		return fmt.Errorf("%w: %s", ErrInvalidVolume, r.Volume)
	}
	return nil
}

// TradeSubmission 单次提交，对应一种成交模式的一次尝试
type TradeSubmission struct {
	// 交易品种
	Symbol string
	// 买卖方向
	Side OrderSide
	// 手数
	Volume decimal.Decimal
	// 提交价格（BUY 用 ask，SELL 用 bid）
	Price decimal.Decimal
	// 允许的最大滑点（价格步长）
	Deviation int
	// 止损价
	StopLoss decimal.Decimal
	// 止盈价
	TakeProfit decimal.Decimal
	// 订单备注
	Comment string
	// 策略标识
	Magic int64
	// 成交模式
	FillMode FillMode
	// 平仓时引用的持仓单号，0 表示开新仓
	Position int64
}

// TradeResult 终端对单次提交的应答
type TradeResult struct {
	// 终端是否接受（retcode 为 done）
	Done bool
	// 终端返回码
	Retcode int
	// 订单号
	Order int64
	// 成交号
	Deal int64
	// 成交价格
	Price decimal.Decimal
	// 成交手数
	Volume decimal.Decimal
	// 终端附言
	Comment string
}

// OrderResult 回退循环的最终结果
type OrderResult struct {
	// 是否被接受
	Accepted bool
	// 订单号
	Order int64
	// 成交号
	Deal int64
	// 成交价格
	Price decimal.Decimal
	// 成交手数
	Volume decimal.Decimal
	// 成功时使用的成交模式
	FillModeUsed FillMode
	// 失败时最后一次被拒的诊断信息
	LastError string
}
