package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Position 终端侧的一笔持仓
// 桥接服务不落地持仓状态，终端是唯一权威来源
type Position struct {
	// 持仓单号
	Ticket int64
	// 交易品种
	Symbol string
	// 持仓方向
	Side OrderSide
	// 手数
	Volume decimal.Decimal
	// 开仓价
	PriceOpen decimal.Decimal
	// 当前价
	PriceCurrent decimal.Decimal
	// 浮动盈亏
	Profit decimal.Decimal
	// 库存费
	Swap decimal.Decimal
	// 备注
	Comment string
	// 开仓时间
	Time time.Time
}

// Account 终端账户信息
type Account struct {
	// 账号
	Login int64
	// 交易服务器
	Server string
	// 账户货币
	Currency string
	// 余额
	Balance decimal.Decimal
	// 净值
	Equity decimal.Decimal
	// 已用保证金
	Margin decimal.Decimal
	// 可用保证金
	MarginFree decimal.Decimal
	// 保证金水平
	MarginLevel decimal.Decimal
	// 杠杆
	Leverage int
	// 是否允许交易
	TradeAllowed bool
}
