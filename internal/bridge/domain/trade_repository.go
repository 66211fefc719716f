package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// TradeRecord 一次执行的审计记录
// 记录回退循环的最终结果，便于对账与排查
type TradeRecord struct {
	// 记录 ID
	RecordID string
	// 交易品种
	Symbol string
	// 买卖方向
	Side OrderSide
	// 请求手数
	Volume decimal.Decimal
	// 提交价格
	Price decimal.Decimal
	// 最终使用的成交模式（被拒时为最后尝试的模式）
	FillMode FillMode
	// 是否被接受
	Accepted bool
	// 订单号
	Order int64
	// 成交号
	Deal int64
	// 平仓引用的持仓单号，0 表示开仓
	Position int64
	// 尝试次数
	Attempts int
	// 诊断信息
	Diagnostic string
	// 执行时间
	ExecutedAt time.Time
}

// TradeRepository 执行审计记录仓储接口
type TradeRepository interface {
	// 保存记录
	Save(ctx context.Context, record *TradeRecord) error
	// 按品种查询记录
	ListBySymbol(ctx context.Context, symbol string, limit, offset int) ([]*TradeRecord, int64, error)
}
