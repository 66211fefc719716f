package mysql

import "gorm.io/gorm"

// TradeRecordModel 执行审计记录数据库模型，直接映射 trade_records 表
type TradeRecordModel struct {
	gorm.Model
	RecordID   string `gorm:"column:record_id;type:varchar(36);uniqueIndex;not null;comment:记录唯一标识"`
	Symbol     string `gorm:"column:symbol;type:varchar(20);index;not null;comment:交易品种"`
	Side       string `gorm:"column:side;type:varchar(10);not null;comment:买卖方向(BUY/SELL)"`
	Volume     string `gorm:"column:volume;type:decimal(32,18);not null;comment:请求手数"`
	Price      string `gorm:"column:price;type:decimal(32,18);not null;comment:提交价格"`
	FillMode   string `gorm:"column:fill_mode;type:varchar(10);not null;comment:最终成交模式"`
	Accepted   bool   `gorm:"column:accepted;not null;comment:终端是否接受"`
	OrderRef   int64  `gorm:"column:order_ref;comment:终端订单号"`
	DealRef    int64  `gorm:"column:deal_ref;comment:终端成交号"`
	Position   int64  `gorm:"column:position;index;comment:平仓引用持仓单号"`
	Attempts   int    `gorm:"column:attempts;not null;comment:提交尝试次数"`
	Diagnostic string `gorm:"column:diagnostic;type:varchar(255);comment:诊断信息"`
	ExecutedAt int64  `gorm:"column:executed_at;index;not null;comment:执行时间(unix)"`
}

// TableName 指定表名
func (TradeRecordModel) TableName() string {
	return "trade_records"
}
