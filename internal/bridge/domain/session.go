package domain

import "context"

// Session 终端会话
// 显式会话对象由调用方注入并管理生命周期，取代全局连接状态，
// 使多个模拟会话下的测试成为可能
type Session interface {
	// Login 使用凭据登录指定交易服务器
	Login(ctx context.Context, login int64, password, server string) (*Account, error)
	// Account 获取当前账户信息
	Account(ctx context.Context) (*Account, error)
	// Tick 获取品种当前报价
	Tick(ctx context.Context, symbol string) (*Quote, error)
	// SymbolInfo 获取品种元数据
	SymbolInfo(ctx context.Context, symbol string) (*SymbolInfo, error)
	// Symbols 获取全部品种
	Symbols(ctx context.Context) ([]*SymbolInfo, error)
	// Rates 获取历史 K 线
	Rates(ctx context.Context, symbol string, timeframe Timeframe, count int) ([]*Candle, error)
	// Send 同步提交一次交易请求
	// 终端未返回应答时返回 (nil, nil)，由调用方按拒绝处理
	Send(ctx context.Context, submission *TradeSubmission) (*TradeResult, error)
	// Positions 获取全部持仓
	Positions(ctx context.Context) ([]*Position, error)
	// Position 按单号获取持仓，不存在时返回 ErrPositionNotFound
	Position(ctx context.Context, ticket int64) (*Position, error)
	// Connected 会话是否可用
	Connected(ctx context.Context) bool
	// Shutdown 关闭会话
	Shutdown(ctx context.Context) error
}
