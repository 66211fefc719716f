package domain

import "errors"

// 前置条件与回退循环的错误定义
var (
	// ErrNotConnected 终端会话不可用，快速失败，不重试
	ErrNotConnected = errors.New("terminal not connected")
	// ErrSymbolRequired 缺少交易品种
	ErrSymbolRequired = errors.New("symbol is required")
	// ErrSymbolUnavailable 品种无法解析为可交易工具
	ErrSymbolUnavailable = errors.New("symbol unavailable")
	// ErrQuoteUnavailable 无法取得当前报价
	ErrQuoteUnavailable = errors.New("cannot get price for symbol")
	// ErrInvalidSide 非法买卖方向
	ErrInvalidSide = errors.New("invalid order side")
	// ErrInvalidVolume 手数必须为正
	ErrInvalidVolume = errors.New("volume must be positive")
	// ErrInvalidFillMode 非法成交模式
	ErrInvalidFillMode = errors.New("invalid filling mode")
	// ErrInvalidTimeframe 非法时间周期
	ErrInvalidTimeframe = errors.New("invalid timeframe")
	// ErrPositionNotFound 持仓不存在
	ErrPositionNotFound = errors.New("position not found")
	// ErrAllModesRejected 所有成交模式均被拒绝
	ErrAllModesRejected = errors.New("all filling modes rejected")
)
