package application

import (
	"time"

	"github.com/wyfcoding/mt5bridge/internal/bridge/domain"
)

// ExecutionResponse 下单/平仓的响应
// 字段形状与 Web 前端约定保持一致
type ExecutionResponse struct {
	Success         bool    `json:"success"`
	Order           int64   `json:"order,omitempty"`
	Deal            int64   `json:"deal,omitempty"`
	Price           float64 `json:"price,omitempty"`
	Volume          float64 `json:"volume,omitempty"`
	FillingModeUsed string  `json:"filling_mode_used,omitempty"`
	Error           string  `json:"error,omitempty"`
}

// NewExecutionResponse 从领域结果构造响应
func NewExecutionResponse(result *domain.OrderResult) *ExecutionResponse {
	resp := &ExecutionResponse{
		Success: result.Accepted,
	}
	if result.Accepted {
		resp.Order = result.Order
		resp.Deal = result.Deal
		resp.Price = result.Price.InexactFloat64()
		resp.Volume = result.Volume.InexactFloat64()
		resp.FillingModeUsed = string(result.FillModeUsed)
	} else {
		resp.Error = result.LastError
	}
	return resp
}

// QuoteDTO 报价
type QuoteDTO struct {
	Bid    float64 `json:"bid,omitempty"`
	Ask    float64 `json:"ask,omitempty"`
	Spread float64 `json:"spread,omitempty"`
	Time   string  `json:"time,omitempty"`
	Volume int64   `json:"volume,omitempty"`
	Error  string  `json:"error,omitempty"`
}

// NewQuoteDTO 从领域报价构造 DTO
func NewQuoteDTO(quote *domain.Quote) *QuoteDTO {
	return &QuoteDTO{
		Bid:    quote.Bid.InexactFloat64(),
		Ask:    quote.Ask.InexactFloat64(),
		Spread: quote.Spread().InexactFloat64(),
		Time:   quote.Time.Format(time.RFC3339),
		Volume: quote.Volume,
	}
}

// CandleDTO 单根 K 线
type CandleDTO struct {
	Time       int64   `json:"time"`
	Open       float64 `json:"open"`
	High       float64 `json:"high"`
	Low        float64 `json:"low"`
	Close      float64 `json:"close"`
	TickVolume int64   `json:"tick_volume"`
}

// RatesDTO K 线序列
type RatesDTO struct {
	Symbol    string      `json:"symbol"`
	Timeframe string      `json:"timeframe"`
	Rates     []*CandleDTO `json:"rates"`
}

// PositionDTO 持仓
type PositionDTO struct {
	Ticket       int64   `json:"ticket"`
	Symbol       string  `json:"symbol"`
	Type         string  `json:"type"`
	Volume       float64 `json:"volume"`
	PriceOpen    float64 `json:"price_open"`
	PriceCurrent float64 `json:"price_current"`
	Profit       float64 `json:"profit"`
	Swap         float64 `json:"swap"`
	Comment      string  `json:"comment"`
	Time         string  `json:"time"`
}

// NewPositionDTO 从领域持仓构造 DTO
func NewPositionDTO(pos *domain.Position) *PositionDTO {
	return &PositionDTO{
		Ticket:       pos.Ticket,
		Symbol:       pos.Symbol,
		Type:         string(pos.Side),
		Volume:       pos.Volume.InexactFloat64(),
		PriceOpen:    pos.PriceOpen.InexactFloat64(),
		PriceCurrent: pos.PriceCurrent.InexactFloat64(),
		Profit:       pos.Profit.InexactFloat64(),
		Swap:         pos.Swap.InexactFloat64(),
		Comment:      pos.Comment,
		Time:         pos.Time.Format(time.RFC3339),
	}
}

// AccountDTO 账户信息
type AccountDTO struct {
	Login        int64   `json:"login"`
	Server       string  `json:"server"`
	Currency     string  `json:"currency"`
	Balance      float64 `json:"balance"`
	Equity       float64 `json:"equity"`
	Margin       float64 `json:"margin"`
	MarginFree   float64 `json:"free_margin"`
	MarginLevel  float64 `json:"margin_level"`
	Leverage     int     `json:"leverage"`
	TradeAllowed bool    `json:"trade_allowed"`
}

// NewAccountDTO 从领域账户构造 DTO
func NewAccountDTO(account *domain.Account) *AccountDTO {
	return &AccountDTO{
		Login:        account.Login,
		Server:       account.Server,
		Currency:     account.Currency,
		Balance:      account.Balance.InexactFloat64(),
		Equity:       account.Equity.InexactFloat64(),
		Margin:       account.Margin.InexactFloat64(),
		MarginFree:   account.MarginFree.InexactFloat64(),
		MarginLevel:  account.MarginLevel.InexactFloat64(),
		Leverage:     account.Leverage,
		TradeAllowed: account.TradeAllowed,
	}
}

// StatusDTO 终端连接状态
type StatusDTO struct {
	Connected    bool    `json:"connected"`
	TradeAllowed bool    `json:"trade_allowed"`
	Server       string  `json:"server,omitempty"`
	Login        int64   `json:"login,omitempty"`
	Balance      float64 `json:"balance,omitempty"`
	Equity       float64 `json:"equity,omitempty"`
	Error        string  `json:"error,omitempty"`
}

// SymbolDTO 品种信息
type SymbolDTO struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Tradable    bool    `json:"tradable"`
	Bid         float64 `json:"bid"`
	Ask         float64 `json:"ask"`
	Spread      int     `json:"spread"`
	Digits      int     `json:"digits"`
	Point       float64 `json:"point,omitempty"`
	VolumeMin   float64 `json:"volume_min,omitempty"`
	VolumeMax   float64 `json:"volume_max,omitempty"`
	VolumeStep  float64 `json:"volume_step,omitempty"`
}

// NewSymbolDTO 从领域品种信息构造 DTO
func NewSymbolDTO(info *domain.SymbolInfo) *SymbolDTO {
	return &SymbolDTO{
		Name:        info.Name,
		Description: info.Description,
		Tradable:    info.Tradable,
		Bid:         info.Bid.InexactFloat64(),
		Ask:         info.Ask.InexactFloat64(),
		Spread:      info.Spread,
		Digits:      info.Digits,
		Point:       info.Point.InexactFloat64(),
		VolumeMin:   info.VolumeMin.InexactFloat64(),
		VolumeMax:   info.VolumeMax.InexactFloat64(),
		VolumeStep:  info.VolumeStep.InexactFloat64(),
	}
}
