// Package terminal 通过本地终端网关的 HTTP API 实现 domain.Session
package terminal

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"
	"github.com/wyfcoding/mt5bridge/internal/bridge/domain"
	"github.com/wyfcoding/mt5bridge/pkg/logger"
)

// RetcodeDone 终端表示订单已完成的返回码
const RetcodeDone = 10009

// 挂单有效期固定为 GTC，与终端提交协议一致
const timeTypeGTC = "GTC"

// Config 终端网关客户端配置
type Config struct {
	// 网关地址
	GatewayAddr string
	// 请求超时
	RequestTimeout time.Duration
}

// Client 终端网关客户端，domain.Session 的 HTTP 实现
type Client struct {
	http *resty.Client
}

// NewClient 创建终端网关客户端
func NewClient(cfg Config) *Client {
	httpClient := resty.New().
		SetBaseURL(cfg.GatewayAddr).
		SetTimeout(cfg.RequestTimeout).
		SetHeader("Content-Type", "application/json")

	return &Client{http: httpClient}
}

// req 构造一次网关请求
// 网关应答可能缺失 Content-Type，强制按 JSON 解析，
// 否则 200 应答会被静默跳过反序列化，产生零值结果
func (c *Client) req(ctx context.Context) *resty.Request {
	return c.http.R().
		SetContext(ctx).
		ForceContentType("application/json")
}

// Login 实现 domain.Session.Login
func (c *Client) Login(ctx context.Context, login int64, password, server string) (*domain.Account, error) {
	var payload accountPayload
	var apiErr errorPayload

	resp, err := c.req(ctx).
		SetBody(loginRequest{Login: login, Password: password, Server: server}).
		SetResult(&payload).
		SetError(&apiErr).
		Post("/login")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrNotConnected, err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("login failed: %s", gatewayError(resp, &apiErr))
	}

	return toAccount(&payload), nil
}

// Account 实现 domain.Session.Account
func (c *Client) Account(ctx context.Context) (*domain.Account, error) {
	var payload accountPayload
	var apiErr errorPayload

	resp, err := c.req(ctx).
		SetResult(&payload).
		SetError(&apiErr).
		Get("/account")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrNotConnected, err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("failed to get account info: %s", gatewayError(resp, &apiErr))
	}

	return toAccount(&payload), nil
}

// Tick 实现 domain.Session.Tick
func (c *Client) Tick(ctx context.Context, symbol string) (*domain.Quote, error) {
	var payload tickPayload
	var apiErr errorPayload

	resp, err := c.req(ctx).
		SetQueryParam("symbol", symbol).
		SetResult(&payload).
		SetError(&apiErr).
		Get("/tick")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrNotConnected, err)
	}
	if resp.StatusCode() == http.StatusNotFound {
		return nil, fmt.Errorf("%w: %s", domain.ErrQuoteUnavailable, symbol)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("failed to get tick for %s: %s", symbol, gatewayError(resp, &apiErr))
	}

	return &domain.Quote{
		Symbol: payload.Symbol,
		Bid:    decimal.NewFromFloat(payload.Bid),
		Ask:    decimal.NewFromFloat(payload.Ask),
		Time:   time.Unix(payload.Time, 0),
		Volume: payload.Volume,
	}, nil
}

// SymbolInfo 实现 domain.Session.SymbolInfo
func (c *Client) SymbolInfo(ctx context.Context, symbol string) (*domain.SymbolInfo, error) {
	var payload symbolPayload
	var apiErr errorPayload

	resp, err := c.req(ctx).
		SetQueryParam("symbol", symbol).
		SetResult(&payload).
		SetError(&apiErr).
		Get("/symbol")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrNotConnected, err)
	}
	if resp.StatusCode() == http.StatusNotFound {
		return nil, fmt.Errorf("%w: %s", domain.ErrSymbolUnavailable, symbol)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("failed to get symbol %s: %s", symbol, gatewayError(resp, &apiErr))
	}

	return toSymbolInfo(&payload), nil
}

// Symbols 实现 domain.Session.Symbols
func (c *Client) Symbols(ctx context.Context) ([]*domain.SymbolInfo, error) {
	var payload symbolsPayload
	var apiErr errorPayload

	resp, err := c.req(ctx).
		SetResult(&payload).
		SetError(&apiErr).
		Get("/symbols")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrNotConnected, err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("failed to get symbols: %s", gatewayError(resp, &apiErr))
	}

	symbols := make([]*domain.SymbolInfo, 0, len(payload.Symbols))
	for i := range payload.Symbols {
		symbols = append(symbols, toSymbolInfo(&payload.Symbols[i]))
	}
	return symbols, nil
}

// Rates 实现 domain.Session.Rates
func (c *Client) Rates(ctx context.Context, symbol string, timeframe domain.Timeframe, count int) ([]*domain.Candle, error) {
	var payload ratesPayload
	var apiErr errorPayload

	resp, err := c.req(ctx).
		SetQueryParams(map[string]string{
			"symbol":    symbol,
			"timeframe": string(timeframe),
			"count":     fmt.Sprintf("%d", count),
		}).
		SetResult(&payload).
		SetError(&apiErr).
		Get("/rates")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrNotConnected, err)
	}
	if resp.StatusCode() == http.StatusNotFound {
		return nil, fmt.Errorf("%w: %s", domain.ErrSymbolUnavailable, symbol)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("failed to get rates for %s: %s", symbol, gatewayError(resp, &apiErr))
	}

	candles := make([]*domain.Candle, 0, len(payload.Rates))
	for _, r := range payload.Rates {
		candles = append(candles, &domain.Candle{
			Time:       time.Unix(r.Time, 0),
			Open:       decimal.NewFromFloat(r.Open),
			High:       decimal.NewFromFloat(r.High),
			Low:        decimal.NewFromFloat(r.Low),
			Close:      decimal.NewFromFloat(r.Close),
			TickVolume: r.TickVolume,
		})
	}
	return candles, nil
}

// Send 实现 domain.Session.Send
// 网关以 204 表示终端未产生应答，此时返回 (nil, nil)，由执行器按拒绝处理
func (c *Client) Send(ctx context.Context, submission *domain.TradeSubmission) (*domain.TradeResult, error) {
	var payload orderResultPayload
	var apiErr errorPayload

	body := orderRequest{
		Symbol:    submission.Symbol,
		Type:      string(submission.Side),
		Volume:    submission.Volume.InexactFloat64(),
		Price:     submission.Price.InexactFloat64(),
		Deviation: submission.Deviation,
		Comment:   submission.Comment,
		Magic:     submission.Magic,
		TimeType:  timeTypeGTC,
		Filling:   string(submission.FillMode),
		Position:  submission.Position,
	}
	if submission.StopLoss.IsPositive() {
		body.StopLoss = submission.StopLoss.InexactFloat64()
	}
	if submission.TakeProfit.IsPositive() {
		body.TakeProfit = submission.TakeProfit.InexactFloat64()
	}

	resp, err := c.req(ctx).
		SetBody(body).
		SetResult(&payload).
		SetError(&apiErr).
		Post("/order")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrNotConnected, err)
	}
	if resp.StatusCode() == http.StatusNoContent {
		return nil, nil
	}
	if resp.IsError() {
		return nil, fmt.Errorf("order send failed: %s", gatewayError(resp, &apiErr))
	}

	return &domain.TradeResult{
		Done:    payload.Retcode == RetcodeDone,
		Retcode: payload.Retcode,
		Order:   payload.Order,
		Deal:    payload.Deal,
		Price:   decimal.NewFromFloat(payload.Price),
		Volume:  decimal.NewFromFloat(payload.Volume),
		Comment: payload.Comment,
	}, nil
}

// Positions 实现 domain.Session.Positions
func (c *Client) Positions(ctx context.Context) ([]*domain.Position, error) {
	var payload positionsPayload
	var apiErr errorPayload

	resp, err := c.req(ctx).
		SetResult(&payload).
		SetError(&apiErr).
		Get("/positions")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrNotConnected, err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("failed to get positions: %s", gatewayError(resp, &apiErr))
	}

	positions := make([]*domain.Position, 0, len(payload.Positions))
	for i := range payload.Positions {
		positions = append(positions, toPosition(&payload.Positions[i]))
	}
	return positions, nil
}

// Position 实现 domain.Session.Position
func (c *Client) Position(ctx context.Context, ticket int64) (*domain.Position, error) {
	var payload positionPayload
	var apiErr errorPayload

	resp, err := c.req(ctx).
		SetQueryParam("ticket", fmt.Sprintf("%d", ticket)).
		SetResult(&payload).
		SetError(&apiErr).
		Get("/position")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrNotConnected, err)
	}
	if resp.StatusCode() == http.StatusNotFound {
		return nil, fmt.Errorf("%w: ticket %d", domain.ErrPositionNotFound, ticket)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("failed to get position %d: %s", ticket, gatewayError(resp, &apiErr))
	}

	return toPosition(&payload), nil
}

// Connected 实现 domain.Session.Connected
func (c *Client) Connected(ctx context.Context) bool {
	resp, err := c.http.R().SetContext(ctx).Get("/ping")
	if err != nil {
		return false
	}
	return resp.IsSuccess()
}

// Shutdown 实现 domain.Session.Shutdown
func (c *Client) Shutdown(ctx context.Context) error {
	resp, err := c.http.R().SetContext(ctx).Post("/shutdown")
	if err != nil {
		// 网关已不可达视为已关闭
		logger.Warn(ctx, "Terminal gateway unreachable during shutdown", "error", err)
		return nil
	}
	if resp.IsError() {
		return fmt.Errorf("terminal shutdown failed: status %d", resp.StatusCode())
	}
	return nil
}

// gatewayError 提取网关错误信息，载荷为空时回落到状态码
func gatewayError(resp *resty.Response, apiErr *errorPayload) string {
	if apiErr != nil && apiErr.Error != "" {
		return apiErr.Error
	}
	return fmt.Sprintf("status %d", resp.StatusCode())
}

func toAccount(p *accountPayload) *domain.Account {
	return &domain.Account{
		Login:        p.Login,
		Server:       p.Server,
		Currency:     p.Currency,
		Balance:      decimal.NewFromFloat(p.Balance),
		Equity:       decimal.NewFromFloat(p.Equity),
		Margin:       decimal.NewFromFloat(p.Margin),
		MarginFree:   decimal.NewFromFloat(p.MarginFree),
		MarginLevel:  decimal.NewFromFloat(p.MarginLevel),
		Leverage:     p.Leverage,
		TradeAllowed: p.TradeAllowed,
	}
}

func toSymbolInfo(p *symbolPayload) *domain.SymbolInfo {
	return &domain.SymbolInfo{
		Name:        p.Name,
		Description: p.Description,
		Visible:     p.Visible,
		Tradable:    p.Tradable,
		Bid:         decimal.NewFromFloat(p.Bid),
		Ask:         decimal.NewFromFloat(p.Ask),
		Spread:      p.Spread,
		Digits:      p.Digits,
		Point:       decimal.NewFromFloat(p.Point),
		VolumeMin:   decimal.NewFromFloat(p.VolumeMin),
		VolumeMax:   decimal.NewFromFloat(p.VolumeMax),
		VolumeStep:  decimal.NewFromFloat(p.VolumeStep),
	}
}

func toPosition(p *positionPayload) *domain.Position {
	side := domain.OrderSideBuy
	if p.Type == string(domain.OrderSideSell) {
		side = domain.OrderSideSell
	}
	return &domain.Position{
		Ticket:       p.Ticket,
		Symbol:       p.Symbol,
		Side:         side,
		Volume:       decimal.NewFromFloat(p.Volume),
		PriceOpen:    decimal.NewFromFloat(p.PriceOpen),
		PriceCurrent: decimal.NewFromFloat(p.PriceCurrent),
		Profit:       decimal.NewFromFloat(p.Profit),
		Swap:         decimal.NewFromFloat(p.Swap),
		Comment:      p.Comment,
		Time:         time.Unix(p.Time, 0),
	}
}
