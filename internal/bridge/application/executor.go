// Package application 包含桥接服务的应用服务
package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/wyfcoding/mt5bridge/internal/bridge/domain"
	"github.com/wyfcoding/mt5bridge/pkg/logger"
	"github.com/wyfcoding/mt5bridge/pkg/metrics"
)

// PlaceOrderCommand 下单命令
type PlaceOrderCommand struct {
	Symbol     string
	Side       string
	Volume     float64
	StopLoss   float64
	TakeProfit float64
	Comment    string
	Magic      int64
}

// ExecutorConfig 执行器配置
type ExecutorConfig struct {
	// 成交模式尝试顺序
	FillModes []domain.FillMode
	// 允许的最大滑点（价格步长）
	Deviation int
	// 默认策略标识
	Magic int64
	// 默认订单备注
	Comment string
}

// ExecutorService 订单执行服务
// 对单次交易请求按固定优先级依次尝试各成交模式，终端接受即停；
// 每次调用独立无共享可变状态，会话由调用方注入
type ExecutorService struct {
	session   domain.Session
	repo      domain.TradeRepository
	publisher domain.EventPublisher
	metrics   *metrics.Metrics
	cfg       ExecutorConfig
}

// NewExecutorService 创建订单执行服务
func NewExecutorService(session domain.Session, repo domain.TradeRepository, publisher domain.EventPublisher, m *metrics.Metrics, cfg ExecutorConfig) *ExecutorService {
	if len(cfg.FillModes) == 0 {
		cfg.FillModes = domain.DefaultFillModes()
	}
	return &ExecutorService{
		session:   session,
		repo:      repo,
		publisher: publisher,
		metrics:   m,
		cfg:       cfg,
	}
}

// PlaceOrder 下单
// 前置条件不满足时直接返回错误，不触达终端；
// 其余失败路径一律返回结构化的 ExecutionResponse
func (s *ExecutorService) PlaceOrder(ctx context.Context, cmd PlaceOrderCommand) (*ExecutionResponse, error) {
	side, err := domain.ParseOrderSide(cmd.Side)
	if err != nil {
		return nil, err
	}

	request := &domain.TradeRequest{
		Symbol:     cmd.Symbol,
		Side:       side,
		Volume:     decimal.NewFromFloat(cmd.Volume),
		StopLoss:   decimal.NewFromFloat(cmd.StopLoss),
		TakeProfit: decimal.NewFromFloat(cmd.TakeProfit),
		Comment:    cmd.Comment,
		Magic:      cmd.Magic,
	}
	if request.Comment == "" {
		request.Comment = s.cfg.Comment
	}
	if request.Magic == 0 {
		request.Magic = s.cfg.Magic
	}
	if err := request.Validate(); err != nil {
		return nil, err
	}

	if !s.session.Connected(ctx) {
		return nil, domain.ErrNotConnected
	}

	// 提交前取一次报价，循环内不再刷新
	quote, err := s.session.Tick(ctx, request.Symbol)
	if err != nil {
		return nil, err
	}
	price := quote.PriceFor(request.Side)

	start := time.Now()
	submission := &domain.TradeSubmission{
		Symbol:     request.Symbol,
		Side:       request.Side,
		Volume:     request.Volume,
		Price:      price,
		Deviation:  s.cfg.Deviation,
		StopLoss:   request.StopLoss,
		TakeProfit: request.TakeProfit,
		Comment:    request.Comment,
		Magic:      request.Magic,
	}

	result, attempts := s.submitWithFallback(ctx, submission)
	s.metrics.OrderDuration.Observe(time.Since(start).Seconds())

	if result.Accepted {
		s.metrics.OrdersAccepted.Inc()
		logger.Info(ctx, "Order executed",
			"symbol", request.Symbol,
			"side", request.Side,
			"order", result.Order,
			"deal", result.Deal,
			"filling_mode", result.FillModeUsed,
		)
		s.publishTradeExecuted(ctx, request, result)
	} else {
		s.metrics.OrdersRejected.Inc()
		logger.Error(ctx, "Order rejected by all filling modes",
			"symbol", request.Symbol,
			"side", request.Side,
			"last_error", result.LastError,
		)
	}

	s.saveRecord(ctx, request.Symbol, request.Side, request.Volume, price, 0, result, attempts)

	return NewExecutionResponse(result), nil
}

// ClosePosition 平仓
// 以持仓相反方向、对侧价格提交，复用同一回退循环
func (s *ExecutorService) ClosePosition(ctx context.Context, ticket int64) (*ExecutionResponse, error) {
	if !s.session.Connected(ctx) {
		return nil, domain.ErrNotConnected
	}

	position, err := s.session.Position(ctx, ticket)
	if err != nil {
		return nil, err
	}

	closeSide := position.Side.Opposite()
	quote, err := s.session.Tick(ctx, position.Symbol)
	if err != nil {
		return nil, err
	}
	price := quote.PriceFor(closeSide)

	start := time.Now()
	submission := &domain.TradeSubmission{
		Symbol:    position.Symbol,
		Side:      closeSide,
		Volume:    position.Volume,
		Price:     price,
		Deviation: s.cfg.Deviation,
		Comment:   s.cfg.Comment,
		Magic:     s.cfg.Magic,
		Position:  ticket,
	}

	result, attempts := s.submitWithFallback(ctx, submission)
	s.metrics.OrderDuration.Observe(time.Since(start).Seconds())

	if result.Accepted {
		s.metrics.PositionsClosed.Inc()
		logger.Info(ctx, "Position closed",
			"ticket", ticket,
			"symbol", position.Symbol,
			"deal", result.Deal,
			"filling_mode", result.FillModeUsed,
		)
		s.publishPositionClosed(ctx, position, result)
	} else {
		s.metrics.OrdersRejected.Inc()
		logger.Error(ctx, "Position close rejected by all filling modes",
			"ticket", ticket,
			"symbol", position.Symbol,
			"last_error", result.LastError,
		)
	}

	s.saveRecord(ctx, position.Symbol, closeSide, position.Volume, price, ticket, result, attempts)

	return NewExecutionResponse(result), nil
}

// submitWithFallback 按配置顺序逐一尝试成交模式，严格串行
// 终端接受即短路返回；全部被拒时保留最后一次的诊断信息；
// 循环中连接断开按拒绝收尾，不在此处重连
func (s *ExecutorService) submitWithFallback(ctx context.Context, submission *domain.TradeSubmission) (*domain.OrderResult, int) {
	var lastErr string
	var lastMode domain.FillMode
	attempts := 0

	for _, mode := range s.cfg.FillModes {
		attempt := *submission
		attempt.FillMode = mode
		attempts++
		lastMode = mode

		result, err := s.session.Send(ctx, &attempt)
		if err != nil {
			if errors.Is(err, domain.ErrNotConnected) {
				lastErr = fmt.Sprintf("connection lost during submission: %v", err)
				logger.Error(ctx, "Terminal connection lost mid-loop",
					"symbol", submission.Symbol,
					"filling_mode", mode,
					"error", err,
				)
				s.metrics.OrderAttempts.WithLabelValues(string(mode), "error").Inc()
				break
			}
			lastErr = fmt.Sprintf("order_send failed with filling mode %s: %v", mode, err)
			logger.Warn(ctx, "Order submission failed",
				"symbol", submission.Symbol,
				"filling_mode", mode,
				"error", err,
			)
			s.metrics.OrderAttempts.WithLabelValues(string(mode), "error").Inc()
			continue
		}

		if result == nil {
			lastErr = fmt.Sprintf("order_send returned no result with filling mode %s", mode)
			logger.Warn(ctx, "Order submission returned no result",
				"symbol", submission.Symbol,
				"filling_mode", mode,
			)
			s.metrics.OrderAttempts.WithLabelValues(string(mode), "no_result").Inc()
			continue
		}

		if result.Done {
			s.metrics.OrderAttempts.WithLabelValues(string(mode), "accepted").Inc()
			return &domain.OrderResult{
				Accepted:     true,
				Order:        result.Order,
				Deal:         result.Deal,
				Price:        result.Price,
				Volume:       result.Volume,
				FillModeUsed: mode,
			}, attempts
		}

		lastErr = fmt.Sprintf("filling mode %s rejected: retcode %d - %s", mode, result.Retcode, result.Comment)
		logger.Warn(ctx, "Order submission rejected",
			"symbol", submission.Symbol,
			"filling_mode", mode,
			"retcode", result.Retcode,
			"comment", result.Comment,
		)
		s.metrics.OrderAttempts.WithLabelValues(string(mode), "rejected").Inc()
	}

	return &domain.OrderResult{
		Accepted:     false,
		FillModeUsed: lastMode,
		LastError:    fmt.Sprintf("%s. Last error: %s", domain.ErrAllModesRejected, lastErr),
	}, attempts
}

// saveRecord 保存审计记录，失败只记日志，不影响交易结果
func (s *ExecutorService) saveRecord(ctx context.Context, symbol string, side domain.OrderSide, volume, price decimal.Decimal, position int64, result *domain.OrderResult, attempts int) {
	if s.repo == nil {
		return
	}

	record := &domain.TradeRecord{
		RecordID:   uuid.New().String(),
		Symbol:     symbol,
		Side:       side,
		Volume:     volume,
		Price:      price,
		FillMode:   result.FillModeUsed,
		Accepted:   result.Accepted,
		Order:      result.Order,
		Deal:       result.Deal,
		Position:   position,
		Attempts:   attempts,
		Diagnostic: result.LastError,
		ExecutedAt: time.Now(),
	}
	if err := s.repo.Save(ctx, record); err != nil {
		logger.Error(ctx, "Failed to save trade record",
			"record_id", record.RecordID,
			"symbol", symbol,
			"error", err,
		)
	}
}

// publishTradeExecuted 发布开仓事件，失败只记日志
func (s *ExecutorService) publishTradeExecuted(ctx context.Context, request *domain.TradeRequest, result *domain.OrderResult) {
	if s.publisher == nil {
		return
	}

	event := &domain.TradeExecutedEvent{
		EventID:      uuid.New().String(),
		Symbol:       request.Symbol,
		Side:         request.Side,
		Volume:       result.Volume.String(),
		Price:        result.Price.String(),
		Order:        result.Order,
		Deal:         result.Deal,
		FillModeUsed: result.FillModeUsed,
		ExecutedAt:   time.Now(),
	}
	if err := s.publisher.PublishTradeExecuted(ctx, event); err != nil {
		logger.Error(ctx, "Failed to publish trade executed event", "event_id", event.EventID, "error", err)
	}
}

// publishPositionClosed 发布平仓事件，失败只记日志
func (s *ExecutorService) publishPositionClosed(ctx context.Context, position *domain.Position, result *domain.OrderResult) {
	if s.publisher == nil {
		return
	}

	event := &domain.PositionClosedEvent{
		EventID:      uuid.New().String(),
		Ticket:       position.Ticket,
		Symbol:       position.Symbol,
		Volume:       result.Volume.String(),
		Price:        result.Price.String(),
		Deal:         result.Deal,
		FillModeUsed: result.FillModeUsed,
		ClosedAt:     time.Now(),
	}
	if err := s.publisher.PublishPositionClosed(ctx, event); err != nil {
		logger.Error(ctx, "Failed to publish position closed event", "event_id", event.EventID, "error", err)
	}
}
