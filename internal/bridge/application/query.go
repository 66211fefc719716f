package application

import (
	"context"
	"errors"

	"github.com/wyfcoding/mt5bridge/internal/bridge/domain"
	"github.com/wyfcoding/mt5bridge/internal/bridge/infrastructure/persistence/redis"
	"github.com/wyfcoding/mt5bridge/pkg/logger"
	"github.com/wyfcoding/mt5bridge/pkg/metrics"
)

// QueryService 只读查询服务
// 报价与账户走 Redis 旁路缓存，缓存失效时回源终端
type QueryService struct {
	session      domain.Session
	repo         domain.TradeRepository
	quoteCache   *redis.QuoteCache
	accountCache *redis.AccountCache
	metrics      *metrics.Metrics
	symbolLimit  int
}

// NewQueryService 创建只读查询服务
func NewQueryService(session domain.Session, repo domain.TradeRepository, quoteCache *redis.QuoteCache, accountCache *redis.AccountCache, m *metrics.Metrics, symbolLimit int) *QueryService {
	return &QueryService{
		session:      session,
		repo:         repo,
		quoteCache:   quoteCache,
		accountCache: accountCache,
		metrics:      m,
		symbolLimit:  symbolLimit,
	}
}

// GetStatus 获取终端连接状态和账户摘要
// 终端不可达不视为错误，返回 connected=false
func (s *QueryService) GetStatus(ctx context.Context) *StatusDTO {
	if !s.session.Connected(ctx) {
		return &StatusDTO{Connected: false, Error: domain.ErrNotConnected.Error()}
	}

	account, err := s.getAccount(ctx)
	if err != nil {
		return &StatusDTO{Connected: false, Error: err.Error()}
	}
	return &StatusDTO{
		Connected:    true,
		TradeAllowed: account.TradeAllowed,
		Server:       account.Server,
		Login:        account.Login,
		Balance:      account.Balance.InexactFloat64(),
		Equity:       account.Equity.InexactFloat64(),
	}
}

// GetAccount 获取账户信息
func (s *QueryService) GetAccount(ctx context.Context) (*AccountDTO, error) {
	if !s.session.Connected(ctx) {
		return nil, domain.ErrNotConnected
	}
	account, err := s.getAccount(ctx)
	if err != nil {
		return nil, err
	}
	return NewAccountDTO(account), nil
}

// GetQuote 获取品种报价，优先读缓存
func (s *QueryService) GetQuote(ctx context.Context, symbol string) (*QuoteDTO, error) {
	if symbol == "" {
		return nil, domain.ErrSymbolRequired
	}
	s.metrics.QuoteRequestsTotal.Inc()

	if s.quoteCache != nil {
		quote, err := s.quoteCache.Get(ctx, symbol)
		if err != nil {
			logger.Warn(ctx, "Quote cache read failed", "symbol", symbol, "error", err)
		} else if quote != nil {
			return NewQuoteDTO(quote), nil
		}
	}

	if !s.session.Connected(ctx) {
		return nil, domain.ErrNotConnected
	}
	quote, err := s.session.Tick(ctx, symbol)
	if err != nil {
		return nil, err
	}
	if s.quoteCache != nil {
		if err := s.quoteCache.Set(ctx, quote); err != nil {
			logger.Warn(ctx, "Quote cache write failed", "symbol", symbol, "error", err)
		}
	}
	return NewQuoteDTO(quote), nil
}

// GetQuotes 批量获取多个品种的报价
// 单个品种不可用不使整批失败，对应条目携带错误信息
func (s *QueryService) GetQuotes(ctx context.Context, symbols []string) (map[string]*QuoteDTO, error) {
	if len(symbols) == 0 {
		return nil, domain.ErrSymbolRequired
	}
	if !s.session.Connected(ctx) {
		return nil, domain.ErrNotConnected
	}

	quotes := make(map[string]*QuoteDTO, len(symbols))
	for _, symbol := range symbols {
		dto, err := s.GetQuote(ctx, symbol)
		if err != nil {
			quotes[symbol] = &QuoteDTO{Error: err.Error()}
			continue
		}
		quotes[symbol] = dto
	}
	return quotes, nil
}

// GetRates 获取历史 K 线
func (s *QueryService) GetRates(ctx context.Context, symbol, timeframe string, count int) (*RatesDTO, error) {
	if symbol == "" {
		return nil, domain.ErrSymbolRequired
	}
	tf, err := domain.ParseTimeframe(timeframe)
	if err != nil {
		return nil, err
	}
	if count <= 0 {
		count = 100
	}
	if !s.session.Connected(ctx) {
		return nil, domain.ErrNotConnected
	}

	candles, err := s.session.Rates(ctx, symbol, tf, count)
	if err != nil {
		return nil, err
	}
	rates := make([]*CandleDTO, 0, len(candles))
	for _, c := range candles {
		rates = append(rates, &CandleDTO{
			Time:       c.Time.Unix(),
			Open:       c.Open.InexactFloat64(),
			High:       c.High.InexactFloat64(),
			Low:        c.Low.InexactFloat64(),
			Close:      c.Close.InexactFloat64(),
			TickVolume: c.TickVolume,
		})
	}
	return &RatesDTO{Symbol: symbol, Timeframe: string(tf), Rates: rates}, nil
}

// GetSymbolInfo 获取品种元数据
func (s *QueryService) GetSymbolInfo(ctx context.Context, symbol string) (*SymbolDTO, error) {
	if symbol == "" {
		return nil, domain.ErrSymbolRequired
	}
	if !s.session.Connected(ctx) {
		return nil, domain.ErrNotConnected
	}
	info, err := s.session.SymbolInfo(ctx, symbol)
	if err != nil {
		return nil, err
	}
	return NewSymbolDTO(info), nil
}

// ListSymbols 获取可见品种名称列表，按配置上限截断
func (s *QueryService) ListSymbols(ctx context.Context) ([]string, error) {
	if !s.session.Connected(ctx) {
		return nil, domain.ErrNotConnected
	}
	infos, err := s.session.Symbols(ctx)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(infos))
	for _, info := range infos {
		if !info.Visible {
			continue
		}
		names = append(names, info.Name)
		if s.symbolLimit > 0 && len(names) >= s.symbolLimit {
			break
		}
	}
	return names, nil
}

// ListPositions 获取全部持仓
func (s *QueryService) ListPositions(ctx context.Context) ([]*PositionDTO, error) {
	if !s.session.Connected(ctx) {
		return nil, domain.ErrNotConnected
	}
	positions, err := s.session.Positions(ctx)
	if err != nil {
		return nil, err
	}
	dtos := make([]*PositionDTO, 0, len(positions))
	for _, pos := range positions {
		dtos = append(dtos, NewPositionDTO(pos))
	}
	return dtos, nil
}

// ListTrades 分页查询历史执行记录
func (s *QueryService) ListTrades(ctx context.Context, symbol string, page, pageSize int) ([]*domain.TradeRecord, int64, error) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 || pageSize > 200 {
		pageSize = 20
	}
	return s.repo.ListBySymbol(ctx, symbol, pageSize, (page-1)*pageSize)
}

// getAccount 读账户缓存，失效时回源终端并回填
func (s *QueryService) getAccount(ctx context.Context) (*domain.Account, error) {
	if s.accountCache != nil {
		account, err := s.accountCache.Get(ctx)
		if err != nil && !errors.Is(err, context.Canceled) {
			logger.Warn(ctx, "Account cache read failed", "error", err)
		} else if account != nil {
			return account, nil
		}
	}

	account, err := s.session.Account(ctx)
	if err != nil {
		return nil, err
	}
	if s.accountCache != nil {
		if err := s.accountCache.Set(ctx, account); err != nil {
			logger.Warn(ctx, "Account cache write failed", "error", err)
		}
	}
	return account, nil
}
