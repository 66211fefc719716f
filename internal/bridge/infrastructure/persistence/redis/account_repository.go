package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/wyfcoding/mt5bridge/internal/bridge/domain"
	"github.com/wyfcoding/mt5bridge/pkg/cache"
)

const (
	accountSnapKey    = "bridge:account"
	defaultAccountTTL = 30 * time.Second
)

// accountEntry 缓存中的账户快照
type accountEntry struct {
	Login        int64  `json:"login"`
	Server       string `json:"server"`
	Currency     string `json:"currency"`
	Balance      string `json:"balance"`
	Equity       string `json:"equity"`
	Margin       string `json:"margin"`
	MarginFree   string `json:"margin_free"`
	MarginLevel  string `json:"margin_level"`
	Leverage     int    `json:"leverage"`
	TradeAllowed bool   `json:"trade_allowed"`
}

// AccountCache 账户快照缓存
// 连接监控每次探测成功后刷新，查询侧在终端不可达时仍能返回最近快照
type AccountCache struct {
	cache *cache.RedisCache
	ttl   time.Duration
}

// NewAccountCache 创建账户快照缓存，ttl 为 0 时使用默认值
func NewAccountCache(c *cache.RedisCache, ttl time.Duration) *AccountCache {
	if ttl <= 0 {
		ttl = defaultAccountTTL
	}
	return &AccountCache{
		cache: c,
		ttl:   ttl,
	}
}

// Get 读取账户快照，未命中时返回 (nil, nil)
func (ac *AccountCache) Get(ctx context.Context) (*domain.Account, error) {
	var entry accountEntry
	hit, err := ac.cache.GetJSON(ctx, accountSnapKey, &entry)
	if err != nil {
		return nil, err
	}
	if !hit {
		return nil, nil
	}
	return entry.toDomain()
}

// Set 写入账户快照
func (ac *AccountCache) Set(ctx context.Context, account *domain.Account) error {
	entry := accountEntry{
		Login:        account.Login,
		Server:       account.Server,
		Currency:     account.Currency,
		Balance:      account.Balance.String(),
		Equity:       account.Equity.String(),
		Margin:       account.Margin.String(),
		MarginFree:   account.MarginFree.String(),
		MarginLevel:  account.MarginLevel.String(),
		Leverage:     account.Leverage,
		TradeAllowed: account.TradeAllowed,
	}
	return ac.cache.SetJSON(ctx, accountSnapKey, entry, ac.ttl)
}

func (e *accountEntry) toDomain() (*domain.Account, error) {
	balance, err := parseDecimal(e.Balance)
	if err != nil {
		return nil, fmt.Errorf("invalid cached balance: %w", err)
	}
	equity, err := parseDecimal(e.Equity)
	if err != nil {
		return nil, fmt.Errorf("invalid cached equity: %w", err)
	}
	margin, err := parseDecimal(e.Margin)
	if err != nil {
		return nil, fmt.Errorf("invalid cached margin: %w", err)
	}
	marginFree, err := parseDecimal(e.MarginFree)
	if err != nil {
		return nil, fmt.Errorf("invalid cached margin_free: %w", err)
	}
	marginLevel, err := parseDecimal(e.MarginLevel)
	if err != nil {
		return nil, fmt.Errorf("invalid cached margin_level: %w", err)
	}

	return &domain.Account{
		Login:        e.Login,
		Server:       e.Server,
		Currency:     e.Currency,
		Balance:      balance,
		Equity:       equity,
		Margin:       margin,
		MarginFree:   marginFree,
		MarginLevel:  marginLevel,
		Leverage:     e.Leverage,
		TradeAllowed: e.TradeAllowed,
	}, nil
}

// parseDecimal 解析字符串，空串按零处理
func parseDecimal(s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(s)
}
