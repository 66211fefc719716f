// Package redis 提供行情与账户快照的 Redis 缓存
package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/wyfcoding/mt5bridge/internal/bridge/domain"
	"github.com/wyfcoding/mt5bridge/pkg/cache"
)

const (
	quoteKeyPrefix  = "bridge:quote:"
	defaultQuoteTTL = 2 * time.Second
)

// quoteEntry 缓存中的报价条目，价格以字符串存储保持精度
type quoteEntry struct {
	Symbol string `json:"symbol"`
	Bid    string `json:"bid"`
	Ask    string `json:"ask"`
	Time   int64  `json:"time"`
	Volume int64  `json:"volume"`
}

// QuoteCache 报价缓存
type QuoteCache struct {
	cache *cache.RedisCache
	ttl   time.Duration
}

// NewQuoteCache 创建报价缓存，ttl 为 0 时使用默认值
func NewQuoteCache(c *cache.RedisCache, ttl time.Duration) *QuoteCache {
	if ttl <= 0 {
		ttl = defaultQuoteTTL
	}
	return &QuoteCache{
		cache: c,
		ttl:   ttl,
	}
}

// Get 读取缓存报价，未命中时返回 (nil, nil)
func (qc *QuoteCache) Get(ctx context.Context, symbol string) (*domain.Quote, error) {
	var entry quoteEntry
	hit, err := qc.cache.GetJSON(ctx, quoteKeyPrefix+symbol, &entry)
	if err != nil {
		return nil, err
	}
	if !hit {
		return nil, nil
	}
	return entry.toDomain()
}

// Set 写入报价
func (qc *QuoteCache) Set(ctx context.Context, quote *domain.Quote) error {
	entry := quoteEntry{
		Symbol: quote.Symbol,
		Bid:    quote.Bid.String(),
		Ask:    quote.Ask.String(),
		Time:   quote.Time.Unix(),
		Volume: quote.Volume,
	}
	return qc.cache.SetJSON(ctx, quoteKeyPrefix+quote.Symbol, entry, qc.ttl)
}

func (e *quoteEntry) toDomain() (*domain.Quote, error) {
	bid, err := parseDecimal(e.Bid)
	if err != nil {
		return nil, fmt.Errorf("invalid cached bid for %s: %w", e.Symbol, err)
	}
	ask, err := parseDecimal(e.Ask)
	if err != nil {
		return nil, fmt.Errorf("invalid cached ask for %s: %w", e.Symbol, err)
	}
	return &domain.Quote{
		Symbol: e.Symbol,
		Bid:    bid,
		Ask:    ask,
		Time:   time.Unix(e.Time, 0),
		Volume: e.Volume,
	}, nil
}
