// Package mysql 提供了执行审计仓储接口的 MySQL GORM 实现。
package mysql

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/wyfcoding/mt5bridge/internal/bridge/domain"
	"github.com/wyfcoding/mt5bridge/pkg/logger"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// tradeRepositoryImpl 是 domain.TradeRepository 接口的 GORM 实现。
type tradeRepositoryImpl struct {
	db *gorm.DB
}

// NewTradeRepository 创建执行审计仓储实例
func NewTradeRepository(db *gorm.DB) domain.TradeRepository {
	return &tradeRepositoryImpl{
		db: db,
	}
}

// Save 实现 domain.TradeRepository.Save
func (r *tradeRepositoryImpl) Save(ctx context.Context, record *domain.TradeRecord) error {
	model := &TradeRecordModel{
		RecordID:   record.RecordID,
		Symbol:     record.Symbol,
		Side:       string(record.Side),
		Volume:     record.Volume.String(),
		Price:      record.Price.String(),
		FillMode:   string(record.FillMode),
		Accepted:   record.Accepted,
		OrderRef:   record.Order,
		DealRef:    record.Deal,
		Position:   record.Position,
		Attempts:   record.Attempts,
		Diagnostic: record.Diagnostic,
		ExecutedAt: record.ExecutedAt.Unix(),
	}

	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "record_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"accepted", "order_ref", "deal_ref", "attempts", "diagnostic"}),
	}).Create(model).Error
	if err != nil {
		logger.Error(ctx, "trade_repository.save failed", "record_id", record.RecordID, "error", err)
		return fmt.Errorf("failed to save trade record: %w", err)
	}

	return nil
}

// ListBySymbol 实现 domain.TradeRepository.ListBySymbol
func (r *tradeRepositoryImpl) ListBySymbol(ctx context.Context, symbol string, limit, offset int) ([]*domain.TradeRecord, int64, error) {
	var models []TradeRecordModel
	var total int64

	db := r.db.WithContext(ctx).Model(&TradeRecordModel{})
	if symbol != "" {
		db = db.Where("symbol = ?", symbol)
	}
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if err := db.Order("executed_at desc").Limit(limit).Offset(offset).Find(&models).Error; err != nil {
		logger.Error(ctx, "trade_repository.list_by_symbol failed", "symbol", symbol, "error", err)
		return nil, 0, fmt.Errorf("failed to list trade records: %w", err)
	}

	records := make([]*domain.TradeRecord, len(models))
	for i, m := range models {
		records[i] = r.toDomain(&m)
	}
	return records, total, nil
}

func (r *tradeRepositoryImpl) toDomain(m *TradeRecordModel) *domain.TradeRecord {
	volume, err := decimal.NewFromString(m.Volume)
	if err != nil {
		volume = decimal.Zero
	}
	price, err := decimal.NewFromString(m.Price)
	if err != nil {
		price = decimal.Zero
	}

	return &domain.TradeRecord{
		RecordID:   m.RecordID,
		Symbol:     m.Symbol,
		Side:       domain.OrderSide(m.Side),
		Volume:     volume,
		Price:      price,
		FillMode:   domain.FillMode(m.FillMode),
		Accepted:   m.Accepted,
		Order:      m.OrderRef,
		Deal:       m.DealRef,
		Position:   m.Position,
		Attempts:   m.Attempts,
		Diagnostic: m.Diagnostic,
		ExecutedAt: time.Unix(m.ExecutedAt, 0),
	}
}
