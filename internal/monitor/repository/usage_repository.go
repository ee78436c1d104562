package repository

import (
	"context"
	"errors"

	"golang-stock-tracker/internal/entity"
	"golang-stock-tracker/internal/monitor/dto"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// UsageRepository persists per-owner, per-period usage counters.
type UsageRepository interface {
	Get(ctx context.Context, ownerID uint, period string) (*entity.UsageRecord, error)
	// Consume counts batchID against the period. Repeating the same batchID is a no-op.
	Consume(ctx context.Context, ownerID uint, period string, limit int, batchID string) error
}

type usageRepository struct {
	db *gorm.DB
}

// NewUsageRepository creates a new GORM-based usage repository.
func NewUsageRepository(db *gorm.DB) UsageRepository {
	return &usageRepository{db: db}
}

// Get returns nil without error when the owner has no record for the period yet.
func (r *usageRepository) Get(ctx context.Context, ownerID uint, period string) (*entity.UsageRecord, error) {
	var record entity.UsageRecord
	err := r.db.WithContext(ctx).Where("owner_id = ? AND period = ?", ownerID, period).First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &record, nil
}

func (r *usageRepository) Consume(ctx context.Context, ownerID uint, period string, limit int, batchID string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		record := entity.UsageRecord{OwnerID: ownerID, Period: period, UsageLimit: limit}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&record).Error; err != nil {
			return err
		}

		result := tx.Model(&entity.UsageRecord{}).
			Where("owner_id = ? AND period = ? AND used < usage_limit AND last_batch_id <> ?", ownerID, period, batchID).
			Updates(map[string]interface{}{
				"used":          gorm.Expr("used + 1"),
				"last_batch_id": batchID,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected > 0 {
			return nil
		}

		var current entity.UsageRecord
		if err := tx.Where("owner_id = ? AND period = ?", ownerID, period).First(&current).Error; err != nil {
			return err
		}
		if current.LastBatchID == batchID {
			return nil
		}
		return dto.ErrQuotaExceeded
	})
}
