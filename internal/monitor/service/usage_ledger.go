package service

import (
	"context"
	"fmt"
	"time"

	"golang-stock-tracker/internal/monitor/dto"
	"golang-stock-tracker/internal/monitor/repository"
	"golang-stock-tracker/pkg/utils"
)

// UsageLedger tracks how many price-check batches an owner used in the current period.
type UsageLedger interface {
	Remaining(ctx context.Context, ownerID uint) (int, error)
	// Consume counts one batch. Calling it again with the same batchID does not count twice.
	Consume(ctx context.Context, ownerID uint, batchID string) error
	Usage(ctx context.Context, ownerID uint) (*dto.UsageResponse, error)
}

type usageLedger struct {
	usageRepo  repository.UsageRepository
	dailyLimit int
	location   *time.Location
	now        func() time.Time
}

// NewUsageLedger creates a ledger whose period is the calendar day in location.
func NewUsageLedger(usageRepo repository.UsageRepository, dailyLimit int, location *time.Location) UsageLedger {
	if location == nil {
		location = time.UTC
	}
	return &usageLedger{
		usageRepo:  usageRepo,
		dailyLimit: dailyLimit,
		location:   location,
		now:        time.Now,
	}
}

func (l *usageLedger) period() string {
	return utils.DateKey(l.now().In(l.location))
}

func (l *usageLedger) Remaining(ctx context.Context, ownerID uint) (int, error) {
	usage, err := l.Usage(ctx, ownerID)
	if err != nil {
		return 0, err
	}
	return usage.Remaining, nil
}

func (l *usageLedger) Consume(ctx context.Context, ownerID uint, batchID string) error {
	if err := l.usageRepo.Consume(ctx, ownerID, l.period(), l.dailyLimit, batchID); err != nil {
		return fmt.Errorf("failed to consume usage: %w", err)
	}
	return nil
}

func (l *usageLedger) Usage(ctx context.Context, ownerID uint) (*dto.UsageResponse, error) {
	period := l.period()
	record, err := l.usageRepo.Get(ctx, ownerID, period)
	if err != nil {
		return nil, fmt.Errorf("failed to get usage: %w", err)
	}

	usage := &dto.UsageResponse{OwnerID: ownerID, Period: period, Limit: l.dailyLimit, Remaining: l.dailyLimit}
	if record != nil {
		usage.Limit = record.UsageLimit
		usage.Used = record.Used
		usage.Remaining = record.Remaining()
	}
	if usage.Remaining < 0 {
		usage.Remaining = 0
	}
	return usage, nil
}
