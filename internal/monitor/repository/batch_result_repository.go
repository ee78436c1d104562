package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"golang-stock-tracker/internal/monitor/dto"
	"golang-stock-tracker/pkg/common"

	"github.com/redis/go-redis/v9"
)

// BatchResultRepository keeps finished batch results around for the notification review step.
type BatchResultRepository interface {
	Save(ctx context.Context, result *dto.BatchResult, ttl time.Duration) error
	Get(ctx context.Context, ownerID uint, batchID string) (*dto.BatchResult, error)
}

type batchResultRepository struct {
	redisClient *redis.Client
}

func NewBatchResultRepository(redisClient *redis.Client) BatchResultRepository {
	return &batchResultRepository{redisClient: redisClient}
}

func (r *batchResultRepository) Save(ctx context.Context, result *dto.BatchResult, ttl time.Duration) error {
	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to marshal batch result: %w", err)
	}
	key := fmt.Sprintf(common.RedisKeyBatchResult, result.OwnerID, result.BatchID)
	return r.redisClient.Set(ctx, key, data, ttl).Err()
}

func (r *batchResultRepository) Get(ctx context.Context, ownerID uint, batchID string) (*dto.BatchResult, error) {
	data, err := r.redisClient.Get(ctx, fmt.Sprintf(common.RedisKeyBatchResult, ownerID, batchID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, dto.ErrBatchNotFound
		}
		return nil, err
	}
	var result dto.BatchResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal batch result: %w", err)
	}
	return &result, nil
}
