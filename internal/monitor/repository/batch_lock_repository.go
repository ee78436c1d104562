package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang-stock-tracker/internal/monitor/dto"
	"golang-stock-tracker/pkg/common"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// BatchLockRepository guards at most one batch per owner across replicas and carries cancel requests.
type BatchLockRepository interface {
	// Acquire returns a release token, or dto.ErrAlreadyRunning while another batch holds the lock.
	// The lock expires after ttl so a crashed process cannot block the owner forever.
	Acquire(ctx context.Context, ownerID uint, ttl time.Duration) (string, error)
	// Extend resets the TTL of a lock still held by token, or returns dto.ErrLockLost.
	Extend(ctx context.Context, ownerID uint, token string, ttl time.Duration) error
	Release(ctx context.Context, ownerID uint, token string) error
	RequestCancel(ctx context.Context, ownerID uint, ttl time.Duration) error
	IsCancelRequested(ctx context.Context, ownerID uint) (bool, error)
	ClearCancel(ctx context.Context, ownerID uint) error
}

// releaseScript deletes the lock only if it is still held by the caller's token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// extendScript resets the lock TTL only if it is still held by the caller's token.
var extendScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("PEXPIRE", KEYS[1], ARGV[2])
end
return 0
`)

type batchLockRepository struct {
	redisClient *redis.Client
}

func NewBatchLockRepository(redisClient *redis.Client) BatchLockRepository {
	return &batchLockRepository{redisClient: redisClient}
}

func (r *batchLockRepository) Acquire(ctx context.Context, ownerID uint, ttl time.Duration) (string, error) {
	token := uuid.NewString()
	ok, err := r.redisClient.SetNX(ctx, fmt.Sprintf(common.RedisKeyBatchLock, ownerID), token, ttl).Result()
	if err != nil {
		return "", fmt.Errorf("failed to acquire batch lock: %w", err)
	}
	if !ok {
		return "", dto.ErrAlreadyRunning
	}
	return token, nil
}

func (r *batchLockRepository) Extend(ctx context.Context, ownerID uint, token string, ttl time.Duration) error {
	key := fmt.Sprintf(common.RedisKeyBatchLock, ownerID)
	n, err := extendScript.Run(ctx, r.redisClient, []string{key}, token, ttl.Milliseconds()).Int()
	if err != nil {
		return fmt.Errorf("failed to extend batch lock: %w", err)
	}
	if n == 0 {
		return dto.ErrLockLost
	}
	return nil
}

func (r *batchLockRepository) Release(ctx context.Context, ownerID uint, token string) error {
	err := releaseScript.Run(ctx, r.redisClient, []string{fmt.Sprintf(common.RedisKeyBatchLock, ownerID)}, token).Err()
	if err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("failed to release batch lock: %w", err)
	}
	return nil
}

func (r *batchLockRepository) RequestCancel(ctx context.Context, ownerID uint, ttl time.Duration) error {
	return r.redisClient.Set(ctx, fmt.Sprintf(common.RedisKeyBatchCancel, ownerID), "1", ttl).Err()
}

func (r *batchLockRepository) IsCancelRequested(ctx context.Context, ownerID uint) (bool, error) {
	n, err := r.redisClient.Exists(ctx, fmt.Sprintf(common.RedisKeyBatchCancel, ownerID)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *batchLockRepository) ClearCancel(ctx context.Context, ownerID uint) error {
	return r.redisClient.Del(ctx, fmt.Sprintf(common.RedisKeyBatchCancel, ownerID)).Err()
}
