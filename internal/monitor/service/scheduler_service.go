package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"golang-stock-tracker/internal/monitor/dto"
	"golang-stock-tracker/internal/monitor/repository"
	"golang-stock-tracker/pkg/common"
	"golang-stock-tracker/pkg/logger"

	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"
)

// SchedulerService enqueues scheduled price checks for every owner with open posts.
type SchedulerService interface {
	Start(ctx context.Context) error
	EnqueueAll(ctx context.Context)
	Stop()
}

type schedulerService struct {
	postRepo       repository.PostRepository
	redisClient    *redis.Client
	log            *logger.Logger
	cronExpression string
	streamMaxLen   int64
	cron           *cron.Cron
}

// NewSchedulerService creates a new scheduler service running in location.
func NewSchedulerService(postRepo repository.PostRepository, redisClient *redis.Client, log *logger.Logger, cronExpression string, streamMaxLen int64, location *time.Location) SchedulerService {
	if location == nil {
		location = time.UTC
	}
	return &schedulerService{
		postRepo:       postRepo,
		redisClient:    redisClient,
		log:            log,
		cronExpression: cronExpression,
		streamMaxLen:   streamMaxLen,
		cron:           cron.New(cron.WithLocation(location)),
	}
}

// Start registers the cron entry and starts the cron runner. It does not block.
func (s *schedulerService) Start(ctx context.Context) error {
	_, err := s.cron.AddFunc(s.cronExpression, func() {
		s.EnqueueAll(ctx)
	})
	if err != nil {
		return fmt.Errorf("failed to parse cron expression %q: %w", s.cronExpression, err)
	}
	s.cron.Start()
	s.log.Info("Scheduler service started", logger.StringField("cron", s.cronExpression))
	return nil
}

// EnqueueAll publishes one scheduled batch request per owner with open posts.
func (s *schedulerService) EnqueueAll(ctx context.Context) {
	ownerIDs, err := s.postRepo.ListOwnersWithOpenPosts(ctx)
	if err != nil {
		s.log.Error("Failed to list owners with open posts", logger.ErrorField(err))
		return
	}

	for _, ownerID := range ownerIDs {
		s.publishTask(ctx, ownerID)
	}
	s.log.Info("Scheduled price checks enqueued", logger.IntField("owners", len(ownerIDs)))
}

func (s *schedulerService) publishTask(ctx context.Context, ownerID uint) {
	payload, err := json.Marshal(dto.StreamDataPriceCheck{OwnerID: ownerID, Trigger: dto.TriggerScheduled})
	if err != nil {
		s.log.Error("Failed to marshal task payload", logger.ErrorField(err), logger.IntField("owner_id", int(ownerID)))
		return
	}

	if err := s.redisClient.XAdd(ctx, &redis.XAddArgs{
		Stream: common.RedisStreamPostPriceCheck,
		Values: map[string]interface{}{"payload": payload},
		MaxLen: s.streamMaxLen,
	}).Err(); err != nil {
		s.log.Error("Failed to enqueue price check", logger.ErrorField(err), logger.IntField("owner_id", int(ownerID)))
		return
	}
	s.log.Debug("Price check enqueued", logger.IntField("owner_id", int(ownerID)))
}

// Stop stops the cron runner and waits for a running job to finish.
func (s *schedulerService) Stop() {
	<-s.cron.Stop().Done()
	s.log.Info("Scheduler service stopped")
}
