package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"golang-stock-tracker/internal/monitor/config"
	"golang-stock-tracker/internal/monitor/dto"
	"golang-stock-tracker/pkg/common"
	"golang-stock-tracker/pkg/logger"
	"golang-stock-tracker/pkg/telegram"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// PriceCheckTaskService consumes scheduled price check requests from the Redis stream.
type PriceCheckTaskService interface {
	ProcessTask(ctx context.Context)
	ProcessRetries(ctx context.Context)
	Execute(ctx context.Context, req dto.StreamDataPriceCheck) error
}

type priceCheckTaskService struct {
	cfg                 *config.Config
	log                 *logger.Logger
	redisClient         *redis.Client
	batchRunner         BatchRunner
	notificationService NotificationService
	telegramBot         telegram.Notifier
	location            *time.Location
}

// NewPriceCheckTaskService creates a new PriceCheckTaskService. telegramBot may be nil.
func NewPriceCheckTaskService(
	cfg *config.Config,
	log *logger.Logger,
	redisClient *redis.Client,
	batchRunner BatchRunner,
	notificationService NotificationService,
	telegramBot telegram.Notifier,
	location *time.Location,
) PriceCheckTaskService {
	return &priceCheckTaskService{
		cfg:                 cfg,
		log:                 log,
		redisClient:         redisClient,
		batchRunner:         batchRunner,
		notificationService: notificationService,
		telegramBot:         telegramBot,
		location:            location,
	}
}

func (s *priceCheckTaskService) ProcessTask(ctx context.Context) {
	streams, err := s.redisClient.XReadGroup(ctx, &redis.XReadGroupArgs{
		Group:    common.RedisStreamGroup,
		Consumer: common.RedisStreamConsumer,
		Streams:  []string{common.RedisStreamPostPriceCheck, ">"},
		Count:    1,
		Block:    2 * time.Second, // short block so shutdown is noticed
	}).Result()
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, redis.Nil) {
			return
		}
		s.log.Error("Failed to read from stream", logger.ErrorField(err))
		return
	}

	if len(streams) == 0 || len(streams[0].Messages) == 0 {
		s.log.Debug("No messages found", logger.StringField("stream", common.RedisStreamPostPriceCheck))
		return
	}

	message := streams[0].Messages[0]
	streamData, ok := s.decode(message)
	if !ok {
		// malformed payloads never succeed, drop them
		_ = s.AckNDel(ctx, message.ID)
		return
	}

	loggerFields := []zap.Field{
		logger.IntField("owner_id", int(streamData.OwnerID)),
		logger.StringField("message_id", message.ID),
	}
	s.log.Debug("Processing price check task", loggerFields...)

	if err := s.Execute(ctx, streamData); err != nil {
		s.log.Error("Failed to execute price check task", append(loggerFields, logger.ErrorField(err))...)
		return
	}

	if err := s.AckNDel(ctx, message.ID); err != nil {
		return
	}
	s.log.Debug("Price check task processed successfully", loggerFields...)
}

func (s *priceCheckTaskService) decode(message redis.XMessage) (dto.StreamDataPriceCheck, bool) {
	var streamData dto.StreamDataPriceCheck
	taskData, ok := message.Values["payload"].(string)
	if !ok {
		s.log.Error("field 'payload' not found or not a string in stream message", logger.Field("message_id", message.ID))
		return streamData, false
	}
	if err := json.Unmarshal([]byte(taskData), &streamData); err != nil {
		s.log.Error("Failed to unmarshal task data", logger.ErrorField(err), logger.Field("message_id", message.ID))
		return streamData, false
	}
	if streamData.Trigger == "" {
		streamData.Trigger = dto.TriggerScheduled
	}
	return streamData, true
}

// Execute runs one batch and, when configured, sends the changed posts to the owner.
// A batch that is already running for the owner counts as done.
func (s *priceCheckTaskService) Execute(ctx context.Context, req dto.StreamDataPriceCheck) error {
	result, err := s.batchRunner.RunBatch(ctx, dto.RunBatchParam{OwnerID: req.OwnerID, Trigger: req.Trigger})
	if err != nil {
		if errors.Is(err, dto.ErrAlreadyRunning) || errors.Is(err, dto.ErrQuotaExceeded) {
			s.log.Info("Skipping price check task", logger.IntField("owner_id", int(req.OwnerID)), logger.ErrorField(err))
			return nil
		}
		return err
	}

	if !s.cfg.Scheduler.NotifyChanges || result.Cancelled() {
		return nil
	}

	payload := SelectForNotification(result, dto.NotificationOverrides{RecipientScope: common.RecipientScopeOwner})
	if len(payload.SelectedPostIDs) == 0 {
		return nil
	}
	if err := s.notificationService.DispatchPayload(ctx, payload); err != nil {
		// the batch itself is persisted; a failed notification must not re-run it
		s.log.Error("Failed to send scheduled notification", logger.IntField("owner_id", int(req.OwnerID)), logger.ErrorField(err))
	}
	return nil
}

func (s *priceCheckTaskService) ProcessRetries(ctx context.Context) {
	msgs, _, err := s.redisClient.XAutoClaim(ctx, &redis.XAutoClaimArgs{
		Stream:   common.RedisStreamPostPriceCheck,
		Group:    common.RedisStreamGroup,
		Consumer: common.RedisStreamConsumer + "-retry",
		MinIdle:  s.cfg.Scheduler.MaxIdle,
		Start:    "0",
		Count:    1,
	}).Result()
	if err != nil {
		s.log.Error("Failed to claim price check task on retry", logger.ErrorField(err))
		return
	}

	if len(msgs) == 0 {
		s.log.Debug("Retry No pending messages found", logger.StringField("stream", common.RedisStreamPostPriceCheck))
		return
	}

	msg := msgs[0]
	pendingInfo, err := s.redisClient.XPendingExt(ctx, &redis.XPendingExtArgs{
		Stream: common.RedisStreamPostPriceCheck,
		Group:  common.RedisStreamGroup,
		Start:  msg.ID,
		End:    msg.ID,
		Count:  1,
	}).Result()
	if err != nil {
		s.log.Error("Failed to get pending info", logger.ErrorField(err))
		return
	}
	if len(pendingInfo) == 0 {
		s.log.Warn("pending msg not found, but exist on xautoclaim", logger.StringField("message_id", msg.ID))
		return
	}

	streamData, ok := s.decode(msg)
	if !ok {
		_ = s.AckNDel(ctx, msg.ID)
		return
	}

	if err := s.Execute(ctx, streamData); err != nil {
		retryCount := pendingInfo[0].RetryCount + 1
		s.log.Error("Failed to retry price check task", logger.ErrorField(err),
			logger.StringField("message_id", msg.ID),
			logger.IntField("owner_id", int(streamData.OwnerID)),
			logger.IntField("retry_count", int(retryCount)))

		if retryCount >= int64(s.cfg.Scheduler.MaxRetry) {
			s.alertRetryExceeded(streamData, err)
			_ = s.AckNDel(ctx, msg.ID)
		}
		return
	}

	if err := s.AckNDel(ctx, msg.ID); err != nil {
		return
	}
	s.log.Info("Retry price check task processed successfully", logger.IntField("owner_id", int(streamData.OwnerID)))
}

func (s *priceCheckTaskService) alertRetryExceeded(streamData dto.StreamDataPriceCheck, cause error) {
	if s.telegramBot == nil {
		return
	}
	errType := fmt.Sprintf("Retry count exceeded for event %s", common.RedisStreamPostPriceCheck)
	data := fmt.Sprintf("owner %d | %s", streamData.OwnerID, streamData.Trigger)
	msg := telegram.FormatErrorAlertMessage(time.Now().In(s.location), errType, cause.Error(), data)
	if err := s.telegramBot.SendMessage(msg); err != nil {
		s.log.Error("Failed to send telegram message retry exceeded", logger.ErrorField(err), logger.IntField("owner_id", int(streamData.OwnerID)))
	}
}

func (s *priceCheckTaskService) AckNDel(ctx context.Context, messageID string) error {
	if err := s.redisClient.XAck(ctx, common.RedisStreamPostPriceCheck, common.RedisStreamGroup, messageID).Err(); err != nil {
		s.log.Error("Failed to acknowledge price check task", logger.StringField("message_id", messageID), logger.ErrorField(err))
		return err
	}
	if err := s.redisClient.XDel(ctx, common.RedisStreamPostPriceCheck, messageID).Err(); err != nil {
		s.log.Error("Failed to delete price check task", logger.StringField("message_id", messageID), logger.ErrorField(err))
		return err
	}
	return nil
}
