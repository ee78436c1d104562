package service

import (
	"context"
	"fmt"
	"time"

	"golang-stock-tracker/internal/entity"
	"golang-stock-tracker/internal/monitor/dto"
	"golang-stock-tracker/internal/monitor/repository"
	"golang-stock-tracker/pkg/common"
	"golang-stock-tracker/pkg/logger"
	"golang-stock-tracker/pkg/telegram"

	"github.com/lib/pq"
)

// NotificationService builds and sends batch reports.
type NotificationService interface {
	Preview(ctx context.Context, ownerID uint, batchID string, overrides dto.NotificationOverrides) (*dto.NotificationPayload, error)
	Dispatch(ctx context.Context, ownerID uint, batchID string, overrides dto.NotificationOverrides) (*dto.NotificationPayload, error)
	// DispatchPayload sends an already selected payload. An empty selection is rejected without a network call.
	DispatchPayload(ctx context.Context, payload dto.NotificationPayload) error
}

type notificationService struct {
	log           *logger.Logger
	batchRunner   BatchRunner
	userRepo      repository.UserRepository
	logRepo       repository.NotificationLogRepository
	notifier      telegram.Notifier
	channelChatID int64
	now           func() time.Time
}

// NewNotificationService creates a new NotificationService. notifier may be nil when Telegram is not configured.
func NewNotificationService(
	log *logger.Logger,
	batchRunner BatchRunner,
	userRepo repository.UserRepository,
	logRepo repository.NotificationLogRepository,
	notifier telegram.Notifier,
	channelChatID int64,
) NotificationService {
	return &notificationService{
		log:           log,
		batchRunner:   batchRunner,
		userRepo:      userRepo,
		logRepo:       logRepo,
		notifier:      notifier,
		channelChatID: channelChatID,
		now:           time.Now,
	}
}

func (s *notificationService) Preview(ctx context.Context, ownerID uint, batchID string, overrides dto.NotificationOverrides) (*dto.NotificationPayload, error) {
	result, err := s.batchRunner.GetBatchResult(ctx, ownerID, batchID)
	if err != nil {
		return nil, err
	}
	payload := SelectForNotification(result, overrides)
	return &payload, nil
}

func (s *notificationService) Dispatch(ctx context.Context, ownerID uint, batchID string, overrides dto.NotificationOverrides) (*dto.NotificationPayload, error) {
	payload, err := s.Preview(ctx, ownerID, batchID, overrides)
	if err != nil {
		return nil, err
	}
	if err := s.DispatchPayload(ctx, *payload); err != nil {
		return payload, err
	}
	return payload, nil
}

func (s *notificationService) DispatchPayload(ctx context.Context, payload dto.NotificationPayload) error {
	if len(payload.SelectedPostIDs) == 0 {
		return dto.ErrEmptySelection
	}

	chatID, err := s.resolveChat(ctx, payload)
	if err != nil {
		return err
	}
	if s.notifier == nil {
		return dto.ErrNotifierDisabled
	}

	for _, message := range telegram.FormatPostReportForTelegram(payload) {
		if err := s.notifier.SendMessageUser(message, chatID); err != nil {
			s.log.ErrorContext(ctx, "Failed to send notification",
				logger.StringField("batch_id", payload.BatchID),
				logger.IntField("owner_id", int(payload.OwnerID)),
				logger.ErrorField(err))
			return fmt.Errorf("failed to send notification: %w", err)
		}
	}

	postIDs := make(pq.Int64Array, 0, len(payload.SelectedPostIDs))
	for _, id := range payload.SelectedPostIDs {
		postIDs = append(postIDs, int64(id))
	}
	notificationLog := &entity.NotificationLog{
		OwnerID:        payload.OwnerID,
		BatchID:        payload.BatchID,
		Title:          payload.Title,
		Comment:        payload.Comment,
		PostIDs:        postIDs,
		RecipientScope: payload.RecipientScope,
		SentAt:         s.now(),
	}
	if err := s.logRepo.Create(ctx, notificationLog); err != nil {
		// the message is already out; losing the log entry must not fail the dispatch
		s.log.ErrorContext(ctx, "Failed to save notification log", logger.ErrorField(err))
	}

	s.log.InfoContext(ctx, "Notification sent",
		logger.StringField("batch_id", payload.BatchID),
		logger.StringField("recipient_scope", payload.RecipientScope),
		logger.IntField("posts", len(payload.SelectedPostIDs)))
	return nil
}

func (s *notificationService) resolveChat(ctx context.Context, payload dto.NotificationPayload) (int64, error) {
	switch payload.RecipientScope {
	case common.RecipientScopeOwner, "":
		user, err := s.userRepo.GetByID(ctx, payload.OwnerID)
		if err != nil {
			return 0, fmt.Errorf("failed to get owner: %w", err)
		}
		if user == nil || user.TelegramID == 0 {
			return 0, dto.ErrNoRecipient
		}
		return user.TelegramID, nil
	case common.RecipientScopeChannel:
		if s.channelChatID == 0 {
			return 0, dto.ErrNoRecipient
		}
		return s.channelChatID, nil
	default:
		return 0, dto.ErrInvalidScope
	}
}
