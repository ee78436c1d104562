package service

import (
	"context"
	"time"

	"golang-stock-tracker/internal/monitor/dto"
	"golang-stock-tracker/internal/monitor/repository"
	"golang-stock-tracker/pkg/common"
	"golang-stock-tracker/pkg/logger"
	"golang-stock-tracker/pkg/utils"
)

// PostService handles explicit user actions on a post.
type PostService interface {
	ClosePost(ctx context.Context, ownerID uint, postID uint) (*dto.PostResult, error)
}

type postService struct {
	log            *logger.Logger
	postRepo       repository.PostRepository
	eventPublisher repository.PostEventPublisher
	now            func() time.Time
}

// NewPostService creates a new PostService.
func NewPostService(log *logger.Logger, postRepo repository.PostRepository, eventPublisher repository.PostEventPublisher) PostService {
	return &postService{
		log:            log,
		postRepo:       postRepo,
		eventPublisher: eventPublisher,
		now:            time.Now,
	}
}

// ClosePost moves an open post to the terminal closed state. Price history and flags are kept.
func (s *postService) ClosePost(ctx context.Context, ownerID uint, postID uint) (*dto.PostResult, error) {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post.OwnerID != ownerID {
		return nil, dto.ErrPostNotFound
	}
	if post.Closed {
		return nil, dto.ErrPostClosed
	}

	now := s.now()
	updated := clonePost(*post)
	updated.Closed = true
	updated.ClosedDate = utils.ToPointer(now)
	if err := s.postRepo.ConditionalUpdate(ctx, &updated, post.Version); err != nil {
		return nil, err
	}

	result := newPostResult(post)
	result.Code = dto.PostResultUpdated
	result.Changes.Closed = true
	fillResult(&result, &updated)

	event := dto.PostStatusEvent{
		EventType:    common.EventTypePostStatusChanged,
		PostID:       updated.ID,
		OwnerID:      updated.OwnerID,
		Symbol:       updated.Symbol,
		Status:       updated.Status,
		Changes:      result.Changes,
		CurrentPrice: updated.CurrentPrice,
		Timestamp:    now,
	}
	if err := s.eventPublisher.Publish(ctx, []dto.PostStatusEvent{event}); err != nil {
		s.log.ErrorContext(ctx, "Failed to publish post closed event", logger.IntField("post_id", int(postID)), logger.ErrorField(err))
	}

	s.log.InfoContext(ctx, "Post closed", logger.IntField("post_id", int(postID)), logger.IntField("owner_id", int(ownerID)))
	return &result, nil
}
