package repository

import (
	"context"
	"errors"

	"golang-stock-tracker/internal/entity"
	"golang-stock-tracker/internal/monitor/dto"

	"gorm.io/gorm"
)

// PostRepository is the post store used by the monitor.
type PostRepository interface {
	ListOpenPosts(ctx context.Context, ownerID uint) ([]entity.Post, error)
	ListOwnersWithOpenPosts(ctx context.Context) ([]uint, error)
	GetByID(ctx context.Context, id uint) (*entity.Post, error)
	// ConditionalUpdate writes the mutable fields of post only if the stored version still equals
	// expectedVersion and the post is open. It returns dto.ErrPersistConflict otherwise.
	ConditionalUpdate(ctx context.Context, post *entity.Post, expectedVersion int64) error
}

type postRepository struct {
	db *gorm.DB
}

// NewPostRepository creates a new GORM-based post repository.
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

func (r *postRepository) ListOpenPosts(ctx context.Context, ownerID uint) ([]entity.Post, error) {
	var posts []entity.Post
	err := r.db.WithContext(ctx).
		Where("owner_id = ? AND closed = ?", ownerID, false).
		Order("id").
		Find(&posts).Error
	if err != nil {
		return nil, err
	}
	return posts, nil
}

func (r *postRepository) ListOwnersWithOpenPosts(ctx context.Context) ([]uint, error) {
	var ownerIDs []uint
	err := r.db.WithContext(ctx).
		Model(&entity.Post{}).
		Where("closed = ?", false).
		Distinct().
		Order("owner_id").
		Pluck("owner_id", &ownerIDs).Error
	if err != nil {
		return nil, err
	}
	return ownerIDs, nil
}

func (r *postRepository) GetByID(ctx context.Context, id uint) (*entity.Post, error) {
	var post entity.Post
	if err := r.db.WithContext(ctx).First(&post, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, dto.ErrPostNotFound
		}
		return nil, err
	}
	return &post, nil
}

func (r *postRepository) ConditionalUpdate(ctx context.Context, post *entity.Post, expectedVersion int64) error {
	result := r.db.WithContext(ctx).
		Model(&entity.Post{}).
		Where("id = ? AND version = ? AND closed = ?", post.ID, expectedVersion, false).
		Updates(map[string]interface{}{
			"country":                  post.Country,
			"current_price":            post.CurrentPrice,
			"last_price_check":         post.LastPriceCheck,
			"status":                   post.Status,
			"target_reached":           post.TargetReached,
			"target_reached_date":      post.TargetReachedDate,
			"stop_loss_triggered":      post.StopLossTriggered,
			"stop_loss_triggered_date": post.StopLossTriggeredDate,
			"closed":                   post.Closed,
			"closed_date":              post.ClosedDate,
			"price_checks":             post.PriceChecks,
			"version":                  gorm.Expr("version + 1"),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return dto.ErrPersistConflict
	}
	post.Version = expectedVersion + 1
	return nil
}
