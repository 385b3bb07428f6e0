package repository

import (
	"context"
	"errors"

	"murmur/internal/cache"
	"murmur/internal/models"
	"murmur/internal/observability"

	"gorm.io/gorm"
)

// LikeRepository defines the interface for like data operations.
// The (post, user) uniqueness constraint lives in the database; Insert
// surfaces a violating concurrent insert as gorm.ErrDuplicatedKey rather than
// silently succeeding.
type LikeRepository interface {
	Insert(ctx context.Context, like *models.Like) error
	GetByPostAndUser(ctx context.Context, postID, userID string) (*models.Like, error)
	Delete(ctx context.Context, postID, userID string) error
	CountByPost(ctx context.Context, postID string) (int64, error)
	DeleteByPost(ctx context.Context, postID string) error
	DeleteAll(ctx context.Context) error
}

type likeRepository struct {
	db  *gorm.DB
	log *observability.RepoLogger
}

// NewLikeRepository creates a new like repository
func NewLikeRepository(db *gorm.DB) LikeRepository {
	return &likeRepository{db: db, log: observability.NewRepoLogger("likes")}
}

func (r *likeRepository) Insert(ctx context.Context, like *models.Like) error {
	if err := r.db.WithContext(ctx).Create(like).Error; err != nil {
		// a lost toggle race surfaces here as a duplicate key; not an error
		// worth logging
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			r.log.LogError(ctx, err, "insert")
		}
		return err
	}
	r.log.LogWrite(ctx, "insert", map[string]interface{}{
		"post_id": like.PostID,
		"user_id": like.UserID,
	})
	cache.InvalidatePost(ctx, like.PostID)
	cache.InvalidateFeed(ctx)
	return nil
}

func (r *likeRepository) GetByPostAndUser(ctx context.Context, postID, userID string) (*models.Like, error) {
	var like models.Like
	err := r.db.WithContext(ctx).
		Where("post_id = ? AND user_id = ?", postID, userID).
		First(&like).Error
	if err != nil {
		return nil, err
	}
	return &like, nil
}

func (r *likeRepository) Delete(ctx context.Context, postID, userID string) error {
	err := r.db.WithContext(ctx).
		Where("post_id = ? AND user_id = ?", postID, userID).
		Delete(&models.Like{}).Error
	if err != nil {
		r.log.LogError(ctx, err, "delete")
		return err
	}
	cache.InvalidatePost(ctx, postID)
	cache.InvalidateFeed(ctx)
	return nil
}

func (r *likeRepository) CountByPost(ctx context.Context, postID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Like{}).
		Where("post_id = ?", postID).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

func (r *likeRepository) DeleteByPost(ctx context.Context, postID string) error {
	err := r.db.WithContext(ctx).
		Where("post_id = ?", postID).
		Delete(&models.Like{}).Error
	if err != nil {
		r.log.LogError(ctx, err, "delete_by_post")
		return err
	}
	cache.InvalidatePost(ctx, postID)
	cache.InvalidateFeed(ctx)
	return nil
}

func (r *likeRepository) DeleteAll(ctx context.Context) error {
	err := r.db.WithContext(ctx).
		Session(&gorm.Session{AllowGlobalUpdate: true}).
		Delete(&models.Like{}).Error
	if err != nil {
		r.log.LogError(ctx, err, "delete_all")
		return err
	}
	cache.InvalidateFeed(ctx)
	return nil
}
