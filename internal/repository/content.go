// Package repository provides the data access layer over the relational
// content store.
package repository

import (
	"context"
	"errors"

	"ripple/internal/cache"
	"ripple/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ContentRepository defines post and engagement data operations.
type ContentRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id string) (*models.Post, error)
	Recent(ctx context.Context, limit int) ([]*models.Post, error)
	RecentByAuthors(ctx context.Context, authorIDs []string, limit int) ([]*models.Post, error)
	CreateComment(ctx context.Context, comment *models.Comment) error
	Like(ctx context.Context, userID, postID string) error
	Unlike(ctx context.Context, userID, postID string) error
}

// contentRepository implements ContentRepository
type contentRepository struct {
	db *gorm.DB
}

// NewContentRepository creates a new content repository
func NewContentRepository(db *gorm.DB) ContentRepository {
	return &contentRepository{db: db}
}

func (r *contentRepository) Create(ctx context.Context, post *models.Post) error {
	err := r.db.WithContext(ctx).Create(post).Error
	if err == nil {
		cache.InvalidateRecentPosts(ctx)
		cache.Invalidate(ctx, cache.AuthorPostsKey(post.AuthorID))
	}
	return err
}

func (r *contentRepository) GetByID(ctx context.Context, id string) (*models.Post, error) {
	var post models.Post
	err := cache.Aside(ctx, cache.PostKey(id), &post, cache.PostTTL, func() error {
		return r.applyEngagementCounts(r.db.WithContext(ctx)).
			Preload("Author").
			First(&post, "posts.id = ?", id).Error
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, models.NewNotFoundError("Post", id)
	}
	if err != nil {
		return nil, err
	}
	return &post, nil
}

func (r *contentRepository) Recent(ctx context.Context, limit int) ([]*models.Post, error) {
	var posts []*models.Post
	err := cache.Aside(ctx, cache.RecentPostsKey(limit), &posts, cache.RecentPostsTTL, func() error {
		return r.applyEngagementCounts(r.db.WithContext(ctx)).
			Preload("Author").
			Order("posts.created_at DESC").
			Limit(limit).
			Find(&posts).Error
	})
	if err != nil {
		return nil, err
	}
	return posts, nil
}

func (r *contentRepository) RecentByAuthors(ctx context.Context, authorIDs []string, limit int) ([]*models.Post, error) {
	if len(authorIDs) == 0 {
		return nil, nil
	}
	// Not cached: the author set varies per caller and results feed directly
	// into ranking.
	var posts []*models.Post
	err := r.applyEngagementCounts(r.db.WithContext(ctx)).
		Preload("Author").
		Where("posts.author_id IN ?", authorIDs).
		Order("posts.created_at DESC").
		Limit(limit).
		Find(&posts).Error
	if err != nil {
		return nil, err
	}
	return posts, nil
}

func (r *contentRepository) CreateComment(ctx context.Context, comment *models.Comment) error {
	err := r.db.WithContext(ctx).Create(comment).Error
	if err == nil {
		cache.Invalidate(ctx, cache.PostKey(comment.PostID))
	}
	return err
}

// Like is idempotent: the composite primary key plus ON CONFLICT DO NOTHING
// absorbs concurrent duplicate likes without an error.
func (r *contentRepository) Like(ctx context.Context, userID, postID string) error {
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&models.Like{PostID: postID, UserID: userID}).Error
	if err == nil {
		cache.Invalidate(ctx, cache.PostKey(postID))
	}
	return err
}

func (r *contentRepository) Unlike(ctx context.Context, userID, postID string) error {
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND post_id = ?", userID, postID).
		Delete(&models.Like{}).Error
	if err == nil {
		cache.Invalidate(ctx, cache.PostKey(postID))
	}
	return err
}

// applyEngagementCounts adds subqueries to fetch like and comment counts in a
// single query.
func (r *contentRepository) applyEngagementCounts(db *gorm.DB) *gorm.DB {
	return db.Model(&models.Post{}).Select("posts.*, " +
		"(SELECT COUNT(*) FROM likes WHERE likes.post_id = posts.id) as likes_count, " +
		"(SELECT COUNT(*) FROM comments WHERE comments.post_id = posts.id) as comments_count")
}
