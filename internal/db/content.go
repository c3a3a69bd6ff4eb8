package db

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/memestream/memestream/internal/feed"
	"github.com/memestream/memestream/internal/models"
)

// Repository provides database access methods
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new repository
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// ContentRepository provides content item database operations
type ContentRepository struct {
	*Repository
}

// NewContentRepository creates a new content repository
func NewContentRepository(repo *Repository) *ContentRepository {
	return &ContentRepository{Repository: repo}
}

// GetByID retrieves a content item by ID
func (r *ContentRepository) GetByID(ctx context.Context, id string) (*models.ContentItem, error) {
	var item models.ContentItem
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&item).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &item, nil
}

// ScanBatch returns up to limit items in catalog order (newest first),
// resuming strictly after the given position. A nil position starts at
// the head of the catalog.
func (r *ContentRepository) ScanBatch(ctx context.Context, after *feed.ScanPosition, limit int) ([]models.ContentItem, error) {
	q := r.db.WithContext(ctx).
		Order("created_at DESC, id DESC").
		Limit(limit)
	if after != nil {
		q = q.Where("(created_at, id) < (?, ?)", after.CreatedAt, after.ID)
	}

	var items []models.ContentItem
	if err := q.Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// ListByPopularity returns up to limit items ordered by like count.
func (r *ContentRepository) ListByPopularity(ctx context.Context, limit int) ([]models.ContentItem, error) {
	var items []models.ContentItem
	if err := r.db.WithContext(ctx).
		Order("like_count DESC, created_at DESC").
		Limit(limit).
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// Create creates a new content item
func (r *ContentRepository) Create(ctx context.Context, item *models.ContentItem) error {
	return r.db.WithContext(ctx).Create(item).Error
}
