package db

import (
	"context"
	"time"

	"gorm.io/gorm/clause"

	"github.com/memestream/memestream/internal/models"
)

// ViewRepository provides view history database operations. One row is
// kept per (user, item) pair with its own expiry; recording the same
// pair twice is a no-op.
type ViewRepository struct {
	*Repository
	retention time.Duration
}

// NewViewRepository creates a new view repository
func NewViewRepository(repo *Repository, retention time.Duration) *ViewRepository {
	return &ViewRepository{Repository: repo, retention: retention}
}

// RecordViews marks the given items as seen by the user. Existing
// non-expired rows are left untouched so the original expiry window is
// preserved.
func (r *ViewRepository) RecordViews(ctx context.Context, userID string, itemIDs []string) error {
	if len(itemIDs) == 0 {
		return nil
	}

	now := time.Now().UTC()
	records := make([]models.ViewRecord, 0, len(itemIDs))
	for _, id := range itemIDs {
		if id == "" {
			continue
		}
		records = append(records, models.ViewRecord{
			UserID:    userID,
			ItemID:    id,
			CreatedAt: now,
			ExpiresAt: now.Add(r.retention),
		})
	}
	if len(records) == 0 {
		return nil
	}

	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&records).Error
}

// SeenSet returns the IDs of all items the user has been shown within
// the retention window. Expiry is filtered here rather than relying on
// storage garbage collection, which may lag real time.
func (r *ViewRepository) SeenSet(ctx context.Context, userID string) (map[string]struct{}, error) {
	var ids []string
	if err := r.db.WithContext(ctx).
		Model(&models.ViewRecord{}).
		Where("user_id = ? AND expires_at > ?", userID, time.Now().UTC()).
		Pluck("item_id", &ids).Error; err != nil {
		return nil, err
	}

	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		seen[id] = struct{}{}
	}
	return seen, nil
}

// PurgeExpired deletes rows past their expiry. Reads never depend on
// this; it only keeps the table from growing without bound.
func (r *ViewRepository) PurgeExpired(ctx context.Context) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("expires_at <= ?", time.Now().UTC()).
		Delete(&models.ViewRecord{})
	return res.RowsAffected, res.Error
}
