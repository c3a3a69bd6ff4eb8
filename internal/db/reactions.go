package db

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/memestream/memestream/internal/models"
	"github.com/memestream/memestream/internal/reaction"
)

// ReactionRepository persists reaction records and the counter
// increments they imply, atomically per transition.
type ReactionRepository struct {
	*Repository
}

// NewReactionRepository creates a new reaction repository
func NewReactionRepository(repo *Repository) *ReactionRepository {
	return &ReactionRepository{Repository: repo}
}

// Get retrieves the reaction record for a (user, item) pair
func (r *ReactionRepository) Get(ctx context.Context, userID, itemID string) (*models.ReactionRecord, error) {
	var rec models.ReactionRecord
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND item_id = ?", userID, itemID).
		First(&rec).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &rec, nil
}

// Apply writes one reaction transition in a single transaction: the
// content row is created if the item is unknown, the reaction record
// is written conditionally on the state it was computed from, and the
// counters are adjusted with atomic signed increments. A lost
// conditional write surfaces as reaction.ErrConcurrentUpdate.
func (r *ReactionRepository) Apply(ctx context.Context, t reaction.Transition) (*models.ReactionRecord, error) {
	now := time.Now().UTC()
	rec := models.ReactionRecord{
		UserID:      t.UserID,
		ItemID:      t.ItemID,
		Liked:       t.Liked,
		DoubleLiked: t.DoubleLiked,
		Downloaded:  t.Downloaded,
		UpdatedAt:   now,
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// First reaction to an unknown ID manufactures a placeholder
		// row attributed to the reacting user.
		placeholder := models.ContentItem{
			ID:        t.ItemID,
			AuthorID:  t.UserID,
			CreatedAt: now,
			MediaKind: models.DeriveMediaKind(t.ItemID),
		}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&placeholder).Error; err != nil {
			return err
		}

		if t.Create {
			res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&rec)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return reaction.ErrConcurrentUpdate
			}
		} else {
			res := tx.Model(&models.ReactionRecord{}).
				Where("user_id = ? AND item_id = ? AND updated_at = ?", t.UserID, t.ItemID, t.ExpectedUpdatedAt).
				Updates(map[string]interface{}{
					"liked":        t.Liked,
					"double_liked": t.DoubleLiked,
					"downloaded":   t.Downloaded,
					"updated_at":   now,
				})
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return reaction.ErrConcurrentUpdate
			}
		}

		if t.LikeDelta != 0 || t.DownloadDelta != 0 {
			updates := map[string]interface{}{}
			if t.LikeDelta != 0 {
				updates["like_count"] = gorm.Expr("like_count + ?", t.LikeDelta)
			}
			if t.DownloadDelta != 0 {
				updates["download_count"] = gorm.Expr("download_count + ?", t.DownloadDelta)
			}
			if err := tx.Model(&models.ContentItem{}).
				Where("id = ?", t.ItemID).
				Updates(updates).Error; err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}
	return &rec, nil
}
