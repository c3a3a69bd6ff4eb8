// Package reaction maintains per-user reaction state and the
// denormalized counters it drives on content items.
package reaction

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/memestream/memestream/internal/models"
	"github.com/memestream/memestream/pkg/telemetry"
)

// ErrConcurrentUpdate is returned by a Store when the conditional
// reaction write lost a race with another request for the same
// (user, item) pair.
var ErrConcurrentUpdate = errors.New("reaction record changed concurrently")

// Transition is one atomic reaction step: the new record state, the
// compare-and-swap token guarding it, and the counter deltas to apply
// to the content item in the same transaction.
type Transition struct {
	UserID string
	ItemID string

	// Create is set when no record existed at read time; the write
	// must then be an insert that fails on conflict instead of a
	// conditional update.
	Create            bool
	ExpectedUpdatedAt time.Time

	Liked       bool
	DoubleLiked bool
	Downloaded  bool

	LikeDelta     int64
	DownloadDelta int64
}

// Store persists reaction transitions. Apply must be atomic: record
// write and counter increments either both happen or neither does.
type Store interface {
	Get(ctx context.Context, userID, itemID string) (*models.ReactionRecord, error)
	Apply(ctx context.Context, t Transition) (*models.ReactionRecord, error)
}

// Toggles carries the requested reaction changes. Each field flips the
// corresponding state; Download is one-directional and ignored once
// set.
type Toggles struct {
	Like       bool
	DoubleLike bool
	Download   bool
}

// Ledger orchestrates reaction state transitions
type Ledger struct {
	store   Store
	retries int
	logger  *zap.Logger
}

// NewLedger creates a new reaction ledger. retries is the number of
// extra read-compute-write rounds attempted after a concurrent-update
// conflict.
func NewLedger(store Store, retries int, logger *zap.Logger) *Ledger {
	if retries < 0 {
		retries = 0
	}
	return &Ledger{
		store:   store,
		retries: retries,
		logger:  logger.With(zap.String("component", "reaction-ledger")),
	}
}

// ApplyReaction applies the requested toggles for one (user, item)
// pair and returns the resulting record. Toggles that do not change
// state (download of an already-downloaded item, like while
// double-liked) are no-ops.
func (l *Ledger) ApplyReaction(ctx context.Context, userID, itemID string, tg Toggles) (*models.ReactionRecord, error) {
	ctx, span := telemetry.StartSpan(ctx, "reaction.apply")
	defer span.End()

	if userID == "" {
		return nil, fmt.Errorf("user ID is required")
	}
	if itemID == "" {
		return nil, fmt.Errorf("item ID is required")
	}

	var lastErr error
	for attempt := 0; attempt <= l.retries; attempt++ {
		rec, err := l.store.Get(ctx, userID, itemID)
		if err != nil {
			return nil, fmt.Errorf("read reaction state: %w", err)
		}

		t, changed := computeTransition(userID, itemID, rec, tg)
		if !changed {
			if rec == nil {
				rec = &models.ReactionRecord{UserID: userID, ItemID: itemID}
			}
			return rec, nil
		}

		applied, err := l.store.Apply(ctx, t)
		if err == nil {
			return applied, nil
		}
		if !errors.Is(err, ErrConcurrentUpdate) {
			return nil, fmt.Errorf("apply reaction transition: %w", err)
		}

		lastErr = err
		l.logger.Warn("reaction write conflict, re-reading",
			zap.String("user", userID),
			zap.String("item", itemID),
			zap.Int("attempt", attempt+1))
	}

	// State unknown to the caller; retrying blindly could double-apply
	// the toggle, so surface the conflict.
	return nil, fmt.Errorf("reaction not applied after %d attempts: %w", l.retries+1, lastErr)
}

// computeTransition derives the next record state and counter deltas
// from the current state and the requested toggles. The double-like
// toggle dominates: a like toggle is only honored when the resulting
// state is not double-liked.
func computeTransition(userID, itemID string, prev *models.ReactionRecord, tg Toggles) (Transition, bool) {
	var (
		liked, doubleLiked, downloaded bool
		expected                       time.Time
		create                         = prev == nil
	)
	if prev != nil {
		liked = prev.Liked
		doubleLiked = prev.DoubleLiked
		downloaded = prev.Downloaded
		expected = prev.UpdatedAt
	}

	var likeDelta, downloadDelta int64
	changed := false

	if tg.DoubleLike {
		if doubleLiked {
			doubleLiked = false
			likeDelta -= 2
		} else {
			delta := int64(2)
			if liked {
				// the like counter already holds +1 for this user
				delta = 1
				liked = false
			}
			doubleLiked = true
			likeDelta += delta
		}
		changed = true
	} else if tg.Like && !doubleLiked {
		if liked {
			liked = false
			likeDelta--
		} else {
			liked = true
			likeDelta++
		}
		changed = true
	}

	if tg.Download && !downloaded {
		downloaded = true
		downloadDelta = 1
		changed = true
	}

	return Transition{
		UserID:            userID,
		ItemID:            itemID,
		Create:            create,
		ExpectedUpdatedAt: expected,
		Liked:             liked,
		DoubleLiked:       doubleLiked,
		Downloaded:        downloaded,
		LikeDelta:         likeDelta,
		DownloadDelta:     downloadDelta,
	}, changed
}
