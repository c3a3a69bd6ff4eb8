// Package relation answers follow questions for the feed in batched
// form, one storage round trip per page.
package relation

import (
	"context"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/memestream/memestream/internal/cache"
	"github.com/memestream/memestream/pkg/retry"
)

// EdgeLister is the slice of the relationship store the resolver needs.
type EdgeLister interface {
	ExistingFollowees(ctx context.Context, followerID string, candidateIDs []string) ([]string, error)
}

// BatchResolver resolves viewer-to-candidate follow status for a whole
// feed page at once. Resolved batches are kept in a short-TTL cache
// keyed by the viewer and the candidate set, so repeated pages over the
// same authors skip storage entirely.
type BatchResolver struct {
	edges    EdgeLister
	statuses *cache.Cache
	cacheTTL time.Duration
	logger   *zap.Logger
}

// NewBatchResolver creates a new batch resolver. A nil cache disables
// the status cache and every lookup goes to storage.
func NewBatchResolver(edges EdgeLister, statusCache *cache.Cache, cacheTTL time.Duration, logger *zap.Logger) *BatchResolver {
	return &BatchResolver{
		edges:    edges,
		statuses: statusCache,
		cacheTTL: cacheTTL,
		logger:   logger.With(zap.String("component", "relation-resolver")),
	}
}

// cacheKey hashes the viewer and the sorted candidate set so the key is
// insensitive to candidate order.
func cacheKey(viewerID string, lookup []string) string {
	sorted := append([]string(nil), lookup...)
	sort.Strings(sorted)
	parts := append([]string{"follow_status", viewerID}, sorted...)
	return cache.HashKey(parts...)
}

// ResolveFollowStatus maps every candidate to whether the viewer
// follows it. Every input ID appears in the result exactly once; the
// viewer itself always resolves to false without touching storage.
// On lookup failure the whole map degrades to false rather than
// failing the feed; the follow badge is the documented casualty.
func (r *BatchResolver) ResolveFollowStatus(ctx context.Context, viewerID string, candidateIDs []string) map[string]bool {
	statuses := make(map[string]bool, len(candidateIDs))
	lookup := make([]string, 0, len(candidateIDs))
	for _, id := range candidateIDs {
		if _, dup := statuses[id]; dup {
			continue
		}
		statuses[id] = false
		if id != viewerID && id != "" {
			lookup = append(lookup, id)
		}
	}
	if len(lookup) == 0 {
		return statuses
	}

	key := cacheKey(viewerID, lookup)
	if r.statuses != nil {
		var cached map[string]bool
		if err := r.statuses.GetJSON(ctx, key, &cached); err == nil {
			for id, followed := range cached {
				statuses[id] = followed
			}
			return statuses
		}
	}

	var followees []string
	err := retry.Do(ctx, retry.DefaultAttempts, 50*time.Millisecond, func() error {
		var ferr error
		followees, ferr = r.edges.ExistingFollowees(ctx, viewerID, lookup)
		return ferr
	})
	if err != nil {
		r.logger.Warn("batch follow lookup failed, degrading to all-false",
			zap.String("viewer", viewerID),
			zap.Int("candidates", len(lookup)),
			zap.Error(err))
		return statuses
	}

	for _, id := range followees {
		statuses[id] = true
	}

	if r.statuses != nil {
		resolved := make(map[string]bool, len(lookup))
		for _, id := range lookup {
			resolved[id] = statuses[id]
		}
		if err := r.statuses.SetJSON(ctx, key, resolved, r.cacheTTL); err != nil {
			r.logger.Debug("follow status cache write failed", zap.Error(err))
		}
	}
	return statuses
}
