// Package feed assembles personalized, view-deduplicated content pages.
package feed

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/memestream/memestream/internal/models"
	"github.com/memestream/memestream/pkg/retry"
	"github.com/memestream/memestream/pkg/telemetry"
)

// ErrMissingViewer is returned when GetFeedPage is called without a
// viewer identity.
var ErrMissingViewer = errors.New("viewer ID is required")

// ContentScanner scans the content catalog in bounded batches.
type ContentScanner interface {
	ScanBatch(ctx context.Context, after *ScanPosition, limit int) ([]models.ContentItem, error)
}

// ViewHistory records and reports what a viewer has already been shown.
type ViewHistory interface {
	SeenSet(ctx context.Context, userID string) (map[string]struct{}, error)
	RecordViews(ctx context.Context, userID string, itemIDs []string) error
}

// FollowResolver annotates a page's authors with follow status.
type FollowResolver interface {
	ResolveFollowStatus(ctx context.Context, viewerID string, candidateIDs []string) map[string]bool
}

// AuthorDirectory loads author profiles for a page in one query.
type AuthorDirectory interface {
	GetByEmails(ctx context.Context, emails []string) (map[string]models.User, error)
}

// Item is one annotated feed entry. IsFollowed is nil when the item's
// author is the viewer.
type Item struct {
	models.ContentItem
	URL        string
	Author     models.User
	IsFollowed *bool
}

// Page is one assembled feed page. NextCursor is empty once the
// catalog scan is exhausted.
type Page struct {
	Items      []Item
	NextCursor string
}

// Options bound the assembler's work per request.
type Options struct {
	DefaultPageSize int
	MaxPageSize     int
	ScanBatchSize   int
	MaxScanBatches  int
	RequestTimeout  time.Duration
	MediaBaseURL    string
}

// Assembler builds feed pages: scan the catalog, drop seen items,
// annotate authors, record what was shown.
type Assembler struct {
	content ContentScanner
	views   ViewHistory
	follows FollowResolver
	authors AuthorDirectory
	opts    Options
	logger  *zap.Logger
}

// NewAssembler creates a new feed assembler
func NewAssembler(content ContentScanner, views ViewHistory, follows FollowResolver, authors AuthorDirectory, opts Options, logger *zap.Logger) *Assembler {
	return &Assembler{
		content: content,
		views:   views,
		follows: follows,
		authors: authors,
		opts:    opts,
		logger:  logger.With(zap.String("component", "feed-assembler")),
	}
}

// GetFeedPage returns up to pageSize items the viewer has not seen
// within the retention window, resuming the catalog scan at the given
// cursor. The scan is bounded by MaxScanBatches and the request
// timeout, so a page may legitimately come back short with a non-empty
// cursor.
func (a *Assembler) GetFeedPage(ctx context.Context, viewerID string, pageSize int, cursorToken string) (*Page, error) {
	ctx, span := telemetry.StartSpan(ctx, "feed.get_page")
	defer span.End()

	if strings.TrimSpace(viewerID) == "" {
		return nil, ErrMissingViewer
	}
	if pageSize <= 0 {
		pageSize = a.opts.DefaultPageSize
	}
	if pageSize > a.opts.MaxPageSize {
		pageSize = a.opts.MaxPageSize
	}

	pos, err := DecodeCursor(cursorToken)
	if err != nil {
		return nil, err
	}

	if a.opts.RequestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.opts.RequestTimeout)
		defer cancel()
	}

	seen, err := a.loadSeenSet(ctx, viewerID)
	if err != nil {
		return nil, fmt.Errorf("load seen set: %w", err)
	}

	accumulated, pos, exhausted, err := a.scan(ctx, viewerID, pos, seen, pageSize)
	if err != nil {
		return nil, err
	}

	items, err := a.annotate(ctx, viewerID, accumulated)
	if err != nil {
		return nil, err
	}

	// Recording happens only after the page is fully built; a failed
	// build must not mark anything as seen.
	if len(items) > 0 {
		ids := make([]string, len(items))
		for i, it := range items {
			ids[i] = it.ID
		}
		if err := a.views.RecordViews(ctx, viewerID, ids); err != nil {
			return nil, fmt.Errorf("record views: %w", err)
		}
	}

	page := &Page{Items: items}
	if !exhausted {
		page.NextCursor = EncodeCursor(pos)
	}
	return page, nil
}

// loadSeenSet reads the viewer's exclusion set with bounded retry.
func (a *Assembler) loadSeenSet(ctx context.Context, viewerID string) (map[string]struct{}, error) {
	var seen map[string]struct{}
	err := retry.Do(ctx, retry.DefaultAttempts, 50*time.Millisecond, func() error {
		var rerr error
		seen, rerr = a.views.SeenSet(ctx, viewerID)
		return rerr
	})
	return seen, err
}

// scan consumes the catalog item by item so the returned position is
// always the last row actually consumed; items past the page boundary
// stay ahead of the cursor and are not lost to truncation.
func (a *Assembler) scan(ctx context.Context, viewerID string, pos *ScanPosition, seen map[string]struct{}, pageSize int) ([]models.ContentItem, *ScanPosition, bool, error) {
	var accumulated []models.ContentItem
	exhausted := false

	for batch := 0; batch < a.opts.MaxScanBatches; batch++ {
		if deadlineNear(ctx) {
			a.logger.Debug("feed scan stopping on request deadline",
				zap.String("viewer", viewerID),
				zap.Int("accumulated", len(accumulated)))
			break
		}

		var items []models.ContentItem
		err := retry.Do(ctx, retry.DefaultAttempts, 50*time.Millisecond, func() error {
			var serr error
			items, serr = a.content.ScanBatch(ctx, pos, a.opts.ScanBatchSize)
			return serr
		})
		if err != nil {
			return nil, nil, false, fmt.Errorf("scan content batch: %w", err)
		}

		for _, item := range items {
			pos = &ScanPosition{CreatedAt: item.CreatedAt, ID: item.ID}
			if _, ok := seen[item.ID]; ok {
				continue
			}
			accumulated = append(accumulated, item)
			if len(accumulated) >= pageSize {
				// Mid-batch stop: the cursor points at this item, the
				// rest of the batch is rescanned next page.
				if len(items) < a.opts.ScanBatchSize && item.ID == items[len(items)-1].ID {
					exhausted = true
				}
				return accumulated, pos, exhausted, nil
			}
		}

		if len(items) < a.opts.ScanBatchSize {
			exhausted = true
			break
		}
	}

	return accumulated, pos, exhausted, nil
}

// annotate loads author profiles and follow status for the page.
func (a *Assembler) annotate(ctx context.Context, viewerID string, accumulated []models.ContentItem) ([]Item, error) {
	if len(accumulated) == 0 {
		return []Item{}, nil
	}

	distinct := make([]string, 0, len(accumulated))
	seenAuthors := make(map[string]struct{}, len(accumulated))
	for _, item := range accumulated {
		if _, ok := seenAuthors[item.AuthorID]; ok {
			continue
		}
		seenAuthors[item.AuthorID] = struct{}{}
		distinct = append(distinct, item.AuthorID)
	}

	authors, err := a.authors.GetByEmails(ctx, distinct)
	if err != nil {
		return nil, fmt.Errorf("load authors: %w", err)
	}

	candidates := make([]string, 0, len(distinct))
	for _, id := range distinct {
		if id != viewerID {
			candidates = append(candidates, id)
		}
	}
	statuses := a.follows.ResolveFollowStatus(ctx, viewerID, candidates)

	items := make([]Item, len(accumulated))
	for i, content := range accumulated {
		item := Item{
			ContentItem: content,
			URL:         a.mediaURL(content.ID),
			Author:      authors[content.AuthorID],
		}
		if content.AuthorID != viewerID {
			followed := statuses[content.AuthorID]
			item.IsFollowed = &followed
		}
		items[i] = item
	}
	return items, nil
}

func (a *Assembler) mediaURL(objectKey string) string {
	base := strings.TrimSuffix(a.opts.MediaBaseURL, "/")
	if base == "" {
		return objectKey
	}
	return base + "/" + objectKey
}

// deadlineNear reports whether the request budget is close enough to
// exhaustion that another storage round trip is not worth starting.
func deadlineNear(ctx context.Context) bool {
	if ctx.Err() != nil {
		return true
	}
	deadline, ok := ctx.Deadline()
	if !ok {
		return false
	}
	return time.Until(deadline) < 250*time.Millisecond
}
