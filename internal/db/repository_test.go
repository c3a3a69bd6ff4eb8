package db

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/memestream/memestream/internal/feed"
	"github.com/memestream/memestream/internal/models"
	"github.com/memestream/memestream/internal/reaction"
)

// testRepository opens an isolated in-memory database per test.
func testRepository(t *testing.T) *Repository {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	require.NoError(t, err)

	require.NoError(t, gdb.AutoMigrate(
		&models.ContentItem{},
		&models.ViewRecord{},
		&models.FollowEdge{},
		&models.ReactionRecord{},
		&models.User{},
	))

	return NewRepository(gdb)
}

func TestViewRepository(t *testing.T) {
	repo := testRepository(t)
	views := NewViewRepository(repo, 30*24*time.Hour)
	ctx := context.Background()

	require.NoError(t, views.RecordViews(ctx, "a@x.com", []string{"m1", "m2"}))
	// Recording the same IDs again is a no-op, not an error.
	require.NoError(t, views.RecordViews(ctx, "a@x.com", []string{"m2", "m3"}))

	seen, err := views.SeenSet(ctx, "a@x.com")
	require.NoError(t, err)
	assert.Len(t, seen, 3)

	// Another user's history is independent.
	other, err := views.SeenSet(ctx, "b@x.com")
	require.NoError(t, err)
	assert.Empty(t, other)
}

func TestViewRepositoryFiltersExpired(t *testing.T) {
	repo := testRepository(t)
	ctx := context.Background()

	// Rows written with a negative retention are already expired.
	expired := NewViewRepository(repo, -time.Hour)
	require.NoError(t, expired.RecordViews(ctx, "a@x.com", []string{"old1", "old2"}))

	views := NewViewRepository(repo, 30*24*time.Hour)
	require.NoError(t, views.RecordViews(ctx, "a@x.com", []string{"fresh"}))

	seen, err := views.SeenSet(ctx, "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, map[string]struct{}{"fresh": {}}, seen)

	purged, err := views.PurgeExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), purged)
}

func TestContentRepositoryScanBatch(t *testing.T) {
	repo := testRepository(t)
	content := NewContentRepository(repo)
	ctx := context.Background()

	base := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	for i := 1; i <= 7; i++ {
		require.NoError(t, content.Create(ctx, &models.ContentItem{
			ID:        fmt.Sprintf("meme-%d.png", i),
			AuthorID:  "author@x.com",
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
			MediaKind: models.MediaKindImage,
		}))
	}

	// First batch: newest three.
	batch, err := content.ScanBatch(ctx, nil, 3)
	require.NoError(t, err)
	require.Len(t, batch, 3)
	assert.Equal(t, "meme-7.png", batch[0].ID)
	assert.Equal(t, "meme-5.png", batch[2].ID)

	// Resume strictly after the last consumed row.
	pos := &feed.ScanPosition{CreatedAt: batch[2].CreatedAt, ID: batch[2].ID}
	batch, err = content.ScanBatch(ctx, pos, 3)
	require.NoError(t, err)
	require.Len(t, batch, 3)
	assert.Equal(t, "meme-4.png", batch[0].ID)

	pos = &feed.ScanPosition{CreatedAt: batch[2].CreatedAt, ID: batch[2].ID}
	batch, err = content.ScanBatch(ctx, pos, 3)
	require.NoError(t, err)
	require.Len(t, batch, 1, "scan must terminate at catalog end")
	assert.Equal(t, "meme-1.png", batch[0].ID)
}

func TestContentRepositoryScanBatchTieBreak(t *testing.T) {
	repo := testRepository(t)
	content := NewContentRepository(repo)
	ctx := context.Background()

	ts := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	for _, id := range []string{"a.png", "b.png", "c.png"} {
		require.NoError(t, content.Create(ctx, &models.ContentItem{
			ID:        id,
			AuthorID:  "author@x.com",
			CreatedAt: ts,
			MediaKind: models.MediaKindImage,
		}))
	}

	batch, err := content.ScanBatch(ctx, nil, 2)
	require.NoError(t, err)
	require.Len(t, batch, 2)
	assert.Equal(t, "c.png", batch[0].ID)
	assert.Equal(t, "b.png", batch[1].ID)

	pos := &feed.ScanPosition{CreatedAt: ts, ID: "b.png"}
	batch, err = content.ScanBatch(ctx, pos, 2)
	require.NoError(t, err)
	require.Len(t, batch, 1)
	assert.Equal(t, "a.png", batch[0].ID)
}

func TestContentRepositoryListByPopularity(t *testing.T) {
	repo := testRepository(t)
	content := NewContentRepository(repo)
	ctx := context.Background()

	base := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	likes := []int64{3, 12, 7}
	for i, n := range likes {
		require.NoError(t, content.Create(ctx, &models.ContentItem{
			ID:        fmt.Sprintf("meme-%d.png", i),
			AuthorID:  "author@x.com",
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
			MediaKind: models.MediaKindImage,
			LikeCount: n,
		}))
	}

	items, err := content.ListByPopularity(ctx, 2)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, int64(12), items[0].LikeCount)
	assert.Equal(t, int64(7), items[1].LikeCount)
}

func TestRelationshipRepository(t *testing.T) {
	repo := testRepository(t)
	rels := NewRelationshipRepository(repo)
	ctx := context.Background()

	edges := []models.FollowEdge{
		{FollowerID: "a@x.com", FolloweeID: "b@x.com", Kind: models.FollowKindFollows, CreatedAt: time.Now().UTC()},
		{FollowerID: "a@x.com", FolloweeID: "c@x.com", Kind: models.FollowKindFollows, CreatedAt: time.Now().UTC()},
		{FollowerID: "b@x.com", FolloweeID: "d@x.com", Kind: models.FollowKindFollows, CreatedAt: time.Now().UTC()},
	}
	require.NoError(t, repo.db.Create(&edges).Error)

	ok, err := rels.Exists(ctx, "a@x.com", "b@x.com")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = rels.Exists(ctx, "a@x.com", "d@x.com")
	require.NoError(t, err)
	assert.False(t, ok)

	followees, err := rels.ExistingFollowees(ctx, "a@x.com", []string{"b@x.com", "c@x.com", "d@x.com", "missing@x.com"})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"b@x.com", "c@x.com"}, followees)

	followees, err = rels.ExistingFollowees(ctx, "a@x.com", nil)
	require.NoError(t, err)
	assert.Empty(t, followees)
}

func TestUserRepositoryGetByEmails(t *testing.T) {
	repo := testRepository(t)
	users := NewUserRepository(repo)
	ctx := context.Background()

	require.NoError(t, repo.db.Create(&[]models.User{
		{Email: "a@x.com", Username: "alice", CreatedAt: time.Now().UTC()},
		{Email: "b@x.com", Username: "bob", CreatedAt: time.Now().UTC()},
	}).Error)

	byEmail, err := users.GetByEmails(ctx, []string{"a@x.com", "b@x.com", "ghost@x.com"})
	require.NoError(t, err)
	assert.Len(t, byEmail, 2)
	assert.Equal(t, "alice", byEmail["a@x.com"].Username)

	u, err := users.GetByEmail(ctx, "ghost@x.com")
	require.NoError(t, err)
	assert.Nil(t, u, "missing user is not an error")
}

func TestReactionRepositoryApplyCreate(t *testing.T) {
	repo := testRepository(t)
	reactions := NewReactionRepository(repo)
	content := NewContentRepository(repo)
	ctx := context.Background()

	require.NoError(t, content.Create(ctx, &models.ContentItem{
		ID:        "m1.png",
		AuthorID:  "author@x.com",
		CreatedAt: time.Now().UTC(),
		MediaKind: models.MediaKindImage,
		LikeCount: 10,
	}))

	rec, err := reactions.Apply(ctx, reaction.Transition{
		UserID:      "u@x.com",
		ItemID:      "m1.png",
		Create:      true,
		DoubleLiked: true,
		LikeDelta:   2,
	})
	require.NoError(t, err)
	assert.True(t, rec.DoubleLiked)

	item, err := content.GetByID(ctx, "m1.png")
	require.NoError(t, err)
	assert.Equal(t, int64(12), item.LikeCount)
	assert.Equal(t, "author@x.com", item.AuthorID, "existing item must not be overwritten by the placeholder")
}

func TestReactionRepositoryApplyUpdateCAS(t *testing.T) {
	repo := testRepository(t)
	reactions := NewReactionRepository(repo)
	content := NewContentRepository(repo)
	ctx := context.Background()

	rec, err := reactions.Apply(ctx, reaction.Transition{
		UserID:    "u@x.com",
		ItemID:    "m1.png",
		Create:    true,
		Liked:     true,
		LikeDelta: 1,
	})
	require.NoError(t, err)

	// Conditional update keyed on the state we read.
	updated, err := reactions.Apply(ctx, reaction.Transition{
		UserID:            "u@x.com",
		ItemID:            "m1.png",
		ExpectedUpdatedAt: rec.UpdatedAt,
		Liked:             false,
		LikeDelta:         -1,
	})
	require.NoError(t, err)
	assert.False(t, updated.Liked)

	item, err := content.GetByID(ctx, "m1.png")
	require.NoError(t, err)
	assert.Equal(t, int64(0), item.LikeCount)

	// Replaying the same transition must lose the CAS and leave the
	// counter untouched.
	_, err = reactions.Apply(ctx, reaction.Transition{
		UserID:            "u@x.com",
		ItemID:            "m1.png",
		ExpectedUpdatedAt: rec.UpdatedAt,
		Liked:             false,
		LikeDelta:         -1,
	})
	assert.ErrorIs(t, err, reaction.ErrConcurrentUpdate)

	item, err = content.GetByID(ctx, "m1.png")
	require.NoError(t, err)
	assert.Equal(t, int64(0), item.LikeCount, "lost CAS must not apply counter deltas")
}

func TestReactionRepositoryApplyCreateConflict(t *testing.T) {
	repo := testRepository(t)
	reactions := NewReactionRepository(repo)
	ctx := context.Background()

	_, err := reactions.Apply(ctx, reaction.Transition{
		UserID: "u@x.com", ItemID: "m1.png", Create: true, Liked: true, LikeDelta: 1,
	})
	require.NoError(t, err)

	// A second insert for the same pair means another request created
	// the record first.
	_, err = reactions.Apply(ctx, reaction.Transition{
		UserID: "u@x.com", ItemID: "m1.png", Create: true, Liked: true, LikeDelta: 1,
	})
	assert.ErrorIs(t, err, reaction.ErrConcurrentUpdate)
}

func TestReactionRepositoryCreatesPlaceholder(t *testing.T) {
	repo := testRepository(t)
	reactions := NewReactionRepository(repo)
	content := NewContentRepository(repo)
	ctx := context.Background()

	_, err := reactions.Apply(ctx, reaction.Transition{
		UserID: "u@x.com", ItemID: "unknown-clip.mp4", Create: true, Liked: true, LikeDelta: 1,
	})
	require.NoError(t, err)

	item, err := content.GetByID(ctx, "unknown-clip.mp4")
	require.NoError(t, err)
	require.NotNil(t, item)
	assert.Equal(t, "u@x.com", item.AuthorID)
	assert.Equal(t, models.MediaKindVideo, item.MediaKind)
	assert.Equal(t, int64(1), item.LikeCount)
}

func TestReactionRepositoryGet(t *testing.T) {
	repo := testRepository(t)
	reactions := NewReactionRepository(repo)
	ctx := context.Background()

	rec, err := reactions.Get(ctx, "u@x.com", "m1.png")
	require.NoError(t, err)
	assert.Nil(t, rec, "missing record is not an error")

	_, err = reactions.Apply(ctx, reaction.Transition{
		UserID: "u@x.com", ItemID: "m1.png", Create: true, Downloaded: true, DownloadDelta: 1,
	})
	require.NoError(t, err)

	rec, err = reactions.Get(ctx, "u@x.com", "m1.png")
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.True(t, rec.Downloaded)
}
