package db

import (
	"context"

	"github.com/memestream/memestream/internal/models"
)

// RelationshipRepository provides read access to the follow edge list.
// Edge creation and removal belong to the follow/unfollow
// collaborators; this core only resolves edges.
type RelationshipRepository struct {
	*Repository
}

// NewRelationshipRepository creates a new relationship repository
func NewRelationshipRepository(repo *Repository) *RelationshipRepository {
	return &RelationshipRepository{Repository: repo}
}

// Exists reports whether follower follows followee.
func (r *RelationshipRepository) Exists(ctx context.Context, followerID, followeeID string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.FollowEdge{}).
		Where("follower_id = ? AND followee_id = ? AND kind = ?", followerID, followeeID, models.FollowKindFollows).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// ExistingFollowees returns the subset of candidateIDs the follower
// has an edge to, in one query.
func (r *RelationshipRepository) ExistingFollowees(ctx context.Context, followerID string, candidateIDs []string) ([]string, error) {
	if len(candidateIDs) == 0 {
		return nil, nil
	}

	var followees []string
	if err := r.db.WithContext(ctx).
		Model(&models.FollowEdge{}).
		Where("follower_id = ? AND followee_id IN ? AND kind = ?", followerID, candidateIDs, models.FollowKindFollows).
		Pluck("followee_id", &followees).Error; err != nil {
		return nil, err
	}
	return followees, nil
}
