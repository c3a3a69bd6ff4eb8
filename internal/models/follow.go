package models

import (
	"time"
)

// Follow edge kinds
const (
	FollowKindFollows = "follows"
)

// FollowEdge represents a follower-to-followee relationship. At most
// one edge per (follower, followee, kind); self-edges are rejected at
// the service layer. This core only reads edges, follow/unfollow
// actions are owned by an external collaborator.
type FollowEdge struct {
	FollowerID string    `gorm:"primaryKey;type:varchar(255);column:follower_id"`
	FolloweeID string    `gorm:"primaryKey;type:varchar(255);column:followee_id"`
	Kind       string    `gorm:"primaryKey;type:varchar(16);default:'follows';column:kind"`
	CreatedAt  time.Time `gorm:"not null;column:created_at"`
}

// TableName specifies the table name for FollowEdge
func (FollowEdge) TableName() string {
	return "follow_edges"
}
