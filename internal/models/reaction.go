package models

import (
	"time"
)

// ReactionRecord holds a user's reaction state for one item. Liked and
// DoubleLiked are mutually exclusive; Downloaded is orthogonal and
// one-directional. UpdatedAt doubles as the compare-and-swap token for
// concurrent writes to the same pair.
type ReactionRecord struct {
	UserID      string    `gorm:"primaryKey;type:varchar(255);column:user_id"`
	ItemID      string    `gorm:"primaryKey;type:varchar(255);column:item_id"`
	Liked       bool      `gorm:"not null;default:false;column:liked"`
	DoubleLiked bool      `gorm:"not null;default:false;column:double_liked"`
	Downloaded  bool      `gorm:"not null;default:false;column:downloaded"`
	UpdatedAt   time.Time `gorm:"not null;column:updated_at"`
}

// TableName specifies the table name for ReactionRecord
func (ReactionRecord) TableName() string {
	return "meme_reactions"
}
