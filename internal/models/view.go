package models

import (
	"time"
)

// ViewRecord marks a content item as shown to a user. One row per
// (user, item) pair; expiry is passive, reads must filter on
// expires_at themselves rather than trust storage garbage collection.
type ViewRecord struct {
	UserID    string    `gorm:"primaryKey;type:varchar(255);column:user_id"`
	ItemID    string    `gorm:"primaryKey;type:varchar(255);column:item_id"`
	CreatedAt time.Time `gorm:"not null;column:created_at"`
	ExpiresAt time.Time `gorm:"not null;index:idx_views_expires;column:expires_at"`
}

// TableName specifies the table name for ViewRecord
func (ViewRecord) TableName() string {
	return "meme_views"
}
