package models

import (
	"time"
)

// User carries the profile fields the feed attaches to each item's
// author. Profile CRUD belongs to an external collaborator; this core
// only reads users.
type User struct {
	Email         string    `gorm:"primaryKey;type:varchar(255);column:email"`
	Username      string    `gorm:"type:varchar(64);column:username"`
	ProfilePicURL string    `gorm:"type:varchar(1024);column:profile_pic_url"`
	Bio           string    `gorm:"type:varchar(1024);column:bio"`
	CreatedAt     time.Time `gorm:"not null;column:created_at"`
}

// TableName specifies the table name for User
func (User) TableName() string {
	return "users"
}
