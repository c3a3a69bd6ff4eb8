package models

import (
	"path"
	"strings"
	"time"
)

// Media kind constants
const (
	MediaKindImage = "image"
	MediaKindVideo = "video"
)

// ContentItem represents an uploaded meme. The ID doubles as the
// storage object key. Counter columns are denormalized aggregates and
// are only ever adjusted with signed increments, never overwritten.
type ContentItem struct {
	ID            string    `gorm:"primaryKey;type:varchar(255);column:id"`
	AuthorID      string    `gorm:"type:varchar(255);not null;index:idx_items_author_created;column:author_id"`
	CreatedAt     time.Time `gorm:"not null;index:idx_items_author_created;index:idx_items_created;column:created_at"`
	MediaKind     string    `gorm:"type:varchar(8);not null;default:'image';column:media_kind"`
	Caption       string    `gorm:"type:varchar(1024);column:caption"`
	LikeCount     int64     `gorm:"not null;default:0;index:idx_items_popularity,sort:desc;column:like_count"`
	DownloadCount int64     `gorm:"not null;default:0;column:download_count"`
	CommentCount  int64     `gorm:"not null;default:0;column:comment_count"`
	ShareCount    int64     `gorm:"not null;default:0;column:share_count"`
}

// TableName specifies the table name for ContentItem
func (ContentItem) TableName() string {
	return "meme_items"
}

// videoExtensions maps storage key extensions classified as video
var videoExtensions = map[string]bool{
	".mp4":  true,
	".mov":  true,
	".webm": true,
	".avi":  true,
	".mkv":  true,
}

// DeriveMediaKind classifies a storage object key by its extension.
func DeriveMediaKind(objectKey string) string {
	ext := strings.ToLower(path.Ext(objectKey))
	if videoExtensions[ext] {
		return MediaKindVideo
	}
	return MediaKindImage
}
