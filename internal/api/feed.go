package api

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/memestream/memestream/internal/feed"
	"github.com/memestream/memestream/pkg/logging"
)

// FeedAPI serves the fetchMemes operation
type FeedAPI struct {
	assembler *feed.Assembler
	logger    *zap.Logger
}

// NewFeedAPI creates a new feed API
func NewFeedAPI(assembler *feed.Assembler) *FeedAPI {
	return &FeedAPI{
		assembler: assembler,
		logger:    logging.GetLogger().With(zap.String("component", "api-feed")),
	}
}

type fetchMemesRequest struct {
	Operation        string `json:"operation"`
	UserEmail        string `json:"userEmail"`
	LastViewedMemeID string `json:"lastViewedMemeId"`
	Limit            int    `json:"limit"`
}

type memeUserPayload struct {
	Email         string `json:"email"`
	Username      string `json:"username"`
	ProfilePicURL string `json:"profilePicUrl"`
}

type memePayload struct {
	MemeID          string          `json:"memeID"`
	Email           string          `json:"email"`
	URL             string          `json:"url"`
	UploadTimestamp string          `json:"uploadTimestamp"`
	Username        string          `json:"username"`
	Caption         string          `json:"caption,omitempty"`
	LikeCount       int64           `json:"likeCount"`
	DownloadCount   int64           `json:"downloadCount"`
	CommentCount    int64           `json:"commentCount"`
	ShareCount      int64           `json:"shareCount"`
	ProfilePicURL   string          `json:"profilePicUrl"`
	MediaType       string          `json:"mediaType"`
	MemeUser        memeUserPayload `json:"memeUser"`
	IsFollowed      *bool           `json:"isFollowed"`
}

// FetchMemes handles the fetchMemes operation
func (f *FeedAPI) FetchMemes(c *gin.Context, body json.RawMessage) (*Result, error) {
	var req fetchMemesRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return nil, BadRequest("invalid fetchMemes request")
	}
	if req.UserEmail == "" {
		return nil, BadRequest("userEmail is required")
	}
	if err := requireSelf(c, req.UserEmail); err != nil {
		return nil, err
	}

	page, err := f.assembler.GetFeedPage(c.Request.Context(), req.UserEmail, req.Limit, req.LastViewedMemeID)
	if err != nil {
		switch {
		case errors.Is(err, feed.ErrBadCursor):
			return nil, BadRequest("invalid lastViewedMemeId cursor")
		case errors.Is(err, feed.ErrMissingViewer):
			return nil, BadRequest("userEmail is required")
		default:
			return nil, err
		}
	}

	memes := make([]memePayload, len(page.Items))
	for i, item := range page.Items {
		memes[i] = memePayload{
			MemeID:          item.ID,
			Email:           item.AuthorID,
			URL:             item.URL,
			UploadTimestamp: item.CreatedAt.UTC().Format(time.RFC3339),
			Username:        item.Author.Username,
			Caption:         item.Caption,
			LikeCount:       item.LikeCount,
			DownloadCount:   item.DownloadCount,
			CommentCount:    item.CommentCount,
			ShareCount:      item.ShareCount,
			ProfilePicURL:   item.Author.ProfilePicURL,
			MediaType:       item.MediaKind,
			MemeUser: memeUserPayload{
				Email:         item.Author.Email,
				Username:      item.Author.Username,
				ProfilePicURL: item.Author.ProfilePicURL,
			},
			IsFollowed: item.IsFollowed,
		}
	}

	var lastEvaluatedKey interface{}
	if page.NextCursor != "" {
		lastEvaluatedKey = page.NextCursor
	}

	return &Result{
		Data: gin.H{
			"memes":            memes,
			"lastEvaluatedKey": lastEvaluatedKey,
		},
	}, nil
}
