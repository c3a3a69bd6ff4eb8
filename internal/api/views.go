package api

import (
	"encoding/json"
	"fmt"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/memestream/memestream/internal/feed"
	"github.com/memestream/memestream/pkg/logging"
)

// ViewsAPI serves the recordMemeView operation. Feed assembly records
// views itself; this operation exists for clients that render content
// obtained outside the feed path.
type ViewsAPI struct {
	views  feed.ViewHistory
	logger *zap.Logger
}

// NewViewsAPI creates a new views API
func NewViewsAPI(views feed.ViewHistory) *ViewsAPI {
	return &ViewsAPI{
		views:  views,
		logger: logging.GetLogger().With(zap.String("component", "api-views")),
	}
}

type memeViewEntry struct {
	Email   string   `json:"email"`
	MemeIDs []string `json:"memeIDs"`
}

type recordMemeViewRequest struct {
	Operation string          `json:"operation"`
	MemeViews []memeViewEntry `json:"memeViews"`
}

// RecordMemeView handles the recordMemeView operation
func (v *ViewsAPI) RecordMemeView(c *gin.Context, body json.RawMessage) (*Result, error) {
	var req recordMemeViewRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return nil, BadRequest("invalid recordMemeView request")
	}
	if len(req.MemeViews) == 0 {
		return nil, BadRequest("memeViews is required")
	}

	for i, entry := range req.MemeViews {
		if entry.Email == "" {
			return nil, BadRequest(fmt.Sprintf("memeViews[%d].email is required", i))
		}
		if len(entry.MemeIDs) == 0 {
			return nil, BadRequest(fmt.Sprintf("memeViews[%d].memeIDs is required", i))
		}
		if err := requireSelf(c, entry.Email); err != nil {
			return nil, err
		}
	}

	for _, entry := range req.MemeViews {
		if err := v.views.RecordViews(c.Request.Context(), entry.Email, entry.MemeIDs); err != nil {
			v.logger.Error("record views failed",
				zap.String("user", entry.Email),
				zap.Int("count", len(entry.MemeIDs)),
				zap.Error(err))
			return nil, err
		}
	}

	return &Result{}, nil
}
