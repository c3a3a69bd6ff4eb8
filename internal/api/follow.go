package api

import (
	"encoding/json"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/memestream/memestream/internal/relation"
	"github.com/memestream/memestream/pkg/logging"
)

// FollowAPI serves the batchCheckStatus operation
type FollowAPI struct {
	resolver *relation.BatchResolver
	logger   *zap.Logger
}

// NewFollowAPI creates a new follow API
func NewFollowAPI(resolver *relation.BatchResolver) *FollowAPI {
	return &FollowAPI{
		resolver: resolver,
		logger:   logging.GetLogger().With(zap.String("component", "api-follow")),
	}
}

type batchCheckStatusRequest struct {
	Operation   string   `json:"operation"`
	UserEmail   string   `json:"userEmail"`
	FolloweeIDs []string `json:"followeeIDs"`
}

// BatchCheckStatus handles the batchCheckStatus operation
func (f *FollowAPI) BatchCheckStatus(c *gin.Context, body json.RawMessage) (*Result, error) {
	var req batchCheckStatusRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return nil, BadRequest("invalid batchCheckStatus request")
	}
	if req.UserEmail == "" {
		return nil, BadRequest("userEmail is required")
	}

	statuses := f.resolver.ResolveFollowStatus(c.Request.Context(), req.UserEmail, req.FolloweeIDs)

	return &Result{
		Data: gin.H{"followStatuses": statuses},
	}, nil
}
