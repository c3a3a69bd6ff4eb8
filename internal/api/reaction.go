package api

import (
	"encoding/json"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/memestream/memestream/internal/reaction"
	"github.com/memestream/memestream/pkg/logging"
)

// ReactionAPI serves the updateMemeReaction operation
type ReactionAPI struct {
	ledger *reaction.Ledger
	logger *zap.Logger
}

// NewReactionAPI creates a new reaction API
func NewReactionAPI(ledger *reaction.Ledger) *ReactionAPI {
	return &ReactionAPI{
		ledger: ledger,
		logger: logging.GetLogger().With(zap.String("component", "api-reaction")),
	}
}

type updateMemeReactionRequest struct {
	Operation          string `json:"operation"`
	MemeID             string `json:"memeID"`
	Email              string `json:"email"`
	IncrementLikes     bool   `json:"incrementLikes"`
	DoubleLike         bool   `json:"doubleLike"`
	IncrementDownloads bool   `json:"incrementDownloads"`
}

// UpdateMemeReaction handles the updateMemeReaction operation
func (r *ReactionAPI) UpdateMemeReaction(c *gin.Context, body json.RawMessage) (*Result, error) {
	var req updateMemeReactionRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return nil, BadRequest("invalid updateMemeReaction request")
	}
	if req.MemeID == "" {
		return nil, BadRequest("memeID is required")
	}
	if req.Email == "" {
		return nil, BadRequest("email is required")
	}
	if err := requireSelf(c, req.Email); err != nil {
		return nil, err
	}

	_, err := r.ledger.ApplyReaction(c.Request.Context(), req.Email, req.MemeID, reaction.Toggles{
		Like:       req.IncrementLikes,
		DoubleLike: req.DoubleLike,
		Download:   req.IncrementDownloads,
	})
	if err != nil {
		r.logger.Error("reaction update failed",
			zap.String("meme", req.MemeID),
			zap.String("user", req.Email),
			zap.Error(err))
		return nil, err
	}

	return &Result{Message: "Meme reaction updated successfully."}, nil
}
