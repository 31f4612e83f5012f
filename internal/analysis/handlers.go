package analysis

import (
	"context"
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/trueamperror/rift-otc-api/internal/market"
	"github.com/trueamperror/rift-otc-api/internal/pricing"
	"github.com/trueamperror/rift-otc-api/internal/types"
	"github.com/trueamperror/rift-otc-api/pkg/response"
)

// TokenSource supplies market snapshots for the analyze endpoint.
type TokenSource interface {
	GetToken(ctx context.Context, tokenID string) (*types.TokenData, error)
}

// GinHandlers contains HTTP handlers for analysis endpoints
type GinHandlers struct {
	analyzer Analyzer
	tokens   TokenSource
}

func NewGinHandlers(analyzer Analyzer, tokens TokenSource) *GinHandlers {
	return &GinHandlers{analyzer: analyzer, tokens: tokens}
}

// AnalyzeTokenHandler handles POST requests to score a token for a lock period
func (h *GinHandlers) AnalyzeTokenHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req types.AnalyzeRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			response.BadRequest(c, err.Error())
			return
		}
		if req.LockPeriod == 0 {
			req.LockPeriod = 4
		}
		if !pricing.ValidLockPeriod(req.LockPeriod) {
			response.BadRequest(c, "lock_period must be 1, 4 or 8 weeks")
			return
		}

		token, err := h.tokens.GetToken(c.Request.Context(), req.TokenID)
		if err != nil {
			switch {
			case errors.Is(err, market.ErrTokenNotFound):
				response.NotFound(c, "Token not found")
			case errors.Is(err, market.ErrRateLimited):
				response.TooManyRequests(c, "Market data rate limit reached. Please wait a moment and try again.")
			default:
				response.Handle(c, nil, err)
			}
			return
		}

		snapshot, err := h.analyzer.Analyze(c.Request.Context(), token, req.LockPeriod)
		if err == nil {
			err = ValidateSnapshot(snapshot)
		}
		response.Handle(c, snapshot, err)
	}
}
