package market

import (
	"errors"
	"math"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/trueamperror/rift-otc-api/internal/pricing"
	"github.com/trueamperror/rift-otc-api/pkg/response"
)

// GinHandlers contains HTTP handlers for token market data and deal
// calculator endpoints
type GinHandlers struct {
	client *Client
}

func NewGinHandlers(client *Client) *GinHandlers {
	return &GinHandlers{client: client}
}

// SearchTokensHandler handles GET requests to search tokens by name or symbol
// Query parameters: q (required), limit (1-50, default 10)
func (h *GinHandlers) SearchTokensHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		query := c.Query("q")
		if query == "" {
			response.BadRequest(c, "Search query is required")
			return
		}

		limit := 10
		if raw := c.Query("limit"); raw != "" {
			parsed, err := strconv.Atoi(raw)
			if err != nil || parsed < 1 || parsed > 50 {
				response.BadRequest(c, "limit must be between 1 and 50")
				return
			}
			limit = parsed
		}

		results, err := h.client.SearchTokens(c.Request.Context(), query, limit)
		h.handle(c, results, err)
	}
}

// TrendingTokensHandler handles GET requests for trending tokens
func (h *GinHandlers) TrendingTokensHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		results, err := h.client.TrendingTokens(c.Request.Context())
		h.handle(c, results, err)
	}
}

// GetTokenHandler handles GET requests for a token's market snapshot
// URL parameter: token_id (CoinGecko id, e.g. "uniswap")
func (h *GinHandlers) GetTokenHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := h.client.GetToken(c.Request.Context(), c.Param("token_id"))
		h.handle(c, token, err)
	}
}

// CalculateDealHandler handles POST requests to price a prospective deal
// against the live market price
// URL parameter: token_id; query parameters: amount, discount, lock_period
func (h *GinHandlers) CalculateDealHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		amount, err := strconv.ParseFloat(c.Query("amount"), 64)
		if err != nil {
			response.BadRequest(c, "amount must be a number")
			return
		}
		discount, err := strconv.ParseFloat(c.Query("discount"), 64)
		if err != nil {
			response.BadRequest(c, "discount must be a number")
			return
		}
		lockPeriod := 4
		if raw := c.Query("lock_period"); raw != "" {
			if lockPeriod, err = strconv.Atoi(raw); err != nil {
				response.BadRequest(c, "lock_period must be a number of weeks")
				return
			}
		}

		token, err := h.client.GetToken(c.Request.Context(), c.Param("token_id"))
		if err != nil {
			h.handle(c, nil, err)
			return
		}

		metrics, err := pricing.CalculateDealMetrics(amount, token.CurrentPrice, discount, lockPeriod, nil, nil)
		response.Handle(c, metrics, err)
	}
}

// SuggestDiscountHandler handles GET requests for a discount suggestion on a
// token, adjusted by the token's recent volatility
// URL parameter: token_id; query parameters: lock_period, risk_score
func (h *GinHandlers) SuggestDiscountHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		lockPeriod := 4
		if raw := c.Query("lock_period"); raw != "" {
			parsed, err := strconv.Atoi(raw)
			if err != nil {
				response.BadRequest(c, "lock_period must be a number of weeks")
				return
			}
			lockPeriod = parsed
		}

		riskScore := 5.0
		if raw := c.Query("risk_score"); raw != "" {
			parsed, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				response.BadRequest(c, "risk_score must be a number")
				return
			}
			riskScore = parsed
		}

		token, err := h.client.GetToken(c.Request.Context(), c.Param("token_id"))
		if err != nil {
			h.handle(c, nil, err)
			return
		}

		volatility := math.Abs(token.PriceChangePct7d) + math.Abs(token.PriceChangePct30d)/2
		suggestion, err := pricing.SuggestDiscountWithVolatility(lockPeriod, riskScore, volatility)
		response.Handle(c, suggestion, err)
	}
}

// handle maps market source errors onto the response envelope before falling
// back to the shared handler.
func (h *GinHandlers) handle(c *gin.Context, data interface{}, err error) {
	switch {
	case errors.Is(err, ErrTokenNotFound):
		response.NotFound(c, "Token not found")
	case errors.Is(err, ErrRateLimited):
		response.TooManyRequests(c, "Market data rate limit reached. Please wait a moment and try again.")
	default:
		response.Handle(c, data, err)
	}
}
