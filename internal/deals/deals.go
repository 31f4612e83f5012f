package deals

import (
	"context"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
	"gorm.io/gorm"

	"github.com/trueamperror/rift-otc-api/internal/analysis"
	"github.com/trueamperror/rift-otc-api/internal/pricing"
	"github.com/trueamperror/rift-otc-api/internal/types"
	"github.com/trueamperror/rift-otc-api/pkg/response"
)

var validStatuses = []string{
	types.StatusOpen,
	types.StatusFunded,
	types.StatusCompleted,
	types.StatusCancelled,
}

// MarketSource supplies the current market price used to freeze a deal's
// market value at creation time.
type MarketSource interface {
	GetToken(ctx context.Context, tokenID string) (*types.TokenData, error)
}

// Service owns the deal lifecycle: creation, accept, claim and cancel.
// It is the sole writer of status, buyer_address, funded_at and unlock_at.
type Service struct {
	db       *Database
	market   MarketSource
	analyzer analysis.Analyzer
	now      func() time.Time
}

func NewService(gormDB *gorm.DB, market MarketSource, analyzer analysis.Analyzer) *Service {
	return &Service{
		db:       NewDatabase(gormDB),
		market:   market,
		analyzer: analyzer,
		now:      time.Now,
	}
}

// CreateDeal opens a new deal for the seller. The market price is fetched
// once, the derived financials are computed from it and frozen, and a score
// snapshot is attached on a best-effort basis.
func (s *Service) CreateDeal(ctx context.Context, req *types.CreateDealRequest) (*types.Deal, error) {
	logger := log.With().
		Str("service", "deals").
		Str("token_id", req.TokenID).
		Logger()

	token, err := s.market.GetToken(ctx, req.TokenID)
	if err != nil {
		logger.Error().Err(err).Msg("failed to fetch token market data")
		return nil, fmt.Errorf("failed to fetch token market data: %w", err)
	}

	metrics, err := pricing.CalculateDealMetrics(
		req.TokenAmount, token.CurrentPrice, req.Discount, req.LockPeriod, nil, nil)
	if err != nil {
		return nil, err
	}

	deal := &types.Deal{
		DealID:        "deal_" + uuid.New().String(),
		Status:        types.StatusOpen,
		SellerAddress: req.SellerAddress,
		TokenID:       req.TokenID,
		TokenSymbol:   req.TokenSymbol,
		TokenAmount:   req.TokenAmount,
		PricePerToken: metrics.DiscountedPrice,
		Discount:      req.Discount,
		LockPeriod:    req.LockPeriod,
		TotalCost:     metrics.TotalCost,
		MarketValue:   metrics.MarketValue,
		CreatedAt:     s.now(),
	}

	// Analysis is an external collaborator; a failed snapshot never blocks
	// deal creation.
	if snapshot, err := s.analyzer.Analyze(ctx, token, req.LockPeriod); err != nil {
		logger.Warn().Err(err).Msg("score snapshot unavailable, creating deal without it")
	} else if err := analysis.ValidateSnapshot(snapshot); err != nil {
		logger.Warn().Err(err).Msg("score snapshot out of range, creating deal without it")
	} else {
		deal.AIScore = snapshot
	}

	if err := s.db.CreateDeal(deal); err != nil {
		logger.Error().Err(err).Msg("failed to persist deal")
		return nil, fmt.Errorf("failed to persist deal: %w", err)
	}

	logger.Info().
		Str("deal_id", deal.DealID).
		Float64("total_cost", deal.TotalCost).
		Float64("market_value", deal.MarketValue).
		Int("lock_period", deal.LockPeriod).
		Msg("deal created")

	return deal, nil
}

// GetDeal retrieves a deal by its ID. Returns nil when the deal is unknown.
func (s *Service) GetDeal(dealID string) (*types.Deal, error) {
	return s.db.GetDeal(dealID)
}

// ListDeals returns deals newest first, optionally filtered by status.
func (s *Service) ListDeals(status string) ([]types.Deal, error) {
	if status != "" && !lo.Contains(validStatuses, status) {
		return nil, &pricing.InputError{Field: "status", Reason: "must be one of open, funded, completed, cancelled"}
	}
	return s.db.ListDeals(status)
}

// AcceptDeal funds an open deal: the buyer is recorded, the funding time is
// stamped and the unlock time is fixed at funded_at plus the lock period.
func (s *Service) AcceptDeal(dealID, buyerAddress string) (*types.Deal, error) {
	logger := log.With().
		Str("service", "deals").
		Str("deal_id", dealID).
		Logger()

	if buyerAddress == "" {
		return nil, invalidTransition(dealID, types.StatusOpen, "accept", "buyer address is required")
	}

	// The lock period is immutable after creation, so it can be read outside
	// the guarded update.
	existing, err := s.db.GetDeal(dealID)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, fmt.Errorf("deal %s: %w", dealID, gorm.ErrRecordNotFound)
	}

	fundedAt := s.now()
	unlockAt := fundedAt.Add(time.Duration(existing.LockPeriod) * 7 * 24 * time.Hour)

	deal, err := s.db.FundDeal(dealID, buyerAddress, fundedAt, unlockAt)
	if err != nil {
		return nil, err
	}

	logger.Info().
		Str("buyer_address", buyerAddress).
		Time("unlock_at", *deal.UnlockAt).
		Msg("deal funded")

	return deal, nil
}

// ClaimDeal completes a funded deal once the lock period has passed.
func (s *Service) ClaimDeal(dealID string) (*types.Deal, error) {
	deal, err := s.db.GetDeal(dealID)
	if err != nil {
		return nil, err
	}
	if deal == nil {
		return nil, fmt.Errorf("deal %s: %w", dealID, gorm.ErrRecordNotFound)
	}
	if deal.Status != types.StatusFunded {
		return nil, invalidTransition(dealID, deal.Status, "claim", "deal must be funded")
	}
	if deal.UnlockAt == nil || s.now().Before(*deal.UnlockAt) {
		return nil, invalidTransition(dealID, deal.Status, "claim", "lock period has not ended yet")
	}

	updated, err := s.db.CompleteDeal(dealID)
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("service", "deals").
		Str("deal_id", dealID).
		Msg("deal completed, tokens claimed")

	return updated, nil
}

// CancelDeal cancels an open deal. Only the seller may cancel; funded deals
// are past the point of no return since the tokens are already escrowed.
func (s *Service) CancelDeal(dealID, sellerAddress string) (*types.Deal, error) {
	deal, err := s.db.CancelDeal(dealID, sellerAddress)
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("service", "deals").
		Str("deal_id", dealID).
		Msg("deal cancelled by seller")

	return deal, nil
}

// GinHandlers contains HTTP handlers for deal endpoints
type GinHandlers struct {
	service *Service
}

func NewGinHandlers(service *Service) *GinHandlers {
	return &GinHandlers{service: service}
}

// ListDealsHandler handles GET requests for the deal book
// Optional query parameter: status
func (h *GinHandlers) ListDealsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		deals, err := h.service.ListDeals(c.Query("status"))
		response.Handle(c, deals, err)
	}
}

// GetDealHandler handles GET requests for a single deal
// URL parameter: deal_id
func (h *GinHandlers) GetDealHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		deal, err := h.service.GetDeal(c.Param("deal_id"))
		if err == nil && deal == nil {
			response.NotFound(c, "Deal not found")
			return
		}
		response.Handle(c, deal, err)
	}
}

// CreateDealHandler handles POST requests to open new deals
func (h *GinHandlers) CreateDealHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req types.CreateDealRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			response.BadRequest(c, err.Error())
			return
		}

		deal, err := h.service.CreateDeal(c.Request.Context(), &req)
		response.Handle(c, deal, err)
	}
}

// AcceptDealHandler handles POST requests to fund an open deal
// URL parameter: deal_id
func (h *GinHandlers) AcceptDealHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req types.AcceptDealRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			response.BadRequest(c, err.Error())
			return
		}

		deal, err := h.service.AcceptDeal(c.Param("deal_id"), req.BuyerAddress)
		response.Handle(c, deal, err)
	}
}

// ClaimDealHandler handles POST requests to claim tokens after unlock
// URL parameter: deal_id
func (h *GinHandlers) ClaimDealHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		deal, err := h.service.ClaimDeal(c.Param("deal_id"))
		response.Handle(c, deal, err)
	}
}

// CancelDealHandler handles POST requests by the seller to cancel an open deal
// URL parameter: deal_id
func (h *GinHandlers) CancelDealHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req types.CancelDealRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			response.BadRequest(c, err.Error())
			return
		}

		deal, err := h.service.CancelDeal(c.Param("deal_id"), req.SellerAddress)
		response.Handle(c, deal, err)
	}
}
