package types

import (
	"time"

	"gorm.io/gorm"
)

// Deal statuses
const (
	StatusOpen      = "open"
	StatusFunded    = "funded"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
)

// Allowed lock periods in weeks
var LockPeriods = []int{1, 4, 8}

// Deal represents a single OTC offer: a fixed token amount sold at a discount
// to market price, settled after a lock period.
//
// TotalCost and MarketValue are frozen at creation time and never recomputed.
// Status, BuyerAddress, FundedAt and UnlockAt are written only by lifecycle
// transitions.
type Deal struct {
	gorm.Model    `json:"-"`
	DealID        string     `gorm:"uniqueIndex" json:"id"`
	Status        string     `json:"status"` // open, funded, completed, cancelled
	SellerAddress string     `json:"seller_address"`
	BuyerAddress  string     `json:"buyer_address,omitempty"`
	TokenID       string     `json:"token_id"`
	TokenSymbol   string     `json:"token_symbol"`
	TokenAmount   float64    `json:"token_amount"`
	PricePerToken float64    `json:"price_per_token"`
	Discount      float64    `json:"discount"`
	LockPeriod    int        `json:"lock_period"` // weeks: 1, 4 or 8
	TotalCost     float64    `json:"total_cost"`
	MarketValue   float64    `json:"market_value"`
	CreatedAt     time.Time  `json:"created_at"`
	FundedAt      *time.Time `json:"funded_at,omitempty"`
	UnlockAt      *time.Time `json:"unlock_at,omitempty"`

	// Optional AI score snapshot, persisted as a JSON column and opaque to
	// the lifecycle logic.
	AIScoreJSON string         `gorm:"column:ai_score_json" json:"-"`
	AIScore     *TokenAnalysis `gorm:"-" json:"ai_score,omitempty"`
}

// CreateDealRequest is the seller's request to open a new deal.
type CreateDealRequest struct {
	SellerAddress string  `json:"seller_address" binding:"required"`
	TokenID       string  `json:"token_id" binding:"required"`
	TokenSymbol   string  `json:"token_symbol" binding:"required"`
	TokenAmount   float64 `json:"token_amount" binding:"required"`
	Discount      float64 `json:"discount" binding:"required"`
	LockPeriod    int     `json:"lock_period" binding:"required"`
}

// AcceptDealRequest is the buyer's request to fund an open deal.
type AcceptDealRequest struct {
	BuyerAddress string `json:"buyer_address" binding:"required"`
}

// CancelDealRequest identifies the seller cancelling an open deal.
type CancelDealRequest struct {
	SellerAddress string `json:"seller_address" binding:"required"`
}
