package deals

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/trueamperror/rift-otc-api/internal/types"
)

type Database struct {
	db *gorm.DB
}

func NewDatabase(db *gorm.DB) *Database {
	return &Database{db: db}
}

func (d *Database) CreateDeal(deal *types.Deal) error {
	if err := dehydrateSnapshot(deal); err != nil {
		return err
	}
	return d.db.Create(deal).Error
}

func (d *Database) GetDeal(dealID string) (*types.Deal, error) {
	var deal types.Deal
	if err := d.db.Where("deal_id = ?", dealID).First(&deal).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	if err := hydrateSnapshot(&deal); err != nil {
		return nil, err
	}
	return &deal, nil
}

// ListDeals returns deals newest first, optionally filtered by status.
func (d *Database) ListDeals(status string) ([]types.Deal, error) {
	query := d.db.Order("created_at DESC")
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var deals []types.Deal
	if err := query.Find(&deals).Error; err != nil {
		return nil, err
	}
	for i := range deals {
		if err := hydrateSnapshot(&deals[i]); err != nil {
			return nil, err
		}
	}
	return deals, nil
}

// FundDeal atomically moves an open deal to funded, setting the buyer and the
// funding/unlock timestamps. The status guard lives in the UPDATE itself, so
// of two concurrent calls exactly one observes a row change; the other gets
// zero rows affected and a TransitionError.
func (d *Database) FundDeal(dealID, buyerAddress string, fundedAt, unlockAt time.Time) (*types.Deal, error) {
	result := d.db.Model(&types.Deal{}).
		Where("deal_id = ? AND status = ?", dealID, types.StatusOpen).
		Updates(map[string]interface{}{
			"status":        types.StatusFunded,
			"buyer_address": buyerAddress,
			"funded_at":     fundedAt,
			"unlock_at":     unlockAt,
		})
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, d.diagnoseFailedTransition(dealID, "accept", types.StatusOpen)
	}
	return d.GetDeal(dealID)
}

// CompleteDeal atomically moves a funded deal to completed. The unlock-time
// guard is checked by the caller before this runs; time only moves forward,
// so the status guard alone keeps the transition safe under concurrency.
func (d *Database) CompleteDeal(dealID string) (*types.Deal, error) {
	result := d.db.Model(&types.Deal{}).
		Where("deal_id = ? AND status = ?", dealID, types.StatusFunded).
		Update("status", types.StatusCompleted)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, d.diagnoseFailedTransition(dealID, "claim", types.StatusFunded)
	}
	return d.GetDeal(dealID)
}

// CancelDeal atomically moves an open deal to cancelled. Only the seller who
// created the deal may cancel it, enforced by the same guarded UPDATE.
func (d *Database) CancelDeal(dealID, sellerAddress string) (*types.Deal, error) {
	result := d.db.Model(&types.Deal{}).
		Where("deal_id = ? AND status = ? AND seller_address = ?", dealID, types.StatusOpen, sellerAddress).
		Update("status", types.StatusCancelled)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		deal, err := d.GetDeal(dealID)
		if err != nil {
			return nil, err
		}
		if deal == nil {
			return nil, fmt.Errorf("deal %s: %w", dealID, gorm.ErrRecordNotFound)
		}
		if deal.Status != types.StatusOpen {
			return nil, invalidTransition(dealID, deal.Status, "cancel", "only open deals can be cancelled")
		}
		return nil, invalidTransition(dealID, deal.Status, "cancel", "only the seller can cancel this deal")
	}
	return d.GetDeal(dealID)
}

// diagnoseFailedTransition distinguishes a missing deal from a guard failure
// after a conditional update touched zero rows.
func (d *Database) diagnoseFailedTransition(dealID, event, wantStatus string) error {
	deal, err := d.GetDeal(dealID)
	if err != nil {
		return err
	}
	if deal == nil {
		return fmt.Errorf("deal %s: %w", dealID, gorm.ErrRecordNotFound)
	}
	return invalidTransition(dealID, deal.Status, event,
		fmt.Sprintf("deal must be %s", wantStatus))
}

// The AI score snapshot rides along as a JSON text column so the deal row
// stays a single flat record.

func dehydrateSnapshot(deal *types.Deal) error {
	if deal.AIScore == nil {
		deal.AIScoreJSON = ""
		return nil
	}
	raw, err := json.Marshal(deal.AIScore)
	if err != nil {
		return fmt.Errorf("failed to marshal ai score snapshot: %w", err)
	}
	deal.AIScoreJSON = string(raw)
	return nil
}

func hydrateSnapshot(deal *types.Deal) error {
	if deal.AIScoreJSON == "" {
		deal.AIScore = nil
		return nil
	}
	var snapshot types.TokenAnalysis
	if err := json.Unmarshal([]byte(deal.AIScoreJSON), &snapshot); err != nil {
		return fmt.Errorf("failed to unmarshal ai score snapshot: %w", err)
	}
	deal.AIScore = &snapshot
	return nil
}
