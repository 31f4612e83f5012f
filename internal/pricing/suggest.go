package pricing

import (
	"fmt"
	"math"
)

// Base discount by lock period: the longer the seller locks the buyer in,
// the bigger the discount needed to compensate the opportunity cost.
var baseDiscountByWeeks = map[int]float64{
	1: 5,
	4: 12,
	8: 20,
}

const (
	// Extra discount per risk point above the neutral score of 5.
	riskSlope = 1.5

	// Suggested values are kept below the hard engine ceiling so the
	// recommended band has headroom on both sides.
	maxSuggested = 35.0

	bandHalfWidth = 5.0
)

// DiscountSuggestion is a suggested discount with its recommended band.
// Suggested and the band bounds always land inside [MinDiscount, MaxDiscount].
type DiscountSuggestion struct {
	SuggestedDiscount float64 `json:"suggested_discount"`
	MinRecommended    float64 `json:"min_recommended"`
	MaxRecommended    float64 `json:"max_recommended"`
	Reasoning         string  `json:"reasoning"`
}

// SuggestDiscount maps (lock period, risk score) to a discount suggestion.
// riskScore is 0-10 with 10 riskiest. The result is non-decreasing in both
// inputs.
func SuggestDiscount(lockPeriodWeeks int, riskScore float64) (*DiscountSuggestion, error) {
	return SuggestDiscountWithVolatility(lockPeriodWeeks, riskScore, math.NaN())
}

// SuggestDiscountWithVolatility additionally shifts the suggestion by the
// token's 30-day volatility (percent). Pass NaN to skip the volatility
// adjustment.
func SuggestDiscountWithVolatility(lockPeriodWeeks int, riskScore, volatility30d float64) (*DiscountSuggestion, error) {
	base, ok := baseDiscountByWeeks[lockPeriodWeeks]
	if !ok {
		return nil, invalidInput("lock_period", "must be 1, 4 or 8 weeks")
	}
	if riskScore < 0 || riskScore > 10 {
		return nil, invalidInput("risk_score", "must be between 0 and 10")
	}

	suggested := base + (riskScore-5)*riskSlope

	if !math.IsNaN(volatility30d) {
		switch {
		case volatility30d > 30:
			suggested += 5
		case volatility30d > 20:
			suggested += 3
		case volatility30d < 10:
			suggested -= 2
		}
	}

	suggested = math.Max(MinDiscount, math.Min(maxSuggested, suggested))

	reasoning := fmt.Sprintf("Based on %d-week lock and risk score of %.1f/10", lockPeriodWeeks, riskScore)
	if !math.IsNaN(volatility30d) {
		reasoning = fmt.Sprintf("%s, with %.1f%% monthly volatility", reasoning, volatility30d)
	}

	return &DiscountSuggestion{
		SuggestedDiscount: round1(suggested),
		MinRecommended:    round1(math.Max(MinDiscount, suggested-bandHalfWidth)),
		MaxRecommended:    round1(math.Min(MaxDiscount, suggested+bandHalfWidth)),
		Reasoning:         reasoning,
	}, nil
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
