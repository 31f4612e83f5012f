// Package pricing computes OTC deal economics. Everything here is pure:
// inputs in, metrics out, no state and no I/O, safe for unrestricted
// concurrent use.
package pricing

import (
	"math"

	"github.com/trueamperror/rift-otc-api/internal/types"
)

// Discount bounds accepted by the engine, in percent.
const (
	MinDiscount = 5.0
	MaxDiscount = 40.0
)

// Policy constants. Tests pin outputs derived from these, so changing any of
// them is a breaking change.
const (
	// Default expected-return band applied when the caller supplies none.
	defaultReturnLow  = -30.0
	defaultReturnMid  = 20.0
	defaultReturnHigh = 50.0

	// Worst-case stress scenario: market price halves during the lock.
	stressDropFactor = 0.5

	// When the worst-case scenario is not a loss, risk/reward is reported as
	// this sentinel rather than dividing by a non-positive number.
	riskRewardSentinel = 10.0

	// Floor used as the loss denominator when the worst case is break-even
	// or better: 10% of total cost.
	lossFloorFraction = 0.1

	// Favorability thresholds.
	favorableRiskReward = 1.5
	favorableEquityPct  = 10.0

	// Quality score penalty per risk point above neutral (5.0).
	riskPenaltyPerPoint = 0.3
)

// DealMetrics is the full economics breakdown for a prospective deal.
// All derived fields are internally consistent:
// TotalCost == TokenAmount*DiscountedPrice and
// MarketValue == TokenAmount*MarketPrice.
type DealMetrics struct {
	MarketPrice     float64 `json:"market_price"`
	DiscountedPrice float64 `json:"discounted_price"`
	DiscountPct     float64 `json:"discount_pct"`
	TokenAmount     float64 `json:"token_amount"`
	TotalCost       float64 `json:"total_cost"`
	MarketValue     float64 `json:"market_value"`

	InstantEquity    float64 `json:"instant_equity"`
	InstantEquityPct float64 `json:"instant_equity_pct"`

	// BreakEvenDropPct is the percentage the market price can fall, from the
	// price at creation, before the position value drops below total cost.
	// With value = market_value * (1 - drop/100) and
	// total_cost = market_value * (1 - discount/100), the two are equal
	// exactly at drop == discount.
	BreakEvenDropPct float64 `json:"break_even_drop_pct"`

	ExpectedReturnPct float64 `json:"expected_return_pct"`
	ExpectedValue     float64 `json:"expected_value"`
	ExpectedProfit    float64 `json:"expected_profit"`

	BestCaseReturnPct float64 `json:"best_case_return_pct"`
	BestCaseValue     float64 `json:"best_case_value"`
	BestCaseProfit    float64 `json:"best_case_profit"`

	WorstCaseReturnPct float64 `json:"worst_case_return_pct"`
	WorstCaseValue     float64 `json:"worst_case_value"`
	WorstCaseLoss      float64 `json:"worst_case_loss"`

	MaxLoss50PctDrop    float64 `json:"max_loss_50pct_drop"`
	MaxLoss50PctDropPct float64 `json:"max_loss_50pct_drop_pct"`
	RiskRewardRatio     float64 `json:"risk_reward_ratio"`
	LockPeriodWeeks     int     `json:"lock_period_weeks"`
	LockRiskFactor      float64 `json:"lock_risk_factor"`

	IsFavorable  bool    `json:"is_favorable"`
	QualityScore float64 `json:"quality_score"`
}

// CalculateDealMetrics computes the full risk/reward breakdown for a deal.
//
// expectedReturn may be nil, in which case the default band applies.
// riskScore is the optional AI risk score (0-10, 10 riskiest); pass nil when
// no snapshot is attached and the quality score is computed without it.
func CalculateDealMetrics(
	tokenAmount, marketPrice, discount float64,
	lockPeriodWeeks int,
	expectedReturn *types.ExpectedReturn,
	riskScore *float64,
) (*DealMetrics, error) {
	if tokenAmount <= 0 {
		return nil, invalidInput("token_amount", "must be greater than zero")
	}
	if marketPrice <= 0 {
		return nil, invalidInput("market_price", "must be greater than zero")
	}
	if discount < MinDiscount || discount > MaxDiscount {
		return nil, invalidInput("discount", "must be between 5 and 40")
	}
	if !ValidLockPeriod(lockPeriodWeeks) {
		return nil, invalidInput("lock_period", "must be 1, 4 or 8 weeks")
	}
	if riskScore != nil && (*riskScore < 0 || *riskScore > 10) {
		return nil, invalidInput("risk_score", "must be between 0 and 10")
	}

	discountedPrice := marketPrice * (1 - discount/100)
	totalCost := tokenAmount * discountedPrice
	marketValue := tokenAmount * marketPrice
	instantEquity := marketValue - totalCost
	instantEquityPct := instantEquity / totalCost * 100

	lowPct, midPct, highPct := defaultReturnLow, defaultReturnMid, defaultReturnHigh
	if expectedReturn != nil {
		lowPct, midPct, highPct = expectedReturn.Low, expectedReturn.Mid, expectedReturn.High
	}

	expectedValue := marketValue * (1 + midPct/100)
	expectedProfit := expectedValue - totalCost

	bestCaseValue := marketValue * (1 + highPct/100)
	bestCaseProfit := bestCaseValue - totalCost

	worstCaseValue := marketValue * (1 + lowPct/100)
	worstCaseLoss := worstCaseValue - totalCost

	stressValue := marketValue * stressDropFactor
	maxLoss := stressValue - totalCost

	// Risk/reward: expected gain over the magnitude of the worst-case loss.
	// A worst case at break-even or better has no meaningful loss side, so a
	// fraction of cost stands in as the denominator and the ratio is capped
	// at the sentinel.
	potentialLoss := totalCost * lossFloorFraction
	if worstCaseLoss < 0 {
		potentialLoss = -worstCaseLoss
	}
	riskReward := riskRewardSentinel
	if potentialLoss > 0 {
		riskReward = expectedProfit / potentialLoss
	}

	m := &DealMetrics{
		MarketPrice:     marketPrice,
		DiscountedPrice: discountedPrice,
		DiscountPct:     discount,
		TokenAmount:     tokenAmount,
		TotalCost:       totalCost,
		MarketValue:     marketValue,

		InstantEquity:    instantEquity,
		InstantEquityPct: instantEquityPct,

		BreakEvenDropPct: discount,

		ExpectedReturnPct: expectedProfit / totalCost * 100,
		ExpectedValue:     expectedValue,
		ExpectedProfit:    expectedProfit,

		BestCaseReturnPct: bestCaseProfit / totalCost * 100,
		BestCaseValue:     bestCaseValue,
		BestCaseProfit:    bestCaseProfit,

		WorstCaseReturnPct: worstCaseLoss / totalCost * 100,
		WorstCaseValue:     worstCaseValue,
		WorstCaseLoss:      worstCaseLoss,

		MaxLoss50PctDrop:    maxLoss,
		MaxLoss50PctDropPct: maxLoss / totalCost * 100,
		RiskRewardRatio:     round2(riskReward),
		LockPeriodWeeks:     lockPeriodWeeks,
		LockRiskFactor:      1 + float64(lockPeriodWeeks-1)*0.1,
	}

	m.IsFavorable = m.ExpectedProfit > 0 &&
		m.RiskRewardRatio >= favorableRiskReward &&
		m.InstantEquityPct >= favorableEquityPct
	m.QualityScore = qualityScore(m.RiskRewardRatio, m.InstantEquityPct, riskScore)

	return m, nil
}

// qualityScore folds risk/reward, instant equity and the optional AI risk
// score into a 0-10 scalar. Risk above the neutral 5.0 pulls the score down,
// risk below it pushes the score up.
func qualityScore(riskReward, instantEquityPct float64, riskScore *float64) float64 {
	base := (riskReward*2 + instantEquityPct/5) / 2
	if riskScore != nil {
		base -= (*riskScore - 5) * riskPenaltyPerPoint
	}
	return math.Max(0, math.Min(10, base))
}

// ValidLockPeriod reports whether weeks is one of the allowed lock periods.
func ValidLockPeriod(weeks int) bool {
	for _, w := range types.LockPeriods {
		if w == weeks {
			return true
		}
	}
	return false
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
