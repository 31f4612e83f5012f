package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trueamperror/rift-otc-api/internal/types"
)

const tolerance = 1e-9

func TestCalculateDealMetricsRoundTrip(t *testing.T) {
	// 1000 tokens at $10 market with a 15% discount.
	m, err := CalculateDealMetrics(1000, 10, 15, 4, nil, nil)
	require.NoError(t, err)

	assert.InDelta(t, 8.5, m.DiscountedPrice, tolerance)
	assert.InDelta(t, 8500, m.TotalCost, tolerance)
	assert.InDelta(t, 10000, m.MarketValue, tolerance)
	assert.InDelta(t, 1500, m.InstantEquity, tolerance)
	assert.InDelta(t, 17.6470588235, m.InstantEquityPct, 1e-6)
	assert.InDelta(t, 15, m.BreakEvenDropPct, tolerance)

	// Derived values must reconstruct exactly.
	assert.InDelta(t, m.TotalCost, m.TokenAmount*m.DiscountedPrice, tolerance)
	assert.InDelta(t, m.MarketValue, m.TokenAmount*m.MarketPrice, tolerance)
}

func TestCalculateDealMetricsDefaultBand(t *testing.T) {
	m, err := CalculateDealMetrics(1000, 10, 15, 4, nil, nil)
	require.NoError(t, err)

	// Default band: low -30, mid +20, high +50.
	assert.InDelta(t, 12000, m.ExpectedValue, tolerance)
	assert.InDelta(t, 3500, m.ExpectedProfit, tolerance)
	assert.InDelta(t, 15000, m.BestCaseValue, tolerance)
	assert.InDelta(t, 6500, m.BestCaseProfit, tolerance)
	assert.InDelta(t, 7000, m.WorstCaseValue, tolerance)
	assert.InDelta(t, -1500, m.WorstCaseLoss, tolerance)

	// 50% stress drop: position worth 5000 against a cost of 8500.
	assert.InDelta(t, -3500, m.MaxLoss50PctDrop, tolerance)
	assert.InDelta(t, -41.1764705882, m.MaxLoss50PctDropPct, 1e-6)

	// 3500 gain over a 1500 worst-case loss.
	assert.InDelta(t, 2.33, m.RiskRewardRatio, tolerance)
	assert.True(t, m.IsFavorable)

	assert.Equal(t, 4, m.LockPeriodWeeks)
	assert.InDelta(t, 1.3, m.LockRiskFactor, tolerance)
}

func TestCalculateDealMetricsBreakEvenRoundTrip(t *testing.T) {
	// At a price drop equal to BreakEvenDropPct the position value must equal
	// total cost exactly.
	m, err := CalculateDealMetrics(250, 42.5, 22, 8, nil, nil)
	require.NoError(t, err)

	valueAfterDrop := m.MarketValue * (1 - m.BreakEvenDropPct/100)
	assert.InDelta(t, m.TotalCost, valueAfterDrop, 1e-6)
}

func TestCalculateDealMetricsCustomBand(t *testing.T) {
	band := &types.ExpectedReturn{Low: -10, Mid: 5, High: 25}
	m, err := CalculateDealMetrics(100, 50, 20, 1, band, nil)
	require.NoError(t, err)

	// cost 4000, market value 5000.
	assert.InDelta(t, 5250, m.ExpectedValue, tolerance)
	assert.InDelta(t, 1250, m.ExpectedProfit, tolerance)
	assert.InDelta(t, 4500, m.WorstCaseValue, tolerance)
	assert.InDelta(t, 500, m.WorstCaseLoss, tolerance)

	// Worst case is a gain, so the loss floor of 10% of cost applies:
	// 1250 / 400 = 3.125 -> 3.13 rounded.
	assert.InDelta(t, 3.13, m.RiskRewardRatio, tolerance)
}

func TestCalculateDealMetricsRiskScoreAdjustsQuality(t *testing.T) {
	lowRisk := 2.0
	highRisk := 9.0

	base, err := CalculateDealMetrics(1000, 10, 15, 4, nil, nil)
	require.NoError(t, err)
	calm, err := CalculateDealMetrics(1000, 10, 15, 4, nil, &lowRisk)
	require.NoError(t, err)
	risky, err := CalculateDealMetrics(1000, 10, 15, 4, nil, &highRisk)
	require.NoError(t, err)

	assert.Greater(t, calm.QualityScore, base.QualityScore)
	assert.Less(t, risky.QualityScore, base.QualityScore)

	assert.GreaterOrEqual(t, risky.QualityScore, 0.0)
	assert.LessOrEqual(t, calm.QualityScore, 10.0)
}

func TestCalculateDealMetricsDiscountMonotonicity(t *testing.T) {
	prevCost := 0.0
	prevEquity := 0.0

	for i, discount := range []float64{5, 10, 15, 20, 25, 30, 35, 40} {
		m, err := CalculateDealMetrics(500, 20, discount, 4, nil, nil)
		require.NoError(t, err)

		assert.Less(t, m.DiscountedPrice, m.MarketPrice)
		if i > 0 {
			assert.Less(t, m.TotalCost, prevCost, "total cost must strictly decrease with discount")
			assert.Greater(t, m.InstantEquity, prevEquity, "instant equity must strictly increase with discount")
		}
		prevCost = m.TotalCost
		prevEquity = m.InstantEquity
	}
}

func TestCalculateDealMetricsInvalidInput(t *testing.T) {
	badRisk := 11.0

	testCases := []struct {
		name   string
		run    func() error
		field  string
	}{
		{
			name: "zero amount",
			run: func() error {
				_, err := CalculateDealMetrics(0, 10, 15, 4, nil, nil)
				return err
			},
			field: "token_amount",
		},
		{
			name: "negative price",
			run: func() error {
				_, err := CalculateDealMetrics(100, -1, 15, 4, nil, nil)
				return err
			},
			field: "market_price",
		},
		{
			name: "discount below floor",
			run: func() error {
				_, err := CalculateDealMetrics(100, 10, 4.9, 4, nil, nil)
				return err
			},
			field: "discount",
		},
		{
			name: "discount above ceiling",
			run: func() error {
				_, err := CalculateDealMetrics(100, 10, 40.1, 4, nil, nil)
				return err
			},
			field: "discount",
		},
		{
			name: "unknown lock period",
			run: func() error {
				_, err := CalculateDealMetrics(100, 10, 15, 2, nil, nil)
				return err
			},
			field: "lock_period",
		},
		{
			name: "risk score out of range",
			run: func() error {
				_, err := CalculateDealMetrics(100, 10, 15, 4, nil, &badRisk)
				return err
			},
			field: "risk_score",
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			err := tc.run()
			require.Error(t, err)

			var inputErr *InputError
			require.ErrorAs(t, err, &inputErr)
			assert.Equal(t, tc.field, inputErr.Field)
		})
	}
}

func TestSuggestDiscountMonotonicity(t *testing.T) {
	// Non-decreasing in risk score for each lock period.
	for _, weeks := range types.LockPeriods {
		prev := 0.0
		for risk := 0.0; risk <= 10.0; risk += 0.5 {
			s, err := SuggestDiscount(weeks, risk)
			require.NoError(t, err)
			assert.GreaterOrEqual(t, s.SuggestedDiscount, prev)
			prev = s.SuggestedDiscount
		}
	}

	// Non-decreasing in lock period for each risk score.
	for risk := 0.0; risk <= 10.0; risk += 1.0 {
		prev := 0.0
		for _, weeks := range types.LockPeriods {
			s, err := SuggestDiscount(weeks, risk)
			require.NoError(t, err)
			assert.GreaterOrEqual(t, s.SuggestedDiscount, prev)
			prev = s.SuggestedDiscount
		}
	}
}

func TestSuggestDiscountClamped(t *testing.T) {
	for _, weeks := range types.LockPeriods {
		for _, risk := range []float64{0, 5, 10} {
			s, err := SuggestDiscount(weeks, risk)
			require.NoError(t, err)

			assert.GreaterOrEqual(t, s.SuggestedDiscount, MinDiscount)
			assert.LessOrEqual(t, s.SuggestedDiscount, MaxDiscount)
			assert.GreaterOrEqual(t, s.MinRecommended, MinDiscount)
			assert.LessOrEqual(t, s.MaxRecommended, MaxDiscount)
			assert.LessOrEqual(t, s.MinRecommended, s.SuggestedDiscount)
			assert.GreaterOrEqual(t, s.MaxRecommended, s.SuggestedDiscount)
		}
	}
}

func TestSuggestDiscountValues(t *testing.T) {
	// Neutral risk returns the base discount for the lock period.
	s, err := SuggestDiscount(4, 5)
	require.NoError(t, err)
	assert.InDelta(t, 12, s.SuggestedDiscount, tolerance)
	assert.InDelta(t, 7, s.MinRecommended, tolerance)
	assert.InDelta(t, 17, s.MaxRecommended, tolerance)

	// Max risk on the longest lock hits the suggestion ceiling.
	s, err = SuggestDiscount(8, 10)
	require.NoError(t, err)
	assert.InDelta(t, 27.5, s.SuggestedDiscount, tolerance)

	// Minimal risk on the shortest lock clamps at the floor.
	s, err = SuggestDiscount(1, 0)
	require.NoError(t, err)
	assert.InDelta(t, 5, s.SuggestedDiscount, tolerance)
	assert.InDelta(t, 5, s.MinRecommended, tolerance)
}

func TestSuggestDiscountWithVolatility(t *testing.T) {
	calm, err := SuggestDiscountWithVolatility(4, 5, 8)
	require.NoError(t, err)
	assert.InDelta(t, 10, calm.SuggestedDiscount, tolerance)

	stormy, err := SuggestDiscountWithVolatility(4, 5, 45)
	require.NoError(t, err)
	assert.InDelta(t, 17, stormy.SuggestedDiscount, tolerance)
}

func TestSuggestDiscountInvalidInput(t *testing.T) {
	_, err := SuggestDiscount(3, 5)
	var inputErr *InputError
	require.ErrorAs(t, err, &inputErr)
	assert.Equal(t, "lock_period", inputErr.Field)

	_, err = SuggestDiscount(4, -0.1)
	require.ErrorAs(t, err, &inputErr)
	assert.Equal(t, "risk_score", inputErr.Field)

	_, err = SuggestDiscount(4, 10.1)
	require.ErrorAs(t, err, &inputErr)
	assert.Equal(t, "risk_score", inputErr.Field)
}
