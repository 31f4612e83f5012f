package analysis

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trueamperror/rift-otc-api/internal/pricing"
	"github.com/trueamperror/rift-otc-api/internal/types"
)

func baseSnapshot() *types.TokenAnalysis {
	return &types.TokenAnalysis{
		TokenID:     "uniswap",
		TokenSymbol: "UNI",
		Scores: types.ScoreBreakdown{
			Technical:   6,
			Risk:        4,
			Sentiment:   5,
			OnChain:     5,
			Fundamental: 7,
			Overall:     6.1,
		},
		Recommendation: types.RecommendationBuy,
		ExpectedReturn: types.ExpectedReturn{Low: -20, Mid: 10, High: 35},
	}
}

func TestValidateSnapshot(t *testing.T) {
	require.NoError(t, ValidateSnapshot(baseSnapshot()))
}

func TestValidateSnapshotScoreOutOfRange(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*types.TokenAnalysis)
		field  string
	}{
		{
			name:   "risk above ten",
			mutate: func(s *types.TokenAnalysis) { s.Scores.Risk = 10.5 },
			field:  "scores.risk",
		},
		{
			name:   "negative technical",
			mutate: func(s *types.TokenAnalysis) { s.Scores.Technical = -0.1 },
			field:  "scores.technical",
		},
		{
			name:   "overall above ten",
			mutate: func(s *types.TokenAnalysis) { s.Scores.Overall = 11 },
			field:  "scores.overall",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snapshot := baseSnapshot()
			tt.mutate(snapshot)

			err := ValidateSnapshot(snapshot)
			var inputErr *pricing.InputError
			require.ErrorAs(t, err, &inputErr)
			assert.Equal(t, tt.field, inputErr.Field)
		})
	}
}

func TestValidateSnapshotUnknownRecommendation(t *testing.T) {
	snapshot := baseSnapshot()
	snapshot.Recommendation = "YOLO"

	err := ValidateSnapshot(snapshot)
	var inputErr *pricing.InputError
	require.ErrorAs(t, err, &inputErr)
	assert.Equal(t, "recommendation", inputErr.Field)
}

func TestValidateSnapshotUnorderedBand(t *testing.T) {
	snapshot := baseSnapshot()
	snapshot.ExpectedReturn = types.ExpectedReturn{Low: 10, Mid: 5, High: 35}

	err := ValidateSnapshot(snapshot)
	var inputErr *pricing.InputError
	require.ErrorAs(t, err, &inputErr)
	assert.Equal(t, "expected_return", inputErr.Field)
}

func TestRecommendationForScore(t *testing.T) {
	tests := []struct {
		overall float64
		want    string
	}{
		{9.0, types.RecommendationStrongBuy},
		{7.5, types.RecommendationStrongBuy},
		{7.4, types.RecommendationBuy},
		{6.0, types.RecommendationBuy},
		{5.9, types.RecommendationHold},
		{4.5, types.RecommendationHold},
		{4.4, types.RecommendationHighRisk},
		{3.0, types.RecommendationHighRisk},
		{2.9, types.RecommendationExtremeRisk},
		{0, types.RecommendationExtremeRisk},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, RecommendationForScore(tt.overall), "overall %.1f", tt.overall)
	}
}

func largeCapToken() *types.TokenData {
	return &types.TokenData{
		ID:                "uniswap",
		Name:              "Uniswap",
		Symbol:            "UNI",
		CurrentPrice:      10,
		MarketCap:         5_000_000_000,
		MarketCapRank:     20,
		TotalVolume:       200_000_000,
		PriceChangePct24h: 2,
		PriceChangePct7d:  5,
		PriceChangePct30d: 12,
		ATHChangePct:      -40,
	}
}

func TestHeuristicAnalyzerProducesValidSnapshot(t *testing.T) {
	analyzer := NewHeuristicAnalyzer()

	snapshot, err := analyzer.Analyze(context.Background(), largeCapToken(), 4)
	require.NoError(t, err)

	require.NoError(t, ValidateSnapshot(snapshot))
	assert.Equal(t, "uniswap", snapshot.TokenID)
	assert.NotEmpty(t, snapshot.KeyRisks)
	assert.NotEmpty(t, snapshot.Reasoning)
}

func TestHeuristicAnalyzerDeterministic(t *testing.T) {
	analyzer := NewHeuristicAnalyzer()

	first, err := analyzer.Analyze(context.Background(), largeCapToken(), 4)
	require.NoError(t, err)
	second, err := analyzer.Analyze(context.Background(), largeCapToken(), 4)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestHeuristicAnalyzerLongerLockRaisesRisk(t *testing.T) {
	analyzer := NewHeuristicAnalyzer()

	short, err := analyzer.Analyze(context.Background(), largeCapToken(), 1)
	require.NoError(t, err)
	long, err := analyzer.Analyze(context.Background(), largeCapToken(), 8)
	require.NoError(t, err)

	assert.Greater(t, long.Scores.Risk, short.Scores.Risk)
	assert.Less(t, long.Scores.Overall, short.Scores.Overall)
}

func TestHeuristicAnalyzerSmallCapIsRiskier(t *testing.T) {
	analyzer := NewHeuristicAnalyzer()

	smallCap := largeCapToken()
	smallCap.MarketCap = 50_000_000
	smallCap.MarketCapRank = 400

	large, err := analyzer.Analyze(context.Background(), largeCapToken(), 4)
	require.NoError(t, err)
	small, err := analyzer.Analyze(context.Background(), smallCap, 4)
	require.NoError(t, err)

	assert.Greater(t, small.Scores.Risk, large.Scores.Risk)
	assert.Contains(t, small.KeyRisks, "Lower market cap increases manipulation risk")
}

func TestHeuristicAnalyzerClampsExtremeInputs(t *testing.T) {
	analyzer := NewHeuristicAnalyzer()

	extreme := &types.TokenData{
		ID:                "moonshot",
		Name:              "Moonshot",
		Symbol:            "MOON",
		CurrentPrice:      0.0001,
		MarketCap:         2_000_000,
		TotalVolume:       10_000_000,
		PriceChangePct24h: -60,
		PriceChangePct7d:  -90,
		PriceChangePct30d: -95,
		ATHChangePct:      -99,
	}

	snapshot, err := analyzer.Analyze(context.Background(), extreme, 8)
	require.NoError(t, err)

	require.NoError(t, ValidateSnapshot(snapshot))
	assert.Equal(t, 10.0, snapshot.Scores.Risk)
	assert.LessOrEqual(t, snapshot.ExpectedReturn.Low, snapshot.ExpectedReturn.Mid)
	assert.LessOrEqual(t, snapshot.ExpectedReturn.Mid, snapshot.ExpectedReturn.High)
	assert.Len(t, snapshot.KeyRisks, 3)
}
