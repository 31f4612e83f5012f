// Package analysis produces score snapshots for tokens under a lock period.
// The deal core treats snapshots as opaque attached data; this package only
// guarantees their ranges are sane.
package analysis

import (
	"context"

	"github.com/samber/lo"

	"github.com/trueamperror/rift-otc-api/internal/pricing"
	"github.com/trueamperror/rift-otc-api/internal/types"
)

// Analyzer scores a token for a prospective deal. Implementations may call
// external services; the heuristic implementation in this package is fully
// deterministic.
type Analyzer interface {
	Analyze(ctx context.Context, token *types.TokenData, lockPeriodWeeks int) (*types.TokenAnalysis, error)
}

var recommendations = []string{
	types.RecommendationStrongBuy,
	types.RecommendationBuy,
	types.RecommendationHold,
	types.RecommendationHighRisk,
	types.RecommendationExtremeRisk,
}

// ValidateSnapshot range-checks a score snapshot: every score in [0,10], a
// known recommendation, and an ordered expected-return band. The snapshot's
// internal consistency beyond that is the analyzer's business.
func ValidateSnapshot(s *types.TokenAnalysis) error {
	scores := map[string]float64{
		"technical":   s.Scores.Technical,
		"risk":        s.Scores.Risk,
		"sentiment":   s.Scores.Sentiment,
		"on_chain":    s.Scores.OnChain,
		"fundamental": s.Scores.Fundamental,
		"overall":     s.Scores.Overall,
	}
	for field, v := range scores {
		if v < 0 || v > 10 {
			return &pricing.InputError{Field: "scores." + field, Reason: "must be between 0 and 10"}
		}
	}

	if !lo.Contains(recommendations, s.Recommendation) {
		return &pricing.InputError{Field: "recommendation", Reason: "unknown recommendation"}
	}

	band := s.ExpectedReturn
	if band.Low > band.Mid || band.Mid > band.High {
		return &pricing.InputError{Field: "expected_return", Reason: "band must be ordered low <= mid <= high"}
	}

	return nil
}

// RecommendationForScore maps an overall score to a recommendation.
func RecommendationForScore(overall float64) string {
	switch {
	case overall >= 7.5:
		return types.RecommendationStrongBuy
	case overall >= 6.0:
		return types.RecommendationBuy
	case overall >= 4.5:
		return types.RecommendationHold
	case overall >= 3.0:
		return types.RecommendationHighRisk
	default:
		return types.RecommendationExtremeRisk
	}
}
