package analysis

import (
	"context"
	"fmt"
	"math"

	"github.com/trueamperror/rift-otc-api/internal/types"
)

// HeuristicAnalyzer scores tokens from market data alone: price momentum,
// market cap, trading volume and distance from ATH. It stands in for an
// external scoring service and is what the server wires in by default.
type HeuristicAnalyzer struct{}

func NewHeuristicAnalyzer() *HeuristicAnalyzer {
	return &HeuristicAnalyzer{}
}

// Overall score weights. Risk is inverted before weighting.
const (
	weightTechnical   = 0.30
	weightRisk        = 0.30
	weightSentiment   = 0.20
	weightOnChain     = 0.15
	weightFundamental = 0.05
)

func (a *HeuristicAnalyzer) Analyze(_ context.Context, token *types.TokenData, lockPeriodWeeks int) (*types.TokenAnalysis, error) {
	technical := 5.0
	if token.PriceChangePct7d > 10 {
		technical += 1.5
	} else if token.PriceChangePct7d < -10 {
		technical -= 1.5
	}
	if token.PriceChangePct30d > 20 {
		technical += 1.0
	} else if token.PriceChangePct30d < -20 {
		technical -= 1.0
	}

	risk := 5.0
	if math.Abs(token.PriceChangePct24h) > 15 {
		risk += 2.0
	}
	if token.MarketCap < 100_000_000 {
		risk += 2.0
	} else if token.MarketCap > 1_000_000_000 {
		risk -= 1.0
	}
	if token.ATHChangePct < -80 {
		risk += 1.5
	}
	// Longer lock means more exposure to adverse moves.
	risk += float64(lockPeriodWeeks-1) * 0.5

	sentiment := 5.0 + token.PriceChangePct7d/10

	onChain := 5.0
	if token.TotalVolume > token.MarketCap*0.1 {
		onChain += 2.0
	}

	fundamental := 5.0
	if token.MarketCapRank > 0 && token.MarketCapRank <= 50 {
		fundamental = 7.0
	} else if token.MarketCapRank > 0 && token.MarketCapRank <= 100 {
		fundamental = 6.0
	}

	technical = clampScore(technical)
	risk = clampScore(risk)
	sentiment = clampScore(sentiment)
	onChain = clampScore(onChain)
	fundamental = clampScore(fundamental)

	overall := technical*weightTechnical +
		(10-risk)*weightRisk +
		sentiment*weightSentiment +
		onChain*weightOnChain +
		fundamental*weightFundamental

	volatility := math.Abs(token.PriceChangePct7d) + math.Abs(token.PriceChangePct30d)/2

	snapshot := &types.TokenAnalysis{
		TokenID:      token.ID,
		TokenName:    token.Name,
		TokenSymbol:  token.Symbol,
		CurrentPrice: token.CurrentPrice,
		MarketCap:    token.MarketCap,
		Scores: types.ScoreBreakdown{
			Technical:   round1(technical),
			Risk:        round1(risk),
			Sentiment:   round1(sentiment),
			OnChain:     round1(onChain),
			Fundamental: round1(fundamental),
			Overall:     round1(overall),
		},
		Recommendation: RecommendationForScore(overall),
		ExpectedReturn: types.ExpectedReturn{
			Low:  round1(-math.Max(15, volatility*0.8)),
			Mid:  round1(token.PriceChangePct7d * 0.5),
			High: round1(math.Max(20, volatility*1.2)),
		},
		KeyRisks: keyRisks(token, risk, lockPeriodWeeks),
		Reasoning: fmt.Sprintf(
			"Analysis based on %s's recent performance. The token shows %+.1f%% 7-day momentum with %s trading volume. Consider the %d-week lock period in your risk assessment.",
			token.Name, token.PriceChangePct7d, volumeLabel(token), lockPeriodWeeks),
	}

	// The mid estimate tracks momentum and can dip below the floor of the
	// band; keep the band ordered.
	if snapshot.ExpectedReturn.Mid < snapshot.ExpectedReturn.Low {
		snapshot.ExpectedReturn.Mid = snapshot.ExpectedReturn.Low
	}
	if snapshot.ExpectedReturn.Mid > snapshot.ExpectedReturn.High {
		snapshot.ExpectedReturn.Mid = snapshot.ExpectedReturn.High
	}

	return snapshot, nil
}

func keyRisks(token *types.TokenData, risk float64, lockPeriodWeeks int) []string {
	var risks []string
	if risk >= 7 {
		risks = append(risks, "High volatility detected in recent price action")
	}
	if token.MarketCap < 100_000_000 {
		risks = append(risks, "Lower market cap increases manipulation risk")
	}
	if token.ATHChangePct < -70 {
		risks = append(risks, fmt.Sprintf("Token is %.0f%% below ATH", math.Abs(token.ATHChangePct)))
	}
	if lockPeriodWeeks >= 4 {
		risks = append(risks, fmt.Sprintf("%d-week lock period increases exposure to market swings", lockPeriodWeeks))
	}

	if len(risks) == 0 {
		risks = []string{"Standard market volatility risk", "Crypto market correlation"}
	}
	if len(risks) > 3 {
		risks = risks[:3]
	}
	return risks
}

func volumeLabel(token *types.TokenData) string {
	if token.TotalVolume > token.MarketCap*0.05 {
		return "strong"
	}
	return "moderate"
}

func clampScore(v float64) float64 {
	return math.Max(0, math.Min(10, v))
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
