package types

// Recommendation values for a score snapshot
const (
	RecommendationStrongBuy   = "STRONG_BUY"
	RecommendationBuy         = "BUY"
	RecommendationHold        = "HOLD"
	RecommendationHighRisk    = "HIGH_RISK"
	RecommendationExtremeRisk = "EXTREME_RISK"
)

// ScoreBreakdown holds per-dimension scores, each on a 0-10 scale.
// Risk is inverted relative to the others: 10 means maximum risk.
type ScoreBreakdown struct {
	Technical   float64 `json:"technical"`
	Risk        float64 `json:"risk"`
	Sentiment   float64 `json:"sentiment"`
	OnChain     float64 `json:"on_chain"`
	Fundamental float64 `json:"fundamental"`
	Overall     float64 `json:"overall"`
}

// ExpectedReturn is the low/mid/high percentage price-change band used to
// project post-lock outcomes.
type ExpectedReturn struct {
	Low  float64 `json:"low"`
	Mid  float64 `json:"mid"`
	High float64 `json:"high"`
}

// TokenAnalysis is a score snapshot for a token under a given lock period.
// The deal core treats it as attached data: it validates ranges and nothing
// else.
type TokenAnalysis struct {
	TokenID        string         `json:"token_id"`
	TokenName      string         `json:"token_name"`
	TokenSymbol    string         `json:"token_symbol"`
	CurrentPrice   float64        `json:"current_price"`
	MarketCap      float64        `json:"market_cap,omitempty"`
	Scores         ScoreBreakdown `json:"scores"`
	Recommendation string         `json:"recommendation"`
	ExpectedReturn ExpectedReturn `json:"expected_return"`
	KeyRisks       []string       `json:"key_risks"`
	Reasoning      string         `json:"reasoning"`
}

// AnalyzeRequest asks for a score snapshot of a token under a lock period.
type AnalyzeRequest struct {
	TokenID    string `json:"token_id" binding:"required"`
	LockPeriod int    `json:"lock_period"`
}
