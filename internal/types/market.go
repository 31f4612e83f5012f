package types

// TokenData is the market snapshot for a token as returned by the market
// data source. Prices are in USD.
type TokenData struct {
	ID                     string  `json:"id"`
	Name                   string  `json:"name"`
	Symbol                 string  `json:"symbol"`
	CurrentPrice           float64 `json:"current_price"`
	MarketCap              float64 `json:"market_cap"`
	MarketCapRank          int     `json:"market_cap_rank,omitempty"`
	TotalVolume            float64 `json:"total_volume"`
	PriceChangePct24h      float64 `json:"price_change_percentage_24h"`
	PriceChangePct7d       float64 `json:"price_change_percentage_7d"`
	PriceChangePct30d      float64 `json:"price_change_percentage_30d"`
	ATH                    float64 `json:"ath"`
	ATHChangePct           float64 `json:"ath_change_percentage"`
	FullyDilutedValuation  float64 `json:"fully_diluted_valuation,omitempty"`
	CirculatingSupply      float64 `json:"circulating_supply,omitempty"`
	TotalSupply            float64 `json:"total_supply,omitempty"`
}

// TokenSearchResult is a lightweight search/trending hit.
type TokenSearchResult struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Symbol        string `json:"symbol"`
	MarketCapRank int    `json:"market_cap_rank,omitempty"`
}
