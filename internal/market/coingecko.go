// Package market fetches token market data from CoinGecko. Results are
// cached for a short TTL so repeated pricing calls against the same token do
// not burn through the public API rate limit.
package market

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/rs/zerolog/log"

	"github.com/trueamperror/rift-otc-api/internal/types"
)

const DefaultBaseURL = "https://api.coingecko.com/api/v3"

var (
	// ErrTokenNotFound means CoinGecko has no market data for the token id.
	ErrTokenNotFound = errors.New("token not found")
	// ErrRateLimited means the upstream API returned 429; the caller should
	// back off, the client never retries on its own.
	ErrRateLimited = errors.New("market data rate limit reached")
)

type Client struct {
	baseURL    string
	httpClient *http.Client
	cache      *gocache.Cache
}

// NewClient builds a CoinGecko client. cacheTTL bounds how stale a quoted
// price may be; expired entries are evicted lazily.
func NewClient(baseURL string, cacheTTL time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		cache:      gocache.New(cacheTTL, 2*cacheTTL),
	}
}

// coinMarket mirrors the fields we use from /coins/markets.
type coinMarket struct {
	ID                    string  `json:"id"`
	Name                  string  `json:"name"`
	Symbol                string  `json:"symbol"`
	CurrentPrice          float64 `json:"current_price"`
	MarketCap             float64 `json:"market_cap"`
	MarketCapRank         int     `json:"market_cap_rank"`
	FullyDilutedValuation float64 `json:"fully_diluted_valuation"`
	CirculatingSupply     float64 `json:"circulating_supply"`
	TotalSupply           float64 `json:"total_supply"`
	TotalVolume           float64 `json:"total_volume"`
	PriceChangePct24h     float64 `json:"price_change_percentage_24h"`
	PriceChangePct7d      float64 `json:"price_change_percentage_7d_in_currency"`
	PriceChangePct30d     float64 `json:"price_change_percentage_30d_in_currency"`
	ATH                   float64 `json:"ath"`
	ATHChangePct          float64 `json:"ath_change_percentage"`
}

// GetToken returns the current market snapshot for a token id.
func (c *Client) GetToken(ctx context.Context, tokenID string) (*types.TokenData, error) {
	if cached, ok := c.cache.Get(tokenID); ok {
		return cached.(*types.TokenData), nil
	}

	params := url.Values{}
	params.Set("vs_currency", "usd")
	params.Set("ids", tokenID)
	params.Set("price_change_percentage", "24h,7d,30d")

	var markets []coinMarket
	if err := c.getJSON(ctx, "/coins/markets", params, &markets); err != nil {
		return nil, err
	}
	if len(markets) == 0 {
		return nil, fmt.Errorf("token %q: %w", tokenID, ErrTokenNotFound)
	}

	m := markets[0]
	token := &types.TokenData{
		ID:                    m.ID,
		Name:                  m.Name,
		Symbol:                m.Symbol,
		CurrentPrice:          m.CurrentPrice,
		MarketCap:             m.MarketCap,
		MarketCapRank:         m.MarketCapRank,
		TotalVolume:           m.TotalVolume,
		PriceChangePct24h:     m.PriceChangePct24h,
		PriceChangePct7d:      m.PriceChangePct7d,
		PriceChangePct30d:     m.PriceChangePct30d,
		ATH:                   m.ATH,
		ATHChangePct:          m.ATHChangePct,
		FullyDilutedValuation: m.FullyDilutedValuation,
		CirculatingSupply:     m.CirculatingSupply,
		TotalSupply:           m.TotalSupply,
	}

	c.cache.SetDefault(tokenID, token)
	return token, nil
}

// SearchTokens looks up tokens by name or symbol.
func (c *Client) SearchTokens(ctx context.Context, query string, limit int) ([]types.TokenSearchResult, error) {
	params := url.Values{}
	params.Set("query", query)

	var payload struct {
		Coins []struct {
			ID            string `json:"id"`
			Name          string `json:"name"`
			Symbol        string `json:"symbol"`
			MarketCapRank int    `json:"market_cap_rank"`
		} `json:"coins"`
	}
	if err := c.getJSON(ctx, "/search", params, &payload); err != nil {
		return nil, err
	}

	results := make([]types.TokenSearchResult, 0, limit)
	for _, coin := range payload.Coins {
		if len(results) == limit {
			break
		}
		results = append(results, types.TokenSearchResult{
			ID:            coin.ID,
			Name:          coin.Name,
			Symbol:        coin.Symbol,
			MarketCapRank: coin.MarketCapRank,
		})
	}
	return results, nil
}

// TrendingTokens returns the tokens currently trending on CoinGecko.
func (c *Client) TrendingTokens(ctx context.Context) ([]types.TokenSearchResult, error) {
	var payload struct {
		Coins []struct {
			Item struct {
				ID            string `json:"id"`
				Name          string `json:"name"`
				Symbol        string `json:"symbol"`
				MarketCapRank int    `json:"market_cap_rank"`
			} `json:"item"`
		} `json:"coins"`
	}
	if err := c.getJSON(ctx, "/search/trending", nil, &payload); err != nil {
		return nil, err
	}

	results := make([]types.TokenSearchResult, 0, len(payload.Coins))
	for _, coin := range payload.Coins {
		results = append(results, types.TokenSearchResult{
			ID:            coin.Item.ID,
			Name:          coin.Item.Name,
			Symbol:        coin.Item.Symbol,
			MarketCapRank: coin.Item.MarketCapRank,
		})
	}
	return results, nil
}

func (c *Client) getJSON(ctx context.Context, path string, params url.Values, out interface{}) error {
	endpoint := c.baseURL + path
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("market data request failed: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		log.Warn().Str("path", path).Msg("market data source rate limit hit")
		return ErrRateLimited
	case resp.StatusCode != http.StatusOK:
		return fmt.Errorf("market data request failed: unexpected status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode market data response: %w", err)
	}
	return nil
}
