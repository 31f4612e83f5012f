package deals

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/trueamperror/rift-otc-api/internal/types"
)

// SeedDemoDeals creates a few demo deals so a fresh instance has a deal book
// to browse. Failures are logged and skipped; demo data is never worth
// failing startup over.
func SeedDemoDeals(ctx context.Context, service *Service) {
	existing, err := service.ListDeals("")
	if err != nil || len(existing) > 0 {
		return
	}

	demoRequests := []types.CreateDealRequest{
		{
			SellerAddress: "0x1234567890abcdef1234567890abcdef12345678",
			TokenID:       "uniswap",
			TokenSymbol:   "UNI",
			TokenAmount:   10000,
			Discount:      15,
			LockPeriod:    4,
		},
		{
			SellerAddress: "0xabcdef1234567890abcdef1234567890abcdef12",
			TokenID:       "arbitrum",
			TokenSymbol:   "ARB",
			TokenAmount:   50000,
			Discount:      22,
			LockPeriod:    8,
		},
		{
			SellerAddress: "0x9876543210fedcba9876543210fedcba98765432",
			TokenID:       "aave",
			TokenSymbol:   "AAVE",
			TokenAmount:   500,
			Discount:      10,
			LockPeriod:    1,
		},
	}

	for _, req := range demoRequests {
		req := req
		if _, err := service.CreateDeal(ctx, &req); err != nil {
			log.Warn().Err(err).Str("token_id", req.TokenID).Msg("failed to seed demo deal")
		}
	}
}
