package deals

import "github.com/trueamperror/rift-otc-api/internal/types"

func invalidTransition(dealID, from, event, reason string) *types.TransitionError {
	return &types.TransitionError{DealID: dealID, From: from, Event: event, Reason: reason}
}
