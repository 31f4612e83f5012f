package types

import "fmt"

// TransitionError reports a deal lifecycle transition that is not permitted
// from the current state or whose guard failed. The deal is never mutated
// when one of these is returned.
type TransitionError struct {
	DealID string
	From   string
	Event  string
	Reason string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("invalid transition: cannot %s deal %s (status %s): %s",
		e.Event, e.DealID, e.From, e.Reason)
}
