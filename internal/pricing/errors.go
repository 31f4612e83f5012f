package pricing

import "fmt"

// InputError reports a caller-supplied value outside its contractual range.
// It is always raised before any computation result is produced.
type InputError struct {
	Field  string
	Reason string
}

func (e *InputError) Error() string {
	return fmt.Sprintf("invalid input: %s %s", e.Field, e.Reason)
}

func invalidInput(field, reason string) *InputError {
	return &InputError{Field: field, Reason: reason}
}
