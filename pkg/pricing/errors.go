package pricing

import (
	"fmt"

	"github.com/google/uuid"
)

// RuleValidationError reports a malformed discount rule. The rule is excluded
// from evaluation and the error is surfaced as a warning alongside the
// successful result; one bad rule never breaks checkout.
type RuleValidationError struct {
	RuleID uuid.UUID
	Field  string
	Reason string
}

func (e *RuleValidationError) Error() string {
	return fmt.Sprintf("discount rule %s: invalid %s: %s", e.RuleID, e.Field, e.Reason)
}

func invalidRule(ruleID uuid.UUID, field, reason string) *RuleValidationError {
	return &RuleValidationError{RuleID: ruleID, Field: field, Reason: reason}
}

// InvalidCartError reports a structurally invalid cart line. Pricing cannot
// proceed on corrupt input, so this is fatal to the computation.
type InvalidCartError struct {
	LineIndex int
	Reason    string
}

func (e *InvalidCartError) Error() string {
	return fmt.Sprintf("cart line %d: %s", e.LineIndex, e.Reason)
}
