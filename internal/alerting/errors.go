package alerting

import (
	"errors"
	"fmt"

	"github.com/threshgen/threshgen/internal/threshd"
)

var (
	// ErrMissingThresholdType is returned for a rule without a type.
	ErrMissingThresholdType = errors.New("threshold-type cannot be empty")
	// ErrInvalidThresholdType is returned for a rule with an unsupported type.
	ErrInvalidThresholdType = errors.New("invalid threshold-type")
	// ErrMissingTriggeredUEI is returned when a rearmed UEI cannot be derived.
	ErrMissingTriggeredUEI = errors.New("triggered UEI cannot be empty")
	// ErrInvalidDestinationPattern is returned for a destination rule that does not compile.
	ErrInvalidDestinationPattern = errors.New("invalid destination path pattern")
)

// RuleError identifies the rule that made a run fail.
type RuleError struct {
	Group   string
	Variant threshd.Variant
	Subject string
	Err     error
}

func (e *RuleError) Error() string {
	return fmt.Sprintf("group %q %s %q: %v", e.Group, e.Variant, e.Subject, e.Err)
}

func (e *RuleError) Unwrap() error { return e.Err }

// ExpressionError reports an expression whose data sources could not be resolved.
type ExpressionError struct {
	Expression string
	Err        error
}

func (e *ExpressionError) Error() string {
	return fmt.Sprintf("can't parse expression %q: %v", e.Expression, e.Err)
}

func (e *ExpressionError) Unwrap() error { return e.Err }
