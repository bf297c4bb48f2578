package rules

import (
	"errors"
	"fmt"
)

// Common errors.
var (
	ErrArity     = errors.New("wrong number of arguments")
	ErrDomain    = errors.New("argument outside declared domain")
	ErrDuplicate = errors.New("duplicate signature")
	ErrUnbound   = errors.New("unbound setup name")
	ErrMalformed = errors.New("malformed rule body")
	ErrNoRule    = errors.New("no rule for call")
)

// RuleError reports a defect in one rule's declaration or evaluation.
type RuleError struct {
	Key     string // Signature key of the offending rule
	Part    string // Rule part involved (e.g., "setup", "pullback[1]")
	Details string // Additional details
	Err     error  // Underlying sentinel
}

// Error implements the error interface.
func (e *RuleError) Error() string {
	if e.Part != "" {
		return fmt.Sprintf("%s: %s: %s: %v", e.Key, e.Part, e.Details, e.Err)
	}
	return fmt.Sprintf("%s: %s: %v", e.Key, e.Details, e.Err)
}

// Unwrap returns the underlying sentinel.
func (e *RuleError) Unwrap() error {
	return e.Err
}
