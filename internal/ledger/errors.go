package ledger

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	ErrValidation      = errors.New("validation failed")
	ErrInvalidArgument = errors.New("invalid argument")
	ErrReconciliation  = errors.New("balance reconciliation failed")
)

// ValidationError lists the offending fields (json name -> rule).
type ValidationError struct {
	Fields map[string]string
}

func newValidationError(field, rule string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: rule}}
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return fmt.Sprintf("%s: %s", ErrValidation, strings.Join(parts, ", "))
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// ReconciliationError means a nominee balance could not be brought in line
// with its ledger. The surrounding mutation was rolled back; the balance can
// be repaired with Service.Recompute.
type ReconciliationError struct {
	NomineeID uint
	Err       error
}

func (e *ReconciliationError) Error() string {
	return fmt.Sprintf("%s for nominee %d: %v", ErrReconciliation, e.NomineeID, e.Err)
}

func (e *ReconciliationError) Unwrap() []error { return []error{ErrReconciliation, e.Err} }
