package units

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrDuplicateUnit is returned when a registry receives two units with one short code.
	ErrDuplicateUnit = errors.New("duplicate unit code")
)

// UnitError reports a unit code that a registry does not know.
type UnitError struct {
	Code     string
	Category Category
	Valid    []string
}

func (e *UnitError) Error() string {
	valid := make([]string, len(e.Valid))
	for i, v := range e.Valid {
		if v == None {
			v = "none"
		}
		valid[i] = v
	}
	return fmt.Sprintf("unknown %s unit %q (valid: %s)", e.Category, e.Code, strings.Join(valid, ", "))
}

// DatetimeCanonicalError reports a canonical conversion that requires index
// state the caller did not have, such as a datetime anchor.
//
// The underlying cause (if any) can be accessed via errors.Unwrap.
type DatetimeCanonicalError struct {
	Code  string
	Op    string
	cause error
}

// NewDatetimeCanonicalError builds the error for unit code during op.
func NewDatetimeCanonicalError(code, op string, cause error) *DatetimeCanonicalError {
	return &DatetimeCanonicalError{Code: code, Op: op, cause: cause}
}

func (e *DatetimeCanonicalError) Error() string {
	msg := fmt.Sprintf("%s: unit %q has no canonical form without index state", e.Op, e.Code)
	if e.cause != nil {
		msg += ": " + e.cause.Error()
	}
	return msg
}

func (e *DatetimeCanonicalError) Unwrap() error { return e.cause }
