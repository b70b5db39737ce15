package invoice

import (
	"errors"
	"strings"
)

var (
	// ErrSequencing is returned when the counter store cannot issue an ordinal.
	// Invoice creation must abort instead of guessing a number.
	ErrSequencing = errors.New("invoice sequencing failed")

	// ErrInvalidPrefix is returned for numbering prefixes that cannot appear in PREFIX/YYYY/MM/NNN.
	ErrInvalidPrefix = errors.New("invalid numbering prefix")
)

// FieldError is a user-correctable problem with one input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e FieldError) Error() string {
	return e.Field + ": " + e.Message
}

// ValidationErrors collects every field error found in a draft.
type ValidationErrors []FieldError

func (v ValidationErrors) Error() string {
	msgs := make([]string, len(v))
	for i, fe := range v {
		msgs[i] = fe.Error()
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

// Has reports whether field has at least one error.
func (v ValidationErrors) Has(field string) bool {
	for _, fe := range v {
		if fe.Field == field {
			return true
		}
	}
	return false
}

func (v *ValidationErrors) add(field, message string) {
	*v = append(*v, FieldError{Field: field, Message: message})
}

// AsValidationErrors unwraps err into ValidationErrors.
func AsValidationErrors(err error) (ValidationErrors, bool) {
	var v ValidationErrors
	if errors.As(err, &v) {
		return v, true
	}
	return nil, false
}
