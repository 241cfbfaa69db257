package crud

import (
	"encoding/json"
	"fmt"
)

// ValidationError rejects input before anything is dispatched.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string { return fmt.Sprintf("%s %s", e.Field, e.Reason) }

func Invalid(field, reason string) error { return &ValidationError{Field: field, Reason: reason} }

// Validator checks a create/update payload. update is true for PUT.
type Validator func(body json.RawMessage, update bool) error

// DecodeAndValidate is the usual Validator body: decode into In, then
// run check.
func DecodeAndValidate[In any](check func(in In, update bool) error) Validator {
	return func(body json.RawMessage, update bool) error {
		var in In
		if err := json.Unmarshal(body, &in); err != nil {
			return Invalid("body", "is not valid JSON for this resource")
		}
		return check(in, update)
	}
}
