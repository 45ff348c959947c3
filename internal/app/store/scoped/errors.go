// internal/app/store/scoped/errors.go
package scoped

import (
	"fmt"
	"strings"
)

// ValidationError reports a write rejected at the repository boundary before
// reaching the store.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %s %s", e.Field, e.Reason)
}

// DecodeError reports a stored record that could not be turned into its typed
// entity. Fields lists the offending bson field names.
type DecodeError struct {
	Collection string
	ID         string
	Fields     []string
	Err        error
}

func (e *DecodeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("decode %s/%s: %v", e.Collection, e.ID, e.Err)
	}
	return fmt.Sprintf("decode %s/%s: invalid fields: %s", e.Collection, e.ID, strings.Join(e.Fields, ", "))
}

func (e *DecodeError) Unwrap() error { return e.Err }
