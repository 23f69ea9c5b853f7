package entity

import "fmt"

// ValidationError reports a record that cannot be tracked or delivered,
// naming the offending field. Remote records arrive unvalidated, so the
// fetch path surfaces these instead of panicking on bad data.
type ValidationError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error on field '%s': %s", e.Field, e.Message)
}
