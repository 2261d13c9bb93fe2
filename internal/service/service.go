// Package service provides business logic for the application.
package service

import (
	"fmt"
	"sort"

	"github.com/oklog/ulid/v2"
)

// newID generates a ULID string for entity identifiers.
func newID() string {
	return ulid.Make().String()
}

// ValidationError carries field-keyed validation messages.
// Handlers serialize it as an errors map with a 400 status.
type ValidationError map[string]string

// Error implements the error interface.
func (v ValidationError) Error() string {
	fields := make([]string, 0, len(v))
	for field := range v {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	return fmt.Sprintf("validation failed: %v", fields)
}
