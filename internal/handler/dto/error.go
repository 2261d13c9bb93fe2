// Package dto provides Data Transfer Objects for API requests and responses.
package dto

// ErrorResponse represents an API error with a stable machine-checkable code.
type ErrorResponse struct {
	Detail string `json:"detail"`
	Code   string `json:"code"`
}

// ValidationErrorResponse carries field-keyed validation messages.
type ValidationErrorResponse struct {
	Errors map[string]string `json:"errors"`
	Code   string            `json:"code"`
}

// DetailResponse is a bare human-readable success message, used by the
// borrow and return endpoints.
type DetailResponse struct {
	Detail string `json:"detail"`
}
