package serverutils

import "fmt"

// APIError is the typed error controllers and services return when they
// want ErrorHandlerMiddleware to produce a specific status and error
// code instead of falling back to a generic 500. Codes are exactly the
// error taxonomy's four kinds: validation_error, rate_limit, not_found,
// internal_error — LLM and persistence failures both surface as
// internal_error, per the taxonomy's user-visible shape.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func NewValidationError(message string) *APIError {
	return &APIError{Status: 400, Code: "validation_error", Message: message}
}

func NewNotFoundError(message string) *APIError {
	return &APIError{Status: 404, Code: "not_found", Message: message}
}

func NewRateLimitError(message string) *APIError {
	return &APIError{Status: 429, Code: "rate_limit", Message: message}
}

func NewInternalError(message string) *APIError {
	return &APIError{Status: 500, Code: "internal_error", Message: message}
}
