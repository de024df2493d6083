// Package apierror defines the error envelopes returned to API clients.
// Handlers never serialize raw errors; everything goes through these types so
// responses stay uniform and internals (SQL, stack traces) never leak.
package apierror

// APIError is the envelope for every 4xx/5xx response with a single message.
type APIError struct {
	Detail string `json:"detail"`
}

func New(msg string) *APIError {
	return &APIError{Detail: msg}
}

// FromErr builds an envelope from a domain error whose message is already
// client-safe (the service-layer sentinels and their wrapped details).
func FromErr(err error) *APIError {
	return &APIError{Detail: err.Error()}
}

// ValidationError carries per-field messages for request binding failures.
type ValidationError struct {
	Detail string            `json:"detail"`
	Fields map[string]string `json:"fields"`
}

func NewValidation(fields map[string]string) *ValidationError {
	return &ValidationError{Detail: "Erro de validacao", Fields: fields}
}
