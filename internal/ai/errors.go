package ai

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrMissingAPIKey is returned by hosted runtimes built without a credential.
var ErrMissingAPIKey = errors.New("api key is missing")

// APIError is a non-2xx reply from a model provider. The typed errors below
// wrap it so callers can branch with errors.As and still reach the details.
type APIError struct {
	StatusCode int            `json:"-"`
	Code       string         `json:"code,omitempty"`
	Message    string         `json:"message,omitempty"`
	RequestID  string         `json:"-"`
	Raw        map[string]any `json:"-"`
}

func (e *APIError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "api error: status=%d", e.StatusCode)
	for _, kv := range [][2]string{{"code", e.Code}, {"request_id", e.RequestID}, {"message", e.Message}} {
		if kv[1] != "" {
			b.WriteString(" " + kv[0] + "=" + kv[1])
		}
	}
	return b.String()
}

// AuthError is a 401/403: the key is wrong or lacks access.
type AuthError struct{ *APIError }

// RateLimitError is a 429. RetryAfter is zero when the provider gave no hint.
type RateLimitError struct {
	*APIError
	RetryAfter time.Duration
}

// ModelNotFoundError means the model name is unknown or not pulled.
type ModelNotFoundError struct{ *APIError }

// BadRequestError is any other 4xx.
type BadRequestError struct{ *APIError }

// QuotaExceededError is a billing or credit problem (402).
type QuotaExceededError struct{ *APIError }

// ServerError is a 5xx from the provider.
type ServerError struct{ *APIError }

func (e *AuthError) Error() string          { return "authentication failed: " + e.APIError.Error() }
func (e *ModelNotFoundError) Error() string { return "model not found: " + e.APIError.Error() }
func (e *BadRequestError) Error() string    { return "bad request: " + e.APIError.Error() }
func (e *QuotaExceededError) Error() string { return "quota exceeded: " + e.APIError.Error() }
func (e *ServerError) Error() string        { return "provider error: " + e.APIError.Error() }

func (e *RateLimitError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("rate limited (retry after %s): %s", e.RetryAfter.Round(time.Second), e.APIError.Error())
	}
	return "rate limited: " + e.APIError.Error()
}

func (e *AuthError) Unwrap() error          { return e.APIError }
func (e *RateLimitError) Unwrap() error     { return e.APIError }
func (e *ModelNotFoundError) Unwrap() error { return e.APIError }
func (e *BadRequestError) Unwrap() error    { return e.APIError }
func (e *QuotaExceededError) Unwrap() error { return e.APIError }
func (e *ServerError) Unwrap() error        { return e.APIError }

// UnreachableError means no HTTP exchange happened, e.g. a local Ollama that
// is not running.
type UnreachableError struct {
	Host string
	Err  error
}

func (e *UnreachableError) Error() string {
	if e.Host != "" {
		return fmt.Sprintf("endpoint unreachable at %s: %v", e.Host, e.Err)
	}
	return fmt.Sprintf("endpoint unreachable: %v", e.Err)
}

func (e *UnreachableError) Unwrap() error { return e.Err }

// Retryable reports whether err is worth another attempt: provider 5xx and
// rate limits are; auth, quota, bad requests and unknown models are not.
func Retryable(err error) bool {
	var se *ServerError
	var rl *RateLimitError
	return errors.As(err, &se) || errors.As(err, &rl)
}
