// internal/apperrors/errors.go
package apperrors

import "fmt"

// AuthError is returned when a request cannot be authenticated. The message
// is deliberately uniform for "unknown user" and "wrong token" so callers
// cannot enumerate usernames.
type AuthError struct {
	Message string
}

func (e *AuthError) Error() string {
	return e.Message
}

// RateLimitError is returned when a user exhausts the request window. It is
// the only error kind carrying a remediation value.
type RateLimitError struct {
	MaxRequests       int
	RetryAfterSeconds int64
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limit exceeded: maximum %d requests per window allowed", e.MaxRequests)
}

// NotFoundError is reserved for a specifically requested resource that is
// absent. An empty page is not an error and must not produce one of these.
type NotFoundError struct {
	Resource string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found", e.Resource)
}
