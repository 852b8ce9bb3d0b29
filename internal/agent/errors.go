package agent

import (
	"fmt"
	"time"
)

// AuthError indicates authentication/authorization failures (401/403).
type AuthError struct{ *APIError }

func (e *AuthError) Error() string {
	return fmt.Sprintf("authentication failed: %s", e.APIError.Error())
}

func (e *AuthError) Unwrap() error { return e.APIError }

// ThrottledError indicates 429 responses and may include a Retry-After.
type ThrottledError struct {
	*APIError
	RetryAfter time.Duration
}

func (e *ThrottledError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("agent throttled: wait about %ds before retrying: %s", int(e.RetryAfter.Seconds()), e.APIError.Error())
	}
	return fmt.Sprintf("agent throttled: %s", e.APIError.Error())
}

func (e *ThrottledError) Unwrap() error { return e.APIError }

// BadRequestError indicates a 400 request problem.
type BadRequestError struct{ *APIError }

func (e *BadRequestError) Error() string { return fmt.Sprintf("bad request: %s", e.APIError.Error()) }

func (e *BadRequestError) Unwrap() error { return e.APIError }

// ServerError indicates 5xx errors from the agent endpoint.
type ServerError struct{ *APIError }

func (e *ServerError) Error() string { return fmt.Sprintf("agent error: %s", e.APIError.Error()) }

func (e *ServerError) Unwrap() error { return e.APIError }
