package provider

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	openai "github.com/sashabaranov/go-openai"
)

var (
	// ErrNoAPIKey indicates the provider was built without credentials.
	ErrNoAPIKey = errors.New("provider API key not configured")

	// ErrEmptyResponse indicates the provider answered with nothing usable.
	ErrEmptyResponse = errors.New("provider returned an empty response")
)

// TransientError is a failure worth retrying later: network trouble,
// server errors, timeouts and rate limiting.
type TransientError struct {
	Op          string
	StatusCode  int
	RateLimited bool
	Cause       error
}

func (e *TransientError) Error() string {
	switch {
	case e.RateLimited:
		return fmt.Sprintf("%s: rate limited: %v", e.Op, e.Cause)
	case e.StatusCode != 0:
		return fmt.Sprintf("%s: transient failure (HTTP %d): %v", e.Op, e.StatusCode, e.Cause)
	default:
		return fmt.Sprintf("%s: transient failure: %v", e.Op, e.Cause)
	}
}

func (e *TransientError) Unwrap() error { return e.Cause }

// MalformedResponseError means the provider answered but the payload did
// not have the expected shape. Content callers treat it as an empty result.
type MalformedResponseError struct {
	Op    string
	Cause error
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("%s: malformed response: %v", e.Op, e.Cause)
}

func (e *MalformedResponseError) Unwrap() error { return e.Cause }

// IsRateLimited reports whether err is a rate-limit shaped failure.
func IsRateLimited(err error) bool {
	var te *TransientError
	return errors.As(err, &te) && te.RateLimited
}

// IsTransient reports whether err is worth retrying.
func IsTransient(err error) bool {
	var te *TransientError
	return errors.As(err, &te)
}

// IsMalformed reports whether err is a MalformedResponseError.
func IsMalformed(err error) bool {
	var me *MalformedResponseError
	return errors.As(err, &me)
}

// classify maps client errors onto the taxonomy above. Errors that fit
// no class are returned wrapped with op.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}

	status := 0
	var apiErr *openai.APIError
	var reqErr *openai.RequestError
	switch {
	case errors.As(err, &apiErr):
		status = apiErr.HTTPStatusCode
	case errors.As(err, &reqErr):
		status = reqErr.HTTPStatusCode
	}

	switch {
	case status == http.StatusTooManyRequests:
		return &TransientError{Op: op, StatusCode: status, RateLimited: true, Cause: err}
	case status >= 500, status == http.StatusRequestTimeout:
		return &TransientError{Op: op, StatusCode: status, Cause: err}
	case errors.Is(err, context.DeadlineExceeded):
		return &TransientError{Op: op, Cause: err}
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return &TransientError{Op: op, Cause: err}
	}
	return fmt.Errorf("%s: %w", op, err)
}
