package ai

import (
	"errors"
	"fmt"
	"time"
)

// Sentinel errors classifying analysis-service failures. The retry policy
// consults only these classifications; callers must use errors.Is/As,
// never match on message text.
var (
	// ErrAuth means the provider rejected our credentials. Fatal, never retried.
	ErrAuth = errors.New("analysis service authentication failed")
	// ErrInvalidRequest means the request itself is malformed. Fatal, never retried.
	ErrInvalidRequest = errors.New("invalid analysis request")
	// ErrService means a transient server-side fault (5xx).
	ErrService = errors.New("analysis service error")
	// ErrTimeout means a transient network timeout or reset.
	ErrTimeout = errors.New("analysis service timeout")
	// ErrParse means the provider's output could not be interpreted as
	// structured data. Not retried; surfaced as an analysis failure.
	ErrParse = errors.New("analysis response could not be parsed")
	// ErrMissingData means the parsed response lacks the extractedData object.
	ErrMissingData = errors.New("analysis response missing extracted data")
)

// RateLimitError signals the provider rejected the call for quota reasons
// (HTTP 429 or equivalent). Carries the provider's suggested wait before
// the next attempt; zero when the provider gave no hint.
type RateLimitError struct {
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("analysis service rate limited, retry after %s", e.RetryAfter)
	}
	return "analysis service rate limited"
}

// IsRetryable reports whether err is transient and worth retrying.
func IsRetryable(err error) bool {
	var rle *RateLimitError
	if errors.As(err, &rle) {
		return true
	}
	return errors.Is(err, ErrService) || errors.Is(err, ErrTimeout)
}
