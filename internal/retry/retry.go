// Package retry provides bounded exponential backoff for backend calls.
// Shared by the embedding and generation clients so both surfaces fail the
// same way when a local model server is down.
package retry

import (
	"errors"
	"time"

	"github.com/millianlmx/rag/internal/domain"
	"github.com/millianlmx/rag/internal/logger"
)

// maxBackoff caps the delay between attempts.
const maxBackoff = 30 * time.Second

// Backoff returns the delay before the given attempt (1-based).
// The base delay doubles each attempt, capped at maxBackoff.
func Backoff(baseDelay time.Duration, attempt int) time.Duration {
	if attempt <= 0 {
		return 0
	}
	// Cap the shift to avoid overflow.
	if attempt > 30 {
		attempt = 30
	}
	backoff := baseDelay * time.Duration(1<<uint(attempt-1))
	if backoff > maxBackoff || backoff < 0 {
		backoff = maxBackoff
	}
	return backoff
}

// Do runs fn up to attempts times, sleeping with exponential backoff between
// tries. Only errors matching domain.ErrServiceUnavailable are retried;
// anything else (invalid configuration, dimension mismatches) is returned
// immediately. The last error is returned when all attempts fail.
func Do(attempts int, baseDelay time.Duration, fn func() error) error {
	if attempts < 1 {
		attempts = 1
	}

	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		if attempt > 1 {
			delay := Backoff(baseDelay, attempt-1)
			logger.Warn("retrying in %s (attempt %d/%d): %v", delay, attempt, attempts, err)
			time.Sleep(delay)
		}

		if err = fn(); err == nil {
			return nil
		}
		if !errors.Is(err, domain.ErrServiceUnavailable) {
			return err
		}
	}
	return err
}
