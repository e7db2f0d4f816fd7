package retry

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/millianlmx/rag/internal/domain"
)

func TestDoSucceedsAfterTransientFailures(t *testing.T) {
	calls := 0
	err := Do(3, time.Millisecond, func() error {
		calls++
		if calls < 3 {
			return fmt.Errorf("%w: connection refused", domain.ErrServiceUnavailable)
		}
		return nil
	})

	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if calls != 3 {
		t.Errorf("expected 3 calls, got %d", calls)
	}
}

func TestDoStopsAtAttemptBound(t *testing.T) {
	calls := 0
	err := Do(3, time.Millisecond, func() error {
		calls++
		return fmt.Errorf("%w: still down", domain.ErrServiceUnavailable)
	})

	if !errors.Is(err, domain.ErrServiceUnavailable) {
		t.Fatalf("expected ErrServiceUnavailable, got %v", err)
	}
	if calls != 3 {
		t.Errorf("expected 3 calls, got %d", calls)
	}
}

func TestDoDoesNotRetryFatalErrors(t *testing.T) {
	calls := 0
	err := Do(3, time.Millisecond, func() error {
		calls++
		return fmt.Errorf("%w: expected 1024, got 768", domain.ErrDimensionMismatch)
	})

	if !errors.Is(err, domain.ErrDimensionMismatch) {
		t.Fatalf("expected ErrDimensionMismatch, got %v", err)
	}
	if calls != 1 {
		t.Errorf("expected 1 call for a fatal error, got %d", calls)
	}
}

func TestBackoffGrowth(t *testing.T) {
	base := 100 * time.Millisecond

	if got := Backoff(base, 0); got != 0 {
		t.Errorf("attempt 0: expected 0, got %s", got)
	}
	if got := Backoff(base, 1); got != 100*time.Millisecond {
		t.Errorf("attempt 1: expected 100ms, got %s", got)
	}
	if got := Backoff(base, 2); got != 200*time.Millisecond {
		t.Errorf("attempt 2: expected 200ms, got %s", got)
	}
	if got := Backoff(base, 3); got != 400*time.Millisecond {
		t.Errorf("attempt 3: expected 400ms, got %s", got)
	}
	if got := Backoff(base, 60); got != maxBackoff {
		t.Errorf("attempt 60: expected cap %s, got %s", maxBackoff, got)
	}
}
