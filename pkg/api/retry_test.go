package api

import (
	"testing"
	"time"
)

func TestRetryPolicy_ZeroValueNeverRetries(t *testing.T) {
	var policy RetryPolicy
	if policy.ShouldRetry() {
		t.Error("Zero-value policy must not retry")
	}
	if NoRetry().ShouldRetry() {
		t.Error("NoRetry() must not retry")
	}
}

func TestRetryPolicy_SuccessorChain(t *testing.T) {
	policy := MultipleAttempts(3, 100*time.Millisecond)

	tests := []struct {
		name          string
		wantRemaining int
		wantDelay     time.Duration
		wantRetry     bool
	}{
		{"first attempt", 3, 100 * time.Millisecond, true},
		{"second attempt", 2, 200 * time.Millisecond, true},
		{"final attempt", 1, 400 * time.Millisecond, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if policy.Remaining() != tt.wantRemaining {
				t.Errorf("Remaining() = %d, want %d", policy.Remaining(), tt.wantRemaining)
			}
			if policy.Delay() != tt.wantDelay {
				t.Errorf("Delay() = %v, want %v", policy.Delay(), tt.wantDelay)
			}
			if policy.ShouldRetry() != tt.wantRetry {
				t.Errorf("ShouldRetry() = %v, want %v", policy.ShouldRetry(), tt.wantRetry)
			}
			policy = policy.Next()
		})
	}
}

func TestRetryPolicy_NextOnExhausted(t *testing.T) {
	next := NoRetry().Next()
	if next.Remaining() != 0 || next.ShouldRetry() {
		t.Errorf("Next() on exhausted policy = %+v, want zero policy", next)
	}
}

func TestMultipleAttempts_NegativeClamped(t *testing.T) {
	policy := MultipleAttempts(-5, time.Second)
	if policy.Remaining() != 0 {
		t.Errorf("Remaining() = %d, want 0", policy.Remaining())
	}
}
