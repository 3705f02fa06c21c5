package api

import "time"

// RetryPolicy encodes whether, how many more times, and with what backoff a
// failed request is retried. The zero value is the no-retry policy.
//
// The state machine is held by the request descriptor itself: each applied
// retry produces a successor policy with one fewer remaining attempt and a
// doubled delay. Retries stop once a single attempt remains.
type RetryPolicy struct {
	remaining int
	delay     time.Duration
}

// NoRetry returns the policy that never reschedules a failure.
func NoRetry() RetryPolicy {
	return RetryPolicy{}
}

// MultipleAttempts returns a policy allowing up to remaining attempts in
// total, with the given delay before the first rescheduled attempt.
func MultipleAttempts(remaining int, delay time.Duration) RetryPolicy {
	if remaining < 0 {
		remaining = 0
	}
	return RetryPolicy{remaining: remaining, delay: delay}
}

// ShouldRetry reports whether a failure under this policy is rescheduled.
// Only a multiple-attempts policy with more than one attempt left retries.
func (p RetryPolicy) ShouldRetry() bool {
	return p.remaining > 1
}

// Remaining returns the number of attempts left, including the current one.
func (p RetryPolicy) Remaining() int {
	return p.remaining
}

// Delay returns the backoff applied before the next rescheduled attempt.
func (p RetryPolicy) Delay() time.Duration {
	return p.delay
}

// Next returns the successor policy: one fewer remaining attempt, doubled
// delay. Calling Next on an exhausted policy returns an exhausted policy.
func (p RetryPolicy) Next() RetryPolicy {
	if p.remaining <= 0 {
		return RetryPolicy{}
	}
	return RetryPolicy{
		remaining: p.remaining - 1,
		delay:     p.delay * 2,
	}
}
