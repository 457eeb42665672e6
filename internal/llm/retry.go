package llm

import "time"

// RetryPolicy is the shared LLM activity retry shape (spec §4.1): initial
// interval 2s, exponential backoff x2, cap 5 min, max 3 attempts. No pack
// library implements this exact narrow policy shape (see DESIGN.md), so
// it is a small hand-rolled calculator rather than a general-purpose
// backoff dependency.
type RetryPolicy struct {
	InitialInterval time.Duration
	Multiplier      float64
	MaxInterval     time.Duration
	MaxAttempts     int
}

// DefaultRetryPolicy returns the policy named in spec §4.1.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		InitialInterval: 2 * time.Second,
		Multiplier:      2,
		MaxInterval:     5 * time.Minute,
		MaxAttempts:     3,
	}
}

// IntervalFor returns the backoff interval before the given attempt
// number (1-indexed: attempt 1 is the first retry after the initial
// failure).
func (p RetryPolicy) IntervalFor(attempt int) time.Duration {
	interval := p.InitialInterval
	for i := 1; i < attempt; i++ {
		interval = time.Duration(float64(interval) * p.Multiplier)
		if interval > p.MaxInterval {
			return p.MaxInterval
		}
	}
	if interval > p.MaxInterval {
		return p.MaxInterval
	}
	return interval
}
