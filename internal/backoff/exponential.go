package backoff

import (
	"math"
	"math/rand/v2"
	"time"
)

// JitteredExponential returns a time.Duration to wait before the next retry
// when employing a "jittered" exponential backoff. The un-jittered delay is
// base * 2^failureCount, capped at maxDelay. The value returned falls in the
// upper half of that delay, so retries from many concurrent callers that
// failed at the same moment (typically because they were throttled together)
// become increasingly staggered as failures accumulate.
func JitteredExponential(
	failureCount int,
	base time.Duration,
	maxDelay time.Duration,
) time.Duration {
	exp := math.Pow(2, float64(failureCount))
	capped := math.Min(exp*float64(base), float64(maxDelay))
	jittered := (1 + rand.Float64()) * (capped / 2) // nolint: gosec
	return time.Duration(jittered)
}

// Delayer computes retry delays for AWS SDK calls. It satisfies the SDK's
// retry.BackoffDelayer interface.
type Delayer struct {
	Base     time.Duration
	MaxDelay time.Duration
}

// NewDelayer returns a Delayer with a base delay of 100ms and the provided cap.
func NewDelayer(maxDelay time.Duration) *Delayer {
	return &Delayer{
		Base:     100 * time.Millisecond,
		MaxDelay: maxDelay,
	}
}

// BackoffDelay returns the delay to wait before the provided retry attempt.
// Attempts are numbered from 1.
func (d *Delayer) BackoffDelay(attempt int, _ error) (time.Duration, error) {
	return JitteredExponential(attempt, d.Base, d.MaxDelay), nil
}
