// Package retry repeats abortable operations with capped exponential
// backoff and half-jitter, and offers a hedged variant that races redundant
// attempts instead of waiting for failures.
package retry

import (
	"math"
	"math/rand"
	"time"

	"github.com/deeplay-io/abortx-go/abortx"
)

// Options configure Retry and Proactive.
type Options struct {
	// BaseDelay is the first backoff step. Defaults to one second.
	BaseDelay time.Duration
	// MaxDelay caps the computed backoff. Defaults to 30 seconds.
	MaxDelay time.Duration
	// MaxAttempts bounds how many times the operation runs. Zero or
	// negative means unlimited.
	MaxAttempts int
	// OnError is invoked after each genuine failure that will be retried,
	// with the attempt number and the delay chosen before the next one.
	OnError func(err error, attempt int, delay time.Duration)
}

func (o Options) withDefaults() Options {
	if o.BaseDelay <= 0 {
		o.BaseDelay = time.Second
	}
	if o.MaxDelay <= 0 {
		o.MaxDelay = 30 * time.Second
	}
	return o
}

// backoff computes the half-jittered delay after a failed attempt: the raw
// backoff is min(MaxDelay, BaseDelay*2^attempt), and the delay is sampled
// uniformly from [backoff/2, backoff], rounded to the nearest millisecond.
func backoff(o Options, attempt int) time.Duration {
	b := float64(o.BaseDelay) * math.Pow(2, float64(attempt))
	if m := float64(o.MaxDelay); b > m {
		b = m
	}
	d := b/2 + rand.Float64()*b/2
	return time.Duration(d).Round(time.Millisecond)
}

// Retry runs fn until it succeeds, sleeping a backoff-derived delay between
// attempts. Cancellation errors propagate immediately, without another
// attempt. fn receives the zero-based attempt number and a reset function;
// calling reset rewinds the attempt counter so that the next delay is zero
// and the backoff schedule starts over.
func Retry[T any](sig *abortx.Signal, fn func(sig *abortx.Signal, attempt int, reset func()) (T, error), opts Options) (T, error) {
	var zero T
	o := opts.withDefaults()

	attempt := 0
	reset := func() { attempt = -1 }
	for {
		cur := attempt
		v, err := fn(sig, cur, reset)
		if err == nil {
			return v, nil
		}
		if abortx.IsAbortError(err) {
			return zero, err
		}
		if o.MaxAttempts > 0 && cur+1 >= o.MaxAttempts {
			return zero, err
		}
		// a reset inside fn rewinds the counter, zeroing the next delay
		var d time.Duration
		if attempt >= 0 {
			d = backoff(o, attempt)
		}
		if o.OnError != nil {
			o.OnError(err, cur, d)
		}
		if err := abortx.Delay(sig, d); err != nil {
			return zero, err
		}
		attempt++
	}
}
