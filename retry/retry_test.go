package retry

import (
	"errors"
	"testing"
	"time"

	"go.uber.org/goleak"

	"github.com/deeplay-io/abortx-go/abortx"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestBackoffWithinHalfJitterBounds(t *testing.T) {
	t.Parallel()
	o := Options{BaseDelay: time.Second, MaxDelay: time.Hour}
	for attempt := 0; attempt < 5; attempt++ {
		raw := time.Second << attempt
		for i := 0; i < 200; i++ {
			d := backoff(o, attempt)
			lo := raw/2 - time.Millisecond
			hi := raw + time.Millisecond
			if d < lo || d > hi {
				t.Fatalf("attempt %d: delay %v outside [%v, %v]", attempt, d, lo, hi)
			}
			if d != d.Round(time.Millisecond) {
				t.Fatalf("delay %v not rounded to milliseconds", d)
			}
		}
	}
}

func TestBackoffCappedByMaxDelay(t *testing.T) {
	t.Parallel()
	o := Options{BaseDelay: time.Second, MaxDelay: 3 * time.Second}
	for i := 0; i < 100; i++ {
		if d := backoff(o, 10); d > 3*time.Second+time.Millisecond {
			t.Fatalf("delay %v exceeds the cap", d)
		}
	}
}

func TestRetrySucceedsAfterFailures(t *testing.T) {
	t.Parallel()
	ctl := abortx.NewController()
	attempts := []int{}
	v, err := Retry(ctl.Signal(), func(_ *abortx.Signal, attempt int, _ func()) (string, error) {
		attempts = append(attempts, attempt)
		if attempt < 2 {
			return "", errors.New("transient")
		}
		return "ok", nil
	}, Options{BaseDelay: time.Millisecond, MaxDelay: 2 * time.Millisecond})
	if err != nil || v != "ok" {
		t.Fatalf("got (%q, %v), want (ok, nil)", v, err)
	}
	if len(attempts) != 3 || attempts[0] != 0 || attempts[1] != 1 || attempts[2] != 2 {
		t.Fatalf("unexpected attempt sequence %v", attempts)
	}
}

func TestRetryAbortErrorPropagatesImmediately(t *testing.T) {
	t.Parallel()
	ctl := abortx.NewController()
	calls := 0
	_, err := Retry(ctl.Signal(), func(*abortx.Signal, int, func()) (int, error) {
		calls++
		return 0, abortx.ErrAborted
	}, Options{BaseDelay: time.Millisecond})
	if !abortx.IsAbortError(err) {
		t.Fatalf("expected abort error, got %v", err)
	}
	if calls != 1 {
		t.Fatalf("aborted operation was retried %d times", calls)
	}
}

func TestRetryMaxAttempts(t *testing.T) {
	t.Parallel()
	ctl := abortx.NewController()
	boom := errors.New("boom")
	calls := 0
	_, err := Retry(ctl.Signal(), func(*abortx.Signal, int, func()) (int, error) {
		calls++
		return 0, boom
	}, Options{BaseDelay: time.Millisecond, MaxAttempts: 3})
	if !errors.Is(err, boom) {
		t.Fatalf("got %v, want %v", err, boom)
	}
	if calls != 3 {
		t.Fatalf("operation ran %d times, want 3", calls)
	}
}

func TestRetryResetSkipsDelay(t *testing.T) {
	t.Parallel()
	ctl := abortx.NewController()
	calls := 0
	var attempts []int
	start := time.Now()
	v, err := Retry(ctl.Signal(), func(_ *abortx.Signal, attempt int, reset func()) (int, error) {
		calls++
		attempts = append(attempts, attempt)
		if calls == 1 {
			reset()
			return 0, errors.New("transient")
		}
		return 42, nil
	}, Options{BaseDelay: 500 * time.Millisecond})
	if err != nil || v != 42 {
		t.Fatalf("got (%d, %v), want (42, nil)", v, err)
	}
	if elapsed := time.Since(start); elapsed > 100*time.Millisecond {
		t.Fatalf("reset did not zero the next delay: elapsed %v", elapsed)
	}
	// the counter was rewound, so the second call starts over at attempt 0
	if len(attempts) != 2 || attempts[0] != 0 || attempts[1] != 0 {
		t.Fatalf("unexpected attempt sequence %v", attempts)
	}
}

func TestRetryCancelledDuringBackoff(t *testing.T) {
	t.Parallel()
	ctl := abortx.NewController()
	go func() {
		time.Sleep(5 * time.Millisecond)
		ctl.Trigger()
	}()
	start := time.Now()
	_, err := Retry(ctl.Signal(), func(*abortx.Signal, int, func()) (int, error) {
		return 0, errors.New("transient")
	}, Options{BaseDelay: time.Minute})
	if !abortx.IsAbortError(err) {
		t.Fatalf("expected abort error, got %v", err)
	}
	if time.Since(start) > time.Second {
		t.Fatal("retry did not react to cancellation during backoff")
	}
}

func TestRetryOnErrorHook(t *testing.T) {
	t.Parallel()
	ctl := abortx.NewController()
	boom := errors.New("boom")
	var hookErrs []error
	var hookDelays []time.Duration
	_, err := Retry(ctl.Signal(), func(_ *abortx.Signal, attempt int, _ func()) (int, error) {
		if attempt == 2 {
			return 42, nil
		}
		return 0, boom
	}, Options{
		BaseDelay: time.Millisecond,
		OnError: func(err error, _ int, delay time.Duration) {
			hookErrs = append(hookErrs, err)
			hookDelays = append(hookDelays, delay)
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(hookErrs) != 2 || !errors.Is(hookErrs[0], boom) {
		t.Fatalf("unexpected hook errors %v", hookErrs)
	}
	for _, d := range hookDelays {
		if d < 0 {
			t.Fatalf("negative delay %v reported to OnError", d)
		}
	}
}
