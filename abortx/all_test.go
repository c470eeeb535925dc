package abortx

import (
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

// fulfillsWith returns an abortable that settles with v after d.
func fulfillsWith[T any](v T, d time.Duration) Abortable[T] {
	return func(sig *Signal) (T, error) {
		var zero T
		if err := Delay(sig, d); err != nil {
			return zero, err
		}
		return v, nil
	}
}

func TestAllPreservesPosition(t *testing.T) {
	t.Parallel()
	ctl := NewController()
	got, err := All(ctl.Signal(), func(inner *Signal) []Abortable[any] {
		return []Abortable[any]{
			fulfillsWith[any]("x", 30*time.Millisecond),
			fulfillsWith[any](42, time.Millisecond),
		}
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if diff := cmp.Diff([]any{"x", 42}, got); diff != "" {
		t.Errorf("unexpected results (-want +got): %s", diff)
	}
}

func TestAllGenuineFailureBeatsFanOutAbort(t *testing.T) {
	t.Parallel()
	ctl := NewController()
	boom := errors.New("boom")
	siblingAborted := make(chan struct{})
	_, err := All(ctl.Signal(), func(inner *Signal) []Abortable[string] {
		return []Abortable[string]{
			func(sig *Signal) (string, error) {
				time.Sleep(5 * time.Millisecond)
				return "", boom
			},
			func(sig *Signal) (string, error) {
				err := Forever(sig)
				close(siblingAborted)
				return "", err
			},
		}
	})
	if !errors.Is(err, boom) {
		t.Fatalf("got %v, want the genuine failure %v", err, boom)
	}
	select {
	case <-siblingAborted:
	default:
		t.Fatal("All settled before the cancelled sibling did")
	}
}

func TestAllEmptyFastPath(t *testing.T) {
	t.Parallel()
	ctl := NewController()
	got, err := All(ctl.Signal(), func(*Signal) []Abortable[int] { return nil })
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected empty results, got %v", got)
	}
	if n := subCount(ctl.Signal()); n != 0 {
		t.Fatalf("empty All created %d subscriptions", n)
	}
}

func TestAllOuterCancellation(t *testing.T) {
	t.Parallel()
	ctl := NewController()
	go func() {
		time.Sleep(5 * time.Millisecond)
		ctl.Trigger()
	}()
	_, err := All(ctl.Signal(), func(*Signal) []Abortable[int] {
		return []Abortable[int]{
			func(sig *Signal) (int, error) { return 0, Forever(sig) },
			func(sig *Signal) (int, error) { return 0, Forever(sig) },
		}
	})
	if !IsAbortError(err) {
		t.Fatalf("expected abort error, got %v", err)
	}
	if n := subCount(ctl.Signal()); n != 0 {
		t.Fatalf("%d subscriptions left after settlement", n)
	}
}

func TestAllSuccessRemovesSubscription(t *testing.T) {
	t.Parallel()
	ctl := NewController()
	_, err := All(ctl.Signal(), func(*Signal) []Abortable[int] {
		return []Abortable[int]{fulfillsWith(1, time.Millisecond)}
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n := subCount(ctl.Signal()); n != 0 {
		t.Fatalf("%d subscriptions left after settlement", n)
	}
}
