package abortx

import (
	"context"
	"errors"
)

type abortError struct{}

func (abortError) Error() string { return "operation aborted" }

func (abortError) Aborted() bool { return true }

// ErrAborted is the cancellation sentinel: it signals an intentional stop,
// never a defect. It is safe to swallow at an explicit boundary such as
// IgnoreAbort.
var ErrAborted error = abortError{}

// IsAbortError reports whether err represents cancellation rather than a
// genuine failure. Recognition is structural: any error in the chain that
// exposes an Aborted() bool method reporting true qualifies, so cancellation
// errors from independently bundled copies of this package are still
// recognized. context.Canceled is recognized as well, so results crossing
// the context bridge keep their meaning.
func IsAbortError(err error) bool {
	var a interface{ Aborted() bool }
	if errors.As(err, &a) {
		return a.Aborted()
	}
	return errors.Is(err, context.Canceled)
}

// IgnoreAbort maps cancellation errors to nil and returns every other error
// unchanged. It is the explicit "treat cancellation as success" boundary for
// backgrounded operations whose shutdown is expected.
func IgnoreAbort(err error) error {
	if IsAbortError(err) {
		return nil
	}
	return err
}

// OnlyAbort returns err when it is a cancellation error and nil otherwise.
// It is the mirror of IgnoreAbort, for handlers that deal with genuine
// failures in place but let cancellation propagate.
func OnlyAbort(err error) error {
	if IsAbortError(err) {
		return err
	}
	return nil
}

// Check returns ErrAborted when sig is already cancelled and nil otherwise.
func Check(sig *Signal) error {
	if sig.Cancelled() {
		return ErrAborted
	}
	return nil
}
