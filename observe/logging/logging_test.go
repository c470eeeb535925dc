package logging

import (
	"errors"
	"testing"

	"github.com/hashicorp/go-hclog"
	"go.uber.org/goleak"

	"github.com/deeplay-io/abortx-go/abortx"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestObserverLogsLifecycle(t *testing.T) {
	t.Parallel()
	obs := New(hclog.NewNullLogger())
	ctl := abortx.NewController()
	_, err := abortx.Spawn(ctl.Signal(), func(_ *abortx.Signal, sc *abortx.Scope) (int, error) {
		sc.Fork(func(*abortx.Signal) error { return nil })
		sc.Fork(func(*abortx.Signal) error { return errors.New("boom") })
		return 0, nil
	}, abortx.WithObserver(obs))
	if err == nil {
		t.Fatal("expected the genuine fork failure to surface")
	}
}

func TestNewNilLoggerFallsBack(t *testing.T) {
	t.Parallel()
	if New(nil) == nil {
		t.Fatal("expected a usable observer")
	}
}
