package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestPollMetrics(t *testing.T) {
	before := testutil.ToFloat64(pollFailures.WithLabelValues("test-loop"))

	ObservePoll("test-loop", 20*time.Millisecond, nil)
	ObservePoll("test-loop", 30*time.Millisecond, errors.New("timeout"))

	if got := testutil.ToFloat64(pollFailures.WithLabelValues("test-loop")) - before; got != 1 {
		t.Errorf("failures delta = %v, want 1", got)
	}
}

func TestPTZRequestResult(t *testing.T) {
	okBefore := testutil.ToFloat64(ptzRequests.WithLabelValues("move", "ok"))
	errBefore := testutil.ToFloat64(ptzRequests.WithLabelValues("stop", "error"))

	PTZRequest("move", nil)
	PTZRequest("stop", errors.New("refused"))

	if got := testutil.ToFloat64(ptzRequests.WithLabelValues("move", "ok")) - okBefore; got != 1 {
		t.Errorf("move ok delta = %v", got)
	}
	if got := testutil.ToFloat64(ptzRequests.WithLabelValues("stop", "error")) - errBefore; got != 1 {
		t.Errorf("stop error delta = %v", got)
	}
}

func TestPlayerLifecycleGauge(t *testing.T) {
	before := testutil.ToFloat64(playersActive.WithLabelValues("snapshot"))

	PlayerMounted("snapshot")
	PlayerMounted("snapshot")
	PlayerTornDown("snapshot")

	if got := testutil.ToFloat64(playersActive.WithLabelValues("snapshot")) - before; got != 1 {
		t.Errorf("active delta = %v, want 1", got)
	}

	PlayerFrames("metrics-test-cam", 5)
	PlayerFrames("metrics-test-cam", 0)
	if got := testutil.ToFloat64(playerFrames.WithLabelValues("metrics-test-cam")); got != 5 {
		t.Errorf("frames = %v, want 5", got)
	}
	DeletePlayerMetrics("metrics-test-cam")
	DeletePlayerMetrics("never-seen")
}

func TestBackendUp(t *testing.T) {
	SetBackendUp(true)
	if testutil.ToFloat64(backendUp) != 1 {
		t.Error("backend should be up")
	}
	SetBackendUp(false)
	if testutil.ToFloat64(backendUp) != 0 {
		t.Error("backend should be down")
	}
}
