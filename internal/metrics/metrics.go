// Package metrics provides Prometheus metrics for polling, PTZ and preview players.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "ptzdeck"

var (
	pollDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "poll",
		Name:      "duration_seconds",
		Help:      "Duration of one poll tick",
		Buckets:   []float64{.01, .025, .05, .1, .25, .5, 1, 2.5, 5},
	}, []string{"loop"})

	pollFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "poll",
		Name:      "failures_total",
		Help:      "Poll ticks that returned an error",
	}, []string{"loop"})

	staleSnapshots = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "store",
		Name:      "stale_snapshots_total",
		Help:      "Camera list responses dropped because a newer one was already applied",
	})

	backendUp = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "backend",
		Name:      "up",
		Help:      "1 when the last health check succeeded",
	})

	ptzRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "ptz",
		Name:      "requests_total",
		Help:      "PTZ commands sent, by action and result",
	}, []string{"action", "result"})

	playerMounts = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "player",
		Name:      "mounts_total",
		Help:      "Preview players mounted",
	}, []string{"strategy"})

	playerTeardowns = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "player",
		Name:      "teardowns_total",
		Help:      "Preview players torn down",
	}, []string{"strategy"})

	playersActive = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "player",
		Name:      "active",
		Help:      "Currently mounted preview players",
	}, []string{"strategy"})

	playerErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "player",
		Name:      "errors_total",
		Help:      "Preview player errors (overlays shown)",
	}, []string{"strategy"})

	playerFrames = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "player",
		Name:      "frames_total",
		Help:      "Frames (snapshot) or segments (segmented) observed per camera",
	}, []string{"camera_id"})

	notices = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "console",
		Name:      "notices_total",
		Help:      "Operator notices raised",
	}, []string{"level"})

	apiRequests = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "api",
		Name:      "request_duration_seconds",
		Help:      "Local control API request latency",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "operation", "status"})
)

// ObservePoll records one poll tick.
func ObservePoll(loop string, d time.Duration, err error) {
	pollDuration.WithLabelValues(loop).Observe(d.Seconds())
	if err != nil {
		pollFailures.WithLabelValues(loop).Inc()
	}
}

// StaleSnapshotDropped counts a camera list response that arrived out of order.
func StaleSnapshotDropped() {
	staleSnapshots.Inc()
}

// SetBackendUp records the outcome of the last health check.
func SetBackendUp(up bool) {
	if up {
		backendUp.Set(1)
		return
	}
	backendUp.Set(0)
}

// PTZRequest counts a PTZ command.
func PTZRequest(action string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	ptzRequests.WithLabelValues(action, result).Inc()
}

// PlayerMounted counts a mounted preview player.
func PlayerMounted(strategy string) {
	playerMounts.WithLabelValues(strategy).Inc()
	playersActive.WithLabelValues(strategy).Inc()
}

// PlayerTornDown counts a torn down preview player.
func PlayerTornDown(strategy string) {
	playerTeardowns.WithLabelValues(strategy).Inc()
	playersActive.WithLabelValues(strategy).Dec()
}

// PlayerError counts an error overlay.
func PlayerError(strategy string) {
	playerErrors.WithLabelValues(strategy).Inc()
}

// PlayerFrames adds n decoded frames or segments for a camera.
func PlayerFrames(cameraID string, n int) {
	if n <= 0 {
		return
	}
	playerFrames.WithLabelValues(cameraID).Add(float64(n))
}

// DeletePlayerMetrics removes the per-camera series.
func DeletePlayerMetrics(cameraID string) {
	playerFrames.DeleteLabelValues(cameraID)
}

// Notice counts an operator notice.
func Notice(level string) {
	notices.WithLabelValues(level).Inc()
}

// APIRequest records one control API request.
func APIRequest(method, operation string, status int, d time.Duration) {
	apiRequests.WithLabelValues(method, operation, strconv.Itoa(status)).Observe(d.Seconds())
}
