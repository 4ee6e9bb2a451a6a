// Package metrics records build and plugin timings.
package metrics

import "time"

// Outcome labels a finished build.
type Outcome string

const (
	OutcomeSuccess  Outcome = "success"
	OutcomeFailed   Outcome = "failed"
	OutcomeCanceled Outcome = "canceled"
)

// Recorder receives build observations. Implementations may forward to
// Prometheus or drop everything (NoopRecorder).
type Recorder interface {
	ObservePluginDuration(plugin string, d time.Duration)
	ObserveBuildDuration(d time.Duration)
	IncBuildOutcome(outcome Outcome)
	SetFileCount(n int)
}

// NoopRecorder is the default when metrics are not configured.
type NoopRecorder struct{}

func (NoopRecorder) ObservePluginDuration(string, time.Duration) {}
func (NoopRecorder) ObserveBuildDuration(time.Duration)          {}
func (NoopRecorder) IncBuildOutcome(Outcome)                     {}
func (NoopRecorder) SetFileCount(int)                            {}
