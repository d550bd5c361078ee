// Package metrics records build and dev-server metrics.
package metrics

import "time"

// Build outcomes.
const (
	OutcomeSuccess = "success"
	OutcomeFailed  = "failed"
)

// Recorder receives build and server observations. Implementations must be
// safe for concurrent use.
type Recorder interface {
	ObserveStageDuration(stage string, d time.Duration)
	ObserveBuildDuration(d time.Duration)
	IncBuildOutcome(outcome string)
	SetCollectionSize(name string, n int)
	AddFilesWritten(kind string, n int)
	IncNotFound()
}

// NoopRecorder discards everything.
type NoopRecorder struct{}

func (NoopRecorder) ObserveStageDuration(string, time.Duration) {}
func (NoopRecorder) ObserveBuildDuration(time.Duration)         {}
func (NoopRecorder) IncBuildOutcome(string)                     {}
func (NoopRecorder) SetCollectionSize(string, int)              {}
func (NoopRecorder) AddFilesWritten(string, int)                {}
func (NoopRecorder) IncNotFound()                               {}
