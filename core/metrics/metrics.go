package metrics

import "time"

// BuildEvent summarizes one formulation run for observability purposes.
type BuildEvent struct {
	BuildID     string
	Scenarios   int
	Buses       int
	Lines       int
	Units       int
	Variables   int
	Constraints int
	Duration    time.Duration
	Time        time.Time
}

// BuildSink records formulation events.
type BuildSink interface {
	RecordBuild(ev BuildEvent) error
}

// NopSink discards all events.
type NopSink struct{}

// RecordBuild implements BuildSink.
func (NopSink) RecordBuild(BuildEvent) error { return nil }
