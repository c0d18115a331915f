// Package metrics records resolution metrics. The Recorder interface keeps
// the pipeline decoupled from Prometheus; a noop implementation serves
// one-shot CLI runs where no endpoint is exposed.
package metrics

import "time"

// OutcomeLabel classifies a single file resolution.
type OutcomeLabel string

const (
	OutcomeResolved  OutcomeLabel = "resolved"
	OutcomeUntracked OutcomeLabel = "untracked"
	OutcomeExcluded  OutcomeLabel = "excluded"
	OutcomeShallow   OutcomeLabel = "shallow"
)

// Recorder receives resolution events.
type Recorder interface {
	ObserveResolveDuration(d time.Duration)
	ObserveRunDuration(d time.Duration)
	IncResolution(outcome OutcomeLabel)
	IncWarning(kind string)
	IncCacheHit()
	IncCacheMiss()
	SetPages(n int)
}

// NoopRecorder discards all events.
type NoopRecorder struct{}

func (NoopRecorder) ObserveResolveDuration(time.Duration) {}
func (NoopRecorder) ObserveRunDuration(time.Duration)     {}
func (NoopRecorder) IncResolution(OutcomeLabel)           {}
func (NoopRecorder) IncWarning(string)                    {}
func (NoopRecorder) IncCacheHit()                         {}
func (NoopRecorder) IncCacheMiss()                        {}
func (NoopRecorder) SetPages(int)                         {}
