package driver

import "time"

// PhaseStatus reports whether a phase started or finished.
type PhaseStatus int

const (
	// PhaseStart indicates that a run phase has begun.
	PhaseStart PhaseStatus = iota
	PhaseEnd
)

// PhaseEvent describes a timing phase boundary. File is empty for the run
// level load and resolve phases and names the fixture path for the
// per-file events emitted while resolving.
type PhaseEvent struct {
	Name    string
	File    string
	Status  PhaseStatus
	Elapsed time.Duration
	// Cached and Errors are set on the PhaseEnd event of a file.
	Cached bool
	Errors bool
}

// PhaseObserver receives phase events emitted during ResolveFiles. Per-file
// events arrive from the worker goroutines, so the observer must be safe
// for concurrent use.
type PhaseObserver func(PhaseEvent)

func (o PhaseObserver) emit(name string, status PhaseStatus, elapsed time.Duration) {
	o.emitEvent(PhaseEvent{Name: name, Status: status, Elapsed: elapsed})
}

func (o PhaseObserver) emitEvent(ev PhaseEvent) {
	if o == nil {
		return
	}
	o(ev)
}
