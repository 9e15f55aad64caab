package model

import "time"

// EventKind tags a ProgressEvent.
type EventKind string

const (
	// EventPreparing is the first event of every job, sent before any network activity
	EventPreparing EventKind = "preparing"
	// EventItemStarted marks the start of a sub-item
	EventItemStarted EventKind = "item-started"
	// EventDownloading is a throttled streaming update
	EventDownloading EventKind = "downloading-update"
	// EventItemFinished marks a sub-item that completed
	EventItemFinished EventKind = "item-finished"
	// EventError reports a sub-item failure that did not end the job
	EventError EventKind = "error"
	// EventJobFinished is the single terminal event; it always carries a Result
	EventJobFinished EventKind = "job-finished"
)

// ProgressEvent describes one state transition of a job. Values are
// immutable once posted.
type ProgressEvent struct {
	JobID      string
	Seq        uint64 // strictly increasing per job, starting at 1
	Kind       EventKind
	Percent    float64
	HasPercent bool
	Text       string
	ItemIndex  int
	ItemCount  int
	Title      string
	Speed      string
	ETASec     int
	At         time.Time
	Result     *Result
}

// IsTerminal reports whether the event ends its job.
func (e ProgressEvent) IsTerminal() bool {
	return e.Kind == EventJobFinished
}
