package model

// JobState represents the lifecycle state of a download job
type JobState string

const (
	// JobStateIdle means no job has run yet
	JobStateIdle JobState = "Idle"

	// JobStateRunning means the worker is active
	JobStateRunning JobState = "Running"

	// JobStateCancelling means cancel was requested but not yet observed by the worker
	JobStateCancelling JobState = "Cancelling"

	// JobStateCompleted means every item finished
	JobStateCompleted JobState = "Completed"

	// JobStateFailed means the job ended with an error
	JobStateFailed JobState = "Failed"

	// JobStateCancelled means the worker observed the cancel request and unwound
	JobStateCancelled JobState = "Cancelled"
)

var allowedTransitions = map[JobState]map[JobState]bool{
	JobStateIdle: {
		JobStateRunning: true,
	},
	JobStateRunning: {
		JobStateCancelling: true,
		JobStateCompleted:  true,
		JobStateFailed:     true,
		JobStateCancelled:  true,
	},
	JobStateCancelling: {
		JobStateCompleted: true,
		JobStateFailed:    true,
		JobStateCancelled: true,
	},
	JobStateCompleted: {
		JobStateRunning: true,
	},
	JobStateFailed: {
		JobStateRunning: true,
	},
	JobStateCancelled: {
		JobStateRunning: true,
	},
}

// String returns the string representation of JobState
func (s JobState) String() string {
	return string(s)
}

// IsActive returns true while a worker owns the job
func (s JobState) IsActive() bool {
	return s == JobStateRunning || s == JobStateCancelling
}

// IsFinished returns true for terminal states
func (s JobState) IsFinished() bool {
	return s == JobStateCompleted || s == JobStateFailed || s == JobStateCancelled
}

// CanTransition reports whether from -> to is a legal lifecycle step.
func CanTransition(from, to JobState) bool {
	next, ok := allowedTransitions[from]
	if !ok {
		return false
	}
	return next[to]
}

// Outcome is the terminal result of a job.
type Outcome string

const (
	OutcomeCompleted Outcome = "Completed"
	OutcomeFailed    Outcome = "Failed"
	OutcomeCancelled Outcome = "Cancelled"
)

// State maps an outcome onto its terminal JobState.
func (o Outcome) State() JobState {
	switch o {
	case OutcomeCompleted:
		return JobStateCompleted
	case OutcomeCancelled:
		return JobStateCancelled
	default:
		return JobStateFailed
	}
}
