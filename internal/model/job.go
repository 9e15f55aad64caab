package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/ytget/tubegrab/internal/errors"
)

// Job is a read-only snapshot of the supervisor's current job.
type Job struct {
	ID         string
	Request    Request
	Descriptor string // key of the resolved extractor descriptor
	State      JobState
	Percent    float64 // 0 to 100, last valid value
	Status     string  // human readable status text
	ItemIndex  int     // 1-based, 0 before the first item
	ItemCount  int
	Title      string // current item title
	Speed      string // human readable speed (e.g., "1.2MB/s")
	ETASec     int    // ETA in seconds, -1 if unknown
	StartedAt  time.Time
	FinishedAt time.Time
	Result     *Result // set once the job is finished
}

// Result is the terminal outcome of a job.
type Result struct {
	Outcome     Outcome
	Kind        errors.Kind // KindNone unless Failed or Cancelled
	Message     string
	Hint        string // remediation text for Failed results
	ItemsDone   int
	ItemsFailed int
	ItemsTotal  int
	Files       []string // output files reported by the transfer backends
}

// GetETAString returns ETA formatted as hh:mm:ss, or "—" if unknown
func (j *Job) GetETAString() string {
	if j.ETASec <= 0 {
		return "—"
	}

	hours := j.ETASec / 3600
	minutes := (j.ETASec % 3600) / 60
	seconds := j.ETASec % 60

	if hours > 0 {
		return fmt.Sprintf("%02d:%02d:%02d", hours, minutes, seconds)
	}
	return fmt.Sprintf("%02d:%02d", minutes, seconds)
}

// GetDisplayTitle returns the item title, the last output file name, or the
// requested location in order of preference.
func (j *Job) GetDisplayTitle() string {
	if j.Title != "" && !strings.HasPrefix(j.Title, "http") {
		return j.Title
	}

	if j.Result != nil && len(j.Result.Files) > 0 {
		path := j.Result.Files[len(j.Result.Files)-1]
		parts := strings.FieldsFunc(path, func(r rune) bool {
			return r == '/' || r == '\\'
		})
		if len(parts) > 0 {
			filename := parts[len(parts)-1]
			if idx := strings.LastIndex(filename, "."); idx > 0 {
				filename = filename[:idx]
			}
			return filename
		}
	}

	return j.Request.Location
}
