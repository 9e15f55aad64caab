package ui

import (
	"fmt"
	"strings"

	"github.com/ytget/tubegrab/internal/model"
	"github.com/ytget/tubegrab/internal/platform"
)

// jobView is what a progress area shows for one event stream. It is only
// touched on the fyne main thread.
type jobView struct {
	JobID    string
	Progress float64 // 0 to 1
	Status   string
	Detail   string // speed and ETA of the current item
	Running  bool
	Result   *model.Result
}

// apply folds ev into the view. Events of another job reset it.
func (v jobView) apply(ev model.ProgressEvent) jobView {
	if ev.JobID != v.JobID {
		v = jobView{JobID: ev.JobID}
	}
	if ev.HasPercent {
		v.Progress = ev.Percent / 100
	}
	v.Status = ev.Text
	v.Detail = itemDetail(ev)
	v.Running = !ev.IsTerminal()
	if ev.Result != nil {
		v.Result = ev.Result
		v.Status = resultText(ev.Result)
		v.Detail = ""
	}
	return v
}

// Files returns the output files of a finished job.
func (v jobView) Files() []string {
	if v.Result == nil {
		return nil
	}
	return v.Result.Files
}

// ProgressText renders the progress as a percentage.
func (v jobView) ProgressText() string {
	return fmt.Sprintf(ProgressLabelFormat, v.Progress*100)
}

func itemDetail(ev model.ProgressEvent) string {
	var parts []string
	if ev.Speed != "" {
		parts = append(parts, ev.Speed)
	}
	if ev.ETASec > 0 {
		job := model.Job{ETASec: ev.ETASec}
		parts = append(parts, job.GetETAString())
	}
	return strings.Join(parts, MiddleDotSeparator)
}

// resultText is the status line of a finished job. Failures carry their
// remediation hint on a second line.
func resultText(r *model.Result) string {
	if r.Outcome == model.OutcomeFailed && r.Hint != "" {
		return r.Message + "\n" + r.Hint
	}
	return r.Message
}

// toolStatusText describes a detected FFmpeg.
func toolStatusText(info platform.ToolInfo, loc *Localization) string {
	if !info.Found() {
		return loc.GetText(KeyFFmpegMissing)
	}
	version := info.Version
	if version == "" {
		version = DashPlaceholder
	}
	if !info.Supported {
		return fmt.Sprintf(loc.GetText(KeyFFmpegOld), version, info.Path)
	}
	return fmt.Sprintf(loc.GetText(KeyFFmpegFound), version, info.Path)
}
