package cli

import (
	"io"

	"github.com/pterm/pterm"

	"github.com/ytget/tubegrab/internal/model"
)

// renderer prints one event stream. A single progress bar tracks the
// aggregate percentage; milestones are printed as prefixed lines.
type renderer struct {
	out     io.Writer
	info    *pterm.PrefixPrinter
	success *pterm.PrefixPrinter
	warning *pterm.PrefixPrinter
	failure *pterm.PrefixPrinter
	bar     *pterm.ProgressbarPrinter
}

func newRenderer(out io.Writer) *renderer {
	return &renderer{
		out:     out,
		info:    pterm.Info.WithWriter(out),
		success: pterm.Success.WithWriter(out),
		warning: pterm.Warning.WithWriter(out),
		failure: pterm.Error.WithWriter(out),
	}
}

func (r *renderer) render(ev model.ProgressEvent) {
	switch ev.Kind {
	case model.EventPreparing:
		r.info.Println(ev.Text)
		r.startBar(ev.Text)
	case model.EventItemStarted:
		if r.bar != nil {
			r.bar.UpdateTitle(ev.Text)
		}
	case model.EventDownloading:
		r.advance(ev)
	case model.EventItemFinished:
		r.advance(ev)
		r.info.Println(ev.Text)
	case model.EventError:
		r.warning.Println(ev.Text)
	case model.EventJobFinished:
		r.advance(ev)
		r.stopBar()
		r.result(ev.Result)
	}
}

func (r *renderer) startBar(title string) {
	bar, err := pterm.DefaultProgressbar.
		WithTotal(100).
		WithTitle(title).
		WithWriter(r.out).
		WithRemoveWhenDone(true).
		Start()
	if err == nil {
		r.bar = bar
	}
}

// advance moves the bar to the event's percentage. It never moves back.
func (r *renderer) advance(ev model.ProgressEvent) {
	if r.bar == nil || !ev.HasPercent {
		return
	}
	target := int(ev.Percent)
	if target > r.bar.Total {
		target = r.bar.Total
	}
	if delta := target - r.bar.Current; delta > 0 {
		r.bar.Add(delta)
	}
}

func (r *renderer) stopBar() {
	if r.bar != nil {
		_, _ = r.bar.Stop()
		r.bar = nil
	}
}

func (r *renderer) cancelRequested(text string) {
	r.warning.Println(text)
}

func (r *renderer) result(res *model.Result) {
	if res == nil {
		return
	}
	switch res.Outcome {
	case model.OutcomeCompleted:
		if res.ItemsFailed > 0 {
			r.warning.Println(res.Message)
		} else {
			r.success.Println(res.Message)
		}
		for _, f := range res.Files {
			pterm.Fprintln(r.out, "  "+f)
		}
	case model.OutcomeCancelled:
		r.warning.Println(res.Message)
	default:
		r.failure.Println(res.Message)
		if res.Hint != "" {
			r.info.Println(res.Hint)
		}
	}
}
