package download

import (
	"fmt"
	"math"
	"time"

	"golang.org/x/time/rate"

	"github.com/ytget/tubegrab/internal/model"
)

// Status texts shown to the user.
const (
	StatusPreparing         = "Preparing download..."
	StatusItemError         = "Error during an item download."
	StatusComplete          = "Download Process Complete!"
	StatusCancelled         = "Download Cancelled by User."
	StatusCancelRequested   = "Cancellation requested..."
	StatusPartialTemplate   = "Downloaded %d of %d items (%d failed)"
	StatusAllFailedTemplate = "All %d items failed"
)

// TitleDisplayRunes bounds the title shown in streaming status texts.
const TitleDisplayRunes = 40

// emitter turns worker milestones into ProgressEvents for one job. It is
// used from the worker goroutine only.
type emitter struct {
	jobID    string
	queue    *EventQueue
	limiter  *rate.Limiter
	apply    func(model.ProgressEvent)
	seq      uint64
	percent  float64
	lastItem int
	done     bool
}

func newEmitter(jobID string, queue *EventQueue, interval time.Duration, apply func(model.ProgressEvent)) *emitter {
	limit := rate.Inf
	if interval > 0 {
		limit = rate.Every(interval)
	}
	return &emitter{
		jobID:   jobID,
		queue:   queue,
		limiter: rate.NewLimiter(limit, 1),
		apply:   apply,
	}
}

// validPercent reports whether p may be surfaced.
func validPercent(p float64) bool {
	return !math.IsNaN(p) && !math.IsInf(p, 0) && p >= 0 && p <= 100
}

// aggregatePercent spreads item progress over the whole job.
func aggregatePercent(index, count int, itemPercent float64) float64 {
	if count <= 0 {
		return itemPercent
	}
	return (float64(index-1) + itemPercent/100) / float64(count) * 100
}

func truncateTitle(title string) string {
	r := []rune(title)
	if len(r) > TitleDisplayRunes {
		r = r[:TitleDisplayRunes]
	}
	return string(r)
}

// post stamps and enqueues ev. Droppable events are discarded when the
// queue is full. Nothing is posted after the terminal event.
func (e *emitter) post(ev model.ProgressEvent, droppable bool, before func()) bool {
	if e.done {
		return false
	}

	ev.JobID = e.jobID
	ev.At = time.Now()
	if ev.HasPercent {
		if validPercent(ev.Percent) {
			e.percent = ev.Percent
		} else {
			ev.HasPercent = false
		}
	}
	ev.Percent = e.percent

	e.seq++
	ev.Seq = e.seq

	// The snapshot leads the queue so a consumer never sees an event the
	// snapshot does not reflect yet.
	if !ev.IsTerminal() && e.apply != nil {
		e.apply(ev)
	}

	if droppable {
		if !e.queue.TryPost(ev) {
			e.seq--
			return false
		}
	} else {
		e.queue.Post(ev, before)
	}

	if ev.IsTerminal() {
		e.done = true
	}
	return true
}

func (e *emitter) preparing() {
	e.post(model.ProgressEvent{
		Kind:       model.EventPreparing,
		Text:       StatusPreparing,
		Percent:    0,
		HasPercent: true,
	}, false, nil)
}

func (e *emitter) itemStarted(index, count int, title string) {
	e.lastItem = 0
	e.post(model.ProgressEvent{
		Kind:       model.EventItemStarted,
		Text:       fmt.Sprintf("Item %d/%d: %s", index, count, title),
		Percent:    aggregatePercent(index, count, 0),
		HasPercent: true,
		ItemIndex:  index,
		ItemCount:  count,
		Title:      title,
		ETASec:     -1,
	}, false, nil)
}

// progress reports streaming progress. Invalid readings are ignored, and
// updates are rate limited except the first of each item and 100%.
func (e *emitter) progress(index, count int, title string, p ItemProgress) {
	if !validPercent(p.Percent) {
		return
	}
	if p.Title != "" {
		title = p.Title
	}

	first := e.lastItem != index
	final := p.Percent >= 100
	allowed := e.limiter.Allow()
	if !first && !final && !allowed {
		return
	}
	e.lastItem = index

	e.post(model.ProgressEvent{
		Kind:       model.EventDownloading,
		Text:       fmt.Sprintf("Item %d/%d (%s...): %.1f%%", index, count, truncateTitle(title), p.Percent),
		Percent:    aggregatePercent(index, count, p.Percent),
		HasPercent: true,
		ItemIndex:  index,
		ItemCount:  count,
		Title:      title,
		Speed:      p.Speed,
		ETASec:     p.ETASec,
	}, !first && !final, nil)
}

func (e *emitter) itemFinished(index, count int, title string) {
	e.post(model.ProgressEvent{
		Kind:       model.EventItemFinished,
		Text:       "Finished: " + title,
		Percent:    aggregatePercent(index, count, 100),
		HasPercent: true,
		ItemIndex:  index,
		ItemCount:  count,
		Title:      title,
		ETASec:     -1,
	}, false, nil)
}

func (e *emitter) itemError(index, count int, title string) {
	e.post(model.ProgressEvent{
		Kind:      model.EventError,
		Text:      StatusItemError,
		ItemIndex: index,
		ItemCount: count,
		Title:     title,
		ETASec:    -1,
	}, false, nil)
}

// finish posts the terminal event. before runs once every earlier event
// has been enqueued.
func (e *emitter) finish(result *model.Result, before func()) {
	ev := model.ProgressEvent{
		Kind:   model.EventJobFinished,
		Text:   result.Message,
		Result: result,
		ETASec: -1,
	}
	if result.Outcome == model.OutcomeCompleted {
		ev.Percent = 100
		ev.HasPercent = true
	}
	if !e.post(ev, false, before) && before != nil {
		before()
	}
}
