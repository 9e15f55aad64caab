package download

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ytget/tubegrab/internal/errors"
	"github.com/ytget/tubegrab/internal/extractor"
	"github.com/ytget/tubegrab/internal/logger"
	"github.com/ytget/tubegrab/internal/model"
)

// run is the worker-side state of one job.
type run struct {
	id         string
	req        model.Request
	toolPath   string
	em         *emitter
	playlist   bool // Playlist mode applies to this input
	collection bool // entries came from expansion
	done       int
	failed     int
	total      int
	files      []string
}

func (r *run) result(outcome model.Outcome, message string) *model.Result {
	return &model.Result{
		Outcome:     outcome,
		Message:     message,
		ItemsDone:   r.done,
		ItemsFailed: r.failed,
		ItemsTotal:  r.total,
		Files:       r.files,
	}
}

func (r *run) cancelled() *model.Result {
	res := r.result(model.OutcomeCancelled, StatusCancelled)
	res.Kind = errors.KindCancelled
	return res
}

func (r *run) failure(err error) *model.Result {
	res := r.result(model.OutcomeFailed, err.Error())
	res.Kind = errors.KindOf(err)
	res.Hint = errors.Hint(err)
	return res
}

// work is the job goroutine. Every path ends in exactly one terminal event.
func (s *Supervisor) work(ctx context.Context, r *run) {
	var res *model.Result
	defer func() {
		if p := recover(); p != nil {
			s.log.Errorw("Worker panic recovered", logger.FieldJobID, r.id, "panic", p)
			res = r.failure(errors.Newf("internal error: %v", p))
		}
		s.finish(r, res)
	}()

	res = s.execute(ctx, r)
}

func (s *Supervisor) execute(ctx context.Context, r *run) *model.Result {
	r.em.preparing()
	if s.checkpoint() != nil {
		return r.cancelled()
	}

	d := s.registry.Resolve(r.req.Location)
	s.setDescriptor(d.Key)
	s.log.Debugw("Descriptor resolved", logger.FieldJobID, r.id, logger.FieldDescriptor, d.Key)

	entries, err := s.plan(ctx, r, d)
	if err != nil {
		err = Classify(err, s.cancelled.Load())
		if errors.KindOf(err) == errors.KindCancelled || s.checkpoint() != nil {
			return r.cancelled()
		}
		return r.failure(err)
	}
	r.total = len(entries)

	configured := r.req.ToolPath
	if configured == "" {
		configured = r.toolPath
	}
	r.toolPath = s.locate(configured)
	if r.req.Mode == model.ModeAudio && r.toolPath == "" {
		return r.failure(ToolMissing(nil))
	}

	for i, entry := range entries {
		index := i + 1
		if s.checkpoint() != nil {
			return r.cancelled()
		}

		title := entry.Title
		if title == "" {
			title = entry.URL
		}
		r.em.itemStarted(index, r.total, title)

		item := Item{
			URL:        entry.URL,
			Title:      title,
			Index:      index,
			Count:      r.total,
			OutputDir:  r.req.OutputDirectory,
			Mode:       r.req.Mode,
			Quality:    r.req.Quality,
			ToolPath:   r.toolPath,
			Collection: r.playlist && !r.collection,
		}
		t := s.transferFor(d, item)

		started := time.Now()
		files, err := t.Download(ctx, item, func(p ItemProgress) {
			r.em.progress(index, r.total, title, p)
		}, s.checkpoint)

		if err == nil {
			r.done++
			r.files = append(r.files, files...)
			r.em.itemFinished(index, r.total, title)
			s.log.Infow("Item finished",
				logger.FieldJobID, r.id,
				logger.FieldItem, index,
				logger.FieldBackend, t.Name(),
				logger.FieldDurationMS, time.Since(started).Milliseconds())
			continue
		}

		err = Classify(err, s.cancelled.Load())
		kind := errors.KindOf(err)
		if kind == errors.KindCancelled || s.checkpoint() != nil {
			return r.cancelled()
		}

		r.failed++
		s.log.Warnw("Item failed",
			logger.FieldJobID, r.id,
			logger.FieldItem, index,
			logger.FieldBackend, t.Name(),
			logger.FieldKind, kind,
			logger.FieldError, err)

		if kind == errors.KindToolMissing || !r.collection {
			return r.failure(err)
		}
		r.em.itemError(index, r.total, title)
	}

	switch {
	case r.failed == 0:
		return r.result(model.OutcomeCompleted, StatusComplete)
	case r.failed == r.total:
		return r.failure(errors.Mark(errors.Newf(StatusAllFailedTemplate, r.total), errors.ErrTransfer))
	default:
		return r.result(model.OutcomeCompleted, fmt.Sprintf(StatusPartialTemplate, r.done, r.total, r.failed))
	}
}

// plan lists the entries of the job. Only Playlist mode expands collections.
func (s *Supervisor) plan(ctx context.Context, r *run, d *extractor.Descriptor) ([]extractor.Entry, error) {
	r.playlist = r.req.Mode == model.ModePlaylist && namesCollection(d, r.req.Location)
	if !r.playlist {
		return extractor.SingleEntry.Entries(ctx, r.req.Location, d)
	}

	if err := s.checkpoint(); err != nil {
		return nil, err
	}
	if s.cfg.Network.ExpandTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.Network.ExpandTimeout)
		defer cancel()
	}

	entries, err := s.registry.Handler(d).Entries(ctx, r.req.Location, d)
	if err != nil {
		return nil, errors.Wrapf(err, "expand %s", d.Key)
	}
	if len(entries) == 0 {
		return nil, errors.Wrapf(errors.ErrTransfer, "%s returned no entries", d.Key)
	}

	// The default handler hands the collection back unexpanded.
	r.collection = !(len(entries) == 1 && entries[0].URL == r.req.Location)
	return entries, nil
}

// namesCollection reports whether input refers to more than one item. A
// video inside a playlist counts, since Playlist mode wants the whole list.
func namesCollection(d *extractor.Descriptor, input string) bool {
	if d.Collection() || strings.Contains(input, extractor.CollectionMarker) {
		return true
	}
	return d.Groups(input)["playlist_id"] != ""
}

// transferFor picks the backend for an item.
func (s *Supervisor) transferFor(d *extractor.Descriptor, item Item) Transfer {
	if d.Fallback && HasMediaExtension(item.URL) {
		return s.direct
	}
	return s.media
}

// finish finalizes the snapshot, releases the gate, and posts the terminal
// event, in that order.
func (s *Supervisor) finish(r *run, res *model.Result) {
	if res == nil {
		res = r.failure(errors.New("worker returned no result"))
	}

	s.mu.Lock()
	if s.job.ID == r.id && model.CanTransition(s.job.State, res.Outcome.State()) {
		s.job.State = res.Outcome.State()
		s.job.Result = res
		s.job.Status = res.Message
		s.job.FinishedAt = time.Now()
		s.job.Speed = ""
		s.job.ETASec = -1
		if res.Outcome == model.OutcomeCompleted {
			s.job.Percent = 100
		}
		if s.cancelJob != nil {
			s.cancelJob()
			s.cancelJob = nil
		}
	}
	s.mu.Unlock()

	s.log.Infow("Job finished",
		logger.FieldJobID, r.id,
		logger.FieldOutcome, res.Outcome,
		logger.FieldKind, res.Kind,
		logger.FieldItems, r.total,
		"message", res.Message)

	r.em.finish(res, s.gate.Release)
}
