package download

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ytget/tubegrab/internal/config"
	"github.com/ytget/tubegrab/internal/errors"
	"github.com/ytget/tubegrab/internal/extractor"
	"github.com/ytget/tubegrab/internal/logger"
	"github.com/ytget/tubegrab/internal/model"
	"github.com/ytget/tubegrab/internal/platform"
)

// JobIDPrefix prefixes job IDs.
const JobIDPrefix = "job-"

// ToolLocator returns the FFmpeg location to use, or "" when none exists.
// configured is the path requested by the caller, possibly empty.
type ToolLocator func(configured string) string

// Supervisor runs at most one download job at a time.
type Supervisor struct {
	gate      *BusyGate
	queue     *EventQueue
	registry  *extractor.Registry
	media     Transfer
	direct    Transfer
	locate    ToolLocator
	cfg       config.Config
	cancelled atomic.Bool
	log       *zap.SugaredLogger

	mu        sync.Mutex
	job       model.Job
	cancelJob context.CancelFunc
	toolPath  string
}

var _ Downloader = (*Supervisor)(nil)

// Option configures a Supervisor.
type Option func(*Supervisor)

// WithGate shares gate with other long-running operations.
func WithGate(gate *BusyGate) Option {
	return func(s *Supervisor) { s.gate = gate }
}

// WithRegistry replaces the builtin extractor registry.
func WithRegistry(r *extractor.Registry) Option {
	return func(s *Supervisor) { s.registry = r }
}

// WithTransfer routes every item through t.
func WithTransfer(t Transfer) Option {
	return func(s *Supervisor) {
		s.media = t
		s.direct = t
	}
}

// WithMediaTransfer replaces the yt-dlp backend.
func WithMediaTransfer(t Transfer) Option {
	return func(s *Supervisor) { s.media = t }
}

// WithDirectTransfer replaces the HTTP backend.
func WithDirectTransfer(t Transfer) Option {
	return func(s *Supervisor) { s.direct = t }
}

// WithToolLocator replaces FFmpeg detection.
func WithToolLocator(l ToolLocator) Option {
	return func(s *Supervisor) { s.locate = l }
}

// WithConfig applies process configuration.
func WithConfig(cfg config.Config) Option {
	return func(s *Supervisor) { s.cfg = cfg }
}

// NewSupervisor creates an idle supervisor. Without options it uses the
// builtin YouTube registry with the playlist expander bound, the yt-dlp and
// HTTP backends, and FFmpeg detection on PATH and in the app data directory.
func NewSupervisor(opts ...Option) *Supervisor {
	s := &Supervisor{
		cfg: config.Default(),
		log: logger.ComponentLogger("supervisor"),
		job: model.Job{State: model.JobStateIdle, ETASec: -1},
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.gate == nil {
		s.gate = NewBusyGate()
	}
	if s.registry == nil {
		parser := platform.NewYTDLPParserService()
		parser.SetTimeout(s.cfg.Network.ExpandTimeout)
		handler := platform.NewPlaylistHandler(parser)
		s.registry = extractor.Default(
			extractor.WithHandler("Youtube", handler),
			extractor.WithHandler("YoutubePlaylist", handler),
			extractor.WithHandler("YoutubeYtBe", handler),
		)
	}
	if s.media == nil {
		s.media = NewMediaTransfer(s.cfg.Network.ConnectTimeout)
	}
	if s.direct == nil {
		s.direct = NewDirectTransfer(s.cfg.Network.ConnectTimeout)
	}
	if s.locate == nil {
		s.locate = DetectTool(s.cfg.FFmpeg.InstallDir)
	}
	s.queue = NewEventQueue(s.cfg.Events.QueueSize)
	return s
}

// DetectTool returns a locator that checks the configured path, PATH, and
// the installer's directory under base. An empty base means the per-user
// data directory.
func DetectTool(base string) ToolLocator {
	return func(configured string) string {
		dir := base
		if dir == "" {
			if appDir, err := platform.AppDataDir(); err == nil {
				dir = appDir
			}
		}
		localDir := ""
		if dir != "" {
			localDir = platform.LocalToolDir(dir)
		}
		return platform.DetectFFmpeg(configured, localDir).Path
	}
}

// Gate returns the busy gate so other operations can share it.
func (s *Supervisor) Gate() *BusyGate {
	return s.gate
}

// Registry returns the extractor registry jobs resolve against.
func (s *Supervisor) Registry() *extractor.Registry {
	return s.registry
}

// Events returns the job event stream. Events of consecutive jobs share it.
func (s *Supervisor) Events() <-chan model.ProgressEvent {
	return s.queue.Events()
}

// SetToolPath sets the FFmpeg location for jobs whose request names none.
func (s *Supervisor) SetToolPath(path string) {
	s.mu.Lock()
	s.toolPath = path
	s.mu.Unlock()
}

// Status returns a snapshot of the current or last job.
func (s *Supervisor) Status() model.Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	job := s.job
	if job.Result != nil {
		r := *job.Result
		r.Files = append([]string(nil), r.Files...)
		job.Result = &r
	}
	return job
}

// Start validates req and launches a job. It fails with InvalidInput before
// anything else, and with Busy while a job or tool acquisition holds the
// gate. It never blocks on the job itself.
func (s *Supervisor) Start(req model.Request) (model.Job, error) {
	if err := req.Validate(); err != nil {
		return model.Job{}, err
	}
	req = req.Normalized()

	id := generateJobID()
	if ok, holder := s.gate.TryAcquire("download " + id); !ok {
		return model.Job{}, errors.WithHintf(
			errors.Wrapf(errors.ErrBusy, "%s is in progress", holder),
			"Wait for it to finish or cancel it first.")
	}

	ctx, cancel := context.WithCancel(context.Background())

	s.mu.Lock()
	s.cancelled.Store(false)
	s.cancelJob = cancel
	s.job = model.Job{
		ID:        id,
		Request:   req,
		State:     model.JobStateRunning,
		Status:    StatusPreparing,
		ETASec:    -1,
		StartedAt: time.Now(),
	}
	toolPath := s.toolPath
	job := s.job
	s.mu.Unlock()

	s.log.Infow("Job started",
		logger.FieldJobID, id,
		logger.FieldURL, req.Location,
		logger.FieldMode, req.Mode,
		logger.FieldQuality, req.Quality)

	r := &run{
		id:       id,
		req:      req,
		toolPath: toolPath,
	}
	r.em = newEmitter(id, s.queue, s.cfg.Events.ProgressInterval, s.apply)

	go s.work(ctx, r)

	return job, nil
}

// RequestCancel asks the running job to stop at its next checkpoint. It
// reports whether a cancellation was newly requested; repeated calls and
// calls without a running job return false.
func (s *Supervisor) RequestCancel() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !model.CanTransition(s.job.State, model.JobStateCancelling) {
		return false
	}
	s.cancelled.Store(true)
	s.job.State = model.JobStateCancelling
	s.job.Status = StatusCancelRequested
	if s.cancelJob != nil {
		s.cancelJob()
	}

	s.log.Infow("Cancellation requested", logger.FieldJobID, s.job.ID)
	return true
}

// checkpoint returns ErrCancelled once cancellation was requested.
func (s *Supervisor) checkpoint() error {
	if s.cancelled.Load() {
		return errors.Wrap(errors.ErrCancelled, "download cancelled")
	}
	return nil
}

// apply folds a posted event into the job snapshot.
func (s *Supervisor) apply(ev model.ProgressEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.job.ID != ev.JobID {
		return
	}
	s.job.Percent = ev.Percent
	if s.job.State != model.JobStateCancelling {
		s.job.Status = ev.Text
	}
	if ev.ItemIndex > 0 {
		s.job.ItemIndex = ev.ItemIndex
		s.job.ItemCount = ev.ItemCount
	}
	if ev.Title != "" {
		s.job.Title = ev.Title
	}
	s.job.Speed = ev.Speed
	s.job.ETASec = ev.ETASec
}

func (s *Supervisor) setDescriptor(key string) {
	s.mu.Lock()
	s.job.Descriptor = key
	s.mu.Unlock()
}

// generateJobID generates a unique job ID using UUID v7, which is time ordered
func generateJobID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return fmt.Sprintf(JobIDPrefix+"%d", time.Now().UnixNano())
	}
	return JobIDPrefix + id.String()
}
