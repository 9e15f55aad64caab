package toolchain

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-getter"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/ytget/tubegrab/internal/config"
	"github.com/ytget/tubegrab/internal/download"
	"github.com/ytget/tubegrab/internal/errors"
	"github.com/ytget/tubegrab/internal/logger"
	"github.com/ytget/tubegrab/internal/model"
	"github.com/ytget/tubegrab/internal/platform"
)

// Status texts
const (
	StatusPreparing  = "Preparing FFmpeg download..."
	StatusExtracting = "Installing FFmpeg..."
	StatusCancelled  = "FFmpeg download cancelled."
	StatusInstalled  = "FFmpeg installed to %s"
)

// Install layout
const (
	TaskIDPrefix    = "ffmpeg-"
	TempDirPattern  = "ffmpeg-download-"
	BinaryFilePerm  = 0755
	ProgressEvery   = 250 * time.Millisecond
	GateHolderLabel = "FFmpeg download"
)

// Binaries are the executables the installer keeps from the archive.
var Binaries = []string{"ffmpeg", "ffprobe"}

// Installer downloads and unpacks FFmpeg in the background.
type Installer struct {
	gate       *download.BusyGate
	queue      *download.EventQueue
	archiveURL string
	baseDir    string
	cancelled  atomic.Bool
	log        *zap.SugaredLogger

	mu     sync.Mutex
	job    model.Job
	cancel context.CancelFunc
}

// NewInstaller creates an installer sharing gate. baseDir is where
// ffmpeg/bin is created; empty means the per-user data directory.
func NewInstaller(gate *download.BusyGate, cfg config.Config) *Installer {
	if gate == nil {
		gate = download.NewBusyGate()
	}
	return &Installer{
		gate:       gate,
		queue:      download.NewEventQueue(cfg.Events.QueueSize),
		archiveURL: cfg.FFmpeg.ArchiveURL,
		baseDir:    cfg.FFmpeg.InstallDir,
		log:        logger.ComponentLogger("toolchain"),
		job:        model.Job{State: model.JobStateIdle, ETASec: -1},
	}
}

// Events returns the installer's own event stream.
func (in *Installer) Events() <-chan model.ProgressEvent {
	return in.queue.Events()
}

// Status returns a snapshot of the current or last install.
func (in *Installer) Status() model.Job {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.job
}

// BinDir returns the directory binaries are installed into.
func (in *Installer) BinDir() (string, error) {
	base := in.baseDir
	if base == "" {
		dir, err := platform.AppDataDir()
		if err != nil {
			return "", err
		}
		base = dir
	}
	return platform.LocalToolDir(base), nil
}

// Start launches the download. It fails with Busy while a download job or
// another install holds the gate.
func (in *Installer) Start(ctx context.Context) error {
	binDir, err := in.BinDir()
	if err != nil {
		return errors.Wrap(errors.Mark(err, errors.ErrInvalidInput), "resolve install directory")
	}

	if ok, holder := in.gate.TryAcquire(GateHolderLabel); !ok {
		return errors.Wrapf(errors.ErrBusy, "%s is in progress", holder)
	}

	ctx, cancel := context.WithCancel(ctx)
	id := generateTaskID()

	in.mu.Lock()
	in.cancelled.Store(false)
	in.cancel = cancel
	in.job = model.Job{
		ID:        id,
		Request:   model.Request{Location: in.archiveURL, OutputDirectory: binDir},
		State:     model.JobStateRunning,
		Status:    StatusPreparing,
		ETASec:    -1,
		StartedAt: time.Now(),
	}
	in.mu.Unlock()

	in.log.Infow("FFmpeg download started", logger.FieldJobID, id, logger.FieldURL, in.archiveURL, logger.FieldPath, binDir)

	r := &installRun{id: id, binDir: binDir, limiter: rate.NewLimiter(rate.Every(ProgressEvery), 1)}
	go in.work(ctx, r)
	return nil
}

// RequestCancel stops a running install at its next read. It reports
// whether a cancellation was newly requested.
func (in *Installer) RequestCancel() bool {
	in.mu.Lock()
	defer in.mu.Unlock()
	if !model.CanTransition(in.job.State, model.JobStateCancelling) {
		return false
	}
	in.cancelled.Store(true)
	in.job.State = model.JobStateCancelling
	if in.cancel != nil {
		in.cancel()
	}
	return true
}

func (in *Installer) checkpoint() error {
	if in.cancelled.Load() {
		return errors.Wrap(errors.ErrCancelled, "ffmpeg download cancelled")
	}
	return nil
}

// installRun is the worker-side state of one install.
type installRun struct {
	id      string
	binDir  string
	seq     uint64
	percent float64
	limiter *rate.Limiter
}

// post stamps and enqueues ev. Droppable updates are discarded, without
// consuming a sequence number, when the queue is full.
func (in *Installer) post(r *installRun, ev model.ProgressEvent, droppable bool, before func()) {
	ev.JobID = r.id
	ev.At = time.Now()
	if ev.HasPercent && ev.Percent >= 0 && ev.Percent <= 100 {
		r.percent = ev.Percent
	} else {
		ev.HasPercent = false
	}
	ev.Percent = r.percent
	ev.Seq = r.seq + 1

	if droppable {
		if !in.queue.TryPost(ev) {
			return
		}
		r.seq++
		in.snapshot(r, ev)
		return
	}
	r.seq++
	in.snapshot(r, ev)
	in.queue.Post(ev, before)
}

func (in *Installer) snapshot(r *installRun, ev model.ProgressEvent) {
	if !ev.IsTerminal() {
		in.mu.Lock()
		if in.job.ID == r.id {
			in.job.Percent = ev.Percent
			if in.job.State == model.JobStateRunning {
				in.job.Status = ev.Text
			}
		}
		in.mu.Unlock()
	}
}

func (in *Installer) work(ctx context.Context, r *installRun) {
	var res *model.Result
	defer func() {
		if p := recover(); p != nil {
			res = failure(errors.Newf("internal error: %v", p))
		}
		in.finish(r, res)
	}()
	res = in.install(ctx, r)
}

func (in *Installer) install(ctx context.Context, r *installRun) *model.Result {
	in.post(r, model.ProgressEvent{Kind: model.EventPreparing, Text: StatusPreparing, HasPercent: true}, false, nil)

	if err := os.MkdirAll(filepath.Dir(r.binDir), platform.DefaultDirPermissions); err != nil {
		return failure(errors.Wrapf(err, "create %s", filepath.Dir(r.binDir)))
	}
	tmp, err := os.MkdirTemp(filepath.Dir(r.binDir), TempDirPattern)
	if err != nil {
		return failure(errors.Wrap(err, "create temp dir"))
	}
	defer os.RemoveAll(tmp)

	extractDir := filepath.Join(tmp, "extract")
	client := &getter.Client{
		Ctx:              ctx,
		Src:              in.archiveURL,
		Dst:              extractDir,
		Pwd:              tmp,
		Mode:             getter.ClientModeDir,
		ProgressListener: &progressTracker{in: in, run: r},
	}
	if err := client.Get(); err != nil {
		if in.checkpoint() != nil {
			return cancelled()
		}
		return failure(errors.Wrapf(errors.Mark(err, errors.ErrTransfer), "fetch %s", in.archiveURL))
	}
	if in.checkpoint() != nil {
		return cancelled()
	}

	in.post(r, model.ProgressEvent{Kind: model.EventItemFinished, Text: StatusExtracting, Percent: 100, HasPercent: true}, false, nil)

	installed, err := installBinaries(extractDir, r.binDir)
	if err != nil {
		return failure(err)
	}

	res := &model.Result{
		Outcome:    model.OutcomeCompleted,
		Message:    fmt.Sprintf(StatusInstalled, r.binDir),
		ItemsDone:  1,
		ItemsTotal: 1,
		Files:      installed,
	}
	return res
}

func (in *Installer) finish(r *installRun, res *model.Result) {
	if res == nil {
		res = failure(errors.New("installer returned no result"))
	}

	in.mu.Lock()
	if in.job.ID == r.id && model.CanTransition(in.job.State, res.Outcome.State()) {
		in.job.State = res.Outcome.State()
		in.job.Status = res.Message
		in.job.Result = res
		in.job.FinishedAt = time.Now()
		if res.Outcome == model.OutcomeCompleted {
			in.job.Percent = 100
		}
		if in.cancel != nil {
			in.cancel()
			in.cancel = nil
		}
	}
	in.mu.Unlock()

	in.log.Infow("FFmpeg download finished",
		logger.FieldJobID, r.id,
		logger.FieldOutcome, res.Outcome,
		logger.FieldKind, res.Kind,
		"message", res.Message)

	ev := model.ProgressEvent{Kind: model.EventJobFinished, Text: res.Message, Result: res, ETASec: -1}
	if res.Outcome == model.OutcomeCompleted {
		ev.Percent = 100
		ev.HasPercent = true
	}
	in.post(r, ev, false, in.gate.Release)
}

func failure(err error) *model.Result {
	return &model.Result{
		Outcome:    model.OutcomeFailed,
		Kind:       errors.KindOf(err),
		Message:    err.Error(),
		Hint:       errors.Hint(err),
		ItemsTotal: 1,
	}
}

func cancelled() *model.Result {
	return &model.Result{
		Outcome:    model.OutcomeCancelled,
		Kind:       errors.KindCancelled,
		Message:    StatusCancelled,
		ItemsTotal: 1,
	}
}

// installBinaries finds the wanted executables anywhere under root and
// moves them into binDir.
func installBinaries(root, binDir string) ([]string, error) {
	found := make(map[string]string, len(Binaries))
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		for _, name := range Binaries {
			if strings.EqualFold(d.Name(), platform.ExecutableName(name)) {
				if _, dup := found[name]; !dup {
					found[name] = path
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrapf(err, "scan %s", root)
	}

	for _, name := range Binaries {
		if _, ok := found[name]; !ok {
			return nil, errors.Mark(
				errors.Newf("archive does not contain %s", platform.ExecutableName(name)),
				errors.ErrToolMissing)
		}
	}

	if err := os.MkdirAll(binDir, platform.DefaultDirPermissions); err != nil {
		return nil, errors.Wrapf(err, "create %s", binDir)
	}

	installed := make([]string, 0, len(Binaries))
	for _, name := range Binaries {
		dst := filepath.Join(binDir, platform.ExecutableName(name))
		if err := moveFile(found[name], dst); err != nil {
			return nil, err
		}
		installed = append(installed, dst)
	}
	return installed, nil
}

// moveFile renames src to dst, copying when they live on different volumes.
func moveFile(src, dst string) error {
	os.Remove(dst)
	if err := os.Rename(src, dst); err == nil {
		return os.Chmod(dst, BinaryFilePerm)
	}

	in, err := os.Open(src)
	if err != nil {
		return errors.Wrapf(err, "open %s", src)
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, BinaryFilePerm)
	if err != nil {
		return errors.Wrapf(err, "create %s", dst)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return errors.Wrapf(err, "copy %s", dst)
	}
	return out.Close()
}

// generateTaskID generates a unique task ID using UUID v7 for time ordering
func generateTaskID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return fmt.Sprintf(TaskIDPrefix+"%d", time.Now().UnixNano())
	}
	return TaskIDPrefix + id.String()
}
