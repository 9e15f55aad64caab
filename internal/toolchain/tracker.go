package toolchain

import (
	"fmt"
	"io"

	"github.com/ytget/tubegrab/internal/model"
)

// progressTracker implements getter.ProgressTracker. Every read checks the
// cancel flag first, so a cancelled install stops before the next chunk
// reaches disk.
type progressTracker struct {
	in  *Installer
	run *installRun
}

// TrackProgress wraps stream.
func (t *progressTracker) TrackProgress(src string, currentSize, totalSize int64, stream io.ReadCloser) io.ReadCloser {
	return &trackingReader{
		ReadCloser: stream,
		tracker:    t,
		read:       currentSize,
		total:      totalSize,
	}
}

type trackingReader struct {
	io.ReadCloser
	tracker *progressTracker
	read    int64
	total   int64
	started bool
}

func (r *trackingReader) Read(p []byte) (int, error) {
	if err := r.tracker.in.checkpoint(); err != nil {
		return 0, err
	}
	n, err := r.ReadCloser.Read(p)
	r.read += int64(n)
	if n > 0 {
		r.report(err == io.EOF)
	}
	return n, err
}

func (r *trackingReader) report(final bool) {
	run := r.tracker.run
	first := !r.started
	r.started = true
	if !run.limiter.Allow() && !first && !final {
		return
	}

	ev := model.ProgressEvent{Kind: model.EventDownloading, ETASec: -1}
	if r.total > 0 {
		ev.Percent = float64(r.read) / float64(r.total) * 100
		ev.HasPercent = true
		ev.Text = fmt.Sprintf("Downloading FFmpeg: %.1f%%", ev.Percent)
	} else {
		ev.Text = fmt.Sprintf("Downloading FFmpeg: %.1f MB", float64(r.read)/1024/1024)
	}
	r.tracker.in.post(run, ev, true, nil)
}
