package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/pterm/pterm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ytget/tubegrab/internal/errors"
	"github.com/ytget/tubegrab/internal/model"
)

func TestMain(m *testing.M) {
	pterm.DisableStyling()
	os.Exit(m.Run())
}

// fakeDownloader replays a scripted event stream.
type fakeDownloader struct {
	err      error
	events   chan model.ProgressEvent
	onCancel func()
	started  []model.Request
	cancels  int
}

func newFakeDownloader(events ...model.ProgressEvent) *fakeDownloader {
	ch := make(chan model.ProgressEvent, 32)
	for _, ev := range events {
		ch <- ev
	}
	return &fakeDownloader{events: ch}
}

func (f *fakeDownloader) Start(req model.Request) (model.Job, error) {
	f.started = append(f.started, req)
	if f.err != nil {
		return model.Job{}, f.err
	}
	return model.Job{ID: "job-1", Request: req, State: model.JobStateRunning}, nil
}

func (f *fakeDownloader) RequestCancel() bool {
	f.cancels++
	if f.onCancel != nil {
		f.onCancel()
	}
	return true
}

func (f *fakeDownloader) Status() model.Job { return model.Job{} }

func (f *fakeDownloader) Events() <-chan model.ProgressEvent { return f.events }

func (f *fakeDownloader) SetToolPath(string) {}

func TestGetFlags_Request(t *testing.T) {
	f := getFlags{mode: "audio", quality: "720p", output: "downloads"}
	req, err := f.request("https://youtu.be/dQw4w9WgXcQ")
	require.NoError(t, err)
	assert.Equal(t, model.ModeAudio, req.Mode)
	assert.Equal(t, model.QualityBest, req.Quality)
	assert.True(t, filepath.IsAbs(req.OutputDirectory))
	assert.Equal(t, "downloads", filepath.Base(req.OutputDirectory))

	f = getFlags{mode: "Playlist", quality: "480P", output: "/tmp/out"}
	req, err = f.request("ytsearch3:lofi")
	require.NoError(t, err)
	assert.Equal(t, model.ModePlaylist, req.Mode)
	assert.Equal(t, model.Quality480p, req.Quality)

	_, err = getFlags{mode: "podcast", quality: "Best", output: "."}.request("https://youtu.be/x")
	require.Error(t, err)
	assert.Equal(t, errors.KindInvalidInput, errors.KindOf(err))

	_, err = getFlags{mode: "video", quality: "Best", output: "."}.request("   ")
	require.Error(t, err)
	assert.Equal(t, errors.KindInvalidInput, errors.KindOf(err))
}

func TestRunJob_RendersUntilTerminal(t *testing.T) {
	d := newFakeDownloader(
		model.ProgressEvent{JobID: "job-0", Seq: 9, Kind: model.EventJobFinished, Result: &model.Result{Outcome: model.OutcomeFailed, Message: "stale"}},
		model.ProgressEvent{JobID: "job-1", Seq: 1, Kind: model.EventPreparing, Text: "Preparing download...", HasPercent: true},
		model.ProgressEvent{JobID: "job-1", Seq: 2, Kind: model.EventItemStarted, Text: "Item 1/2: first"},
		model.ProgressEvent{JobID: "job-1", Seq: 3, Kind: model.EventDownloading, Text: "Item 1/2 (first): 50.0%", Percent: 25, HasPercent: true},
		model.ProgressEvent{JobID: "job-1", Seq: 4, Kind: model.EventItemFinished, Text: "Finished: first", Percent: 50, HasPercent: true},
		model.ProgressEvent{JobID: "job-1", Seq: 5, Kind: model.EventError, Text: "Error during an item download."},
		model.ProgressEvent{JobID: "job-1", Seq: 6, Kind: model.EventJobFinished, Percent: 50, HasPercent: true,
			Result: &model.Result{Outcome: model.OutcomeCompleted, Message: "Downloaded 1 of 2 items (1 failed)",
				ItemsDone: 1, ItemsFailed: 1, ItemsTotal: 2, Files: []string{"/tmp/out/first.mp4"}}},
	)
	var out bytes.Buffer

	res, err := runJob(context.Background(), d, model.Request{Location: "ytsearch2:x"}, newRenderer(&out))
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.Equal(t, model.OutcomeCompleted, res.Outcome)
	assert.NoError(t, exitFor(res))
	assert.Zero(t, d.cancels)

	text := out.String()
	assert.Contains(t, text, "Preparing download...")
	assert.Contains(t, text, "Finished: first")
	assert.Contains(t, text, "Error during an item download.")
	assert.Contains(t, text, "Downloaded 1 of 2 items (1 failed)")
	assert.Contains(t, text, "/tmp/out/first.mp4")
	assert.NotContains(t, text, "stale")
}

func TestRunJob_InterruptRequestsCancel(t *testing.T) {
	d := newFakeDownloader(
		model.ProgressEvent{JobID: "job-1", Seq: 1, Kind: model.EventPreparing, Text: "Preparing download...", HasPercent: true},
	)
	d.onCancel = func() {
		d.events <- model.ProgressEvent{JobID: "job-1", Seq: 2, Kind: model.EventJobFinished,
			Result: &model.Result{Outcome: model.OutcomeCancelled, Kind: errors.KindCancelled, Message: "Download Cancelled by User."}}
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	var out bytes.Buffer

	res, err := runJob(ctx, d, model.Request{Location: "https://youtu.be/x"}, newRenderer(&out))
	require.NoError(t, err)
	assert.Equal(t, 1, d.cancels)
	assert.Equal(t, model.OutcomeCancelled, res.Outcome)
	assert.Contains(t, out.String(), "Download Cancelled by User.")

	err = exitFor(res)
	var exit *ExitError
	require.True(t, errors.As(err, &exit))
	assert.Equal(t, ExitCancelled, exit.Code)
	assert.Equal(t, ExitCancelled, reportError(err))
}

func TestRunJob_RefusedStart(t *testing.T) {
	d := newFakeDownloader()
	d.err = errors.Wrapf(errors.ErrBusy, "%s is in progress", "FFmpeg download")

	_, err := runJob(context.Background(), d, model.Request{Location: "https://youtu.be/x"}, newRenderer(&bytes.Buffer{}))
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrBusy))
	assert.Equal(t, ExitFailed, reportError(err))
}

func TestExitFor(t *testing.T) {
	assert.NoError(t, exitFor(&model.Result{Outcome: model.OutcomeCompleted}))

	var exit *ExitError
	require.True(t, errors.As(exitFor(&model.Result{Outcome: model.OutcomeFailed, Message: "boom"}), &exit))
	assert.Equal(t, ExitFailed, exit.Code)

	require.True(t, errors.As(exitFor(nil), &exit))
	assert.Equal(t, ExitFailed, exit.Code)
	assert.Error(t, exit.Err)

	assert.Equal(t, 0, reportError(nil))
}

func runRoot(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	root := NewRootCommand("1.2.3")
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	require.NoError(t, root.Execute())
	return out.String()
}

func TestExtractorsCommand(t *testing.T) {
	text := runRoot(t, "extractors")
	assert.Contains(t, text, "YoutubeTab")
	assert.Contains(t, text, "YoutubePlaylist")
	assert.Contains(t, text, "Generic")
	assert.Contains(t, text, "fallback")
	assert.NotContains(t, text, "YoutubeTruncatedID")

	text = runRoot(t, "extractors", "--all")
	assert.Contains(t, text, "YoutubeTruncatedID")
}

func TestResolveCommand(t *testing.T) {
	text := runRoot(t, "resolve", "https://www.youtube.com/playlist?list=PLBCF2DAC6FFB574DE")
	assert.Contains(t, text, "YoutubePlaylist")
	assert.Contains(t, text, "PLBCF2DAC6FFB574DE")
	assert.Contains(t, text, "true")
}

func TestVersionCommand(t *testing.T) {
	text := runRoot(t, "version")
	assert.Contains(t, text, "tubegrab 1.2.3")
}
