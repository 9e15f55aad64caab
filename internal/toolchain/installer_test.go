package toolchain

import (
	"archive/zip"
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ytget/tubegrab/internal/config"
	"github.com/ytget/tubegrab/internal/download"
	"github.com/ytget/tubegrab/internal/errors"
	"github.com/ytget/tubegrab/internal/model"
	"github.com/ytget/tubegrab/internal/platform"
)

const testTimeout = 5 * time.Second

// buildArchive returns a zip laid out like a release build.
func buildArchive(t *testing.T, names ...string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, name := range names {
		w, err := zw.Create("ffmpeg-7.1-essentials_build/bin/" + platform.ExecutableName(name))
		require.NoError(t, err)
		_, err = w.Write([]byte("#!/bin/sh\necho " + name + "\n"))
		require.NoError(t, err)
	}
	w, err := zw.Create("ffmpeg-7.1-essentials_build/README.txt")
	require.NoError(t, err)
	_, err = w.Write([]byte("readme"))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func serveArchive(t *testing.T, data []byte) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.ServeContent(w, r, "ffmpeg.zip", time.Now(), bytes.NewReader(data))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestInstaller(t *testing.T, gate *download.BusyGate, url string) (*Installer, string) {
	t.Helper()
	base := t.TempDir()
	cfg := config.Default()
	cfg.FFmpeg.ArchiveURL = url
	cfg.FFmpeg.InstallDir = base
	return NewInstaller(gate, cfg), base
}

func drain(t *testing.T, in *Installer) []model.ProgressEvent {
	t.Helper()
	var events []model.ProgressEvent
	timer := time.NewTimer(testTimeout)
	defer timer.Stop()
	for {
		select {
		case ev := <-in.Events():
			events = append(events, ev)
			if ev.IsTerminal() {
				return events
			}
		case <-timer.C:
			t.Fatalf("no terminal event after %s; got %d events", testTimeout, len(events))
			return nil
		}
	}
}

func TestInstaller_InstallsBinaries(t *testing.T) {
	srv := serveArchive(t, buildArchive(t, "ffmpeg", "ffprobe"))
	gate := download.NewBusyGate()
	in, base := newTestInstaller(t, gate, srv.URL+"/ffmpeg-release-essentials.zip")

	require.NoError(t, in.Start(context.Background()))
	events := drain(t, in)

	last := events[len(events)-1]
	require.NotNil(t, last.Result)
	assert.Equal(t, model.OutcomeCompleted, last.Result.Outcome, last.Result.Message)
	assert.Equal(t, model.EventPreparing, events[0].Kind)

	binDir := platform.LocalToolDir(base)
	assert.Equal(t, []string{
		filepath.Join(binDir, platform.ExecutableName("ffmpeg")),
		filepath.Join(binDir, platform.ExecutableName("ffprobe")),
	}, last.Result.Files)
	for _, f := range last.Result.Files {
		assert.FileExists(t, f)
	}
	assert.Contains(t, last.Result.Message, binDir)

	// Only ffmpeg/ remains next to the temp download.
	entries, err := os.ReadDir(base)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "ffmpeg", entries[0].Name())

	for i := 1; i < len(events); i++ {
		assert.Equal(t, events[i-1].Seq+1, events[i].Seq)
	}

	assert.False(t, gate.Busy())
	info := platform.DetectFFmpeg(binDir, "")
	assert.True(t, info.Found())
	assert.Equal(t, model.JobStateCompleted, in.Status().State)
	assert.False(t, in.RequestCancel(), "a finished install cannot be cancelled")
	assert.Equal(t, model.JobStateCompleted, in.Status().State)
}

func TestInstaller_BusyWhileDownloadRuns(t *testing.T) {
	gate := download.NewBusyGate()
	ok, _ := gate.TryAcquire("download job-1")
	require.True(t, ok)

	in, _ := newTestInstaller(t, gate, "http://127.0.0.1:1/ffmpeg.zip")
	err := in.Start(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrBusy))
	assert.Equal(t, errors.KindBusy, errors.KindOf(err))
	assert.Contains(t, err.Error(), "download job-1")
	assert.Equal(t, model.JobStateIdle, in.Status().State)
}

func TestInstaller_MissingBinary(t *testing.T) {
	srv := serveArchive(t, buildArchive(t, "ffmpeg"))
	in, base := newTestInstaller(t, nil, srv.URL+"/ffmpeg.zip")

	require.NoError(t, in.Start(context.Background()))
	events := drain(t, in)

	res := events[len(events)-1].Result
	require.NotNil(t, res)
	assert.Equal(t, model.OutcomeFailed, res.Outcome)
	assert.Equal(t, errors.KindToolMissing, res.Kind)
	assert.Contains(t, res.Message, "ffprobe")
	assert.NoDirExists(t, platform.LocalToolDir(base))
}

func TestInstaller_HTTPErrorFails(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()
	in, _ := newTestInstaller(t, nil, srv.URL+"/missing.zip")

	require.NoError(t, in.Start(context.Background()))
	events := drain(t, in)

	res := events[len(events)-1].Result
	require.NotNil(t, res)
	assert.Equal(t, model.OutcomeFailed, res.Outcome)
	assert.Equal(t, errors.KindTransfer, res.Kind)
}

func TestInstaller_CancelStopsTransfer(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Length", strconv.Itoa(1<<20))
		if r.Method == http.MethodHead {
			return
		}
		chunk := make([]byte, 4096)
		w.Write(chunk)
		w.(http.Flusher).Flush()
		select {
		case <-release:
		case <-r.Context().Done():
			return
		}
		w.Write(chunk)
		w.(http.Flusher).Flush()
		<-r.Context().Done()
	}))
	defer srv.Close()

	gate := download.NewBusyGate()
	in, base := newTestInstaller(t, gate, srv.URL+"/ffmpeg.zip")
	require.NoError(t, in.Start(context.Background()))

	timer := time.NewTimer(testTimeout)
	defer timer.Stop()
waiting:
	for {
		select {
		case ev := <-in.Events():
			require.False(t, ev.IsTerminal(), "finished early: %+v", ev)
			if ev.Kind == model.EventDownloading {
				break waiting
			}
		case <-timer.C:
			t.Fatal("no download progress")
		}
	}

	ok, holder := gate.TryAcquire("download job-2")
	assert.False(t, ok)
	assert.Equal(t, GateHolderLabel, holder)

	assert.True(t, in.RequestCancel())
	assert.False(t, in.RequestCancel())
	close(release)

	events := drain(t, in)
	res := events[len(events)-1].Result
	require.NotNil(t, res)
	assert.Equal(t, model.OutcomeCancelled, res.Outcome)
	assert.Equal(t, errors.KindCancelled, res.Kind)
	assert.NoDirExists(t, platform.LocalToolDir(base))
	assert.False(t, gate.Busy())
}

func TestInstaller_RequestCancelWhenIdle(t *testing.T) {
	in, _ := newTestInstaller(t, nil, "http://127.0.0.1:1/ffmpeg.zip")
	assert.False(t, in.RequestCancel())
}
