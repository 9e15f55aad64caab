package download

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ytget/tubegrab/internal/errors"
)

func noCancel() error { return nil }

func TestHasMediaExtension(t *testing.T) {
	assert.True(t, HasMediaExtension("https://cdn.example.com/a/clip.MP4"))
	assert.True(t, HasMediaExtension("http://example.com/song.mp3?token=1"))
	assert.False(t, HasMediaExtension("https://example.com/page.html"))
	assert.False(t, HasMediaExtension("ftp://example.com/clip.mp4"))
	assert.False(t, HasMediaExtension("ytsearch:clip.mp4"))
}

func TestFileNameFromURL(t *testing.T) {
	assert.Equal(t, "clip.mp4", FileNameFromURL("https://cdn.example.com/a/clip.mp4?x=1"))
	assert.Equal(t, "my clip.mp4", FileNameFromURL("https://cdn.example.com/my%20clip.mp4"))
	assert.Equal(t, "a_b.mp4", FileNameFromURL("https://cdn.example.com/a%3Ab.mp4"))
	assert.Equal(t, DefaultLeaf, FileNameFromURL("https://cdn.example.com/"))
	assert.Equal(t, DefaultLeaf, FileNameFromURL("::"))
}

func TestDirectTransfer_Download(t *testing.T) {
	payload := bytes.Repeat([]byte("x"), 3*ChunkSize+100)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.ServeContent(w, r, "clip.mp4", time.Now(), bytes.NewReader(payload))
	}))
	defer srv.Close()

	dir := t.TempDir()
	var reports []ItemProgress
	files, err := NewDirectTransfer(time.Second).Download(context.Background(),
		Item{URL: srv.URL + "/media/clip.mp4", OutputDir: dir},
		func(p ItemProgress) { reports = append(reports, p) },
		noCancel)
	require.NoError(t, err)

	require.Equal(t, []string{filepath.Join(dir, "clip.mp4")}, files)
	got, err := os.ReadFile(files[0])
	require.NoError(t, err)
	assert.Equal(t, payload, got)

	_, err = os.Stat(files[0] + PartSuffix)
	assert.True(t, os.IsNotExist(err), "part file is renamed")

	require.NotEmpty(t, reports)
	assert.InDelta(t, 100.0, reports[len(reports)-1].Percent, 1e-9)
	assert.Equal(t, "clip.mp4", reports[0].Title)
}

func TestDirectTransfer_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusNotFound)
	}))
	defer srv.Close()

	dir := t.TempDir()
	_, err := NewDirectTransfer(time.Second).Download(context.Background(),
		Item{URL: srv.URL + "/clip.mp4", OutputDir: dir}, func(ItemProgress) {}, noCancel)
	require.Error(t, err)
	assert.Equal(t, errors.KindTransfer, errors.KindOf(err))
	assert.Contains(t, err.Error(), "404")

	entries, _ := os.ReadDir(dir)
	assert.Empty(t, entries)
}

func TestDirectTransfer_CancelMidStream(t *testing.T) {
	payload := bytes.Repeat([]byte("y"), 8*ChunkSize)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Length", "262144")
		for i := 0; i < 8; i++ {
			w.Write(payload[i*ChunkSize : (i+1)*ChunkSize])
			w.(http.Flusher).Flush()
		}
	}))
	defer srv.Close()

	dir := t.TempDir()
	writes := 0
	checkpoint := func() error {
		writes++
		if writes > 2 {
			return errors.Wrap(errors.ErrCancelled, "download cancelled")
		}
		return nil
	}

	var last ItemProgress
	_, err := NewDirectTransfer(time.Second).Download(context.Background(),
		Item{URL: srv.URL + "/clip.mp4", OutputDir: dir},
		func(p ItemProgress) { last = p },
		checkpoint)
	require.Error(t, err)
	assert.Equal(t, errors.KindCancelled, errors.KindOf(err))
	assert.Greater(t, last.Percent, 0.0)
	assert.Less(t, last.Percent, 100.0)

	entries, _ := os.ReadDir(dir)
	assert.Empty(t, entries, "partial file is removed")
}

func TestDirectTransfer_UnknownLength(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.(http.Flusher).Flush() // forces chunked encoding
		w.Write([]byte("abc"))
	}))
	defer srv.Close()

	var reports []ItemProgress
	_, err := NewDirectTransfer(time.Second).Download(context.Background(),
		Item{URL: srv.URL + "/a.mp3", OutputDir: t.TempDir()},
		func(p ItemProgress) { reports = append(reports, p) }, noCancel)
	require.NoError(t, err)
	require.NotEmpty(t, reports)
	assert.False(t, validPercent(reports[0].Percent), "unknown totals report no percent")
}

func TestDirectTransfer_BadURLIsNotInvalidInput(t *testing.T) {
	_, err := NewDirectTransfer(time.Second).Download(context.Background(),
		Item{URL: "http://example.com/\x7fclip.mp4", OutputDir: t.TempDir()},
		func(ItemProgress) {},
		noCancel)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad url")
	assert.NotEqual(t, errors.KindInvalidInput, errors.KindOf(err))
}
