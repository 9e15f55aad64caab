package download

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ytget/tubegrab/internal/errors"
	"github.com/ytget/tubegrab/internal/logger"
)

// Direct backend settings
const (
	ChunkSize      = 32 * 1024
	PartSuffix     = ".part"
	DefaultLeaf    = "download"
	DirectFilePerm = 0644
)

// MediaExtensions are the URL path extensions the direct backend accepts.
var MediaExtensions = []string{
	".mp4", ".m4v", ".webm", ".mkv", ".mov", ".avi",
	".mp3", ".m4a", ".aac", ".ogg", ".opus", ".wav", ".flac",
}

// HasMediaExtension reports whether rawURL points at a media file.
func HasMediaExtension(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return false
	}
	ext := strings.ToLower(path.Ext(u.Path))
	for _, e := range MediaExtensions {
		if ext == e {
			return true
		}
	}
	return false
}

// DirectTransfer streams a file over HTTP.
type DirectTransfer struct {
	client *http.Client
	log    *zap.SugaredLogger
}

// NewDirectTransfer creates the HTTP backend. connectTimeout bounds the
// dial and the wait for response headers; the body itself is unbounded.
func NewDirectTransfer(connectTimeout time.Duration) *DirectTransfer {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.DialContext = (&net.Dialer{Timeout: connectTimeout}).DialContext
	transport.ResponseHeaderTimeout = connectTimeout
	transport.TLSHandshakeTimeout = connectTimeout

	return &DirectTransfer{
		client: &http.Client{Transport: transport},
		log:    logger.ComponentLogger("direct"),
	}
}

// Name implements Transfer.
func (d *DirectTransfer) Name() string { return "direct" }

// Download implements Transfer.
func (d *DirectTransfer) Download(ctx context.Context, item Item, report Reporter, checkpoint Checkpoint) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, item.URL, nil)
	if err != nil {
		return nil, errors.Wrapf(err, "bad url %q", item.URL)
	}

	resp, err := d.client.Do(req)
	if err != nil {
		if cerr := checkpoint(); cerr != nil {
			return nil, cerr
		}
		return nil, errors.Wrapf(errors.Mark(err, errors.ErrTransfer), "GET %s", item.URL)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, errors.Wrapf(errors.ErrTransfer, "GET %s: HTTP Error %d", item.URL, resp.StatusCode)
	}

	target := filepath.Join(item.OutputDir, FileNameFromURL(item.URL))
	part := target + PartSuffix

	f, err := os.OpenFile(part, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, DirectFilePerm)
	if err != nil {
		return nil, errors.Wrapf(err, "create %s", part)
	}

	written, err := d.copy(f, resp.Body, resp.ContentLength, item, report, checkpoint)
	closeErr := f.Close()
	if err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(part)
		return nil, err
	}

	if err := os.Rename(part, target); err != nil {
		os.Remove(part)
		return nil, errors.Wrapf(err, "rename %s", part)
	}

	d.log.Infow("Direct download finished",
		logger.FieldURL, item.URL,
		logger.FieldPath, target,
		logger.FieldBytes, written)
	return []string{target}, nil
}

// copy streams body into w in ChunkSize pieces, checking for cancellation
// before each write.
func (d *DirectTransfer) copy(w io.Writer, body io.Reader, total int64, item Item, report Reporter, checkpoint Checkpoint) (int64, error) {
	buf := make([]byte, ChunkSize)
	var written int64
	started := time.Now()
	title := FileNameFromURL(item.URL)

	for {
		n, rerr := body.Read(buf)
		if n > 0 {
			if err := checkpoint(); err != nil {
				return written, err
			}
			if _, err := w.Write(buf[:n]); err != nil {
				return written, errors.Wrap(err, "write chunk")
			}
			written += int64(n)
			report(directProgress(written, total, started, title))
		}
		if rerr == io.EOF {
			return written, nil
		}
		if rerr != nil {
			if err := checkpoint(); err != nil {
				return written, err
			}
			return written, errors.Wrapf(errors.Mark(rerr, errors.ErrTransfer), "read %s", item.URL)
		}
	}
}

func directProgress(written, total int64, started time.Time, title string) ItemProgress {
	p := ItemProgress{Title: title, ETASec: -1}
	if total > 0 {
		p.Percent = float64(written) / float64(total) * 100
	} else {
		// Unknown length: percent is not reported.
		p.Percent = -1
	}

	elapsed := time.Since(started).Seconds()
	if elapsed > 0 {
		rate := float64(written) / elapsed
		p.Speed = fmt.Sprintf("%.1fMB/s", rate/1024/1024)
		if total > 0 && rate > 0 {
			p.ETASec = int(float64(total-written) / rate)
		}
	}
	return p
}

// FileNameFromURL derives a safe file name from the last path segment.
func FileNameFromURL(rawURL string) string {
	name := DefaultLeaf
	if u, err := url.Parse(rawURL); err == nil {
		if base := path.Base(u.Path); base != "." && base != "/" && base != "" {
			if unescaped, err := url.PathUnescape(base); err == nil {
				base = unescaped
			}
			name = base
		}
	}
	return sanitizeFileName(name)
}

func sanitizeFileName(name string) string {
	cleaned := strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|':
			return '_'
		}
		if r < 0x20 {
			return -1
		}
		return r
	}, name)
	cleaned = strings.Trim(cleaned, " .")
	if cleaned == "" {
		return DefaultLeaf
	}
	return cleaned
}
