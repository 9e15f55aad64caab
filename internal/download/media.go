package download

import (
	"context"
	"fmt"
	"math"
	"path/filepath"
	"time"

	"github.com/lrstanley/go-ytdlp"
	"go.uber.org/zap"

	"github.com/ytget/tubegrab/internal/errors"
	"github.com/ytget/tubegrab/internal/logger"
	"github.com/ytget/tubegrab/internal/model"
)

// Media backend timing
const (
	CancelPollInterval    = 100 * time.Millisecond
	MediaProgressInterval = 250 * time.Millisecond
	RetryBackoff          = 2 * time.Second
	MaxRetries            = 1
)

// MediaTransfer downloads media pages through yt-dlp.
type MediaTransfer struct {
	socketTimeout time.Duration
	retries       int
	log           *zap.SugaredLogger
}

// NewMediaTransfer creates the yt-dlp backend. socketTimeout is passed to
// --socket-timeout when positive.
func NewMediaTransfer(socketTimeout time.Duration) *MediaTransfer {
	return &MediaTransfer{
		socketTimeout: socketTimeout,
		retries:       MaxRetries,
		log:           logger.ComponentLogger("media"),
	}
}

// Name implements Transfer.
func (m *MediaTransfer) Name() string { return "media" }

// Command builds the yt-dlp invocation for item.
func (m *MediaTransfer) Command(item Item) *ytdlp.Command {
	dl := ytdlp.New().
		NoCheckCertificates().
		Output(filepath.Join(item.OutputDir, OutputTemplate))

	if item.Collection {
		dl = dl.YesPlaylist().IgnoreErrors()
	} else {
		dl = dl.NoPlaylist()
	}

	dl = dl.Format(FormatSelector(item.Mode, item.Quality))
	if item.Mode == model.ModeAudio {
		dl = dl.ExtractAudio().
			AudioFormat(AudioCodec).
			AudioQuality(AudioQuality)
	}

	if item.ToolPath != "" {
		dl = dl.FFmpegLocation(item.ToolPath)
	}
	if m.socketTimeout > 0 {
		dl = dl.SocketTimeout(m.socketTimeout.Seconds())
	}
	return dl
}

// Download implements Transfer.
func (m *MediaTransfer) Download(ctx context.Context, item Item, report Reporter, checkpoint Checkpoint) ([]string, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Monitor for cancel requests
	done := make(chan struct{})
	defer close(done)
	go func() {
		ticker := time.NewTicker(CancelPollInterval)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				if checkpoint() != nil {
					cancel()
					return
				}
			}
		}
	}()

	dl := m.Command(item)
	dl.ProgressFunc(MediaProgressInterval, func(update ytdlp.ProgressUpdate) {
		if checkpoint() != nil {
			cancel()
			return
		}
		report(progressFromUpdate(&update))
	})

	result, err := m.downloadWithRetry(ctx, dl, item, checkpoint)
	if cerr := checkpoint(); cerr != nil {
		return nil, cerr
	}
	if err != nil {
		return nil, errors.Wrapf(err, "yt-dlp %s", item.URL)
	}

	return outputFiles(result), nil
}

// downloadWithRetry attempts download with retry logic
func (m *MediaTransfer) downloadWithRetry(ctx context.Context, dl *ytdlp.Command, item Item, checkpoint Checkpoint) (*ytdlp.Result, error) {
	var lastErr error

	for attempt := 0; attempt <= m.retries; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(RetryBackoff):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
			m.log.Infow("Retrying download", logger.FieldURL, item.URL, "attempt", attempt+1)
		}

		res, err := dl.Run(ctx, item.URL)
		if err == nil {
			return res, nil
		}

		lastErr = err
		m.log.Warnw("Download attempt failed",
			logger.FieldURL, item.URL,
			"attempt", attempt+1,
			logger.FieldError, err)

		if ctx.Err() != nil || checkpoint() != nil {
			return nil, err
		}
		// Missing tools do not fix themselves between attempts.
		if errors.KindOf(Classify(err, false)) == errors.KindToolMissing {
			return nil, err
		}
	}

	return nil, lastErr
}

// progressFromUpdate converts a yt-dlp progress update. Percent stays NaN
// when neither byte nor fragment counts are known.
func progressFromUpdate(update *ytdlp.ProgressUpdate) ItemProgress {
	p := ItemProgress{Percent: math.NaN(), ETASec: -1}

	switch {
	case update.TotalBytes > 0:
		p.Percent = float64(update.DownloadedBytes) / float64(update.TotalBytes) * 100
	case update.FragmentCount > 0:
		p.Percent = float64(update.FragmentIndex) / float64(update.FragmentCount) * 100
	}

	if !update.Started.IsZero() {
		elapsed := time.Since(update.Started)
		if elapsed.Seconds() > 0 {
			bytesPerSecond := float64(update.DownloadedBytes) / elapsed.Seconds()
			p.Speed = fmt.Sprintf("%.1fMB/s", bytesPerSecond/1024/1024)
		}
	}

	if eta := update.ETA(); eta > 0 {
		p.ETASec = int(eta.Seconds())
	}

	if update.Info != nil && update.Info.Title != nil {
		p.Title = *update.Info.Title
	}
	return p
}

func outputFiles(result *ytdlp.Result) []string {
	if result == nil {
		return nil
	}
	info, err := result.GetExtractedInfo()
	if err != nil {
		return nil
	}
	var files []string
	for _, i := range info {
		if i != nil && i.Filename != nil && *i.Filename != "" {
			files = append(files, *i.Filename)
		}
	}
	return files
}
