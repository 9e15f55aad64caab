package download

import (
	"context"

	"github.com/ytget/tubegrab/internal/model"
)

// Item is one unit of work handed to a Transfer.
type Item struct {
	URL       string
	Title     string
	Index     int // 1-based
	Count     int
	OutputDir string
	Mode      model.Mode
	Quality   model.Quality
	ToolPath  string // FFmpeg location, empty if unknown
	// Collection marks an unexpanded collection the backend iterates itself.
	Collection bool
}

// ItemProgress is a streaming report from a Transfer. Percent is taken as
// reported; the supervisor discards values that are not finite or fall
// outside [0, 100].
type ItemProgress struct {
	Percent float64
	Title   string
	Speed   string
	ETASec  int
}

// Reporter receives streaming progress for the current item.
type Reporter func(ItemProgress)

// Checkpoint returns an error marked errors.ErrCancelled once cancellation
// was requested. Transfers call it before writing each received chunk.
type Checkpoint func() error

// Transfer moves one item to disk and returns the files it wrote.
type Transfer interface {
	Name() string
	Download(ctx context.Context, item Item, report Reporter, checkpoint Checkpoint) ([]string, error)
}

// Downloader is the control surface the presentation layers use.
type Downloader interface {
	Start(req model.Request) (model.Job, error)
	RequestCancel() bool
	Status() model.Job
	Events() <-chan model.ProgressEvent
	SetToolPath(path string)
}
