package cli

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ytget/tubegrab/internal/download"
	"github.com/ytget/tubegrab/internal/errors"
	"github.com/ytget/tubegrab/internal/model"
	"github.com/ytget/tubegrab/internal/platform"
)

type getFlags struct {
	mode    string
	quality string
	output  string
	ffmpeg  string
}

func newGetCommand(o *options) *cobra.Command {
	var f getFlags

	cmd := &cobra.Command{
		Use:   "get <url-or-query>",
		Short: "Download a video, its audio, or a playlist",
		Long: `Download one input and print progress until the job finishes.

Modes:
  video     - best video and audio up to --quality (default)
  audio     - audio only, converted to MP3 (needs FFmpeg)
  playlist  - every entry of a playlist, channel tab, or search

Press Ctrl+C to cancel; the job stops at its next chunk and the command
exits with status 130.

Examples:
  tubegrab get https://youtu.be/dQw4w9WgXcQ
  tubegrab get -m audio -o ~/Music https://youtu.be/dQw4w9WgXcQ
  tubegrab get -m playlist "ytsearch5:go concurrency"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := f.request(args[0])
			if err != nil {
				return err
			}
			if err := platform.CreateDirectoryIfNotExists(req.OutputDirectory); err != nil {
				return errors.Wrapf(errors.Mark(err, errors.ErrInvalidInput), "create %s", req.OutputDirectory)
			}

			sup := download.NewSupervisor(
				download.WithConfig(o.cfg),
				download.WithToolLocator(download.DetectTool(o.cfg.FFmpeg.InstallDir)),
			)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			res, err := runJob(ctx, sup, req, newRenderer(cmd.OutOrStdout()))
			if err != nil {
				return err
			}
			return exitFor(res)
		},
	}

	cmd.Flags().StringVarP(&f.mode, "mode", "m", string(model.ModeVideo), "video, audio, or playlist")
	cmd.Flags().StringVarP(&f.quality, "quality", "q", string(model.QualityBest), "Best, 1080p, 720p, 480p, or 360p")
	cmd.Flags().StringVarP(&f.output, "output", "o", ".", "output directory")
	cmd.Flags().StringVar(&f.ffmpeg, "ffmpeg", "", "FFmpeg binary or directory (default: detect)")
	return cmd
}

// request turns the flags into a validated Request.
func (f getFlags) request(location string) (model.Request, error) {
	mode, err := model.ParseMode(f.mode)
	if err != nil {
		return model.Request{}, err
	}
	quality, err := model.ParseQuality(f.quality)
	if err != nil {
		return model.Request{}, err
	}
	output := f.output
	if output != "" {
		if abs, err := filepath.Abs(output); err == nil {
			output = abs
		}
	}

	req := model.Request{
		Location:        location,
		OutputDirectory: output,
		Mode:            mode,
		Quality:         quality,
		ToolPath:        f.ffmpeg,
	}.Normalized()
	if err := req.Validate(); err != nil {
		return model.Request{}, err
	}
	return req, nil
}

// eventSource is a cancellable job with an event queue.
type eventSource interface {
	RequestCancel() bool
	Events() <-chan model.ProgressEvent
}

// runJob starts req and renders its events until the terminal one.
func runJob(ctx context.Context, d download.Downloader, req model.Request, r *renderer) (*model.Result, error) {
	job, err := d.Start(req)
	if err != nil {
		return nil, err
	}
	return drain(ctx, d, job.ID, r), nil
}

// drain renders the events of jobID until the terminal one. When ctx is
// done the job is asked to cancel once and draining continues.
func drain(ctx context.Context, src eventSource, jobID string, r *renderer) *model.Result {
	done := ctx.Done()
	for {
		select {
		case <-done:
			done = nil
			if src.RequestCancel() {
				r.cancelRequested(download.StatusCancelRequested)
			}
		case ev := <-src.Events():
			if ev.JobID != jobID {
				continue
			}
			r.render(ev)
			if ev.IsTerminal() {
				return ev.Result
			}
		}
	}
}

// exitFor maps a terminal Result onto the command's exit status.
func exitFor(res *model.Result) error {
	if res == nil {
		return &ExitError{Code: ExitFailed, Err: errors.New("job finished without a result")}
	}
	switch res.Outcome {
	case model.OutcomeCompleted:
		return nil
	case model.OutcomeCancelled:
		return &ExitError{Code: ExitCancelled}
	default:
		// The renderer already printed the message and hint.
		return &ExitError{Code: ExitFailed}
	}
}
