package cli

import (
	"os"
	"os/signal"
	"runtime"
	"strconv"
	"syscall"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/ytget/tubegrab/internal/download"
	"github.com/ytget/tubegrab/internal/platform"
	"github.com/ytget/tubegrab/internal/toolchain"
)

func newFFmpegCommand(o *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ffmpeg",
		Short: "Inspect or install FFmpeg",
		Long: `FFmpeg is needed to extract audio and to merge separate video and audio
streams. tubegrab looks for it at the configured path, then on PATH, then in
its own data directory, where "ffmpeg install" puts it.

Examples:
  tubegrab ffmpeg status
  tubegrab ffmpeg install`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	cmd.AddCommand(newFFmpegStatusCommand(o), newFFmpegInstallCommand(o))
	return cmd
}

func newFFmpegStatusCommand(o *options) *cobra.Command {
	var path string

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the FFmpeg that jobs would use",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			localDir, err := toolchain.NewInstaller(nil, o.cfg).BinDir()
			if err != nil {
				localDir = ""
			}

			info := platform.DetectFFmpeg(path, localDir)
			if !info.Found() {
				pterm.Warning.WithWriter(out).Println("FFmpeg not found")
				pterm.Info.WithWriter(out).Println(platform.FFmpegInstallHelp(runtime.GOOS))
				return &ExitError{Code: ExitFailed}
			}

			info = platform.ProbeVersion(cmd.Context(), info)
			data := pterm.TableData{
				{"Path", info.Path},
				{"Source", string(info.Source)},
				{"Version", orDash(info.Version)},
				{"Supported", strconv.FormatBool(info.Supported)},
			}
			if err := pterm.DefaultTable.WithData(data).WithWriter(out).Render(); err != nil {
				return err
			}
			if !info.Supported {
				pterm.Warning.WithWriter(out).Printfln("FFmpeg %s does not satisfy %s", info.Version, platform.MinFFmpegVersion)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&path, "path", "", "FFmpeg binary or directory to check first")
	return cmd
}

func newFFmpegInstallCommand(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "install",
		Short: "Download FFmpeg into the tubegrab data directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			installer := toolchain.NewInstaller(download.NewBusyGate(), o.cfg)
			if err := installer.Start(cmd.Context()); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			res := drain(ctx, installer, installer.Status().ID, newRenderer(cmd.OutOrStdout()))
			return exitFor(res)
		},
	}
}
