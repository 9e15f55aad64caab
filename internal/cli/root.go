package cli

import (
	"strconv"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/ytget/tubegrab/internal/config"
	"github.com/ytget/tubegrab/internal/errors"
	"github.com/ytget/tubegrab/internal/logger"
)

// Exit statuses
const (
	ExitFailed    = 1
	ExitCancelled = 130
)

// ExitError carries a process exit status out of a command.
type ExitError struct {
	Code int
	Err  error // reported to the user when non-nil
}

func (e *ExitError) Error() string {
	if e.Err == nil {
		return "exit status " + strconv.Itoa(e.Code)
	}
	return e.Err.Error()
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// options is shared by every command. cfg is valid once the root
// PersistentPreRunE ran.
type options struct {
	version    string
	configPath string
	logJSON    bool
	logLevel   string
	cfg        config.Config
}

// NewRootCommand builds the command tree.
func NewRootCommand(version string) *cobra.Command {
	o := &options{version: version, cfg: config.Default()}

	root := &cobra.Command{
		Use:   "tubegrab",
		Short: "Download videos, audio, and playlists",
		Long: `tubegrab downloads a video, its audio track, or a whole playlist through yt-dlp.

Commands:
  gui         - Open the desktop window
  get         - Download from the command line
  resolve     - Show which extractor claims an input
  extractors  - List the extractor table
  ffmpeg      - Inspect or install FFmpeg

Examples:
  tubegrab get https://youtu.be/dQw4w9WgXcQ
  tubegrab get -m audio "ytsearch3:lofi beats"
  tubegrab get -m playlist -q 720p "https://www.youtube.com/playlist?list=PL..."
  tubegrab ffmpeg install`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: o.init,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&o.configPath, "config", "", "config file (default: <user config dir>/tubegrab/config.toml)")
	pf.BoolVar(&o.logJSON, "log-json", false, "write logs as JSON")
	pf.StringVar(&o.logLevel, "log-level", "", "log level: debug, info, warn, error")

	root.AddCommand(
		newGUICommand(o),
		newGetCommand(o),
		newResolveCommand(o),
		newExtractorsCommand(o),
		newFFmpegCommand(o),
		newVersionCommand(o),
	)
	return root
}

// init loads the configuration and sets up logging before any command runs.
func (o *options) init(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return errors.WithHint(err, "Fix the config file or pass --config with a valid path.")
	}
	if o.logJSON {
		cfg.Log.JSON = true
	}
	if o.logLevel != "" {
		cfg.Log.Level = o.logLevel
	}
	if err := logger.Initialize(cfg.Log.JSON, cfg.Log.Level); err != nil {
		return errors.Wrap(err, "failed to initialize logger")
	}
	o.cfg = cfg
	return nil
}

// Execute runs the command tree with args and returns the process exit
// status.
func Execute(version string, args []string) int {
	root := NewRootCommand(version)
	root.SetArgs(args)
	err := root.Execute()
	logger.Cleanup()
	return reportError(err)
}

func reportError(err error) int {
	if err == nil {
		return 0
	}

	var exit *ExitError
	if errors.As(err, &exit) {
		if exit.Err != nil {
			printError(exit.Err)
		}
		return exit.Code
	}

	printError(err)
	return ExitFailed
}

func printError(err error) {
	pterm.Error.Println(err.Error())
	if hint := errors.FlattenHints(err); hint != "" {
		pterm.Info.Println(hint)
	}
}
