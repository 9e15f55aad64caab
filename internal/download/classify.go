package download

import (
	"context"
	"net"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/ytget/tubegrab/internal/errors"
	"github.com/ytget/tubegrab/internal/platform"
)

// MsgFFmpegMissing is the result message for a job that needed FFmpeg.
const MsgFFmpegMissing = "FFmpeg needed but not found. Use FFmpeg Utility section."

// MsgExecutableMissing is the result message for any other missing binary.
const MsgExecutableMissing = "%s needed but not found."

// DownloaderInstallHelp is the remediation text for a missing yt-dlp.
const DownloaderInstallHelp = "Install yt-dlp and make sure it is on PATH: https://github.com/yt-dlp/yt-dlp#installation"

const downloaderName = "yt-dlp"

var toolNames = []string{"ffmpeg", "ffprobe"}

var toolMissingPhrases = []string{"not found", "not installed"}

var transferPhrases = []string{
	"http error",
	"unable to download",
	"connection",
	"timed out",
	"network is unreachable",
	"no such host",
	"video unavailable",
	"exit status",
}

// ToolMissing builds the ToolMissing failure. cause may be nil.
func ToolMissing(cause error) error {
	err := errors.New(MsgFFmpegMissing)
	if cause != nil {
		err = errors.WithDetail(err, cause.Error())
	}
	err = errors.Mark(err, errors.ErrToolMissing)
	return errors.WithHint(err, platform.FFmpegInstallHelp(runtime.GOOS))
}

// ExecutableMissing builds the ToolMissing failure for a binary other than
// FFmpeg. cause may be nil.
func ExecutableMissing(name string, cause error) error {
	err := errors.Newf(MsgExecutableMissing, name)
	if cause != nil {
		err = errors.WithDetail(err, cause.Error())
	}
	err = errors.Mark(err, errors.ErrToolMissing)
	if name == downloaderName {
		err = errors.WithHint(err, DownloaderInstallHelp)
	}
	return err
}

// Classify marks err with the sentinel of its failure kind so that
// errors.KindOf can report it. cancelRequested tells whether the job's
// cancellation flag was set when err surfaced.
func Classify(err error, cancelRequested bool) error {
	if err == nil {
		return nil
	}

	if errors.KindOf(err) != errors.KindUnclassified {
		return err
	}

	if cancelRequested && errors.Is(err, context.Canceled) {
		return errors.Mark(err, errors.ErrCancelled)
	}

	msg := strings.ToLower(err.Error())

	switch name := missingExecutable(err, msg); {
	case name == "":
	case isFFmpegTool(name):
		return ToolMissing(err)
	default:
		return ExecutableMissing(name, err)
	}

	var netErr net.Error
	if errors.As(err, &netErr) || errors.Is(err, context.DeadlineExceeded) {
		return errors.Mark(err, errors.ErrTransfer)
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return errors.Mark(err, errors.ErrTransfer)
	}

	for _, phrase := range transferPhrases {
		if strings.Contains(msg, phrase) {
			return errors.Mark(err, errors.ErrTransfer)
		}
	}

	return err
}

// missingExecutable names the binary err reports as absent, or "".
func missingExecutable(err error, msg string) string {
	var execErr *exec.Error
	if errors.As(err, &execErr) && errors.Is(execErr.Err, exec.ErrNotFound) {
		name := strings.ToLower(filepath.Base(execErr.Name))
		return strings.TrimSuffix(name, ".exe")
	}

	for _, tool := range toolNames {
		if !strings.Contains(msg, tool) {
			continue
		}
		for _, phrase := range toolMissingPhrases {
			if strings.Contains(msg, phrase) {
				return tool
			}
		}
	}

	if strings.Contains(msg, "executable file not found") {
		if strings.Contains(msg, downloaderName) {
			return downloaderName
		}
		return "executable"
	}
	return ""
}

func isFFmpegTool(name string) bool {
	for _, tool := range toolNames {
		if strings.HasPrefix(name, tool) {
			return true
		}
	}
	return false
}
