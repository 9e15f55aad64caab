package platform

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"runtime"
	"time"

	"github.com/Masterminds/semver/v3"
)

// AppName names the per-user data directory.
const AppName = "tubegrab"

// MinFFmpegVersion is the oldest FFmpeg release known to handle the
// merge and mp3 extraction arguments yt-dlp emits.
const MinFFmpegVersion = ">= 4.0"

// ToolSource records where a tool was found.
type ToolSource string

const (
	ToolSourceNone       ToolSource = ""
	ToolSourceConfigured ToolSource = "configured"
	ToolSourcePath       ToolSource = "PATH"
	ToolSourceLocal      ToolSource = "app-local"
)

// ToolInfo describes a detected external tool.
type ToolInfo struct {
	Name      string
	Path      string
	Source    ToolSource
	Version   string // empty when it could not be parsed
	Supported bool   // false only when Version is known and below the minimum
}

// Found reports whether the tool was located.
func (t ToolInfo) Found() bool {
	return t.Path != ""
}

// AppDataDir returns %LOCALAPPDATA%/tubegrab on Windows and
// ~/.local/share/tubegrab elsewhere.
func AppDataDir() (string, error) {
	if runtime.GOOS == OSWindows {
		if base := os.Getenv("LOCALAPPDATA"); base != "" {
			return filepath.Join(base, AppName), nil
		}
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(home, ".local", "share", AppName), nil
}

// LocalToolDir returns the directory the installer places FFmpeg binaries in.
func LocalToolDir(base string) string {
	return filepath.Join(base, "ffmpeg", "bin")
}

// ExecutableName appends .exe on Windows.
func ExecutableName(name string) string {
	if runtime.GOOS == OSWindows {
		return name + ".exe"
	}
	return name
}

var lookPath = exec.LookPath

// DetectFFmpeg looks for ffmpeg at the configured path, then on PATH, then
// in localDir. The returned ToolInfo is empty when nothing was found.
func DetectFFmpeg(configured, localDir string) ToolInfo {
	name := ExecutableName("ffmpeg")

	if configured != "" {
		if fi, err := os.Stat(configured); err == nil {
			path := configured
			if fi.IsDir() {
				path = filepath.Join(configured, name)
			}
			if isExecutableFile(path) {
				return ToolInfo{Name: "ffmpeg", Path: path, Source: ToolSourceConfigured, Supported: true}
			}
		}
	}

	if path, err := lookPath("ffmpeg"); err == nil {
		return ToolInfo{Name: "ffmpeg", Path: path, Source: ToolSourcePath, Supported: true}
	}

	if localDir != "" {
		path := filepath.Join(localDir, name)
		if isExecutableFile(path) {
			return ToolInfo{Name: "ffmpeg", Path: path, Source: ToolSourceLocal, Supported: true}
		}
	}

	return ToolInfo{Name: "ffmpeg"}
}

func isExecutableFile(path string) bool {
	fi, err := os.Stat(path)
	if err != nil || fi.IsDir() {
		return false
	}
	if runtime.GOOS == OSWindows {
		return true
	}
	return fi.Mode()&0111 != 0
}

var (
	versionPattern  = regexp.MustCompile(`(?m)^\S+ version n?(\d+(?:\.\d+){0,2})`)
	snapshotPattern = regexp.MustCompile(`(?m)^\S+ version \d{4}-\d{2}-\d{2}`)
)

// ParseToolVersion extracts the release number from `<tool> -version`
// output. Git snapshot builds carry no release number and yield "".
func ParseToolVersion(output string) string {
	if snapshotPattern.MatchString(output) {
		return ""
	}
	m := versionPattern.FindStringSubmatch(output)
	if m == nil {
		return ""
	}
	return m[1]
}

// VersionSupported checks version against MinFFmpegVersion. Unknown
// versions are assumed to be supported.
func VersionSupported(version string) (bool, error) {
	if version == "" {
		return true, nil
	}
	v, err := semver.NewVersion(version)
	if err != nil {
		return false, fmt.Errorf("parse version %q: %w", version, err)
	}
	c, err := semver.NewConstraint(MinFFmpegVersion)
	if err != nil {
		return false, err
	}
	return c.Check(v), nil
}

// ProbeVersion runs `<path> -version` and fills Version and Supported.
func ProbeVersion(ctx context.Context, info ToolInfo) ToolInfo {
	if !info.Found() {
		return info
	}
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	var out bytes.Buffer
	cmd := exec.CommandContext(ctx, info.Path, "-version")
	cmd.Stdout = &out
	if err := cmd.Run(); err != nil {
		return info
	}

	info.Version = ParseToolVersion(out.String())
	if ok, err := VersionSupported(info.Version); err == nil {
		info.Supported = ok
	}
	return info
}

// FFmpegInstallHelp returns the remediation text for a missing FFmpeg on goos.
func FFmpegInstallHelp(goos string) string {
	switch goos {
	case OSWindows:
		return "Use the FFmpeg Utility section to download it, or add ffmpeg.exe to PATH."
	case OSDarwin:
		return "Install it with Homebrew: brew install ffmpeg"
	case OSLinux:
		return "Install it with your package manager, e.g.: sudo apt update && sudo apt install ffmpeg"
	default:
		return "Install FFmpeg and make sure it is on PATH."
	}
}
