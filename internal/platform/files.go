package platform

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
)

// Operating system constants
const (
	OSDarwin  = "darwin"
	OSWindows = "windows"
	OSLinux   = "linux"
)

// File permissions
const (
	DefaultDirPermissions = 0755
)

// Command constants
const (
	OpenCommand     = "open"
	ExplorerCommand = "explorer"
	XDGOpenCommand  = "xdg-open"
)

// Command parameters
const (
	MacOSSelectFlag    = "-R"
	WindowsSelectParam = "/select,"
)

// File manager names
var (
	LinuxFileManagers = []string{"nautilus", "dolphin", "thunar", "nemo", "pcmanfm"}
)

// MaxNameDifference bounds how much a sanitised file name may differ from
// the requested one and still be considered the same file.
const MaxNameDifference = 10

// File extensions to skip
var (
	SkippedExtensions = []string{".part", ".ytdl"}
)

// OpenFileInManager opens the file in the system file manager and highlights it
func OpenFileInManager(filePath string) error {
	foundPath, err := FindFileWithFallback(filePath)
	if err != nil {
		return fmt.Errorf("file does not exist: %v", err)
	}

	absPath, err := filepath.Abs(foundPath)
	if err != nil {
		return fmt.Errorf("failed to get absolute path: %w", err)
	}

	switch runtime.GOOS {
	case OSDarwin:
		return exec.Command(OpenCommand, MacOSSelectFlag, absPath).Run()
	case OSWindows:
		return exec.Command(ExplorerCommand, WindowsSelectParam, absPath).Run()
	case OSLinux:
		return openDirectoryLinux(filepath.Dir(absPath))
	default:
		return fmt.Errorf("unsupported operating system: %s", runtime.GOOS)
	}
}

// OpenDirectory opens a directory in the system file manager
func OpenDirectory(dir string) error {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return fmt.Errorf("failed to get absolute path: %w", err)
	}
	if info, err := os.Stat(absDir); err != nil || !info.IsDir() {
		return fmt.Errorf("not a directory: %s", absDir)
	}

	switch runtime.GOOS {
	case OSDarwin:
		return exec.Command(OpenCommand, absDir).Run()
	case OSWindows:
		return exec.Command(ExplorerCommand, absDir).Run()
	case OSLinux:
		return openDirectoryLinux(absDir)
	default:
		return fmt.Errorf("unsupported operating system: %s", runtime.GOOS)
	}
}

// openDirectoryLinux tries xdg-open, then the common file managers.
// File selection is not standardized on Linux.
func openDirectoryLinux(dir string) error {
	if err := exec.Command(XDGOpenCommand, dir).Run(); err == nil {
		return nil
	}

	for _, fm := range LinuxFileManagers {
		if _, err := exec.LookPath(fm); err == nil {
			return exec.Command(fm, dir).Run()
		}
	}

	return fmt.Errorf("no suitable file manager found")
}

// CreateDirectoryIfNotExists creates directory if it doesn't exist
func CreateDirectoryIfNotExists(dirPath string) error {
	if _, err := os.Stat(dirPath); os.IsNotExist(err) {
		return os.MkdirAll(dirPath, DefaultDirPermissions)
	}
	return nil
}

// GetHomeDownloadsDir returns the standard Downloads directory for the user
func GetHomeDownloadsDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(homeDir, "Downloads"), nil
}

// FindFileWithFallback tries to find a file by its original path, and if not found,
// searches for files with similar names and the same extension in the same directory
func FindFileWithFallback(filePath string) (string, error) {
	if filePath == "" {
		return "", fmt.Errorf("file path is empty")
	}

	if strings.HasPrefix(filePath, "http") {
		return "", fmt.Errorf("file path appears to be a URL: %s", filePath)
	}

	if !strings.Contains(filePath, "/") && !strings.Contains(filePath, "\\") {
		return "", fmt.Errorf("file path does not contain path separators: %s", filePath)
	}

	if _, err := os.Stat(filePath); err == nil {
		return filePath, nil
	}

	dir := filepath.Dir(filePath)
	originalName := filepath.Base(filePath)
	originalExt := filepath.Ext(originalName)
	baseName := strings.TrimSuffix(originalName, originalExt)

	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("failed to read directory %s: %w", dir, err)
	}

	var candidates []string
	for _, entry := range entries {
		if entry.IsDir() || isTemporaryFile(entry.Name()) {
			continue
		}

		entryName := entry.Name()
		entryExt := filepath.Ext(entryName)
		entryBase := strings.TrimSuffix(entryName, entryExt)

		if entryExt == originalExt && isSimilarFileName(entryBase, baseName) {
			candidates = append(candidates, filepath.Join(dir, entryName))
		}
	}

	if len(candidates) > 0 {
		sort.Strings(candidates)
		return candidates[0], nil
	}

	return "", fmt.Errorf("file not found: %s", filePath)
}

func isTemporaryFile(name string) bool {
	for _, ext := range SkippedExtensions {
		if strings.HasSuffix(name, ext) {
			return true
		}
	}
	return false
}

// isSimilarFileName checks if two file names are similar enough to be considered the same file.
// yt-dlp replaces characters it cannot write, so names are compared with
// separators folded together.
func isSimilarFileName(name1, name2 string) bool {
	clean1 := foldSeparators(strings.TrimSpace(name1))
	clean2 := foldSeparators(strings.TrimSpace(name2))

	if clean1 == clean2 {
		return true
	}

	if strings.Contains(clean1, clean2) || strings.Contains(clean2, clean1) {
		diff := len(clean1) - len(clean2)
		if diff < 0 {
			diff = -diff
		}
		return diff <= MaxNameDifference
	}

	return false
}

func foldSeparators(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '-', '_', ' ':
			return '_'
		}
		return r
	}, strings.ToLower(s))
}
