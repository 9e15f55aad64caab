package config

import (
	"path/filepath"

	"fyne.io/fyne/v2"

	"github.com/ytget/tubegrab/internal/errors"
	"github.com/ytget/tubegrab/internal/model"
	"github.com/ytget/tubegrab/internal/platform"
)

// Settings keys for Fyne preferences
const (
	KeyDownloadDir        = "download_directory"
	KeyMode               = "download_mode"
	KeyQuality            = "video_quality"
	KeyFFmpegPath         = "ffmpeg_path"
	KeyLanguage           = "app_language"
	KeyAutoRevealComplete = "auto_reveal_on_complete"
)

// Default values
const (
	DefaultMode               = model.ModeVideo
	DefaultQuality            = model.QualityBest
	DefaultLanguage           = "system"
	DefaultAutoRevealComplete = false
)

// Settings persists the user's choices between runs
type Settings struct {
	app fyne.App
}

// NewSettings creates a new settings manager
func NewSettings(app fyne.App) *Settings {
	return &Settings{app: app}
}

// GetDownloadDirectory returns the configured download directory
func (s *Settings) GetDownloadDirectory() string {
	dir := s.app.Preferences().String(KeyDownloadDir)
	if dir == "" {
		// Use system default Downloads directory
		defaultDir, err := platform.GetHomeDownloadsDir()
		if err != nil {
			defaultDir = filepath.Join(".", "downloads")
		}
		s.app.Preferences().SetString(KeyDownloadDir, defaultDir)
		return defaultDir
	}
	return dir
}

// SetDownloadDirectory sets the download directory
func (s *Settings) SetDownloadDirectory(dir string) error {
	if dir == "" {
		return errors.Wrap(errors.ErrInvalidInput, "download directory cannot be empty")
	}
	s.app.Preferences().SetString(KeyDownloadDir, dir)
	return nil
}

// GetMode returns the last selected download mode
func (s *Settings) GetMode() model.Mode {
	mode, err := model.ParseMode(s.app.Preferences().String(KeyMode))
	if err != nil {
		s.app.Preferences().SetString(KeyMode, string(DefaultMode))
		return DefaultMode
	}
	return mode
}

// SetMode stores the download mode
func (s *Settings) SetMode(mode model.Mode) error {
	parsed, err := model.ParseMode(string(mode))
	if err != nil {
		return err
	}
	s.app.Preferences().SetString(KeyMode, string(parsed))
	return nil
}

// GetQuality returns the last selected video quality
func (s *Settings) GetQuality() model.Quality {
	q, err := model.ParseQuality(s.app.Preferences().String(KeyQuality))
	if err != nil {
		s.app.Preferences().SetString(KeyQuality, string(DefaultQuality))
		return DefaultQuality
	}
	return q
}

// SetQuality stores the video quality
func (s *Settings) SetQuality(q model.Quality) error {
	parsed, err := model.ParseQuality(string(q))
	if err != nil {
		return err
	}
	s.app.Preferences().SetString(KeyQuality, string(parsed))
	return nil
}

// GetFFmpegPath returns the FFmpeg location chosen by the user or set by
// the installer. Empty means detect at execution time.
func (s *Settings) GetFFmpegPath() string {
	return s.app.Preferences().String(KeyFFmpegPath)
}

// SetFFmpegPath stores the FFmpeg location. An empty path clears it.
func (s *Settings) SetFFmpegPath(path string) {
	s.app.Preferences().SetString(KeyFFmpegPath, path)
}

// GetLanguage returns the configured language
func (s *Settings) GetLanguage() string {
	lang := s.app.Preferences().String(KeyLanguage)
	if lang == "" {
		s.SetLanguage(DefaultLanguage)
		return DefaultLanguage
	}
	return lang
}

// SetLanguage sets the application language
func (s *Settings) SetLanguage(lang string) {
	s.app.Preferences().SetString(KeyLanguage, lang)
}

// GetAutoRevealOnComplete returns whether to reveal the output folder when a job completes
func (s *Settings) GetAutoRevealOnComplete() bool {
	return s.app.Preferences().BoolWithFallback(KeyAutoRevealComplete, DefaultAutoRevealComplete)
}

// SetAutoRevealOnComplete sets whether to reveal the output folder when a job completes
func (s *Settings) SetAutoRevealOnComplete(autoReveal bool) {
	s.app.Preferences().SetBool(KeyAutoRevealComplete, autoReveal)
}

// Request builds a job request from the stored choices.
func (s *Settings) Request(location string) model.Request {
	return model.Request{
		Location:        location,
		OutputDirectory: s.GetDownloadDirectory(),
		Mode:            s.GetMode(),
		Quality:         s.GetQuality(),
		ToolPath:        s.GetFFmpegPath(),
	}
}

// GetLanguageOptions returns available language options
func (s *Settings) GetLanguageOptions() map[string]string {
	return map[string]string{
		"system": "System Default",
		"en":     "English",
		"ru":     "Русский",
		"pt":     "Português",
	}
}
