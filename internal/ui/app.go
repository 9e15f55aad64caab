package ui

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"

	"github.com/ytget/tubegrab/internal/config"
	"github.com/ytget/tubegrab/internal/download"
	"github.com/ytget/tubegrab/internal/logger"
	"github.com/ytget/tubegrab/internal/platform"
	"github.com/ytget/tubegrab/internal/toolchain"
)

// AppID scopes the stored preferences.
const AppID = "com.ytget.tubegrab"

// Run opens the main window and blocks until it is closed.
func Run(cfg config.Config, version string) {
	log := logger.ComponentLogger("ui")
	log.Infow("Starting desktop UI", "version", version)

	a := app.NewWithID(AppID)
	a.Settings().SetTheme(NewCompactTheme())

	w := a.NewWindow(platform.AppName)
	w.Resize(fyne.NewSize(WindowWidth, WindowHeight))

	settings := config.NewSettings(a)
	if err := platform.CreateDirectoryIfNotExists(settings.GetDownloadDirectory()); err != nil {
		log.Warnw("Failed to ensure downloads dir", logger.FieldPath, settings.GetDownloadDirectory(), logger.FieldError, err)
	}

	sup := download.NewSupervisor(
		download.WithConfig(cfg),
		download.WithToolLocator(download.DetectTool(cfg.FFmpeg.InstallDir)),
	)
	installer := toolchain.NewInstaller(sup.Gate(), cfg)

	NewRootUI(w, a, sup, installer)
	w.ShowAndRun()
}
