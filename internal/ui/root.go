package ui

import (
	"context"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
	"go.uber.org/zap"

	"github.com/ytget/tubegrab/internal/config"
	"github.com/ytget/tubegrab/internal/download"
	"github.com/ytget/tubegrab/internal/errors"
	"github.com/ytget/tubegrab/internal/logger"
	"github.com/ytget/tubegrab/internal/model"
	"github.com/ytget/tubegrab/internal/platform"
)

// ToolInstaller acquires FFmpeg in the background.
type ToolInstaller interface {
	Start(ctx context.Context) error
	RequestCancel() bool
	Events() <-chan model.ProgressEvent
	BinDir() (string, error)
}

// RootUI represents the main window
type RootUI struct {
	window       fyne.Window
	settings     *config.Settings
	localization *Localization
	downloader   download.Downloader
	installer    ToolInstaller
	log          *zap.SugaredLogger

	urlEntry      *widget.Entry
	dirEntry      *widget.Entry
	browseBtn     *widget.Button
	modeSelect    *widget.Select
	qualitySelect *widget.Select
	downloadBtn   *widget.Button
	cancelBtn     *widget.Button
	revealBtn     *widget.Button
	progressBar   *widget.ProgressBar
	statusLabel   *widget.Label
	detailLabel   *widget.Label

	toolCard       *widget.Card
	toolLabel      *widget.Label
	toolProgress   *widget.ProgressBar
	toolInstallBtn *widget.Button
	toolCancelBtn  *widget.Button

	job      jobView
	tool     jobView
	toolInfo platform.ToolInfo
}

// NewRootUI builds the window content and starts draining both event
// queues onto the fyne main thread.
func NewRootUI(window fyne.Window, app fyne.App, downloader download.Downloader, installer ToolInstaller) *RootUI {
	settings := config.NewSettings(app)

	localization := NewLocalization()
	localization.SetLanguage(settings.GetLanguage())

	ui := &RootUI{
		window:       window,
		settings:     settings,
		localization: localization,
		downloader:   downloader,
		installer:    installer,
		log:          logger.ComponentLogger("ui"),
	}

	window.SetTitle(localization.GetText(KeyAppTitle))
	if icon, err := LoadLogoResource(); err == nil {
		window.SetIcon(icon)
	}

	ui.setupUI()
	ui.refreshToolStatus()

	go ui.pump(downloader.Events(), ui.onJobEvent)
	go ui.pump(installer.Events(), ui.onToolEvent)
	return ui
}

// pump hands every event to apply on the fyne main thread, in queue order.
func (ui *RootUI) pump(events <-chan model.ProgressEvent, apply func(model.ProgressEvent)) {
	for ev := range events {
		fyne.Do(func() { apply(ev) })
	}
}

func (ui *RootUI) setupUI() {
	ui.createMenu()

	ui.urlEntry = widget.NewEntry()
	ui.urlEntry.SetPlaceHolder(ui.localization.GetText(KeyEnterURL))
	ui.urlEntry.OnSubmitted = func(string) {
		ui.onDownloadClick()
	}

	ui.dirEntry = widget.NewEntry()
	ui.dirEntry.SetText(ui.settings.GetDownloadDirectory())
	ui.browseBtn = widget.NewButtonWithIcon(ui.localization.GetText(KeyBrowse), theme.FolderOpenIcon(), ui.onBrowseDirectory)

	modes := make([]string, len(model.Modes))
	for i, m := range model.Modes {
		modes[i] = string(m)
	}
	qualities := make([]string, len(model.Qualities))
	for i, q := range model.Qualities {
		qualities[i] = string(q)
	}
	ui.qualitySelect = widget.NewSelect(qualities, ui.onQualityChanged)
	ui.qualitySelect.SetSelected(string(ui.settings.GetQuality()))
	ui.modeSelect = widget.NewSelect(modes, ui.onModeChanged)
	ui.modeSelect.SetSelected(string(ui.settings.GetMode()))

	ui.downloadBtn = widget.NewButtonWithIcon(ui.localization.GetText(KeyDownload), theme.DownloadIcon(), ui.onDownloadClick)
	ui.downloadBtn.Importance = widget.HighImportance
	ui.cancelBtn = widget.NewButtonWithIcon(ui.localization.GetText(KeyCancel), theme.CancelIcon(), ui.onCancelClick)
	ui.revealBtn = widget.NewButtonWithIcon(ui.localization.GetText(KeyReveal), theme.FolderIcon(), ui.onRevealClick)
	settingsBtn := widget.NewButton(IconSettings, ui.onShowSettings)
	settingsBtn.Importance = widget.LowImportance

	ui.progressBar = widget.NewProgressBar()
	ui.statusLabel = widget.NewLabel(ui.localization.GetText(KeyReady))
	ui.statusLabel.Wrapping = fyne.TextWrapWord
	ui.detailLabel = widget.NewLabel("")

	ui.toolLabel = widget.NewLabel("")
	ui.toolLabel.Wrapping = fyne.TextWrapWord
	ui.toolProgress = widget.NewProgressBar()
	ui.toolProgress.Hide()
	ui.toolInstallBtn = widget.NewButtonWithIcon(ui.localization.GetText(KeyFFmpegInstall), theme.DownloadIcon(), ui.onInstallTool)
	ui.toolCancelBtn = widget.NewButtonWithIcon(ui.localization.GetText(KeyCancel), theme.CancelIcon(), ui.onCancelTool)

	var left fyne.CanvasObject = settingsBtn
	if logo, err := LoadLogoResource(); err == nil {
		img := canvas.NewImageFromResource(logo)
		img.SetMinSize(fyne.NewSize(32, 32))
		img.FillMode = canvas.ImageFillContain
		left = container.NewHBox(img, settingsBtn)
	}
	urlRow := container.NewBorder(nil, nil, left, ui.downloadBtn, ui.urlEntry)
	dirRow := container.NewBorder(nil, nil, widget.NewLabel(ui.localization.GetText(KeyOutputFolder)), ui.browseBtn, ui.dirEntry)
	optionsRow := container.NewHBox(
		widget.NewLabel(ui.localization.GetText(KeyMode)), ui.modeSelect,
		widget.NewLabel(ui.localization.GetText(KeyQuality)), ui.qualitySelect,
	)
	actions := container.NewHBox(ui.cancelBtn, ui.revealBtn)
	progressArea := container.NewVBox(
		ui.progressBar,
		container.NewBorder(nil, nil, nil, actions, ui.statusLabel),
		ui.detailLabel,
	)

	ui.toolCard = widget.NewCard(ui.localization.GetText(KeyFFmpegSection), "", container.NewVBox(
		ui.toolLabel,
		ui.toolProgress,
		container.NewHBox(ui.toolInstallBtn, ui.toolCancelBtn),
	))

	content := container.NewVBox(urlRow, dirRow, optionsRow, widget.NewSeparator(), progressArea, ui.toolCard)
	ui.window.SetContent(container.NewPadded(content))
	ui.render()
}

// createMenu creates the application menu
func (ui *RootUI) createMenu() {
	settingsItem := fyne.NewMenuItem(ui.localization.GetText(KeySettings), ui.onShowSettings)

	languageMenu := fyne.NewMenu(ui.localization.GetText(KeyLanguage))
	for code, name := range ui.localization.GetAvailableLanguages() {
		langCode := code
		langItem := fyne.NewMenuItem(name, func() {
			ui.onLanguageChange(langCode)
		})
		langItem.Checked = ui.localization.GetCurrentLanguage() == code
		languageMenu.Items = append(languageMenu.Items, langItem)
	}

	ui.window.SetMainMenu(fyne.NewMainMenu(
		fyne.NewMenu(ui.localization.GetText(KeyFile), settingsItem),
		languageMenu,
	))
}

func (ui *RootUI) onLanguageChange(langCode string) {
	ui.localization.SetLanguage(langCode)
	ui.settings.SetLanguage(langCode)
	ui.refreshUITexts()
	ui.createMenu()
}

// refreshUITexts updates all UI texts with current language
func (ui *RootUI) refreshUITexts() {
	ui.window.SetTitle(ui.localization.GetText(KeyAppTitle))
	ui.urlEntry.SetPlaceHolder(ui.localization.GetText(KeyEnterURL))
	ui.downloadBtn.SetText(ui.localization.GetText(KeyDownload))
	ui.cancelBtn.SetText(ui.localization.GetText(KeyCancel))
	ui.revealBtn.SetText(ui.localization.GetText(KeyReveal))
	ui.browseBtn.SetText(ui.localization.GetText(KeyBrowse))
	ui.toolInstallBtn.SetText(ui.localization.GetText(KeyFFmpegInstall))
	ui.toolCancelBtn.SetText(ui.localization.GetText(KeyCancel))
	ui.toolCard.SetTitle(ui.localization.GetText(KeyFFmpegSection))
	ui.toolLabel.SetText(toolStatusText(ui.toolInfo, ui.localization))
}

func (ui *RootUI) onModeChanged(value string) {
	mode, err := model.ParseMode(value)
	if err != nil {
		return
	}
	if err := ui.settings.SetMode(mode); err != nil {
		ui.log.Warnw("Failed to store mode", logger.FieldMode, value, logger.FieldError, err)
	}
	if mode == model.ModeAudio {
		ui.qualitySelect.Disable()
	} else {
		ui.qualitySelect.Enable()
	}
}

func (ui *RootUI) onQualityChanged(value string) {
	quality, err := model.ParseQuality(value)
	if err != nil {
		return
	}
	if err := ui.settings.SetQuality(quality); err != nil {
		ui.log.Warnw("Failed to store quality", logger.FieldQuality, value, logger.FieldError, err)
	}
}

func (ui *RootUI) onBrowseDirectory() {
	dialog.ShowFolderOpen(func(uri fyne.ListableURI, err error) {
		if err != nil || uri == nil {
			return
		}
		ui.dirEntry.SetText(uri.Path())
	}, ui.window)
}

// currentRequest builds a Request from the form.
func (ui *RootUI) currentRequest() model.Request {
	req := ui.settings.Request(cleanLocation(ui.urlEntry.Text))
	req.OutputDirectory = strings.TrimSpace(ui.dirEntry.Text)
	if mode, err := model.ParseMode(ui.modeSelect.Selected); err == nil {
		req.Mode = mode
	}
	if quality, err := model.ParseQuality(ui.qualitySelect.Selected); err == nil {
		req.Quality = quality
	}
	return req
}

// cleanLocation strips characters a paste may carry along.
func cleanLocation(s string) string {
	s = strings.ReplaceAll(s, "\n", "")
	s = strings.ReplaceAll(s, "\r", "")
	s = strings.ReplaceAll(s, "\t", " ")
	return strings.TrimSpace(s)
}

func (ui *RootUI) onDownloadClick() {
	req := ui.currentRequest()

	if req.OutputDirectory != "" {
		if err := platform.CreateDirectoryIfNotExists(req.OutputDirectory); err != nil {
			ui.showError(errors.WithHint(errors.Mark(err, errors.ErrInvalidInput), "Please select an output directory."))
			return
		}
		if err := ui.settings.SetDownloadDirectory(req.OutputDirectory); err != nil {
			ui.log.Warnw("Failed to store output directory", logger.FieldPath, req.OutputDirectory, logger.FieldError, err)
		}
	}

	job, err := ui.downloader.Start(req)
	if err != nil {
		ui.showError(err)
		return
	}

	ui.log.Infow("Job started from UI", logger.FieldJobID, job.ID, logger.FieldURL, req.Location, logger.FieldMode, req.Mode)
	ui.job = jobView{JobID: job.ID, Running: true, Status: job.Status}
	ui.render()
}

func (ui *RootUI) onCancelClick() {
	if ui.downloader.RequestCancel() {
		ui.statusLabel.SetText(download.StatusCancelRequested)
		ui.cancelBtn.Disable()
	}
}

func (ui *RootUI) onRevealClick() {
	files := ui.job.Files()
	if len(files) == 0 {
		return
	}
	ui.revealPath(files[len(files)-1])
}

// revealPath selects path in the system file manager, falling back to
// opening the output directory when the file cannot be found.
func (ui *RootUI) revealPath(path string) {
	if resolved, err := platform.FindFileWithFallback(path); err == nil {
		if err := platform.OpenFileInManager(resolved); err == nil {
			return
		}
	}
	if err := platform.OpenDirectory(filepath.Dir(path)); err != nil {
		ui.log.Warnw("Failed to reveal file", logger.FieldPath, path, logger.FieldError, err)
		dialog.ShowInformation(ui.localization.GetText(KeyErrorOpeningFile), err.Error(), ui.window)
	}
}

// onJobEvent applies one Supervisor event. Runs on the main thread.
func (ui *RootUI) onJobEvent(ev model.ProgressEvent) {
	ui.job = ui.job.apply(ev)
	ui.render()
	if ev.IsTerminal() && ev.Result != nil {
		ui.onJobFinished(ev.Result)
	}
}

func (ui *RootUI) onJobFinished(res *model.Result) {
	switch res.Outcome {
	case model.OutcomeCompleted:
		fyne.CurrentApp().SendNotification(fyne.NewNotification(ui.localization.GetText(KeyDownloadCompleted), res.Message))
		if len(res.Files) > 0 {
			if ui.settings.GetAutoRevealOnComplete() {
				ui.revealPath(res.Files[len(res.Files)-1])
			} else {
				ui.showToastNotification(res)
			}
		}
	case model.OutcomeFailed:
		if res.Kind == errors.KindToolMissing && res.Message == download.MsgFFmpegMissing {
			dialog.ShowConfirm(ui.localization.GetText(KeyFFmpegSection), resultText(res), func(install bool) {
				if install {
					ui.onInstallTool()
				}
			}, ui.window)
		}
	}
}

// render syncs the download widgets with ui.job and the tool state.
func (ui *RootUI) render() {
	ui.progressBar.SetValue(ui.job.Progress)
	if ui.job.Status != "" {
		ui.statusLabel.SetText(ui.job.Status)
	}
	ui.detailLabel.SetText(ui.job.Detail)

	if ui.job.Running || ui.tool.Running {
		ui.downloadBtn.Disable()
		ui.toolInstallBtn.Disable()
	} else {
		ui.downloadBtn.Enable()
		ui.toolInstallBtn.Enable()
	}
	if ui.job.Running {
		ui.cancelBtn.Enable()
	} else {
		ui.cancelBtn.Disable()
	}
	if len(ui.job.Files()) > 0 {
		ui.revealBtn.Enable()
	} else {
		ui.revealBtn.Disable()
	}

	if ui.tool.Running {
		ui.toolProgress.Show()
		ui.toolProgress.SetValue(ui.tool.Progress)
		ui.toolLabel.SetText(ui.tool.Status)
		ui.toolCancelBtn.Enable()
	} else {
		ui.toolProgress.Hide()
		ui.toolCancelBtn.Disable()
	}
}

// refreshToolStatus detects FFmpeg off the main thread and updates the
// FFmpeg section when done.
func (ui *RootUI) refreshToolStatus() {
	configured := ui.settings.GetFFmpegPath()
	localDir, err := ui.installer.BinDir()
	if err != nil {
		localDir = ""
	}
	go func() {
		info := platform.DetectFFmpeg(configured, localDir)
		info = platform.ProbeVersion(context.Background(), info)
		fyne.Do(func() {
			ui.toolInfo = info
			if !ui.tool.Running {
				ui.toolLabel.SetText(toolStatusText(info, ui.localization))
			}
		})
	}()
}

func (ui *RootUI) onInstallTool() {
	if err := ui.installer.Start(context.Background()); err != nil {
		ui.showError(err)
		return
	}
	ui.tool = jobView{Running: true}
	ui.render()
}

func (ui *RootUI) onCancelTool() {
	if ui.installer.RequestCancel() {
		ui.toolCancelBtn.Disable()
	}
}

// onToolEvent applies one installer event. Runs on the main thread.
func (ui *RootUI) onToolEvent(ev model.ProgressEvent) {
	ui.tool = ui.tool.apply(ev)
	ui.render()
	if !ev.IsTerminal() || ev.Result == nil {
		return
	}

	res := ev.Result
	ui.toolLabel.SetText(resultText(res))
	switch res.Outcome {
	case model.OutcomeCompleted:
		if len(res.Files) > 0 {
			dir := filepath.Dir(res.Files[0])
			ui.settings.SetFFmpegPath(dir)
			ui.downloader.SetToolPath(dir)
		}
		dialog.ShowInformation(ui.localization.GetText(KeyFFmpegSection), ui.localization.GetText(KeyFFmpegInstalled), ui.window)
		ui.refreshToolStatus()
	case model.OutcomeFailed:
		dialog.ShowInformation(ui.localization.GetText(KeyFFmpegSection),
			resultText(res)+"\n\n"+platform.FFmpegInstallHelp(runtime.GOOS), ui.window)
	}
}

// showError reports a refused Start with its hint.
func (ui *RootUI) showError(err error) {
	text := err.Error()
	if errors.Is(err, errors.ErrBusy) {
		text = ui.localization.GetText(KeyBusy) + ": " + text
	}
	if hint := errors.FlattenHints(err); hint != "" {
		text += "\n" + hint
	}
	ui.log.Infow("Request refused", logger.FieldKind, errors.KindOf(err), logger.FieldError, err)
	ui.statusLabel.SetText(text)
	dialog.ShowInformation(ui.localization.GetText(KeyAppTitle), text, ui.window)
}

func (ui *RootUI) onShowSettings() {
	ShowSettingsDialog(ui.window, ui.settings, ui.localization, func() {
		ui.dirEntry.SetText(ui.settings.GetDownloadDirectory())
		ui.localization.SetLanguage(ui.settings.GetLanguage())
		ui.refreshUITexts()
		ui.createMenu()
		ui.refreshToolStatus()
	})
}

// showToastNotification shows an in-app toast with a reveal action
func (ui *RootUI) showToastNotification(res *model.Result) {
	titleLabel := widget.NewLabel(ui.localization.GetText(KeyDownloadCompleted))
	titleLabel.TextStyle = fyne.TextStyle{Bold: true}

	messageLabel := widget.NewLabel(res.Message)
	messageLabel.Truncation = fyne.TextTruncateEllipsis

	var toast *widget.PopUp
	last := res.Files[len(res.Files)-1]
	revealBtn := widget.NewButton(ui.localization.GetText(KeyReveal), func() {
		ui.revealPath(last)
		toast.Hide()
	})
	revealBtn.Importance = widget.HighImportance

	closeBtn := widget.NewButton(IconClose, func() {
		toast.Hide()
	})
	closeBtn.Importance = widget.LowImportance

	content := container.NewVBox(
		container.NewBorder(nil, nil, titleLabel, closeBtn),
		messageLabel,
		container.NewHBox(revealBtn),
	)
	toast = widget.NewPopUp(content, ui.window.Canvas())

	canvasSize := ui.window.Canvas().Size()
	size := fyne.NewSize(ToastWidth, ToastHeight)
	toast.Resize(size)
	toast.Move(fyne.NewPos(canvasSize.Width-size.Width-ToastMargin, ToastMargin))
	toast.Show()

	time.AfterFunc(ToastAutoHide, func() {
		fyne.Do(toast.Hide)
	})
}
