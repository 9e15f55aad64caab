package ui

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	"github.com/ytget/tubegrab/internal/config"
)

// SettingsDialog edits the stored user choices that are not on the main form
type SettingsDialog struct {
	settings     *config.Settings
	localization *Localization
	window       fyne.Window
	dialog       *dialog.ConfirmDialog
	onSaved      func()

	downloadDirEntry *widget.Entry
	ffmpegEntry      *widget.Entry
	autoRevealCheck  *widget.Check
	languageSelect   *widget.Select
	languageCodes    map[string]string // display name -> code
}

// ShowSettingsDialog opens the settings dialog. onSaved runs after the
// values were stored.
func ShowSettingsDialog(window fyne.Window, settings *config.Settings, loc *Localization, onSaved func()) {
	sd := NewSettingsDialog(settings, loc, window)
	sd.onSaved = onSaved
	sd.Show()
}

// NewSettingsDialog creates a new settings dialog
func NewSettingsDialog(settings *config.Settings, loc *Localization, window fyne.Window) *SettingsDialog {
	sd := &SettingsDialog{
		settings:     settings,
		localization: loc,
		window:       window,
	}

	sd.createUI()
	return sd
}

// Show displays the settings dialog
func (sd *SettingsDialog) Show() {
	sd.loadCurrentSettings()
	sd.dialog.Show()
}

func (sd *SettingsDialog) createUI() {
	sd.downloadDirEntry = widget.NewEntry()
	browseDirBtn := widget.NewButton(sd.localization.GetText(KeyBrowse), sd.onBrowseDirectory)
	downloadDirRow := container.NewBorder(nil, nil, nil, browseDirBtn, sd.downloadDirEntry)

	sd.ffmpegEntry = widget.NewEntry()
	sd.ffmpegEntry.SetPlaceHolder(DashPlaceholder)
	browseToolBtn := widget.NewButton(sd.localization.GetText(KeyBrowse), sd.onBrowseTool)
	ffmpegRow := container.NewBorder(nil, nil, nil, browseToolBtn, sd.ffmpegEntry)

	sd.autoRevealCheck = widget.NewCheck(sd.localization.GetText(KeyAutoReveal), nil)

	sd.languageCodes = make(map[string]string)
	var languageOptions []string
	for code, name := range sd.settings.GetLanguageOptions() {
		sd.languageCodes[name] = code
		languageOptions = append(languageOptions, name)
	}
	sd.languageSelect = widget.NewSelect(languageOptions, nil)

	form := container.NewVBox(
		widget.NewLabel(sd.localization.GetText(KeyOutputFolder)+":"),
		downloadDirRow,

		widget.NewLabel(sd.localization.GetText(KeyFFmpegPath)+":"),
		ffmpegRow,

		sd.autoRevealCheck,

		widget.NewSeparator(),
		widget.NewLabel(sd.localization.GetText(KeyLanguage)+":"),
		sd.languageSelect,
	)

	sd.dialog = dialog.NewCustomConfirm(
		sd.localization.GetText(KeySettings),
		sd.localization.GetText(KeySave),
		sd.localization.GetText(KeyCancel),
		form,
		sd.onSave,
		sd.window,
	)

	sd.dialog.Resize(fyne.NewSize(SettingsDialogW, SettingsDialogH))
}

func (sd *SettingsDialog) loadCurrentSettings() {
	sd.downloadDirEntry.SetText(sd.settings.GetDownloadDirectory())
	sd.ffmpegEntry.SetText(sd.settings.GetFFmpegPath())
	sd.autoRevealCheck.SetChecked(sd.settings.GetAutoRevealOnComplete())
	sd.languageSelect.SetSelected(sd.settings.GetLanguageOptions()[sd.settings.GetLanguage()])
}

func (sd *SettingsDialog) onBrowseDirectory() {
	dialog.ShowFolderOpen(func(uri fyne.ListableURI, err error) {
		if err != nil || uri == nil {
			return
		}
		sd.downloadDirEntry.SetText(uri.Path())
	}, sd.window)
}

func (sd *SettingsDialog) onBrowseTool() {
	dialog.ShowFileOpen(func(rc fyne.URIReadCloser, err error) {
		if err != nil || rc == nil {
			return
		}
		defer rc.Close()
		sd.ffmpegEntry.SetText(rc.URI().Path())
	}, sd.window)
}

// save stores the dialog values. The output directory must not be empty.
func (sd *SettingsDialog) save() error {
	if err := sd.settings.SetDownloadDirectory(sd.downloadDirEntry.Text); err != nil {
		return err
	}
	sd.settings.SetFFmpegPath(sd.ffmpegEntry.Text)
	sd.settings.SetAutoRevealOnComplete(sd.autoRevealCheck.Checked)
	if code, ok := sd.languageCodes[sd.languageSelect.Selected]; ok {
		sd.settings.SetLanguage(code)
	}
	return nil
}

func (sd *SettingsDialog) onSave(confirmed bool) {
	if !confirmed {
		return
	}

	if err := sd.save(); err != nil {
		dialog.ShowError(err, sd.window)
		return
	}

	if sd.onSaved != nil {
		sd.onSaved()
	}
	dialog.ShowInformation(sd.localization.GetText(KeySettings), sd.localization.GetText(KeySettingsSaved), sd.window)
}
