package ui

// Localization manages UI text translations
type Localization struct {
	currentLanguage string
	texts           map[string]map[string]string
}

// Text keys for localization
const (
	KeyAppTitle          = "app_title"
	KeyDownload          = "download"
	KeyCancel            = "cancel"
	KeySettings          = "settings"
	KeyFile              = "file"
	KeyLanguage          = "language"
	KeyOutputFolder      = "output_folder"
	KeyBrowse            = "browse"
	KeyMode              = "mode"
	KeyQuality           = "quality"
	KeyEnterURL          = "enter_url"
	KeyReady             = "ready"
	KeyReveal            = "reveal"
	KeySave              = "save"
	KeyAutoReveal        = "auto_reveal"
	KeyFFmpegPath        = "ffmpeg_path"
	KeyFFmpegSection     = "ffmpeg_section"
	KeyFFmpegFound       = "ffmpeg_found"
	KeyFFmpegMissing     = "ffmpeg_missing"
	KeyFFmpegOld         = "ffmpeg_old"
	KeyFFmpegInstall     = "ffmpeg_install"
	KeyFFmpegInstalled   = "ffmpeg_installed"
	KeySettingsSaved     = "settings_saved"
	KeyDownloadCompleted = "download_completed"
	KeyErrorOpeningFile  = "error_opening_file"
	KeyBusy              = "busy"
)

// NewLocalization creates a new localization manager
func NewLocalization() *Localization {
	l := &Localization{
		currentLanguage: "en",
		texts:           make(map[string]map[string]string),
	}

	l.initializeTexts()
	return l
}

// SetLanguage sets the current language. Unknown codes are ignored.
func (l *Localization) SetLanguage(lang string) {
	if lang == "system" {
		// Use system locale - simplified to English for now
		lang = "en"
	}

	if _, exists := l.texts[lang]; exists {
		l.currentLanguage = lang
	}
}

// GetText returns localized text for the given key
func (l *Localization) GetText(key string) string {
	if texts, exists := l.texts[l.currentLanguage]; exists {
		if text, found := texts[key]; found {
			return text
		}
	}

	// Fallback to English
	if texts, exists := l.texts["en"]; exists {
		if text, found := texts[key]; found {
			return text
		}
	}

	return key
}

// GetCurrentLanguage returns the current language code
func (l *Localization) GetCurrentLanguage() string {
	return l.currentLanguage
}

// GetAvailableLanguages returns map of available languages with their display names
func (l *Localization) GetAvailableLanguages() map[string]string {
	return map[string]string{
		"en": "English",
		"ru": "Русский",
		"pt": "Português",
	}
}

func (l *Localization) initializeTexts() {
	l.texts["en"] = map[string]string{
		KeyAppTitle:          "Tubegrab",
		KeyDownload:          "Download",
		KeyCancel:            "Cancel",
		KeySettings:          "Settings",
		KeyFile:              "File",
		KeyLanguage:          "Language",
		KeyOutputFolder:      "Output folder",
		KeyBrowse:            "Browse",
		KeyMode:              "Mode",
		KeyQuality:           "Quality",
		KeyEnterURL:          "Video or playlist URL, or ytsearch:query",
		KeyReady:             "Ready.",
		KeyReveal:            "Show in folder",
		KeySave:              "Save",
		KeyAutoReveal:        "Open the output folder when a download completes",
		KeyFFmpegPath:        "FFmpeg location",
		KeyFFmpegSection:     "FFmpeg Utility",
		KeyFFmpegFound:       "FFmpeg %s found at %s",
		KeyFFmpegMissing:     "FFmpeg not found. Audio extraction needs it.",
		KeyFFmpegOld:         "FFmpeg %s at %s is older than the supported minimum.",
		KeyFFmpegInstall:     "Download FFmpeg",
		KeyFFmpegInstalled:   "FFmpeg is ready",
		KeySettingsSaved:     "Settings saved successfully!",
		KeyDownloadCompleted: "Download completed",
		KeyErrorOpeningFile:  "Error opening file",
		KeyBusy:              "Another operation is in progress",
	}

	l.texts["ru"] = map[string]string{
		KeyAppTitle:          "Tubegrab",
		KeyDownload:          "Скачать",
		KeyCancel:            "Отмена",
		KeySettings:          "Настройки",
		KeyFile:              "Файл",
		KeyLanguage:          "Язык",
		KeyOutputFolder:      "Папка загрузки",
		KeyBrowse:            "Обзор",
		KeyMode:              "Режим",
		KeyQuality:           "Качество",
		KeyEnterURL:          "URL видео или плейлиста, либо ytsearch:запрос",
		KeyReady:             "Готово.",
		KeyReveal:            "Показать в папке",
		KeySave:              "Сохранить",
		KeyAutoReveal:        "Открывать папку после завершения загрузки",
		KeyFFmpegPath:        "Путь к FFmpeg",
		KeyFFmpegSection:     "Утилита FFmpeg",
		KeyFFmpegFound:       "FFmpeg %s найден: %s",
		KeyFFmpegMissing:     "FFmpeg не найден. Он нужен для извлечения аудио.",
		KeyFFmpegOld:         "FFmpeg %s (%s) старее поддерживаемой версии.",
		KeyFFmpegInstall:     "Скачать FFmpeg",
		KeyFFmpegInstalled:   "FFmpeg готов",
		KeySettingsSaved:     "Настройки успешно сохранены!",
		KeyDownloadCompleted: "Загрузка завершена",
		KeyErrorOpeningFile:  "Ошибка открытия файла",
		KeyBusy:              "Уже выполняется другая операция",
	}

	l.texts["pt"] = map[string]string{
		KeyAppTitle:          "Tubegrab",
		KeyDownload:          "Baixar",
		KeyCancel:            "Cancelar",
		KeySettings:          "Configurações",
		KeyFile:              "Arquivo",
		KeyLanguage:          "Idioma",
		KeyOutputFolder:      "Pasta de destino",
		KeyBrowse:            "Navegar",
		KeyMode:              "Modo",
		KeyQuality:           "Qualidade",
		KeyEnterURL:          "URL de vídeo ou playlist, ou ytsearch:consulta",
		KeyReady:             "Pronto.",
		KeyReveal:            "Mostrar na pasta",
		KeySave:              "Salvar",
		KeyAutoReveal:        "Abrir a pasta quando o download terminar",
		KeyFFmpegPath:        "Local do FFmpeg",
		KeyFFmpegSection:     "Utilitário FFmpeg",
		KeyFFmpegFound:       "FFmpeg %s encontrado em %s",
		KeyFFmpegMissing:     "FFmpeg não encontrado. A extração de áudio precisa dele.",
		KeyFFmpegOld:         "FFmpeg %s em %s é mais antigo que o mínimo suportado.",
		KeyFFmpegInstall:     "Baixar FFmpeg",
		KeyFFmpegInstalled:   "FFmpeg está pronto",
		KeySettingsSaved:     "Configurações salvas com sucesso!",
		KeyDownloadCompleted: "Download concluído",
		KeyErrorOpeningFile:  "Erro ao abrir arquivo",
		KeyBusy:              "Outra operação está em andamento",
	}
}
