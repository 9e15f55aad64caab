package config

import (
	"testing"

	"fyne.io/fyne/v2/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ytget/tubegrab/internal/errors"
	"github.com/ytget/tubegrab/internal/model"
)

func TestNewSettings(t *testing.T) {
	app := test.NewApp()
	settings := NewSettings(app)

	if settings.app != app {
		t.Error("Settings app reference should match provided app")
	}
}

func TestDownloadDirectory(t *testing.T) {
	app := test.NewApp()
	settings := NewSettings(app)

	dir := settings.GetDownloadDirectory()
	assert.NotEmpty(t, dir, "default is persisted on first read")
	assert.Equal(t, dir, app.Preferences().String(KeyDownloadDir))

	require.NoError(t, settings.SetDownloadDirectory("/custom/downloads"))
	assert.Equal(t, "/custom/downloads", settings.GetDownloadDirectory())

	err := settings.SetDownloadDirectory("")
	assert.True(t, errors.Is(err, errors.ErrInvalidInput))
	assert.Equal(t, "/custom/downloads", settings.GetDownloadDirectory())
}

func TestMode(t *testing.T) {
	app := test.NewApp()
	settings := NewSettings(app)

	assert.Equal(t, DefaultMode, settings.GetMode())

	require.NoError(t, settings.SetMode(model.ModeAudio))
	assert.Equal(t, model.ModeAudio, settings.GetMode())

	assert.Error(t, settings.SetMode("Karaoke"))
	assert.Equal(t, model.ModeAudio, settings.GetMode())

	app.Preferences().SetString(KeyMode, "garbage")
	assert.Equal(t, DefaultMode, settings.GetMode(), "unknown stored values fall back to default")
}

func TestQuality(t *testing.T) {
	app := test.NewApp()
	settings := NewSettings(app)

	assert.Equal(t, DefaultQuality, settings.GetQuality())

	require.NoError(t, settings.SetQuality(model.Quality720p))
	assert.Equal(t, model.Quality720p, settings.GetQuality())

	assert.Error(t, settings.SetQuality("4k"))
	assert.Equal(t, model.Quality720p, settings.GetQuality())
}

func TestFFmpegPath(t *testing.T) {
	app := test.NewApp()
	settings := NewSettings(app)

	assert.Empty(t, settings.GetFFmpegPath())

	settings.SetFFmpegPath("/opt/ffmpeg/bin")
	assert.Equal(t, "/opt/ffmpeg/bin", settings.GetFFmpegPath())

	settings.SetFFmpegPath("")
	assert.Empty(t, settings.GetFFmpegPath())
}

func TestRequest(t *testing.T) {
	app := test.NewApp()
	settings := NewSettings(app)

	require.NoError(t, settings.SetDownloadDirectory("/tmp/out"))
	require.NoError(t, settings.SetMode(model.ModePlaylist))
	require.NoError(t, settings.SetQuality(model.Quality480p))
	settings.SetFFmpegPath("/usr/bin/ffmpeg")

	req := settings.Request("https://youtu.be/BaW_jenozKc")
	assert.Equal(t, model.Request{
		Location:        "https://youtu.be/BaW_jenozKc",
		OutputDirectory: "/tmp/out",
		Mode:            model.ModePlaylist,
		Quality:         model.Quality480p,
		ToolPath:        "/usr/bin/ffmpeg",
	}, req)
	assert.NoError(t, req.Validate())
}

func TestLanguageAndAutoReveal(t *testing.T) {
	app := test.NewApp()
	settings := NewSettings(app)

	assert.Equal(t, DefaultLanguage, settings.GetLanguage())
	settings.SetLanguage("pt")
	assert.Equal(t, "pt", settings.GetLanguage())
	assert.Contains(t, settings.GetLanguageOptions(), "pt")

	assert.Equal(t, DefaultAutoRevealComplete, settings.GetAutoRevealOnComplete())
	settings.SetAutoRevealOnComplete(true)
	assert.True(t, settings.GetAutoRevealOnComplete())
}
