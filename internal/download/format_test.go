package download

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ytget/tubegrab/internal/model"
)

func TestFormatSelector(t *testing.T) {
	assert.Equal(t, AudioFormatSelector, FormatSelector(model.ModeAudio, model.Quality720p))
	assert.Equal(t, bestVideoSelector, FormatSelector(model.ModeVideo, model.QualityBest))
	assert.Equal(t, bestVideoSelector, FormatSelector(model.ModePlaylist, model.QualityBest))

	got := FormatSelector(model.ModeVideo, model.Quality720p)
	assert.Equal(t,
		"bestvideo[height<=720][ext=mp4]+bestaudio[ext=m4a]"+
			"/bestvideo[height<=720][ext=webm]+bestaudio[ext=webm]"+
			"/bestvideo[height<=720][vcodec!=none][acodec!=none]"+
			"/bestvideo[height<=720]+bestaudio"+
			"/best[height<=720]",
		got)

	assert.Contains(t, FormatSelector(model.ModePlaylist, model.Quality360p), "height<=360")
}
