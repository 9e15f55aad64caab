package download

import (
	"fmt"

	"github.com/ytget/tubegrab/internal/model"
)

// yt-dlp audio extraction settings
const (
	AudioFormatSelector = "bestaudio/best"
	AudioCodec          = "mp3"
	AudioQuality        = "192K"
)

// OutputTemplate names files after the item title.
const OutputTemplate = "%(title)s.%(ext)s"

const bestVideoSelector = "bestvideo[ext=mp4]+bestaudio[ext=m4a]" +
	"/bestvideo[ext=webm]+bestaudio[ext=webm]" +
	"/best[vcodec!=none][acodec!=none]" +
	"/bestvideo+bestaudio/best"

// FormatSelector returns the yt-dlp -f expression for a mode and quality.
// Playlist mode downloads video.
func FormatSelector(mode model.Mode, quality model.Quality) string {
	if mode == model.ModeAudio {
		return AudioFormatSelector
	}

	h := quality.Height()
	if h == 0 {
		return bestVideoSelector
	}

	return fmt.Sprintf("bestvideo[height<=%[1]d][ext=mp4]+bestaudio[ext=m4a]"+
		"/bestvideo[height<=%[1]d][ext=webm]+bestaudio[ext=webm]"+
		"/bestvideo[height<=%[1]d][vcodec!=none][acodec!=none]"+
		"/bestvideo[height<=%[1]d]+bestaudio"+
		"/best[height<=%[1]d]", h)
}
