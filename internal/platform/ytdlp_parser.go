package platform

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ytget/ytdlp/v2"

	"github.com/ytget/tubegrab/internal/errors"
	"github.com/ytget/tubegrab/internal/model"
)

// Timeout constants
const (
	DefaultParseTimeout = 60 * time.Second
)

// URL parameters and separators
const (
	PlaylistParam  = "list="
	ParamSeparator = "&"
)

// Default values
const (
	DefaultPlaylistName = "Unknown Playlist"
)

// URL templates
const (
	YouTubeVideoURLTemplate = "https://www.youtube.com/watch?v=%s"
)

// Playlist title constants
const (
	MinPrefixLength = 10
	PlaylistSuffix  = " Playlist"
)

// listedVideo is the subset of a library playlist item we keep.
type listedVideo struct {
	ID    string
	Title string
}

type playlistLister func(ctx context.Context, playlistID string) ([]listedVideo, error)

func listWithLibrary(ctx context.Context, playlistID string) ([]listedVideo, error) {
	items, err := ytdlp.New().GetPlaylistItemsAll(ctx, playlistID, 0)
	if err != nil {
		return nil, err
	}
	out := make([]listedVideo, 0, len(items))
	for _, it := range items {
		out = append(out, listedVideo{ID: it.VideoID, Title: it.Title})
	}
	return out, nil
}

// YTDLPParserService expands YouTube playlists using the ytdlp library
type YTDLPParserService struct {
	timeout time.Duration
	list    playlistLister
}

// NewYTDLPParserService creates a new parser service
func NewYTDLPParserService() *YTDLPParserService {
	return &YTDLPParserService{
		timeout: DefaultParseTimeout,
		list:    listWithLibrary,
	}
}

// SetTimeout sets the timeout for parsing operations
func (y *YTDLPParserService) SetTimeout(timeout time.Duration) {
	y.timeout = timeout
}

// ParsePlaylist lists the videos of playlistID. url is kept on the result
// for display only.
func (y *YTDLPParserService) ParsePlaylist(ctx context.Context, playlistID, url string) (*model.Playlist, error) {
	if playlistID == "" {
		playlistID = y.extractPlaylistID(url)
	}
	if playlistID == "" {
		return nil, errors.Newf("could not extract playlist ID from %q", url)
	}

	if y.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, y.timeout)
		defer cancel()
	}

	items, err := y.list(ctx, playlistID)
	if err != nil {
		return nil, errors.Wrapf(errors.Mark(err, errors.ErrTransfer), "list playlist %s", playlistID)
	}

	playlist := model.NewPlaylist(url)
	playlist.ID = playlistID
	for _, it := range items {
		if it.ID == "" {
			continue
		}
		playlist.AddVideo(&model.PlaylistVideo{
			ID:    it.ID,
			Title: it.Title,
			URL:   fmt.Sprintf(YouTubeVideoURLTemplate, it.ID),
		})
	}
	playlist.Title = y.extractPlaylistTitle(playlist.Videos)

	return playlist, nil
}

// extractPlaylistID extracts the playlist ID from the list= parameter
func (y *YTDLPParserService) extractPlaylistID(url string) string {
	if strings.Contains(url, PlaylistParam) {
		parts := strings.Split(url, PlaylistParam)
		if len(parts) > 1 {
			playlistPart := parts[1]
			if strings.Contains(playlistPart, ParamSeparator) {
				playlistPart = strings.Split(playlistPart, ParamSeparator)[0]
			}
			return strings.TrimSuffix(strings.Split(playlistPart, "#")[0], "/")
		}
	}
	return ""
}

// extractPlaylistTitle generates a title for the playlist based on videos
func (y *YTDLPParserService) extractPlaylistTitle(videos []*model.PlaylistVideo) string {
	if len(videos) == 0 {
		return DefaultPlaylistName
	}
	if len(videos) > 1 {
		commonPrefix := y.findCommonPrefix(videos[0].Title, videos[1].Title)
		if len(commonPrefix) > MinPrefixLength {
			return strings.TrimSpace(commonPrefix) + PlaylistSuffix
		}
	}
	return videos[0].Title + PlaylistSuffix
}

// findCommonPrefix finds the common prefix between two strings
func (y *YTDLPParserService) findCommonPrefix(s1, s2 string) string {
	minLen := min(len(s1), len(s2))
	for i := 0; i < minLen; i++ {
		if s1[i] != s2[i] {
			return s1[:i]
		}
	}
	return s1[:minLen]
}
