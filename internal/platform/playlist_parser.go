package platform

import (
	"context"

	"github.com/ytget/tubegrab/internal/errors"
	"github.com/ytget/tubegrab/internal/extractor"
	"github.com/ytget/tubegrab/internal/logger"
)

// PlaylistHandler expands playlist descriptors into one entry per video.
// It implements extractor.Handler.
type PlaylistHandler struct {
	parser *YTDLPParserService
}

// NewPlaylistHandler creates a handler over parser. A nil parser uses the
// library defaults.
func NewPlaylistHandler(parser *YTDLPParserService) *PlaylistHandler {
	if parser == nil {
		parser = NewYTDLPParserService()
	}
	return &PlaylistHandler{parser: parser}
}

// Entries lists the playlist named by the descriptor's playlist_id group,
// falling back to the list= query parameter. The id group names the
// playlist only for descriptors that return playlists; elsewhere it is the
// video.
func (h *PlaylistHandler) Entries(ctx context.Context, input string, d *extractor.Descriptor) ([]extractor.Entry, error) {
	id := ""
	if d != nil {
		groups := d.Groups(input)
		id = groups["playlist_id"]
		if id == "" && d.Returns == extractor.ReturnPlaylist {
			id = groups["id"]
		}
	}

	playlist, err := h.parser.ParsePlaylist(ctx, id, input)
	if err != nil {
		return nil, err
	}
	if playlist.Len() == 0 {
		return nil, errors.Wrapf(errors.ErrTransfer, "playlist %s has no videos", playlist.ID)
	}

	logger.ComponentLogger("platform").Infow("Playlist expanded",
		"playlist_id", playlist.ID,
		logger.FieldItems, playlist.Len(),
		"title", playlist.Title)

	entries := make([]extractor.Entry, 0, playlist.Len())
	for _, v := range playlist.Videos {
		entries = append(entries, extractor.Entry{URL: v.URL, ID: v.ID, Title: v.Title})
	}
	return entries, nil
}
