package model

import (
	"time"
)

// VideoStatus represents the status of a single item in a collection job
type VideoStatus string

const (
	VideoStatusPending     VideoStatus = "pending"
	VideoStatusDownloading VideoStatus = "downloading"
	VideoStatusCompleted   VideoStatus = "completed"
	VideoStatusError       VideoStatus = "error"
	// Skipped is used for items never started because the job was cancelled
	VideoStatusSkipped VideoStatus = "skipped"
)

// PlaylistVideo represents a single entry of an expanded collection
type PlaylistVideo struct {
	ID         string      `json:"id"`
	Index      int         `json:"index"` // 1-based position in the collection
	Title      string      `json:"title"`
	URL        string      `json:"url"`
	Status     VideoStatus `json:"status"`
	Error      string      `json:"error,omitempty"`
	OutputPath string      `json:"output_path,omitempty"`
	UpdatedAt  time.Time   `json:"updated_at"`
}

// Playlist represents the expanded entries of a job
type Playlist struct {
	ID        string           `json:"id"`
	Title     string           `json:"title"`
	URL       string           `json:"url"`
	Videos    []*PlaylistVideo `json:"videos"`
	CreatedAt time.Time        `json:"created_at"`
}

// NewPlaylist creates a new playlist instance
func NewPlaylist(url string) *Playlist {
	return &Playlist{
		URL:       url,
		Videos:    make([]*PlaylistVideo, 0),
		CreatedAt: time.Now(),
	}
}

// AddVideo appends an entry, assigning its index and pending status.
func (p *Playlist) AddVideo(video *PlaylistVideo) {
	video.Index = len(p.Videos) + 1
	if video.Status == "" {
		video.Status = VideoStatusPending
	}
	video.UpdatedAt = time.Now()
	p.Videos = append(p.Videos, video)
}

// Len returns the number of entries
func (p *Playlist) Len() int {
	return len(p.Videos)
}

// UpdateVideoStatus updates the status of the entry at a 1-based index
func (p *Playlist) UpdateVideoStatus(index int, status VideoStatus, errMsg string) {
	if index < 1 || index > len(p.Videos) {
		return
	}
	video := p.Videos[index-1]
	video.Status = status
	video.Error = errMsg
	video.UpdatedAt = time.Now()
}

// UpdateVideoOutputPath records the output file of the entry at a 1-based index
func (p *Playlist) UpdateVideoOutputPath(index int, outputPath string) {
	if index < 1 || index > len(p.Videos) {
		return
	}
	p.Videos[index-1].OutputPath = outputPath
}

// SkipPending marks every pending entry as skipped
func (p *Playlist) SkipPending() {
	for _, video := range p.Videos {
		if video.Status == VideoStatusPending {
			video.Status = VideoStatusSkipped
			video.UpdatedAt = time.Now()
		}
	}
}

// Count returns the number of entries with the given status
func (p *Playlist) Count(status VideoStatus) int {
	n := 0
	for _, video := range p.Videos {
		if video.Status == status {
			n++
		}
	}
	return n
}

// OutputPaths returns the output files of completed entries in order
func (p *Playlist) OutputPaths() []string {
	var paths []string
	for _, video := range p.Videos {
		if video.Status == VideoStatusCompleted && video.OutputPath != "" {
			paths = append(paths, video.OutputPath)
		}
	}
	return paths
}

// HasErrors checks if any entry has errors
func (p *Playlist) HasErrors() bool {
	return p.Count(VideoStatusError) > 0
}
