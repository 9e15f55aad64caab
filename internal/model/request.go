package model

import (
	"strings"

	"github.com/ytget/tubegrab/internal/errors"
)

// Mode selects what a job produces.
type Mode string

const (
	ModeVideo    Mode = "Video"
	ModeAudio    Mode = "Audio"
	ModePlaylist Mode = "Playlist"
)

// Modes lists the modes in display order.
var Modes = []Mode{ModeVideo, ModeAudio, ModePlaylist}

// Quality caps the video height of a job.
type Quality string

const (
	QualityBest  Quality = "Best"
	Quality1080p Quality = "1080p"
	Quality720p  Quality = "720p"
	Quality480p  Quality = "480p"
	Quality360p  Quality = "360p"
)

// Qualities lists the qualities in display order.
var Qualities = []Quality{QualityBest, Quality1080p, Quality720p, Quality480p, Quality360p}

// ParseMode parses a mode name case-insensitively.
func ParseMode(s string) (Mode, error) {
	for _, m := range Modes {
		if strings.EqualFold(strings.TrimSpace(s), string(m)) {
			return m, nil
		}
	}
	return "", errors.Wrapf(errors.ErrInvalidInput, "unknown mode %q", s)
}

// ParseQuality parses a quality name case-insensitively.
func ParseQuality(s string) (Quality, error) {
	for _, q := range Qualities {
		if strings.EqualFold(strings.TrimSpace(s), string(q)) {
			return q, nil
		}
	}
	return "", errors.Wrapf(errors.ErrInvalidInput, "unknown quality %q", s)
}

// Height returns the vertical resolution cap, or 0 for Best.
func (q Quality) Height() int {
	switch q {
	case Quality1080p:
		return 1080
	case Quality720p:
		return 720
	case Quality480p:
		return 480
	case Quality360p:
		return 360
	default:
		return 0
	}
}

// Request is the input descriptor of a job.
type Request struct {
	Location        string // URL or search query
	OutputDirectory string
	Mode            Mode
	Quality         Quality // ignored for ModeAudio
	ToolPath        string  // optional FFmpeg location
}

// Validate checks the request without touching the network or filesystem.
func (r Request) Validate() error {
	if strings.TrimSpace(r.Location) == "" {
		return errors.WithHint(errors.Wrap(errors.ErrInvalidInput, "location is empty"),
			"Please enter a URL or search query.")
	}
	if strings.TrimSpace(r.OutputDirectory) == "" {
		return errors.WithHint(errors.Wrap(errors.ErrInvalidInput, "output directory is empty"),
			"Please select an output directory.")
	}
	if _, err := ParseMode(string(r.Mode)); err != nil {
		return err
	}
	if r.Mode != ModeAudio {
		if _, err := ParseQuality(string(r.Quality)); err != nil {
			return err
		}
	}
	return nil
}

// Normalized trims fields and applies mode defaults: Audio always uses Best,
// and an empty quality means Best.
func (r Request) Normalized() Request {
	r.Location = strings.TrimSpace(r.Location)
	r.OutputDirectory = strings.TrimSpace(r.OutputDirectory)
	r.ToolPath = strings.TrimSpace(r.ToolPath)
	if m, err := ParseMode(string(r.Mode)); err == nil {
		r.Mode = m
	}
	if q, err := ParseQuality(string(r.Quality)); err == nil {
		r.Quality = q
	}
	if r.Mode == ModeAudio || r.Quality == "" {
		r.Quality = QualityBest
	}
	return r
}
