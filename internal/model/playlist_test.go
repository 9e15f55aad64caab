package model

import "testing"

func TestPlaylist_Tracking(t *testing.T) {
	p := NewPlaylist("https://www.youtube.com/playlist?list=PLabcdefghijk")
	for _, id := range []string{"a", "b", "c"} {
		p.AddVideo(&PlaylistVideo{ID: id, URL: "https://www.youtube.com/watch?v=" + id})
	}

	if p.Len() != 3 {
		t.Fatalf("Len() = %d, expected 3", p.Len())
	}
	if p.Videos[2].Index != 3 || p.Videos[0].Status != VideoStatusPending {
		t.Fatalf("unexpected entry defaults: %+v", p.Videos[2])
	}

	p.UpdateVideoStatus(1, VideoStatusCompleted, "")
	p.UpdateVideoOutputPath(1, "/out/a.mp4")
	p.UpdateVideoStatus(2, VideoStatusError, "HTTP 403")
	p.UpdateVideoStatus(9, VideoStatusCompleted, "") // out of range is ignored
	p.SkipPending()

	if got := p.Count(VideoStatusCompleted); got != 1 {
		t.Errorf("completed = %d, expected 1", got)
	}
	if got := p.Count(VideoStatusSkipped); got != 1 {
		t.Errorf("skipped = %d, expected 1", got)
	}
	if !p.HasErrors() {
		t.Error("HasErrors() = false, expected true")
	}
	if paths := p.OutputPaths(); len(paths) != 1 || paths[0] != "/out/a.mp4" {
		t.Errorf("OutputPaths() = %v", paths)
	}
}
