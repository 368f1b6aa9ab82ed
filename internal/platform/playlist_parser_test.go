package platform

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ytget/ytdlp/types"
	ytplaylist "github.com/ytget/ytdlp/v2"

	"github.com/ytget/ytdown/internal/model"
)

type fakeLister struct {
	items       []types.PlaylistItem
	err         error
	gotID       string
	gotLimit    int
	hadDeadline bool
}

func (f *fakeLister) GetPlaylistItemsAll(ctx context.Context, playlistID string, limit int) ([]types.PlaylistItem, error) {
	f.gotID = playlistID
	f.gotLimit = limit
	_, f.hadDeadline = ctx.Deadline()
	return f.items, f.err
}

func TestNewPlaylistParser(t *testing.T) {
	parser := NewPlaylistParser()
	if parser == nil {
		t.Fatal("parser should not be nil")
	}
	if parser.timeout != DefaultParseTimeout {
		t.Errorf("expected timeout %v, got %v", DefaultParseTimeout, parser.timeout)
	}
	if _, ok := parser.client.(*ytplaylist.Downloader); !ok {
		t.Errorf("expected the ytdlp playlist client, got %T", parser.client)
	}
	if parser.limit != 0 {
		t.Errorf("expected no limit, got %d", parser.limit)
	}
}

func TestExtractPlaylistID(t *testing.T) {
	tests := []struct {
		name     string
		url      string
		expected string
	}{
		{
			name:     "watch URL with list",
			url:      "https://www.youtube.com/watch?v=VIDEO_ID&list=PLAYLIST_ID",
			expected: "PLAYLIST_ID",
		},
		{
			name:     "playlist URL",
			url:      "https://www.youtube.com/playlist?list=PL123",
			expected: "PL123",
		},
		{
			name:     "list followed by other params",
			url:      "https://www.youtube.com/playlist?list=PL123&index=4",
			expected: "PL123",
		},
		{
			name:     "single video",
			url:      "https://www.youtube.com/watch?v=VIDEO_ID",
			expected: "",
		},
		{
			name:     "garbage",
			url:      "://bad",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractPlaylistID(tt.url); got != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestParsePlaylist(t *testing.T) {
	lister := &fakeLister{items: []types.PlaylistItem{
		{VideoID: "aaa", Title: "Go Concurrency Patterns part 1"},
		{VideoID: "", Title: "deleted video"},
		{VideoID: "bbb", Title: "Go Concurrency Patterns part 2"},
	}}
	parser := NewPlaylistParser()
	parser.client = lister
	parser.SetLimit(25)

	playlist, err := parser.ParsePlaylist(context.Background(), "https://www.youtube.com/playlist?list=PLgo")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if lister.gotID != "PLgo" || lister.gotLimit != 25 {
		t.Errorf("unexpected lister call id=%q limit=%d", lister.gotID, lister.gotLimit)
	}
	if !lister.hadDeadline {
		t.Error("expected the lister context to carry a deadline")
	}
	if !playlist.IsReadyForDownload() {
		t.Errorf("expected ready playlist, got status %s", playlist.Status)
	}
	if playlist.TotalVideos != 2 {
		t.Fatalf("expected 2 videos, got %d", playlist.TotalVideos)
	}
	if playlist.Videos[1].Index != 2 {
		t.Errorf("expected second entry index 2, got %d", playlist.Videos[1].Index)
	}
	if playlist.Videos[0].URL != "https://www.youtube.com/watch?v=aaa" {
		t.Errorf("unexpected video URL %s", playlist.Videos[0].URL)
	}
	if playlist.Title != "Go Concurrency Patterns part"+PlaylistSuffix {
		t.Errorf("unexpected title %q", playlist.Title)
	}
}

func TestParsePlaylist_NotPlaylist(t *testing.T) {
	parser := NewPlaylistParser()
	parser.client = &fakeLister{}

	_, err := parser.ParsePlaylist(context.Background(), "https://www.youtube.com/watch?v=abc")
	if !errors.Is(err, ErrNotPlaylist) {
		t.Errorf("expected ErrNotPlaylist, got %v", err)
	}
}

func TestParsePlaylist_ClientError(t *testing.T) {
	parser := NewPlaylistParser()
	parser.client = &fakeLister{err: errors.New("quota")}
	parser.SetTimeout(time.Second)

	playlist, err := parser.ParsePlaylist(context.Background(), "https://www.youtube.com/playlist?list=PLx")
	if err == nil {
		t.Fatal("expected error")
	}
	if playlist == nil || playlist.Status != model.PlaylistStatusError {
		t.Errorf("expected playlist in error state, got %+v", playlist)
	}
}

func TestExtractPlaylistTitle(t *testing.T) {
	tests := []struct {
		name     string
		videos   []*model.PlaylistVideo
		expected string
	}{
		{name: "empty", videos: nil, expected: DefaultPlaylistName},
		{
			name:     "single",
			videos:   []*model.PlaylistVideo{{Title: "Intro"}},
			expected: "Intro" + PlaylistSuffix,
		},
		{
			name:     "short common prefix",
			videos:   []*model.PlaylistVideo{{Title: "Intro"}, {Title: "Outro"}},
			expected: "Intro" + PlaylistSuffix,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := extractPlaylistTitle(tt.videos); got != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, got)
			}
		})
	}
}
