package platform

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/ytget/ytdlp/types"
	ytplaylist "github.com/ytget/ytdlp/v2"

	"github.com/ytget/ytdown/internal/model"
)

// Timeout constants
const (
	DefaultParseTimeout = 60 * time.Second
)

// URL parameters
const (
	PlaylistParam = "list"
)

// Default values
const (
	DefaultPlaylistName = "Unknown Playlist"
)

// URL templates
const (
	VideoURLTemplate = "https://www.youtube.com/watch?v=%s"
)

// Playlist title constants
const (
	MinPrefixLength = 10
	PlaylistSuffix  = " Playlist"
)

// ErrNotPlaylist is returned when a URL carries no playlist ID
var ErrNotPlaylist = errors.New("not a playlist URL")

// playlistLister is the subset of the playlist client used by the parser
type playlistLister interface {
	GetPlaylistItemsAll(ctx context.Context, playlistID string, limit int) ([]types.PlaylistItem, error)
}

var _ playlistLister = (*ytplaylist.Downloader)(nil)

// PlaylistParser lists playlist entries without downloading them
type PlaylistParser struct {
	timeout time.Duration
	limit   int
	client  playlistLister
}

// NewPlaylistParser creates a parser with the default timeout and no item limit
func NewPlaylistParser() *PlaylistParser {
	return &PlaylistParser{
		timeout: DefaultParseTimeout,
		client:  ytplaylist.New(),
	}
}

// SetTimeout sets the timeout for parsing operations
func (p *PlaylistParser) SetTimeout(timeout time.Duration) {
	p.timeout = timeout
}

// SetLimit caps the number of listed entries, 0 means all
func (p *PlaylistParser) SetLimit(limit int) {
	if limit < 0 {
		limit = 0
	}
	p.limit = limit
}

// ParsePlaylist lists the entries of the playlist referenced by rawURL
func (p *PlaylistParser) ParsePlaylist(ctx context.Context, rawURL string) (*model.Playlist, error) {
	playlistID := ExtractPlaylistID(rawURL)
	if playlistID == "" {
		return nil, errors.Wrapf(ErrNotPlaylist, "%s", rawURL)
	}

	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	playlist := model.NewPlaylist(rawURL)
	playlist.ID = playlistID

	items, err := p.client.GetPlaylistItemsAll(ctx, playlistID, p.limit)
	if err != nil {
		playlist.Error = err.Error()
		playlist.UpdateStatus(model.PlaylistStatusError)
		return playlist, errors.Wrap(err, "failed to get playlist items")
	}

	for _, it := range items {
		if it.VideoID == "" {
			continue
		}
		playlist.AddVideo(&model.PlaylistVideo{
			Index: it.Index,
			ID:    it.VideoID,
			Title: it.Title,
			URL:   fmt.Sprintf(VideoURLTemplate, it.VideoID),
		})
	}

	playlist.Title = extractPlaylistTitle(playlist.Videos)
	playlist.UpdateStatus(model.PlaylistStatusReady)
	return playlist, nil
}

// ExtractPlaylistID returns the value of the list query parameter
func ExtractPlaylistID(rawURL string) string {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return ""
	}
	return u.Query().Get(PlaylistParam)
}

// extractPlaylistTitle generates a title for the playlist based on videos
func extractPlaylistTitle(videos []*model.PlaylistVideo) string {
	if len(videos) == 0 {
		return DefaultPlaylistName
	}
	if len(videos) > 1 {
		commonPrefix := findCommonPrefix(videos[0].Title, videos[1].Title)
		if len(commonPrefix) > MinPrefixLength {
			return strings.TrimSpace(commonPrefix) + PlaylistSuffix
		}
	}
	return videos[0].Title + PlaylistSuffix
}

func findCommonPrefix(s1, s2 string) string {
	minLen := min(len(s1), len(s2))
	for i := 0; i < minLen; i++ {
		if s1[i] != s2[i] {
			return s1[:i]
		}
	}
	return s1[:minLen]
}
