package download

import (
	"context"

	"github.com/lrstanley/go-ytdlp"

	"github.com/ytget/ytdown/internal/model"
)

// Runner invokes the retrieval library. *ytdlp.Command satisfies it.
type Runner interface {
	Run(ctx context.Context, args ...string) (*ytdlp.Result, error)
}

// ToolChecker resolves the external media tool
type ToolChecker interface {
	RequireFFmpeg() (string, error)
}

// PlaylistLister previews the entries of a playlist
type PlaylistLister interface {
	ParsePlaylist(ctx context.Context, url string) (*model.Playlist, error)
}

// Prober inspects a finished download
type Prober interface {
	Probe(ctx context.Context, path string) (*model.MediaInfo, error)
}

// Downloader defines the interface for the download service.
type Downloader interface {
	Run(ctx context.Context, mode model.Mode, req Request) (*model.DownloadTask, error)
	Plan(mode model.Mode, req Request) (*Options, error)
	Video(ctx context.Context, req Request) (*model.DownloadTask, error)
	Audio(ctx context.Context, req Request) (*model.DownloadTask, error)
	Playlist(ctx context.Context, req Request) (*model.DownloadTask, error)
	Subtitles(ctx context.Context, req Request) (*model.DownloadTask, error)
}
