package platform

import (
	"context"
	"os/exec"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/lrstanley/go-ytdlp"
)

// Executable names
const (
	FFmpegCommand  = "ffmpeg"
	FFprobeCommand = "ffprobe"
	YTDLPCommand   = "yt-dlp"
)

var (
	// ErrFFmpegNotFound is returned when the media conversion tool is missing
	ErrFFmpegNotFound = errors.New("ffmpeg not found in PATH")
	// ErrYTDLPNotFound is returned when the retrieval tool is missing
	ErrYTDLPNotFound = errors.New("yt-dlp not found in PATH")
)

// Tools locates the external executables the library drives
type Tools struct {
	mu         sync.Mutex
	ffmpegPath string
	ytdlpPath  string

	lookPath      func(string) (string, error)
	installYTDLP  func(context.Context) (string, error)
	installFFmpeg func(context.Context) (string, error)
}

// NewTools creates a locator. ffmpegPath may be a bare name or a path.
func NewTools(ffmpegPath string) *Tools {
	if ffmpegPath == "" {
		ffmpegPath = FFmpegCommand
	}
	return &Tools{
		ffmpegPath:    ffmpegPath,
		lookPath:      exec.LookPath,
		installYTDLP:  installYTDLP,
		installFFmpeg: installFFmpeg,
	}
}

// RequireFFmpeg returns the resolved ffmpeg path or a descriptive error
func (t *Tools) RequireFFmpeg() (string, error) {
	t.mu.Lock()
	name := t.ffmpegPath
	t.mu.Unlock()

	path, err := t.lookPath(name)
	if err != nil {
		return "", errors.WithHint(
			errors.Wrapf(ErrFFmpegNotFound, "looked for %q", name),
			"install ffmpeg (https://ffmpeg.org/download.html) or rerun with --install-deps",
		)
	}
	return path, nil
}

// RequireYTDLP returns the resolved yt-dlp path or a descriptive error
func (t *Tools) RequireYTDLP() (string, error) {
	t.mu.Lock()
	installed := t.ytdlpPath
	t.mu.Unlock()
	if installed != "" {
		return installed, nil
	}

	path, err := t.lookPath(YTDLPCommand)
	if err != nil {
		return "", errors.WithHint(
			errors.Wrap(ErrYTDLPNotFound, "media retrieval needs yt-dlp"),
			"install yt-dlp (https://github.com/yt-dlp/yt-dlp#installation) or rerun with --install-deps",
		)
	}
	return path, nil
}

// FFprobe returns the ffprobe path when it is available
func (t *Tools) FFprobe() (string, bool) {
	path, err := t.lookPath(FFprobeCommand)
	if err != nil {
		return "", false
	}
	return path, true
}

// Install downloads yt-dlp and ffmpeg into the library cache when they cannot
// be found. The installed ffmpeg replaces the configured one.
func (t *Tools) Install(ctx context.Context) error {
	if _, err := t.RequireYTDLP(); err != nil {
		path, ierr := t.installYTDLP(ctx)
		if ierr != nil {
			return errors.Wrap(ierr, "install yt-dlp")
		}
		t.mu.Lock()
		t.ytdlpPath = path
		t.mu.Unlock()
	}

	if _, err := t.RequireFFmpeg(); err != nil {
		path, ierr := t.installFFmpeg(ctx)
		if ierr != nil {
			return errors.Wrap(ierr, "install ffmpeg")
		}
		t.mu.Lock()
		t.ffmpegPath = path
		t.mu.Unlock()
	}
	return nil
}

func installYTDLP(ctx context.Context) (string, error) {
	resolved, err := ytdlp.Install(ctx, nil)
	if err != nil {
		return "", err
	}
	return resolved.Executable, nil
}

func installFFmpeg(ctx context.Context) (string, error) {
	resolved, err := ytdlp.InstallFFmpeg(ctx, nil)
	if err != nil {
		return "", err
	}
	return resolved.Executable, nil
}
