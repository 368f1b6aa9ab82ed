package platform

import (
	"context"
	"errors"
	"os/exec"
	"path/filepath"
	"testing"

	crdb "github.com/cockroachdb/errors"
)

// fakePath resolves only the names in found
func fakePath(found map[string]string) func(string) (string, error) {
	return func(name string) (string, error) {
		if p, ok := found[name]; ok {
			return p, nil
		}
		return "", exec.ErrNotFound
	}
}

func TestRequireFFmpeg(t *testing.T) {
	tools := NewTools("")
	tools.lookPath = fakePath(map[string]string{"ffmpeg": "/usr/bin/ffmpeg"})

	path, err := tools.RequireFFmpeg()
	if err != nil {
		t.Fatalf("Expected ffmpeg to be found, got %v", err)
	}
	if path != "/usr/bin/ffmpeg" {
		t.Errorf("Expected /usr/bin/ffmpeg, got %s", path)
	}
}

func TestRequireFFmpeg_Missing(t *testing.T) {
	tools := NewTools("/opt/ffmpeg/bin/ffmpeg")
	tools.lookPath = fakePath(nil)

	_, err := tools.RequireFFmpeg()
	if err == nil {
		t.Fatal("Expected error when ffmpeg is missing")
	}
	if !errors.Is(err, ErrFFmpegNotFound) {
		t.Errorf("Expected ErrFFmpegNotFound, got %v", err)
	}
	if hints := crdb.FlattenHints(err); hints == "" {
		t.Error("Expected an install hint")
	}
}

func TestRequireYTDLP(t *testing.T) {
	tools := NewTools("")
	tools.lookPath = fakePath(nil)

	if _, err := tools.RequireYTDLP(); !errors.Is(err, ErrYTDLPNotFound) {
		t.Errorf("Expected ErrYTDLPNotFound, got %v", err)
	}

	tools.lookPath = fakePath(map[string]string{"yt-dlp": "/usr/local/bin/yt-dlp"})
	path, err := tools.RequireYTDLP()
	if err != nil || path != "/usr/local/bin/yt-dlp" {
		t.Errorf("Expected /usr/local/bin/yt-dlp, got %q (%v)", path, err)
	}
}

func TestFFprobe(t *testing.T) {
	tools := NewTools("")
	tools.lookPath = fakePath(nil)
	if _, ok := tools.FFprobe(); ok {
		t.Error("Expected ffprobe to be missing")
	}

	tools.lookPath = fakePath(map[string]string{"ffprobe": "/usr/bin/ffprobe"})
	if path, ok := tools.FFprobe(); !ok || path != "/usr/bin/ffprobe" {
		t.Errorf("Expected /usr/bin/ffprobe, got %q", path)
	}
}

func TestInstall_OnlyMissingTools(t *testing.T) {
	cache := t.TempDir()
	tools := NewTools("")
	tools.lookPath = fakePath(map[string]string{"ffmpeg": "/usr/bin/ffmpeg"})

	var ytdlpCalls, ffmpegCalls int
	tools.installYTDLP = func(context.Context) (string, error) {
		ytdlpCalls++
		return filepath.Join(cache, "yt-dlp"), nil
	}
	tools.installFFmpeg = func(context.Context) (string, error) {
		ffmpegCalls++
		return filepath.Join(cache, "ffmpeg"), nil
	}

	if err := tools.Install(context.Background()); err != nil {
		t.Fatalf("Install failed: %v", err)
	}

	if ytdlpCalls != 1 || ffmpegCalls != 0 {
		t.Errorf("Expected only yt-dlp install, got yt-dlp=%d ffmpeg=%d", ytdlpCalls, ffmpegCalls)
	}

	path, err := tools.RequireYTDLP()
	if err != nil || path != filepath.Join(cache, "yt-dlp") {
		t.Errorf("Expected installed yt-dlp to be used, got %q (%v)", path, err)
	}
}

func TestInstall_FFmpegReplacesConfiguredPath(t *testing.T) {
	cache := t.TempDir()
	installed := filepath.Join(cache, "ffmpeg")

	tools := NewTools("")
	tools.lookPath = func(name string) (string, error) {
		switch name {
		case "yt-dlp":
			return "/usr/bin/yt-dlp", nil
		case installed:
			return installed, nil
		}
		return "", exec.ErrNotFound
	}
	tools.installFFmpeg = func(context.Context) (string, error) { return installed, nil }

	if err := tools.Install(context.Background()); err != nil {
		t.Fatalf("Install failed: %v", err)
	}

	path, err := tools.RequireFFmpeg()
	if err != nil || path != installed {
		t.Errorf("Expected installed ffmpeg %s, got %q (%v)", installed, path, err)
	}
}

func TestInstall_Failure(t *testing.T) {
	tools := NewTools("")
	tools.lookPath = fakePath(nil)
	tools.installYTDLP = func(context.Context) (string, error) { return "", errors.New("offline") }

	if err := tools.Install(context.Background()); err == nil {
		t.Error("Expected install error to be returned")
	}
}
