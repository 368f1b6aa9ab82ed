package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/fatih/color"

	"github.com/ytget/ytdown/internal/download"
	"github.com/ytget/ytdown/internal/model"
)

func init() {
	color.NoColor = true
	interactive = func() bool { return false }
}

type capturedRun struct {
	called bool
	mode   model.Mode
	req    download.Request
}

// stubService replaces the download call for the duration of the test
func stubService(t *testing.T, err error) *capturedRun {
	t.Helper()
	captured := &capturedRun{}
	orig := runService
	runService = func(ctx context.Context, s download.Downloader, mode model.Mode, req download.Request) (*model.DownloadTask, error) {
		captured.called = true
		captured.mode = mode
		captured.req = req
		task := model.NewDownloadTask(req.URL, mode)
		if err != nil {
			task.Fail(err)
			return task, err
		}
		task.Complete()
		return task, nil
	}
	t.Cleanup(func() { runService = orig })
	return captured
}

func execute(args ...string) (int, string, string) {
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	code := Execute(context.Background(), args, stdout, stderr)
	return code, stdout.String(), stderr.String()
}

func TestExecute_UsageErrors(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		message string
	}{
		{
			name:    "missing url",
			args:    []string{"--type", "audio"},
			message: `"url"`,
		},
		{
			name:    "unknown type",
			args:    []string{"--url", "https://example.com/v", "--type", "podcast"},
			message: "must be one of video, audio, playlist, subs",
		},
		{
			name:    "unknown container",
			args:    []string{"--url", "https://example.com/v", "--container", "avi"},
			message: "must be one of mp4, mkv",
		},
		{
			name:    "unknown audio format",
			args:    []string{"--url", "https://example.com/v", "--audio-format", "flac"},
			message: "must be one of m4a, mp3",
		},
		{
			name:    "unknown flag",
			args:    []string{"--url", "https://example.com/v", "--resolution", "4k"},
			message: "unknown flag",
		},
		{
			name:    "positional argument",
			args:    []string{"https://example.com/v"},
			message: "pass the URL with --url",
		},
		{
			name:    "invalid rate limit",
			args:    []string{"--url", "https://example.com/v", "--rate-limit", "fast"},
			message: "invalid rate limit",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			captured := stubService(t, nil)

			code, _, stderr := execute(tt.args...)
			if code != ExitUsage {
				t.Errorf("Expected exit code %d, got %d", ExitUsage, code)
			}
			if !strings.Contains(stderr, tt.message) {
				t.Errorf("Expected stderr to contain %q, got:\n%s", tt.message, stderr)
			}
			if captured.called {
				t.Error("Expected no download on usage error")
			}
		})
	}
}

func TestExecute_DefaultOutdirPerType(t *testing.T) {
	for _, mode := range model.Modes() {
		t.Run(mode.String(), func(t *testing.T) {
			captured := stubService(t, nil)

			code, _, stderr := execute("--url", "https://example.com/v", "--type", mode.String(), "-q")
			if code != ExitOK {
				t.Fatalf("Expected success, got %d: %s", code, stderr)
			}
			if captured.mode != mode {
				t.Errorf("Expected mode %s, got %s", mode, captured.mode)
			}
			if expected := filepath.Join("downloads", mode.String()); captured.req.OutputDir != expected {
				t.Errorf("Expected outdir %s, got %s", expected, captured.req.OutputDir)
			}
		})
	}
}

func TestExecute_FlagsToRequest(t *testing.T) {
	captured := stubService(t, nil)
	outdir := t.TempDir()

	code, _, stderr := execute(
		"--url", " https://www.youtube.com/playlist?list=PL1 ",
		"--type", "playlist",
		"--playlist-mode", "audio",
		"--outdir", outdir,
		"--quality", "720p",
		"--container", "MKV",
		"--audio-format", "mp3",
		"--rate-limit", "2M",
		"--subs",
		"--subs-embed",
		"--subs-langs", " en , de,, ",
		"--quiet",
	)
	if code != ExitOK {
		t.Fatalf("Expected success, got %d: %s", code, stderr)
	}

	req := captured.req
	if req.URL != "https://www.youtube.com/playlist?list=PL1" {
		t.Errorf("Expected trimmed URL, got %q", req.URL)
	}
	if req.OutputDir != outdir || req.Quality != "720p" || req.Container != "mkv" || req.AudioFormat != "mp3" {
		t.Errorf("Unexpected request %+v", req)
	}
	if req.PlaylistMode != model.ModeAudio {
		t.Errorf("Expected audio playlist mode, got %s", req.PlaylistMode)
	}
	if req.RateLimit != "2M" || !req.Subs || !req.EmbedSubs || !req.Quiet {
		t.Errorf("Unexpected request %+v", req)
	}
	if !reflect.DeepEqual(req.SubLangs, []string{"en", "de"}) {
		t.Errorf("Expected [en de], got %v", req.SubLangs)
	}
	if req.ConcurrentFragments != 4 || req.Retries != 5 || req.SocketTimeout != 30*time.Second {
		t.Errorf("Expected library defaults, got %+v", req)
	}
	if stderr != "" {
		t.Errorf("Expected quiet run to print nothing, got:\n%s", stderr)
	}
}

func TestExecute_Defaults(t *testing.T) {
	captured := stubService(t, nil)

	code, _, stderr := execute("--url", "https://example.com/v")
	if code != ExitOK {
		t.Fatalf("Expected success, got %d: %s", code, stderr)
	}

	req := captured.req
	if captured.mode != model.ModeVideo {
		t.Errorf("Expected video mode, got %s", captured.mode)
	}
	if req.Quality != "1080" || req.Container != "mp4" || req.AudioFormat != "m4a" {
		t.Errorf("Unexpected defaults %+v", req)
	}
	if !reflect.DeepEqual(req.SubLangs, []string{"en", "ru", "auto"}) {
		t.Errorf("Expected default languages, got %v", req.SubLangs)
	}
	if req.Subs || req.EmbedSubs || req.Quiet || req.RateLimit != "" {
		t.Errorf("Expected switches off by default, got %+v", req)
	}
	if !strings.Contains(stderr, "Done:") {
		t.Errorf("Expected completion line, got:\n%s", stderr)
	}
}

func TestExecute_RuntimeError(t *testing.T) {
	stubService(t, errors.WithHint(errors.New("error downloading video: HTTP Error 403"), "try again later"))

	code, _, stderr := execute("--url", "https://example.com/v")
	if code != ExitError {
		t.Errorf("Expected exit code %d, got %d", ExitError, code)
	}
	if !strings.Contains(stderr, "Error: error downloading video: HTTP Error 403") {
		t.Errorf("Expected error line, got:\n%s", stderr)
	}
	if !strings.Contains(stderr, "Hint: try again later") {
		t.Errorf("Expected hint line, got:\n%s", stderr)
	}
}

func TestExecute_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ytdown.yaml")
	body := `output-root: ` + filepath.Join(dir, "media") + `
quality: "720"
container: mkv
subs-langs: de
retries: 9
concurrent-fragments: 2
`
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}

	captured := stubService(t, nil)
	code, _, stderr := execute("--url", "https://example.com/v", "--config", path, "--type", "audio", "--container", "mp4", "-q")
	if code != ExitOK {
		t.Fatalf("Expected success, got %d: %s", code, stderr)
	}

	req := captured.req
	if req.OutputDir != filepath.Join(dir, "media", "audio") {
		t.Errorf("Expected outdir from settings, got %s", req.OutputDir)
	}
	if req.Quality != "720" {
		t.Errorf("Expected quality from settings, got %s", req.Quality)
	}
	if req.Container != "mp4" {
		t.Errorf("Expected explicit flag to win, got %s", req.Container)
	}
	if !reflect.DeepEqual(req.SubLangs, []string{"de"}) {
		t.Errorf("Expected languages from settings, got %v", req.SubLangs)
	}
	if req.Retries != 9 || req.ConcurrentFragments != 2 {
		t.Errorf("Expected tuning from settings, got %+v", req)
	}
}

func TestExecute_MissingExplicitConfig(t *testing.T) {
	stubService(t, nil)

	code, _, _ := execute("--url", "https://example.com/v", "--config", filepath.Join(t.TempDir(), "nope.yaml"))
	if code != ExitError {
		t.Errorf("Expected exit code %d, got %d", ExitError, code)
	}
}

func TestExecute_DryRun(t *testing.T) {
	captured := stubService(t, nil)
	orig := commandArgs
	commandArgs = func(ctx context.Context, opts *download.Options, url string) []string {
		return []string{"yt-dlp", "--format", opts.Format, "--output", opts.OutputTemplate, url}
	}
	t.Cleanup(func() { commandArgs = orig })

	outdir := filepath.Join(t.TempDir(), "plan")
	code, stdout, stderr := execute("--url", "https://example.com/v?x=1&y=2", "--type", "audio", "--outdir", outdir, "--dry-run")
	if code != ExitOK {
		t.Fatalf("Expected success, got %d: %s", code, stderr)
	}
	if captured.called {
		t.Error("Expected dry run not to download")
	}
	if _, err := os.Stat(outdir); !os.IsNotExist(err) {
		t.Error("Expected dry run not to create the output directory")
	}

	for _, want := range []string{
		"bestaudio/best",
		"extract-audio(m4a, q0), embed-metadata",
		filepath.Join(outdir, ".cache-yt"),
		"'https://example.com/v?x=1&y=2'",
		"yt-dlp --format bestaudio/best",
	} {
		if !strings.Contains(stdout, want) {
			t.Errorf("Expected summary to contain %q, got:\n%s", want, stdout)
		}
	}
}

func TestChoiceValue(t *testing.T) {
	c := newChoice("mp4", "mp4", "mkv")
	if c.Type() != "mp4|mkv" {
		t.Errorf("Unexpected type %s", c.Type())
	}
	if err := c.Set(" MKV "); err != nil || c.String() != "mkv" {
		t.Errorf("Expected mkv, got %q (%v)", c.String(), err)
	}
	if err := c.Set("avi"); err == nil {
		t.Error("Expected error for unknown value")
	}
	if c.String() != "mkv" {
		t.Errorf("Expected value to be unchanged after a failed Set, got %s", c.String())
	}
}

func TestDisplayArgs(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		expected []string
	}{
		{
			name:     "unresolved executable",
			args:     []string{"", "--socket-timeout", "30", "https://example.com/v"},
			expected: []string{"yt-dlp", "--socket-timeout", "30", "https://example.com/v"},
		},
		{
			name:     "cached executable",
			args:     []string{"/home/u/.cache/go-ytdlp/yt-dlp", "--quiet"},
			expected: []string{"yt-dlp", "--quiet"},
		},
		{
			name:     "empty",
			args:     nil,
			expected: []string{"yt-dlp"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := displayArgs(tt.args); !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("Expected %v, got %v", tt.expected, got)
			}
		})
	}
}

func TestCommandArgs_NamesExecutable(t *testing.T) {
	opts := download.NewParams("out").Resolve()
	args := commandArgs(context.Background(), opts, "https://example.com/v")

	if len(args) == 0 || args[0] != "yt-dlp" {
		t.Fatalf("Expected command to start with yt-dlp, got %v", args)
	}
	if args[len(args)-1] != "https://example.com/v" {
		t.Errorf("Expected URL last, got %v", args)
	}
}
