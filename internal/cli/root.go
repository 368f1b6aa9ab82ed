// Package cli implements the ytdown command line.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/ytget/ytdown/internal/config"
	"github.com/ytget/ytdown/internal/download"
	"github.com/ytget/ytdown/internal/format"
	"github.com/ytget/ytdown/internal/logging"
	"github.com/ytget/ytdown/internal/model"
	"github.com/ytget/ytdown/internal/platform"
	"github.com/ytget/ytdown/internal/probe"
	"github.com/ytget/ytdown/internal/progress"
)

// Exit codes
const (
	ExitOK    = 0
	ExitError = 1
	ExitUsage = 2
)

// Version is set at build time
var Version = "dev"

// interactive reports whether the progress bar can be drawn on stderr
var interactive = func() bool {
	fd := os.Stderr.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// runService is replaced in tests
var runService = func(ctx context.Context, s download.Downloader, mode model.Mode, req download.Request) (*model.DownloadTask, error) {
	return s.Run(ctx, mode, req)
}

type options struct {
	url          string
	outdir       string
	quality      string
	rateLimit    string
	subsLangs    string
	configPath   string
	mode         *choiceValue
	container    *choiceValue
	audioFormat  *choiceValue
	playlistMode *choiceValue
	subs         bool
	subsEmbed    bool
	quiet        bool
	installDeps  bool
	dryRun       bool
}

func modeNames() []string {
	names := make([]string, 0, len(model.Modes()))
	for _, m := range model.Modes() {
		names = append(names, m.String())
	}
	return names
}

// NewRootCommand builds the ytdown command writing to stdout and stderr
func NewRootCommand(stdout, stderr io.Writer) *cobra.Command {
	opts := &options{
		mode:         newChoice(model.ModeVideo.String(), modeNames()...),
		container:    newChoice(format.ContainerMP4, format.ContainerMP4, format.ContainerMKV),
		audioFormat:  newChoice(format.AudioM4A, format.AudioM4A, format.AudioMP3),
		playlistMode: newChoice(model.ModeVideo.String(), model.ModeVideo.String(), model.ModeAudio.String()),
	}

	cmd := &cobra.Command{
		Use:   "ytdown --url URL [flags]",
		Short: "Download video, audio, playlists and subtitles with yt-dlp",
		Long: `ytdown configures yt-dlp and ffmpeg to fetch a video, its audio track,
a whole playlist or only its subtitles.`,
		Example: `  ytdown --url https://www.youtube.com/watch?v=ID
  ytdown --url https://www.youtube.com/watch?v=ID --type audio --audio-format mp3
  ytdown --url "https://www.youtube.com/playlist?list=ID" --type playlist --playlist-mode audio
  ytdown --url https://www.youtube.com/watch?v=ID --type subs --subs-langs en,de`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				return newUsageError(errors.Newf("unexpected arguments %q, pass the URL with --url", args))
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(opts.url) == "" {
				return newUsageError(errors.New(`required flag "url" not set`))
			}
			return run(cmd, opts, stdout, stderr)
		},
	}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetFlagErrorFunc(func(c *cobra.Command, err error) error {
		return newUsageError(err)
	})

	f := cmd.Flags()
	f.StringVar(&opts.url, "url", "", "video or playlist URL (required)")
	f.Var(opts.mode, "type", "operation type")
	f.StringVar(&opts.outdir, "outdir", "", "output directory (default downloads/<type>)")
	f.StringVar(&opts.quality, "quality", config.DefaultQuality, "maximum video height, e.g. 720 or 1080p")
	f.Var(opts.container, "container", "video container")
	f.Var(opts.audioFormat, "audio-format", "audio format")
	f.StringVar(&opts.rateLimit, "rate-limit", "", "download rate limit, e.g. 500K or 2M")
	f.BoolVar(&opts.subs, "subs", false, "also write subtitles")
	f.BoolVar(&opts.subsEmbed, "subs-embed", false, "embed subtitles into the container")
	f.StringVar(&opts.subsLangs, "subs-langs", config.DefaultSubsLangs, "comma separated subtitle languages")
	f.BoolVarP(&opts.quiet, "quiet", "q", false, "only print warnings and errors")
	f.Var(opts.playlistMode, "playlist-mode", "what to download for each playlist entry")
	f.StringVar(&opts.configPath, "config", "", "settings file (default "+config.DefaultConfigFile+" if present)")
	f.BoolVar(&opts.installDeps, "install-deps", false, "download yt-dlp and ffmpeg when they are missing")
	f.BoolVar(&opts.dryRun, "dry-run", false, "print the resolved options and yt-dlp command without downloading")

	return cmd
}

// Execute runs the command line and returns the process exit code
func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	cmd := NewRootCommand(stdout, stderr)
	cmd.SetArgs(args)

	err := cmd.ExecuteContext(ctx)
	if err == nil {
		return ExitOK
	}

	red := color.New(color.FgRed, color.Bold)
	red.Fprint(stderr, "Error: ")
	fmt.Fprintln(stderr, err)
	if hints := errors.FlattenHints(err); hints != "" {
		fmt.Fprintf(stderr, "Hint: %s\n", hints)
	}

	if isUsageError(err) {
		fmt.Fprintf(stderr, "Run '%s --help' for usage.\n", cmd.Name())
		return ExitUsage
	}
	return ExitError
}

func run(cmd *cobra.Command, opts *options, stdout, stderr io.Writer) error {
	ctx := cmd.Context()
	flags := cmd.Flags()

	settings, err := config.Load(opts.configPath, flags.Changed("config"))
	if err != nil {
		return err
	}
	applySettings(opts, settings, flags.Changed)

	mode := model.Mode(opts.mode.String())
	req, err := buildRequest(opts, settings, mode)
	if err != nil {
		return newUsageError(err)
	}

	log := logging.New(stderr, logging.ForQuiet(opts.quiet))
	reporter := progress.NewReporter(log, stderr)
	reporter.SetQuiet(opts.quiet)
	reporter.EnableBar(settings.ProgressBarEnabled() && interactive())

	tools := platform.NewTools(settings.FFmpegPath)
	service := download.NewService(log, tools, reporter)
	service.SetPlaylistLister(platform.NewPlaylistParser())
	if ffprobe, ok := tools.FFprobe(); ok {
		service.SetProber(probe.NewService(ffprobe))
	}

	if opts.dryRun {
		plan, err := service.Plan(mode, req)
		if err != nil {
			return err
		}
		return writeSummary(ctx, stdout, mode, req, plan)
	}

	if opts.installDeps {
		log.Infof("Checking yt-dlp and ffmpeg")
		if err := tools.Install(ctx); err != nil {
			return err
		}
	}
	if _, err := tools.RequireYTDLP(); err != nil {
		log.Debugf("%v, relying on the library cache", err)
	}

	task, err := runService(ctx, service, mode, req)
	if err != nil {
		return err
	}

	log.Infof("Done: %s in %s", task.GetDisplayTitle(), task.Elapsed().Round(time.Second))
	return nil
}

// applySettings fills every flag the user did not set from the settings file
func applySettings(opts *options, s *config.Settings, changed func(string) bool) {
	if !changed("quality") {
		opts.quality = s.Quality
	}
	if !changed("container") {
		_ = opts.container.Set(s.Container)
	}
	if !changed("audio-format") {
		_ = opts.audioFormat.Set(s.AudioFormat)
	}
	if !changed("subs-langs") {
		opts.subsLangs = s.SubsLangs
	}
	if !changed("rate-limit") {
		opts.rateLimit = s.RateLimit
	}
}

func buildRequest(opts *options, s *config.Settings, mode model.Mode) (download.Request, error) {
	if opts.rateLimit != "" {
		if _, err := config.ParseRateLimit(opts.rateLimit); err != nil {
			return download.Request{}, err
		}
	}

	outdir := strings.TrimSpace(opts.outdir)
	if outdir == "" {
		outdir = s.GetOutputDir(mode)
	}

	req := download.NewRequest(strings.TrimSpace(opts.url))
	req.OutputDir = outdir
	req.Quality = opts.quality
	req.Container = opts.container.String()
	req.AudioFormat = opts.audioFormat.String()
	req.RateLimit = strings.TrimSpace(opts.rateLimit)
	req.Subs = opts.subs
	req.EmbedSubs = opts.subsEmbed
	req.SubLangs = config.SplitLangs(opts.subsLangs)
	req.Quiet = opts.quiet
	req.PlaylistMode = model.Mode(opts.playlistMode.String())
	req.ConcurrentFragments = s.ConcurrentFragments
	req.Retries = s.GetRetries()
	req.SocketTimeout = s.GetSocketTimeout()
	return req, nil
}
