package download

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/dustin/go-humanize"
	"github.com/lrstanley/go-ytdlp"

	"github.com/ytget/ytdown/internal/format"
	"github.com/ytget/ytdown/internal/logging"
	"github.com/ytget/ytdown/internal/model"
	"github.com/ytget/ytdown/internal/platform"
	"github.com/ytget/ytdown/internal/progress"
)

var (
	// ErrUnknownMode is returned for an operation type the dispatcher does not know
	ErrUnknownMode = errors.New("unknown operation type")
	// ErrUnknownPlaylistMode is returned when a playlist is neither video nor audio
	ErrUnknownPlaylistMode = errors.New("playlist mode must be video or audio")
	// ErrNoVideoInfo is returned when the metadata preflight yields nothing
	ErrNoVideoInfo = errors.New("could not retrieve video information")
)

// Failure messages wrapped around library errors
const (
	videoFailure     = "error downloading video"
	audioFailure     = "error downloading audio"
	subtitlesFailure = "error downloading subtitles"
)

// Request carries the user options of one invocation
type Request struct {
	URL                 string
	OutputDir           string
	Quality             string
	Container           string
	AudioFormat         string
	RateLimit           string
	Subs                bool
	EmbedSubs           bool
	SubLangs            []string
	Quiet               bool
	PlaylistMode        model.Mode
	ConcurrentFragments int
	Retries             int
	SocketTimeout       time.Duration
}

// NewRequest returns a request for url with the defaults of every option
func NewRequest(url string) Request {
	return Request{
		URL:                 url,
		Quality:             "1080",
		Container:           format.ContainerMP4,
		AudioFormat:         format.AudioM4A,
		PlaylistMode:        model.ModeVideo,
		ConcurrentFragments: DefaultConcurrentFragments,
		Retries:             DefaultRetries,
		SocketTimeout:       DefaultSocketTimeout,
	}
}

// Service dispatches a single invocation to the retrieval library
type Service struct {
	log       *logging.Logger
	tools     ToolChecker
	reporter  *progress.Reporter
	playlists PlaylistLister
	prober    Prober

	newRunner   func(opts *Options, progressFn func(ytdlp.ProgressUpdate)) Runner
	extractInfo func(*ytdlp.Result) ([]*ytdlp.ExtractedInfo, error)
}

// NewService creates a new download service
func NewService(log *logging.Logger, tools ToolChecker, reporter *progress.Reporter) *Service {
	if log == nil {
		log = logging.Discard()
	}
	if reporter == nil {
		reporter = progress.NewReporter(log, nil)
	}
	return &Service{
		log:         log,
		tools:       tools,
		reporter:    reporter,
		newRunner:   commandRunner,
		extractInfo: resultInfo,
	}
}

// SetPlaylistLister enables the playlist preview
func (s *Service) SetPlaylistLister(l PlaylistLister) {
	s.playlists = l
}

// SetProber enables inspection of finished downloads
func (s *Service) SetProber(p Prober) {
	s.prober = p
}

// Run dispatches req to the handler of mode
func (s *Service) Run(ctx context.Context, mode model.Mode, req Request) (*model.DownloadTask, error) {
	switch mode {
	case model.ModeVideo:
		return s.Video(ctx, req)
	case model.ModeAudio:
		return s.Audio(ctx, req)
	case model.ModePlaylist:
		return s.Playlist(ctx, req)
	case model.ModeSubtitles:
		return s.Subtitles(ctx, req)
	default:
		return nil, errors.Wrapf(ErrUnknownMode, "%q", mode)
	}
}

// Plan returns the configuration record Run would use for mode, without
// creating directories or checking tools
func (s *Service) Plan(mode model.Mode, req Request) (*Options, error) {
	switch mode {
	case model.ModeVideo:
		return videoParams(req, outputDir(req, mode)).Resolve(), nil
	case model.ModeAudio:
		return audioParams(req, outputDir(req, mode)).Resolve(), nil
	case model.ModePlaylist:
		p, err := playlistParams(req)
		if err != nil {
			return nil, err
		}
		return p.Resolve(), nil
	case model.ModeSubtitles:
		return subtitleParams(req).Resolve(), nil
	default:
		return nil, errors.Wrapf(ErrUnknownMode, "%q", mode)
	}
}

// Video downloads a video with the best streams at or below the quality ceiling
func (s *Service) Video(ctx context.Context, req Request) (*model.DownloadTask, error) {
	task := model.NewDownloadTask(req.URL, model.ModeVideo)
	if req.EmbedSubs && !req.Subs {
		s.log.Warnf("--subs-embed has no effect without --subs")
	}
	return task, s.media(ctx, task, videoParams(req, outputDir(req, model.ModeVideo)), videoFailure, req.Container)
}

// Audio downloads the best audio stream and converts it to the requested codec
func (s *Service) Audio(ctx context.Context, req Request) (*model.DownloadTask, error) {
	task := model.NewDownloadTask(req.URL, model.ModeAudio)
	return task, s.media(ctx, task, audioParams(req, outputDir(req, model.ModeAudio)), audioFailure, req.AudioFormat)
}

// Playlist downloads every entry of a playlist as video or audio
func (s *Service) Playlist(ctx context.Context, req Request) (*model.DownloadTask, error) {
	task := model.NewDownloadTask(req.URL, model.ModePlaylist)

	p, err := playlistParams(req)
	if err != nil {
		task.Fail(err)
		return task, err
	}

	if _, err := s.requireFFmpeg(); err != nil {
		task.Fail(err)
		return task, err
	}

	s.previewPlaylist(ctx, task)

	if req.PlaylistMode == model.ModeAudio {
		return task, s.media(ctx, task, p, audioFailure, req.AudioFormat)
	}
	return task, s.media(ctx, task, p, videoFailure, req.Container)
}

// Subtitles writes subtitle files without downloading media
func (s *Service) Subtitles(ctx context.Context, req Request) (*model.DownloadTask, error) {
	task := model.NewDownloadTask(req.URL, model.ModeSubtitles)

	if req.EmbedSubs {
		s.log.Warnf("Subtitles cannot be embedded without media, writing subtitle files instead")
	}

	p := subtitleParams(req)
	opts, err := BuildOptions(p)
	if err != nil {
		task.Fail(err)
		return task, err
	}

	if err := s.preflight(ctx, task, p); err != nil {
		task.Fail(err)
		return task, err
	}

	if err := s.execute(ctx, task, opts, subtitlesFailure); err != nil {
		return task, err
	}

	task.OutputPath = ""
	s.log.Infof("Subtitles saved to %s", opts.OutputDir)
	return task, nil
}

// media runs a video or audio download, which needs ffmpeg for post-processing
func (s *Service) media(ctx context.Context, task *model.DownloadTask, p Params, failure, ext string) error {
	ffmpeg, err := s.requireFFmpeg()
	if err != nil {
		task.Fail(err)
		return err
	}
	p.FFmpegLocation = ffmpeg

	opts, err := BuildOptions(p)
	if err != nil {
		task.Fail(err)
		return err
	}

	if err := s.execute(ctx, task, opts, failure); err != nil {
		return err
	}

	if task.OutputPath != "" {
		if resolved, err := platform.ResolveOutputFile(task.OutputPath, "."+ext); err == nil {
			task.OutputPath = resolved
		}
		s.reportSaved(ctx, task)
	}
	return nil
}

// execute runs the library once and records the outcome on task
func (s *Service) execute(ctx context.Context, task *model.DownloadTask, opts *Options, failure string) error {
	task.OutputDir = opts.OutputDir
	task.Status = model.TaskStatusStarting
	s.log.Debugf("Task %s: %s %s into %s", task.ID, task.Mode, task.URL, opts.OutputDir)

	s.reporter.Track(task)
	runner := s.newRunner(opts, s.reporter.Handle)
	result, err := runner.Run(ctx, task.URL)
	s.reporter.Close()

	if err != nil {
		if ctx.Err() != nil {
			err = ctx.Err()
		}
		err = errors.Wrap(err, failure)
		task.Fail(err)
		return err
	}

	s.collect(task, result)
	task.Complete()
	return nil
}

// preflight fetches metadata only, so a bad URL fails before any file is written
func (s *Service) preflight(ctx context.Context, task *model.DownloadTask, p Params) error {
	p.WriteSubs = false
	p.SkipDownload = true
	p.PrintJSON = true
	opts := p.Resolve()

	result, err := s.newRunner(opts, nil).Run(ctx, task.URL)
	if err != nil {
		if ctx.Err() != nil {
			err = ctx.Err()
		}
		return errors.Wrap(err, subtitlesFailure)
	}

	infos, err := s.extractInfo(result)
	if err != nil || len(infos) == 0 || infos[0] == nil {
		return errors.WithStack(ErrNoVideoInfo)
	}
	if infos[0].Title != nil {
		task.Title = *infos[0].Title
	}
	return nil
}

// collect copies title and filename from the library result
func (s *Service) collect(task *model.DownloadTask, result *ytdlp.Result) {
	infos, err := s.extractInfo(result)
	if err != nil {
		s.log.Debugf("Could not read extracted info: %v", err)
		return
	}
	if len(infos) == 0 || infos[0] == nil {
		return
	}

	info := infos[0]
	if info.Title != nil && *info.Title != "" && task.Title == "" {
		task.Title = *info.Title
	}
	if info.Filename != nil && *info.Filename != "" {
		task.OutputPath = *info.Filename
	}
	if len(infos) > 1 {
		s.log.Infof("Downloaded %d items into %s", len(infos), task.OutputDir)
	}
}

// reportSaved prints the output file, with stream details when a prober is set
func (s *Service) reportSaved(ctx context.Context, task *model.DownloadTask) {
	if s.prober == nil {
		s.log.Infof("Saved: %s", task.OutputPath)
		return
	}

	info, err := s.prober.Probe(ctx, task.OutputPath)
	if err != nil {
		s.log.Debugf("Probe failed for %s: %v", task.OutputPath, err)
		s.log.Infof("Saved: %s", task.OutputPath)
		return
	}

	task.Media = info
	if info.Size > 0 {
		s.log.Infof("Saved: %s (%s, %s)", task.OutputPath, info.Summary(), humanize.Bytes(uint64(info.Size)))
		return
	}
	s.log.Infof("Saved: %s (%s)", task.OutputPath, info.Summary())
}

func (s *Service) previewPlaylist(ctx context.Context, task *model.DownloadTask) {
	if s.playlists == nil {
		return
	}
	playlist, err := s.playlists.ParsePlaylist(ctx, task.URL)
	if err != nil {
		s.log.Warnf("Could not preview playlist: %v", err)
		return
	}
	task.Title = playlist.Title
	s.log.Infof("Playlist %q: %d videos", playlist.Title, playlist.TotalVideos)
}

func (s *Service) requireFFmpeg() (string, error) {
	if s.tools == nil {
		return "", nil
	}
	return s.tools.RequireFFmpeg()
}

func baseParams(req Request, dir string) Params {
	p := NewParams(dir)
	p.RateLimit = req.RateLimit
	p.Quiet = req.Quiet
	if req.ConcurrentFragments > 0 {
		p.ConcurrentFragments = req.ConcurrentFragments
	}
	p.Retries = req.Retries
	if req.SocketTimeout > 0 {
		p.SocketTimeout = req.SocketTimeout
	}
	return p
}

// mediaParams are shared by video and audio downloads. The info JSON carries
// the final filename and title.
func mediaParams(req Request, dir string) Params {
	p := baseParams(req, dir)
	p.PrintJSON = true
	return p
}

func videoParams(req Request, dir string) Params {
	container := req.Container
	if container == "" {
		container = format.ContainerMP4
	}

	p := mediaParams(req, dir)
	p.Format = format.VideoSelector(req.Quality, container)
	p.PostProcessors = []PostProcessor{Remux(container)}
	p.WriteSubs = req.Subs
	p.SubLangs = req.SubLangs
	p.EmbedSubs = req.EmbedSubs
	return p
}

func audioParams(req Request, dir string) Params {
	codec := req.AudioFormat
	if codec == "" {
		codec = format.AudioM4A
	}

	p := mediaParams(req, dir)
	p.Format = format.AudioSelector()
	p.PostProcessors = []PostProcessor{ExtractAudio(codec), EmbedMetadata()}
	return p
}

func playlistParams(req Request) (Params, error) {
	dir := outputDir(req, model.ModePlaylist)

	var p Params
	switch req.PlaylistMode {
	case model.ModeVideo, "":
		p = videoParams(req, dir)
	case model.ModeAudio:
		p = audioParams(req, dir)
	default:
		return Params{}, errors.Wrapf(ErrUnknownPlaylistMode, "got %q", req.PlaylistMode)
	}
	p.YesPlaylist = true
	return p, nil
}

func subtitleParams(req Request) Params {
	p := baseParams(req, outputDir(req, model.ModeSubtitles))
	p.Template = SubtitlesTemplate
	p.Format = format.SubtitlesSelector()
	p.WriteSubs = true
	p.SubLangs = req.SubLangs
	p.SkipDownload = true
	return p
}

func outputDir(req Request, mode model.Mode) string {
	if req.OutputDir != "" {
		return req.OutputDir
	}
	return mode.OutputDir("")
}

func commandRunner(opts *Options, progressFn func(ytdlp.ProgressUpdate)) Runner {
	return opts.Command(progressFn)
}

func resultInfo(result *ytdlp.Result) ([]*ytdlp.ExtractedInfo, error) {
	if result == nil {
		return nil, nil
	}
	return result.GetExtractedInfo()
}
