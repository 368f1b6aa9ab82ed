package download

import (
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/lrstanley/go-ytdlp"

	"github.com/ytget/ytdown/internal/platform"
	"github.com/ytget/ytdown/internal/progress"
)

// Filename templates. The playlist index prefix is only rendered for playlist entries.
const (
	MediaTemplate     = "%(playlist_index&{:03d}-|)s%(title).200B-%(id)s.%(ext)s"
	SubtitlesTemplate = "%(title).200B-%(id)s.%(ext)s"
)

// Library defaults
const (
	DefaultConcurrentFragments = 4
	DefaultRetries             = 5
	DefaultSocketTimeout       = 30 * time.Second
	CacheDirName               = ".cache-yt"
	BestAudioQuality           = "0"
)

// DefaultSubLangs is used when subtitles are requested without languages
var DefaultSubLangs = []string{"en", "ru", "auto"}

// PostProcessorKind identifies a post-processing step run by the library
type PostProcessorKind string

const (
	PostProcessorRemux         PostProcessorKind = "remux"
	PostProcessorExtractAudio  PostProcessorKind = "extract-audio"
	PostProcessorEmbedMetadata PostProcessorKind = "embed-metadata"
)

// PostProcessor is a single post-processing step
type PostProcessor struct {
	Kind    PostProcessorKind
	Format  string // target container or audio codec
	Quality string // audio quality, "0" is best
}

// Remux merges and remuxes into container without re-encoding
func Remux(container string) PostProcessor {
	return PostProcessor{Kind: PostProcessorRemux, Format: container}
}

// ExtractAudio converts the download into an audio file of the given codec
func ExtractAudio(codec string) PostProcessor {
	return PostProcessor{Kind: PostProcessorExtractAudio, Format: codec, Quality: BestAudioQuality}
}

// EmbedMetadata writes title, artist and similar tags into the file
func EmbedMetadata() PostProcessor {
	return PostProcessor{Kind: PostProcessorEmbedMetadata}
}

// String renders the step for summaries
func (p PostProcessor) String() string {
	switch {
	case p.Format != "" && p.Quality != "":
		return string(p.Kind) + "(" + p.Format + ", q" + p.Quality + ")"
	case p.Format != "":
		return string(p.Kind) + "(" + p.Format + ")"
	default:
		return string(p.Kind)
	}
}

// Params are the inputs of BuildOptions
type Params struct {
	OutputDir           string
	Template            string
	ConcurrentFragments int
	Retries             int
	RateLimit           string
	Quiet               bool
	WriteSubs           bool
	SubLangs            []string
	EmbedSubs           bool
	Format              string
	KeepVideo           bool
	PostProcessors      []PostProcessor
	SocketTimeout       time.Duration
	FFmpegLocation      string
	SkipDownload        bool
	PrintJSON           bool
	YesPlaylist         bool
}

// NewParams returns parameters with the library defaults for outputDir
func NewParams(outputDir string) Params {
	return Params{
		OutputDir:           outputDir,
		Template:            MediaTemplate,
		ConcurrentFragments: DefaultConcurrentFragments,
		Retries:             DefaultRetries,
		SocketTimeout:       DefaultSocketTimeout,
	}
}

// Options is the configuration record handed to the retrieval library
type Options struct {
	OutputDir           string
	OutputTemplate      string
	Format              string
	ConcurrentFragments int
	Retries             int
	FragmentRetries     int
	RateLimit           string
	Quiet               bool
	NoProgress          bool
	RestrictFilenames   bool
	WindowsFilenames    bool
	SocketTimeout       time.Duration
	CacheDir            string
	WriteSubs           bool
	WriteAutoSubs       bool
	SubLangs            []string
	EmbedSubs           bool
	KeepVideo           bool
	PostProcessors      []PostProcessor
	SkipDownload        bool
	PrintJSON           bool
	YesPlaylist         bool
	FFmpegLocation      string
}

// BuildOptions creates the output directory and returns the configuration record
func BuildOptions(p Params) (*Options, error) {
	if err := platform.EnsureDir(p.OutputDir); err != nil {
		return nil, errors.Wrap(err, "prepare output directory")
	}
	return p.Resolve(), nil
}

// Resolve applies defaults and returns the configuration record without
// touching the filesystem
func (p Params) Resolve() *Options {
	template := p.Template
	if template == "" {
		template = MediaTemplate
	}
	fragments := p.ConcurrentFragments
	if fragments <= 0 {
		fragments = DefaultConcurrentFragments
	}
	retries := max(p.Retries, 0)
	timeout := p.SocketTimeout
	if timeout <= 0 {
		timeout = DefaultSocketTimeout
	}

	opts := &Options{
		OutputDir:           p.OutputDir,
		OutputTemplate:      filepath.Join(p.OutputDir, template),
		Format:              p.Format,
		ConcurrentFragments: fragments,
		Retries:             retries,
		FragmentRetries:     retries,
		RateLimit:           strings.TrimSpace(p.RateLimit),
		Quiet:               p.Quiet,
		NoProgress:          p.Quiet,
		RestrictFilenames:   true,
		WindowsFilenames:    true,
		SocketTimeout:       timeout,
		CacheDir:            filepath.Join(p.OutputDir, CacheDirName),
		KeepVideo:           p.KeepVideo,
		PostProcessors:      p.PostProcessors,
		SkipDownload:        p.SkipDownload,
		PrintJSON:           p.PrintJSON,
		YesPlaylist:         p.YesPlaylist,
		FFmpegLocation:      p.FFmpegLocation,
	}

	if p.WriteSubs {
		opts.WriteSubs = true
		opts.WriteAutoSubs = true
		opts.SubLangs = p.SubLangs
		if len(opts.SubLangs) == 0 {
			opts.SubLangs = DefaultSubLangs
		}
		opts.EmbedSubs = p.EmbedSubs
	}

	return opts
}

// Command translates the record into a library command. progress may be nil.
func (o *Options) Command(progressFn func(ytdlp.ProgressUpdate)) *ytdlp.Command {
	cmd := ytdlp.New().
		Output(o.OutputTemplate).
		ConcurrentFragments(o.ConcurrentFragments).
		Retries(strconv.Itoa(o.Retries)).
		FragmentRetries(strconv.Itoa(o.FragmentRetries)).
		SocketTimeout(o.SocketTimeout.Seconds()).
		CacheDir(o.CacheDir)

	if o.Format != "" {
		cmd.Format(o.Format)
	}
	if o.RateLimit != "" {
		cmd.LimitRate(o.RateLimit)
	}
	if o.RestrictFilenames {
		cmd.RestrictFilenames()
	}
	if o.WindowsFilenames {
		cmd.WindowsFilenames()
	}
	if o.Quiet {
		cmd.Quiet().NoWarnings()
	}
	if o.NoProgress {
		cmd.NoProgress()
	}
	if o.WriteSubs {
		cmd.WriteSubs()
	}
	if o.WriteAutoSubs {
		cmd.WriteAutoSubs()
	}
	if len(o.SubLangs) > 0 {
		cmd.SubLangs(strings.Join(o.SubLangs, ","))
	}
	if o.EmbedSubs {
		cmd.EmbedSubs()
	}
	if o.KeepVideo {
		cmd.KeepVideo()
	}
	if o.SkipDownload {
		cmd.SkipDownload()
	}
	if o.PrintJSON {
		cmd.PrintJSON()
	}
	if o.YesPlaylist {
		cmd.YesPlaylist()
	}
	if o.FFmpegLocation != "" {
		cmd.FFmpegLocation(o.FFmpegLocation)
	}

	for _, pp := range o.PostProcessors {
		switch pp.Kind {
		case PostProcessorRemux:
			cmd.MergeOutputFormat(pp.Format).RemuxVideo(pp.Format)
		case PostProcessorExtractAudio:
			cmd.ExtractAudio().AudioFormat(pp.Format)
			if pp.Quality != "" {
				cmd.AudioQuality(pp.Quality)
			}
		case PostProcessorEmbedMetadata:
			cmd.EmbedMetadata()
		}
	}

	if progressFn != nil && !o.NoProgress {
		cmd.ProgressFunc(progress.UpdateInterval, progressFn)
	}
	return cmd
}
