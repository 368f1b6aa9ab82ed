package config

import (
	"os"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"gopkg.in/yaml.v2"

	"github.com/ytget/ytdown/internal/format"
	"github.com/ytget/ytdown/internal/model"
)

// DefaultConfigFile is read from the working directory when --config is not given
const DefaultConfigFile = "ytdown.yaml"

// Default values
const (
	DefaultQuality             = "1080"
	DefaultContainer           = format.ContainerMP4
	DefaultAudioFormat         = format.AudioM4A
	DefaultSubsLangs           = "en,ru,auto"
	DefaultConcurrentFragments = 4
	DefaultRetries             = 5
	DefaultSocketTimeoutSec    = 30
	DefaultFFmpegPath          = "ffmpeg"
	DefaultProgressBar         = true
)

// Limits applied by the setters
const (
	MinConcurrentFragments = 1
	MaxConcurrentFragments = 16
	MinRetries             = 0
	MaxRetries             = 50
	MinSocketTimeoutSec    = 1
	MaxSocketTimeoutSec    = 300
)

// Settings holds defaults for every invocation. Command line flags win over them.
type Settings struct {
	OutputRoot          string `yaml:"output-root"`
	Quality             string `yaml:"quality"`
	Container           string `yaml:"container"`
	AudioFormat         string `yaml:"audio-format"`
	SubsLangs           string `yaml:"subs-langs"`
	RateLimit           string `yaml:"rate-limit"`
	ConcurrentFragments int    `yaml:"concurrent-fragments"`
	Retries             *int   `yaml:"retries"`
	SocketTimeoutSec    int    `yaml:"socket-timeout"`
	FFmpegPath          string `yaml:"ffmpeg-path"`
	ProgressBar         *bool  `yaml:"progress-bar"`
}

// NewSettings returns settings populated with defaults
func NewSettings() *Settings {
	s := &Settings{}
	s.applyDefaults()
	return s
}

// Load reads settings from path. A missing file is only an error when required is set.
func Load(path string, required bool) (*Settings, error) {
	s := NewSettings()
	if path == "" {
		path = DefaultConfigFile
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !required {
			return s, nil
		}
		return nil, errors.Wrapf(err, "read config %s", path)
	}

	loaded := &Settings{}
	if err := yaml.Unmarshal(data, loaded); err != nil {
		return nil, errors.Wrapf(err, "parse config %s", path)
	}
	loaded.applyDefaults()
	if err := loaded.Validate(); err != nil {
		return nil, errors.Wrapf(err, "invalid config %s", path)
	}
	return loaded, nil
}

func (s *Settings) applyDefaults() {
	if s.OutputRoot == "" {
		s.OutputRoot = model.DefaultOutputRoot
	}
	if s.Quality == "" {
		s.Quality = DefaultQuality
	}
	if s.Container == "" {
		s.Container = DefaultContainer
	}
	s.Container = strings.ToLower(s.Container)
	if s.AudioFormat == "" {
		s.AudioFormat = DefaultAudioFormat
	}
	s.AudioFormat = strings.ToLower(s.AudioFormat)
	if s.SubsLangs == "" {
		s.SubsLangs = DefaultSubsLangs
	}
	if s.ConcurrentFragments == 0 {
		s.ConcurrentFragments = DefaultConcurrentFragments
	}
	s.SetConcurrentFragments(s.ConcurrentFragments)
	if s.Retries == nil {
		s.SetRetries(DefaultRetries)
	} else {
		s.SetRetries(*s.Retries)
	}
	if s.SocketTimeoutSec == 0 {
		s.SocketTimeoutSec = DefaultSocketTimeoutSec
	}
	s.SetSocketTimeout(time.Duration(s.SocketTimeoutSec) * time.Second)
	if s.FFmpegPath == "" {
		s.FFmpegPath = DefaultFFmpegPath
	}
	if s.ProgressBar == nil {
		enabled := DefaultProgressBar
		s.ProgressBar = &enabled
	}
}

// Validate checks values that cannot be clamped
func (s *Settings) Validate() error {
	if !format.ValidContainer(s.Container) {
		return errors.Newf("container must be mp4 or mkv, got %q", s.Container)
	}
	if !format.ValidAudioFormat(s.AudioFormat) {
		return errors.Newf("audio-format must be m4a or mp3, got %q", s.AudioFormat)
	}
	if s.RateLimit != "" {
		if _, err := ParseRateLimit(s.RateLimit); err != nil {
			return err
		}
	}
	return nil
}

// GetOutputDir returns the directory used for mode when no --outdir is given
func (s *Settings) GetOutputDir(mode model.Mode) string {
	return mode.OutputDir(s.OutputRoot)
}

// GetRetries returns the retry count for downloads and fragments
func (s *Settings) GetRetries() int {
	if s.Retries == nil {
		return DefaultRetries
	}
	return *s.Retries
}

// SetRetries sets the retry count, clamped to [MinRetries, MaxRetries]
func (s *Settings) SetRetries(n int) {
	n = clamp(n, MinRetries, MaxRetries)
	s.Retries = &n
}

// SetConcurrentFragments sets parallel fragment downloads, clamped to
// [MinConcurrentFragments, MaxConcurrentFragments]
func (s *Settings) SetConcurrentFragments(n int) {
	s.ConcurrentFragments = clamp(n, MinConcurrentFragments, MaxConcurrentFragments)
}

// GetSocketTimeout returns the socket timeout handed to the library
func (s *Settings) GetSocketTimeout() time.Duration {
	return time.Duration(s.SocketTimeoutSec) * time.Second
}

// SetSocketTimeout sets the socket timeout with one second resolution
func (s *Settings) SetSocketTimeout(d time.Duration) {
	s.SocketTimeoutSec = clamp(int(d/time.Second), MinSocketTimeoutSec, MaxSocketTimeoutSec)
}

// ProgressBarEnabled reports whether a progress bar replaces status lines
func (s *Settings) ProgressBarEnabled() bool {
	return s.ProgressBar == nil || *s.ProgressBar
}

func clamp(n, lo, hi int) int {
	if n < lo {
		return lo
	}
	if n > hi {
		return hi
	}
	return n
}
