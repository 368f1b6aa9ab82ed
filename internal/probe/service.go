// Package probe inspects finished downloads with ffprobe.
package probe

import (
	"context"
	"encoding/json"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/ytget/ytdown/internal/model"
)

// FFprobe settings
const (
	FFprobeCommand      = "ffprobe"
	FFprobeLogLevel     = "quiet"
	FFprobeOutputFormat = "json"
	DefaultTimeout      = 15 * time.Second
)

// Service runs ffprobe against local files
type Service struct {
	ffprobe string
	timeout time.Duration
	output  func(ctx context.Context, name string, args ...string) ([]byte, error)
}

// NewService creates a probe using the given ffprobe executable
func NewService(ffprobePath string) *Service {
	if ffprobePath == "" {
		ffprobePath = FFprobeCommand
	}
	return &Service{
		ffprobe: ffprobePath,
		timeout: DefaultTimeout,
		output:  commandOutput,
	}
}

// BuildArgs builds the ffprobe command arguments
func (s *Service) BuildArgs(path string) []string {
	return []string{
		"-v", FFprobeLogLevel,
		"-print_format", FFprobeOutputFormat,
		"-show_streams",
		"-show_format",
		path,
	}
}

// Probe returns stream information for path
func (s *Service) Probe(ctx context.Context, path string) (*model.MediaInfo, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	out, err := s.output(ctx, s.ffprobe, s.BuildArgs(path)...)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to run ffprobe on %s", path)
	}

	info, err := Parse(out)
	if err != nil {
		return nil, err
	}
	if ext := strings.TrimPrefix(filepath.Ext(path), "."); ext != "" {
		info.Container = strings.ToLower(ext)
	}
	return info, nil
}

type ffprobeOutput struct {
	Streams []ffprobeStream `json:"streams"`
	Format  ffprobeFormat   `json:"format"`
}

type ffprobeStream struct {
	CodecType string `json:"codec_type"`
	CodecName string `json:"codec_name"`
	Width     int    `json:"width"`
	Height    int    `json:"height"`
}

type ffprobeFormat struct {
	FormatName string `json:"format_name"`
	Duration   string `json:"duration"`
	Size       string `json:"size"`
}

// Parse decodes ffprobe JSON output. The first video and audio streams win.
func Parse(data []byte) (*model.MediaInfo, error) {
	var result ffprobeOutput
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, errors.Wrap(err, "failed to parse ffprobe output")
	}

	info := &model.MediaInfo{}
	for _, st := range result.Streams {
		switch strings.ToLower(st.CodecType) {
		case "video":
			if info.VideoCodec == "" {
				info.VideoCodec = st.CodecName
				info.Width = st.Width
				info.Height = st.Height
			}
		case "audio":
			if info.AudioCodec == "" {
				info.AudioCodec = st.CodecName
			}
		}
	}

	if name, _, _ := strings.Cut(result.Format.FormatName, ","); name != "" {
		info.Container = name
	}
	if secs, err := strconv.ParseFloat(result.Format.Duration, 64); err == nil && secs > 0 {
		info.Duration = time.Duration(secs * float64(time.Second))
	}
	if size, err := strconv.ParseInt(result.Format.Size, 10, 64); err == nil {
		info.Size = size
	}

	if !info.HasVideo() && !info.HasAudio() {
		return nil, errors.New("no audio or video streams found")
	}
	return info, nil
}

func commandOutput(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).Output()
}
