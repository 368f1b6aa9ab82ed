package model

import (
	"strconv"
	"strings"
	"time"
)

// MediaInfo describes the streams of a finished download as reported by ffprobe
type MediaInfo struct {
	Container  string
	VideoCodec string
	AudioCodec string
	Width      int
	Height     int
	Duration   time.Duration
	Size       int64
}

// HasVideo reports whether a video stream was found
func (m *MediaInfo) HasVideo() bool {
	return m.VideoCodec != ""
}

// HasAudio reports whether an audio stream was found
func (m *MediaInfo) HasAudio() bool {
	return m.AudioCodec != ""
}

// Summary renders codecs, height and duration, e.g. "h264/aac, 1080p, 03:21"
func (m *MediaInfo) Summary() string {
	var codecs []string
	if m.HasVideo() {
		codecs = append(codecs, m.VideoCodec)
	}
	if m.HasAudio() {
		codecs = append(codecs, m.AudioCodec)
	}

	var parts []string
	if len(codecs) > 0 {
		parts = append(parts, strings.Join(codecs, "/"))
	}
	if m.Height > 0 {
		parts = append(parts, strconv.Itoa(m.Height)+"p")
	}
	if m.Duration > 0 {
		parts = append(parts, FormatClock(int(m.Duration.Round(time.Second).Seconds())))
	}
	return strings.Join(parts, ", ")
}
