// Package format builds yt-dlp format selection expressions.
package format

import (
	"fmt"
	"strconv"
	"strings"
)

// Containers supported for video output
const (
	ContainerMP4 = "mp4"
	ContainerMKV = "mkv"
)

// Audio formats supported for audio extraction
const (
	AudioM4A = "m4a"
	AudioMP3 = "mp3"
)

const (
	audioSelector     = "bestaudio/best"
	subtitlesSelector = "best"
)

// NormalizeQuality parses a height ceiling such as "1080", "1080p" or " 720 ".
// ok is false when the value carries no usable height.
func NormalizeQuality(quality string) (height int, ok bool) {
	q := strings.TrimSuffix(strings.ToLower(strings.TrimSpace(quality)), "p")
	h, err := strconv.Atoi(q)
	if err != nil || h <= 0 {
		return 0, false
	}
	return h, true
}

// VideoSelector returns "best video at or below the height ceiling, preferring
// the container, combined with best audio", falling back to progressively
// looser alternatives. A quality without a height leaves the height unbounded.
func VideoSelector(quality, container string) string {
	height := ""
	if h, ok := NormalizeQuality(quality); ok {
		height = fmt.Sprintf("[height<=%d]", h)
	}

	alternatives := make([]string, 0, 4)
	if strings.EqualFold(strings.TrimSpace(container), ContainerMP4) {
		// mp4 muxes h264/av1 with aac without re-encoding
		alternatives = append(alternatives, "bestvideo"+height+"[ext=mp4]+bestaudio[ext=m4a]")
	}
	alternatives = append(alternatives,
		"bestvideo"+height+"+bestaudio",
		"best"+height,
	)
	if height != "" {
		alternatives = append(alternatives, "best")
	}
	return strings.Join(alternatives, "/")
}

// AudioSelector returns the expression used for audio extraction
func AudioSelector() string {
	return audioSelector
}

// SubtitlesSelector returns the expression used when only metadata and
// subtitles are wanted
func SubtitlesSelector() string {
	return subtitlesSelector
}

// ValidContainer reports whether c is a supported output container
func ValidContainer(c string) bool {
	return c == ContainerMP4 || c == ContainerMKV
}

// ValidAudioFormat reports whether f is a supported audio format
func ValidAudioFormat(f string) bool {
	return f == AudioM4A || f == AudioMP3
}
