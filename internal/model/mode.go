package model

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Mode selects what is retrieved for a URL
type Mode string

const (
	ModeVideo     Mode = "video"
	ModeAudio     Mode = "audio"
	ModePlaylist  Mode = "playlist"
	ModeSubtitles Mode = "subs"
)

// DefaultOutputRoot is the parent of the per-mode output directories
const DefaultOutputRoot = "downloads"

// Modes returns every supported mode in flag order
func Modes() []Mode {
	return []Mode{ModeVideo, ModeAudio, ModePlaylist, ModeSubtitles}
}

// ParseMode converts a user supplied value into a Mode
func ParseMode(s string) (Mode, error) {
	m := Mode(strings.ToLower(strings.TrimSpace(s)))
	if !m.Valid() {
		return "", fmt.Errorf("unknown operation type %q", s)
	}
	return m, nil
}

// String returns the string representation of Mode
func (m Mode) String() string {
	return string(m)
}

// Valid reports whether m is one of the supported modes
func (m Mode) Valid() bool {
	for _, known := range Modes() {
		if m == known {
			return true
		}
	}
	return false
}

// NeedsFFmpeg reports whether the mode post-processes media with ffmpeg.
// Subtitles are written as sidecar files and do not.
func (m Mode) NeedsFFmpeg() bool {
	return m == ModeVideo || m == ModeAudio || m == ModePlaylist
}

// OutputDir returns the directory used when --outdir is not given
func (m Mode) OutputDir(root string) string {
	if root == "" {
		root = DefaultOutputRoot
	}
	return filepath.Join(root, string(m))
}
