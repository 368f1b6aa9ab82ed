package model

import (
	"path/filepath"
	"testing"
)

func TestParseMode(t *testing.T) {
	tests := []struct {
		input    string
		expected Mode
		wantErr  bool
	}{
		{"video", ModeVideo, false},
		{"audio", ModeAudio, false},
		{"playlist", ModePlaylist, false},
		{"subs", ModeSubtitles, false},
		{" Video ", ModeVideo, false},
		{"subtitles", "", true},
		{"", "", true},
	}

	for _, test := range tests {
		result, err := ParseMode(test.input)
		if test.wantErr {
			if err == nil {
				t.Errorf("ParseMode(%q) expected error, got %s", test.input, result)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseMode(%q) unexpected error: %v", test.input, err)
			continue
		}
		if result != test.expected {
			t.Errorf("ParseMode(%q) = %s, expected %s", test.input, result, test.expected)
		}
	}
}

func TestMode_NeedsFFmpeg(t *testing.T) {
	tests := []struct {
		mode     Mode
		expected bool
	}{
		{ModeVideo, true},
		{ModeAudio, true},
		{ModePlaylist, true},
		{ModeSubtitles, false},
	}

	for _, test := range tests {
		if got := test.mode.NeedsFFmpeg(); got != test.expected {
			t.Errorf("Mode(%s).NeedsFFmpeg() = %v, expected %v", test.mode, got, test.expected)
		}
	}
}

func TestMode_OutputDir(t *testing.T) {
	tests := []struct {
		mode     Mode
		root     string
		expected string
	}{
		{ModeVideo, "", filepath.Join("downloads", "video")},
		{ModeAudio, "", filepath.Join("downloads", "audio")},
		{ModePlaylist, "", filepath.Join("downloads", "playlist")},
		{ModeSubtitles, "", filepath.Join("downloads", "subs")},
		{ModeVideo, "/data/media", filepath.Join("/data/media", "video")},
	}

	for _, test := range tests {
		if got := test.mode.OutputDir(test.root); got != test.expected {
			t.Errorf("Mode(%s).OutputDir(%q) = %s, expected %s", test.mode, test.root, got, test.expected)
		}
	}
}
