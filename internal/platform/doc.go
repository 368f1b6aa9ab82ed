package platform

// Package platform contains OS integration and external tooling glue:
// filesystem helpers, discovery and installation of yt-dlp and ffmpeg, and the
// playlist preview.
