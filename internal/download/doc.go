package download

// Package download implements the retrieval pipeline built on top of yt-dlp
// (via github.com/lrstanley/go-ytdlp). It turns a mode and user options into a
// library configuration record, dispatches the invocation and keeps the task
// record current.
