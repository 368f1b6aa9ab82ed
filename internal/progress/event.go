package progress

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/lrstanley/go-ytdlp"

	"github.com/ytget/ytdown/internal/model"
)

// Kind classifies a progress event
type Kind int

const (
	KindStarting Kind = iota
	KindDownloading
	KindFinished
	KindPostProcessing
	KindError
)

// String returns a short name for the kind
func (k Kind) String() string {
	switch k {
	case KindStarting:
		return "starting"
	case KindDownloading:
		return "downloading"
	case KindFinished:
		return "finished"
	case KindPostProcessing:
		return "post-processing"
	case KindError:
		return "error"
	default:
		return "unknown"
	}
}

// Event is a library progress callback reduced to what the reporter prints
type Event struct {
	Kind       Kind
	Filename   string
	Title      string
	Downloaded int64
	Total      int64         // 0 if unknown
	Percent    float64       // 0 to 100, -1 if unknown
	Speed      float64       // bytes per second, 0 if unknown
	ETA        time.Duration // -1 if unknown
}

// FromUpdate converts a library progress update observed at now
func FromUpdate(u ytdlp.ProgressUpdate, now time.Time) Event {
	ev := Event{
		Kind:       kindOf(u.Status),
		Filename:   u.Filename,
		Downloaded: int64(u.DownloadedBytes),
		Total:      int64(u.TotalBytes),
		Percent:    -1,
		ETA:        -1,
	}

	if u.Info != nil && u.Info.Title != nil {
		ev.Title = *u.Info.Title
	}

	if ev.Total > 0 {
		ev.Percent = float64(ev.Downloaded) / float64(ev.Total) * 100
		if ev.Percent > 100 {
			ev.Percent = 100
		}
	}

	if !u.Started.IsZero() {
		if elapsed := now.Sub(u.Started).Seconds(); elapsed > 0 && ev.Downloaded > 0 {
			ev.Speed = float64(ev.Downloaded) / elapsed
		}
	}

	if ev.Speed > 0 && ev.Total > ev.Downloaded {
		remaining := float64(ev.Total-ev.Downloaded) / ev.Speed
		ev.ETA = time.Duration(remaining * float64(time.Second))
	}

	return ev
}

func kindOf(status ytdlp.ProgressStatus) Kind {
	switch status {
	case ytdlp.ProgressStatusDownloading:
		return KindDownloading
	case ytdlp.ProgressStatusFinished:
		return KindFinished
	case ytdlp.ProgressStatusPostProcessing:
		return KindPostProcessing
	case ytdlp.ProgressStatusError:
		return KindError
	default:
		return KindStarting
	}
}

// PercentString renders the percentage, or the downloaded size when the total is unknown
func (e Event) PercentString() string {
	if e.Percent < 0 {
		return humanize.Bytes(uint64(max(e.Downloaded, 0)))
	}
	return fmt.Sprintf("%.1f%%", e.Percent)
}

// SpeedString renders the speed as "1.2 MB/s"
func (e Event) SpeedString() string {
	if e.Speed <= 0 {
		return "—"
	}
	return humanize.Bytes(uint64(e.Speed)) + "/s"
}

// ETASeconds returns the ETA in whole seconds, -1 if unknown
func (e Event) ETASeconds() int {
	if e.ETA < 0 {
		return -1
	}
	return int(e.ETA.Round(time.Second).Seconds())
}

// Line renders a downloading event as a status line
func (e Event) Line() string {
	return fmt.Sprintf("Downloading %s | %s | ETA: %s", e.PercentString(), e.SpeedString(), model.FormatClock(e.ETASeconds()))
}
