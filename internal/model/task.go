package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// TaskIDPrefix prefixes every generated task ID
const TaskIDPrefix = "ytdown-"

// DownloadTask records a single invocation of the retrieval library
type DownloadTask struct {
	ID         string
	URL        string
	Mode       Mode
	Status     TaskStatus
	Progress   float64   // 0.0 to 1.0
	Percent    int       // 0 to 100
	Speed      string    // human readable speed (e.g., "1.2 MB/s")
	ETASec     int       // ETA in seconds, -1 if unknown
	LastError  string    // last error message if any
	OutputPath string    // path to downloaded file
	OutputDir  string    // directory handed to the library
	StartedAt  time.Time // when the task was created
	FinishedAt time.Time // when the task finished
	Title      string    // video title
	Media      *MediaInfo
}

// NewDownloadTask creates a pending task for url in the given mode
func NewDownloadTask(url string, mode Mode) *DownloadTask {
	return &DownloadTask{
		ID:        generateTaskID(),
		URL:       url,
		Mode:      mode,
		Status:    TaskStatusPending,
		ETASec:    -1,
		StartedAt: time.Now(),
	}
}

// Complete marks the task as successfully finished
func (dt *DownloadTask) Complete() {
	dt.Status = TaskStatusCompleted
	dt.Progress = 1.0
	dt.Percent = 100
	dt.ETASec = -1
	dt.FinishedAt = time.Now()
}

// Fail marks the task as failed with err
func (dt *DownloadTask) Fail(err error) {
	dt.Status = TaskStatusError
	if err != nil {
		dt.LastError = err.Error()
	}
	dt.FinishedAt = time.Now()
}

// Elapsed returns how long the task ran, or has been running so far
func (dt *DownloadTask) Elapsed() time.Duration {
	if dt.StartedAt.IsZero() {
		return 0
	}
	if dt.FinishedAt.IsZero() {
		return time.Since(dt.StartedAt)
	}
	return dt.FinishedAt.Sub(dt.StartedAt)
}

// GetETAString returns ETA formatted as hh:mm:ss, or "—" if unknown
func (dt *DownloadTask) GetETAString() string {
	return FormatClock(dt.ETASec)
}

// GetDisplayTitle returns title, filename, or URL in order of preference
func (dt *DownloadTask) GetDisplayTitle() string {
	// First priority: video title (non-URL)
	if dt.Title != "" && !strings.HasPrefix(dt.Title, "http") {
		return dt.Title
	}

	// Second priority: filename from OutputPath
	if dt.OutputPath != "" {
		// support both / and \ separators
		parts := strings.FieldsFunc(dt.OutputPath, func(r rune) bool {
			return r == '/' || r == '\\'
		})
		if len(parts) > 0 {
			filename := parts[len(parts)-1]
			if idx := strings.LastIndex(filename, "."); idx > 0 {
				filename = filename[:idx]
			}
			return filename
		}
	}

	return dt.URL
}

// FormatClock formats seconds as mm:ss or hh:mm:ss, "—" when unknown
func FormatClock(totalSec int) string {
	if totalSec <= 0 {
		return "—"
	}

	hours := totalSec / 3600
	minutes := (totalSec % 3600) / 60
	seconds := totalSec % 60

	if hours > 0 {
		return fmt.Sprintf("%02d:%02d:%02d", hours, minutes, seconds)
	}
	return fmt.Sprintf("%02d:%02d", minutes, seconds)
}

// generateTaskID generates a unique task ID using UUID v7 so IDs sort by creation time
func generateTaskID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return fmt.Sprintf(TaskIDPrefix+"%d", time.Now().UnixNano())
	}
	return TaskIDPrefix + id.String()
}
