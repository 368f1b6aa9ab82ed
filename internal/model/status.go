package model

// TaskStatus represents the status of a download task
type TaskStatus string

const (
	// TaskStatusPending means the task is built but the library was not invoked yet
	TaskStatusPending TaskStatus = "Pending"

	// TaskStatusStarting means yt-dlp is resolving metadata
	TaskStatusStarting TaskStatus = "Starting"

	// TaskStatusDownloading means media bytes are being transferred
	TaskStatusDownloading TaskStatus = "Downloading"

	// TaskStatusPostProcessing means ffmpeg is muxing, remuxing or extracting audio
	TaskStatusPostProcessing TaskStatus = "PostProcessing"

	// TaskStatusCompleted means the task finished successfully
	TaskStatusCompleted TaskStatus = "Completed"

	// TaskStatusError means the task failed with an error
	TaskStatusError TaskStatus = "Error"
)

// String returns the string representation of TaskStatus
func (ts TaskStatus) String() string {
	return string(ts)
}

// IsActive returns true if the task is in an active state
func (ts TaskStatus) IsActive() bool {
	return ts == TaskStatusStarting || ts == TaskStatusDownloading || ts == TaskStatusPostProcessing
}

// IsFinished returns true if the task is in a finished state (completed or error)
func (ts TaskStatus) IsFinished() bool {
	return ts == TaskStatusCompleted || ts == TaskStatusError
}
