// Package progress turns retrieval library callbacks into status lines, an
// optional progress bar and task record updates.
package progress

import (
	"io"
	"sync"
	"time"

	"github.com/lrstanley/go-ytdlp"
	"github.com/schollz/progressbar/v3"

	"github.com/ytget/ytdown/internal/logging"
	"github.com/ytget/ytdown/internal/model"
)

// UpdateInterval is how often the library is asked to report progress
const UpdateInterval = 500 * time.Millisecond

// Reporter prints progress for a single invocation. Callbacks may arrive
// from a library goroutine.
type Reporter struct {
	mu     sync.Mutex
	log    *logging.Logger
	out    io.Writer
	quiet  bool
	useBar bool
	now    func() time.Time

	task     *model.DownloadTask
	bar      *progressbar.ProgressBar
	barFile  string
	lastPost string
}

// NewReporter creates a reporter printing lines through log. The progress
// bar, when enabled, is drawn on out.
func NewReporter(log *logging.Logger, out io.Writer) *Reporter {
	if log == nil {
		log = logging.Discard()
	}
	if out == nil {
		out = io.Discard
	}
	return &Reporter{
		log: log,
		out: out,
		now: time.Now,
	}
}

// SetQuiet suppresses every line and the bar
func (r *Reporter) SetQuiet(quiet bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.quiet = quiet
}

// EnableBar replaces the downloading lines with a progress bar
func (r *Reporter) EnableBar(enabled bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.useBar = enabled
}

// Track makes the reporter keep task's progress fields current
func (r *Reporter) Track(task *model.DownloadTask) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.task = task
}

// Handle is the library progress callback
func (r *Reporter) Handle(update ytdlp.ProgressUpdate) {
	r.Report(FromUpdate(update, r.now()))
}

// Report records ev on the tracked task and prints it
func (r *Reporter) Report(ev Event) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.updateTask(ev)
	if r.quiet {
		return
	}

	switch ev.Kind {
	case KindStarting:
		r.log.Debugf("Starting: %s", ev.Filename)
	case KindDownloading:
		if r.useBar {
			r.drawBar(ev)
			return
		}
		r.log.Infof("%s", ev.Line())
	case KindFinished:
		r.finishBar()
		r.log.Infof("Download finished: %s", ev.Filename)
	case KindPostProcessing:
		r.finishBar()
		if ev.Filename == r.lastPost {
			return
		}
		r.lastPost = ev.Filename
		r.log.Infof("Post-processing: %s", ev.Filename)
	case KindError:
		r.finishBar()
		r.log.Debugf("Library reported an error for %s", ev.Filename)
	}
}

// Close finishes a bar left open by an interrupted download
func (r *Reporter) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.finishBar()
}

func (r *Reporter) updateTask(ev Event) {
	task := r.task
	if task == nil {
		return
	}

	if ev.Title != "" && task.Title == "" {
		task.Title = ev.Title
	}

	switch ev.Kind {
	case KindStarting:
		task.Status = model.TaskStatusStarting
	case KindDownloading:
		task.Status = model.TaskStatusDownloading
		if ev.Percent >= 0 {
			task.Percent = int(ev.Percent)
			task.Progress = ev.Percent / 100
		}
		task.Speed = ev.SpeedString()
		task.ETASec = ev.ETASeconds()
	case KindFinished:
		task.Percent = 100
		task.Progress = 1
		task.ETASec = -1
		if ev.Filename != "" {
			task.OutputPath = ev.Filename
		}
	case KindPostProcessing:
		task.Status = model.TaskStatusPostProcessing
		if ev.Filename != "" {
			task.OutputPath = ev.Filename
		}
	}
}

func (r *Reporter) drawBar(ev Event) {
	total := ev.Total
	if total <= 0 {
		total = -1
	}

	if r.bar == nil || r.barFile != ev.Filename {
		r.finishBar()
		r.bar = progressbar.NewOptions64(total,
			progressbar.OptionSetWriter(r.out),
			progressbar.OptionShowBytes(true),
			progressbar.OptionSetWidth(30),
			progressbar.OptionThrottle(100*time.Millisecond),
			progressbar.OptionSetDescription("Downloading"),
			progressbar.OptionClearOnFinish(),
		)
		r.barFile = ev.Filename
	} else if total > 0 && r.bar.GetMax64() != total {
		r.bar.ChangeMax64(total)
	}

	_ = r.bar.Set64(ev.Downloaded)
}

func (r *Reporter) finishBar() {
	if r.bar == nil {
		return
	}
	_ = r.bar.Finish()
	r.bar = nil
	r.barFile = ""
}
