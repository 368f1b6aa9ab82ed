// Package logging provides the leveled, colour-aware logger used by the CLI.
package logging

import (
	"fmt"
	"io"
	"log"
	"strings"
	"sync"

	"github.com/fatih/color"
)

// Level represents the logging level
type Level int

const (
	DEBUG Level = iota
	INFO
	WARN
	ERROR
)

var levelNames = map[Level]string{
	DEBUG: "DEBUG",
	INFO:  "INFO",
	WARN:  "WARN",
	ERROR: "ERROR",
}

var levelColors = map[Level]*color.Color{
	DEBUG: color.New(color.FgHiBlack),
	INFO:  color.New(color.FgCyan),
	WARN:  color.New(color.FgYellow),
	ERROR: color.New(color.FgRed, color.Bold),
}

// String returns the level name
func (l Level) String() string {
	if name, ok := levelNames[l]; ok {
		return name
	}
	return fmt.Sprintf("LEVEL(%d)", int(l))
}

// ParseLevel converts a level name into a Level, defaulting to INFO
func ParseLevel(s string) Level {
	for level, name := range levelNames {
		if strings.EqualFold(strings.TrimSpace(s), name) {
			return level
		}
	}
	return INFO
}

// Logger writes leveled messages through a standard library logger
type Logger struct {
	mu    sync.Mutex
	out   *log.Logger
	level Level
	tags  bool
}

// New creates a logger writing to w that drops messages below level
func New(w io.Writer, level Level) *Logger {
	return &Logger{
		out:   log.New(w, "", 0),
		level: level,
	}
}

// ForQuiet returns WARN when quiet is set and INFO otherwise
func ForQuiet(quiet bool) Level {
	if quiet {
		return WARN
	}
	return INFO
}

// SetLevel changes the threshold
func (l *Logger) SetLevel(level Level) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.level = level
}

// Level returns the current threshold
func (l *Logger) Level() Level {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.level
}

// WithTags prefixes every line with its level name
func (l *Logger) WithTags(enabled bool) *Logger {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.tags = enabled
	return l
}

// Enabled reports whether messages at level are written
func (l *Logger) Enabled(level Level) bool {
	return level >= l.Level()
}

func (l *Logger) logf(level Level, format string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if level < l.level {
		return
	}

	msg := fmt.Sprintf(format, args...)
	if l.tags {
		msg = levelColors[level].Sprintf("[%s]", level) + " " + msg
	} else if level >= WARN {
		msg = levelColors[level].Sprint(msg)
	}
	l.out.Print(msg)
}

// Debugf logs at DEBUG
func (l *Logger) Debugf(format string, args ...any) { l.logf(DEBUG, format, args...) }

// Infof logs at INFO
func (l *Logger) Infof(format string, args ...any) { l.logf(INFO, format, args...) }

// Warnf logs at WARN
func (l *Logger) Warnf(format string, args ...any) { l.logf(WARN, format, args...) }

// Errorf logs at ERROR
func (l *Logger) Errorf(format string, args ...any) { l.logf(ERROR, format, args...) }

// Discard returns a logger that writes nothing
func Discard() *Logger {
	return New(io.Discard, ERROR+1)
}
