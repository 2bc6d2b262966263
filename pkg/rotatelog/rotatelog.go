// Package rotatelog implements the append-only daemon log file. The file is
// size bounded: once it grows past a threshold it is cut down to its most
// recent lines before the next write.
package rotatelog

import (
	"fmt"
	"os"
	"strings"
	"sync"
	"time"
)

const (
	// DefaultMaxSize is the size at which the log is rotated.
	DefaultMaxSize int64 = 5 << 20
	// DefaultKeepLines is the number of lines kept after a rotation.
	DefaultKeepLines = 1000
	// TimeFormat is the timestamp layout prefixed to every line.
	TimeFormat = "2006-01-02 15:04:05"
)

// Logger appends timestamped lines to a single file. It never reports
// errors: a log that cannot be written must not stop the caller.
type Logger struct {
	path      string
	maxSize   int64
	keepLines int
	now       func() time.Time
	mu        sync.Mutex
}

// New returns a Logger with the default rotation limits.
func New(path string) *Logger {
	return NewWithLimits(path, DefaultMaxSize, DefaultKeepLines)
}

// NewWithLimits returns a Logger that rotates at maxSize bytes down to
// keepLines lines.
func NewWithLimits(path string, maxSize int64, keepLines int) *Logger {
	return &Logger{
		path:      path,
		maxSize:   maxSize,
		keepLines: keepLines,
		now:       time.Now,
	}
}

// Path returns the log file path.
func (l *Logger) Path() string {
	return l.path
}

// Append writes message as a single "[YYYY-MM-DD HH:MM:SS] message" line.
func (l *Logger) Append(message string) {
	_, _ = l.Write([]byte(l.stamp(message)))
}

// Write appends p verbatim, rotating first if needed. It always reports
// success so it can be used as a logrus output.
func (l *Logger) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.rotateIfNeeded()
	l.appendRaw(p)

	return len(p), nil
}

func (l *Logger) stamp(message string) string {
	return fmt.Sprintf("[%s] %s\n", l.now().Format(TimeFormat), message)
}

func (l *Logger) appendRaw(p []byte) {
	f, err := os.OpenFile(l.path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0644)
	if err != nil {
		return
	}
	_, _ = f.Write(p)
	_ = f.Close()
}

func (l *Logger) rotateIfNeeded() {
	fi, err := os.Stat(l.path)
	if err != nil || fi.Size() < l.maxSize {
		return
	}

	if err := l.keepLastLines(); err != nil {
		return
	}

	l.appendRaw([]byte(l.stamp(fmt.Sprintf("log rotated: reached %d bytes, kept last %d lines", fi.Size(), l.keepLines))))
}

// keepLastLines rewrites the file with only its last keepLines lines.
func (l *Logger) keepLastLines() error {
	b, err := os.ReadFile(l.path)
	if err != nil {
		return err
	}

	lines := strings.Split(strings.TrimRight(string(b), "\n"), "\n")
	if len(lines) > l.keepLines {
		lines = lines[len(lines)-l.keepLines:]
	}

	tmpFile := l.path + ".tmp"
	if err := os.WriteFile(tmpFile, []byte(strings.Join(lines, "\n")+"\n"), 0644); err != nil {
		return err
	}

	return os.Rename(tmpFile, l.path)
}
