// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package report

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// DefaultLogDir is the directory, relative to the working directory, that
// holds run log files.
const DefaultLogDir = "logs"

const (
	logFilePrefix  = "conversion_log_"
	logFileStamp   = "20060102_150405"
	logHeaderTitle = "Markdown conversion log"
	logHeaderRule  = "======================="
)

// LogFileName returns the log file name for a run started at start.
func LogFileName(start time.Time) string {
	return logFilePrefix + start.Format(logFileStamp) + ".txt"
}

// LogFile is the persisted copy of a run's events. It is append-only.
type LogFile struct {
	f    *os.File
	path string
}

// CreateLogFile creates dir (if needed) and a new log file named after
// start, then writes the two-line header.
func CreateLogFile(dir string, start time.Time) (*LogFile, error) {
	if dir == "" {
		dir = DefaultLogDir
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating log directory %s: %w", dir, err)
	}

	f, path, err := createUnique(dir, LogFileName(start))
	if err != nil {
		return nil, err
	}
	if _, err := fmt.Fprintf(f, "%s\n%s\n", logHeaderTitle, logHeaderRule); err != nil {
		f.Close()
		return nil, fmt.Errorf("writing log header to %s: %w", path, err)
	}
	return &LogFile{f: f, path: path}, nil
}

// maxLogFileAttempts bounds the numbered suffixes tried for one timestamp.
const maxLogFileAttempts = 100

// createUnique creates name in dir, or name with a _2, _3, ... suffix
// when an earlier run in the same second already holds it.
func createUnique(dir, name string) (*os.File, string, error) {
	ext := filepath.Ext(name)
	base := strings.TrimSuffix(name, ext)
	for i := 1; i <= maxLogFileAttempts; i++ {
		candidate := name
		if i > 1 {
			candidate = fmt.Sprintf("%s_%d%s", base, i, ext)
		}
		path := filepath.Join(dir, candidate)
		f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
		if err == nil {
			return f, path, nil
		}
		if !errors.Is(err, fs.ErrExist) {
			return nil, "", fmt.Errorf("creating log file %s: %w", path, err)
		}
	}
	return nil, "", fmt.Errorf("creating log file %s: too many runs in the same second", filepath.Join(dir, name))
}

// Path returns the file's location.
func (l *LogFile) Path() string { return l.path }

// Append writes e.Message and a newline.
func (l *LogFile) Append(e Entry) error {
	_, err := l.f.WriteString(e.Message + "\n")
	return err
}

// Close flushes and closes the file.
func (l *LogFile) Close() error {
	return l.f.Close()
}
