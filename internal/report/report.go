// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package report is the single sink for human-readable run events. Every
// event goes through Reporter.Report, which appends the same timestamped
// entry to each configured sink: the in-memory RunLog that backs the live
// display, the persisted log file, and standard output.
package report

import (
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"
)

// Entry is one event line.
type Entry struct {
	Time    time.Time
	Message string
}

// Sink receives every entry reported during a run.
type Sink interface {
	Append(e Entry) error
}

// Reporter fans each message out to a fixed set of sinks.
type Reporter struct {
	sinks  []Sink
	now    func() time.Time
	logger *slog.Logger
}

// NewReporter creates a reporter writing to sinks, in order. The sink set
// cannot change after construction.
func NewReporter(logger *slog.Logger, sinks ...Sink) *Reporter {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Reporter{sinks: sinks, now: time.Now, logger: logger}
}

// Report appends message to every sink. A sink that fails to write is
// logged; the remaining sinks still receive the entry.
func (r *Reporter) Report(message string) {
	e := Entry{Time: r.now(), Message: message}
	for _, s := range r.sinks {
		if err := s.Append(e); err != nil {
			r.logger.Warn("report sink write failed", "sink", fmt.Sprintf("%T", s), "error", err)
		}
	}
}

// Reportf formats according to a format specifier and reports the result.
func (r *Reporter) Reportf(format string, args ...any) {
	r.Report(fmt.Sprintf(format, args...))
}

// RunLog is the in-memory, append-only record of one run. It is safe to
// read from another goroutine (e.g. a display refresh) while a run appends.
type RunLog struct {
	mu      sync.Mutex
	entries []Entry
}

// Append adds e to the log.
func (l *RunLog) Append(e Entry) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, e)
	return nil
}

// Entries returns a copy of the entries recorded so far.
func (l *RunLog) Entries() []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Entry, len(l.entries))
	copy(out, l.entries)
	return out
}

// Lines returns the messages recorded so far.
func (l *RunLog) Lines() []string {
	entries := l.Entries()
	lines := make([]string, len(entries))
	for i, e := range entries {
		lines[i] = e.Message
	}
	return lines
}

// WriterSink writes each message followed by a newline to W.
type WriterSink struct {
	W io.Writer
}

// Append writes e.Message and a newline.
func (s WriterSink) Append(e Entry) error {
	_, err := io.WriteString(s.W, e.Message+"\n")
	return err
}
