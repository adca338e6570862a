// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package report

import (
	"fmt"
	"io"
	"strings"
)

const barWidth = 30

// TerminalProgress draws a single-line progress bar on a terminal writer,
// usually stderr, redrawing it in place after every file.
type TerminalProgress struct {
	w     io.Writer
	label string
	drawn bool

	current, total int
}

// NewTerminalProgress returns a progress bar writing to w.
func NewTerminalProgress(w io.Writer, label string) *TerminalProgress {
	return &TerminalProgress{w: w, label: label}
}

// Start draws an empty bar for total files.
func (p *TerminalProgress) Start(total int) {
	p.Update(0, total)
}

// Update redraws the bar at current/total.
func (p *TerminalProgress) Update(current, total int) {
	filled := 0
	if total > 0 {
		filled = current * barWidth / total
	}
	bar := strings.Repeat("#", filled) + strings.Repeat(".", barWidth-filled)
	fmt.Fprintf(p.w, "\r%s [%s] %d/%d", p.label, bar, current, total)
	p.current, p.total = current, total
	p.drawn = true
}

// Reset clears the bar line.
func (p *TerminalProgress) Reset() {
	if !p.drawn {
		return
	}
	p.erase()
	p.drawn = false
}

func (p *TerminalProgress) erase() {
	fmt.Fprintf(p.w, "\r%s\r", strings.Repeat(" ", len(p.label)+barWidth+24))
}

// Guard wraps s so that the bar is erased before each entry is written and
// redrawn afterwards. Use it for sinks that share the bar's terminal.
func (p *TerminalProgress) Guard(s Sink) Sink {
	return guardedSink{progress: p, next: s}
}

type guardedSink struct {
	progress *TerminalProgress
	next     Sink
}

func (g guardedSink) Append(e Entry) error {
	p := g.progress
	if !p.drawn {
		return g.next.Append(e)
	}
	p.erase()
	err := g.next.Append(e)
	p.Update(p.current, p.total)
	return err
}

// Counter records progress without drawing anything. It is useful for
// non-interactive runs and tests.
type Counter struct {
	Current int
	Total   int
	// Updates counts calls to Update since Start.
	Updates int
	// Last is the most recent current value; Reset keeps it.
	Last int
}

// Start records total and zeroes the counter.
func (c *Counter) Start(total int) {
	c.Current, c.Total, c.Updates, c.Last = 0, total, 0, 0
}

// Update records current and total.
func (c *Counter) Update(current, total int) {
	c.Current, c.Total, c.Last = current, total, current
	c.Updates++
}

// Reset returns the counter to its empty state.
func (c *Counter) Reset() {
	c.Current, c.Total = 0, 0
}
