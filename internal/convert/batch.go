// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
)

// OutcomeKind classifies the result of processing one file.
type OutcomeKind string

const (
	OutcomeSuccess             OutcomeKind = "success"
	OutcomeUnsupported         OutcomeKind = "unsupported"
	OutcomeLegacyUpgradeFailed OutcomeKind = "legacy-upgrade-failed"
	OutcomeError               OutcomeKind = "error"
)

// Outcome is the result of processing one job entry.
type Outcome struct {
	Entry Entry
	Kind  OutcomeKind
	// Message describes the failure for non-success outcomes.
	Message string
	// Bytes is the size of the Markdown written on success.
	Bytes int
}

// BatchResult holds the outcome of a batch conversion run.
type BatchResult struct {
	Converted int
	Skipped   int
	Failed    int
	Outcomes  []Outcome
}

// Total returns the number of files processed.
func (r BatchResult) Total() int {
	return r.Converted + r.Skipped + r.Failed
}

// HasFailures reports whether any file failed conversion.
func (r BatchResult) HasFailures() bool {
	return r.Failed > 0
}

func (r *BatchResult) add(o Outcome) {
	switch o.Kind {
	case OutcomeSuccess:
		r.Converted++
	case OutcomeUnsupported:
		r.Skipped++
	default:
		r.Failed++
	}
	r.Outcomes = append(r.Outcomes, o)
}

// Upgrader turns a legacy spreadsheet into a modern one written beside it and
// returns the new path. On failure it returns "" and an error.
type Upgrader interface {
	Upgrade(path string) (string, error)
}

// Reporter receives human-readable progress and result lines.
type Reporter interface {
	Report(message string)
}

// Progress tracks how many files of a run have been processed.
type Progress interface {
	Start(total int)
	Update(current, total int)
	Reset()
}

// Batch executes a Job one file at a time.
type Batch struct {
	Converter Converter
	Upgrader  Upgrader
	Reporter  Reporter
	Progress  Progress
}

// Run processes every entry of job in order. Per-file failures are reported
// and counted; Run only returns an error when the run itself cannot continue,
// in which case the returned result holds the outcomes produced so far.
func (b *Batch) Run(ctx context.Context, job Job) (BatchResult, error) {
	var result BatchResult

	if err := os.MkdirAll(job.OutputRoot, 0o755); err != nil {
		return result, &FatalRunError{Err: fmt.Errorf("creating output directory %s: %w", job.OutputRoot, err)}
	}

	for _, w := range job.Warnings {
		b.reportf("warning: %s", w)
	}

	total := job.Len()
	progress := b.progress()
	progress.Start(total)
	defer progress.Reset()

	// written maps each destination to the source that produced it.
	written := make(map[string]string, total)

	for i, entry := range job.Entries {
		if err := checkRoot(job.InputRoot); err != nil {
			b.reportf("fatal: %v", err)
			return result, &FatalRunError{Err: err}
		}

		outcome := b.processEntry(ctx, entry, written)
		result.add(outcome)
		progress.Update(i+1, total)
		b.reportOutcome(outcome)
	}

	return result, nil
}

// checkRoot confirms the input root is still an accessible directory.
func checkRoot(root string) error {
	info, err := os.Stat(root)
	if err != nil {
		return fmt.Errorf("input root %s no longer accessible: %w", root, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("input root %s is no longer a directory", root)
	}
	return nil
}

func (b *Batch) processEntry(ctx context.Context, e Entry, written map[string]string) Outcome {
	if !IsSupported(e.Source) {
		return Outcome{Entry: e, Kind: OutcomeUnsupported, Message: "unsupported extension"}
	}

	if err := os.MkdirAll(filepath.Dir(e.Destination), 0o755); err != nil {
		return Outcome{Entry: e, Kind: OutcomeError, Message: err.Error()}
	}

	src := e.Source
	if IsLegacySpreadsheet(src) {
		b.reportf("upgrading legacy spreadsheet: %s", src)
		upgraded, err := b.upgrade(src)
		if err != nil {
			return Outcome{Entry: e, Kind: OutcomeLegacyUpgradeFailed, Message: err.Error()}
		}
		b.reportf("upgraded: %s -> %s", src, upgraded)
		src = upgraded
	}

	md, err := b.Converter.Convert(ctx, src)
	if err != nil {
		if IsUnsupported(err) {
			return Outcome{Entry: e, Kind: OutcomeUnsupported, Message: err.Error()}
		}
		return Outcome{Entry: e, Kind: OutcomeError, Message: err.Error()}
	}

	if prev, ok := written[e.Destination]; ok && prev != e.Source {
		b.reportf("warning: %s overwrites output of %s", e.Source, prev)
	}
	if err := os.WriteFile(e.Destination, []byte(md), 0o644); err != nil {
		return Outcome{Entry: e, Kind: OutcomeError, Message: fmt.Sprintf("writing %s: %v", e.Destination, err)}
	}
	written[e.Destination] = e.Source

	return Outcome{Entry: e, Kind: OutcomeSuccess, Bytes: len(md)}
}

func (b *Batch) upgrade(path string) (string, error) {
	if b.Upgrader == nil {
		return "", fmt.Errorf("%w: no upgrader configured", ErrLegacyUpgrade)
	}
	out, err := b.Upgrader.Upgrade(path)
	if err != nil {
		if !errors.Is(err, ErrLegacyUpgrade) {
			err = fmt.Errorf("%w: %v", ErrLegacyUpgrade, err)
		}
		return "", err
	}
	if out == "" {
		return "", fmt.Errorf("%w: upgrader returned no file", ErrLegacyUpgrade)
	}
	return out, nil
}

func (b *Batch) reportOutcome(o Outcome) {
	src := o.Entry.Source
	switch o.Kind {
	case OutcomeSuccess:
		b.reportf("converted: %s -> %s (%s)", src, o.Entry.Destination, humanize.Bytes(uint64(o.Bytes)))
	case OutcomeUnsupported:
		b.reportf("skipped: %s (%s)", src, o.Message)
	default:
		b.reportf("failed:  %s (%s)", src, o.Message)
	}
}

func (b *Batch) reportf(format string, args ...any) {
	if b.Reporter == nil {
		return
	}
	b.Reporter.Report(fmt.Sprintf(format, args...))
}

func (b *Batch) progress() Progress {
	if b.Progress == nil {
		return nopProgress{}
	}
	return b.Progress
}

type nopProgress struct{}

func (nopProgress) Start(int)       {}
func (nopProgress) Update(int, int) {}
func (nopProgress) Reset()          {}
