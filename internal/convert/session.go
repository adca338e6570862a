// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/pdiddy/mdconvert/internal/notify"
)

// Request is what the user chose for one run.
type Request struct {
	InputDir  string
	OutputDir string
	UseLLM    bool
	APIKey    string
}

// Validate checks a request before anything is touched. Errors wrap one of
// ErrInvalidInputDirectory, ErrMissingOutputDirectory or ErrMissingCredential.
func Validate(req Request) error {
	if strings.TrimSpace(req.InputDir) == "" {
		return fmt.Errorf("%w: no input directory given", ErrInvalidInputDirectory)
	}
	info, err := os.Stat(req.InputDir)
	if err != nil {
		return fmt.Errorf("%w: %s does not exist", ErrInvalidInputDirectory, req.InputDir)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: %s is not a directory", ErrInvalidInputDirectory, req.InputDir)
	}
	if strings.TrimSpace(req.OutputDir) == "" {
		return ErrMissingOutputDirectory
	}
	if req.UseLLM && strings.TrimSpace(req.APIKey) == "" {
		return ErrMissingCredential
	}
	return nil
}

// AdapterFactory builds the Converter for a validated request.
type AdapterFactory func(ctx context.Context, req Request) (Converter, error)

// Session runs one request end to end: validation, converter setup, the
// batch itself, the summary, and the completion notification.
type Session struct {
	Factory  AdapterFactory
	Upgrader Upgrader
	Reporter Reporter
	Progress Progress
	Notifier notify.Notifier
}

// Execute performs the run described by req. Validation and converter
// setup failures return before any file is processed. Per-file failures are
// only counted in the result; a non-nil error means the run did not finish.
func (s *Session) Execute(ctx context.Context, req Request) (BatchResult, error) {
	if err := Validate(req); err != nil {
		return BatchResult{}, s.abort(err)
	}

	conv, err := s.Factory(ctx, req)
	if err != nil {
		return BatchResult{}, s.abort(fmt.Errorf("%w: %v", ErrAdapterInit, err))
	}
	if req.UseLLM {
		s.reportf("LLM captioning enabled")
	} else {
		s.reportf("converting without LLM captioning")
	}

	s.reportf("conversion started: %s -> %s", req.InputDir, req.OutputDir)
	job, err := PlanJob(req.InputDir, req.OutputDir)
	if err != nil {
		return BatchResult{}, s.abort(err)
	}
	s.reportf("found %d file(s)", job.Len())

	batch := &Batch{
		Converter: conv,
		Upgrader:  s.Upgrader,
		Reporter:  s.Reporter,
		Progress:  s.Progress,
	}
	result, runErr := batch.Run(ctx, job)

	s.reportf("Batch summary: %d converted, %d skipped, %d failed (total: %d)",
		result.Converted, result.Skipped, result.Failed, result.Total())

	if runErr != nil {
		s.reportf("conversion aborted: %v", runErr)
		s.notify(notify.NotifyError, "Conversion aborted", runErr.Error())
		return result, runErr
	}

	s.reportf("all files processed")
	s.notify(notify.NotifySuccess, "Conversion finished",
		fmt.Sprintf("%d converted, %d skipped, %d failed", result.Converted, result.Skipped, result.Failed))
	return result, nil
}

// abort reports err as the single error line of the run and notifies.
func (s *Session) abort(err error) error {
	s.reportf("error: %v", err)
	s.notify(notify.NotifyError, "Conversion failed", err.Error())
	return err
}

func (s *Session) reportf(format string, args ...any) {
	if s.Reporter == nil {
		return
	}
	s.Reporter.Report(fmt.Sprintf(format, args...))
}

func (s *Session) notify(kind notify.NotificationType, title, message string) {
	if s.Notifier == nil {
		return
	}
	// Notification failures never change the run result.
	_ = s.Notifier.Send(notify.Notification{Title: title, Message: message, Type: kind})
}
