// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import "errors"

// Validation errors abort a run before any file is processed.
var (
	ErrInvalidInputDirectory  = errors.New("invalid input directory")
	ErrMissingOutputDirectory = errors.New("output directory not specified")
	ErrMissingCredential      = errors.New("LLM captioning enabled but no API key supplied")
	ErrAdapterInit            = errors.New("converter initialisation failed")
)

// Per-file errors are reported and skipped.
var (
	ErrUnsupportedFormat = errors.New("unsupported format")
	ErrLegacyUpgrade     = errors.New("legacy spreadsheet upgrade failed")
)

// FatalRunError aborts the remainder of a batch, e.g. when the input root
// disappears mid-walk. Outcomes already produced are kept.
type FatalRunError struct {
	Err error
}

func (e *FatalRunError) Error() string { return "fatal run error: " + e.Err.Error() }

func (e *FatalRunError) Unwrap() error { return e.Err }

// IsFatal reports whether err aborts the whole run.
func IsFatal(err error) bool {
	var f *FatalRunError
	return errors.As(err, &f)
}
