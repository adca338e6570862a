// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package convert walks an input tree and converts every supported document
// to Markdown under a mirrored output tree. Conversion itself is delegated to
// a pluggable Converter backend (markitdown container, markitdown binary, or
// in-process Go libraries).
package convert

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Converter transforms a document into Markdown text. Backends that do not
// understand a file's format return an error wrapping ErrUnsupportedFormat.
type Converter interface {
	// Convert reads the document at path and returns the Markdown content.
	Convert(ctx context.Context, path string) (string, error)
}

// ConverterFunc adapts a function to the Converter interface.
type ConverterFunc func(ctx context.Context, path string) (string, error)

// Convert calls f(ctx, path).
func (f ConverterFunc) Convert(ctx context.Context, path string) (string, error) {
	return f(ctx, path)
}

// SupportedExtensions is the fixed allow-list of source extensions, lower case.
var SupportedExtensions = []string{
	".pdf", ".ppt", ".pptx", ".doc", ".docx", ".xls", ".xlsx",
	".jpg", ".jpeg", ".png", ".html", ".csv", ".json",
	".xml", ".zip", ".txt",
}

var supported = func() map[string]bool {
	m := make(map[string]bool, len(SupportedExtensions))
	for _, ext := range SupportedExtensions {
		m[ext] = true
	}
	return m
}()

// legacyExt is the spreadsheet extension that must be upgraded before conversion.
const legacyExt = ".xls"

// Ext returns the lower-cased extension of path, including the dot.
func Ext(path string) string {
	return strings.ToLower(filepath.Ext(path))
}

// IsSupported reports whether path has an extension on the allow-list.
func IsSupported(path string) bool {
	return supported[Ext(path)]
}

// IsLegacySpreadsheet reports whether path must go through the legacy upgrader.
func IsLegacySpreadsheet(path string) bool {
	return Ext(path) == legacyExt
}

// Entry is one source file and the Markdown file it maps to.
type Entry struct {
	// Source is the path of the input document.
	Source string
	// Destination is the mirrored .md path under the output root.
	Destination string
	// Rel is Source relative to the input root, slash separated.
	Rel string
}

// Job is the ordered set of entries for one batch run.
type Job struct {
	InputRoot  string
	OutputRoot string
	Entries    []Entry
	// Warnings lists parts of the tree that could not be read while
	// planning. They are reported when the job runs.
	Warnings []string
}

// Len returns the number of files in the job.
func (j Job) Len() int { return len(j.Entries) }

// DestinationFor maps a source path under inputRoot to its Markdown path
// under outputRoot: same relative directory, extension replaced by .md.
func DestinationFor(inputRoot, outputRoot, source string) (string, error) {
	rel, err := filepath.Rel(inputRoot, source)
	if err != nil {
		return "", fmt.Errorf("relative path of %s: %w", source, err)
	}
	base := strings.TrimSuffix(filepath.Base(rel), filepath.Ext(rel))
	return filepath.Join(outputRoot, filepath.Dir(rel), base+".md"), nil
}

// walkDir is filepath.WalkDir; tests replace it to inject walk errors.
var walkDir = filepath.WalkDir

// PlanJob enumerates every file under inputRoot, in lexical order, and
// computes its destination under outputRoot. Unsupported files are part of
// the job; they are filtered when the job runs so that progress counts every
// file discovered. Symlinks to files are followed and broken links are kept
// so they get an outcome. Symlinked directories are not descended into.
// Unreadable subdirectories become warnings; only an unreadable root fails.
func PlanJob(inputRoot, outputRoot string) (Job, error) {
	info, err := os.Stat(inputRoot)
	if err != nil {
		return Job{}, fmt.Errorf("%w: %s: %v", ErrInvalidInputDirectory, inputRoot, err)
	}
	if !info.IsDir() {
		return Job{}, fmt.Errorf("%w: %s is not a directory", ErrInvalidInputDirectory, inputRoot)
	}

	job := Job{InputRoot: inputRoot, OutputRoot: outputRoot}
	err = walkDir(inputRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == inputRoot {
				return err
			}
			job.Warnings = append(job.Warnings, fmt.Sprintf("cannot read %s: %v", path, err))
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if !isFileEntry(path, d) {
			return nil
		}
		dest, err := DestinationFor(inputRoot, outputRoot, path)
		if err != nil {
			return err
		}
		rel, _ := filepath.Rel(inputRoot, path)
		job.Entries = append(job.Entries, Entry{
			Source:      path,
			Destination: dest,
			Rel:         filepath.ToSlash(rel),
		})
		return nil
	})
	if err != nil {
		return Job{}, &FatalRunError{Err: fmt.Errorf("walking %s: %w", inputRoot, err)}
	}
	return job, nil
}

// isFileEntry reports whether d is a regular file, a symlink to one, or a
// broken symlink.
func isFileEntry(path string, d fs.DirEntry) bool {
	if d.Type().IsRegular() {
		return true
	}
	if d.Type()&fs.ModeSymlink == 0 {
		return false
	}
	target, err := os.Stat(path)
	if err != nil {
		return true
	}
	return target.Mode().IsRegular()
}

// unsupportedf returns an error wrapping ErrUnsupportedFormat.
func unsupportedf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrUnsupportedFormat, fmt.Sprintf(format, args...))
}

// IsUnsupported reports whether err signals an unsupported format.
func IsUnsupported(err error) bool {
	return errors.Is(err, ErrUnsupportedFormat)
}
