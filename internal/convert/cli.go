// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
)

const markitdownBin = "markitdown"

// markitdownPaths are checked when markitdown is not on PATH.
var markitdownPaths = []string{
	"/usr/local/bin/markitdown",
	"/usr/bin/markitdown",
	"/opt/homebrew/bin/markitdown",
}

// runFunc executes a binary; tests substitute it.
type runFunc func(ctx context.Context, bin string, args []string, stdout, stderr io.Writer) error

func execRun(ctx context.Context, bin string, args []string, stdout, stderr io.Writer) error {
	cmd := exec.CommandContext(ctx, bin, args...)
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	return cmd.Run()
}

// CLIConverter runs a locally installed markitdown binary on each file.
type CLIConverter struct {
	bin string
	run runFunc
}

// NewCLIConverter locates the markitdown binary. An explicit bin path is
// used as given; otherwise PATH and a few common install locations are
// searched.
func NewCLIConverter(bin string) (*CLIConverter, error) {
	path, err := findMarkitdown(bin)
	if err != nil {
		return nil, err
	}
	return &CLIConverter{bin: path, run: execRun}, nil
}

func findMarkitdown(bin string) (string, error) {
	if bin != "" {
		if _, err := os.Stat(bin); err != nil {
			return "", fmt.Errorf("markitdown binary %s: %w", bin, err)
		}
		return bin, nil
	}
	if p, err := exec.LookPath(markitdownBin); err == nil {
		return p, nil
	}
	for _, p := range markitdownPaths {
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}
	return "", fmt.Errorf("markitdown binary not found on PATH; install it with `pip install 'markitdown[all]'`")
}

// Convert runs markitdown on path and returns its stdout.
func (c *CLIConverter) Convert(ctx context.Context, path string) (string, error) {
	var stdout, stderr bytes.Buffer
	if err := c.run(ctx, c.bin, []string{path}, &stdout, &stderr); err != nil {
		if strings.Contains(stderr.String(), unsupportedMarker) {
			return "", unsupportedf("markitdown cannot convert %s", path)
		}
		msg := strings.TrimSpace(stderr.String())
		if i := strings.LastIndex(msg, "\n"); i >= 0 {
			msg = msg[i+1:]
		}
		if msg != "" {
			return "", fmt.Errorf("markitdown %s: %w: %s", path, err, msg)
		}
		return "", fmt.Errorf("markitdown %s: %w", path, err)
	}

	out := strings.TrimSpace(stdout.String())
	if out == "" {
		return "", fmt.Errorf("markitdown produced empty output for %s", path)
	}
	return out + "\n", nil
}
