//go:build mage

package main

import (
	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// Convert builds the CLI and converts samples/ into samples-md/ with the
// native backend, which needs no container runtime.
func Convert() error {
	mg.Deps(Init, Build)
	return sh.RunV("bin/mdconvert", "convert",
		"--backend", "native",
		"--input", "samples",
		"--output", "samples-md",
	)
}
