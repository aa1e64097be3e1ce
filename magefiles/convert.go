//go:build mage

package main

import (
	"path/filepath"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// Convert builds the binary and converts one PDF, writing Markdown with
// frontmatter next to it. Usage: mage convert path/to/file.pdf
func Convert(path string) error {
	mg.Deps(Build)
	return sh.RunV(filepath.Join(binDir, binName), "convert", path,
		"--frontmatter", "-o", filepath.Dir(path)+string(filepath.Separator))
}
