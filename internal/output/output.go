// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package output renders conversion results for the command line and writes
// them to disk.
package output

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/pdf2md/pkg/types"
)

// ErrExists is returned by WriteFile when the target exists and overwriting
// was not requested.
var ErrExists = errors.New("output already exists")

// Metadata describes where a result came from.
type Metadata struct {
	Source      string
	ConvertedAt time.Time
}

// frontmatter is the YAML header written above Markdown output.
type frontmatter struct {
	Source      string `yaml:"source"`
	Pages       int    `yaml:"pages"`
	Images      int    `yaml:"images,omitempty"`
	ConvertedAt string `yaml:"converted_at"`
}

// document is the JSON and YAML shape of a result.
type document struct {
	Source      string                  `json:"source" yaml:"source"`
	ConvertedAt string                  `json:"converted_at" yaml:"converted_at"`
	Pages       int                     `json:"pages" yaml:"pages"`
	Markdown    string                  `json:"markdown" yaml:"markdown"`
	Images      []types.ImageDescriptor `json:"images" yaml:"images"`
	Skipped     int                     `json:"skipped_images,omitempty" yaml:"skipped_images,omitempty"`
}

// Render encodes res in the requested format. Frontmatter applies only to
// Markdown output.
func Render(res *types.ConversionResult, format types.OutputFormat, meta Metadata, withFrontmatter bool) ([]byte, error) {
	if res == nil {
		return nil, errors.New("nil result")
	}
	ts := meta.ConvertedAt.UTC().Format(time.RFC3339)

	switch format {
	case types.OutputMarkdown, "":
		if !withFrontmatter {
			return []byte(res.Markdown), nil
		}
		return addFrontmatter(frontmatter{
			Source:      meta.Source,
			Pages:       res.Pages,
			Images:      len(res.Images),
			ConvertedAt: ts,
		}, res.Markdown)

	case types.OutputJSON:
		doc := newDocument(res, meta.Source, ts)
		data, err := json.MarshalIndent(doc, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("encoding JSON: %w", err)
		}
		return append(data, '\n'), nil

	case types.OutputYAML:
		doc := newDocument(res, meta.Source, ts)
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return nil, fmt.Errorf("encoding YAML: %w", err)
		}
		if err := enc.Close(); err != nil {
			return nil, fmt.Errorf("encoding YAML: %w", err)
		}
		return buf.Bytes(), nil
	}

	return nil, fmt.Errorf("unknown output format %q", format)
}

// ParseFormat validates a --format value.
func ParseFormat(s string) (types.OutputFormat, error) {
	switch f := types.OutputFormat(strings.ToLower(strings.TrimSpace(s))); f {
	case types.OutputMarkdown, types.OutputJSON, types.OutputYAML:
		return f, nil
	case "md":
		return types.OutputMarkdown, nil
	case "yml":
		return types.OutputYAML, nil
	}
	return "", fmt.Errorf("unknown output format %q (want markdown, json or yaml)", s)
}

// Extension returns the file extension for a format.
func Extension(f types.OutputFormat) string {
	switch f {
	case types.OutputJSON:
		return ".json"
	case types.OutputYAML:
		return ".yaml"
	}
	return ".md"
}

// DefaultPath derives an output path from the source name: the base name
// with its extension replaced, in dir.
func DefaultPath(source, dir string, f types.OutputFormat) string {
	base := filepath.Base(source)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	if base == "" || base == "." || base == "/" {
		base = "document"
	}
	return filepath.Join(dir, base+Extension(f))
}

// WriteFile writes data to path, creating parent directories. An existing
// file is left untouched unless force is set.
func WriteFile(path string, data []byte, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%w: %s", ErrExists, path)
		}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

func newDocument(res *types.ConversionResult, source, ts string) document {
	images := res.Images
	if images == nil {
		images = []types.ImageDescriptor{}
	}
	return document{
		Source:      source,
		ConvertedAt: ts,
		Pages:       res.Pages,
		Markdown:    res.Markdown,
		Images:      images,
		Skipped:     res.SkippedImages,
	}
}

// addFrontmatter prepends a YAML header to the Markdown body.
func addFrontmatter(fm frontmatter, body string) ([]byte, error) {
	header, err := yaml.Marshal(fm)
	if err != nil {
		return nil, fmt.Errorf("encoding frontmatter: %w", err)
	}
	var b bytes.Buffer
	b.WriteString("---\n")
	b.Write(header)
	b.WriteString("---\n\n")
	b.WriteString(body)
	return b.Bytes(), nil
}
