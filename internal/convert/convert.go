// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package convert renders a PDF's structured page content as Markdown.
//
// The engine turns spans into emphasised text, groups lines into paragraphs
// or headings by font size, separates pages, and either embeds page images
// as data URIs or returns them as a separate list. PDF decoding itself is
// delegated to a Reader.
package convert

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/pdiddy/pdf2md/pkg/types"
)

// Reader opens raw PDF bytes as a Document.
type Reader interface {
	Open(data []byte) (Document, error)
}

// Document is an opened PDF. Close must be called exactly once.
type Document interface {
	// NumPages returns the number of pages.
	NumPages() int

	// Page loads the page at a 0-based index.
	Page(index int) (types.Page, error)

	// ResolveImage returns the bytes and format behind an image reference.
	ResolveImage(ref types.ImageRef) (types.RawImage, error)

	Close() error
}

// Options selects the image policy for one conversion.
type Options struct {
	// IncludeImages extracts the images of every page.
	IncludeImages bool

	// EmbedImages inlines extracted images into the Markdown as data URIs
	// instead of returning them in ConversionResult.Images.
	EmbedImages bool
}

// Engine converts PDF bytes to Markdown. It holds no per-conversion state
// and is safe for concurrent use.
type Engine struct {
	reader Reader
	logger *slog.Logger
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithLogger sets the logger used for isolated page and image failures.
func WithLogger(l *slog.Logger) EngineOption {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// NewEngine creates an engine that opens documents with r.
func NewEngine(r Reader, opts ...EngineOption) *Engine {
	e := &Engine{
		reader: r,
		logger: slog.New(slog.DiscardHandler),
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

// pageSeparator is placed before every page except the first.
func pageSeparator(pageNumber int) string {
	return fmt.Sprintf("\n---\n\n*Page %d*\n", pageNumber)
}

// Convert renders data as Markdown. The only error it returns wraps
// ErrParse; failures on individual pages or images are logged and leave
// the rest of the document intact.
func (e *Engine) Convert(data []byte, opts Options) (*types.ConversionResult, error) {
	doc, err := e.reader.Open(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrParse, err)
	}
	defer func() {
		if err := doc.Close(); err != nil {
			e.logger.Warn("closing document", "error", err)
		}
	}()

	numPages := doc.NumPages()
	result := &types.ConversionResult{Pages: numPages}
	if opts.IncludeImages && !opts.EmbedImages {
		result.Images = []types.ImageDescriptor{}
	}

	parts := make([]string, 0, 2*numPages)
	for i := 0; i < numPages; i++ {
		pageNumber := i + 1
		if i > 0 {
			parts = append(parts, pageSeparator(pageNumber))
		}

		page, err := doc.Page(i)
		if err != nil {
			e.logger.Warn("skipping unreadable page", "page", pageNumber, "error", err)
			parts = append(parts, "")
			continue
		}

		text := RenderPage(page)

		if opts.IncludeImages {
			images, skipped := ExtractImages(doc, page, pageNumber)
			for _, s := range skipped {
				e.logger.Debug("skipping image", "page", pageNumber, "image", s.Ref.Name, "reason", s.Reason)
			}
			result.SkippedImages += len(skipped)

			if opts.EmbedImages && len(images) > 0 {
				var b strings.Builder
				b.WriteString(text)
				for _, img := range images {
					b.WriteString(ImageMarkdown(img))
				}
				text = b.String()
			} else if !opts.EmbedImages {
				result.Images = append(result.Images, images...)
			}
		}

		parts = append(parts, text)
	}

	result.Markdown = strings.Join(parts, blockSeparator)
	return result, nil
}
