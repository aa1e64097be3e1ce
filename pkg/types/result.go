// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// ImageDescriptor is an extracted image as returned to callers.
type ImageDescriptor struct {
	// Page is the 1-based display number of the page holding the image.
	Page int `json:"page" yaml:"page"`

	// Index is the 0-based position of the image within its page.
	Index int `json:"index" yaml:"index"`

	// Format is the image file extension (e.g. "png", "jpeg").
	Format string `json:"format" yaml:"format"`

	// Base64 is the standard base64 encoding of the image bytes.
	Base64 string `json:"base64" yaml:"base64"`
}

// ConversionResult is the outcome of converting one document.
type ConversionResult struct {
	Markdown string `json:"markdown" yaml:"markdown"`

	// Images is set only when images were requested and not embedded into
	// Markdown. It is ordered by page, then by index within the page.
	Images []ImageDescriptor `json:"images,omitempty" yaml:"images,omitempty"`

	// Pages is the number of pages in the source document.
	Pages int `json:"pages" yaml:"pages"`

	// SkippedImages counts images the reader could not extract.
	SkippedImages int `json:"skipped_images,omitempty" yaml:"skipped_images,omitempty"`
}
