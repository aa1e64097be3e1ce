// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types holds the data model shared by the reader, the conversion
// engine, and the transport layers.
package types

// Span is a run of text sharing one font size and one style combination.
type Span struct {
	Text     string  `json:"text" yaml:"text"`
	FontSize float64 `json:"font_size" yaml:"font_size"`
	Bold     bool    `json:"bold,omitempty" yaml:"bold,omitempty"`
	Italic   bool    `json:"italic,omitempty" yaml:"italic,omitempty"`
}

// Line is an ordered sequence of spans on one baseline.
type Line struct {
	Spans []Span `json:"spans" yaml:"spans"`
}

// BlockKind tags a content region on a page.
type BlockKind string

const (
	BlockText  BlockKind = "text"
	BlockOther BlockKind = "other"
)

// Block is a content region on a page. Only text blocks carry lines.
type Block struct {
	Kind  BlockKind `json:"kind" yaml:"kind"`
	Lines []Line    `json:"lines,omitempty" yaml:"lines,omitempty"`
}

// ImageRef identifies an image on a page. It is opaque to the renderer and
// only meaningful to the Document that produced it.
type ImageRef struct {
	// Page is the 0-based index of the page that references the image.
	Page int `json:"page" yaml:"page"`

	// Name is the reader's key for the image (a PDF XObject name).
	Name string `json:"name" yaml:"name"`
}

// Page is one page of a Document.
type Page struct {
	// Index is the 0-based position of the page within its Document.
	Index int `json:"index" yaml:"index"`

	Blocks []Block    `json:"blocks" yaml:"blocks"`
	Images []ImageRef `json:"images,omitempty" yaml:"images,omitempty"`
}

// RawImage is the decoded payload behind an ImageRef.
type RawImage struct {
	// Format is the file extension of Data (e.g. "png", "jpeg").
	Format string
	Data   []byte
}

// Image is a successfully extracted image, before encoding.
type Image struct {
	PageIndex   int
	IndexInPage int
	Format      string
	Data        []byte
}
