// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pdfreader opens PDF bytes with github.com/ledongthuc/pdf and
// exposes them as a convert.Document: pages of text blocks built from the
// positioned glyphs of each content stream, plus the page's image
// XObjects.
package pdfreader

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/ledongthuc/pdf"

	"github.com/pdiddy/pdf2md/internal/convert"
	"github.com/pdiddy/pdf2md/pkg/types"
)

// ErrClosed is returned by a Document used after Close.
var ErrClosed = errors.New("document is closed")

// Reader opens PDFs held in memory. The zero value is ready to use.
type Reader struct{}

var _ convert.Reader = Reader{}

// New returns a Reader.
func New() Reader { return Reader{} }

// Open parses data as a PDF. The library reports some malformed input by
// panicking; those panics are returned as errors.
func (Reader) Open(data []byte) (doc convert.Document, err error) {
	if len(data) == 0 {
		return nil, errors.New("empty input")
	}

	defer func() {
		if r := recover(); r != nil {
			doc, err = nil, fmt.Errorf("reading PDF structure: %v", r)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, err
	}
	n := r.NumPage()
	if n < 0 {
		return nil, fmt.Errorf("invalid page count %d", n)
	}
	return &document{reader: r, src: data, numPages: n}, nil
}

// document implements convert.Document over a pdf.Reader.
type document struct {
	reader   *pdf.Reader
	src      []byte
	numPages int
}

func (d *document) NumPages() int { return d.numPages }

// Page builds the blocks and image references of the page at index.
func (d *document) Page(index int) (page types.Page, err error) {
	defer func() {
		if r := recover(); r != nil {
			page, err = types.Page{}, fmt.Errorf("reading page %d: %v", index+1, r)
		}
	}()

	p, err := d.page(index)
	if err != nil {
		return types.Page{}, err
	}

	styles := pageFontStyles(p)
	content := p.Content()
	return types.Page{
		Index:  index,
		Blocks: layoutBlocks(content.Text, styles.lookup),
		Images: imageRefs(p, index),
	}, nil
}

// ResolveImage decodes the image XObject named by ref.
func (d *document) ResolveImage(ref types.ImageRef) (img types.RawImage, err error) {
	defer func() {
		if r := recover(); r != nil {
			img, err = types.RawImage{}, fmt.Errorf("decoding image %s: %v", ref.Name, r)
		}
	}()

	p, err := d.page(ref.Page)
	if err != nil {
		return types.RawImage{}, err
	}

	x := p.Resources().Key("XObject").Key(ref.Name)
	if x.IsNull() {
		return types.RawImage{}, fmt.Errorf("image %s not found on page %d", ref.Name, ref.Page+1)
	}
	return decodeImage(d.src, x)
}

// Close releases the parsed document. Later calls are no-ops.
func (d *document) Close() error {
	d.reader = nil
	d.src = nil
	return nil
}

func (d *document) page(index int) (pdf.Page, error) {
	if d.reader == nil {
		return pdf.Page{}, ErrClosed
	}
	if index < 0 || index >= d.numPages {
		return pdf.Page{}, fmt.Errorf("page index %d out of range [0, %d)", index, d.numPages)
	}
	p := d.reader.Page(index + 1)
	if p.V.IsNull() {
		return pdf.Page{}, fmt.Errorf("page %d not found", index+1)
	}
	return p, nil
}
