// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"encoding/base64"
	"fmt"

	"github.com/pdiddy/pdf2md/pkg/types"
)

// Skipped records an image the reader could not extract.
type Skipped struct {
	Ref    types.ImageRef
	Reason string
}

// imageResult is the outcome of resolving one image reference: either an
// extracted image or the reason it was skipped.
type imageResult struct {
	image   types.Image
	skipped *Skipped
}

// resolveImage resolves a single reference. Reader errors and reader panics
// both produce a skipped result; neither escapes.
func resolveImage(doc Document, ref types.ImageRef, index int) (res imageResult) {
	defer func() {
		if r := recover(); r != nil {
			res = imageResult{skipped: &Skipped{Ref: ref, Reason: fmt.Sprintf("panic: %v", r)}}
		}
	}()

	raw, err := doc.ResolveImage(ref)
	if err != nil {
		return imageResult{skipped: &Skipped{Ref: ref, Reason: err.Error()}}
	}
	return imageResult{image: types.Image{
		PageIndex:   ref.Page,
		IndexInPage: index,
		Format:      raw.Format,
		Data:        raw.Data,
	}}
}

// ExtractImages resolves every image reference of a page in order and
// returns the extracted images as descriptors carrying pageNumber, the
// 1-based display number. Images that fail to resolve are returned
// separately and never stop the page.
func ExtractImages(doc Document, page types.Page, pageNumber int) ([]types.ImageDescriptor, []Skipped) {
	var (
		images  []types.ImageDescriptor
		skipped []Skipped
	)
	for i, ref := range page.Images {
		res := resolveImage(doc, ref, i)
		if res.skipped != nil {
			skipped = append(skipped, *res.skipped)
			continue
		}
		images = append(images, types.ImageDescriptor{
			Page:   pageNumber,
			Index:  res.image.IndexInPage,
			Format: res.image.Format,
			Base64: base64.StdEncoding.EncodeToString(res.image.Data),
		})
	}
	return images, skipped
}

// ImageMarkdown renders an image descriptor as an inline Markdown image
// with a data URI, surrounded by the blank lines used when appending it to
// a page.
func ImageMarkdown(img types.ImageDescriptor) string {
	return fmt.Sprintf("\n\n![Image %d from page %d](data:image/%s;base64,%s)\n",
		img.Index+1, img.Page, img.Format, img.Base64)
}
