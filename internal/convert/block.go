// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"strings"

	"github.com/pdiddy/pdf2md/pkg/types"
)

// Font-size thresholds for the heading heuristic, in points. A block maps to
// a heading when its average size is strictly above a threshold.
const (
	h1MinExclusive = 18.0
	h2MinExclusive = 14.0
	h3MinExclusive = 12.0
)

// blockSeparator joins rendered blocks within a page and pages within a
// document.
const blockSeparator = "\n\n"

// HeadingLevel maps an average font size to a Markdown heading level.
// It returns 0 for paragraph text.
func HeadingLevel(avg float64) int {
	switch {
	case avg > h1MinExclusive:
		return 1
	case avg > h2MinExclusive:
		return 2
	case avg > h3MinExclusive:
		return 3
	default:
		return 0
	}
}

// RenderLine concatenates the formatted spans of a line and trims the
// result. It also returns the largest font size among the spans. ok is
// false when nothing but whitespace remains, in which case the line takes
// no part in the block's text or its size average.
func RenderLine(l types.Line) (text string, maxSize float64, ok bool) {
	var b strings.Builder
	for _, s := range l.Spans {
		b.WriteString(FormatSpan(s))
		if s.FontSize > maxSize {
			maxSize = s.FontSize
		}
	}
	text = strings.TrimSpace(b.String())
	return text, maxSize, text != ""
}

// RenderBlock renders a text block as a paragraph or a heading. ok is false
// for non-text blocks and for blocks with no visible lines.
func RenderBlock(blk types.Block) (string, bool) {
	if blk.Kind != types.BlockText {
		return "", false
	}

	var (
		texts []string
		total float64
	)
	for _, l := range blk.Lines {
		text, size, ok := RenderLine(l)
		if !ok {
			continue
		}
		texts = append(texts, text)
		total += size
	}
	if len(texts) == 0 {
		return "", false
	}

	combined := strings.Join(texts, " ")
	level := HeadingLevel(total / float64(len(texts)))
	if level == 0 {
		return combined, true
	}
	return strings.Repeat("#", level) + " " + combined, true
}

// RenderPage renders every block of a page in reader order, separated by a
// blank line.
func RenderPage(p types.Page) string {
	parts := make([]string, 0, len(p.Blocks))
	for _, blk := range p.Blocks {
		if s, ok := RenderBlock(blk); ok {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, blockSeparator)
}
