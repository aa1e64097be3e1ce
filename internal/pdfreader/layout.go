// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pdfreader

import (
	"math"
	"strings"

	"github.com/ledongthuc/pdf"
	"golang.org/x/text/unicode/norm"

	"github.com/pdiddy/pdf2md/pkg/types"
)

// Layout tolerances, as fractions of the current font size.
const (
	// baselineTolerance is the largest vertical offset between two glyphs
	// on the same line.
	baselineTolerance = 0.5

	// wordGap is the smallest horizontal gap read as a space between glyphs.
	wordGap = 0.2

	// paragraphGap is the smallest vertical distance between two baselines
	// that starts a new block.
	paragraphGap = 1.5
)

// styleFunc reports the emphasis of a base font name.
type styleFunc func(font string) (bold, italic bool)

// lineBuilder accumulates glyphs on one baseline.
type lineBuilder struct {
	styles styleFunc

	spans   []types.Span
	y       float64
	maxSize float64
	lastEnd float64

	text   strings.Builder
	font   string
	size   float64
	bold   bool
	italic bool
}

func newLineBuilder(t pdf.Text, styles styleFunc) *lineBuilder {
	lb := &lineBuilder{styles: styles, y: t.Y}
	lb.start(t)
	return lb
}

// start opens a new span in the style of t.
func (lb *lineBuilder) start(t pdf.Text) {
	lb.font = t.Font
	lb.size = glyphSize(t)
	lb.bold, lb.italic = lb.styles(t.Font)
}

// flush closes the open span.
func (lb *lineBuilder) flush() {
	if lb.text.Len() == 0 {
		return
	}
	lb.spans = append(lb.spans, types.Span{
		Text:     norm.NFC.String(lb.text.String()),
		FontSize: lb.size,
		Bold:     lb.bold,
		Italic:   lb.italic,
	})
	lb.text.Reset()
}

func (lb *lineBuilder) add(t pdf.Text) {
	size := glyphSize(t)
	gap := lb.text.Len() > 0 || len(lb.spans) > 0
	gap = gap && t.X-lb.lastEnd > wordGap*size && !isSpace(t.S) && !lb.endsWithSpace()

	if t.Font != lb.font || size != lb.size {
		lb.flush()
		if gap {
			// A plain space between differently styled runs keeps each
			// run's emphasis markers tight around its text.
			lb.spans = append(lb.spans, types.Span{Text: " ", FontSize: size})
		}
		lb.start(t)
	} else if gap {
		lb.text.WriteByte(' ')
	}

	lb.text.WriteString(t.S)
	lb.lastEnd = t.X + t.W
	if size > lb.maxSize {
		lb.maxSize = size
	}
}

func (lb *lineBuilder) endsWithSpace() bool {
	if lb.text.Len() > 0 {
		s := lb.text.String()
		return isSpace(s[len(s)-1:])
	}
	if n := len(lb.spans); n > 0 {
		s := lb.spans[n-1].Text
		return s != "" && isSpace(s[len(s)-1:])
	}
	return false
}

func (lb *lineBuilder) line() types.Line {
	lb.flush()
	return types.Line{Spans: lb.spans}
}

func isSpace(s string) bool {
	return s != "" && strings.TrimSpace(s) == ""
}

func glyphSize(t pdf.Text) float64 {
	return math.Abs(t.FontSize)
}

// layoutBlocks groups glyphs, in content-stream order, into text blocks of
// lines of spans. Glyphs on one baseline form a line; a run of glyphs in
// one font and size forms a span. A new block starts when the baseline
// drops by more than paragraphGap line heights or moves back up the page.
func layoutBlocks(glyphs []pdf.Text, styles styleFunc) []types.Block {
	var (
		blocks []types.Block
		lines  []types.Line
		lb     *lineBuilder
	)

	endBlock := func() {
		if len(lines) > 0 {
			blocks = append(blocks, types.Block{Kind: types.BlockText, Lines: lines})
			lines = nil
		}
	}

	for _, g := range glyphs {
		if g.S == "" {
			continue
		}
		if lb == nil {
			lb = newLineBuilder(g, styles)
			lb.add(g)
			continue
		}

		height := math.Max(lb.maxSize, glyphSize(g))
		if math.Abs(g.Y-lb.y) <= baselineTolerance*height {
			lb.add(g)
			continue
		}

		drop := lb.y - g.Y
		prevSize := lb.maxSize
		lines = append(lines, lb.line())
		if drop < 0 || drop > paragraphGap*prevSize {
			endBlock()
		}
		lb = newLineBuilder(g, styles)
		lb.add(g)
	}

	if lb != nil {
		lines = append(lines, lb.line())
	}
	endBlock()
	return blocks
}
