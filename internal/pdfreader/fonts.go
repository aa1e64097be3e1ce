// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pdfreader

import (
	"strings"

	"github.com/ledongthuc/pdf"
)

// Font descriptor flag bits (PDF 32000-1:2008, table 123).
const (
	flagItalic    = 1 << 6
	flagForceBold = 1 << 18
)

var (
	boldMarkers   = []string{"bold", "black", "heavy", "semibold", "demi"}
	italicMarkers = []string{"italic", "oblique"}
)

// fontStyles maps base font names to their descriptor flags for one page.
type fontStyles map[string]int64

// pageFontStyles collects descriptor flags for every font in the page's
// resources, keyed the way the content extractor names fonts: the base
// font name without its subset prefix.
func pageFontStyles(p pdf.Page) fontStyles {
	styles := make(fontStyles)
	for _, name := range p.Fonts() {
		f := p.Font(name)
		desc := f.V.Key("FontDescriptor")
		if desc.IsNull() {
			desc = f.V.Key("DescendantFonts").Index(0).Key("FontDescriptor")
		}
		styles[stripSubset(f.BaseFont())] = desc.Key("Flags").Int64()
	}
	return styles
}

// lookup reports whether font is bold and italic, from its descriptor flags
// or, failing that, from its name.
func (fs fontStyles) lookup(font string) (bold, italic bool) {
	flags := fs[stripSubset(font)]
	lower := strings.ToLower(font)
	bold = flags&flagForceBold != 0 || containsAny(lower, boldMarkers)
	italic = flags&flagItalic != 0 || containsAny(lower, italicMarkers)
	return bold, italic
}

// stripSubset drops a subset tag such as "ABCDEF+" from a font name.
func stripSubset(name string) string {
	if i := strings.IndexByte(name, '+'); i >= 0 {
		return name[i+1:]
	}
	return name
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
