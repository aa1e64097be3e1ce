// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import "github.com/pdiddy/pdf2md/pkg/types"

// FormatSpan wraps a span's text in Markdown emphasis markers according to
// its style flags. Bold and italic together nest as ***text***. The text is
// not escaped, so Markdown-special characters in the source pass through.
func FormatSpan(s types.Span) string {
	switch {
	case s.Bold && s.Italic:
		return "***" + s.Text + "***"
	case s.Bold:
		return "**" + s.Text + "**"
	case s.Italic:
		return "*" + s.Text + "*"
	default:
		return s.Text
	}
}
