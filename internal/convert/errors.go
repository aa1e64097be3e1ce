// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import "errors"

// ErrParse is returned when the reader cannot open the input as a PDF.
// It is the only error Convert returns; callers get the cause wrapped
// alongside it.
var ErrParse = errors.New("failed to parse PDF")
