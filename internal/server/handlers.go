// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pdiddy/pdf2md/internal/convert"
	"github.com/pdiddy/pdf2md/pkg/types"
)

// ErrNotPDF is reported when an upload's file name lacks a .pdf extension.
var ErrNotPDF = errors.New("uploaded file must be a PDF")

// multipartMemory is how much of a multipart body is held in memory before
// spilling to temporary files.
const multipartMemory = 32 << 20

// convertResponse is the body of a successful POST /convert.
type convertResponse struct {
	Filename string                  `json:"filename"`
	Markdown string                  `json:"markdown"`
	Images   []types.ImageDescriptor `json:"images"`
}

// errorResponse is the body of every error reply.
type errorResponse struct {
	Detail string `json:"detail"`
}

// GET /health
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(s.logger, w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "pdf-to-markdown",
	})
}

// POST /convert
func (s *Server) handleConvert(w http.ResponseWriter, r *http.Request) {
	opts, err := parseOptions(r)
	if err != nil {
		writeError(s.logger, w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(s.logger, w, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("Uploaded file exceeds %d bytes", tooLarge.Limit))
			return
		}
		writeError(s.logger, w, http.StatusUnprocessableEntity, "Expected a multipart/form-data upload with a 'file' field")
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(s.logger, w, http.StatusUnprocessableEntity, "Field 'file' is required")
		return
	}
	defer file.Close()

	name := header.Filename
	if err := checkPDFName(filepath.Base(name)); err != nil {
		writeError(s.logger, w, http.StatusBadRequest, "Uploaded file must be a PDF")
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(s.logger, w, http.StatusBadRequest, "Failed to read upload")
		s.logger.Error("reading upload", "filename", name, "error", err)
		return
	}

	res, err := s.conv.Convert(data, opts)
	if err != nil {
		if errors.Is(err, convert.ErrParse) {
			writeError(s.logger, w, http.StatusBadRequest, "Failed to parse PDF: "+parseCause(err))
			s.logger.Warn("parse failure", "filename", name, "error", err)
			return
		}
		writeError(s.logger, w, http.StatusInternalServerError, "Conversion failed")
		s.logger.Error("conversion error", "filename", name, "error", err)
		return
	}

	images := res.Images
	if images == nil {
		images = []types.ImageDescriptor{}
	}
	s.logger.Info("converted",
		"filename", name,
		"pages", res.Pages,
		"images", len(images),
		"skipped_images", res.SkippedImages,
	)
	writeJSON(s.logger, w, http.StatusOK, convertResponse{
		Filename: name,
		Markdown: res.Markdown,
		Images:   images,
	})
}

// checkPDFName accepts file names ending in .pdf in any case.
func checkPDFName(name string) error {
	if !strings.HasSuffix(strings.ToLower(name), ".pdf") {
		return fmt.Errorf("%w: %q", ErrNotPDF, name)
	}
	return nil
}

// parseOptions reads the include_images and embed_images query flags.
func parseOptions(r *http.Request) (convert.Options, error) {
	var opts convert.Options
	q := r.URL.Query()
	for _, f := range []struct {
		key string
		dst *bool
	}{
		{"include_images", &opts.IncludeImages},
		{"embed_images", &opts.EmbedImages},
	} {
		v := q.Get(f.key)
		if v == "" {
			continue
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			return convert.Options{}, fmt.Errorf("query parameter %s must be a boolean, got %q", f.key, v)
		}
		*f.dst = b
	}
	return opts, nil
}

// parseCause strips the ErrParse prefix so the reader's message follows
// the API's own wording.
func parseCause(err error) string {
	msg := err.Error()
	if cause, ok := strings.CutPrefix(msg, convert.ErrParse.Error()+": "); ok {
		return cause
	}
	return msg
}

// writeJSON sends v with the given status. An encoding failure can only be
// logged: the status line is already on the wire.
func writeJSON(logger *slog.Logger, w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("writing response", "status", status, "error", err)
	}
}

func writeError(logger *slog.Logger, w http.ResponseWriter, status int, msg string) {
	writeJSON(logger, w, status, errorResponse{Detail: msg})
}
