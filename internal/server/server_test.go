// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"mime/multipart"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/pdf2md/internal/convert"
	"github.com/pdiddy/pdf2md/pkg/types"
)

// fakeConverter records the options it was called with and returns a
// canned result.
type fakeConverter struct {
	res   *types.ConversionResult
	err   error
	panic bool

	gotData []byte
	gotOpts convert.Options
}

func (f *fakeConverter) Convert(data []byte, opts convert.Options) (*types.ConversionResult, error) {
	if f.panic {
		panic("boom")
	}
	f.gotData, f.gotOpts = data, opts
	if f.err != nil {
		return nil, f.err
	}
	return f.res, nil
}

func newTestServer(cfg types.ServerConfig, conv Converter) http.Handler {
	return New(cfg, conv, nil).Handler()
}

// upload builds a multipart POST /convert request carrying one file.
func upload(t *testing.T, query, field, filename string, body []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = fw.Write(body)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/convert"+query, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v))
}

func TestHealth(t *testing.T) {
	h := newTestServer(types.ServerConfig{}, &fakeConverter{})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	var body map[string]string
	decode(t, rec, &body)
	assert.Equal(t, map[string]string{"status": "healthy", "service": "pdf-to-markdown"}, body)
}

func TestConvert_Success(t *testing.T) {
	conv := &fakeConverter{res: &types.ConversionResult{
		Markdown: "# Title",
		Pages:    1,
		Images:   []types.ImageDescriptor{{Page: 1, Index: 0, Format: "png", Base64: "AAAA"}},
	}}
	h := newTestServer(types.ServerConfig{}, conv)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, upload(t, "?include_images=true", "file", "Report.PDF", []byte("%PDF-1.4")))

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var body convertResponse
	decode(t, rec, &body)
	assert.Equal(t, "Report.PDF", body.Filename)
	assert.Equal(t, "# Title", body.Markdown)
	assert.Equal(t, conv.res.Images, body.Images)

	assert.Equal(t, []byte("%PDF-1.4"), conv.gotData)
	assert.Equal(t, convert.Options{IncludeImages: true}, conv.gotOpts)
}

func TestConvert_EchoesUploadedFilename(t *testing.T) {
	conv := &fakeConverter{res: &types.ConversionResult{Markdown: "x", Pages: 1}}
	h := newTestServer(types.ServerConfig{}, conv)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, upload(t, "", "file", "Q3 report (final).PDF", []byte("data")))

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var body convertResponse
	decode(t, rec, &body)
	assert.Equal(t, "Q3 report (final).PDF", body.Filename)
}

func TestWriteJSON_LogsEncodingFailure(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))

	rec := httptest.NewRecorder()
	writeJSON(logger, rec, http.StatusOK, map[string]float64{"bad": math.Inf(1)})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, logs.String(), "writing response")
}

func TestConvert_ImagesAlwaysAList(t *testing.T) {
	conv := &fakeConverter{res: &types.ConversionResult{Markdown: "x", Pages: 1}}
	h := newTestServer(types.ServerConfig{}, conv)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, upload(t, "", "file", "a.pdf", []byte("data")))

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]any
	decode(t, rec, &body)
	assert.Equal(t, []any{}, body["images"])
	assert.Equal(t, convert.Options{}, conv.gotOpts)
}

func TestConvert_Errors(t *testing.T) {
	tests := []struct {
		name       string
		conv       *fakeConverter
		req        func(t *testing.T) *http.Request
		wantStatus int
		wantDetail string
	}{
		{
			name:       "not a pdf",
			conv:       &fakeConverter{},
			req:        func(t *testing.T) *http.Request { return upload(t, "", "file", "notes.txt", []byte("x")) },
			wantStatus: http.StatusBadRequest,
			wantDetail: "Uploaded file must be a PDF",
		},
		{
			name:       "parse failure",
			conv:       &fakeConverter{err: fmt.Errorf("%w: %w", convert.ErrParse, errors.New("missing %EOF"))},
			req:        func(t *testing.T) *http.Request { return upload(t, "", "file", "a.pdf", []byte("x")) },
			wantStatus: http.StatusBadRequest,
			wantDetail: "Failed to parse PDF: missing %EOF",
		},
		{
			name:       "unexpected engine error",
			conv:       &fakeConverter{err: errors.New("disk on fire")},
			req:        func(t *testing.T) *http.Request { return upload(t, "", "file", "a.pdf", []byte("x")) },
			wantStatus: http.StatusInternalServerError,
			wantDetail: "Conversion failed",
		},
		{
			name:       "invalid boolean",
			conv:       &fakeConverter{},
			req:        func(t *testing.T) *http.Request { return upload(t, "?embed_images=maybe", "file", "a.pdf", []byte("x")) },
			wantStatus: http.StatusUnprocessableEntity,
			wantDetail: `query parameter embed_images must be a boolean, got "maybe"`,
		},
		{
			name:       "missing file field",
			conv:       &fakeConverter{},
			req:        func(t *testing.T) *http.Request { return upload(t, "", "document", "a.pdf", []byte("x")) },
			wantStatus: http.StatusUnprocessableEntity,
			wantDetail: "Field 'file' is required",
		},
		{
			name: "not multipart",
			conv: &fakeConverter{},
			req: func(t *testing.T) *http.Request {
				req := httptest.NewRequest(http.MethodPost, "/convert", bytes.NewReader([]byte("{}")))
				req.Header.Set("Content-Type", "application/json")
				return req
			},
			wantStatus: http.StatusUnprocessableEntity,
			wantDetail: "Expected a multipart/form-data upload with a 'file' field",
		},
		{
			name:       "converter panic",
			conv:       &fakeConverter{panic: true},
			req:        func(t *testing.T) *http.Request { return upload(t, "", "file", "a.pdf", []byte("x")) },
			wantStatus: http.StatusInternalServerError,
			wantDetail: "internal server error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestServer(types.ServerConfig{}, tt.conv)
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, tt.req(t))

			assert.Equal(t, tt.wantStatus, rec.Code)
			var body errorResponse
			decode(t, rec, &body)
			assert.Equal(t, tt.wantDetail, body.Detail)
		})
	}
}

func TestConvert_TooLarge(t *testing.T) {
	conv := &fakeConverter{res: &types.ConversionResult{}}
	h := newTestServer(types.ServerConfig{MaxUploadBytes: 1024}, conv)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, upload(t, "", "file", "big.pdf", bytes.Repeat([]byte("x"), 4096)))

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.Nil(t, conv.gotData)
}

func TestCheckPDFName(t *testing.T) {
	assert.NoError(t, checkPDFName("a.pdf"))
	assert.NoError(t, checkPDFName("A.PDF"))
	assert.ErrorIs(t, checkPDFName("a.pdf.txt"), ErrNotPDF)
	assert.ErrorIs(t, checkPDFName("pdf"), ErrNotPDF)
}

func TestAuth(t *testing.T) {
	conv := &fakeConverter{res: &types.ConversionResult{}}
	h := newTestServer(types.ServerConfig{APIKey: "secret"}, conv)

	tests := []struct {
		name       string
		req        func(t *testing.T) *http.Request
		wantStatus int
	}{
		{
			name:       "health is open",
			req:        func(*testing.T) *http.Request { return httptest.NewRequest(http.MethodGet, "/health", nil) },
			wantStatus: http.StatusOK,
		},
		{
			name:       "missing token",
			req:        func(t *testing.T) *http.Request { return upload(t, "", "file", "a.pdf", []byte("x")) },
			wantStatus: http.StatusUnauthorized,
		},
		{
			name: "wrong token",
			req: func(t *testing.T) *http.Request {
				req := upload(t, "", "file", "a.pdf", []byte("x"))
				req.Header.Set("Authorization", "Bearer nope")
				return req
			},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name: "valid token",
			req: func(t *testing.T) *http.Request {
				req := upload(t, "", "file", "a.pdf", []byte("x"))
				req.Header.Set("Authorization", "Bearer secret")
				return req
			},
			wantStatus: http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, tt.req(t))
			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}

func TestCORS(t *testing.T) {
	tests := []struct {
		name       string
		origins    []string
		origin     string
		wantOrigin string
	}{
		{name: "wildcard echoes origin", origins: []string{"*"}, origin: "https://app.example", wantOrigin: "https://app.example"},
		{name: "listed origin", origins: []string{"https://a.example"}, origin: "https://a.example", wantOrigin: "https://a.example"},
		{name: "unlisted origin", origins: []string{"https://a.example"}, origin: "https://b.example"},
		{name: "disabled", origins: nil, origin: "https://a.example"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestServer(types.ServerConfig{CORSOrigins: tt.origins}, &fakeConverter{})

			req := httptest.NewRequest(http.MethodOptions, "/convert", nil)
			req.Header.Set("Origin", tt.origin)
			req.Header.Set("Access-Control-Request-Method", "POST")
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantOrigin, rec.Header().Get("Access-Control-Allow-Origin"))
			if tt.wantOrigin != "" {
				assert.Equal(t, http.StatusNoContent, rec.Code)
				assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))
			}
		})
	}
}

func TestServe_GracefulShutdown(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	srv := New(types.ServerConfig{}, &fakeConverter{}, nil)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx, ln) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/health")
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)
	assert.Contains(t, string(body), "healthy")

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}
