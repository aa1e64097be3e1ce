// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package httputil

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	RetryBaseDelay = time.Millisecond
}

// statusSequence serves the given statuses in order, repeating the last.
func statusSequence(calls *int32, codes ...int) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		n := int(atomic.AddInt32(calls, 1))
		if n > len(codes) {
			n = len(codes)
		}
		w.WriteHeader(codes[n-1])
	}
}

func TestDoWithRetry(t *testing.T) {
	tests := []struct {
		name       string
		codes      []int
		maxRetries int
		wantStatus int
		wantCalls  int32
	}{
		{name: "immediate success", codes: []int{200}, maxRetries: 5, wantStatus: 200, wantCalls: 1},
		{name: "rate limited then success", codes: []int{429, 429, 200}, maxRetries: 5, wantStatus: 200, wantCalls: 3},
		{name: "gateway errors are retried", codes: []int{503, 502, 504, 200}, maxRetries: 5, wantStatus: 200, wantCalls: 4},
		{name: "exhausts retries", codes: []int{429}, maxRetries: 2, wantStatus: 429, wantCalls: 3},
		{name: "default retries", codes: []int{429}, maxRetries: 0, wantStatus: 429, wantCalls: 4},
		{name: "server error passes through", codes: []int{500}, maxRetries: 5, wantStatus: 500, wantCalls: 1},
		{name: "not found passes through", codes: []int{404}, maxRetries: 5, wantStatus: 404, wantCalls: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls int32
			ts := httptest.NewServer(statusSequence(&calls, tt.codes...))
			defer ts.Close()

			req, err := http.NewRequest(http.MethodGet, ts.URL, nil)
			require.NoError(t, err)

			resp, err := DoWithRetry(context.Background(), ts.Client(), req, tt.maxRetries, nil)
			require.NoError(t, err)
			defer resp.Body.Close()

			assert.Equal(t, tt.wantStatus, resp.StatusCode)
			assert.Equal(t, tt.wantCalls, atomic.LoadInt32(&calls))
		})
	}
}

func TestDoWithRetry_ContextCancelled(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer ts.Close()

	old := RetryBaseDelay
	RetryBaseDelay = 500 * time.Millisecond
	defer func() { RetryBaseDelay = old }()

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	req, err := http.NewRequest(http.MethodGet, ts.URL, nil)
	require.NoError(t, err)

	_, err = DoWithRetry(ctx, ts.Client(), req, 5, nil)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestRetryAfter(t *testing.T) {
	d, ok := retryAfter("3")
	assert.True(t, ok)
	assert.Equal(t, 3*time.Second, d)

	for _, v := range []string{"", "-1", "soon", "Wed, 21 Oct 2015 07:28:00 GMT"} {
		_, ok := retryAfter(v)
		assert.False(t, ok, v)
	}
}

func TestFetchPDF(t *testing.T) {
	body := []byte("%PDF-1.4 fake")
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/docs/report.pdf":
			assert.Equal(t, "application/pdf", r.Header.Get("Accept"))
			w.Write(body)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer ts.Close()

	data, name, err := FetchPDF(context.Background(), ts.Client(), ts.URL+"/docs/report.pdf", 0, nil)
	require.NoError(t, err)
	assert.Equal(t, body, data)
	assert.Equal(t, "report.pdf", name)

	_, _, err = FetchPDF(context.Background(), ts.Client(), ts.URL+"/docs/report.pdf", 4, nil)
	assert.ErrorIs(t, err, ErrTooLarge)

	_, _, err = FetchPDF(context.Background(), ts.Client(), ts.URL+"/missing.pdf", 0, nil)
	assert.ErrorContains(t, err, "HTTP 404")

	_, _, err = FetchPDF(context.Background(), ts.Client(), "ftp://example.com/a.pdf", 0, nil)
	assert.ErrorContains(t, err, "unsupported URL scheme")
}
