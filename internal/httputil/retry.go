// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package httputil fetches remote documents over HTTP.
package httputil

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"path"
	"strconv"
	"time"
)

// RetryBaseDelay is the first backoff delay. Tests shorten it.
var RetryBaseDelay = 2 * time.Second

const defaultMaxRetries = 3

// ErrTooLarge is returned when a response body exceeds the size limit.
var ErrTooLarge = errors.New("response body too large")

// retryable reports whether a status is worth retrying after a delay.
func retryable(code int) bool {
	switch code {
	case http.StatusTooManyRequests, http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	}
	return false
}

// DoWithRetry sends req and retries on rate limiting and transient gateway
// errors, doubling the delay from RetryBaseDelay on each attempt. A
// Retry-After header given in seconds replaces the computed delay. After
// maxRetries (default 3) the last response is returned for the caller to
// inspect. Cancelling ctx during a wait returns ctx.Err().
func DoWithRetry(ctx context.Context, client *http.Client, req *http.Request, maxRetries int, logger *slog.Logger) (*http.Response, error) {
	if maxRetries <= 0 {
		maxRetries = defaultMaxRetries
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	backoff := RetryBaseDelay
	for attempt := 0; ; attempt++ {
		resp, err := client.Do(req.Clone(ctx))
		if err != nil {
			return nil, err
		}
		if !retryable(resp.StatusCode) || attempt >= maxRetries {
			return resp, nil
		}

		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()

		wait := backoff
		if d, ok := retryAfter(resp.Header.Get("Retry-After")); ok {
			wait = d
		}
		logger.Warn("retrying request",
			"url", req.URL.String(),
			"status", resp.StatusCode,
			"wait", wait,
			"attempt", attempt+1,
			"max_retries", maxRetries,
		)

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(wait):
		}
		backoff *= 2
	}
}

// FetchPDF downloads rawURL and returns its body together with a file name
// taken from the URL path. Bodies larger than maxBytes fail with
// ErrTooLarge; maxBytes <= 0 means no limit.
func FetchPDF(ctx context.Context, client *http.Client, rawURL string, maxBytes int64, logger *slog.Logger) ([]byte, string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, "", fmt.Errorf("parsing URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, "", fmt.Errorf("unsupported URL scheme %q", u.Scheme)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, "", err
	}
	req.Header.Set("Accept", "application/pdf")

	resp, err := DoWithRetry(ctx, client, req, 0, logger)
	if err != nil {
		return nil, "", fmt.Errorf("fetching %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("fetching %s: HTTP %d", rawURL, resp.StatusCode)
	}

	body := io.Reader(resp.Body)
	if maxBytes > 0 {
		body = io.LimitReader(resp.Body, maxBytes+1)
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return nil, "", fmt.Errorf("reading %s: %w", rawURL, err)
	}
	if maxBytes > 0 && int64(len(data)) > maxBytes {
		return nil, "", fmt.Errorf("%w: limit is %d bytes", ErrTooLarge, maxBytes)
	}

	name := path.Base(u.Path)
	if name == "/" || name == "." {
		name = u.Host
	}
	return data, name, nil
}

func retryAfter(v string) (time.Duration, bool) {
	if v == "" {
		return 0, false
	}
	secs, err := strconv.Atoi(v)
	if err != nil || secs < 0 {
		return 0, false
	}
	return time.Duration(secs) * time.Second, true
}
