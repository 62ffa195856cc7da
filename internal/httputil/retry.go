// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package httputil fetches remote vocabularies with retry on transient
// server responses.
package httputil

import (
	"context"
	"fmt"
	"io"
	"math"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"
)

// RetryBaseDelay controls the base duration for exponential backoff.
// Tests override this to avoid real sleeps.
var RetryBaseDelay = 2 * time.Second

const defaultMaxRetries = 3

// maxBodySize bounds a fetched vocabulary document.
const maxBodySize = 256 << 20

// retryable reports whether a status is worth retrying: 429 (Too Many
// Requests) and 503 (Service Unavailable).
func retryable(status int) bool {
	return status == http.StatusTooManyRequests || status == http.StatusServiceUnavailable
}

// DoWithRetry executes an HTTP request and retries on 429 and 503 with
// exponential backoff starting at RetryBaseDelay. A Retry-After header in
// seconds overrides the computed delay.
//
// When maxRetries is 0 the default (3) is used. The body of a retried
// response is drained and closed before sleeping. If the context is
// cancelled during a wait the function returns ctx.Err(). After exhausting
// retries the last response is returned so the caller can inspect it.
func DoWithRetry(ctx context.Context, client *http.Client, req *http.Request, maxRetries int, logger *zap.Logger) (*http.Response, error) {
	if maxRetries <= 0 {
		maxRetries = defaultMaxRetries
	}
	if logger == nil {
		logger = zap.NewNop()
	}

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

		backoff := time.Duration(math.Pow(2, float64(attempt))) * RetryBaseDelay
		if s, err := strconv.Atoi(resp.Header.Get("Retry-After")); err == nil && s >= 0 {
			backoff = time.Duration(s) * time.Second
		}
		logger.Info("server busy, retrying",
			zap.String("url", req.URL.String()),
			zap.Int("status", resp.StatusCode),
			zap.Duration("backoff", backoff),
			zap.Int("attempt", attempt+1),
			zap.Int("max_retries", maxRetries))

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(backoff):
		}
	}
}

// turtleAccept prefers Turtle but accepts any text a server may label it
// with.
const turtleAccept = "text/turtle, application/x-turtle;q=0.9, text/plain;q=0.5, */*;q=0.1"

// FetchOptions configures FetchVocabulary.
type FetchOptions struct {
	Client     *http.Client
	Token      string // sent as a bearer token when set
	MaxRetries int
	Logger     *zap.Logger
}

// FetchVocabulary downloads a Turtle document. Non-2xx responses are
// errors.
func FetchVocabulary(ctx context.Context, url string, opts FetchOptions) ([]byte, error) {
	client := opts.Client
	if client == nil {
		client = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Accept", turtleAccept)
	if opts.Token != "" {
		req.Header.Set("Authorization", "Bearer "+opts.Token)
	}

	resp, err := DoWithRetry(ctx, client, req, opts.MaxRetries, opts.Logger)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("fetching %s: unexpected status %s", url, resp.Status)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize+1))
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", url, err)
	}
	if len(data) > maxBodySize {
		return nil, fmt.Errorf("fetching %s: document exceeds %d bytes", url, maxBodySize)
	}
	return data, nil
}
