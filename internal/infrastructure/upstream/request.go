// Package upstream holds the HTTP plumbing shared by the marketplace clients:
// rate limiting, per-call timeouts, bounded retries and body decoding.
package upstream

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/andybalholm/brotli"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/pricecompare/backend/internal/domain"
)

const (
	defaultTimeout      = 10 * time.Second
	defaultAttempts     = 2
	defaultBackoff      = time.Second
	defaultMaxBodyBytes = 4 << 20
	userAgent           = "PriceCompare/1.0"
)

// Options configures a Requester. Zero values fall back to the defaults.
type Options struct {
	Timeout       time.Duration
	MaxAttempts   int
	Backoff       time.Duration
	RatePerSecond float64
	Burst         int
	MaxBodyBytes  int64
}

// StatusError reports a non-2xx answer. It unwraps to domain.ErrUpstream.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%v: status %d", domain.ErrUpstream, e.StatusCode)
}

func (e *StatusError) Unwrap() error {
	return domain.ErrUpstream
}

// IsStatus reports whether err carries the given HTTP status
func IsStatus(err error, code int) bool {
	var se *StatusError
	return errors.As(err, &se) && se.StatusCode == code
}

// Request describes one outbound call. Body is replayed on every attempt.
type Request struct {
	Method string
	URL    string
	Header http.Header
	Body   []byte
}

// Requester executes marketplace calls with a shared retry policy
type Requester struct {
	httpClient  *http.Client
	rateLimiter *rate.Limiter
	attempts    int
	backoff     time.Duration
	maxBody     int64
	logger      zerolog.Logger
}

// NewRequester creates a Requester; name tags its log lines
func NewRequester(name string, opts Options, logger zerolog.Logger) *Requester {
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = defaultAttempts
	}
	if opts.Backoff <= 0 {
		opts.Backoff = defaultBackoff
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = defaultMaxBodyBytes
	}

	limit := rate.Inf
	if opts.RatePerSecond > 0 {
		limit = rate.Limit(opts.RatePerSecond)
	}
	if opts.Burst <= 0 {
		opts.Burst = 5
	}

	return &Requester{
		httpClient:  &http.Client{Timeout: opts.Timeout},
		rateLimiter: rate.NewLimiter(limit, opts.Burst),
		attempts:    opts.MaxAttempts,
		backoff:     opts.Backoff,
		maxBody:     opts.MaxBodyBytes,
		logger:      logger.With().Str("component", "upstream").Str("source", name).Logger(),
	}
}

// Do executes req and returns the decoded body of a 2xx answer.
// Transport errors, 5xx, 408 and 429 are retried with linear backoff; other
// statuses fail immediately with a *StatusError.
func (r *Requester) Do(ctx context.Context, req Request) ([]byte, error) {
	var lastErr error
	for attempt := 1; attempt <= r.attempts; attempt++ {
		if err := r.rateLimiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter error: %w", err)
		}

		body, retry, err := r.once(ctx, req)
		if err == nil {
			return body, nil
		}
		lastErr = err

		r.logger.Warn().Err(err).Int("attempt", attempt).Str("url", req.URL).Msg("upstream call failed")
		if !retry || attempt == r.attempts {
			break
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %v", domain.ErrUpstream, ctx.Err())
		case <-time.After(time.Duration(attempt) * r.backoff):
		}
	}

	return nil, lastErr
}

// GetJSON performs a GET and decodes the JSON answer into out
func (r *Requester) GetJSON(ctx context.Context, url string, header http.Header, out any) error {
	body, err := r.Do(ctx, Request{Method: http.MethodGet, URL: url, Header: header})
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%w: failed to decode response: %v", domain.ErrUpstream, err)
	}
	return nil
}

func (r *Requester) once(ctx context.Context, req Request) ([]byte, bool, error) {
	method := req.Method
	if method == "" {
		method = http.MethodGet
	}

	var payload io.Reader
	if req.Body != nil {
		payload = bytes.NewReader(req.Body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, req.URL, payload)
	if err != nil {
		return nil, false, fmt.Errorf("failed to create request: %w", err)
	}
	for k, vs := range req.Header {
		for _, v := range vs {
			httpReq.Header.Add(k, v)
		}
	}
	httpReq.Header.Set("User-Agent", userAgent)
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("Accept-Encoding", "gzip, br")

	resp, err := r.httpClient.Do(httpReq)
	if err != nil {
		return nil, ctx.Err() == nil, fmt.Errorf("%w: %v", domain.ErrUpstream, err)
	}
	defer resp.Body.Close()

	reader, err := getReader(resp)
	if err != nil {
		return nil, false, fmt.Errorf("%w: %v", domain.ErrUpstream, err)
	}

	body, err := io.ReadAll(io.LimitReader(reader, r.maxBody))
	if err != nil {
		return nil, true, fmt.Errorf("%w: reading body: %v", domain.ErrUpstream, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// other 4xx answers would repeat with the same request
		retry := resp.StatusCode >= 500 ||
			resp.StatusCode == http.StatusTooManyRequests ||
			resp.StatusCode == http.StatusRequestTimeout
		return nil, retry, &StatusError{StatusCode: resp.StatusCode, Body: truncate(string(body), 256)}
	}

	return body, false, nil
}

// getReader unwraps Content-Encoding. Accept-Encoding is set explicitly, so
// net/http leaves decompression to us.
func getReader(resp *http.Response) (io.Reader, error) {
	var reader io.Reader = resp.Body

	switch resp.Header.Get("Content-Encoding") {
	case "gzip":
		gzipReader, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, err
		}
		reader = gzipReader
	case "br":
		reader = brotli.NewReader(resp.Body)
	}

	return reader, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
