// Package coordinator is the single entry point for every call the gateway
// makes to the upstream marketplace API. It attaches auth, bounds
// concurrency by priority, dedupes identical in-flight GETs, retries
// idempotent failures with backoff, and surfaces typed apierr errors.
package coordinator

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/productbazar/bazar/internal/apierr"
	"github.com/productbazar/bazar/internal/logger"
	"github.com/productbazar/bazar/internal/version"
)

// Priority orders admission to the upstream slot pool.
type Priority int

const (
	PriorityLow Priority = iota
	PriorityNormal
	PriorityHigh
)

// Request describes one upstream call.
type Request struct {
	Method string
	Path   string     // upstream path, ex: "/products/category/dev-tools"
	Params url.Values // query parameters, canonicalised for dedup
	Body   any        // JSON-encoded when non-nil

	// RawBody short-circuits JSON encoding for passthrough payloads
	// (multipart creation requests). ContentType must be set with it.
	RawBody     []byte
	ContentType string

	Priority   Priority
	RetryCount int // extra attempts for idempotent verbs; default 1
}

// Response is the decoded-enough upstream reply: status, headers and raw body
// bytes. Callers unmarshal the body themselves.
type Response struct {
	Status int
	Header http.Header
	Body   []byte
}

// envelope mirrors the upstream error contract.
type envelope struct {
	Success     bool              `json:"success"`
	Message     string            `json:"message"`
	ErrorMsg    string            `json:"error"`
	FieldErrors map[string]string `json:"fieldErrors"`
}

// Options tunes a Coordinator.
type Options struct {
	BaseURL       string
	Timeout       time.Duration // per-attempt budget, default 20s
	RetryBase     time.Duration // initial backoff, default 250ms
	MaxConcurrent int           // slot pool size, default 16
	Client        *http.Client  // optional, default http.DefaultClient semantics
}

// Coordinator owns the queue of outbound requests.
type Coordinator struct {
	baseURL   string
	client    *http.Client
	tokens    *TokenHolder
	log       logger.Logger
	timeout   time.Duration
	retryBase time.Duration
	slots     *admission
	flights   *flightGroup
}

func New(opts Options, tokens *TokenHolder, log logger.Logger) *Coordinator {
	if opts.Timeout <= 0 {
		opts.Timeout = 20 * time.Second
	}
	if opts.RetryBase <= 0 {
		opts.RetryBase = 250 * time.Millisecond
	}
	if opts.MaxConcurrent <= 0 {
		opts.MaxConcurrent = 16
	}
	client := opts.Client
	if client == nil {
		client = &http.Client{}
	}
	if tokens == nil {
		tokens = NewTokenHolder()
	}
	return &Coordinator{
		baseURL:   strings.TrimRight(opts.BaseURL, "/"),
		client:    client,
		tokens:    tokens,
		log:       log,
		timeout:   opts.Timeout,
		retryBase: opts.RetryBase,
		slots:     newAdmission(opts.MaxConcurrent),
		flights:   newFlightGroup(),
	}
}

// Tokens exposes the shared auth token holder.
func (c *Coordinator) Tokens() *TokenHolder { return c.tokens }

// Do executes req. GETs are deduped against identical in-flight requests and
// retried on transient failures; other verbs go straight through exactly
// once. Cancelling ctx returns a Cancelled error to this caller immediately;
// the wire request is aborted only when no other caller shares it.
func (c *Coordinator) Do(ctx context.Context, req Request) (*Response, error) {
	if req.Method == "" {
		req.Method = http.MethodGet
	}

	if req.Method != http.MethodGet {
		return c.single(ctx, req)
	}

	key := canonicalKey(req.Method, req.Path, req.Params)
	return c.flights.do(ctx, key, func(wireCtx context.Context) (*Response, error) {
		return c.withRetry(wireCtx, req)
	})
}

// DoJSON runs req and unmarshals the body into out when out is non-nil.
func (c *Coordinator) DoJSON(ctx context.Context, req Request, out any) error {
	resp, err := c.Do(ctx, req)
	if err != nil {
		return err
	}
	if out == nil || len(resp.Body) == 0 {
		return nil
	}
	if err := json.Unmarshal(resp.Body, out); err != nil {
		return apierr.Wrap(apierr.KindServer, "undecodable upstream body", err)
	}
	return nil
}

// single executes a non-idempotent request exactly once.
func (c *Coordinator) single(ctx context.Context, req Request) (*Response, error) {
	resp, err := c.attempt(ctx, req)
	if err != nil && ctx.Err() != nil {
		return nil, apierr.Wrap(apierr.KindCancelled, "caller withdrew", ctx.Err())
	}
	return resp, err
}

// withRetry runs attempts with exponential backoff until the budget set by
// RetryCount runs out. Only transient failures are retried.
func (c *Coordinator) withRetry(ctx context.Context, req Request) (*Response, error) {
	// Total attempts = RetryCount + 1. Zero means unset and gets the default
	// single retry; a negative count disables retrying entirely.
	attempts := req.RetryCount + 1
	if req.RetryCount == 0 {
		attempts = 2
	} else if req.RetryCount < 0 {
		attempts = 1
	}

	var lastErr error
	wait := c.retryBase
	for i := 0; i < attempts; i++ {
		if i > 0 {
			delay := wait
			// 429 told us precisely how long to hold off.
			var ae *apierr.Error
			if errors.As(lastErr, &ae) && ae.Kind == apierr.KindRateLimited && ae.RetryAfter > 0 {
				delay = ae.RetryAfter
			}
			timer := time.NewTimer(delay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return nil, apierr.Wrap(apierr.KindCancelled, "caller withdrew during backoff", ctx.Err())
			case <-timer.C:
			}
			wait *= 2
		}

		resp, err := c.attempt(ctx, req)
		if err == nil {
			return resp, nil
		}
		if ctx.Err() != nil {
			return nil, apierr.Wrap(apierr.KindCancelled, "caller withdrew", ctx.Err())
		}
		if !apierr.Retryable(err) {
			return nil, err
		}
		lastErr = err
		if c.log != nil {
			c.log.Debug("retrying upstream request",
				logger.String("path", req.Path),
				logger.Int("attempt", i+1),
				logger.Error(err))
		}
	}
	return nil, lastErr
}

// attempt performs one wire request through the priority slot pool.
func (c *Coordinator) attempt(ctx context.Context, req Request) (*Response, error) {
	if err := c.slots.acquire(ctx, req.Priority); err != nil {
		return nil, apierr.Wrap(apierr.KindCancelled, "caller withdrew while queued", err)
	}
	defer c.slots.release()

	attemptCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	httpReq, err := c.build(attemptCtx, req)
	if err != nil {
		return nil, err
	}

	resp, err := c.client.Do(httpReq)
	if err != nil {
		if ctx.Err() != nil {
			return nil, apierr.Wrap(apierr.KindCancelled, "caller withdrew", ctx.Err())
		}
		return nil, apierr.Wrap(apierr.KindNetwork, "upstream unreachable", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return nil, apierr.Wrap(apierr.KindNetwork, "upstream body read failed", err)
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return &Response{Status: resp.StatusCode, Header: resp.Header, Body: body}, nil
	}

	return nil, decodeFailure(resp, body)
}

func (c *Coordinator) build(ctx context.Context, req Request) (*http.Request, error) {
	u := c.baseURL + req.Path
	if len(req.Params) > 0 {
		u += "?" + req.Params.Encode()
	}

	var body io.Reader
	contentType := ""
	switch {
	case req.RawBody != nil:
		body = bytes.NewReader(req.RawBody)
		contentType = req.ContentType
	case req.Body != nil:
		encoded, err := json.Marshal(req.Body)
		if err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
		body = bytes.NewReader(encoded)
		contentType = "application/json"
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, u, body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if contentType != "" {
		httpReq.Header.Set("Content-Type", contentType)
	}
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("User-Agent", version.UserAgent())
	if token := c.tokens.Get(); token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+token)
	}
	return httpReq, nil
}

// decodeFailure maps a non-2xx reply to a typed error, carrying along the
// upstream message and field errors when the body has them.
func decodeFailure(resp *http.Response, body []byte) error {
	var env envelope
	_ = json.Unmarshal(body, &env)

	message := env.Message
	if message == "" {
		message = env.ErrorMsg
	}
	if message == "" {
		message = http.StatusText(resp.StatusCode)
	}

	var retryAfter time.Duration
	if resp.StatusCode == http.StatusTooManyRequests {
		if s := resp.Header.Get("Retry-After"); s != "" {
			if secs, err := strconv.Atoi(s); err == nil && secs > 0 {
				retryAfter = time.Duration(secs) * time.Second
			}
		}
	}

	return apierr.FromStatus(resp.StatusCode, message, env.FieldErrors, retryAfter)
}

// canonicalKey builds the dedup identity of a request: method, path, and
// parameters with sorted keys and sorted values per key.
func canonicalKey(method, path string, params url.Values) string {
	if len(params) == 0 {
		return method + " " + path
	}
	return method + " " + path + "?" + canonicalParams(params)
}
