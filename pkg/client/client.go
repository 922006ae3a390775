package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dmm341/avocado-ledger/pkg/types"
)

const (
	errorBodyReadLimit int64 = 64 << 10
	defaultTimeout           = 10 * time.Second
	defaultBaseDelay         = 200 * time.Millisecond

	headerIdempotencyKey = "Idempotency-Key"
	headerTotalCount     = "X-Total-Count"
	headerPage           = "X-Page"
	headerPageCount      = "X-Page-Count"
)

// Client talks to the ledger REST API. Only GETs are retried; every POST
// carries a fresh Idempotency-Key so a resubmitted create is deduplicated.
type Client struct {
	httpClient *http.Client
	baseURL    string
	maxRetries int
	baseDelay  time.Duration
	jitter     func(time.Duration) time.Duration
	newKey     func() string
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithKeyFunc overrides the idempotency key generator.
func WithKeyFunc(fn func() string) Option {
	return func(c *Client) {
		if fn != nil {
			c.newKey = fn
		}
	}
}

// WithoutJitter makes retry delays deterministic.
func WithoutJitter() Option {
	return func(c *Client) {
		c.jitter = func(time.Duration) time.Duration { return 0 }
	}
}

func New(cfg Config, opts ...Option) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		return nil, errors.New("base url is required")
	}
	if _, err := url.ParseRequestURI(base); err != nil {
		return nil, fmt.Errorf("invalid base url %q: %w", cfg.BaseURL, err)
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	delay := cfg.RetryBaseDelay
	if delay <= 0 {
		delay = defaultBaseDelay
	}
	retries := cfg.MaxRetries
	if retries < 0 {
		retries = 0
	}

	c := &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    base,
		maxRetries: retries,
		baseDelay:  delay,
		jitter: func(d time.Duration) time.Duration {
			return time.Duration(rand.Int63n(int64(d) + 1))
		},
		newKey: uuid.NewString,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c, nil
}

// ListOptions map onto the q/sort/dir/page/per_page query params.
type ListOptions struct {
	Filter  string
	Sort    string
	Desc    bool
	Page    int
	PerPage int
}

func (o ListOptions) values() url.Values {
	v := url.Values{}
	if o.Filter != "" {
		v.Set("q", o.Filter)
	}
	if o.Sort != "" {
		v.Set("sort", o.Sort)
		if o.Desc {
			v.Set("dir", "desc")
		}
	}
	if o.Page > 0 {
		v.Set("page", strconv.Itoa(o.Page))
	}
	if o.PerPage > 0 {
		v.Set("per_page", strconv.Itoa(o.PerPage))
	}
	return v
}

// ListResult is one window of a list endpoint.
type ListResult[T any] struct {
	Items     []T `json:"items" yaml:"items"`
	Total     int `json:"total" yaml:"total"`
	Page      int `json:"page" yaml:"page"`
	PageCount int `json:"page_count" yaml:"page_count"`
}

func list[T any](ctx context.Context, c *Client, path string, opts ListOptions) (*ListResult[T], error) {
	var items []T
	header, err := c.do(ctx, http.MethodGet, path, opts.values(), nil, &items)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []T{}
	}
	return &ListResult[T]{
		Items:     items,
		Total:     headerInt(header, headerTotalCount, len(items)),
		Page:      headerInt(header, headerPage, 1),
		PageCount: headerInt(header, headerPageCount, 1),
	}, nil
}

func headerInt(h http.Header, key string, fallback int) int {
	n, err := strconv.Atoi(h.Get(key))
	if err != nil {
		return fallback
	}
	return n
}

// do sends one logical request and decodes a 2xx body into out (when non-nil).
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) (http.Header, error) {
	var payload []byte
	if body != nil {
		var err error
		if payload, err = json.Marshal(body); err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
	}
	key := ""
	if method == http.MethodPost {
		key = c.newKey()
	}

	attempts := 1
	if method == http.MethodGet {
		attempts += c.maxRetries
	}

	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			if err := c.wait(ctx, attempt); err != nil {
				return nil, lastErr
			}
		}
		header, err := c.once(ctx, method, c.buildURL(path, query), payload, key, out)
		if err == nil {
			return header, nil
		}
		lastErr = err
		if !retryable(err) {
			return nil, err
		}
	}
	return nil, lastErr
}

func (c *Client) once(ctx context.Context, method, target string, payload []byte, key string, out any) (http.Header, error) {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if key != "" {
		req.Header.Set(headerIdempotencyKey, key)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s %s: %w", ErrNetwork, method, target, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, decodeAPIError(resp)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return resp.Header, nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return resp.Header, nil
}

func decodeAPIError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, errorBodyReadLimit))
	apiErr := &APIError{Status: resp.StatusCode}
	var body types.ErrorBody
	if err := json.Unmarshal(raw, &body); err == nil && body.Message != "" {
		apiErr.Message = body.Message
		apiErr.Code = body.Code
		apiErr.Details = body.Details
		return apiErr
	}
	apiErr.Message = strings.TrimSpace(string(raw))
	if apiErr.Message == "" {
		apiErr.Message = http.StatusText(resp.StatusCode)
	}
	return apiErr
}

func retryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	if errors.Is(err, ErrNetwork) {
		return true
	}
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Retryable()
}

// wait sleeps baseDelay * 2^(attempt-1) plus jitter.
func (c *Client) wait(ctx context.Context, attempt int) error {
	d := c.baseDelay << (attempt - 1)
	d += c.jitter(c.baseDelay)
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (c *Client) buildURL(path string, query url.Values) string {
	target := c.baseURL + "/" + strings.TrimLeft(path, "/")
	if len(query) > 0 {
		target += "?" + query.Encode()
	}
	return target
}
