package apiclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/park285/cheese-checkers/internal/httpapi"
	"github.com/valyala/fasthttp"
)

// APIError is a non-2xx answer from the server.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("checkers api error: status=%d message=%s", e.Status, e.Message)
}

type Client struct {
	baseURL string
	http    *fasthttp.Client

	defaultTimeout time.Duration
	retryMax       int
}

type Option func(*Client)

func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.defaultTimeout = d }
}

func WithRetry(max int) Option {
	return func(c *Client) { c.retryMax = max }
}

// WithDial replaces the dialer, e.g. with an in-memory listener.
func WithDial(dial fasthttp.DialFunc) Option {
	return func(c *Client) { c.http.Dial = dial }
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:        strings.TrimRight(baseURL, "/"),
		http:           &fasthttp.Client{ReadTimeout: 10 * time.Second, WriteTimeout: 10 * time.Second, MaxConnsPerHost: 16},
		defaultTimeout: 10 * time.Second,
		retryMax:       3,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) CreateGame(ctx context.Context) (*httpapi.GameView, error) {
	var v httpapi.GameView
	if err := c.doJSON(ctx, fasthttp.MethodPost, "/api/games", nil, &v); err != nil {
		return nil, err
	}
	return &v, nil
}

// ListGames returns stored games, most recently updated first.
func (c *Client) ListGames(ctx context.Context, limit int) ([]httpapi.GameView, error) {
	var out []httpapi.GameView
	if err := c.doJSON(ctx, fasthttp.MethodGet, "/api/games?limit="+strconv.Itoa(limit), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Game(ctx context.Context, id string) (*httpapi.GameView, error) {
	var v httpapi.GameView
	if err := c.doJSON(ctx, fasthttp.MethodGet, "/api/games/"+id, nil, &v); err != nil {
		return nil, err
	}
	return &v, nil
}

// Select sends a board click and reports whether the server applied or selected anything.
func (c *Client) Select(ctx context.Context, id string, row, col int) (*httpapi.SelectResponse, error) {
	req := httpapi.SelectRequest{Row: &row, Col: &col}
	var resp httpapi.SelectResponse
	if err := c.doJSON(ctx, fasthttp.MethodPost, "/api/games/"+id+"/select", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) Reset(ctx context.Context, id string) (*httpapi.GameView, error) {
	var v httpapi.GameView
	if err := c.doJSON(ctx, fasthttp.MethodPost, "/api/games/"+id+"/reset", nil, &v); err != nil {
		return nil, err
	}
	return &v, nil
}

func (c *Client) Results(ctx context.Context, limit int) ([]httpapi.ResultView, error) {
	var out []httpapi.ResultView
	if err := c.doJSON(ctx, fasthttp.MethodGet, "/api/results?limit="+strconv.Itoa(limit), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// BoardPNG fetches the rendered board.
func (c *Client) BoardPNG(ctx context.Context, id string) ([]byte, error) {
	return c.do(ctx, fasthttp.MethodGet, "/api/games/"+id+"/board.png", nil)
}

func (c *Client) doJSON(ctx context.Context, method, path string, in any, out any) error {
	var payload []byte
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		payload = raw
	}
	body, err := c.do(ctx, method, path, payload)
	if err != nil {
		return err
	}
	if out != nil {
		if err := json.Unmarshal(body, out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

// do sends one request. Only GETs are retried; a select must not be replayed.
func (c *Client) do(ctx context.Context, method, path string, payload []byte) ([]byte, error) {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer func() {
		fasthttp.ReleaseRequest(req)
		fasthttp.ReleaseResponse(resp)
	}()

	req.Header.SetMethod(method)
	req.SetRequestURI(c.baseURL + path)
	if payload != nil {
		req.Header.SetContentType("application/json")
		req.SetBody(payload)
	}

	attempts := 1
	if method == fasthttp.MethodGet && c.retryMax > 1 {
		attempts = c.retryMax
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err := c.http.DoDeadline(req, resp, c.computeDeadline(ctx)); err != nil {
			lastErr = fmt.Errorf("request failed: %w", err)
		} else if status := resp.StatusCode(); status < 200 || status >= 300 {
			apiErr := &APIError{Status: status, Message: errorMessage(resp.Body())}
			if !shouldRetryStatus(status) {
				return nil, apiErr
			}
			lastErr = apiErr
		} else {
			return append([]byte(nil), resp.Body()...), nil
		}

		if attempt < attempts {
			if err := sleepWithContext(ctx, backoffDuration(attempt)); err != nil {
				return nil, lastErr
			}
		}
	}
	if lastErr == nil {
		lastErr = errors.New("unknown error")
	}
	return nil, lastErr
}

func (c *Client) computeDeadline(ctx context.Context) time.Time {
	clientDL := time.Now().Add(c.defaultTimeout)
	if dl, ok := ctx.Deadline(); ok && dl.Before(clientDL) {
		return dl
	}
	return clientDL
}

func errorMessage(body []byte) string {
	var e struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &e); err == nil && e.Error != "" {
		return e.Error
	}
	s := string(body)
	if len(s) > 256 {
		s = s[:256]
	}
	return s
}

func sleepWithContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func backoffDuration(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	if attempt > 5 {
		attempt = 5
	}
	return time.Duration(1<<uint(attempt-1)) * 50 * time.Millisecond
}

func shouldRetryStatus(code int) bool {
	switch code {
	case 500, 502, 503, 504:
		return true
	default:
		return false
	}
}
