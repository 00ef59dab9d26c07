// Package adminclient is the dashboard side of the API. It loads full
// collections from the admin endpoints, derives list views locally and runs
// mutating actions with optimistic updates that roll back on failure.
package adminclient

import (
	"context"
	"fmt"
	"strconv"

	"github.com/go-resty/resty/v2"
	"github.com/rumahkopi/api/internal/logger"
	"go.uber.org/zap"
)

// fetchPageSize matches the server's maximum page size.
const fetchPageSize = 100

// Client talks to the API with a bearer token. It adds no timeout and no
// retries: a request runs until the server answers or the transport fails.
type Client struct {
	http *resty.Client
	log  *logger.Logger
}

type Option func(*Client)

// WithLogger sets the logger used for request tracing.
func WithLogger(l *logger.Logger) Option {
	return func(c *Client) { c.log = l.WithComponent("adminclient") }
}

// New creates a client for baseURL authenticated with an access token.
func New(baseURL, token string, opts ...Option) *Client {
	rc := resty.New().
		SetBaseURL(baseURL).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")
	if token != "" {
		rc.SetAuthToken(token)
	}

	c := &Client{http: rc, log: logger.Nop()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetToken replaces the bearer token, e.g. after a refresh.
func (c *Client) SetToken(token string) {
	c.http.SetAuthToken(token)
}

// apiError is the server's error body.
type apiError struct {
	Message string `json:"error"`
}

// do sends a JSON request and decodes the response into result. Failures
// come back as *Error tagged with op.
func (c *Client) do(ctx context.Context, op Op, method, path string, body, result any) error {
	req := c.http.R().SetContext(ctx).SetError(&apiError{})
	if body != nil {
		req.SetBody(body)
	}
	if result != nil {
		req.SetResult(result)
	}

	resp, err := req.Execute(method, path)
	if err != nil {
		c.log.Warn("request failed", zap.String("method", method), zap.String("path", path), zap.Error(err))
		return &Error{Op: op, Err: err}
	}
	if resp.IsError() {
		return responseError(op, resp)
	}

	c.log.Debug("request completed",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode()),
	)
	return nil
}

func responseError(op Op, resp *resty.Response) error {
	e := &Error{Op: op, Status: resp.StatusCode()}
	if apiErr, ok := resp.Error().(*apiError); ok && apiErr != nil && apiErr.Message != "" {
		e.Detail = apiErr.Message
	} else {
		e.Detail = resp.Status()
	}
	return e
}

// page is the JSON shape of an admin list response.
type page[T any] struct {
	Data       []T `json:"data"`
	TotalPages int `json:"total_pages"`
	Page       int `json:"page"`
}

// fetchAll walks every page of an admin list and returns the full
// collection in server order.
func fetchAll[T any](ctx context.Context, c *Client, op Op, path string, params map[string]string) ([]T, error) {
	all := []T{}
	for n := 1; ; n++ {
		var p page[T]
		req := c.http.R().
			SetContext(ctx).
			SetError(&apiError{}).
			SetResult(&p).
			SetQueryParams(params).
			SetQueryParam("page", strconv.Itoa(n)).
			SetQueryParam("page_size", strconv.Itoa(fetchPageSize))

		resp, err := req.Get(path)
		if err != nil {
			return nil, &Error{Op: op, Err: fmt.Errorf("fetch page %d: %w", n, err)}
		}
		if resp.IsError() {
			return nil, responseError(op, resp)
		}

		all = append(all, p.Data...)
		// An out-of-range page is served as page 1, so stop on any
		// page that is not the one asked for.
		if n >= p.TotalPages || p.Page != n {
			return all, nil
		}
	}
}
