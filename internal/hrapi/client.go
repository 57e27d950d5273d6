// Package hrapi talks to the HR backend's REST API. Every failure that leaves this
// package is an *Error whose message is already fit for display.
package hrapi

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/phillip-england/hrms/internal/contextutil"
	"go.uber.org/zap"
)

const (
	DefaultBaseURL = "http://localhost:8000"
	DefaultTimeout = 60 * time.Second

	requestIDHeader = "X-Request-ID"
)

type Config struct {
	BaseURL    string
	Timeout    time.Duration
	HTTPClient *http.Client
	Logger     *zap.Logger
}

type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger

	Employees  *EmployeesAPI
	Attendance *AttendanceAPI
	Dashboard  *DashboardAPI
}

// RequestOptions carries the optional parts of a request. Body is JSON encoded.
type RequestOptions struct {
	Query url.Values
	Body  any
}

func New(cfg Config) *Client {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeout}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	c := &Client{
		baseURL:    baseURL,
		httpClient: httpClient,
		logger:     logger,
	}
	c.Employees = &EmployeesAPI{client: c}
	c.Attendance = &AttendanceAPI{client: c}
	c.Dashboard = &DashboardAPI{client: c}
	return c
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

// Send issues one request and decodes a successful JSON response into out (when out is
// non-nil). Any failure is returned as *Error.
func (c *Client) Send(ctx context.Context, method, path string, opts RequestOptions, out any) error {
	target := c.baseURL + path
	if len(opts.Query) > 0 {
		target += "?" + opts.Query.Encode()
	}

	var body io.Reader
	if opts.Body != nil {
		payload, err := json.Marshal(opts.Body)
		if err != nil {
			return transportError(err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return transportError(err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if rid := contextutil.RequestID(ctx); rid != "" {
		req.Header.Set(requestIDHeader, rid)
	}

	started := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("backend request failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.String("request_id", contextutil.RequestID(ctx)),
			zap.Error(err),
		)
		return transportError(err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	c.logger.Debug("backend request",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", time.Since(started)),
		zap.String("request_id", contextutil.RequestID(ctx)),
	)
	if err != nil {
		return transportError(err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return statusError(resp.StatusCode, respBody)
	}
	if out == nil || len(bytes.TrimSpace(respBody)) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return transportError(err)
	}
	return nil
}

// Ping checks that the backend answers its health endpoint.
func (c *Client) Ping(ctx context.Context) error {
	return c.Send(ctx, http.MethodGet, "/health", RequestOptions{}, nil)
}
