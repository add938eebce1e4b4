package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Config holds backend endpoints and the shared call timeout.
type Config struct {
	ConnectorURL string        `envconfig:"CONNECTOR_URL" required:"true"`
	LedgerURL    string        `envconfig:"LEDGER_URL" required:"true"`
	Timeout      time.Duration `envconfig:"BACKEND_TIMEOUT" default:"10s"`
}

// Request describes one backend call.
type Request struct {
	Method string
	Path   string
	Query  url.Values
	Body   any
	Header http.Header
}

// Client performs JSON requests against one backend.
type Client struct {
	service    Service
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a client for service rooted at baseURL.
func NewClient(service Service, baseURL string, timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		service: service,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

// Service returns the backend this client talks to.
func (c *Client) Service() Service {
	return c.service
}

// Do sends req and decodes a successful response body into out when out is
// non-nil. It returns the response status. Any failure is returned as a
// *Fault; nothing is retried.
func (c *Client) Do(ctx context.Context, req Request, out any) (int, error) {
	var body io.Reader
	if req.Body != nil {
		data, err := json.Marshal(req.Body)
		if err != nil {
			return 0, fmt.Errorf("marshal %s request: %w", c.service, err)
		}
		body = bytes.NewReader(data)
	}

	target := c.baseURL + req.Path
	if len(req.Query) > 0 {
		target += "?" + req.Query.Encode()
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, target, body)
	if err != nil {
		return 0, fmt.Errorf("create %s request: %w", c.service, err)
	}

	httpReq.Header.Set("Accept", "application/json")
	if req.Body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	for k, vs := range req.Header {
		for _, v := range vs {
			httpReq.Header.Add(k, v)
		}
	}

	start := time.Now()
	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		fault := &Fault{Service: c.service, Timeout: isTimeout(err), Err: err}
		c.logger.Warn("backend call failed",
			"service", c.service,
			"method", req.Method,
			"path", req.Path,
			"timeout", fault.Timeout,
			"error", err,
		)
		return 0, fault
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return httpResp.StatusCode, &Fault{Service: c.service, Status: httpResp.StatusCode, Malformed: true, Err: err}
	}

	c.logger.Debug("backend call completed",
		"service", c.service,
		"method", req.Method,
		"path", req.Path,
		"status", httpResp.StatusCode,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	if httpResp.StatusCode >= 400 {
		fault := decodeFault(c.service, httpResp.StatusCode, respBody)
		c.logger.Info("backend returned fault",
			"service", c.service,
			"path", req.Path,
			"status", fault.Status,
			"identifier", fault.Identifier,
		)
		return httpResp.StatusCode, fault
	}

	if out != nil && httpResp.StatusCode != http.StatusNoContent {
		if err := json.Unmarshal(respBody, out); err != nil {
			return httpResp.StatusCode, &Fault{Service: c.service, Status: httpResp.StatusCode, Malformed: true, Err: fmt.Errorf("unmarshal response: %w", err)}
		}
	}

	return httpResp.StatusCode, nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
