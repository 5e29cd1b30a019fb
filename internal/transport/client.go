// Package transport executes single provider calls and classifies outcomes.
package transport

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/bingokit/drawsync/internal/metrics"
)

// Outcome classifies one fetch attempt. The orchestrator branches on this,
// never on raw status codes.
type Outcome string

const (
	OutcomeSuccess          Outcome = "success"
	OutcomeEmpty            Outcome = "empty"
	OutcomeClientError      Outcome = "client_error"
	OutcomeServerError      Outcome = "server_error"
	OutcomeTransportFailure Outcome = "transport_failure"
)

// Result is one classified fetch attempt. Body is only set on Success.
type Result struct {
	Outcome Outcome
	Status  int
	Body    []byte
	Err     error
}

// Config controls the HTTP client.
type Config struct {
	UserAgent string
	Timeout   time.Duration
}

// Client wraps a resty client. It performs exactly one network call per
// Fetch and keeps no state across calls.
type Client struct {
	http   *resty.Client
	logger *zap.Logger
}

// NewClient constructs a Client with a bounded per-call timeout.
func NewClient(cfg Config, logger *zap.Logger) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	client := resty.New()
	client.SetTimeout(cfg.Timeout)
	client.SetHeader("Accept", "application/json, text/plain, */*")
	if cfg.UserAgent != "" {
		client.SetHeader("User-Agent", cfg.UserAgent)
	}
	// The engine owns all retry decisions; resty must not retry underneath it.
	client.SetRetryCount(0)
	return &Client{http: client, logger: logger}
}

// Fetch executes one (method, url, params) call and classifies the result.
// GET params go on the query string, POST params in the form body.
func (c *Client) Fetch(ctx context.Context, method, url string, params map[string]string) Result {
	metrics.TotalRequests.Inc()

	req := c.http.R().SetContext(ctx)
	var (
		resp *resty.Response
		err  error
	)
	switch strings.ToUpper(method) {
	case http.MethodPost:
		resp, err = req.SetFormData(params).Post(url)
	default:
		resp, err = req.SetQueryParams(params).Get(url)
	}
	if err != nil {
		metrics.TotalRequestErrors.Inc()
		c.logger.Debug("Transport failure", zap.String("url", url), zap.Error(err))
		return Result{Outcome: OutcomeTransportFailure, Err: err}
	}

	status := resp.StatusCode()
	switch {
	case status == http.StatusTooManyRequests:
		metrics.TotalRateLimitHits.Inc()
		return Result{Outcome: OutcomeServerError, Status: status}
	case status >= 500:
		metrics.TotalRequestErrors.Inc()
		return Result{Outcome: OutcomeServerError, Status: status}
	case status >= 400:
		return Result{Outcome: OutcomeClientError, Status: status}
	case status >= 300:
		// Redirects are followed by resty; anything left over is a dead end.
		return Result{Outcome: OutcomeClientError, Status: status}
	}

	body := resp.Body()
	if len(strings.TrimSpace(string(body))) == 0 {
		return Result{Outcome: OutcomeEmpty, Status: status}
	}
	return Result{Outcome: OutcomeSuccess, Status: status, Body: body}
}
