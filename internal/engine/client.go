/*
PURPOSE:
  Request client for the rule processor service.
  Issues exactly one HTTP request per prompt and measures it.

REQUIREMENTS:
  User-specified:
  - One synchronous POST per prompt with a per-request timeout.
  - Classify failures (timeout, connection error, HTTP error, bad body).
  - No retries: one attempt is one recorded outcome.

  Implementation-discovered:
  - Needs http.Client with a transport sized for the wave fan-out,
    otherwise idle-connection limits serialize the workers.
  - Timeout classification must work through url.Error wrapping.

ARCHITECTURE INTEGRATION:
  - Called by: internal/engine/runner.go (concurrently, one call per worker)
  - Uses: internal/config, internal/model

ERROR HANDLING:
  - Never returns an error. Every failure is absorbed into the
    RequestResult (failure_reason + optional status code) so a bad
    request can never abort a wave.

IMPLEMENTATION RULES:
  - Use net/http.
  - Stateless; safe for concurrent use.
  - Timestamps taken immediately around the call; latency = end - start.

USAGE:
  c := engine.NewClient(cfg)
  res := c.Do(ctx, "classify this", 0)

SELF-HEALING INSTRUCTIONS:
  - If the rule processor API changes, update processorResponse.

RELATED FILES:
  - internal/model/types.go
  - internal/engine/runner.go

MAINTENANCE:
  - Update if the service grows authentication or a richer payload.
*/

package engine

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/ruleworks/wave-runner/internal/config"
	"github.com/ruleworks/wave-runner/internal/model"
)

// processorResponse is the rule processor's reply payload.
type processorResponse struct {
	Response  string `json:"response"`
	Status    string `json:"status"`
	SessionID string `json:"session_id"`
}

// Client performs single prompt requests against the target endpoint.
// It holds no mutable state and is safe for concurrent use.
type Client struct {
	endpoint string
	timeout  time.Duration
	http     *http.Client
}

// NewClient creates a new Client.
func NewClient(cfg *config.Config) *Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()

	// A full wave of workers hits one host; the default of 2 idle
	// connections per host would force reconnects mid-run.
	if cfg.Workers > transport.MaxIdleConnsPerHost {
		transport.MaxIdleConnsPerHost = cfg.Workers
	}
	if cfg.Workers > transport.MaxIdleConns {
		transport.MaxIdleConns = cfg.Workers
	}

	return &Client{
		endpoint: cfg.Endpoint,
		timeout:  cfg.RequestTimeout,
		http: &http.Client{
			Transport: transport,
		},
	}
}

// Do issues one request for the given prompt and returns its outcome.
// The per-request timeout is layered onto ctx; cancelling ctx aborts the
// call early and records it as a failure.
func (c *Client) Do(ctx context.Context, prompt string, promptIndex int) model.RequestResult {
	res := model.RequestResult{
		PromptIndex: promptIndex,
		Prompt:      prompt,
		StartTime:   time.Now(),
	}

	reqBody, _ := json.Marshal(map[string]string{"prompt": prompt})

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(reqBody))
	if err != nil {
		return c.finish(res, false, model.ReasonConnectionError)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return c.finish(res, false, classifyTransportError(err))
	}
	defer resp.Body.Close()

	res.StatusCode = resp.StatusCode

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return c.finish(res, false, classifyTransportError(err))
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return c.finish(res, false, model.HTTPErrorReason(resp.StatusCode))
	}

	var pr processorResponse
	if err := json.Unmarshal(body, &pr); err != nil {
		return c.finish(res, false, model.ReasonInvalidResponse)
	}

	res.Response = pr.Response
	res.SessionID = pr.SessionID
	return c.finish(res, true, "")
}

func (c *Client) finish(res model.RequestResult, success bool, reason string) model.RequestResult {
	res.EndTime = time.Now()
	res.Latency = res.EndTime.Sub(res.StartTime)
	if res.Latency < 0 {
		res.Latency = 0
	}
	res.Success = success
	res.FailureReason = reason
	return res
}

// classifyTransportError maps a transport-level failure to a recorded
// failure reason. Deadline expiry (ours or the dial's) is a timeout,
// anything else is a connection error.
func classifyTransportError(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return model.ReasonTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return model.ReasonTimeout
	}
	return model.ReasonConnectionError
}
