// Copyright the phi-redact authors. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"

	"phi-redact/internal/observability"
	"phi-redact/internal/resilience"
)

// BridgeGateway talks to the native scanning kernel through a subprocess:
// one JSON request on stdin, one JSON response on stdout. Repeated failures
// trip a circuit breaker so a dead backend stops being consulted until it
// recovers.
type BridgeGateway struct {
	command  string
	args     []string
	breaker  *resilience.CircuitBreaker
	retry    resilience.RetryConfig
	observer *observability.Observer
}

type bridgeRequest struct {
	Text     string `json:"text"`
	Category string `json:"category"`
}

type bridgeResponse struct {
	Detections []Candidate `json:"detections"`
	Error      string      `json:"error,omitempty"`
}

// NewBridgeGateway creates a gateway that invokes command for each scan
// request.
func NewBridgeGateway(command string, args []string, observer *observability.Observer) *BridgeGateway {
	return &BridgeGateway{
		command:  command,
		args:     args,
		breaker:  resilience.NewCircuitBreaker(resilience.DefaultCircuitBreakerConfig("scan_gateway")),
		retry:    resilience.GatewayRetryConfig(),
		observer: observer,
	}
}

// Available reports whether the breaker currently permits consultations.
func (g *BridgeGateway) Available() bool {
	return g.breaker.State() != resilience.StateOpen
}

// Detections sends one scan request to the backend. Errors are returned to
// the consultant, which treats them as "gateway unavailable".
func (g *BridgeGateway) Detections(ctx context.Context, text, category string) ([]Candidate, error) {
	var finish func(bool, map[string]interface{})
	if g.observer != nil {
		finish = g.observer.StartTiming("scan_gateway", "detections", "")
	}

	var cands []Candidate
	err := g.breaker.Execute(ctx, func(ctx context.Context) error {
		return resilience.RetryWithBackoff(ctx, g.retry, func(ctx context.Context) error {
			var callErr error
			cands, callErr = g.call(ctx, text, category)
			return callErr
		})
	})

	if finish != nil {
		finish(err == nil, map[string]interface{}{
			"category":        category,
			"candidate_count": len(cands),
		})
	}
	return cands, err
}

func (g *BridgeGateway) call(ctx context.Context, text, category string) ([]Candidate, error) {
	reqBody, err := json.Marshal(bridgeRequest{Text: text, Category: category})
	if err != nil {
		return nil, resilience.NewPermanentError("encode gateway request", err)
	}

	cmd := exec.CommandContext(ctx, g.command, g.args...)
	cmd.Stdin = bytes.NewReader(reqBody)
	var stdout bytes.Buffer
	cmd.Stdout = &stdout

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("gateway process: %w", err)
	}

	var resp bridgeResponse
	if err := json.Unmarshal(stdout.Bytes(), &resp); err != nil {
		return nil, fmt.Errorf("decode gateway response: %w", err)
	}
	if resp.Error != "" {
		return nil, fmt.Errorf("gateway: %s", resp.Error)
	}
	return resp.Detections, nil
}
