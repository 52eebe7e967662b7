// Copyright the phi-redact authors. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package resilience

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"
)

func TestRetryWithBackoff_SucceedsAfterTransientFailures(t *testing.T) {
	attempts := 0
	op := func(ctx context.Context) error {
		attempts++
		if attempts < 2 {
			return NewTransientError("pipe hiccup", nil)
		}
		return nil
	}

	cfg := GatewayRetryConfig()
	if err := RetryWithBackoff(context.Background(), cfg, op); err != nil {
		t.Fatalf("expected success after retry, got %v", err)
	}
	if attempts != 2 {
		t.Errorf("expected 2 attempts, got %d", attempts)
	}
}

func TestRetryWithBackoff_PermanentErrorStopsImmediately(t *testing.T) {
	attempts := 0
	op := func(ctx context.Context) error {
		attempts++
		return NewPermanentError("bad gateway command", nil)
	}

	cfg := GatewayRetryConfig()
	cfg.MaxRetries = 5
	err := RetryWithBackoff(context.Background(), cfg, op)
	if err == nil {
		t.Fatal("expected error")
	}
	if attempts != 1 {
		t.Errorf("permanent error should not be retried, got %d attempts", attempts)
	}
}

func TestRetryWithBackoff_ContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	attempts := 0
	op := func(ctx context.Context) error {
		attempts++
		cancel()
		return NewTransientError("keeps failing", nil)
	}

	cfg := GatewayRetryConfig()
	cfg.MaxRetries = 10
	cfg.InitialInterval = time.Hour // cancellation must win over the backoff sleep

	err := RetryWithBackoff(ctx, cfg, op)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if attempts != 1 {
		t.Errorf("expected 1 attempt before cancellation, got %d", attempts)
	}
}

func TestClassifyError(t *testing.T) {
	cases := []struct {
		name      string
		err       error
		retryable bool
	}{
		{"deadline", context.DeadlineExceeded, true},
		{"broken pipe", fmt.Errorf("write: broken pipe"), true},
		{"missing binary", fmt.Errorf("exec: executable file not found in $PATH"), false},
		{"unknown", fmt.Errorf("something odd"), true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := ClassifyError(tc.err)
			if c.IsRetryable() != tc.retryable {
				t.Errorf("retryable = %v, want %v", c.IsRetryable(), tc.retryable)
			}
		})
	}
}

func TestCircuitBreaker_OpensAfterThreshold(t *testing.T) {
	cb := NewCircuitBreaker(CircuitBreakerConfig{
		Name:             "gateway",
		FailureThreshold: 2,
		SuccessThreshold: 1,
		Timeout:          time.Hour,
	})
	fail := func(ctx context.Context) error { return NewTransientError("down", nil) }

	ctx := context.Background()
	_ = cb.Execute(ctx, fail)
	_ = cb.Execute(ctx, fail)

	if cb.State() != StateOpen {
		t.Fatalf("expected OPEN after threshold, got %s", cb.State())
	}

	err := cb.Execute(ctx, func(ctx context.Context) error { return nil })
	if !errors.Is(err, ErrCircuitOpen) {
		t.Errorf("open breaker should fail fast, got %v", err)
	}
}

func TestCircuitBreaker_RecoversThroughHalfOpen(t *testing.T) {
	cb := NewCircuitBreaker(CircuitBreakerConfig{
		Name:             "gateway",
		FailureThreshold: 1,
		SuccessThreshold: 1,
		Timeout:          time.Millisecond,
	})
	ctx := context.Background()

	_ = cb.Execute(ctx, func(ctx context.Context) error { return NewTransientError("down", nil) })
	if cb.State() != StateOpen {
		t.Fatalf("expected OPEN, got %s", cb.State())
	}

	time.Sleep(5 * time.Millisecond)

	if err := cb.Execute(ctx, func(ctx context.Context) error { return nil }); err != nil {
		t.Fatalf("probe should be allowed after timeout, got %v", err)
	}
	if cb.State() != StateClosed {
		t.Errorf("expected CLOSED after successful probe, got %s", cb.State())
	}
}
