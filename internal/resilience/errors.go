// Copyright the phi-redact authors. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package resilience provides error classification, retry, and circuit
// breaking for the one external dependency in the pipeline: the accelerated
// scan gateway. Gateway trouble is an expected degraded mode, never a
// document failure.
package resilience

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
)

// ErrorType buckets errors by handling strategy.
type ErrorType int

const (
	ErrorTypeUnknown   ErrorType = iota
	ErrorTypeTransient           // temporary process/pipe trouble, retryable
	ErrorTypePermanent           // misconfiguration, not retryable
	ErrorTypeTimeout             // deadline exceeded, retryable
)

// ClassifiedError wraps an error with its handling classification.
type ClassifiedError struct {
	Original  error
	Type      ErrorType
	Message   string
	Retryable bool
}

func (e *ClassifiedError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Original.Error()
}

func (e *ClassifiedError) Unwrap() error {
	return e.Original
}

// IsRetryable reports whether the operation should be attempted again.
func (e *ClassifiedError) IsRetryable() bool {
	return e.Retryable
}

// NewTransientError creates a retryable error.
func NewTransientError(message string, cause error) *ClassifiedError {
	return &ClassifiedError{Original: cause, Type: ErrorTypeTransient, Message: message, Retryable: true}
}

// NewPermanentError creates a non-retryable error.
func NewPermanentError(message string, cause error) *ClassifiedError {
	return &ClassifiedError{Original: cause, Type: ErrorTypePermanent, Message: message, Retryable: false}
}

// ClassifyError categorizes an error for retry and circuit breaker
// decisions.
func ClassifyError(err error) *ClassifiedError {
	if err == nil {
		return nil
	}
	var classified *ClassifiedError
	if errors.As(err, &classified) {
		return classified
	}

	if errors.Is(err, context.DeadlineExceeded) || isTimeoutError(err) {
		return &ClassifiedError{
			Original:  err,
			Type:      ErrorTypeTimeout,
			Message:   fmt.Sprintf("timeout: %v", err),
			Retryable: true,
		}
	}

	errStr := strings.ToLower(err.Error())
	switch {
	case strings.Contains(errStr, "broken pipe"),
		strings.Contains(errStr, "connection refused"),
		strings.Contains(errStr, "temporarily unavailable"):
		return &ClassifiedError{
			Original:  err,
			Type:      ErrorTypeTransient,
			Message:   fmt.Sprintf("transient: %v", err),
			Retryable: true,
		}
	case strings.Contains(errStr, "executable file not found"),
		strings.Contains(errStr, "no such file"),
		strings.Contains(errStr, "permission denied"),
		strings.Contains(errStr, "invalid"):
		return &ClassifiedError{
			Original:  err,
			Type:      ErrorTypePermanent,
			Message:   fmt.Sprintf("permanent: %v", err),
			Retryable: false,
		}
	}

	return &ClassifiedError{Original: err, Type: ErrorTypeUnknown, Retryable: true}
}

func isTimeoutError(err error) bool {
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
