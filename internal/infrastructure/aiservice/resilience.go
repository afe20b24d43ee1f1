package aiservice

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/sjlee-dev/ragdocs/internal/core/domain"
	"github.com/sjlee-dev/ragdocs/internal/infrastructure/resilience"
)

// HTTPStatusError carries the upstream status and body for diagnostics.
type HTTPStatusError struct {
	Operation  string
	StatusCode int
	Status     string
	Body       string
}

func (e *HTTPStatusError) Error() string {
	if e == nil {
		return "ai status error"
	}
	if strings.TrimSpace(e.Body) == "" {
		return fmt.Sprintf("ai %s status: %s", e.Operation, e.Status)
	}
	return fmt.Sprintf("ai %s status: %s: %s", e.Operation, e.Status, strings.TrimSpace(e.Body))
}

// classifyAiError implements the retry filter: only transport-class
// failures (connection refusal, request/read timeouts) are retried; any
// HTTP error status or malformed body propagates immediately.
func classifyAiError(err error) resilience.ErrorClassification {
	if err == nil {
		return resilience.ErrorClassification{}
	}
	if resilience.IsCircuitOpen(err) {
		return resilience.ErrorClassification{
			Retryable:     true,
			RecordFailure: true,
		}
	}

	var statusErr *HTTPStatusError
	if errors.As(err, &statusErr) {
		return resilience.ErrorClassification{
			Retryable:     false,
			RecordFailure: statusErr.StatusCode >= 500,
		}
	}

	// Transport errors come first: a per-request timeout wraps
	// context.DeadlineExceeded, so checking the context sentinels before
	// net.Error would strip timeouts out of the retryable class. The
	// executor stops retrying on its own when the caller's context is done.
	var netErr net.Error
	if errors.As(err, &netErr) {
		return resilience.ErrorClassification{
			Retryable:     true,
			RecordFailure: true,
		}
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return resilience.ErrorClassification{
			Retryable:     false,
			RecordFailure: false,
		}
	}

	return resilience.ErrorClassification{
		Retryable:     false,
		RecordFailure: true,
	}
}

// translateAiError maps a raw call error into the domain taxonomy: HTTP
// error statuses become AI service errors, everything transport-shaped
// becomes a temporary error.
func translateAiError(operation string, err error) error {
	if err == nil {
		return nil
	}
	if domain.IsKind(err, domain.ErrAiService) || domain.IsKind(err, domain.ErrTemporary) {
		return err
	}

	var statusErr *HTTPStatusError
	if errors.As(err, &statusErr) {
		return domain.WrapError(domain.ErrAiService, operation, err)
	}

	class := classifyAiError(err)
	if class.Retryable || resilience.IsCircuitOpen(err) || errors.Is(err, context.DeadlineExceeded) {
		return domain.WrapError(domain.ErrTemporary, operation, err)
	}
	return domain.WrapError(domain.ErrAiService, operation, err)
}
