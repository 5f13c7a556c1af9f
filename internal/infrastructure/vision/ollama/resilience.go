package ollama

import (
	"context"
	"errors"
	"net"
	"net/http"

	"github.com/kirillkom/emotion-tutor/internal/core/domain"
	"github.com/kirillkom/emotion-tutor/internal/infrastructure/resilience"
)

// Statuses a local model server returns while overloaded or still loading weights.
var transientStatuses = map[int]bool{
	http.StatusRequestTimeout:      true,
	http.StatusTooManyRequests:     true,
	http.StatusInternalServerError: true,
	http.StatusBadGateway:          true,
	http.StatusServiceUnavailable:  true,
	http.StatusGatewayTimeout:      true,
}

var (
	transient = resilience.ErrorClassification{Retryable: true, RecordFailure: true}
	permanent = resilience.ErrorClassification{Retryable: false, RecordFailure: true}
	ignored   = resilience.ErrorClassification{}
)

func classifyVisionError(err error) resilience.ErrorClassification {
	var (
		statusErr *HTTPStatusError
		netErr    net.Error
	)
	switch {
	case err == nil:
		return ignored
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return ignored
	case resilience.IsCircuitOpen(err):
		return transient
	case errors.As(err, &statusErr):
		if transientStatuses[statusErr.StatusCode] {
			return transient
		}
		return ignored
	case errors.As(err, &netErr):
		return transient
	default:
		return permanent
	}
}

// asTemporary marks failures worth retrying later as domain.ErrTemporary so the
// API answers 503 instead of surfacing them as upstream errors.
func asTemporary(operation string, err error) error {
	if err == nil || domain.IsKind(err, domain.ErrTemporary) {
		return err
	}
	if classifyVisionError(err).Retryable {
		return domain.WrapError(domain.ErrTemporary, operation, err)
	}
	return err
}
