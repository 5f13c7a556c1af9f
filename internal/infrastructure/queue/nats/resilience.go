package nats

import (
	"context"
	"errors"
	"slices"

	"github.com/nats-io/nats.go"

	"github.com/kirillkom/emotion-tutor/internal/core/domain"
	"github.com/kirillkom/emotion-tutor/internal/infrastructure/resilience"
)

// A publish failing with one of these will fail the same way on retry.
var permanentPublishErrors = []error{
	nats.ErrMaxPayload,
	nats.ErrBadSubject,
}

// Connection-level failures that the client's reconnect logic can heal.
var transientPublishErrors = []error{
	nats.ErrNoServers,
	nats.ErrTimeout,
	nats.ErrConnectionClosed,
	nats.ErrDisconnected,
	nats.ErrReconnectBufExceeded,
}

func matchesAny(err error, targets []error) bool {
	return slices.ContainsFunc(targets, func(target error) bool {
		return errors.Is(err, target)
	})
}

func classifyPublishError(err error) resilience.ErrorClassification {
	switch {
	case err == nil:
		return resilience.ErrorClassification{}
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return resilience.ErrorClassification{}
	case matchesAny(err, permanentPublishErrors):
		return resilience.ErrorClassification{}
	case resilience.IsCircuitOpen(err), matchesAny(err, transientPublishErrors):
		return resilience.ErrorClassification{Retryable: true, RecordFailure: true}
	default:
		return resilience.ErrorClassification{RecordFailure: true}
	}
}

func asTemporary(err error) error {
	if err == nil || domain.IsKind(err, domain.ErrTemporary) {
		return err
	}
	if classifyPublishError(err).Retryable {
		return domain.WrapError(domain.ErrTemporary, "publish audit record", err)
	}
	return err
}
