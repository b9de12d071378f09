package nats

import (
	"context"
	"errors"

	"github.com/kirillkom/kiriman-ayam/internal/core/domain"
	"github.com/kirillkom/kiriman-ayam/internal/infrastructure/resilience"
	"github.com/nats-io/nats.go"
)

// transientErrors clear up once the connection recovers.
var transientErrors = []error{
	nats.ErrNoServers,
	nats.ErrTimeout,
	nats.ErrConnectionClosed,
	nats.ErrDisconnected,
	nats.ErrConnectionReconnecting,
}

var (
	skipAndIgnore = resilience.ErrorClassification{}
	retryAndCount = resilience.ErrorClassification{Retryable: true, RecordFailure: true}
	failAndCount  = resilience.ErrorClassification{RecordFailure: true}
)

func classifyNATSError(err error) resilience.ErrorClassification {
	switch {
	case err == nil:
		return skipAndIgnore
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return skipAndIgnore
	case resilience.IsCircuitOpen(err), isTransient(err):
		return retryAndCount
	default:
		return failAndCount
	}
}

func isTransient(err error) bool {
	for _, target := range transientErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// wrapTemporaryIfNeeded marks connection trouble as domain.ErrTemporary so the
// submit path can tell it apart from a malformed event.
func wrapTemporaryIfNeeded(err error) error {
	if err == nil || domain.IsKind(err, domain.ErrTemporary) {
		return err
	}
	if classifyNATSError(err).Retryable {
		return domain.WrapError(domain.ErrTemporary, "nats publish", err)
	}
	return err
}
