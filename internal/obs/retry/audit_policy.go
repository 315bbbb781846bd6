package retry

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
)

// DefaultAuditPolicy governs background delivery of auth audit events.
// Delivery is best-effort and never on the request path, so the budget
// can afford to be generous.
func DefaultAuditPolicy(log *zap.Logger) Policy {
	return Policy{
		Name:     "audit-publish",
		Attempts: 5,
		Backoff:  ExpoJitter{Base: 200 * time.Millisecond, Max: 10 * time.Second, Jitter: 0.2},
		Retryable: func(err error) bool {
			return err != nil && !errors.Is(err, context.Canceled)
		},
		OnAttempt: func(i int, err error) {
			if log != nil {
				log.Warn("audit publish retry", zap.Int("attempt", i+1), zap.Error(err))
			}
		},
		OnExhaust: func(err error) {
			if log != nil && !errors.Is(err, context.Canceled) {
				log.Error("audit publish retries exhausted", zap.Error(err))
			}
		},
	}
}
