package auth

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/NordCoder/Marketus/internal/obs/retry"
	"github.com/NordCoder/Marketus/internal/repository/kafka"
)

// AuthEvent is the audit record published on each session lifecycle
// transition. Delivery is best-effort; auth flows never fail on it.
type AuthEvent struct {
	Type     string    `json:"type"` // registered, logged_in, refreshed, logged_out
	UserID   int64     `json:"user_id"`
	Username string    `json:"username,omitempty"`
	At       time.Time `json:"at"`
}

type EventPublisher interface {
	Publish(ctx context.Context, ev AuthEvent)
}

// NopPublisher is used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, AuthEvent) {}

// KafkaPublisher delivers events off the request path with retries.
type KafkaPublisher struct {
	prod   *kafka.Producer
	policy retry.Policy
	log    *zap.Logger
}

func NewKafkaPublisher(prod *kafka.Producer, log *zap.Logger) *KafkaPublisher {
	return &KafkaPublisher{
		prod:   prod,
		policy: retry.DefaultAuditPolicy(log),
		log:    log,
	}
}

func (p *KafkaPublisher) Publish(ctx context.Context, ev AuthEvent) {
	// Detach from the request lifetime but keep trace propagation.
	bg := context.WithoutCancel(ctx)
	go func() {
		pctx, cancel := context.WithTimeout(bg, 30*time.Second)
		defer cancel()
		_ = retry.Do(pctx, func() error {
			return p.prod.PublishJSON(pctx, kafka.KeyFromInt64(ev.UserID), ev)
		}, p.policy)
	}()
}
