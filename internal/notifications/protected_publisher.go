package notifications

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/sony/gobreaker"
)

var ErrCircuitOpen = errors.New("circuit breaker open")

type ProtectedPublisherConfig struct {
	Timeout          time.Duration // hard timeout per send
	FailureThreshold uint32        // consecutive failures to open circuit
	Cooldown         time.Duration // how long to stay open before half-open
	HalfOpenMaxCalls uint32        // allow N trial calls in half-open
}

// ProtectedPublisher bounds every send with a timeout and stops calling a
// failing backend until the cooldown passes.
type ProtectedPublisher struct {
	inner   Publisher
	timeout time.Duration
	cb      *gobreaker.CircuitBreaker
}

func NewProtectedPublisher(inner Publisher, cfg ProtectedPublisherConfig, log *slog.Logger) *ProtectedPublisher {
	//defaults
	if cfg.Timeout <= 0 {
		cfg.Timeout = 3 * time.Second
	}
	if cfg.FailureThreshold == 0 {
		cfg.FailureThreshold = 3
	}
	if cfg.Cooldown <= 0 {
		cfg.Cooldown = 15 * time.Second
	}
	if cfg.HalfOpenMaxCalls == 0 {
		cfg.HalfOpenMaxCalls = 1
	}
	if log == nil {
		log = slog.Default()
	}

	st := gobreaker.Settings{
		Name:        "notifications",
		MaxRequests: cfg.HalfOpenMaxCalls,
		Timeout:     cfg.Cooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.FailureThreshold
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			log.Warn("circuit breaker state changed", "breaker", name, "from", from.String(), "to", to.String())
		},
	}

	return &ProtectedPublisher{
		inner:   inner,
		timeout: cfg.Timeout,
		cb:      gobreaker.NewCircuitBreaker(st),
	}
}

func (p *ProtectedPublisher) Publish(ctx context.Context, msg Message) error {
	sendCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	_, err := p.cb.Execute(func() (interface{}, error) {
		return nil, p.inner.Publish(sendCtx, msg)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return ErrCircuitOpen
	}
	return err
}

func (p *ProtectedPublisher) State() gobreaker.State {
	return p.cb.State()
}
