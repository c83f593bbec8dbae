package external

import (
	"context"
	"log/slog"
	"time"

	"github.com/sony/gobreaker/v2"

	"assettrack/internal/types"
)

// BreakerEmailProvider wraps an EmailProvider with a circuit breaker so a
// struggling SES account does not drag every warranty check run through
// repeated timeouts. While the breaker is open, Send fails fast with an
// upstream error.
type BreakerEmailProvider struct {
	inner   EmailProvider
	breaker *gobreaker.CircuitBreaker[string]
	logger  *slog.Logger
}

// NewBreakerEmailProvider wraps the given provider with a circuit breaker.
// The breaker trips after 5 consecutive failures and probes again after 30s.
func NewBreakerEmailProvider(inner EmailProvider, logger *slog.Logger) *BreakerEmailProvider {
	if logger == nil {
		logger = slog.Default()
	}

	b := &BreakerEmailProvider{
		inner:  inner,
		logger: logger,
	}
	b.breaker = gobreaker.NewCircuitBreaker[string](gobreaker.Settings{
		Name:        "email-provider",
		MaxRequests: 1,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures > 5
		},
		IsSuccessful: func(err error) bool {
			return err == nil
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("email circuit breaker state change",
				"breaker", name,
				"from", from.String(),
				"to", to.String())
		},
	})
	return b
}

// Send forwards to the wrapped provider through the breaker.
func (b *BreakerEmailProvider) Send(ctx context.Context, input types.SendInput) (string, error) {
	msgID, err := b.breaker.Execute(func() (string, error) {
		return b.inner.Send(ctx, input)
	})
	if err == gobreaker.ErrOpenState || err == gobreaker.ErrTooManyRequests {
		return "", types.NewAppError(
			types.ErrCodeUpstreamEmailProvider,
			"email provider circuit open",
			err,
		)
	}
	return msgID, err
}

var _ EmailProvider = (*BreakerEmailProvider)(nil)
