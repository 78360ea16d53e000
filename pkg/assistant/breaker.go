package assistant

import (
	"context"
	"time"

	"github.com/sony/gobreaker"
)

type BreakerConfig struct {
	// Failures is the number of consecutive failures that opens the breaker
	Failures uint32
	// Cooldown is how long the breaker stays open before letting a request through
	Cooldown time.Duration
}

type breakerAsker struct {
	asker Asker
	cb    *gobreaker.CircuitBreaker
}

// WithBreaker fails fast while the wrapped asker keeps failing
func WithBreaker(asker Asker, cfg BreakerConfig) Asker {
	if cfg.Failures == 0 {
		cfg.Failures = 5
	}
	if cfg.Cooldown <= 0 {
		cfg.Cooldown = time.Minute
	}
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "llm",
		MaxRequests: 1,
		Timeout:     cfg.Cooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.Failures
		},
	})
	return &breakerAsker{asker: asker, cb: cb}
}

func (b *breakerAsker) Ask(ctx context.Context, stateFile, query string) (string, error) {
	res, err := b.cb.Execute(func() (interface{}, error) {
		return b.asker.Ask(ctx, stateFile, query)
	})
	if err != nil {
		return "", err
	}
	return res.(string), nil
}
