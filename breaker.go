package mondo

import (
	"net/http"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

// BreakerDoer wraps a transport with a circuit breaker so that a dead
// network or API outage fails fast instead of stacking up doomed
// requests. Only transport-level failures count against the breaker;
// HTTP error statuses are the server answering and pass through.
type BreakerDoer struct {
	next Doer
	cb   *gobreaker.CircuitBreaker
}

// NewBreakerDoer wraps next. The breaker opens after five consecutive
// transport failures and probes again after 30 seconds.
func NewBreakerDoer(next Doer, log *zap.Logger) *BreakerDoer {
	if log == nil {
		log = zap.NewNop()
	}
	settings := gobreaker.Settings{
		Name:    "mondo-api",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn("circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	}
	return &BreakerDoer{next: next, cb: gobreaker.NewCircuitBreaker(settings)}
}

// Do implements Doer. While the breaker is open, requests fail
// immediately with gobreaker.ErrOpenState, which the pipeline surfaces
// as a transport APIError.
func (b *BreakerDoer) Do(req *http.Request) (*http.Response, error) {
	v, err := b.cb.Execute(func() (any, error) {
		return b.next.Do(req)
	})
	if err != nil {
		return nil, err
	}
	return v.(*http.Response), nil
}
