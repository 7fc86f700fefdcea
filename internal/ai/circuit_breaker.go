package ai

import (
	"time"

	"github.com/sony/gobreaker/v2"

	apperrors "cvtailor/internal/errors"
)

// newCircuitBreaker builds the breaker guarding outbound model calls.
// It opens after five consecutive failures and probes again after 30s.
func newCircuitBreaker(name string, logger *apperrors.Logger) *gobreaker.CircuitBreaker[string] {
	settings := gobreaker.Settings{
		Name:        name,
		MaxRequests: 3,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state change",
				"breaker", name,
				"from", from.String(),
				"to", to.String(),
			)
		},
	}
	return gobreaker.NewCircuitBreaker[string](settings)
}
