package remote

import (
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	appErrors "todosync/pkg/errors"
)

const (
	breakerMaxRequests      = 3
	breakerInterval         = 30 * time.Second
	breakerTimeout          = 15 * time.Second
	breakerMinRequests      = 3
	breakerFailureThreshold = 0.6
)

// newBreaker builds the circuit breaker guarding outbound calls. Only
// network and server errors count as failures: a 404 or a validation
// rejection means the server answered, so tripping on those would cut off
// a healthy connection.
func newBreaker(name string, logger *zap.Logger) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: breakerMaxRequests,
		Interval:    breakerInterval,
		Timeout:     breakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < breakerMinRequests {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return failureRatio >= breakerFailureThreshold
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warn("circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
		IsSuccessful: func(err error) bool {
			if err == nil {
				return true
			}
			return !appErrors.IsNetwork(err) && !appErrors.IsServer(err)
		},
	})
}
