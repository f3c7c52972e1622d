package clients

import (
	"context"
	"errors"
	"time"

	"photoshare/app/logging"
	"photoshare/app/metrics"

	"github.com/sony/gobreaker/v2"
)

// BreakerSettings tunes the circuit breaker around a collaborator.
type BreakerSettings struct {
	Name string
	// MaxRequests is the number of trial calls allowed while half-open.
	MaxRequests uint32
	// Interval clears the closed-state counts; zero never clears them.
	Interval time.Duration
	// Timeout is how long the circuit stays open before trying again.
	Timeout time.Duration
	// MinRequests and FailureRatio decide when a closed circuit opens.
	MinRequests  uint32
	FailureRatio float64
}

// CircuitBreakerClient guards a TagAssociationClient with a circuit breaker.
// While open, calls fail fast with gobreaker.ErrOpenState.
type CircuitBreakerClient struct {
	client TagAssociationClient
	cb     *gobreaker.CircuitBreaker[[]string]
	name   string
}

// NewCircuitBreakerClient wraps client.
func NewCircuitBreakerClient(client TagAssociationClient, s BreakerSettings) *CircuitBreakerClient {
	if s.Name == "" {
		s.Name = "tag-association"
	}
	metrics.CircuitBreakerState.WithLabelValues(s.Name).Set(0)

	cb := gobreaker.NewCircuitBreaker[[]string](gobreaker.Settings{
		Name:        s.Name,
		MaxRequests: s.MaxRequests,
		Interval:    s.Interval,
		Timeout:     s.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < s.MinRequests {
				return false
			}
			ratio := float64(counts.TotalFailures) / float64(counts.Requests)
			if ratio >= s.FailureRatio {
				logging.Warn().
					Uint32("failures", counts.TotalFailures).
					Float64("failure_ratio", ratio).
					Msg("opening tag association circuit")
				return true
			}
			return false
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Info().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("circuit breaker state change")
			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, from.String(), to.String()).Inc()
		},
	})

	return &CircuitBreakerClient{client: client, cb: cb, name: s.Name}
}

// GetAssociations calls the wrapped client through the breaker.
func (c *CircuitBreakerClient) GetAssociations(ctx context.Context, tags []string) ([]string, error) {
	result, err := c.cb.Execute(func() ([]string, error) {
		return c.client.GetAssociations(ctx, tags)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			metrics.CircuitBreakerRequests.WithLabelValues(c.name, "rejected").Inc()
		} else {
			metrics.CircuitBreakerRequests.WithLabelValues(c.name, "failure").Inc()
		}
		return nil, err
	}
	metrics.CircuitBreakerRequests.WithLabelValues(c.name, "success").Inc()
	return result, nil
}

// State reports the breaker's current state.
func (c *CircuitBreakerClient) State() gobreaker.State {
	return c.cb.State()
}

func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}

var _ TagAssociationClient = (*CircuitBreakerClient)(nil)
