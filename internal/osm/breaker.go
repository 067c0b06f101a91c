// Meridian - Live Location Sharing Relay and Viewer
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/meridian

package osm

import (
	"context"
	"errors"
	"fmt"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/meridian/internal/geo"
	"github.com/tomtom215/meridian/internal/logging"
	"github.com/tomtom215/meridian/internal/metrics"
)

// ErrCircuitOpen is returned while a service's circuit breaker rejects calls.
var ErrCircuitOpen = errors.New("service temporarily unavailable (circuit open)")

// breaker wraps a gobreaker circuit breaker with metrics and logging.
//
// Circuit breaker configuration:
//   - Max 1 probe request in half-open state
//   - 1 minute measurement window
//   - 30 second timeout before attempting recovery
//   - Opens after 5 consecutive failures, or a 60% failure rate over 10 requests
//
// "Not found" answers are successful calls: the service responded correctly.
// Calls abandoned by the caller's context cancellation say nothing about the
// service and are not counted as failures either.
type breaker[T any] struct {
	cb   *gobreaker.CircuitBreaker[T]
	name string
}

func newBreaker[T any](name string) *breaker[T] {
	metrics.CircuitBreakerState.WithLabelValues(name).Set(0)
	metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(name).Set(0)

	cb := gobreaker.NewCircuitBreaker[T](gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,

		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.ConsecutiveFailures >= 5 {
				return true
			}
			if counts.Requests < 10 {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return failureRatio >= 0.6
		},

		IsSuccessful: func(err error) bool {
			return err == nil || isServiceAnswer(err)
		},

		OnStateChange: func(name string, from, to gobreaker.State) {
			fromStr, toStr := stateToString(from), stateToString(to)
			logging.Info().
				Str("component", "osm").
				Str("breaker", name).
				Str("from", fromStr).
				Str("to", toStr).
				Msg("circuit breaker state transition")

			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, fromStr, toStr).Inc()
			if to == gobreaker.StateClosed {
				metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(name).Set(0)
			}
		},
	})

	return &breaker[T]{cb: cb, name: name}
}

// execute runs fn under circuit breaker protection. A rejected call returns
// an error wrapping ErrCircuitOpen.
func (b *breaker[T]) execute(fn func() (T, error)) (T, error) {
	result, err := b.cb.Execute(fn)
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			metrics.CircuitBreakerRequests.WithLabelValues(b.name, "rejected").Inc()
			logging.Warn().Str("component", "osm").Str("breaker", b.name).Msg("request rejected by circuit breaker")
			var zero T
			return zero, fmt.Errorf("%s: %w", b.name, ErrCircuitOpen)
		}
		if isServiceAnswer(err) {
			metrics.CircuitBreakerRequests.WithLabelValues(b.name, "success").Inc()
			return result, err
		}
		metrics.CircuitBreakerRequests.WithLabelValues(b.name, "failure").Inc()
		metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(b.name).Set(float64(b.cb.Counts().ConsecutiveFailures))
		return result, err
	}

	metrics.CircuitBreakerRequests.WithLabelValues(b.name, "success").Inc()
	metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(b.name).Set(0)
	return result, nil
}

// isServiceAnswer reports whether err is a definite answer from the service
// or a caller cancellation rather than a service fault.
func isServiceAnswer(err error) bool {
	return errors.Is(err, geo.ErrRouteNotFound) ||
		errors.Is(err, geo.ErrPlaceNotFound) ||
		errors.Is(err, context.Canceled)
}

// State returns the current breaker state as a string.
func (b *breaker[T]) State() string {
	return stateToString(b.cb.State())
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

func stateToString(state gobreaker.State) string {
	switch state {
	case gobreaker.StateClosed:
		return "closed"
	case gobreaker.StateHalfOpen:
		return "half-open"
	case gobreaker.StateOpen:
		return "open"
	default:
		return "unknown"
	}
}
