// Package token hands out the short daily pickup tokens (A001, A002, ...)
// printed on every order.
package token

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/cenkalti/backoff/v4"
)

const (
	Prefix    = "A"
	dayLayout = "2006-01-02"
)

// ErrAllocationExhausted is returned once every retry attempt failed.
var ErrAllocationExhausted = errors.New("token allocation exhausted")

// Counter is the atomic per-day sequence the tokens are drawn from.
type Counter interface {
	IncrementDailyCounter(ctx context.Context, day string) (int64, error)
}

// AllocationError marks a failure to obtain a counter value. Only these are
// retried.
type AllocationError struct {
	Day   string
	Value int64
	Err   error
}

func (e *AllocationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("allocate token for %s: %v", e.Day, e.Err)
	}
	return fmt.Sprintf("allocate token for %s: invalid counter value %d", e.Day, e.Value)
}

func (e *AllocationError) Unwrap() error {
	return e.Err
}

// Format renders counter value n as a token. n is zero-padded to at least
// three digits and never truncated.
func Format(n int64) string {
	return fmt.Sprintf("%s%03d", Prefix, n)
}

// Today returns the calendar day of now in loc, formatted YYYY-MM-DD.
func Today(now time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	return now.In(loc).Format(dayLayout)
}

// ValidDay reports whether day is a YYYY-MM-DD date.
func ValidDay(day string) bool {
	_, err := time.Parse(dayLayout, day)
	return err == nil
}

// Allocate draws the next token for day from counter.
func Allocate(ctx context.Context, counter Counter, day string) (string, error) {
	n, err := counter.IncrementDailyCounter(ctx, day)
	if err != nil {
		return "", &AllocationError{Day: day, Err: err}
	}
	if n < 1 {
		return "", &AllocationError{Day: day, Value: n}
	}
	return Format(n), nil
}

// RetryPolicy bounds how often a token-consuming operation is attempted.
type RetryPolicy struct {
	Attempts  int
	BaseDelay time.Duration
}

func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{Attempts: 3, BaseDelay: 100 * time.Millisecond}
}

// Do runs fn until it succeeds, fails with something other than an
// *AllocationError, or runs out of attempts. Between attempts it sleeps
// BaseDelay * 2^attempt.
func (p RetryPolicy) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	attempts := p.Attempts
	if attempts < 1 {
		attempts = 1
	}

	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = 2 * p.BaseDelay
	exp.Multiplier = 2
	exp.RandomizationFactor = 0
	exp.MaxInterval = p.BaseDelay << attempts
	exp.MaxElapsedTime = 0
	policy := backoff.WithContext(backoff.WithMaxRetries(exp, uint64(attempts-1)), ctx)

	attempt := 0
	err := backoff.Retry(func() error {
		attempt++
		err := fn(ctx)
		if err == nil {
			return nil
		}

		var allocErr *AllocationError
		if !errors.As(err, &allocErr) {
			return backoff.Permanent(err)
		}
		log.Printf("[TOKEN] [WARN] attempt %d/%d failed: %v", attempt, attempts, err)
		return err
	}, policy)

	var allocErr *AllocationError
	if errors.As(err, &allocErr) {
		return fmt.Errorf("%w: %w", ErrAllocationExhausted, err)
	}
	return err
}
