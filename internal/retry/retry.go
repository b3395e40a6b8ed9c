// Copyright 2026 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package retry calls a function repeatedly with exponential backoff until
// its result is acceptable or a retrial or time budget runs out.
package retry

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"time"

	"github.com/googleapis/gax-go/v2"
)

var (
	// ErrMaxRetrials is wrapped by MaxRetrialsError.
	ErrMaxRetrials = errors.New("maximum number of retrials reached")
	// ErrMaxWaitExceeded is wrapped by WaitError.
	ErrMaxWaitExceeded = errors.New("maximum wait time exceeded")
)

// hundredYears bounds the exponential wait so that it cannot overflow.
const hundredYears = 100 * 365 * 24 * time.Hour

// State describes the progress of a retry loop.
type State struct {
	// Retrial counts the retries so far; it is 0 for the first call.
	Retrial int

	// TimePassed is the time since the first call started.
	TimePassed time.Duration

	// TimeToWait is the wait before the next call.
	TimeToWait time.Duration
}

// MaxRetrialsError is returned when the retrial budget runs out. It carries
// the last result.
type MaxRetrialsError struct {
	Result any
	State  State
	// Err is the last error, for RetryOnError.
	Err error
}

func (e *MaxRetrialsError) Error() string {
	msg := fmt.Sprintf("reached the maximum number of retrials (%d)", e.State.Retrial)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *MaxRetrialsError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrMaxRetrials, e.Err}
	}
	return []error{ErrMaxRetrials}
}

// WaitError is returned when the next wait would exceed the maximum wait. It
// carries the last result.
type WaitError struct {
	Result  any
	State   State
	MaxWait time.Duration
	Err     error
}

func (e *WaitError) Error() string {
	msg := fmt.Sprintf("exceeded the maximum wait time of %s", e.MaxWait)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *WaitError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrMaxWaitExceeded, e.Err}
	}
	return []error{ErrMaxWaitExceeded}
}

// Retryer holds the budget and backoff of a retry loop. Zero fields disable
// the corresponding limit.
type Retryer struct {
	// MaxRetrials is the number of retries after the first call.
	MaxRetrials int

	// MaxWait is the total time allowed, checked before each wait.
	MaxWait time.Duration

	// WaitCeiling caps a single wait.
	WaitCeiling time.Duration

	// Jitter adds up to this much random time to each wait.
	Jitter time.Duration

	// ExponentialSleepMultiplier grows the wait: retrial n waits
	// sleep*multiplier^n.
	ExponentialSleepMultiplier float64

	// StatusUpdate is called before each wait.
	StatusUpdate func(result any, state State)

	// Now, Sleep and Rand replace the clock, gax.Sleep and the jitter
	// source in tests.
	Now   func() time.Time
	Sleep func(ctx context.Context, d time.Duration) error
	Rand  func() float64
}

func (r *Retryer) now() time.Time {
	if r.Now != nil {
		return r.Now()
	}
	return time.Now()
}

func (r *Retryer) sleep(ctx context.Context, d time.Duration) error {
	if r.Sleep != nil {
		return r.Sleep(ctx, d)
	}
	return gax.Sleep(ctx, d)
}

func (r *Retryer) rand() float64 {
	if r.Rand != nil {
		return r.Rand()
	}
	return rand.Float64()
}

// TimeToWait returns the wait before retry number retrial.
func (r *Retryer) TimeToWait(retrial int, sleep time.Duration) time.Duration {
	wait := sleep
	if m := r.ExponentialSleepMultiplier; m > 0 {
		f := float64(sleep) * math.Pow(m, float64(retrial))
		if math.IsInf(f, 0) || f > float64(hundredYears) {
			wait = hundredYears
		} else {
			wait = time.Duration(f)
		}
	}
	if r.Jitter > 0 {
		wait += time.Duration(r.rand() * float64(r.Jitter))
	}
	if r.WaitCeiling > 0 && wait > r.WaitCeiling {
		wait = r.WaitCeiling
	}
	return wait
}

// RetryOnResult calls fn until shouldRetry returns false and returns that
// result. An error from fn stops the loop immediately. When the budget runs
// out the error is a *MaxRetrialsError or *WaitError holding the last
// result. Cancelling ctx during a wait returns ctx.Err().
func RetryOnResult[T any](ctx context.Context, r *Retryer, fn func(context.Context) (T, error), shouldRetry func(T, State) bool, sleep time.Duration) (T, error) {
	var zero T
	if r == nil {
		r = &Retryer{}
	}
	start := r.now()
	state := State{}
	for {
		result, err := fn(ctx)
		if err != nil {
			return zero, err
		}
		state.TimePassed = r.now().Sub(start)
		if !shouldRetry(result, state) {
			return result, nil
		}
		if r.MaxRetrials > 0 && r.MaxRetrials <= state.Retrial {
			return result, &MaxRetrialsError{Result: result, State: state}
		}
		wait := r.TimeToWait(state.Retrial, sleep)
		if r.MaxWait > 0 && state.TimePassed+wait > r.MaxWait {
			return result, &WaitError{Result: result, State: state, MaxWait: r.MaxWait}
		}
		state.TimeToWait = wait
		if r.StatusUpdate != nil {
			r.StatusUpdate(result, state)
		}
		if err := r.sleep(ctx, wait); err != nil {
			return result, err
		}
		state.Retrial++
	}
}

// RetryOnError calls fn until it succeeds or returns an error shouldRetry
// rejects. A nil shouldRetry retries every error. When the budget runs out
// the returned *MaxRetrialsError or *WaitError also wraps the last error.
func RetryOnError[T any](ctx context.Context, r *Retryer, fn func(context.Context) (T, error), shouldRetry func(error, State) bool, sleep time.Duration) (T, error) {
	type outcome struct {
		value T
		err   error
	}
	o, err := RetryOnResult(ctx, r, func(ctx context.Context) (outcome, error) {
		v, err := fn(ctx)
		return outcome{v, err}, nil
	}, func(o outcome, s State) bool {
		return o.err != nil && (shouldRetry == nil || shouldRetry(o.err, s))
	}, sleep)
	var (
		mre *MaxRetrialsError
		we  *WaitError
	)
	switch {
	case errors.As(err, &mre):
		mre.Result, mre.Err = nil, o.err
	case errors.As(err, &we):
		we.Result, we.Err = nil, o.err
	}
	if err != nil {
		var zero T
		return zero, err
	}
	return o.value, o.err
}
