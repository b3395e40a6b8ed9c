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

// Package waiter polls long-running operations until they finish.
//
// An OperationPoller knows how to fetch one kind of operation, tell whether
// it is done, and turn a finished operation into a result. WaitFor drives a
// poller with exponential backoff and reports progress through a Tracker.
package waiter

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/googleapis/cloudsdk/internal/resources"
	"github.com/googleapis/cloudsdk/internal/retry"
	"github.com/googleapis/gax-go/v2"
)

// OperationPoller fetches operations of type O and extracts results of
// type R.
type OperationPoller[O, R any] interface {
	// IsDone reports whether op has finished. A finished operation that
	// failed returns an *OperationError.
	IsDone(op O) (bool, error)

	// Poll fetches the current state of the operation ref names.
	Poll(ctx context.Context, ref *resources.Resource) (O, error)

	// Result returns the outcome of a finished operation.
	Result(ctx context.Context, op O) (R, error)
}

const (
	defaultPreStartSleep = time.Second
	defaultMaxWait       = 30 * time.Minute
	defaultMultiplier    = 1.4
	defaultJitter        = time.Second
	defaultWaitCeiling   = 180 * time.Second
	defaultSleep         = 2 * time.Second
)

type options struct {
	preStartSleep time.Duration
	maxWait       time.Duration
	multiplier    float64
	jitter        time.Duration
	waitCeiling   time.Duration
	sleep         time.Duration
	maxRetrials   int
	tracker       Tracker
	trackerUpdate func(t Tracker, op any, s retry.State)
	now           func() time.Time
	sleepFn       func(ctx context.Context, d time.Duration) error
}

// Option configures WaitFor.
type Option func(*options)

// WithPreStartSleep sets the wait before the first poll.
func WithPreStartSleep(d time.Duration) Option {
	return func(o *options) { o.preStartSleep = d }
}

// WithMaxWait sets the total time to wait. Zero waits forever.
func WithMaxWait(d time.Duration) Option {
	return func(o *options) { o.maxWait = d }
}

// WithMultiplier sets the exponential backoff multiplier.
func WithMultiplier(m float64) Option {
	return func(o *options) { o.multiplier = m }
}

// WithJitter sets the random time added to each wait.
func WithJitter(d time.Duration) Option {
	return func(o *options) { o.jitter = d }
}

// WithWaitCeiling caps a single wait between polls.
func WithWaitCeiling(d time.Duration) Option {
	return func(o *options) { o.waitCeiling = d }
}

// WithSleep sets the first wait between polls.
func WithSleep(d time.Duration) Option {
	return func(o *options) { o.sleep = d }
}

// WithMaxRetrials limits the number of polls after the first.
func WithMaxRetrials(n int) Option {
	return func(o *options) { o.maxRetrials = n }
}

// WithTracker replaces the default progress tracker, which writes to
// stderr.
func WithTracker(t Tracker) Option {
	return func(o *options) { o.tracker = t }
}

// WithTrackerUpdate registers a function called with the latest operation
// before each wait, so callers can surface operation metadata.
func WithTrackerUpdate(f func(t Tracker, op any, s retry.State)) Option {
	return func(o *options) { o.trackerUpdate = f }
}

// WithClock replaces the clock and the sleep function.
func WithClock(now func() time.Time, sleep func(ctx context.Context, d time.Duration) error) Option {
	return func(o *options) {
		o.now = now
		o.sleepFn = sleep
	}
}

// NoWait returns options that poll without sleeping and without progress
// output. Tests of commands that wait use it.
func NoWait() []Option {
	return []Option{
		WithPreStartSleep(0),
		WithSleep(0),
		WithJitter(0),
		WithTracker(NoOpTracker{}),
	}
}

// WaitFor polls the operation ref names until it is done and returns its
// result.
func WaitFor[O, R any](ctx context.Context, poller OperationPoller[O, R], ref *resources.Resource, message string, opts ...Option) (R, error) {
	var zero R
	o := &options{
		preStartSleep: defaultPreStartSleep,
		maxWait:       defaultMaxWait,
		multiplier:    defaultMultiplier,
		jitter:        defaultJitter,
		waitCeiling:   defaultWaitCeiling,
		sleep:         defaultSleep,
	}
	for _, opt := range opts {
		opt(o)
	}
	tracker := o.tracker
	if tracker == nil {
		tracker = NewProgressTracker(os.Stderr, message)
	}
	name := ""
	if ref != nil {
		name = ref.String()
	}

	r := &retry.Retryer{
		MaxRetrials:                o.maxRetrials,
		MaxWait:                    o.maxWait,
		WaitCeiling:                o.waitCeiling,
		Jitter:                     o.jitter,
		ExponentialSleepMultiplier: o.multiplier,
		Now:                        o.now,
		Sleep:                      o.sleepFn,
		StatusUpdate: func(op any, s retry.State) {
			slog.Debug("operation not done", "operation", name, "retrial", s.Retrial, "next_poll", s.TimeToWait)
			tracker.Tick()
			if o.trackerUpdate != nil {
				o.trackerUpdate(tracker, op, s)
			}
		},
	}

	tracker.Start()
	fail := func(err error) (R, error) {
		tracker.Done(err)
		return zero, err
	}
	aborted := func() (R, error) {
		return fail(fmt.Errorf("%w for operation %s: %w", ErrAborted, name, ctx.Err()))
	}

	if o.preStartSleep > 0 {
		sleep := o.sleepFn
		if sleep == nil {
			sleep = gax.Sleep
		}
		if err := sleep(ctx, o.preStartSleep); err != nil {
			return aborted()
		}
	}

	var doneErr error
	op, err := retry.RetryOnResult(ctx, r, func(ctx context.Context) (O, error) {
		return poller.Poll(ctx, ref)
	}, func(op O, _ retry.State) bool {
		done, err := poller.IsDone(op)
		if err != nil {
			doneErr = err
			return false
		}
		return !done
	}, o.sleep)
	if err != nil {
		if ctx.Err() != nil {
			return aborted()
		}
		var (
			we  *retry.WaitError
			mre *retry.MaxRetrialsError
		)
		switch {
		case errors.As(err, &we):
			return fail(&TimeoutError{Operation: name, Waited: int(o.maxWait / time.Second)})
		case errors.As(err, &mre):
			return fail(&TimeoutError{Operation: name, Waited: int(mre.State.TimePassed / time.Second)})
		}
		return fail(err)
	}
	if doneErr != nil {
		return fail(doneErr)
	}
	tracker.Done(nil)
	return poller.Result(ctx, op)
}
