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

package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

type fakeClock struct {
	t     time.Time
	slept []time.Duration
}

func (c *fakeClock) Now() time.Time { return c.t }

func (c *fakeClock) Sleep(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.slept = append(c.slept, d)
	c.t = c.t.Add(d)
	return nil
}

func newRetryer(c *fakeClock) *Retryer {
	return &Retryer{
		ExponentialSleepMultiplier: 2,
		Now:                        c.Now,
		Sleep:                      c.Sleep,
	}
}

func TestTimeToWait(t *testing.T) {
	for _, test := range []struct {
		name    string
		retryer *Retryer
		retrial int
		sleep   time.Duration
		want    time.Duration
	}{
		{name: "no multiplier", retryer: &Retryer{}, retrial: 5, sleep: time.Second, want: time.Second},
		{name: "first retrial", retryer: &Retryer{ExponentialSleepMultiplier: 1.5}, retrial: 0, sleep: 2 * time.Second, want: 2 * time.Second},
		{name: "exponential", retryer: &Retryer{ExponentialSleepMultiplier: 1.5}, retrial: 2, sleep: 2 * time.Second, want: 4500 * time.Millisecond},
		{name: "ceiling", retryer: &Retryer{ExponentialSleepMultiplier: 1.5, WaitCeiling: 3 * time.Second}, retrial: 2, sleep: 2 * time.Second, want: 3 * time.Second},
		{name: "jitter", retryer: &Retryer{Jitter: time.Second, Rand: func() float64 { return 0.5 }}, sleep: 2 * time.Second, want: 2500 * time.Millisecond},
		{name: "overflow", retryer: &Retryer{ExponentialSleepMultiplier: 2}, retrial: 5000, sleep: time.Second, want: hundredYears},
		{name: "overflow capped", retryer: &Retryer{ExponentialSleepMultiplier: 2, WaitCeiling: time.Minute}, retrial: 5000, sleep: time.Second, want: time.Minute},
	} {
		t.Run(test.name, func(t *testing.T) {
			if got := test.retryer.TimeToWait(test.retrial, test.sleep); got != test.want {
				t.Errorf("TimeToWait() = %v, want %v", got, test.want)
			}
		})
	}
}

func TestRetryOnResult(t *testing.T) {
	c := &fakeClock{t: time.Unix(0, 0)}
	r := newRetryer(c)
	var states []State
	r.StatusUpdate = func(_ any, s State) { states = append(states, s) }

	calls := 0
	got, err := RetryOnResult(t.Context(), r, func(context.Context) (int, error) {
		calls++
		return calls, nil
	}, func(n int, _ State) bool { return n < 3 }, time.Second)
	if err != nil {
		t.Fatal(err)
	}
	if got != 3 {
		t.Errorf("RetryOnResult() = %d, want 3", got)
	}
	if diff := cmp.Diff([]time.Duration{time.Second, 2 * time.Second}, c.slept); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
	wantStates := []State{
		{Retrial: 0, TimePassed: 0, TimeToWait: time.Second},
		{Retrial: 1, TimePassed: time.Second, TimeToWait: 2 * time.Second},
	}
	if diff := cmp.Diff(wantStates, states); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestRetryOnResultMaxRetrials(t *testing.T) {
	c := &fakeClock{t: time.Unix(0, 0)}
	r := newRetryer(c)
	r.MaxRetrials = 2
	calls := 0
	_, err := RetryOnResult(t.Context(), r, func(context.Context) (int, error) {
		calls++
		return calls, nil
	}, func(int, State) bool { return true }, time.Second)
	if !errors.Is(err, ErrMaxRetrials) {
		t.Fatalf("RetryOnResult() error = %v, want %v", err, ErrMaxRetrials)
	}
	var mre *MaxRetrialsError
	if !errors.As(err, &mre) {
		t.Fatalf("error %T is not a *MaxRetrialsError", err)
	}
	if mre.Result != 3 || mre.State.Retrial != 2 {
		t.Errorf("got result %v at retrial %d, want 3 at 2", mre.Result, mre.State.Retrial)
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
}

func TestRetryOnResultMaxWait(t *testing.T) {
	c := &fakeClock{t: time.Unix(0, 0)}
	r := &Retryer{MaxWait: 2500 * time.Millisecond, Now: c.Now, Sleep: c.Sleep}
	calls := 0
	_, err := RetryOnResult(t.Context(), r, func(context.Context) (int, error) {
		calls++
		return calls, nil
	}, func(int, State) bool { return true }, time.Second)
	if !errors.Is(err, ErrMaxWaitExceeded) {
		t.Fatalf("RetryOnResult() error = %v, want %v", err, ErrMaxWaitExceeded)
	}
	var we *WaitError
	if !errors.As(err, &we) {
		t.Fatalf("error %T is not a *WaitError", err)
	}
	if we.State.TimePassed != 2*time.Second {
		t.Errorf("TimePassed = %v, want 2s", we.State.TimePassed)
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
}

func TestRetryOnResultErrors(t *testing.T) {
	boom := errors.New("boom")
	t.Run("function error", func(t *testing.T) {
		c := &fakeClock{}
		_, err := RetryOnResult(t.Context(), newRetryer(c), func(context.Context) (int, error) {
			return 0, boom
		}, func(int, State) bool { return true }, time.Second)
		if !errors.Is(err, boom) {
			t.Errorf("RetryOnResult() error = %v, want %v", err, boom)
		}
		if len(c.slept) != 0 {
			t.Errorf("slept %v, want no sleeps", c.slept)
		}
	})
	t.Run("cancelled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(t.Context())
		cancel()
		_, err := RetryOnResult(ctx, newRetryer(&fakeClock{}), func(context.Context) (int, error) {
			return 0, nil
		}, func(int, State) bool { return true }, time.Second)
		if !errors.Is(err, context.Canceled) {
			t.Errorf("RetryOnResult() error = %v, want %v", err, context.Canceled)
		}
	})
	t.Run("gax sleep honours cancellation", func(t *testing.T) {
		ctx, cancel := context.WithCancel(t.Context())
		cancel()
		_, err := RetryOnResult(ctx, &Retryer{}, func(context.Context) (int, error) {
			return 0, nil
		}, func(int, State) bool { return true }, time.Hour)
		if !errors.Is(err, context.Canceled) {
			t.Errorf("RetryOnResult() error = %v, want %v", err, context.Canceled)
		}
	})
}

func TestRetryOnError(t *testing.T) {
	transient := errors.New("transient")
	permanent := errors.New("permanent")
	retryable := func(err error, _ State) bool { return errors.Is(err, transient) }

	for _, test := range []struct {
		name        string
		errs        []error
		maxRetrials int
		want        string
		wantErr     error
		wantCalls   int
	}{
		{name: "succeeds after transient errors", errs: []error{transient, transient}, want: "ok", wantCalls: 3},
		{name: "permanent error", errs: []error{transient, permanent}, wantErr: permanent, wantCalls: 2},
		{name: "out of retrials", errs: []error{transient, transient, transient}, maxRetrials: 1, wantErr: ErrMaxRetrials, wantCalls: 2},
	} {
		t.Run(test.name, func(t *testing.T) {
			c := &fakeClock{}
			r := newRetryer(c)
			r.MaxRetrials = test.maxRetrials
			calls := 0
			got, err := RetryOnError(t.Context(), r, func(context.Context) (string, error) {
				calls++
				if calls <= len(test.errs) {
					return "", test.errs[calls-1]
				}
				return "ok", nil
			}, retryable, time.Millisecond)
			if !errors.Is(err, test.wantErr) {
				t.Fatalf("RetryOnError() error = %v, want %v", err, test.wantErr)
			}
			if got != test.want {
				t.Errorf("RetryOnError() = %q, want %q", got, test.want)
			}
			if calls != test.wantCalls {
				t.Errorf("calls = %d, want %d", calls, test.wantCalls)
			}
		})
	}
}

func TestRetryOnErrorWrapsLastError(t *testing.T) {
	boom := errors.New("boom")
	r := newRetryer(&fakeClock{})
	r.MaxRetrials = 1
	_, err := RetryOnError(t.Context(), r, func(context.Context) (int, error) {
		return 0, boom
	}, nil, time.Millisecond)
	if !errors.Is(err, boom) || !errors.Is(err, ErrMaxRetrials) {
		t.Errorf("RetryOnError() error = %v, want both %v and %v", err, boom, ErrMaxRetrials)
	}
	if want := "reached the maximum number of retrials (1): boom"; err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}
