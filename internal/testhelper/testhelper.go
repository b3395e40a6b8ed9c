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

// Package testhelper provides helper functions for tests.
// These are used across packages
package testhelper

import (
	"bytes"
	"context"
	"os"
	"strings"
	"sync"
	"testing"

	"cloud.google.com/go/longrunning/autogen/longrunningpb"
	"github.com/googleapis/cloudsdk/internal/apis"
	"github.com/googleapis/cloudsdk/internal/base"
	"github.com/googleapis/cloudsdk/internal/config"
	"github.com/googleapis/cloudsdk/internal/resources"
	"github.com/googleapis/cloudsdk/internal/waiter"
	"github.com/googleapis/gax-go/v2"
	statuspb "google.golang.org/genproto/googleapis/rpc/status"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/anypb"
)

// Isolate clears every CLOUDSDK_* environment variable for the duration of
// the test and points CLOUDSDK_CONFIG at a new temporary directory, which it
// returns.
func Isolate(t *testing.T) string {
	t.Helper()
	for _, kv := range os.Environ() {
		if k, _, _ := strings.Cut(kv, "="); strings.HasPrefix(k, "CLOUDSDK_") {
			t.Setenv(k, "")
		}
	}
	dir := t.TempDir()
	t.Setenv("CLOUDSDK_CONFIG", dir)
	return dir
}

// Output captures what a command writes.
type Output struct {
	Out bytes.Buffer
	Err bytes.Buffer
}

// NewEnv returns a command environment over an isolated configuration
// directory. props are set as flag overrides. Each register function runs
// against the registry before the property-backed defaults are installed.
// Waits in the environment do not sleep.
func NewEnv(t *testing.T, props map[string]string, register ...func(*resources.Registry) error) (*base.Env, *Output) {
	t.Helper()
	dir := Isolate(t)
	p, err := config.Load(&config.Options{Dir: dir, Overrides: props})
	if err != nil {
		t.Fatal(err)
	}
	catalog := apis.Default()
	reg := resources.NewRegistry(catalog)
	for _, r := range register {
		if err := r(reg); err != nil {
			t.Fatal(err)
		}
	}
	base.InstallParamDefaults(reg, p)
	base.ApplyEndpointOverrides(reg, p)
	out := &Output{}
	env := &base.Env{
		Props:       p,
		Catalog:     catalog,
		Registry:    reg,
		Out:         &out.Out,
		Err:         &out.Err,
		Quiet:       true,
		WaitOptions: waiter.NoWait(),
	}
	return env, out
}

// Context returns the test context carrying env.
func Context(t *testing.T, env *base.Env) context.Context {
	return base.WithEnv(t.Context(), env)
}

// Operations is an in-memory google.longrunning operations client. Each
// GetOperation call returns the next queued state of the operation, and
// repeats the last one once the queue is drained.
type Operations struct {
	mu       sync.Mutex
	ops      map[string][]*longrunningpb.Operation
	Requests []string
}

// Add queues states for the operation name.
func (f *Operations) Add(name string, states ...*longrunningpb.Operation) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.ops == nil {
		f.ops = map[string][]*longrunningpb.Operation{}
	}
	f.ops[name] = append(f.ops[name], states...)
}

func (f *Operations) GetOperation(ctx context.Context, req *longrunningpb.GetOperationRequest, opts ...gax.CallOption) (*longrunningpb.Operation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Requests = append(f.Requests, req.GetName())
	states := f.ops[req.GetName()]
	if len(states) == 0 {
		return nil, status.Errorf(codes.NotFound, "operation %s not found", req.GetName())
	}
	op := states[0]
	if len(states) > 1 {
		f.ops[req.GetName()] = states[1:]
	}
	return op, nil
}

// Pending returns an operation that is not done.
func Pending(name string) *longrunningpb.Operation {
	return &longrunningpb.Operation{Name: name}
}

// Done returns a finished operation with response resp, which may be nil.
func Done(t *testing.T, name string, resp proto.Message) *longrunningpb.Operation {
	t.Helper()
	op := &longrunningpb.Operation{Name: name, Done: true}
	if resp != nil {
		a, err := anypb.New(resp)
		if err != nil {
			t.Fatal(err)
		}
		op.Result = &longrunningpb.Operation_Response{Response: a}
	}
	return op
}

// Failed returns a finished operation with an error.
func Failed(name string, code codes.Code, message string) *longrunningpb.Operation {
	return &longrunningpb.Operation{
		Name:   name,
		Done:   true,
		Result: &longrunningpb.Operation_Error{Error: &statuspb.Status{Code: int32(code), Message: message}},
	}
}
