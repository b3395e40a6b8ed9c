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

package waiter

import (
	"errors"
	"fmt"

	statuspb "google.golang.org/genproto/googleapis/rpc/status"
	"google.golang.org/grpc/status"
)

var (
	// ErrTimeout is wrapped by TimeoutError.
	ErrTimeout = errors.New("operation timed out")
	// ErrAborted is returned when the context is cancelled during a wait.
	ErrAborted = errors.New("aborting wait")
	// ErrOperationFailed is wrapped by OperationError.
	ErrOperationFailed = errors.New("operation failed")
)

const timeoutHint = "it may still be underway remotely"

// TimeoutError is returned when an operation does not finish within the
// wait budget. The operation itself is not cancelled.
type TimeoutError struct {
	Operation string
	Waited    int
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("operation %s has not finished in %d seconds; %s", e.Operation, e.Waited, timeoutHint)
}

func (e *TimeoutError) Unwrap() error { return ErrTimeout }

// OperationError is returned for an operation that finished with an error.
type OperationError struct {
	Name   string
	Status *statuspb.Status
}

func (e *OperationError) Error() string {
	s := status.FromProto(e.Status)
	return fmt.Sprintf("operation %s failed: %s: %s", e.Name, s.Code(), s.Message())
}

func (e *OperationError) Unwrap() error { return ErrOperationFailed }

// GRPCStatus lets status.FromError and status.Code see the operation's
// status.
func (e *OperationError) GRPCStatus() *status.Status {
	return status.FromProto(e.Status)
}
