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

package container

import (
	"context"

	"github.com/googleapis/cloudsdk/internal/resources"
	"github.com/googleapis/cloudsdk/internal/waiter"
	containerv1 "google.golang.org/api/container/v1"
	statuspb "google.golang.org/genproto/googleapis/rpc/status"
	"google.golang.org/grpc/codes"
)

const statusDone = "DONE"

// OperationPoller polls GKE operations, which are not google.longrunning
// operations: they finish when their status is DONE and report failure in
// error or statusMessage.
type OperationPoller struct {
	Service Service
}

func (p *OperationPoller) IsDone(op *containerv1.Operation) (bool, error) {
	if op.Status != statusDone {
		return false, nil
	}
	if s := operationStatus(op); s != nil {
		return true, &waiter.OperationError{Name: op.Name, Status: s}
	}
	return true, nil
}

func (p *OperationPoller) Poll(ctx context.Context, ref *resources.Resource) (*containerv1.Operation, error) {
	return p.Service.GetOperation(ctx, ref.RelativeName())
}

// Result returns the finished operation itself.
func (p *OperationPoller) Result(_ context.Context, op *containerv1.Operation) (*containerv1.Operation, error) {
	return op, nil
}

func operationStatus(op *containerv1.Operation) *statuspb.Status {
	if e := op.Error; e != nil && (e.Message != "" || e.Code != 0) {
		return &statuspb.Status{Code: int32(statusCode(e.Code)), Message: e.Message}
	}
	if op.StatusMessage != "" {
		return &statuspb.Status{Code: int32(codes.Unknown), Message: op.StatusMessage}
	}
	return nil
}

// statusCode maps a GKE status code to a gRPC code. Zero and codes outside
// the gRPC range become Unknown.
func statusCode(c int64) codes.Code {
	if c <= int64(codes.OK) || c > int64(codes.Unauthenticated) {
		return codes.Unknown
	}
	return codes.Code(c)
}
