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
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/longrunning/autogen/longrunningpb"
	"github.com/googleapis/cloudsdk/internal/resources"
	"github.com/googleapis/gax-go/v2"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/reflect/protoregistry"
)

var (
	errNoResponse    = errors.New("operation has no response")
	errResponseType  = errors.New("unexpected operation response type")
	errNoNameInReply = errors.New("operation response has no name field")
)

// OperationsClient fetches google.longrunning operations.
// *lroauto.OperationsClient satisfies it.
type OperationsClient interface {
	GetOperation(ctx context.Context, req *longrunningpb.GetOperationRequest, opts ...gax.CallOption) (*longrunningpb.Operation, error)
}

// ResultGetter fetches the resource a finished operation produced.
type ResultGetter[R any] func(ctx context.Context, name string) (R, error)

// CloudOperationPoller polls google.longrunning operations whose response is
// a resource of type R.
type CloudOperationPoller[R proto.Message] struct {
	Client OperationsClient

	// Getter, when set, fetches the resource named by the response's name
	// field instead of returning the response itself.
	Getter ResultGetter[R]
}

func (p *CloudOperationPoller[R]) IsDone(op *longrunningpb.Operation) (bool, error) {
	return isDone(op)
}

func (p *CloudOperationPoller[R]) Poll(ctx context.Context, ref *resources.Resource) (*longrunningpb.Operation, error) {
	return getOperation(ctx, p.Client, ref)
}

func (p *CloudOperationPoller[R]) Result(ctx context.Context, op *longrunningpb.Operation) (R, error) {
	var zero R
	if op.GetResponse() == nil {
		return zero, fmt.Errorf("%w: %s", errNoResponse, op.GetName())
	}
	msg, err := op.GetResponse().UnmarshalNew()
	if err != nil {
		return zero, fmt.Errorf("decoding response of %s: %w", op.GetName(), err)
	}
	if p.Getter != nil {
		name, err := nameField(msg)
		if err != nil {
			return zero, fmt.Errorf("%w: %s", err, op.GetName())
		}
		return p.Getter(ctx, name)
	}
	r, ok := msg.(R)
	if !ok {
		return zero, fmt.Errorf("%w: %s", errResponseType, msg.ProtoReflect().Descriptor().FullName())
	}
	return r, nil
}

// CloudOperationPollerNoResources polls google.longrunning operations that
// do not produce a resource, such as deletes.
type CloudOperationPollerNoResources struct {
	Client OperationsClient
}

func (p *CloudOperationPollerNoResources) IsDone(op *longrunningpb.Operation) (bool, error) {
	return isDone(op)
}

func (p *CloudOperationPollerNoResources) Poll(ctx context.Context, ref *resources.Resource) (*longrunningpb.Operation, error) {
	return getOperation(ctx, p.Client, ref)
}

// Result returns the unpacked response, the raw Any when its type is not
// linked in, or nil when the operation has no response.
func (p *CloudOperationPollerNoResources) Result(_ context.Context, op *longrunningpb.Operation) (proto.Message, error) {
	resp := op.GetResponse()
	if resp == nil {
		return nil, nil
	}
	msg, err := resp.UnmarshalNew()
	if errors.Is(err, protoregistry.NotFound) {
		return resp, nil
	}
	if err != nil {
		return nil, fmt.Errorf("decoding response of %s: %w", op.GetName(), err)
	}
	return msg, nil
}

func isDone(op *longrunningpb.Operation) (bool, error) {
	if !op.GetDone() {
		return false, nil
	}
	if s := op.GetError(); s != nil {
		return true, &OperationError{Name: op.GetName(), Status: s}
	}
	return true, nil
}

func getOperation(ctx context.Context, client OperationsClient, ref *resources.Resource) (*longrunningpb.Operation, error) {
	return client.GetOperation(ctx, &longrunningpb.GetOperationRequest{Name: ref.RelativeName()})
}

func nameField(msg proto.Message) (string, error) {
	m := msg.ProtoReflect()
	fd := m.Descriptor().Fields().ByName("name")
	if fd == nil || fd.Kind() != protoreflect.StringKind {
		return "", errNoNameInReply
	}
	name := m.Get(fd).String()
	if name == "" {
		return "", errNoNameInReply
	}
	return name, nil
}
