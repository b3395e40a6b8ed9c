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

package builds

import (
	"context"

	cloudbuild "cloud.google.com/go/cloudbuild/apiv1/v2"
	"cloud.google.com/go/cloudbuild/apiv1/v2/cloudbuildpb"
	"cloud.google.com/go/longrunning/autogen/longrunningpb"
	"github.com/googleapis/cloudsdk/internal/apis"
	"github.com/googleapis/cloudsdk/internal/base"
	"github.com/googleapis/gax-go/v2"
)

// Client is the part of the Cloud Build API the commands use.
type Client interface {
	ListBuilds(ctx context.Context, req *cloudbuildpb.ListBuildsRequest, limit int) ([]*cloudbuildpb.Build, error)
	GetBuild(ctx context.Context, req *cloudbuildpb.GetBuildRequest) (*cloudbuildpb.Build, error)
	CancelBuild(ctx context.Context, req *cloudbuildpb.CancelBuildRequest) (*cloudbuildpb.Build, error)
	CreateBuild(ctx context.Context, req *cloudbuildpb.CreateBuildRequest) (*longrunningpb.Operation, error)
	ListBuildTriggers(ctx context.Context, req *cloudbuildpb.ListBuildTriggersRequest, limit int) ([]*cloudbuildpb.BuildTrigger, error)
	RunBuildTrigger(ctx context.Context, req *cloudbuildpb.RunBuildTriggerRequest) (*longrunningpb.Operation, error)
	GetOperation(ctx context.Context, req *longrunningpb.GetOperationRequest, opts ...gax.CallOption) (*longrunningpb.Operation, error)
	Close() error
}

// newClient is replaced in tests.
var newClient = func(ctx context.Context, env *base.Env, command string) (Client, error) {
	c, err := apis.NewCloudBuildClient(ctx, env.Props, command)
	if err != nil {
		return nil, err
	}
	return &gapicClient{c: c}, nil
}

// gapicClient adapts *cloudbuild.Client to Client. Operation handles are
// turned into google.longrunning operations so that they can be printed
// and polled by name.
type gapicClient struct {
	c *cloudbuild.Client
}

func (g *gapicClient) ListBuilds(ctx context.Context, req *cloudbuildpb.ListBuildsRequest, limit int) ([]*cloudbuildpb.Build, error) {
	return apis.Drain[*cloudbuildpb.Build](g.c.ListBuilds(ctx, req), limit)
}

func (g *gapicClient) GetBuild(ctx context.Context, req *cloudbuildpb.GetBuildRequest) (*cloudbuildpb.Build, error) {
	return g.c.GetBuild(ctx, req)
}

func (g *gapicClient) CancelBuild(ctx context.Context, req *cloudbuildpb.CancelBuildRequest) (*cloudbuildpb.Build, error) {
	return g.c.CancelBuild(ctx, req)
}

func (g *gapicClient) CreateBuild(ctx context.Context, req *cloudbuildpb.CreateBuildRequest) (*longrunningpb.Operation, error) {
	op, err := g.c.CreateBuild(ctx, req)
	if err != nil {
		return nil, err
	}
	return g.GetOperation(ctx, &longrunningpb.GetOperationRequest{Name: op.Name()})
}

func (g *gapicClient) ListBuildTriggers(ctx context.Context, req *cloudbuildpb.ListBuildTriggersRequest, limit int) ([]*cloudbuildpb.BuildTrigger, error) {
	return apis.Drain[*cloudbuildpb.BuildTrigger](g.c.ListBuildTriggers(ctx, req), limit)
}

func (g *gapicClient) RunBuildTrigger(ctx context.Context, req *cloudbuildpb.RunBuildTriggerRequest) (*longrunningpb.Operation, error) {
	op, err := g.c.RunBuildTrigger(ctx, req)
	if err != nil {
		return nil, err
	}
	return g.GetOperation(ctx, &longrunningpb.GetOperationRequest{Name: op.Name()})
}

func (g *gapicClient) GetOperation(ctx context.Context, req *longrunningpb.GetOperationRequest, opts ...gax.CallOption) (*longrunningpb.Operation, error) {
	return g.c.LROClient.GetOperation(ctx, req, opts...)
}

func (g *gapicClient) Close() error {
	return g.c.Close()
}
