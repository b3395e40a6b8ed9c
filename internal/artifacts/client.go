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

package artifacts

import (
	"context"

	artifactregistry "cloud.google.com/go/artifactregistry/apiv1"
	"cloud.google.com/go/artifactregistry/apiv1/artifactregistrypb"
	"cloud.google.com/go/iam/apiv1/iampb"
	"cloud.google.com/go/longrunning/autogen/longrunningpb"
	"github.com/googleapis/cloudsdk/internal/apis"
	"github.com/googleapis/cloudsdk/internal/base"
	"github.com/googleapis/gax-go/v2"
	"google.golang.org/genproto/googleapis/cloud/location"
)

// Client is the part of the Artifact Registry API the commands use.
type Client interface {
	ListRepositories(ctx context.Context, req *artifactregistrypb.ListRepositoriesRequest, limit int) ([]*artifactregistrypb.Repository, error)
	GetRepository(ctx context.Context, req *artifactregistrypb.GetRepositoryRequest) (*artifactregistrypb.Repository, error)
	CreateRepository(ctx context.Context, req *artifactregistrypb.CreateRepositoryRequest) (*longrunningpb.Operation, error)
	DeleteRepository(ctx context.Context, req *artifactregistrypb.DeleteRepositoryRequest) (*longrunningpb.Operation, error)
	GetIamPolicy(ctx context.Context, req *iampb.GetIamPolicyRequest) (*iampb.Policy, error)
	ListLocations(ctx context.Context, req *location.ListLocationsRequest) ([]*location.Location, error)
	GetOperation(ctx context.Context, req *longrunningpb.GetOperationRequest, opts ...gax.CallOption) (*longrunningpb.Operation, error)
	Close() error
}

// newClient is replaced in tests.
var newClient = func(ctx context.Context, env *base.Env, command string) (Client, error) {
	c, err := apis.NewArtifactRegistryClient(ctx, env.Props, command)
	if err != nil {
		return nil, err
	}
	return &gapicClient{c: c}, nil
}

type gapicClient struct {
	c *artifactregistry.Client
}

func (g *gapicClient) ListRepositories(ctx context.Context, req *artifactregistrypb.ListRepositoriesRequest, limit int) ([]*artifactregistrypb.Repository, error) {
	return apis.Drain[*artifactregistrypb.Repository](g.c.ListRepositories(ctx, req), limit)
}

func (g *gapicClient) GetRepository(ctx context.Context, req *artifactregistrypb.GetRepositoryRequest) (*artifactregistrypb.Repository, error) {
	return g.c.GetRepository(ctx, req)
}

func (g *gapicClient) CreateRepository(ctx context.Context, req *artifactregistrypb.CreateRepositoryRequest) (*longrunningpb.Operation, error) {
	op, err := g.c.CreateRepository(ctx, req)
	if err != nil {
		return nil, err
	}
	return g.GetOperation(ctx, &longrunningpb.GetOperationRequest{Name: op.Name()})
}

func (g *gapicClient) DeleteRepository(ctx context.Context, req *artifactregistrypb.DeleteRepositoryRequest) (*longrunningpb.Operation, error) {
	op, err := g.c.DeleteRepository(ctx, req)
	if err != nil {
		return nil, err
	}
	return g.GetOperation(ctx, &longrunningpb.GetOperationRequest{Name: op.Name()})
}

func (g *gapicClient) GetIamPolicy(ctx context.Context, req *iampb.GetIamPolicyRequest) (*iampb.Policy, error) {
	return g.c.GetIamPolicy(ctx, req)
}

func (g *gapicClient) ListLocations(ctx context.Context, req *location.ListLocationsRequest) ([]*location.Location, error) {
	return apis.Drain[*location.Location](g.c.ListLocations(ctx, req), 0)
}

func (g *gapicClient) GetOperation(ctx context.Context, req *longrunningpb.GetOperationRequest, opts ...gax.CallOption) (*longrunningpb.Operation, error) {
	return g.c.LROClient.GetOperation(ctx, req, opts...)
}

func (g *gapicClient) Close() error {
	return g.c.Close()
}
