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

	"github.com/googleapis/cloudsdk/internal/apis"
	"github.com/googleapis/cloudsdk/internal/base"
	containerv1 "google.golang.org/api/container/v1"
)

// Service is the part of the GKE API the commands use. Names are relative
// names such as projects/p/locations/l/clusters/c.
type Service interface {
	ListClusters(ctx context.Context, parent string) (*containerv1.ListClustersResponse, error)
	GetCluster(ctx context.Context, name string) (*containerv1.Cluster, error)
	ListOperations(ctx context.Context, parent string) (*containerv1.ListOperationsResponse, error)
	GetOperation(ctx context.Context, name string) (*containerv1.Operation, error)
	CancelOperation(ctx context.Context, name string) error
}

// newService is replaced in tests.
var newService = func(ctx context.Context, env *base.Env, command string) (Service, error) {
	svc, err := apis.NewContainerService(ctx, env.Props, command)
	if err != nil {
		return nil, err
	}
	return &apiaryService{svc: svc}, nil
}

type apiaryService struct {
	svc *containerv1.Service
}

func (a *apiaryService) ListClusters(ctx context.Context, parent string) (*containerv1.ListClustersResponse, error) {
	return a.svc.Projects.Locations.Clusters.List(parent).Context(ctx).Do()
}

func (a *apiaryService) GetCluster(ctx context.Context, name string) (*containerv1.Cluster, error) {
	return a.svc.Projects.Locations.Clusters.Get(name).Context(ctx).Do()
}

func (a *apiaryService) ListOperations(ctx context.Context, parent string) (*containerv1.ListOperationsResponse, error) {
	return a.svc.Projects.Locations.Operations.List(parent).Context(ctx).Do()
}

func (a *apiaryService) GetOperation(ctx context.Context, name string) (*containerv1.Operation, error) {
	return a.svc.Projects.Locations.Operations.Get(name).Context(ctx).Do()
}

func (a *apiaryService) CancelOperation(ctx context.Context, name string) error {
	_, err := a.svc.Projects.Locations.Operations.Cancel(name, &containerv1.CancelOperationRequest{Name: name}).Context(ctx).Do()
	return err
}
