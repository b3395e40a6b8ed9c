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

package apis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/url"
	"strings"
	"sync"

	artifactregistry "cloud.google.com/go/artifactregistry/apiv1"
	cloudbuild "cloud.google.com/go/cloudbuild/apiv1/v2"
	lroauto "cloud.google.com/go/longrunning/autogen"
	"github.com/google/uuid"
	"github.com/googleapis/cloudsdk/internal/config"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/container/v1"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
)

var invocationID = sync.OnceValue(uuid.NewString)

// UserAgent returns the user agent sent with every request made on behalf of
// command, such as "gcloud.builds.list".
func UserAgent(command string) string {
	return fmt.Sprintf("cloudsdk/%s command/%s invocation-id/%s", config.Version(), command, invocationID())
}

// endpointFunc converts an endpoint override URL to the form a transport
// expects.
type endpointFunc func(override string) (string, error)

// grpcEndpoint turns "https://host/path/" into "host:443".
func grpcEndpoint(override string) (string, error) {
	u, err := url.Parse(override)
	if err != nil {
		return "", err
	}
	if u.Host == "" {
		return "", fmt.Errorf("endpoint override %q has no host", override)
	}
	if u.Port() != "" {
		return u.Host, nil
	}
	return net.JoinHostPort(u.Hostname(), "443"), nil
}

func restEndpoint(override string) (string, error) {
	if _, err := url.Parse(override); err != nil {
		return "", err
	}
	if !strings.HasSuffix(override, "/") {
		override += "/"
	}
	return override, nil
}

// ClientOptions returns the options for a gRPC client of api, derived from
// properties: the endpoint override, credential file override and quota
// project.
func ClientOptions(props *config.Properties, api, command string) ([]option.ClientOption, error) {
	return clientOptions(props, api, command, grpcEndpoint)
}

func clientOptions(props *config.Properties, api, command string, endpoint endpointFunc) ([]option.ClientOption, error) {
	opts := []option.ClientOption{option.WithUserAgent(UserAgent(command))}
	if override := props.Value(config.EndpointOverridesSection + "/" + api); override != "" {
		e, err := endpoint(override)
		if err != nil {
			return nil, fmt.Errorf("api_endpoint_overrides/%s: %w", api, err)
		}
		slog.Debug("using endpoint override", "api", api, "endpoint", e)
		opts = append(opts, option.WithEndpoint(e))
	}
	if f := props.Value(config.AuthCredentialFileOverride); f != "" {
		opts = append(opts, option.WithCredentialsFile(f))
	}
	if q := props.Value(config.BillingQuotaProject); q != "" {
		opts = append(opts, option.WithQuotaProject(q))
	}
	return opts, nil
}

// NewCloudBuildClient returns a Cloud Build client.
func NewCloudBuildClient(ctx context.Context, props *config.Properties, command string) (*cloudbuild.Client, error) {
	opts, err := ClientOptions(props, "cloudbuild", command)
	if err != nil {
		return nil, err
	}
	slog.Debug("creating client", "api", "cloudbuild", "version", "v1")
	return cloudbuild.NewClient(ctx, opts...)
}

// NewArtifactRegistryClient returns an Artifact Registry client.
func NewArtifactRegistryClient(ctx context.Context, props *config.Properties, command string) (*artifactregistry.Client, error) {
	opts, err := ClientOptions(props, "artifactregistry", command)
	if err != nil {
		return nil, err
	}
	slog.Debug("creating client", "api", "artifactregistry", "version", "v1")
	return artifactregistry.NewClient(ctx, opts...)
}

// NewOperationsClient returns a google.longrunning.Operations client that
// talks to api's endpoint.
func NewOperationsClient(ctx context.Context, props *config.Properties, catalog *Catalog, api, command string) (*lroauto.OperationsClient, error) {
	base, err := catalog.BaseURL(api, "")
	if err != nil {
		return nil, err
	}
	endpoint, err := grpcEndpoint(base)
	if err != nil {
		return nil, err
	}
	opts := []option.ClientOption{option.WithEndpoint(endpoint)}
	more, err := ClientOptions(props, api, command)
	if err != nil {
		return nil, err
	}
	// Later options win, so an endpoint override replaces the catalog one.
	opts = append(opts, more...)
	slog.Debug("creating operations client", "api", api, "endpoint", endpoint)
	return lroauto.NewOperationsClient(ctx, opts...)
}

// NewContainerService returns a GKE client. Without a credential file
// override it authenticates with Application Default Credentials.
func NewContainerService(ctx context.Context, props *config.Properties, command string) (*container.Service, error) {
	opts, err := clientOptions(props, "container", command, restEndpoint)
	if err != nil {
		return nil, err
	}
	if props.Value(config.AuthCredentialFileOverride) == "" {
		hc, err := google.DefaultClient(ctx, container.CloudPlatformScope)
		if err != nil {
			return nil, err
		}
		opts = append(opts, option.WithHTTPClient(hc))
	}
	slog.Debug("creating client", "api", "container", "version", "v1")
	svc, err := container.NewService(ctx, opts...)
	if err != nil {
		return nil, err
	}
	svc.UserAgent = UserAgent(command)
	return svc, nil
}

// Drain reads an iterator until iterator.Done. When limit is positive, it
// stops after limit items.
func Drain[T any](it interface{ Next() (T, error) }, limit int) ([]T, error) {
	var out []T
	for limit <= 0 || len(out) < limit {
		v, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}
