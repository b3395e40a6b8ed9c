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

package base

import (
	"log/slog"
	"strings"

	"github.com/googleapis/cloudsdk/internal/config"
	"github.com/googleapis/cloudsdk/internal/resources"
)

// property resolves to the first non-empty value of names.
func property(props *config.Properties, names ...string) resources.Resolver {
	return func() (string, error) {
		for _, name := range names {
			if v := props.Value(name); v != "" {
				return v, nil
			}
		}
		return "", nil
	}
}

func requiredProperty(props *config.Properties, name, flag string) resources.Resolver {
	return func() (string, error) {
		if v := props.Value(name); v != "" {
			return v, nil
		}
		return "", &RequiredPropertyError{Property: name, Flag: flag}
	}
}

// InstallParamDefaults makes missing resource params default to the
// properties that hold them.
func InstallParamDefaults(reg *resources.Registry, props *config.Properties) {
	project := requiredProperty(props, config.CoreProject, "project")
	for _, p := range []string{"project", "projectsId", "projectId"} {
		reg.SetParamDefault("", "", p, project)
	}

	artifactsLocation := property(props, config.ArtifactsLocation)
	buildsRegion := property(props, config.BuildsRegion)
	containerLocation := property(props, config.ComputeZone, config.ComputeRegion)
	for _, p := range []string{"location", "locationsId"} {
		reg.SetParamDefault("artifactregistry", "", p, artifactsLocation)
		reg.SetParamDefault("cloudbuild", "", p, buildsRegion)
		reg.SetParamDefault("container", "", p, containerLocation)
	}
	for _, p := range []string{"repository", "repositoriesId"} {
		reg.SetParamDefault("artifactregistry", "", p, property(props, config.ArtifactsRepository))
	}
	reg.SetParamDefault("container", "", "zone", containerLocation)
	for _, p := range []string{"clusterId", "clustersId"} {
		reg.SetParamDefault("container", "", p, property(props, config.ContainerCluster))
	}
	reg.SetParamDefault("compute", "", "zone", property(props, config.ComputeZone))
	reg.SetParamDefault("compute", "", "region", property(props, config.ComputeRegion))
}

// ApplyEndpointOverrides points the registry at the endpoints set in the
// api_endpoint_overrides section.
func ApplyEndpointOverrides(reg *resources.Registry, props *config.Properties) {
	for _, api := range reg.APIs() {
		name := config.EndpointOverridesSection + "/" + api
		if v := props.Value(name); v != "" {
			slog.Debug("endpoint override", "api", api, "endpoint", v)
			reg.SetEndpointOverride(api, strings.TrimSpace(v))
		}
	}
}
