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

// Package apis describes the Google Cloud APIs gcloud talks to and constructs
// their clients.
package apis

import (
	_ "embed"
	"errors"
	"fmt"
	"maps"
	"regexp"
	"slices"
	"sync"

	"github.com/googleapis/cloudsdk/internal/yaml"
)

//go:embed catalog.yaml
var catalogYAML []byte

var (
	// ErrUnknownAPI is returned for an API that is not in the catalog.
	ErrUnknownAPI = errors.New("unknown API")
	// ErrUnknownVersion is returned for an API version that is not in the
	// catalog.
	ErrUnknownVersion = errors.New("unknown API version")
)

// Catalog lists the known APIs.
type Catalog struct {
	APIs map[string]*API `yaml:"apis"`
}

// API is a single service, such as cloudbuild.
type API struct {
	DefaultVersion string              `yaml:"default_version"`
	Versions       map[string]*Version `yaml:"versions"`
}

// Version is one version of an API.
type Version struct {
	BaseURL     string        `yaml:"base_url"`
	Collections []*Collection `yaml:"collections"`
}

// Collection is a resource collection within an API version.
type Collection struct {
	// Name is the dotted collection name, such as projects.locations.
	Name string `yaml:"name"`

	// Path is the URI template relative to the base URL.
	Path string `yaml:"path"`

	// Params lists the template variables in order. When omitted it is
	// derived from Path.
	Params []string `yaml:"params,omitempty"`
}

var templateParam = regexp.MustCompile(`\{([^}]+)\}`)

// PathParams returns the variable names of a URI template in order.
func PathParams(path string) []string {
	var params []string
	for _, m := range templateParam.FindAllStringSubmatch(path, -1) {
		params = append(params, m[1])
	}
	return params
}

// Load parses a catalog document.
func Load(data []byte) (*Catalog, error) {
	c, err := yaml.Unmarshal[Catalog](data)
	if err != nil {
		return nil, fmt.Errorf("parsing API catalog: %w", err)
	}
	for name, api := range c.APIs {
		if _, ok := api.Versions[api.DefaultVersion]; !ok {
			return nil, fmt.Errorf("API %s: default version %q is not listed", name, api.DefaultVersion)
		}
		for _, v := range api.Versions {
			for _, coll := range v.Collections {
				if len(coll.Params) == 0 {
					coll.Params = PathParams(coll.Path)
				}
			}
		}
	}
	return c, nil
}

var defaultCatalog = sync.OnceValues(func() (*Catalog, error) {
	return Load(catalogYAML)
})

// Default returns the catalog embedded in the binary.
func Default() *Catalog {
	c, err := defaultCatalog()
	if err != nil {
		panic(err)
	}
	return c
}

// Names returns the API names in the catalog, sorted.
func (c *Catalog) Names() []string {
	return slices.Sorted(maps.Keys(c.APIs))
}

// API returns the named API.
func (c *Catalog) API(name string) (*API, error) {
	api, ok := c.APIs[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownAPI, name)
	}
	return api, nil
}

// DefaultVersion returns the version used for api when none is requested.
func (c *Catalog) DefaultVersion(api string) (string, error) {
	a, err := c.API(api)
	if err != nil {
		return "", err
	}
	return a.DefaultVersion, nil
}

// Versions returns the versions of api, sorted.
func (c *Catalog) Versions(api string) ([]string, error) {
	a, err := c.API(api)
	if err != nil {
		return nil, err
	}
	return slices.Sorted(maps.Keys(a.Versions)), nil
}

func (c *Catalog) version(api, version string) (*Version, error) {
	a, err := c.API(api)
	if err != nil {
		return nil, err
	}
	if version == "" {
		version = a.DefaultVersion
	}
	v, ok := a.Versions[version]
	if !ok {
		return nil, fmt.Errorf("%w: %s %s", ErrUnknownVersion, api, version)
	}
	return v, nil
}

// Collections returns the collections of an API version. An empty version
// selects the default.
func (c *Catalog) Collections(api, version string) ([]*Collection, error) {
	v, err := c.version(api, version)
	if err != nil {
		return nil, err
	}
	return v.Collections, nil
}

// BaseURL returns the base URL of an API version. An empty version selects
// the default.
func (c *Catalog) BaseURL(api, version string) (string, error) {
	v, err := c.version(api, version)
	if err != nil {
		return "", err
	}
	return v.BaseURL, nil
}
