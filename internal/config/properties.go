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

// Package config reads and writes gcloud properties and named
// configurations.
//
// A property is addressed as SECTION/NAME. Its value is taken from, in order,
// a command-line override, the CLOUDSDK_SECTION_NAME environment variable,
// the active named configuration, and the property default.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// Known properties.
const (
	CoreProject                = "core/project"
	CoreAccount                = "core/account"
	CoreVerbosity              = "core/verbosity"
	CoreDisablePrompts         = "core/disable_prompts"
	ComputeZone                = "compute/zone"
	ComputeRegion              = "compute/region"
	BuildsRegion               = "builds/region"
	ArtifactsLocation          = "artifacts/location"
	ArtifactsRepository        = "artifacts/repository"
	ContainerCluster           = "container/cluster"
	AuthCredentialFileOverride = "auth/credential_file_override"
	BillingQuotaProject        = "billing/quota_project"
	GcloudignoreEnabled        = "gcloudignore/enabled"
)

// EndpointOverridesSection holds one property per API, named after the API,
// whose value replaces the API's default endpoint.
const EndpointOverridesSection = "api_endpoint_overrides"

var (
	// ErrUnknownProperty is returned for a SECTION/NAME that is not a known
	// property.
	ErrUnknownProperty = errors.New("unknown property")
	// ErrInvalidValue is returned when a value fails the property's
	// validation.
	ErrInvalidValue = errors.New("invalid property value")
)

// Verbosities lists the accepted values of core/verbosity, from most to least
// verbose.
var Verbosities = []string{"debug", "info", "warning", "error", "critical", "none"}

type property struct {
	defaultValue string
	validate     func(string) error
}

var properties = map[string]property{
	CoreProject:                {},
	CoreAccount:                {},
	CoreVerbosity:              {defaultValue: "warning", validate: oneOf(Verbosities)},
	CoreDisablePrompts:         {defaultValue: "false", validate: isBool},
	ComputeZone:                {},
	ComputeRegion:              {},
	BuildsRegion:               {defaultValue: "global"},
	ArtifactsLocation:          {},
	ArtifactsRepository:        {},
	ContainerCluster:           {},
	AuthCredentialFileOverride: {},
	BillingQuotaProject:        {},
	GcloudignoreEnabled:        {defaultValue: "true", validate: isBool},
}

func oneOf(values []string) func(string) error {
	return func(v string) error {
		if !slices.Contains(values, v) {
			return fmt.Errorf("%w: %q must be one of [%s]", ErrInvalidValue, v, strings.Join(values, ", "))
		}
		return nil
	}
}

func isBool(v string) error {
	if _, err := strconv.ParseBool(v); err != nil {
		return fmt.Errorf("%w: %q is not a boolean", ErrInvalidValue, v)
	}
	return nil
}

// Canonical returns the SECTION/NAME form of a property name. A bare NAME is
// in section core.
func Canonical(name string) (string, error) {
	if !strings.Contains(name, "/") {
		name = "core/" + name
	}
	section, key, _ := strings.Cut(name, "/")
	if section == EndpointOverridesSection && key != "" && !strings.Contains(key, "/") {
		return name, nil
	}
	if _, ok := properties[name]; !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownProperty, name)
	}
	return name, nil
}

// Names returns the names of every known property, sorted.
func Names() []string {
	return slices.Sorted(maps.Keys(properties))
}

// envName returns the environment variable that overrides a property.
func envName(name string) string {
	return "CLOUDSDK_" + strings.ToUpper(strings.ReplaceAll(name, "/", "_"))
}

// Options configures Load.
type Options struct {
	// Dir is the configuration directory. When empty, Dir() is used.
	Dir string

	// Configuration selects the named configuration, as --configuration does.
	Configuration string

	// Overrides maps SECTION/NAME to values set by command-line flags.
	Overrides map[string]string
}

// Properties is the property view of one named configuration.
type Properties struct {
	dir       string
	name      string
	overrides map[string]string
	values    map[string]map[string]string
}

// Load resolves the active configuration and reads its properties.
func Load(opts *Options) (*Properties, error) {
	if opts == nil {
		opts = &Options{}
	}
	dir := opts.Dir
	if dir == "" {
		d, err := Dir()
		if err != nil {
			return nil, err
		}
		dir = d
	}
	name, err := ActiveName(dir, opts.Configuration)
	if err != nil {
		return nil, err
	}
	values, err := readConfiguration(dir, name)
	if err != nil {
		return nil, err
	}
	p := &Properties{
		dir:       dir,
		name:      name,
		overrides: map[string]string{},
		values:    values,
	}
	for k, v := range opts.Overrides {
		if v == "" {
			continue
		}
		canonical, err := Canonical(k)
		if err != nil {
			return nil, err
		}
		p.overrides[canonical] = v
	}
	slog.Debug("loaded configuration", "name", name, "dir", dir)
	return p, nil
}

// Configuration returns the name of the configuration the properties were
// read from.
func (p *Properties) Configuration() string {
	return p.name
}

// Dir returns the configuration directory the properties were read from.
func (p *Properties) Dir() string {
	return p.dir
}

// Get returns the effective value of a property, or "" if it has none.
func (p *Properties) Get(name string) (string, error) {
	name, err := Canonical(name)
	if err != nil {
		return "", err
	}
	if v, ok := p.overrides[name]; ok {
		return v, nil
	}
	if v, ok := os.LookupEnv(envName(name)); ok && v != "" {
		return v, nil
	}
	section, key, _ := strings.Cut(name, "/")
	if v, ok := p.values[section][key]; ok {
		return v, nil
	}
	return properties[name].defaultValue, nil
}

// Value is Get for property names known to be valid. Unknown names yield "".
func (p *Properties) Value(name string) string {
	v, _ := p.Get(name)
	return v
}

// Bool returns the effective value of a boolean property.
func (p *Properties) Bool(name string) bool {
	b, _ := strconv.ParseBool(p.Value(name))
	return b
}

// Set stores a property in the configuration file.
func (p *Properties) Set(name, value string) error {
	name, err := Canonical(name)
	if err != nil {
		return err
	}
	if v := properties[name].validate; v != nil {
		if err := v(value); err != nil {
			return err
		}
	}
	section, key, _ := strings.Cut(name, "/")
	if p.values[section] == nil {
		p.values[section] = map[string]string{}
	}
	p.values[section][key] = value
	return writeConfiguration(p.dir, p.name, p.values)
}

// Unset removes a property from the configuration file. Unsetting a property
// that has no value is not an error.
func (p *Properties) Unset(name string) error {
	name, err := Canonical(name)
	if err != nil {
		return err
	}
	section, key, _ := strings.Cut(name, "/")
	if _, ok := p.values[section][key]; !ok {
		return nil
	}
	delete(p.values[section], key)
	if len(p.values[section]) == 0 {
		delete(p.values, section)
	}
	return writeConfiguration(p.dir, p.name, p.values)
}

// List returns the properties stored in the configuration file, keyed by
// section then name.
func (p *Properties) List() map[string]map[string]string {
	out := make(map[string]map[string]string, len(p.values))
	for section, kv := range p.values {
		out[section] = maps.Clone(kv)
	}
	return out
}

func parseConfiguration(data []byte) (map[string]map[string]string, error) {
	values := map[string]map[string]string{}
	if err := toml.Unmarshal(data, &values); err != nil {
		return nil, err
	}
	return values, nil
}
