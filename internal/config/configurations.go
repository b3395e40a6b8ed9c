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

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// DefaultConfiguration is the configuration used when no other is active.
const DefaultConfiguration = "default"

const (
	configurationsDir = "configurations"
	activeConfigFile  = "active_config"
	configFilePrefix  = "config_"
	configFileSuffix  = ".toml"
)

var (
	// ErrInvalidConfigurationName is returned for names that do not match
	// [a-z][-a-z0-9]*.
	ErrInvalidConfigurationName = errors.New("invalid configuration name")
	// ErrConfigurationNotFound is returned when a named configuration does
	// not exist.
	ErrConfigurationNotFound = errors.New("configuration does not exist")
	// ErrConfigurationExists is returned when creating a configuration that
	// already exists.
	ErrConfigurationExists = errors.New("configuration already exists")
	// ErrDeleteActive is returned when deleting the active configuration.
	ErrDeleteActive = errors.New("cannot delete the active configuration")
)

var configurationName = regexp.MustCompile(`^[a-z][-a-z0-9]*$`)

// Configuration is a named set of properties.
type Configuration struct {
	Name       string                       `json:"name"`
	IsActive   bool                         `json:"is_active"`
	Properties map[string]map[string]string `json:"properties"`
}

// Dir returns the gcloud configuration directory: $CLOUDSDK_CONFIG when set,
// otherwise a cloudsdk directory in the user configuration directory.
func Dir() (string, error) {
	if d := os.Getenv("CLOUDSDK_CONFIG"); d != "" {
		return d, nil
	}
	d, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(d, "cloudsdk"), nil
}

// ValidateName reports whether name is an acceptable configuration name.
func ValidateName(name string) error {
	if !configurationName.MatchString(name) {
		return fmt.Errorf("%w: %q must match [a-z][-a-z0-9]*", ErrInvalidConfigurationName, name)
	}
	return nil
}

// ActiveName returns the name of the active configuration. The flag value
// wins, then $CLOUDSDK_ACTIVE_CONFIG_NAME, then the active_config file.
func ActiveName(dir, flag string) (string, error) {
	name := flag
	if name == "" {
		name = os.Getenv("CLOUDSDK_ACTIVE_CONFIG_NAME")
	}
	if name == "" {
		data, err := os.ReadFile(filepath.Join(dir, activeConfigFile))
		switch {
		case err == nil:
			name = strings.TrimSpace(string(data))
		case !errors.Is(err, fs.ErrNotExist):
			return "", err
		}
	}
	if name == "" {
		return DefaultConfiguration, nil
	}
	if err := ValidateName(name); err != nil {
		return "", err
	}
	return name, nil
}

func configurationPath(dir, name string) string {
	return filepath.Join(dir, configurationsDir, configFilePrefix+name+configFileSuffix)
}

func exists(dir, name string) (bool, error) {
	_, err := os.Stat(configurationPath(dir, name))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, err
}

// readConfiguration reads the properties of a named configuration. The
// default configuration exists implicitly.
func readConfiguration(dir, name string) (map[string]map[string]string, error) {
	data, err := os.ReadFile(configurationPath(dir, name))
	if errors.Is(err, fs.ErrNotExist) {
		if name == DefaultConfiguration {
			return map[string]map[string]string{}, nil
		}
		return nil, fmt.Errorf("%w: %s", ErrConfigurationNotFound, name)
	}
	if err != nil {
		return nil, err
	}
	values, err := parseConfiguration(data)
	if err != nil {
		return nil, fmt.Errorf("reading configuration %s: %w", name, err)
	}
	return values, nil
}

func writeConfiguration(dir, name string, values map[string]map[string]string) error {
	data, err := toml.Marshal(values)
	if err != nil {
		return err
	}
	path := configurationPath(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

// Create creates an empty named configuration.
func Create(dir, name string) error {
	if err := ValidateName(name); err != nil {
		return err
	}
	ok, err := exists(dir, name)
	if err != nil {
		return err
	}
	if ok {
		return fmt.Errorf("%w: %s", ErrConfigurationExists, name)
	}
	return writeConfiguration(dir, name, map[string]map[string]string{})
}

// Activate makes name the active configuration.
func Activate(dir, name string) error {
	if err := ValidateName(name); err != nil {
		return err
	}
	ok, err := exists(dir, name)
	if err != nil {
		return err
	}
	if !ok && name != DefaultConfiguration {
		return fmt.Errorf("%w: %s", ErrConfigurationNotFound, name)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, activeConfigFile), []byte(name), 0o600)
}

// Delete removes a named configuration. The active configuration cannot be
// deleted.
func Delete(dir, name string) error {
	active, err := ActiveName(dir, "")
	if err != nil {
		return err
	}
	if name == active {
		return fmt.Errorf("%w: %s", ErrDeleteActive, name)
	}
	err = os.Remove(configurationPath(dir, name))
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %s", ErrConfigurationNotFound, name)
	}
	return err
}

// Describe returns a named configuration and its stored properties.
func Describe(dir, name string) (*Configuration, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}
	values, err := readConfiguration(dir, name)
	if err != nil {
		return nil, err
	}
	active, err := ActiveName(dir, "")
	if err != nil {
		return nil, err
	}
	return &Configuration{Name: name, IsActive: name == active, Properties: values}, nil
}

// List returns every named configuration, sorted by name. The default
// configuration is always listed.
func List(dir string) ([]*Configuration, error) {
	entries, err := os.ReadDir(filepath.Join(dir, configurationsDir))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}
	names := []string{DefaultConfiguration}
	for _, e := range entries {
		n := e.Name()
		if e.IsDir() || !strings.HasPrefix(n, configFilePrefix) || !strings.HasSuffix(n, configFileSuffix) {
			continue
		}
		n = strings.TrimSuffix(strings.TrimPrefix(n, configFilePrefix), configFileSuffix)
		if ValidateName(n) != nil || slices.Contains(names, n) {
			continue
		}
		names = append(names, n)
	}
	slices.Sort(names)
	var out []*Configuration
	for _, n := range names {
		c, err := Describe(dir, n)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}
