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

package resources

import (
	"errors"
	"maps"
	"net/url"
	"strings"
)

// CollectionInfo describes a resource collection of one API version.
type CollectionInfo struct {
	APIName    string
	APIVersion string
	BaseURL    string

	// Name is the dotted collection name within the API, such as
	// projects.locations.repositories.
	Name string

	// Path is the URI template relative to BaseURL.
	Path string

	// Params lists the template variables of Path in order. The last one is
	// the resource name.
	Params []string
}

// FullName returns the collection name qualified by its API, such as
// artifactregistry.projects.locations.repositories.
func (c *CollectionInfo) FullName() string {
	return c.APIName + "." + c.Name
}

// Resolver supplies a param value that the input did not.
type Resolver func() (string, error)

// Value returns a Resolver for a constant.
func Value(s string) Resolver {
	return func() (string, error) { return s, nil }
}

// Resource is a parsed resource reference. Params missing from the input
// are filled in by Resolve.
type Resource struct {
	info      *CollectionInfo
	baseURL   string
	params    map[string]string
	resolvers map[string]Resolver
	registry  *Registry
	// input is the text the resource was parsed from, used in errors.
	input string
}

// Collection returns the full collection name.
func (r *Resource) Collection() string {
	return r.info.FullName()
}

// Info returns the collection the resource belongs to.
func (r *Resource) Info() *CollectionInfo {
	return r.info
}

// BaseURL returns the endpoint the resource lives at.
func (r *Resource) BaseURL() string {
	return r.baseURL
}

// Name returns the last param, which identifies the resource within its
// parent.
func (r *Resource) Name() string {
	if len(r.info.Params) == 0 {
		return ""
	}
	return r.params[r.info.Params[len(r.info.Params)-1]]
}

// Param returns the value of a single param, or "" if it is not set.
func (r *Resource) Param(name string) string {
	return r.params[name]
}

// Params returns a copy of the param values that are set.
func (r *Resource) Params() map[string]string {
	return maps.Clone(r.params)
}

// RelativeName returns the URI template expanded with the param values.
// Unset params render as *.
func (r *Resource) RelativeName() string {
	return expand(r.info.Path, r.params, false)
}

// SelfLink returns the full URL of the resource. Param values are path
// escaped; the last param keeps its slashes.
func (r *Resource) SelfLink() string {
	return r.baseURL + expand(r.info.Path, r.params, true)
}

// WeakSelfLink resolves what it can and returns the self link. Params that
// remain unknown render as *.
func (r *Resource) WeakSelfLink() string {
	_ = r.WeakResolve()
	return r.SelfLink()
}

// String returns the self link.
func (r *Resource) String() string {
	return r.SelfLink()
}

// Equal reports whether two resources have the same self link.
func (r *Resource) Equal(other *Resource) bool {
	if r == nil || other == nil {
		return r == other
	}
	return r.SelfLink() == other.SelfLink()
}

// WeakResolve fills missing params from the resolvers given at parse time,
// then from the registry defaults. Params that neither supplies stay unset.
// A failing resolver leaves its param unset and does not stop the others;
// the failures are returned joined.
func (r *Resource) WeakResolve() error {
	failed := r.weakResolve()
	var errs []error
	for _, p := range r.info.Params {
		if err, ok := failed[p]; ok {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (r *Resource) weakResolve() map[string]error {
	failed := map[string]error{}
	for _, p := range r.info.Params {
		if r.params[p] != "" {
			continue
		}
		var (
			v   string
			err error
		)
		if resolver, ok := r.resolvers[p]; ok && resolver != nil {
			v, err = resolver()
		} else if r.registry != nil {
			v, err = r.registry.GetParamDefault(r.info.APIName, r.info.Name, p)
		}
		if err != nil {
			failed[p] = err
			continue
		}
		if v != "" {
			r.params[p] = v
		}
	}
	return failed
}

// Resolve is WeakResolve followed by a check that every param is set. The
// first missing param is reported, with its resolver's error if it had one.
func (r *Resource) Resolve() error {
	failed := r.weakResolve()
	for _, p := range r.info.Params {
		if r.params[p] == "" {
			return &UnknownFieldError{Path: r.input, Field: p, Err: failed[p]}
		}
	}
	return nil
}

func isParam(token string) bool {
	return strings.HasPrefix(token, "{") && strings.HasSuffix(token, "}")
}

func expand(template string, params map[string]string, escape bool) string {
	tokens := strings.Split(template, "/")
	for i, tok := range tokens {
		if !isParam(tok) {
			continue
		}
		v := params[tok[1:len(tok)-1]]
		switch {
		case v == "":
			v = "*"
		case escape && i == len(tokens)-1:
			parts := strings.Split(v, "/")
			for j, part := range parts {
				parts[j] = url.PathEscape(part)
			}
			v = strings.Join(parts, "/")
		case escape:
			v = url.PathEscape(v)
		}
		tokens[i] = v
	}
	return strings.Join(tokens, "/")
}
