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

// Package resources parses resource references.
//
// A reference can be given as a URL
// (https://cloudbuild.googleapis.com/v1/projects/p/builds/b), a relative name
// (projects/p/builds/b), or a collection path whose leading params are
// filled in from flags and properties (b, or p/b, or /p/b). Every form is
// resolved against a Registry of collections, each described by a URI
// template.
package resources

import (
	"fmt"
	"log/slog"
	"maps"
	"net/url"
	"regexp"
	"slices"
	"strings"
	"sync"

	"github.com/googleapis/cloudsdk/internal/apis"
)

type apiVersion struct {
	api     string
	version string
}

// node is one level of the URL tree. Literal path tokens map to children by
// value; every variable token at a level shares the single param child.
type node struct {
	literals map[string]*node
	param    *node
	leaf     *CollectionInfo
}

func newNode() *node {
	return &node{literals: map[string]*node{}}
}

func (n *node) clone() *node {
	if n == nil {
		return nil
	}
	c := &node{literals: make(map[string]*node, len(n.literals)), leaf: n.leaf}
	for k, v := range n.literals {
		c.literals[k] = v.clone()
	}
	c.param = n.param.clone()
	return c
}

// isLastParam reports whether a param child ends the path, so its value may
// contain slashes.
func (n *node) isLastParam() bool {
	return n.leaf != nil && n.param == nil && len(n.literals) == 0
}

// Registry holds the known collections and the defaults used to fill in
// missing params. The zero value is not usable; call NewRegistry.
type Registry struct {
	mu          sync.Mutex
	catalog     *apis.Catalog
	collections map[apiVersion]map[string]*CollectionInfo
	trees       map[apiVersion]*node
	baseURLs    map[apiVersion]string
	fromCatalog map[apiVersion]bool
	pinned      map[string]string
	overrides   map[string]string
	// defaults is keyed by param, then API, then collection. An empty API
	// or collection matches any.
	defaults map[string]map[string]map[string]Resolver
}

// NewRegistry returns a registry that registers APIs from catalog when they
// are first used. catalog may be nil.
func NewRegistry(catalog *apis.Catalog) *Registry {
	return &Registry{
		catalog:     catalog,
		collections: map[apiVersion]map[string]*CollectionInfo{},
		trees:       map[apiVersion]*node{},
		baseURLs:    map[apiVersion]string{},
		fromCatalog: map[apiVersion]bool{},
		pinned:      map[string]string{},
		overrides:   map[string]string{},
		defaults:    map[string]map[string]map[string]Resolver{},
	}
}

// Clone returns an independent copy of the registry.
func (r *Registry) Clone() *Registry {
	r.mu.Lock()
	defer r.mu.Unlock()
	c := NewRegistry(r.catalog)
	for k, v := range r.collections {
		c.collections[k] = maps.Clone(v)
	}
	for k, v := range r.trees {
		c.trees[k] = v.clone()
	}
	c.baseURLs = maps.Clone(r.baseURLs)
	c.fromCatalog = maps.Clone(r.fromCatalog)
	c.pinned = maps.Clone(r.pinned)
	c.overrides = maps.Clone(r.overrides)
	for param, byAPI := range r.defaults {
		c.defaults[param] = map[string]map[string]Resolver{}
		for api, byColl := range byAPI {
			c.defaults[param][api] = maps.Clone(byColl)
		}
	}
	return c
}

// SwitchAPIVersion returns a copy of the registry in which api resolves to
// version.
func (r *Registry) SwitchAPIVersion(api, version string) (*Registry, error) {
	c := r.Clone()
	c.pinned[api] = version
	if err := c.RegisterAPI(api, version); err != nil {
		return nil, err
	}
	return c, nil
}

// Register adds a collection.
func (r *Registry) Register(info CollectionInfo) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.register(&info)
}

func (r *Registry) register(info *CollectionInfo) error {
	key := apiVersion{info.APIName, info.APIVersion}
	if _, ok := r.collections[key][info.Name]; ok {
		return fmt.Errorf("%w: %s %s", ErrAmbiguousAPI, info.FullName(), info.APIVersion)
	}
	if len(info.Params) == 0 {
		info.Params = apis.PathParams(info.Path)
	}
	root, ok := r.trees[key]
	if !ok {
		root = newNode()
		r.trees[key] = root
	}
	n := root
	for _, tok := range strings.Split(info.Path, "/") {
		if isParam(tok) {
			if n.param == nil {
				n.param = newNode()
			}
			n = n.param
			continue
		}
		child, ok := n.literals[tok]
		if !ok {
			child = newNode()
			n.literals[tok] = child
		}
		n = child
	}
	if n.leaf != nil {
		return fmt.Errorf("%w: %s and %s both use %s", ErrAmbiguousPath, n.leaf.FullName(), info.FullName(), info.Path)
	}
	n.leaf = info
	if r.collections[key] == nil {
		r.collections[key] = map[string]*CollectionInfo{}
	}
	r.collections[key][info.Name] = info
	if r.baseURLs[key] == "" {
		r.baseURLs[key] = info.BaseURL
	}
	return nil
}

// RegisterAPI registers every catalog collection of an API version.
// Collections already registered under the same name are kept. An empty
// version selects the pinned version, the only registered version, or the
// catalog default, in that order.
func (r *Registry) RegisterAPI(api, version string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, err := r.registerAPI(api, version)
	return err
}

func (r *Registry) registerAPI(api, version string) (string, error) {
	version, err := r.resolveVersion(api, version)
	if err != nil {
		return "", err
	}
	key := apiVersion{api, version}
	if r.fromCatalog[key] || r.catalog == nil {
		return version, nil
	}
	colls, err := r.catalog.Collections(api, version)
	if err != nil {
		if len(r.collections[key]) > 0 {
			return version, nil
		}
		return "", err
	}
	base, err := r.catalog.BaseURL(api, version)
	if err != nil {
		return "", err
	}
	for _, c := range colls {
		if _, ok := r.collections[key][c.Name]; ok {
			continue
		}
		info := &CollectionInfo{
			APIName:    api,
			APIVersion: version,
			BaseURL:    base,
			Name:       c.Name,
			Path:       c.Path,
			Params:     slices.Clone(c.Params),
		}
		if err := r.register(info); err != nil {
			return "", err
		}
	}
	r.baseURLs[key] = base
	r.fromCatalog[key] = true
	slog.Debug("registered API", "api", api, "version", version)
	return version, nil
}

func (r *Registry) registeredVersions(api string) []string {
	var versions []string
	for k := range r.collections {
		if k.api == api {
			versions = append(versions, k.version)
		}
	}
	slices.Sort(versions)
	return versions
}

func (r *Registry) resolveVersion(api, version string) (string, error) {
	if version != "" {
		return version, nil
	}
	if v, ok := r.pinned[api]; ok {
		return v, nil
	}
	registered := r.registeredVersions(api)
	if len(registered) == 1 {
		return registered[0], nil
	}
	if r.catalog != nil {
		if v, err := r.catalog.DefaultVersion(api); err == nil {
			return v, nil
		}
	}
	if len(registered) > 0 {
		return registered[0], nil
	}
	return "", fmt.Errorf("%w: %s", apis.ErrUnknownAPI, api)
}

// APIs returns the names of every API the registry knows about, sorted.
func (r *Registry) APIs() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	names := map[string]bool{}
	if r.catalog != nil {
		for _, n := range r.catalog.Names() {
			names[n] = true
		}
	}
	for k := range r.collections {
		names[k.api] = true
	}
	return slices.Sorted(maps.Keys(names))
}

// Collections returns the collections of an API, sorted by name. An empty
// version selects the default.
func (r *Registry) Collections(api, version string) ([]*CollectionInfo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	version, err := r.registerAPI(api, version)
	if err != nil {
		return nil, err
	}
	colls := slices.Collect(maps.Values(r.collections[apiVersion{api, version}]))
	slices.SortFunc(colls, func(a, b *CollectionInfo) int { return strings.Compare(a.Name, b.Name) })
	return colls, nil
}

// CollectionInfo returns a registered collection by full name, such as
// cloudbuild.projects.builds.
func (r *Registry) CollectionInfo(collection, version string) (*CollectionInfo, error) {
	api, name, ok := strings.Cut(collection, ".")
	if !ok {
		return nil, &InvalidCollectionError{Collection: collection}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	version, err := r.registerAPI(api, version)
	if err != nil {
		return nil, &InvalidCollectionError{Collection: collection}
	}
	info, ok := r.collections[apiVersion{api, version}][name]
	if !ok {
		return nil, &InvalidCollectionError{Collection: collection}
	}
	return info, nil
}

// SetEndpointOverride replaces the base URL of an API. An override without a
// path keeps the default version path, so https://example.com/ turns
// https://cloudbuild.googleapis.com/v1/ into https://example.com/v1/. An
// empty override removes it.
func (r *Registry) SetEndpointOverride(api, override string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if override == "" {
		delete(r.overrides, api)
		return
	}
	r.overrides[api] = override
}

func applyOverride(override, base string) string {
	u, err := url.Parse(override)
	if err != nil {
		return override
	}
	if u.Path == "" || u.Path == "/" {
		if b, err := url.Parse(base); err == nil {
			return strings.TrimSuffix(override, "/") + b.Path
		}
	}
	if !strings.HasSuffix(override, "/") {
		override += "/"
	}
	return override
}

// baseURL returns the effective base URL of an API version. r.mu must be
// held.
func (r *Registry) baseURL(key apiVersion) string {
	base := r.baseURLs[key]
	if base == "" && r.catalog != nil {
		base, _ = r.catalog.BaseURL(key.api, key.version)
	}
	if o, ok := r.overrides[key.api]; ok {
		return applyOverride(o, base)
	}
	return base
}

// BaseURL returns the effective base URL of an API. An empty version
// selects the default.
func (r *Registry) BaseURL(api, version string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	version, err := r.resolveVersion(api, version)
	if err != nil {
		return "", err
	}
	return r.baseURL(apiVersion{api, version}), nil
}

// SetParamDefault installs a resolver for a param. An empty collection
// applies to every collection of api, and an empty api to every API.
func (r *Registry) SetParamDefault(api, collection, param string, resolver Resolver) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.defaults[param] == nil {
		r.defaults[param] = map[string]map[string]Resolver{}
	}
	if r.defaults[param][api] == nil {
		r.defaults[param][api] = map[string]Resolver{}
	}
	r.defaults[param][api][collection] = resolver
}

// GetParamDefault returns the default for a param of a collection, or "" if
// none is installed. The most specific resolver wins.
func (r *Registry) GetParamDefault(api, collection, param string) (string, error) {
	r.mu.Lock()
	byAPI := r.defaults[param]
	var resolver Resolver
	for _, k := range [][2]string{{api, collection}, {api, ""}, {"", collection}, {"", ""}} {
		if f, ok := byAPI[k[0]][k[1]]; ok && f != nil {
			resolver = f
			break
		}
	}
	r.mu.Unlock()
	if resolver == nil {
		return "", nil
	}
	return resolver()
}

func (r *Registry) newResource(info *CollectionInfo, base string, params map[string]string, resolvers map[string]Resolver, input string) *Resource {
	if params == nil {
		params = map[string]string{}
	}
	return &Resource{
		info:      info,
		baseURL:   base,
		params:    params,
		resolvers: resolvers,
		registry:  r,
		input:     input,
	}
}

func (r *Registry) lookup(collection, version string) (*CollectionInfo, string, error) {
	info, err := r.CollectionInfo(collection, version)
	if err != nil {
		return nil, "", err
	}
	r.mu.Lock()
	base := r.baseURL(apiVersion{info.APIName, info.APIVersion})
	r.mu.Unlock()
	return info, base, nil
}

var collectionPathRE = regexp.MustCompile(`^(?:([a-z][a-zA-Z0-9]*(?:\.[a-zA-Z][a-zA-Z0-9]*)+)::)?(.*)$`)

// splitCollectionPath splits "collection::path" into its parts. The
// collection is empty when there is no prefix.
func splitCollectionPath(line string) (string, string) {
	m := collectionPathRE.FindStringSubmatch(line)
	return m[1], m[2]
}

// ParseCollectionPath parses a collection path such as "b", "p/b" or "/p/b".
// Without a leading slash the path holds either the last param alone or every
// param but the first; leading params that are missing come from params and
// then from the registry defaults. With resolve, a param that stays missing
// is an error.
func (r *Registry) ParseCollectionPath(collection, path string, params map[string]Resolver, resolve bool) (*Resource, error) {
	info, base, err := r.lookup(collection, "")
	if err != nil {
		return nil, err
	}
	return r.parseCollectionPath(info, base, path, params, resolve)
}

func (r *Registry) parseCollectionPath(info *CollectionInfo, base, path string, params map[string]Resolver, resolve bool) (*Resource, error) {
	fields, err := fieldsForCollection(info, path)
	if err != nil {
		return nil, err
	}
	values := map[string]string{}
	for i, p := range info.Params {
		if fields[i] != "" {
			values[p] = fields[i]
		}
	}
	res := r.newResource(info, base, values, params, path)
	if resolve {
		if err := res.Resolve(); err != nil {
			return nil, err
		}
	}
	return res, nil
}

func fieldsForCollection(info *CollectionInfo, line string) ([]string, error) {
	total := len(info.Params)
	if line == "" {
		return make([]string, total), nil
	}
	collection, path := splitCollectionPath(line)
	if collection != "" && collection != info.FullName() {
		return nil, &WrongCollectionError{Expected: info.FullName(), Got: collection, Path: line}
	}
	hasProject := strings.HasPrefix(path, "/")
	fields := strings.Split(path, "/")
	if hasProject {
		fields = fields[1:]
	}
	wrong := &WrongFieldNumberError{Path: path, Params: info.Params}
	switch {
	case hasProject && len(fields) != total:
		return nil, wrong
	case len(fields) > total:
		return nil, wrong
	case !hasProject && len(fields) != 1 && len(fields) != total-1:
		return nil, wrong
	case slices.Contains(fields, ""):
		return nil, wrong
	}
	return append(make([]string, total-len(fields)), fields...), nil
}

// matchTemplate matches a relative name against a URI template. The last
// param absorbs any remaining tokens.
func matchTemplate(template, name string) (map[string]string, bool) {
	tt := strings.Split(template, "/")
	nt := strings.Split(name, "/")
	if len(nt) < len(tt) {
		return nil, false
	}
	params := map[string]string{}
	for i, tok := range tt {
		if !isParam(tok) {
			if nt[i] != tok {
				return nil, false
			}
			continue
		}
		p := tok[1 : len(tok)-1]
		if i == len(tt)-1 {
			params[p] = strings.Join(nt[i:], "/")
			return params, true
		}
		params[p] = nt[i]
	}
	return params, len(nt) == len(tt)
}

// ParseRelativeName parses a name such as projects/p/locations/l/repositories/r
// as a resource of collection.
func (r *Registry) ParseRelativeName(name, collection string) (*Resource, error) {
	info, base, err := r.lookup(collection, "")
	if err != nil {
		return nil, err
	}
	return r.parseRelativeName(info, base, name)
}

func (r *Registry) parseRelativeName(info *CollectionInfo, base, name string) (*Resource, error) {
	params, ok := matchTemplate(info.Path, name)
	if !ok {
		return nil, &InvalidResourceError{Line: name}
	}
	res := r.newResource(info, base, params, nil, name)
	if err := res.Resolve(); err != nil {
		return nil, err
	}
	return res, nil
}

// ParseURL parses the URL of a resource.
func (r *Registry) ParseURL(rawURL string) (*Resource, error) {
	r.mu.Lock()
	key, base, ok := r.matchBase(rawURL)
	if !ok {
		r.mu.Unlock()
		return nil, &InvalidResourceError{Line: rawURL}
	}
	if _, err := r.registerAPI(key.api, key.version); err != nil {
		r.mu.Unlock()
		return nil, &InvalidResourceError{Line: rawURL}
	}
	root := r.trees[key]
	r.mu.Unlock()

	rest := rawURL[len(base):]
	if i := strings.IndexAny(rest, "?#"); i >= 0 {
		rest = rest[:i]
	}
	rest = strings.TrimSuffix(rest, "/")
	if rest == "" || root == nil {
		return nil, &InvalidResourceError{Line: rawURL}
	}
	tokens := strings.Split(rest, "/")
	var values []string
	n := root
	for i := 0; i < len(tokens); i++ {
		if child, ok := n.literals[tokens[i]]; ok {
			n = child
			continue
		}
		if n.param == nil {
			return nil, &InvalidResourceError{Line: rawURL}
		}
		next := n.param
		tok := tokens[i]
		if next.isLastParam() {
			tok = strings.Join(tokens[i:], "/")
			i = len(tokens)
		}
		v, err := url.PathUnescape(tok)
		if err != nil {
			return nil, &InvalidResourceError{Line: rawURL}
		}
		values = append(values, v)
		n = next
	}
	if n.leaf == nil || len(values) != len(n.leaf.Params) {
		return nil, &InvalidResourceError{Line: rawURL}
	}
	params := map[string]string{}
	for i, p := range n.leaf.Params {
		if values[i] != "" {
			params[p] = values[i]
		}
	}
	res := r.newResource(n.leaf, base, params, nil, rawURL)
	if err := res.Resolve(); err != nil {
		return nil, err
	}
	return res, nil
}

// matchBase finds the API version whose base URL is the longest prefix of
// rawURL. Both the default and the overridden base URL match. r.mu must be
// held.
func (r *Registry) matchBase(rawURL string) (apiVersion, string, bool) {
	keys := map[apiVersion]bool{}
	for k := range r.collections {
		keys[k] = true
	}
	if r.catalog != nil {
		for _, api := range r.catalog.Names() {
			versions, _ := r.catalog.Versions(api)
			for _, v := range versions {
				keys[apiVersion{api, v}] = true
			}
		}
	}
	var (
		best     apiVersion
		bestBase string
	)
	for k := range keys {
		candidates := []string{r.baseURL(k), r.baseURLs[k]}
		if r.catalog != nil {
			if b, err := r.catalog.BaseURL(k.api, k.version); err == nil {
				candidates = append(candidates, b)
			}
		}
		for _, b := range candidates {
			if b == "" || !strings.HasPrefix(rawURL, b) {
				continue
			}
			if len(b) > len(bestBase) || (len(b) == len(bestBase) && lessKey(k, best)) {
				best, bestBase = k, b
			}
		}
	}
	return best, bestBase, bestBase != ""
}

func lessKey(a, b apiVersion) bool {
	if a.api != b.api {
		return a.api < b.api
	}
	return a.version < b.version
}
