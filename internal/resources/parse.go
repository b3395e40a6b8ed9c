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
	"fmt"
	"regexp"
	"strings"
)

const (
	storageObjects = "storage.objects"
	storageBuckets = "storage.buckets"

	gcsJSONURL = "https://www.googleapis.com/storage/v1/"
	gcsAltURL  = "https://storage.googleapis.com/"
)

var gcsURLRE = regexp.MustCompile(`^gs://([^/]+)(?:/(.*))?$`)

// ParseOptions controls Parse.
type ParseOptions struct {
	// Collection is the expected collection, such as
	// artifactregistry.projects.locations.repositories. When empty the line
	// must be a URL or carry a collection:: prefix.
	Collection string

	// APIVersion selects the API version of Collection. Empty selects the
	// registry default.
	APIVersion string

	// Params supplies values for params the line leaves out.
	Params map[string]Resolver

	// SkipCollectionCheck accepts a URL that points into a collection other
	// than Collection.
	SkipCollectionCheck bool

	// SkipResolve leaves params the line omits unresolved.
	SkipResolve bool
}

// Parse parses a resource from a command-line argument. The line may be a
// URL, a gs:// storage URL, a relative name of the collection, or a
// collection path.
func (r *Registry) Parse(line string, opts ParseOptions) (*Resource, error) {
	if strings.HasPrefix(line, "https://") || strings.HasPrefix(line, "http://") {
		res, err := r.ParseURL(line)
		if errors.Is(err, ErrInvalidResource) {
			if s, ok := r.parseStorageHTTPURL(line); ok {
				return s, nil
			}
		}
		if err != nil {
			return nil, err
		}
		if !opts.SkipCollectionCheck && opts.Collection != "" && res.Collection() != opts.Collection {
			return nil, &WrongCollectionError{Expected: opts.Collection, Got: res.Collection(), Path: res.SelfLink()}
		}
		return res, nil
	}
	if strings.HasPrefix(line, "gs://") {
		return r.ParseStorageURL(line)
	}

	collection := opts.Collection
	prefix, path := splitCollectionPath(line)
	if collection == "" {
		if prefix == "" {
			return nil, &UnknownCollectionError{Line: line}
		}
		collection = prefix
	}
	info, base, err := r.lookup(collection, opts.APIVersion)
	if err != nil {
		return nil, err
	}
	if prefix != "" && prefix != info.FullName() {
		return nil, &WrongCollectionError{Expected: info.FullName(), Got: prefix, Path: line}
	}

	if collection == storageObjects {
		return r.parseStorageObject(info, base, path, opts.Params)
	}
	if path != "" && !strings.HasPrefix(path, "/") {
		if _, ok := matchTemplate(info.Path, path); ok {
			return r.parseRelativeName(info, base, path)
		}
	}
	return r.parseCollectionPath(info, base, line, opts.Params, !opts.SkipResolve)
}

// Create returns a resource of collection built from params alone.
func (r *Registry) Create(collection string, params map[string]string) (*Resource, error) {
	resolvers := make(map[string]Resolver, len(params))
	for k, v := range params {
		resolvers[k] = Value(v)
	}
	return r.Parse("", ParseOptions{Collection: collection, Params: resolvers})
}

// ParseStorageURL parses gs://bucket or gs://bucket/object.
func (r *Registry) ParseStorageURL(line string) (*Resource, error) {
	m := gcsURLRE.FindStringSubmatch(line)
	if m == nil {
		return nil, &InvalidResourceError{Line: line}
	}
	if m[2] != "" {
		return r.Create(storageObjects, map[string]string{"bucket": m[1], "object": m[2]})
	}
	return r.Create(storageBuckets, map[string]string{"bucket": m[1]})
}

// parseStorageHTTPURL handles the storage URL forms the URL tree does not
// know: the JSON API on www.googleapis.com and bare
// storage.googleapis.com/bucket/object links.
func (r *Registry) parseStorageHTTPURL(line string) (*Resource, bool) {
	var bucket, object string
	switch {
	case strings.HasPrefix(line, gcsJSONURL):
		parts := strings.SplitN(strings.TrimPrefix(line, gcsJSONURL), "/", 4)
		switch {
		case len(parts) == 4 && parts[0] == "b" && parts[2] == "o":
			bucket, object = parts[1], parts[3]
		case len(parts) == 2 && parts[0] == "b":
			bucket = parts[1]
		default:
			return nil, false
		}
	case strings.HasPrefix(line, gcsAltURL):
		rest := strings.TrimPrefix(line, gcsAltURL)
		bucket, object, _ = strings.Cut(rest, "/")
	default:
		return nil, false
	}
	if bucket == "" {
		return nil, false
	}
	var (
		res *Resource
		err error
	)
	if object == "" {
		res, err = r.Create(storageBuckets, map[string]string{"bucket": bucket})
	} else {
		res, err = r.Create(storageObjects, map[string]string{"bucket": bucket, "object": object})
	}
	if err != nil {
		return nil, false
	}
	return res, true
}

func (r *Registry) parseStorageObject(info *CollectionInfo, base, path string, params map[string]Resolver) (*Resource, error) {
	values := map[string]string{}
	for _, p := range []string{"bucket", "object"} {
		if f, ok := params[p]; ok && f != nil {
			v, err := f()
			if err != nil {
				return nil, err
			}
			values[p] = v
		}
	}
	if values["bucket"] == "" || values["object"] == "" {
		bucket, object, ok := strings.Cut(path, "/")
		if !ok {
			return nil, fmt.Errorf("%w: expected bucket/object in %q", ErrInvalidResource, path)
		}
		values["bucket"], values["object"] = bucket, object
	}
	res := r.newResource(info, base, values, nil, path)
	if err := res.Resolve(); err != nil {
		return nil, err
	}
	return res, nil
}

// Parent returns the resource of the enclosing collection: the collection
// whose name drops the last segment, with params taken positionally. The
// result of a top-level collection such as projects is an error.
func (r *Resource) Parent() (*Resource, error) {
	i := strings.LastIndex(r.info.Name, ".")
	if i < 0 || r.registry == nil {
		return nil, fmt.Errorf("%w: %s has no parent collection", ErrInvalidCollection, r.Collection())
	}
	parentName := r.info.APIName + "." + r.info.Name[:i]
	info, err := r.registry.CollectionInfo(parentName, r.info.APIVersion)
	if err != nil {
		return nil, err
	}
	params := map[string]string{}
	for j, p := range info.Params {
		if j >= len(r.info.Params) {
			break
		}
		if v := r.params[r.info.Params[j]]; v != "" {
			params[p] = v
		}
	}
	return r.registry.newResource(info, r.baseURL, params, nil, r.input), nil
}
