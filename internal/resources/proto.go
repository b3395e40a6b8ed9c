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
	"fmt"
	"strings"

	"github.com/googleapis/cloudsdk/internal/apis"
	"google.golang.org/genproto/googleapis/api/annotations"
	"google.golang.org/protobuf/proto"
)

// RegisterProtoResources registers a collection for every pattern of the
// google.api.resource annotation on each message. An empty baseURL selects
// the catalog base URL of the API version.
func (r *Registry) RegisterProtoResources(api, version, baseURL string, msgs ...proto.Message) error {
	if baseURL == "" && r.catalog != nil {
		b, err := r.catalog.BaseURL(api, version)
		if err != nil {
			return err
		}
		baseURL = b
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range msgs {
		desc := m.ProtoReflect().Descriptor()
		rd, _ := proto.GetExtension(desc.Options(), annotations.E_Resource).(*annotations.ResourceDescriptor)
		if rd == nil {
			return fmt.Errorf("%s has no google.api.resource annotation", desc.FullName())
		}
		for _, pattern := range rd.GetPattern() {
			info := &CollectionInfo{
				APIName:    api,
				APIVersion: version,
				BaseURL:    baseURL,
				Name:       CollectionName(pattern),
				Path:       pattern,
				Params:     apis.PathParams(pattern),
			}
			if err := r.register(info); err != nil {
				return fmt.Errorf("registering %s: %w", desc.FullName(), err)
			}
		}
	}
	return nil
}

// CollectionName derives a dotted collection name from a resource pattern by
// joining its literal segments, so
// projects/{project}/locations/{location}/repositories/{repository} becomes
// projects.locations.repositories.
func CollectionName(pattern string) string {
	var literals []string
	for _, tok := range strings.Split(pattern, "/") {
		if !isParam(tok) {
			literals = append(literals, tok)
		}
	}
	return strings.Join(literals, ".")
}
