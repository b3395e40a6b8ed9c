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
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParse(t *testing.T) {
	for _, test := range []struct {
		name           string
		line           string
		opts           ParseOptions
		wantCollection string
		wantParams     map[string]string
		wantErr        error
	}{
		{
			name:           "url",
			line:           "https://example.googleapis.com/v1/projects/p/zones/z/widgets/w",
			wantCollection: widgets,
			wantParams:     map[string]string{"project": "p", "zone": "z", "widget": "w"},
		},
		{
			name:           "url of another version",
			line:           "https://example.googleapis.com/v2/projects/p/zones/z/widgets/w",
			wantCollection: widgets,
			wantParams:     map[string]string{"projectsId": "p", "zonesId": "z", "widgetsId": "w"},
		},
		{
			name:           "url with escaped name",
			line:           "https://example.googleapis.com/v1/projects/p/zones/z/widgets/w%20x",
			wantCollection: widgets,
			wantParams:     map[string]string{"project": "p", "zone": "z", "widget": "w x"},
		},
		{
			name:           "url where the last param has slashes",
			line:           "https://example.googleapis.com/v1/operations/build/p/abc",
			wantCollection: "example.operations",
			wantParams:     map[string]string{"operation": "build/p/abc"},
		},
		{
			name:           "url with query",
			line:           "https://example.googleapis.com/v1/projects/p?alt=json",
			wantCollection: "example.projects",
			wantParams:     map[string]string{"project": "p"},
		},
		{
			name:    "url of wrong collection",
			line:    "https://example.googleapis.com/v1/projects/p",
			opts:    ParseOptions{Collection: widgets},
			wantErr: ErrWrongCollection,
		},
		{
			name:           "url of other collection allowed",
			line:           "https://example.googleapis.com/v1/projects/p",
			opts:           ParseOptions{Collection: widgets, SkipCollectionCheck: true},
			wantCollection: "example.projects",
			wantParams:     map[string]string{"project": "p"},
		},
		{
			name:    "unknown host",
			line:    "https://nowhere.example.com/v1/projects/p",
			wantErr: ErrInvalidResource,
		},
		{
			name:    "unknown path",
			line:    "https://example.googleapis.com/v1/projects/p/gadgets/g",
			wantErr: ErrInvalidResource,
		},
		{
			name:    "path ends on a literal",
			line:    "https://example.googleapis.com/v1/projects/p/zones",
			wantErr: ErrInvalidResource,
		},
		{
			name:    "empty url param",
			line:    "https://example.googleapis.com/v1/projects//zones/z",
			wantErr: ErrUnknownField,
		},
		{
			name:           "gs object",
			line:           "gs://bkt/dir/file.txt",
			wantCollection: storageObjects,
			wantParams:     map[string]string{"bucket": "bkt", "object": "dir/file.txt"},
		},
		{
			name:           "gs bucket",
			line:           "gs://bkt",
			wantCollection: storageBuckets,
			wantParams:     map[string]string{"bucket": "bkt"},
		},
		{
			name:    "gs without bucket",
			line:    "gs://",
			wantErr: ErrInvalidResource,
		},
		{
			name:           "storage json url",
			line:           "https://storage.googleapis.com/storage/v1/b/bkt/o/dir/file.txt",
			wantCollection: storageObjects,
			wantParams:     map[string]string{"bucket": "bkt", "object": "dir/file.txt"},
		},
		{
			name:           "storage www url",
			line:           "https://www.googleapis.com/storage/v1/b/bkt/o/file.txt",
			wantCollection: storageObjects,
			wantParams:     map[string]string{"bucket": "bkt", "object": "file.txt"},
		},
		{
			name:           "storage alt url object",
			line:           "https://storage.googleapis.com/bkt/dir/file.txt",
			wantCollection: storageObjects,
			wantParams:     map[string]string{"bucket": "bkt", "object": "dir/file.txt"},
		},
		{
			name:           "storage alt url bucket",
			line:           "https://storage.googleapis.com/bkt",
			wantCollection: storageBuckets,
			wantParams:     map[string]string{"bucket": "bkt"},
		},
		{
			name:           "storage object path",
			line:           "bkt/a/b",
			opts:           ParseOptions{Collection: storageObjects},
			wantCollection: storageObjects,
			wantParams:     map[string]string{"bucket": "bkt", "object": "a/b"},
		},
		{
			name:    "storage object without slash",
			line:    "bkt",
			opts:    ParseOptions{Collection: storageObjects},
			wantErr: ErrInvalidResource,
		},
		{
			name:    "no collection",
			line:    "w",
			wantErr: ErrUnknownCollection,
		},
		{
			name:           "collection from prefix",
			line:           "example.projects.zones.widgets::/p/z/w",
			wantCollection: widgets,
			wantParams:     map[string]string{"project": "p", "zone": "z", "widget": "w"},
		},
		{
			name:    "prefix disagrees with collection",
			line:    "example.projects::p",
			opts:    ParseOptions{Collection: widgets},
			wantErr: ErrWrongCollection,
		},
		{
			name:           "relative name",
			line:           "projects/p/zones/z/widgets/w",
			opts:           ParseOptions{Collection: widgets},
			wantCollection: widgets,
			wantParams:     map[string]string{"project": "p", "zone": "z", "widget": "w"},
		},
		{
			name:           "relative name of another version",
			line:           "projects/p/zones/z/widgets/w",
			opts:           ParseOptions{Collection: widgets, APIVersion: "v2"},
			wantCollection: widgets,
			wantParams:     map[string]string{"projectsId": "p", "zonesId": "z", "widgetsId": "w"},
		},
		{
			name:           "collection path with params",
			line:           "w",
			opts:           ParseOptions{Collection: widgets, Params: map[string]Resolver{"project": Value("p"), "zone": Value("z")}},
			wantCollection: widgets,
			wantParams:     map[string]string{"project": "p", "zone": "z", "widget": "w"},
		},
		{
			name:           "collection path without resolving",
			line:           "w",
			opts:           ParseOptions{Collection: widgets, SkipResolve: true},
			wantCollection: widgets,
			wantParams:     map[string]string{"widget": "w"},
		},
		{
			name:    "invalid collection",
			line:    "w",
			opts:    ParseOptions{Collection: "example.gadgets"},
			wantErr: ErrInvalidCollection,
		},
		{
			name:    "unknown api",
			line:    "w",
			opts:    ParseOptions{Collection: "nope.things"},
			wantErr: ErrInvalidCollection,
		},
	} {
		t.Run(test.name, func(t *testing.T) {
			r := newTestRegistry(t)
			got, err := r.Parse(test.line, test.opts)
			if !errors.Is(err, test.wantErr) {
				t.Fatalf("Parse(%q) error = %v, want %v", test.line, err, test.wantErr)
			}
			if err != nil {
				return
			}
			if got.Collection() != test.wantCollection {
				t.Errorf("Collection() = %q, want %q", got.Collection(), test.wantCollection)
			}
			if diff := cmp.Diff(test.wantParams, got.Params()); diff != "" {
				t.Errorf("mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestSelfLinkRoundTrip(t *testing.T) {
	r := newTestRegistry(t)
	for _, line := range []string{
		"example.projects::p",
		"example.projects.zones::/p/z",
		"example.projects.zones.widgets::/p/z/w",
		"example.operations::op-1",
		"gs://bkt/dir/obj",
		"gs://bkt",
	} {
		t.Run(line, func(t *testing.T) {
			res, err := r.Parse(line, ParseOptions{})
			if err != nil {
				t.Fatal(err)
			}
			again, err := r.Parse(res.SelfLink(), ParseOptions{})
			if err != nil {
				t.Fatal(err)
			}
			if !again.Equal(res) {
				t.Errorf("Parse(%q) = %s, want %s", res.SelfLink(), again, res)
			}
			if again.Collection() != res.Collection() {
				t.Errorf("collection = %q, want %q", again.Collection(), res.Collection())
			}
		})
	}
}

func TestSelfLinkEscaping(t *testing.T) {
	r := newTestRegistry(t)
	for _, test := range []struct {
		name       string
		collection string
		params     map[string]string
		want       string
	}{
		{
			name:       "percent in object",
			collection: storageObjects,
			params:     map[string]string{"bucket": "b", "object": "50%"},
			want:       "https://storage.googleapis.com/storage/v1/b/b/o/50%25",
		},
		{
			name:       "query and fragment characters",
			collection: storageObjects,
			params:     map[string]string{"bucket": "b", "object": "dir/x?y#z"},
			want:       "https://storage.googleapis.com/storage/v1/b/b/o/dir/x%3Fy%23z",
		},
		{
			name:       "slash in inner param",
			collection: widgets,
			params:     map[string]string{"project": "p", "zone": "a/b", "widget": "w x"},
			want:       "https://example.googleapis.com/v1/projects/p/zones/a%2Fb/widgets/w%20x",
		},
	} {
		t.Run(test.name, func(t *testing.T) {
			res, err := r.Create(test.collection, test.params)
			if err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff(test.want, res.SelfLink()); diff != "" {
				t.Errorf("SelfLink() mismatch (-want +got):\n%s", diff)
			}
			again, err := r.Parse(res.SelfLink(), ParseOptions{})
			if err != nil {
				t.Fatal(err)
			}
			if again.Collection() != test.collection {
				t.Errorf("collection = %q, want %q", again.Collection(), test.collection)
			}
			if diff := cmp.Diff(test.params, again.Params()); diff != "" {
				t.Errorf("params mismatch (-want +got):\n%s", diff)
			}
			if !again.Equal(res) {
				t.Errorf("Parse(%q) = %s, want %s", res.SelfLink(), again, res)
			}
		})
	}
}

func TestCreate(t *testing.T) {
	r := newTestRegistry(t)
	got, err := r.Create(widgets, map[string]string{"project": "p", "zone": "z", "widget": "w"})
	if err != nil {
		t.Fatal(err)
	}
	if want := "projects/p/zones/z/widgets/w"; got.RelativeName() != want {
		t.Errorf("RelativeName() = %q, want %q", got.RelativeName(), want)
	}
	if _, err := r.Create(widgets, map[string]string{"project": "p"}); !errors.Is(err, ErrUnknownField) {
		t.Errorf("Create() with missing params error = %v, want %v", err, ErrUnknownField)
	}
}

func TestParseRelativeName(t *testing.T) {
	r := newTestRegistry(t)
	for _, test := range []struct {
		name    string
		input   string
		want    map[string]string
		wantErr error
	}{
		{name: "full", input: "projects/p/zones/z/widgets/w", want: map[string]string{"project": "p", "zone": "z", "widget": "w"}},
		{name: "last param absorbs", input: "projects/p/zones/z/widgets/a/b", want: map[string]string{"project": "p", "zone": "z", "widget": "a/b"}},
		{name: "literal mismatch", input: "projects/p/regions/z/widgets/w", wantErr: ErrInvalidResource},
		{name: "too short", input: "projects/p/zones/z", wantErr: ErrInvalidResource},
	} {
		t.Run(test.name, func(t *testing.T) {
			got, err := r.ParseRelativeName(test.input, widgets)
			if !errors.Is(err, test.wantErr) {
				t.Fatalf("ParseRelativeName(%q) error = %v, want %v", test.input, err, test.wantErr)
			}
			if err != nil {
				return
			}
			if diff := cmp.Diff(test.want, got.Params()); diff != "" {
				t.Errorf("mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestResourceAccessors(t *testing.T) {
	r := newTestRegistry(t)
	res, err := r.Parse("https://example.googleapis.com/v1/projects/p/zones/z/widgets/w", ParseOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if got := res.Name(); got != "w" {
		t.Errorf("Name() = %q, want w", got)
	}
	if got := res.Param("zone"); got != "z" {
		t.Errorf("Param(zone) = %q, want z", got)
	}
	if got := res.BaseURL(); got != "https://example.googleapis.com/v1/" {
		t.Errorf("BaseURL() = %q", got)
	}
	if got := res.String(); got != res.SelfLink() {
		t.Errorf("String() = %q, want %q", got, res.SelfLink())
	}

	var chain []string
	for cur := res; ; {
		parent, err := cur.Parent()
		if err != nil {
			if !errors.Is(err, ErrInvalidCollection) {
				t.Fatalf("Parent() error = %v, want %v", err, ErrInvalidCollection)
			}
			break
		}
		chain = append(chain, parent.RelativeName())
		cur = parent
	}
	want := []string{"projects/p/zones/z", "projects/p"}
	if diff := cmp.Diff(want, chain); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestEqual(t *testing.T) {
	r := newTestRegistry(t)
	a, err := r.Create("example.projects", map[string]string{"project": "p"})
	if err != nil {
		t.Fatal(err)
	}
	b, err := r.Parse("https://example.googleapis.com/v1/projects/p", ParseOptions{})
	if err != nil {
		t.Fatal(err)
	}
	c, err := r.Create("example.projects", map[string]string{"project": "q"})
	if err != nil {
		t.Fatal(err)
	}
	if !a.Equal(b) {
		t.Errorf("%s and %s should be equal", a, b)
	}
	if a.Equal(c) {
		t.Errorf("%s and %s should differ", a, c)
	}
	if a.Equal(nil) {
		t.Error("resource should not equal nil")
	}
}
