// Copyright 2025 Google LLC
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

package yaml

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

type testConfig struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"`
}

func TestUnmarshal(t *testing.T) {
	got, err := Unmarshal[testConfig]([]byte("name: test\nversion: v1.0.0\n"))
	if err != nil {
		t.Fatal(err)
	}
	want := &testConfig{Name: "test", Version: "v1.0.0"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestUnmarshalError(t *testing.T) {
	_, err := Unmarshal[testConfig]([]byte("name: [invalid"))
	if err == nil {
		t.Error("Unmarshal() expected error for invalid YAML")
	}
}

func TestMarshal(t *testing.T) {
	input := &testConfig{Name: "test", Version: "v1.0.0"}
	data, err := Marshal(input)
	if err != nil {
		t.Fatal(err)
	}
	got, err := Unmarshal[testConfig](data)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(input, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestRead(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.yaml")
	if err := os.WriteFile(path, []byte("name: test\nversion: v1.0.0\n"), 0644); err != nil {
		t.Fatal(err)
	}
	got, err := Read[testConfig](path)
	if err != nil {
		t.Fatal(err)
	}
	want := &testConfig{Name: "test", Version: "v1.0.0"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestMarshalFormatted(t *testing.T) {
	got, err := Marshal(map[string]any{"steps": []map[string]string{{"name": "ubuntu"}}})
	if err != nil {
		t.Fatal(err)
	}
	want := "steps:\n  - name: ubuntu\n"
	if diff := cmp.Diff(want, string(got)); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestReadError(t *testing.T) {
	_, err := Read[testConfig]("/nonexistent/path/file.yaml")
	if err == nil {
		t.Error("Read() expected error for nonexistent file")
	}
}

func TestToJSON(t *testing.T) {
	for _, test := range []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "scalars",
			input: "timeout: 600s\nqueueTtl: 10s\n",
			want:  `{"queueTtl":"10s","timeout":"600s"}`,
		},
		{
			name: "nested",
			input: `steps:
- name: gcr.io/cloud-builders/docker
  args: [build, -t, img, .]
substitutions:
  _TAG: v1
`,
			want: `{"steps":[{"args":["build","-t","img","."],"name":"gcr.io/cloud-builders/docker"}],"substitutions":{"_TAG":"v1"}}`,
		},
	} {
		t.Run(test.name, func(t *testing.T) {
			got, err := ToJSON([]byte(test.input))
			if err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff(test.want, string(got)); diff != "" {
				t.Errorf("mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestToJSONError(t *testing.T) {
	for _, test := range []struct {
		name  string
		input string
	}{
		{name: "invalid yaml", input: "steps: [unterminated"},
		{name: "non-string key", input: "1: one\n"},
	} {
		t.Run(test.name, func(t *testing.T) {
			if _, err := ToJSON([]byte(test.input)); err == nil {
				t.Error("ToJSON() expected error")
			}
		})
	}
}
