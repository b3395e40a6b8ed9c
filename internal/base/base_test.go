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
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/googleapis/cloudsdk/internal/apis"
	"github.com/googleapis/cloudsdk/internal/config"
	"github.com/googleapis/cloudsdk/internal/printer"
	"github.com/googleapis/cloudsdk/internal/resources"
	"github.com/googleapis/cloudsdk/internal/waiter"
	"github.com/urfave/cli/v3"
)

func newEnv(t *testing.T, props map[string]string) (*Env, *bytes.Buffer, *bytes.Buffer) {
	t.Helper()
	for _, v := range []string{
		"CLOUDSDK_CONFIG",
		"CLOUDSDK_ACTIVE_CONFIG_NAME",
		"CLOUDSDK_CORE_PROJECT",
		"CLOUDSDK_COMPUTE_ZONE",
		"CLOUDSDK_COMPUTE_REGION",
		"CLOUDSDK_ARTIFACTS_LOCATION",
		"CLOUDSDK_ARTIFACTS_REPOSITORY",
		"CLOUDSDK_BUILDS_REGION",
		"CLOUDSDK_API_ENDPOINT_OVERRIDES_CLOUDBUILD",
	} {
		t.Setenv(v, "")
	}
	p, err := config.Load(&config.Options{Dir: t.TempDir(), Overrides: props})
	if err != nil {
		t.Fatal(err)
	}
	reg := resources.NewRegistry(apis.Default())
	InstallParamDefaults(reg, p)
	ApplyEndpointOverrides(reg, p)
	var out, errOut bytes.Buffer
	return &Env{Props: p, Catalog: apis.Default(), Registry: reg, Out: &out, Err: &errOut}, &out, &errOut
}

func TestFromContext(t *testing.T) {
	env := &Env{Format: "json"}
	got, err := FromContext(WithEnv(t.Context(), env))
	if err != nil {
		t.Fatal(err)
	}
	if got != env {
		t.Errorf("FromContext() = %p, want %p", got, env)
	}
	if _, err := FromContext(context.Background()); !errors.Is(err, errNoEnv) {
		t.Errorf("FromContext() error = %v, want %v", err, errNoEnv)
	}
}

func TestPrint(t *testing.T) {
	type item struct {
		Name string `json:"name"`
	}
	for _, test := range []struct {
		name   string
		format string
		want   string
	}{
		{name: "command default", format: "", want: "name: a\n---\nname: b\n"},
		{name: "flag", format: "value(name)", want: "a\nb\n"},
	} {
		t.Run(test.name, func(t *testing.T) {
			env, out, _ := newEnv(t, nil)
			env.Format = test.format
			if err := PrintList(env, []item{{"a"}, {"b"}}, "yaml"); err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff(test.want, out.String()); diff != "" {
				t.Errorf("mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestPrintUnknownFormat(t *testing.T) {
	env, _, _ := newEnv(t, nil)
	env.Format = "table(name)"
	if err := env.Print(struct{}{}, "yaml"); !errors.Is(err, printer.ErrUnknownFormat) {
		t.Errorf("Print() error = %v, want %v", err, printer.ErrUnknownFormat)
	}
}

func TestStatus(t *testing.T) {
	env, _, errOut := newEnv(t, nil)
	env.Status("Created [%s].", "r")
	if got, want := errOut.String(), "Created [r].\n"; got != want {
		t.Errorf("Status() wrote %q, want %q", got, want)
	}
}

func TestPrintln(t *testing.T) {
	env, out, _ := newEnv(t, nil)
	env.Println("a/b.txt")
	if got, want := out.String(), "a/b.txt\n"; got != want {
		t.Errorf("Println() wrote %q, want %q", got, want)
	}
}

func TestProject(t *testing.T) {
	env, _, _ := newEnv(t, map[string]string{"project": "my-project"})
	got, err := env.Project()
	if err != nil {
		t.Fatal(err)
	}
	if got != "my-project" {
		t.Errorf("Project() = %q, want %q", got, "my-project")
	}

	env, _, _ = newEnv(t, nil)
	_, err = env.Project()
	if !errors.Is(err, ErrRequiredProperty) {
		t.Fatalf("Project() error = %v, want %v", err, ErrRequiredProperty)
	}
	want := "the required property [core/project] is not fully specified; set it with `gcloud config set core/project VALUE` or pass --project"
	if err.Error() != want {
		t.Errorf("Project() error = %q, want %q", err, want)
	}
}

func TestInstallParamDefaults(t *testing.T) {
	props := map[string]string{
		"project":              "p",
		"artifacts/location":   "us",
		"artifacts/repository": "r",
		"compute/zone":         "us-central1-a",
		"builds/region":        "europe-west1",
	}
	for _, test := range []struct {
		name       string
		line       string
		collection string
		want       string
	}{
		{
			name:       "artifact registry",
			line:       "pkg",
			collection: "artifactregistry.projects.locations.repositories.packages",
			want:       "projects/p/locations/us/repositories/r/packages/pkg",
		},
		{
			name:       "cloud build",
			line:       "op-1",
			collection: "cloudbuild.projects.locations.operations",
			want:       "projects/p/locations/europe-west1/operations/op-1",
		},
		{
			name:       "container zone",
			line:       "c1",
			collection: "container.projects.zones.clusters",
			want:       "projects/p/zones/us-central1-a/clusters/c1",
		},
		{
			name:       "compute",
			line:       "vm",
			collection: "compute.instances",
			want:       "projects/p/zones/us-central1-a/instances/vm",
		},
	} {
		t.Run(test.name, func(t *testing.T) {
			env, _, _ := newEnv(t, props)
			ref, err := env.Parse(test.line, test.collection, nil)
			if err != nil {
				t.Fatal(err)
			}
			if got := ref.RelativeName(); got != test.want {
				t.Errorf("RelativeName() = %q, want %q", got, test.want)
			}
		})
	}
}

func TestInstallParamDefaultsMissingProject(t *testing.T) {
	env, _, _ := newEnv(t, nil)
	_, err := env.Parse("vm", "compute.instances", map[string]resources.Resolver{"zone": resources.Value("z")})
	if !errors.Is(err, ErrRequiredProperty) {
		t.Errorf("Parse() error = %v, want %v", err, ErrRequiredProperty)
	}
}

func TestApplyEndpointOverrides(t *testing.T) {
	env, _, _ := newEnv(t, map[string]string{
		"project":                           "p",
		"api_endpoint_overrides/cloudbuild": "https://private-cloudbuild.example.com/",
	})
	ref, err := env.Parse("op-1", "cloudbuild.operations", nil)
	if err != nil {
		t.Fatal(err)
	}
	if got, want := ref.SelfLink(), "https://private-cloudbuild.example.com/v1/operations/op-1"; got != want {
		t.Errorf("SelfLink() = %q, want %q", got, want)
	}
}

func TestWaitOpts(t *testing.T) {
	env, _, _ := newEnv(t, nil)
	env.Quiet = true
	if _, ok := env.Tracker("Waiting").(waiter.NoOpTracker); !ok {
		t.Errorf("Tracker() = %T in quiet mode, want waiter.NoOpTracker", env.Tracker("Waiting"))
	}
	env.Quiet = false
	if _, ok := env.Tracker("Waiting").(*waiter.ProgressTracker); !ok {
		t.Errorf("Tracker() = %T, want *waiter.ProgressTracker", env.Tracker("Waiting"))
	}
	env.WaitOptions = waiter.NoWait()
	if got, want := len(env.WaitOpts("Waiting", waiter.WithMaxRetrials(3))), 2+len(waiter.NoWait()); got != want {
		t.Errorf("len(WaitOpts()) = %d, want %d", got, want)
	}
}

func TestCommandName(t *testing.T) {
	var got string
	list := &cli.Command{
		Name: "list",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			got = CommandName(cmd)
			return nil
		},
	}
	root := &cli.Command{
		Name:     "gcloud",
		Commands: []*cli.Command{{Name: "builds", Commands: []*cli.Command{list}}},
	}
	if err := root.Run(t.Context(), []string{"gcloud", "builds", "list"}); err != nil {
		t.Fatal(err)
	}
	if want := "gcloud.builds.list"; got != want {
		t.Errorf("CommandName() = %q, want %q", got, want)
	}
}
