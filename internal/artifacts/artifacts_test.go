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

package artifacts

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"cloud.google.com/go/artifactregistry/apiv1/artifactregistrypb"
	"cloud.google.com/go/iam/apiv1/iampb"
	"cloud.google.com/go/longrunning/autogen/longrunningpb"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/googleapis/cloudsdk/internal/base"
	"github.com/googleapis/cloudsdk/internal/resources"
	"github.com/googleapis/cloudsdk/internal/testhelper"
	"github.com/googleapis/cloudsdk/internal/waiter"
	"google.golang.org/genproto/googleapis/cloud/location"
	"google.golang.org/grpc/codes"
	"google.golang.org/protobuf/testing/protocmp"
)

type fakeClient struct {
	testhelper.Operations

	mu        sync.Mutex
	locations []string
	repos     map[string][]*artifactregistrypb.Repository
	listErr   error
	op        *longrunningpb.Operation

	parents   []string
	getReq    *artifactregistrypb.GetRepositoryRequest
	createReq *artifactregistrypb.CreateRepositoryRequest
	deleteReq *artifactregistrypb.DeleteRepositoryRequest
	iamReq    *iampb.GetIamPolicyRequest
}

func (f *fakeClient) ListRepositories(ctx context.Context, req *artifactregistrypb.ListRepositoriesRequest, limit int) ([]*artifactregistrypb.Repository, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.parents = append(f.parents, req.GetParent())
	if f.listErr != nil {
		return nil, f.listErr
	}
	repos := f.repos[req.GetParent()]
	if limit > 0 && len(repos) > limit {
		repos = repos[:limit]
	}
	return repos, nil
}

func (f *fakeClient) GetRepository(ctx context.Context, req *artifactregistrypb.GetRepositoryRequest) (*artifactregistrypb.Repository, error) {
	f.getReq = req
	return &artifactregistrypb.Repository{Name: req.GetName(), Format: artifactregistrypb.Repository_DOCKER}, nil
}

func (f *fakeClient) CreateRepository(ctx context.Context, req *artifactregistrypb.CreateRepositoryRequest) (*longrunningpb.Operation, error) {
	f.createReq = req
	return f.op, nil
}

func (f *fakeClient) DeleteRepository(ctx context.Context, req *artifactregistrypb.DeleteRepositoryRequest) (*longrunningpb.Operation, error) {
	f.deleteReq = req
	return f.op, nil
}

func (f *fakeClient) GetIamPolicy(ctx context.Context, req *iampb.GetIamPolicyRequest) (*iampb.Policy, error) {
	f.iamReq = req
	return &iampb.Policy{
		Version:  1,
		Bindings: []*iampb.Binding{{Role: "roles/artifactregistry.reader", Members: []string{"user:a@example.com"}}},
	}, nil
}

func (f *fakeClient) ListLocations(ctx context.Context, req *location.ListLocationsRequest) ([]*location.Location, error) {
	var out []*location.Location
	for _, l := range f.locations {
		out = append(out, &location.Location{Name: req.GetName() + "/locations/" + l, LocationId: l})
	}
	return out, nil
}

func (f *fakeClient) Close() error { return nil }

const testOp = "projects/p/locations/us/operations/op-1"

func newEnv(t *testing.T, props map[string]string) (*base.Env, *testhelper.Output) {
	t.Helper()
	all := map[string]string{"project": "p"}
	for k, v := range props {
		all[k] = v
	}
	return testhelper.NewEnv(t, all, RegisterResources)
}

func repo(name string) *artifactregistrypb.Repository {
	return &artifactregistrypb.Repository{Name: name, Format: artifactregistrypb.Repository_DOCKER}
}

func TestParseRepository(t *testing.T) {
	for _, test := range []struct {
		name    string
		props   map[string]string
		line    string
		loc     string
		want    string
		wantErr error
	}{
		{
			name: "id and flag",
			line: "r1",
			loc:  "us",
			want: "projects/p/locations/us/repositories/r1",
		},
		{
			name:  "id and property",
			props: map[string]string{"artifacts/location": "europe"},
			line:  "r1",
			want:  "projects/p/locations/europe/repositories/r1",
		},
		{
			name:  "flag wins over property",
			props: map[string]string{"artifacts/location": "europe"},
			line:  "r1",
			loc:   "asia",
			want:  "projects/p/locations/asia/repositories/r1",
		},
		{
			name: "relative name",
			line: "projects/q/locations/us/repositories/r2",
			want: "projects/q/locations/us/repositories/r2",
		},
		{
			name: "url",
			line: "https://artifactregistry.googleapis.com/v1/projects/q/locations/us/repositories/r3",
			want: "projects/q/locations/us/repositories/r3",
		},
		{
			name:    "wrong collection",
			line:    "https://artifactregistry.googleapis.com/v1/projects/q/locations/us/operations/o",
			wantErr: resources.ErrWrongCollection,
		},
	} {
		t.Run(test.name, func(t *testing.T) {
			env, _ := newEnv(t, test.props)
			ref, err := parseRepository(env, test.line, test.loc)
			if !errors.Is(err, test.wantErr) {
				t.Fatalf("got error %v, want %v", err, test.wantErr)
			}
			if err != nil {
				return
			}
			if diff := cmp.Diff(test.want, ref.RelativeName()); diff != "" {
				t.Errorf("mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestRepositoryFormat(t *testing.T) {
	for _, test := range []struct {
		in      string
		want    artifactregistrypb.Repository_Format
		wantErr error
	}{
		{in: "docker", want: artifactregistrypb.Repository_DOCKER},
		{in: "MAVEN", want: artifactregistrypb.Repository_MAVEN},
		{in: "format_unspecified", wantErr: errRepositoryFormat},
		{in: "tarball", wantErr: errRepositoryFormat},
	} {
		t.Run(test.in, func(t *testing.T) {
			got, err := repositoryFormat(test.in)
			if !errors.Is(err, test.wantErr) {
				t.Fatalf("got error %v, want %v", err, test.wantErr)
			}
			if got != test.want {
				t.Errorf("got %v, want %v", got, test.want)
			}
		})
	}
}

func TestList(t *testing.T) {
	repos := map[string][]*artifactregistrypb.Repository{
		"projects/p/locations/us":     {repo("projects/p/locations/us/repositories/a"), repo("projects/p/locations/us/repositories/b")},
		"projects/p/locations/europe": {repo("projects/p/locations/europe/repositories/c")},
	}
	for _, test := range []struct {
		name        string
		loc         string
		wantParents []string
		want        string
	}{
		{
			name:        "one location",
			loc:         "europe",
			wantParents: []string{"projects/p/locations/europe"},
			want:        "projects/p/locations/europe/repositories/c\tDOCKER\t\n",
		},
		{
			name:        "all locations",
			loc:         "all",
			wantParents: []string{"projects/p/locations/asia", "projects/p/locations/europe", "projects/p/locations/us"},
			want: strings.Join([]string{
				"projects/p/locations/us/repositories/a\tDOCKER\t",
				"projects/p/locations/us/repositories/b\tDOCKER\t",
				"projects/p/locations/europe/repositories/c\tDOCKER\t",
			}, "\n") + "\n",
		},
		{
			name:        "no location",
			wantParents: []string{"projects/p/locations/asia", "projects/p/locations/europe", "projects/p/locations/us"},
			want: strings.Join([]string{
				"projects/p/locations/us/repositories/a\tDOCKER\t",
				"projects/p/locations/us/repositories/b\tDOCKER\t",
				"projects/p/locations/europe/repositories/c\tDOCKER\t",
			}, "\n") + "\n",
		},
	} {
		t.Run(test.name, func(t *testing.T) {
			env, out := newEnv(t, nil)
			client := &fakeClient{locations: []string{"us", "asia", "europe"}, repos: repos}
			if err := runList(t.Context(), env, client, test.loc, 0); err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff(test.wantParents, client.parents, cmpopts.SortSlices(func(a, b string) bool { return a < b })); diff != "" {
				t.Errorf("parents mismatch (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff(test.want, out.Out.String()); diff != "" {
				t.Errorf("output mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestListLimitAcrossLocations(t *testing.T) {
	env, out := newEnv(t, nil)
	client := &fakeClient{
		locations: []string{"us", "europe"},
		repos: map[string][]*artifactregistrypb.Repository{
			"projects/p/locations/us":     {repo("projects/p/locations/us/repositories/a"), repo("projects/p/locations/us/repositories/b")},
			"projects/p/locations/europe": {repo("projects/p/locations/europe/repositories/c"), repo("projects/p/locations/europe/repositories/d")},
		},
	}
	if err := runList(t.Context(), env, client, "all", 3); err != nil {
		t.Fatal(err)
	}
	want := strings.Join([]string{
		"projects/p/locations/us/repositories/a\tDOCKER\t",
		"projects/p/locations/us/repositories/b\tDOCKER\t",
		"projects/p/locations/europe/repositories/c\tDOCKER\t",
	}, "\n") + "\n"
	if diff := cmp.Diff(want, out.Out.String()); diff != "" {
		t.Errorf("output mismatch (-want +got):\n%s", diff)
	}
}

func TestListError(t *testing.T) {
	env, _ := newEnv(t, nil)
	wantErr := errors.New("boom")
	client := &fakeClient{locations: []string{"us", "europe"}, listErr: wantErr}
	if err := runList(t.Context(), env, client, "all", 0); !errors.Is(err, wantErr) {
		t.Errorf("got %v, want %v", err, wantErr)
	}
}

func TestDescribe(t *testing.T) {
	env, out := newEnv(t, nil)
	env.Format = "value(name,format)"
	client := &fakeClient{}
	ref, err := parseRepository(env, "r1", "us")
	if err != nil {
		t.Fatal(err)
	}
	if err := runDescribe(t.Context(), env, client, ref); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff("projects/p/locations/us/repositories/r1", client.getReq.GetName()); diff != "" {
		t.Errorf("request mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff("projects/p/locations/us/repositories/r1\tDOCKER\n", out.Out.String()); diff != "" {
		t.Errorf("output mismatch (-want +got):\n%s", diff)
	}
}

func TestCreate(t *testing.T) {
	env, out := newEnv(t, nil)
	env.Format = "value(name,description)"
	created := &artifactregistrypb.Repository{
		Name:        "projects/p/locations/us/repositories/r1",
		Format:      artifactregistrypb.Repository_DOCKER,
		Description: "images",
	}
	client := &fakeClient{op: testhelper.Pending(testOp)}
	client.Add(testOp, testhelper.Pending(testOp), testhelper.Done(t, testOp, created))
	ref, err := parseRepository(env, "r1", "us")
	if err != nil {
		t.Fatal(err)
	}
	input := &artifactregistrypb.Repository{Format: artifactregistrypb.Repository_DOCKER, Description: "images"}
	if err := runCreate(t.Context(), env, client, ref, input, false); err != nil {
		t.Fatal(err)
	}
	want := &artifactregistrypb.CreateRepositoryRequest{
		Parent:       "projects/p/locations/us",
		RepositoryId: "r1",
		Repository:   input,
	}
	if diff := cmp.Diff(want, client.createReq, protocmp.Transform()); diff != "" {
		t.Errorf("request mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{testOp, testOp}, client.Requests); diff != "" {
		t.Errorf("polls mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff("projects/p/locations/us/repositories/r1\timages\n", out.Out.String()); diff != "" {
		t.Errorf("output mismatch (-want +got):\n%s", diff)
	}
	if !strings.Contains(out.Err.String(), "Created repository [r1].") {
		t.Errorf("stderr = %q", out.Err.String())
	}
}

func TestCreateAsync(t *testing.T) {
	env, out := newEnv(t, nil)
	env.Format = "value(name,done)"
	client := &fakeClient{op: testhelper.Pending(testOp)}
	ref, err := parseRepository(env, "r1", "us")
	if err != nil {
		t.Fatal(err)
	}
	if err := runCreate(t.Context(), env, client, ref, &artifactregistrypb.Repository{}, true); err != nil {
		t.Fatal(err)
	}
	if len(client.Requests) != 0 {
		t.Errorf("async create polled %v", client.Requests)
	}
	if diff := cmp.Diff(testOp+"\t\n", out.Out.String()); diff != "" {
		t.Errorf("output mismatch (-want +got):\n%s", diff)
	}
}

func TestDelete(t *testing.T) {
	for _, test := range []struct {
		name    string
		final   func(t *testing.T) *longrunningpb.Operation
		wantErr error
		wantMsg string
	}{
		{
			name:    "success",
			final:   func(t *testing.T) *longrunningpb.Operation { return testhelper.Done(t, testOp, nil) },
			wantMsg: "Deleted repository [r1].",
		},
		{
			name: "failure",
			final: func(t *testing.T) *longrunningpb.Operation {
				return testhelper.Failed(testOp, codes.FailedPrecondition, "repository is not empty")
			},
			wantErr: waiter.ErrOperationFailed,
		},
	} {
		t.Run(test.name, func(t *testing.T) {
			env, out := newEnv(t, nil)
			client := &fakeClient{op: testhelper.Pending(testOp)}
			client.Add(testOp, testhelper.Pending(testOp), test.final(t))
			ref, err := parseRepository(env, "r1", "us")
			if err != nil {
				t.Fatal(err)
			}
			err = runDelete(t.Context(), env, client, ref, false)
			if !errors.Is(err, test.wantErr) {
				t.Fatalf("got error %v, want %v", err, test.wantErr)
			}
			if diff := cmp.Diff("projects/p/locations/us/repositories/r1", client.deleteReq.GetName()); diff != "" {
				t.Errorf("request mismatch (-want +got):\n%s", diff)
			}
			if test.wantMsg != "" && !strings.Contains(out.Err.String(), test.wantMsg) {
				t.Errorf("stderr %q does not contain %q", out.Err.String(), test.wantMsg)
			}
		})
	}
}

func TestGetIamPolicy(t *testing.T) {
	env, out := newEnv(t, nil)
	client := &fakeClient{}
	ref, err := parseRepository(env, "r1", "us")
	if err != nil {
		t.Fatal(err)
	}
	if err := runGetIamPolicy(t.Context(), env, client, ref); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff("projects/p/locations/us/repositories/r1", client.iamReq.GetResource()); diff != "" {
		t.Errorf("request mismatch (-want +got):\n%s", diff)
	}
	for _, s := range []string{"roles/artifactregistry.reader", "user:a@example.com"} {
		if !strings.Contains(out.Out.String(), s) {
			t.Errorf("output %q does not contain %q", out.Out.String(), s)
		}
	}
}

func TestOperationDescribe(t *testing.T) {
	env, out := newEnv(t, map[string]string{"artifacts/location": "us"})
	env.Format = "value(name,done)"
	client := &fakeClient{}
	client.Add(testOp, testhelper.Done(t, testOp, nil))
	if err := runOperationDescribe(t.Context(), env, client, "op-1", ""); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(testOp+"\ttrue\n", out.Out.String()); diff != "" {
		t.Errorf("output mismatch (-want +got):\n%s", diff)
	}
}

func TestOperationWait(t *testing.T) {
	env, out := newEnv(t, nil)
	env.Format = "value(name)"
	client := &fakeClient{}
	client.Add(testOp, testhelper.Pending(testOp), testhelper.Done(t, testOp, repo("projects/p/locations/us/repositories/r1")))
	if err := runOperationWait(t.Context(), env, client, testOp, ""); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff("projects/p/locations/us/repositories/r1\n", out.Out.String()); diff != "" {
		t.Errorf("output mismatch (-want +got):\n%s", diff)
	}
}

func TestOperationWaitNotFound(t *testing.T) {
	env, _ := newEnv(t, nil)
	if err := runOperationWait(t.Context(), env, &fakeClient{}, testOp, ""); err == nil {
		t.Error("runOperationWait() succeeded for an unknown operation")
	}
}
