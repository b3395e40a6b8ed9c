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

// Package builds implements the "gcloud builds" command group on top of
// the Cloud Build API.
package builds

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"cloud.google.com/go/cloudbuild/apiv1/v2/cloudbuildpb"
	"cloud.google.com/go/longrunning/autogen/longrunningpb"
	"github.com/googleapis/cloudsdk/internal/base"
	"github.com/googleapis/cloudsdk/internal/config"
	"github.com/googleapis/cloudsdk/internal/render"
	"github.com/googleapis/cloudsdk/internal/resources"
	"github.com/googleapis/cloudsdk/internal/retry"
	"github.com/googleapis/cloudsdk/internal/waiter"
	"github.com/urfave/cli/v3"
)

const (
	api     = "cloudbuild"
	version = "v1"

	buildsCollection         = "cloudbuild.projects.locations.builds"
	globalBuildsCollection   = "cloudbuild.projects.builds"
	triggersCollection       = "cloudbuild.projects.locations.triggers"
	globalTriggersCollection = "cloudbuild.projects.triggers"
	locationsCollection      = "cloudbuild.projects.locations"

	operationsCollection         = "cloudbuild.operations"
	regionalOperationsCollection = "cloudbuild.projects.locations.operations"

	listFormat     = "value(id,createTime,status)"
	describeFormat = "yaml"
)

var errBuildFailed = errors.New("build did not succeed")

// RegisterResources registers the build and trigger collections from their
// resource annotations.
func RegisterResources(reg *resources.Registry) error {
	return reg.RegisterProtoResources(api, version, "", &cloudbuildpb.Build{}, &cloudbuildpb.BuildTrigger{})
}

// Command returns the "builds" command group.
func Command() *cli.Command {
	return &cli.Command{
		Name:      "builds",
		Usage:     "create and manage builds for Google Cloud Build",
		UsageText: "gcloud builds <command> [flags]",
		Description: render.Text(`Create and manage builds for Google Cloud Build.

The build region defaults to the ` + "`builds/region`" + ` property, which is
` + "`global`" + ` unless set.`),
		Commands: []*cli.Command{
			listCommand(),
			describeCommand(),
			cancelCommand(),
			submitCommand(),
			triggersCommand(),
		},
	}
}

var regionFlag = &cli.StringFlag{
	Name:  "region",
	Usage: "the Cloud Build `REGION`; defaults to the builds/region property",
}

func region(cmd *cli.Command, env *base.Env) string {
	if r := cmd.String("region"); r != "" {
		return r
	}
	return env.Props.Value(config.BuildsRegion)
}

// setup returns the environment and a client for a command.
func setup(ctx context.Context, cmd *cli.Command) (*base.Env, Client, error) {
	env, err := base.FromContext(ctx)
	if err != nil {
		return nil, nil, err
	}
	client, err := newClient(ctx, env, base.CommandName(cmd))
	if err != nil {
		return nil, nil, err
	}
	return env, client, nil
}

// locationName returns projects/PROJECT/locations/REGION.
func locationName(env *base.Env, region string) (string, error) {
	project, err := env.Project()
	if err != nil {
		return "", err
	}
	ref, err := env.Registry.Create(locationsCollection, map[string]string{
		"projectsId":  project,
		"locationsId": region,
	})
	if err != nil {
		return "", err
	}
	return ref.RelativeName(), nil
}

// parseRegional parses a build or trigger argument. Relative names without
// a location select the global collection.
func parseRegional(env *base.Env, line, region, regional, global string) (*resources.Resource, error) {
	collection := regional
	if strings.HasPrefix(line, "projects/") && !strings.Contains(line, "/locations/") {
		collection = global
	}
	params := map[string]resources.Resolver{}
	if region != "" {
		params["location"] = resources.Value(region)
	}
	ref, err := env.Registry.Parse(line, resources.ParseOptions{
		Collection:          collection,
		Params:              params,
		SkipCollectionCheck: true,
	})
	if err != nil {
		return nil, err
	}
	if c := ref.Collection(); c != regional && c != global {
		return nil, &resources.WrongCollectionError{Expected: regional, Got: c, Path: line}
	}
	return ref, nil
}

func parseBuild(env *base.Env, line, region string) (*resources.Resource, error) {
	return parseRegional(env, line, region, buildsCollection, globalBuildsCollection)
}

func getBuildRequest(ref *resources.Resource) *cloudbuildpb.GetBuildRequest {
	req := &cloudbuildpb.GetBuildRequest{ProjectId: ref.Param("project"), Id: ref.Name()}
	if ref.Collection() == buildsCollection {
		req.Name = ref.RelativeName()
	}
	return req
}

// operationRef parses the name of a Cloud Build operation.
func operationRef(env *base.Env, name string) (*resources.Resource, error) {
	collection := operationsCollection
	if strings.HasPrefix(name, "projects/") {
		collection = regionalOperationsCollection
	}
	return env.Registry.ParseRelativeName(name, collection)
}

// logURLUpdate shows the build log URL once the operation metadata has it.
func logURLUpdate(t waiter.Tracker, op any, _ retry.State) {
	lro, ok := op.(*longrunningpb.Operation)
	if !ok || lro.GetMetadata() == nil {
		return
	}
	md := &cloudbuildpb.BuildOperationMetadata{}
	if err := lro.GetMetadata().UnmarshalTo(md); err != nil {
		return
	}
	if u := md.GetBuild().GetLogUrl(); u != "" {
		t.Update(fmt.Sprintf("Logs are available at [%s].", u))
	}
}

// waitForBuild waits for a build operation and returns the finished build.
// Builds may run for a long time, so the wait has no limit.
func waitForBuild(ctx context.Context, env *base.Env, client Client, op *longrunningpb.Operation, message string) (*cloudbuildpb.Build, error) {
	ref, err := operationRef(env, op.GetName())
	if err != nil {
		return nil, err
	}
	poller := &waiter.CloudOperationPoller[*cloudbuildpb.Build]{
		Client: client,
		Getter: func(ctx context.Context, name string) (*cloudbuildpb.Build, error) {
			b, err := parseBuild(env, name, "")
			if err != nil {
				return nil, err
			}
			return client.GetBuild(ctx, getBuildRequest(b))
		},
	}
	opts := env.WaitOpts(message, waiter.WithMaxWait(0), waiter.WithTrackerUpdate(logURLUpdate))
	return waiter.WaitFor(ctx, poller, ref, message, opts...)
}

func checkStatus(b *cloudbuildpb.Build) error {
	switch b.GetStatus() {
	case cloudbuildpb.Build_FAILURE,
		cloudbuildpb.Build_INTERNAL_ERROR,
		cloudbuildpb.Build_TIMEOUT,
		cloudbuildpb.Build_CANCELLED,
		cloudbuildpb.Build_EXPIRED:
		return fmt.Errorf("%w: build %s completed with status %q", errBuildFailed, b.GetId(), b.GetStatus())
	}
	return nil
}

func listCommand() *cli.Command {
	return &cli.Command{
		Name:      "list",
		Usage:     "list builds",
		UsageText: "gcloud builds list [--region REGION] [--filter EXPR] [--limit N] [--ongoing]",
		Flags: []cli.Flag{
			regionFlag,
			&cli.StringFlag{Name: "filter", Usage: "server-side filter `EXPRESSION`"},
			&cli.IntFlag{Name: "limit", Usage: "maximum number of builds to list"},
			&cli.BoolFlag{Name: "ongoing", Usage: "only list builds that are queued or working"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			env, client, err := setup(ctx, cmd)
			if err != nil {
				return err
			}
			defer client.Close()
			return runList(ctx, env, client, region(cmd, env), cmd.String("filter"), cmd.Int("limit"), cmd.Bool("ongoing"))
		},
	}
}

const ongoingFilter = `status="WORKING" OR status="QUEUED"`

func runList(ctx context.Context, env *base.Env, client Client, region, filter string, limit int, ongoing bool) error {
	parent, err := locationName(env, region)
	if err != nil {
		return err
	}
	if ongoing {
		if filter == "" {
			filter = ongoingFilter
		} else {
			filter = fmt.Sprintf("(%s) AND (%s)", filter, ongoingFilter)
		}
	}
	req := &cloudbuildpb.ListBuildsRequest{
		Parent:    parent,
		ProjectId: env.Props.Value(config.CoreProject),
		Filter:    filter,
	}
	if limit > 0 {
		req.PageSize = int32(min(limit, 1000))
	}
	builds, err := client.ListBuilds(ctx, req, limit)
	if err != nil {
		return err
	}
	return base.PrintList(env, builds, listFormat)
}

func describeCommand() *cli.Command {
	return &cli.Command{
		Name:      "describe",
		Usage:     "get information about a particular build",
		UsageText: "gcloud builds describe BUILD [--region REGION]",
		Flags:     []cli.Flag{regionFlag},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.Args().Len() != 1 {
				return errors.New("exactly one BUILD is required")
			}
			env, client, err := setup(ctx, cmd)
			if err != nil {
				return err
			}
			defer client.Close()
			return runDescribe(ctx, env, client, cmd.Args().First(), region(cmd, env))
		},
	}
}

func runDescribe(ctx context.Context, env *base.Env, client Client, line, region string) error {
	ref, err := parseBuild(env, line, region)
	if err != nil {
		return err
	}
	b, err := client.GetBuild(ctx, getBuildRequest(ref))
	if err != nil {
		return err
	}
	return env.Print(b, describeFormat)
}

func cancelCommand() *cli.Command {
	return &cli.Command{
		Name:      "cancel",
		Usage:     "cancel an ongoing build",
		UsageText: "gcloud builds cancel BUILD... [--region REGION]",
		Flags:     []cli.Flag{regionFlag},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.Args().Len() == 0 {
				return errors.New("at least one BUILD is required")
			}
			env, client, err := setup(ctx, cmd)
			if err != nil {
				return err
			}
			defer client.Close()
			return runCancel(ctx, env, client, cmd.Args().Slice(), region(cmd, env))
		},
	}
}

func runCancel(ctx context.Context, env *base.Env, client Client, lines []string, region string) error {
	var cancelled []*cloudbuildpb.Build
	for _, line := range lines {
		ref, err := parseBuild(env, line, region)
		if err != nil {
			return err
		}
		get := getBuildRequest(ref)
		b, err := client.CancelBuild(ctx, &cloudbuildpb.CancelBuildRequest{
			Name:      get.GetName(),
			ProjectId: get.GetProjectId(),
			Id:        get.GetId(),
		})
		if err != nil {
			return fmt.Errorf("cancelling %s: %w", ref, err)
		}
		env.Status("Cancelled [%s].", ref)
		cancelled = append(cancelled, b)
	}
	return base.PrintList(env, cancelled, "none")
}
