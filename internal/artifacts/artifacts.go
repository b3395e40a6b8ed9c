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

// Package artifacts implements the "gcloud artifacts" command group on top
// of the Artifact Registry API.
package artifacts

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"cloud.google.com/go/artifactregistry/apiv1/artifactregistrypb"
	"cloud.google.com/go/iam/apiv1/iampb"
	"github.com/googleapis/cloudsdk/internal/base"
	"github.com/googleapis/cloudsdk/internal/config"
	"github.com/googleapis/cloudsdk/internal/render"
	"github.com/googleapis/cloudsdk/internal/resources"
	"github.com/googleapis/cloudsdk/internal/waiter"
	"github.com/urfave/cli/v3"
	"golang.org/x/sync/errgroup"
	"google.golang.org/genproto/googleapis/cloud/location"
	"google.golang.org/protobuf/proto"
)

const (
	api     = "artifactregistry"
	version = "v1"

	repositoriesCollection = "artifactregistry.projects.locations.repositories"
	locationsCollection    = "artifactregistry.projects.locations"
	operationsCollection   = "artifactregistry.projects.locations.operations"

	// allLocations lists repositories in every location.
	allLocations = "all"

	// maxConcurrentLocations bounds the per-location list calls.
	maxConcurrentLocations = 8

	listFormat     = "value(name,format,description)"
	describeFormat = "yaml"
)

var (
	errRepositoryFormat = errors.New("unknown repository format")
	errOneRepository    = errors.New("exactly one REPOSITORY is required")
	errOneOperation     = errors.New("exactly one OPERATION is required")
)

// RegisterResources registers the repository collection from its resource
// annotation.
func RegisterResources(reg *resources.Registry) error {
	return reg.RegisterProtoResources(api, version, "", &artifactregistrypb.Repository{})
}

// Command returns the "artifacts" command group.
func Command() *cli.Command {
	return &cli.Command{
		Name:  "artifacts",
		Usage: "manage Artifact Registry resources",
		Description: render.Text(`Manage Artifact Registry repositories and their operations.

Repository arguments may be a repository id, a relative name such as
` + "`projects/p/locations/l/repositories/r`" + `, or a URL. A missing location
comes from ` + "`--location`" + ` or the ` + "`artifacts/location`" + ` property.`),
		Commands: []*cli.Command{
			repositoriesCommand(),
			operationsCommand(),
		},
	}
}

var locationFlag = &cli.StringFlag{
	Name:  "location",
	Usage: "the repository `LOCATION`; defaults to the artifacts/location property",
}

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

func locationParams(loc string) map[string]resources.Resolver {
	if loc == "" {
		return nil
	}
	return map[string]resources.Resolver{
		"location":    resources.Value(loc),
		"locationsId": resources.Value(loc),
	}
}

func parseRepository(env *base.Env, line, loc string) (*resources.Resource, error) {
	return env.Parse(line, repositoriesCollection, locationParams(loc))
}

func repositoriesCommand() *cli.Command {
	oneRepo := func(run func(ctx context.Context, env *base.Env, client Client, ref *resources.Resource, cmd *cli.Command) error) cli.ActionFunc {
		return func(ctx context.Context, cmd *cli.Command) error {
			if cmd.Args().Len() != 1 {
				return errOneRepository
			}
			env, client, err := setup(ctx, cmd)
			if err != nil {
				return err
			}
			defer client.Close()
			ref, err := parseRepository(env, cmd.Args().First(), cmd.String("location"))
			if err != nil {
				return err
			}
			return run(ctx, env, client, ref, cmd)
		}
	}
	return &cli.Command{
		Name:  "repositories",
		Usage: "manage Artifact Registry repositories",
		Commands: []*cli.Command{
			{
				Name:      "list",
				Usage:     "list repositories",
				UsageText: "gcloud artifacts repositories list [--location LOCATION|all] [--limit N]",
				Flags: []cli.Flag{
					locationFlag,
					&cli.IntFlag{Name: "limit", Usage: "maximum number of repositories per location"},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					env, client, err := setup(ctx, cmd)
					if err != nil {
						return err
					}
					defer client.Close()
					loc := cmd.String("location")
					if loc == "" {
						loc = env.Props.Value(config.ArtifactsLocation)
					}
					return runList(ctx, env, client, loc, cmd.Int("limit"))
				},
			},
			{
				Name:      "describe",
				Usage:     "describe a repository",
				UsageText: "gcloud artifacts repositories describe REPOSITORY [--location LOCATION]",
				Flags:     []cli.Flag{locationFlag},
				Action: oneRepo(func(ctx context.Context, env *base.Env, client Client, ref *resources.Resource, _ *cli.Command) error {
					return runDescribe(ctx, env, client, ref)
				}),
			},
			{
				Name:      "create",
				Usage:     "create a repository",
				UsageText: "gcloud artifacts repositories create REPOSITORY --repository-format FORMAT [--location LOCATION] [--description TEXT] [--async]",
				Flags: []cli.Flag{
					locationFlag,
					&cli.StringFlag{Name: "repository-format", Required: true, Usage: "the `FORMAT` of the repository, such as docker or maven"},
					&cli.StringFlag{Name: "description", Usage: "a description of the repository"},
					&cli.BoolFlag{Name: "async", Usage: "return immediately without waiting for the operation"},
				},
				Action: oneRepo(func(ctx context.Context, env *base.Env, client Client, ref *resources.Resource, cmd *cli.Command) error {
					format, err := repositoryFormat(cmd.String("repository-format"))
					if err != nil {
						return err
					}
					repo := &artifactregistrypb.Repository{Format: format, Description: cmd.String("description")}
					return runCreate(ctx, env, client, ref, repo, cmd.Bool("async"))
				}),
			},
			{
				Name:      "delete",
				Usage:     "delete a repository",
				UsageText: "gcloud artifacts repositories delete REPOSITORY [--location LOCATION] [--async]",
				Flags: []cli.Flag{
					locationFlag,
					&cli.BoolFlag{Name: "async", Usage: "return immediately without waiting for the operation"},
				},
				Action: oneRepo(func(ctx context.Context, env *base.Env, client Client, ref *resources.Resource, cmd *cli.Command) error {
					return runDelete(ctx, env, client, ref, cmd.Bool("async"))
				}),
			},
			{
				Name:      "get-iam-policy",
				Usage:     "get the IAM policy of a repository",
				UsageText: "gcloud artifacts repositories get-iam-policy REPOSITORY [--location LOCATION]",
				Flags:     []cli.Flag{locationFlag},
				Action: oneRepo(func(ctx context.Context, env *base.Env, client Client, ref *resources.Resource, _ *cli.Command) error {
					return runGetIamPolicy(ctx, env, client, ref)
				}),
			},
		},
	}
}

// repositoryFormat maps a --repository-format value such as "docker" to its
// enum.
func repositoryFormat(s string) (artifactregistrypb.Repository_Format, error) {
	v, ok := artifactregistrypb.Repository_Format_value[strings.ToUpper(s)]
	if !ok || v == int32(artifactregistrypb.Repository_FORMAT_UNSPECIFIED) {
		var names []string
		for name, n := range artifactregistrypb.Repository_Format_value {
			if n != int32(artifactregistrypb.Repository_FORMAT_UNSPECIFIED) {
				names = append(names, strings.ToLower(name))
			}
		}
		slices.Sort(names)
		return 0, fmt.Errorf("%w %q; must be one of [%s]", errRepositoryFormat, s, strings.Join(names, ", "))
	}
	return artifactregistrypb.Repository_Format(v), nil
}

// runList lists the repositories of one location, or of every location of
// the project when loc is empty or "all".
func runList(ctx context.Context, env *base.Env, client Client, loc string, limit int) error {
	project, err := env.Project()
	if err != nil {
		return err
	}
	var locations []string
	if loc == "" || loc == allLocations {
		all, err := client.ListLocations(ctx, &location.ListLocationsRequest{Name: "projects/" + project})
		if err != nil {
			return fmt.Errorf("listing locations: %w", err)
		}
		for _, l := range all {
			locations = append(locations, l.GetLocationId())
		}
	} else {
		locations = []string{loc}
	}

	results := make([][]*artifactregistrypb.Repository, len(locations))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentLocations)
	for i, l := range locations {
		g.Go(func() error {
			parent, err := env.Registry.Create(locationsCollection, map[string]string{
				"projectsId":  project,
				"locationsId": l,
			})
			if err != nil {
				return err
			}
			repos, err := client.ListRepositories(gctx, &artifactregistrypb.ListRepositoriesRequest{
				Parent: parent.RelativeName(),
			}, limit)
			if err != nil {
				return fmt.Errorf("listing repositories in %s: %w", l, err)
			}
			results[i] = repos
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	repos := slices.Concat(results...)
	if limit > 0 && len(repos) > limit {
		repos = repos[:limit]
	}
	return base.PrintList(env, repos, listFormat)
}

func runDescribe(ctx context.Context, env *base.Env, client Client, ref *resources.Resource) error {
	repo, err := client.GetRepository(ctx, &artifactregistrypb.GetRepositoryRequest{Name: ref.RelativeName()})
	if err != nil {
		return err
	}
	return env.Print(repo, describeFormat)
}

func runCreate(ctx context.Context, env *base.Env, client Client, ref *resources.Resource, repo *artifactregistrypb.Repository, async bool) error {
	parent, err := ref.Parent()
	if err != nil {
		return err
	}
	op, err := client.CreateRepository(ctx, &artifactregistrypb.CreateRepositoryRequest{
		Parent:       parent.RelativeName(),
		RepositoryId: ref.Name(),
		Repository:   repo,
	})
	if err != nil {
		return err
	}
	if async {
		env.Status("Create request issued for: [%s]", ref.Name())
		return env.Print(op, describeFormat)
	}
	opRef, err := env.Registry.ParseRelativeName(op.GetName(), operationsCollection)
	if err != nil {
		return err
	}
	poller := &waiter.CloudOperationPoller[*artifactregistrypb.Repository]{Client: client}
	message := fmt.Sprintf("Waiting for operation [%s] to complete", op.GetName())
	created, err := waiter.WaitFor(ctx, poller, opRef, message, env.WaitOpts(message)...)
	if err != nil {
		return err
	}
	env.Status("Created repository [%s].", ref.Name())
	return env.Print(created, describeFormat)
}

func runDelete(ctx context.Context, env *base.Env, client Client, ref *resources.Resource, async bool) error {
	op, err := client.DeleteRepository(ctx, &artifactregistrypb.DeleteRepositoryRequest{Name: ref.RelativeName()})
	if err != nil {
		return err
	}
	if async {
		env.Status("Delete request issued for: [%s]", ref.Name())
		return env.Print(op, describeFormat)
	}
	if _, err := waitForOperation(ctx, env, client, op.GetName()); err != nil {
		return err
	}
	env.Status("Deleted repository [%s].", ref.Name())
	return nil
}

func runGetIamPolicy(ctx context.Context, env *base.Env, client Client, ref *resources.Resource) error {
	policy, err := client.GetIamPolicy(ctx, &iampb.GetIamPolicyRequest{Resource: ref.RelativeName()})
	if err != nil {
		return err
	}
	return env.Print(policy, describeFormat)
}

// waitForOperation waits for the named operation and returns its response,
// which is nil for operations without one.
func waitForOperation(ctx context.Context, env *base.Env, client Client, name string) (proto.Message, error) {
	ref, err := env.Registry.ParseRelativeName(name, operationsCollection)
	if err != nil {
		return nil, err
	}
	message := fmt.Sprintf("Waiting for operation [%s] to complete", name)
	poller := &waiter.CloudOperationPollerNoResources{Client: client}
	return waiter.WaitFor(ctx, poller, ref, message, env.WaitOpts(message)...)
}
