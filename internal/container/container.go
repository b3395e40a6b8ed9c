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

// Package container implements the "gcloud container" command group on top
// of the GKE API.
package container

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/googleapis/cloudsdk/internal/base"
	"github.com/googleapis/cloudsdk/internal/render"
	"github.com/googleapis/cloudsdk/internal/resources"
	"github.com/googleapis/cloudsdk/internal/waiter"
	"github.com/urfave/cli/v3"
)

const (
	locationsCollection  = "container.projects.locations"
	clustersCollection   = "container.projects.locations.clusters"
	operationsCollection = "container.projects.locations.operations"

	// anyLocation lists across every location.
	anyLocation = "-"

	clustersListFormat   = "value(name,location,currentMasterVersion,status)"
	operationsListFormat = "value(name,operationType,location,targetLink,status)"
	describeFormat       = "yaml"

	defaultWaitTimeout = time.Hour
)

var (
	errLocationFlags = errors.New("at most one of --location, --zone and --region may be given")
	errOneCluster    = errors.New("exactly one NAME is required")
	errOneOperation  = errors.New("exactly one OPERATION_ID is required")
)

// Command returns the "container" command group.
func Command() *cli.Command {
	return &cli.Command{
		Name:  "container",
		Usage: "manage Google Kubernetes Engine clusters",
		Description: render.Text(`Inspect GKE clusters and wait on their operations.

The location of a cluster or operation is taken from ` + "`--location`" + `,
` + "`--zone`" + ` or ` + "`--region`" + `, then from the ` + "`compute/zone`" + ` and
` + "`compute/region`" + ` properties.`),
		Commands: []*cli.Command{
			clustersCommand(),
			operationsCommand(),
		},
	}
}

func locationFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "location", Usage: "the `LOCATION` (zone or region)"},
		&cli.StringFlag{Name: "zone", Aliases: []string{"z"}, Usage: "the compute `ZONE`"},
		&cli.StringFlag{Name: "region", Usage: "the compute `REGION`"},
	}
}

// flagLocation returns the location given by flags, or "" when none is.
func flagLocation(cmd *cli.Command) (string, error) {
	var set []string
	for _, name := range []string{"location", "zone", "region"} {
		if v := cmd.String(name); v != "" {
			set = append(set, v)
		}
	}
	if len(set) > 1 {
		return "", errLocationFlags
	}
	if len(set) == 1 {
		return set[0], nil
	}
	return "", nil
}

type action func(ctx context.Context, env *base.Env, svc Service, loc string, cmd *cli.Command) error

func run(f action) cli.ActionFunc {
	return func(ctx context.Context, cmd *cli.Command) error {
		loc, err := flagLocation(cmd)
		if err != nil {
			return err
		}
		env, err := base.FromContext(ctx)
		if err != nil {
			return err
		}
		svc, err := newService(ctx, env, base.CommandName(cmd))
		if err != nil {
			return err
		}
		return f(ctx, env, svc, loc, cmd)
	}
}

func locationParams(loc string) map[string]resources.Resolver {
	if loc == "" {
		return nil
	}
	return map[string]resources.Resolver{"locationsId": resources.Value(loc)}
}

// listParent returns projects/P/locations/L, where L defaults to the
// location properties and then to every location.
func listParent(env *base.Env, loc string) (string, error) {
	project, err := env.Project()
	if err != nil {
		return "", err
	}
	if loc == "" {
		def, err := env.Registry.GetParamDefault("container", "projects.locations", "locationsId")
		if err != nil {
			return "", err
		}
		loc = def
	}
	if loc == "" {
		loc = anyLocation
	}
	ref, err := env.Registry.Create(locationsCollection, map[string]string{
		"projectsId":  project,
		"locationsId": loc,
	})
	if err != nil {
		return "", err
	}
	return ref.RelativeName(), nil
}

func warnMissingZones(env *base.Env, zones []string) {
	if len(zones) > 0 {
		env.Status("WARNING: the following zones did not respond: %s. List results may be incomplete.", strings.Join(zones, ", "))
	}
}

func clustersCommand() *cli.Command {
	return &cli.Command{
		Name:  "clusters",
		Usage: "inspect GKE clusters",
		Commands: []*cli.Command{
			{
				Name:      "list",
				Usage:     "list clusters",
				UsageText: "gcloud container clusters list [--location LOCATION | --zone ZONE | --region REGION]",
				Flags:     locationFlags(),
				Action: run(func(ctx context.Context, env *base.Env, svc Service, loc string, _ *cli.Command) error {
					return runClustersList(ctx, env, svc, loc)
				}),
			},
			{
				Name:      "describe",
				Usage:     "describe a cluster",
				UsageText: "gcloud container clusters describe NAME [--location LOCATION | --zone ZONE | --region REGION]",
				Flags:     locationFlags(),
				Action: run(func(ctx context.Context, env *base.Env, svc Service, loc string, cmd *cli.Command) error {
					if cmd.Args().Len() != 1 {
						return errOneCluster
					}
					return runClustersDescribe(ctx, env, svc, cmd.Args().First(), loc)
				}),
			},
		},
	}
}

func runClustersList(ctx context.Context, env *base.Env, svc Service, loc string) error {
	parent, err := listParent(env, loc)
	if err != nil {
		return err
	}
	resp, err := svc.ListClusters(ctx, parent)
	if err != nil {
		return err
	}
	warnMissingZones(env, resp.MissingZones)
	return base.PrintList(env, resp.Clusters, clustersListFormat)
}

func runClustersDescribe(ctx context.Context, env *base.Env, svc Service, line, loc string) error {
	ref, err := env.Parse(line, clustersCollection, locationParams(loc))
	if err != nil {
		return err
	}
	cluster, err := svc.GetCluster(ctx, ref.RelativeName())
	if err != nil {
		return err
	}
	return env.Print(cluster, describeFormat)
}

func operationsCommand() *cli.Command {
	oneOp := func(f func(ctx context.Context, env *base.Env, svc Service, ref *resources.Resource, cmd *cli.Command) error) cli.ActionFunc {
		return run(func(ctx context.Context, env *base.Env, svc Service, loc string, cmd *cli.Command) error {
			if cmd.Args().Len() != 1 {
				return errOneOperation
			}
			ref, err := env.Parse(cmd.Args().First(), operationsCollection, locationParams(loc))
			if err != nil {
				return err
			}
			return f(ctx, env, svc, ref, cmd)
		})
	}
	return &cli.Command{
		Name:  "operations",
		Usage: "inspect and wait on GKE operations",
		Commands: []*cli.Command{
			{
				Name:      "list",
				Usage:     "list operations",
				UsageText: "gcloud container operations list [--location LOCATION | --zone ZONE | --region REGION]",
				Flags:     locationFlags(),
				Action: run(func(ctx context.Context, env *base.Env, svc Service, loc string, _ *cli.Command) error {
					return runOperationsList(ctx, env, svc, loc)
				}),
			},
			{
				Name:      "describe",
				Usage:     "describe an operation",
				UsageText: "gcloud container operations describe OPERATION_ID [--location LOCATION | --zone ZONE | --region REGION]",
				Flags:     locationFlags(),
				Action: oneOp(func(ctx context.Context, env *base.Env, svc Service, ref *resources.Resource, _ *cli.Command) error {
					return runOperationsDescribe(ctx, env, svc, ref)
				}),
			},
			{
				Name:      "wait",
				Usage:     "poll an operation until it completes",
				UsageText: "gcloud container operations wait OPERATION_ID [--timeout DURATION]",
				Flags: append(locationFlags(), &cli.DurationFlag{
					Name:  "timeout",
					Value: defaultWaitTimeout,
					Usage: "how long to wait before giving up",
				}),
				Action: oneOp(func(ctx context.Context, env *base.Env, svc Service, ref *resources.Resource, cmd *cli.Command) error {
					return runOperationsWait(ctx, env, svc, ref, cmd.Duration("timeout"))
				}),
			},
			{
				Name:      "cancel",
				Usage:     "cancel an operation",
				UsageText: "gcloud container operations cancel OPERATION_ID",
				Flags:     locationFlags(),
				Action: oneOp(func(ctx context.Context, env *base.Env, svc Service, ref *resources.Resource, _ *cli.Command) error {
					return runOperationsCancel(ctx, env, svc, ref)
				}),
			},
		},
	}
}

func runOperationsList(ctx context.Context, env *base.Env, svc Service, loc string) error {
	parent, err := listParent(env, loc)
	if err != nil {
		return err
	}
	resp, err := svc.ListOperations(ctx, parent)
	if err != nil {
		return err
	}
	warnMissingZones(env, resp.MissingZones)
	return base.PrintList(env, resp.Operations, operationsListFormat)
}

func runOperationsWait(ctx context.Context, env *base.Env, svc Service, ref *resources.Resource, timeout time.Duration) error {
	message := fmt.Sprintf("Waiting for operation [%s] to complete", ref.Name())
	poller := &OperationPoller{Service: svc}
	op, err := waiter.WaitFor(ctx, poller, ref, message, env.WaitOpts(message, waiter.WithMaxWait(timeout))...)
	if err != nil {
		return err
	}
	return env.Print(op, describeFormat)
}

func runOperationsDescribe(ctx context.Context, env *base.Env, svc Service, ref *resources.Resource) error {
	op, err := svc.GetOperation(ctx, ref.RelativeName())
	if err != nil {
		return err
	}
	return env.Print(op, describeFormat)
}

func runOperationsCancel(ctx context.Context, env *base.Env, svc Service, ref *resources.Resource) error {
	if err := svc.CancelOperation(ctx, ref.RelativeName()); err != nil {
		return err
	}
	env.Status("Cancelled operation [%s].", ref)
	return nil
}
