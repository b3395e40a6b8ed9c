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

package builds

import (
	"context"
	"errors"

	"cloud.google.com/go/cloudbuild/apiv1/v2/cloudbuildpb"
	"github.com/googleapis/cloudsdk/internal/base"
	"github.com/googleapis/cloudsdk/internal/config"
	"github.com/urfave/cli/v3"
)

const triggersListFormat = "value(name,id,createTime)"

var errRevision = errors.New("at most one of --branch, --tag and --sha may be given")

func triggersCommand() *cli.Command {
	return &cli.Command{
		Name:  "triggers",
		Usage: "create and manage build triggers",
		Commands: []*cli.Command{
			{
				Name:      "list",
				Usage:     "list build triggers",
				UsageText: "gcloud builds triggers list [--region REGION] [--limit N]",
				Flags: []cli.Flag{
					regionFlag,
					&cli.IntFlag{Name: "limit", Usage: "maximum number of triggers to list"},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					env, client, err := setup(ctx, cmd)
					if err != nil {
						return err
					}
					defer client.Close()
					return runTriggersList(ctx, env, client, region(cmd, env), cmd.Int("limit"))
				},
			},
			{
				Name:      "run",
				Usage:     "run a build trigger",
				UsageText: "gcloud builds triggers run TRIGGER [--branch BRANCH | --tag TAG | --sha SHA] [--async]",
				Flags: []cli.Flag{
					regionFlag,
					&cli.StringFlag{Name: "branch", Usage: "branch to run"},
					&cli.StringFlag{Name: "tag", Usage: "tag to run"},
					&cli.StringFlag{Name: "sha", Usage: "commit SHA to run"},
					&cli.BoolFlag{Name: "async", Usage: "return immediately without waiting for the build"},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					if cmd.Args().Len() != 1 {
						return errors.New("exactly one TRIGGER is required")
					}
					source, err := repoSource(cmd.String("branch"), cmd.String("tag"), cmd.String("sha"))
					if err != nil {
						return err
					}
					env, client, err := setup(ctx, cmd)
					if err != nil {
						return err
					}
					defer client.Close()
					return runTrigger(ctx, env, client, cmd.Args().First(), region(cmd, env), source, cmd.Bool("async"))
				},
			},
		},
	}
}

func runTriggersList(ctx context.Context, env *base.Env, client Client, region string, limit int) error {
	parent, err := locationName(env, region)
	if err != nil {
		return err
	}
	req := &cloudbuildpb.ListBuildTriggersRequest{
		Parent:    parent,
		ProjectId: env.Props.Value(config.CoreProject),
	}
	triggers, err := client.ListBuildTriggers(ctx, req, limit)
	if err != nil {
		return err
	}
	return base.PrintList(env, triggers, triggersListFormat)
}

// repoSource returns the revision to run, or nil to run the trigger's
// configured revision.
func repoSource(branch, tag, sha string) (*cloudbuildpb.RepoSource, error) {
	set := 0
	for _, v := range []string{branch, tag, sha} {
		if v != "" {
			set++
		}
	}
	switch {
	case set > 1:
		return nil, errRevision
	case branch != "":
		return &cloudbuildpb.RepoSource{Revision: &cloudbuildpb.RepoSource_BranchName{BranchName: branch}}, nil
	case tag != "":
		return &cloudbuildpb.RepoSource{Revision: &cloudbuildpb.RepoSource_TagName{TagName: tag}}, nil
	case sha != "":
		return &cloudbuildpb.RepoSource{Revision: &cloudbuildpb.RepoSource_CommitSha{CommitSha: sha}}, nil
	}
	return nil, nil
}

func runTrigger(ctx context.Context, env *base.Env, client Client, line, region string, source *cloudbuildpb.RepoSource, async bool) error {
	ref, err := parseRegional(env, line, region, triggersCollection, globalTriggersCollection)
	if err != nil {
		return err
	}
	req := &cloudbuildpb.RunBuildTriggerRequest{
		ProjectId: ref.Param("project"),
		TriggerId: ref.Name(),
		Source:    source,
	}
	if ref.Collection() == triggersCollection {
		req.Name = ref.RelativeName()
	}
	op, err := client.RunBuildTrigger(ctx, req)
	if err != nil {
		return err
	}
	created := announce(env, op)
	if async {
		if created != nil {
			return env.Print(created, describeFormat)
		}
		return env.Print(op, describeFormat)
	}
	b, err := waitForBuild(ctx, env, client, op, "Waiting for build to complete")
	if err != nil {
		return err
	}
	if err := env.Print(b, describeFormat); err != nil {
		return err
	}
	return checkStatus(b)
}
