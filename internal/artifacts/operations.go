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

	"cloud.google.com/go/longrunning/autogen/longrunningpb"
	"github.com/googleapis/cloudsdk/internal/base"
	"github.com/urfave/cli/v3"
)

func operationsCommand() *cli.Command {
	action := func(run func(ctx context.Context, env *base.Env, client Client, line, loc string) error) cli.ActionFunc {
		return func(ctx context.Context, cmd *cli.Command) error {
			if cmd.Args().Len() != 1 {
				return errOneOperation
			}
			env, client, err := setup(ctx, cmd)
			if err != nil {
				return err
			}
			defer client.Close()
			return run(ctx, env, client, cmd.Args().First(), cmd.String("location"))
		}
	}
	return &cli.Command{
		Name:  "operations",
		Usage: "manage Artifact Registry long-running operations",
		Commands: []*cli.Command{
			{
				Name:      "describe",
				Usage:     "describe an operation",
				UsageText: "gcloud artifacts operations describe OPERATION [--location LOCATION]",
				Flags:     []cli.Flag{locationFlag},
				Action:    action(runOperationDescribe),
			},
			{
				Name:      "wait",
				Usage:     "wait for an operation to complete",
				UsageText: "gcloud artifacts operations wait OPERATION [--location LOCATION]",
				Flags:     []cli.Flag{locationFlag},
				Action:    action(runOperationWait),
			},
		},
	}
}

func runOperationDescribe(ctx context.Context, env *base.Env, client Client, line, loc string) error {
	ref, err := env.Parse(line, operationsCollection, locationParams(loc))
	if err != nil {
		return err
	}
	op, err := client.GetOperation(ctx, &longrunningpb.GetOperationRequest{Name: ref.RelativeName()})
	if err != nil {
		return err
	}
	return env.Print(op, describeFormat)
}

func runOperationWait(ctx context.Context, env *base.Env, client Client, line, loc string) error {
	ref, err := env.Parse(line, operationsCollection, locationParams(loc))
	if err != nil {
		return err
	}
	resp, err := waitForOperation(ctx, env, client, ref.RelativeName())
	if err != nil {
		return err
	}
	if resp == nil {
		return nil
	}
	return env.Print(resp, describeFormat)
}
