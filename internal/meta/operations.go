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

package meta

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/googleapis/cloudsdk/internal/apis"
	"github.com/googleapis/cloudsdk/internal/base"
	"github.com/googleapis/cloudsdk/internal/resources"
	"github.com/googleapis/cloudsdk/internal/waiter"
	"github.com/urfave/cli/v3"
	"google.golang.org/protobuf/proto"
)

const defaultMaxConcurrency = 4

var errNoOperations = errors.New("at least one OPERATION is required")

// operationsClient is a google.longrunning client for one API.
type operationsClient interface {
	waiter.OperationsClient
	Close() error
}

// newOperationsClient is replaced in tests.
var newOperationsClient = func(ctx context.Context, env *base.Env, api, command string) (operationsClient, error) {
	return apis.NewOperationsClient(ctx, env.Props, env.Catalog, api, command)
}

func operationsCommand() *cli.Command {
	return &cli.Command{
		Name:  "operations",
		Usage: "wait on google.longrunning operations of any API",
		Commands: []*cli.Command{
			{
				Name:  "wait",
				Usage: "wait for operations to complete",
				UsageText: "gcloud meta operations wait OPERATION... [--max-concurrency N]\n\n" +
					"OPERATION is an operation URL or COLLECTION::RELATIVE_NAME.",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "max-concurrency", Value: defaultMaxConcurrency, Usage: "how many operations to poll at once"},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					if cmd.Args().Len() == 0 {
						return errNoOperations
					}
					env, err := base.FromContext(ctx)
					if err != nil {
						return err
					}
					return runWait(ctx, env, base.CommandName(cmd), cmd.Args().Slice(), cmd.Int("max-concurrency"))
				},
			},
		},
	}
}

// runWait waits for every operation concurrently. One operations client is
// created per API.
func runWait(ctx context.Context, env *base.Env, command string, lines []string, limit int) error {
	refs := make([]*resources.Resource, len(lines))
	clients := map[string]operationsClient{}
	defer func() {
		for _, c := range clients {
			c.Close()
		}
	}()
	for i, line := range lines {
		ref, err := env.Registry.Parse(line, resources.ParseOptions{})
		if err != nil {
			return err
		}
		refs[i] = ref
		api := ref.Info().APIName
		if _, ok := clients[api]; ok {
			continue
		}
		c, err := newOperationsClient(ctx, env, api, command)
		if err != nil {
			return fmt.Errorf("creating operations client for %s: %w", api, err)
		}
		clients[api] = c
	}

	var mu sync.Mutex
	results, err := waiter.WaitAll(ctx, limit, refs, func(ctx context.Context, ref *resources.Resource) (proto.Message, error) {
		poller := &waiter.CloudOperationPollerNoResources{Client: clients[ref.Info().APIName]}
		message := fmt.Sprintf("Waiting for operation [%s] to complete", ref.RelativeName())
		opts := env.WaitOpts(message)
		if len(refs) > 1 {
			opts = append(opts, waiter.WithTracker(waiter.NoOpTracker{}))
		}
		resp, err := waiter.WaitFor(ctx, poller, ref, message, opts...)
		if err != nil {
			return nil, err
		}
		mu.Lock()
		env.Status("Operation [%s] complete.", ref.RelativeName())
		mu.Unlock()
		return resp, nil
	})
	if err != nil {
		return err
	}
	var responses []proto.Message
	for _, r := range results {
		if r != nil {
			responses = append(responses, r)
		}
	}
	if len(responses) == 0 {
		return nil
	}
	return base.PrintList(env, responses, "yaml")
}
