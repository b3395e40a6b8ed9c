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
	"fmt"
	"os"
	"strings"
	"time"

	"cloud.google.com/go/cloudbuild/apiv1/v2/cloudbuildpb"
	"cloud.google.com/go/longrunning/autogen/longrunningpb"
	"github.com/googleapis/cloudsdk/internal/base"
	"github.com/googleapis/cloudsdk/internal/config"
	"github.com/googleapis/cloudsdk/internal/yaml"
	"github.com/urfave/cli/v3"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/durationpb"
)

var (
	errLocalSource       = errors.New("uploading local source is not supported; pass a gs:// source or --no-source")
	errSourceAndNoSource = errors.New("a source cannot be given with --no-source")
	errMissingSource     = errors.New("a gs:// source or --no-source is required")
	errSubstitution      = errors.New("invalid substitution")
)

// submitOptions are the parsed flags of "builds submit".
type submitOptions struct {
	source        string
	noSource      bool
	config        string
	substitutions map[string]string
	timeout       time.Duration
	async         bool
	region        string
}

func submitCommand() *cli.Command {
	return &cli.Command{
		Name:      "submit",
		Usage:     "submit a build using Cloud Build",
		UsageText: "gcloud builds submit [gs://BUCKET/OBJECT | --no-source] [--config FILE] [--substitutions K=V,...] [--async]",
		Flags: []cli.Flag{
			regionFlag,
			&cli.BoolFlag{Name: "no-source", Usage: "build without any source"},
			&cli.StringFlag{Name: "config", Value: "cloudbuild.yaml", Usage: "the YAML build configuration `FILE`"},
			&cli.StringFlag{Name: "substitutions", Usage: "comma separated `KEY=VALUE` substitutions"},
			&cli.DurationFlag{Name: "timeout", Usage: "maximum build duration"},
			&cli.BoolFlag{Name: "async", Usage: "return immediately without waiting for the build"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			subs, err := parseSubstitutions(cmd.String("substitutions"))
			if err != nil {
				return err
			}
			env, client, err := setup(ctx, cmd)
			if err != nil {
				return err
			}
			defer client.Close()
			return runSubmit(ctx, env, client, &submitOptions{
				source:        cmd.Args().First(),
				noSource:      cmd.Bool("no-source"),
				config:        cmd.String("config"),
				substitutions: subs,
				timeout:       cmd.Duration("timeout"),
				async:         cmd.Bool("async"),
				region:        region(cmd, env),
			})
		},
	}
}

// parseSubstitutions parses KEY=VALUE,KEY=VALUE.
func parseSubstitutions(s string) (map[string]string, error) {
	if s == "" {
		return nil, nil
	}
	subs := map[string]string{}
	for _, kv := range strings.Split(s, ",") {
		k, v, ok := strings.Cut(kv, "=")
		if !ok || k == "" {
			return nil, fmt.Errorf("%w: %q is not KEY=VALUE", errSubstitution, kv)
		}
		subs[k] = v
	}
	return subs, nil
}

// readConfig reads a YAML build configuration.
func readConfig(path string) (*cloudbuildpb.Build, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading build config: %w", err)
	}
	j, err := yaml.ToJSON(data)
	if err != nil {
		return nil, fmt.Errorf("parsing build config %s: %w", path, err)
	}
	b := &cloudbuildpb.Build{}
	if err := protojson.Unmarshal(j, b); err != nil {
		return nil, fmt.Errorf("parsing build config %s: %w", path, err)
	}
	return b, nil
}

func buildSource(env *base.Env, opts *submitOptions) (*cloudbuildpb.Source, error) {
	switch {
	case opts.noSource && opts.source != "":
		return nil, errSourceAndNoSource
	case opts.noSource:
		return nil, nil
	case opts.source == "":
		return nil, errMissingSource
	case !strings.HasPrefix(opts.source, "gs://"):
		return nil, errLocalSource
	}
	ref, err := env.Registry.ParseStorageURL(opts.source)
	if err != nil {
		return nil, err
	}
	if ref.Collection() != "storage.objects" {
		return nil, fmt.Errorf("source %s must name an object", opts.source)
	}
	return &cloudbuildpb.Source{
		Source: &cloudbuildpb.Source_StorageSource{
			StorageSource: &cloudbuildpb.StorageSource{
				Bucket: ref.Param("bucket"),
				Object: ref.Param("object"),
			},
		},
	}, nil
}

func runSubmit(ctx context.Context, env *base.Env, client Client, opts *submitOptions) error {
	source, err := buildSource(env, opts)
	if err != nil {
		return err
	}
	build, err := readConfig(opts.config)
	if err != nil {
		return err
	}
	build.Source = source
	for k, v := range opts.substitutions {
		if build.Substitutions == nil {
			build.Substitutions = map[string]string{}
		}
		build.Substitutions[k] = v
	}
	if opts.timeout > 0 {
		build.Timeout = durationpb.New(opts.timeout)
	}
	parent, err := locationName(env, opts.region)
	if err != nil {
		return err
	}
	op, err := client.CreateBuild(ctx, &cloudbuildpb.CreateBuildRequest{
		Parent:    parent,
		ProjectId: env.Props.Value(config.CoreProject),
		Build:     build,
	})
	if err != nil {
		return err
	}
	created := announce(env, op)
	if opts.async {
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

// announce reports the build an operation created and returns it, or nil
// when the operation carries no build metadata.
func announce(env *base.Env, op *longrunningpb.Operation) *cloudbuildpb.Build {
	if op.GetMetadata() == nil {
		return nil
	}
	md := &cloudbuildpb.BuildOperationMetadata{}
	if err := op.GetMetadata().UnmarshalTo(md); err != nil {
		return nil
	}
	b := md.GetBuild()
	if b == nil {
		return nil
	}
	env.Status("Created [%s].", b.GetName())
	if u := b.GetLogUrl(); u != "" {
		env.Status("Logs are available at [%s].", u)
	}
	return b
}
