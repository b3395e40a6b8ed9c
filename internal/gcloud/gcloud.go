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

// Package gcloud assembles the gcloud command tree and the per-invocation
// environment shared by its command groups.
package gcloud

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"

	"github.com/googleapis/cloudsdk/internal/apis"
	"github.com/googleapis/cloudsdk/internal/artifacts"
	"github.com/googleapis/cloudsdk/internal/base"
	"github.com/googleapis/cloudsdk/internal/builds"
	"github.com/googleapis/cloudsdk/internal/config"
	"github.com/googleapis/cloudsdk/internal/container"
	"github.com/googleapis/cloudsdk/internal/meta"
	"github.com/googleapis/cloudsdk/internal/render"
	"github.com/googleapis/cloudsdk/internal/resources"
	"github.com/urfave/cli/v3"
)

const gcloudLongHelp = `gcloud manages Google Cloud resources from the command line.

Global flags apply to every command:

- **--project** overrides the core/project property.
- **--configuration** selects a named configuration for one invocation.
- **--format** selects the output format: json, yaml, text, none or value(...).
- **--verbosity** sets the log level: debug, info, warning, error, critical or none.
- **--quiet** disables prompts and progress output.`

// resourceRegistrations add the collections of command groups backed by
// generated clients to the registry.
var resourceRegistrations = []func(*resources.Registry) error{
	builds.RegisterResources,
	artifacts.RegisterResources,
}

// Error is a command failure annotated with the command that failed.
type Error struct {
	Command string
	Err     error
}

func (e *Error) Error() string {
	return fmt.Sprintf("(%s) %v", e.Command, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Run executes gcloud with the given command line arguments, where arg[0]
// is the program name.
func Run(ctx context.Context, arg ...string) error {
	return run(ctx, os.Stdout, os.Stderr, arg)
}

func run(ctx context.Context, out, errOut io.Writer, arg []string) error {
	cmd := newCommand(out, errOut)
	return cmd.Run(ctx, arg)
}

func newCommand(out, errOut io.Writer) *cli.Command {
	cmd := &cli.Command{
		Name:        "gcloud",
		Usage:       "manage Google Cloud resources",
		UsageText:   "gcloud [global flags] <group> <command> [arguments]",
		Description: render.Text(gcloudLongHelp),
		Writer:      out,
		ErrWriter:   errOut,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "project",
				Usage: "the Google Cloud project to use for this invocation",
			},
			&cli.StringFlag{
				Name:  "configuration",
				Usage: "the named configuration to use for this invocation",
			},
			&cli.StringFlag{
				Name:  "format",
				Usage: "the output format",
			},
			&cli.StringFlag{
				Name:  "verbosity",
				Usage: "the log level: " + fmt.Sprint(config.Verbosities),
			},
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "shorthand for --verbosity=debug",
			},
			&cli.BoolFlag{
				Name:    "quiet",
				Aliases: []string{"q"},
				Usage:   "disable prompts and progress output",
			},
		},
		Commands: []*cli.Command{
			builds.Command(),
			artifacts.Command(),
			container.Command(),
			configCommand(),
			meta.Command(),
			versionCommand(),
		},
	}
	withEnv(cmd, out, errOut)
	return cmd
}

// withEnv wraps every action in the tree so that it runs with a populated
// environment. Root flags are persistent, so they are read at the leaf.
func withEnv(cmd *cli.Command, out, errOut io.Writer) {
	if action := cmd.Action; action != nil {
		cmd.Action = func(ctx context.Context, cmd *cli.Command) error {
			ctx, err := newEnv(ctx, cmd, out, errOut)
			if err == nil {
				err = action(ctx, cmd)
			}
			if err != nil {
				return &Error{Command: base.CommandName(cmd), Err: err}
			}
			return nil
		}
	}
	for _, sub := range cmd.Commands {
		withEnv(sub, out, errOut)
	}
}

func newEnv(ctx context.Context, cmd *cli.Command, out, errOut io.Writer) (context.Context, error) {
	verbosity := cmd.String("verbosity")
	if cmd.Bool("verbose") {
		verbosity = "debug"
	}
	if verbosity != "" && !slices.Contains(config.Verbosities, verbosity) {
		return nil, fmt.Errorf("%w: --verbosity must be one of %v", config.ErrInvalidValue, config.Verbosities)
	}
	props, err := config.Load(&config.Options{
		Configuration: cmd.String("configuration"),
		Overrides: map[string]string{
			config.CoreProject:   cmd.String("project"),
			config.CoreVerbosity: verbosity,
		},
	})
	if err != nil {
		return nil, err
	}
	setupLogger(errOut, props.Value(config.CoreVerbosity))
	slog.Debug("running command", "command", base.CommandName(cmd), "configuration", props.Configuration())

	catalog := apis.Default()
	reg := resources.NewRegistry(catalog)
	for _, register := range resourceRegistrations {
		if err := register(reg); err != nil {
			return nil, err
		}
	}
	base.InstallParamDefaults(reg, props)
	base.ApplyEndpointOverrides(reg, props)
	env := &base.Env{
		Props:    props,
		Catalog:  catalog,
		Registry: reg,
		Out:      out,
		Err:      errOut,
		Format:   cmd.String("format"),
		Quiet:    cmd.Bool("quiet") || props.Bool(config.CoreDisablePrompts),
	}
	return base.WithEnv(ctx, env), nil
}

// levelNone is above every level the commands log at.
const levelNone = slog.Level(16)

func setupLogger(w io.Writer, verbosity string) {
	level := slog.LevelWarn
	switch verbosity {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "error":
		level = slog.LevelError
	case "critical":
		level = slog.LevelError + 4
	case "none":
		level = levelNone
	}
	opts := &slog.HandlerOptions{Level: level}
	handler := slog.NewTextHandler(w, opts)
	slog.SetDefault(slog.New(handler))
}

func versionCommand() *cli.Command {
	return &cli.Command{
		Name:      "version",
		Usage:     "print the version information",
		UsageText: "gcloud version",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			env, err := base.FromContext(ctx)
			if err != nil {
				return err
			}
			env.Println("Google Cloud SDK", config.Version())
			return nil
		},
	}
}
