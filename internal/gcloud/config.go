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

package gcloud

import (
	"context"
	"errors"
	"strings"

	"github.com/googleapis/cloudsdk/internal/base"
	"github.com/googleapis/cloudsdk/internal/config"
	"github.com/googleapis/cloudsdk/internal/render"
	"github.com/urfave/cli/v3"
)

const (
	configLongHelp = `Properties are stored in named configurations under the gcloud
configuration directory (**$CLOUDSDK_CONFIG** when set). A property is
named SECTION/NAME; names in the core section may omit the section.

A property resolves in this order:

1. the flag that overrides it, such as **--project**
2. the environment variable **CLOUDSDK_SECTION_NAME**
3. the active configuration
4. the built-in default`

	configurationsListFormat = "value(name,is_active)"
)

var (
	errPropertyArgs = errors.New("expected exactly one property name")
	errSetArgs      = errors.New("expected a property name and a value")
	errNameArg      = errors.New("expected exactly one configuration name")
)

func configCommand() *cli.Command {
	return &cli.Command{
		Name:        "config",
		Usage:       "view and edit properties",
		UsageText:   "gcloud config <command> [arguments]",
		Description: render.Text(configLongHelp),
		Commands: []*cli.Command{
			{
				Name:      "set",
				Usage:     "set a property in the active configuration",
				UsageText: "gcloud config set SECTION/NAME VALUE",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					if cmd.Args().Len() != 2 {
						return errSetArgs
					}
					return withProps(ctx, func(env *base.Env) error {
						return runSet(env, cmd.Args().Get(0), cmd.Args().Get(1))
					})
				},
			},
			{
				Name:      "get",
				Usage:     "print the effective value of a property",
				UsageText: "gcloud config get SECTION/NAME",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					if cmd.Args().Len() != 1 {
						return errPropertyArgs
					}
					return withProps(ctx, func(env *base.Env) error {
						return runGet(env, cmd.Args().First())
					})
				},
			},
			{
				Name:      "unset",
				Usage:     "remove a property from the active configuration",
				UsageText: "gcloud config unset SECTION/NAME",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					if cmd.Args().Len() != 1 {
						return errPropertyArgs
					}
					return withProps(ctx, func(env *base.Env) error {
						return runUnset(env, cmd.Args().First())
					})
				},
			},
			{
				Name:      "list",
				Usage:     "list the properties of the active configuration",
				UsageText: "gcloud config list [--all]",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "all",
						Usage: "list every known property, including unset ones",
					},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return withProps(ctx, func(env *base.Env) error {
						return runList(env, cmd.Bool("all"))
					})
				},
			},
			configurationsCommand(),
		},
	}
}

func configurationsCommand() *cli.Command {
	nameAction := func(f func(env *base.Env, dir, name string) error) cli.ActionFunc {
		return func(ctx context.Context, cmd *cli.Command) error {
			if cmd.Args().Len() != 1 {
				return errNameArg
			}
			return withProps(ctx, func(env *base.Env) error {
				return f(env, env.Props.Dir(), cmd.Args().First())
			})
		}
	}
	return &cli.Command{
		Name:      "configurations",
		Usage:     "manage named configurations",
		UsageText: "gcloud config configurations <command> [arguments]",
		Commands: []*cli.Command{
			{
				Name:      "create",
				Usage:     "create a configuration and activate it",
				UsageText: "gcloud config configurations create NAME [--no-activate]",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "no-activate",
						Usage: "do not activate the new configuration",
					},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					if cmd.Args().Len() != 1 {
						return errNameArg
					}
					return withProps(ctx, func(env *base.Env) error {
						return runCreate(env, env.Props.Dir(), cmd.Args().First(), !cmd.Bool("no-activate"))
					})
				},
			},
			{
				Name:      "activate",
				Usage:     "make a configuration the active one",
				UsageText: "gcloud config configurations activate NAME",
				Action:    nameAction(runActivate),
			},
			{
				Name:      "describe",
				Usage:     "show the properties of a configuration",
				UsageText: "gcloud config configurations describe NAME",
				Action:    nameAction(runDescribeConfiguration),
			},
			{
				Name:      "delete",
				Usage:     "delete a configuration",
				UsageText: "gcloud config configurations delete NAME",
				Action:    nameAction(runDeleteConfiguration),
			},
			{
				Name:      "list",
				Usage:     "list the configurations",
				UsageText: "gcloud config configurations list",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return withProps(ctx, func(env *base.Env) error {
						return runListConfigurations(env, env.Props.Dir())
					})
				},
			},
		},
	}
}

func withProps(ctx context.Context, f func(env *base.Env) error) error {
	env, err := base.FromContext(ctx)
	if err != nil {
		return err
	}
	return f(env)
}

func runSet(env *base.Env, name, value string) error {
	if err := env.Props.Set(name, value); err != nil {
		return err
	}
	canonical, _ := config.Canonical(name)
	env.Status("Updated property [%s].", canonical)
	return nil
}

func runGet(env *base.Env, name string) error {
	v, err := env.Props.Get(name)
	if err != nil {
		return err
	}
	if v == "" {
		env.Status("(unset)")
		return nil
	}
	env.Println(v)
	return nil
}

func runUnset(env *base.Env, name string) error {
	if err := env.Props.Unset(name); err != nil {
		return err
	}
	canonical, _ := config.Canonical(name)
	env.Status("Unset property [%s].", canonical)
	return nil
}

func runList(env *base.Env, all bool) error {
	values := env.Props.List()
	if all {
		values = map[string]map[string]string{}
		for _, name := range config.Names() {
			section, key, _ := strings.Cut(name, "/")
			if values[section] == nil {
				values[section] = map[string]string{}
			}
			values[section][key] = env.Props.Value(name)
		}
	}
	if err := env.Print(values, "yaml"); err != nil {
		return err
	}
	env.Status("Your active configuration is: [%s]", env.Props.Configuration())
	return nil
}

func runCreate(env *base.Env, dir, name string, activate bool) error {
	if err := config.Create(dir, name); err != nil {
		return err
	}
	env.Status("Created [%s].", name)
	if !activate {
		return nil
	}
	return runActivate(env, dir, name)
}

func runActivate(env *base.Env, dir, name string) error {
	if err := config.Activate(dir, name); err != nil {
		return err
	}
	env.Status("Activated [%s].", name)
	return nil
}

func runDescribeConfiguration(env *base.Env, dir, name string) error {
	c, err := config.Describe(dir, name)
	if err != nil {
		return err
	}
	return env.Print(c, "yaml")
}

func runDeleteConfiguration(env *base.Env, dir, name string) error {
	if err := config.Delete(dir, name); err != nil {
		return err
	}
	env.Status("Deleted [%s].", name)
	return nil
}

func runListConfigurations(env *base.Env, dir string) error {
	list, err := config.List(dir)
	if err != nil {
		return err
	}
	return base.PrintList(env, list, configurationsListFormat)
}
