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

// Package meta implements "gcloud meta", commands for inspecting the tool
// itself: the resource registry, the files an upload would send, and
// generic operation waits.
package meta

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/googleapis/cloudsdk/internal/base"
	"github.com/googleapis/cloudsdk/internal/config"
	"github.com/googleapis/cloudsdk/internal/gcloudignore"
	"github.com/googleapis/cloudsdk/internal/resources"
	"github.com/urfave/cli/v3"
)

const (
	parseFormat       = "yaml"
	collectionsFormat = "value(collection,path)"
)

var errOneLine = errors.New("exactly one resource argument is required")

// Command returns the "meta" command group.
func Command() *cli.Command {
	return &cli.Command{
		Name:  "meta",
		Usage: "inspect the cloudsdk tool",
		Commands: []*cli.Command{
			resourcesCommand(),
			listFilesCommand(),
			operationsCommand(),
		},
	}
}

// parsedResource is what "meta resources parse" prints.
type parsedResource struct {
	Collection   string            `json:"collection"`
	APIVersion   string            `json:"apiVersion"`
	Params       map[string]string `json:"params"`
	RelativeName string            `json:"relativeName"`
	SelfLink     string            `json:"selfLink"`
}

// collection is one row of "meta resources list-collections".
type collection struct {
	Collection string   `json:"collection"`
	APIVersion string   `json:"apiVersion"`
	Path       string   `json:"path"`
	Params     []string `json:"params"`
}

func resourcesCommand() *cli.Command {
	return &cli.Command{
		Name:  "resources",
		Usage: "inspect the resource registry",
		Commands: []*cli.Command{
			{
				Name:      "parse",
				Usage:     "parse a resource argument",
				UsageText: "gcloud meta resources parse LINE [--collection COLLECTION] [--api-version VERSION]",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "collection", Usage: "the expected `COLLECTION`, such as cloudbuild.projects.locations.builds"},
					&cli.StringFlag{Name: "api-version", Usage: "the API `VERSION` of the collection"},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					if cmd.Args().Len() != 1 {
						return errOneLine
					}
					env, err := base.FromContext(ctx)
					if err != nil {
						return err
					}
					return runParse(env, cmd.Args().First(), cmd.String("collection"), cmd.String("api-version"))
				},
			},
			{
				Name:      "list-collections",
				Usage:     "list the registered collections",
				UsageText: "gcloud meta resources list-collections [--api API]",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "api", Usage: "only list collections of `API`"},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					env, err := base.FromContext(ctx)
					if err != nil {
						return err
					}
					return runListCollections(env, cmd.String("api"))
				},
			},
		},
	}
}

func runParse(env *base.Env, line, coll, version string) error {
	ref, err := env.Registry.Parse(line, resources.ParseOptions{Collection: coll, APIVersion: version})
	if err != nil {
		return err
	}
	return env.Print(&parsedResource{
		Collection:   ref.Collection(),
		APIVersion:   ref.Info().APIVersion,
		Params:       ref.Params(),
		RelativeName: ref.RelativeName(),
		SelfLink:     ref.SelfLink(),
	}, parseFormat)
}

func runListCollections(env *base.Env, api string) error {
	names := env.Registry.APIs()
	if api != "" {
		if !slices.Contains(names, api) {
			return fmt.Errorf("unknown API %q; known APIs are [%s]", api, strings.Join(names, ", "))
		}
		names = []string{api}
	}
	var out []*collection
	for _, name := range names {
		colls, err := env.Registry.Collections(name, "")
		if err != nil {
			return err
		}
		for _, c := range colls {
			out = append(out, &collection{
				Collection: c.FullName(),
				APIVersion: c.APIVersion,
				Path:       c.Path,
				Params:     c.Params,
			})
		}
	}
	return base.PrintList(env, out, collectionsFormat)
}

func listFilesCommand() *cli.Command {
	return &cli.Command{
		Name:      "list-files-for-upload",
		Usage:     "list the files an upload of DIRECTORY would include",
		UsageText: "gcloud meta list-files-for-upload [DIRECTORY]",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			env, err := base.FromContext(ctx)
			if err != nil {
				return err
			}
			dir := cmd.Args().First()
			if dir == "" {
				dir = "."
			}
			return runListFiles(env, dir)
		},
	}
}

func runListFiles(env *base.Env, dir string) error {
	chooser, err := gcloudignore.ForDir(dir, &gcloudignore.Options{
		Disabled: !env.Props.Bool(config.GcloudignoreEnabled),
	})
	if err != nil {
		return err
	}
	files, err := chooser.IncludedFiles(dir, false)
	if err != nil {
		return err
	}
	for _, f := range files {
		env.Println(f)
	}
	return nil
}
