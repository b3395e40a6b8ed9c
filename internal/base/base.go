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

// Package base holds the per-invocation state shared by all command groups:
// properties, the resource registry, output streams and the output format.
package base

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/googleapis/cloudsdk/internal/apis"
	"github.com/googleapis/cloudsdk/internal/config"
	"github.com/googleapis/cloudsdk/internal/printer"
	"github.com/googleapis/cloudsdk/internal/resources"
	"github.com/googleapis/cloudsdk/internal/waiter"
	"github.com/urfave/cli/v3"
)

var (
	// ErrRequiredProperty is returned when a command needs a property that
	// has no value.
	ErrRequiredProperty = errors.New("required property is not set")

	errNoEnv = errors.New("command environment is not initialized")
)

// RequiredPropertyError names the missing property and how to set it.
type RequiredPropertyError struct {
	Property string
	Flag     string
}

func (e *RequiredPropertyError) Error() string {
	msg := fmt.Sprintf("the required property [%s] is not fully specified; set it with `gcloud config set %s VALUE`", e.Property, e.Property)
	if e.Flag != "" {
		msg += fmt.Sprintf(" or pass --%s", e.Flag)
	}
	return msg
}

func (e *RequiredPropertyError) Unwrap() error { return ErrRequiredProperty }

// Env is the state of one command invocation.
type Env struct {
	Props    *config.Properties
	Catalog  *apis.Catalog
	Registry *resources.Registry

	Out io.Writer
	Err io.Writer

	// Format is the value of --format; empty selects the command default.
	Format string
	// Quiet disables prompts and progress output.
	Quiet bool

	// WaitOptions are appended to the options of every operation wait.
	WaitOptions []waiter.Option
}

type envKey struct{}

// WithEnv returns a context carrying env.
func WithEnv(ctx context.Context, env *Env) context.Context {
	return context.WithValue(ctx, envKey{}, env)
}

// FromContext returns the Env stored by WithEnv.
func FromContext(ctx context.Context) (*Env, error) {
	env, ok := ctx.Value(envKey{}).(*Env)
	if !ok || env == nil {
		return nil, errNoEnv
	}
	return env, nil
}

func (e *Env) out() io.Writer {
	if e.Out == nil {
		return os.Stdout
	}
	return e.Out
}

func (e *Env) errOut() io.Writer {
	if e.Err == nil {
		return os.Stderr
	}
	return e.Err
}

// Printer returns a printer for --format, or for defaultFormat when the
// flag is unset.
func (e *Env) Printer(defaultFormat string) (*printer.Printer, error) {
	format := e.Format
	if format == "" {
		format = defaultFormat
	}
	return printer.New(format, e.out())
}

// Print writes a single result.
func (e *Env) Print(v any, defaultFormat string) error {
	p, err := e.Printer(defaultFormat)
	if err != nil {
		return err
	}
	return p.Print(v)
}

// PrintList writes a list result.
func PrintList[T any](e *Env, items []T, defaultFormat string) error {
	p, err := e.Printer(defaultFormat)
	if err != nil {
		return err
	}
	return printer.List(p, items)
}

// Println writes plain output to stdout.
func (e *Env) Println(a ...any) {
	fmt.Fprintln(e.out(), a...)
}

// Status writes a status line to stderr.
func (e *Env) Status(format string, args ...any) {
	fmt.Fprintf(e.errOut(), format+"\n", args...)
}

// Project returns core/project.
func (e *Env) Project() (string, error) {
	p := e.Props.Value(config.CoreProject)
	if p == "" {
		return "", &RequiredPropertyError{Property: config.CoreProject, Flag: "project"}
	}
	return p, nil
}

// Parse parses a resource argument of collection.
func (e *Env) Parse(line, collection string, params map[string]resources.Resolver) (*resources.Resource, error) {
	return e.Registry.Parse(line, resources.ParseOptions{Collection: collection, Params: params})
}

// Tracker returns the progress tracker for a wait with message. Quiet mode
// reports nothing.
func (e *Env) Tracker(message string) waiter.Tracker {
	if e.Quiet {
		return waiter.NoOpTracker{}
	}
	return waiter.NewProgressTracker(e.errOut(), message)
}

// WaitOpts returns the options for a wait with message followed by extra
// options and the environment's WaitOptions.
func (e *Env) WaitOpts(message string, extra ...waiter.Option) []waiter.Option {
	opts := []waiter.Option{waiter.WithTracker(e.Tracker(message))}
	opts = append(opts, extra...)
	return append(opts, e.WaitOptions...)
}

// CommandName returns the dotted command path used in the user agent and
// in error messages, such as "gcloud.builds.list".
func CommandName(cmd *cli.Command) string {
	return strings.ReplaceAll(cmd.FullName(), " ", ".")
}
