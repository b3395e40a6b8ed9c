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

package resources

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidResource reports input that could not be parsed as a
	// resource.
	ErrInvalidResource = errors.New("could not parse resource")
	// ErrWrongCollection reports a resource from a collection other than
	// the one requested.
	ErrWrongCollection = errors.New("wrong collection")
	// ErrWrongFieldNumber reports a collection path with too many, too few
	// or empty fields.
	ErrWrongFieldNumber = errors.New("wrong number of fields")
	// ErrUnknownField reports a param that no input, resolver or default
	// could supply.
	ErrUnknownField = errors.New("unknown field")
	// ErrUnknownCollection reports input that names no collection when one
	// is required.
	ErrUnknownCollection = errors.New("unknown collection")
	// ErrInvalidCollection reports a collection that is not registered.
	ErrInvalidCollection = errors.New("invalid collection")

	// ErrAmbiguousAPI is returned when a collection is registered twice for
	// the same API version.
	ErrAmbiguousAPI = errors.New("collection is already registered")
	// ErrAmbiguousPath is returned when two collections share a path.
	ErrAmbiguousPath = errors.New("resource path is already registered")
)

// InvalidResourceError is returned when input cannot be parsed as a
// resource.
type InvalidResourceError struct {
	Line string
}

func (e *InvalidResourceError) Error() string {
	return fmt.Sprintf("could not parse resource: [%s]", e.Line)
}

func (e *InvalidResourceError) Unwrap() error { return ErrInvalidResource }

// WrongCollectionError is returned when the parsed resource belongs to a
// different collection than the one expected.
type WrongCollectionError struct {
	Expected string
	Got      string
	Path     string
}

func (e *WrongCollectionError) Error() string {
	return fmt.Sprintf("wrong collection: expected [%s], got [%s], for path [%s]", e.Expected, e.Got, e.Path)
}

func (e *WrongCollectionError) Unwrap() error { return ErrWrongCollection }

// WrongFieldNumberError is returned when a collection path has the wrong
// number of fields.
type WrongFieldNumberError struct {
	Path   string
	Params []string
}

func (e *WrongFieldNumberError) Error() string {
	upper := make([]string, len(e.Params))
	for i, p := range e.Params {
		upper[i] = strings.ToUpper(p)
	}
	var possibilities []string
	if len(upper) > 2 {
		possibilities = append(possibilities, upper[len(upper)-1])
	}
	if len(upper) > 0 {
		possibilities = append(possibilities, strings.Join(upper[1:], "/"))
	}
	possibilities = append(possibilities, "/"+strings.Join(upper, "/"))
	return fmt.Sprintf("wrong number of fields: [%s] does not match any of %s", e.Path, strings.Join(possibilities, ", "))
}

func (e *WrongFieldNumberError) Unwrap() error { return ErrWrongFieldNumber }

// UnknownFieldError is returned when a param is still missing after
// resolution. Err is the error of the param's resolver, if it failed.
type UnknownFieldError struct {
	Path  string
	Field string
	Err   error
}

func (e *UnknownFieldError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("unknown field [%s] in [%s]: %v", e.Field, e.Path, e.Err)
	}
	return fmt.Sprintf("unknown field [%s] in [%s]", e.Field, e.Path)
}

func (e *UnknownFieldError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrUnknownField, e.Err}
	}
	return []error{ErrUnknownField}
}

// UnknownCollectionError is returned when no collection is given and the
// input does not name one.
type UnknownCollectionError struct {
	Line string
}

func (e *UnknownCollectionError) Error() string {
	return fmt.Sprintf("unknown collection for [%s]", e.Line)
}

func (e *UnknownCollectionError) Unwrap() error { return ErrUnknownCollection }

// InvalidCollectionError is returned for a collection that is not
// registered.
type InvalidCollectionError struct {
	Collection string
}

func (e *InvalidCollectionError) Error() string {
	return fmt.Sprintf("unknown collection [%s]", e.Collection)
}

func (e *InvalidCollectionError) Unwrap() error { return ErrInvalidCollection }
