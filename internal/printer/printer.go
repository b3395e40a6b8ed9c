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

// Package printer writes command results in the format selected with
// --format.
//
// Supported formats are:
//
//	yaml                     one document per item, separated by "---"
//	json                     indented JSON; lists print as an array
//	text                     flattened "key.path: value" lines, one block per item
//	value(field.path, ...)   tab-separated field values, one line per item
//	template=<mustache>      the template rendered once per item
//	none                     nothing
//
// Proto messages are converted with protojson, so field names are
// lowerCamelCase. Field paths may be given in snake_case or camelCase.
package printer

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/cbroglie/mustache"
	"github.com/googleapis/cloudsdk/internal/yaml"
	"github.com/iancoleman/strcase"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/proto"
)

// ErrUnknownFormat is returned for a --format value that names no printer.
var ErrUnknownFormat = errors.New("unknown format")

// Format names.
const (
	YAML     = "yaml"
	JSON     = "json"
	Text     = "text"
	Value    = "value"
	Template = "template"
	None     = "none"
)

var valueRE = regexp.MustCompile(`^value\((.*)\)$`)

// Printer formats values onto a writer.
type Printer struct {
	w      io.Writer
	kind   string
	fields []string
	tmpl   *mustache.Template
}

// New returns a Printer for format writing to w.
func New(format string, w io.Writer) (*Printer, error) {
	p := &Printer{w: w}
	format = strings.TrimSpace(format)
	switch {
	case format == YAML, format == JSON, format == Text, format == None:
		p.kind = format
	case valueRE.MatchString(format):
		p.kind = Value
		for _, f := range strings.Split(valueRE.FindStringSubmatch(format)[1], ",") {
			if f = strings.TrimSpace(f); f != "" {
				p.fields = append(p.fields, f)
			}
		}
		if len(p.fields) == 0 {
			return nil, fmt.Errorf("%w: %q lists no fields", ErrUnknownFormat, format)
		}
	case strings.HasPrefix(format, Template+"="):
		t, err := mustache.ParseString(strings.TrimPrefix(format, Template+"="))
		if err != nil {
			return nil, fmt.Errorf("parsing template: %w", err)
		}
		p.kind = Template
		p.tmpl = t
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
	return p, nil
}

// Print writes a single item.
func (p *Printer) Print(v any) error {
	data, err := ToData(v)
	if err != nil {
		return err
	}
	if p.kind == JSON {
		return p.writeJSON(data)
	}
	return p.writeItem(0, data)
}

// PrintList writes items as a list.
func (p *Printer) PrintList(items []any) error {
	all := make([]any, 0, len(items))
	for _, item := range items {
		data, err := ToData(item)
		if err != nil {
			return err
		}
		all = append(all, data)
	}
	if p.kind == JSON {
		return p.writeJSON(all)
	}
	for i, data := range all {
		if err := p.writeItem(i, data); err != nil {
			return err
		}
	}
	return nil
}

// List writes items of any type as a list.
func List[T any](p *Printer, items []T) error {
	all := make([]any, len(items))
	for i, item := range items {
		all[i] = item
	}
	return p.PrintList(all)
}

func (p *Printer) writeJSON(data any) error {
	b, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(p.w, "%s\n", b)
	return err
}

func (p *Printer) writeItem(i int, data any) error {
	switch p.kind {
	case YAML:
		b, err := yaml.Marshal(data)
		if err != nil {
			return err
		}
		if i > 0 {
			if _, err := io.WriteString(p.w, "---\n"); err != nil {
				return err
			}
		}
		_, err = p.w.Write(b)
		return err
	case Text:
		if i > 0 {
			if _, err := io.WriteString(p.w, "---\n"); err != nil {
				return err
			}
		}
		return writeFlattened(p.w, data)
	case Value:
		values := make([]string, len(p.fields))
		for j, f := range p.fields {
			values[j] = formatValue(Lookup(data, f))
		}
		_, err := fmt.Fprintln(p.w, strings.Join(values, "\t"))
		return err
	case Template:
		s, err := p.tmpl.Render(data)
		if err != nil {
			return err
		}
		if !strings.HasSuffix(s, "\n") {
			s += "\n"
		}
		_, err = io.WriteString(p.w, s)
		return err
	}
	return nil
}

// ToData converts v into the generic maps, slices and scalars produced by
// decoding JSON. Proto messages go through protojson.
func ToData(v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	var (
		b   []byte
		err error
	)
	if m, ok := v.(proto.Message); ok {
		b, err = protojson.Marshal(m)
	} else {
		b, err = json.Marshal(v)
	}
	if err != nil {
		return nil, fmt.Errorf("converting %T: %w", v, err)
	}
	var data any
	if err := json.Unmarshal(b, &data); err != nil {
		return nil, err
	}
	return data, nil
}

// Lookup returns the value at a dotted field path, or nil. Each segment
// matches a key as given or in lowerCamelCase.
func Lookup(data any, path string) any {
	for _, seg := range strings.Split(path, ".") {
		m, ok := data.(map[string]any)
		if !ok {
			return nil
		}
		v, ok := m[seg]
		if !ok {
			v = m[strcase.ToLowerCamel(seg)]
		}
		data = v
	}
	return data
}

func formatValue(v any) string {
	switch v := v.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	case []any:
		parts := make([]string, len(v))
		for i, e := range v {
			parts[i] = formatValue(e)
		}
		return strings.Join(parts, ";")
	case map[string]any:
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, len(keys))
		for i, k := range keys {
			parts[i] = k + "=" + formatValue(v[k])
		}
		return strings.Join(parts, ";")
	}
	return fmt.Sprint(v)
}

type keyValue struct {
	key, value string
}

// writeFlattened writes one "key: value" line per scalar in data, with the
// values aligned and the keys sorted.
func writeFlattened(w io.Writer, data any) error {
	var lines []keyValue
	flatten("", data, &lines)
	width := 0
	for _, l := range lines {
		width = max(width, len(l.key))
	}
	for _, l := range lines {
		if _, err := fmt.Fprintf(w, "%-*s %s\n", width+1, l.key+":", l.value); err != nil {
			return err
		}
	}
	return nil
}

func flatten(prefix string, data any, lines *[]keyValue) {
	switch v := data.(type) {
	case map[string]any:
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			key := k
			if prefix != "" {
				key = prefix + "." + k
			}
			flatten(key, v[k], lines)
		}
	case []any:
		for i, e := range v {
			flatten(fmt.Sprintf("%s[%d]", prefix, i), e, lines)
		}
	default:
		key := prefix
		if key == "" {
			key = "value"
		}
		*lines = append(*lines, keyValue{key: key, value: formatValue(v)})
	}
}

