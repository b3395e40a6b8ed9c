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

// Package render turns the markdown used in command help into plain text
// for a terminal.
package render

import (
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

const codeIndent = "    "

// Text renders markdown as plain text. Headings are upper-cased, list items
// keep a "-" or "N." marker, and code blocks are indented by four spaces.
// Blocks are separated by a blank line.
func Text(markdown string) string {
	src := []byte(markdown)
	doc := goldmark.New().Parser().Parse(text.NewReader(src))
	var blocks []string
	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		if b := block(n, src, 0); b != "" {
			blocks = append(blocks, b)
		}
	}
	return strings.Join(blocks, "\n\n")
}

func block(n ast.Node, src []byte, level int) string {
	switch n := n.(type) {
	case *ast.Heading:
		return strings.ToUpper(inline(n, src))
	case *ast.Paragraph, *ast.TextBlock:
		return indentLines(inline(n, src), level)
	case *ast.List:
		return list(n, src, level)
	case *ast.CodeBlock, *ast.FencedCodeBlock:
		var lines []string
		for i := 0; i < n.Lines().Len(); i++ {
			line := n.Lines().At(i)
			lines = append(lines, strings.TrimRight(string(line.Value(src)), "\n"))
		}
		return indentLines(strings.Join(lines, "\n"), level+len(codeIndent))
	case *ast.ThematicBreak, *ast.HTMLBlock:
		return ""
	}
	var parts []string
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		if b := block(c, src, level); b != "" {
			parts = append(parts, b)
		}
	}
	return strings.Join(parts, "\n\n")
}

func list(l *ast.List, src []byte, level int) string {
	var items []string
	i := l.Start
	for item := l.FirstChild(); item != nil; item = item.NextSibling() {
		marker := "-"
		if l.IsOrdered() {
			marker = fmt.Sprintf("%d.", i)
			i++
		}
		var parts []string
		for c := item.FirstChild(); c != nil; c = c.NextSibling() {
			parts = append(parts, block(c, src, 0))
		}
		body := strings.Join(parts, "\n")
		first, rest, _ := strings.Cut(body, "\n")
		entry := strings.Repeat(" ", level) + marker + " " + first
		if rest != "" {
			entry += "\n" + indentLines(rest, level+len(marker)+1)
		}
		items = append(items, entry)
	}
	return strings.Join(items, "\n")
}

func inline(n ast.Node, src []byte) string {
	var sb strings.Builder
	writeInline(&sb, n, src)
	return strings.TrimSpace(sb.String())
}

func writeInline(sb *strings.Builder, n ast.Node, src []byte) {
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		switch c := c.(type) {
		case *ast.Text:
			sb.Write(c.Segment.Value(src))
			if c.SoftLineBreak() || c.HardLineBreak() {
				sb.WriteByte('\n')
			}
		case *ast.String:
			sb.Write(c.Value)
		case *ast.AutoLink:
			sb.Write(c.URL(src))
		case *ast.Link:
			writeInline(sb, c, src)
			fmt.Fprintf(sb, " (%s)", c.Destination)
		default:
			writeInline(sb, c, src)
		}
	}
}

func indentLines(s string, level int) string {
	if level == 0 {
		return s
	}
	pad := strings.Repeat(" ", level)
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		if line != "" {
			lines[i] = pad + line
		}
	}
	return strings.Join(lines, "\n")
}
