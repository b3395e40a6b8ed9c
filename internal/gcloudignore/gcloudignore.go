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

// Package gcloudignore selects the files of a directory to upload, using
// .gcloudignore files written in gitignore syntax.
//
// A .gcloudignore file may pull in another file of the same directory with
// a "#!include:FILE" comment, typically "#!include:.gitignore".
package gcloudignore

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-git/go-git/v5/plumbing/format/gitignore"
)

// FileName is the name of the ignore file looked up in the upload
// directory.
const FileName = ".gcloudignore"

// DefaultIgnoreFile is used for directories that hold git files but no
// .gcloudignore.
const DefaultIgnoreFile = `.gcloudignore
.git
.gitignore
`

const includeDirective = "!include:"

var gitFiles = []string{".git", ".gitignore"}

var (
	// ErrBadIncludedFile is returned for an include directive that names a
	// file outside the directory or a file that cannot be read.
	ErrBadIncludedFile = errors.New("bad included ignore file")

	errBadFile   = errors.New("could not read ignore file")
	errNoDirname = errors.New("a directory is required to include a file")
)

// FileChooser decides which files of a directory to upload.
type FileChooser struct {
	patterns []gitignore.Pattern
}

// IsIncluded reports whether path, relative to the upload directory and
// separated by "/", should be uploaded. Patterns apply in order; a match on
// a parent directory applies to everything below it, and nothing below an
// ignored directory can be re-included.
func (c *FileChooser) IsIncluded(path string, isDir bool) bool {
	parts := strings.Split(strings.Trim(filepath.ToSlash(path), "/"), "/")
	results := make([]gitignore.MatchResult, len(parts))
	for _, p := range c.patterns {
		parent := gitignore.NoMatch
		for i := range parts {
			m := parent
			if m == gitignore.NoMatch {
				m = p.Match(parts[:i+1], i < len(parts)-1 || isDir)
			}
			if m != gitignore.NoMatch {
				results[i] = m
			}
			parent = m
			if results[i] == gitignore.Exclude {
				parent = gitignore.Exclude
			}
		}
	}
	included := results[len(parts)-1] != gitignore.Exclude
	if !included {
		slog.Debug("skipping file", "path", path)
	}
	return included
}

// IncludedFiles walks dir and returns the included paths relative to dir,
// in lexical order. Ignored directories are not descended into. Symbolic
// links are treated as files.
func (c *FileChooser) IncludedFiles(dir string, includeDirs bool) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path == dir {
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if !c.IsIncluded(rel, d.IsDir()) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.IsDir() || includeDirs {
			files = append(files, rel)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}

// FromString parses text in .gcloudignore format. Include directives are
// honoured up to recurse levels deep and resolved against dirname.
func FromString(text string, recurse int, dirname string) (*FileChooser, error) {
	var patterns []gitignore.Pattern
	for _, line := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n") {
		if strings.HasPrefix(line, "#") {
			if strings.HasPrefix(strings.TrimLeft(line[1:], " \t"), includeDirective) {
				included, err := includedPatterns(line, dirname, recurse)
				if err != nil {
					return nil, err
				}
				patterns = append(patterns, included...)
			}
			continue
		}
		line = trimTrailingSpaces(line)
		if line == "" || endsInOddBackslashes(line) {
			continue
		}
		patterns = append(patterns, gitignore.ParsePattern(line, nil))
	}
	return &FileChooser{patterns: patterns}, nil
}

func includedPatterns(line, dirname string, recurse int) ([]gitignore.Pattern, error) {
	file := line[strings.Index(line, includeDirective)+len(includeDirective):]
	if strings.Contains(file, "/") {
		return nil, fmt.Errorf("%w: may only include files in the same directory: %q", ErrBadIncludedFile, file)
	}
	if recurse <= 0 {
		slog.Info("not respecting include directive", "line", line)
		return nil, nil
	}
	if dirname == "" {
		return nil, errNoDirname
	}
	c, err := FromFile(filepath.Join(dirname, file), recurse-1)
	if errors.Is(err, errBadFile) {
		return nil, fmt.Errorf("%w: %v", ErrBadIncludedFile, err)
	}
	if err != nil {
		return nil, err
	}
	return c.patterns, nil
}

// FromFile reads a .gcloudignore file.
func FromFile(path string, recurse int) (*FileChooser, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w %s: %w", errBadFile, path, err)
	}
	return FromString(string(data), recurse, filepath.Dir(path))
}

// Options controls ForDir.
type Options struct {
	// Disabled chooses every file, as when gcloudignore/enabled is false.
	Disabled bool

	// DefaultIgnoreFile replaces DefaultIgnoreFile.
	DefaultIgnoreFile string

	// WriteOnDisk saves a generated ignore file into the directory.
	WriteOnDisk bool

	// SkipGitignore leaves .gitignore out of a generated ignore file.
	SkipGitignore bool
}

// ForDir returns the FileChooser for dir. It uses dir/.gcloudignore if
// present. Otherwise, if dir holds a .git or .gitignore, it uses the default
// ignore file, which includes .gitignore when there is one. Otherwise every
// file is chosen.
func ForDir(dir string, opts *Options) (*FileChooser, error) {
	if opts == nil {
		opts = &Options{}
	}
	if opts.Disabled {
		slog.Info("not using a .gcloudignore file since gcloudignore is globally disabled")
		return &FileChooser{}, nil
	}
	path := filepath.Join(dir, FileName)
	c, err := FromFile(path, 1)
	if err == nil {
		slog.Info("using .gcloudignore file", "path", path)
		return c, nil
	}
	if !errors.Is(err, errBadFile) {
		return nil, err
	}
	if !anyExists(dir, gitFiles) {
		slog.Info("not using a .gcloudignore file")
		return &FileChooser{}, nil
	}

	contents := opts.DefaultIgnoreFile
	if contents == "" {
		contents = DefaultIgnoreFile
	}
	if !opts.SkipGitignore && anyExists(dir, []string{".gitignore"}) {
		contents += "#!include:.gitignore\n"
	}
	slog.Info("using default gcloudignore file", "contents", contents)
	if opts.WriteOnDisk {
		f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
		if err != nil {
			slog.Info("could not write .gcloudignore file", "error", err)
		} else {
			_, werr := f.WriteString(contents)
			if cerr := f.Close(); werr == nil {
				werr = cerr
			}
			if werr != nil {
				return nil, werr
			}
			slog.Info("created .gcloudignore file", "path", path)
		}
	}
	return FromString(contents, 1, dir)
}

func anyExists(dir string, names []string) bool {
	for _, name := range names {
		if _, err := os.Stat(filepath.Join(dir, name)); err == nil {
			return true
		}
	}
	return false
}

// trimTrailingSpaces removes trailing spaces that are not escaped with a
// backslash.
func trimTrailingSpaces(line string) string {
	end := len(line)
	for end > 0 && line[end-1] == ' ' {
		if backslashesBefore(line, end-1)%2 == 1 {
			break
		}
		end--
	}
	return line[:end]
}

func endsInOddBackslashes(line string) bool {
	return backslashesBefore(line, len(line))%2 == 1
}

func backslashesBefore(s string, i int) int {
	n := 0
	for i > 0 && s[i-1] == '\\' {
		n++
		i--
	}
	return n
}
