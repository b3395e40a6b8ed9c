// Copyright 2025 Google LLC
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

package config

import (
	_ "embed"
	"runtime/debug"
	"strings"
	"time"
)

//go:embed version.txt
var versionString string

// versionNotAvailable is reported for local builds without a version tag.
const versionNotAvailable = "not available"

// Version returns the version of the gcloud binary, constructed following
// https://go.dev/ref/mod#versions.
func Version() string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return versionNotAvailable
	}
	return version(info)
}

func version(info *debug.BuildInfo) string {
	if strings.HasSuffix(info.Main.Version, "+dirty") {
		return versionNotAvailable
	}
	if info.Main.Version == "" || info.Main.Version == "(devel)" {
		return newPseudoVersion(info)
	}
	return info.Main.Version
}

// newPseudoVersion builds a pseudo-version from the embedded base version and
// the VCS settings recorded at build time.
func newPseudoVersion(info *debug.BuildInfo) string {
	var revision, at string
	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			revision = s.Value
		case "vcs.time":
			at = s.Value
		}
	}
	if revision == "" {
		return versionNotAvailable
	}
	if len(revision) > 12 {
		revision = revision[:12]
	}
	var buf strings.Builder
	buf.WriteString("v")
	buf.WriteString(strings.TrimSpace(versionString))
	buf.WriteString("-")
	if p, err := time.Parse(time.RFC3339, at); err == nil {
		buf.WriteString(p.Format("20060102150405"))
		buf.WriteString("-")
	}
	buf.WriteString(revision)
	return buf.String()
}
