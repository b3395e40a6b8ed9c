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
	"fmt"
	"runtime/debug"
	"strings"
	"testing"
)

func TestVersion(t *testing.T) {
	base := strings.TrimSpace(versionString)
	for _, test := range []struct {
		name      string
		want      string
		buildinfo *debug.BuildInfo
	}{
		{
			name: "tagged version",
			want: "v1.2.3",
			buildinfo: &debug.BuildInfo{
				Main: debug.Module{Version: "v1.2.3"},
			},
		},
		{
			name:      "no build info",
			want:      versionNotAvailable,
			buildinfo: &debug.BuildInfo{},
		},
		{
			name: "local development with VCS info",
			want: fmt.Sprintf("v%s-20230125195754-123456789000", base),
			buildinfo: &debug.BuildInfo{
				Main: debug.Module{Version: "(devel)"},
				Settings: []debug.BuildSetting{
					{Key: "vcs.revision", Value: "1234567890001234"},
					{Key: "vcs.time", Value: "2023-01-25T19:57:54Z"},
				},
			},
		},
		{
			name: "revision without time",
			want: fmt.Sprintf("v%s-abcdef", base),
			buildinfo: &debug.BuildInfo{
				Settings: []debug.BuildSetting{
					{Key: "vcs.revision", Value: "abcdef"},
				},
			},
		},
		{
			name: "dirty",
			want: versionNotAvailable,
			buildinfo: &debug.BuildInfo{
				Main: debug.Module{Version: "v1.0.2-0.20260130024826-f525c91d74e9+dirty"},
			},
		},
	} {
		t.Run(test.name, func(t *testing.T) {
			if got := version(test.buildinfo); got != test.want {
				t.Errorf("got %s; want %s", got, test.want)
			}
		})
	}
}
