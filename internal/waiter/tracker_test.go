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

package waiter

import (
	"bytes"
	"errors"
	"testing"
)

func TestProgressTracker(t *testing.T) {
	for _, test := range []struct {
		name string
		run  func(p *ProgressTracker)
		want string
	}{
		{
			name: "done",
			run: func(p *ProgressTracker) {
				p.Start()
				p.Tick()
				p.Tick()
				p.Done(nil)
			},
			want: "Creating build...done.\n",
		},
		{
			name: "failed",
			run: func(p *ProgressTracker) {
				p.Start()
				p.Done(errors.New("boom"))
			},
			want: "Creating build...failed.\n",
		},
		{
			name: "detail",
			run: func(p *ProgressTracker) {
				p.Start()
				p.Update("Logs are available at [https://example.com/logs].")
				p.Update("Logs are available at [https://example.com/logs].")
				p.Tick()
				p.Done(nil)
			},
			want: "Creating build...\nLogs are available at [https://example.com/logs].\nCreating build...done.\n",
		},
	} {
		t.Run(test.name, func(t *testing.T) {
			var buf bytes.Buffer
			p := NewProgressTracker(&buf, "Creating build")
			test.run(p)
			if got := buf.String(); got != test.want {
				t.Errorf("output = %q, want %q", got, test.want)
			}
		})
	}
}

func TestProgressTrackerTerminal(t *testing.T) {
	var buf bytes.Buffer
	p := &ProgressTracker{w: &buf, message: "Waiting", tty: true}
	p.Start()
	p.Tick()
	p.Update("op-1")
	p.Done(nil)
	want := "Waiting..." + "\rWaiting.../" + "\rWaiting.../ op-1" + "\rWaiting...done. " + "\n"
	if got := buf.String(); got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
}
