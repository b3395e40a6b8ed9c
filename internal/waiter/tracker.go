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
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/mattn/go-isatty"
)

// Tracker reports the progress of a wait to the user.
type Tracker interface {
	// Start is called once before the first poll.
	Start()
	// Tick is called before every wait between polls.
	Tick()
	// Update sets a detail line, such as a log URL.
	Update(detail string)
	// Done is called once with the outcome of the wait.
	Done(err error)
}

// NoOpTracker reports nothing.
type NoOpTracker struct{}

func (NoOpTracker) Start()        {}
func (NoOpTracker) Tick()         {}
func (NoOpTracker) Update(string) {}
func (NoOpTracker) Done(error)    {}

var spinner = []string{"|", "/", "-", `\`}

// ProgressTracker prints "message..." and finishes the line with "done." or
// "failed.". On a terminal it animates a spinner while waiting.
type ProgressTracker struct {
	mu      sync.Mutex
	w       io.Writer
	message string
	tty     bool
	frame   int
	detail  string
	width   int
	// open is set while the message line is waiting for its ending.
	open bool
}

// NewProgressTracker returns a tracker that writes to w.
func NewProgressTracker(w io.Writer, message string) *ProgressTracker {
	tty := false
	if f, ok := w.(*os.File); ok {
		tty = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
	return &ProgressTracker{w: w, message: message, tty: tty}
}

func (p *ProgressTracker) Start() {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintf(p.w, "%s...", p.message)
	p.open = true
}

func (p *ProgressTracker) Tick() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.tty {
		return
	}
	p.frame++
	p.redraw(spinner[p.frame%len(spinner)])
}

func (p *ProgressTracker) Update(detail string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if detail == p.detail {
		return
	}
	p.detail = detail
	if p.tty {
		p.redraw(spinner[p.frame%len(spinner)])
		return
	}
	if p.open {
		fmt.Fprintln(p.w)
		p.open = false
	}
	fmt.Fprintln(p.w, detail)
}

func (p *ProgressTracker) Done(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	result := "done."
	if err != nil {
		result = "failed."
	}
	if p.tty {
		p.redraw(result)
		fmt.Fprintln(p.w)
		return
	}
	if !p.open {
		fmt.Fprintf(p.w, "%s...", p.message)
	}
	fmt.Fprintln(p.w, result)
	p.open = false
}

// redraw rewrites the current terminal line, padding over any longer
// previous content.
func (p *ProgressTracker) redraw(suffix string) {
	line := p.message + "..." + suffix
	if p.detail != "" && suffix != "done." && suffix != "failed." {
		line += " " + p.detail
	}
	pad := ""
	if n := p.width - len(line); n > 0 {
		pad = strings.Repeat(" ", n)
	}
	fmt.Fprintf(p.w, "\r%s%s", line, pad)
	p.width = len(line)
}
