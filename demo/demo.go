// Package demo contains runnable demonstrations of the primitives in this
// module: the cigarette smokers problem coordinated by events and a
// semaphore, a reusable two-phase barrier built from semaphore turnstiles, a
// producer/consumer run over the lock-free stack with conservation
// accounting, and a narrated replay of the ABA hazard the stack defeats.
//
// Demos are plain library consumers: output goes to an injected io.Writer
// and randomness comes from an injected rand source, so tests can drive
// them deterministically. The syncdemo command exposes them as subcommands.
package demo

import (
	"fmt"
	"io"

	"github.com/notorious-go/primitives/mutex"
)

// printer serializes writes from the demo goroutines onto one writer and
// remembers the first write error, so demos can report output failures once
// at the end instead of checking every line.
type printer struct {
	mu  mutex.Mutex
	w   io.Writer
	err error
}

func newPrinter(w io.Writer) *printer {
	return &printer{w: w}
}

func (p *printer) printf(format string, args ...any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintf(p.w, format, args...)
}

// flushErr returns the first error any printf hit, if any.
func (p *printer) flushErr() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.err
}
