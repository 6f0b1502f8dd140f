// Package feedback signals the outcome of a scan to the person holding the
// scanner.
package feedback

import (
	"io"
	"strings"
	"sync"
)

// Cue is played once per scanned identifier.
type Cue interface {
	Success()
	Failure()
}

// Nop plays nothing.
type Nop struct{}

func (Nop) Success() {}
func (Nop) Failure() {}

// Bell rings the terminal bell: once on success, twice on failure.
type Bell struct {
	mu sync.Mutex
	w  io.Writer
}

// NewBell returns a Bell writing to w, normally the terminal.
func NewBell(w io.Writer) *Bell { return &Bell{w: w} }

func (b *Bell) Success() { b.ring(1) }
func (b *Bell) Failure() { b.ring(2) }

func (b *Bell) ring(n int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, _ = io.WriteString(b.w, strings.Repeat("\a", n))
}

// For returns a Bell on w when sound is enabled and Nop otherwise.
func For(sound bool, w io.Writer) Cue {
	if sound && w != nil {
		return NewBell(w)
	}
	return Nop{}
}
