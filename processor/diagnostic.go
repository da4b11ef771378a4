package processor

import (
	"fmt"
	"go/token"
	"sort"
	"sync"
)

// Severity indicates the importance of a diagnostic.
type Severity int

const (
	// SeverityInfo is for messages that need no action.
	SeverityInfo Severity = iota
	// SeverityWarning is for suspicious source that is otherwise ignored,
	// such as malformed annotation text.
	SeverityWarning
	// SeverityError marks a declaration that could not be processed. A host
	// should fail when any error was reported.
	SeverityError
)

func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	}
	return "unknown"
}

// Diagnostic is a message about source code, reported by a pass or a host.
type Diagnostic struct {
	Severity Severity
	Message  string
	// Pos is the location the diagnostic is attached to. It is the position
	// of Decl when Decl is set.
	Pos token.Position
	// Decl is the declaration that triggered the diagnostic, if any.
	Decl *Declaration
}

func (d Diagnostic) String() string {
	if d.Pos.IsValid() {
		return fmt.Sprintf("%s: %s: %s", d.Pos, d.Severity, d.Message)
	}
	return fmt.Sprintf("%s: %s", d.Severity, d.Message)
}

// Reporter is the append-only diagnostics channel. Reporting never fails
// and never stops a pass.
type Reporter interface {
	Report(Diagnostic)
}

// ReporterFunc adapts a function to the Reporter interface.
type ReporterFunc func(Diagnostic)

func (f ReporterFunc) Report(d Diagnostic) {
	f(d)
}

type nopReporter struct{}

func (nopReporter) Report(Diagnostic) {}

func reportError(r Reporter, d *Declaration, format string, args ...interface{}) Diagnostic {
	diag := Diagnostic{
		Severity: SeverityError,
		Message:  fmt.Sprintf(format, args...),
		Pos:      d.Pos,
		Decl:     d,
	}
	r.Report(diag)
	return diag
}

// Bag is a Reporter that collects diagnostics. It is safe for concurrent use.
type Bag struct {
	mu    sync.Mutex
	items []Diagnostic
}

// Report implements Reporter.
func (b *Bag) Report(d Diagnostic) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.items = append(b.items, d)
}

// Items returns a copy of the collected diagnostics.
func (b *Bag) Items() []Diagnostic {
	b.mu.Lock()
	defer b.mu.Unlock()
	items := make([]Diagnostic, len(b.items))
	copy(items, b.items)
	return items
}

// Len returns the number of collected diagnostics.
func (b *Bag) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.items)
}

// HasErrors returns true if at least one diagnostic has error severity.
func (b *Bag) HasErrors() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := range b.items {
		if b.items[i].Severity >= SeverityError {
			return true
		}
	}
	return false
}

// Sort orders diagnostics by file, line, column and then severity (errors
// first), for stable output.
func (b *Bag) Sort() {
	b.mu.Lock()
	defer b.mu.Unlock()
	sort.SliceStable(b.items, func(i, j int) bool {
		pi, pj := b.items[i].Pos, b.items[j].Pos
		if pi.Filename != pj.Filename {
			return pi.Filename < pj.Filename
		}
		if pi.Line != pj.Line {
			return pi.Line < pj.Line
		}
		if pi.Column != pj.Column {
			return pi.Column < pj.Column
		}
		return b.items[i].Severity > b.items[j].Severity
	})
}
