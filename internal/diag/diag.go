// Package diag is the shared diagnostics channel of the aggregation core.
// The aggregator and every sanity check append to it; consumers read it
// back as an ordered sequence and never mutate past entries.
package diag

import (
	"fmt"
	"sync"
	"time"
)

// Severity of a diagnostics entry. Warnings never abort an evaluation;
// what to do with an Error is the caller's policy.
type Severity string

const (
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Entry is one appended diagnostic.
type Entry struct {
	Severity Severity
	// Source attributes the entry, e.g. a sanity check name or "aggregator".
	Source  string
	Message string
	At      time.Time
}

// Channel is an append-only, multi-writer diagnostics sink.
// The zero value is not usable; call New.
type Channel struct {
	mu      sync.Mutex
	entries []Entry
}

func New() *Channel {
	return &Channel{}
}

// Warnf appends a warning attributed to source.
func (c *Channel) Warnf(source, format string, args ...any) {
	c.append(SeverityWarning, source, fmt.Sprintf(format, args...))
}

// Errorf appends an error attributed to source.
func (c *Channel) Errorf(source, format string, args ...any) {
	c.append(SeverityError, source, fmt.Sprintf(format, args...))
}

func (c *Channel) append(sev Severity, source, msg string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = append(c.entries, Entry{
		Severity: sev,
		Source:   source,
		Message:  msg,
		At:       time.Now(),
	})
}

// Entries returns a snapshot of all entries in arrival order.
func (c *Channel) Entries() []Entry {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Entry, len(c.entries))
	copy(out, c.entries)
	return out
}

// HasErrors reports whether at least one Error entry was appended.
func (c *Channel) HasErrors() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, e := range c.entries {
		if e.Severity == SeverityError {
			return true
		}
	}
	return false
}
