// Package synclog accumulates field-level errors and warnings during one
// synchronization round and decides what the round finally writes.
package synclog

import (
	"fmt"
	"strings"

	"leansync-jira/internal/transform"
)

// Entry is one logged message, optionally tied to a field
type Entry struct {
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

func (e Entry) String() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

// Log is an ordered list of messages
type Log struct {
	entries []Entry
}

// Add appends a message not tied to a field
func (l *Log) Add(message string) {
	l.entries = append(l.entries, Entry{Message: message})
}

// AddField appends a message about field
func (l *Log) AddField(field, message string) {
	l.entries = append(l.entries, Entry{Field: field, Message: message})
}

// IsEmpty reports whether nothing was logged
func (l *Log) IsEmpty() bool {
	return len(l.entries) == 0
}

// Len returns the number of messages
func (l *Log) Len() int {
	return len(l.entries)
}

// Entries returns a copy of the messages in order
func (l *Log) Entries() []Entry {
	out := make([]Entry, len(l.entries))
	copy(out, l.entries)
	return out
}

// String renders every message on its own line
func (l *Log) String() string {
	lines := make([]string, 0, len(l.entries))
	for _, e := range l.entries {
		lines = append(lines, e.String())
	}
	return strings.Join(lines, "\n")
}

// Accumulator carries the error and warning logs of one round. It is owned
// by a single round and must not be shared.
type Accumulator struct {
	Errors   Log
	Warnings Log
}

// New returns an empty accumulator
func New() *Accumulator {
	return &Accumulator{}
}

// Errorf logs an error about field
func (a *Accumulator) Errorf(field, format string, args ...interface{}) {
	a.Errors.AddField(field, fmt.Sprintf(format, args...))
}

// Warnf logs a warning about field
func (a *Accumulator) Warnf(field, format string, args ...interface{}) {
	a.Warnings.AddField(field, fmt.Sprintf(format, args...))
}

// Truncate applies the text length limit to value, logging a warning naming
// field when anything is cut.
func (a *Accumulator) Truncate(field, value string, limit int) string {
	out, cut := transform.Truncate(value, limit)
	if cut {
		a.Warnf(field, "value truncated to %d characters", limit)
	}
	return out
}

// Merge appends the messages of other
func (a *Accumulator) Merge(other *Accumulator) {
	if other == nil {
		return
	}
	a.Errors.entries = append(a.Errors.entries, other.Errors.entries...)
	a.Warnings.entries = append(a.Warnings.entries, other.Warnings.entries...)
}
