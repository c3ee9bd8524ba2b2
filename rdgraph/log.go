// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package rdgraph

// File defines the Log struct and associated methods. A reaching
// analysis may optionally carry a Log, which records informational
// notes about where the analysis fell back to the UNKNOWN_MEMORY
// sentinel. Only opaque calls are recorded, one entry each time the
// driver runs an opaque CALL's transfer; precision-cap collapses and
// fork/join merges are not logged. Recording these is not error reporting — sentinel
// propagation is the designed overapproximation response, per spec
// §7 — it is a debugging trail for callers who want to know where
// precision was lost.

import (
	"bytes"
	"fmt"
)

// Severity classifies a LogEntry. Reaching-definitions diagnostics are
// all informational in nature (never WARNING/ERROR/FATAL_ERROR,
// reserved here for symmetry with the shape this type is adapted
// from), but the full scale is kept so embedding code can log its own
// higher-severity notes through the same type.
type Severity int

const (
	INFO Severity = iota
	WARNING
	ERROR
	FATAL_ERROR
)

// LogEntry is a single entry in a Log: a severity, a message, and the
// node the entry concerns (nil if not node-specific).
type LogEntry struct {
	Severity Severity
	Message  string
	Node     *Node
}

func (entry LogEntry) String() string {
	var buf bytes.Buffer
	switch entry.Severity {
	case INFO:
		// no prefix
	case WARNING:
		buf.WriteString("Warning: ")
	case ERROR:
		buf.WriteString("Error: ")
	case FATAL_ERROR:
		buf.WriteString("ERROR: ")
	}
	if entry.Node != nil {
		buf.WriteString(entry.Node.Name())
		buf.WriteString(": ")
	}
	buf.WriteString(entry.Message)
	return buf.String()
}

// Log accumulates LogEntry values produced during a reaching-definitions run.
type Log struct {
	Entries []LogEntry
}

// NewLog returns a new, empty Log.
func NewLog() *Log {
	return &Log{Entries: []LogEntry{}}
}

// Logf appends a formatted entry at the given severity.
func (l *Log) Logf(sev Severity, n *Node, format string, args ...interface{}) {
	if l == nil {
		return
	}
	l.Entries = append(l.Entries, LogEntry{Severity: sev, Message: fmt.Sprintf(format, args...), Node: n})
}

func (l *Log) String() string {
	var buf bytes.Buffer
	for _, e := range l.Entries {
		buf.WriteString(e.String())
		buf.WriteByte('\n')
	}
	return buf.String()
}
