// Copyright piiscan contributors. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package observability

import (
	"encoding/json"
	"io"
	"sync"
	"time"
)

// Level controls how much the observer emits.
type Level int

const (
	LevelOff     Level = 0
	LevelMetrics Level = 1
	LevelDebug   Level = 2
)

// Observer emits JSON-line operation records for pipeline components.
// Debug level adds verbose per-step records; it never changes detection
// results.
type Observer struct {
	level  Level
	writer io.Writer
	mu     sync.Mutex
}

// Record is one logged operation.
type Record struct {
	Component  string         `json:"component"`
	Operation  string         `json:"operation"`
	DocumentID string         `json:"document_id,omitempty"`
	DurationMs int64          `json:"duration_ms,omitempty"`
	Success    bool           `json:"success"`
	Error      string         `json:"error,omitempty"`
	MatchCount int            `json:"match_count,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"`
}

// New creates an observer writing to w.
func New(level Level, w io.Writer) *Observer {
	return &Observer{level: level, writer: w}
}

// Debug reports whether verbose output is enabled.
func (o *Observer) Debug() bool {
	return o != nil && o.level >= LevelDebug
}

// StartTiming returns a completion function that logs the elapsed time.
func (o *Observer) StartTiming(component, operation, documentID string) func(success bool, metadata map[string]any) {
	start := time.Now()
	return func(success bool, metadata map[string]any) {
		o.Log(Record{
			Component:  component,
			Operation:  operation,
			DocumentID: documentID,
			DurationMs: time.Since(start).Milliseconds(),
			Success:    success,
			Metadata:   metadata,
		})
	}
}

// Log writes one record if the observer level allows it.
func (o *Observer) Log(rec Record) {
	if o == nil || o.level == LevelOff || o.writer == nil {
		return
	}
	if o.level < LevelDebug {
		// Metrics level keeps timing data but drops verbose metadata.
		rec.Metadata = nil
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	json.NewEncoder(o.writer).Encode(rec)
}
