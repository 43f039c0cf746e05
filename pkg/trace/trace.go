// Package trace implements an append-only JSONL audit trail of
// validation decisions.
package trace

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

// EventType enumerates all decision trace event types.
type EventType string

const (
	EventValidateStart    EventType = "validate_start"
	EventChainResolved    EventType = "chain_resolved"
	EventSchemaFailed     EventType = "schema_failed"
	EventRuleEvaluated    EventType = "rule_evaluated"
	EventEntryResolved    EventType = "entry_resolved"
	EventPathResolved     EventType = "path_resolved"
	EventSourceResolved   EventType = "source_resolved"
	EventValidateComplete EventType = "validate_complete"
)

// Event is a single trace event written to the JSONL stream.
type Event struct {
	Type      EventType      `json:"type"`
	Timestamp time.Time      `json:"timestamp"`
	RunID     string         `json:"run_id"`
	Data      map[string]any `json:"data,omitempty"`
}

// Writer writes trace events to an append-only JSONL stream.
type Writer struct {
	mu    sync.Mutex
	runID string
	enc   *json.Encoder
}

// NewWriter creates a trace writer that writes to the given io.Writer.
func NewWriter(w io.Writer, runID string) *Writer {
	return &Writer{
		runID: runID,
		enc:   json.NewEncoder(w),
	}
}

// NewFileWriter creates a trace writer that appends to a JSONL file.
func NewFileWriter(path, runID string) (*Writer, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open trace file: %w", err)
	}
	return NewWriter(f, runID), nil
}

// Emit writes a single trace event. A nil Writer drops the event, so
// callers never need to guard the trace path.
func (tw *Writer) Emit(eventType EventType, data map[string]any) error {
	if tw == nil {
		return nil
	}
	tw.mu.Lock()
	defer tw.mu.Unlock()

	evt := Event{
		Type:      eventType,
		Timestamp: time.Now().UTC(),
		RunID:     tw.runID,
		Data:      data,
	}
	return tw.enc.Encode(evt)
}

// EmitValidateStart emits a validate_start event.
func (tw *Writer) EmitValidateStart(key string, sources int) error {
	return tw.Emit(EventValidateStart, map[string]any{
		"key":     key,
		"sources": sources,
	})
}

// EmitChainResolved emits a chain_resolved event.
func (tw *Writer) EmitChainResolved(key string, chain []string) error {
	return tw.Emit(EventChainResolved, map[string]any{
		"key":   key,
		"chain": chain,
	})
}

// EmitSchemaFailed emits a schema_failed event.
func (tw *Writer) EmitSchemaFailed(path, schemaName, message string, source int) error {
	return tw.Emit(EventSchemaFailed, map[string]any{
		"path":    path,
		"schema":  schemaName,
		"message": message,
		"source":  source,
	})
}

// EmitRuleEvaluated emits a rule_evaluated event.
func (tw *Writer) EmitRuleEvaluated(path, ruleName, outcome string, source int) error {
	return tw.Emit(EventRuleEvaluated, map[string]any{
		"path":    path,
		"rule":    ruleName,
		"outcome": outcome,
		"source":  source,
	})
}

// EmitEntryResolved emits an entry_resolved event for one state entry.
func (tw *Writer) EmitEntryResolved(path string, entry int, outcome string, source int) error {
	return tw.Emit(EventEntryResolved, map[string]any{
		"path":    path,
		"entry":   entry,
		"outcome": outcome,
		"source":  source,
	})
}

// EmitPathResolved emits a path_resolved event for one ancestor path.
func (tw *Writer) EmitPathResolved(path, outcome string, source int, defaulted bool) error {
	return tw.Emit(EventPathResolved, map[string]any{
		"path":      path,
		"outcome":   outcome,
		"source":    source,
		"defaulted": defaulted,
	})
}

// EmitSourceResolved emits a source_resolved event for one state source.
func (tw *Writer) EmitSourceResolved(source int, outcome string) error {
	return tw.Emit(EventSourceResolved, map[string]any{
		"source":  source,
		"outcome": outcome,
	})
}

// EmitValidateComplete emits a validate_complete event.
func (tw *Writer) EmitValidateComplete(key, outcome string, valid bool, reasons int, duration time.Duration) error {
	return tw.Emit(EventValidateComplete, map[string]any{
		"key":      key,
		"outcome":  outcome,
		"valid":    valid,
		"reasons":  reasons,
		"duration": duration.String(),
	})
}
