package bundle

import (
	"context"
	"time"
)

// Actions recorded in history.
const (
	ActionImport = "import"
	ActionUndo   = "undo"
)

// HistoryEntry is one record of the capped history list.
type HistoryEntry struct {
	ID       string      `json:"id" yaml:"id"`
	Time     time.Time   `json:"time" yaml:"time"`
	Actor    string      `json:"actor" yaml:"actor"`
	Action   string      `json:"action" yaml:"action"`
	OK       bool        `json:"ok" yaml:"ok"`
	Message  string      `json:"message,omitempty" yaml:"message,omitempty"`
	Source   string      `json:"source,omitempty" yaml:"source,omitempty"`
	Counts   Counts      `json:"counts" yaml:"counts"`
	Undo     UndoPayload `json:"undo" yaml:"undo"`
	UndoneAt *time.Time  `json:"undone_at,omitempty" yaml:"undone_at,omitempty"`
}

// Preview is a parse-only summary kept for one actor until it is read.
type Preview struct {
	Time     time.Time       `json:"time" yaml:"time"`
	Source   string          `json:"source" yaml:"source"`
	Origin   Origin          `json:"origin" yaml:"origin"`
	Counts   Counts          `json:"counts" yaml:"counts"`
	Warnings []string        `json:"warnings,omitempty" yaml:"warnings,omitempty"`
	Summary  *TabularSummary `json:"summary,omitempty" yaml:"summary,omitempty"`
}

// KV is a small persistent key-value store.
type KV interface {
	// Get returns the value of a key or ErrKeyNotFound.
	Get(ctx context.Context, key string) ([]byte, error)
	// Set stores a value.
	Set(ctx context.Context, key string, val []byte) error
	// Delete removes a key. Missing keys are not an error.
	Delete(ctx context.Context, key string) error
}
