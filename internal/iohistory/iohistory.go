// Package iohistory keeps the capped import history and reverses
// imports. Entries and per-actor previews are persisted as JSON through
// a bundle.KV.
package iohistory

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/gnames/gnbundle/pkg/bundle"
	"github.com/gnames/gnbundle/pkg/config"
	"github.com/gnames/gnbundle/pkg/content"
	"github.com/gnames/gnfmt"
	"github.com/google/uuid"
)

const (
	historyKey    = "history"
	previewPrefix = "preview:"
)

type history struct {
	kv    bundle.KV
	store content.Store
	cfg   config.HistoryConfig
	enc   gnfmt.GNjson
	now   func() time.Time
}

// New creates a History that keeps its entries in kv and applies undo
// to store.
func New(kv bundle.KV, store content.Store, cfg *config.Config) bundle.History {
	return &history{
		kv:    kv,
		store: store,
		cfg:   cfg.History,
		now:   time.Now,
	}
}

// Add puts an entry on top of the list and prunes old entries.
func (h *history) Add(ctx context.Context, e bundle.HistoryEntry) (string, error) {
	list, err := h.List(ctx)
	if err != nil {
		return "", err
	}
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.Time.IsZero() {
		e.Time = h.now()
	}
	list = append([]bundle.HistoryEntry{e}, list...)
	if err = h.save(ctx, list); err != nil {
		return "", err
	}
	slog.Info("History entry added", "id", e.ID, "action", e.Action, "actor", e.Actor)
	return e.ID, nil
}

// List returns entries, most recent first.
func (h *history) List(ctx context.Context) ([]bundle.HistoryEntry, error) {
	data, err := h.kv.Get(ctx, historyKey)
	if errors.Is(err, bundle.ErrKeyNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, ReadError(err)
	}
	var res []bundle.HistoryEntry
	if err = h.enc.Decode(data, &res); err != nil {
		return nil, ReadError(err)
	}
	return res, nil
}

func (h *history) save(ctx context.Context, list []bundle.HistoryEntry) error {
	list = h.prune(list)
	data, err := h.enc.Encode(list)
	if err != nil {
		return WriteError(err)
	}
	if err = h.kv.Set(ctx, historyKey, data); err != nil {
		return WriteError(err)
	}
	return nil
}

// prune drops entries beyond the age limit and the length cap.
func (h *history) prune(list []bundle.HistoryEntry) []bundle.HistoryEntry {
	if h.cfg.MaxAgeDays > 0 {
		cutoff := h.now().AddDate(0, 0, -h.cfg.MaxAgeDays)
		list = slices.DeleteFunc(list, func(e bundle.HistoryEntry) bool {
			return e.Time.Before(cutoff)
		})
	}
	if h.cfg.MaxEntries > 0 && len(list) > h.cfg.MaxEntries {
		list = list[:h.cfg.MaxEntries]
	}
	return list
}

// SavePreview keeps a parse-only summary for the actor.
func (h *history) SavePreview(ctx context.Context, actor string, p *bundle.Preview) error {
	data, err := h.enc.Encode(p)
	if err != nil {
		return WriteError(err)
	}
	if err = h.kv.Set(ctx, previewPrefix+actor, data); err != nil {
		return WriteError(err)
	}
	return nil
}

// TakePreview returns the saved preview of the actor and removes it.
// It returns nil when there is none.
func (h *history) TakePreview(ctx context.Context, actor string) (*bundle.Preview, error) {
	key := previewPrefix + actor
	data, err := h.kv.Get(ctx, key)
	if errors.Is(err, bundle.ErrKeyNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, ReadError(err)
	}
	var res bundle.Preview
	if err = h.enc.Decode(data, &res); err != nil {
		return nil, ReadError(fmt.Errorf("preview of %s: %w", actor, err))
	}
	if err = h.kv.Delete(ctx, key); err != nil {
		return nil, WriteError(err)
	}
	return &res, nil
}
