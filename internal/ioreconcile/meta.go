package ioreconcile

import (
	"context"
	"log/slog"
	"slices"
	"sort"
	"strconv"
	"strings"

	"github.com/bmatcuk/doublestar"
	"github.com/gnames/gnbundle/pkg/bundle"
	"github.com/gnames/gnbundle/pkg/content"
	"github.com/gnames/gnbundle/pkg/textnorm"
)

// ReservedPrefix marks metadata keys that are accepted only when
// allow-listed.
const ReservedPrefix = "_"

// InternalMetaKeys are store bookkeeping keys that are never imported.
var InternalMetaKeys = []string{
	"_edit_lock",
	"_edit_last",
	"_wp_*",
	"_attachment*",
	"_thumbnail_id",
	"_cache*",
	"_transient*",
}

// MetaPolicy decides which metadata keys an import may write.
type MetaPolicy struct {
	allowed  []string
	rejected map[string]bool
}

// NewMetaPolicy creates a policy that accepts reserved keys matching
// one of the allowed glob patterns.
func NewMetaPolicy(allowed []string) *MetaPolicy {
	return &MetaPolicy{allowed: allowed, rejected: make(map[string]bool)}
}

// Accept tells if a key can be written.
func (p *MetaPolicy) Accept(key string) bool {
	if key == "" {
		return false
	}
	if matchAny(InternalMetaKeys, key) {
		return false
	}
	if !strings.HasPrefix(key, ReservedPrefix) {
		return true
	}
	return matchAny(p.allowed, key)
}

// firstRejection is true only the first time a key is rejected.
func (p *MetaPolicy) firstRejection(key string) bool {
	if p.rejected[key] {
		return false
	}
	p.rejected[key] = true
	return true
}

func matchAny(patterns []string, key string) bool {
	for _, pat := range patterns {
		ok, err := doublestar.Match(pat, key)
		if err != nil {
			slog.Warn("Bad metadata key pattern", "pattern", pat, "error", err)
			continue
		}
		if ok {
			return true
		}
	}
	return false
}

type metaSetter func(ctx context.Context, id int64, key string, vals []string) error

// applyMeta replaces accepted keys. Keys are written in sorted order so
// that results do not depend on map iteration.
func (r *reconciler) applyMeta(
	ctx context.Context,
	id int64,
	meta content.Meta,
	set metaSetter,
) error {
	keys := make([]string, 0, len(meta))
	for k := range meta {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		// written on create only
		if k == bundle.MetaSourceKey {
			continue
		}
		if !r.policy.Accept(k) {
			if r.policy.firstRejection(k) {
				r.warn("metadata key %q is not allowed and was skipped", k)
			}
			continue
		}
		if err := set(ctx, id, k, meta[k]); err != nil {
			return err
		}
	}
	return nil
}

type remap struct {
	itemID int64
	key    string
	vals   []string
}

// queueRemaps remembers id references to translate after all items
// are known.
func (r *reconciler) queueRemaps(itemID int64, meta content.Meta) {
	for _, k := range bundle.RemappedMetaKeys {
		if vals, ok := meta[k]; ok && r.policy.Accept(k) {
			r.remaps = append(r.remaps, remap{itemID: itemID, key: k, vals: vals})
		}
	}
}

// remapIDs translates source ids to store ids. Unknown ids are dropped.
func (r *reconciler) remapIDs(ctx context.Context) {
	for _, rm := range r.remaps {
		var res []string
		for _, v := range rm.vals {
			src, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
			if err != nil {
				continue
			}
			id, ok := r.srcIDs[src]
			if !ok {
				continue
			}
			s := strconv.FormatInt(id, 10)
			if !slices.Contains(res, s) {
				res = append(res, s)
			}
		}
		err := r.store.SetItemMeta(ctx, rm.itemID, rm.key, res)
		if err != nil {
			r.fail("item", strconv.FormatInt(rm.itemID, 10), err)
		}
	}
}

// wrongAnswers resolves wrong answer texts to word ids. Candidates
// that share a category with the owner win, a global match is used
// only when there are none.
func (r *reconciler) wrongAnswers(ctx context.Context) {
	if len(r.wrongTexts) == 0 {
		return
	}
	owners := make([]int64, 0, len(r.wrongTexts))
	for id := range r.wrongTexts {
		owners = append(owners, id)
	}
	slices.Sort(owners)

	byCat := make(map[int64]map[string][]int64)
	var global map[string][]int64
	index := func(q content.ItemQuery) map[string][]int64 {
		items, err := r.store.ListItems(ctx, q)
		if err != nil {
			slog.Error("Cannot list words", "error", err)
			return nil
		}
		res := make(map[string][]int64)
		for _, it := range items {
			k := textnorm.Fold(it.Title)
			res[k] = append(res[k], it.ID)
		}
		return res
	}

	for _, owner := range owners {
		var ids []string
		for _, text := range r.wrongTexts[owner] {
			key := textnorm.Fold(text)
			if key == "" {
				continue
			}
			var found []int64
			for _, cat := range r.wordCats[owner] {
				idx, ok := byCat[cat]
				if !ok {
					idx = index(content.ItemQuery{
						Type:    content.Word,
						TermIDs: []int64{cat},
					})
					byCat[cat] = idx
				}
				found = appendOther(found, idx[key], owner)
			}
			if len(found) == 0 {
				if global == nil {
					global = index(content.ItemQuery{Type: content.Word})
				}
				found = appendOther(found, global[key], owner)
			}
			if len(found) == 0 {
				r.warn("word %q: wrong answer %q matches no word", r.wordSlugs[owner], text)
				continue
			}
			for _, id := range found {
				s := strconv.FormatInt(id, 10)
				if !slices.Contains(ids, s) {
					ids = append(ids, s)
				}
			}
		}
		err := r.store.SetItemMeta(ctx, owner, bundle.MetaWrongAnswerIDs, ids)
		if err != nil {
			r.fail("word", r.wordSlugs[owner], err)
		}
	}
}

func appendOther(res []int64, ids []int64, owner int64) []int64 {
	for _, id := range ids {
		if id != owner && !slices.Contains(res, id) {
			res = append(res, id)
		}
	}
	return res
}
