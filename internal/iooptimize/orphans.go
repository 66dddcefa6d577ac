package iooptimize

import (
	"context"
	"log/slog"
)

// orphanQueries are executed in order, each one may create orphans
// for the following ones.
var orphanQueries = []struct {
	name  string
	query string
}{
	{
		"child items",
		`DELETE FROM items
WHERE parent_id > 0
	AND parent_id NOT IN (SELECT id FROM items)`,
	},
	{
		"item meta",
		`DELETE FROM item_meta
WHERE item_id NOT IN (SELECT id FROM items)`,
	},
	{
		"item memberships",
		`DELETE FROM item_terms
WHERE item_id NOT IN (SELECT id FROM items)
	OR term_id NOT IN (SELECT id FROM terms)`,
	},
	{
		"term meta",
		`DELETE FROM term_meta
WHERE term_id NOT IN (SELECT id FROM terms)`,
	},
	{
		"media records",
		`DELETE FROM media
WHERE item_id > 0
	AND item_id NOT IN (SELECT id FROM items)`,
	},
	{
		"featured media links",
		`UPDATE items SET featured_media_id = 0
WHERE featured_media_id > 0
	AND featured_media_id NOT IN (SELECT id FROM media)`,
	},
}

// removeOrphans deletes rows that point to removed items or terms.
func (o *optimizer) removeOrphans(ctx context.Context) (int64, error) {
	gormDB := o.operator.DB().WithContext(ctx)
	var total int64
	for _, q := range orphanQueries {
		res := gormDB.Exec(q.query)
		if res.Error != nil {
			return 0, OrphanRemovalError(q.name, res.Error)
		}
		if res.RowsAffected > 0 {
			slog.Info("Removed orphans", "kind", q.name, "count", res.RowsAffected)
		}
		total += res.RowsAffected
	}
	return total, nil
}
