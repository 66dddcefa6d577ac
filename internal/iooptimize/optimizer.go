// Package iooptimize implements db.Optimizer. It cleans up what item
// and term deletions leave behind and refreshes store statistics.
package iooptimize

import (
	"context"
	"log/slog"
	"time"

	"github.com/gnames/gn"
	"github.com/gnames/gnbundle/pkg/db"
	"github.com/gnames/gnfmt"
)

type optimizer struct {
	operator  db.Operator
	mediaRoot string
	quiet     bool
}

// NewOptimizer creates a new Optimizer. When quiet is true no progress
// bar is shown.
func NewOptimizer(op db.Operator, mediaRoot string, quiet bool) db.Optimizer {
	return &optimizer{operator: op, mediaRoot: mediaRoot, quiet: quiet}
}

// Optimize runs 3 sequential steps:
//  1. Remove orphan rows (metadata, memberships, media records)
//  2. Remove media files that no media record points to
//  3. Run VACUUM and ANALYZE
func (o *optimizer) Optimize(ctx context.Context) (*db.OptimizeReport, error) {
	if o.operator.DB() == nil {
		return nil, NotConnectedError()
	}
	start := time.Now()
	res := &db.OptimizeReport{}
	var err error

	slog.Info("Step 1/3: Removing orphan rows")
	if res.OrphanRows, err = o.removeOrphans(ctx); err != nil {
		return nil, err
	}

	slog.Info("Step 2/3: Sweeping media files")
	if res.OrphanFiles, res.FreedBytes, err = o.sweepMedia(ctx); err != nil {
		return nil, err
	}

	slog.Info("Step 3/3: Updating statistics")
	if err = o.vacuumAnalyze(ctx); err != nil {
		return nil, err
	}

	slog.Info("Store optimization completed",
		"duration", gnfmt.TimeString(time.Since(start).Seconds()))
	if !o.quiet {
		gn.Info("Optimization took <em>%s</em>",
			gnfmt.TimeString(time.Since(start).Seconds()))
	}
	return res, nil
}
