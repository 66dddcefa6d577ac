package iooptimize

import (
	"context"
	"log/slog"
	"time"
)

// vacuumAnalyze reclaims space and updates query planner statistics.
// Both statements must run outside of a transaction.
func (o *optimizer) vacuumAnalyze(ctx context.Context) error {
	gormDB := o.operator.DB().WithContext(ctx)
	start := time.Now()

	stmts := []string{"VACUUM", "ANALYZE"}
	if o.operator.Driver() == "postgres" {
		stmts = []string{"VACUUM ANALYZE"}
	}
	for _, s := range stmts {
		if err := gormDB.Exec(s).Error; err != nil {
			return VacuumError(err)
		}
	}

	slog.Info("VACUUM ANALYZE completed",
		"driver", o.operator.Driver(),
		"duration", time.Since(start).String())
	return nil
}
