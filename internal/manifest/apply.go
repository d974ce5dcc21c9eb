package manifest

import (
	"context"
	"fmt"

	"github.com/franz/showcat/internal/catalog"
	"github.com/franz/showcat/internal/report"
	"github.com/franz/showcat/internal/util"
)

// Upserter persists one series with its freshly created seasons
type Upserter interface {
	UpsertSeries(ctx context.Context, key catalog.SeriesKey, fields catalog.SeriesFields) (*catalog.Series, error)
}

// ApplyOptions controls how a manifest is written
type ApplyOptions struct {
	Retry    *util.RetryConfig
	Events   *report.EventLogger
	Progress func(*catalog.Series)
}

// Apply upserts every entry in document order. Each series is written in
// its own transaction, retried while the database is busy. The first
// failing entry stops the import; earlier entries stay committed.
func Apply(ctx context.Context, db Upserter, m *Manifest, opts *ApplyOptions) (int, error) {
	if opts == nil {
		opts = &ApplyOptions{}
	}
	retryCfg := opts.Retry
	if retryCfg == nil {
		retryCfg = util.WriteRetryConfig()
	}

	applied := 0
	for _, entry := range m.Entries() {
		if err := ctx.Err(); err != nil {
			return applied, err
		}

		series, err := util.RetryWithBackoff(ctx, retryCfg, func() (*catalog.Series, error) {
			return db.UpsertSeries(ctx, entry.Key, entry.Fields)
		}, "upsert "+entry.Key.Alias)
		if err != nil {
			opts.Events.LogError(report.EventImport, entry.Key.Alias, err)
			return applied, fmt.Errorf("failed to upsert series %s: %w", catalog.SeriesPath(entry.Key.Alias), err)
		}

		for i, id := range series.Seasons {
			if i < len(entry.Fields.Seasons) {
				in := entry.Fields.Seasons[i]
				opts.Events.LogSeasonCreate(id, in.Alias, len(in.Episodes))
			}
		}
		opts.Events.LogSeriesUpsert(series.ID, series.Alias, catalog.SeriesPath(series.Alias), len(series.Seasons))
		util.DebugLog("Upserted %s with %d seasons", catalog.SeriesPath(series.Alias), len(series.Seasons))
		if opts.Progress != nil {
			opts.Progress(series)
		}
		applied++
	}

	return applied, nil
}
