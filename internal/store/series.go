package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/franz/showcat/internal/catalog"
	"github.com/google/uuid"
)

// UpsertSeries finds the series by its natural key, creating it if absent,
// then sets quote, images and description and replaces its season list with
// seasons freshly created from fields.Seasons. Seasons are written before the
// series row that references them; both happen in one transaction.
//
// Seasons previously referenced by the series are left in place unreferenced.
func (s *Store) UpsertSeries(ctx context.Context, key catalog.SeriesKey, fields catalog.SeriesFields) (*catalog.Series, error) {
	err := s.Transaction(ctx, func(tx *sql.Tx) error {
		ids := make([]string, 0, len(fields.Seasons))
		for _, in := range fields.Seasons {
			id, err := insertSeason(ctx, tx, in)
			if err != nil {
				return err
			}
			ids = append(ids, id)
		}
		return upsertSeriesRow(ctx, tx, key, fields, ids)
	})
	if err != nil {
		return nil, err
	}

	return s.GetSeriesByKey(ctx, key)
}

// AttachSeasons upserts the series by natural key and sets its season list to
// already created season IDs. fields.Seasons is ignored. If the seasons were
// created in an earlier step and this call fails, they remain as orphans.
func (s *Store) AttachSeasons(ctx context.Context, key catalog.SeriesKey, fields catalog.SeriesFields, seasonIDs []string) (*catalog.Series, error) {
	if err := upsertSeriesRow(ctx, s.db, key, fields, seasonIDs); err != nil {
		return nil, err
	}
	return s.GetSeriesByKey(ctx, key)
}

func upsertSeriesRow(ctx context.Context, q queryer, key catalog.SeriesKey, fields catalog.SeriesFields, seasonIDs []string) error {
	if seasonIDs == nil {
		seasonIDs = []string{}
	}
	items, err := json.Marshal(seasonIDs)
	if err != nil {
		return fmt.Errorf("failed to encode season references: %w", err)
	}

	images := fields.Images
	if images == nil {
		images = map[string]string{}
	}
	imagesJSON, err := json.Marshal(images)
	if err != nil {
		return fmt.Errorf("failed to encode images: %w", err)
	}

	var quoteJSON sql.NullString
	if fields.Quote != nil {
		b, err := json.Marshal(fields.Quote)
		if err != nil {
			return fmt.Errorf("failed to encode quote: %w", err)
		}
		quoteJSON = sql.NullString{String: string(b), Valid: true}
	}

	_, err = q.ExecContext(ctx, `
		INSERT INTO products (id, cls, title, alias, description, quote_json, images_json, items_json)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(title, alias) WHERE cls = 'Series' DO UPDATE SET
			description = excluded.description,
			quote_json = excluded.quote_json,
			images_json = excluded.images_json,
			items_json = excluded.items_json,
			updated_at = CURRENT_TIMESTAMP
	`, uuid.NewString(), catalog.KindSeries, key.Title, key.Alias,
		fields.Description, quoteJSON, string(imagesJSON), string(items))
	if err != nil {
		return fmt.Errorf("failed to upsert series %q: %w", key.Alias, err)
	}

	return nil
}

const seriesColumns = `
	id, COALESCE(title, ''), alias, COALESCE(description, ''),
	quote_json, images_json, items_json, created_at, updated_at
`

// GetSeriesByKey retrieves a series by its natural key
func (s *Store) GetSeriesByKey(ctx context.Context, key catalog.SeriesKey) (*catalog.Series, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+seriesColumns+`
		FROM products WHERE cls = ? AND title = ? AND alias = ?
	`, catalog.KindSeries, key.Title, key.Alias)
	return scanSeriesRow(row)
}

// GetSeries retrieves a series by ID
func (s *Store) GetSeries(ctx context.Context, id string) (*catalog.Series, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+seriesColumns+`
		FROM products WHERE cls = ? AND id = ?
	`, catalog.KindSeries, id)
	return scanSeriesRow(row)
}

// GetSeriesByAlias retrieves the first stored series with the alias
func (s *Store) GetSeriesByAlias(ctx context.Context, alias string) (*catalog.Series, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+seriesColumns+`
		FROM products WHERE cls = ? AND alias = ?
		ORDER BY rowid LIMIT 1
	`, catalog.KindSeries, alias)
	return scanSeriesRow(row)
}

// GetAllSeries retrieves every series in insertion order
func (s *Store) GetAllSeries(ctx context.Context) ([]*catalog.Series, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+seriesColumns+`
		FROM products WHERE cls = ?
		ORDER BY rowid
	`, catalog.KindSeries)
	if err != nil {
		return nil, fmt.Errorf("failed to query series: %w", err)
	}
	defer rows.Close()

	var all []*catalog.Series
	for rows.Next() {
		series, err := scanSeries(rows)
		if err != nil {
			return nil, err
		}
		all = append(all, series)
	}

	return all, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSeriesRow(row *sql.Row) (*catalog.Series, error) {
	series, err := scanSeries(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return series, err
}

func scanSeries(row rowScanner) (*catalog.Series, error) {
	series := &catalog.Series{}
	var quote sql.NullString
	var images, items string

	err := row.Scan(
		&series.ID, &series.Title, &series.Alias, &series.Description,
		&quote, &images, &items, &series.CreatedAt, &series.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan series: %w", err)
	}

	if err := decodeSeriesDocument(series, quote, images, items); err != nil {
		return nil, fmt.Errorf("series %s: %w", series.ID, err)
	}

	return series, nil
}

func decodeSeriesDocument(series *catalog.Series, quote sql.NullString, images, items string) error {
	if quote.Valid {
		series.Quote = &catalog.Quote{}
		if err := json.Unmarshal([]byte(quote.String), series.Quote); err != nil {
			return fmt.Errorf("failed to decode quote: %w", err)
		}
	}
	if err := json.Unmarshal([]byte(images), &series.Images); err != nil {
		return fmt.Errorf("failed to decode images: %w", err)
	}
	if err := json.Unmarshal([]byte(items), &series.Seasons); err != nil {
		return fmt.Errorf("failed to decode season references: %w", err)
	}
	return nil
}
