package store

import (
	"context"
	"fmt"
)

// CatalogCounts summarizes what is stored, regardless of references
type CatalogCounts struct {
	Series   int
	Seasons  int
	Episodes int
	Files    int
}

// GetCatalogCounts counts products by kind and the embedded episodes and files
// of every stored season
func (s *Store) GetCatalogCounts(ctx context.Context) (*CatalogCounts, error) {
	c := &CatalogCounts{}

	err := s.db.QueryRowContext(ctx, `
		SELECT
			COALESCE(SUM(cls = 'Series'), 0),
			COALESCE(SUM(cls = 'Season'), 0)
		FROM products
	`).Scan(&c.Series, &c.Seasons)
	if err != nil {
		return nil, fmt.Errorf("failed to count products: %w", err)
	}

	err = s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM products s, json_each(s.items_json) e
		WHERE s.cls = 'Season'
	`).Scan(&c.Episodes)
	if err != nil {
		return nil, fmt.Errorf("failed to count episodes: %w", err)
	}

	err = s.db.QueryRowContext(ctx, `
		SELECT COUNT(*)
		FROM products s, json_each(s.items_json) e, json_each(e.value, '$.files') f
		WHERE s.cls = 'Season'
	`).Scan(&c.Files)
	if err != nil {
		return nil, fmt.Errorf("failed to count files: %w", err)
	}

	return c, nil
}

// GetQualityHistogram returns the number of stored files per raw quality
// code. Codes outside the defined tiers are reported as-is.
func (s *Store) GetQualityHistogram(ctx context.Context) (map[int]int, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT CAST(json_extract(f.value, '$.quality') AS INTEGER) AS quality, COUNT(*)
		FROM products s, json_each(s.items_json) e, json_each(e.value, '$.files') f
		WHERE s.cls = 'Season'
		GROUP BY quality
		ORDER BY quality
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query quality histogram: %w", err)
	}
	defer rows.Close()

	histogram := make(map[int]int)
	for rows.Next() {
		var quality, count int
		if err := rows.Scan(&quality, &count); err != nil {
			return nil, fmt.Errorf("failed to scan quality histogram: %w", err)
		}
		histogram[quality] = count
	}

	return histogram, rows.Err()
}
