package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/franz/showcat/internal/catalog"
)

// seriesJoinQuery expands each series' items list with json_each and joins
// every entry to the products row with that ID, restricted to the Season
// variant. Unresolved entries keep a NULL season side.
const seriesJoinQuery = `
	SELECT
		p.id, COALESCE(p.title, ''), p.alias, COALESCE(p.description, ''),
		p.quote_json, p.images_json, p.items_json, p.created_at, p.updated_at,
		r.key, r.value,
		s.id, COALESCE(s.num, 0), s.alias, s.items_json
	FROM products p
	LEFT JOIN json_each(p.items_json) AS r ON 1
	LEFT JOIN products s ON s.id = r.value AND s.cls = 'Season'
	WHERE p.cls = 'Series' AND (? = '' OR p.alias = ?)
	ORDER BY p.rowid, r.key
`

// SeriesWithSeasons returns every series (or only those with the given
// alias when alias is non-empty) joined to their referenced seasons in one
// round trip. Series come back in insertion order; refs keep list order.
func (s *Store) SeriesWithSeasons(ctx context.Context, alias string) ([]*catalog.JoinedSeries, error) {
	rows, err := s.db.QueryContext(ctx, seriesJoinQuery, alias, alias)
	if err != nil {
		return nil, fmt.Errorf("failed to query series join: %w", err)
	}
	defer rows.Close()

	var (
		result  []*catalog.JoinedSeries
		current *catalog.JoinedSeries
	)

	for rows.Next() {
		var (
			series           catalog.Series
			quote            sql.NullString
			images, items    string
			refKey           sql.NullInt64
			refValue         sql.NullString
			seasonID         sql.NullString
			seasonNum        int
			seasonAlias, eps sql.NullString
		)

		err := rows.Scan(
			&series.ID, &series.Title, &series.Alias, &series.Description,
			&quote, &images, &items, &series.CreatedAt, &series.UpdatedAt,
			&refKey, &refValue,
			&seasonID, &seasonNum, &seasonAlias, &eps,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan series join row: %w", err)
		}

		if current == nil || current.Series.ID != series.ID {
			if err := decodeSeriesDocument(&series, quote, images, items); err != nil {
				return nil, fmt.Errorf("series %s: %w", series.ID, err)
			}
			current = &catalog.JoinedSeries{Series: series, Refs: []catalog.SeasonRef{}}
			result = append(result, current)
		}

		// Series with an empty items list yields a single row with no ref
		if !refKey.Valid {
			continue
		}

		ref := catalog.SeasonRef{
			Position: int(refKey.Int64),
			ID:       refValue.String,
		}
		if seasonID.Valid {
			episodes, err := decodeEpisodes(eps.String)
			if err != nil {
				return nil, fmt.Errorf("season %s: %w", seasonID.String, err)
			}
			ref.Season = &catalog.Season{
				ID:       seasonID.String,
				Num:      seasonNum,
				Alias:    seasonAlias.String,
				Episodes: episodes,
			}
		}
		current.Refs = append(current.Refs, ref)
	}

	return result, rows.Err()
}
