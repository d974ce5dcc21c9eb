package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/franz/showcat/internal/catalog"
	"github.com/google/uuid"
)

// CreateSeason persists a season with its full episode and file tree in a
// single write and returns it with its assigned ID
func (s *Store) CreateSeason(ctx context.Context, in catalog.SeasonInput) (*catalog.Season, error) {
	id, err := insertSeason(ctx, s.db, in)
	if err != nil {
		return nil, err
	}
	return getSeason(ctx, s.db, id)
}

func insertSeason(ctx context.Context, q queryer, in catalog.SeasonInput) (string, error) {
	items, err := json.Marshal(normalizeEpisodes(in.Episodes))
	if err != nil {
		return "", fmt.Errorf("failed to encode episodes: %w", err)
	}

	id := uuid.NewString()
	_, err = q.ExecContext(ctx, `
		INSERT INTO products (id, cls, alias, num, items_json)
		VALUES (?, ?, ?, ?, ?)
	`, id, catalog.KindSeason, in.Alias, in.Num, string(items))
	if err != nil {
		return "", fmt.Errorf("failed to insert season %q: %w", in.Alias, err)
	}

	return id, nil
}

// normalizeEpisodes replaces nil slices so documents always carry arrays
func normalizeEpisodes(episodes []catalog.Episode) []catalog.Episode {
	out := make([]catalog.Episode, len(episodes))
	for i, ep := range episodes {
		out[i] = ep
		if out[i].Files == nil {
			out[i].Files = []catalog.File{}
		}
	}
	return out
}

// GetSeason retrieves a season by ID. Returns nil if no Season has that ID.
func (s *Store) GetSeason(ctx context.Context, id string) (*catalog.Season, error) {
	return getSeason(ctx, s.db, id)
}

func getSeason(ctx context.Context, q queryer, id string) (*catalog.Season, error) {
	season := &catalog.Season{}
	var items string
	err := q.QueryRowContext(ctx, `
		SELECT id, COALESCE(num, 0), alias, items_json, created_at
		FROM products WHERE id = ? AND cls = ?
	`, id, catalog.KindSeason).Scan(
		&season.ID, &season.Num, &season.Alias, &items, &season.CreatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get season: %w", err)
	}

	if season.Episodes, err = decodeEpisodes(items); err != nil {
		return nil, fmt.Errorf("season %s: %w", id, err)
	}

	return season, nil
}

func decodeEpisodes(items string) ([]catalog.Episode, error) {
	var episodes []catalog.Episode
	if err := json.Unmarshal([]byte(items), &episodes); err != nil {
		return nil, fmt.Errorf("failed to decode episodes: %w", err)
	}
	return episodes, nil
}

// OrphanSeason is a stored season that no series references
type OrphanSeason struct {
	ID    string
	Num   int
	Alias string
}

// GetOrphanSeasons lists seasons left unreferenced, typically by a series
// upsert that replaced its season list
func (s *Store) GetOrphanSeasons(ctx context.Context) ([]*OrphanSeason, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT s.id, COALESCE(s.num, 0), s.alias
		FROM products s
		WHERE s.cls = 'Season' AND NOT EXISTS (
			SELECT 1 FROM products p, json_each(p.items_json) r
			WHERE p.cls = 'Series' AND r.value = s.id
		)
		ORDER BY s.rowid
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query orphan seasons: %w", err)
	}
	defer rows.Close()

	var orphans []*OrphanSeason
	for rows.Next() {
		o := &OrphanSeason{}
		if err := rows.Scan(&o.ID, &o.Num, &o.Alias); err != nil {
			return nil, fmt.Errorf("failed to scan orphan season: %w", err)
		}
		orphans = append(orphans, o)
	}

	return orphans, rows.Err()
}

// DeleteSeasons removes seasons by ID in one transaction and returns how
// many rows were deleted. Series rows are never touched.
func (s *Store) DeleteSeasons(ctx context.Context, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	var deleted int64
	err := s.Transaction(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, "DELETE FROM products WHERE id = ? AND cls = 'Season'")
		if err != nil {
			return fmt.Errorf("failed to prepare delete: %w", err)
		}
		defer stmt.Close()

		for _, id := range ids {
			res, err := stmt.ExecContext(ctx, id)
			if err != nil {
				return fmt.Errorf("failed to delete season %s: %w", id, err)
			}
			n, _ := res.RowsAffected()
			deleted += n
		}
		return nil
	})

	return deleted, err
}
