package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/franz/showcat/internal/catalog"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "test-catalog.db"))
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestStoreOpenAndMigrate(t *testing.T) {
	store := openTestStore(t)

	version, err := store.getSchemaVersion()
	if err != nil {
		t.Fatalf("failed to get schema version: %v", err)
	}
	if version != currentSchemaVersion {
		t.Errorf("expected schema version %d, got %d", currentSchemaVersion, version)
	}

	for _, table := range []string{"products", "schema_version"} {
		var count int
		err := store.db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&count)
		if err != nil {
			t.Fatalf("failed to query table %s: %v", table, err)
		}
		if count != 1 {
			t.Errorf("expected table %s to exist", table)
		}
	}

	for _, index := range []string{"idx_products_series_key", "idx_products_cls", "idx_products_cls_alias"} {
		var count int
		err := store.db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='index' AND name=?", index).Scan(&count)
		if err != nil {
			t.Fatalf("failed to query index %s: %v", index, err)
		}
		if count != 1 {
			t.Errorf("expected index %s to exist", index)
		}
	}
}

func TestStoreReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reopen.db")
	ctx := context.Background()

	store, err := Open(path)
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	season, err := store.CreateSeason(ctx, catalog.SeasonInput{Num: 0, Alias: "s1"})
	if err != nil {
		t.Fatalf("failed to create season: %v", err)
	}
	store.Close()

	store, err = Open(path)
	if err != nil {
		t.Fatalf("failed to reopen store: %v", err)
	}
	defer store.Close()

	got, err := store.GetSeason(ctx, season.ID)
	if err != nil {
		t.Fatalf("failed to get season: %v", err)
	}
	if got == nil || got.Alias != "s1" {
		t.Errorf("expected season s1 after reopen, got %+v", got)
	}
}

func TestReadOnlyRejectsWrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ro.db")
	rw, err := Open(path)
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	rw.Close()

	ro, err := OpenWithOptions(path, &OpenOptions{ReadOnly: true})
	if err != nil {
		t.Fatalf("failed to open read-only store: %v", err)
	}
	defer ro.Close()

	if _, err := ro.CreateSeason(context.Background(), catalog.SeasonInput{Alias: "s1"}); err == nil {
		t.Error("expected write to fail on read-only store")
	}
}

func TestCreateSeason(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	in := catalog.SeasonInput{
		Num:   1,
		Alias: "season-2",
		Episodes: []catalog.Episode{
			{Num: 5, Alias: "e6", Files: []catalog.File{
				{Path: "e6-hd.mp4", Quality: catalog.QualityHD},
				{Path: "e6-ld.mp4", Quality: catalog.QualityLD},
			}},
			{Num: 0, Alias: "e1"},
		},
	}

	season, err := store.CreateSeason(ctx, in)
	if err != nil {
		t.Fatalf("failed to create season: %v", err)
	}
	if season.ID == "" {
		t.Fatal("expected season ID to be set")
	}
	if season.Num != 1 || season.Alias != "season-2" {
		t.Errorf("unexpected season fields: %+v", season)
	}
	if len(season.Episodes) != 2 {
		t.Fatalf("expected 2 episodes, got %d", len(season.Episodes))
	}

	// Stored order is kept, not sorted by num
	if season.Episodes[0].Alias != "e6" || season.Episodes[1].Alias != "e1" {
		t.Errorf("episode order changed: %s, %s", season.Episodes[0].Alias, season.Episodes[1].Alias)
	}
	files := season.Episodes[0].Files
	if len(files) != 2 || files[0].Path != "e6-hd.mp4" || files[1].Quality != catalog.QualityLD {
		t.Errorf("unexpected files: %+v", files)
	}
	if season.Episodes[1].Files == nil {
		t.Error("expected empty files slice, got nil")
	}
}

func TestGetSeasonMissing(t *testing.T) {
	store := openTestStore(t)

	season, err := store.GetSeason(context.Background(), "does-not-exist")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if season != nil {
		t.Errorf("expected nil season, got %+v", season)
	}
}

func TestUpsertSeriesCreates(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	key := catalog.SeriesKey{Title: "Show", Alias: "show"}
	series, err := store.UpsertSeries(ctx, key, catalog.SeriesFields{
		Description: "first",
		Quote:       &catalog.Quote{Source: "Q", Text: "T"},
		Images:      map[string]string{"cover": "c.png"},
		Seasons: []catalog.SeasonInput{
			{Num: 0, Alias: "s1"},
			{Num: 1, Alias: "s2"},
		},
	})
	if err != nil {
		t.Fatalf("failed to upsert series: %v", err)
	}

	if series.ID == "" {
		t.Fatal("expected series ID to be set")
	}
	if series.Title != "Show" || series.Alias != "show" || series.Description != "first" {
		t.Errorf("unexpected series fields: %+v", series)
	}
	if series.Quote == nil || series.Quote.Text != "T" || series.Quote.Source != "Q" {
		t.Errorf("unexpected quote: %+v", series.Quote)
	}
	if series.Images["cover"] != "c.png" {
		t.Errorf("expected cover c.png, got %q", series.Images["cover"])
	}
	if len(series.Seasons) != 2 {
		t.Fatalf("expected 2 season refs, got %d", len(series.Seasons))
	}

	for i, alias := range []string{"s1", "s2"} {
		season, err := store.GetSeason(ctx, series.Seasons[i])
		if err != nil {
			t.Fatalf("failed to get season %d: %v", i, err)
		}
		if season == nil || season.Alias != alias {
			t.Errorf("season ref %d: expected %s, got %+v", i, alias, season)
		}
	}
}

func TestUpsertSeriesTwiceKeepsOne(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	key := catalog.SeriesKey{Title: "Show", Alias: "show"}

	first, err := store.UpsertSeries(ctx, key, catalog.SeriesFields{
		Description: "first",
		Quote:       &catalog.Quote{Source: "Q", Text: "T"},
		Seasons:     []catalog.SeasonInput{{Num: 0, Alias: "s1"}},
	})
	if err != nil {
		t.Fatalf("first upsert failed: %v", err)
	}

	second, err := store.UpsertSeries(ctx, key, catalog.SeriesFields{
		Description: "second",
		Seasons:     []catalog.SeasonInput{{Num: 0, Alias: "s1-new"}},
	})
	if err != nil {
		t.Fatalf("second upsert failed: %v", err)
	}

	if second.ID != first.ID {
		t.Errorf("expected identity to be kept, got %s then %s", first.ID, second.ID)
	}
	if second.Description != "second" {
		t.Errorf("expected latest description, got %q", second.Description)
	}
	if second.Quote != nil {
		t.Errorf("expected quote to be cleared, got %+v", second.Quote)
	}
	if len(second.Seasons) != 1 || second.Seasons[0] == first.Seasons[0] {
		t.Errorf("expected season list to be replaced, got %v", second.Seasons)
	}

	all, err := store.GetAllSeries(ctx)
	if err != nil {
		t.Fatalf("failed to list series: %v", err)
	}
	if len(all) != 1 {
		t.Fatalf("expected exactly one series, got %d", len(all))
	}

	// The replaced season stays behind unreferenced
	orphans, err := store.GetOrphanSeasons(ctx)
	if err != nil {
		t.Fatalf("failed to get orphans: %v", err)
	}
	if len(orphans) != 1 || orphans[0].ID != first.Seasons[0] {
		t.Errorf("expected the first season to be orphaned, got %+v", orphans)
	}
}

func TestUpsertSeriesDistinctKeys(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	keys := []catalog.SeriesKey{
		{Title: "Show", Alias: "show"},
		{Title: "Show (remake)", Alias: "show"},
		{Title: "Other", Alias: "other"},
	}
	for _, key := range keys {
		if _, err := store.UpsertSeries(ctx, key, catalog.SeriesFields{}); err != nil {
			t.Fatalf("upsert %+v failed: %v", key, err)
		}
	}

	all, err := store.GetAllSeries(ctx)
	if err != nil {
		t.Fatalf("failed to list series: %v", err)
	}
	if len(all) != len(keys) {
		t.Fatalf("expected %d series, got %d", len(keys), len(all))
	}
	for i := range keys {
		if all[i].Title != keys[i].Title {
			t.Errorf("series %d: expected %q, got %q (insertion order)", i, keys[i].Title, all[i].Title)
		}
	}

	byAlias, err := store.GetSeriesByAlias(ctx, "show")
	if err != nil {
		t.Fatalf("failed to get by alias: %v", err)
	}
	if byAlias == nil || byAlias.Title != "Show" {
		t.Errorf("expected first series with alias show, got %+v", byAlias)
	}
}

func TestAttachSeasons(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	s1, err := store.CreateSeason(ctx, catalog.SeasonInput{Num: 0, Alias: "s1"})
	if err != nil {
		t.Fatalf("failed to create season: %v", err)
	}
	s2, err := store.CreateSeason(ctx, catalog.SeasonInput{Num: 1, Alias: "s2"})
	if err != nil {
		t.Fatalf("failed to create season: %v", err)
	}

	key := catalog.SeriesKey{Title: "Show", Alias: "show"}
	series, err := store.AttachSeasons(ctx, key, catalog.SeriesFields{Description: "d"}, []string{s2.ID, s1.ID})
	if err != nil {
		t.Fatalf("failed to attach seasons: %v", err)
	}

	if len(series.Seasons) != 2 || series.Seasons[0] != s2.ID || series.Seasons[1] != s1.ID {
		t.Errorf("expected [s2, s1], got %v", series.Seasons)
	}

	fetched, err := store.GetSeries(ctx, series.ID)
	if err != nil {
		t.Fatalf("failed to get series: %v", err)
	}
	if fetched == nil || fetched.Description != "d" {
		t.Errorf("unexpected series: %+v", fetched)
	}
}

func TestGetSeriesMissing(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	series, err := store.GetSeriesByKey(ctx, catalog.SeriesKey{Title: "x", Alias: "x"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if series != nil {
		t.Errorf("expected nil series, got %+v", series)
	}

	// A season ID never resolves as a series
	season, err := store.CreateSeason(ctx, catalog.SeasonInput{Alias: "s1"})
	if err != nil {
		t.Fatalf("failed to create season: %v", err)
	}
	series, err = store.GetSeries(ctx, season.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if series != nil {
		t.Errorf("expected season ID not to resolve as a series, got %+v", series)
	}
}

func TestDeleteSeasons(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	season, err := store.CreateSeason(ctx, catalog.SeasonInput{Alias: "s1"})
	if err != nil {
		t.Fatalf("failed to create season: %v", err)
	}
	series, err := store.UpsertSeries(ctx, catalog.SeriesKey{Title: "Show", Alias: "show"}, catalog.SeriesFields{})
	if err != nil {
		t.Fatalf("failed to upsert series: %v", err)
	}

	n, err := store.DeleteSeasons(ctx, []string{season.ID, series.ID})
	if err != nil {
		t.Fatalf("failed to delete seasons: %v", err)
	}
	if n != 1 {
		t.Errorf("expected 1 deleted row, got %d", n)
	}

	got, err := store.GetSeries(ctx, series.ID)
	if err != nil || got == nil {
		t.Errorf("series must survive DeleteSeasons, got %+v, %v", got, err)
	}
}

func TestCheckIntegrity(t *testing.T) {
	store := openTestStore(t)
	if err := store.CheckIntegrity(context.Background()); err != nil {
		t.Errorf("integrity check failed on fresh database: %v", err)
	}
	if SQLiteVersion() == "" {
		t.Error("expected a SQLite version string")
	}
}
