package main

import (
	"context"
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/franz/showcat/internal/report"
	"github.com/franz/showcat/internal/store"
	"github.com/franz/showcat/internal/util"
	"github.com/spf13/cobra"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Run diagnostic checks on the catalog database",
	Long: `Run diagnostic checks to ensure the catalog can be materialized.

This command checks:
- SQLite version
- Database accessibility and integrity
- Season references that do not resolve (skipped in views)
- Files with unknown quality codes (abort materialization)
- Seasons no series references (left behind by re-imports)

Use --prune to delete unreferenced seasons.`,
	RunE: runDoctor,
}

func init() {
	rootCmd.AddCommand(doctorCmd)

	doctorCmd.Flags().Bool("prune", false, "Delete seasons that no series references")
}

type checkResult struct {
	name    string
	message string
	error   bool
	warning bool
}

func runDoctor(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	setupLogging()

	util.InfoLog("=== showcat doctor - Catalog Diagnostics ===")
	util.InfoLog("")

	results := []checkResult{checkSQLite()}

	dbPath := GetConfigString("db", "")
	dbResult := checkDatabase(ctx, dbPath)
	results = append(results, dbResult)

	if !dbResult.error && dbPath != "" {
		if _, err := os.Stat(dbPath); err == nil {
			prune, _ := cmd.Flags().GetBool("prune")
			catalogResults, err := checkCatalog(ctx, dbPath, prune)
			if err != nil {
				return err
			}
			results = append(results, catalogResults...)
		}
	}

	util.InfoLog("")
	util.InfoLog("=== Diagnostic Results ===")
	util.InfoLog("")

	hasErrors := false
	hasWarnings := false

	for _, r := range results {
		symbol := "✓"
		if r.error {
			symbol = "✗"
			hasErrors = true
		} else if r.warning {
			symbol = "⚠"
			hasWarnings = true
		}

		line := fmt.Sprintf("[%s] %s", symbol, r.name)
		if r.message != "" {
			line += fmt.Sprintf(": %s", r.message)
		}

		if r.error {
			util.ErrorLog("%s", line)
		} else if r.warning {
			util.WarnLog("%s", line)
		} else {
			util.SuccessLog("%s", line)
		}
	}

	util.InfoLog("")
	if hasErrors {
		util.ErrorLog("❌ Some critical checks failed. Views cannot be materialized until they are resolved.")
		return fmt.Errorf("catalog diagnostics failed")
	} else if hasWarnings {
		util.WarnLog("⚠️  Some checks produced warnings. Review them before proceeding.")
	} else {
		util.SuccessLog("✅ All checks passed! Catalog is consistent.")
	}

	return nil
}

// checkSQLite verifies SQLite version
func checkSQLite() checkResult {
	// modernc.org/sqlite is compiled in, no external library to find
	version := store.SQLiteVersion()
	if version == "" {
		return checkResult{
			name:    "SQLite",
			error:   true,
			message: "unable to determine version",
		}
	}

	return checkResult{
		name:    "SQLite",
		message: fmt.Sprintf("version %s (built-in)", version),
	}
}

// checkDatabase verifies database file accessibility
func checkDatabase(ctx context.Context, dbPath string) checkResult {
	if dbPath == "" {
		return checkResult{
			name:    "Database",
			warning: true,
			message: "no database path specified (use --db flag or config)",
		}
	}

	info, err := os.Stat(dbPath)
	if err != nil {
		if os.IsNotExist(err) {
			return checkResult{
				name:    "Database",
				message: fmt.Sprintf("%s (will be created on first import)", dbPath),
			}
		}
		return checkResult{
			name:    "Database",
			error:   true,
			message: fmt.Sprintf("cannot access %s: %v", dbPath, err),
		}
	}

	if !info.Mode().IsRegular() {
		return checkResult{
			name:    "Database",
			error:   true,
			message: fmt.Sprintf("%s is not a regular file", dbPath),
		}
	}

	db, err := store.Open(dbPath)
	if err != nil {
		return checkResult{
			name:    "Database",
			error:   true,
			message: fmt.Sprintf("cannot open %s: %v", dbPath, err),
		}
	}
	defer db.Close()

	if err := db.CheckIntegrity(ctx); err != nil {
		return checkResult{
			name:    "Database",
			error:   true,
			message: fmt.Sprintf("integrity check failed: %v", err),
		}
	}

	counts, err := db.GetCatalogCounts(ctx)
	if err != nil {
		return checkResult{
			name:    "Database",
			error:   true,
			message: fmt.Sprintf("cannot read catalog: %v", err),
		}
	}

	return checkResult{
		name: "Database",
		message: fmt.Sprintf("%s (%s, %s series, %s seasons)", dbPath,
			humanize.Bytes(uint64(info.Size())),
			humanize.Comma(int64(counts.Series)),
			humanize.Comma(int64(counts.Seasons))),
	}
}

// checkCatalog reports references that break or bloat materialized views,
// optionally deleting orphan seasons
func checkCatalog(ctx context.Context, dbPath string, prune bool) ([]checkResult, error) {
	db, err := store.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	summary, err := report.GenerateSummaryReport(ctx, db, "")
	if err != nil {
		return nil, err
	}

	var results []checkResult

	dangling := checkResult{name: "Season references", message: "all resolve"}
	if n := len(summary.Dangling); n > 0 {
		d := summary.Dangling[0]
		dangling.warning = true
		dangling.message = fmt.Sprintf("%d do not resolve and are skipped in views (first: %s #%d -> %s)",
			n, d.SeriesAlias, d.Position, d.SeasonID)
	}
	results = append(results, dangling)

	qualities := checkResult{name: "File qualities", message: "all codes known"}
	if n := len(summary.InvalidFiles); n > 0 {
		f := summary.InvalidFiles[0]
		qualities.error = true
		qualities.message = fmt.Sprintf("%d files have unknown codes (first: %s %s code %d)",
			n, f.Path, f.FilePath, f.Quality)
	}
	results = append(results, qualities)

	orphans := checkResult{name: "Orphan seasons", message: "none"}
	if n := len(summary.Orphans); n > 0 {
		if prune {
			deleted, err := pruneOrphans(ctx, db, summary.Orphans)
			if err != nil {
				return nil, err
			}
			orphans.message = fmt.Sprintf("deleted %s", humanize.Comma(deleted))
		} else {
			orphans.warning = true
			orphans.message = fmt.Sprintf("%s unreferenced (run with --prune to delete)", humanize.Comma(int64(n)))
		}
	}
	results = append(results, orphans)

	return results, nil
}

func pruneOrphans(ctx context.Context, db *store.Store, orphans []*store.OrphanSeason) (int64, error) {
	ids := make([]string, 0, len(orphans))
	for _, o := range orphans {
		ids = append(ids, o.ID)
	}

	events, err := openEventLogger()
	if err != nil {
		return 0, err
	}
	defer events.Close()

	deleted, err := util.RetryWithBackoff(ctx, util.WriteRetryConfig(), func() (int64, error) {
		return db.DeleteSeasons(ctx, ids)
	}, "prune orphan seasons")
	if err != nil {
		events.LogError(report.EventPrune, "", err)
		return 0, fmt.Errorf("failed to prune orphan seasons: %w", err)
	}

	events.LogPrune(int(deleted))
	return deleted, nil
}
