package report

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/franz/showcat/internal/catalog"
	"github.com/franz/showcat/internal/store"
)

// SummaryReport represents a complete catalog summary
type SummaryReport struct {
	GeneratedAt time.Time

	// Catalog statistics
	Series   int
	Seasons  int
	Episodes int
	Files    int

	// Quality code -> file count, including codes outside the registry
	Qualities map[int]int

	// Details
	Dangling      []DanglingInfo
	Orphans       []*store.OrphanSeason
	InvalidFiles  []InvalidFile
	EmptySeries   []string
	SQLiteVersion string

	// Metadata
	DatabasePath string
	EventLogPath string
}

// DanglingInfo describes a season reference that resolves to nothing
type DanglingInfo struct {
	SeriesAlias string
	SeasonID    string
	Position    int
}

// InvalidFile describes a stored file whose quality code has no label
type InvalidFile struct {
	Path     string
	FilePath string
	Quality  int
}

// GenerateSummaryReport creates a summary report from the catalog database
func GenerateSummaryReport(ctx context.Context, db *store.Store, eventLogPath string) (*SummaryReport, error) {
	report := &SummaryReport{
		GeneratedAt:   time.Now(),
		EventLogPath:  eventLogPath,
		SQLiteVersion: store.SQLiteVersion(),
		Dangling:      make([]DanglingInfo, 0),
		InvalidFiles:  make([]InvalidFile, 0),
		EmptySeries:   make([]string, 0),
	}

	counts, err := db.GetCatalogCounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count catalog: %w", err)
	}
	report.Series = counts.Series
	report.Seasons = counts.Seasons
	report.Episodes = counts.Episodes
	report.Files = counts.Files

	report.Qualities, err = db.GetQualityHistogram(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to build quality histogram: %w", err)
	}

	report.Orphans, err = db.GetOrphanSeasons(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to find orphan seasons: %w", err)
	}

	joined, err := db.SeriesWithSeasons(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("failed to load series: %w", err)
	}
	for _, js := range joined {
		inspectSeries(report, js)
	}

	return report, nil
}

// inspectSeries collects integrity problems for one series
func inspectSeries(report *SummaryReport, js *catalog.JoinedSeries) {
	alias := js.Series.Alias
	if len(js.Refs) == 0 {
		report.EmptySeries = append(report.EmptySeries, alias)
	}

	for _, ref := range js.Refs {
		if ref.Dangling() {
			report.Dangling = append(report.Dangling, DanglingInfo{
				SeriesAlias: alias,
				SeasonID:    ref.ID,
				Position:    ref.Position,
			})
			continue
		}
		for _, ep := range ref.Season.Episodes {
			for _, f := range ep.Files {
				if _, err := f.Quality.Label(); err != nil {
					report.InvalidFiles = append(report.InvalidFiles, InvalidFile{
						Path:     catalog.EpisodePath(alias, ref.Season.Alias, ep.Alias),
						FilePath: f.Path,
						Quality:  int(f.Quality),
					})
				}
			}
		}
	}
}

// Healthy reports whether the catalog can be materialized without losing data
func (r *SummaryReport) Healthy() bool {
	return len(r.Dangling) == 0 && len(r.InvalidFiles) == 0
}

// WriteMarkdownReport writes the summary report as Markdown
func WriteMarkdownReport(report *SummaryReport, outputPath string) error {
	dir := filepath.Dir(outputPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	if err := os.WriteFile(outputPath, []byte(RenderMarkdown(report)), 0644); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	return nil
}

// RenderMarkdown renders the summary report as a Markdown document
func RenderMarkdown(report *SummaryReport) string {
	var md strings.Builder

	// Header
	md.WriteString("# Show Catalog - Summary Report\n\n")
	md.WriteString(fmt.Sprintf("**Generated:** %s\n\n", report.GeneratedAt.Format("2006-01-02 15:04:05")))

	if report.DatabasePath != "" {
		md.WriteString(fmt.Sprintf("**Database:** `%s`\n\n", report.DatabasePath))
	}
	if report.EventLogPath != "" {
		md.WriteString(fmt.Sprintf("**Event Log:** `%s`\n\n", report.EventLogPath))
	}
	if report.SQLiteVersion != "" {
		md.WriteString(fmt.Sprintf("**SQLite:** %s\n\n", report.SQLiteVersion))
	}

	md.WriteString("---\n\n")

	// Overview
	md.WriteString("## 📊 Overview\n\n")
	md.WriteString("| Metric | Value |\n")
	md.WriteString("|--------|-------|\n")
	md.WriteString(fmt.Sprintf("| Series | %s |\n", humanize.Comma(int64(report.Series))))
	md.WriteString(fmt.Sprintf("| Seasons | %s |\n", humanize.Comma(int64(report.Seasons))))
	md.WriteString(fmt.Sprintf("| Episodes | %s |\n", humanize.Comma(int64(report.Episodes))))
	md.WriteString(fmt.Sprintf("| Files | %s |\n", humanize.Comma(int64(report.Files))))
	md.WriteString("\n")

	// Qualities
	if len(report.Qualities) > 0 {
		md.WriteString("## 🎞️ Qualities\n\n")
		md.WriteString("| Quality | Files |\n")
		md.WriteString("|---------|-------|\n")
		codes := make([]int, 0, len(report.Qualities))
		for code := range report.Qualities {
			codes = append(codes, code)
		}
		sort.Ints(codes)
		for _, code := range codes {
			md.WriteString(fmt.Sprintf("| %s | %s |\n",
				catalog.Quality(code).String(),
				humanize.Comma(int64(report.Qualities[code]))))
		}
		md.WriteString("\n")
	}

	// Dangling references
	if len(report.Dangling) > 0 {
		md.WriteString("## 🔗 Dangling Season References\n\n")
		md.WriteString("*Dropped from materialized views*\n\n")
		md.WriteString("| Series | Position | Season ID |\n")
		md.WriteString("|--------|----------|-----------|\n")
		for _, d := range report.Dangling {
			md.WriteString(fmt.Sprintf("| `%s` | %d | `%s` |\n",
				catalog.SeriesPath(d.SeriesAlias), d.Position, d.SeasonID))
		}
		md.WriteString("\n")
	}

	// Invalid files
	if len(report.InvalidFiles) > 0 {
		md.WriteString("## ⚠️ Unknown Quality Codes\n\n")
		md.WriteString("*Materialization fails while these remain*\n\n")
		md.WriteString("| Episode | File | Code |\n")
		md.WriteString("|---------|------|------|\n")
		for _, f := range report.InvalidFiles {
			md.WriteString(fmt.Sprintf("| `%s` | `%s` | %d |\n",
				f.Path, truncatePath(f.FilePath, 60), f.Quality))
		}
		md.WriteString("\n")
	}

	// Orphans
	if len(report.Orphans) > 0 {
		md.WriteString("## 🧹 Orphan Seasons\n\n")
		md.WriteString(fmt.Sprintf("%s seasons are not referenced by any series.\n\n",
			humanize.Comma(int64(len(report.Orphans)))))
		md.WriteString("| Season | Alias | ID |\n")
		md.WriteString("|--------|-------|----|\n")
		for _, o := range report.Orphans {
			md.WriteString(fmt.Sprintf("| %d | `%s` | `%s` |\n", o.Num+1, o.Alias, o.ID))
		}
		md.WriteString("\n")
	}

	// Empty series
	if len(report.EmptySeries) > 0 {
		md.WriteString("## 📭 Series Without Seasons\n\n")
		for _, alias := range report.EmptySeries {
			md.WriteString(fmt.Sprintf("- `%s`\n", catalog.SeriesPath(alias)))
		}
		md.WriteString("\n")
	}

	// Footer
	md.WriteString("---\n\n")
	if report.Healthy() {
		md.WriteString("*Catalog is consistent.*\n")
	} else {
		md.WriteString("*Catalog has integrity problems. Run `showcat doctor` for details.*\n")
	}

	return md.String()
}

// truncatePath truncates a file path to a maximum length
func truncatePath(path string, maxLen int) string {
	if len(path) <= maxLen {
		return path
	}
	// Truncate from the middle, keeping start and end
	start := maxLen/2 - 2
	end := len(path) - (maxLen/2 - 2)
	return path[:start] + "..." + path[end:]
}
