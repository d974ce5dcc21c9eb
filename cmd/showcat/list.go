package main

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/franz/showcat/internal/catalog"
	"github.com/franz/showcat/internal/store"
	"github.com/franz/showcat/internal/util"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List series with their season, episode and file counts",
	RunE:  runList,
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show catalog totals and files per quality",
	RunE:  runStats,
}

func init() {
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(statsCmd)

	listCmd.Flags().String("alias", "", "Only list series with this alias")
}

func runList(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	setupLogging()

	alias, _ := cmd.Flags().GetString("alias")

	db, _, err := openStore(true)
	if err != nil {
		return err
	}
	defer db.Close()

	joined, err := db.SeriesWithSeasons(ctx, alias)
	if err != nil {
		return err
	}
	if len(joined) == 0 {
		util.WarnLog("No series found. Run 'showcat import' or 'showcat seed' first.")
		return nil
	}

	fmt.Println(renderSeriesTable(joined, util.GetTerminalWidth()))
	return nil
}

// renderSeriesTable lists one row per series; titles are shortened to fit width
func renderSeriesTable(joined []*catalog.JoinedSeries, width int) string {
	titleWidth := width - 70
	if titleWidth < 16 {
		titleWidth = 16
	}

	rows := make([][]string, 0, len(joined))
	for i, js := range joined {
		resolved, episodes, files := 0, 0, 0
		for _, ref := range js.Refs {
			if ref.Dangling() {
				continue
			}
			resolved++
			episodes += len(ref.Season.Episodes)
			for _, ep := range ref.Season.Episodes {
				files += len(ep.Files)
			}
		}

		seasons := strconv.Itoa(resolved)
		if resolved != len(js.Refs) {
			seasons = fmt.Sprintf("%d/%d", resolved, len(js.Refs))
		}

		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			catalog.SeriesPath(js.Series.Alias),
			shorten(js.Series.Title, titleWidth),
			seasons,
			humanize.Comma(int64(episodes)),
			humanize.Comma(int64(files)),
			humanize.Time(js.Series.UpdatedAt),
		})
	}

	return renderTable(
		[]column{num("#"), col("Path"), col("Title"), num("Seasons"), num("Episodes"), num("Files"), col("Updated")},
		rows,
	)
}

func shorten(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

func runStats(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	setupLogging()

	db, dbPath, err := openStore(true)
	if err != nil {
		return err
	}
	defer db.Close()

	out, err := renderStats(ctx, db)
	if err != nil {
		return err
	}

	if info, err := os.Stat(dbPath); err == nil {
		util.InfoLog("Database: %s (%s)", dbPath, humanize.Bytes(uint64(info.Size())))
	}
	fmt.Println(out)
	return nil
}

// renderStats renders catalog totals and the quality histogram
func renderStats(ctx context.Context, db *store.Store) (string, error) {
	counts, err := db.GetCatalogCounts(ctx)
	if err != nil {
		return "", err
	}
	histogram, err := db.GetQualityHistogram(ctx)
	if err != nil {
		return "", err
	}

	totals := renderTable(
		[]column{col("Kind"), num("Count")},
		[][]string{
			{"Series", humanize.Comma(int64(counts.Series))},
			{"Seasons", humanize.Comma(int64(counts.Seasons))},
			{"Episodes", humanize.Comma(int64(counts.Episodes))},
			{"Files", humanize.Comma(int64(counts.Files))},
		},
	)

	codes := make([]int, 0, len(histogram))
	for code := range histogram {
		codes = append(codes, code)
	}
	sort.Ints(codes)

	rows := make([][]string, 0, len(codes))
	for _, code := range codes {
		share := ""
		if counts.Files > 0 {
			share = fmt.Sprintf("%.1f%%", float64(histogram[code])*100/float64(counts.Files))
		}
		rows = append(rows, []string{
			strconv.Itoa(code),
			catalog.Quality(code).String(),
			humanize.Comma(int64(histogram[code])),
			share,
		})
	}
	qualities := renderTable(
		[]column{num("Code"), col("Quality"), num("Files"), num("Share")},
		rows,
	)

	return totals + "\n" + qualities, nil
}
