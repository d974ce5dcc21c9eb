package main

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/franz/showcat/internal/report"
	"github.com/franz/showcat/internal/util"
	"github.com/spf13/cobra"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Generate a summary report of the catalog",
	Long: `Generate a catalog summary in Markdown format.

The report includes:
- Series, season, episode and file counts
- Files per quality tier
- Season references that do not resolve
- Files with unknown quality codes
- Seasons no series references

The report is saved to artifacts/reports/<timestamp>/summary.md`,
	RunE: runReport,
}

func init() {
	rootCmd.AddCommand(reportCmd)

	reportCmd.Flags().String("out", "", "Output directory for report (default: artifacts/reports/<timestamp>)")
	reportCmd.Flags().String("event-log", "", "Path to event log file to reference (optional)")
}

func runReport(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	setupLogging()

	util.InfoLog("=== Generating Summary Report ===")

	db, dbPath, err := openStore(true)
	if err != nil {
		return err
	}
	defer db.Close()
	util.InfoLog("Database: %s", dbPath)

	eventLogPath, _ := cmd.Flags().GetString("event-log")

	util.InfoLog("Analyzing catalog...")
	summary, err := report.GenerateSummaryReport(ctx, db, eventLogPath)
	if err != nil {
		return fmt.Errorf("failed to generate report: %w", err)
	}
	summary.DatabasePath = dbPath

	outputDir, _ := cmd.Flags().GetString("out")
	if outputDir == "" {
		timestamp := time.Now().Format("20060102-150405")
		outputDir = filepath.Join("artifacts", "reports", timestamp)
	}
	outputPath := filepath.Join(outputDir, "summary.md")

	util.InfoLog("Writing report to: %s", outputPath)
	if err := report.WriteMarkdownReport(summary, outputPath); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	util.SuccessLog("Report generated successfully!")
	util.InfoLog("")
	util.InfoLog("Summary:")
	util.InfoLog("  Series: %s", humanize.Comma(int64(summary.Series)))
	util.InfoLog("  Seasons: %s", humanize.Comma(int64(summary.Seasons)))
	util.InfoLog("  Episodes: %s", humanize.Comma(int64(summary.Episodes)))
	util.InfoLog("  Files: %s", humanize.Comma(int64(summary.Files)))
	if len(summary.Dangling) > 0 {
		util.WarnLog("  Dangling season references: %d", len(summary.Dangling))
	}
	if len(summary.InvalidFiles) > 0 {
		util.WarnLog("  Files with unknown quality: %d", len(summary.InvalidFiles))
	}
	if len(summary.Orphans) > 0 {
		util.InfoLog("  Orphan seasons: %d", len(summary.Orphans))
	}

	return nil
}
