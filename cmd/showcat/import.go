package main

import (
	"context"
	"fmt"
	"time"

	"github.com/franz/showcat/internal/manifest"
	"github.com/franz/showcat/internal/report"
	"github.com/franz/showcat/internal/util"
	"github.com/spf13/cobra"
)

var importCmd = &cobra.Command{
	Use:   "import <manifest.yaml>",
	Short: "Import series from a YAML manifest",
	Long: `Import series, seasons and episodes from a YAML manifest.

Each series is upserted by (title, alias): its seasons are created first and
then the series' season list is replaced with the new ones, all in a single
transaction. Blank aliases are derived from titles. Seasons replaced by a
re-import stay in the database until 'showcat doctor --prune'.

Example manifest:

  series:
    - title: Breaking Bad
      images: {cover: cover.png}
      seasons:
        - episodes:
            - files:
                - {path: /media/bb/s1e1.mp4, quality: HD}`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func init() {
	rootCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	setupLogging()

	m, err := manifest.Load(args[0])
	if err != nil {
		return err
	}
	util.InfoLog("Loaded %d series from %s", len(m.Series), args[0])

	db, dbPath, err := openStore(false)
	if err != nil {
		return err
	}
	defer db.Close()

	events, err := openEventLogger()
	if err != nil {
		return err
	}
	defer events.Close()

	return applyManifest(ctx, m, db, events, args[0], dbPath)
}

// applyManifest writes a manifest with progress and event logging
func applyManifest(ctx context.Context, m *manifest.Manifest, db manifest.Upserter, events *report.EventLogger, source, dbPath string) error {
	bar := newSeriesBar("Importing", len(m.Series))
	start := time.Now()

	n, err := manifest.Apply(ctx, db, m, &manifest.ApplyOptions{
		Events:   events,
		Progress: barProgress(bar),
	})
	if bar != nil {
		bar.Finish()
	}
	if err != nil {
		return fmt.Errorf("import stopped after %d series: %w", n, err)
	}

	events.LogImport(source, n, time.Since(start))
	util.SuccessLog("Imported %d series into %s in %s", n, dbPath, time.Since(start).Round(time.Millisecond))
	return nil
}
