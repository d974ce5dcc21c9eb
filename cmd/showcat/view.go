package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/franz/showcat/internal/util"
	"github.com/franz/showcat/internal/view"
	"github.com/spf13/cobra"
)

var viewCmd = &cobra.Command{
	Use:   "view",
	Short: "Print materialized series views as JSON",
	Long: `Materialize the catalog into display documents and print them as JSON.

Every series is emitted with its path, title, description, optional cover,
quote and slide images, and its seasons in stored order. Season references
that do not resolve are skipped with a warning. A file with an unknown
quality code aborts the whole run.`,
	RunE: runView,
}

func init() {
	rootCmd.AddCommand(viewCmd)

	viewCmd.Flags().String("alias", "", "Only materialize series with this alias")
	viewCmd.Flags().Bool("indent", true, "Indent JSON output")
}

func runView(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	setupLogging()

	alias, _ := cmd.Flags().GetString("alias")
	indent, _ := cmd.Flags().GetBool("indent")

	db, _, err := openStore(true)
	if err != nil {
		return err
	}
	defer db.Close()

	events, err := openEventLogger()
	if err != nil {
		return err
	}
	defer events.Close()

	start := time.Now()
	views, err := newMaterializer(db, events).Materialize(ctx, view.Filter{Alias: alias})
	events.LogMaterialize(alias, len(views), time.Since(start), err)
	if err != nil {
		return err
	}
	if views == nil {
		views = []view.SeriesView{}
	}
	util.DebugLog("Materialized %d series in %s", len(views), time.Since(start))

	enc := json.NewEncoder(os.Stdout)
	enc.SetEscapeHTML(false)
	if indent {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(views); err != nil {
		return fmt.Errorf("failed to write views: %w", err)
	}
	return nil
}
