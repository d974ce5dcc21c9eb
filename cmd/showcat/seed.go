package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/franz/showcat/internal/seed"
	"github.com/franz/showcat/internal/util"
	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Fill the catalog with random demo data",
	Long: `Generate a random catalog and upsert it into the database.

Series are named "series N" with alias "seriesN", every episode gets one file
per quality tier and every series gets all images and a quote. Running seed
again upserts the same series keys with fresh seasons.

Use --dump to write the generated catalog as an import manifest instead.`,
	RunE: runSeed,
}

func init() {
	rootCmd.AddCommand(seedCmd)

	seedCmd.Flags().Int("series", 10, "Maximum number of series")
	seedCmd.Flags().Int("seasons", 10, "Maximum seasons per series")
	seedCmd.Flags().Int("episodes", 30, "Maximum episodes per season")
	seedCmd.Flags().Uint64("seed", 0, "Random seed (default: current time)")
	seedCmd.Flags().String("dump", "", "Write the generated manifest to this file instead of the database")
}

func runSeed(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	setupLogging()

	opts := seed.DefaultOptions()
	opts.MaxSeries, _ = cmd.Flags().GetInt("series")
	opts.MaxSeasons, _ = cmd.Flags().GetInt("seasons")
	opts.MaxEpisodes, _ = cmd.Flags().GetInt("episodes")
	opts.Seed, _ = cmd.Flags().GetUint64("seed")
	if !cmd.Flags().Changed("seed") {
		opts.Seed = uint64(time.Now().UnixNano())
	}

	m, err := seed.Generate(opts)
	if err != nil {
		return err
	}
	util.DebugLog("Generated %d series with seed %d", len(m.Series), opts.Seed)

	if dump, _ := cmd.Flags().GetString("dump"); dump != "" {
		data, err := yaml.Marshal(m)
		if err != nil {
			return fmt.Errorf("failed to encode manifest: %w", err)
		}
		if err := os.WriteFile(dump, data, 0644); err != nil {
			return fmt.Errorf("failed to write manifest: %w", err)
		}
		util.SuccessLog("Wrote %d series to %s", len(m.Series), dump)
		return nil
	}

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

	return applyManifest(ctx, m, db, events, fmt.Sprintf("seed:%d", opts.Seed), dbPath)
}
