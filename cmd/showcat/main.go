package main

import (
	"fmt"
	"os"

	"github.com/franz/showcat/internal/util"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	// Version is set at build time
	Version = "dev"

	cfgFile string

	rootCmd = &cobra.Command{
		Use:   "showcat",
		Short: "Show Catalog - store series and serve their materialized views",
		Long: `showcat stores a catalog of series, seasons and episodes in SQLite and
materializes it into the nested, display-ready documents a front end renders:
series paths, localized season and episode titles, and labeled file qualities.`,
		Version: Version,
	}
)

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./configs/showcat.yaml)")
	rootCmd.PersistentFlags().String("db", "showcat.db", "catalog database file")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolP("quiet", "q", false, "quiet output (errors only)")
	rootCmd.PersistentFlags().IntP("concurrency", "c", 0, "materializer workers (default: GOMAXPROCS)")
	rootCmd.PersistentFlags().String("event-log-dir", "artifacts", "directory for JSONL event logs (empty disables)")

	// Bind flags to viper
	viper.BindPFlag("db", rootCmd.PersistentFlags().Lookup("db"))
	viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	viper.BindPFlag("quiet", rootCmd.PersistentFlags().Lookup("quiet"))
	viper.BindPFlag("concurrency", rootCmd.PersistentFlags().Lookup("concurrency"))
	viper.BindPFlag("event-log-dir", rootCmd.PersistentFlags().Lookup("event-log-dir"))
}

func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag
		viper.SetConfigFile(cfgFile)
	} else {
		// Search for config in common locations
		viper.AddConfigPath("./configs")
		viper.AddConfigPath(".")
		viper.SetConfigName("showcat")
		viper.SetConfigType("yaml")
	}

	// Read in environment variables that match, SHOWCAT_EVENT_LOG_DIR etc.
	viper.SetEnvPrefix("SHOWCAT")
	viper.SetEnvKeyReplacer(envKeyReplacer)
	viper.AutomaticEnv()

	util.SetColors(util.ShouldColor(os.Stderr))

	// If a config file is found, read it in
	if err := viper.ReadInConfig(); err == nil && !viper.GetBool("quiet") {
		util.InfoLog("Using config file: %s", viper.ConfigFileUsed())
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
