package main

import (
	"fmt"
	"strings"

	"github.com/franz/showcat/internal/catalog"
	"github.com/franz/showcat/internal/report"
	"github.com/franz/showcat/internal/store"
	"github.com/franz/showcat/internal/util"
	"github.com/franz/showcat/internal/view"
	"github.com/spf13/viper"
)

// event-log-dir is read from SHOWCAT_EVENT_LOG_DIR
var envKeyReplacer = strings.NewReplacer("-", "_")

// GetConfigString retrieves a string config value with proper precedence:
// 1. Command-line flag (if set)
// 2. Environment variable (SHOWCAT_*)
// 3. Config file
// 4. Default value
func GetConfigString(key string, defaultValue string) string {
	val := viper.GetString(key)
	if val == "" {
		return defaultValue
	}
	return val
}

// GetConfigInt retrieves an int config value with proper precedence
func GetConfigInt(key string, defaultValue int) int {
	val := viper.GetInt(key)
	if val == 0 {
		return defaultValue
	}
	return val
}

// GetConfigBool retrieves a bool config value
func GetConfigBool(key string) bool {
	return viper.GetBool(key)
}

// setupLogging applies --verbose/--quiet to the console logger
func setupLogging() {
	util.SetVerbose(GetConfigBool("verbose"))
	util.SetQuiet(GetConfigBool("quiet"))
}

// eventLogLevel mirrors the console verbosity for the JSONL event log
func eventLogLevel() report.EventLevel {
	switch {
	case GetConfigBool("quiet"):
		return report.LevelWarning
	case GetConfigBool("verbose"):
		return report.LevelDebug
	default:
		return report.LevelInfo
	}
}

// openEventLogger opens the JSONL event log, or a no-op logger when the
// directory is unset
func openEventLogger() (*report.EventLogger, error) {
	dir := GetConfigString("event-log-dir", "")
	if dir == "" {
		return report.NullLogger(), nil
	}

	logger, err := report.NewEventLogger(dir, eventLogLevel())
	if err != nil {
		return nil, fmt.Errorf("failed to create event logger: %w", err)
	}
	util.DebugLog("Event log: %s", logger.Path())
	return logger, nil
}

// openStore opens the configured catalog database
func openStore(readOnly bool) (*store.Store, string, error) {
	dbPath := GetConfigString("db", "showcat.db")
	if dbPath == "" {
		return nil, "", fmt.Errorf("%w: database path is empty", util.ErrInvalidConfig)
	}

	util.DebugLog("Opening database: %s", dbPath)
	db, err := store.OpenWithOptions(dbPath, &store.OpenOptions{ReadOnly: readOnly})
	if err != nil {
		return nil, "", fmt.Errorf("failed to open database: %w", err)
	}
	return db, dbPath, nil
}

// newMaterializer wires the view materializer to console and event logging
func newMaterializer(db *store.Store, events *report.EventLogger) *view.Materializer {
	return view.New(db, &view.Options{
		Workers: GetConfigInt("concurrency", 0),
		OnDangling: func(seriesAlias string, ref catalog.SeasonRef) {
			util.WarnLog("Series %s: season reference #%d (%s) does not resolve, skipped",
				catalog.SeriesPath(seriesAlias), ref.Position, ref.ID)
			events.LogDangling(seriesAlias, ref.ID, ref.Position)
		},
	})
}
