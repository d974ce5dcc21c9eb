package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// EventType represents the type of event
type EventType string

const (
	EventSeasonCreate EventType = "season_create"
	EventSeriesUpsert EventType = "series_upsert"
	EventDangling     EventType = "dangling"
	EventMaterialize  EventType = "materialize"
	EventImport       EventType = "import"
	EventPrune        EventType = "prune"
	EventError        EventType = "error"
)

// EventLevel represents the severity level
type EventLevel string

const (
	LevelDebug   EventLevel = "debug"
	LevelInfo    EventLevel = "info"
	LevelWarning EventLevel = "warning"
	LevelError   EventLevel = "error"
)

// levelPriority maps event levels to numeric priorities for comparison
var levelPriority = map[EventLevel]int{
	LevelDebug:   0,
	LevelInfo:    1,
	LevelWarning: 2,
	LevelError:   3,
}

// Event represents a single catalog event
type Event struct {
	Timestamp   time.Time         `json:"ts"`
	Level       EventLevel        `json:"level"`
	Event       EventType         `json:"event"`
	SeriesID    string            `json:"series_id,omitempty"`
	SeriesAlias string            `json:"series_alias,omitempty"`
	SeasonID    string            `json:"season_id,omitempty"`
	SeasonAlias string            `json:"season_alias,omitempty"`
	Path        string            `json:"path,omitempty"`
	Count       int               `json:"count,omitempty"`
	Duration    int64             `json:"duration_ms,omitempty"` // in milliseconds
	Error       string            `json:"error,omitempty"`
	Extra       map[string]string `json:"extra,omitempty"`
}

// EventLogger writes events to a JSONL file
type EventLogger struct {
	file     *os.File
	encoder  *json.Encoder
	mu       sync.Mutex
	path     string
	minLevel EventLevel
}

// NewEventLogger creates a new event logger with a minimum log level
// minLevel determines which events are written (e.g., LevelInfo skips LevelDebug)
func NewEventLogger(outputDir string, minLevel EventLevel) (*EventLogger, error) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	timestamp := time.Now().Format("20060102-150405")
	filename := fmt.Sprintf("events-%s.jsonl", timestamp)
	path := filepath.Join(outputDir, filename)

	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to create event log: %w", err)
	}

	return &EventLogger{
		file:     file,
		encoder:  json.NewEncoder(file),
		path:     path,
		minLevel: minLevel,
	}, nil
}

// Log writes an event to the JSONL file
func (l *EventLogger) Log(event *Event) error {
	if l == nil || l.file == nil {
		return nil // Silently ignore if logger not initialized
	}

	if levelPriority[event.Level] < levelPriority[l.minLevel] {
		return nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	if err := l.encoder.Encode(event); err != nil {
		return fmt.Errorf("failed to encode event: %w", err)
	}

	return nil
}

// LogSeasonCreate logs a persisted season
func (l *EventLogger) LogSeasonCreate(seasonID, seasonAlias string, episodes int) error {
	return l.Log(&Event{
		Level:       LevelDebug,
		Event:       EventSeasonCreate,
		SeasonID:    seasonID,
		SeasonAlias: seasonAlias,
		Count:       episodes,
	})
}

// LogSeriesUpsert logs a series upsert with the size of its new season list
func (l *EventLogger) LogSeriesUpsert(seriesID, seriesAlias, path string, seasons int) error {
	return l.Log(&Event{
		Level:       LevelInfo,
		Event:       EventSeriesUpsert,
		SeriesID:    seriesID,
		SeriesAlias: seriesAlias,
		Path:        path,
		Count:       seasons,
	})
}

// LogDangling logs a season reference dropped from a view
func (l *EventLogger) LogDangling(seriesAlias, seasonID string, position int) error {
	return l.Log(&Event{
		Level:       LevelWarning,
		Event:       EventDangling,
		SeriesAlias: seriesAlias,
		SeasonID:    seasonID,
		Extra: map[string]string{
			"position": fmt.Sprintf("%d", position),
		},
	})
}

// LogMaterialize logs one materialization run
func (l *EventLogger) LogMaterialize(filterAlias string, series int, duration time.Duration, err error) error {
	level := LevelInfo
	errMsg := ""
	if err != nil {
		level = LevelError
		errMsg = err.Error()
	}

	return l.Log(&Event{
		Level:       level,
		Event:       EventMaterialize,
		SeriesAlias: filterAlias,
		Count:       series,
		Duration:    duration.Milliseconds(),
		Error:       errMsg,
	})
}

// LogImport logs the outcome of applying a manifest
func (l *EventLogger) LogImport(source string, series int, duration time.Duration) error {
	return l.Log(&Event{
		Level:    LevelInfo,
		Event:    EventImport,
		Path:     source,
		Count:    series,
		Duration: duration.Milliseconds(),
	})
}

// LogPrune logs removal of orphan seasons
func (l *EventLogger) LogPrune(deleted int) error {
	return l.Log(&Event{
		Level: LevelInfo,
		Event: EventPrune,
		Count: deleted,
	})
}

// LogError logs an error event
func (l *EventLogger) LogError(event EventType, seriesAlias string, err error) error {
	return l.Log(&Event{
		Level:       LevelError,
		Event:       event,
		SeriesAlias: seriesAlias,
		Error:       err.Error(),
	})
}

// Close closes the event log file
func (l *EventLogger) Close() error {
	if l == nil || l.file == nil {
		return nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	return l.file.Close()
}

// Path returns the path to the event log file
func (l *EventLogger) Path() string {
	if l == nil {
		return ""
	}
	return l.path
}

// NullLogger returns a no-op event logger
func NullLogger() *EventLogger {
	return nil
}
