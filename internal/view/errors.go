package view

import (
	"fmt"

	"github.com/franz/showcat/internal/catalog"
)

// IntegrityError ties a label resolution failure to the offending file
type IntegrityError struct {
	SeriesAlias  string
	SeasonAlias  string
	EpisodeAlias string
	FileIndex    int
	FilePath     string
	Err          error
}

func (e *IntegrityError) Error() string {
	return fmt.Sprintf("data integrity: %s file #%d (%s): %v",
		catalog.EpisodePath(e.SeriesAlias, e.SeasonAlias, e.EpisodeAlias),
		e.FileIndex, e.FilePath, e.Err)
}

func (e *IntegrityError) Unwrap() error {
	return e.Err
}
