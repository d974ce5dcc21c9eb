// Package catalog defines the media catalog entities, the enum registries
// for image slots and quality tiers, and the public path rules.
package catalog

import "time"

// Discriminator values stored in the products table
const (
	KindSeries = "Series"
	KindSeason = "Season"
)

// File is a playable file of an episode. Owned by its Episode.
type File struct {
	Path    string  `json:"path"`
	Quality Quality `json:"quality"`
}

// Episode is embedded in its Season and has no identity of its own
type Episode struct {
	Num   int    `json:"num"`   // zero-based
	Alias string `json:"alias"` // unique within the season
	Files []File `json:"files"`
}

// Quote is an optional citation attached to a Series
type Quote struct {
	Source string `json:"source"`
	Text   string `json:"text"`
}

// Season is stored as its own product and referenced from a Series by ID.
// A season is expected to be referenced by exactly one series.
type Season struct {
	ID        string
	Num       int // zero-based
	Alias     string
	Episodes  []Episode
	CreatedAt time.Time
}

// Series is the root catalog entity, identified by (Title, Alias)
type Series struct {
	ID          string
	Title       string
	Alias       string
	Description string
	Quote       *Quote
	Images      map[string]string
	Seasons     []string // season IDs in display order
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Image returns the URL stored for a slot
func (s *Series) Image(slot ImageSlot) (string, bool) {
	url, ok := s.Images[string(slot)]
	return url, ok
}

// SeriesKey is the natural key used for upserts
type SeriesKey struct {
	Title string
	Alias string
}

// SeasonInput describes a season to be created with its whole episode tree
type SeasonInput struct {
	Num      int
	Alias    string
	Episodes []Episode
}

// SeriesFields are the mutable fields set on every upsert
type SeriesFields struct {
	Description string
	Quote       *Quote
	Images      map[string]string
	Seasons     []SeasonInput
}

// SeasonRef is one entry of a series' season list after the join.
// Season is nil when the ID does not resolve to a stored Season.
type SeasonRef struct {
	Position int
	ID       string
	Season   *Season
}

// Dangling reports whether the reference failed to resolve
func (r SeasonRef) Dangling() bool {
	return r.Season == nil
}

// JoinedSeries is a Series together with its resolved season references
type JoinedSeries struct {
	Series Series
	Refs   []SeasonRef
}
