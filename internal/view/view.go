// Package view materializes the catalog into the nested, presentation-ready
// document served to pages: series joined to their seasons, with public
// paths, display titles and quality labels resolved.
package view

// SeriesView is the materialized form of one series
type SeriesView struct {
	Path        string       `json:"path"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Cover       *string      `json:"cover,omitempty"`
	Quote       *string      `json:"quote,omitempty"`
	QuoteSource *string      `json:"quote_source,omitempty"`
	Slide       Slide        `json:"slide"`
	Seasons     []SeasonView `json:"seasons"`
}

// Slide holds the layered slideshow images
type Slide struct {
	Background *string `json:"background,omitempty"`
	Foreground *string `json:"foreground,omitempty"`
}

type SeasonView struct {
	Path     string        `json:"path"`
	Title    string        `json:"title"`
	Episodes []EpisodeView `json:"episodes"`
}

type EpisodeView struct {
	Path  string     `json:"path"`
	Title string     `json:"title"`
	Files []FileView `json:"files"`
}

type FileView struct {
	Path    string `json:"path"`
	Label   string `json:"label"`
	Quality int    `json:"quality"`
}
