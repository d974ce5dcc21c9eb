package catalog

const seriesRoot = "/series/"

// SeriesPath returns the public path of a series.
// Aliases are expected to be path-safe already; nothing is escaped.
func SeriesPath(seriesAlias string) string {
	return seriesRoot + seriesAlias
}

// SeasonPath returns the public path of a season within its series
func SeasonPath(seriesAlias, seasonAlias string) string {
	return SeriesPath(seriesAlias) + "/" + seasonAlias
}

// EpisodePath returns the public path of an episode within its season
func EpisodePath(seriesAlias, seasonAlias, episodeAlias string) string {
	return SeasonPath(seriesAlias, seasonAlias) + "/" + episodeAlias
}
