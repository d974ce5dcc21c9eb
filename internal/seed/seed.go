// Package seed generates random catalogs for demos and load tests.
package seed

import (
	"fmt"
	"math/rand/v2"

	"github.com/franz/showcat/internal/catalog"
	"github.com/franz/showcat/internal/manifest"
)

// Options bounds the generated catalog. Each count is drawn uniformly from
// [1, Max].
type Options struct {
	MaxSeries   int
	MaxSeasons  int
	MaxEpisodes int
	Seed        uint64
}

// DefaultOptions returns the bounds used by `showcat seed`
func DefaultOptions() *Options {
	return &Options{
		MaxSeries:   10,
		MaxSeasons:  10,
		MaxEpisodes: 30,
	}
}

// Generate builds a random manifest. Series i is titled "series i" with alias
// "seriesi"; every episode carries one file per quality tier and every
// series fills all image slots and a quote. The same seed yields the same
// manifest.
func Generate(opts *Options) (*manifest.Manifest, error) {
	if opts == nil {
		opts = DefaultOptions()
	}
	if opts.MaxSeries < 1 || opts.MaxSeasons < 1 || opts.MaxEpisodes < 1 {
		return nil, fmt.Errorf("seed bounds must be positive: %+v", *opts)
	}

	rng := rand.New(rand.NewPCG(opts.Seed, opts.Seed^0x9e3779b97f4a7c15))

	m := &manifest.Manifest{}
	for i := range between(rng, opts.MaxSeries) {
		series := manifest.SeriesEntry{
			Title:       fmt.Sprintf("series %d", i),
			Alias:       fmt.Sprintf("series%d", i),
			Description: fmt.Sprintf("description %d", i),
			Quote:       &manifest.QuoteEntry{Source: fmt.Sprintf("QuoteSource %d", i), Text: "test quote"},
			Images:      images(i),
		}

		for j := range between(rng, opts.MaxSeasons) {
			season := manifest.SeasonEntry{Num: intPtr(j), Alias: fmt.Sprintf("season%d", j)}
			for k := range between(rng, opts.MaxEpisodes) {
				season.Episodes = append(season.Episodes, manifest.EpisodeEntry{
					Num:   intPtr(k),
					Alias: fmt.Sprintf("episode%d", k),
					Files: files(),
				})
			}
			series.Seasons = append(series.Seasons, season)
		}

		m.Series = append(m.Series, series)
	}

	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}

func between(rng *rand.Rand, n int) int {
	return 1 + rng.IntN(n)
}

func images(i int) map[string]string {
	out := make(map[string]string)
	for _, slot := range catalog.ImageSlots() {
		out[string(slot)] = fmt.Sprintf("image path %d", i)
	}
	return out
}

func files() []manifest.FileEntry {
	var out []manifest.FileEntry
	for _, q := range catalog.Qualities() {
		out = append(out, manifest.FileEntry{
			Path:    fmt.Sprintf("file path %d", int(q)),
			Quality: manifest.QualityValue{Quality: q},
		})
	}
	return out
}

func intPtr(n int) *int {
	return &n
}
