package view

import (
	"context"
	"fmt"
	"runtime"
	"strconv"

	"github.com/franz/showcat/internal/catalog"
	"github.com/sourcegraph/conc/iter"
)

const (
	seasonTitleSuffix  = " сезон"
	episodeTitlePrefix = "Эпизод "
)

// Source runs the series-to-seasons join in one round trip.
// An empty alias selects every series.
type Source interface {
	SeriesWithSeasons(ctx context.Context, alias string) ([]*catalog.JoinedSeries, error)
}

// Filter selects which series to materialize. The zero value selects all.
type Filter struct {
	Alias string
}

// DanglingFunc is told about every season reference dropped from a view
type DanglingFunc func(seriesAlias string, ref catalog.SeasonRef)

// Options configures a Materializer
type Options struct {
	Workers    int          // Series projected in parallel (0 = GOMAXPROCS)
	OnDangling DanglingFunc // Called in output order after projection
}

// Materializer projects joined series into SeriesView documents
type Materializer struct {
	source     Source
	workers    int
	onDangling DanglingFunc
}

// New creates a materializer reading from source
func New(source Source, opts *Options) *Materializer {
	if opts == nil {
		opts = &Options{}
	}
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &Materializer{
		source:     source,
		workers:    workers,
		onDangling: opts.OnDangling,
	}
}

type projection struct {
	view     SeriesView
	dangling []catalog.SeasonRef
}

// Materialize returns the view of every series matched by filter, in
// storage order. A file with an unknown quality code fails the whole call
// with an *IntegrityError; dangling season references are dropped.
func (m *Materializer) Materialize(ctx context.Context, filter Filter) ([]SeriesView, error) {
	joined, err := m.source.SeriesWithSeasons(ctx, filter.Alias)
	if err != nil {
		return nil, fmt.Errorf("failed to load series: %w", err)
	}

	mapper := iter.Mapper[*catalog.JoinedSeries, projection]{MaxGoroutines: m.workers}
	projected, err := mapper.MapErr(joined, func(js **catalog.JoinedSeries) (projection, error) {
		if err := ctx.Err(); err != nil {
			return projection{}, err
		}
		return project(*js)
	})
	if err != nil {
		return nil, err
	}

	views := make([]SeriesView, 0, len(projected))
	for i, p := range projected {
		if m.onDangling != nil {
			for _, ref := range p.dangling {
				m.onDangling(joined[i].Series.Alias, ref)
			}
		}
		views = append(views, p.view)
	}

	return views, nil
}

// MaterializeOne returns the view of the first series with alias, or nil
// when there is none. An empty alias matches nothing.
func (m *Materializer) MaterializeOne(ctx context.Context, alias string) (*SeriesView, error) {
	if alias == "" {
		return nil, nil
	}
	views, err := m.Materialize(ctx, Filter{Alias: alias})
	if err != nil {
		return nil, err
	}
	if len(views) == 0 {
		return nil, nil
	}
	return &views[0], nil
}

func project(js *catalog.JoinedSeries) (projection, error) {
	s := &js.Series
	v := SeriesView{
		Path:        catalog.SeriesPath(s.Alias),
		Title:       s.Title,
		Description: s.Description,
		Cover:       image(s, catalog.ImageCover),
		Slide: Slide{
			Background: image(s, catalog.ImageBackground),
			Foreground: image(s, catalog.ImageForeground),
		},
		Seasons: make([]SeasonView, 0, len(js.Refs)),
	}
	if s.Quote != nil {
		text, source := s.Quote.Text, s.Quote.Source
		v.Quote = &text
		v.QuoteSource = &source
	}

	var dangling []catalog.SeasonRef
	for _, ref := range js.Refs {
		if ref.Dangling() {
			dangling = append(dangling, ref)
			continue
		}
		season, err := projectSeason(s.Alias, ref.Season)
		if err != nil {
			return projection{}, err
		}
		v.Seasons = append(v.Seasons, season)
	}

	return projection{view: v, dangling: dangling}, nil
}

func projectSeason(seriesAlias string, season *catalog.Season) (SeasonView, error) {
	sv := SeasonView{
		Path:     catalog.SeasonPath(seriesAlias, season.Alias),
		Title:    SeasonTitle(season.Num),
		Episodes: make([]EpisodeView, 0, len(season.Episodes)),
	}

	for _, ep := range season.Episodes {
		ev := EpisodeView{
			Path:  catalog.EpisodePath(seriesAlias, season.Alias, ep.Alias),
			Title: EpisodeTitle(ep.Num),
			Files: make([]FileView, 0, len(ep.Files)),
		}
		for i, f := range ep.Files {
			label, err := catalog.QualityLabel(int(f.Quality))
			if err != nil {
				return SeasonView{}, &IntegrityError{
					SeriesAlias:  seriesAlias,
					SeasonAlias:  season.Alias,
					EpisodeAlias: ep.Alias,
					FileIndex:    i,
					FilePath:     f.Path,
					Err:          err,
				}
			}
			ev.Files = append(ev.Files, FileView{Path: f.Path, Label: label, Quality: int(f.Quality)})
		}
		sv.Episodes = append(sv.Episodes, ev)
	}

	return sv, nil
}

func image(s *catalog.Series, slot catalog.ImageSlot) *string {
	url, ok := s.Image(slot)
	if !ok {
		return nil
	}
	return &url
}

// SeasonTitle renders a zero-based season number for display
func SeasonTitle(num int) string {
	return strconv.Itoa(num+1) + seasonTitleSuffix
}

// EpisodeTitle renders a zero-based episode number for display
func EpisodeTitle(num int) string {
	return episodeTitlePrefix + strconv.Itoa(num+1)
}
