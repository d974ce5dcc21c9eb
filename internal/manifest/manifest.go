// Package manifest reads YAML catalog manifests and turns them into store
// upserts.
package manifest

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"go.yaml.in/yaml/v3"

	"github.com/franz/showcat/internal/catalog"
	"github.com/franz/showcat/internal/util"
)

// Manifest is the top-level YAML document
type Manifest struct {
	Series []SeriesEntry `yaml:"series"`
}

// SeriesEntry describes one series and its full season list
type SeriesEntry struct {
	Title       string            `yaml:"title"`
	Alias       string            `yaml:"alias,omitempty"`
	Description string            `yaml:"description,omitempty"`
	Quote       *QuoteEntry       `yaml:"quote,omitempty"`
	Images      map[string]string `yaml:"images,omitempty"`
	Seasons     []SeasonEntry     `yaml:"seasons,omitempty"`
}

// QuoteEntry is an attributed quotation
type QuoteEntry struct {
	Source string `yaml:"source"`
	Text   string `yaml:"text"`
}

// SeasonEntry describes a season. Num defaults to the entry's position.
type SeasonEntry struct {
	Num      *int           `yaml:"num,omitempty"`
	Alias    string         `yaml:"alias,omitempty"`
	Episodes []EpisodeEntry `yaml:"episodes,omitempty"`
}

// EpisodeEntry describes an episode. Num defaults to the entry's position.
type EpisodeEntry struct {
	Num   *int        `yaml:"num,omitempty"`
	Alias string      `yaml:"alias,omitempty"`
	Files []FileEntry `yaml:"files,omitempty"`
}

// FileEntry is a media file; quality may be a label (HD, full-hd) or a code
type FileEntry struct {
	Path    string       `yaml:"path"`
	Quality QualityValue `yaml:"quality"`
}

// QualityValue accepts either a quality label or its integer code
type QualityValue struct {
	catalog.Quality
}

// UnmarshalYAML implements yaml.Unmarshaler
func (q *QualityValue) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: quality must be a scalar", node.Line)
	}

	if node.ShortTag() == "!!int" {
		code, err := strconv.Atoi(node.Value)
		if err != nil {
			return fmt.Errorf("line %d: %w", node.Line, err)
		}
		if _, err := catalog.QualityLabel(code); err != nil {
			return fmt.Errorf("line %d: %w", node.Line, err)
		}
		q.Quality = catalog.Quality(code)
		return nil
	}

	parsed, err := catalog.ParseQuality(node.Value)
	if err != nil {
		return fmt.Errorf("line %d: %w", node.Line, err)
	}
	q.Quality = parsed
	return nil
}

// MarshalYAML writes the label form
func (q QualityValue) MarshalYAML() (interface{}, error) {
	return q.Quality.Label()
}

// Entry is a validated series ready to be upserted
type Entry struct {
	Key    catalog.SeriesKey
	Fields catalog.SeriesFields
}

// Load reads and validates a manifest file
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates a manifest document. Unknown keys are rejected.
func Parse(data []byte) (*Manifest, error) {
	var m Manifest

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&m); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: %w", util.ErrInvalidManifest, err)
	}

	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// Validate fills derived aliases and checks required fields. Unknown image
// slots are kept but reported, since views never read them.
func (m *Manifest) Validate() error {
	seen := make(map[catalog.SeriesKey]int)

	for i := range m.Series {
		s := &m.Series[i]
		if s.Title == "" {
			return fmt.Errorf("%w: series #%d has no title", util.ErrInvalidManifest, i)
		}
		if s.Alias == "" {
			s.Alias = Slugify(s.Title)
		}
		if s.Alias == "" {
			return fmt.Errorf("%w: series %q has no usable alias", util.ErrInvalidManifest, s.Title)
		}

		key := catalog.SeriesKey{Title: s.Title, Alias: s.Alias}
		if prev, ok := seen[key]; ok {
			return fmt.Errorf("%w: series #%d repeats %q/%q from #%d",
				util.ErrInvalidManifest, i, s.Title, s.Alias, prev)
		}
		seen[key] = i

		for slot := range s.Images {
			if !catalog.ImageSlot(slot).Valid() {
				util.WarnLog("Series %s: image slot %q is not shown in views", s.Alias, slot)
			}
		}

		if err := validateSeasons(s); err != nil {
			return err
		}
	}

	return nil
}

func validateSeasons(s *SeriesEntry) error {
	aliases := make(map[string]bool, len(s.Seasons))
	for i := range s.Seasons {
		season := &s.Seasons[i]
		if season.Num == nil {
			n := i
			season.Num = &n
		}
		if *season.Num < 0 {
			return fmt.Errorf("%w: %s season #%d has negative num %d",
				util.ErrInvalidManifest, catalog.SeriesPath(s.Alias), i, *season.Num)
		}
		if season.Alias == "" {
			season.Alias = fmt.Sprintf("season-%d", *season.Num+1)
		}
		if aliases[season.Alias] {
			return fmt.Errorf("%w: %s has two seasons aliased %q",
				util.ErrInvalidManifest, catalog.SeriesPath(s.Alias), season.Alias)
		}
		aliases[season.Alias] = true

		episodes := make(map[string]bool, len(season.Episodes))
		for j := range season.Episodes {
			ep := &season.Episodes[j]
			if ep.Num == nil {
				n := j
				ep.Num = &n
			}
			if *ep.Num < 0 {
				return fmt.Errorf("%w: %s episode #%d has negative num %d",
					util.ErrInvalidManifest, catalog.SeasonPath(s.Alias, season.Alias), j, *ep.Num)
			}
			if ep.Alias == "" {
				ep.Alias = fmt.Sprintf("episode-%d", *ep.Num+1)
			}
			if episodes[ep.Alias] {
				return fmt.Errorf("%w: %s has two episodes aliased %q",
					util.ErrInvalidManifest, catalog.SeasonPath(s.Alias, season.Alias), ep.Alias)
			}
			episodes[ep.Alias] = true

			for k, f := range ep.Files {
				if f.Path == "" {
					return fmt.Errorf("%w: %s file #%d has no path", util.ErrInvalidManifest,
						catalog.EpisodePath(s.Alias, season.Alias, ep.Alias), k)
				}
			}
		}
	}
	return nil
}

// Entries converts a validated manifest into store inputs, in document order
func (m *Manifest) Entries() []Entry {
	entries := make([]Entry, 0, len(m.Series))
	for _, s := range m.Series {
		fields := catalog.SeriesFields{
			Description: s.Description,
			Images:      s.Images,
			Seasons:     make([]catalog.SeasonInput, 0, len(s.Seasons)),
		}
		if s.Quote != nil {
			fields.Quote = &catalog.Quote{Source: s.Quote.Source, Text: s.Quote.Text}
		}

		for _, season := range s.Seasons {
			in := catalog.SeasonInput{
				Num:      deref(season.Num),
				Alias:    season.Alias,
				Episodes: make([]catalog.Episode, 0, len(season.Episodes)),
			}
			for _, ep := range season.Episodes {
				episode := catalog.Episode{
					Num:   deref(ep.Num),
					Alias: ep.Alias,
					Files: make([]catalog.File, 0, len(ep.Files)),
				}
				for _, f := range ep.Files {
					episode.Files = append(episode.Files, catalog.File{Path: f.Path, Quality: f.Quality.Quality})
				}
				in.Episodes = append(in.Episodes, episode)
			}
			fields.Seasons = append(fields.Seasons, in)
		}

		entries = append(entries, Entry{
			Key:    catalog.SeriesKey{Title: s.Title, Alias: s.Alias},
			Fields: fields,
		})
	}
	return entries
}

func deref(n *int) int {
	if n == nil {
		return 0
	}
	return *n
}
