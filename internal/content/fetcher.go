package content

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/lingokids/lingo/internal/provider"
)

// Fetcher turns content requests into provider calls.
type Fetcher struct {
	gen    provider.Provider
	logger *log.Logger
}

// NewFetcher creates a fetcher backed by gen.
func NewFetcher(gen provider.Provider, logger *log.Logger) *Fetcher {
	if logger == nil {
		logger = log.Default()
	}
	return &Fetcher{gen: gen, logger: logger}
}

// Alphabet loads the full alphabet of key.Language; offset is ignored.
func (f *Fetcher) Alphabet(ctx context.Context, key Key, _ int) ([]Letter, error) {
	lang := describe(key.Language)
	prompt := fmt.Sprintf(
		"List every letter of the %s alphabet (%s script) in the traditional teaching order. "+
			"For each letter give a simple example word a 5 year old would know.",
		lang.Name, lang.Script)

	items, err := generate[Letter](ctx, f, prompt, letterSchema)
	return keep(items, func(l Letter) bool { return l.Symbol != "" }), err
}

// Words loads a batch of word-building challenges.
func (f *Fetcher) Words(ctx context.Context, key Key, offset int) ([]WordChallenge, error) {
	lang := describe(key.Language)
	prompt := fmt.Sprintf(
		"Give %d short, common %s words about %q for a word-building game. "+
			"Prefer words of two to five letters.%s",
		WordBatchSize, lang.Name, key.Category, skip(offset))

	items, err := generate[WordChallenge](ctx, f, prompt, wordSchema)
	return keep(items, func(w WordChallenge) bool { return w.Word != "" && len(w.Tiles) > 0 }), err
}

// Songs loads a batch of songs in the key.Category genre.
func (f *Fetcher) Songs(ctx context.Context, key Key, offset int) ([]Song, error) {
	lang := describe(key.Language)
	prompt := fmt.Sprintf(
		"Write %d original %s %s for young children, four to eight lines each, "+
			"with simple repeating words.%s",
		SongBatchSize, lang.Name, key.Category, skip(offset))

	items, err := generate[Song](ctx, f, prompt, songSchema)
	return keep(items, func(s Song) bool { return s.Title != "" && len(s.Lyrics) > 0 }), err
}

// Geography loads a batch of cultural facts for key.Category.
func (f *Fetcher) Geography(ctx context.Context, key Key, offset int) ([]GeoItem, error) {
	lang := describe(key.Language)
	prompt := fmt.Sprintf(
		"Share %d fun, true facts about %s from places where %s is spoken. "+
			"Spread them across different countries or regions.%s",
		GeoBatchSize, key.Category, lang.Name, skip(offset))

	items, err := generate[GeoItem](ctx, f, prompt, geoSchema)
	return keep(items, func(g GeoItem) bool { return g.Name != "" && g.Fact != "" }), err
}

// generate calls the provider and decodes {"items": [...]}. A payload of
// the wrong shape yields an empty result, not an error.
func generate[T any](ctx context.Context, f *Fetcher, prompt string, schema provider.Schema) ([]T, error) {
	raw, err := f.gen.GenerateStructured(ctx, prompt, schema)
	if err != nil {
		if provider.IsMalformed(err) {
			f.logger.Warn("discarding malformed content", "schema", schema.Name, "err", err)
			return nil, nil
		}
		return nil, err
	}

	var body struct {
		Items []T `json:"items"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		f.logger.Warn("discarding malformed content", "schema", schema.Name, "err", err)
		return nil, nil
	}
	return body.Items, nil
}

func keep[T any](items []T, ok func(T) bool) []T {
	out := items[:0]
	for _, it := range items {
		if ok(it) {
			out = append(out, it)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func skip(offset int) string {
	if offset <= 0 {
		return ""
	}
	return fmt.Sprintf(" The learner has already seen %d items, so avoid the most obvious choices.", offset)
}

func describe(code string) Language {
	if lang, err := LookupLanguage(code); err == nil {
		return lang
	}
	return Language{Code: code, Name: strings.ToUpper(code), Script: "native"}
}
