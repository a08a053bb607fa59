// Package content holds the generated learning material and the caches
// that keep it for the life of the process.
package content

import "fmt"

// Kind names a family of generated content.
type Kind string

const (
	KindAlphabet  Kind = "alphabet"
	KindWords     Kind = "words"
	KindSongs     Kind = "songs"
	KindGeography Kind = "geography"
)

// Kinds lists every content kind.
var Kinds = []Kind{KindAlphabet, KindWords, KindSongs, KindGeography}

// Key identifies one cache entry. Category is empty for the alphabet.
type Key struct {
	Language string
	Category string
}

func (k Key) String() string {
	if k.Category == "" {
		return k.Language
	}
	return fmt.Sprintf("%s/%s", k.Language, k.Category)
}

// Letter is one character of a script, with an example word.
type Letter struct {
	Symbol         string `json:"symbol"`
	Romanization   string `json:"romanization"`
	Sound          string `json:"sound"`
	ExampleWord    string `json:"exampleWord"`
	ExampleMeaning string `json:"exampleMeaning"`
	Emoji          string `json:"emoji"`
}

// WordChallenge is a word the learner builds from letter tiles.
type WordChallenge struct {
	Word         string   `json:"word"`
	Romanization string   `json:"romanization"`
	Meaning      string   `json:"meaning"`
	Tiles        []string `json:"tiles"`
	Emoji        string   `json:"emoji"`
}

// Song is a short children's song with a line-by-line translation.
type Song struct {
	Title       string   `json:"title"`
	Lyrics      []string `json:"lyrics"`
	Translation []string `json:"translation"`
	Mood        string   `json:"mood"`
}

// GeoItem is a cultural fact about places where the language is spoken.
type GeoItem struct {
	Name        string `json:"name"`
	Region      string `json:"region"`
	Fact        string `json:"fact"`
	Emoji       string `json:"emoji"`
	ImagePrompt string `json:"imagePrompt"`
}
