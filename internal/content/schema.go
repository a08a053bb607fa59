package content

import (
	"github.com/sashabaranov/go-openai/jsonschema"

	"github.com/lingokids/lingo/internal/provider"
)

func str(desc string) jsonschema.Definition {
	return jsonschema.Definition{Type: jsonschema.String, Description: desc}
}

func strList(desc string) jsonschema.Definition {
	return jsonschema.Definition{Type: jsonschema.Array, Description: desc, Items: &jsonschema.Definition{Type: jsonschema.String}}
}

func object(props map[string]jsonschema.Definition) jsonschema.Definition {
	required := make([]string, 0, len(props))
	for name := range props {
		required = append(required, name)
	}
	return jsonschema.Definition{
		Type:                 jsonschema.Object,
		Properties:           props,
		Required:             required,
		AdditionalProperties: false,
	}
}

// itemsSchema wraps an item definition in {"items": [...]}.
func itemsSchema(name, desc string, item jsonschema.Definition) provider.Schema {
	return provider.Schema{
		Name:        name,
		Description: desc,
		Definition: object(map[string]jsonschema.Definition{
			"items": {Type: jsonschema.Array, Items: &item},
		}),
	}
}

// Schema names, also used by tests to register canned responses.
const (
	SchemaLetters   = "alphabet_letters"
	SchemaWords     = "word_challenges"
	SchemaSongs     = "kids_songs"
	SchemaGeography = "geography_facts"
)

var (
	letterSchema = itemsSchema(SchemaLetters, "Letters of an alphabet in order", object(map[string]jsonschema.Definition{
		"symbol":         str("the letter as written"),
		"romanization":   str("latin transliteration"),
		"sound":          str("how it sounds, for an English-speaking child"),
		"exampleWord":    str("a simple word starting with the letter"),
		"exampleMeaning": str("English meaning of the example word"),
		"emoji":          str("one emoji illustrating the example word"),
	}))

	wordSchema = itemsSchema(SchemaWords, "Words to build from letter tiles", object(map[string]jsonschema.Definition{
		"word":         str("the word in the target script"),
		"romanization": str("latin transliteration"),
		"meaning":      str("English meaning"),
		"tiles":        strList("the letters or syllables that spell the word, in order"),
		"emoji":        str("one emoji for the word"),
	}))

	songSchema = itemsSchema(SchemaSongs, "Short children's songs", object(map[string]jsonschema.Definition{
		"title":       str("song title in the target language"),
		"lyrics":      strList("lyric lines in the target language"),
		"translation": strList("English translation, one line per lyric line"),
		"mood":        str("one word: calm, happy, silly or festive"),
	}))

	geoSchema = itemsSchema(SchemaGeography, "Cultural facts for children", object(map[string]jsonschema.Definition{
		"name":        str("name of the place, dish, festival or thing"),
		"region":      str("country or region"),
		"fact":        str("one or two sentences a child can understand"),
		"emoji":       str("one emoji"),
		"imagePrompt": str("a short prompt for a friendly illustration"),
	}))
)
