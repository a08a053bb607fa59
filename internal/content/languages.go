package content

import (
	"fmt"
	"sort"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// Language is a language the app can teach.
type Language struct {
	Code   string
	Name   string
	Script string
}

// Languages is the set of supported learning languages, by base code.
var Languages = map[string]Language{
	"ar": {Code: "ar", Name: "Arabic", Script: "Arabic"},
	"de": {Code: "de", Name: "German", Script: "Latin"},
	"es": {Code: "es", Name: "Spanish", Script: "Latin"},
	"fr": {Code: "fr", Name: "French", Script: "Latin"},
	"hi": {Code: "hi", Name: "Hindi", Script: "Devanagari"},
	"it": {Code: "it", Name: "Italian", Script: "Latin"},
	"ja": {Code: "ja", Name: "Japanese", Script: "Hiragana"},
	"ko": {Code: "ko", Name: "Korean", Script: "Hangul"},
	"pt": {Code: "pt", Name: "Portuguese", Script: "Latin"},
	"ru": {Code: "ru", Name: "Russian", Script: "Cyrillic"},
	"sw": {Code: "sw", Name: "Swahili", Script: "Latin"},
	"zh": {Code: "zh", Name: "Mandarin Chinese", Script: "Han"},
}

// LookupLanguage parses a BCP 47 tag and returns the matching supported
// language. Regional variants resolve to their base ("es-MX" → "es").
// Unknown but well-formed tags are accepted with a generated name.
func LookupLanguage(code string) (Language, error) {
	tag, err := language.Parse(code)
	if err != nil {
		return Language{}, fmt.Errorf("invalid language code %q: %w", code, err)
	}
	base, _ := tag.Base()
	if lang, ok := Languages[base.String()]; ok {
		return lang, nil
	}

	name := display.English.Languages().Name(tag)
	if name == "" {
		name = base.String()
	}
	script, _ := tag.Script()
	return Language{Code: base.String(), Name: name, Script: script.String()}, nil
}

// LanguageCodes returns the supported codes in sorted order.
func LanguageCodes() []string {
	codes := make([]string, 0, len(Languages))
	for code := range Languages {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}
