package main

import (
	"fmt"
	"strings"

	"github.com/lingokids/lingo/internal/content"
)

func lettersMarkdown(lang content.Language, letters []content.Letter) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s alphabet\n\n", lang.Name)
	b.WriteString("| Letter | Sounds like | Example |\n|---|---|---|\n")
	for _, l := range letters {
		sym := l.Symbol
		if l.Romanization != "" {
			sym += " (" + l.Romanization + ")"
		}
		fmt.Fprintf(&b, "| %s | %s | %s %s, %s |\n", sym, l.Sound, l.Emoji, l.ExampleWord, l.ExampleMeaning)
	}
	return b.String()
}

func wordsMarkdown(lang content.Language, category string, words []content.WordChallenge) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s words: %s\n\n", lang.Name, category)
	for _, w := range words {
		fmt.Fprintf(&b, "## %s %s\n\n", w.Emoji, w.Word)
		if w.Romanization != "" {
			fmt.Fprintf(&b, "*%s*, ", w.Romanization)
		}
		fmt.Fprintf(&b, "%s\n\nTiles: `%s`\n\n", w.Meaning, strings.Join(w.Tiles, "` `"))
	}
	return b.String()
}

func songsMarkdown(lang content.Language, category string, songs []content.Song) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s songs: %s\n\n", lang.Name, category)
	for _, s := range songs {
		fmt.Fprintf(&b, "## %s\n\n", s.Title)
		if s.Mood != "" {
			fmt.Fprintf(&b, "*%s*\n\n", s.Mood)
		}
		for i, line := range s.Lyrics {
			fmt.Fprintf(&b, "> %s", line)
			if i < len(s.Translation) && s.Translation[i] != "" {
				fmt.Fprintf(&b, "  \n> _%s_", s.Translation[i])
			}
			b.WriteString("\n>\n")
		}
		b.WriteString("\n")
	}
	return b.String()
}

func geographyMarkdown(lang content.Language, category string, items []content.GeoItem) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Around the %s-speaking world: %s\n\n", lang.Name, category)
	for _, g := range items {
		fmt.Fprintf(&b, "## %s %s\n\n", g.Emoji, g.Name)
		if g.Region != "" {
			fmt.Fprintf(&b, "*%s*\n\n", g.Region)
		}
		fmt.Fprintf(&b, "%s\n\n", g.Fact)
	}
	return b.String()
}
