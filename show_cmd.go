package main

import (
	"context"
	"fmt"
	"os"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/lingokids/lingo/internal/content"
)

var (
	showOffset int
	showWidth  int

	showCmd = &cobra.Command{
		Use:   "show <lang> <kind> [category]",
		Short: "Fetch and display lesson content",
		Long: paragraph(fmt.Sprintf("\n%s a batch of alphabet letters, words, songs or geography facts. "+
			"The first page is cached for the rest of the session; use --offset to load more.", keyword("Show"))),
		Example: paragraph("lingo show hi alphabet\nlingo show es words animals\nlingo show ja geo food --offset 6"),
		Args:    cobra.RangeArgs(2, 3),
		RunE:    runShow,
	}
)

func init() {
	showCmd.Flags().IntVar(&showOffset, "offset", 0, "number of items already seen")
	showCmd.Flags().IntVarP(&showWidth, "width", "w", 0, "word-wrap at width (0 follows the terminal)")
}

func runShow(cmd *cobra.Command, args []string) error {
	lang, err := content.LookupLanguage(args[0])
	if err != nil {
		return err
	}
	kinds := make([]string, len(content.Kinds))
	for i, k := range content.Kinds {
		kinds[i] = string(k)
	}
	k, err := matchOne("kind", args[1], kinds)
	if err != nil {
		return err
	}
	kind := content.Kind(k)

	var category string
	if choices := content.Categories(kind); len(choices) > 0 {
		category = choices[0]
		if len(args) == 3 {
			if category, err = matchOne("category", args[2], choices); err != nil {
				return err
			}
		}
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	store, _, err := newContentStore(cfg)
	if err != nil {
		return err
	}

	md, err := fetchMarkdown(cmd.Context(), store, lang, kind, category, showOffset)
	if err != nil {
		return err
	}
	return renderMarkdown(md)
}

func fetchMarkdown(ctx context.Context, store *content.Store, lang content.Language, kind content.Kind, category string, offset int) (string, error) {
	key := content.Key{Language: lang.Code, Category: category}
	switch kind {
	case content.KindAlphabet:
		items, err := store.Alphabet.FetchOrLoad(ctx, key, offset)
		return orEmpty(lettersMarkdown(lang, items), len(items), err)
	case content.KindWords:
		items, err := store.Words.FetchOrLoad(ctx, key, offset)
		return orEmpty(wordsMarkdown(lang, category, items), len(items), err)
	case content.KindSongs:
		items, err := store.Songs.FetchOrLoad(ctx, key, offset)
		return orEmpty(songsMarkdown(lang, category, items), len(items), err)
	case content.KindGeography:
		items, err := store.Geography.FetchOrLoad(ctx, key, offset)
		return orEmpty(geographyMarkdown(lang, category, items), len(items), err)
	default:
		return "", fmt.Errorf("%w: %s", content.ErrUnknownKind, kind)
	}
}

func orEmpty(md string, n int, err error) (string, error) {
	if err != nil {
		return "", err
	}
	if n == 0 {
		return "", content.ErrEmpty
	}
	return md, nil
}

func renderMarkdown(md string) error {
	isTerminal := term.IsTerminal(int(os.Stdout.Fd()))

	width := showWidth
	if width == 0 && isTerminal {
		if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
			width = min(w, 120)
		}
	}
	if width == 0 {
		width = 80
	}

	style := glamour.WithAutoStyle()
	if !isTerminal {
		style = glamour.WithStandardStyle("notty")
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithColorProfile(lipgloss.ColorProfile()),
		style,
		glamour.WithWordWrap(width),
		glamour.WithPreservedNewLines(),
	)
	if err != nil {
		return fmt.Errorf("unable to create renderer: %w", err)
	}
	out, err := r.Render(md)
	if err != nil {
		return fmt.Errorf("unable to render markdown: %w", err)
	}
	_, err = fmt.Fprint(os.Stdout, out)
	return err
}
