package main

import (
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"

	"github.com/lingokids/lingo/internal/content"
	"github.com/lingokids/lingo/internal/prefetch"
	"github.com/lingokids/lingo/ui"
)

var (
	prefetchCategories []string
	prefetchDelay      time.Duration

	prefetchCmd = &cobra.Command{
		Use:   "prefetch <lang>",
		Short: "Load geography categories in the background",
		Long: paragraph(fmt.Sprintf("\n%s geography categories one at a time, pausing between loads. "+
			"In a terminal a status board shows each category; press enter to unlock one right away.", keyword("Prefetch"))),
		Example: paragraph("lingo prefetch fr\nlingo prefetch hi --categories food,music --delay 2s"),
		Args:    cobra.ExactArgs(1),
		RunE:    runPrefetch,
	}
)

func init() {
	prefetchCmd.Flags().StringSliceVarP(&prefetchCategories, "categories", "c", nil, "categories to load, in order (default all)")
	prefetchCmd.Flags().DurationVar(&prefetchDelay, "delay", prefetch.DefaultDelay, "pause between two loads")
	_ = viper.BindPFlag("prefetch.delay", prefetchCmd.Flags().Lookup("delay"))
}

func runPrefetch(cmd *cobra.Command, args []string) error {
	lang, err := content.LookupLanguage(args[0])
	if err != nil {
		return err
	}
	categories := content.GeographyCategories
	if len(prefetchCategories) > 0 {
		if categories, err = matchAll("category", prefetchCategories, content.GeographyCategories); err != nil {
			return err
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

	q := prefetch.New(store.Geography, lang.Code, categories,
		prefetch.WithDelay(cfg.Prefetch.Delay),
		prefetch.WithLogger(log.Default()),
	)

	if term.IsTerminal(int(os.Stdout.Fd())) {
		return runBoard(cmd, q)
	}

	out := cmd.OutOrStdout()
	q.Subscribe(func(u prefetch.Update) {
		line := fmt.Sprintf("%s/%s %s", u.Language, u.Category, u.Status)
		if u.Err != nil {
			line += ": " + u.Err.Error()
		}
		fmt.Fprintln(out, line)
	})
	if err := q.Run(cmd.Context()); err != nil {
		return err
	}
	for _, cs := range q.Snapshot() {
		if cs.Status != prefetch.StatusReady {
			return fmt.Errorf("%s is still %s", cs.Category, cs.Status)
		}
	}
	return nil
}

func runBoard(cmd *cobra.Command, q *prefetch.Queue) error {
	// Read environment to get board settings
	cfg, err := env.ParseAs[ui.Config]()
	if err != nil {
		return fmt.Errorf("error parsing config: %v", err)
	}
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
		cfg.Width = uint(min(w, 100)) //nolint:gosec
	}

	board := ui.NewBoard(cmd.Context(), cfg, q, nil)
	if _, err := ui.NewProgram(cfg, board).Run(); err != nil {
		return fmt.Errorf("unable to run tui program: %w", err)
	}
	return board.Err()
}
