package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/lingokids/lingo/internal/content"
	"github.com/lingokids/lingo/internal/session"
)

var bootstrapCmd = &cobra.Command{
	Use:     "bootstrap <lang>",
	Short:   "Load a starter bundle for a language",
	Long:    paragraph(fmt.Sprintf("\n%s the alphabet, a word batch, a song batch and a geography batch in parallel.", keyword("Load"))),
	Example: paragraph("lingo bootstrap hi\nlingo bootstrap es-MX"),
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		// reject bad codes before asking for an API key
		if _, err := content.LookupLanguage(args[0]); err != nil {
			return fmt.Errorf("%w: %v", session.ErrInvalidLanguage, err)
		}

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		store, _, err := newContentStore(cfg)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		b := session.New(store, session.WithLogger(log.Default()))
		report, err := b.Bootstrap(cmd.Context(), args[0], func(msg string, pct int) {
			fmt.Fprintf(out, "%s %s\n", faint(fmt.Sprintf("%3d%%", pct)), msg)
		})
		if err != nil {
			return err
		}

		loaded := make([]string, len(report.Loaded))
		for i, k := range report.Loaded {
			loaded[i] = string(k)
		}
		fmt.Fprintf(out, "\n%s %s in %s\n", success("✓"), strings.Join(loaded, ", "), report.Elapsed.Round(time.Millisecond))
		for kind, err := range report.Failed {
			fmt.Fprintf(out, "%s %s: %v\n", warning("!"), kind, err)
		}
		return nil
	},
}
