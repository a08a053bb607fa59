package main

import (
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/lingokids/lingo/internal/account"
)

// practiceXP is awarded for a pronunciation scoring at least practicePass.
const (
	practiceXP   = 10
	practicePass = 80
)

var practiceCmd = &cobra.Command{
	Use:   "practice <recording> <reference>",
	Short: "Score a pronunciation attempt",
	Long: paragraph(fmt.Sprintf("\n%s a recording against the phrase it should say. The recording is a WAV file "+
		"or raw 16-bit mono PCM at 24kHz. A good attempt earns XP for the active profile.", keyword("Score"))),
	Example: paragraph("lingo practice hello.wav नमस्ते"),
	Args:    cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		recording, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("unable to read recording: %w", err)
		}
		reference := args[1]

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		p, err := newProvider(cfg)
		if err != nil {
			return err
		}

		eval, err := p.EvaluateSpeech(cmd.Context(), recording, reference)
		if err != nil {
			return err
		}

		score := warning(fmt.Sprintf("%d", eval.Score))
		if eval.Score >= practicePass {
			score = success(fmt.Sprintf("%d", eval.Score))
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%s %s/100\n", keyword("Score:"), score)
		fmt.Fprintf(out, "%s %s\n", faint("Heard:"), eval.Heard)
		fmt.Fprintln(out, eval.Comment)

		accounts, kv, err := openAccounts(cmd.Context(), cfg)
		if err != nil {
			log.Warn("progress not saved", "err", err)
			return nil
		}
		defer kv.Close() //nolint:errcheck

		profile, ok := accounts.ActiveProfile()
		if !ok {
			return nil
		}
		history := append(accounts.LoadHistory(cmd.Context(), profile.ID),
			account.Message{Role: "learner", Text: eval.Heard, At: time.Now()},
			account.Message{Role: "coach", Text: fmt.Sprintf("%d: %s", eval.Score, eval.Comment), At: time.Now()},
		)
		if err := accounts.SaveHistory(cmd.Context(), profile.ID, history); err != nil {
			log.Warn("practice history not saved", "err", err)
		}

		if eval.Score < practicePass {
			return nil
		}
		if _, err := accounts.CompleteWord(cmd.Context(), profile.ID, reference); err != nil {
			return err
		}
		updated, err := accounts.AddXP(cmd.Context(), profile.ID, practiceXP)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "%s %s now has %d XP\n", success("+"+fmt.Sprint(practiceXP)), updated.Name, updated.XP)
		return nil
	},
}
