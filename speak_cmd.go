package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/lingokids/lingo/internal/config"
	"github.com/lingokids/lingo/internal/provider"
	"github.com/lingokids/lingo/internal/vault"
)

var (
	speakVoice string

	speakCmd = &cobra.Command{
		Use:   "speak <text>",
		Short: "Say a phrase through the audio vault",
		Long: paragraph(fmt.Sprintf("\n%s a phrase aloud. Phrases are baked once by the provider and kept in the vault; "+
			"when the provider asks us to slow down the bakery rests and a local voice is used if one is configured.", keyword("Speak"))),
		Example: paragraph("lingo speak नमस्ते\nlingo speak \"buenos días\" --voice shimmer"),
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			p, err := newProvider(cfg)
			if err != nil {
				return err
			}
			v, err := openVault(cfg, p)
			if err != nil {
				return err
			}
			defer v.Close() //nolint:errcheck

			errOut := cmd.ErrOrStderr()
			v.Subscribe(func(s vault.Status) {
				fmt.Fprintln(errOut, faint("bakery: "+s.String()))
			})

			voice := speakVoice
			if !cmd.Flags().Changed("voice") {
				voice = profileVoice(cmd, cfg)
			}

			text := strings.Join(args, " ")
			outcome, err := v.Speak(cmd.Context(), text, voice)
			if err != nil {
				return err
			}
			if err := v.Wait(cmd.Context()); err != nil {
				return err
			}

			line := fmt.Sprintf("%s %s (%s, %s)", success("♪"), text, outcome.Source, outcome.Duration.Round(time.Millisecond))
			if until := v.RestingUntil(); !until.IsZero() {
				line += warning(fmt.Sprintf(" resting for %s", time.Until(until).Round(time.Second)))
			}
			fmt.Fprintln(cmd.OutOrStdout(), line)
			return nil
		},
	}
)

// profileVoice returns the active profile's voice, or the default.
func profileVoice(cmd *cobra.Command, cfg config.Config) string {
	accounts, kv, err := openAccounts(cmd.Context(), cfg)
	if err != nil {
		return provider.DefaultVoice
	}
	defer kv.Close() //nolint:errcheck
	if p, ok := accounts.ActiveProfile(); ok && p.Voice != "" {
		return p.Voice
	}
	return provider.DefaultVoice
}

func init() {
	speakCmd.Flags().StringVar(&speakVoice, "voice", provider.DefaultVoice, fmt.Sprintf("provider voice (%s)", strings.Join(provider.Voices, ", ")))
}
