package main

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/lingokids/lingo/internal/account"
	"github.com/lingokids/lingo/internal/provider"
)

var (
	profileAvatar string
	profileVoiceF string
	profileGender string

	profileCmd = &cobra.Command{
		Use:   "profile",
		Short: "Manage the learners of the signed-in account",
		Args:  cobra.NoArgs,
	}

	profileAddCmd = &cobra.Command{
		Use:     "add <name>",
		Short:   "Create a profile and make it active",
		Example: paragraph("lingo profile add Maya --avatar 🐼 --voice shimmer"),
		Args:    cobra.ExactArgs(1),
		RunE: withProfileArgs(func(ctx context.Context, s *account.Store, out io.Writer, args []string) error {
			p, err := s.CreateProfile(ctx, account.Profile{
				Name:   args[0],
				Avatar: profileAvatar,
				Voice:  profileVoiceF,
				Gender: profileGender,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "%s %s %s is ready to explore  %s\n", success("✓"), p.Avatar, p.Name, faint(p.ID))
			return nil
		}),
	}

	profileEditCmd = &cobra.Command{
		Use:   "edit <id> [name]",
		Short: "Change a profile's name, avatar, voice or gender",
		Args:  cobra.RangeArgs(1, 2),
		RunE: withProfileArgs(func(ctx context.Context, s *account.Store, out io.Writer, args []string) error {
			var u account.ProfileUpdate
			if len(args) == 2 {
				u.Name = &args[1]
			}
			if profileAvatar != "" {
				u.Avatar = &profileAvatar
			}
			if profileVoiceF != "" {
				u.Voice = &profileVoiceF
			}
			if profileGender != "" {
				u.Gender = &profileGender
			}
			p, err := s.UpdateProfile(ctx, args[0], u)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "%s %s %s (%s voice)\n", success("✓"), p.Avatar, p.Name, p.Voice)
			return nil
		}),
	}

	profileRmCmd = &cobra.Command{
		Use:   "rm <id>",
		Short: "Delete a profile and its history",
		Args:  cobra.ExactArgs(1),
		RunE: withProfileArgs(func(ctx context.Context, s *account.Store, out io.Writer, args []string) error {
			if err := s.DeleteProfile(ctx, args[0]); err != nil {
				return err
			}
			fmt.Fprintln(out, "Profile removed")
			return nil
		}),
	}

	profileUseCmd = &cobra.Command{
		Use:   "use <id>",
		Short: "Switch the active profile",
		Args:  cobra.ExactArgs(1),
		RunE: withProfileArgs(func(ctx context.Context, s *account.Store, out io.Writer, args []string) error {
			p, err := s.SelectProfile(ctx, args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Hi %s %s!\n", p.Name, p.Avatar)
			return nil
		}),
	}

	profileXPCmd = &cobra.Command{
		Use:   "xp <id> <amount>",
		Short: "Award XP to a profile",
		Args:  cobra.ExactArgs(2),
		RunE: withProfileArgs(func(ctx context.Context, s *account.Store, out io.Writer, args []string) error {
			amount, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid amount %q: %w", args[1], err)
			}
			p, err := s.AddXP(ctx, args[0], amount)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "%s now has %d XP\n", p.Name, p.XP)
			return nil
		}),
	}

	profileDoneCmd = &cobra.Command{
		Use:   "done <id> <word>",
		Short: "Mark a word as completed",
		Args:  cobra.ExactArgs(2),
		RunE: withProfileArgs(func(ctx context.Context, s *account.Store, out io.Writer, args []string) error {
			p, err := s.CompleteWord(ctx, args[0], args[1])
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "%s has completed %d words\n", p.Name, len(p.CompletedWords))
			return nil
		}),
	}

	profileHistoryCmd = &cobra.Command{
		Use:   "history <id>",
		Short: "Show a profile's recent practice history",
		Args:  cobra.ExactArgs(1),
		RunE: withProfileArgs(func(ctx context.Context, s *account.Store, out io.Writer, args []string) error {
			msgs := s.LoadHistory(ctx, args[0])
			if len(msgs) == 0 {
				fmt.Fprintln(out, faint("nothing in the last 30 days"))
				return nil
			}
			for _, m := range msgs {
				fmt.Fprintf(out, "%s %s: %s\n", faint(m.At.Format("Jan 2 15:04")), keyword(m.Role), m.Text)
			}
			return nil
		}),
	}
)

func withProfileArgs(fn func(ctx context.Context, s *account.Store, out io.Writer, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		return withAccounts(func(ctx context.Context, s *account.Store, out io.Writer) error {
			return fn(ctx, s, out, args)
		})(cmd, args)
	}
}

func init() {
	for _, c := range []*cobra.Command{profileAddCmd, profileEditCmd} {
		c.Flags().StringVar(&profileAvatar, "avatar", "", "emoji avatar")
		c.Flags().StringVar(&profileVoiceF, "voice", "", fmt.Sprintf("speech voice (default %s)", provider.DefaultVoice))
		c.Flags().StringVar(&profileGender, "gender", "", "gender used in generated sentences")
	}
	profileCmd.AddCommand(profileAddCmd, profileEditCmd, profileRmCmd, profileUseCmd, profileXPCmd, profileDoneCmd, profileHistoryCmd)
}
