package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/lingokids/lingo/internal/account"
	"github.com/lingokids/lingo/internal/storage"
)

var (
	accountName     string
	accountEmail    string
	accountPassword string

	accountCmd = &cobra.Command{
		Use:   "account",
		Short: "Sign in, sign up and sign out",
		Args:  cobra.NoArgs,
	}

	signupCmd = &cobra.Command{
		Use:     "signup",
		Short:   "Create an account",
		Example: paragraph("lingo account signup --name Ana --email ana@example.com --password 1234"),
		Args:    cobra.NoArgs,
		RunE: withAccounts(func(ctx context.Context, s *account.Store, out io.Writer) error {
			a, err := s.Signup(ctx, accountName, accountEmail, accountPassword)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "%s Welcome, %s! Add a profile with %s\n", success("✓"), a.Name, keyword("lingo profile add <name>"))
			return nil
		}),
	}

	loginCmd = &cobra.Command{
		Use:   "login",
		Short: "Sign in with email and password",
		Args:  cobra.NoArgs,
		RunE: withAccounts(func(ctx context.Context, s *account.Store, out io.Writer) error {
			a, err := s.Login(ctx, accountEmail, accountPassword)
			if err != nil {
				return err
			}
			printAccount(out, a)
			return nil
		}),
	}

	socialCmd = &cobra.Command{
		Use:   "social",
		Short: "Sign in with the demo social account",
		Args:  cobra.NoArgs,
		RunE: withAccounts(func(ctx context.Context, s *account.Store, out io.Writer) error {
			a, err := s.SocialLogin(ctx)
			if err != nil {
				return err
			}
			printAccount(out, a)
			return nil
		}),
	}

	logoutCmd = &cobra.Command{
		Use:   "logout",
		Short: "Sign out",
		Args:  cobra.NoArgs,
		RunE: withAccounts(func(ctx context.Context, s *account.Store, out io.Writer) error {
			s.Logout(ctx)
			fmt.Fprintln(out, "Signed out. See you soon!")
			return nil
		}),
	}

	whoamiCmd = &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in account and its profiles",
		Args:  cobra.NoArgs,
		RunE: withAccounts(func(_ context.Context, s *account.Store, out io.Writer) error {
			a, ok := s.Current()
			if !ok {
				return account.ErrNotLoggedIn
			}
			printAccount(out, a)
			return nil
		}),
	}

	watchCmd = &cobra.Command{
		Use:   "watch",
		Short: "Print the signed-in account whenever another process changes it",
		Args:  cobra.NoArgs,
		RunE: withAccounts(func(ctx context.Context, s *account.Store, out io.Writer) error {
			s.Subscribe(func(a *account.Account) {
				if a == nil {
					fmt.Fprintln(out, faint("signed out"))
					return
				}
				printAccount(out, *a)
			})
			w, ok := accountKV.(*storage.File)
			if !ok {
				return errors.New("watching needs the file storage driver")
			}
			log.Debug("following account store", "path", w.Path())
			return s.Follow(ctx, w)
		}),
	}

	// accountKV is the store opened by withAccounts.
	accountKV storage.KV
)

// withAccounts opens the account store around fn.
func withAccounts(fn func(ctx context.Context, s *account.Store, out io.Writer) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		s, kv, err := openAccounts(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer kv.Close() //nolint:errcheck
		accountKV = kv
		return fn(cmd.Context(), s, cmd.OutOrStdout())
	}
}

func printAccount(out io.Writer, a account.Account) {
	fmt.Fprintf(out, "%s %s <%s>\n", keyword("Account:"), a.Name, a.Email)
	if len(a.Profiles) == 0 {
		fmt.Fprintln(out, faint("  no profiles yet"))
		return
	}
	for _, p := range a.Profiles {
		marker := " "
		if p.ID == a.ActiveProfile {
			marker = success("›")
		}
		fmt.Fprintf(out, "%s %s %s  %d XP, %d words  %s\n", marker, p.Avatar, p.Name, p.XP, len(p.CompletedWords), faint(p.ID))
	}
}

func init() {
	for _, c := range []*cobra.Command{signupCmd, loginCmd} {
		c.Flags().StringVar(&accountEmail, "email", "", "email address")
		c.Flags().StringVar(&accountPassword, "password", "", "password")
	}
	signupCmd.Flags().StringVar(&accountName, "name", "", "your name")

	accountCmd.AddCommand(signupCmd, loginCmd, socialCmd, logoutCmd, whoamiCmd, watchCmd)
}
