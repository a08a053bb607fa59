package main

import (
	"fmt"
	"sort"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var (
	vaultList bool

	vaultCmd = &cobra.Command{
		Use:   "vault",
		Short: "Inspect the audio vault",
		Args:  cobra.NoArgs,
	}

	vaultStatsCmd = &cobra.Command{
		Use:   "stats",
		Short: "Show how much speech is stored",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			v, err := openVault(cfg, nil)
			if err != nil {
				return err
			}
			defer v.Close() //nolint:errcheck

			s := v.Stats()
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s %s\n", keyword("Vault:"), cfg.Vault.Dir)
			fmt.Fprintf(out, "Phrases:  %s\n", humanize.Comma(s.ItemCount))
			fmt.Fprintf(out, "Stored:   %s", humanize.Bytes(uint64(s.Size))) //nolint:gosec
			if s.RawSize > s.Size {
				fmt.Fprintf(out, " (%s before compression)", humanize.Bytes(uint64(s.RawSize))) //nolint:gosec
			}
			fmt.Fprintln(out)
			if !s.LastAccess.IsZero() {
				fmt.Fprintf(out, "Updated:  %s\n", humanize.Time(s.LastAccess))
			}

			if vaultList {
				texts := v.Texts()
				sort.Strings(texts)
				for _, t := range texts {
					fmt.Fprintf(out, "  %s\n", t)
				}
			}
			return nil
		},
	}

	vaultClearCmd = &cobra.Command{
		Use:   "clear",
		Short: "Remove every stored phrase",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			v, err := openVault(cfg, nil)
			if err != nil {
				return err
			}
			defer v.Close() //nolint:errcheck

			n := len(v.Texts())
			if err := v.Clear(); err != nil {
				return fmt.Errorf("unable to clear vault: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %s phrases\n", humanize.Comma(int64(n)))
			return nil
		},
	}
)

func init() {
	vaultStatsCmd.Flags().BoolVarP(&vaultList, "list", "l", false, "list stored phrases")
	vaultCmd.AddCommand(vaultStatsCmd, vaultClearCmd)
}
