package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/rettend/lin/config"
	"github.com/rettend/lin/console"
	"github.com/rettend/lin/i18n"
	"github.com/rettend/lin/settings"
	"github.com/spf13/cobra"
)

// ---------------------------------------------------------------------------
// auth (stored API keys)
// ---------------------------------------------------------------------------

func newAuthCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: i18n.T("Manage stored provider API keys"),
		Long: `Manage the API keys lin stores per provider in
$XDG_DATA_HOME/lin/auth.json (default: ~/.local/share/lin/auth.json).

A key is looked up in this order: --api-key, the provider's environment
variable (OPENAI_API_KEY, ANTHROPIC_API_KEY, ...), LIN_API_KEY, then the
stored key.

Examples:
  lin auth set openai sk-...       Store the OpenAI key
  lin auth remove openai           Remove it again
  lin auth list                    Show stored keys and environment variables`,
	}

	cmd.AddCommand(
		newAuthSetCmd(),
		newAuthRemoveCmd(),
		newAuthListCmd(),
	)

	return cmd
}

func completeProviders(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	return config.Providers, cobra.ShellCompDirectiveNoFileComp
}

func checkProvider(p string) error {
	for _, known := range config.Providers {
		if p == known {
			return nil
		}
	}
	return fmt.Errorf("unknown provider %q (valid: %s)", p, strings.Join(config.Providers, ", "))
}

func newAuthSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:               "set <provider> <key>",
		Short:             i18n.T("Store the API key of a provider"),
		Args:              cobra.ExactArgs(2),
		ValidArgsFunction: completeProviders,
		RunE: func(cmd *cobra.Command, args []string) error {
			provider, key := args[0], strings.TrimSpace(args[1])
			if err := checkProvider(provider); err != nil {
				return err
			}
			if key == "" {
				return fmt.Errorf("API key for %s is empty", provider)
			}
			if err := settings.SetAPIKey(provider, key); err != nil {
				return fmt.Errorf("saving API key: %w", err)
			}
			con := console.New(cmd.OutOrStdout(), cmd.ErrOrStderr(), cmd.InOrStdin())
			con.Log(console.Success, i18n.T("Stored the **%s** API key (`%s`)"), provider, settings.MaskKey(key))
			return nil
		},
	}
}

func newAuthRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:               "remove <provider>",
		Aliases:           []string{"rm"},
		Short:             i18n.T("Remove the stored API key of a provider"),
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeProviders,
		RunE: func(cmd *cobra.Command, args []string) error {
			con := console.New(cmd.OutOrStdout(), cmd.ErrOrStderr(), cmd.InOrStdin())
			removed, err := settings.Remove(args[0])
			if err != nil {
				return fmt.Errorf("removing API key: %w", err)
			}
			if !removed {
				con.Log(console.Info, i18n.T("No API key stored for **%s**."), args[0])
				return nil
			}
			con.Log(console.Success, i18n.T("Removed the **%s** API key"), args[0])
			return nil
		},
	}
}

func newAuthListCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   i18n.T("Show stored keys and key variables"),
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			con := console.New(cmd.OutOrStdout(), cmd.ErrOrStderr(), cmd.InOrStdin())

			store := settings.Load()
			return con.Section(i18n.T("Stored keys"), func() error {
				stored := store.Providers()
				if len(stored) == 0 {
					con.Log(console.Note, "%s", i18n.T("No API keys stored."))
				}
				for _, p := range stored {
					con.Print("  %-10s `%s`", p, settings.MaskKey(store[p].Key))
				}

				con.Print("")
				con.Print("**%s**", i18n.T("Environment variables"))
				for _, p := range config.Providers {
					for _, env := range config.ProviderEnv[p] {
						if v := os.Getenv(env); v != "" {
							con.Print("  %-30s `%s`", env, settings.MaskKey(v))
						}
					}
				}
				if v := os.Getenv("LIN_API_KEY"); v != "" {
					con.Print("  %-30s `%s` *(%s)*", "LIN_API_KEY", settings.MaskKey(v), i18n.T("any provider"))
				}

				con.Print("")
				con.Log(console.Note, i18n.T("File: `%s`"), settings.FilePath())
				return nil
			})
		},
	}
}
