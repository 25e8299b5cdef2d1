package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jholhewres/opsclaw/pkg/opsclaw/config"
)

// newConfigCmd creates the `opsclaw config` command group.
func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration and secrets",
		Long: `Manage OpsClaw configuration. Secrets go to the OS keyring, never to
disk: the calling API key resolves keyring → environment → config file.

Examples:
  opsclaw config set-key      # store the calling API key in the OS keyring
  opsclaw config clear-key
  opsclaw config check`,
	}

	cmd.AddCommand(
		newConfigSetKeyCmd(),
		newConfigClearKeyCmd(),
		newConfigCheckCmd(),
	)
	return cmd
}

func newConfigSetKeyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set-key",
		Short: "Store the calling API key in the OS keyring",
		RunE: func(_ *cobra.Command, _ []string) error {
			if !config.KeyringAvailable() {
				return fmt.Errorf("OS keyring unavailable; set OPSCLAW_PHONE_API_KEY instead")
			}
			key, err := config.ReadPassword("Calling API key: ")
			if err != nil {
				return err
			}
			if key == "" {
				return fmt.Errorf("empty key, nothing stored")
			}
			if err := config.StoreKeyring(config.KeyringPhoneAPIKey, key); err != nil {
				return fmt.Errorf("store key: %w", err)
			}
			fmt.Println("Calling API key stored in the OS keyring.")
			return nil
		},
	}
}

func newConfigClearKeyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear-key",
		Short: "Remove the calling API key from the OS keyring",
		RunE: func(_ *cobra.Command, _ []string) error {
			if err := config.DeleteKeyring(config.KeyringPhoneAPIKey); err != nil {
				return fmt.Errorf("delete key: %w", err)
			}
			fmt.Println("Calling API key removed.")
			return nil
		},
	}
}

func newConfigCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Show where secrets resolve from",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, path, err := resolveConfig(cmd)
			if err != nil {
				return err
			}
			logger := buildLogger(cmd, cfg, true)

			if path == "" {
				fmt.Println("Config:   built-in defaults (no opsclaw.yaml found)")
			} else {
				fmt.Printf("Config:   %s\n", path)
			}
			fmt.Printf("Data dir: %s\n", cfg.DataDir)
			fmt.Printf("Keyring:  available=%v\n", config.KeyringAvailable())

			config.ResolvePhoneAPIKey(cfg, logger)
			if cfg.Phone.APIKey != "" {
				fmt.Println("Call key: configured")
			} else {
				fmt.Println("Call key: missing (outbound calls will be refused)")
			}
			return nil
		},
	}
}
