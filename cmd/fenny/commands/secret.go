package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fenny-ai/fenny/pkg/fenny/config"
)

// secretNames maps the CLI-facing secret names to keyring entries.
var secretNames = map[string]string{
	"exchange-rate": config.KeyringExchangeRateKey,
	"llm":           config.KeyringLLMKey,
}

// newSecretCmd creates the `fenny secret` command group for managing
// provider credentials in the OS keyring.
func newSecretCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "secret",
		Short: "Manage provider credentials in the OS keyring",
		Long: `Store, inspect and remove API keys in the OS keyring so they never
live in config files. Known secrets: exchange-rate, llm.

Examples:
  fenny secret set exchange-rate YOUR_API_KEY
  fenny secret status
  fenny secret delete llm`,
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "set <name> <value>",
			Short: "Store a secret in the keyring",
			Args:  cobra.ExactArgs(2),
			RunE: func(_ *cobra.Command, args []string) error {
				key, err := keyringEntry(args[0])
				if err != nil {
					return err
				}
				if err := config.StoreKeyring(key, args[1]); err != nil {
					return fmt.Errorf("storing secret: %w", err)
				}
				fmt.Printf("Secret %q stored in the OS keyring.\n", args[0])
				return nil
			},
		},
		&cobra.Command{
			Use:   "delete <name>",
			Short: "Remove a secret from the keyring",
			Args:  cobra.ExactArgs(1),
			RunE: func(_ *cobra.Command, args []string) error {
				key, err := keyringEntry(args[0])
				if err != nil {
					return err
				}
				if err := config.DeleteKeyring(key); err != nil {
					return fmt.Errorf("deleting secret: %w", err)
				}
				fmt.Printf("Secret %q removed.\n", args[0])
				return nil
			},
		},
		&cobra.Command{
			Use:   "status",
			Short: "Show which secrets are configured",
			RunE: func(_ *cobra.Command, _ []string) error {
				for name, key := range secretNames {
					state := "not set"
					if config.GetKeyring(key) != "" {
						state = "set (keyring)"
					}
					fmt.Printf("%-14s %s\n", name, state)
				}
				return nil
			},
		},
	)

	return cmd
}

func keyringEntry(name string) (string, error) {
	key, ok := secretNames[name]
	if !ok {
		return "", fmt.Errorf("unknown secret %q (known: exchange-rate, llm)", name)
	}
	return key, nil
}
