package main

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/muurk/govee-panel/internal/credential"
	"github.com/muurk/govee-panel/internal/ui"
)

var (
	revealKey bool
	assumeYes bool
)

func init() {
	rootCmd.AddCommand(keyCmd)
	keyCmd.AddCommand(keyShowCmd)
	keyCmd.AddCommand(keySetCmd)
	keyCmd.AddCommand(keyClearCmd)

	keyShowCmd.Flags().BoolVar(&revealKey, "reveal", false, "Print the full key")
	keyClearCmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "Do not ask for confirmation")
}

// keyCmd groups API key management
var keyCmd = &cobra.Command{
	Use:   "key",
	Short: "Manage the relay API key",
	Long: `Manage the relay API key kept in local storage.

The key is sent with every relay request and is re-read each time, so a
change takes effect immediately, including in a running panel.`,
}

var keyShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the stored API key (masked)",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		p := ui.NewPrinter(cmd.OutOrStdout())

		key, err := env.creds.Read()
		switch {
		case errors.Is(err, credential.ErrNotFound):
			key = ""
		case err != nil:
			return fail(p, "Read API key", err)
		}

		value := "(not set)"
		if key != "" {
			value = maskKey(key)
			if revealKey {
				value = key
			}
		}

		p.PrintHeader("API key", "govee-panel key show", []ui.Detail{
			{Key: "Storage", Value: env.storePath},
			{Key: "Key", Value: value},
		})
		return nil
	},
}

var keySetCmd = &cobra.Command{
	Use:   "set [key]",
	Short: "Store the API key",
	Long: `Store the relay API key.

Without an argument the key is read from the terminal without echo, or from
the first line of stdin when it is not a terminal.`,
	Example: `  # Prompt for the key
  govee-panel key set

  # From a secret manager
  pass show govee/relay | govee-panel key set`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p := ui.NewPrinter(cmd.OutOrStdout())

		var key string
		if len(args) == 1 {
			key = args[0]
		} else {
			k, err := promptKey(cmd)
			if err != nil {
				return err
			}
			key = k
		}

		key = strings.TrimSpace(key)
		if key == "" {
			return errors.New("empty key; use 'govee-panel key clear' to remove the key")
		}

		if err := env.creds.Write(key); err != nil {
			return fail(p, "Save API key", err)
		}

		p.PrintSuccess("API key saved", []ui.Detail{
			{Key: "Storage", Value: env.storePath},
			{Key: "Key", Value: maskKey(key)},
		})
		return nil
	},
}

var keyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove the stored API key",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		p := ui.NewPrinter(cmd.OutOrStdout())

		if !assumeYes {
			ok := ui.Confirm(cmd.InOrStdin(), cmd.OutOrStdout(), "CLEAR API KEY",
				[]string{
					"The relay key will be removed from " + env.storePath,
					"Relay requests will fail until a new key is set",
				}, "yes")
			if !ok {
				return nil
			}
		}

		if err := env.creds.Clear(); err != nil {
			return fail(p, "Clear API key", err)
		}

		p.PrintSuccess("API key cleared", nil)
		return nil
	},
}

// promptKey reads the key without echo from a terminal, or one line from
// piped stdin
func promptKey(cmd *cobra.Command) (string, error) {
	in := cmd.InOrStdin()

	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fmt.Fprint(cmd.OutOrStdout(), "API key: ")
		data, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(cmd.OutOrStdout())
		if err != nil {
			return "", fmt.Errorf("failed to read key: %w", err)
		}
		return string(data), nil
	}

	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("failed to read key from stdin: %w", err)
	}
	return line, nil
}

// maskKey keeps the last four characters of key
func maskKey(key string) string {
	const visible = 4
	if len(key) <= visible {
		return strings.Repeat("•", len(key))
	}
	return strings.Repeat("•", len(key)-visible) + key[len(key)-visible:]
}
