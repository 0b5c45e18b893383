package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/ee99ee/codemagic-mcp-improved/internal/config"
)

func newAuthCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Manage the Codemagic API key stored in the OS keyring",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "set",
		Short: "Store the API key (read from the terminal without echo, or from stdin)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			key, err := readKey(cmd.InOrStdin(), cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			if err := config.StoreCredential(key); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "API key stored in keyring")
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "delete",
		Short: "Remove the API key from the keyring",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := config.DeleteCredential(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "API key removed from keyring")
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Report where the API key is taken from",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			src, err := config.Credentials{}.Source()
			if err != nil {
				return err
			}
			switch src {
			case config.SourceEnv:
				fmt.Fprintf(cmd.OutOrStdout(), "API key is set via %s\n", config.EnvAPIKey)
			case config.SourceKeyring:
				fmt.Fprintln(cmd.OutOrStdout(), "API key is stored in the keyring")
			default:
				fmt.Fprintf(cmd.OutOrStdout(), "no API key configured: set %s or run `auth set`\n", config.EnvAPIKey)
			}
			return nil
		},
	})

	return cmd
}

// readKey prompts on a terminal with echo disabled, or reads the first line
// of piped input.
func readKey(in io.Reader, prompt io.Writer) (string, error) {
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fmt.Fprint(prompt, "Codemagic API key: ")
		b, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(prompt)
		if err != nil {
			return "", fmt.Errorf("failed to read api key: %w", err)
		}
		return strings.TrimSpace(string(b)), nil
	}

	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("failed to read api key: %w", err)
	}
	return strings.TrimSpace(line), nil
}
