package auth

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"nathanbeddoewebdev/xostats/internal/config"
	"nathanbeddoewebdev/xostats/internal/tui"
	"nathanbeddoewebdev/xostats/internal/xoapi"

	"golang.org/x/term"

	"github.com/spf13/cobra"
)

const verifyTimeout = 15 * time.Second

// isInteractive reports whether prompts can be shown. Tests turn it off.
var isInteractive = func() bool {
	return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
}

func LoginCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "login [url]",
		Short: "Store an authentication token for an XO server",
		Long: `Store an XO authentication token using the local keychain.

The server defaults to the configured server-url. When no server is
configured yet, the one given here becomes the default.

The token is read from --token, from an interactive prompt, or from the
first line of stdin when stdin is not a terminal.

Examples:
  xostats auth login https://xo.example.com
  xostats auth login --token "$XO_TOKEN" --verify
  echo "$XO_TOKEN" | xostats auth login xo.example.com`,
		Args:         cobra.MaximumNArgs(1),
		RunE:         runLogin,
		SilenceUsage: true,
	}

	cmd.Flags().String("token", "", "Authentication token (optional, overrides prompt)")
	cmd.Flags().Bool("verify", false, "Sign in once to check the token before saving it")

	return cmd
}

func runLogin(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	server := cfg.ServerURL
	if len(args) == 1 {
		server = strings.TrimSpace(args[0])
	}

	token, _ := cmd.Flags().GetString("token")
	token = strings.TrimSpace(token)

	if token == "" {
		if isInteractive() {
			server, token, err = tui.LoginForm(server)
			if errors.Is(err, tui.ErrAborted) {
				fmt.Fprintln(cmd.ErrOrStderr(), "Login cancelled.")
				return nil
			}
			if err != nil {
				return err
			}
		} else {
			token, err = readToken(cmd)
			if err != nil {
				return err
			}
		}
	}

	if server == "" {
		return fmt.Errorf("server url is required: pass it as an argument or run 'xostats config set server-url <url>'")
	}
	endpoint, err := xoapi.Endpoint(server)
	if err != nil {
		return err
	}
	if token == "" {
		return fmt.Errorf("token cannot be empty")
	}

	if verify, _ := cmd.Flags().GetBool("verify"); verify {
		ctx, cancel := context.WithTimeout(cmd.Context(), verifyTimeout)
		defer cancel()

		client, err := xoapi.Connect(ctx, endpoint, token)
		if err != nil {
			return fmt.Errorf("token rejected by %s: %w", server, err)
		}
		client.Close()
	}

	if err := newStore().SetToken(server, token); err != nil {
		return fmt.Errorf("saving token: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Saved token for %s\n", server)

	if cfg.ServerURL == "" {
		cfg.ServerURL = server
		if err := cfg.Save(); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "server-url set to %q\n", server)
	}
	return nil
}

func readToken(cmd *cobra.Command) (string, error) {
	scanner := bufio.NewScanner(cmd.InOrStdin())
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return "", fmt.Errorf("reading token: %w", err)
		}
		return "", nil
	}
	return strings.TrimSpace(scanner.Text()), nil
}
