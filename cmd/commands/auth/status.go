package auth

import (
	"errors"
	"fmt"

	"nathanbeddoewebdev/xostats/internal/config"
	"nathanbeddoewebdev/xostats/internal/services/auth"
	"nathanbeddoewebdev/xostats/internal/tui"

	"github.com/spf13/cobra"
)

func StatusCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status [url]",
		Short: "Show whether a token is stored for an XO server",
		Long: `Show whether an authentication token is stored for an XO server.

The server defaults to the configured server-url.

Example:
  xostats auth status`,
		Args:         cobra.MaximumNArgs(1),
		RunE:         runStatus,
		SilenceUsage: true,
	}

	return cmd
}

func runStatus(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	server := cfg.ServerURL
	if len(args) == 1 {
		server = args[0]
	}

	if isInteractive() {
		if err := tui.RunAuthStatus(newStore(), []string{server, cfg.ServerURL}); err != nil {
			return fmt.Errorf("auth status failed: %w", err)
		}
		return nil
	}

	if server == "" {
		fmt.Fprintln(cmd.OutOrStdout(), "No server configured.")
		return nil
	}

	_, err = newStore().GetToken(server)
	switch {
	case err == nil:
		fmt.Fprintf(cmd.OutOrStdout(), "%s: logged in\n", server)
	case errors.Is(err, auth.ErrTokenNotFound):
		fmt.Fprintf(cmd.OutOrStdout(), "%s: not logged in\n", server)
	default:
		fmt.Fprintf(cmd.OutOrStdout(), "%s: error (%v)\n", server, err)
	}
	return nil
}
