package auth

import (
	"nathanbeddoewebdev/xostats/internal/services/auth"

	"github.com/spf13/cobra"
)

// newStore builds the credential store. Tests replace it with an in-memory
// store.
var newStore = auth.DefaultStore

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Manage authentication for Xen Orchestra servers",
		Long: `Manage authentication for Xen Orchestra servers.

Use this command group to store XO authentication tokens securely in the
local keychain.`,
	}

	cmd.AddCommand(LoginCommand())
	cmd.AddCommand(StatusCommand())

	return cmd
}
