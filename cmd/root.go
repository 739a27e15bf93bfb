package cmd

import (
	"context"
	"log/slog"
	"os"
	"os/signal"

	"nathanbeddoewebdev/xostats/cmd/commands/auth"
	cfgcmd "nathanbeddoewebdev/xostats/cmd/commands/config"
	"nathanbeddoewebdev/xostats/cmd/commands/stats"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands.
func rootCmd() *cobra.Command {
	var verbose bool

	var cmd = &cobra.Command{
		Use:   "xostats",
		Short: "Aggregate and visualise Xen Orchestra host and VM statistics",
		Long: `xostats fetches hourly statistics for a selection of running hosts or
VMs from Xen Orchestra and averages them into composite metrics: CPU per
core and overall, load, memory used, network and disk throughput.

Quick start:
  xostats auth login https://xo.example.com   # Store an XO token
  xostats stats objects                       # List running hosts and VMs
  xostats stats run --all-vms                 # Aggregate every running VM
  xostats dashboard                           # Interactive dashboard`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := slog.LevelWarn
			if verbose {
				level = slog.LevelDebug
			}
			handler := slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level})
			slog.SetDefault(slog.New(handler))
		},
	}

	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging on stderr")

	cmd.AddCommand(auth.NewCommand())
	cmd.AddCommand(cfgcmd.NewCommand())
	cmd.AddCommand(stats.NewCommand())
	cmd.AddCommand(stats.DashboardCommand())

	return cmd
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)

	var root = rootCmd()
	err := root.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}
