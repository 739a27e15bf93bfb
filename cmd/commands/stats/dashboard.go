package stats

import (
	"nathanbeddoewebdev/xostats/internal/stats/dashboard"
	"nathanbeddoewebdev/xostats/internal/stats/services/run"
	"nathanbeddoewebdev/xostats/internal/tui"

	"github.com/spf13/cobra"
)

// DashboardCommand returns the interactive "dashboard" command.
func DashboardCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Open the interactive stats dashboard",
		Long: `Open a full-screen dashboard to pick running hosts or VMs, aggregate
their stats and browse each metric as a weekly heatmap and trend line.

Keys:
  space      toggle the object under the cursor
  tab        switch between hosts and VMs
  H / V      select every running host / VM
  enter      aggregate the selection, or open the highlighted metric
  r          reset the selection
  q          quit`,
		Args:         cobra.NoArgs,
		RunE:         runDashboard,
		SilenceUsage: true,
	}

	addConnectionFlags(cmd)

	return cmd
}

func runDashboard(cmd *cobra.Command, args []string) error {
	s, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	loc, err := s.cfg.Location()
	if err != nil {
		return err
	}

	newRunner := func(n run.Notifier) dashboard.Runner { return s.newService(n) }
	return tui.RunDashboard(cmd.Context(), s.backend, newRunner, loc)
}
