package stats

import (
	"context"
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"

	"nathanbeddoewebdev/xostats/internal/stats/dashboard"
	"nathanbeddoewebdev/xostats/internal/stats/domain"
	"nathanbeddoewebdev/xostats/internal/stats/services/run"
	"nathanbeddoewebdev/xostats/internal/util"

	"github.com/charmbracelet/huh/spinner"
	"github.com/spf13/cobra"
)

func RunCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Aggregate the stats of a selection of hosts or VMs",
		Long: `Fetch hourly stats for every selected object and print the composite
metrics.

A selection is either hosts or VMs, never both, and only running objects
can be selected. Objects whose stats cannot be fetched are reported and
left out of the aggregate.

Examples:
  # Every running VM, summary table
  xostats stats run --all-vms

  # Two hosts, one metric as JSON
  xostats stats run --host 1b2c... --host 7f8e... --metric "All CPUs" -o json

  # Weekly heatmap of memory used across all hosts
  xostats stats run --all-hosts --metric "RAM used" -o heatmap`,
		Args:         cobra.NoArgs,
		RunE:         runStats,
		SilenceUsage: true,
	}

	cmd.Flags().StringArray("host", nil, "Host ID to include (repeatable)")
	cmd.Flags().StringArray("vm", nil, "VM ID to include (repeatable)")
	cmd.Flags().Bool("all-hosts", false, "Select every running host")
	cmd.Flags().Bool("all-vms", false, "Select every running VM")
	cmd.Flags().String("metric", "", `Only show this metric (e.g. "All CPUs", "Network 0 in")`)
	cmd.Flags().StringP("output", "o", "table", "Output format: table, json or heatmap")
	cmd.MarkFlagsMutuallyExclusive("all-hosts", "all-vms")

	return cmd
}

func runStats(cmd *cobra.Command, args []string) error {
	output, _ := cmd.Flags().GetString("output")
	metric, _ := cmd.Flags().GetString("metric")
	metric = strings.TrimSpace(metric)

	switch output {
	case "table", "json":
	case "heatmap":
		if metric == "" {
			return fmt.Errorf("-o heatmap requires --metric")
		}
	default:
		return fmt.Errorf("unknown output format %q (valid: table, json, heatmap)", output)
	}

	hostIDs, _ := cmd.Flags().GetStringArray("host")
	vmIDs, _ := cmd.Flags().GetStringArray("vm")
	allHosts, _ := cmd.Flags().GetBool("all-hosts")
	allVMs, _ := cmd.Flags().GetBool("all-vms")
	if len(hostIDs) == 0 && len(vmIDs) == 0 && !allHosts && !allVMs {
		return fmt.Errorf("nothing selected: pass --host, --vm, --all-hosts or --all-vms")
	}
	if allHosts && len(hostIDs) > 0 {
		return fmt.Errorf("--all-hosts cannot be combined with --host")
	}
	if allVMs && len(vmIDs) > 0 {
		return fmt.Errorf("--all-vms cannot be combined with --vm")
	}
	for _, id := range slices.Concat(hostIDs, vmIDs) {
		if err := util.ValidateObjectID(id); err != nil {
			return err
		}
	}

	s, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	ctx := cmd.Context()
	d := dashboard.New(s.backend, s.newService(stderrNotifier(cmd)))

	if err := selectObjects(ctx, d, s.backend, hostIDs, vmIDs, allHosts, allVMs); err != nil {
		return err
	}

	report, err := validate(ctx, d)
	if err != nil {
		return err
	}

	series := []domain.Series(report.Catalog)
	if metric != "" {
		sel, err := d.SelectMetric(metric)
		if err != nil {
			return fmt.Errorf("%w (available: %s)", err, strings.Join(report.Catalog.Keys(), ", "))
		}
		series = []domain.Series{sel}
	}

	printRunSummary(cmd, report)

	switch output {
	case "json":
		return printReportJSON(cmd, report, series)
	case "heatmap":
		loc, err := s.cfg.Location()
		if err != nil {
			return err
		}
		printHeatmap(cmd, series[0], loc)
	default:
		printReportTable(cmd, report, series)
	}
	return nil
}

// selectObjects resolves the flags into a dashboard selection.
func selectObjects(ctx context.Context, d *dashboard.Dashboard, src dashboard.ObjectSource,
	hostIDs, vmIDs []string, allHosts, allVMs bool) error {
	switch {
	case (allHosts || len(hostIDs) > 0) && (allVMs || len(vmIDs) > 0):
		return fmt.Errorf("cannot combine hosts and VMs: %w", domain.ErrMixedSelection)
	case allHosts:
		return d.SelectAllHosts(ctx)
	case allVMs:
		return d.SelectAllVMs(ctx)
	case len(hostIDs) > 0:
		objects, err := resolve(ctx, src.RunningHosts, hostIDs, domain.ObjectHost)
		if err != nil {
			return err
		}
		return d.Select(objects)
	default:
		objects, err := resolve(ctx, src.RunningVMs, vmIDs, domain.ObjectVM)
		if err != nil {
			return err
		}
		return d.Select(objects)
	}
}

// resolve maps IDs onto running objects, keeping flag order and dropping
// duplicates.
func resolve(ctx context.Context, list func(context.Context) ([]domain.Object, error),
	ids []string, typ domain.ObjectType) ([]domain.Object, error) {
	running, err := list(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list running objects: %w", err)
	}

	byID := make(map[string]domain.Object, len(running))
	for _, obj := range running {
		byID[obj.ID] = obj
	}

	seen := make(map[string]bool, len(ids))
	objects := make([]domain.Object, 0, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true

		obj, ok := byID[id]
		if !ok {
			return nil, fmt.Errorf("%s %s is not running or does not exist: %w", typ, id, domain.ErrNotRunning)
		}
		objects = append(objects, obj)
	}
	return objects, nil
}

// validate runs the aggregation, behind a spinner when stderr is a
// terminal.
func validate(ctx context.Context, d *dashboard.Dashboard) (*run.Report, error) {
	if !stderrIsTerminal() {
		return d.Validate(ctx)
	}

	var report *run.Report
	title := fmt.Sprintf("Fetching stats for %d objects...", len(d.Selection()))
	err := spinner.New().
		Title(title).
		Output(os.Stderr).
		Context(ctx).
		ActionWithErr(func(ctx context.Context) error {
			var err error
			report, err = d.Validate(ctx)
			return err
		}).
		Run()
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return nil, fmt.Errorf("cancelled")
		}
		return nil, err
	}
	return report, nil
}
