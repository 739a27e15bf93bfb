package stats

import (
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"nathanbeddoewebdev/xostats/internal/format"
	"nathanbeddoewebdev/xostats/internal/stats/domain"
	"nathanbeddoewebdev/xostats/internal/stats/heatmap"
	"nathanbeddoewebdev/xostats/internal/stats/services/run"

	"github.com/spf13/cobra"
)

// shades maps heatmap levels to glyphs; level 0 is an empty cell.
var shades = []string{"··", "░░", "▒▒", "▓▓", "██"}

// printRunSummary writes a one-line outcome of the run to stderr.
func printRunSummary(cmd *cobra.Command, report *run.Report) {
	ok := len(report.Objects) - len(report.Failures)
	fmt.Fprintf(cmd.ErrOrStderr(), "Aggregated %d of %d objects in %s\n",
		ok, len(report.Objects), report.Duration.Round(time.Millisecond))
}

// printReportTable prints one row per series with its summary values.
func printReportTable(cmd *cobra.Command, report *run.Report, series []domain.Series) {
	if len(series) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No metrics.")
		return
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 3, ' ', 0)

	fmt.Fprintln(w, "METRIC\tLAYERS\tPOINTS\tCUR\tMIN\tMAX\tAVG")
	fmt.Fprintln(w, "------\t------\t------\t---\t---\t---\t---")

	for _, s := range series {
		sum := format.Summarize(s.Values)
		fmt.Fprintf(w, "%s\t%d\t%d\t%s\t%s\t%s\t%s\n",
			s.Key,
			report.Layers[s.Key],
			len(s.Values),
			format.Value(s.Unit, sum.Cur),
			format.Value(s.Unit, sum.Min),
			format.Value(s.Unit, sum.Max),
			format.Value(s.Unit, sum.Avg),
		)
	}

	w.Flush()
}

type reportJSON struct {
	Objects  []domain.Object `json:"objects"`
	Failures []failureJSON   `json:"failures"`
	Metrics  []metricJSON    `json:"metrics"`
}

type failureJSON struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Error string `json:"error"`
}

type metricJSON struct {
	Key    string             `json:"key"`
	Unit   domain.Unit        `json:"unit,omitempty"`
	Layers int                `json:"layers"`
	Values []domain.DataPoint `json:"values"`
}

// printReportJSON encodes the report as indented JSON to stdout.
func printReportJSON(cmd *cobra.Command, report *run.Report, series []domain.Series) error {
	out := reportJSON{
		Objects:  report.Objects,
		Failures: make([]failureJSON, 0, len(report.Failures)),
		Metrics:  make([]metricJSON, 0, len(series)),
	}
	for _, f := range report.Failures {
		out.Failures = append(out.Failures, failureJSON{
			ID:    f.Object.ID,
			Label: f.Object.Label(),
			Error: f.Err.Error(),
		})
	}
	for _, s := range series {
		out.Metrics = append(out.Metrics, metricJSON{
			Key:    s.Key,
			Unit:   s.Unit,
			Layers: report.Layers[s.Key],
			Values: s.Values,
		})
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

// printHeatmap prints a weekday by hour grid of the series.
func printHeatmap(cmd *cobra.Command, s domain.Series, loc *time.Location) {
	g := heatmap.Build(s, loc)
	out := cmd.OutOrStdout()

	fmt.Fprintf(out, "%s (%s)\n", s.Key, loc)

	var b strings.Builder
	b.WriteString("     ")
	for h := range heatmap.Hours {
		fmt.Fprintf(&b, "%02d ", h)
	}
	fmt.Fprintln(out, strings.TrimRight(b.String(), " "))

	for row, day := range heatmap.Weekdays {
		b.Reset()
		fmt.Fprintf(&b, "%-5s", day.String()[:3])
		for col := range heatmap.Hours {
			b.WriteString(shades[g.Level(g.Cells[row][col], len(shades)-1)])
			b.WriteByte(' ')
		}
		fmt.Fprintln(out, strings.TrimRight(b.String(), " "))
	}

	if g.Filled == 0 {
		fmt.Fprintln(out, "no data")
		return
	}
	fmt.Fprintf(out, "min %s  max %s  %s low  %s high  %s no data\n",
		format.Value(g.Unit, g.Min), format.Value(g.Unit, g.Max),
		shades[1], shades[len(shades)-1], shades[0])
}

// printObjectsTable prints running objects as a table.
func printObjectsTable(cmd *cobra.Command, objects []domain.Object) {
	if len(objects) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No running objects found.")
		return
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tTYPE")
	fmt.Fprintln(w, "--\t----\t----")
	for _, o := range objects {
		fmt.Fprintf(w, "%s\t%s\t%s\n", o.ID, o.Label(), o.Type)
	}
	w.Flush()
}

// printObjectsJSON encodes running objects as indented JSON to stdout.
func printObjectsJSON(cmd *cobra.Command, objects []domain.Object) error {
	if objects == nil {
		objects = []domain.Object{}
	}
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(objects)
}
