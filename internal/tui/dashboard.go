package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"nathanbeddoewebdev/xostats/internal/stats/dashboard"
	"nathanbeddoewebdev/xostats/internal/stats/domain"
	"nathanbeddoewebdev/xostats/internal/stats/heatmap"
	"nathanbeddoewebdev/xostats/internal/stats/services/run"
	"nathanbeddoewebdev/xostats/internal/tui/components"
	"nathanbeddoewebdev/xostats/internal/tui/styles"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

const listWidth = 40

// --- Messages ---

type objectsLoadedMsg struct {
	hosts []domain.Object
	vms   []domain.Object
}

type objectsErrorMsg struct {
	err error
}

type selectionChangedMsg struct {
	err error
}

type runFinishedMsg struct {
	report *run.Report
	err    error
}

type notifyMsg struct {
	title  string
	detail string
}

// --- Notifier ---

// programNotifier forwards run failures to the running program.
type programNotifier struct {
	mu sync.Mutex
	p  *tea.Program
}

func (n *programNotifier) attach(p *tea.Program) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.p = p
}

func (n *programNotifier) ReportError(title, detail string) {
	n.mu.Lock()
	p := n.p
	n.mu.Unlock()
	if p != nil {
		p.Send(notifyMsg{title: title, detail: detail})
	}
}

// --- Dashboard model ---

type pane int

const (
	paneObjects pane = iota
	paneMetrics
)

type dashboardModel struct {
	ctx    context.Context
	dash   *dashboard.Dashboard
	source dashboard.ObjectSource
	loc    *time.Location

	hosts []domain.Object
	vms   []domain.Object
	tab   domain.ObjectType

	focus        pane
	cursor       int
	metricCursor int

	width  int
	height int

	loading bool
	spinner spinner.Model

	status        string
	statusIsError bool
	failures      int
}

// RunDashboard starts the full-window stats dashboard. newRunner builds the
// aggregation runner around the notifier the dashboard displays failures
// with.
func RunDashboard(ctx context.Context, source dashboard.ObjectSource, newRunner func(run.Notifier) dashboard.Runner, loc *time.Location) error {
	n := &programNotifier{}
	m := newDashboardModel(ctx, dashboard.New(source, newRunner(n)), source, loc)

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	n.attach(p)

	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("failed to run dashboard: %w", err)
	}
	return nil
}

func newDashboardModel(ctx context.Context, d *dashboard.Dashboard, source dashboard.ObjectSource, loc *time.Location) dashboardModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = styles.Spinner

	if loc == nil {
		loc = time.Local
	}

	return dashboardModel{
		ctx:     ctx,
		dash:    d,
		source:  source,
		loc:     loc,
		tab:     domain.ObjectVM,
		loading: true,
		spinner: s,
	}
}

func (m dashboardModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.fetchObjects())
}

func (m dashboardModel) fetchObjects() tea.Cmd {
	return func() tea.Msg {
		hosts, err := m.source.RunningHosts(m.ctx)
		if err != nil {
			return objectsErrorMsg{err: err}
		}
		vms, err := m.source.RunningVMs(m.ctx)
		if err != nil {
			return objectsErrorMsg{err: err}
		}
		return objectsLoadedMsg{hosts: hosts, vms: vms}
	}
}

func (m dashboardModel) selectAll(typ domain.ObjectType) tea.Cmd {
	return func() tea.Msg {
		if typ == domain.ObjectHost {
			return selectionChangedMsg{err: m.dash.SelectAllHosts(m.ctx)}
		}
		return selectionChangedMsg{err: m.dash.SelectAllVMs(m.ctx)}
	}
}

func (m dashboardModel) validate() tea.Cmd {
	return func() tea.Msg {
		report, err := m.dash.Validate(m.ctx)
		return runFinishedMsg{report: report, err: err}
	}
}

// --- Update ---

func (m dashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case objectsLoadedMsg:
		m.loading = false
		m.hosts, m.vms = msg.hosts, msg.vms
		if len(m.vms) == 0 && len(m.hosts) > 0 {
			m.tab = domain.ObjectHost
		}
		m.cursor = 0
		m.setStatus(fmt.Sprintf("%d running host(s), %d running VM(s)", len(m.hosts), len(m.vms)), false)
		return m, nil

	case objectsErrorMsg:
		m.loading = false
		m.setStatus(msg.err.Error(), true)
		return m, nil

	case selectionChangedMsg:
		if msg.err != nil {
			m.setStatus(msg.err.Error(), true)
			return m, nil
		}
		m.focus = paneObjects
		m.setStatus(fmt.Sprintf("%d selected", len(m.dash.Selection())), false)
		return m, nil

	case runFinishedMsg:
		m.loading = false
		if msg.err != nil {
			m.setStatus(msg.err.Error(), true)
			return m, nil
		}
		m.failures = len(msg.report.Failures)
		m.metricCursor = 0
		m.focus = paneMetrics
		ok := len(msg.report.Objects) - m.failures
		m.setStatus(fmt.Sprintf("Aggregated %d of %d objects, %d metrics",
			ok, len(msg.report.Objects), len(msg.report.Catalog)), m.failures > 0)
		return m, nil

	case notifyMsg:
		m.setStatus(msg.title+": "+msg.detail, true)
		return m, nil

	case spinner.TickMsg:
		if m.loading {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
		return m, nil
	}

	return m, nil
}

func (m *dashboardModel) setStatus(text string, isError bool) {
	m.status = text
	m.statusIsError = isError
}

func (m dashboardModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q":
		return m, tea.Quit
	}

	if m.focus == paneMetrics {
		return m.handleMetricsKey(msg)
	}
	return m.handleObjectsKey(msg)
}

func (m dashboardModel) handleObjectsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	list := m.visible()

	switch msg.String() {
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(list)-1 {
			m.cursor++
		}
	case "tab":
		if m.tab == domain.ObjectVM {
			m.tab = domain.ObjectHost
		} else {
			m.tab = domain.ObjectVM
		}
		m.cursor = 0
	case " ", "space":
		if m.cursor < len(list) {
			if err := m.dash.Toggle(list[m.cursor]); err != nil {
				m.setStatus(err.Error(), true)
			} else {
				m.setStatus(fmt.Sprintf("%d selected", len(m.dash.Selection())), false)
			}
		}
	case "H":
		return m, m.selectAll(domain.ObjectHost)
	case "V":
		return m, m.selectAll(domain.ObjectVM)
	case "r":
		if err := m.dash.Reset(); err != nil {
			m.setStatus(err.Error(), true)
		} else {
			m.failures = 0
			m.setStatus("Selection cleared", false)
		}
	case "R":
		m.loading = true
		return m, tea.Batch(m.spinner.Tick, m.fetchObjects())
	case "enter":
		if len(m.dash.Selection()) == 0 {
			m.setStatus(domain.ErrEmptySelection.Error(), true)
			return m, nil
		}
		if m.loading || m.dash.State() == dashboard.StateLoading {
			return m, nil
		}
		m.loading = true
		m.setStatus(fmt.Sprintf("Fetching stats for %d object(s)...", len(m.dash.Selection())), false)
		return m, tea.Batch(m.spinner.Tick, m.validate())
	case "right", "l", "m":
		if m.dash.State() == dashboard.StateLoaded {
			m.focus = paneMetrics
		}
	}
	return m, nil
}

func (m dashboardModel) handleMetricsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	catalog := m.dash.Catalog()

	switch msg.String() {
	case "up", "k":
		if m.metricCursor > 0 {
			m.metricCursor--
		}
	case "down", "j":
		if m.metricCursor < len(catalog)-1 {
			m.metricCursor++
		}
	case "enter":
		if m.metricCursor < len(catalog) {
			if _, err := m.dash.SelectMetric(catalog[m.metricCursor].Key); err != nil {
				m.setStatus(err.Error(), true)
			}
		}
	case "esc", "left", "h":
		if _, ok := m.dash.SelectedMetric(); ok {
			m.dash.ClearMetric()
		} else {
			m.focus = paneObjects
		}
	case "r":
		if err := m.dash.Reset(); err != nil {
			m.setStatus(err.Error(), true)
			return m, nil
		}
		m.focus = paneObjects
		m.failures = 0
		m.setStatus("Selection cleared", false)
	}
	return m, nil
}

func (m dashboardModel) visible() []domain.Object {
	if m.tab == domain.ObjectHost {
		return m.hosts
	}
	return m.vms
}

// --- View ---

func (m dashboardModel) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}

	header := components.Header(m.width, "dashboard", styles.StatusIndicator(m.dash.State().String()))
	footer := components.Footer(m.width, m.bindings())

	status := m.status
	if m.loading {
		status = m.spinner.View() + " " + status
	}
	kind := components.StatusInfo
	switch {
	case m.statusIsError && !m.loading:
		kind = components.StatusError
	case !m.loading && m.dash.State() == dashboard.StateLoaded:
		kind = components.StatusSuccess
	}
	statusBar := components.StatusBar(m.width, status, kind)

	contentH := m.height - lipgloss.Height(header) - lipgloss.Height(footer) - lipgloss.Height(statusBar)
	contentH = max(contentH, 1)

	left := m.renderObjects(contentH)
	right := m.renderDetail(m.width-listWidth-1, contentH)
	content := lipgloss.JoinHorizontal(lipgloss.Top, left, " ", right)

	return lipgloss.JoinVertical(lipgloss.Left, header, content, statusBar, footer)
}

func (m dashboardModel) bindings() []components.KeyBinding {
	if m.focus == paneMetrics {
		return []components.KeyBinding{
			{Key: "↑/↓", Desc: "metric"},
			{Key: "enter", Desc: "heatmap"},
			{Key: "esc", Desc: "back"},
			{Key: "r", Desc: "reset"},
			{Key: "q", Desc: "quit"},
		}
	}
	return []components.KeyBinding{
		{Key: "space", Desc: "toggle"},
		{Key: "tab", Desc: "hosts/VMs"},
		{Key: "H/V", Desc: "all hosts/VMs"},
		{Key: "enter", Desc: "validate"},
		{Key: "r", Desc: "reset"},
		{Key: "q", Desc: "quit"},
	}
}

func (m dashboardModel) renderObjects(height int) string {
	title := "VMs"
	if m.tab == domain.ObjectHost {
		title = "Hosts"
	}

	selected := make(map[string]bool)
	for _, o := range m.dash.Selection() {
		selected[o.ID] = true
	}

	lines := []string{styles.Title.Render(title), ""}
	list := m.visible()
	if len(list) == 0 && !m.loading {
		lines = append(lines, styles.MutedText.Render("No running "+strings.ToLower(title)))
	}

	// Keep the cursor in view.
	rows := max(height-len(lines), 1)
	start := 0
	if m.cursor >= rows {
		start = m.cursor - rows + 1
	}

	for i := start; i < len(list) && i < start+rows; i++ {
		obj := list[i]
		line := styles.Checkbox(selected[obj.ID]) + " " + ansi.Truncate(obj.Label(), listWidth-6, "…")

		switch {
		case i == m.cursor && m.focus == paneObjects:
			line = styles.SelectedRow.Render(line)
		case !m.dash.Eligible(obj) && !selected[obj.ID]:
			line = styles.MutedText.Render(" " + line)
		default:
			line = " " + line
		}
		lines = append(lines, line)
	}

	return lipgloss.NewStyle().
		Width(listWidth).
		Height(height).
		Render(strings.Join(lines, "\n"))
}

func (m dashboardModel) renderDetail(width, height int) string {
	style := lipgloss.NewStyle().Width(max(width, 10)).Height(height)

	if m.dash.State() != dashboard.StateLoaded {
		hint := "Select running hosts or VMs, then press enter."
		if m.dash.State() == dashboard.StateLoading {
			hint = "Loading..."
		}
		return style.Render(styles.MutedText.Render(hint))
	}

	if s, ok := m.dash.SelectedMetric(); ok {
		grid := heatmap.Build(s, m.loc)
		body := lipgloss.JoinVertical(lipgloss.Left,
			styles.Title.Render(s.Key)+styles.MutedText.Render(fmt.Sprintf("  (%s)", m.loc)),
			"",
			components.Heatmap(grid),
			"",
			components.MetricsChart(s, max(width-4, 10)),
		)
		return style.Render(body)
	}

	return style.Render(m.renderCatalog(width, height))
}

func (m dashboardModel) renderCatalog(width, height int) string {
	catalog := m.dash.Catalog()
	report := m.dash.Report()

	lines := []string{styles.Title.Render("Metrics"), ""}
	if len(catalog) == 0 {
		lines = append(lines, styles.MutedText.Render("No metrics: every object failed."))
		return strings.Join(lines, "\n")
	}

	rows := max(height-len(lines), 1)
	start := 0
	if m.metricCursor >= rows {
		start = m.metricCursor - rows + 1
	}
	end := min(len(catalog), start+rows)

	for i, s := range catalog[start:end] {
		idx := start + i
		line := fmt.Sprintf("%-*s %3d layer(s)", max(width-16, 10), ansi.Truncate(s.Key, max(width-16, 10), "…"), report.Layers[s.Key])
		if idx == m.metricCursor && m.focus == paneMetrics {
			line = styles.SelectedRow.Render(line)
		} else {
			line = " " + line
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}
