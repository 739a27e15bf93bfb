package tui

import (
	"errors"
	"fmt"
	"strings"

	"nathanbeddoewebdev/xostats/internal/services/auth"
	"nathanbeddoewebdev/xostats/internal/tui/components"
	"nathanbeddoewebdev/xostats/internal/tui/styles"
	"nathanbeddoewebdev/xostats/internal/xoapi"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type serverStatus struct {
	server   string
	endpoint string
	status   string // "logged in", "not logged in", or an error
	ok       bool
}

type authStatusModel struct {
	statuses []serverStatus

	width  int
	height int
}

// serverStatuses looks up the stored token of every server. Duplicate
// spellings of the same server are shown once.
func serverStatuses(store auth.Store, servers []string) []serverStatus {
	seen := make(map[string]bool, len(servers))
	statuses := make([]serverStatus, 0, len(servers))
	for _, server := range servers {
		server = strings.TrimSpace(server)
		key := auth.NormalizeServer(server)
		if server == "" || seen[key] {
			continue
		}
		seen[key] = true

		st := serverStatus{server: server}
		if endpoint, err := xoapi.Endpoint(server); err == nil {
			st.endpoint = endpoint
		}

		_, err := store.GetToken(server)
		switch {
		case err == nil:
			st.status, st.ok = "logged in", true
		case errors.Is(err, auth.ErrTokenNotFound):
			st.status = "not logged in"
		default:
			st.status = fmt.Sprintf("error: %v", err)
		}
		statuses = append(statuses, st)
	}
	return statuses
}

// RunAuthStatus starts the full-window auth status TUI for the given
// servers.
func RunAuthStatus(store auth.Store, servers []string) error {
	m := authStatusModel{statuses: serverStatuses(store, servers)}

	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err := p.Run()
	return err
}

func (m authStatusModel) Init() tea.Cmd {
	return nil
}

func (m authStatusModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			return m, tea.Quit
		}
	}

	return m, nil
}

func (m authStatusModel) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}

	header := components.Header(m.width, "auth status", "")
	footer := components.Footer(m.width, []components.KeyBinding{
		{Key: "q", Desc: "quit"},
	})

	contentH := m.height - lipgloss.Height(header) - lipgloss.Height(footer)
	if contentH < 1 {
		contentH = 1
	}

	return lipgloss.JoinVertical(lipgloss.Left, header, m.renderContent(contentH), footer)
}

func (m authStatusModel) renderContent(height int) string {
	if len(m.statuses) == 0 {
		return lipgloss.Place(
			m.width, height,
			lipgloss.Center, lipgloss.Center,
			styles.MutedText.Render("No server configured. Run 'xostats auth login <url>'."),
		)
	}

	title := styles.Title.Render("Xen Orchestra Authentication")

	rows := make([]string, 0, len(m.statuses)*2)
	for _, st := range m.statuses {
		var statusText string
		if st.ok {
			statusText = styles.SuccessText.Render(st.status)
		} else {
			statusText = styles.MutedText.Render(st.status)
		}
		rows = append(rows, styles.Label.Width(32).Render(st.server)+statusText)
		if st.endpoint != "" {
			rows = append(rows, "  "+styles.MutedText.Render(st.endpoint))
		}
	}

	card := styles.Card.Width(64).Render(strings.Join(rows, "\n"))
	combined := lipgloss.JoinVertical(lipgloss.Center, title, "", card)

	return lipgloss.Place(m.width, height, lipgloss.Center, lipgloss.Center, combined)
}
