// Package tui implements the interactive audit ledger browser.
package tui

import (
	"fmt"
	"sort"
	"strings"

	"chaintrail/internal/audit"
	"chaintrail/internal/tui/styles"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/sync/errgroup"
)

// --- Messages ---

type ledgerLoadedMsg struct {
	entries   []audit.Entry
	valid     bool
	verifyErr error
}

type ledgerErrorMsg struct {
	err error
}

// --- Key bindings ---

type keyMap struct {
	Up      key.Binding
	Down    key.Binding
	Enter   key.Binding
	Back    key.Binding
	Refresh key.Binding
	Quit    key.Binding
}

var keys = keyMap{
	Up:      key.NewBinding(key.WithKeys("up", "k")),
	Down:    key.NewBinding(key.WithKeys("down", "j")),
	Enter:   key.NewBinding(key.WithKeys("enter")),
	Back:    key.NewBinding(key.WithKeys("esc")),
	Refresh: key.NewBinding(key.WithKeys("r")),
	Quit:    key.NewBinding(key.WithKeys("q", "ctrl+c")),
}

// --- App view ---

type appView int

const (
	viewList appView = iota
	viewDetail
)

// --- Model ---

type appModel struct {
	ledger *audit.Ledger

	view    appView
	entries []audit.Entry
	cursor  int
	offset  int

	valid     bool
	verifyErr error

	detail viewport.Model

	width  int
	height int

	loading bool
	spinner spinner.Model
	err     error

	quitting bool
}

// Run starts the full-window ledger browser. It stays open until the user
// quits from the list view.
func Run(ledger *audit.Ledger) error {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(styles.Blue)

	m := appModel{
		ledger:  ledger,
		loading: true,
		spinner: s,
		detail:  viewport.New(0, 0),
	}

	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("failed to run ledger browser: %w", err)
	}
	return nil
}

func (m appModel) Init() tea.Cmd {
	return tea.Batch(
		m.spinner.Tick,
		m.fetchLedger(),
	)
}

// fetchLedger loads the entry list and the verification verdict
// concurrently.
func (m appModel) fetchLedger() tea.Cmd {
	ledger := m.ledger
	return func() tea.Msg {
		var entries []audit.Entry
		var valid bool
		var verifyErr error

		var g errgroup.Group
		g.Go(func() error {
			var err error
			entries, err = ledger.Entries(audit.Filter{})
			return err
		})
		g.Go(func() error {
			valid, verifyErr = ledger.Verify()
			return nil
		})
		if err := g.Wait(); err != nil {
			return ledgerErrorMsg{err: err}
		}
		return ledgerLoadedMsg{entries: entries, valid: valid, verifyErr: verifyErr}
	}
}

// --- Update ---

func (m appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.detail.Width = msg.Width - 4
		m.detail.Height = msg.Height - 6
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case ledgerLoadedMsg:
		m.loading = false
		m.entries = msg.entries
		m.valid = msg.valid
		m.verifyErr = msg.verifyErr
		m.err = nil
		if m.cursor >= len(m.entries) {
			m.cursor = max(0, len(m.entries)-1)
		}
		return m, nil

	case ledgerErrorMsg:
		m.loading = false
		m.err = msg.err
		return m, nil

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	if m.view == viewDetail {
		var cmd tea.Cmd
		m.detail, cmd = m.detail.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m appModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Quit):
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, keys.Back):
		if m.view == viewDetail {
			m.view = viewList
			return m, nil
		}
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, keys.Refresh):
		m.loading = true
		return m, tea.Batch(m.spinner.Tick, m.fetchLedger())

	case key.Matches(msg, keys.Up):
		if m.view == viewList && m.cursor > 0 {
			m.cursor--
			m.scrollToCursor()
		} else if m.view == viewDetail {
			m.detail.ScrollUp(1)
		}
		return m, nil

	case key.Matches(msg, keys.Down):
		if m.view == viewList && m.cursor < len(m.entries)-1 {
			m.cursor++
			m.scrollToCursor()
		} else if m.view == viewDetail {
			m.detail.ScrollDown(1)
		}
		return m, nil

	case key.Matches(msg, keys.Enter):
		if m.view == viewList && len(m.entries) > 0 {
			m.view = viewDetail
			m.detail.SetContent(renderDetail(m.entries[m.cursor]))
			m.detail.GotoTop()
		}
		return m, nil
	}

	return m, nil
}

func (m *appModel) scrollToCursor() {
	visible := m.listHeight()
	if visible <= 0 {
		return
	}
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+visible {
		m.offset = m.cursor - visible + 1
	}
}

func (m appModel) listHeight() int {
	// Header, verdict line, column header, and footer take five rows.
	return m.height - 5
}

// --- View ---

func (m appModel) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(styles.Title.Render("chaintrail — audit ledger"))
	b.WriteString("\n")
	b.WriteString(m.verdictLine())
	b.WriteString("\n\n")

	switch {
	case m.loading:
		b.WriteString(m.spinner.View())
		b.WriteString(" Loading ledger...")
	case m.err != nil:
		b.WriteString(styles.ErrorText.Render("Error: " + m.err.Error()))
	case m.view == viewDetail:
		b.WriteString(m.detail.View())
	default:
		b.WriteString(m.listView())
	}

	b.WriteString("\n")
	b.WriteString(m.footer())
	return b.String()
}

func (m appModel) verdictLine() string {
	if m.loading {
		return styles.MutedText.Render("verifying chain...")
	}
	if m.valid {
		return styles.SuccessText.Render(fmt.Sprintf("chain valid • %d entries", len(m.entries)))
	}
	msg := "chain BROKEN"
	if m.verifyErr != nil {
		msg += ": " + m.verifyErr.Error()
	}
	return styles.ErrorText.Render(msg)
}

func (m appModel) listView() string {
	if len(m.entries) == 0 {
		return styles.MutedText.Render("No audit entries recorded yet.")
	}

	var b strings.Builder
	b.WriteString(styles.MutedText.Render(fmt.Sprintf("  %-19s  %-20s  %-12s  %-8s  %s",
		"TIME", "TYPE", "ACTOR", "OUTCOME", "ACTION")))
	b.WriteString("\n")

	visible := m.listHeight()
	end := min(m.offset+visible, len(m.entries))
	for i := m.offset; i < end; i++ {
		entry := m.entries[i]
		line := fmt.Sprintf("%-19s  %-20s  %-12s  %s  %s",
			entry.Timestamp.Local().Format("2006-01-02 15:04:05"),
			entry.EventType,
			entry.Actor,
			styles.OutcomeStyle(entry.Outcome).Render(fmt.Sprintf("%-8s", entry.Outcome)),
			entry.Action,
		)
		if i == m.cursor {
			b.WriteString(styles.Selected.Render("> " + line))
		} else {
			b.WriteString("  " + line)
		}
		b.WriteString("\n")
	}
	return b.String()
}

func (m appModel) footer() string {
	if m.view == viewDetail {
		return styles.MutedText.Render("↑/↓ scroll • esc back • q quit")
	}
	return styles.MutedText.Render("↑/↓ navigate • enter details • r refresh • q quit")
}

// renderDetail formats every field of an entry for the detail pane.
func renderDetail(entry audit.Entry) string {
	field := func(name, value string) string {
		if value == "" {
			value = "-"
		}
		return styles.Label.Render(fmt.Sprintf("%-16s", name)) + styles.Value.Render(value) + "\n"
	}

	var b strings.Builder
	b.WriteString(field("Event ID", entry.EventID))
	b.WriteString(field("Type", string(entry.EventType)))
	b.WriteString(field("Timestamp", entry.Timestamp.Local().Format("2006-01-02 15:04:05.000")))
	b.WriteString(field("Actor", entry.Actor))
	b.WriteString(field("Actor type", entry.ActorType))
	b.WriteString(field("Action", entry.Action))
	b.WriteString(field("Resource", entry.Resource))
	b.WriteString(styles.Label.Render(fmt.Sprintf("%-16s", "Outcome")) +
		styles.OutcomeStyle(entry.Outcome).Render(entry.Outcome) + "\n")
	b.WriteString(field("Input", entry.InputSummary))
	b.WriteString(field("Output", entry.OutputSummary))
	b.WriteString(styles.Label.Render(fmt.Sprintf("%-16s", "Previous hash")) +
		styles.HashText.Render(entry.PreviousHash) + "\n")
	b.WriteString(styles.Label.Render(fmt.Sprintf("%-16s", "Entry hash")) +
		styles.HashText.Render(entry.EntryHash) + "\n")

	if len(entry.Metadata) > 0 {
		b.WriteString("\n")
		b.WriteString(styles.Label.Render("Metadata") + "\n")
		keys := make([]string, 0, len(entry.Metadata))
		for k := range entry.Metadata {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			b.WriteString(styles.MutedText.Render("  "+k+": ") + styles.Value.Render(entry.Metadata[k]) + "\n")
		}
	}
	return b.String()
}
