// Package tui provides the Bubble Tea line inspector.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/lybrarian/internal/model"
	"github.com/verte-zerg/lybrarian/internal/report"
)

// Analyzer analyzes a single line.
type Analyzer interface {
	AnalyzeLine(ctx context.Context, text string) model.LineProsody
}

var (
	titleStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A")).Bold(true)
	footerStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	noticeStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
)

type analyzedMsg struct {
	line model.LineProsody
}

// Model implements the Bubble Tea inspector UI.
type Model struct {
	ctx      context.Context
	analyzer Analyzer
	footer   string

	input   textinput.Model
	history table.Model
	results []model.LineProsody
	pending bool

	width  int
	height int
}

// NewModel constructs an inspector. footer describes the active backends.
func NewModel(ctx context.Context, analyzer Analyzer, footer string) *Model {
	input := textinput.New()
	input.Prompt = "Line: "
	input.Placeholder = "type a lyric line and press enter"
	input.CharLimit = 0
	input.Cursor.SetMode(cursor.CursorBlink)
	input.Focus()

	history := table.New(
		table.WithColumns(columnsFor(0)),
		table.WithHeight(8),
		table.WithFocused(true),
	)
	history.SetStyles(historyStyles())

	return &Model{
		ctx:      ctx,
		analyzer: analyzer,
		footer:   footer,
		input:    input,
		history:  history,
	}
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updateLayout()
		return m, nil
	case analyzedMsg:
		m.pending = false
		msg.line.Line = len(m.results) + 1
		m.results = append(m.results, msg.line)
		m.refreshRows()
		return m, nil
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyEnter:
			return m, m.submit()
		case tea.KeyUp, tea.KeyDown:
			var cmd tea.Cmd
			m.history, cmd = m.history.Update(msg)
			return m, cmd
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) submit() tea.Cmd {
	text := strings.TrimSpace(m.input.Value())
	if text == "" || m.pending {
		return nil
	}
	m.pending = true
	m.input.Reset()
	ctx, analyzer := m.ctx, m.analyzer
	return func() tea.Msg {
		return analyzedMsg{line: analyzer.AnalyzeLine(ctx, text)}
	}
}

// View implements tea.Model.
func (m *Model) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("lybrarian inspect"))
	b.WriteString("\n\n")
	b.WriteString(m.input.View())
	b.WriteString("\n\n")
	if len(m.results) > 0 {
		b.WriteString(m.history.View())
		b.WriteString("\n")
		b.WriteString(m.detail(m.results[len(m.results)-1]))
		b.WriteString("\n")
	}
	if m.pending {
		b.WriteString(noticeStyle.Render("analyzing..."))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(footerStyle.Render(m.footerLine()))
	return b.String()
}

func (m *Model) detail(lp model.LineProsody) string {
	switch lp.Recovery {
	case model.RecoveryRecovered:
		return noticeStyle.Render(fmt.Sprintf("rhyme approximated via %q", lp.Substitute))
	case model.RecoveryExhausted, model.RecoveryMalformed:
		return warningStyle.Render(fmt.Sprintf("rhyme unresolved (%s)", lp.Recovery))
	case model.RecoveryUnavailable:
		return warningStyle.Render("rhyme unresolved")
	default:
		return ""
	}
}

func (m *Model) footerLine() string {
	parts := []string{"enter analyze", "↑/↓ history", "esc quit"}
	if m.footer != "" {
		parts = append(parts, m.footer)
	}
	return strings.Join(parts, " • ")
}

func (m *Model) refreshRows() {
	cells := report.LineRows(m.results)
	rows := make([]table.Row, 0, len(cells))
	for _, row := range cells {
		rows = append(rows, table.Row(row))
	}
	m.history.SetRows(rows)
	m.history.GotoBottom()
}

func (m *Model) updateLayout() {
	if m.width <= 0 {
		return
	}
	m.input.Width = maxInt(1, m.width-lipgloss.Width(m.input.Prompt)-1)
	m.history.SetColumns(columnsFor(m.width))
	m.history.SetWidth(m.width)
	if m.height > 0 {
		// Title, input, detail and footer take eight rows.
		m.history.SetHeight(maxInt(3, m.height-8))
	}
}

func columnsFor(width int) []table.Column {
	cols := []table.Column{
		{Title: report.LineHeaders[0], Width: 3},
		{Title: report.LineHeaders[1], Width: 4},
		{Title: report.LineHeaders[2], Width: 12},
		{Title: report.LineHeaders[3], Width: 12},
		{Title: report.LineHeaders[4], Width: 12},
		{Title: report.LineHeaders[5], Width: 30},
	}
	if width > 0 {
		used := 0
		for _, c := range cols[:len(cols)-1] {
			used += c.Width + 1
		}
		cols[len(cols)-1].Width = maxInt(10, width-used-2)
	}
	return cols
}

func historyStyles() table.Styles {
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		Border(lipgloss.NormalBorder(), false, false, true, false).
		BorderForeground(lipgloss.Color("#4A4A4A")).
		Foreground(lipgloss.Color("#C0C0C0")).
		Bold(true).
		Padding(0, 1).
		PaddingLeft(0)
	styles.Cell = styles.Cell.
		Padding(0, 1).
		PaddingLeft(0)
	styles.Selected = styles.Cell.
		Foreground(lipgloss.Color("#F0F0F0")).
		Bold(true)
	return styles
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
