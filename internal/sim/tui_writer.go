package sim

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"twinops-sim/internal/twin"
)

// teaProgram abstracts bubbletea.Program for testing.
type teaProgram interface {
	Send(tea.Msg)
}

// logMsg carries a telemetry log line for the viewport.
type logMsg struct{ line string }

// alertMsg carries an alert log line.
type alertMsg struct{ line string }

// telemetryMsg carries a row for the live twin table.
type telemetryMsg struct{ twin.TelemetryRow }

// TUIWriter renders telemetry using a bubbletea TUI.
type TUIWriter struct {
	program    teaProgram
	done       chan struct{}
	sendSignal atomic.Bool
}

// NewTUIWriter starts a bubbletea program and returns a TUIWriter.
func NewTUIWriter() *TUIWriter {
	w := &TUIWriter{done: make(chan struct{})}
	w.sendSignal.Store(true)
	p := tea.NewProgram(newTUIModel(), tea.WithAltScreen())
	w.program = p
	go func() {
		_, _ = p.Run()
		close(w.done)
		if w.sendSignal.Load() {
			if proc, err := os.FindProcess(os.Getpid()); err == nil {
				_ = proc.Signal(os.Interrupt)
			}
		}
	}()
	return w
}

// Write implements TelemetryWriter.
func (w *TUIWriter) Write(row twin.TelemetryRow) error {
	line := fmt.Sprintf("%s[%s]%s twin=%s def=%s %scash=%.0f%s temp=%.2f tph=%.0f %sstatus=%s%s",
		colorGray, row.Timestamp.Format(time.RFC3339), colorReset,
		row.TwinID, row.DefinitionID,
		colorCyan, row.CashLevel, colorReset,
		row.Temp, row.TransactionsPerHour,
		statusColor(row.Status), row.Status, colorReset)
	w.program.Send(logMsg{line: line})
	w.program.Send(telemetryMsg{row})
	return nil
}

// WriteBatch outputs multiple telemetry rows.
func (w *TUIWriter) WriteBatch(rows []twin.TelemetryRow) error {
	for _, r := range rows {
		_ = w.Write(r)
	}
	return nil
}

// WriteAlert implements AlertWriter.
func (w *TUIWriter) WriteAlert(row twin.AlertRow) error {
	line := fmt.Sprintf("%s[%s]%s %sALERT%s twin=%s sev=%s msg=%q",
		colorGray, row.Timestamp.Format(time.RFC3339), colorReset,
		colorRed, colorReset,
		row.TwinID, row.Severity, row.Message)
	w.program.Send(alertMsg{line: line})
	return nil
}

// WriteAlerts outputs multiple alert rows.
func (w *TUIWriter) WriteAlerts(rows []twin.AlertRow) error {
	for _, r := range rows {
		_ = w.WriteAlert(r)
	}
	return nil
}

// Close shuts down the TUI program and waits for cleanup.
func (w *TUIWriter) Close() error {
	w.sendSignal.Store(false)
	if w.program != nil {
		w.program.Send(tea.Quit())
	}
	if w.done != nil {
		<-w.done
	}
	return nil
}

var (
	tuiTitleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	tuiBorderStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
)

type tuiModel struct {
	table      table.Model
	vp         viewport.Model
	alertVP    viewport.Model
	logs       []string
	alertLogs  []string
	latest     map[string]twin.TelemetryRow
	wrap       bool
	autoscroll bool
	width      int
	height     int
}

func newTUIModel() tuiModel {
	cols := []table.Column{
		{Title: "Twin", Width: 28},
		{Title: "Definition", Width: 14},
		{Title: "Status", Width: 12},
		{Title: "Cash", Width: 10},
		{Title: "Temp", Width: 8},
		{Title: "Tx/h", Width: 6},
		{Title: "Health", Width: 7},
	}
	t := table.New(table.WithColumns(cols), table.WithHeight(8))
	return tuiModel{
		table:      t,
		vp:         viewport.New(0, 0),
		alertVP:    viewport.New(0, 0),
		latest:     make(map[string]twin.TelemetryRow),
		autoscroll: true,
	}
}

func (m tuiModel) Init() tea.Cmd { return nil }

func (m tuiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "w":
			m.wrap = !m.wrap
			m.refreshViewports()
		case "a":
			m.autoscroll = !m.autoscroll
		case "up", "down", "pgup", "pgdown":
			var cmd tea.Cmd
			m.vp, cmd = m.vp.Update(msg)
			return m, cmd
		}
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.layout()
		m.refreshViewports()
	case telemetryMsg:
		m.latest[msg.TwinID] = msg.TelemetryRow
		m.refreshTable()
	case logMsg:
		m.logs = appendCapped(m.logs, msg.line, 500)
		m.refreshViewports()
	case alertMsg:
		m.alertLogs = appendCapped(m.alertLogs, msg.line, 200)
		m.refreshViewports()
	}
	return m, nil
}

func (m *tuiModel) layout() {
	logHeight := m.height - m.table.Height() - 10
	if logHeight < 3 {
		logHeight = 3
	}
	alertHeight := logHeight / 3
	if alertHeight < 2 {
		alertHeight = 2
	}
	m.vp.Width = m.width - 4
	m.vp.Height = logHeight - alertHeight
	m.alertVP.Width = m.width - 4
	m.alertVP.Height = alertHeight
}

func (m *tuiModel) refreshTable() {
	ids := make([]string, 0, len(m.latest))
	for id := range m.latest {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	rows := make([]table.Row, 0, len(ids))
	for _, id := range ids {
		r := m.latest[id]
		rows = append(rows, table.Row{
			r.TwinID,
			r.DefinitionID,
			r.Status,
			fmt.Sprintf("%.0f", r.CashLevel),
			fmt.Sprintf("%.2f", r.Temp),
			fmt.Sprintf("%.0f", r.TransactionsPerHour),
			fmt.Sprintf("%.0f", r.HealthScore),
		})
	}
	m.table.SetRows(rows)
}

func (m *tuiModel) refreshViewports() {
	m.vp.SetContent(m.renderLines(m.logs, m.vp.Width))
	m.alertVP.SetContent(m.renderLines(m.alertLogs, m.alertVP.Width))
	if m.autoscroll {
		m.vp.GotoBottom()
		m.alertVP.GotoBottom()
	}
}

func (m *tuiModel) renderLines(lines []string, width int) string {
	joined := strings.Join(lines, "\n")
	if m.wrap && width > 0 {
		return wordwrap.String(joined, width)
	}
	return joined
}

func (m tuiModel) View() string {
	var b strings.Builder
	b.WriteString(tuiTitleStyle.Render("twinops-sim") + "  (q quit, w wrap, a autoscroll)\n")
	b.WriteString(tuiBorderStyle.Render(m.table.View()) + "\n")
	b.WriteString(tuiBorderStyle.Render(m.vp.View()) + "\n")
	b.WriteString(tuiBorderStyle.Render("Alerts\n"+m.alertVP.View()) + "\n")
	return b.String()
}

func appendCapped(lines []string, line string, max int) []string {
	lines = append(lines, line)
	if len(lines) > max {
		lines = lines[len(lines)-max:]
	}
	return lines
}
