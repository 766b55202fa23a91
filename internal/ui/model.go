package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/desertwitch/nativeio/internal/queue"
	"github.com/dustin/go-humanize"
)

const maxLogLines = 100

//nolint:gochecknoglobals
var (
	// titleStyle defines the style for a panel's title.
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4"))

	// borderStyle defines the style for a panel's borders.
	borderStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#7D56F4"))

	// infoStyle defines the style for a panel's text.
	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA"))

	// helpStyle defines the style for the help panel's text.
	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#626262")).
			Padding(0, 1)
)

// ProgressMsg is a [tea.Msg] containing [queue.Progress] information.
type ProgressMsg struct {
	t    time.Time
	data queue.Progress
}

// TeaModel is the principal [tea.Model] for the command-line user interface.
type TeaModel struct {
	width  int
	height int

	title  string
	cancel context.CancelFunc

	uiHandler *Handler

	fullWidthWithBorders  int
	splitWidthWithBorders int

	data queue.Progress

	itemsProgress progress.Model
	bytesProgress progress.Model
	logsViewport  viewport.Model
	logs          []string

	ready bool
}

// NewTeaModel returns an initial new [TeaModel].
//
//nolint:mnd
func NewTeaModel(uiHandler *Handler, title string, cancel context.CancelFunc) TeaModel {
	return TeaModel{
		title:     title,
		uiHandler: uiHandler,
		itemsProgress: progress.New(
			progress.WithDefaultGradient(),
			progress.WithWidth(80),
		),
		bytesProgress: progress.New(
			progress.WithDefaultGradient(),
			progress.WithWidth(80),
		),
		logsViewport: viewport.New(80, 20),
		logs:         make([]string, 0, maxLogLines),
		cancel:       cancel,
	}
}

// Init initializes the model within a [tea.Program].
func (m TeaModel) Init() tea.Cmd {
	if m.uiHandler != nil {
		m.uiHandler.Initialized.Store(true)
	}

	return tea.Batch(
		tea.EnterAltScreen,
		updateProgress(m.uiHandler),
	)
}

// updateProgress produces a [tea.Cmd] which, when executed after a tick,
// returns a [ProgressMsg] with the current [queue.Progress].
func updateProgress(h *Handler) tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(t time.Time) tea.Msg { //nolint:mnd
		msg := ProgressMsg{t: t}
		if h != nil && h.progress != nil {
			msg.data = h.progress.Progress()
		}

		return msg
	})
}

func (m *TeaModel) renderLogs() {
	logs := lipgloss.NewStyle().
		Width(m.logsViewport.Width).
		Render(strings.TrimSuffix(strings.Join(m.logs, ""), "\n"))

	m.logsViewport.SetContent(logs)
	m.logsViewport.GotoBottom()
}

// Update is the principal message handling method of the model.
// It sets the internal state of the model, for later rendering.
//
//nolint:mnd,ireturn
func (m TeaModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			m.cancel()

			return m, tea.Quit
		case "q":
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		m.fullWidthWithBorders = m.width - 2
		m.splitWidthWithBorders = (m.width / 2) - 2

		m.itemsProgress.Width = m.splitWidthWithBorders
		m.bytesProgress.Width = m.splitWidthWithBorders

		// Upper panels take about 40% of the height, the logs the rest
		// minus borders and title.
		upperHeight := m.height * 2 / 5
		m.logsViewport.Width = m.fullWidthWithBorders
		m.logsViewport.Height = m.height - upperHeight - 3

		if len(m.logs) > 0 {
			m.renderLogs()
		}

		m.ready = true

	case ProgressMsg:
		m.data = msg.data

		var itemsPct float64
		if m.data.TotalItems > 0 {
			itemsPct = float64(m.data.ProcessedItems) / float64(m.data.TotalItems)
		}

		cmds = append(cmds,
			m.itemsProgress.SetPercent(itemsPct),
			m.bytesProgress.SetPercent(m.data.ProgressPct/100),
			updateProgress(m.uiHandler),
		)

	case LogMsg:
		if len(m.logs) >= maxLogLines {
			m.logs = m.logs[1:]
		}
		m.logs = append(m.logs, string(msg))
		m.renderLogs()

	case progress.FrameMsg:
		updatedItems, cmd := m.itemsProgress.Update(msg)
		if progressModel, ok := updatedItems.(progress.Model); ok {
			m.itemsProgress = progressModel
		}
		cmds = append(cmds, cmd)

		updatedBytes, cmd := m.bytesProgress.Update(msg)
		if progressModel, ok := updatedBytes.(progress.Model); ok {
			m.bytesProgress = progressModel
		}
		cmds = append(cmds, cmd)
	}

	m.logsViewport, cmd = m.logsViewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

// View is the principal rendering function of the model.
func (m TeaModel) View() string {
	if !m.ready {
		return "Loading the GUI..."
	}

	progressSection := lipgloss.JoinHorizontal(
		lipgloss.Top,
		borderStyle.Width(m.splitWidthWithBorders).Render(
			m.formatPanel(m.title+": Files", m.itemsProgress.View(), m.formatItems()),
		),
		borderStyle.Width(m.splitWidthWithBorders).Render(
			m.formatPanel(m.title+": Data", m.bytesProgress.View(), m.formatBytes()),
		),
	)

	logsSection := borderStyle.
		Width(m.fullWidthWithBorders).
		Render(
			lipgloss.JoinVertical(
				lipgloss.Left,
				titleStyle.Width(m.fullWidthWithBorders).Render("Process Information"),
				lipgloss.NewStyle().Width(m.fullWidthWithBorders).Render(m.logsViewport.View()),
			),
		)

	helpSection := helpStyle.
		Width(m.fullWidthWithBorders).
		Render("q: quit gui • ctrl+c: quit program")

	return lipgloss.JoinVertical(
		lipgloss.Left,
		progressSection,
		logsSection,
		helpSection,
	)
}

func (m TeaModel) formatPanel(title string, progressBar string, details string) string {
	return lipgloss.JoinVertical(
		lipgloss.Left,
		titleStyle.Width(m.splitWidthWithBorders).Render(title),
		"",
		progressBar,
		"",
		infoStyle.Width(m.splitWidthWithBorders).Render(details),
	)
}

func (m TeaModel) formatItems() string {
	p := m.data

	status := "Waiting"
	switch {
	case p.HasFinished:
		status = "Finished=" + p.FinishTime.Format("15:04:05")
	case p.HasStarted:
		status = "Started=" + p.StartTime.Format("15:04:05")
	}

	return fmt.Sprintf(
		"Files: %d/%d\n"+
			"InProgress=%d, Success=%d, Skipped=%d\n"+
			"Time: %s\n",
		p.ProcessedItems, p.TotalItems,
		p.InProgressItems, p.SuccessItems, p.SkippedItems,
		status,
	)
}

func (m TeaModel) formatBytes() string {
	p := m.data

	speed := fmt.Sprintf("%d %s", int(p.TransferSpeed), p.TransferSpeedUnit)
	if p.TransferSpeedUnit == "bytes/sec" {
		speed = humanize.IBytes(uint64(p.TransferSpeed)) + "/s"
	}

	eta := "-"
	if !p.HasFinished && !p.ETA.IsZero() {
		eta = fmt.Sprintf("%s (%.1fmin left)", p.ETA.Format("15:04:05"), time.Until(p.ETA).Minutes())
	}

	return fmt.Sprintf(
		"Data: %s of %s (%.2f%%)\n"+
			"Speed: %s\n"+
			"ETA: %s\n",
		humanize.IBytes(p.TransferredBytes), humanize.IBytes(p.TotalBytes), p.ProgressPct,
		speed,
		eta,
	)
}
