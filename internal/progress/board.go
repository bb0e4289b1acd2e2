package progress

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/muesli/reflow/truncate"

	"github.com/buckleypaul/lfz/internal/ui"
)

// Board renders one status line per target, updated in place, without
// taking over the whole screen. The final frame stays in scrollback when
// the program exits.
type Board struct {
	prog *tea.Program
	done chan struct{}
}

// NewBoard starts the live display for the given target names.
func NewBoard(w io.Writer, names []string) *Board {
	p := tea.NewProgram(
		newBoardModel(names),
		tea.WithOutput(w),
		tea.WithInput(nil),
	)
	b := &Board{prog: p, done: make(chan struct{})}
	go func() {
		defer close(b.done)
		_, _ = p.Run()
	}()
	return b
}

func (b *Board) Update(index int, state State, msg string) {
	b.prog.Send(updateMsg{index: index, state: state, msg: msg})
}

func (b *Board) Finish(index int, success bool, artifact string, duration time.Duration) {
	b.prog.Send(finishMsg{index: index, success: success, artifact: artifact, duration: duration})
}

// Close waits for the final frame. The model quits itself once every
// target is finished; Quit covers early-abort paths.
func (b *Board) Close() {
	b.prog.Quit()
	<-b.done
}

type updateMsg struct {
	index int
	state State
	msg   string
}

type finishMsg struct {
	index    int
	success  bool
	artifact string
	duration time.Duration
}

type boardRow struct {
	name     string
	state    State
	msg      string
	artifact string
	duration time.Duration
}

type boardModel struct {
	spinner spinner.Model
	rows    []boardRow
	width   int
	done    int
}

func newBoardModel(names []string) boardModel {
	sp := spinner.New()
	sp.Spinner = spinner.MiniDot
	sp.Style = ui.InfoStyle

	rows := make([]boardRow, len(names))
	for i, name := range names {
		rows[i] = boardRow{name: name, state: StatePending}
	}
	return boardModel{spinner: sp, rows: rows, width: 80}
}

func (m boardModel) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m boardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case updateMsg:
		if msg.index < 0 || msg.index >= len(m.rows) {
			return m, nil
		}
		row := &m.rows[msg.index]
		// A finished or further-along target keeps its state; late
		// updates from a draining output reader must not regress it.
		if row.state.Terminal() || msg.state < row.state {
			return m, nil
		}
		row.state = msg.state
		row.msg = msg.msg
		return m, nil

	case finishMsg:
		if msg.index < 0 || msg.index >= len(m.rows) {
			return m, nil
		}
		row := &m.rows[msg.index]
		if row.state.Terminal() {
			return m, nil
		}
		if msg.success {
			row.state = StateSuccess
		} else {
			row.state = StateFailed
		}
		row.msg = ""
		row.artifact = msg.artifact
		row.duration = msg.duration
		m.done++
		if m.done == len(m.rows) {
			return m, tea.Quit
		}
		return m, nil
	}

	return m, nil
}

func (m boardModel) View() string {
	var b strings.Builder
	for _, row := range m.rows {
		line := m.renderRow(row)
		if m.width > 0 {
			line = truncate.String(line, uint(m.width))
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	return b.String()
}

func (m boardModel) renderRow(row boardRow) string {
	switch row.state {
	case StatePending:
		return fmt.Sprintf("%s %s %s",
			ui.DimStyle.Render("[  ]"), row.name, ui.DimStyle.Render("waiting"))
	case StateStarting:
		return fmt.Sprintf("[%s ] %s %s",
			m.spinner.View(), row.name, ui.DimStyle.Render("configuring"))
	case StateRunning:
		return fmt.Sprintf("[%s ] %s %s",
			m.spinner.View(), row.name, ui.DimStyle.Render(row.msg))
	case StateSuccess:
		detail := ui.FormatDuration(row.duration)
		if row.artifact != "" {
			detail = row.artifact + " (" + detail + ")"
		}
		return fmt.Sprintf("%s %s %s",
			ui.SuccessStyle.Render("[ok]"), row.name, ui.DimStyle.Render(detail))
	case StateFailed:
		return fmt.Sprintf("%s %s %s",
			ui.ErrorStyle.Render("[xx]"), row.name,
			ui.DimStyle.Render("failed ("+ui.FormatDuration(row.duration)+")"))
	}
	return row.name
}
