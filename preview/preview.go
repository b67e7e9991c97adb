// Package preview plays a choreography in the terminal. It is the headless
// counterpart of the window viewer: the same choreographer is ticked by a
// frame timer and the camera state is printed instead of rendered.
package preview

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/soypat/flyby"
	"github.com/soypat/glgl/math/ms3"
)

const barWidth = 30

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	stageStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))
	barStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("63"))
	helpStyle  = lipgloss.NewStyle().Faint(true)
)

// frameMsg is delivered once per frame with the wall clock time.
type frameMsg time.Time

// Model is a bubbletea model that ticks a choreographer once per frame.
type Model struct {
	ch       *flyby.Choreographer
	cam      *flyby.BasicCamera
	interval time.Duration
	last     time.Time
	// cancelled is set when the user quits before the run completes.
	cancelled bool
}

var _ tea.Model = Model{}

// New returns a preview of the run driven by ch on cam at fps frames per second.
// The choreography must already be started. fps <= 0 defaults to 60.
func New(ch *flyby.Choreographer, cam *flyby.BasicCamera, fps int) Model {
	if fps <= 0 {
		fps = 60
	}
	return Model{ch: ch, cam: cam, interval: time.Second / time.Duration(fps)}
}

// Cancelled reports whether the user stopped the run.
func (m Model) Cancelled() bool { return m.cancelled }

func (m Model) Init() tea.Cmd {
	return m.frame()
}

func (m Model) frame() tea.Cmd {
	return tea.Tick(m.interval, func(t time.Time) tea.Msg { return frameMsg(t) })
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			if m.ch.Running() {
				m.ch.Cancel()
				m.cancelled = true
			}
			return m, tea.Quit
		}
	case frameMsg:
		now := time.Time(msg)
		if !m.last.IsZero() {
			m.ch.Tick(now.Sub(m.last))
		}
		m.last = now
		if !m.ch.Running() {
			return m, tea.Quit
		}
		return m, m.frame()
	}
	return m, nil
}

func (m Model) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("flyby preview"))
	b.WriteString("\n\n")
	status, ok := m.ch.Active()
	switch {
	case ok:
		fmt.Fprintf(&b, "stage %d %s\n", status.Index+1, stageStyle.Render(status.Name))
		b.WriteString(barStyle.Render(progressBar(status.Progress, barWidth)))
		fmt.Fprintf(&b, " %3d%%\n", int(status.Progress*100))
	case m.ch.Done():
		b.WriteString(stageStyle.Render("done"))
		b.WriteString("\n")
	default:
		b.WriteString(stageStyle.Render("stopped"))
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "position %s\n", fmtVec(m.cam.Pos))
	fmt.Fprintf(&b, "look at  %s\n", fmtVec(m.cam.Target))
	fmt.Fprintf(&b, "elapsed  %s\n\n", m.ch.Elapsed().Truncate(10*time.Millisecond))
	b.WriteString(helpStyle.Render("q to quit"))
	b.WriteString("\n")
	return b.String()
}

func progressBar(p float32, width int) string {
	filled := int(p * float32(width))
	filled = min(max(filled, 0), width)
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}

func fmtVec(v ms3.Vec) string {
	return fmt.Sprintf("(%7.2f, %7.2f, %7.2f)", v.X, v.Y, v.Z)
}

// Run plays the preview on the terminal until the run completes or the user quits.
func Run(m Model, opts ...tea.ProgramOption) (Model, error) {
	final, err := tea.NewProgram(m, opts...).Run()
	if err != nil {
		return m, err
	}
	return final.(Model), nil
}
