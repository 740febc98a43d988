// Package console is the terminal shell: a bubbletea program showing the
// countdown, the cycle guide and the noise choices.
package console

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"

	"focusnoise/internal/core/model"
	"focusnoise/internal/core/pomodoro"
	"focusnoise/internal/noise"
)

const (
	refreshInterval = 250 * time.Millisecond
	volumeStep      = 0.05
	progressWidth   = 40
)

// Timer is the part of the pomodoro timer the console drives.
type Timer interface {
	Start()
	Pause()
	Reset()
	Status() pomodoro.Status
	Config() model.Config
}

// Session is the part of the session controller the console drives.
type Session interface {
	WorkNoise() noise.Color
	BreakNoise() noise.Color
	Volume() float64
	SetWorkNoise(color noise.Color) error
	SetBreakNoise(color noise.Color) error
	SetVolume(volume float64) error
}

type refreshMsg time.Time

// Model is the bubbletea model of the terminal shell.
type Model struct {
	timer    Timer
	session  Session
	keys     keyMap
	help     help.Model
	progress progress.Model
	styles   styles

	status pomodoro.Status
	config model.Config
	err    error
}

// New creates the console model.
func New(timer Timer, session Session) Model {
	return Model{
		timer:    timer,
		session:  session,
		keys:     defaultKeyMap(),
		help:     help.New(),
		progress: progress.New(progress.WithSolidFill(string(tomato)), progress.WithoutPercentage(), progress.WithWidth(progressWidth)),
		styles:   newStyles(),
		status:   timer.Status(),
		config:   timer.Config(),
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return refresh()
}

func refresh() tea.Cmd {
	return tea.Tick(refreshInterval, func(at time.Time) tea.Msg {
		return refreshMsg(at)
	})
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case refreshMsg:
		m.sync()
		return m, refresh()

	case tea.WindowSizeMsg:
		m.help.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.err = nil
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	case key.Matches(msg, m.keys.Toggle):
		if m.timer.Status().RunState == pomodoro.RunRunning {
			m.timer.Pause()
		} else {
			m.timer.Start()
		}
	case key.Matches(msg, m.keys.Reset):
		m.timer.Reset()
	case key.Matches(msg, m.keys.WorkNoise):
		m.err = m.session.SetWorkNoise(m.session.WorkNoise().Next())
	case key.Matches(msg, m.keys.BreakNoise):
		m.err = m.session.SetBreakNoise(m.session.BreakNoise().Next())
	case key.Matches(msg, m.keys.VolumeUp):
		m.err = m.session.SetVolume(m.session.Volume() + volumeStep)
	case key.Matches(msg, m.keys.VolumeDown):
		m.err = m.session.SetVolume(m.session.Volume() - volumeStep)
	}
	m.sync()
	return m, nil
}

func (m *Model) sync() {
	m.status = m.timer.Status()
	m.config = m.timer.Config()
}

// View implements tea.Model.
func (m Model) View() string {
	accent := phaseColor(m.status.Phase)

	var b strings.Builder
	b.WriteString(m.styles.Title.Background(accent).Render("Focus Noise"))
	b.WriteString("\n")
	b.WriteString(m.styles.Clock.Foreground(accent).Render(
		fmt.Sprintf("%s  %s", phaseLabel(m.status), pomodoro.FormatClock(m.status.SecondsRemaining))))
	b.WriteString("\n")

	elapsed := 0.0
	if m.status.Phase != pomodoro.PhaseIdle {
		elapsed = 1 - m.status.Progress
	}
	b.WriteString(m.progress.ViewAs(elapsed))
	b.WriteString("\n\n")
	b.WriteString(m.cycleGuide())
	b.WriteString("\n\n")
	b.WriteString(m.styles.Info.Render(fmt.Sprintf("work noise %s · break noise %s · volume %d%%",
		m.session.WorkNoise().Label(), m.session.BreakNoise().Label(), int(m.session.Volume()*100+0.5))))
	if m.err != nil {
		b.WriteString("\n")
		b.WriteString(m.styles.Error.Render(m.err.Error()))
	}
	b.WriteString("\n\n")
	b.WriteString(m.help.View(m.keys))

	return m.styles.Frame.Render(b.String())
}

func phaseLabel(status pomodoro.Status) string {
	var label string
	switch status.Phase {
	case pomodoro.PhaseWork:
		label = "Work"
	case pomodoro.PhaseBreak:
		label = "Break"
	case pomodoro.PhaseLongBreak:
		label = "Long break"
	default:
		label = "Ready"
	}
	if status.RunState == pomodoro.RunPaused {
		label += " (paused)"
	}
	return label
}

// cycleGuide renders Work 1 / Break 1 / ... / Long break with the current
// step highlighted.
func (m Model) cycleGuide() string {
	cycles := m.config.CyclesBeforeLongBreak
	steps := make([]string, 0, cycles*2)
	for i := 0; i < cycles; i++ {
		steps = append(steps, fmt.Sprintf("W%d", i+1))
		if i < cycles-1 {
			steps = append(steps, fmt.Sprintf("B%d", i+1))
		} else {
			steps = append(steps, "LB")
		}
	}

	position := m.status.CyclePosition
	rendered := make([]string, len(steps))
	for i, step := range steps {
		switch {
		case i == position:
			rendered[i] = m.styles.StepActive.Foreground(phaseColor(m.status.Phase)).Render(step)
		case i < position:
			rendered[i] = m.styles.StepDone.Render(step)
		default:
			rendered[i] = m.styles.StepTodo.Render(step)
		}
	}
	return strings.Join(rendered, " › ")
}
