package console

import (
	"github.com/charmbracelet/lipgloss"

	"focusnoise/internal/core/pomodoro"
)

var (
	tomato = lipgloss.Color("#e5533d")
	leaf   = lipgloss.Color("#3fa66b")
	sky    = lipgloss.Color("#3a7bd5")
	muted  = lipgloss.Color("#8a8a8a")
	paper  = lipgloss.Color("#f5f5f5")
)

type styles struct {
	Frame      lipgloss.Style
	Title      lipgloss.Style
	Clock      lipgloss.Style
	Info       lipgloss.Style
	Error      lipgloss.Style
	StepDone   lipgloss.Style
	StepActive lipgloss.Style
	StepTodo   lipgloss.Style
}

func newStyles() styles {
	return styles{
		Frame: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(muted).
			Padding(1, 2),
		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(paper).
			Padding(0, 1),
		Clock: lipgloss.NewStyle().
			Bold(true).
			MarginTop(1).
			MarginBottom(1),
		Info: lipgloss.NewStyle().
			Foreground(muted),
		Error: lipgloss.NewStyle().
			Foreground(tomato),
		StepDone: lipgloss.NewStyle().
			Foreground(muted),
		StepActive: lipgloss.NewStyle().
			Bold(true).
			Underline(true),
		StepTodo: lipgloss.NewStyle().
			Faint(true),
	}
}

func phaseColor(phase pomodoro.Phase) lipgloss.Color {
	switch phase {
	case pomodoro.PhaseWork:
		return tomato
	case pomodoro.PhaseBreak:
		return leaf
	case pomodoro.PhaseLongBreak:
		return sky
	}
	return muted
}
