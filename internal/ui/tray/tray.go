package tray

import (
	"fmt"

	"fyne.io/fyne/v2"

	"focusnoise/internal/core/pomodoro"
	"focusnoise/resources"
)

const menuTitle = "Focus Noise"

// Host is the part of a desktop app that owns the system tray.
type Host interface {
	SetSystemTrayMenu(menu *fyne.Menu)
	SetSystemTrayIcon(icon fyne.Resource)
}

// Callbacks defines tray action handlers.
type Callbacks struct {
	OnPreferences func()
	OnToggleRun   func()
	OnReset       func()
	OnQuit        func()
}

// Manager handles system tray state.
type Manager struct {
	host       Host
	callbacks  Callbacks
	statusItem *fyne.MenuItem
	toggleItem *fyne.MenuItem
	resetItem  *fyne.MenuItem
	icon       string
}

// New creates a tray manager with the provided callbacks.
func New(host Host, callbacks Callbacks) *Manager {
	manager := &Manager{
		host:      host,
		callbacks: callbacks,
	}

	manager.statusItem = fyne.NewMenuItem("Ready", nil)
	manager.statusItem.Disabled = true
	manager.toggleItem = fyne.NewMenuItem("Start", func() {
		invoke(manager.callbacks.OnToggleRun)
	})
	manager.resetItem = fyne.NewMenuItem("Reset", func() {
		invoke(manager.callbacks.OnReset)
	})
	manager.resetItem.Disabled = true

	manager.Update(pomodoro.Status{Phase: pomodoro.PhaseIdle, RunState: pomodoro.RunIdle})
	return manager
}

// Update reflects status in the menu and the tray icon.
func (manager *Manager) Update(status pomodoro.Status) {
	manager.statusItem.Label = Describe(status)
	if status.RunState == pomodoro.RunRunning {
		manager.toggleItem.Label = "Pause"
	} else if status.Phase == pomodoro.PhaseIdle {
		manager.toggleItem.Label = "Start"
	} else {
		manager.toggleItem.Label = "Resume"
	}
	manager.resetItem.Disabled = status.Phase == pomodoro.PhaseIdle

	if icon := iconFor(status); icon != manager.icon {
		manager.icon = icon
		manager.host.SetSystemTrayIcon(resources.MustIcon(icon))
	}
	manager.refreshMenu()
}

// Describe renders the status line shown in the tray menu.
func Describe(status pomodoro.Status) string {
	var label string
	switch status.Phase {
	case pomodoro.PhaseWork:
		label = "Work"
	case pomodoro.PhaseBreak:
		label = "Break"
	case pomodoro.PhaseLongBreak:
		label = "Long break"
	default:
		return "Ready"
	}
	line := fmt.Sprintf("%s %s", label, pomodoro.FormatClock(status.SecondsRemaining))
	if status.RunState == pomodoro.RunPaused {
		line += " (paused)"
	}
	return line
}

func iconFor(status pomodoro.Status) string {
	if status.RunState == pomodoro.RunPaused {
		return resources.IconPaused
	}
	switch status.Phase {
	case pomodoro.PhaseWork:
		return resources.IconWork
	case pomodoro.PhaseBreak:
		return resources.IconBreak
	case pomodoro.PhaseLongBreak:
		return resources.IconLongBreak
	}
	return resources.IconIdle
}

func (manager *Manager) refreshMenu() {
	manager.host.SetSystemTrayMenu(fyne.NewMenu(menuTitle,
		manager.statusItem,
		manager.toggleItem,
		manager.resetItem,
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Preferences", func() {
			invoke(manager.callbacks.OnPreferences)
		}),
		fyne.NewMenuItem("Quit", func() {
			invoke(manager.callbacks.OnQuit)
		}),
	))
}

func invoke(callback func()) {
	if callback != nil {
		callback()
	}
}
