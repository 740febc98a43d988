package tray

import (
	"testing"

	"fyne.io/fyne/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"focusnoise/internal/core/pomodoro"
	"focusnoise/resources"
)

type fakeHost struct {
	menu  *fyne.Menu
	icons []fyne.Resource
}

func (host *fakeHost) SetSystemTrayMenu(menu *fyne.Menu) {
	host.menu = menu
}

func (host *fakeHost) SetSystemTrayIcon(icon fyne.Resource) {
	host.icons = append(host.icons, icon)
}

func (host *fakeHost) item(label string) *fyne.MenuItem {
	for _, item := range host.menu.Items {
		if item.Label == label {
			return item
		}
	}
	return nil
}

func TestDescribe(t *testing.T) {
	tests := []struct {
		status   pomodoro.Status
		expected string
	}{
		{status: pomodoro.Status{Phase: pomodoro.PhaseIdle}, expected: "Ready"},
		{status: pomodoro.Status{Phase: pomodoro.PhaseWork, RunState: pomodoro.RunRunning, SecondsRemaining: 1499}, expected: "Work 24:59"},
		{status: pomodoro.Status{Phase: pomodoro.PhaseBreak, RunState: pomodoro.RunPaused, SecondsRemaining: 300}, expected: "Break 05:00 (paused)"},
		{status: pomodoro.Status{Phase: pomodoro.PhaseLongBreak, RunState: pomodoro.RunRunning, SecondsRemaining: 61}, expected: "Long break 01:01"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, Describe(tt.status))
	}
}

func TestManagerMenu(t *testing.T) {
	host := &fakeHost{}
	toggles, resets, quits, prefs := 0, 0, 0, 0
	manager := New(host, Callbacks{
		OnToggleRun:   func() { toggles++ },
		OnReset:       func() { resets++ },
		OnQuit:        func() { quits++ },
		OnPreferences: func() { prefs++ },
	})

	require.NotNil(t, host.menu)
	assert.Equal(t, "Ready", host.menu.Items[0].Label)
	assert.True(t, host.item("Reset").Disabled)
	require.Len(t, host.icons, 1)
	assert.Equal(t, resources.MustIcon(resources.IconIdle), host.icons[0])

	host.item("Start").Action()
	host.item("Preferences").Action()
	host.item("Quit").Action()
	assert.Equal(t, 1, toggles)
	assert.Equal(t, 1, prefs)
	assert.Equal(t, 1, quits)

	manager.Update(pomodoro.Status{Phase: pomodoro.PhaseWork, RunState: pomodoro.RunRunning, SecondsRemaining: 1500})
	assert.NotNil(t, host.item("Pause"))
	assert.False(t, host.item("Reset").Disabled)
	host.item("Reset").Action()
	assert.Equal(t, 1, resets)

	manager.Update(pomodoro.Status{Phase: pomodoro.PhaseWork, RunState: pomodoro.RunRunning, SecondsRemaining: 1499})
	assert.Len(t, host.icons, 2, "icon only changes with phase or run state")

	manager.Update(pomodoro.Status{Phase: pomodoro.PhaseWork, RunState: pomodoro.RunPaused, SecondsRemaining: 1499})
	assert.NotNil(t, host.item("Resume"))
	assert.Equal(t, resources.MustIcon(resources.IconPaused), host.icons[len(host.icons)-1])
}
