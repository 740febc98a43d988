package app

import (
	"bytes"
	"flag"
	"os"
	"path/filepath"
	"testing"
	"time"

	"fyne.io/fyne/v2/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"focusnoise/internal/audio"
	"focusnoise/internal/core/clock"
	"focusnoise/internal/core/model"
	"focusnoise/internal/core/pomodoro"
	"focusnoise/internal/noise"
)

func yamlOptions(t *testing.T, manual *clock.Manual) Options {
	t.Helper()
	return Options{
		Store:     StoreYAML,
		Audio:     AudioNone,
		StatePath: filepath.Join(t.TempDir(), "state.yaml"),
		Clock:     manual,
	}
}

func TestNewResumesAcrossRuns(t *testing.T) {
	manual := clock.NewManual(time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC))
	options := yamlOptions(t, manual)

	first, err := New(options)
	require.NoError(t, err)
	require.NoError(t, first.Session.SetWorkNoise(noise.Pink))
	first.Timer.Start()
	manual.Advance(10 * time.Second)
	require.NoError(t, first.Close())
	require.NoError(t, first.Close())

	manual.Advance(20 * time.Second)
	second, err := New(options)
	require.NoError(t, err)
	defer second.Close()

	status := second.Timer.Status()
	assert.Equal(t, pomodoro.PhaseWork, status.Phase)
	assert.Equal(t, pomodoro.RunRunning, status.RunState)
	assert.Equal(t, 25*60-30, status.SecondsRemaining)
	assert.Equal(t, noise.Pink, second.Session.WorkNoise())
}

func TestNewSurvivesCorruptStateFile(t *testing.T) {
	manual := clock.NewManual(time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC))
	options := yamlOptions(t, manual)
	torn := "settings: '{\"workMinutes\": 25\ntimerSnap"
	require.NoError(t, os.WriteFile(options.StatePath, []byte(torn), 0o644))
	var logs bytes.Buffer
	options.LogOutput = &logs

	application, err := New(options)
	require.NoError(t, err)
	defer application.Close()

	assert.Equal(t, model.DefaultConfig(), application.Timer.Config())
	assert.Equal(t, pomodoro.PhaseIdle, application.Timer.Status().Phase)
	assert.Contains(t, logs.String(), "discarding unreadable state file")

	application.Timer.Start()
	reopened, err := os.ReadFile(options.StatePath)
	require.NoError(t, err)
	assert.Contains(t, string(reopened), "timerSnapshot")
}

func TestNewWithPreferencesStore(t *testing.T) {
	fyneApp := test.NewTempApp(t)
	application, err := New(Options{
		Store:       StorePreferences,
		Audio:       AudioNone,
		Preferences: fyneApp.Preferences(),
	})
	require.NoError(t, err)
	defer application.Close()

	require.NoError(t, application.Session.SetBreakNoise(noise.Green))
	assert.Equal(t, `"green"`, fyneApp.Preferences().String("breakNoise"))
}

func TestNewRejectsBadOptions(t *testing.T) {
	manual := clock.NewManual(time.Now())
	tests := []struct {
		name string
		edit func(*Options)
	}{
		{name: "unknown store", edit: func(options *Options) { options.Store = "sqlite" }},
		{name: "prefs without app", edit: func(options *Options) { options.Store = StorePreferences }},
		{name: "unknown audio", edit: func(options *Options) { options.Audio = "jack" }},
		{name: "unknown log level", edit: func(options *Options) { options.LogLevel = "loud" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			options := yamlOptions(t, manual)
			tt.edit(&options)
			_, err := New(options)
			assert.Error(t, err)
		})
	}
}

func TestNewOutput(t *testing.T) {
	output, err := NewOutput(AudioNone)
	require.NoError(t, err)
	assert.Equal(t, audio.Disabled{}, output)

	output, err = NewOutput(AudioOto)
	require.NoError(t, err)
	assert.IsType(t, &audio.OtoOutput{}, output)

	output, err = NewOutput(AudioSpeaker)
	require.NoError(t, err)
	assert.IsType(t, &audio.SpeakerOutput{}, output)
}

func TestNewLogger(t *testing.T) {
	var buffer bytes.Buffer
	logger, err := NewLogger("WARN", &buffer)
	require.NoError(t, err)

	logger.Info("hidden")
	logger.Warn("shown", "key", "value")
	assert.NotContains(t, buffer.String(), "hidden")
	assert.Contains(t, buffer.String(), "key=value")
}

func TestRegisterFlags(t *testing.T) {
	var options Options
	flags := flag.NewFlagSet(Name, flag.ContinueOnError)
	RegisterFlags(flags, &options, StoreYAML)

	require.NoError(t, flags.Parse([]string{"--audio=oto", "--log-level=debug"}))
	assert.Equal(t, StoreYAML, options.Store)
	assert.Equal(t, AudioOto, options.Audio)
	assert.Equal(t, "debug", options.LogLevel)
}
