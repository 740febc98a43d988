// Package app wires the timer, sound and storage services shared by the
// desktop and terminal binaries.
package app

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"fyne.io/fyne/v2"

	"focusnoise/internal/audio"
	"focusnoise/internal/core/clock"
	"focusnoise/internal/core/pomodoro"
	"focusnoise/internal/core/session"
	"focusnoise/internal/storage"
)

// Name is used for the config directory and the single-instance lock.
const Name = "focusnoise"

// Store backends.
const (
	StorePreferences = "prefs"
	StoreYAML        = "yaml"
)

// Audio backends.
const (
	AudioSpeaker = "speaker"
	AudioOto     = "oto"
	AudioNone    = "none"
)

// Options selects backends for New.
type Options struct {
	Store     string
	Audio     string
	LogLevel  string
	StatePath string

	// Preferences backs StorePreferences.
	Preferences fyne.Preferences
	// Clock defaults to the wall clock.
	Clock clock.Clock
	// LogOutput defaults to io.Discard when nil.
	LogOutput io.Writer
}

// RegisterFlags binds the command line switches shared by both binaries.
func RegisterFlags(flags *flag.FlagSet, options *Options, defaultStore string) {
	flags.StringVar(&options.Store, "store", defaultStore, "state backend: prefs or yaml")
	flags.StringVar(&options.Audio, "audio", AudioSpeaker, "audio backend: speaker, oto or none")
	flags.StringVar(&options.LogLevel, "log-level", "info", "log level: debug, info, warn or error")
	flags.StringVar(&options.StatePath, "state", "", "yaml state file (default under the user config dir)")
}

// App holds the running services.
type App struct {
	Logger     *slog.Logger
	Repository *storage.Repository
	Engine     *audio.Engine
	Chimes     *audio.Chimes
	Timer      *pomodoro.Timer
	Session    *session.Controller

	cancel context.CancelFunc
	done   sync.WaitGroup
	once   sync.Once
}

// New builds every service and starts keeping the noise voice in sync with
// the timer.
func New(options Options) (*App, error) {
	logger, err := NewLogger(options.LogLevel, options.LogOutput)
	if err != nil {
		return nil, err
	}

	store, err := openStore(options, logger)
	if err != nil {
		return nil, err
	}
	output, err := NewOutput(options.Audio)
	if err != nil {
		return nil, err
	}

	repository := storage.NewRepository(store, logger.With("component", "storage"))
	engine := audio.NewEngine(output, logger.With("component", "noise"))
	chimes := audio.NewChimes(output, logger.With("component", "chimes"))
	timer := pomodoro.New(repository.LoadConfig(), pomodoro.Options{
		Clock:  options.Clock,
		Store:  repository,
		Chimes: chimes,
		Logger: logger.With("component", "timer"),
	})
	controller := session.New(session.Options{
		Timer:       timer,
		Player:      engine,
		Preferences: repository,
		Logger:      logger.With("component", "session"),
		WorkNoise:   repository.WorkNoise(),
		BreakNoise:  repository.BreakNoise(),
		Volume:      repository.Volume(),
	})

	ctx, cancel := context.WithCancel(context.Background())
	application := &App{
		Logger:     logger,
		Repository: repository,
		Engine:     engine,
		Chimes:     chimes,
		Timer:      timer,
		Session:    controller,
		cancel:     cancel,
	}
	application.done.Add(1)
	go func() {
		defer application.done.Done()
		if err := controller.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Warn("session stopped", "error", err)
		}
	}()

	logger.Info("started", "store", options.Store, "audio", options.Audio)
	return application, nil
}

// Close stops the timer and releases the sound device. The timer snapshot
// stays in the store so the next run resumes.
func (application *App) Close() error {
	var err error
	application.once.Do(func() {
		application.cancel()
		application.Timer.Close()
		application.done.Wait()
		application.Chimes.Wait()
		err = application.Engine.Close()
	})
	return err
}

// NewLogger builds a text logger at level writing to output.
func NewLogger(level string, output io.Writer) (*slog.Logger, error) {
	if output == nil {
		output = io.Discard
	}
	var slogLevel slog.Level
	if level == "" {
		level = "info"
	}
	if err := slogLevel.UnmarshalText([]byte(strings.ToLower(level))); err != nil {
		return nil, fmt.Errorf("parse log level: %w", err)
	}
	return slog.New(slog.NewTextHandler(output, &slog.HandlerOptions{Level: slogLevel})), nil
}

// NewOutput returns the audio backend called name.
func NewOutput(name string) (audio.Output, error) {
	switch name {
	case AudioSpeaker, "":
		return audio.NewSpeakerOutput(), nil
	case AudioOto:
		return audio.NewOtoOutput(), nil
	case AudioNone:
		return audio.Disabled{}, nil
	}
	return nil, fmt.Errorf("unknown audio backend %q", name)
}

func openStore(options Options, logger *slog.Logger) (storage.Store, error) {
	switch options.Store {
	case StorePreferences:
		if options.Preferences == nil {
			return nil, fmt.Errorf("store %q needs the desktop app", StorePreferences)
		}
		return storage.NewPreferencesStore(options.Preferences), nil
	case StoreYAML, "":
		path := options.StatePath
		if path == "" {
			var err error
			if path, err = storage.DefaultPath(Name); err != nil {
				return nil, err
			}
		}
		store, err := storage.OpenYAMLStore(path)
		if errors.Is(err, storage.ErrCorruptState) {
			logger.Warn("discarding unreadable state file", "path", path, "error", err)
			return store, nil
		}
		return store, err
	}
	return nil, fmt.Errorf("unknown store %q", options.Store)
}
