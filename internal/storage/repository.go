package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"focusnoise/internal/core/model"
	"focusnoise/internal/core/pomodoro"
	"focusnoise/internal/noise"
)

// Keys used in the store.
const (
	KeySettings      = "settings"
	KeyWorkNoise     = "workNoise"
	KeyBreakNoise    = "breakNoise"
	KeyTimerSnapshot = "timerSnapshot"
	KeyNoiseVolume   = "noiseVolume"
)

// Defaults applied when a key is missing or unreadable.
const (
	DefaultWorkNoise   = noise.Brown
	DefaultBreakNoise  = noise.None
	DefaultNoiseVolume = 0.2
)

// Repository maps application state onto a Store.
type Repository struct {
	store  Store
	logger *slog.Logger
}

var _ pomodoro.SnapshotStore = (*Repository)(nil)

// NewRepository creates a repository over store.
func NewRepository(store Store, logger *slog.Logger) *Repository {
	if logger == nil {
		logger = slog.Default()
	}
	return &Repository{store: store, logger: logger}
}

type storedConfig struct {
	WorkMinutes           *int  `json:"workMinutes"`
	BreakMinutes          *int  `json:"breakMinutes"`
	LongBreakMinutes      *int  `json:"longBreakMinutes"`
	CyclesBeforeLongBreak *int  `json:"cyclesBeforeLongBreak"`
	AutoStartBreaks       *bool `json:"autoStartBreaks"`
	AutoStartWork         *bool `json:"autoStartWork"`
}

// LoadConfig returns the stored settings merged over the defaults. Missing
// fields are backfilled and out-of-range values replaced.
func (repository *Repository) LoadConfig() model.Config {
	config := model.DefaultConfig()
	var stored storedConfig
	if !repository.readJSON(KeySettings, &stored) {
		return config
	}

	mergeInt(&config.WorkMinutes, stored.WorkMinutes)
	mergeInt(&config.BreakMinutes, stored.BreakMinutes)
	mergeInt(&config.LongBreakMinutes, stored.LongBreakMinutes)
	mergeInt(&config.CyclesBeforeLongBreak, stored.CyclesBeforeLongBreak)
	if stored.AutoStartBreaks != nil {
		config.AutoStartBreaks = *stored.AutoStartBreaks
	}
	if stored.AutoStartWork != nil {
		config.AutoStartWork = *stored.AutoStartWork
	}
	return model.Sanitize(config)
}

// SaveConfig validates and stores config.
func (repository *Repository) SaveConfig(config model.Config) error {
	if err := model.Validate(config); err != nil {
		return err
	}
	return repository.writeJSON(KeySettings, config)
}

// WorkNoise returns the color played during work.
func (repository *Repository) WorkNoise() noise.Color {
	return repository.readColor(KeyWorkNoise, DefaultWorkNoise)
}

// SetWorkNoise stores the color played during work.
func (repository *Repository) SetWorkNoise(color noise.Color) error {
	return repository.writeColor(KeyWorkNoise, color)
}

// BreakNoise returns the color played during breaks.
func (repository *Repository) BreakNoise() noise.Color {
	return repository.readColor(KeyBreakNoise, DefaultBreakNoise)
}

// SetBreakNoise stores the color played during breaks.
func (repository *Repository) SetBreakNoise(color noise.Color) error {
	return repository.writeColor(KeyBreakNoise, color)
}

// Volume returns the noise volume in [0, 1].
func (repository *Repository) Volume() float64 {
	var volume float64
	if !repository.readJSON(KeyNoiseVolume, &volume) {
		return DefaultNoiseVolume
	}
	if volume < 0 || volume > 1 {
		repository.logger.Debug("ignoring stored volume", "volume", volume)
		return DefaultNoiseVolume
	}
	return volume
}

// SetVolume stores the noise volume.
func (repository *Repository) SetVolume(volume float64) error {
	if volume < 0 || volume > 1 {
		return fmt.Errorf("volume %.2f outside [0, 1]", volume)
	}
	return repository.writeJSON(KeyNoiseVolume, volume)
}

// LoadSnapshot returns pomodoro.ErrNoSnapshot when nothing is stored.
func (repository *Repository) LoadSnapshot() (pomodoro.Snapshot, error) {
	var snapshot pomodoro.Snapshot
	raw, err := repository.store.Get(KeyTimerSnapshot)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return snapshot, pomodoro.ErrNoSnapshot
		}
		return snapshot, fmt.Errorf("read timer snapshot: %w", err)
	}
	if err := json.Unmarshal([]byte(raw), &snapshot); err != nil {
		return pomodoro.Snapshot{}, fmt.Errorf("%w: %v", pomodoro.ErrInvalidSnapshot, err)
	}
	return snapshot, nil
}

func (repository *Repository) SaveSnapshot(snapshot pomodoro.Snapshot) error {
	return repository.writeJSON(KeyTimerSnapshot, snapshot)
}

func (repository *Repository) ClearSnapshot() error {
	if err := repository.store.Remove(KeyTimerSnapshot); err != nil {
		return fmt.Errorf("remove timer snapshot: %w", err)
	}
	return nil
}

func (repository *Repository) readColor(key string, fallback noise.Color) noise.Color {
	raw, err := repository.store.Get(key)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			repository.logger.Warn("read noise choice", "key", key, "error", err)
		}
		return fallback
	}

	var name string
	if err := json.Unmarshal([]byte(raw), &name); err != nil {
		// Older entries hold the bare name.
		name = raw
	}
	color, err := noise.ParseColor(name)
	if err != nil {
		repository.logger.Debug("ignoring stored noise choice", "key", key, "error", err)
		return fallback
	}
	return color
}

func (repository *Repository) writeColor(key string, color noise.Color) error {
	if !color.Valid() {
		return fmt.Errorf("unknown noise color %q", color)
	}
	return repository.writeJSON(key, string(color))
}

// readJSON decodes key into target and reports whether it succeeded.
func (repository *Repository) readJSON(key string, target any) bool {
	raw, err := repository.store.Get(key)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			repository.logger.Warn("read stored value", "key", key, "error", err)
		}
		return false
	}
	if err := json.Unmarshal([]byte(raw), target); err != nil {
		repository.logger.Debug("discarding corrupt stored value", "key", key, "error", err)
		return false
	}
	return true
}

func (repository *Repository) writeJSON(key string, value any) error {
	serialized, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := repository.store.Set(key, string(serialized)); err != nil {
		return fmt.Errorf("store %s: %w", key, err)
	}
	return nil
}

func mergeInt(target *int, value *int) {
	if value != nil {
		*target = *value
	}
}
