package model

import "fmt"

// Accepted ranges for user configuration.
const (
	MinWorkMinutes  = 1
	MaxWorkMinutes  = 120
	MinBreakMinutes = 1
	MaxBreakMinutes = 60
	MinCycles       = 1
	MaxCycles       = 10
)

// Config contains the user settings that drive the pomodoro state machine.
type Config struct {
	WorkMinutes           int  `json:"workMinutes"`
	BreakMinutes          int  `json:"breakMinutes"`
	LongBreakMinutes      int  `json:"longBreakMinutes"`
	CyclesBeforeLongBreak int  `json:"cyclesBeforeLongBreak"`
	AutoStartBreaks       bool `json:"autoStartBreaks"`
	AutoStartWork         bool `json:"autoStartWork"`
}

// DefaultConfig returns the classic 25/5/15 schedule with four cycles.
func DefaultConfig() Config {
	return Config{
		WorkMinutes:           25,
		BreakMinutes:          5,
		LongBreakMinutes:      15,
		CyclesBeforeLongBreak: 4,
		AutoStartBreaks:       true,
		AutoStartWork:         true,
	}
}

// WorkSeconds returns the work phase length in seconds.
func (config Config) WorkSeconds() int { return config.WorkMinutes * 60 }

// BreakSeconds returns the short break length in seconds.
func (config Config) BreakSeconds() int { return config.BreakMinutes * 60 }

// LongBreakSeconds returns the long break length in seconds.
func (config Config) LongBreakSeconds() int { return config.LongBreakMinutes * 60 }

// ValidationError describes a configuration field outside its accepted range.
type ValidationError struct {
	Field   string
	Message string
}

func (err *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", err.Field, err.Message)
}

// Validate reports the first field of config that is out of range.
func Validate(config Config) error {
	if err := checkRange("workMinutes", config.WorkMinutes, MinWorkMinutes, MaxWorkMinutes); err != nil {
		return err
	}
	if err := checkRange("breakMinutes", config.BreakMinutes, MinBreakMinutes, MaxBreakMinutes); err != nil {
		return err
	}
	if err := checkRange("longBreakMinutes", config.LongBreakMinutes, MinBreakMinutes, MaxBreakMinutes); err != nil {
		return err
	}
	return checkRange("cyclesBeforeLongBreak", config.CyclesBeforeLongBreak, MinCycles, MaxCycles)
}

// Sanitize replaces every out-of-range field with its default value.
func Sanitize(config Config) Config {
	defaults := DefaultConfig()
	if !inRange(config.WorkMinutes, MinWorkMinutes, MaxWorkMinutes) {
		config.WorkMinutes = defaults.WorkMinutes
	}
	if !inRange(config.BreakMinutes, MinBreakMinutes, MaxBreakMinutes) {
		config.BreakMinutes = defaults.BreakMinutes
	}
	if !inRange(config.LongBreakMinutes, MinBreakMinutes, MaxBreakMinutes) {
		config.LongBreakMinutes = defaults.LongBreakMinutes
	}
	if !inRange(config.CyclesBeforeLongBreak, MinCycles, MaxCycles) {
		config.CyclesBeforeLongBreak = defaults.CyclesBeforeLongBreak
	}
	return config
}

func checkRange(field string, value, min, max int) error {
	if inRange(value, min, max) {
		return nil
	}
	return &ValidationError{
		Field:   field,
		Message: fmt.Sprintf("must be between %d and %d, got %d", min, max, value),
	}
}

func inRange(value, min, max int) bool {
	return value >= min && value <= max
}
