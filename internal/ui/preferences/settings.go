package preferences

import (
	"strconv"
	"strings"

	"focusnoise/internal/core/model"
	"focusnoise/internal/noise"
)

// Settings defines the values edited in the window.
type Settings struct {
	Config     model.Config
	WorkNoise  noise.Color
	BreakNoise noise.Color
	Volume     float64
}

// parseConfig reads the duration entries over base and validates the result.
func parseConfig(base model.Config, work, shortBreak, longBreak, cycles string) (model.Config, error) {
	config := base
	fields := []struct {
		name   string
		text   string
		target *int
	}{
		{name: "workMinutes", text: work, target: &config.WorkMinutes},
		{name: "breakMinutes", text: shortBreak, target: &config.BreakMinutes},
		{name: "longBreakMinutes", text: longBreak, target: &config.LongBreakMinutes},
		{name: "cyclesBeforeLongBreak", text: cycles, target: &config.CyclesBeforeLongBreak},
	}
	for _, field := range fields {
		value, err := strconv.Atoi(strings.TrimSpace(field.text))
		if err != nil {
			return base, &model.ValidationError{Field: field.name, Message: "must be a whole number"}
		}
		*field.target = value
	}
	if err := model.Validate(config); err != nil {
		return base, err
	}
	return config, nil
}

// noiseLabels lists the catalogue labels in order.
func noiseLabels() []string {
	catalogue := noise.Catalogue()
	labels := make([]string, 0, len(catalogue))
	for _, info := range catalogue {
		labels = append(labels, info.Label)
	}
	return labels
}

func colorForLabel(label string) noise.Color {
	for _, info := range noise.Catalogue() {
		if info.Label == label {
			return info.Color
		}
	}
	return noise.None
}
