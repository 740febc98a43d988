package preferences

import (
	"strconv"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/widget"

	"focusnoise/internal/core/model"
	"focusnoise/internal/noise"
)

// Controller applies the choices made in the window.
type Controller interface {
	ApplySettings(config model.Config) error
	SetWorkNoise(color noise.Color) error
	SetBreakNoise(color noise.Color) error
	SetVolume(volume float64) error
	Preview(color noise.Color)
	EndPreview()
}

// Window handles the preferences UI.
type Window struct {
	window     fyne.Window
	settings   Settings
	controller Controller

	work       *widget.Entry
	shortBreak *widget.Entry
	longBreak  *widget.Entry
	cycles     *widget.Entry
	autoBreaks *widget.Check
	autoWork   *widget.Check
	workNoise  *widget.Select
	breakNoise *widget.Select
	volume     *widget.Slider
	workTest   *widget.Button
	breakTest  *widget.Button
	errorLabel *widget.Label
	saveButton *widget.Button
	cancel     *widget.Button

	previewing *widget.Button
}

// New creates a preferences window.
func New(app fyne.App, settings Settings, controller Controller) *Window {
	window := app.NewWindow("Focus Noise Settings")

	prefs := &Window{
		window:     window,
		controller: controller,
		work:       widget.NewEntry(),
		shortBreak: widget.NewEntry(),
		longBreak:  widget.NewEntry(),
		cycles:     widget.NewEntry(),
		autoBreaks: widget.NewCheck("Start breaks automatically", nil),
		autoWork:   widget.NewCheck("Start work automatically", nil),
		workNoise:  widget.NewSelect(noiseLabels(), nil),
		breakNoise: widget.NewSelect(noiseLabels(), nil),
		volume:     widget.NewSlider(0, 1),
		errorLabel: widget.NewLabel(""),
	}
	prefs.volume.Step = 0.01
	prefs.errorLabel.Importance = widget.DangerImportance
	prefs.errorLabel.Hide()

	prefs.workTest = widget.NewButton("Test", nil)
	prefs.workTest.OnTapped = func() {
		prefs.togglePreview(prefs.workTest, colorForLabel(prefs.workNoise.Selected))
	}
	prefs.breakTest = widget.NewButton("Test", nil)
	prefs.breakTest.OnTapped = func() {
		prefs.togglePreview(prefs.breakTest, colorForLabel(prefs.breakNoise.Selected))
	}

	form := container.NewVBox(
		widget.NewLabelWithStyle("Timer", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		container.NewHBox(widget.NewLabel("Work"), prefs.work, widget.NewLabel("min")),
		container.NewHBox(widget.NewLabel("Short break"), prefs.shortBreak, widget.NewLabel("min")),
		container.NewHBox(widget.NewLabel("Long break"), prefs.longBreak, widget.NewLabel("min")),
		container.NewHBox(widget.NewLabel("Long break after"), prefs.cycles, widget.NewLabel("work sessions")),
		prefs.autoBreaks,
		prefs.autoWork,
		widget.NewLabelWithStyle("Sound", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		container.NewBorder(nil, nil, widget.NewLabel("During work"), prefs.workTest, prefs.workNoise),
		container.NewBorder(nil, nil, widget.NewLabel("During breaks"), prefs.breakTest, prefs.breakNoise),
		widget.NewLabel("Volume"),
		prefs.volume,
		prefs.errorLabel,
	)

	prefs.saveButton = widget.NewButton("Save", prefs.handleSave)
	prefs.cancel = widget.NewButton("Cancel", prefs.hide)
	buttons := container.NewHBox(prefs.saveButton, layout.NewSpacer(), prefs.cancel)

	window.SetContent(container.NewBorder(nil, buttons, nil, nil, form))
	window.SetCloseIntercept(prefs.hide)
	window.Resize(fyne.NewSize(420, 480))

	prefs.UpdateSettings(settings)
	return prefs
}

// Show displays the preferences window.
func (prefs *Window) Show() {
	prefs.window.Show()
	prefs.window.RequestFocus()
}

// UpdateSettings replaces window values.
func (prefs *Window) UpdateSettings(settings Settings) {
	prefs.settings = settings
	config := settings.Config
	prefs.work.SetText(strconv.Itoa(config.WorkMinutes))
	prefs.shortBreak.SetText(strconv.Itoa(config.BreakMinutes))
	prefs.longBreak.SetText(strconv.Itoa(config.LongBreakMinutes))
	prefs.cycles.SetText(strconv.Itoa(config.CyclesBeforeLongBreak))
	prefs.autoBreaks.SetChecked(config.AutoStartBreaks)
	prefs.autoWork.SetChecked(config.AutoStartWork)
	prefs.workNoise.SetSelected(settings.WorkNoise.Label())
	prefs.breakNoise.SetSelected(settings.BreakNoise.Label())
	prefs.volume.SetValue(settings.Volume)
	prefs.errorLabel.Hide()
}

func (prefs *Window) handleSave() {
	config, err := parseConfig(prefs.settings.Config,
		prefs.work.Text, prefs.shortBreak.Text, prefs.longBreak.Text, prefs.cycles.Text)
	if err != nil {
		prefs.showError(err)
		return
	}
	config.AutoStartBreaks = prefs.autoBreaks.Checked
	config.AutoStartWork = prefs.autoWork.Checked

	if err := prefs.controller.ApplySettings(config); err != nil {
		prefs.showError(err)
		return
	}

	settings := Settings{
		Config:     config,
		WorkNoise:  colorForLabel(prefs.workNoise.Selected),
		BreakNoise: colorForLabel(prefs.breakNoise.Selected),
		Volume:     prefs.volume.Value,
	}
	if err := prefs.controller.SetWorkNoise(settings.WorkNoise); err != nil {
		prefs.showError(err)
		return
	}
	if err := prefs.controller.SetBreakNoise(settings.BreakNoise); err != nil {
		prefs.showError(err)
		return
	}
	if err := prefs.controller.SetVolume(settings.Volume); err != nil {
		prefs.showError(err)
		return
	}

	prefs.settings = settings
	prefs.errorLabel.Hide()
	prefs.hide()
}

func (prefs *Window) togglePreview(button *widget.Button, color noise.Color) {
	if prefs.previewing == button {
		prefs.endPreview()
		return
	}
	prefs.endPreview()
	if color == noise.None {
		return
	}
	prefs.controller.Preview(color)
	prefs.previewing = button
	button.SetText("Stop")
}

func (prefs *Window) endPreview() {
	if prefs.previewing == nil {
		return
	}
	prefs.previewing.SetText("Test")
	prefs.previewing = nil
	prefs.controller.EndPreview()
}

func (prefs *Window) showError(err error) {
	prefs.errorLabel.SetText(err.Error())
	prefs.errorLabel.Show()
}

// hide discards unsaved edits so the next Show starts from stored values.
func (prefs *Window) hide() {
	prefs.endPreview()
	prefs.UpdateSettings(prefs.settings)
	prefs.window.Hide()
}
