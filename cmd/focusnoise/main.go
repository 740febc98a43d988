package main

import (
	"flag"
	"log"
	"os"

	"fyne.io/fyne/v2"
	fyneapp "fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"

	"focusnoise/internal/app"
	"focusnoise/internal/core/pomodoro"
	"focusnoise/internal/platform"
	"focusnoise/internal/ui/preferences"
	"focusnoise/internal/ui/tray"
	"focusnoise/resources"
)

func main() {
	options := app.Options{LogOutput: os.Stderr}
	app.RegisterFlags(flag.CommandLine, &options, app.StorePreferences)
	flag.Parse()

	lock, err := platform.AcquireInstanceLock(app.Name)
	if err != nil {
		log.Printf("single instance: %v", err)
		return
	}
	defer func() {
		_ = lock.Release()
	}()

	fyneApp := fyneapp.NewWithID("com.focusnoise.app")
	fyneApp.SetIcon(resources.MustIcon(resources.IconWork))
	desktopApp, ok := fyneApp.(desktop.App)
	if !ok {
		log.Printf("system tray unsupported on this platform")
		return
	}

	trayWindow := fyneApp.NewWindow("Focus Noise")
	trayWindow.SetContent(widget.NewLabel("Focus Noise is running in the system tray."))
	trayWindow.SetCloseIntercept(func() {
		trayWindow.Hide()
	})
	trayWindow.Hide()
	desktopApp.SetSystemTrayWindow(trayWindow)

	options.Preferences = fyneApp.Preferences()
	services, err := app.New(options)
	if err != nil {
		log.Printf("start: %v", err)
		return
	}
	defer func() {
		if err := services.Close(); err != nil {
			services.Logger.Warn("shutdown", "error", err)
		}
	}()

	timer := services.Timer
	controller := services.Session
	prefsWindow := preferences.New(fyneApp, preferences.Settings{
		Config:     timer.Config(),
		WorkNoise:  controller.WorkNoise(),
		BreakNoise: controller.BreakNoise(),
		Volume:     controller.Volume(),
	}, controller)

	trayManager := tray.New(desktopApp, tray.Callbacks{
		OnPreferences: prefsWindow.Show,
		OnToggleRun: func() {
			if timer.Status().RunState == pomodoro.RunRunning {
				timer.Pause()
			} else {
				timer.Start()
			}
		},
		OnReset: timer.Reset,
		OnQuit:  fyneApp.Quit,
	})
	trayManager.Update(timer.Status())

	events := timer.Subscribe(8)
	go func() {
		for range events {
			status := timer.Status()
			fyne.Do(func() {
				trayManager.Update(status)
			})
		}
	}()

	fyneApp.Run()
}
