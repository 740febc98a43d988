package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"focusnoise/internal/app"
	"focusnoise/internal/ui/console"
)

func main() {
	var options app.Options
	app.RegisterFlags(flag.CommandLine, &options, app.StoreYAML)
	logFile := flag.String("log-file", "", "write logs to this file")
	flag.Parse()

	if err := run(options, *logFile); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(options app.Options, logFile string) error {
	// The terminal belongs to the UI, so logs go to a file or nowhere.
	options.LogOutput = io.Discard
	if logFile != "" {
		file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		defer file.Close()
		options.LogOutput = file
	}

	services, err := app.New(options)
	if err != nil {
		return err
	}
	defer services.Close()

	program := tea.NewProgram(console.New(services.Timer, services.Session), tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("run program: %w", err)
	}
	return nil
}
